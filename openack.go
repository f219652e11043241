package openack

// MailboxStore combines enqueue and fetch operations.
// It embeds both Enqueuer (for the send API) and
// Consumer (for the fetch API message retrieval).
type MailboxStore interface {
	Enqueuer
	Consumer
}
