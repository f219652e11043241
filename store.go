package openack

import "context"

// Enqueuer writes new envelopes into recipient inboxes.
// The send API calls Enqueue after transport-level decoding.
type Enqueuer interface {
	// Enqueue validates the request and materializes one envelope
	// per recipient, each with its own unique id and a shared
	// sent_at timestamp. Attachments are duplicated per recipient.
	//
	// Validation (invalid names, unknown sender or recipients,
	// blank body) fails before any filesystem write. A storage
	// failure for one recipient does not roll back the others: the
	// returned deliveries are committed even when err is non-nil.
	Enqueue(ctx context.Context, req EnqueueRequest) ([]Delivery, error)
}

// Consumer drains a recipient's inbox on behalf of a token holder.
// The fetch API calls FetchAndConsume with the bare token string.
type Consumer interface {
	// FetchAndConsume resolves the token to an agent, then lists,
	// decodes, and archives every pending envelope in delivery
	// order. Each envelope is archived into a zip under done/ and
	// removed from the inbox before the next one is processed.
	//
	// Returns errors.ErrUnknownToken when the token does not
	// resolve. An empty inbox (or a missing inbox directory) yields
	// an empty slice and a nil error, never a nil slice.
	FetchAndConsume(ctx context.Context, token string) ([]Message, error)
}
