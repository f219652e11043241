package openack

import "time"

// Envelope is one logical message instance destined for exactly one
// recipient, as stored on disk in a recipient's inbox.
type Envelope struct {
	// ID is the opaque unique token assigned at enqueue time.
	ID string

	// From is the sending agent.
	From Agent

	// To is the receiving agent.
	To Agent

	// SentAt is the send timestamp, UTC, truncated to whole seconds.
	// Shared by all envelopes of one multi-recipient send.
	SentAt time.Time

	// Body is the UTF-8 message text. Non-empty after trimming at
	// enqueue time; may be empty when decoding archived envelopes.
	Body string

	// Attachments lists the stored attachment files in upload order.
	Attachments []AttachmentRef
}

// AttachmentRef names a stored attachment file belonging to an
// envelope. The original uploaded filename is discarded except for
// its extension: the storage name is "<id>-attachment<N><ext>" with
// N starting at 1 in upload order.
type AttachmentRef struct {
	// StorageName is the attachment's filename within the inbox,
	// without any directory component.
	StorageName string
}

// Upload is an attachment as received from a sender, before it is
// assigned a storage name.
type Upload struct {
	// OriginalName is the filename supplied by the uploader. Only
	// its extension survives storage; an empty name is treated as
	// "attachment.bin".
	OriginalName string

	// Content is the raw attachment bytes.
	Content []byte
}

// EnqueueRequest carries one send call. Sender and Recipients are raw
// names; the store canonicalizes and validates them before any write.
type EnqueueRequest struct {
	Sender      string
	Recipients  []string
	Body        string
	Attachments []Upload
}

// Delivery reports one committed per-recipient envelope write.
type Delivery struct {
	Recipient    Agent    `json:"recipient"`
	EnvelopeFile string   `json:"message_file"`
	Attachments  []string `json:"attachments"`

	// SentAt is the shared timestamp of the send call. Not part of
	// the per-delivery wire shape.
	SentAt time.Time `json:"-"`
}

// Message is a fetched, decoded envelope as returned to a consumer.
// Attachment content serializes to base64 in JSON.
type Message struct {
	From        Agent        `json:"from"`
	To          Agent        `json:"to"`
	SentAt      time.Time    `json:"sent_at"`
	Body        string       `json:"message"`
	Attachments []Attachment `json:"attachments"`
}

// Attachment is a fetched attachment with its content loaded.
type Attachment struct {
	Name    string `json:"file"`
	Content []byte `json:"content"`
}
