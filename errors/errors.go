// Package errors provides centralized error definitions for openack.
package errors

import (
	"errors"
	"strings"
)

// Validation errors (client-facing failures on enqueue).
var (
	// ErrInvalidAgentName indicates a name that does not canonicalize
	// to a non-empty [a-z0-9_-]+ string.
	ErrInvalidAgentName = errors.New("invalid agent name")

	// ErrUnknownSender indicates the sender is not in the people directory.
	ErrUnknownSender = errors.New("sender is not in directory")

	// ErrUnknownRecipient indicates a recipient is not in the people
	// directory. Enqueue wraps it in an UnknownRecipientsError naming
	// every offending recipient.
	ErrUnknownRecipient = errors.New("recipient not in directory")

	// ErrNoRecipients indicates an enqueue call with no recipients.
	ErrNoRecipients = errors.New("at least one recipient is required")

	// ErrEmptyBody indicates a message body that is empty after trimming.
	ErrEmptyBody = errors.New("message body must not be empty")
)

// Fetch errors.
var (
	// ErrUnknownToken indicates the access token does not resolve to an agent.
	ErrUnknownToken = errors.New("unknown agent id")
)

// Envelope format errors.
var (
	// ErrMalformedEnvelope indicates an envelope file without a
	// header/footer marker pair.
	ErrMalformedEnvelope = errors.New("malformed envelope")

	// ErrBodyCollision indicates a message body containing a line
	// equal to a section marker, which would truncate the body under
	// the first-footer decode policy.
	ErrBodyCollision = errors.New("message body collides with envelope markers")
)

// Storage errors.
var (
	// ErrStorageFailure indicates an I/O-level failure beneath the store.
	ErrStorageFailure = errors.New("storage failure")

	// ErrPathTraversal indicates a mailbox path escaping the messages root.
	ErrPathTraversal = errors.New("path escapes messages root")
)

// Registry errors.
var (
	// ErrStoreNotRegistered indicates the requested store type is not registered.
	ErrStoreNotRegistered = errors.New("store type not registered")

	// ErrStoreConfigInvalid indicates the store configuration is invalid.
	ErrStoreConfigInvalid = errors.New("invalid store configuration")

	// ErrDirectoryNotRegistered indicates the requested directory
	// provider type is not registered.
	ErrDirectoryNotRegistered = errors.New("directory type not registered")

	// ErrDirectoryConfigInvalid indicates the directory configuration is invalid.
	ErrDirectoryConfigInvalid = errors.New("invalid directory configuration")
)

// UnknownRecipientsError reports every recipient of an enqueue call
// that is missing from the people directory, not just the first.
type UnknownRecipientsError struct {
	Recipients []string
}

func (e *UnknownRecipientsError) Error() string {
	return "recipient(s) not in directory: " + strings.Join(e.Recipients, ", ")
}

// Unwrap lets errors.Is match ErrUnknownRecipient.
func (e *UnknownRecipientsError) Unwrap() error {
	return ErrUnknownRecipient
}
