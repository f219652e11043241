package mailbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/openack/openack"
	"github.com/openack/openack/envelope"
	"github.com/openack/openack/errors"
)

// Enqueue implements openack.Enqueuer.
//
// All validation runs before any filesystem write, so a rejected call
// leaves no partial state. After that, each recipient's delivery is
// an independent unit: a failed write is reported but neither rolls
// back earlier deliveries nor stops later ones.
func (s *Store) Enqueue(ctx context.Context, req openack.EnqueueRequest) ([]openack.Delivery, error) {
	sender, err := openack.CanonicalAgent(req.Sender)
	if err != nil {
		return nil, err
	}

	if len(req.Recipients) == 0 {
		return nil, errors.ErrNoRecipients
	}
	recipients := make([]openack.Agent, 0, len(req.Recipients))
	for _, raw := range req.Recipients {
		recipient, err := openack.CanonicalAgent(raw)
		if err != nil {
			return nil, err
		}
		recipients = append(recipients, recipient)
	}

	known, err := s.dir.IsKnownAgent(ctx, sender)
	if err != nil {
		return nil, fmt.Errorf("directory lookup: %w", err)
	}
	if !known {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownSender, sender)
	}

	var unknown []string
	for _, recipient := range recipients {
		known, err := s.dir.IsKnownAgent(ctx, recipient)
		if err != nil {
			return nil, fmt.Errorf("directory lookup: %w", err)
		}
		if !known {
			unknown = append(unknown, recipient.String())
		}
	}
	if len(unknown) > 0 {
		return nil, &errors.UnknownRecipientsError{Recipients: unknown}
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, errors.ErrEmptyBody
	}
	if err := envelope.ValidateBody(body); err != nil {
		return nil, err
	}

	// One logical timestamp for the whole broadcast.
	sentAt := time.Now().UTC().Truncate(time.Second)

	deliveries := make([]openack.Delivery, 0, len(recipients))
	var firstErr error
	for _, recipient := range recipients {
		delivery, err := s.deliver(sender, recipient, body, req.Attachments, sentAt, envelope.NewID())
		if err != nil {
			s.log.Error("delivery failed",
				"sender", sender, "recipient", recipient, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		deliveries = append(deliveries, delivery)

		entry := openack.TransactionEntry{From: sender, To: recipient, SentAt: sentAt}
		if err := s.translog.Append(ctx, entry); err != nil {
			s.log.Warn("transaction log append failed",
				"sender", sender, "recipient", recipient, "error", err)
		}
	}

	return deliveries, firstErr
}

// deliver materializes one envelope for one recipient: attachments
// first, then the envelope file naming them. Each call gets a unique
// id, so concurrent writers never collide on a path. Attachments only
// outlive the call if the envelope naming them was committed.
func (s *Store) deliver(sender, recipient openack.Agent, body string, uploads []openack.Upload, sentAt time.Time, id string) (openack.Delivery, error) {
	inbox, err := s.inboxPath(recipient)
	if err != nil {
		return openack.Delivery{}, err
	}
	if err := os.MkdirAll(inbox, 0o700); err != nil {
		return openack.Delivery{}, storageError("create inbox", err)
	}

	refs := make([]openack.AttachmentRef, 0, len(uploads))
	paths := make([]string, 0, len(uploads))

	// Attachments not named by a committed envelope are unreachable:
	// no fetch would ever archive or remove them.
	removeAttachments := func() {
		for _, p := range paths {
			_ = os.Remove(p)
		}
	}

	for i, upload := range uploads {
		name := envelope.AttachmentName(id, i+1, upload.OriginalName)
		target := filepath.Join(inbox, name)
		if err := os.WriteFile(target, upload.Content, 0o600); err != nil {
			removeAttachments()
			return openack.Delivery{}, storageError("write attachment", err)
		}
		refs = append(refs, openack.AttachmentRef{StorageName: name})
		paths = append(paths, target)
	}

	data, err := envelope.Encode(openack.Envelope{
		ID:          id,
		From:        sender,
		To:          recipient,
		SentAt:      sentAt,
		Body:        body,
		Attachments: refs,
	})
	if err != nil {
		removeAttachments()
		return openack.Delivery{}, err
	}

	target := filepath.Join(inbox, envelope.Filename(sentAt, id))
	if err := os.WriteFile(target, data, 0o600); err != nil {
		removeAttachments()
		return openack.Delivery{}, storageError("write envelope", err)
	}

	return openack.Delivery{
		Recipient:    recipient,
		EnvelopeFile: target,
		Attachments:  paths,
		SentAt:       sentAt,
	}, nil
}
