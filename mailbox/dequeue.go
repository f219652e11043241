package mailbox

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/openack/openack"
	"github.com/openack/openack/envelope"
)

// FetchAndConsume implements openack.Consumer.
//
// The per-mailbox lock is held for the whole scan-decode-archive
// sequence; each envelope is archived before the next one is read,
// bounding a crash to at most one in-flight envelope. A malformed
// envelope is skipped with a warning and left in place rather than
// aborting the scan.
func (s *Store) FetchAndConsume(ctx context.Context, token string) ([]openack.Message, error) {
	agent, err := s.dir.ResolveToken(ctx, token)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.acquire(agent)
	defer unlock()

	if err := s.recoverStaged(agent); err != nil {
		s.log.Warn("staged archive recovery failed", "agent", agent, "error", err)
	}

	inbox, err := s.inboxPath(agent)
	if err != nil {
		return nil, err
	}

	// ReadDir returns entries sorted by filename, which for envelope
	// names is chronological order: the delivery order contract.
	entries, err := os.ReadDir(inbox)
	if stderrors.Is(err, fs.ErrNotExist) {
		return []openack.Message{}, nil
	}
	if err != nil {
		return nil, storageError("list inbox", err)
	}

	messages := make([]openack.Message, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		// Match the full envelope name shape, not just the extension:
		// an attachment uploaded as *.md sits in the same directory.
		if entry.IsDir() || !envelope.IsEnvelopeName(name) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(inbox, name))
		if err != nil {
			return messages, storageError("read envelope", err)
		}
		env, err := envelope.Decode(data)
		if err != nil {
			s.log.Warn("skipping malformed envelope",
				"agent", agent, "file", name, "error", err)
			continue
		}

		msg := openack.Message{
			From:        env.From,
			To:          env.To,
			SentAt:      env.SentAt,
			Body:        env.Body,
			Attachments: make([]openack.Attachment, 0, len(env.Attachments)),
		}
		if msg.To == "" {
			msg.To = agent
		}
		for _, ref := range env.Attachments {
			content, err := os.ReadFile(filepath.Join(inbox, ref.StorageName))
			if stderrors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return messages, storageError("read attachment", err)
			}
			msg.Attachments = append(msg.Attachments, openack.Attachment{
				Name:    ref.StorageName,
				Content: content,
			})
		}

		// Archive before reporting the message so a failed archive
		// never produces a delivered-yet-still-pending envelope.
		if err := s.archive(agent, name, env.Attachments); err != nil {
			return messages, err
		}
		messages = append(messages, msg)
	}

	return messages, nil
}
