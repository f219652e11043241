// Package translog provides the file-backed audit log sink. Each
// committed (sender, recipient) delivery appends one line:
//
//	from=<sender>,to=<recipient>,datetime=<sent_at>
package translog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/openack/openack"
)

// FileLogger appends entries to a single log file. Appends are
// serialized in-process; the file is opened with O_APPEND so separate
// processes sharing the file do not interleave within a line.
type FileLogger struct {
	path string
	mu   sync.Mutex
}

// NewFileLogger creates a logger appending to the given path. The
// file and its parent directory are created on first append.
func NewFileLogger(path string) *FileLogger {
	return &FileLogger{path: path}
}

// Append implements openack.TransactionLogger.
func (l *FileLogger) Append(ctx context.Context, entry openack.TransactionEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return fmt.Errorf("create transaction log dir: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open transaction log: %w", err)
	}

	line := fmt.Sprintf("from=%s,to=%s,datetime=%s\n",
		entry.From, entry.To, entry.SentAt.UTC().Format(time.RFC3339))
	_, err = f.WriteString(line)
	if closeErr := f.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("append transaction log: %w", err)
	}
	return nil
}

// Compile-time interface verification.
var _ openack.TransactionLogger = (*FileLogger)(nil)
