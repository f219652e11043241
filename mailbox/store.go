package mailbox

import (
	"fmt"
	"log/slog"

	"github.com/openack/openack"
	"github.com/openack/openack/errors"
)

// Store implements openack.MailboxStore on a local filesystem tree.
type Store struct {
	root     string
	dir      openack.Directory
	translog openack.TransactionLogger
	log      *slog.Logger
	locks    *mailboxLocks
}

// New creates a Store rooted at the given messages directory. dir
// resolves tokens and validates agent names and must not be nil. A
// nil translog discards audit entries; a nil logger falls back to
// slog.Default.
func New(root string, dir openack.Directory, translog openack.TransactionLogger, logger *slog.Logger) *Store {
	if translog == nil {
		translog = openack.NopTransactionLogger
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		root:     root,
		dir:      dir,
		translog: translog,
		log:      logger,
		locks:    newMailboxLocks(),
	}
}

// storageError classifies an I/O failure under the closed taxonomy
// while keeping the underlying error in the chain.
func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, errors.ErrStorageFailure, err)
}

// Compile-time interface verification.
var _ openack.MailboxStore = (*Store)(nil)
