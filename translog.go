package openack

import (
	"context"
	"time"
)

// TransactionEntry is one audit record: a single (sender, recipient)
// delivery. A multi-recipient send produces one entry per recipient.
type TransactionEntry struct {
	From   Agent
	To     Agent
	SentAt time.Time
}

// TransactionLogger is the append-only audit sink the enqueue
// transaction writes to.
type TransactionLogger interface {
	Append(ctx context.Context, entry TransactionEntry) error
}

type nopTransactionLogger struct{}

func (nopTransactionLogger) Append(context.Context, TransactionEntry) error { return nil }

// NopTransactionLogger discards all entries.
var NopTransactionLogger TransactionLogger = nopTransactionLogger{}
