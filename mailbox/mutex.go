package mailbox

import (
	"sync"

	"github.com/openack/openack"
)

// mailboxLocks serializes fetch transactions per mailbox. Two
// concurrent fetches for the same agent would otherwise both list the
// same inbox files before either archives them, delivering envelopes
// twice. Enqueue needs no lock: every writer picks a globally unique
// filename.
type mailboxLocks struct {
	mu sync.Mutex
	m  map[openack.Agent]*sync.Mutex
}

func newMailboxLocks() *mailboxLocks {
	return &mailboxLocks{m: make(map[openack.Agent]*sync.Mutex)}
}

// acquire locks the named mailbox and returns the unlock func. The
// lock must be held for the entire scan-decode-archive sequence.
func (l *mailboxLocks) acquire(agent openack.Agent) func() {
	l.mu.Lock()
	mu, ok := l.m[agent]
	if !ok {
		mu = &sync.Mutex{}
		l.m[agent] = mu
	}
	l.mu.Unlock()

	mu.Lock()
	return mu.Unlock
}
