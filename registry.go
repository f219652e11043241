package openack

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/openack/openack/errors"
)

// StoreFactory creates a MailboxStore from configuration and its
// injected collaborators.
type StoreFactory func(config StoreConfig, deps Deps) (MailboxStore, error)

// StoreConfig contains settings for opening a store.
type StoreConfig struct {
	// Type is the store type name (e.g., "mailbox").
	Type string

	// BasePath is the messages root directory for file-based stores.
	BasePath string

	// Options contains implementation-specific settings.
	Options map[string]string
}

// Deps carries the external collaborators a store needs. Directory is
// mandatory for every store; the others default to no-op or global
// implementations when nil.
type Deps struct {
	// Directory resolves tokens and validates agent names.
	Directory Directory

	// TransactionLog receives one audit entry per (sender,
	// recipient) delivery. Nil means no audit logging.
	TransactionLog TransactionLogger

	// Logger is used for store diagnostics. Nil means slog.Default.
	Logger *slog.Logger
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]StoreFactory)
)

// Register adds a store factory to the registry.
// It panics if called with an empty name or nil factory,
// or if the name is already registered.
func Register(name string, factory StoreFactory) {
	if name == "" {
		panic("openack: Register called with empty name")
	}
	if factory == nil {
		panic("openack: Register called with nil factory")
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[name]; exists {
		panic("openack: Register called twice for " + name)
	}
	registry[name] = factory
}

// Open creates a MailboxStore using the registered factory for the
// config type.
func Open(config StoreConfig, deps Deps) (MailboxStore, error) {
	registryMu.RLock()
	factory, ok := registry[config.Type]
	registryMu.RUnlock()

	if !ok {
		return nil, errors.ErrStoreNotRegistered
	}
	return factory(config, deps)
}

// RegisteredTypes returns a sorted list of registered store type names.
func RegisteredTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	types := make([]string, 0, len(registry))
	for name := range registry {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}
