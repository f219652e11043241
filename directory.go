package openack

import (
	"context"
	"sort"
	"sync"

	"github.com/openack/openack/errors"
)

// Directory resolves identities for the mailbox store. It is
// externally-loaded, read-only state: the store never mutates it.
type Directory interface {
	// IsKnownAgent reports whether a canonical agent name is listed
	// in the people directory.
	IsKnownAgent(ctx context.Context, name Agent) (bool, error)

	// ResolveToken maps an opaque access token to the agent it
	// grants fetch access to. Returns errors.ErrUnknownToken when
	// the token is not in the mapping.
	ResolveToken(ctx context.Context, token string) (Agent, error)

	// Agents returns the sorted list of known agents.
	Agents(ctx context.Context) ([]Agent, error)

	// Reload re-reads the backing configuration. Implementations
	// keep serving the previous state when a reload fails.
	Reload() error

	// Close releases any resources held by the directory.
	Close() error
}

// DirectoryFactory creates a Directory from configuration.
type DirectoryFactory func(config DirectoryConfig) (Directory, error)

// DirectoryConfig contains settings for opening a directory provider.
type DirectoryConfig struct {
	// Type is the provider type name (e.g., "file").
	Type string

	// PeopleFile is the path to the people listing.
	PeopleFile string

	// TokenFile is the path to the token-to-agent mapping.
	TokenFile string

	// Options contains implementation-specific settings.
	Options map[string]string
}

var (
	dirRegistryMu sync.RWMutex
	dirRegistry   = make(map[string]DirectoryFactory)
)

// RegisterDirectory adds a directory factory to the registry.
// It panics if called with an empty name or nil factory,
// or if the name is already registered.
func RegisterDirectory(name string, factory DirectoryFactory) {
	if name == "" {
		panic("openack: RegisterDirectory called with empty name")
	}
	if factory == nil {
		panic("openack: RegisterDirectory called with nil factory")
	}

	dirRegistryMu.Lock()
	defer dirRegistryMu.Unlock()

	if _, exists := dirRegistry[name]; exists {
		panic("openack: RegisterDirectory called twice for " + name)
	}
	dirRegistry[name] = factory
}

// OpenDirectory creates a Directory using the registered factory for
// the config type.
func OpenDirectory(config DirectoryConfig) (Directory, error) {
	dirRegistryMu.RLock()
	factory, ok := dirRegistry[config.Type]
	dirRegistryMu.RUnlock()

	if !ok {
		return nil, errors.ErrDirectoryNotRegistered
	}
	return factory(config)
}

// RegisteredDirectories returns a sorted list of registered directory
// provider type names.
func RegisteredDirectories() []string {
	dirRegistryMu.RLock()
	defer dirRegistryMu.RUnlock()

	types := make([]string, 0, len(dirRegistry))
	for name := range dirRegistry {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}

// StaticDirectory is an in-memory Directory for tests and embedders
// that already hold their identity data. People maps known agents;
// Tokens maps opaque tokens to agents.
type StaticDirectory struct {
	People []Agent
	Tokens map[string]Agent
}

// IsKnownAgent implements Directory.
func (d *StaticDirectory) IsKnownAgent(ctx context.Context, name Agent) (bool, error) {
	for _, p := range d.People {
		if p == name {
			return true, nil
		}
	}
	return false, nil
}

// ResolveToken implements Directory.
func (d *StaticDirectory) ResolveToken(ctx context.Context, token string) (Agent, error) {
	if agent, ok := d.Tokens[token]; ok {
		return agent, nil
	}
	return "", errors.ErrUnknownToken
}

// Agents implements Directory.
func (d *StaticDirectory) Agents(ctx context.Context) ([]Agent, error) {
	agents := make([]Agent, len(d.People))
	copy(agents, d.People)
	sort.Slice(agents, func(i, j int) bool { return agents[i] < agents[j] })
	return agents, nil
}

// Reload implements Directory. It is a no-op.
func (d *StaticDirectory) Reload() error { return nil }

// Close implements Directory. It is a no-op.
func (d *StaticDirectory) Close() error { return nil }

var _ Directory = (*StaticDirectory)(nil)
