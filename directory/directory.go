// Package directory provides the file-backed identity provider: a
// YAML people listing plus a YAML token-to-agent mapping.
//
// people.yml holds the known agents, either as a mapping or a bare
// list (both forms exist in deployed configs):
//
//	people:
//	  - alice
//	  - bob
//
// agent_ids.yml maps opaque access tokens to agent names:
//
//	id:
//	  9f3c2a...: alice
//
// The package registers itself with the openack registry under the
// name "file". The provider is read-only; Reload re-reads both files
// and swaps the cached state atomically, and Watch (optional) does so
// automatically when the files change.
package directory

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/openack/openack"
	"github.com/openack/openack/errors"
)

// Provider implements openack.Directory backed by YAML files.
type Provider struct {
	peoplePath string
	tokenPath  string
	log        *slog.Logger

	mu     sync.RWMutex
	people map[openack.Agent]struct{}
	tokens map[string]openack.Agent

	watcher   *fsnotify.Watcher
	watchDone chan struct{}
}

// NewProvider loads both files and returns a ready provider. An empty
// tokenPath is allowed for deployments that only enqueue (the send
// API needs no token mapping); ResolveToken then knows no tokens.
func NewProvider(peoplePath, tokenPath string, logger *slog.Logger) (*Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Provider{
		peoplePath: peoplePath,
		tokenPath:  tokenPath,
		log:        logger,
	}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Reload re-reads the backing files. On failure the previously loaded
// state keeps serving.
func (p *Provider) Reload() error {
	people, err := p.loadPeople()
	if err != nil {
		return err
	}

	tokens := make(map[string]openack.Agent)
	if p.tokenPath != "" {
		tokens, err = p.loadTokens(people)
		if err != nil {
			return err
		}
	}

	p.mu.Lock()
	p.people = people
	p.tokens = tokens
	p.mu.Unlock()
	return nil
}

// loadPeople parses the people file. Entries that do not canonicalize
// are skipped with a warning rather than poisoning the whole load.
func (p *Provider) loadPeople() (map[openack.Agent]struct{}, error) {
	data, err := os.ReadFile(p.peoplePath)
	if err != nil {
		return nil, fmt.Errorf("%w: people file %s: %w", errors.ErrDirectoryConfigInvalid, p.peoplePath, err)
	}

	var names []string
	var doc struct {
		People []string `yaml:"people"`
	}
	if err := yaml.Unmarshal(data, &doc); err == nil && len(doc.People) > 0 {
		names = doc.People
	} else {
		// Legacy form: a bare YAML list of names.
		var plain []string
		if err := yaml.Unmarshal(data, &plain); err == nil {
			names = plain
		}
	}

	people := make(map[openack.Agent]struct{}, len(names))
	for _, raw := range names {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		agent, err := openack.CanonicalAgent(raw)
		if err != nil {
			p.log.Warn("skipping invalid people entry", "file", p.peoplePath, "entry", raw)
			continue
		}
		people[agent] = struct{}{}
	}
	if len(people) == 0 {
		return nil, fmt.Errorf("%w: no valid people found in %s", errors.ErrDirectoryConfigInvalid, p.peoplePath)
	}
	return people, nil
}

// loadTokens parses the token mapping. Every mapped name must
// canonicalize and be a known person; a mapping to an unknown person
// is a configuration error, not something to serve quietly.
func (p *Provider) loadTokens(people map[openack.Agent]struct{}) (map[string]openack.Agent, error) {
	data, err := os.ReadFile(p.tokenPath)
	if err != nil {
		return nil, fmt.Errorf("%w: agent id file %s: %w", errors.ErrDirectoryConfigInvalid, p.tokenPath, err)
	}

	var doc struct {
		ID map[string]string `yaml:"id"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: agent id file %s: %w", errors.ErrDirectoryConfigInvalid, p.tokenPath, err)
	}

	tokens := make(map[string]openack.Agent, len(doc.ID))
	for rawToken, rawName := range doc.ID {
		token := strings.TrimSpace(rawToken)
		if token == "" {
			continue
		}
		agent, err := openack.CanonicalAgent(rawName)
		if err != nil {
			return nil, fmt.Errorf("%w: agent id %q maps to invalid name %q", errors.ErrDirectoryConfigInvalid, token, rawName)
		}
		if _, ok := people[agent]; !ok {
			return nil, fmt.Errorf("%w: agent id maps to unknown person: %s", errors.ErrDirectoryConfigInvalid, agent)
		}
		tokens[token] = agent
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: no valid id mapping found in %s", errors.ErrDirectoryConfigInvalid, p.tokenPath)
	}
	return tokens, nil
}

// IsKnownAgent implements openack.Directory.
func (p *Provider) IsKnownAgent(ctx context.Context, name openack.Agent) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.people[name]
	return ok, nil
}

// ResolveToken implements openack.Directory.
func (p *Provider) ResolveToken(ctx context.Context, token string) (openack.Agent, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if agent, ok := p.tokens[strings.TrimSpace(token)]; ok {
		return agent, nil
	}
	return "", errors.ErrUnknownToken
}

// Agents implements openack.Directory.
func (p *Provider) Agents(ctx context.Context) ([]openack.Agent, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	agents := make([]openack.Agent, 0, len(p.people))
	for agent := range p.people {
		agents = append(agents, agent)
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i] < agents[j] })
	return agents, nil
}

// Close stops the watcher, if one was started. It is safe to call
// more than once.
func (p *Provider) Close() error {
	p.mu.Lock()
	watcher := p.watcher
	done := p.watchDone
	p.watcher = nil
	p.watchDone = nil
	p.mu.Unlock()

	if watcher == nil {
		return nil
	}
	close(done)
	return watcher.Close()
}

// Compile-time interface verification.
var _ openack.Directory = (*Provider)(nil)
