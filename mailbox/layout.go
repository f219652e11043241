package mailbox

import (
	"path/filepath"
	"strings"

	"github.com/openack/openack"
	"github.com/openack/openack/errors"
)

// Per-agent subdirectory names.
const (
	inboxDir      = "inbox"
	doneDir       = "done"
	processingDir = "processing"
)

// agentPath returns the filesystem path owning an agent's mailbox.
// Canonical agent names are single safe path components, but the
// containment check stays as a second line of defense against a
// directory provider handing back something that isn't canonical.
func (s *Store) agentPath(agent openack.Agent) (string, error) {
	cleanBase := filepath.Clean(s.root)
	candidate := filepath.Clean(filepath.Join(s.root, agent.String()))

	if !strings.HasPrefix(candidate+string(filepath.Separator), cleanBase+string(filepath.Separator)) {
		return "", errors.ErrPathTraversal
	}
	return candidate, nil
}

// inboxPath returns the agent's inbox directory.
func (s *Store) inboxPath(agent openack.Agent) (string, error) {
	base, err := s.agentPath(agent)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, inboxDir), nil
}

// donePath returns the agent's archive directory.
func (s *Store) donePath(agent openack.Agent) (string, error) {
	base, err := s.agentPath(agent)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, doneDir), nil
}

// processingPath returns the agent's archive staging directory.
func (s *Store) processingPath(agent openack.Agent) (string, error) {
	base, err := s.agentPath(agent)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, processingDir), nil
}
