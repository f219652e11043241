package openack

import (
	"fmt"
	"strings"

	"github.com/openack/openack/errors"
)

// Agent is a canonical agent name: lowercase, non-empty, restricted
// to [a-z0-9_-]. Two agents are equal iff their canonical strings are
// equal. Construct values with CanonicalAgent; a zero Agent is not a
// valid identity.
type Agent string

// CanonicalAgent trims and lowercases a raw agent name and validates
// the character set. Returns errors.ErrInvalidAgentName when the
// result is empty or contains a character outside [a-z0-9_-].
func CanonicalAgent(raw string) (Agent, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return "", fmt.Errorf("%w: %q", errors.ErrInvalidAgentName, raw)
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return "", fmt.Errorf("%w: %q", errors.ErrInvalidAgentName, raw)
		}
	}
	return Agent(name), nil
}

// String returns the canonical name.
func (a Agent) String() string {
	return string(a)
}
