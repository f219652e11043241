// Package envelope implements the plain-text wire format for stored
// messages: a header section, a body, and a footer, delimited by
// literal marker lines.
//
//	=== HEADER ===
//	from: alice
//	to: bob
//	sent_at: 2026-01-02T15:04:05Z
//
//	message body
//
//	=== FOOTER ===
//	attachments:
//	- <id>-attachment1.png
//
// Envelopes without attachments carry a reply_url footer line
// instead of an attachments block.
//
// Body capture stops at the first footer marker after the header.
// Because of that, Encode rejects bodies containing a marker line
// rather than writing an envelope that would decode differently.
package envelope

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/openack/openack"
	"github.com/openack/openack/errors"
)

// Section marker lines. These are matched against whole lines.
const (
	HeaderMarker = "=== HEADER ==="
	FooterMarker = "=== FOOTER ==="
)

// FormatTime renders a timestamp the way envelopes store it: RFC 3339
// in UTC, truncated to whole seconds, with a "Z" suffix.
func FormatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

// ValidateBody reports ErrBodyCollision when the body contains a line
// equal to a section marker. Such a body would be truncated at the
// embedded marker by Decode.
func ValidateBody(body string) error {
	for _, line := range strings.Split(body, "\n") {
		if line == HeaderMarker || line == FooterMarker {
			return errors.ErrBodyCollision
		}
	}
	return nil
}

// Encode serializes an envelope to its on-disk text form. The body is
// trimmed of surrounding whitespace before writing.
func Encode(env openack.Envelope) ([]byte, error) {
	body := strings.TrimSpace(env.Body)
	if err := ValidateBody(body); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(HeaderMarker)
	b.WriteByte('\n')
	fmt.Fprintf(&b, "from: %s\n", env.From)
	fmt.Fprintf(&b, "to: %s\n", env.To)
	fmt.Fprintf(&b, "sent_at: %s\n", FormatTime(env.SentAt))
	b.WriteByte('\n')
	b.WriteString(body)
	b.WriteByte('\n')
	b.WriteByte('\n')
	b.WriteString(FooterMarker)
	b.WriteByte('\n')

	if len(env.Attachments) > 0 {
		b.WriteString("attachments:\n")
		for _, ref := range env.Attachments {
			fmt.Fprintf(&b, "- %s\n", ref.StorageName)
		}
	} else {
		fmt.Fprintf(&b, "reply_url: /messages?from=%s&to=%s\n", env.To, env.From)
	}

	return []byte(b.String()), nil
}

// Decode parses an envelope from its on-disk text form. It fails with
// ErrMalformedEnvelope when the header/footer marker pair is missing;
// header fields that are absent decode to zero values so that older
// or hand-written envelopes still parse.
//
// Footer attachment lines may carry bare storage names or full paths
// (the reference implementation wrote absolute paths); only the base
// name is kept, so a footer line can never point outside the
// envelope's own directory.
func Decode(data []byte) (openack.Envelope, error) {
	var env openack.Envelope

	lines := strings.Split(string(data), "\n")
	headerIdx := -1
	for i, line := range lines {
		if line == HeaderMarker {
			headerIdx = i
			break
		}
	}
	if headerIdx == -1 {
		return env, fmt.Errorf("%w: missing %s", errors.ErrMalformedEnvelope, HeaderMarker)
	}

	// Header fields run until the first blank line.
	bodyStart := headerIdx + 1
	for bodyStart < len(lines) {
		line := strings.TrimSpace(lines[bodyStart])
		if line == "" {
			bodyStart++
			break
		}
		if lines[bodyStart] == FooterMarker {
			break
		}
		if key, value, ok := strings.Cut(line, ":"); ok {
			value = strings.TrimSpace(value)
			switch strings.TrimSpace(key) {
			case "from":
				env.From = openack.Agent(value)
			case "to":
				env.To = openack.Agent(value)
			case "sent_at":
				if t, err := time.Parse(time.RFC3339, value); err == nil {
					env.SentAt = t.UTC()
				}
			}
		}
		bodyStart++
	}

	// Body runs until the first footer marker. Anything that looks
	// like footer syntax before that point is opaque body content.
	footerIdx := -1
	for i := bodyStart; i < len(lines); i++ {
		if lines[i] == FooterMarker {
			footerIdx = i
			break
		}
	}
	if footerIdx == -1 {
		return env, fmt.Errorf("%w: missing %s", errors.ErrMalformedEnvelope, FooterMarker)
	}

	env.Body = trimBlankLines(lines[bodyStart:footerIdx])

	for _, line := range lines[footerIdx+1:] {
		trimmed := strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(trimmed, "- "); ok {
			name := path.Base(strings.TrimSpace(rest))
			if name != "." && name != "/" {
				env.Attachments = append(env.Attachments, openack.AttachmentRef{StorageName: name})
			}
		}
	}

	return env, nil
}

// trimBlankLines joins body lines, dropping leading and trailing
// blank lines while preserving interior ones.
func trimBlankLines(lines []string) string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}
