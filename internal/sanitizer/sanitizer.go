// Package sanitizer strips markup from extracted text before it is stored
// or sent to the generation service.
package sanitizer

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Sanitize removes script blocks and markup tags from raw extracted text,
// collapsing it to plain text. It never fails and is idempotent:
// Sanitize(Sanitize(x)) == Sanitize(x) for any input.
func Sanitize(raw string) string {
	// One pass strips tags and decodes one level of entity escaping.
	// Run to a fixed point so nested escapes cannot make a second call
	// observe different text. Depth shrinks every round, so this ends.
	clean := sanitizeOnce(raw)
	for {
		next := sanitizeOnce(clean)
		if next == clean {
			break
		}
		clean = next
	}

	clean = strings.ReplaceAll(clean, "\x00", "")

	lines := strings.Split(clean, "\n")
	var out []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}

	return strings.Join(out, "\n")
}

func sanitizeOnce(s string) string {
	return html.UnescapeString(policy.Sanitize(s))
}
