// Package fixup recognizes commits created with `git commit --fixup`.
package fixup

import (
	"slices"
	"strings"
)

// DefaultPrefix is the subject prefix git writes for fixup commits.
const DefaultPrefix = "fixup! "

// Classifier matches raw commit messages against literal subject prefixes.
type Classifier struct {
	prefixes []string
}

// NewClassifier creates a Classifier matching DefaultPrefix plus the given
// prefixes. Empty and repeated prefixes are skipped.
func NewClassifier(prefixes []string) *Classifier {
	kept := []string{DefaultPrefix}
	for _, p := range prefixes {
		if p == "" || slices.Contains(kept, p) {
			continue
		}
		kept = append(kept, p)
	}
	return &Classifier{prefixes: kept}
}

// Default returns a Classifier that matches only DefaultPrefix.
func Default() *Classifier {
	return NewClassifier(nil)
}

// Prefixes returns the configured prefixes.
func (c *Classifier) Prefixes() []string {
	return append([]string(nil), c.prefixes...)
}

// IsFixup reports whether the raw message starts with one of the prefixes.
// The message is not trimmed: leading whitespace defeats the match.
func (c *Classifier) IsFixup(message string) bool {
	if c == nil {
		return false
	}
	for _, p := range c.prefixes {
		if strings.HasPrefix(message, p) {
			return true
		}
	}
	return false
}

// Target returns the subject of the commit a fixup message amends, with
// nested prefixes ("fixup! fixup! x") removed. ok is false for non-fixups.
func (c *Classifier) Target(message string) (subject string, ok bool) {
	if !c.IsFixup(message) {
		return "", false
	}
	subject, _, _ = strings.Cut(message, "\n")
	for {
		stripped := false
		for _, p := range c.prefixes {
			if rest, found := strings.CutPrefix(subject, p); found {
				subject = rest
				stripped = true
				break
			}
		}
		if !stripped {
			return subject, true
		}
	}
}
