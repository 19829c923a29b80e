package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrCorrupt means a corruption signature matched the modified text.
	ErrCorrupt = errors.New("corruption signature")
	// ErrSyntax means the modified text no longer parses.
	ErrSyntax = errors.New("syntax validation failed")
	// ErrRedundant means the substitution collided with existing text,
	// leaving a doubled annotation.
	ErrRedundant = errors.New("redundant annotation")
)

// CheckReplacement is the per-site gate, called immediately after one
// substitution and before the next site in the same file. A failure
// discards this one substitution only; the caller reverts to the
// pre-substitution text and keeps going.
func CheckReplacement(after []byte, newType string) error {
	if id, bad := Corrupt(after); bad {
		return fmt.Errorf("%w: %s", ErrCorrupt, id)
	}
	if newType != "" && hasRedundantAnnotation(after, newType) {
		return ErrRedundant
	}
	if !ValidSyntax(after) {
		return ErrSyntax
	}
	return nil
}

// hasRedundantAnnotation looks for the freshly inserted type doubled up
// against an existing copy of itself, e.g. `: unknown unknown` or
// `: Ingredient: Ingredient`.
func hasRedundantAnnotation(text []byte, newType string) bool {
	quoted := regexp.QuoteMeta(strings.TrimSpace(newType))
	doubled := regexp.MustCompile(quoted + `\s+` + quoted)
	if doubled.Match(text) {
		return true
	}
	colonDoubled := regexp.MustCompile(`:\s*` + quoted + `\s*:\s*` + quoted)
	return colonDoubled.Match(text)
}
