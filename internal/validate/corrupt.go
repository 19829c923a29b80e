// Package validate rejects rewrites that would corrupt a file: known
// malformed-text signatures left behind by earlier mechanical edits,
// plus a strict re-parse of the modified text.
package validate

import (
	"regexp"
	"strings"

	"tsmend/internal/tsparse"
)

// signature is one known corruption pattern. A match anywhere in the
// file rejects the whole file for this run; no partial-file correction
// is attempted.
type signature struct {
	id string
	re *regexp.Regexp
}

var typeWords = []string{"any", "unknown", "string", "number", "boolean", "object", "never"}

func doubledWordPattern(words []string) string {
	alts := make([]string, 0, len(words))
	for _, w := range words {
		alts = append(alts, w+`\s+`+w)
	}
	return `\b(?:` + strings.Join(alts, "|") + `)\b`
}

var corruptionCatalogue = []signature{
	{"doubled-type-token", regexp.MustCompile(doubledWordPattern(typeWords))},
	{"doubled-colon", regexp.MustCompile(`(?m)[^:\n]::(?:[^:\n]|$)`)},
	{"doubled-as", regexp.MustCompile(`\bas\s+as\b`)},
	{"triple-bracket", regexp.MustCompile(`\[\[\[|\{\{\{`)},
	{"doubled-import", regexp.MustCompile(`(?m)^\s*import\s+import\b`)},
	{"doubled-export", regexp.MustCompile(`(?m)^\s*export\s+export\b`)},
	{"doubled-decl-keyword", regexp.MustCompile(doubledWordPattern([]string{"const", "let", "var"}))},
	{"impossible-assertion", regexp.MustCompile(`\bas\s+(?:string|number|boolean)\s+as\s+(?:string|number|boolean)\b`)},
}

// identPairRE feeds the doubled-identifier check; RE2 has no
// backreferences, so the equality test happens in code.
var identPairRE = regexp.MustCompile(`\b(\w+):\s*(\w+):`)

// Corrupt scans for the corruption catalogue and returns the id of the
// first matching signature.
func Corrupt(text []byte) (string, bool) {
	for _, sig := range corruptionCatalogue {
		if sig.re.Match(text) {
			return sig.id, true
		}
	}
	for _, m := range identPairRE.FindAllSubmatch(text, -1) {
		if string(m[1]) == string(m[2]) {
			return "doubled-identifier", true
		}
	}
	return "", false
}

// ValidSyntax re-parses in strict (non-recovery) mode.
func ValidSyntax(text []byte) bool {
	return tsparse.ValidSyntax(text)
}
