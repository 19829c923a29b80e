// Package linefix applies single-line fixes keyed by eslint rule id.
// These predate the type rewriting path and cover the promise-hygiene
// rules: dropping a useless await, voiding a floating promise, and
// wrapping bare async handlers passed to timers.
package linefix

import (
	"regexp"
	"sort"
	"strings"

	"tsmend/internal/diag"
)

// Fixer rewrites one line for one rule family. Ok is false when the
// line does not actually exhibit the pattern (stale diagnostic).
type Fixer struct {
	Rule  string
	Apply func(line string) (fixed string, ok bool)
}

var (
	awaitRE      = regexp.MustCompile(`\bawait\s+`)
	timerAsyncRE = regexp.MustCompile(`\b(setInterval|setTimeout)\(\s*(\w+)\s*,`)
	indentRE     = regexp.MustCompile(`^(\s*)`)
)

// Fixers returns the supported rule fixers. Matching is by rule-id
// substring: tool output prefixes rules with their plugin path.
func Fixers() []Fixer {
	return []Fixer{
		{
			Rule: "await-thenable",
			Apply: func(line string) (string, bool) {
				if !awaitRE.MatchString(line) {
					return line, false
				}
				// только первый await на строке: диагностика точечная
				return awaitRE.ReplaceAllStringFunc(line, replaceOnce(awaitRE, "")), true
			},
		},
		{
			Rule: "no-floating-promises",
			Apply: func(line string) (string, bool) {
				if strings.Contains(line, "void ") {
					return line, false
				}
				indent := indentRE.FindString(line)
				trimmed := strings.TrimLeft(line, " \t")
				if trimmed == "" {
					return line, false
				}
				return indent + "void " + trimmed, true
			},
		},
		{
			Rule: "no-misused-promises",
			Apply: func(line string) (string, bool) {
				if !timerAsyncRE.MatchString(line) {
					return line, false
				}
				return timerAsyncRE.ReplaceAllString(line, "$1(() => void $2(),"), true
			},
		},
	}
}

func replaceOnce(re *regexp.Regexp, with string) func(string) string {
	done := false
	return func(m string) string {
		if done {
			return m
		}
		done = true
		return with
	}
}

// Edit is one applied line fix.
type Edit struct {
	Line uint32
	Rule string
	Old  string
	New  string
}

// Plan matches records against the fixers and orders edits by
// descending line number so earlier edits never shift later ones.
func Plan(records []diag.Record) []diag.Record {
	var planned []diag.Record
	for _, r := range records {
		if _, ok := fixerFor(r.Code); ok {
			planned = append(planned, r)
		}
	}
	sort.SliceStable(planned, func(i, j int) bool {
		return planned[i].Line > planned[j].Line
	})
	return planned
}

func fixerFor(code diag.Code) (Fixer, bool) {
	for _, f := range Fixers() {
		if strings.Contains(string(code), f.Rule) {
			return f, true
		}
	}
	return Fixer{}, false
}

// ApplyTo rewrites a single line of content for a record's rule.
func ApplyTo(line string, code diag.Code) (Edit, bool) {
	f, ok := fixerFor(code)
	if !ok {
		return Edit{}, false
	}
	fixed, ok := f.Apply(line)
	if !ok || fixed == line {
		return Edit{}, false
	}
	return Edit{Rule: f.Rule, Old: line, New: fixed}, true
}
