package diag

import (
	"fmt"
)

// Code identifies the rule or diagnostic id emitted by an external tool,
// e.g. "TS2322" or "@typescript-eslint/no-explicit-any".
type Code string

// Record is one compiler/linter finding tied to a file position.
// Records are created by the collector, consumed once per run, and never
// persisted.
type Record struct {
	FilePath string // absolute
	Line     int    // 1-based
	Col      int    // 1-based
	Code     Code
	Message  string
	Severity Severity
}

func (r Record) String() string {
	return fmt.Sprintf("%s:%d:%d: %s %s: %s", r.FilePath, r.Line, r.Col, r.Severity, r.Code, r.Message)
}

// Actionable reports whether the record carries a usable position. The
// parsers gate every Add on it so malformed tool lines never reach the
// engine.
func (r Record) Actionable() bool {
	return r.FilePath != "" && r.Line >= 1 && r.Col >= 1
}
