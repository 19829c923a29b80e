// Package tsparse provides a lightweight TypeScript scanner used to
// locate rewrite sites and to validate syntax before and after edits.
// It is not a full parser: it tokenizes with byte offsets, tracks the
// bracket structure, and recognizes the handful of constructs the
// rewrite engine cares about.
package tsparse

// TokenKind classifies scanner output.
type TokenKind uint8

const (
	TokIdent TokenKind = iota
	TokNumber
	TokString
	TokTemplate
	TokRegex
	TokPunct
)

// Token is one lexical unit with half-open byte offsets into the source.
type Token struct {
	Kind  TokenKind
	Text  string
	Start int
	End   int
	Line  uint32 // 1-based line of the token start
}

// ScanError records a recoverable lexical problem (unterminated string,
// stray byte). The scanner resynchronizes and keeps going.
type ScanError struct {
	Offset int
	Line   uint32
	Msg    string
}

func (e ScanError) Error() string {
	return e.Msg
}
