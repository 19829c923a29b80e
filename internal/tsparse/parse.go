package tsparse

// Mode tags how a Tree was produced. Offset-based editing is only legal
// on ModeFull trees.
type Mode uint8

const (
	// ModeFull means the scanner succeeded and sites carry byte offsets.
	ModeFull Mode = iota
	// ModeDegraded means the regex fallback ran; sites are line-only.
	ModeDegraded
)

func (m Mode) String() string {
	if m == ModeDegraded {
		return "degraded"
	}
	return "full"
}

// Tree is the parse result for one file.
type Tree struct {
	Mode     Mode
	Path     string
	Sites    []Site
	ScanErrs []ScanError
}

// maxRecoverableErrors bounds how many lexical problems the full path
// tolerates before handing the file to the regex fallback.
const maxRecoverableErrors = 5

// Parse scans the source and extracts rewrite sites. A handful of local
// scan errors is tolerated (error recovery); past that, or when the
// bracket structure is hopeless, the regex fallback takes over.
func Parse(src []byte, path string) *Tree {
	tokens, errs := Scan(src)

	if len(errs) > maxRecoverableErrors || !bracketsBalanced(tokens) {
		return &Tree{
			Mode:     ModeDegraded,
			Path:     path,
			Sites:    extractSitesDegraded(src),
			ScanErrs: errs,
		}
	}

	return &Tree{
		Mode:     ModeFull,
		Path:     path,
		Sites:    extractSites(tokens),
		ScanErrs: errs,
	}
}

// ValidSyntax re-scans in strict mode: zero scan errors and balanced
// brackets. Used as the gate before and after rewriting.
func ValidSyntax(src []byte) bool {
	tokens, errs := Scan(src)
	if len(errs) > 0 {
		return false
	}
	return bracketsBalanced(tokens)
}

// bracketsBalanced checks (), [], {} discipline over the token stream.
// Angle brackets are excluded: comparison operators make them
// undecidable without a real parser.
func bracketsBalanced(tokens []Token) bool {
	var stack []byte
	pairs := map[byte]byte{')': '(', ']': '[', '}': '{'}

	for _, tok := range tokens {
		if tok.Kind != TokPunct || len(tok.Text) != 1 {
			continue
		}
		c := tok.Text[0]
		switch c {
		case '(', '[', '{':
			stack = append(stack, c)
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != pairs[c] {
				return false
			}
			stack = stack[:len(stack)-1]
		}
	}
	return len(stack) == 0
}
