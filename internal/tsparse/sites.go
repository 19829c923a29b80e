package tsparse

// SiteKind classifies the syntactic context of a located rewrite site.
type SiteKind uint8

const (
	KindVariableDecl SiteKind = iota
	KindFunctionParam
	KindFunctionReturn
	KindInterfaceProp
	KindArrayElement
	KindTypeAssertion
	KindGenericParam
)

func (k SiteKind) String() string {
	switch k {
	case KindVariableDecl:
		return "variable_declaration"
	case KindFunctionParam:
		return "function_parameter"
	case KindFunctionReturn:
		return "function_return"
	case KindInterfaceProp:
		return "interface_property"
	case KindArrayElement:
		return "array_element"
	case KindTypeAssertion:
		return "type_assertion"
	case KindGenericParam:
		return "generic_parameter"
	}
	return "unknown"
}

// Site is one located occurrence eligible for a proposed rewrite.
// CharStart/CharEnd are byte offsets of the `any` token itself; both are
// -1 for sites derived from the regex fallback, where only line-based
// editing is allowed.
type Site struct {
	Kind      SiteKind
	Name      string // identifier, when applicable
	Line      uint32 // 1-based
	CharStart int
	CharEnd   int
}

// HasOffsets reports whether the site supports offset-based editing.
func (s Site) HasOffsets() bool {
	return s.CharStart >= 0 && s.CharEnd > s.CharStart
}

// braceKind tags what an open brace belongs to, so `x: any` inside an
// interface body is distinguished from one inside a function body.
type braceKind uint8

const (
	braceBlock braceKind = iota
	braceTypeBody
)

// extractSites walks the token stream and records every `any` occurrence
// whose context the engine knows how to rewrite. Occurrences in
// expression position (a variable literally named any, property access)
// are left alone.
func extractSites(tokens []Token) []Site {
	var sites []Site
	var braces []braceKind

	for i, tok := range tokens {
		if tok.Kind == TokPunct {
			switch tok.Text {
			case "{":
				braces = append(braces, classifyBrace(tokens, i))
			case "}":
				if len(braces) > 0 {
					braces = braces[:len(braces)-1]
				}
			}
			continue
		}

		if tok.Kind != TokIdent || tok.Text != "any" {
			continue
		}

		site := Site{Line: tok.Line, CharStart: tok.Start, CharEnd: tok.End}

		prev := tokenAt(tokens, i-1)
		next := tokenAt(tokens, i+1)

		switch {
		case prev.Text == "as":
			site.Kind = KindTypeAssertion

		case next.Text == "[" && tokenAt(tokens, i+2).Text == "]":
			site.Kind = KindArrayElement

		case inAngleContext(tokens, i) != "":
			if inAngleContext(tokens, i) == "Array" {
				site.Kind = KindArrayElement
			} else {
				site.Kind = KindGenericParam
			}

		case prev.Text == ":":
			before := i - 2
			// `name?: any` — пропускаем опциональный маркер
			if tokenAt(tokens, before).Text == "?" {
				before--
			}
			anchor := tokenAt(tokens, before)
			switch {
			case anchor.Text == ")":
				site.Kind = KindFunctionReturn
			case anchor.Kind == TokIdent:
				site.Name = anchor.Text
				site.Kind = declKind(tokens, before, braces)
			default:
				continue
			}

		default:
			continue // expression position, not a type annotation
		}

		sites = append(sites, site)
	}
	return sites
}

func tokenAt(tokens []Token, i int) Token {
	if i < 0 || i >= len(tokens) {
		return Token{}
	}
	return tokens[i]
}

// classifyBrace decides whether an open brace starts a type body
// (interface declaration or object type alias) by looking at the tokens
// leading up to it.
func classifyBrace(tokens []Token, braceIdx int) braceKind {
	for j := braceIdx - 1; j >= 0 && j >= braceIdx-6; j-- {
		t := tokens[j]
		if t.Kind == TokPunct {
			switch t.Text {
			case ";", "{", "}", ")":
				return braceBlock
			}
			continue
		}
		if t.Kind == TokIdent {
			if t.Text == "interface" {
				return braceTypeBody
			}
			if t.Text == "type" {
				return braceTypeBody
			}
		}
	}
	return braceBlock
}

// inAngleContext reports the identifier owning the nearest unclosed `<`
// before position i, or "" when the site is not inside type arguments.
// The walk stops at statement boundaries and never crosses lines far.
func inAngleContext(tokens []Token, i int) string {
	depth := 0
	for j := i - 1; j >= 0 && j >= i-40; j-- {
		t := tokens[j]
		if t.Kind != TokPunct {
			continue
		}
		switch t.Text {
		case ">":
			depth++
		case "<":
			if depth == 0 {
				owner := tokenAt(tokens, j-1)
				if owner.Kind == TokIdent {
					return owner.Text
				}
				return ""
			}
			depth--
		case ";", "{", "}", "(", ")", "=>":
			return ""
		}
	}
	return ""
}

// declKind resolves `name: any` to parameter, property, or variable by
// the innermost enclosing bracket.
func declKind(tokens []Token, nameIdx int, braces []braceKind) SiteKind {
	// незакрытая скобка между началом statement и сайтом → параметр
	parens := 0
	for j := nameIdx - 1; j >= 0; j-- {
		t := tokens[j]
		if t.Kind != TokPunct {
			if t.Kind == TokIdent {
				switch t.Text {
				case "let", "const", "var":
					if parens == 0 {
						return KindVariableDecl
					}
				}
			}
			continue
		}
		switch t.Text {
		case ")":
			parens++
		case "(":
			if parens == 0 {
				return KindFunctionParam
			}
			parens--
		case ";", "{", "}":
			if parens == 0 {
				if len(braces) > 0 && braces[len(braces)-1] == braceTypeBody {
					return KindInterfaceProp
				}
				return KindVariableDecl
			}
		}
	}
	if len(braces) > 0 && braces[len(braces)-1] == braceTypeBody {
		return KindInterfaceProp
	}
	return KindVariableDecl
}
