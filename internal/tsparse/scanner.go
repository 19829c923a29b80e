package tsparse

// Scan tokenizes TypeScript/TSX source with error recovery: a bad or
// unterminated token is recorded as a ScanError and scanning resumes at
// the next line. Comments and whitespace are dropped.
func Scan(src []byte) ([]Token, []ScanError) {
	s := &scanner{src: src, line: 1}
	s.run()
	return s.tokens, s.errs
}

type scanner struct {
	src    []byte
	pos    int
	line   uint32
	tokens []Token
	errs   []ScanError
}

func (s *scanner) run() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '\n':
			s.line++
			s.pos++
		case c == ' ' || c == '\t' || c == '\r':
			s.pos++
		case c == '/' && s.peek(1) == '/':
			s.skipLineComment()
		case c == '/' && s.peek(1) == '*':
			s.skipBlockComment()
		case c == '/' && s.regexPossible():
			s.scanRegex()
		case c == '\'' || c == '"':
			s.scanString(c)
		case c == '`':
			s.scanTemplate()
		case isIdentStart(c):
			s.scanIdent()
		case c >= '0' && c <= '9':
			s.scanNumber()
		default:
			s.scanPunct()
		}
	}
}

func (s *scanner) peek(ahead int) byte {
	if s.pos+ahead < len(s.src) {
		return s.src[s.pos+ahead]
	}
	return 0
}

func (s *scanner) emit(kind TokenKind, start int, startLine uint32) {
	s.tokens = append(s.tokens, Token{
		Kind:  kind,
		Text:  string(s.src[start:s.pos]),
		Start: start,
		End:   s.pos,
		Line:  startLine,
	})
}

func (s *scanner) fail(offset int, msg string) {
	s.errs = append(s.errs, ScanError{Offset: offset, Line: s.line, Msg: msg})
}

func (s *scanner) skipLineComment() {
	for s.pos < len(s.src) && s.src[s.pos] != '\n' {
		s.pos++
	}
}

func (s *scanner) skipBlockComment() {
	start := s.pos
	s.pos += 2
	for s.pos < len(s.src) {
		if s.src[s.pos] == '\n' {
			s.line++
		}
		if s.src[s.pos] == '*' && s.peek(1) == '/' {
			s.pos += 2
			return
		}
		s.pos++
	}
	s.fail(start, "unterminated block comment")
}

func (s *scanner) scanString(quote byte) {
	start := s.pos
	startLine := s.line
	s.pos++
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '\\' {
			s.pos += 2
			continue
		}
		if c == quote {
			s.pos++
			s.emit(TokString, start, startLine)
			return
		}
		if c == '\n' {
			// ресинхронизация: бросаем токен, продолжаем со следующей строки
			s.fail(start, "unterminated string literal")
			return
		}
		s.pos++
	}
	s.fail(start, "unterminated string literal")
}

// scanTemplate consumes a template literal as a single coarse token,
// balancing ${...} interpolations. Code inside interpolations is not
// re-tokenized; rewrite sites never live there.
func (s *scanner) scanTemplate() {
	start := s.pos
	startLine := s.line
	s.pos++
	braceDepth := 0
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '\\':
			s.pos += 2
			continue
		case c == '\n':
			s.line++
		case c == '$' && s.peek(1) == '{':
			braceDepth++
			s.pos++
		case c == '}' && braceDepth > 0:
			braceDepth--
		case c == '`' && braceDepth == 0:
			s.pos++
			s.emit(TokTemplate, start, startLine)
			return
		}
		s.pos++
	}
	s.fail(start, "unterminated template literal")
}

// regexPossible reports whether a '/' at the current position can start a
// regex literal, judged by the previous significant token.
func (s *scanner) regexPossible() bool {
	if len(s.tokens) == 0 {
		return true
	}
	prev := s.tokens[len(s.tokens)-1]
	switch prev.Kind {
	case TokIdent:
		switch prev.Text {
		case "return", "typeof", "case", "in", "of", "instanceof", "new", "delete", "void", "throw":
			return true
		}
		return false
	case TokNumber, TokString, TokTemplate, TokRegex:
		return false
	case TokPunct:
		switch prev.Text {
		case ")", "]", "}":
			return false
		}
		return true
	}
	return true
}

func (s *scanner) scanRegex() {
	start := s.pos
	startLine := s.line
	s.pos++
	inClass := false
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '\\' {
			s.pos += 2
			continue
		}
		if c == '\n' {
			s.fail(start, "unterminated regex literal")
			return
		}
		if c == '[' {
			inClass = true
		} else if c == ']' {
			inClass = false
		} else if c == '/' && !inClass {
			s.pos++
			// флаги
			for s.pos < len(s.src) && isIdentPart(s.src[s.pos]) {
				s.pos++
			}
			s.emit(TokRegex, start, startLine)
			return
		}
		s.pos++
	}
	s.fail(start, "unterminated regex literal")
}

func (s *scanner) scanIdent() {
	start := s.pos
	startLine := s.line
	for s.pos < len(s.src) && isIdentPart(s.src[s.pos]) {
		s.pos++
	}
	s.emit(TokIdent, start, startLine)
}

func (s *scanner) scanNumber() {
	start := s.pos
	startLine := s.line
	for s.pos < len(s.src) && (isIdentPart(s.src[s.pos]) || s.src[s.pos] == '.') {
		s.pos++
	}
	s.emit(TokNumber, start, startLine)
}

// multi-char punctuation the site walker depends on; everything else is
// emitted one byte at a time.
func (s *scanner) scanPunct() {
	start := s.pos
	startLine := s.line
	c := s.src[s.pos]

	two := ""
	if s.pos+1 < len(s.src) {
		two = string(s.src[s.pos : s.pos+2])
	}
	switch two {
	case "=>", "?.", "??", "&&", "||", "==", "!=", "<=", ">=", "+=", "-=", "**":
		s.pos += 2
		s.emit(TokPunct, start, startLine)
		return
	}

	if c >= 0x80 {
		// не-ASCII вне строк: пропускаем байт с ошибкой
		s.fail(start, "unexpected byte outside literal")
		s.pos++
		return
	}

	s.pos++
	s.emit(TokPunct, start, startLine)
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
