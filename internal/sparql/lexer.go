package sparql

import (
	"fmt"
	"strings"
)

type tokKind int

const (
	tokEOF tokKind = iota
	tokLBrace
	tokRBrace
	tokLParen
	tokRParen
	tokDot
	tokSemicolon
	tokComma
	tokStar
	tokIRI     // <...> with brackets stripped
	tokPName   // prefix:local or prefix:
	tokVar     // ?x / $x with sigil stripped
	tokString  // quoted literal, unescaped
	tokLang    // @tag with sigil stripped
	tokDTStart // ^^
	tokNumber
	tokBlank // _:label with sigil stripped
	tokA     // the 'a' predicate shorthand
	tokKeyword
	tokOp // operator run inside FILTER expressions
)

type token struct {
	kind tokKind
	text string
}

type lexer struct {
	input  string
	pos    int
	peeked *token
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

func (l *lexer) peek() (token, error) {
	if l.peeked == nil {
		tok, err := l.scan()
		if err != nil {
			return token{}, err
		}
		l.peeked = &tok
	}
	return *l.peeked, nil
}

func (l *lexer) next() (token, error) {
	if l.peeked != nil {
		tok := *l.peeked
		l.peeked = nil
		return tok, nil
	}
	return l.scan()
}

func (l *lexer) scan() (token, error) {
	l.skipSpace()
	if l.pos >= len(l.input) {
		return token{kind: tokEOF}, nil
	}

	c := l.input[l.pos]
	switch c {
	case '{':
		l.pos++
		return token{tokLBrace, "{"}, nil
	case '}':
		l.pos++
		return token{tokRBrace, "}"}, nil
	case '(':
		l.pos++
		return token{tokLParen, "("}, nil
	case ')':
		l.pos++
		return token{tokRParen, ")"}, nil
	case '.':
		if l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1]) {
			return l.scanNumber()
		}
		l.pos++
		return token{tokDot, "."}, nil
	case ';':
		l.pos++
		return token{tokSemicolon, ";"}, nil
	case ',':
		l.pos++
		return token{tokComma, ","}, nil
	case '*':
		l.pos++
		return token{tokStar, "*"}, nil
	case '?', '$':
		return l.scanVar()
	case '<':
		return l.scanIRIOrOp()
	case '"', '\'':
		return l.scanString(c)
	case '@':
		return l.scanLang()
	case '^':
		if strings.HasPrefix(l.input[l.pos:], "^^") {
			l.pos += 2
			return token{tokDTStart, "^^"}, nil
		}
		l.pos++
		return token{tokOp, "^"}, nil
	case '_':
		if strings.HasPrefix(l.input[l.pos:], "_:") {
			return l.scanBlank()
		}
	}

	if isDigit(c) || ((c == '+' || c == '-') && l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1])) {
		return l.scanNumber()
	}
	if isWordStart(c) {
		return l.scanWord()
	}
	if isOpChar(c) {
		start := l.pos
		for l.pos < len(l.input) && isOpChar(l.input[l.pos]) {
			l.pos++
		}
		return token{tokOp, l.input[start:l.pos]}, nil
	}

	return token{}, fmt.Errorf("unexpected character %q at offset %d", c, l.pos)
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == '#' {
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
			continue
		}
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			l.pos++
			continue
		}
		return
	}
}

func (l *lexer) scanVar() (token, error) {
	l.pos++ // sigil
	start := l.pos
	for l.pos < len(l.input) && isWordChar(l.input[l.pos]) {
		l.pos++
	}
	if l.pos == start {
		return token{}, fmt.Errorf("empty variable name at offset %d", start)
	}
	return token{tokVar, l.input[start:l.pos]}, nil
}

// scanIRIOrOp disambiguates '<': an IRI runs to '>' with no whitespace;
// anything else is a comparison operator.
func (l *lexer) scanIRIOrOp() (token, error) {
	for i := l.pos + 1; i < len(l.input); i++ {
		c := l.input[i]
		if c == '>' {
			iri := l.input[l.pos+1 : i]
			l.pos = i + 1
			return token{tokIRI, iri}, nil
		}
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '"' {
			break
		}
	}
	start := l.pos
	for l.pos < len(l.input) && isOpChar(l.input[l.pos]) {
		l.pos++
	}
	if l.pos == start {
		l.pos++
	}
	return token{tokOp, l.input[start:l.pos]}, nil
}

func (l *lexer) scanString(quote byte) (token, error) {
	var b strings.Builder
	i := l.pos + 1
	for i < len(l.input) {
		c := l.input[i]
		if c == '\\' && i+1 < len(l.input) {
			switch l.input[i+1] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(l.input[i+1])
			}
			i += 2
			continue
		}
		if c == quote {
			l.pos = i + 1
			return token{tokString, b.String()}, nil
		}
		b.WriteByte(c)
		i++
	}
	return token{}, fmt.Errorf("unterminated string literal at offset %d", l.pos)
}

func (l *lexer) scanLang() (token, error) {
	start := l.pos + 1
	i := start
	for i < len(l.input) && (isLetter(l.input[i]) || l.input[i] == '-') {
		i++
	}
	if i == start {
		return token{}, fmt.Errorf("empty language tag at offset %d", l.pos)
	}
	l.pos = i
	return token{tokLang, l.input[start:i]}, nil
}

func (l *lexer) scanBlank() (token, error) {
	start := l.pos + 2
	i := start
	for i < len(l.input) && isWordChar(l.input[i]) {
		i++
	}
	l.pos = i
	return token{tokBlank, l.input[start:i]}, nil
}

func (l *lexer) scanNumber() (token, error) {
	start := l.pos
	if l.input[l.pos] == '+' || l.input[l.pos] == '-' {
		l.pos++
	}
	for l.pos < len(l.input) && (isDigit(l.input[l.pos]) || l.input[l.pos] == '.') {
		l.pos++
	}
	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		l.pos++
		if l.pos < len(l.input) && (l.input[l.pos] == '+' || l.input[l.pos] == '-') {
			l.pos++
		}
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	return token{tokNumber, l.input[start:l.pos]}, nil
}

// scanWord reads an identifier: a keyword, the 'a' shorthand, or a
// prefixed name when it contains a colon.
func (l *lexer) scanWord() (token, error) {
	start := l.pos
	for l.pos < len(l.input) && (isWordChar(l.input[l.pos]) || l.input[l.pos] == ':' || l.input[l.pos] == '-') {
		l.pos++
	}
	word := l.input[start:l.pos]
	if strings.Contains(word, ":") {
		return token{tokPName, word}, nil
	}
	if word == "a" {
		return token{tokA, "a"}, nil
	}
	return token{tokKeyword, strings.ToUpper(word)}, nil
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isWordStart(c byte) bool {
	return isLetter(c) || c == '_' || c >= 0x80
}
func isWordChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_' || c >= 0x80
}
func isOpChar(c byte) bool {
	switch c {
	case '=', '!', '<', '>', '&', '|', '+', '-', '/', '^':
		return true
	default:
		return false
	}
}
