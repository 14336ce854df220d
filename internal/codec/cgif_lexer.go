package codec

import (
	"fmt"
	"strconv"
	"strings"
)

// tokenType is the kind of a CGIF token
type tokenType int

const (
	tokEOF tokenType = iota
	tokLBracket
	tokRBracket
	tokLParen
	tokRParen
	tokLAngle
	tokRAngle
	tokBar
	tokColon
	tokComma
	tokLBrace
	tokRBrace
	tokAt
	tokIdent
	tokNumber
	tokString
	tokName
	tokMarker
	tokVarDef
	tokVarRef
	tokComment
)

var tokenNames = map[tokenType]string{
	tokEOF:      "end of input",
	tokLBracket: "'['",
	tokRBracket: "']'",
	tokLParen:   "'('",
	tokRParen:   "')'",
	tokLAngle:   "'<'",
	tokRAngle:   "'>'",
	tokBar:      "'|'",
	tokColon:    "':'",
	tokComma:    "','",
	tokLBrace:   "'{'",
	tokRBrace:   "'}'",
	tokAt:       "'@'",
	tokIdent:    "identifier",
	tokNumber:   "number",
	tokString:   "string",
	tokName:     "name",
	tokMarker:   "marker",
	tokVarDef:   "defining label",
	tokVarRef:   "bound label",
	tokComment:  "comment",
}

func (t tokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(t))
}

type token struct {
	typ  tokenType
	text string
	num  float64
	line int
	col  int
}

// SyntaxError is a CGIF lexing or parsing failure at a 1-based position.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
}

type lexer struct {
	src  string
	cur  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

func (l *lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.src[l.cur]
}

func (l *lexer) advance() byte {
	b := l.src[l.cur]
	l.cur++
	if b == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return b
}

func (l *lexer) skipWhitespace() {
	for !l.isAtEnd() {
		switch l.peek() {
		case ' ', '\t', '\r', '\n':
			l.advance()
		default:
			return
		}
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isAlphaNum(b byte) bool {
	return isAlpha(b) || isDigit(b) || b == '-'
}

func syntaxErrorf(line, col int, format string, args ...any) error {
	return &SyntaxError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) scanWord() string {
	start := l.cur
	for !l.isAtEnd() && isAlphaNum(l.peek()) {
		l.advance()
	}
	return l.src[start:l.cur]
}

// scan tokenizes the whole input
func (l *lexer) scan() ([]token, error) {
	var tokens []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.typ == tokEOF {
			return tokens, nil
		}
	}
}

var punctuation = map[byte]tokenType{
	'[': tokLBracket, ']': tokRBracket,
	'(': tokLParen, ')': tokRParen,
	'<': tokLAngle, '>': tokRAngle,
	'|': tokBar, ':': tokColon, ',': tokComma,
	'{': tokLBrace, '}': tokRBrace, '@': tokAt,
}

func (l *lexer) next() (token, error) {
	l.skipWhitespace()
	line, col := l.line, l.col
	tok := func(tt tokenType, text string) token {
		return token{typ: tt, text: text, line: line, col: col}
	}
	if l.isAtEnd() {
		return tok(tokEOF, ""), nil
	}

	b := l.peek()
	if tt, ok := punctuation[b]; ok {
		l.advance()
		return tok(tt, string(b)), nil
	}

	switch {
	case b == ';':
		l.advance()
		start := l.cur
		for !l.isAtEnd() && l.peek() != ';' {
			if l.peek() == '\\' {
				l.advance()
				if l.isAtEnd() {
					break
				}
			}
			l.advance()
		}
		if l.isAtEnd() {
			return token{}, syntaxErrorf(line, col, "unterminated comment")
		}
		text := l.src[start:l.cur]
		l.advance()
		return tok(tokComment, unescapeName(strings.TrimSpace(text))), nil

	case b == '"':
		s, err := l.scanQuoted('"')
		if err != nil {
			return token{}, syntaxErrorf(line, col, "%v", err)
		}
		v, err := strconv.Unquote(s)
		if err != nil {
			return token{}, syntaxErrorf(line, col, "invalid string literal %s", s)
		}
		return tok(tokString, v), nil

	case b == '\'':
		s, err := l.scanQuoted('\'')
		if err != nil {
			return token{}, syntaxErrorf(line, col, "%v", err)
		}
		return tok(tokName, unescapeName(s[1:len(s)-1])), nil

	case b == '#':
		l.advance()
		id := l.scanWord()
		if id == "" {
			return token{}, syntaxErrorf(line, col, "marker needs an identifier after '#'")
		}
		return tok(tokMarker, id), nil

	case b == '*' || b == '?':
		l.advance()
		id := l.scanWord()
		if id == "" {
			return token{}, syntaxErrorf(line, col, "label needs an identifier after '%c'", b)
		}
		if b == '*' {
			return tok(tokVarDef, id), nil
		}
		return tok(tokVarRef, id), nil

	case b == '-' || isDigit(b):
		return l.scanNumber(line, col)

	case isAlpha(b):
		return tok(tokIdent, l.scanWord()), nil
	}

	return token{}, syntaxErrorf(line, col, "unexpected character %q", b)
}

// scanQuoted returns the raw literal including its delimiters
func (l *lexer) scanQuoted(q byte) (string, error) {
	start := l.cur
	l.advance()
	for !l.isAtEnd() {
		c := l.advance()
		if c == '\\' && !l.isAtEnd() {
			l.advance()
			continue
		}
		if c == q {
			return l.src[start:l.cur], nil
		}
	}
	return "", fmt.Errorf("unterminated %c-quoted literal", q)
}

// unescapeName drops the backslash before any escaped character
func unescapeName(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// escapeName is the inverse of unescapeName
func escapeName(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

// escapeComment protects the comment delimiter; unescapeName reverses it
func escapeComment(s string) string {
	return strings.NewReplacer(`\`, `\\`, `;`, `\;`).Replace(s)
}

func (l *lexer) scanNumber(line, col int) (token, error) {
	start := l.cur
	if l.peek() == '-' {
		l.advance()
	}
	digits := 0
	for !l.isAtEnd() && isDigit(l.peek()) {
		l.advance()
		digits++
	}
	if l.peek() == '.' {
		l.advance()
		for !l.isAtEnd() && isDigit(l.peek()) {
			l.advance()
			digits++
		}
	}
	if digits > 0 && (l.peek() == 'e' || l.peek() == 'E') {
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		for !l.isAtEnd() && isDigit(l.peek()) {
			l.advance()
		}
	}
	text := l.src[start:l.cur]
	v, err := strconv.ParseFloat(text, 64)
	if digits == 0 || err != nil {
		return token{}, syntaxErrorf(line, col, "invalid number %q", text)
	}
	return token{typ: tokNumber, text: text, num: v, line: line, col: col}, nil
}
