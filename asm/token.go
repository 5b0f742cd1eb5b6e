package asm

import (
	"strconv"
	"strings"
)

// TokenKind classifies a lexed token.
type TokenKind int

//go:generate go tool stringer -linecomment -type=TokenKind
const (
	TOK_IDENT  = TokenKind(0) // identifier
	TOK_REG    = TokenKind(1) // register
	TOK_INT    = TokenKind(2) // integer
	TOK_STRING = TokenKind(3) // string
	TOK_PUNCT  = TokenKind(4) // punctuation
	TOK_EOL    = TokenKind(5) // end of line
)

// Token is one classified piece of a source line. Tokens live only for
// the duration of that line's processing.
type Token struct {
	Kind   TokenKind
	Text   string
	Offset int   // Byte offset within the line, 0-based.
	Value  int64 // Numeric value (TOK_INT).
}

// Is reports whether the token is the given punctuation.
func (tok Token) Is(punct string) bool {
	return tok.Kind == TOK_PUNCT && tok.Text == punct
}

// Lexer splits one line of assembly text into tokens. It is a pure
// function of the line: Mark and Reset allow re-lexing from any saved
// offset.
type Lexer struct {
	line string
	pos  int
}

const punctuation = ",():+-"

func NewLexer(line string) *Lexer {
	return &Lexer{line: line}
}

// Mark returns the current offset for a later Reset.
func (lx *Lexer) Mark() int {
	return lx.pos
}

// Reset rewinds the lexer to a previously marked offset.
func (lx *Lexer) Reset(pos int) {
	lx.pos = pos
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() (Token, error) {
	mark := lx.pos
	tok, err := lx.Next()
	lx.pos = mark
	return tok, err
}

// Next returns the next token. The line ends at a '#' or ';' comment;
// TOK_EOL is returned from then on.
func (lx *Lexer) Next() (tok Token, err error) {
	for lx.pos < len(lx.line) && (lx.line[lx.pos] == ' ' || lx.line[lx.pos] == '\t') {
		lx.pos++
	}

	tok.Offset = lx.pos
	if lx.pos >= len(lx.line) || lx.line[lx.pos] == '#' || lx.line[lx.pos] == ';' {
		tok.Kind = TOK_EOL
		lx.pos = len(lx.line)
		return
	}

	ch := lx.line[lx.pos]
	switch {
	case strings.IndexByte(punctuation, ch) >= 0:
		tok.Kind = TOK_PUNCT
		tok.Text = lx.line[lx.pos : lx.pos+1]
		lx.pos++

	case isIdentStart(ch):
		tok.Kind = TOK_IDENT
		tok.Text = lx.ident()

	case ch == '%' || ch == '$':
		lx.pos++
		name := lx.ident()
		if name == "" {
			err = ErrLex{Offset: tok.Offset, Char: rune(ch)}
			return
		}
		tok.Kind = TOK_REG
		tok.Text = lx.line[tok.Offset:lx.pos]

	case ch >= '0' && ch <= '9':
		tok.Kind = TOK_INT
		tok.Text = lx.number()
		tok.Value, err = strconv.ParseInt(tok.Text, 0, 64)
		if err != nil {
			err = ErrLex{Offset: tok.Offset, Char: rune(ch)}
			return
		}

	case ch == '\'':
		tok.Kind = TOK_INT
		tok.Text, tok.Value, err = lx.quotedChar(tok.Offset)
		if err != nil {
			return
		}

	case ch == '"':
		tok.Kind = TOK_STRING
		tok.Text, err = lx.quotedString(tok.Offset)
		if err != nil {
			return
		}

	default:
		err = ErrLex{Offset: tok.Offset, Char: rune(ch)}
	}

	return
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ch == '.' ||
		(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdent(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}

func (lx *Lexer) ident() string {
	start := lx.pos
	for lx.pos < len(lx.line) && isIdent(lx.line[lx.pos]) {
		lx.pos++
	}
	return lx.line[start:lx.pos]
}

func (lx *Lexer) number() string {
	start := lx.pos
	for lx.pos < len(lx.line) {
		ch := lx.line[lx.pos]
		isHex := ch == 'x' || ch == 'X' ||
			(ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
		if !(ch >= '0' && ch <= '9') && !isHex && ch != '_' && ch != 'o' && ch != 'b' {
			break
		}
		lx.pos++
	}
	return lx.line[start:lx.pos]
}

func (lx *Lexer) quotedChar(start int) (text string, value int64, err error) {
	lx.pos++ // opening quote
	if lx.pos >= len(lx.line) {
		err = ErrLex{Offset: start, Char: '\''}
		return
	}
	ch := lx.line[lx.pos]
	if ch == '\\' {
		lx.pos++
		if lx.pos >= len(lx.line) {
			err = ErrLex{Offset: start, Char: '\''}
			return
		}
		switch lx.line[lx.pos] {
		case 'n':
			ch = '\n'
		case 'r':
			ch = '\r'
		case 't':
			ch = '\t'
		case '\\':
			ch = '\\'
		case '\'':
			ch = '\''
		case '0':
			ch = 0
		default:
			err = ErrLex{Offset: lx.pos, Char: rune(lx.line[lx.pos])}
			return
		}
	}
	lx.pos++
	if lx.pos >= len(lx.line) || lx.line[lx.pos] != '\'' {
		err = ErrLex{Offset: start, Char: '\''}
		return
	}
	lx.pos++
	return lx.line[start:lx.pos], int64(ch), nil
}

func (lx *Lexer) quotedString(start int) (text string, err error) {
	lx.pos++ // opening quote
	var sb strings.Builder
	for lx.pos < len(lx.line) {
		ch := lx.line[lx.pos]
		if ch == '"' {
			lx.pos++
			return sb.String(), nil
		}
		if ch == '\\' && lx.pos+1 < len(lx.line) {
			lx.pos++
			ch = lx.line[lx.pos]
		}
		sb.WriteByte(ch)
		lx.pos++
	}
	return "", ErrLex{Offset: start, Char: '"'}
}
