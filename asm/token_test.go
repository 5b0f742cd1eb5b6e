package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLexer(t *testing.T) {
	assert := assert.New(t)

	lx := NewLexer("addi x5, x0, -10 # comment")

	table := []Token{
		{Kind: TOK_IDENT, Text: "addi", Offset: 0},
		{Kind: TOK_IDENT, Text: "x5", Offset: 5},
		{Kind: TOK_PUNCT, Text: ",", Offset: 7},
		{Kind: TOK_IDENT, Text: "x0", Offset: 9},
		{Kind: TOK_PUNCT, Text: ",", Offset: 11},
		{Kind: TOK_PUNCT, Text: "-", Offset: 13},
		{Kind: TOK_INT, Text: "10", Offset: 14, Value: 10},
		{Kind: TOK_EOL, Offset: 17},
	}

	for _, want := range table {
		tok, err := lx.Next()
		assert.NoError(err)
		assert.Equal(want, tok)
	}

	// End of line is sticky.
	tok, err := lx.Next()
	assert.NoError(err)
	assert.Equal(TOK_EOL, tok.Kind)
}

func TestLexerKinds(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		Line  string
		Kind  TokenKind
		Text  string
		Value int64
	}){
		{"label:", TOK_IDENT, "label", 0},
		{".equ", TOK_IDENT, ".equ", 0},
		{"_x9$", TOK_IDENT, "_x9", 0},
		{"%x5", TOK_REG, "%x5", 0},
		{"$t0", TOK_REG, "$t0", 0},
		{"42", TOK_INT, "42", 42},
		{"0x7ff", TOK_INT, "0x7ff", 0x7ff},
		{"0o17", TOK_INT, "0o17", 15},
		{"0b101", TOK_INT, "0b101", 5},
		{"'A'", TOK_INT, "'A'", 65},
		{"'\\n'", TOK_INT, "'\\n'", 10},
		{`"hi there"`, TOK_STRING, "hi there", 0},
		{"(", TOK_PUNCT, "(", 0},
		{")", TOK_PUNCT, ")", 0},
		{"+", TOK_PUNCT, "+", 0},
		{"; comment only", TOK_EOL, "", 0},
	}

	for _, want := range table {
		lx := NewLexer(want.Line)
		tok, err := lx.Next()
		assert.NoError(err, want.Line)
		assert.Equal(want.Kind, tok.Kind, want.Line)
		assert.Equal(want.Text, tok.Text, want.Line)
		assert.Equal(want.Value, tok.Value, want.Line)
	}
}

func TestLexerError(t *testing.T) {
	assert := assert.New(t)

	lx := NewLexer("addi @5")
	_, err := lx.Next()
	assert.NoError(err)

	_, err = lx.Next()
	assert.Error(err)
	lexErr, ok := err.(ErrLex)
	assert.True(ok)
	assert.Equal(5, lexErr.Offset)
	assert.Equal('@', lexErr.Char)
}

func TestLexerRestart(t *testing.T) {
	assert := assert.New(t)

	lx := NewLexer("a b c")
	tok, _ := lx.Next()
	assert.Equal("a", tok.Text)

	mark := lx.Mark()
	tok, _ = lx.Next()
	assert.Equal("b", tok.Text)
	tok, _ = lx.Next()
	assert.Equal("c", tok.Text)

	// Re-lexing from a saved offset yields the same tokens.
	lx.Reset(mark)
	tok, _ = lx.Next()
	assert.Equal("b", tok.Text)

	peek, _ := lx.Peek()
	tok, _ = lx.Next()
	assert.Equal(peek, tok)
}
