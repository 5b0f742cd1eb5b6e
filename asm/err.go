package asm

import (
	"errors"
	"strings"

	"github.com/wolfarch/riscv-llvm/isa"
	"github.com/wolfarch/riscv-llvm/translate"
)

var f = translate.From

var (
	ErrEquateSyntax = errors.New(f(".equ syntax"))
	ErrUnitAborted  = errors.New(f("unit aborted: too many errors"))
)

// ErrLex reports an unrecognized character class at a line offset.
type ErrLex struct {
	Offset int
	Char   rune
}

func (err ErrLex) Error() string {
	return f("unexpected character %q at column %v", err.Char, err.Offset+1)
}

// ErrOperandSyntax reports a malformed operand list.
type ErrOperandSyntax struct {
	Offset int
	Got    Token
	Want   string
}

func (err ErrOperandSyntax) Error() string {
	if err.Got.Kind == TOK_EOL {
		return f("want %v at column %v, got end of line", err.Want, err.Offset+1)
	}
	return f("want %v at column %v, got %v '%v'",
		err.Want, err.Offset+1, err.Got.Kind, err.Got.Text)
}

// ErrSymbolDuplicate reports a second definition of a symbol.
type ErrSymbolDuplicate string

func (err ErrSymbolDuplicate) Error() string {
	return f("symbol %v already defined", string(err))
}

// ErrSymbolUnresolved reports a symbol that never resolved and had no
// relocation kind to fall back on.
type ErrSymbolUnresolved string

func (err ErrSymbolUnresolved) Error() string {
	return f("symbol %v unresolved", string(err))
}

// ErrNoMatch reports a mnemonic whose parsed operands fit none of its
// definitions. Candidates holds the nearest signatures by arity.
type ErrNoMatch struct {
	Mnemonic   string
	Candidates []*isa.InstrDef
}

func (err ErrNoMatch) Error() string {
	if len(err.Candidates) == 0 {
		return f("unknown instruction %v", err.Mnemonic)
	}
	hints := make([]string, len(err.Candidates))
	for n, def := range err.Candidates {
		hints[n] = "'" + def.Render() + "'"
	}
	return f("no matching form of %v; closest: %v",
		err.Mnemonic, strings.Join(hints, ", "))
}

// ErrImmediateRange reports a value outside its field's declared range,
// or one that violates the field's alignment.
type ErrImmediateRange struct {
	Field string
	Min   int64
	Max   int64
	Align int64 // Required multiple, 0 or 1 when unconstrained.
	Value int64
}

func (err ErrImmediateRange) Error() string {
	if err.Align > 1 && err.Value%err.Align != 0 {
		return f("immediate %v for field %v must be a multiple of %v",
			err.Value, err.Field, err.Align)
	}
	return f("immediate %v out of range [%v, %v] for field %v",
		err.Value, err.Min, err.Max, err.Field)
}
