package asm

import (
	"github.com/wolfarch/riscv-llvm/isa"
)

// Operand is one parsed operand. An immediate starts out deferred when
// its expression references a symbol not yet defined; Expr stays nil
// once the value is concrete.
type Operand struct {
	Kind   isa.OperandKind
	Reg    *isa.Register // OPERAND_REG.
	Value  int64         // OPERAND_IMM, once resolved.
	Expr   *Expr         // Retained expression while deferred.
	Sym    string        // Bare single-symbol text, for token matching.
	Offset int           // Source column of the operand, 0-based.
}

// Deferred reports whether the operand still waits on a symbol.
func (op *Operand) Deferred() bool {
	return op.Expr != nil
}

// resolve retries a deferred operand against the symbol table.
func (op *Operand) resolve(st *SymbolTable) {
	if op.Expr == nil {
		return
	}
	if value, ok, _ := op.Expr.Eval(st); ok {
		op.Value = value
		op.Expr = nil
	}
}

// parseOperands consumes the comma-separated operand list positioned
// right after the mnemonic, through end of line. Memory-style operands
// of the form imm(reg) decompose into an immediate followed by a
// register.
func parseOperands(lx *Lexer, tbl *isa.Table, st *SymbolTable) (ops []Operand, err error) {
	tok, err := lx.Next()
	if err != nil {
		return
	}
	if tok.Kind == TOK_EOL {
		return
	}

	for {
		ops, err = parseOperand(lx, tbl, st, tok, ops)
		if err != nil {
			return
		}

		var sep Token
		sep, err = lx.Next()
		if err != nil {
			return
		}
		if sep.Kind == TOK_EOL {
			return
		}
		if !sep.Is(",") {
			err = ErrOperandSyntax{Offset: sep.Offset, Got: sep, Want: "','"}
			return
		}

		tok, err = lx.Next()
		if err != nil {
			return
		}
		if tok.Kind == TOK_EOL {
			err = ErrOperandSyntax{Offset: tok.Offset, Got: tok, Want: "operand"}
			return
		}
	}
}

func parseOperand(lx *Lexer, tbl *isa.Table, st *SymbolTable, tok Token, ops []Operand) ([]Operand, error) {
	if tok.Kind == TOK_REG || tok.Kind == TOK_IDENT {
		if reg, ok := tbl.Register(tok.Text); ok {
			return append(ops, Operand{
				Kind: isa.OPERAND_REG, Reg: reg, Offset: tok.Offset,
			}), nil
		}
		if tok.Kind == TOK_REG {
			return nil, ErrOperandSyntax{Offset: tok.Offset, Got: tok, Want: "register"}
		}
	}

	switch {
	case tok.Kind == TOK_INT || tok.Kind == TOK_IDENT || tok.Is("+") || tok.Is("-"):
		// fall through to expression

	default:
		return nil, ErrOperandSyntax{Offset: tok.Offset, Got: tok, Want: "operand"}
	}

	expr, err := parseExpr(lx, tok)
	if err != nil {
		return nil, err
	}

	op := Operand{Kind: isa.OPERAND_IMM, Expr: expr, Offset: tok.Offset}
	if len(expr.terms) == 1 && !expr.terms[0].neg {
		op.Sym = expr.terms[0].sym
	}
	op.resolve(st)
	ops = append(ops, op)

	// imm(reg) memory form.
	open, err := lx.Peek()
	if err != nil {
		return nil, err
	}
	if !open.Is("(") {
		return ops, nil
	}
	lx.Next()

	rtok, err := lx.Next()
	if err != nil {
		return nil, err
	}
	reg, ok := tbl.Register(rtok.Text)
	if !ok || (rtok.Kind != TOK_REG && rtok.Kind != TOK_IDENT) {
		return nil, ErrOperandSyntax{Offset: rtok.Offset, Got: rtok, Want: "register"}
	}

	closing, err := lx.Next()
	if err != nil {
		return nil, err
	}
	if !closing.Is(")") {
		return nil, ErrOperandSyntax{Offset: closing.Offset, Got: closing, Want: "')'"}
	}

	return append(ops, Operand{
		Kind: isa.OPERAND_REG, Reg: reg, Offset: rtok.Offset,
	}), nil
}

// parseExpr parses a left-to-right '+'/'-' chain of integer literals
// and symbol references, starting from an already-consumed first token.
func parseExpr(lx *Lexer, first Token) (*Expr, error) {
	expr := &Expr{}

	tok := first
	neg := false
	for tok.Is("+") || tok.Is("-") {
		if tok.Is("-") {
			neg = !neg
		}
		var err error
		tok, err = lx.Next()
		if err != nil {
			return nil, err
		}
	}

	for {
		switch tok.Kind {
		case TOK_INT:
			expr.terms = append(expr.terms, exprTerm{neg: neg, val: tok.Value})
		case TOK_IDENT:
			expr.terms = append(expr.terms, exprTerm{neg: neg, sym: tok.Text})
		default:
			return nil, ErrOperandSyntax{Offset: tok.Offset, Got: tok, Want: "expression term"}
		}

		op, err := lx.Peek()
		if err != nil {
			return nil, err
		}
		if !op.Is("+") && !op.Is("-") {
			return expr, nil
		}
		lx.Next()
		neg = op.Is("-")

		tok, err = lx.Next()
		if err != nil {
			return nil, err
		}
	}
}
