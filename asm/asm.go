package asm

import (
	"bufio"
	"io"
	"log"

	"github.com/wolfarch/riscv-llvm/isa"
)

// Assembler assembles units against a shared read-only Description
// Table. The zero value uses the built-in RV32I table. One Assembler
// may serve any number of concurrent units; all per-unit state lives in
// the Unit and its symbol table.
type Assembler struct {
	Table     *isa.Table // Description table; nil selects isa.RV32I().
	Verbose   bool       // If set, logs lines as they are processed.
	MaxErrors int        // Abort the unit after this many errors; 0 is no limit.
}

// pending is an instruction whose operands referenced symbols that were
// still undefined in pass 1.
type pending struct {
	index int // Position in the unit's instruction list.
	line  int
	def   *isa.InstrDef
	ops   []Operand
}

// unitState is the working state of one unit's assembly.
type unitState struct {
	as     *Assembler
	tbl    *isa.Table
	st     *SymbolTable
	unit   *Unit
	pend   []pending
	offset int
}

// Assemble runs the two-pass assembly of one unit. Pass 1 processes
// lines in source order, encoding what it can and queueing instructions
// with unresolved operands; pass 2 revisits only those against the
// complete symbol table, finalizing values or emitting relocations.
// Per-line errors are recorded as diagnostics and the line is skipped;
// the returned error covers input failures only.
func (as *Assembler) Assemble(name string, input io.Reader) (*Unit, error) {
	us := &unitState{
		as:   as,
		tbl:  as.Table,
		st:   NewSymbolTable(),
		unit: &Unit{Name: name},
	}
	if us.tbl == nil {
		us.tbl = isa.RV32I()
	}

	scanner := bufio.NewScanner(input)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()

		if as.Verbose {
			log.Printf("%v:%v: %v", name, lineno, line)
		}

		us.line(line, lineno)

		if as.MaxErrors > 0 && us.errors() >= as.MaxErrors {
			us.unit.Diags.Append(SEV_ERROR, lineno, 1, ErrUnitAborted.Error())
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return us.unit, err
	}

	us.finish()

	return us.unit, nil
}

func (us *unitState) errors() (count int) {
	for _, d := range us.unit.Diags {
		if d.Severity == SEV_ERROR {
			count++
		}
	}
	return
}

// line runs pass 1 for a single source line.
func (us *unitState) line(line string, lineno int) {
	lx := NewLexer(line)

	tok, err := lx.Next()
	if err != nil {
		us.unit.Diags.Error(lineno, err)
		return
	}

	// Leading labels define symbols at the current offset.
	for tok.Kind == TOK_IDENT {
		mark := lx.Mark()
		next, err := lx.Next()
		if err != nil {
			us.unit.Diags.Error(lineno, err)
			return
		}
		if !next.Is(":") {
			lx.Reset(mark)
			break
		}
		if !us.define(tok.Text, int64(us.offset), lineno, tok.Offset+1) {
			return
		}
		tok, err = lx.Next()
		if err != nil {
			us.unit.Diags.Error(lineno, err)
			return
		}
	}

	if tok.Kind == TOK_EOL {
		return
	}

	if tok.Kind == TOK_IDENT && tok.Text == ".equ" {
		us.equ(lx, lineno)
		return
	}

	if tok.Kind != TOK_IDENT {
		us.unit.Diags.Error(lineno, ErrOperandSyntax{
			Offset: tok.Offset, Got: tok, Want: "mnemonic",
		})
		return
	}

	ops, err := parseOperands(lx, us.tbl, us.st)
	if err != nil {
		us.unit.Diags.Error(lineno, err)
		return
	}

	def, err := Match(us.tbl, tok.Text, ops)
	if err != nil {
		us.unit.Diags.Error(lineno, err)
		return
	}

	index := len(us.unit.Instructions)
	size := def.Format.Width / 8
	us.unit.Instructions = append(us.unit.Instructions, EncodedInstruction{
		Line: lineno, Offset: us.offset, Size: size,
	})

	deferred := false
	for i := range ops {
		if ops[i].Deferred() {
			deferred = true
			break
		}
	}
	if deferred {
		us.pend = append(us.pend, pending{index: index, line: lineno, def: def, ops: ops})
		us.offset += size
		return
	}

	word, relocs, err := encode(def, ops, us.unit.Instructions[index].Offset)
	if err != nil {
		us.unit.Diags.Error(lineno, err)
		us.unit.Instructions = us.unit.Instructions[:index]
		return
	}

	us.unit.Instructions[index].Word = word
	us.unit.Instructions[index].Relocs = relocs
	us.offset += size
}

// define enters a symbol and warns when the name shadows a register,
// since operand parsing resolves register names first and a shadowed
// symbol can never be referenced.
func (us *unitState) define(name string, value int64, lineno, col int) bool {
	if err := us.st.Define(name, value); err != nil {
		us.unit.Diags.Error(lineno, err)
		return false
	}
	if _, ok := us.tbl.Register(name); ok {
		us.unit.Diags.Append(SEV_WARNING, lineno, col,
			f("symbol %v shadows a register name", name))
	}
	return true
}

// equ handles '.equ NAME EXPR'. The expression must resolve with the
// symbols defined so far.
func (us *unitState) equ(lx *Lexer, lineno int) {
	nameTok, err := lx.Next()
	if err != nil {
		us.unit.Diags.Error(lineno, err)
		return
	}
	if nameTok.Kind != TOK_IDENT {
		us.unit.Diags.Error(lineno, ErrEquateSyntax)
		return
	}

	first, err := lx.Next()
	if err != nil {
		us.unit.Diags.Error(lineno, err)
		return
	}
	if first.Kind == TOK_EOL {
		us.unit.Diags.Error(lineno, ErrEquateSyntax)
		return
	}

	expr, err := parseExpr(lx, first)
	if err != nil {
		us.unit.Diags.Error(lineno, err)
		return
	}

	trailing, err := lx.Next()
	if err != nil {
		us.unit.Diags.Error(lineno, err)
		return
	}
	if trailing.Kind != TOK_EOL {
		us.unit.Diags.Error(lineno, ErrOperandSyntax{
			Offset: trailing.Offset, Got: trailing, Want: "end of line",
		})
		return
	}

	value, ok, missing := expr.Eval(us.st)
	if !ok {
		us.unit.Diags.Error(lineno, ErrSymbolUnresolved(missing))
		return
	}

	us.define(nameTok.Text, value, lineno, nameTok.Offset+1)
}

// finish runs pass 2: only the instructions with deferred operands are
// revisited, now that every label of the unit is known.
func (us *unitState) finish() {
	var drop map[int]bool

	for _, p := range us.pend {
		for i := range p.ops {
			p.ops[i].resolve(us.st)
		}

		inst := &us.unit.Instructions[p.index]
		word, relocs, err := encode(p.def, p.ops, inst.Offset)
		if err != nil {
			us.unit.Diags.Error(p.line, err)
			if drop == nil {
				drop = make(map[int]bool)
			}
			drop[p.index] = true
			continue
		}
		inst.Word = word
		inst.Relocs = relocs
	}

	if len(drop) > 0 {
		kept := us.unit.Instructions[:0]
		for n := range us.unit.Instructions {
			if !drop[n] {
				kept = append(kept, us.unit.Instructions[n])
			}
		}
		us.unit.Instructions = kept
	}
}
