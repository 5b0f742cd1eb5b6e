package asm

import (
	"sort"

	"github.com/wolfarch/riscv-llvm/isa"
)

// Match selects the instruction definition whose operand signature
// matches the parsed operands. Definitions are tried in table
// declaration order and the first structurally compatible one wins, so
// table authors control tie-break priority by ordering. Immediate
// ranges are not checked here; the encoder reports those with the
// field's declared range.
func Match(tbl *isa.Table, mnemonic string, ops []Operand) (*isa.InstrDef, error) {
	defs := tbl.Lookup(mnemonic)
	for _, def := range defs {
		if signatureMatches(def, ops) {
			return def, nil
		}
	}
	return nil, ErrNoMatch{Mnemonic: mnemonic, Candidates: nearest(defs, len(ops))}
}

func signatureMatches(def *isa.InstrDef, ops []Operand) bool {
	if len(def.Operands) != len(ops) {
		return false
	}
	for i, spec := range def.Operands {
		op := &ops[i]
		switch spec.Kind {
		case isa.OPERAND_REG:
			if op.Kind != isa.OPERAND_REG {
				return false
			}
			if spec.Class != "" && op.Reg.Class != spec.Class {
				return false
			}
		case isa.OPERAND_IMM:
			if op.Kind != isa.OPERAND_IMM {
				return false
			}
		case isa.OPERAND_TOK:
			if op.Kind != isa.OPERAND_IMM || op.Sym != spec.Token {
				return false
			}
		}
	}
	return true
}

// nearest orders a mnemonic's definitions by arity distance from the
// parsed operand count, keeping declaration order among ties, and
// returns up to three as fix-it candidates.
func nearest(defs []*isa.InstrDef, arity int) []*isa.InstrDef {
	candidates := make([]*isa.InstrDef, len(defs))
	copy(candidates, defs)
	sort.SliceStable(candidates, func(i, j int) bool {
		di := len(candidates[i].Operands) - arity
		dj := len(candidates[j].Operands) - arity
		if di < 0 {
			di = -di
		}
		if dj < 0 {
			dj = -dj
		}
		return di < dj
	})
	if len(candidates) > 3 {
		candidates = candidates[:3]
	}
	return candidates
}
