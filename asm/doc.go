// Package asm implements the assembler core: it turns lines of textual
// mnemonic assembly into binary machine instructions and the symbolic
// relocation records needed to finish linking.
//
// A line flows through the lexer, the operand parser (consulting the
// register set and the unit's symbol table), the instruction matcher,
// and the encoder, which packs operand values and fixed fields into
// the instruction word per its format. Operands that depend on symbols
// not yet defined are deferred in pass 1 and finalized in pass 2 —
// numerically when the symbol was defined within the unit, or as a
// relocation record when it stayed external. Errors are collected as
// structured per-line diagnostics; one bad line does not abort the
// unit.
package asm
