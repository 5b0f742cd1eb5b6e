package asm

import (
	"encoding/binary"
	"iter"

	"github.com/wolfarch/riscv-llvm/isa"
)

// RelocationRecord is a patch instruction left for the linker when a
// symbolic value could not be resolved within the unit.
type RelocationRecord struct {
	Offset int    // Byte offset of the instruction within the unit.
	Symbol string // Referenced symbol.
	Kind   isa.RelocKind
	Addend int64
}

// EncodedInstruction is one successfully assembled source line:
// the binary word plus whatever relocation records it produced.
// Immutable after the unit is finalized.
type EncodedInstruction struct {
	Line   int // 1-based source line.
	Offset int // Byte offset within the unit.
	Size   int // Instruction size in bytes, from its format width.
	Word   uint32
	Relocs []RelocationRecord
}

// Unit is the result of assembling one input. The caller receives the
// full diagnostics sequence alongside whatever encoded successfully; a
// unit with error diagnostics is failed regardless.
type Unit struct {
	Name         string
	Instructions []EncodedInstruction
	Diags        Diagnostics
}

// Failed reports whether any error diagnostic was recorded.
func (unit *Unit) Failed() bool {
	return unit.Diags.HasErrors()
}

// Words yields each instruction's byte offset and binary word in
// source order.
func (unit *Unit) Words() iter.Seq2[int, uint32] {
	return func(yield func(offset int, word uint32) bool) {
		for _, inst := range unit.Instructions {
			if !yield(inst.Offset, inst.Word) {
				return
			}
		}
	}
}

// Relocs yields every relocation record of the unit in source order.
func (unit *Unit) Relocs() iter.Seq[RelocationRecord] {
	return func(yield func(RelocationRecord) bool) {
		for _, inst := range unit.Instructions {
			for _, rec := range inst.Relocs {
				if !yield(rec) {
					return
				}
			}
		}
	}
}

// Binary renders the encoded words as little-endian bytes. Each
// instruction contributes exactly the bytes of its format width, so
// the image layout matches the unit's symbol offsets.
func (unit *Unit) Binary() (out []byte) {
	var buf [4]byte
	for _, inst := range unit.Instructions {
		binary.LittleEndian.PutUint32(buf[:], inst.Word)
		out = append(out, buf[:inst.Size]...)
	}
	return
}
