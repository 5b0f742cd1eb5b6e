package asm

import (
	"github.com/wolfarch/riscv-llvm/isa"
)

// encode packs a matched definition and its operand values into the
// instruction word. Each operand slot is validated once against its
// declared width, signedness, and alignment, then truncated to two's
// complement and scattered across the slot's bit-field segments. A
// still-deferred operand becomes a relocation record and its field
// bits stay zero for the linker to patch.
func encode(def *isa.InstrDef, ops []Operand, offset int) (word uint32, relocs []RelocationRecord, err error) {
	vals := make(map[string]uint32, len(def.Operands))

	for i := range def.Operands {
		spec := &def.Operands[i]
		op := &ops[i]

		switch spec.Kind {
		case isa.OPERAND_REG:
			id := int64(op.Reg.ID)
			max := int64(1)<<def.Format.SlotBits(spec.Slot) - 1
			if id < 0 || id > max {
				err = ErrImmediateRange{Field: spec.Slot, Min: 0, Max: max, Value: id}
				return
			}
			vals[spec.Slot] = uint32(id)

		case isa.OPERAND_IMM:
			if op.Deferred() {
				var rec RelocationRecord
				rec, err = emitReloc(spec, op, offset)
				if err != nil {
					return
				}
				relocs = append(relocs, rec)
				vals[spec.Slot] = 0
				continue
			}

			value := op.Value
			if spec.PCRel {
				value -= int64(offset)
			}
			if err = checkRange(spec, value); err != nil {
				return
			}
			vals[spec.Slot] = uint32(value) & (uint32(1)<<spec.Bits - 1)
		}
	}

	for _, fld := range def.Format.Fields {
		var v uint32
		if fixed, ok := def.Fixed[fld.Name]; ok {
			v = fixed
		} else if fld.Role == isa.FIELD_SLOT {
			if fixed, ok := def.Fixed[fld.Slot]; ok {
				v = fixed >> fld.Src
			} else {
				v = vals[fld.Slot] >> fld.Src
			}
		}
		word |= (v & fld.Mask()) << fld.Lo
	}

	return
}

// checkRange validates an immediate against its slot's declared range
// and alignment before any truncation happens.
func checkRange(spec *isa.OperandSpec, value int64) error {
	var min, max int64
	if spec.Signed {
		min = -(int64(1) << (spec.Bits - 1))
		max = int64(1)<<(spec.Bits-1) - 1
	} else {
		max = int64(1)<<spec.Bits - 1
	}

	align := int64(1) << spec.Shift
	if value < min || value > max || value%align != 0 {
		return ErrImmediateRange{
			Field: spec.Slot, Min: min, Max: max, Align: align, Value: value,
		}
	}
	return nil
}

// emitReloc turns a never-resolved operand into a relocation record of
// the kind declared for its slot. A deferred operand in a slot with no
// relocation kind is an unresolved-symbol error.
func emitReloc(spec *isa.OperandSpec, op *Operand, offset int) (RelocationRecord, error) {
	sym, addend, ok := op.Expr.Symbol()
	if !ok || spec.Reloc == isa.RELOC_NONE {
		name := sym
		if name == "" {
			_, _, name = op.Expr.Eval(NewSymbolTable())
		}
		return RelocationRecord{}, ErrSymbolUnresolved(name)
	}

	return RelocationRecord{
		Offset: offset,
		Symbol: sym,
		Kind:   spec.Reloc,
		Addend: addend,
	}, nil
}
