package isa

import (
	"strings"
)

// RegisterID is the numeric encoding of a register.
type RegisterID int

// Register describes one architectural register.
type Register struct {
	ID    RegisterID // Numeric encoding.
	Name  string     // Canonical name ("x5").
	Alt   []string   // Alternate (ABI) names ("t0").
	Class string     // Register class ("x").
}

// FieldRole is the role a bit-field plays within a format.
type FieldRole int

//go:generate go tool stringer -linecomment -type=FieldRole
const (
	FIELD_OPCODE = FieldRole(0) // opcode
	FIELD_FUNCT  = FieldRole(1) // funct
	FIELD_SLOT   = FieldRole(2) // slot
)

// Field is a named, fixed-position bit range within an instruction word.
// Operand-slot fields draw their value from the operand slot named Slot,
// starting at bit Src of the slot value. Split immediates are expressed
// as several fields sharing one slot with different Src offsets.
type Field struct {
	Name string
	Hi   int // High bit position in the word, inclusive.
	Lo   int // Low bit position in the word, inclusive.
	Role FieldRole
	Slot string // Operand slot (FIELD_SLOT only).
	Src  int    // Low bit of the slot value this field encodes.
}

// Width returns the number of bits the field occupies.
func (fld Field) Width() int {
	return fld.Hi - fld.Lo + 1
}

// Mask returns the field's value mask, unshifted.
func (fld Field) Mask() uint32 {
	return (uint32(1) << fld.Width()) - 1
}

// Format is the bit-layout template shared by structurally identical
// instruction encodings.
type Format struct {
	Name   string
	Width  int // Instruction word width in bits.
	Fields []Field
}

// SlotBits returns the number of value bits a slot can carry: one past
// the highest source bit any of its field segments encodes.
func (format *Format) SlotBits(slot string) int {
	bits := 0
	for _, fld := range format.Fields {
		if fld.Role != FIELD_SLOT || fld.Slot != slot {
			continue
		}
		if top := fld.Src + fld.Width(); top > bits {
			bits = top
		}
	}
	return bits
}

// OperandKind classifies one element of an operand signature.
type OperandKind int

//go:generate go tool stringer -linecomment -type=OperandKind
const (
	OPERAND_REG = OperandKind(0) // register
	OPERAND_IMM = OperandKind(1) // immediate
	OPERAND_TOK = OperandKind(2) // token
)

// RelocKind describes how a linker must patch a field whose value was
// not known at assembly time.
type RelocKind int

//go:generate go tool stringer -linecomment -type=RelocKind
const (
	RELOC_NONE   = RelocKind(0) // none
	RELOC_ABS    = RelocKind(1) // absolute
	RELOC_LO12   = RelocKind(2) // lo12
	RELOC_HI20   = RelocKind(3) // hi20
	RELOC_BRANCH = RelocKind(4) // branch
)

// OperandSpec is one element of an instruction's operand signature.
type OperandSpec struct {
	Kind   OperandKind
	Slot   string    // Operand slot filled by this operand.
	Class  string    // Required register class (OPERAND_REG).
	Bits   int       // Declared value width (OPERAND_IMM).
	Signed bool      // Signed immediate range.
	Shift  int       // Low bits of the value that must be zero.
	PCRel  bool      // Value is relative to the instruction address.
	Reloc  RelocKind // Relocation kind when the value stays symbolic.
	Token  string    // Literal text (OPERAND_TOK).
}

// InstrDef binds a mnemonic and operand signature to a format and its
// fixed field values.
type InstrDef struct {
	Mnemonic string
	Format   *Format
	Operands []OperandSpec
	Fixed    map[string]uint32 // Field or slot name to fixed value.
	Syntax   string            // Rendering template ("addi rd, rs1, imm12").
}

// Table is the immutable instruction description catalog. It is built by
// the loader, validated once, and read-only afterwards, so it may be
// shared across concurrent assembly units.
type Table struct {
	Name    string
	Version string

	Regs    []Register
	Formats map[string]*Format
	Defs    []*InstrDef

	byName     map[string]*Register
	byMnemonic map[string][]*InstrDef
}

// Register resolves a canonical or alternate register name to its
// definition. Resolution is a case-sensitive exact match; a leading
// '%' or '$' sigil is retried without the prefix. A miss is not an
// error, so callers can try other operand interpretations.
func (tbl *Table) Register(name string) (*Register, bool) {
	reg, ok := tbl.byName[name]
	if !ok && len(name) > 1 && (name[0] == '%' || name[0] == '$') {
		reg, ok = tbl.byName[name[1:]]
	}
	return reg, ok
}

// Lookup returns all definitions of a mnemonic in declaration order.
// Declaration order is the matcher's tie-break priority.
func (tbl *Table) Lookup(mnemonic string) []*InstrDef {
	return tbl.byMnemonic[mnemonic]
}

// Format returns a format by name.
func (tbl *Table) Format(name string) (*Format, bool) {
	format, ok := tbl.Formats[name]
	return format, ok
}

func (tbl *Table) addRegister(reg Register) error {
	if tbl.byName == nil {
		tbl.byName = make(map[string]*Register, 64)
	}
	tbl.Regs = append(tbl.Regs, reg)
	stored := new(Register)
	*stored = reg
	for _, name := range append([]string{reg.Name}, reg.Alt...) {
		if _, ok := tbl.byName[name]; ok {
			return ErrRegisterDuplicate(name)
		}
		tbl.byName[name] = stored
	}
	return nil
}

func (tbl *Table) addFormat(format *Format) error {
	if tbl.Formats == nil {
		tbl.Formats = make(map[string]*Format, 8)
	}
	if _, ok := tbl.Formats[format.Name]; ok {
		return ErrFormatDuplicate(format.Name)
	}
	tbl.Formats[format.Name] = format
	return nil
}

func (tbl *Table) addInstruction(def *InstrDef) {
	if tbl.byMnemonic == nil {
		tbl.byMnemonic = make(map[string][]*InstrDef, 64)
	}
	tbl.Defs = append(tbl.Defs, def)
	tbl.byMnemonic[def.Mnemonic] = append(tbl.byMnemonic[def.Mnemonic], def)
}

// Validate checks the structural invariants of the loaded table: each
// format's fields are disjoint and cover the word exactly, every fixed
// field and operand slot of every definition is bound, and no two
// definitions of one mnemonic have indistinguishable signatures.
func (tbl *Table) Validate() error {
	for _, format := range tbl.Formats {
		if err := format.validate(); err != nil {
			return err
		}
	}

	for _, def := range tbl.Defs {
		if err := tbl.validateDef(def); err != nil {
			return err
		}
	}

	for mnemonic, defs := range tbl.byMnemonic {
		for i := range defs {
			for j := i + 1; j < len(defs); j++ {
				if sameSignature(defs[i], defs[j]) {
					return ErrSignatureDuplicate{Mnemonic: mnemonic, Syntax: defs[j].Syntax}
				}
			}
		}
	}

	return nil
}

func (format *Format) validate() error {
	// Words are encoded into uint32 and emitted as whole bytes, so a
	// format must declare a byte-multiple width of at most 32 bits.
	if format.Width <= 0 || format.Width > 32 || format.Width%8 != 0 {
		return ErrFormatWidth{Format: format.Name, Width: format.Width}
	}

	var cover uint64
	for _, fld := range format.Fields {
		if fld.Lo < 0 || fld.Hi < fld.Lo || fld.Hi >= format.Width {
			return ErrFieldRange{Format: format.Name, Field: fld.Name}
		}
		bits := ((uint64(1) << fld.Width()) - 1) << fld.Lo
		if cover&bits != 0 {
			return ErrFieldOverlap{Format: format.Name, Field: fld.Name}
		}
		cover |= bits
	}
	want := (uint64(1) << format.Width) - 1
	if cover != want {
		return ErrFieldCoverage{Format: format.Name}
	}
	return nil
}

func (tbl *Table) validateDef(def *InstrDef) error {
	slots := make(map[string]bool, len(def.Operands))
	for _, spec := range def.Operands {
		if spec.Kind != OPERAND_TOK {
			slots[spec.Slot] = true
		}
		if spec.Kind == OPERAND_REG && spec.Class != "" {
			found := false
			for _, reg := range tbl.Regs {
				if reg.Class == spec.Class {
					found = true
					break
				}
			}
			if !found {
				return ErrClassUnknown{Mnemonic: def.Mnemonic, Class: spec.Class}
			}
		}
	}

	fields := make(map[string]bool, len(def.Format.Fields))
	for _, fld := range def.Format.Fields {
		fields[fld.Name] = true
		switch fld.Role {
		case FIELD_OPCODE, FIELD_FUNCT:
			if _, ok := def.Fixed[fld.Name]; !ok {
				return ErrFixedMissing{Mnemonic: def.Mnemonic, Field: fld.Name}
			}
		case FIELD_SLOT:
			fields[fld.Slot] = true
			_, fixedName := def.Fixed[fld.Name]
			_, fixedSlot := def.Fixed[fld.Slot]
			if !slots[fld.Slot] && !fixedName && !fixedSlot {
				return ErrSlotUnbound{Mnemonic: def.Mnemonic, Slot: fld.Slot}
			}
		}
	}

	// Every operand slot must have at least one field to land in.
	for slot := range slots {
		if !fields[slot] {
			return ErrSlotUnknown{Mnemonic: def.Mnemonic, Slot: slot}
		}
	}

	return nil
}

// sameSignature reports whether two definitions cannot be told apart by
// operand arity and kinds. Immediate width is not a distinguisher; the
// matcher does not range-check.
func sameSignature(a, b *InstrDef) bool {
	if len(a.Operands) != len(b.Operands) {
		return false
	}
	for i := range a.Operands {
		sa, sb := a.Operands[i], b.Operands[i]
		if sa.Kind != sb.Kind {
			return false
		}
		if sa.Kind == OPERAND_REG && sa.Class != sb.Class {
			return false
		}
		if sa.Kind == OPERAND_TOK && sa.Token != sb.Token {
			return false
		}
	}
	return true
}

// Render returns the operand signature of a definition as written in
// its syntax template, for near-miss diagnostics.
func (def *InstrDef) Render() string {
	if def.Syntax != "" {
		return def.Syntax
	}
	parts := make([]string, 0, len(def.Operands))
	for _, spec := range def.Operands {
		if spec.Kind == OPERAND_TOK {
			parts = append(parts, spec.Token)
		} else {
			parts = append(parts, spec.Slot)
		}
	}
	return def.Mnemonic + " " + strings.Join(parts, ", ")
}
