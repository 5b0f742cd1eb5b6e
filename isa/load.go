package isa

import (
	_ "embed"
	"sync"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// The Description Table input format is a Starlark catalog: a script
// that declares the register set, the instruction formats, and the
// instruction definitions through the builtins below, executed exactly
// once before any assembly unit is processed.
//
//	table("rv32i", version="2.1")
//	register(5, "x5", alt=["t0"], cls="x")
//	format("I",
//	    field("opcode", 6, 0, role="opcode"),
//	    field("rd", 11, 7),
//	    ...)
//	instruction("addi", "I",
//	    ops=[reg("rd"), reg("rs1"), imm("imm12", 12, reloc="lo12")],
//	    fixed={"opcode": 0x13, "funct3": 0},
//	    syntax="addi rd, rs1, imm12")

//go:embed rv32i.star
var rv32iSource string

var rv32iOnce = sync.OnceValue(func() *Table {
	tbl, err := Load("rv32i", rv32iSource)
	if err != nil {
		panic(err)
	}
	return tbl
})

// RV32I returns the built-in RV32I base integer table. The table is
// loaded once and shared; it is read-only after load.
func RV32I() *Table {
	return rv32iOnce()
}

// LoadFile loads and validates a Description Table from a file.
func LoadFile(path string) (*Table, error) {
	return Load(path, nil)
}

// Load executes a Description Table script and validates the result.
// src may be a string, []byte, or io.Reader; nil reads the named file.
func Load(name string, src any) (tbl *Table, err error) {
	tbl = &Table{}

	thread := &starlark.Thread{Name: name}
	opts := &syntax.FileOptions{
		Set:             true,
		TopLevelControl: true,
		GlobalReassign:  true,
		Recursion:       true,
	}

	_, err = starlark.ExecFileOptions(opts, thread, name, src, tbl.builtins())
	if err != nil {
		return nil, ErrTable{Table: name, Err: err}
	}

	if err = tbl.Validate(); err != nil {
		return nil, ErrTable{Table: name, Err: err}
	}

	return tbl, nil
}

// fieldValue and specValue carry intermediate declarations between
// builtins inside one script.
type fieldValue struct{ field Field }

func (fv *fieldValue) String() string        { return "field(" + fv.field.Name + ")" }
func (fv *fieldValue) Type() string          { return "field" }
func (fv *fieldValue) Freeze()               {}
func (fv *fieldValue) Truth() starlark.Bool  { return starlark.True }
func (fv *fieldValue) Hash() (uint32, error) { return starlark.String(fv.field.Name).Hash() }

type specValue struct{ spec OperandSpec }

func (sv *specValue) String() string        { return "operand(" + sv.spec.Slot + ")" }
func (sv *specValue) Type() string          { return "operand" }
func (sv *specValue) Freeze()               {}
func (sv *specValue) Truth() starlark.Bool  { return starlark.True }
func (sv *specValue) Hash() (uint32, error) { return starlark.String(sv.spec.Slot).Hash() }

var roleNames = map[string]FieldRole{
	"opcode": FIELD_OPCODE,
	"funct":  FIELD_FUNCT,
	"slot":   FIELD_SLOT,
}

var relocNames = map[string]RelocKind{
	"none":     RELOC_NONE,
	"absolute": RELOC_ABS,
	"lo12":     RELOC_LO12,
	"hi20":     RELOC_HI20,
	"branch":   RELOC_BRANCH,
}

func (tbl *Table) builtins() starlark.StringDict {
	return starlark.StringDict{
		"table":       starlark.NewBuiltin("table", tbl.starTable),
		"register":    starlark.NewBuiltin("register", tbl.starRegister),
		"field":       starlark.NewBuiltin("field", starField),
		"format":      starlark.NewBuiltin("format", tbl.starFormat),
		"reg":         starlark.NewBuiltin("reg", starReg),
		"imm":         starlark.NewBuiltin("imm", starImm),
		"tok":         starlark.NewBuiltin("tok", starTok),
		"instruction": starlark.NewBuiltin("instruction", tbl.starInstruction),
	}
}

func (tbl *Table) starTable(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name, version string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"name", &name, "version?", &version); err != nil {
		return nil, err
	}
	tbl.Name = name
	tbl.Version = version
	return starlark.None, nil
}

func (tbl *Table) starRegister(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var id int
	var name string
	var alt *starlark.List
	class := "x"
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"id", &id, "name", &name, "alt?", &alt, "cls?", &class); err != nil {
		return nil, err
	}

	reg := Register{ID: RegisterID(id), Name: name, Class: class}
	if alt != nil {
		for i := 0; i < alt.Len(); i++ {
			str, ok := starlark.AsString(alt.Index(i))
			if !ok {
				return nil, errValue(b, "alt", alt.Index(i))
			}
			reg.Alt = append(reg.Alt, str)
		}
	}

	if err := tbl.addRegister(reg); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

func starField(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	var hi, lo, src int
	role := "slot"
	slot := ""
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"name", &name, "hi", &hi, "lo", &lo,
		"role?", &role, "slot?", &slot, "src?", &src); err != nil {
		return nil, err
	}

	fr, ok := roleNames[role]
	if !ok {
		return nil, errValue(b, "role", starlark.String(role))
	}
	if slot == "" {
		slot = name
	}

	return &fieldValue{field: Field{
		Name: name, Hi: hi, Lo: lo, Role: fr, Slot: slot, Src: src,
	}}, nil
}

func (tbl *Table) starFormat(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(args) < 1 {
		return nil, errValue(b, "name", starlark.None)
	}
	name, ok := starlark.AsString(args[0])
	if !ok {
		return nil, errValue(b, "name", args[0])
	}

	format := &Format{Name: name, Width: 32}
	for _, arg := range args[1:] {
		fv, ok := arg.(*fieldValue)
		if !ok {
			return nil, errValue(b, "field", arg)
		}
		format.Fields = append(format.Fields, fv.field)
	}

	for _, kw := range kwargs {
		key, _ := starlark.AsString(kw[0])
		switch key {
		case "width":
			if err := starlark.AsInt(kw[1], &format.Width); err != nil {
				return nil, err
			}
		default:
			return nil, errValue(b, key, kw[1])
		}
	}

	if err := tbl.addFormat(format); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

func starReg(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var slot string
	class := "x"
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"slot", &slot, "cls?", &class); err != nil {
		return nil, err
	}
	return &specValue{spec: OperandSpec{Kind: OPERAND_REG, Slot: slot, Class: class}}, nil
}

func starImm(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var slot string
	var bits, shift int
	signed := true
	pcrel := false
	reloc := "none"
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"slot", &slot, "bits", &bits, "signed?", &signed,
		"shift?", &shift, "pcrel?", &pcrel, "reloc?", &reloc); err != nil {
		return nil, err
	}

	rk, ok := relocNames[reloc]
	if !ok {
		return nil, errValue(b, "reloc", starlark.String(reloc))
	}

	return &specValue{spec: OperandSpec{
		Kind: OPERAND_IMM, Slot: slot, Bits: bits,
		Signed: signed, Shift: shift, PCRel: pcrel, Reloc: rk,
	}}, nil
}

func starTok(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var text string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "text", &text); err != nil {
		return nil, err
	}
	return &specValue{spec: OperandSpec{Kind: OPERAND_TOK, Token: text}}, nil
}

func (tbl *Table) starInstruction(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var mnemonic, formatName, syntax string
	var ops *starlark.List
	var fixed *starlark.Dict
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"mnemonic", &mnemonic, "format", &formatName,
		"ops?", &ops, "fixed?", &fixed, "syntax?", &syntax); err != nil {
		return nil, err
	}

	format, ok := tbl.Formats[formatName]
	if !ok {
		return nil, errValue(b, "format", starlark.String(formatName))
	}

	def := &InstrDef{
		Mnemonic: mnemonic,
		Format:   format,
		Fixed:    make(map[string]uint32, 4),
		Syntax:   syntax,
	}

	if ops != nil {
		for i := 0; i < ops.Len(); i++ {
			sv, ok := ops.Index(i).(*specValue)
			if !ok {
				return nil, errValue(b, "ops", ops.Index(i))
			}
			def.Operands = append(def.Operands, sv.spec)
		}
	}

	if fixed != nil {
		for _, item := range fixed.Items() {
			key, ok := starlark.AsString(item[0])
			if !ok {
				return nil, errValue(b, "fixed", item[0])
			}
			var value int
			if err := starlark.AsInt(item[1], &value); err != nil {
				return nil, err
			}
			def.Fixed[key] = uint32(value)
		}
	}

	tbl.addInstruction(def)
	return starlark.None, nil
}

func errValue(b *starlark.Builtin, param string, got starlark.Value) error {
	return ErrLoadValue{Builtin: b.Name(), Param: param, Got: got.String()}
}

type ErrLoadValue struct {
	Builtin string
	Param   string
	Got     string
}

func (err ErrLoadValue) Error() string {
	return f("%v: bad value %v for %v", err.Builtin, err.Got, err.Param)
}
