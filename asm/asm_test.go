package asm

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wolfarch/riscv-llvm/isa"
)

func assemble(t *testing.T, lines ...string) *Unit {
	as := &Assembler{}
	unit, err := as.Assemble("test.s", strings.NewReader(strings.Join(lines, "\n")))
	assert.NoError(t, err)
	return unit
}

func words(unit *Unit) (out []uint32) {
	for _, word := range unit.Words() {
		out = append(out, word)
	}
	return
}

func TestAssembleEncodings(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		Line string
		Word uint32
	}){
		{"addi x5, x0, 10", 0x00a00293},
		{"addi %x5, $zero, 1", 0x00100293},
		{"addi t0, zero, 2 + 3 - 1", 0x00400293},
		{"add x3, x1, x2", 0x002081b3},
		{"sub x3, x1, x2", 0x402081b3},
		{"srai x1, x2, 3", 0x40315093},
		{"lw x5, -4(x2)", 0xffc12283},
		{"sw x2, 8(x1)", 0x0020a423},
		{"lui x5, 0x12345", 0x123452b7},
		{"nop", 0x00000013},
		{"mv x5, x6", 0x00030293},
		{"ret", 0x00008067},
		{"ecall", 0x00000073},
		{"ebreak", 0x00100073},
	}

	for _, want := range table {
		unit := assemble(t, want.Line)
		assert.Empty(unit.Diags, want.Line)
		assert.Equal([]uint32{want.Word}, words(unit), want.Line)
	}
}

func TestAssembleImmediateRange(t *testing.T) {
	assert := assert.New(t)

	unit := assemble(t, "addi x5, x0, 99999")
	assert.True(unit.Failed())
	assert.Empty(unit.Instructions)
	assert.Equal(1, len(unit.Diags))
	if len(unit.Diags) == 1 {
		diag := unit.Diags[0]
		assert.Equal(SEV_ERROR, diag.Severity)
		assert.Equal(1, diag.Line)
		assert.Contains(diag.Message, "imm12")
		assert.Contains(diag.Message, "-2048")
		assert.Contains(diag.Message, "2047")
	}
}

func TestAssembleBranchAlignment(t *testing.T) {
	assert := assert.New(t)

	unit := assemble(t, "beq x0, x0, 3")
	assert.True(unit.Failed())
	assert.Contains(unit.Diags[0].Message, "multiple of 2")
}

func TestAssembleForwardReference(t *testing.T) {
	assert := assert.New(t)

	// The branch operand is deferred in pass 1 and resolved to a
	// concrete offset in pass 2; no relocation is needed for a
	// locally defined symbol.
	unit := assemble(t,
		"j target",
		"target:",
		"nop",
	)
	assert.Empty(unit.Diags)
	assert.Equal([]uint32{0x0040006f, 0x00000013}, words(unit))
	for range unit.Relocs() {
		t.Fatal("unexpected relocation")
	}
}

func TestAssembleBackwardBranch(t *testing.T) {
	assert := assert.New(t)

	unit := assemble(t,
		"loop: nop",
		"beq x0, x0, loop",
	)
	assert.Empty(unit.Diags)
	assert.Equal([]uint32{0x00000013, 0xfe000ee3}, words(unit))
}

func TestAssembleExternalSymbol(t *testing.T) {
	assert := assert.New(t)

	unit := assemble(t, "j external_symbol")
	assert.Empty(unit.Diags)
	assert.Equal([]uint32{0x0000006f}, words(unit))

	var relocs []RelocationRecord
	for rec := range unit.Relocs() {
		relocs = append(relocs, rec)
	}
	expected := []RelocationRecord{
		{Offset: 0, Symbol: "external_symbol", Kind: isa.RELOC_BRANCH, Addend: 0},
	}
	assert.Equal(expected, relocs)
}

func TestAssembleLoadRelocation(t *testing.T) {
	assert := assert.New(t)

	unit := assemble(t,
		"lui x5, hi_part",
		"lw x6, lo_part+4(x5)",
	)
	assert.Empty(unit.Diags)

	var relocs []RelocationRecord
	for rec := range unit.Relocs() {
		relocs = append(relocs, rec)
	}
	expected := []RelocationRecord{
		{Offset: 0, Symbol: "hi_part", Kind: isa.RELOC_HI20, Addend: 0},
		{Offset: 4, Symbol: "lo_part", Kind: isa.RELOC_LO12, Addend: 4},
	}
	assert.Equal(expected, relocs)
}

func TestAssembleNoMatch(t *testing.T) {
	assert := assert.New(t)

	// Missing third operand: the hint names the full signature.
	unit := assemble(t, "addi x5, x0")
	assert.True(unit.Failed())
	assert.Contains(unit.Diags[0].Message, "addi rd, rs1, imm12")

	unit = assemble(t, "frobnicate x1")
	assert.True(unit.Failed())
	assert.Contains(unit.Diags[0].Message, "unknown instruction")
}

func TestAssembleErrorIsolation(t *testing.T) {
	assert := assert.New(t)

	// A bad line is skipped; the unit continues and still fails.
	unit := assemble(t,
		"addi x5, x0",
		"addi x5, x0, 1",
		"addi x6, x0, ~",
	)
	assert.True(unit.Failed())
	assert.Equal(2, len(unit.Diags))
	assert.Equal([]uint32{0x00100293}, words(unit))
	assert.Equal(1, unit.Diags[0].Line)
	assert.Equal(3, unit.Diags[1].Line)
}

func TestAssembleDuplicateLabel(t *testing.T) {
	assert := assert.New(t)

	unit := assemble(t,
		"a: nop",
		"a: nop",
	)
	assert.True(unit.Failed())
	assert.Contains(unit.Diags[0].Message, "already defined")
}

func TestAssembleEquate(t *testing.T) {
	assert := assert.New(t)

	unit := assemble(t,
		".equ UPPER 0x12345",
		"lui x5, UPPER",
	)
	assert.Empty(unit.Diags)
	assert.Equal([]uint32{0x123452b7}, words(unit))

	// An equate defined after its use still resolves in pass 2.
	unit = assemble(t,
		"addi x5, x0, CONST",
		".equ CONST 42",
	)
	assert.Empty(unit.Diags)
	assert.Equal([]uint32{0x02a00293}, words(unit))

	unit = assemble(t,
		".equ A 1",
		".equ A 2",
	)
	assert.True(unit.Failed())
}

func TestAssembleUnresolvedSymbol(t *testing.T) {
	assert := assert.New(t)

	// The shamt slot declares no relocation kind, so an undefined
	// symbol there cannot be deferred to the linker.
	unit := assemble(t, "slli x5, x5, count")
	assert.True(unit.Failed())
	assert.Contains(unit.Diags[0].Message, "count")
	assert.Contains(unit.Diags[0].Message, "unresolved")
}

func TestAssembleFixedFieldRoundTrip(t *testing.T) {
	assert := assert.New(t)

	// Decoding the fixed fields of every encoded word recovers the
	// table's opcode and funct values exactly.
	lines := [](struct {
		Line     string
		Mnemonic string
	}){
		{"add x1, x2, x3", "add"},
		{"sub x1, x2, x3", "sub"},
		{"addi x1, x2, -1", "addi"},
		{"beq x1, x2, 8", "beq"},
		{"jal x1, 2048", "jal"},
		{"sw x2, 4(x1)", "sw"},
	}

	tbl := isa.RV32I()
	for _, tc := range lines {
		unit := assemble(t, tc.Line)
		assert.Empty(unit.Diags, tc.Line)
		if len(unit.Instructions) != 1 {
			continue
		}
		word := unit.Instructions[0].Word

		def := tbl.Lookup(tc.Mnemonic)[0]
		for _, fld := range def.Format.Fields {
			if fld.Role == isa.FIELD_SLOT {
				continue
			}
			got := (word >> fld.Lo) & fld.Mask()
			assert.Equal(def.Fixed[fld.Name], got, "%v field %v", tc.Line, fld.Name)
		}
	}
}

func TestAssembleIdempotence(t *testing.T) {
	assert := assert.New(t)

	lines := []string{
		"start: addi x5, x0, 10",
		"j done",
		"lw x6, 0(x5)",
		"beq x5, x6, start",
		"done: ret",
		"j external",
	}

	first := assemble(t, lines...)
	second := assemble(t, lines...)
	assert.Equal(first.Instructions, second.Instructions)
	assert.Equal(first.Diags, second.Diags)
}

func TestAssembleOffsets(t *testing.T) {
	assert := assert.New(t)

	unit := assemble(t,
		"nop",
		"nop",
		"here: nop",
		"j here",
	)
	assert.Empty(unit.Diags)
	assert.Equal(4, len(unit.Instructions))
	for n, inst := range unit.Instructions {
		assert.Equal(4*n, inst.Offset)
	}

	// j at offset 12 targeting 8: offset value -4.
	assert.Equal(uint32(0xffdff06f), unit.Instructions[3].Word)

	bin := unit.Binary()
	assert.Equal(16, len(bin))
	assert.Equal(byte(0x13), bin[0]) // little-endian nop
}

func TestAssembleMaxErrors(t *testing.T) {
	assert := assert.New(t)

	as := &Assembler{MaxErrors: 1}
	unit, err := as.Assemble("test.s", strings.NewReader(strings.Join([]string{
		"bogus1",
		"bogus2",
		"bogus3",
	}, "\n")))
	assert.NoError(err)
	assert.True(unit.Failed())

	// First error plus the abort marker; remaining lines unprocessed.
	assert.Equal(2, len(unit.Diags))
	assert.Contains(unit.Diags[1].Message, "aborted")
}

func TestAssembleTokenOperand(t *testing.T) {
	assert := assert.New(t)

	tbl, err := isa.Load("toy", `
table("toy")
register(0, "r0", cls="r")
register(1, "r1", cls="r")
format("A",
    field("op", 15, 0, role="opcode"),
    field("a", 23, 16),
    field("imm", 31, 24),
)
instruction("put", "A",
    ops=[reg("a", cls="r"), tok("all")],
    fixed={"op": 8, "imm": 0xff},
    syntax="put a, all")
instruction("put", "A",
    ops=[reg("a", cls="r"), imm("imm", 8, signed=False, reloc="absolute")],
    fixed={"op": 7},
    syntax="put a, imm")
`)
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	as := &Assembler{Table: tbl}

	// The fixed token wins in declaration order; a number or an
	// unresolved symbol falls through to the immediate form.
	unit, err := as.Assemble("toy.s", strings.NewReader(strings.Join([]string{
		"put r1, all",
		"put r1, 5",
		"put r0, extern",
	}, "\n")))
	assert.NoError(err)
	assert.Empty(unit.Diags)
	assert.Equal([]uint32{0xff010008, 0x05010007, 0x00000007}, words(unit))

	var relocs []RelocationRecord
	for rec := range unit.Relocs() {
		relocs = append(relocs, rec)
	}
	expected := []RelocationRecord{
		{Offset: 8, Symbol: "extern", Kind: isa.RELOC_ABS, Addend: 0},
	}
	assert.Equal(expected, relocs)
}

func TestAssembleHalfwordTable(t *testing.T) {
	assert := assert.New(t)

	tbl, err := isa.Load("h16", `
table("h16")
register(0, "r0", cls="r")
register(1, "r1", cls="r")
format("H",
    field("op", 7, 0, role="opcode"),
    field("a", 11, 8),
    field("imm", 15, 12),
    width=16,
)
instruction("inc", "H",
    ops=[reg("a", cls="r"), imm("imm", 4, signed=False)],
    fixed={"op": 1},
    syntax="inc a, imm")
`)
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	// Halfword instructions advance offsets by two bytes, and the
	// binary image emits exactly two bytes per word.
	as := &Assembler{Table: tbl}
	unit, err := as.Assemble("h.s", strings.NewReader(strings.Join([]string{
		"inc r0, 1",
		"next: inc r1, 5",
	}, "\n")))
	assert.NoError(err)
	assert.Empty(unit.Diags)
	assert.Equal(2, len(unit.Instructions))
	assert.Equal(2, unit.Instructions[1].Offset)
	assert.Equal(2, unit.Instructions[1].Size)
	assert.Equal([]byte{0x01, 0x10, 0x01, 0x51}, unit.Binary())
}

func TestAssembleRegisterShadow(t *testing.T) {
	assert := assert.New(t)

	// Defining a symbol named like a register is legal but useless,
	// since operand parsing resolves register names first. The unit
	// still assembles; the collision is a warning.
	unit := assemble(t,
		"t0: nop",
		".equ sp 16",
	)
	assert.False(unit.Failed())
	assert.Equal([]uint32{0x00000013}, words(unit))

	assert.Equal(2, len(unit.Diags))
	for _, diag := range unit.Diags {
		assert.Equal(SEV_WARNING, diag.Severity)
		assert.Contains(diag.Message, "shadows")
	}
}

func TestAssembleConcurrentUnits(t *testing.T) {
	assert := assert.New(t)

	// Units share the read-only table but own their symbol tables and
	// diagnostics, so they may be assembled in parallel.
	as := &Assembler{}
	units := make([]*Unit, 8)

	var wg sync.WaitGroup
	for n := range units {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unit, err := as.Assemble("unit.s", strings.NewReader(strings.Join([]string{
				"start: addi x5, x0, 10",
				"j start",
			}, "\n")))
			assert.NoError(err)
			units[n] = unit
		}()
	}
	wg.Wait()

	for _, unit := range units {
		assert.Empty(unit.Diags)
		assert.Equal([]uint32{0x00a00293, 0xffdff06f}, words(unit))
	}
}
