// Package isa models the instruction Description Table: the register
// set, the instruction formats with their named bit-fields, and the
// instruction definitions binding mnemonics to operand signatures and
// fixed field values.
//
// Tables are declared in Starlark scripts and loaded once with Load or
// LoadFile; RV32I returns the embedded default table. A loaded table is
// validated and immutable, so it may be shared by any number of
// concurrent assembly units.
package isa
