package isa

import (
	"github.com/wolfarch/riscv-llvm/translate"
)

var f = translate.From

type ErrTable struct {
	Table string
	Err   error
}

func (err ErrTable) Error() string {
	return f("table %v: %v", err.Table, err.Err)
}

func (err ErrTable) Unwrap() error {
	return err.Err
}

type ErrRegisterDuplicate string

func (err ErrRegisterDuplicate) Error() string {
	return f("register name %v duplicated", string(err))
}

type ErrFormatDuplicate string

func (err ErrFormatDuplicate) Error() string {
	return f("format %v duplicated", string(err))
}

type ErrFormatWidth struct {
	Format string
	Width  int
}

func (err ErrFormatWidth) Error() string {
	return f("format %v width %v is not a positive multiple of 8 up to 32", err.Format, err.Width)
}

type ErrFieldRange struct {
	Format string
	Field  string
}

func (err ErrFieldRange) Error() string {
	return f("format %v field %v has an invalid bit range", err.Format, err.Field)
}

type ErrFieldOverlap struct {
	Format string
	Field  string
}

func (err ErrFieldOverlap) Error() string {
	return f("format %v field %v overlaps another field", err.Format, err.Field)
}

type ErrFieldCoverage struct {
	Format string
}

func (err ErrFieldCoverage) Error() string {
	return f("format %v fields do not cover the instruction word", err.Format)
}

type ErrFixedMissing struct {
	Mnemonic string
	Field    string
}

func (err ErrFixedMissing) Error() string {
	return f("instruction %v has no value for fixed field %v", err.Mnemonic, err.Field)
}

type ErrSlotUnbound struct {
	Mnemonic string
	Slot     string
}

func (err ErrSlotUnbound) Error() string {
	return f("instruction %v leaves slot %v unbound", err.Mnemonic, err.Slot)
}

type ErrSlotUnknown struct {
	Mnemonic string
	Slot     string
}

func (err ErrSlotUnknown) Error() string {
	return f("instruction %v names slot %v not present in its format", err.Mnemonic, err.Slot)
}

type ErrClassUnknown struct {
	Mnemonic string
	Class    string
}

func (err ErrClassUnknown) Error() string {
	return f("instruction %v wants register class %v with no registers", err.Mnemonic, err.Class)
}

type ErrSignatureDuplicate struct {
	Mnemonic string
	Syntax   string
}

func (err ErrSignatureDuplicate) Error() string {
	return f("instruction %v signature '%v' duplicates an earlier definition", err.Mnemonic, err.Syntax)
}
