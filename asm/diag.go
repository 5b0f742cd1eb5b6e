package asm

import (
	"fmt"
)

// Severity grades a diagnostic.
type Severity int

//go:generate go tool stringer -linecomment -type=Severity
const (
	SEV_ERROR   = Severity(0) // error
	SEV_WARNING = Severity(1) // warning
)

// Diagnostic is one structured message with its source position.
// Entries are never mutated after being appended.
type Diagnostic struct {
	Severity Severity
	Line     int // 1-based source line.
	Col      int // 1-based source column.
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%v:%v: %v: %v", d.Line, d.Col, d.Severity, d.Message)
}

// Diagnostics is the append-only ordered message sequence of one unit.
type Diagnostics []Diagnostic

// Append records a diagnostic.
func (ds *Diagnostics) Append(sev Severity, line, col int, msg string) {
	*ds = append(*ds, Diagnostic{Severity: sev, Line: line, Col: col, Message: msg})
}

// Error records an error-severity diagnostic for err. The column is
// recovered from the error when it carries a line offset.
func (ds *Diagnostics) Error(line int, err error) {
	col := 1
	switch e := err.(type) {
	case ErrLex:
		col = e.Offset + 1
	case ErrOperandSyntax:
		col = e.Offset + 1
	}
	ds.Append(SEV_ERROR, line, col, err.Error())
}

// HasErrors reports whether any error-severity entry was recorded. A
// unit with errors is failed even if some lines encoded successfully.
func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.Severity == SEV_ERROR {
			return true
		}
	}
	return false
}
