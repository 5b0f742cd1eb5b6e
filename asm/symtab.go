package asm

// SymbolTable holds the symbols of one assembly unit. A defined value
// is immutable for the remainder of the unit.
type SymbolTable struct {
	syms map[string]int64
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{syms: make(map[string]int64, 16)}
}

// Define records a symbol value. Redefinition is an error.
func (st *SymbolTable) Define(name string, value int64) error {
	if _, ok := st.syms[name]; ok {
		return ErrSymbolDuplicate(name)
	}
	st.syms[name] = value
	return nil
}

// Lookup returns a symbol's value if it has been defined.
func (st *SymbolTable) Lookup(name string) (int64, bool) {
	value, ok := st.syms[name]
	return value, ok
}

// exprTerm is one additive term: either a constant or a symbol
// reference, possibly negated.
type exprTerm struct {
	neg bool
	sym string // Symbol name; empty for a constant.
	val int64
}

// Expr is a left-to-right chain of '+'/'-' terms over integer literals
// and symbol references.
type Expr struct {
	terms []exprTerm
}

// Eval computes the expression against a symbol table. It is deferred
// (ok false) exactly when at least one referenced symbol is undefined;
// missing then names the first such symbol.
func (expr *Expr) Eval(st *SymbolTable) (value int64, ok bool, missing string) {
	ok = true
	for _, term := range expr.terms {
		v := term.val
		if term.sym != "" {
			sv, defined := st.Lookup(term.sym)
			if !defined {
				if missing == "" {
					missing = term.sym
				}
				ok = false
				continue
			}
			v = sv
		}
		if term.neg {
			value -= v
		} else {
			value += v
		}
	}
	if !ok {
		value = 0
	}
	return
}

// Symbol decomposes the expression into a single non-negated symbol
// plus a constant addend, the shape a relocation record can carry.
// ok is false when the expression references no symbol, more than one,
// or a negated one.
func (expr *Expr) Symbol() (name string, addend int64, ok bool) {
	for _, term := range expr.terms {
		if term.sym == "" {
			if term.neg {
				addend -= term.val
			} else {
				addend += term.val
			}
			continue
		}
		if name != "" || term.neg {
			return "", 0, false
		}
		name = term.sym
	}
	ok = name != ""
	return
}
