package cpmodel

import (
	"strconv"
	"strings"
)

// Term is coef * lit, where lit counts as 1 when true and 0 when false.
type Term struct {
	Coef int64
	Lit  Lit
}

// Expr is a linear expression over literals plus a constant. The zero value
// is the constant 0. Build expressions through a pointer; use Clone before
// extending an expression that is shared.
type Expr struct {
	Terms []Term
	Const int64
}

// Sum returns the sum of the literals.
func Sum(lits ...Lit) Expr {
	e := Expr{Terms: make([]Term, 0, len(lits))}
	for _, l := range lits {
		e.Terms = append(e.Terms, Term{Coef: 1, Lit: l})
	}
	return e
}

// SumVars returns the sum of the variables.
func SumVars(vars ...BoolVar) Expr {
	e := Expr{Terms: make([]Term, 0, len(vars))}
	for _, v := range vars {
		e.Terms = append(e.Terms, Term{Coef: 1, Lit: v.Lit()})
	}
	return e
}

// Add appends coef * l.
func (e *Expr) Add(coef int64, l Lit) *Expr {
	if coef != 0 {
		e.Terms = append(e.Terms, Term{Coef: coef, Lit: l})
	}
	return e
}

// AddExpr appends coef * o.
func (e *Expr) AddExpr(coef int64, o Expr) *Expr {
	if coef == 0 {
		return e
	}
	for _, t := range o.Terms {
		e.Terms = append(e.Terms, Term{Coef: coef * t.Coef, Lit: t.Lit})
	}
	e.Const += coef * o.Const
	return e
}

// AddConst adds a constant.
func (e *Expr) AddConst(c int64) *Expr {
	e.Const += c
	return e
}

// Clone returns a copy that does not share storage with e.
func (e Expr) Clone() Expr {
	out := Expr{Const: e.Const}
	if len(e.Terms) > 0 {
		out.Terms = append(make([]Term, 0, len(e.Terms)), e.Terms...)
	}
	return out
}

// Bounds returns the smallest and largest value e can take.
func (e Expr) Bounds() (lo, hi int64) {
	lo, hi = e.Const, e.Const
	for _, t := range e.Terms {
		if t.Coef > 0 {
			hi += t.Coef
		} else {
			lo += t.Coef
		}
	}
	return lo, hi
}

// Eval computes e under the assignment value.
func (e Expr) Eval(value func(Lit) bool) int64 {
	s := e.Const
	for _, t := range e.Terms {
		if value(t.Lit) {
			s += t.Coef
		}
	}
	return s
}

func (e Expr) String() string {
	var b strings.Builder
	for i, t := range e.Terms {
		if i > 0 || t.Coef < 0 {
			if t.Coef < 0 {
				b.WriteString("-")
			} else {
				b.WriteString("+")
			}
		}
		c := t.Coef
		if c < 0 {
			c = -c
		}
		if c != 1 {
			b.WriteString(strconv.FormatInt(c, 10))
			b.WriteString("*")
		}
		if t.Lit < 0 {
			b.WriteString("~")
		}
		b.WriteString("x")
		b.WriteString(strconv.Itoa(int(t.Lit.Var())))
	}
	if e.Const != 0 || len(e.Terms) == 0 {
		if len(e.Terms) > 0 && e.Const > 0 {
			b.WriteString("+")
		}
		b.WriteString(strconv.FormatInt(e.Const, 10))
	}
	return b.String()
}
