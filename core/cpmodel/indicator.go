package cpmodel

import "fmt"

// Indicator declares a boolean b linked to the condition e >= k in both
// directions: b implies e >= k and not b implies e <= k-1.
func (m *Model) Indicator(name string, e Expr, k int64) BoolVar {
	b := m.NewBool(name)
	m.AddGE(e, k).OnlyIf(b.Lit())
	m.AddLE(e, k-1).OnlyIf(b.Not())
	return b
}

// EqualIndicator declares b linked to e == v.
func (m *Model) EqualIndicator(name string, e Expr, v int64) BoolVar {
	atLeast := m.Indicator(name+">=", e, v)
	above := m.Indicator(name+">", e, v+1)
	b := m.NewBool(name)
	m.Implies(b.Lit(), atLeast.Lit())
	m.Implies(b.Lit(), above.Not())
	// atLeast and not above together imply b.
	m.AddGE(Sum(b.Lit(), atLeast.Not(), above.Lit()), 1)
	return b
}

// Forbid excludes the single value v from e. A fresh selector picks the side
// of v that e lies on, so the exclusion holds without relying on any other
// indicator tied to e.
func (m *Model) Forbid(name string, e Expr, v int64) {
	below := m.NewBool(fmt.Sprintf("%s!=%d", name, v))
	m.AddLE(e, v-1).OnlyIf(below.Lit())
	m.AddGE(e, v+1).OnlyIf(below.Not())
}

// ForbidBelow excludes every value strictly between 0 and k from e.
func (m *Model) ForbidBelow(name string, e Expr, k int64) {
	for v := int64(1); v < k; v++ {
		m.Forbid(name, e, v)
	}
}

// Counter is a non-negative integer in [0, len(Bits)] encoded in unary.
// Bits are ordered so that bit i implies bit i-1.
type Counter struct {
	Bits []BoolVar
}

// NewCounter declares a unary counter with upper bound n.
func (m *Model) NewCounter(name string, n int) Counter {
	c := Counter{Bits: make([]BoolVar, n)}
	for i := range c.Bits {
		c.Bits[i] = m.NewBool(fmt.Sprintf("%s[%d]", name, i))
		if i > 0 {
			m.Implies(c.Bits[i].Lit(), c.Bits[i-1].Lit())
		}
	}
	return c
}

// Expr returns the counter value as an expression.
func (c Counter) Expr() Expr { return SumVars(c.Bits...) }

// Max returns the counter's upper bound.
func (c Counter) Max() int { return len(c.Bits) }

// Value reads the counter from a solution.
func (c Counter) Value(s *Solution) int {
	n := 0
	for _, b := range c.Bits {
		if s.Value(b) {
			n++
		}
	}
	return n
}
