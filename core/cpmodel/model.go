package cpmodel

import "fmt"

// BoolVar is a boolean decision variable. Valid variables are >= 1.
type BoolVar int32

// Lit is a literal over a BoolVar: positive means the variable is true,
// negative means it is false.
type Lit int32

// Lit returns the positive literal of v.
func (v BoolVar) Lit() Lit { return Lit(v) }

// Not returns the negative literal of v.
func (v BoolVar) Not() Lit { return Lit(-v) }

// Not negates the literal.
func (l Lit) Not() Lit { return -l }

// Var returns the literal's variable.
func (l Lit) Var() BoolVar {
	if l < 0 {
		return BoolVar(-l)
	}
	return BoolVar(l)
}

// Op is a linear comparison.
type Op int

const (
	GE Op = iota
	LE
	EQ
)

func (o Op) String() string {
	switch o {
	case GE:
		return ">="
	case LE:
		return "<="
	default:
		return "=="
	}
}

// Constraint is a linear constraint, optionally enforced by literals.
type Constraint struct {
	Expr    Expr
	Op      Op
	RHS     int64
	Enforce []Lit
}

// OnlyIf makes the constraint apply only when every literal holds.
func (c *Constraint) OnlyIf(lits ...Lit) *Constraint {
	c.Enforce = append(c.Enforce, lits...)
	return c
}

func (c *Constraint) String() string {
	s := fmt.Sprintf("%s %s %d", c.Expr, c.Op, c.RHS)
	if len(c.Enforce) > 0 {
		s += fmt.Sprintf(" if %v", c.Enforce)
	}
	return s
}

// Model holds the variables, constraints and objective of one problem.
type Model struct {
	names     []string
	cons      []*Constraint
	objective Expr
}

// New returns an empty model.
func New() *Model { return &Model{} }

// NewBool declares a boolean variable.
func (m *Model) NewBool(name string) BoolVar {
	m.names = append(m.names, name)
	return BoolVar(len(m.names))
}

// NumVars returns the number of declared variables.
func (m *Model) NumVars() int { return len(m.names) }

// NumConstraints returns the number of constraints added.
func (m *Model) NumConstraints() int { return len(m.cons) }

// Name returns the name given to v.
func (m *Model) Name(v BoolVar) string {
	if v < 1 || int(v) > len(m.names) {
		return ""
	}
	return m.names[v-1]
}

// Constraints returns the constraints added so far.
func (m *Model) Constraints() []*Constraint { return m.cons }

func (m *Model) add(e Expr, op Op, rhs int64) *Constraint {
	c := &Constraint{Expr: e.Clone(), Op: op, RHS: rhs}
	m.cons = append(m.cons, c)
	return c
}

// AddGE adds e >= rhs.
func (m *Model) AddGE(e Expr, rhs int64) *Constraint { return m.add(e, GE, rhs) }

// AddLE adds e <= rhs.
func (m *Model) AddLE(e Expr, rhs int64) *Constraint { return m.add(e, LE, rhs) }

// AddEq adds e == rhs.
func (m *Model) AddEq(e Expr, rhs int64) *Constraint { return m.add(e, EQ, rhs) }

// Fix forces l to hold.
func (m *Model) Fix(l Lit) { m.AddGE(Sum(l), 1) }

// Implies adds a -> b.
func (m *Model) Implies(a, b Lit) { m.AddGE(Sum(b), 1).OnlyIf(a) }

// Maximize sets the objective. Later calls replace earlier ones.
func (m *Model) Maximize(e Expr) { m.objective = e.Clone() }

// Objective returns the objective expression.
func (m *Model) Objective() Expr { return m.objective }
