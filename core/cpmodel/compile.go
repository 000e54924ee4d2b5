package cpmodel

import (
	"github.com/crillab/gophersat/solver"
)

// normalized is sum(weights[i] * lits[i]) >= atLeast with every weight > 0.
type normalized struct {
	lits    []int
	weights []int
	atLeast int64
	total   int64
}

// compiled is a model lowered to pseudo-boolean form.
type compiled struct {
	nbVars      int
	constrs     []solver.PBConstr
	costLits    []solver.Lit
	costWeights []int
	infeasible  bool
}

// linearize folds e into one coefficient per variable over positive literals
// plus a constant, preserving the order variables first appear in.
func linearize(e Expr) (vars []BoolVar, coefs map[BoolVar]int64, constant int64) {
	coefs = make(map[BoolVar]int64, len(e.Terms))
	constant = e.Const
	for _, t := range e.Terms {
		v := t.Lit.Var()
		if _, ok := coefs[v]; !ok {
			vars = append(vars, v)
		}
		if t.Lit > 0 {
			coefs[v] += t.Coef
		} else {
			// c * ~x == c - c * x
			constant += t.Coef
			coefs[v] -= t.Coef
		}
	}
	return vars, coefs, constant
}

// normalizeGE lowers e >= rhs to positive weights.
func normalizeGE(e Expr, rhs int64) normalized {
	vars, coefs, constant := linearize(e)
	n := normalized{atLeast: rhs - constant}
	for _, v := range vars {
		a := coefs[v]
		switch {
		case a > 0:
			n.lits = append(n.lits, int(v))
			n.weights = append(n.weights, int(a))
			n.total += a
		case a < 0:
			// a * x == a + |a| * ~x
			n.lits = append(n.lits, -int(v))
			n.weights = append(n.weights, int(-a))
			n.atLeast -= a
			n.total -= a
		}
	}
	return n
}

// lowerGE lowers an enforced e >= rhs. Enforcement literals are folded in
// with a big-M equal to the normalised bound, which is exactly the slack the
// constraint can ever need.
func lowerGE(e Expr, rhs int64, enforce []Lit) (out []normalized, infeasible bool) {
	n := normalizeGE(e, rhs)
	if n.atLeast <= 0 {
		return nil, false
	}
	if len(enforce) == 0 {
		if n.atLeast > n.total {
			return nil, true
		}
		return []normalized{n}, false
	}
	if n.atLeast > n.total {
		// The constraint can never hold, so one enforcement literal must fail.
		clause := normalized{atLeast: 1}
		for _, l := range enforce {
			clause.lits = append(clause.lits, int(l.Not()))
			clause.weights = append(clause.weights, 1)
			clause.total++
		}
		return []normalized{clause}, false
	}
	relaxed := e.Clone()
	for _, l := range enforce {
		relaxed.Add(n.atLeast, l.Not())
	}
	r := normalizeGE(relaxed, rhs)
	if r.atLeast <= 0 {
		return nil, false
	}
	return []normalized{r}, false
}

func negate(e Expr) Expr {
	out := Expr{Const: -e.Const, Terms: make([]Term, len(e.Terms))}
	for i, t := range e.Terms {
		out.Terms[i] = Term{Coef: -t.Coef, Lit: t.Lit}
	}
	return out
}

// lower turns one constraint into normalised >= rows.
func lower(c *Constraint) ([]normalized, bool) {
	switch c.Op {
	case GE:
		return lowerGE(c.Expr, c.RHS, c.Enforce)
	case LE:
		return lowerGE(negate(c.Expr), -c.RHS, c.Enforce)
	default:
		ge, inf1 := lowerGE(c.Expr, c.RHS, c.Enforce)
		le, inf2 := lowerGE(negate(c.Expr), -c.RHS, c.Enforce)
		return append(ge, le...), inf1 || inf2
	}
}

// compile lowers the model for the solver. Variables no constraint mentions
// are pinned to the value the objective prefers so that every variable is
// known to the solver.
func (m *Model) compile() *compiled {
	c := &compiled{nbVars: len(m.names)}
	referenced := make([]bool, len(m.names)+1)
	emit := func(n normalized) {
		pc := solver.PBConstr{Lits: n.lits, Weights: n.weights, AtLeast: int(n.atLeast)}
		c.constrs = append(c.constrs, pc)
		for _, l := range n.lits {
			if l < 0 {
				l = -l
			}
			referenced[l] = true
		}
	}
	for _, con := range m.cons {
		rows, infeasible := lower(con)
		if infeasible {
			c.infeasible = true
			return c
		}
		for _, r := range rows {
			emit(r)
		}
	}

	vars, coefs, _ := linearize(m.objective)
	for v := 1; v <= len(m.names); v++ {
		if referenced[v] {
			continue
		}
		lit := -v
		if coefs[BoolVar(v)] > 0 {
			lit = v
		}
		emit(normalized{lits: []int{lit}, weights: []int{1}, atLeast: 1, total: 1})
	}

	// maximise sum(a*x)  ==  minimise sum(-a*x)
	for _, v := range vars {
		a := coefs[v]
		switch {
		case a < 0:
			c.costLits = append(c.costLits, solver.IntToLit(int32(v)))
			c.costWeights = append(c.costWeights, int(-a))
		case a > 0:
			// -a*x == -a + a*~x
			c.costLits = append(c.costLits, solver.IntToLit(int32(-v)))
			c.costWeights = append(c.costWeights, int(a))
		}
	}
	return c
}
