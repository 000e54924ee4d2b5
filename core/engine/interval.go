package engine

import (
	"fmt"

	"github.com/kilianp07/shiftplan/core/cpmodel"
)

// contiguous restricts occ to at most one uninterrupted run of true values.
// start[t] marks the first slot of the run and end[t] its last slot:
//
//	occ[0] = start[0]
//	occ[t] - occ[t-1] = start[t] - end[t-1]
//	end[n-1] = occ[n-1]
//	sum(start) <= 1, sum(end) <= 1, sum(start) = sum(end)
//
// Zero entries in occ are treated as constant false.
func contiguous(m *cpmodel.Model, occ, start, end []cpmodel.BoolVar) {
	n := len(occ)
	if n == 0 {
		return
	}
	lit := func(v cpmodel.BoolVar) cpmodel.Expr {
		if v == 0 {
			return cpmodel.Expr{}
		}
		return cpmodel.SumVars(v)
	}

	first := lit(occ[0])
	first.Add(-1, start[0].Lit())
	m.AddEq(first, 0)

	for t := 1; t < n; t++ {
		x := lit(occ[t])
		x.AddExpr(-1, lit(occ[t-1]))
		x.Add(-1, start[t].Lit())
		x.Add(1, end[t-1].Lit())
		m.AddEq(x, 0)
	}

	last := lit(occ[n-1])
	last.Add(-1, end[n-1].Lit())
	m.AddEq(last, 0)

	m.AddLE(cpmodel.SumVars(start...), 1)
	m.AddLE(cpmodel.SumVars(end...), 1)
	balance := cpmodel.SumVars(start...)
	balance.AddExpr(-1, cpmodel.SumVars(end...))
	m.AddEq(balance, 0)
}

// newInterval declares fresh transition variables for occ and applies the
// contiguity rule to them.
func newInterval(m *cpmodel.Model, name string, occ []cpmodel.BoolVar) {
	start := make([]cpmodel.BoolVar, len(occ))
	end := make([]cpmodel.BoolVar, len(occ))
	for t := range occ {
		start[t] = m.NewBool(fmt.Sprintf("%s/start/%d", name, t))
		end[t] = m.NewBool(fmt.Sprintf("%s/end/%d", name, t))
	}
	contiguous(m, occ, start, end)
}
