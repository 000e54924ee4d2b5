package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/kilianp07/shiftplan/core/cpmodel"
)

func solvePattern(t *testing.T, pattern []bool) cpmodel.Status {
	t.Helper()
	m := cpmodel.New()
	occ := make([]cpmodel.BoolVar, len(pattern))
	for i, on := range pattern {
		occ[i] = m.NewBool(fmt.Sprintf("occ/%d", i))
		if on {
			m.Fix(occ[i].Lit())
		} else {
			m.Fix(occ[i].Not())
		}
	}
	newInterval(m, "block", occ)
	return m.Solve(context.Background(), cpmodel.SolveOptions{}).Status
}

func TestContiguousAcceptsSingleRun(t *testing.T) {
	for _, p := range [][]bool{
		{false, false, false, false},
		{true, true, false, false},
		{false, true, true, false},
		{false, false, true, true},
		{true, true, true, true},
		{false, false, false, true},
	} {
		if got := solvePattern(t, p); got != cpmodel.StatusOptimal {
			t.Fatalf("pattern %v: expected optimal, got %s", p, got)
		}
	}
}

func TestContiguousRejectsGaps(t *testing.T) {
	for _, p := range [][]bool{
		{true, false, true, false},
		{true, false, false, true},
		{false, true, false, true},
	} {
		if got := solvePattern(t, p); got != cpmodel.StatusInfeasible {
			t.Fatalf("pattern %v: expected infeasible, got %s", p, got)
		}
	}
}

func TestContiguousTreatsMissingVariablesAsIdle(t *testing.T) {
	m := cpmodel.New()
	a := m.NewBool("a")
	b := m.NewBool("b")
	m.Fix(a.Lit())
	m.Fix(b.Lit())
	newInterval(m, "row", []cpmodel.BoolVar{a, 0, b})
	if got := m.Solve(context.Background(), cpmodel.SolveOptions{}).Status; got != cpmodel.StatusInfeasible {
		t.Fatalf("expected infeasible, got %s", got)
	}
}
