package cpmodel

import (
	"context"
	"testing"
	"time"

	"github.com/crillab/gophersat/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solve(t *testing.T, m *Model) *Solution {
	t.Helper()
	sol := m.Solve(context.Background(), SolveOptions{TimeLimit: 10 * time.Second})
	require.Equal(t, StatusOptimal, sol.Status)
	require.NoError(t, m.Verify(sol))
	return sol
}

func TestNormalizeGE(t *testing.T) {
	var e Expr
	e.Add(1, 1).Add(-1, 2)
	n := normalizeGE(e, 0)
	assert.Equal(t, []int{1, -2}, n.lits)
	assert.Equal(t, []int{1, 1}, n.weights)
	assert.Equal(t, int64(1), n.atLeast)

	// 2*~x3 + x3 folds into one term on ~x3
	var f Expr
	f.Add(2, -3).Add(1, 3)
	n = normalizeGE(f, 2)
	assert.Equal(t, []int{-3}, n.lits)
	assert.Equal(t, []int{1}, n.weights)
	assert.Equal(t, int64(1), n.atLeast)
}

func TestLowerGETrivialAndInfeasible(t *testing.T) {
	rows, inf := lowerGE(Sum(1, 2), 0, nil)
	assert.Empty(t, rows)
	assert.False(t, inf)

	_, inf = lowerGE(Sum(1, 2), 3, nil)
	assert.True(t, inf)

	rows, inf = lowerGE(Sum(1, 2), 3, []Lit{4})
	require.False(t, inf)
	require.Len(t, rows, 1)
	assert.Equal(t, []int{-4}, rows[0].lits)
}

func TestMaximizeKnapsack(t *testing.T) {
	m := New()
	a, b := m.NewBool("a"), m.NewBool("b")
	m.AddLE(SumVars(a, b), 1)
	var obj Expr
	obj.Add(3, a.Lit()).Add(2, b.Lit())
	m.Maximize(obj)

	sol := solve(t, m)
	assert.True(t, sol.Value(a))
	assert.False(t, sol.Value(b))
	assert.Equal(t, int64(3), sol.Objective)
}

func TestEnforcedConstraint(t *testing.T) {
	m := New()
	x, y, b := m.NewBool("x"), m.NewBool("y"), m.NewBool("b")
	m.AddGE(SumVars(x, y), 2).OnlyIf(b.Lit())
	var obj Expr
	obj.Add(10, b.Lit()).Add(-1, x.Lit()).Add(-1, y.Lit())
	m.Maximize(obj)

	sol := solve(t, m)
	assert.True(t, sol.Value(b))
	assert.True(t, sol.Value(x))
	assert.True(t, sol.Value(y))
	assert.Equal(t, int64(8), sol.Objective)
}

func TestIndicator(t *testing.T) {
	cases := []struct {
		name  string
		fixed []bool
		want  bool
	}{
		{"two of three", []bool{true, true, false}, true},
		{"one of three", []bool{true, false, false}, false},
		{"none", []bool{false, false, false}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := New()
			var vars []BoolVar
			for _, v := range tc.fixed {
				x := m.NewBool("x")
				vars = append(vars, x)
				if v {
					m.Fix(x.Lit())
				} else {
					m.Fix(x.Not())
				}
			}
			b := m.Indicator("b", SumVars(vars...), 2)
			sol := solve(t, m)
			assert.Equal(t, tc.want, sol.Value(b))
		})
	}
}

func TestEqualIndicator(t *testing.T) {
	for _, n := range []int{0, 1, 2} {
		m := New()
		var vars []BoolVar
		for i := 0; i < 3; i++ {
			x := m.NewBool("x")
			vars = append(vars, x)
			if i < n {
				m.Fix(x.Lit())
			} else {
				m.Fix(x.Not())
			}
		}
		eq := m.EqualIndicator("one", SumVars(vars...), 1)
		sol := solve(t, m)
		assert.Equal(t, n == 1, sol.Value(eq), "n=%d", n)
	}
}

func TestForbidBelowLeavesOnlyZero(t *testing.T) {
	m := New()
	var vars []BoolVar
	for i := 0; i < 4; i++ {
		vars = append(vars, m.NewBool("x"))
	}
	sum := SumVars(vars...)
	m.AddLE(sum, 3)
	m.ForbidBelow("sum", sum, 4)
	m.Maximize(sum)

	sol := solve(t, m)
	assert.Equal(t, int64(0), sol.Eval(sum))
}

func TestCounter(t *testing.T) {
	m := New()
	c := m.NewCounter("over", 5)
	m.AddGE(c.Expr(), 3)
	var obj Expr
	obj.AddExpr(-1, c.Expr())
	m.Maximize(obj)

	sol := solve(t, m)
	assert.Equal(t, 3, c.Value(sol))
	assert.Equal(t, 5, c.Max())
}

func TestInfeasible(t *testing.T) {
	m := New()
	x := m.NewBool("x")
	m.Fix(x.Lit())
	m.Fix(x.Not())
	sol := m.Solve(context.Background(), SolveOptions{TimeLimit: 5 * time.Second})
	assert.Equal(t, StatusInfeasible, sol.Status)
	assert.False(t, sol.Status.HasSolution())

	m = New()
	y := m.NewBool("y")
	m.AddGE(SumVars(y), 2)
	sol = m.Solve(context.Background(), SolveOptions{})
	assert.Equal(t, StatusInfeasible, sol.Status)
}

func TestObjectiveOnlyVariablePinned(t *testing.T) {
	m := New()
	x, y := m.NewBool("x"), m.NewBool("y")
	var obj Expr
	obj.Add(4, x.Lit()).Add(-4, y.Lit())
	m.Maximize(obj)

	sol := solve(t, m)
	assert.True(t, sol.Value(x))
	assert.False(t, sol.Value(y))
	assert.Equal(t, int64(4), sol.Objective)
}

func TestLongerBudgetNeverWorse(t *testing.T) {
	build := func() *Model {
		m := New()
		var vars []BoolVar
		var obj Expr
		for i := 0; i < 8; i++ {
			v := m.NewBool("x")
			vars = append(vars, v)
			obj.Add(int64(i+1), v.Lit())
		}
		m.AddLE(SumVars(vars...), 3)
		m.Maximize(obj)
		return m
	}
	short := build().Solve(context.Background(), SolveOptions{TimeLimit: time.Second})
	long := build().Solve(context.Background(), SolveOptions{TimeLimit: 5 * time.Second})
	require.True(t, short.Status.HasSolution())
	require.True(t, long.Status.HasSolution())
	assert.GreaterOrEqual(t, long.Objective, short.Objective)
	assert.Equal(t, int64(21), long.Objective)
}

func withOptimizer(t *testing.T, f optimizer) {
	t.Helper()
	old := runOptimal
	runOptimal = f
	t.Cleanup(func() { runOptimal = old })
}

func TestBudgetExhaustedKeepsBestSolution(t *testing.T) {
	withOptimizer(t, func(c *compiled, results chan solver.Result, stop chan struct{}) solver.Result {
		model := make([]bool, c.nbVars)
		model[0] = true
		results <- solver.Result{Status: solver.Sat, Model: model}
		<-stop
		return solver.Result{Status: solver.Indet}
	})
	m := New()
	x := m.NewBool("x")
	m.AddLE(SumVars(x), 1)
	m.Maximize(SumVars(x))

	var seen []Improvement
	sol := m.Solve(context.Background(), SolveOptions{
		TimeLimit:     50 * time.Millisecond,
		OnImprovement: func(i Improvement) { seen = append(seen, i) },
	})
	assert.Equal(t, StatusFeasible, sol.Status)
	assert.True(t, sol.Value(x))
	assert.Equal(t, 1, sol.Improvements)
	require.Len(t, seen, 1)
	assert.Equal(t, int64(1), seen[0].Objective)
}

func TestBudgetExhaustedWithoutSolution(t *testing.T) {
	withOptimizer(t, func(_ *compiled, _ chan solver.Result, stop chan struct{}) solver.Result {
		<-stop
		return solver.Result{Status: solver.Indet}
	})
	m := New()
	x := m.NewBool("x")
	m.AddLE(SumVars(x), 1)
	sol := m.Solve(context.Background(), SolveOptions{TimeLimit: 20 * time.Millisecond})
	assert.Equal(t, StatusUnknown, sol.Status)
}

func TestUnresponsiveSearchIsAbandoned(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	withOptimizer(t, func(_ *compiled, _ chan solver.Result, _ chan struct{}) solver.Result {
		<-release
		return solver.Result{Status: solver.Indet}
	})
	m := New()
	x := m.NewBool("x")
	m.AddLE(SumVars(x), 1)
	start := time.Now()
	sol := m.Solve(context.Background(), SolveOptions{TimeLimit: 20 * time.Millisecond, StopGrace: 20 * time.Millisecond})
	assert.Equal(t, StatusUnknown, sol.Status)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestVerifyReportsViolation(t *testing.T) {
	m := New()
	x, y := m.NewBool("x"), m.NewBool("y")
	m.AddLE(SumVars(x, y), 1)
	sol := &Solution{Status: StatusFeasible, values: []bool{true, true}}
	assert.Error(t, m.Verify(sol))
	sol.values = []bool{true, false}
	assert.NoError(t, m.Verify(sol))
}

func TestExprString(t *testing.T) {
	var e Expr
	e.Add(1, 1).Add(-2, -3).AddConst(4)
	assert.Equal(t, "x1-2*~x3+4", e.String())
}

func choiceModel() (*Model, BoolVar, BoolVar) {
	m := New()
	x, y := m.NewBool("x"), m.NewBool("y")
	m.AddLE(SumVars(x, y), 1)
	var obj Expr
	obj.Add(3, x.Lit()).Add(2, y.Lit())
	m.Maximize(obj)
	return m, x, y
}

func TestCompleteFixesLiterals(t *testing.T) {
	m, x, y := choiceModel()
	before := m.NumConstraints()

	part := m.Complete(context.Background(), []Lit{y.Lit()}, SolveOptions{TimeLimit: 10 * time.Second})
	require.True(t, part.Status.HasSolution())
	assert.True(t, part.Value(y))
	assert.False(t, part.Value(x))
	assert.Equal(t, int64(2), part.Objective)
	assert.Equal(t, before, m.NumConstraints())

	full := solve(t, m)
	assert.True(t, full.Value(x))
}

func TestIncumbentImprovedBySearch(t *testing.T) {
	m, x, y := choiceModel()
	seed := m.Complete(context.Background(), []Lit{y.Lit()}, SolveOptions{TimeLimit: 10 * time.Second})
	require.True(t, seed.Status.HasSolution())

	var seen []Improvement
	sol := m.Solve(context.Background(), SolveOptions{
		TimeLimit:     10 * time.Second,
		Incumbent:     seed,
		OnImprovement: func(i Improvement) { seen = append(seen, i) },
	})
	assert.Equal(t, StatusOptimal, sol.Status)
	assert.True(t, sol.Value(x))
	assert.False(t, sol.Value(y))
	assert.Equal(t, int64(3), sol.Objective)
	require.NotEmpty(t, seen)
	assert.Equal(t, int64(2), seen[0].Objective)
	assert.Equal(t, int64(3), seen[len(seen)-1].Objective)
}

func TestIncumbentKeptWhenSearchStalls(t *testing.T) {
	m, _, y := choiceModel()
	seed := m.Complete(context.Background(), []Lit{y.Lit()}, SolveOptions{TimeLimit: 10 * time.Second})
	require.True(t, seed.Status.HasSolution())

	withOptimizer(t, func(_ *compiled, _ chan solver.Result, stop chan struct{}) solver.Result {
		<-stop
		return solver.Result{Status: solver.Indet}
	})
	sol := m.Solve(context.Background(), SolveOptions{TimeLimit: 20 * time.Millisecond, Incumbent: seed})
	assert.Equal(t, StatusFeasible, sol.Status)
	assert.True(t, sol.Value(y))
	assert.Equal(t, int64(2), sol.Objective)
	assert.Equal(t, 1, sol.Improvements)
	require.NoError(t, m.Verify(sol))
}
