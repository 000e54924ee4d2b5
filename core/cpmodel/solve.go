package cpmodel

import (
	"context"
	"fmt"
	"time"

	"github.com/crillab/gophersat/solver"
)

// Status is the terminal state of a solve.
type Status int

const (
	// StatusUnknown means the budget ran out before any solution was found.
	StatusUnknown Status = iota
	// StatusOptimal means the returned solution is proven optimal.
	StatusOptimal
	// StatusFeasible means the budget ran out after a solution was found.
	StatusFeasible
	// StatusInfeasible means no assignment satisfies the constraints.
	StatusInfeasible
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	default:
		return "unknown"
	}
}

// HasSolution reports whether the status carries an assignment.
func (s Status) HasSolution() bool { return s == StatusOptimal || s == StatusFeasible }

// Improvement describes a solution better than every earlier one.
type Improvement struct {
	Objective int64
	Count     int
	Elapsed   time.Duration
}

// SolveOptions bounds and observes a solve.
type SolveOptions struct {
	// TimeLimit caps the wall-clock time of the search. Zero means only ctx
	// bounds it.
	TimeLimit time.Duration
	// StopGrace is how long to wait for the search to acknowledge a stop
	// request before returning the best solution found so far.
	StopGrace time.Duration
	// OnImprovement, if set, is called for every improving solution.
	OnImprovement func(Improvement)
	// Incumbent, if it carries a solution of this model, is the starting
	// point: only better assignments are reported, and it is returned when
	// the search finds nothing better before the budget runs out.
	Incumbent *Solution
}

// Solution is the outcome of Solve.
type Solution struct {
	Status       Status
	Objective    int64
	Improvements int
	Elapsed      time.Duration
	values       []bool
}

// Value returns the value of v. Variables are false when there is no solution.
func (s *Solution) Value(v BoolVar) bool {
	if v < 1 || int(v) > len(s.values) {
		return false
	}
	return s.values[v-1]
}

// LitValue returns the value of l.
func (s *Solution) LitValue(l Lit) bool {
	if l < 0 {
		if !s.Status.HasSolution() {
			return false
		}
		return !s.Value(l.Var())
	}
	return s.Value(l.Var())
}

// Eval evaluates e under the solution.
func (s *Solution) Eval(e Expr) int64 { return e.Eval(s.LitValue) }

// optimizer runs a search, streaming improving results on results and
// returning when the search is over or stop is closed. It may close results.
type optimizer func(c *compiled, results chan solver.Result, stop chan struct{}) solver.Result

func gophersatOptimal(c *compiled, results chan solver.Result, stop chan struct{}) solver.Result {
	pb := solver.ParsePBConstrs(c.constrs)
	if len(c.costLits) > 0 {
		pb.SetCostFunc(c.costLits, c.costWeights)
	}
	s := solver.New(pb)
	return s.Optimal(results, stop)
}

// runOptimal is the search backend. Tests replace it to simulate slow or
// failing searches.
var runOptimal optimizer = gophersatOptimal

const defaultStopGrace = 250 * time.Millisecond

// Solve searches for an assignment maximising the objective. It blocks until
// the search is proven complete, ctx is done, or TimeLimit elapses; in the
// last two cases the best solution found so far is returned as feasible.
func (m *Model) Solve(ctx context.Context, opts SolveOptions) *Solution {
	start := time.Now()
	c := m.compile()
	if c.infeasible {
		return &Solution{Status: StatusInfeasible, Elapsed: time.Since(start)}
	}
	if c.nbVars == 0 {
		return &Solution{Status: StatusOptimal, Objective: m.objective.Const, Elapsed: time.Since(start)}
	}
	if opts.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.TimeLimit)
		defer cancel()
	}
	grace := opts.StopGrace
	if grace <= 0 {
		grace = defaultStopGrace
	}

	results := make(chan solver.Result)
	stop := make(chan struct{})
	final := make(chan solver.Result, 1)
	go func() { final <- runOptimal(c, results, stop) }()

	sol := &Solution{}
	if inc := opts.Incumbent; inc != nil && inc.Status.HasSolution() && len(inc.values) == c.nbVars {
		sol.Status = StatusFeasible
		sol.values = append([]bool(nil), inc.values...)
		sol.Objective = sol.Eval(m.objective)
		sol.Improvements = 1
		if opts.OnImprovement != nil {
			opts.OnImprovement(Improvement{Objective: sol.Objective, Count: 1, Elapsed: time.Since(start)})
		}
	}
	consider := func(r solver.Result) {
		if r.Status != solver.Sat || r.Model == nil {
			return
		}
		vals := make([]bool, c.nbVars)
		copy(vals, r.Model)
		cand := &Solution{Status: StatusFeasible, values: vals}
		obj := cand.Eval(m.objective)
		if sol.values != nil && obj <= sol.Objective {
			return
		}
		sol.values = vals
		sol.Objective = obj
		sol.Improvements++
		if opts.OnImprovement != nil {
			opts.OnImprovement(Improvement{Objective: obj, Count: sol.Improvements, Elapsed: time.Since(start)})
		}
	}

	stopped := false
	var graceC <-chan time.Time
	done := ctx.Done()
	for {
		select {
		case r, ok := <-results:
			if !ok {
				results = nil
				continue
			}
			consider(r)
		case r := <-final:
			consider(r)
			sol.Elapsed = time.Since(start)
			switch {
			case sol.values != nil && !stopped:
				sol.Status = StatusOptimal
			case sol.values != nil:
				sol.Status = StatusFeasible
			case r.Status == solver.Unsat && !stopped:
				sol.Status = StatusInfeasible
			default:
				sol.Status = StatusUnknown
			}
			return sol
		case <-done:
			done = nil
			stopped = true
			close(stop)
			t := time.NewTimer(grace)
			defer t.Stop()
			graceC = t.C
		case <-graceC:
			go drain(results, final)
			sol.Elapsed = time.Since(start)
			sol.Status = StatusUnknown
			if sol.values != nil {
				sol.Status = StatusFeasible
			}
			return sol
		}
	}
}

// Complete extends a partial assignment to a full solution: the literals in
// fixed are forced and the search only ranges over the remaining variables.
// The model itself is left unchanged.
func (m *Model) Complete(ctx context.Context, fixed []Lit, opts SolveOptions) *Solution {
	sub := &Model{
		names:     m.names,
		cons:      m.cons[:len(m.cons):len(m.cons)],
		objective: m.objective,
	}
	for _, l := range fixed {
		sub.Fix(l)
	}
	return sub.Solve(ctx, opts)
}

// drain keeps the abandoned search from blocking on results until it returns.
func drain(results chan solver.Result, final chan solver.Result) {
	for {
		select {
		case _, ok := <-results:
			if !ok {
				results = nil
			}
		case <-final:
			return
		}
	}
}

// Verify checks every constraint of the model against the solution and
// returns an error naming the first violated one.
func (m *Model) Verify(s *Solution) error {
	if !s.Status.HasSolution() {
		return fmt.Errorf("no solution to verify (status %s)", s.Status)
	}
	for i, c := range m.cons {
		active := true
		for _, l := range c.Enforce {
			if !s.LitValue(l) {
				active = false
				break
			}
		}
		if !active {
			continue
		}
		v := s.Eval(c.Expr)
		ok := true
		switch c.Op {
		case GE:
			ok = v >= c.RHS
		case LE:
			ok = v <= c.RHS
		case EQ:
			ok = v == c.RHS
		}
		if !ok {
			return fmt.Errorf("constraint %d violated: %s (lhs=%d)", i, c, v)
		}
	}
	return nil
}
