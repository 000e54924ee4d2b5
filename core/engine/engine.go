package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/shiftplan/core/cpmodel"
	"github.com/kilianp07/shiftplan/core/logger"
	"github.com/kilianp07/shiftplan/core/model"
)

// DefaultBudget is the wall-clock budget of a solve when none is configured.
const DefaultBudget = 90 * time.Second

// seedShare is the fraction of the budget the greedy cover completion may use.
const seedShare = 4

// Input is the validated business data of one run.
type Input struct {
	Calendar     model.Calendar
	Roster       model.Roster
	Requirements model.Requirements
}

// Progress is emitted for every improving solution found during a solve.
type Progress struct {
	Objective float64
	Count     int
	Elapsed   time.Duration
}

// ProgressPublisher receives solve progress events.
type ProgressPublisher interface {
	Publish(Progress)
}

// Stats describes the size of a built model.
type Stats struct {
	Employees   int
	Cells       int
	Variables   int
	Constraints int
}

// TermValue is the achieved value of one objective term, in weight units.
type TermValue struct {
	Name  string
	Value float64
}

// Result is the outcome of a run. Schedule is nil unless Status carries a
// solution.
type Result struct {
	Status       cpmodel.Status
	Message      string
	Schedule     *model.Schedule
	Objective    float64
	Terms        []TermValue
	Stats        Stats
	Elapsed      time.Duration
	Improvements int
	// Ignored lists requirement entries dropped because nobody holds the role.
	Ignored []model.Role
}

// Engine builds and solves one scheduling model per call. It keeps no state
// between runs, so one Engine may serve concurrent callers.
type Engine struct {
	policy   Policy
	weights  Weights
	budget   time.Duration
	log      logger.Logger
	progress ProgressPublisher
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option { return func(e *Engine) { e.log = l } }

// WithBudget sets the wall-clock budget of every solve.
func WithBudget(d time.Duration) Option { return func(e *Engine) { e.budget = d } }

// WithProgress publishes improving solutions to p.
func WithProgress(p ProgressPublisher) Option { return func(e *Engine) { e.progress = p } }

// New returns an Engine for the given policy and weights.
func New(policy Policy, weights Weights, opts ...Option) (*Engine, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{policy: policy, weights: weights, budget: DefaultBudget, log: logger.NopLogger{}}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Problem is a built model ready to be solved once.
type Problem struct {
	b       *builder
	ignored []model.Role
}

// Stats returns the model size.
func (p *Problem) Stats() Stats {
	return Stats{
		Employees:   len(p.b.f.emps),
		Cells:       p.b.f.cal.Cells(),
		Variables:   p.b.m.NumVars(),
		Constraints: p.b.m.NumConstraints(),
	}
}

// Build validates in and constructs a fresh model. Input invariant violations
// are returned as *model.ValidationError before any model is built.
func (e *Engine) Build(in Input) (*Problem, error) {
	if err := in.Calendar.Validate(); err != nil {
		return nil, err
	}
	in.Roster.Gatekeeper = model.Role(e.policy.GatekeeperRole)
	ignored, err := model.Validate(in.Calendar, in.Roster, in.Requirements)
	if err != nil {
		return nil, err
	}
	for _, r := range ignored {
		e.log.Warnf("ignoring requirement for %s: no employee holds the role", r)
	}

	m := cpmodel.New()
	depts := in.Roster.Departments()
	b := &builder{
		m:       m,
		f:       newFabric(m, in.Calendar, in.Roster),
		in:      in,
		policy:  e.policy,
		weights: e.weights,
		ledger:  model.NewDualLedger(in.Roster.Gatekeeper, depts, e.policy.UnitWeights()),
		depts:   depts,
	}
	b.addHardRules()
	b.addObjective()
	return &Problem{b: b, ignored: ignored}, nil
}

// Solve builds the model for in and runs one bounded solve. Infeasible and
// unknown outcomes are reported through Result.Status, not as errors.
func (e *Engine) Solve(ctx context.Context, in Input) (*Result, error) {
	p, err := e.Build(in)
	if err != nil {
		return nil, err
	}
	stats := p.Stats()
	e.log.Infof("model built: %d employees, %d cells, %d variables, %d constraints",
		stats.Employees, stats.Cells, stats.Variables, stats.Constraints)

	start := time.Now()
	scale := e.weights.Scale
	opts := cpmodel.SolveOptions{
		OnImprovement: func(imp cpmodel.Improvement) {
			obj := float64(imp.Objective) / scale
			e.log.Debugw("improved solution", map[string]any{
				"objective": obj,
				"count":     imp.Count,
				"elapsed":   time.Since(start).String(),
			})
			if e.progress != nil {
				e.progress.Publish(Progress{Objective: obj, Count: imp.Count, Elapsed: time.Since(start)})
			}
		},
	}
	// The greedy cover becomes the incumbent, and its coverage a floor the
	// search must match.
	if seed, covered := p.seed(ctx, e.budget/seedShare); seed != nil {
		e.log.Infof("greedy cover staffs %d/%d slots", covered, stats.Cells)
		p.b.m.AddGE(cpmodel.SumVars(p.b.covered...), int64(covered))
		opts.Incumbent = seed
	} else {
		e.log.Warnf("greedy cover could not be completed, searching from scratch")
	}
	opts.TimeLimit = max(e.budget-time.Since(start), time.Millisecond)
	sol := p.b.m.Solve(ctx, opts)

	res := &Result{
		Status:       sol.Status,
		Stats:        stats,
		Elapsed:      time.Since(start),
		Improvements: sol.Improvements,
		Ignored:      p.ignored,
	}
	switch sol.Status {
	case cpmodel.StatusOptimal, cpmodel.StatusFeasible:
		if err := p.b.m.Verify(sol); err != nil {
			return nil, fmt.Errorf("solver returned an inconsistent assignment: %w", err)
		}
		res.Schedule = p.extract(sol)
		res.Objective = float64(sol.Objective) / scale
		res.Terms = p.termValues(sol)
		res.Message = fmt.Sprintf("%s schedule with %d assignments", sol.Status, len(res.Schedule.Assignments))
	case cpmodel.StatusInfeasible:
		res.Message = "no schedule satisfies the hard rules; check availability, weekly caps and shift bounds"
	default:
		res.Message = fmt.Sprintf("no schedule found within %s; raise the solver time budget", e.budget)
	}
	fields := map[string]any{
		"status":       res.Status.String(),
		"objective":    res.Objective,
		"elapsed":      res.Elapsed.String(),
		"improvements": res.Improvements,
	}
	for _, t := range res.Terms {
		fields["term_"+t.Name] = t.Value
	}
	e.log.Infow("solve finished", fields)
	return res, nil
}
