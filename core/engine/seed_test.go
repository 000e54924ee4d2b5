package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/shiftplan/core/model"
)

func buildProblem(t *testing.T, p Policy, in Input) *Problem {
	t.Helper()
	e, err := New(p, DefaultWeights())
	require.NoError(t, err)
	prob, err := e.Build(in)
	require.NoError(t, err)
	return prob
}

func TestGreedyCoverSplitsTheDay(t *testing.T) {
	p := DefaultPolicy()
	cal := tinyCalendar(1, 18)
	in := Input{Calendar: cal, Roster: model.Roster{Employees: []model.Employee{
		{ID: "a", Roles: []model.Role{frontDesk}, MaxHours: 19, TargetHours: 4, Year: 1},
		{ID: "b", Roles: []model.Role{frontDesk}, MaxHours: 19, TargetHours: 4, Year: 2},
		{ID: "c", Roles: []model.Role{frontDesk}, MaxHours: 19, TargetHours: 4, Year: 3},
	}}}
	stints := buildProblem(t, p, in).b.greedyCover()

	covered := make([]int, cal.Slots)
	seen := map[int]bool{}
	for _, s := range stints {
		assert.False(t, seen[s.e], "employee %d has two stints", s.e)
		seen[s.e] = true
		assert.GreaterOrEqual(t, s.length, p.MinShiftSlots)
		assert.LessOrEqual(t, s.length, p.MaxShiftSlots)
		for slot := s.start; slot < s.start+s.length; slot++ {
			covered[slot]++
		}
	}
	for slot, n := range covered {
		assert.Equal(t, 1, n, "slot %d", slot)
	}
}

func TestGreedyCoverHonoursAvailabilityCapsAndDualMaximum(t *testing.T) {
	p := tinyPolicy()
	cal := tinyCalendar(2, 4)
	in := Input{
		Calendar: cal,
		Roster: model.Roster{Employees: []model.Employee{
			{ID: "late", Roles: []model.Role{frontDesk}, MaxHours: 10, TargetHours: 1, Year: 1,
				Unavailable: unavailable("Monday", 0, 1)},
			{ID: "dual", Roles: []model.Role{frontDesk, career}, MaxHours: 10, TargetHours: 1, Year: 1},
			{ID: "short", Roles: []model.Role{frontDesk}, MaxHours: 1.8, TargetHours: 1, Year: 1},
		}},
		// One dual unit per slot and four units per hour: at most 2 dual slots.
		Requirements: model.Requirements{career: {TargetHours: 0.5, MaxHours: 0.5}},
	}
	prob := buildProblem(t, p, in)
	stints := prob.b.greedyCover()

	worked := map[string]int{}
	for _, s := range stints {
		emp := prob.b.f.emps[s.e]
		day := cal.Days[s.d]
		for slot := s.start; slot < s.start+s.length; slot++ {
			assert.True(t, emp.Available(day, slot), "%s works unavailable %s/%d", emp.ID, day, slot)
		}
		worked[emp.ID] += s.length
	}
	assert.LessOrEqual(t, worked["dual"], 2)
	assert.LessOrEqual(t, worked["short"], 3)
}

func TestSeedCompletesToVerifiedSolution(t *testing.T) {
	in := Input{
		Calendar: tinyCalendar(2, 8),
		Roster: model.Roster{Employees: []model.Employee{
			{ID: "a", Roles: []model.Role{frontDesk}, MaxHours: 10, TargetHours: 4, Year: 1},
			{ID: "b", Roles: []model.Role{frontDesk, career}, MaxHours: 10, TargetHours: 4, Year: 2},
			{ID: "c", Roles: []model.Role{career}, MaxHours: 10, TargetHours: 2, Year: 3},
		}},
		Requirements: model.Requirements{career: {TargetHours: 2, MaxHours: 8}},
	}
	prob := buildProblem(t, tinyPolicy(), in)
	sol, covered := prob.seed(context.Background(), 10*time.Second)
	require.NotNil(t, sol)
	assert.Equal(t, 16, covered)
	require.NoError(t, prob.b.m.Verify(sol))
	checkSchedule(t, tinyPolicy(), in, prob.extract(sol))
}

func TestFullCoverageOnRealisticRoster(t *testing.T) {
	if testing.Short() {
		t.Skip("solves a full week")
	}
	var emps []model.Employee
	for i := 0; i < 10; i++ {
		emps = append(emps, model.Employee{
			ID: fmt.Sprintf("desk%02d", i), Roles: []model.Role{frontDesk},
			MaxHours: 12, TargetHours: 9, Year: 1 + i%4,
		})
	}
	emps = append(emps,
		model.Employee{ID: "both", Roles: []model.Role{frontDesk, career}, MaxHours: 15, TargetHours: 10, Year: 3},
		model.Employee{ID: "dept1", Roles: []model.Role{career}, MaxHours: 10, TargetHours: 8, Year: 2},
		model.Employee{ID: "dept2", Roles: []model.Role{career}, MaxHours: 10, TargetHours: 8, Year: 1},
	)
	in := Input{
		Calendar:     model.DefaultCalendar(),
		Roster:       model.Roster{Employees: emps},
		Requirements: model.Requirements{career: {TargetHours: 12, MaxHours: 20}},
	}
	e, err := New(DefaultPolicy(), DefaultWeights(), WithBudget(20*time.Second))
	require.NoError(t, err)
	res := solve(t, e, in)

	cal := in.Calendar
	for _, day := range cal.Days {
		for slot := 0; slot < cal.Slots; slot++ {
			assert.Len(t, res.Schedule.Occupancy(frontDesk, day, slot), 1, "%s/%d", day, slot)
		}
	}
}
