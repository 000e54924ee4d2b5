package engine

import (
	"fmt"
	"math"

	"github.com/kilianp07/shiftplan/core/cpmodel"
	"github.com/kilianp07/shiftplan/core/model"
)

// Objective term names, in reporting order.
const (
	TermCoverage           = "coverage"
	TermEmployeeTarget     = "employee_target"
	TermEmployeeCliff      = "employee_cliff"
	TermDepartmentTarget   = "department_target"
	TermDepartmentCliff    = "department_cliff"
	TermDepartmentSpread   = "department_spread"
	TermDepartmentDays     = "department_day_coverage"
	TermCollaboration      = "collaboration"
	TermOfficeCoverage     = "office_coverage"
	TermSingleCoverage     = "single_coverage"
	TermShiftLength        = "shift_length"
	TermDepartmentScarcity = "department_scarcity"
	TermJuniorGatekeeper   = "junior_gatekeeper"
	TermMorningPreference  = "morning_preference"
	TermDepartmentTotal    = "department_total"
)

var termOrder = []string{
	TermCoverage, TermEmployeeTarget, TermEmployeeCliff, TermDepartmentTarget,
	TermDepartmentCliff, TermDepartmentSpread, TermDepartmentDays, TermCollaboration,
	TermOfficeCoverage, TermSingleCoverage, TermShiftLength, TermDepartmentScarcity,
	TermJuniorGatekeeper, TermMorningPreference, TermDepartmentTotal,
}

// Term is one named component of the objective.
type Term struct {
	Name string
	Expr cpmodel.Expr
}

// AdjustedTarget caps a department target by its max hours and by the
// combined weekly caps of the employees qualified for it.
func (p Policy) AdjustedTarget(roster model.Roster, dept model.Role, req model.Requirement) float64 {
	capacity := 0.0
	for _, e := range roster.Employees {
		if e.Qualified(dept) {
			capacity += math.Min(e.MaxHours, p.UniversalMaxHours)
		}
	}
	return math.Min(req.TargetHours, math.Min(capacity, req.MaxHours))
}

func (b *builder) addObjective() {
	terms := make([]Term, len(termOrder))
	idx := make(map[string]int, len(termOrder))
	for i, n := range termOrder {
		terms[i].Name = n
		idx[n] = i
	}
	term := func(name string) *cpmodel.Expr { return &terms[idx[name]].Expr }

	b.coverageTerm(term(TermCoverage))
	b.employeeTerms(term(TermEmployeeTarget), term(TermEmployeeCliff))
	b.departmentTerms(term(TermDepartmentTarget), term(TermDepartmentCliff), term(TermDepartmentTotal))
	b.spreadTerms(term(TermDepartmentSpread), term(TermDepartmentDays))
	b.collaborationTerm(term(TermCollaboration))
	b.officeTerms(term(TermOfficeCoverage), term(TermSingleCoverage), term(TermMorningPreference))
	b.shiftLengthTerm(term(TermShiftLength))
	b.gatekeeperTerms(term(TermDepartmentScarcity), term(TermJuniorGatekeeper))

	var total cpmodel.Expr
	for _, t := range terms {
		total.AddExpr(1, t.Expr)
	}
	b.m.Maximize(total)
	b.terms = terms
}

// coverageTerm rewards every slot with a gatekeeper on duty.
func (b *builder) coverageTerm(x *cpmodel.Expr) {
	w := b.weights.coef(b.weights.Coverage, 1)
	for d, day := range b.f.cal.Days {
		for t := 0; t < b.f.cal.Slots; t++ {
			cov := b.m.Indicator(fmt.Sprintf("covered/%s/%d", day, t), b.f.cellRole(d, t, gk), 1)
			b.covered = append(b.covered, cov)
			x.Add(w, cov.Lit())
		}
	}
}

// deviation declares over and under counters such that
// value - over + under = target, and returns them.
func (b *builder) deviation(name string, value cpmodel.Expr, target, ceiling int) (over, under cpmodel.Counter) {
	over = b.m.NewCounter(name+"/over", max(0, ceiling-target))
	under = b.m.NewCounter(name+"/under", max(0, target))
	id := value.Clone()
	id.AddExpr(-1, over.Expr())
	id.AddExpr(1, under.Expr())
	b.m.AddEq(id, int64(target))
	return over, under
}

// cliff penalises a deviation counter reaching threshold.
func (b *builder) cliff(x *cpmodel.Expr, name string, c cpmodel.Counter, threshold int, w int64) {
	if threshold <= 0 || c.Max() < threshold {
		return
	}
	flag := b.m.Indicator(name, c.Expr(), int64(threshold))
	x.Add(-w, flag.Lit())
}

// employeeTerms penalise distance from each weekly target, scaled by
// seniority, plus a cliff for large deviations.
func (b *builder) employeeTerms(target, cliff *cpmodel.Expr) {
	cal := b.f.cal
	cw := b.weights.coef(b.weights.EmployeeCliff, 1)
	for e, emp := range b.f.emps {
		goal := cal.HoursToSlots(emp.TargetHours)
		over, under := b.deviation("employee/"+emp.ID, b.f.weekSlots(e), goal, b.weeklyCapSlots(emp))
		w := b.weights.coef(b.weights.TargetAdherence, b.policy.SeniorityMultiplier(emp.Year))
		target.AddExpr(-w, over.Expr())
		target.AddExpr(-w, under.Expr())
		b.cliff(cliff, "employee/"+emp.ID+"/large_over", over, b.policy.LargeDeviationSlots, cw)
		b.cliff(cliff, "employee/"+emp.ID+"/large_under", under, b.policy.LargeDeviationSlots, cw)
	}
}

// departmentTerms penalise distance from each adjusted department target in
// units, add the department cliff and reward the department total.
func (b *builder) departmentTerms(target, cliff, total *cpmodel.Expr) {
	uph := b.policy.UnitsPerHour(b.f.cal)
	threshold := int(math.Round(b.policy.DepartmentThresholdHours * uph))
	tw := b.weights.coef(b.weights.DepartmentTarget, 1)
	cw := b.weights.coef(b.weights.DepartmentCliff, 1)
	sw := b.weights.coef(b.weights.DepartmentTotal, 1)
	units := b.departmentUnits()
	for _, dept := range b.depts {
		adj := b.policy.AdjustedTarget(b.in.Roster, dept, b.in.Requirements[dept])
		goal := int(model.FloorUnits(adj * uph))
		over, under := b.deviation("department/"+string(dept), *units[dept], goal, int(b.maxUnits(dept)))
		target.AddExpr(-tw, over.Expr())
		target.AddExpr(-tw, under.Expr())
		b.cliff(cliff, "department/"+string(dept)+"/large_over", over, threshold, cw)
		b.cliff(cliff, "department/"+string(dept)+"/large_under", under, threshold, cw)
		total.AddExpr(sw, *units[dept])
	}
}

// spreadTerms reward departments present in many slots and on many days.
func (b *builder) spreadTerms(spread, days *cpmodel.Expr) {
	f := b.f
	sw := b.weights.coef(b.weights.DepartmentSpread, 1)
	dw := b.weights.coef(b.weights.DepartmentDayCoverage, 1)
	for r := 1; r < len(f.roles); r++ {
		role := f.roles[r]
		for d, day := range f.cal.Days {
			var daily cpmodel.Expr
			for t := 0; t < f.cal.Slots; t++ {
				cell := f.cellRole(d, t, r)
				daily.AddExpr(1, cell)
				has := b.m.Indicator(fmt.Sprintf("has_role/%s/%s/%d", role, day, t), cell, 1)
				spread.Add(sw, has.Lit())
			}
			present := b.m.Indicator(fmt.Sprintf("has_role_day/%s/%s", role, day), daily, 1)
			days.Add(dw, present.Lit())
		}
	}
}

// collaborationTerm penalises each slot short of the weekly minimum of slots
// where two or more members of a department work it together.
func (b *builder) collaborationTerm(x *cpmodel.Expr) {
	f := b.f
	w := b.weights.coef(b.weights.Collaboration, 1)
	for r := 1; r < len(f.roles); r++ {
		role := f.roles[r]
		need := f.cal.HoursToSlots(b.policy.CollaborationMinimumHours[string(role)])
		if need <= 0 {
			continue
		}
		var together cpmodel.Expr
		for d, day := range f.cal.Days {
			for t := 0; t < f.cal.Slots; t++ {
				c := b.m.Indicator(fmt.Sprintf("collab/%s/%s/%d", role, day, t), f.cellRole(d, t, r), 2)
				together.Add(1, c.Lit())
			}
		}
		shortfall := b.m.NewCounter("collab_shortfall/"+string(role), need)
		together.AddExpr(1, shortfall.Expr())
		b.m.AddGE(together, int64(need))
		x.AddExpr(-w, shortfall.Expr())
	}
}

// officeTerms reward headcount beyond the first person, penalise slots
// staffed by exactly one person and break ties toward morning staffing.
func (b *builder) officeTerms(office, single, morning *cpmodel.Expr) {
	f := b.f
	ow := b.weights.coef(b.weights.OfficeCoverage, 1)
	slw := b.weights.coef(b.weights.SingleCoverage, 1)
	mw := b.weights.coef(b.weights.MorningPreference, 1)
	for d, day := range f.cal.Days {
		for t := 0; t < f.cal.Slots; t++ {
			hc := f.headcount(d, t)
			office.AddExpr(ow, hc)
			office.AddConst(-ow)
			only := b.m.EqualIndicator(fmt.Sprintf("single/%s/%d", day, t), hc, 1)
			single.Add(-slw, only.Lit())
			if t < b.policy.MorningSlots {
				morning.AddExpr(mw, hc)
			}
		}
	}
}

// shiftLengthTerm rewards fewer, longer shifts.
func (b *builder) shiftLengthTerm(x *cpmodel.Expr) {
	w := b.weights.coef(b.weights.ShiftLength, 1)
	cost := int64(b.policy.ShiftDailyCost)
	for e := range b.f.emps {
		for d := range b.f.cal.Days {
			x.AddExpr(w, b.f.daySlots(e, d))
			x.Add(-w*cost, b.f.worksToday[e][d].Lit())
		}
	}
}

// gatekeeperTerms discourage pulling members of small departments and
// senior staff onto the gatekeeper role.
func (b *builder) gatekeeperTerms(scarcity, junior *cpmodel.Expr) {
	f := b.f
	for e, emp := range f.emps {
		if !f.qualified(e, gk) {
			continue
		}
		var gkSlots cpmodel.Expr
		for d := range f.cal.Days {
			gkSlots.AddExpr(1, cpmodel.SumVars(f.roleRow(e, d, gk)...))
		}
		smallest := 0
		for r := 1; r < len(f.roles); r++ {
			if !f.qualified(e, r) {
				continue
			}
			if n := b.in.Roster.DepartmentSize(f.roles[r]); smallest == 0 || n < smallest {
				smallest = n
			}
		}
		if smallest > 0 {
			w := b.weights.coef(b.weights.DepartmentScarcity, b.policy.ScarcityBase/float64(smallest))
			scarcity.AddExpr(-w, gkSlots)
		}
		if emp.Year > 0 {
			junior.AddExpr(-b.weights.coef(b.weights.JuniorGatekeeper, float64(emp.Year)), gkSlots)
		}
	}
}
