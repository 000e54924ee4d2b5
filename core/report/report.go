// Package report derives the aggregates shown to planners from a solved
// schedule: per-day grids, employee and department summaries, role hours and
// fairness statistics.
package report

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/shiftplan/core/engine"
	"github.com/kilianp07/shiftplan/core/model"
)

// Uncovered marks a slot with nobody on the gatekeeper role.
const Uncovered = "UNCOVERED"

// DayGrid is the staffing table of one day: one row per slot, one column
// per role after the slot label.
type DayGrid struct {
	Day     model.Day
	Columns []string
	Rows    [][]string
}

// EmployeeSummary is the weekly outcome of one employee.
type EmployeeSummary struct {
	ID          string
	Year        int
	Hours       float64
	TargetHours float64
	MaxHours    float64
	Delta       float64
	HitTarget   bool
	DaysWorked  int
	DayHours    []float64 // by calendar day
	RoleHours   map[model.Role]float64
}

// RoleDistribution holds role hours per day.
type RoleDistribution struct {
	Roles  []model.Role
	Days   []model.Day
	Hours  map[model.Role][]float64 // by calendar day
	Totals map[model.Role]float64
}

// DepartmentSummary compares a department's hours with its requirement.
// Focused counts dedicated hours, DualTotal the gatekeeper hours of its
// members and DualCounted the share of those credited to the department.
type DepartmentSummary struct {
	Role           model.Role
	Actual         float64
	Target         float64
	AdjustedTarget float64
	Max            float64
	Delta          float64
	Focused        float64
	DualTotal      float64
	DualCounted    float64
}

// Deviation is a mean and population standard deviation.
type Deviation struct {
	Mean   float64
	StdDev float64
	N      int
}

// Fairness summarises |hours - target| across employees.
type Fairness struct {
	Overall Deviation
	ByYear  map[int]Deviation
}

// Slot identifies one calendar cell.
type Slot struct {
	Day  model.Day
	Slot int
}

// Report bundles every aggregate of one solved run.
type Report struct {
	Calendar     model.Calendar
	Days         []DayGrid
	Employees    []EmployeeSummary
	Roles        RoleDistribution
	Departments  []DepartmentSummary
	Fairness     Fairness
	Uncovered    []Slot
	CoveredSlots int
	TotalSlots   int
}

// Build computes the report of schedule s for input in under policy p.
func Build(in engine.Input, p engine.Policy, s *model.Schedule) *Report {
	in.Roster.Gatekeeper = model.Role(p.GatekeeperRole)
	r := &Report{Calendar: in.Calendar, TotalSlots: in.Calendar.Cells()}
	r.Days = dayGrids(in, s)
	r.Uncovered = uncovered(in, s)
	r.CoveredSlots = r.TotalSlots - len(r.Uncovered)
	r.Employees = employeeSummaries(in, s)
	r.Roles = roleDistribution(in, s)
	r.Departments = departmentSummaries(in, p, s)
	r.Fairness = fairness(r.Employees)
	return r
}

func dayGrids(in engine.Input, s *model.Schedule) []DayGrid {
	roles := in.Roster.Roles()
	cols := []string{"Time"}
	for _, role := range roles {
		cols = append(cols, role.DisplayName())
	}
	out := make([]DayGrid, 0, len(in.Calendar.Days))
	for _, day := range in.Calendar.Days {
		g := DayGrid{Day: day, Columns: cols}
		for t := 0; t < in.Calendar.Slots; t++ {
			row := []string{in.Calendar.SlotLabel(t)}
			for i, role := range roles {
				names := s.Occupancy(role, day, t)
				cell := strings.Join(names, ", ")
				if i == 0 && cell == "" {
					cell = Uncovered
				}
				row = append(row, cell)
			}
			g.Rows = append(g.Rows, row)
		}
		out = append(out, g)
	}
	return out
}

func uncovered(in engine.Input, s *model.Schedule) []Slot {
	var out []Slot
	for _, day := range in.Calendar.Days {
		for t := 0; t < in.Calendar.Slots; t++ {
			if len(s.Occupancy(in.Roster.Gatekeeper, day, t)) == 0 {
				out = append(out, Slot{Day: day, Slot: t})
			}
		}
	}
	return out
}

func employeeSummaries(in engine.Input, s *model.Schedule) []EmployeeSummary {
	cal := in.Calendar
	slotHours := cal.SlotsToHours(1)
	out := make([]EmployeeSummary, 0, len(in.Roster.Employees))
	for _, e := range in.Roster.Employees {
		sum := EmployeeSummary{
			ID:          e.ID,
			Year:        e.Year,
			TargetHours: e.TargetHours,
			MaxHours:    e.MaxHours,
			DayHours:    make([]float64, cal.NumDays()),
			RoleHours:   map[model.Role]float64{},
		}
		for d, day := range cal.Days {
			sum.DayHours[d] = cal.SlotsToHours(s.DaySlots(e.ID, day))
			if sum.DayHours[d] > 0 {
				sum.DaysWorked++
			}
		}
		for _, a := range s.Assignments {
			if a.EmployeeID == e.ID {
				sum.RoleHours[a.Role] += slotHours
			}
		}
		sum.Hours = floats.Sum(sum.DayHours)
		sum.Delta = sum.Hours - sum.TargetHours
		sum.HitTarget = math.Abs(sum.Delta) <= slotHours
		out = append(out, sum)
	}
	return out
}

func roleDistribution(in engine.Input, s *model.Schedule) RoleDistribution {
	cal := in.Calendar
	rd := RoleDistribution{
		Roles:  in.Roster.Roles(),
		Days:   cal.Days,
		Hours:  map[model.Role][]float64{},
		Totals: map[model.Role]float64{},
	}
	for _, role := range rd.Roles {
		rd.Hours[role] = make([]float64, cal.NumDays())
	}
	slotHours := cal.SlotsToHours(1)
	for _, a := range s.Assignments {
		d, ok := cal.DayIndex(a.Day)
		if !ok {
			continue
		}
		if _, known := rd.Hours[a.Role]; !known {
			continue
		}
		rd.Hours[a.Role][d] += slotHours
	}
	for role, h := range rd.Hours {
		rd.Totals[role] = floats.Sum(h)
	}
	return rd
}

func departmentSummaries(in engine.Input, p engine.Policy, s *model.Schedule) []DepartmentSummary {
	depts := in.Roster.Departments()
	ledger := model.NewDualLedger(in.Roster.Gatekeeper, depts, p.UnitWeights())
	tally := ledger.Tally(in.Roster, s.Assignments)
	uph := p.UnitsPerHour(in.Calendar)
	slotHours := in.Calendar.SlotsToHours(1)

	out := make([]DepartmentSummary, 0, len(depts))
	for _, dept := range depts {
		req := in.Requirements[dept]
		t := tally[dept]
		ds := DepartmentSummary{
			Role:           dept,
			Actual:         float64(t.Units) / uph,
			Target:         req.TargetHours,
			AdjustedTarget: p.AdjustedTarget(in.Roster, dept, req),
			Max:            req.MaxHours,
			Focused:        float64(t.DedicatedSlots) * slotHours,
			DualTotal:      float64(t.DualSlots) * slotHours,
			DualCounted:    float64(t.DualSlots*ledger.Weights().Dual) / uph,
		}
		ds.Delta = ds.Actual - ds.Target
		out = append(out, ds)
	}
	return out
}

func fairness(emps []EmployeeSummary) Fairness {
	f := Fairness{ByYear: map[int]Deviation{}}
	var all []float64
	byYear := map[int][]float64{}
	for _, e := range emps {
		dev := math.Abs(e.Delta)
		all = append(all, dev)
		byYear[e.Year] = append(byYear[e.Year], dev)
	}
	f.Overall = deviation(all)
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)
	for _, y := range years {
		f.ByYear[y] = deviation(byYear[y])
	}
	return f
}

func deviation(xs []float64) Deviation {
	if len(xs) == 0 {
		return Deviation{}
	}
	mean, std := stat.PopMeanStdDev(xs, nil)
	return Deviation{Mean: mean, StdDev: std, N: len(xs)}
}
