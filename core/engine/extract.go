package engine

import (
	"github.com/kilianp07/shiftplan/core/cpmodel"
	"github.com/kilianp07/shiftplan/core/model"
)

// extract collects every true assignment, ordered by employee, day and slot.
func (p *Problem) extract(sol *cpmodel.Solution) *model.Schedule {
	f := p.b.f
	var out []model.WorkAssignment
	for e, emp := range f.emps {
		for d, day := range f.cal.Days {
			for t := 0; t < f.cal.Slots; t++ {
				for r, role := range f.roles {
					if v := f.asn[e][d][t][r]; v != 0 && sol.Value(v) {
						out = append(out, model.WorkAssignment{EmployeeID: emp.ID, Day: day, Slot: t, Role: role})
					}
				}
			}
		}
	}
	return model.NewSchedule(f.cal, out)
}

func (p *Problem) termValues(sol *cpmodel.Solution) []TermValue {
	out := make([]TermValue, 0, len(p.b.terms))
	for _, t := range p.b.terms {
		out = append(out, TermValue{Name: t.Name, Value: float64(sol.Eval(t.Expr)) / p.b.weights.Scale})
	}
	return out
}
