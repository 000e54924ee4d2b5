package engine

import (
	"fmt"

	"github.com/kilianp07/shiftplan/core/cpmodel"
	"github.com/kilianp07/shiftplan/core/model"
)

// fabric holds the decision variables of one run, indexed by employee, day,
// slot and role position in roles. A zero BoolVar marks a variable that does
// not exist, e.g. an assignment to a role the employee is not qualified for.
type fabric struct {
	cal   model.Calendar
	emps  []model.Employee
	roles []model.Role // gatekeeper first

	work  [][][]cpmodel.BoolVar   // [e][d][t]
	start [][][]cpmodel.BoolVar   // [e][d][t]
	end   [][][]cpmodel.BoolVar   // [e][d][t]
	asn   [][][][]cpmodel.BoolVar // [e][d][t][r]

	// Gatekeeper block transitions, only for gatekeeper-qualified employees.
	gkStart [][][]cpmodel.BoolVar
	gkEnd   [][][]cpmodel.BoolVar

	worksToday [][]cpmodel.BoolVar // [e][d], filled by the constraint builder
}

const gk = 0

func newFabric(m *cpmodel.Model, cal model.Calendar, roster model.Roster) *fabric {
	f := &fabric{
		cal:   cal,
		emps:  roster.Employees,
		roles: roster.Roles(),
	}
	ne, nd, nt := len(f.emps), cal.NumDays(), cal.Slots
	f.work = grid3(ne, nd, nt)
	f.start = grid3(ne, nd, nt)
	f.end = grid3(ne, nd, nt)
	f.gkStart = grid3(ne, nd, nt)
	f.gkEnd = grid3(ne, nd, nt)
	f.asn = make([][][][]cpmodel.BoolVar, ne)
	f.worksToday = make([][]cpmodel.BoolVar, ne)

	for e, emp := range f.emps {
		f.asn[e] = make([][][]cpmodel.BoolVar, nd)
		f.worksToday[e] = make([]cpmodel.BoolVar, nd)
		isGK := emp.Qualified(roster.Gatekeeper)
		for d, day := range cal.Days {
			f.asn[e][d] = make([][]cpmodel.BoolVar, nt)
			for t := 0; t < nt; t++ {
				key := fmt.Sprintf("%s/%s/%d", emp.ID, day, t)
				f.work[e][d][t] = m.NewBool("work/" + key)
				f.start[e][d][t] = m.NewBool("start/" + key)
				f.end[e][d][t] = m.NewBool("end/" + key)
				f.asn[e][d][t] = make([]cpmodel.BoolVar, len(f.roles))
				for r, role := range f.roles {
					if emp.Qualified(role) {
						f.asn[e][d][t][r] = m.NewBool(fmt.Sprintf("assign/%s/%s", key, role))
					}
				}
				if isGK {
					f.gkStart[e][d][t] = m.NewBool("gk_start/" + key)
					f.gkEnd[e][d][t] = m.NewBool("gk_end/" + key)
				}
			}
		}
	}
	return f
}

func grid3(a, b, c int) [][][]cpmodel.BoolVar {
	g := make([][][]cpmodel.BoolVar, a)
	for i := range g {
		g[i] = make([][]cpmodel.BoolVar, b)
		for j := range g[i] {
			g[i][j] = make([]cpmodel.BoolVar, c)
		}
	}
	return g
}

// qualified reports whether employee e has a variable for role r.
func (f *fabric) qualified(e, r int) bool {
	return f.asn[e][0][0][r] != 0
}

// roleRow returns the assignment variables of employee e for role r on day d.
func (f *fabric) roleRow(e, d, r int) []cpmodel.BoolVar {
	row := make([]cpmodel.BoolVar, f.cal.Slots)
	for t := range row {
		row[t] = f.asn[e][d][t][r]
	}
	return row
}

// cellRole sums, over all employees, the assignments to role r at (d, t).
func (f *fabric) cellRole(d, t, r int) cpmodel.Expr {
	var x cpmodel.Expr
	for e := range f.emps {
		if v := f.asn[e][d][t][r]; v != 0 {
			x.Add(1, v.Lit())
		}
	}
	return x
}

// headcount sums every assignment at (d, t).
func (f *fabric) headcount(d, t int) cpmodel.Expr {
	var x cpmodel.Expr
	for r := range f.roles {
		x.AddExpr(1, f.cellRole(d, t, r))
	}
	return x
}

// daySlots sums the working slots of employee e on day d.
func (f *fabric) daySlots(e, d int) cpmodel.Expr {
	return cpmodel.SumVars(f.work[e][d]...)
}

// weekSlots sums the working slots of employee e over the week.
func (f *fabric) weekSlots(e int) cpmodel.Expr {
	var x cpmodel.Expr
	for d := range f.cal.Days {
		x.AddExpr(1, f.daySlots(e, d))
	}
	return x
}
