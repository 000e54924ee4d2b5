package engine

import (
	"fmt"

	"github.com/kilianp07/shiftplan/core/cpmodel"
	"github.com/kilianp07/shiftplan/core/model"
)

// builder emits the hard rules and the objective of one run.
type builder struct {
	m       *cpmodel.Model
	f       *fabric
	in      Input
	policy  Policy
	weights Weights
	ledger  *model.DualLedger
	depts   []model.Role
	units   map[model.Role]*cpmodel.Expr
	terms   []Term
	covered []cpmodel.BoolVar // one per cell
}

func (b *builder) name(e, d int) string {
	return fmt.Sprintf("%s/%s", b.f.emps[e].ID, b.f.cal.Days[d])
}

// weeklyCapSlots is the binding weekly ceiling of one employee.
func (b *builder) weeklyCapSlots(emp model.Employee) int {
	c := b.f.cal.HoursToSlots(emp.MaxHours)
	if u := b.f.cal.HoursToSlots(b.policy.UniversalMaxHours); u < c {
		c = u
	}
	if cells := b.f.cal.Cells(); cells < c {
		c = cells
	}
	return c
}

func (b *builder) addHardRules() {
	for e := range b.f.emps {
		for d := range b.f.cal.Days {
			b.addShiftRules(e, d)
			b.addRoleRules(e, d)
			b.addCellRules(e, d)
		}
		b.m.AddLE(b.f.weekSlots(e), int64(b.weeklyCapSlots(b.f.emps[e])))
	}
	b.addSupervision()
	b.addGatekeeperOccupancy()
	b.addDepartmentCaps()
}

// addShiftRules makes the day's work one contiguous shift that is either
// empty or between the minimum and maximum shift length.
func (b *builder) addShiftRules(e, d int) {
	f, m := b.f, b.m
	contiguous(m, f.work[e][d], f.start[e][d], f.end[e][d])

	total := f.daySlots(e, d)
	f.worksToday[e][d] = m.Indicator("works_today/"+b.name(e, d), total, 1)
	m.AddGE(total, int64(b.policy.MinShiftSlots)).OnlyIf(f.worksToday[e][d].Lit())
	m.AddLE(total, int64(b.policy.MaxShiftSlots))
	m.ForbidBelow("shift/"+b.name(e, d), total, int64(b.policy.MinShiftSlots))
}

// addRoleRules keeps every role block of the day contiguous and long enough.
// The gatekeeper block uses its own transition variables and minimum.
func (b *builder) addRoleRules(e, d int) {
	f, m := b.f, b.m
	for r, role := range f.roles {
		if !f.qualified(e, r) {
			continue
		}
		row := f.roleRow(e, d, r)
		total := cpmodel.SumVars(row...)
		name := fmt.Sprintf("%s/%s", b.name(e, d), role)
		if r == gk {
			contiguous(m, row, f.gkStart[e][d], f.gkEnd[e][d])
			m.ForbidBelow("gk_block/"+name, total, int64(b.policy.MinGatekeeperSlots))
			continue
		}
		newInterval(m, "role/"+name, row)
		m.ForbidBelow("role_block/"+name, total, int64(b.policy.MinRoleSlots))
	}
}

// addCellRules ties the working flag to exactly one role and applies
// availability.
func (b *builder) addCellRules(e, d int) {
	f, m := b.f, b.m
	emp := f.emps[e]
	day := f.cal.Days[d]
	for t := 0; t < f.cal.Slots; t++ {
		roles := cpmodel.SumVars(nonZero(f.asn[e][d][t])...)
		m.AddLE(roles, 1)
		link := roles.Clone()
		link.Add(-1, f.work[e][d][t].Lit())
		m.AddEq(link, 0)
		if !emp.Available(day, t) {
			m.Fix(f.work[e][d][t].Not())
		}
	}
}

// addSupervision requires a gatekeeper on duty whenever a secondary role is.
func (b *builder) addSupervision() {
	f, m := b.f, b.m
	for d := range f.cal.Days {
		for t := 0; t < f.cal.Slots; t++ {
			onDuty := f.cellRole(d, t, gk)
			for e := range f.emps {
				for r := 1; r < len(f.roles); r++ {
					if v := f.asn[e][d][t][r]; v != 0 {
						m.AddGE(onDuty, 1).OnlyIf(v.Lit())
					}
				}
			}
		}
	}
}

// addGatekeeperOccupancy allows at most one gatekeeper per slot.
func (b *builder) addGatekeeperOccupancy() {
	for d := range b.f.cal.Days {
		for t := 0; t < b.f.cal.Slots; t++ {
			b.m.AddLE(b.f.cellRole(d, t, gk), 1)
		}
	}
}

// departmentUnits returns the unit expression of every department.
func (b *builder) departmentUnits() map[model.Role]*cpmodel.Expr {
	if b.units != nil {
		return b.units
	}
	f := b.f
	out := make(map[model.Role]*cpmodel.Expr, len(b.depts))
	for _, dept := range b.depts {
		out[dept] = &cpmodel.Expr{}
	}
	for e, emp := range f.emps {
		for r, role := range f.roles {
			if !f.qualified(e, r) {
				continue
			}
			for d := range f.cal.Days {
				for t := 0; t < f.cal.Slots; t++ {
					v := f.asn[e][d][t][r]
					b.ledger.Credit(emp, role, func(dept model.Role, _ model.CreditKind, units int) {
						if units > 0 {
							out[dept].Add(int64(units), v.Lit())
						}
					})
				}
			}
		}
	}
	b.units = out
	return out
}

// maxUnits is the department ceiling in units, never above its max hours.
func (b *builder) maxUnits(dept model.Role) int64 {
	return model.FloorUnits(b.in.Requirements[dept].MaxHours * b.policy.UnitsPerHour(b.f.cal))
}

// addDepartmentCaps bounds the unit total of every department.
func (b *builder) addDepartmentCaps() {
	units := b.departmentUnits()
	for _, dept := range b.depts {
		b.m.AddLE(*units[dept], b.maxUnits(dept))
	}
}

func nonZero(vs []cpmodel.BoolVar) []cpmodel.BoolVar {
	out := make([]cpmodel.BoolVar, 0, len(vs))
	for _, v := range vs {
		if v != 0 {
			out = append(out, v)
		}
	}
	return out
}
