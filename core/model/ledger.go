package model

import "sort"

// CreditKind distinguishes dedicated department work from dual hours earned
// by a department member staffing the gatekeeper role.
type CreditKind int

const (
	Dedicated CreditKind = iota
	Dual
)

func (k CreditKind) String() string {
	if k == Dual {
		return "dual"
	}
	return "dedicated"
}

// UnitWeights are the department units earned per slot of each kind.
type UnitWeights struct {
	Dedicated int
	Dual      int
}

// DualLedger decides which departments are credited, and with how many units,
// when an employee works one slot of a role. It is shared by the objective
// (over solver literals) and the reports (over solved assignments) so both
// count department hours the same way.
type DualLedger struct {
	gatekeeper Role
	weights    UnitWeights
	depts      map[Role]bool
}

// NewDualLedger builds a ledger for the given departments.
func NewDualLedger(gatekeeper Role, depts []Role, w UnitWeights) *DualLedger {
	m := make(map[Role]bool, len(depts))
	for _, d := range depts {
		m[d] = true
	}
	return &DualLedger{gatekeeper: gatekeeper, weights: w, depts: m}
}

// Weights returns the unit weights in use.
func (l *DualLedger) Weights() UnitWeights { return l.weights }

// Credit calls fn for every department credited when e works one slot of
// role. A secondary role credits itself as dedicated work; the gatekeeper
// role credits every department e also belongs to as dual work.
func (l *DualLedger) Credit(e Employee, role Role, fn func(dept Role, kind CreditKind, units int)) {
	if role != l.gatekeeper {
		if l.depts[role] {
			fn(role, Dedicated, l.weights.Dedicated)
		}
		return
	}
	for _, q := range e.Roles {
		if q != l.gatekeeper && l.depts[q] {
			fn(q, Dual, l.weights.Dual)
		}
	}
}

// DepartmentTally is a solved department total split by credit kind.
type DepartmentTally struct {
	DedicatedSlots int
	DualSlots      int
	Units          int
}

// Tally sums the credits of a solved schedule per department.
func (l *DualLedger) Tally(roster Roster, asn []WorkAssignment) map[Role]DepartmentTally {
	out := make(map[Role]DepartmentTally, len(l.depts))
	for d := range l.depts {
		out[d] = DepartmentTally{}
	}
	byID := make(map[string]Employee, len(roster.Employees))
	for _, e := range roster.Employees {
		byID[e.ID] = e
	}
	for _, a := range asn {
		e, ok := byID[a.EmployeeID]
		if !ok {
			continue
		}
		l.Credit(e, a.Role, func(dept Role, kind CreditKind, units int) {
			t := out[dept]
			if kind == Dual {
				t.DualSlots++
			} else {
				t.DedicatedSlots++
			}
			t.Units += units
			out[dept] = t
		})
	}
	return out
}

func sortRoles(rs []Role) {
	sort.Slice(rs, func(i, j int) bool { return rs[i] < rs[j] })
}
