package model

// WorkAssignment is one solved (employee, day, slot) cell with the role worked.
// Idle cells are not materialised.
type WorkAssignment struct {
	EmployeeID string `json:"employee"`
	Day        Day    `json:"day"`
	Slot       int    `json:"slot"`
	Role       Role   `json:"role"`
}

// Schedule indexes a solved assignment set on the calendar grid. It is built
// once from the solver output and never mutated afterwards.
type Schedule struct {
	Calendar    Calendar
	Assignments []WorkAssignment

	cells map[cellKey]Role
}

type cellKey struct {
	emp  string
	day  Day
	slot int
}

// NewSchedule indexes assignments for lookup.
func NewSchedule(cal Calendar, asn []WorkAssignment) *Schedule {
	s := &Schedule{Calendar: cal, Assignments: asn, cells: make(map[cellKey]Role, len(asn))}
	for _, a := range asn {
		s.cells[cellKey{a.EmployeeID, a.Day, a.Slot}] = a.Role
	}
	return s
}

// RoleAt returns the role employee works at (day, slot), if any.
func (s *Schedule) RoleAt(emp string, d Day, t int) (Role, bool) {
	r, ok := s.cells[cellKey{emp, d, t}]
	return r, ok
}

// Working reports whether emp works at (day, slot).
func (s *Schedule) Working(emp string, d Day, t int) bool {
	_, ok := s.cells[cellKey{emp, d, t}]
	return ok
}

// Occupancy returns the employees working role at (day, slot), in
// assignment order.
func (s *Schedule) Occupancy(role Role, d Day, t int) []string {
	var out []string
	for _, a := range s.Assignments {
		if a.Day == d && a.Slot == t && a.Role == role {
			out = append(out, a.EmployeeID)
		}
	}
	return out
}

// Headcount returns the number of people working any role at (day, slot).
func (s *Schedule) Headcount(d Day, t int) int {
	n := 0
	for _, a := range s.Assignments {
		if a.Day == d && a.Slot == t {
			n++
		}
	}
	return n
}

// DaySlots returns how many slots emp works on day d.
func (s *Schedule) DaySlots(emp string, d Day) int {
	n := 0
	for t := 0; t < s.Calendar.Slots; t++ {
		if s.Working(emp, d, t) {
			n++
		}
	}
	return n
}

// WeekSlots returns how many slots emp works across the week.
func (s *Schedule) WeekSlots(emp string) int {
	n := 0
	for _, a := range s.Assignments {
		if a.EmployeeID == emp {
			n++
		}
	}
	return n
}
