package model

import "sort"

// Role identifies a job function. Exactly one role per roster is the
// gatekeeper; all others are secondary (department) roles.
type Role string

// DisplayName renders a role identifier such as "career_education" as
// "Career Education".
func (r Role) DisplayName() string {
	b := []byte(r)
	upper := true
	for i, c := range b {
		switch {
		case c == '_':
			b[i] = ' '
			upper = true
		case upper && c >= 'a' && c <= 'z':
			b[i] = c - 'a' + 'A'
			upper = false
		default:
			upper = false
		}
	}
	return string(b)
}

// Employee is immutable for the duration of a run.
type Employee struct {
	ID          string
	Roles       []Role
	MaxHours    float64 // weekly hard ceiling
	TargetHours float64 // soft weekly goal, <= MaxHours
	Year        int     // seniority ordinal, higher is more senior
	// Unavailable lists, per day, the slot indices the employee cannot work.
	Unavailable map[Day][]int
}

// Qualified reports whether the employee may work role r.
func (e Employee) Qualified(r Role) bool {
	for _, q := range e.Roles {
		if q == r {
			return true
		}
	}
	return false
}

// Available reports whether the employee can work slot t on day d.
func (e Employee) Available(d Day, t int) bool {
	for _, u := range e.Unavailable[d] {
		if u == t {
			return false
		}
	}
	return true
}

// Roster is the validated staff input of a run.
type Roster struct {
	Employees  []Employee
	Gatekeeper Role
}

// Roles returns the gatekeeper followed by every secondary role held by at
// least one employee, sorted.
func (r Roster) Roles() []Role {
	return append([]Role{r.Gatekeeper}, r.Departments()...)
}

// Departments returns the sorted secondary roles held by at least one employee.
func (r Roster) Departments() []Role {
	seen := make(map[Role]bool)
	var out []Role
	for _, e := range r.Employees {
		for _, q := range e.Roles {
			if q != r.Gatekeeper && !seen[q] {
				seen[q] = true
				out = append(out, q)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DepartmentSize counts the employees qualified for role.
func (r Roster) DepartmentSize(role Role) int {
	n := 0
	for _, e := range r.Employees {
		if e.Qualified(role) {
			n++
		}
	}
	return n
}

// Employee looks an employee up by id.
func (r Roster) Employee(id string) (Employee, bool) {
	for _, e := range r.Employees {
		if e.ID == id {
			return e, true
		}
	}
	return Employee{}, false
}

// Requirement holds the weekly hour goals of one department.
type Requirement struct {
	TargetHours float64
	MaxHours    float64
}

// Requirements maps each secondary role to its hour goals.
type Requirements map[Role]Requirement
