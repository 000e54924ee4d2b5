package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput is matched by every ValidationError.
	ErrInvalidInput = errors.New("invalid scheduling input")

	ErrNoGatekeeperStaff   = errors.New("no employee qualifies for the gatekeeper role")
	ErrDepartmentUnstaffed = errors.New("department has no qualified employee")
	ErrTargetExceedsMax    = errors.New("department target exceeds max hours")
	ErrMissingRequirement  = errors.New("department requirement missing")
	ErrTargetExceedsCap    = errors.New("employee target exceeds weekly cap")
	ErrNoRoles             = errors.New("employee has no qualified role")
	ErrUnknownRole         = errors.New("unknown role")
	ErrDuplicateEmployee   = errors.New("duplicate employee id")
	ErrSlotOutOfRange      = errors.New("availability slot outside the calendar")
	ErrNegativeHours       = errors.New("negative hour value")
)

// Violation is one failed input rule.
type Violation struct {
	Err     error
	Subject string
	Detail  string
}

func (v Violation) String() string {
	s := v.Err.Error()
	if v.Subject != "" {
		s += ": " + v.Subject
	}
	if v.Detail != "" {
		s += " (" + v.Detail + ")"
	}
	return s
}

// ValidationError aggregates every violation found in one pass so the caller
// can fix the inputs at once.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidInput, strings.Join(parts, "; "))
}

// Unwrap exposes ErrInvalidInput and every specific sentinel to errors.Is.
func (e *ValidationError) Unwrap() []error {
	out := []error{ErrInvalidInput}
	for _, v := range e.Violations {
		out = append(out, v.Err)
	}
	return out
}

func (e *ValidationError) add(err error, subject, format string, args ...any) {
	e.Violations = append(e.Violations, Violation{Err: err, Subject: subject, Detail: fmt.Sprintf(format, args...)})
}

// Validate checks the roster and department requirements against the input
// invariants. Requirement entries for roles nobody holds are fatal when they
// carry a positive target and returned as ignored otherwise.
func Validate(cal Calendar, roster Roster, reqs Requirements) (ignored []Role, err error) {
	verr := &ValidationError{}
	if roster.Gatekeeper == "" {
		verr.add(ErrUnknownRole, "gatekeeper", "gatekeeper role not configured")
	}

	seen := make(map[string]bool, len(roster.Employees))
	gatekeepers := 0
	for _, e := range roster.Employees {
		if seen[e.ID] {
			verr.add(ErrDuplicateEmployee, e.ID, "")
		}
		seen[e.ID] = true
		if len(e.Roles) == 0 {
			verr.add(ErrNoRoles, e.ID, "")
		}
		if e.Qualified(roster.Gatekeeper) {
			gatekeepers++
		}
		if e.MaxHours < 0 || e.TargetHours < 0 {
			verr.add(ErrNegativeHours, e.ID, "max=%g target=%g", e.MaxHours, e.TargetHours)
		}
		if e.TargetHours > e.MaxHours {
			verr.add(ErrTargetExceedsCap, e.ID, "target=%g max=%g", e.TargetHours, e.MaxHours)
		}
		for day, slots := range e.Unavailable {
			if _, ok := cal.DayIndex(day); !ok {
				verr.add(ErrSlotOutOfRange, e.ID, "unknown day %s", day)
				continue
			}
			for _, t := range slots {
				if t < 0 || t >= cal.Slots {
					verr.add(ErrSlotOutOfRange, e.ID, "%s slot %d", day, t)
				}
			}
		}
	}
	if gatekeepers == 0 {
		verr.add(ErrNoGatekeeperStaff, string(roster.Gatekeeper), "")
	}

	for _, dept := range roster.Departments() {
		req, ok := reqs[dept]
		if !ok {
			verr.add(ErrMissingRequirement, string(dept), "")
			continue
		}
		if req.TargetHours < 0 || req.MaxHours < 0 {
			verr.add(ErrNegativeHours, string(dept), "target=%g max=%g", req.TargetHours, req.MaxHours)
		}
		if req.TargetHours > req.MaxHours {
			verr.add(ErrTargetExceedsMax, string(dept), "target=%g max=%g", req.TargetHours, req.MaxHours)
		}
	}

	known := make(map[Role]bool)
	for _, r := range roster.Roles() {
		known[r] = true
	}
	var unheld []Role
	for role := range reqs {
		if role != roster.Gatekeeper && !known[role] {
			unheld = append(unheld, role)
		}
	}
	sortRoles(unheld)
	for _, role := range unheld {
		// Nobody holds the role: a positive target can never be met, a zero
		// target is dropped.
		if reqs[role].TargetHours > 0 {
			verr.add(ErrDepartmentUnstaffed, string(role), "target=%g", reqs[role].TargetHours)
			continue
		}
		ignored = append(ignored, role)
	}

	if len(verr.Violations) > 0 {
		return ignored, verr
	}
	return ignored, nil
}
