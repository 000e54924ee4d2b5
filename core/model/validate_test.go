package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	frontDesk Role = "front_desk"
	career    Role = "career_education"
	archive   Role = "archive"
)

func validRoster() Roster {
	return Roster{Gatekeeper: frontDesk, Employees: []Employee{
		{ID: "ana", Roles: []Role{frontDesk, career}, MaxHours: 15, TargetHours: 10, Year: 2},
		{ID: "ben", Roles: []Role{career}, MaxHours: 8, TargetHours: 8, Year: 1,
			Unavailable: map[Day][]int{"Monday": {0, 1}}},
	}}
}

func TestValidateAcceptsConsistentInput(t *testing.T) {
	ignored, err := Validate(DefaultCalendar(), validRoster(), Requirements{
		career:  {TargetHours: 10, MaxHours: 12},
		archive: {TargetHours: 0, MaxHours: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, []Role{archive}, ignored)
}

func TestValidateCollectsEveryViolation(t *testing.T) {
	r := validRoster()
	r.Employees = append(r.Employees,
		Employee{ID: "ana", Roles: []Role{frontDesk}, MaxHours: 5, TargetHours: 6},
		Employee{ID: "cal", MaxHours: 4, TargetHours: 2,
			Unavailable: map[Day][]int{"Monday": {18}, "Sunday": {0}}},
	)
	_, err := Validate(DefaultCalendar(), r, Requirements{
		career:  {TargetHours: 14, MaxHours: 12},
		archive: {TargetHours: 3, MaxHours: 4},
	})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	for _, want := range []error{
		ErrInvalidInput,
		ErrDuplicateEmployee,
		ErrTargetExceedsCap,
		ErrNoRoles,
		ErrSlotOutOfRange,
		ErrTargetExceedsMax,
		ErrDepartmentUnstaffed,
	} {
		assert.ErrorIs(t, err, want)
	}
	assert.NotErrorIs(t, err, ErrNoGatekeeperStaff)
	assert.Contains(t, err.Error(), "cal")
}

func TestValidateRequiresGatekeeperStaff(t *testing.T) {
	r := Roster{Gatekeeper: frontDesk, Employees: []Employee{
		{ID: "ben", Roles: []Role{career}, MaxHours: 8, TargetHours: 8},
	}}
	_, err := Validate(DefaultCalendar(), r, Requirements{career: {TargetHours: 2, MaxHours: 4}})
	assert.ErrorIs(t, err, ErrNoGatekeeperStaff)
}

func TestValidateRequiresDepartmentRequirement(t *testing.T) {
	_, err := Validate(DefaultCalendar(), validRoster(), Requirements{})
	assert.ErrorIs(t, err, ErrMissingRequirement)
}
