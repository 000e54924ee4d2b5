package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/shiftplan/core/model"
)

type recordingLogger struct {
	warnings []string
}

func (r *recordingLogger) Debugf(string, ...any)         {}
func (r *recordingLogger) Debugw(string, map[string]any) {}
func (r *recordingLogger) Infof(string, ...any)          {}
func (r *recordingLogger) Infow(string, map[string]any)  {}
func (r *recordingLogger) Warnf(f string, _ ...any)      { r.warnings = append(r.warnings, f) }
func (r *recordingLogger) Errorf(string, ...any)         {}

func twoSlotCalendar() model.Calendar {
	cal := model.DefaultCalendar()
	cal.Days = []model.Day{"Monday", "Tuesday"}
	cal.Slots = 2
	return cal
}

func TestRosterParsesRolesAndAvailability(t *testing.T) {
	in := "employee,roles,max_hours,target_hours,year,Monday_08:00,Monday_08:30,Tuesday_08:00\n" +
		"ada,front_desk;career_education,12,10,2,1,0,\n" +
		"bob, front_desk ,8.5,6,1,1,1,1\n"
	emps, err := New(twoSlotCalendar(), nil).Roster(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, emps, 2)

	ada := emps[0]
	assert.Equal(t, "ada", ada.ID)
	assert.Equal(t, []model.Role{"front_desk", "career_education"}, ada.Roles)
	assert.Equal(t, 12.0, ada.MaxHours)
	assert.Equal(t, 10.0, ada.TargetHours)
	assert.Equal(t, 2, ada.Year)
	assert.Equal(t, []int{1}, ada.Unavailable["Monday"])
	assert.Equal(t, []int{0}, ada.Unavailable["Tuesday"])
	assert.True(t, ada.Available("Tuesday", 1), "cells without a column are available")

	bob := emps[1]
	assert.Equal(t, []model.Role{"front_desk"}, bob.Roles)
	assert.Equal(t, 8.5, bob.MaxHours)
	assert.Empty(t, bob.Unavailable)
}

func TestRosterSkipsUnknownDaysWithWarning(t *testing.T) {
	log := &recordingLogger{}
	in := "employee,roles,max_hours,target_hours,year,Saturday_08:00\n" +
		"ada,front_desk,10,8,1,0\n"
	emps, err := New(twoSlotCalendar(), log).Roster(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, emps, 1)
	assert.Empty(t, emps[0].Unavailable)
	assert.Len(t, log.warnings, 1)
}

func TestRosterRejectsMalformedTables(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"wrong header", "name,roles,max_hours,target_hours,year\n"},
		{"short header", "employee,roles\n"},
		{"bad hours", "employee,roles,max_hours,target_hours,year\nada,front_desk,lots,1,1\n"},
		{"bad year", "employee,roles,max_hours,target_hours,year\nada,front_desk,10,1,senior\n"},
		{"missing id", "employee,roles,max_hours,target_hours,year\n,front_desk,10,1,1\n"},
		{"bad column", "employee,roles,max_hours,target_hours,year,Monday0800\n"},
		{"off-grid slot", "employee,roles,max_hours,target_hours,year,Monday_08:15\n"},
		{"bad availability", "employee,roles,max_hours,target_hours,year,Monday_08:00\nada,front_desk,10,1,1,yes\n"},
		{"NaN hours", "employee,roles,max_hours,target_hours,year\nada,front_desk,NaN,1,1\n"},
		{"infinite hours", "employee,roles,max_hours,target_hours,year\nada,front_desk,+Inf,1,1\n"},
		{"infinite target", "employee,roles,max_hours,target_hours,year\nada,front_desk,10,-inf,1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(twoSlotCalendar(), nil).Roster(strings.NewReader(tt.in))
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestRequirements(t *testing.T) {
	in := "department,target_hours,max_hours\n" +
		"career_education,10,12\n" +
		"\n" +
		"marketing,0,4\n"
	reqs, err := New(twoSlotCalendar(), nil).Requirements(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, model.Requirements{
		"career_education": {TargetHours: 10, MaxHours: 12},
		"marketing":        {TargetHours: 0, MaxHours: 4},
	}, reqs)
}

func TestRosterShortRowLeavesMissingCellsAvailable(t *testing.T) {
	in := "employee,roles,max_hours,target_hours,year,Monday_08:00,Monday_08:30,Tuesday_08:00\n" +
		"ada,front_desk,10,8,1,0\n" +
		"bob,front_desk,10,8,1\n"
	emps, err := New(twoSlotCalendar(), nil).Roster(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, emps, 2)

	assert.Equal(t, map[model.Day][]int{"Monday": {0}}, emps[0].Unavailable)
	assert.True(t, emps[0].Available("Monday", 1))
	assert.True(t, emps[0].Available("Tuesday", 0))
	assert.Empty(t, emps[1].Unavailable)
}

func TestRequirementsRejectsNonFiniteHours(t *testing.T) {
	for _, v := range []string{"NaN", "Inf", "-Infinity"} {
		in := "department,target_hours,max_hours\nmarketing,1," + v + "\n"
		_, err := New(twoSlotCalendar(), nil).Requirements(strings.NewReader(in))
		assert.ErrorIs(t, err, ErrMalformed, v)
	}
}

func TestRequirementsRejectsDuplicates(t *testing.T) {
	in := "department,target_hours,max_hours\nmarketing,1,2\nmarketing,2,3\n"
	_, err := New(twoSlotCalendar(), nil).Requirements(strings.NewReader(in))
	require.ErrorIs(t, err, ErrMalformed)
}

func TestFilesFromDisk(t *testing.T) {
	dir := t.TempDir()
	roster := filepath.Join(dir, "roster.csv")
	reqs := filepath.Join(dir, "requirements.csv")
	require.NoError(t, os.WriteFile(roster, []byte("\ufeffemployee,roles,max_hours,target_hours,year\nada,front_desk,10,8,1\n"), 0o644))
	require.NoError(t, os.WriteFile(reqs, []byte("department,target_hours,max_hours\n"), 0o644))

	l := New(twoSlotCalendar(), nil)
	emps, err := l.RosterFile(roster)
	require.NoError(t, err)
	assert.Len(t, emps, 1)
	r, err := l.RequirementsFile(reqs)
	require.NoError(t, err)
	assert.Empty(t, r)

	_, err = l.RosterFile(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}
