// Package loader reads roster and department requirement tables from CSV.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/kilianp07/shiftplan/core/logger"
	"github.com/kilianp07/shiftplan/core/model"
)

// ErrMalformed is returned for tables that cannot be parsed.
var ErrMalformed = errors.New("malformed input table")

const roleSeparator = ";"

var rosterColumns = []string{"employee", "roles", "max_hours", "target_hours", "year"}

var requirementColumns = []string{"department", "target_hours", "max_hours"}

// Loader parses input tables against a calendar grid.
type Loader struct {
	cal model.Calendar
	log logger.Logger
}

// New creates a Loader. A nil logger discards warnings.
func New(cal model.Calendar, log logger.Logger) *Loader {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Loader{cal: cal, log: log}
}

// RosterFile reads a roster table from path.
func (l *Loader) RosterFile(path string) ([]model.Employee, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()
	emps, err := l.Roster(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return emps, nil
}

// RequirementsFile reads a department requirement table from path.
func (l *Loader) RequirementsFile(path string) (model.Requirements, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open requirements: %w", err)
	}
	defer f.Close()
	reqs, err := l.Requirements(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reqs, nil
}

// availabilityColumn maps a header column to a calendar cell.
type availabilityColumn struct {
	index int
	day   model.Day
	slot  int
}

// Roster parses the header
// employee,roles,max_hours,target_hours,year,<Day>_<HH:MM>...
// Roles are separated by ';'. An availability cell of 1 means available, 0 or
// empty unavailable. Cells without a column, including those past the end
// of a short row, are available.
func (l *Loader) Roster(r io.Reader) ([]model.Employee, error) {
	records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty roster", ErrMalformed)
	}
	header := normalizeHeader(records[0])
	if err := expectColumns(header, rosterColumns); err != nil {
		return nil, err
	}
	avail, err := l.availabilityColumns(header[len(rosterColumns):], len(rosterColumns))
	if err != nil {
		return nil, err
	}

	emps := make([]model.Employee, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		if blank(rec) {
			continue
		}
		e, err := l.employee(rec, avail)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		emps = append(emps, e)
	}
	l.log.Infof("loaded %d employees (%d availability columns)", len(emps), len(avail))
	return emps, nil
}

func (l *Loader) availabilityColumns(header []string, offset int) ([]availabilityColumn, error) {
	slots := make(map[string]int, l.cal.Slots)
	for t := 0; t < l.cal.Slots; t++ {
		slots[l.cal.SlotKey(t)] = t
	}
	var cols []availabilityColumn
	for i, name := range header {
		day, key, ok := strings.Cut(name, "_")
		if !ok {
			return nil, fmt.Errorf("%w: availability column %q is not <Day>_<HH:MM>", ErrMalformed, name)
		}
		d, known := l.dayByName(day)
		if !known {
			l.log.Warnf("ignoring availability column %s: day not in calendar", name)
			continue
		}
		t, ok := slots[key]
		if !ok {
			return nil, fmt.Errorf("%w: availability column %q does not start a slot", ErrMalformed, name)
		}
		cols = append(cols, availabilityColumn{index: offset + i, day: d, slot: t})
	}
	return cols, nil
}

func (l *Loader) dayByName(name string) (model.Day, bool) {
	for _, d := range l.cal.Days {
		if strings.EqualFold(string(d), name) {
			return d, true
		}
	}
	return "", false
}

func (l *Loader) employee(rec []string, avail []availabilityColumn) (model.Employee, error) {
	id := field(rec, 0)
	if id == "" {
		return model.Employee{}, fmt.Errorf("%w: missing employee id", ErrMalformed)
	}
	maxHours, err := parseFloat(field(rec, 2), "max_hours")
	if err != nil {
		return model.Employee{}, fmt.Errorf("%s: %w", id, err)
	}
	target, err := parseFloat(field(rec, 3), "target_hours")
	if err != nil {
		return model.Employee{}, fmt.Errorf("%s: %w", id, err)
	}
	year := 0
	if s := field(rec, 4); s != "" {
		if year, err = strconv.Atoi(s); err != nil {
			return model.Employee{}, fmt.Errorf("%w: %s: year %q", ErrMalformed, id, s)
		}
	}

	e := model.Employee{
		ID:          id,
		Roles:       parseRoles(field(rec, 1)),
		MaxHours:    maxHours,
		TargetHours: target,
		Year:        year,
	}
	for _, c := range avail {
		if c.index >= len(rec) {
			continue
		}
		switch v := field(rec, c.index); v {
		case "1":
		case "0", "":
			if e.Unavailable == nil {
				e.Unavailable = make(map[model.Day][]int)
			}
			e.Unavailable[c.day] = append(e.Unavailable[c.day], c.slot)
		default:
			return model.Employee{}, fmt.Errorf("%w: %s: availability %q must be 0 or 1", ErrMalformed, id, v)
		}
	}
	return e, nil
}

// Requirements parses the header department,target_hours,max_hours.
func (l *Loader) Requirements(r io.Reader) (model.Requirements, error) {
	records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty requirements", ErrMalformed)
	}
	if err := expectColumns(normalizeHeader(records[0]), requirementColumns); err != nil {
		return nil, err
	}
	reqs := make(model.Requirements, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		if blank(rec) {
			continue
		}
		role := model.Role(field(rec, 0))
		if role == "" {
			return nil, fmt.Errorf("line %d: %w: missing department", line, ErrMalformed)
		}
		if _, dup := reqs[role]; dup {
			return nil, fmt.Errorf("line %d: %w: duplicate department %s", line, ErrMalformed, role)
		}
		target, err := parseFloat(field(rec, 1), "target_hours")
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", line, role, err)
		}
		maxHours, err := parseFloat(field(rec, 2), "max_hours")
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", line, role, err)
		}
		reqs[role] = model.Requirement{TargetHours: target, MaxHours: maxHours}
	}
	l.log.Infof("loaded %d department requirements", len(reqs))
	return reqs, nil
}

func readAll(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return records, nil
}

func normalizeHeader(h []string) []string {
	out := make([]string, len(h))
	for i, c := range h {
		c = strings.TrimSpace(c)
		if i == 0 {
			c = strings.TrimPrefix(c, "\ufeff")
		}
		out[i] = c
	}
	return out
}

func expectColumns(header, want []string) error {
	if len(header) < len(want) {
		return fmt.Errorf("%w: header needs columns %s", ErrMalformed, strings.Join(want, ","))
	}
	for i, w := range want {
		if !strings.EqualFold(header[i], w) {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrMalformed, i+1, header[i], w)
		}
	}
	return nil
}

func parseRoles(s string) []model.Role {
	var roles []model.Role
	for _, part := range strings.Split(s, roleSeparator) {
		if p := strings.TrimSpace(part); p != "" {
			roles = append(roles, model.Role(p))
		}
	}
	return roles
}

func parseFloat(s, name string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s %q", ErrMalformed, name, s)
	}
	return v, nil
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
