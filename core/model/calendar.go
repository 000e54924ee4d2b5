package model

import (
	"fmt"
	"math"
	"time"
)

// Day names a day of the planning week.
type Day string

// Calendar is the static (Day, Slot) grid every schedule is expressed on.
// Slots are fixed-width and contiguous; slot 0 starts at Start.
type Calendar struct {
	Days        []Day
	Start       time.Duration // offset from midnight of the first slot
	Slots       int
	SlotMinutes int
}

// DefaultCalendar is the Monday to Friday 08:00-17:00 half-hour grid.
func DefaultCalendar() Calendar {
	return Calendar{
		Days:        []Day{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
		Start:       8 * time.Hour,
		Slots:       18,
		SlotMinutes: 30,
	}
}

// NumDays returns the number of days in the grid.
func (c Calendar) NumDays() int { return len(c.Days) }

// Cells returns the number of (day, slot) cells.
func (c Calendar) Cells() int { return len(c.Days) * c.Slots }

// SlotsPerHour returns how many slots make up one hour.
func (c Calendar) SlotsPerHour() float64 {
	if c.SlotMinutes <= 0 {
		return 0
	}
	return 60 / float64(c.SlotMinutes)
}

// HoursToSlots converts an hour amount to a whole number of slots,
// dropping partial slots so the result never exceeds h.
func (c Calendar) HoursToSlots(h float64) int {
	return int(FloorUnits(h * c.SlotsPerHour()))
}

// FloorUnits rounds x down to a whole unit, absorbing float noise such as
// 37.99999999 for 38.
func FloorUnits(x float64) int64 {
	if math.IsNaN(x) || x <= 0 {
		return 0
	}
	return int64(math.Floor(x + 1e-9))
}

// SlotsToHours converts a slot count back to hours.
func (c Calendar) SlotsToHours(n int) float64 {
	return float64(n) * float64(c.SlotMinutes) / 60
}

// DayIndex returns the position of day in the grid.
func (c Calendar) DayIndex(day Day) (int, bool) {
	for i, d := range c.Days {
		if d == day {
			return i, true
		}
	}
	return -1, false
}

// SlotStart returns the offset from midnight at which slot t begins.
func (c Calendar) SlotStart(t int) time.Duration {
	return c.Start + time.Duration(t*c.SlotMinutes)*time.Minute
}

// SlotKey returns the "HH:MM" start time of slot t, as used in availability
// column headers.
func (c Calendar) SlotKey(t int) string {
	s := c.SlotStart(t)
	return fmt.Sprintf("%02d:%02d", int(s.Hours()), int(s.Minutes())%60)
}

// SlotLabel renders slot t as a 12-hour range such as "1:00-1:30".
func (c Calendar) SlotLabel(t int) string {
	return clock12(c.SlotStart(t)) + "-" + clock12(c.SlotStart(t+1))
}

func clock12(d time.Duration) string {
	h := int(d.Hours()) % 24
	m := int(d.Minutes()) % 60
	if h > 12 {
		h -= 12
	}
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d", h, m)
}

// Validate checks the grid is usable.
func (c Calendar) Validate() error {
	if len(c.Days) == 0 {
		return fmt.Errorf("calendar: at least one day is required")
	}
	if c.Slots <= 0 {
		return fmt.Errorf("calendar: slots must be positive, got %d", c.Slots)
	}
	if c.SlotMinutes <= 0 || 60%c.SlotMinutes != 0 {
		return fmt.Errorf("calendar: slot_minutes must divide 60, got %d", c.SlotMinutes)
	}
	seen := make(map[Day]bool, len(c.Days))
	for _, d := range c.Days {
		if seen[d] {
			return fmt.Errorf("calendar: duplicate day %s", d)
		}
		seen[d] = true
	}
	return nil
}
