package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/shiftplan/core/model"
)

// CalendarConfig describes the weekly grid.
type CalendarConfig struct {
	Days []string `json:"days"`
	// Start is the "HH:MM" time at which the first slot begins.
	Start       string `json:"start"`
	Slots       int    `json:"slots"`
	SlotMinutes int    `json:"slot_minutes"`
}

// SetDefaults applies the Monday to Friday 08:00-17:00 half-hour grid.
func (c *CalendarConfig) SetDefaults() {
	def := model.DefaultCalendar()
	if len(c.Days) == 0 {
		for _, d := range def.Days {
			c.Days = append(c.Days, string(d))
		}
	}
	if c.Start == "" {
		c.Start = "08:00"
	}
	if c.Slots == 0 {
		c.Slots = def.Slots
	}
	if c.SlotMinutes == 0 {
		c.SlotMinutes = def.SlotMinutes
	}
}

// Grid converts the configuration to a validated calendar.
func (c CalendarConfig) Grid() (model.Calendar, error) {
	start, err := time.Parse("15:04", c.Start)
	if err != nil {
		return model.Calendar{}, fmt.Errorf("calendar: start %q is not HH:MM", c.Start)
	}
	cal := model.Calendar{
		Start:       time.Duration(start.Hour())*time.Hour + time.Duration(start.Minute())*time.Minute,
		Slots:       c.Slots,
		SlotMinutes: c.SlotMinutes,
	}
	for _, d := range c.Days {
		cal.Days = append(cal.Days, model.Day(d))
	}
	if err := cal.Validate(); err != nil {
		return model.Calendar{}, err
	}
	if end := cal.SlotStart(cal.Slots); end > 24*time.Hour {
		return model.Calendar{}, fmt.Errorf("calendar: %d slots from %s run past midnight", c.Slots, c.Start)
	}
	return cal, nil
}
