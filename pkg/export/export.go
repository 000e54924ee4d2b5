package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/shiftplan/core/model"
)

// Row is one worked slot in exported form.
type Row struct {
	Employee string `json:"employee"`
	Day      string `json:"day"`
	Slot     int    `json:"slot"`
	Start    string `json:"start"`
	Role     string `json:"role"`
}

// Document is the exported form of a solved run.
type Document struct {
	RunID       string    `json:"run_id"`
	Status      string    `json:"status"`
	Objective   float64   `json:"objective"`
	GeneratedAt time.Time `json:"generated_at"`
	SlotMinutes int       `json:"slot_minutes"`
	Days        []string  `json:"days"`
	Assignments []Row     `json:"assignments"`
}

// NewDocument converts a schedule into its exported form.
func NewDocument(runID, status string, objective float64, s *model.Schedule) Document {
	doc := Document{
		RunID:       runID,
		Status:      status,
		Objective:   objective,
		GeneratedAt: time.Now().UTC(),
		Assignments: []Row{},
	}
	if s == nil {
		return doc
	}
	doc.SlotMinutes = s.Calendar.SlotMinutes
	for _, d := range s.Calendar.Days {
		doc.Days = append(doc.Days, string(d))
	}
	for _, a := range s.Assignments {
		doc.Assignments = append(doc.Assignments, Row{
			Employee: a.EmployeeID,
			Day:      string(a.Day),
			Slot:     a.Slot,
			Start:    s.Calendar.SlotKey(a.Slot),
			Role:     string(a.Role),
		})
	}
	return doc
}

// WriteJSON writes the document to w in JSON format.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteCSV writes the assignment table to w in CSV format.
func WriteCSV(w io.Writer, doc Document) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"employee", "day", "slot", "start", "role"}); err != nil {
		return err
	}
	for _, r := range doc.Assignments {
		rec := []string{
			r.Employee,
			r.Day,
			strconv.Itoa(r.Slot),
			r.Start,
			r.Role,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
