package metrics

import "time"

// SolveEvent summarises one scheduling run.
type SolveEvent struct {
	RunID        string
	Status       string
	Duration     time.Duration
	Objective    float64
	Variables    int
	Constraints  int
	Assignments  int
	CoveredSlots int
	TotalSlots   int
	Improvements int
	Time         time.Time
}

// MetricsSink records run summaries for observability purposes.
type MetricsSink interface {
	RecordSolve(ev SolveEvent) error
}

// DepartmentEvent compares one department's solved hours with its goals.
type DepartmentEvent struct {
	RunID        string
	Department   string
	ActualHours  float64
	TargetHours  float64
	MaxHours     float64
	FocusedHours float64
	DualHours    float64
	Time         time.Time
}

// DepartmentRecorder records department outcomes.
type DepartmentRecorder interface {
	RecordDepartments(evs []DepartmentEvent) error
}

// EmployeeEvent is the weekly outcome of one employee.
type EmployeeEvent struct {
	RunID       string
	EmployeeID  string
	Year        int
	Hours       float64
	TargetHours float64
	Time        time.Time
}

// EmployeeRecorder records employee outcomes.
type EmployeeRecorder interface {
	RecordEmployees(evs []EmployeeEvent) error
}

// ProgressEvent is an improving solution found while a run is in progress.
type ProgressEvent struct {
	RunID     string
	Objective float64
	Count     int
	Elapsed   time.Duration
}

// ProgressRecorder records solve progress.
type ProgressRecorder interface {
	RecordProgress(ev ProgressEvent) error
}

// Flusher is implemented by sinks that buffer until the run ends.
type Flusher interface {
	Flush() error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordSolve(SolveEvent) error              { return nil }
func (NopSink) RecordDepartments([]DepartmentEvent) error { return nil }
func (NopSink) RecordEmployees([]EmployeeEvent) error     { return nil }
func (NopSink) RecordProgress(ProgressEvent) error        { return nil }
