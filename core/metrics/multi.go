package metrics

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSolve forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordSolve(ev SolveEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordSolve(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordDepartments forwards department events to sinks that support them.
func (m *MultiSink) RecordDepartments(evs []DepartmentEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(DepartmentRecorder); ok {
			if err := rec.RecordDepartments(evs); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordEmployees forwards employee events to sinks that support them.
func (m *MultiSink) RecordEmployees(evs []EmployeeEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(EmployeeRecorder); ok {
			if err := rec.RecordEmployees(evs); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordProgress forwards progress events to sinks that support them.
func (m *MultiSink) RecordProgress(ev ProgressEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(ProgressRecorder); ok {
			if err := rec.RecordProgress(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush flushes every buffering sink and returns the first error.
func (m *MultiSink) Flush() error {
	var first error
	for _, s := range m.Sinks {
		if f, ok := s.(Flusher); ok {
			if err := f.Flush(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
