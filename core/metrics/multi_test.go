package metrics

import (
	"errors"
	"testing"
)

type recordSink struct {
	count int
	err   error
}

func (r *recordSink) RecordSolve(SolveEvent) error {
	r.count++
	return r.err
}

func (r *recordSink) RecordDepartments([]DepartmentEvent) error {
	r.count++
	return nil
}

func (r *recordSink) Flush() error {
	r.count++
	return nil
}

// solveOnly supports no optional recorder.
type solveOnly struct{ count int }

func (s *solveOnly) RecordSolve(SolveEvent) error {
	s.count++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	s3 := &solveOnly{}
	m := NewMultiSink(s1, s2, s3)
	if err := m.RecordSolve(SolveEvent{RunID: "r"}); err != nil {
		t.Fatalf("record solve: %v", err)
	}
	if err := m.RecordDepartments(nil); err != nil {
		t.Fatalf("record departments: %v", err)
	}
	if err := m.RecordEmployees(nil); err != nil {
		t.Fatalf("record employees: %v", err)
	}
	if err := m.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if s1.count != 3 || s2.count != 3 || s3.count != 1 {
		t.Fatalf("events not forwarded: %d %d %d", s1.count, s2.count, s3.count)
	}
}

func TestMultiSinkStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	s1 := &recordSink{err: boom}
	s2 := &recordSink{}
	if err := NewMultiSink(s1, s2).RecordSolve(SolveEvent{}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if s2.count != 0 {
		t.Fatalf("second sink should not be called")
	}
}
