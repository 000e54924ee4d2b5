package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/shiftplan/core/metrics"
)

type bodyRecorder struct {
	mu     sync.Mutex
	bodies []string
}

func (b *bodyRecorder) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.bodies = append(b.bodies, strings.TrimSpace(string(data)))
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func lineProtocol(p *write.Point) string {
	return strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
}

func TestInfluxSink_RecordSolve(t *testing.T) {
	rec := &bodyRecorder{}
	srv := rec.server(t)
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	now := time.Now()
	ev := coremetrics.SolveEvent{
		RunID:        "run-1",
		Status:       "optimal",
		Duration:     1500 * time.Millisecond,
		Objective:    12345.6789,
		Variables:    100,
		Constraints:  250,
		Assignments:  40,
		CoveredSlots: 88,
		TotalSlots:   90,
		Improvements: 3,
		Time:         now,
	}
	if err := sink.RecordSolve(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("schedule_run").
		AddTag("run_id", "run-1").
		AddTag("status", "optimal").
		AddField("duration_s", 1.5).
		AddField("objective", 12345.679).
		AddField("variables", 100).
		AddField("constraints", 250).
		AddField("assignments", 40).
		AddField("covered_slots", 88).
		AddField("total_slots", 90).
		AddField("improvements", 3).
		SetTime(now)
	if len(rec.bodies) != 1 || rec.bodies[0] != lineProtocol(p) {
		t.Errorf("unexpected body: %#v", rec.bodies)
	}
}

func TestInfluxSink_RecordDepartments(t *testing.T) {
	rec := &bodyRecorder{}
	srv := rec.server(t)
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "token", Org: "org", Bucket: "bucket"})
	now := time.Now()
	evs := []coremetrics.DepartmentEvent{
		{RunID: "r", Department: "career_education", ActualHours: 10.5, TargetHours: 12, MaxHours: 15, FocusedHours: 8, DualHours: 5, Time: now},
		{RunID: "r", Department: "advising", ActualHours: 3, TargetHours: 3, MaxHours: 4, FocusedHours: 3, Time: now},
	}
	if err := sink.RecordDepartments(evs); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if len(rec.bodies) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(rec.bodies))
	}
	p := write.NewPointWithMeasurement("department_hours").
		AddTag("run_id", "r").
		AddTag("department", "career_education").
		AddField("actual", 10.5).
		AddField("target", 12.0).
		AddField("max", 15.0).
		AddField("focused", 8.0).
		AddField("dual", 5.0).
		SetTime(now)
	if rec.bodies[0] != lineProtocol(p) {
		t.Errorf("unexpected body: %s", rec.bodies[0])
	}
}

func TestInfluxSink_RecordEmployees(t *testing.T) {
	rec := &bodyRecorder{}
	srv := rec.server(t)
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	now := time.Now()
	if err := sink.RecordEmployees([]coremetrics.EmployeeEvent{
		{RunID: "r", EmployeeID: "ana", Year: 2, Hours: 9.5, TargetHours: 10, Time: now},
	}); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("employee_hours").
		AddTag("run_id", "r").
		AddTag("employee", "ana").
		AddField("year", 2).
		AddField("hours", 9.5).
		AddField("target", 10.0).
		SetTime(now)
	if len(rec.bodies) != 1 || rec.bodies[0] != lineProtocol(p) {
		t.Errorf("unexpected body: %#v", rec.bodies)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "tok", Org: "org", Bucket: "bucket"})
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
