package metrics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kilianp07/shiftplan/core/engine"
	coremetrics "github.com/kilianp07/shiftplan/core/metrics"
	"github.com/kilianp07/shiftplan/infra/logger"
	"github.com/kilianp07/shiftplan/internal/eventbus"
)

type progressLog struct {
	mu     sync.Mutex
	events []coremetrics.ProgressEvent
}

func (p *progressLog) RecordProgress(ev coremetrics.ProgressEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func TestProgressCollectorRecordsUntilBusCloses(t *testing.T) {
	bus := eventbus.NewTyped[engine.Progress]()
	log := &progressLog{}
	done := StartProgressCollector(context.Background(), bus, "run-7", log, nil)

	bus.Publish(engine.Progress{Objective: 1, Count: 1})
	bus.Publish(engine.Progress{Objective: 5, Count: 2, Elapsed: time.Second})
	bus.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("collector did not stop")
	}
	log.mu.Lock()
	defer log.mu.Unlock()
	if len(log.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(log.events))
	}
	if log.events[1].RunID != "run-7" || log.events[1].Objective != 5 || log.events[1].Count != 2 {
		t.Fatalf("unexpected event %+v", log.events[1])
	}
}

func TestProgressCollectorStopsOnCancel(t *testing.T) {
	bus := eventbus.NewTyped[engine.Progress]()
	defer bus.Close()
	ctx, cancel := context.WithCancel(context.Background())
	done := StartProgressCollector(ctx, bus, "r", &progressLog{}, nil)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("collector did not stop")
	}
}

type failingRecorder struct{}

func (failingRecorder) RecordProgress(coremetrics.ProgressEvent) error {
	return errors.New("sink offline")
}

type errorLog struct {
	logger.NopLogger
	mu    sync.Mutex
	lines []string
}

func (l *errorLog) Errorf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func TestProgressCollectorLogsRecorderErrors(t *testing.T) {
	bus := eventbus.NewTyped[engine.Progress]()
	log := &errorLog{}
	done := StartProgressCollector(context.Background(), bus, "run-9", failingRecorder{}, log)

	bus.Publish(engine.Progress{Objective: 1, Count: 1})
	bus.Publish(engine.Progress{Objective: 2, Count: 2})
	bus.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("collector did not stop")
	}
	log.mu.Lock()
	defer log.mu.Unlock()
	if len(log.lines) != 2 {
		t.Fatalf("expected 2 logged errors, got %d", len(log.lines))
	}
	if want := "record progress of run run-9: sink offline"; log.lines[0] != want {
		t.Fatalf("got %q, want %q", log.lines[0], want)
	}
}
