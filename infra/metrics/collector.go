package metrics

import (
	"context"

	"github.com/kilianp07/shiftplan/core/engine"
	coremetrics "github.com/kilianp07/shiftplan/core/metrics"
	"github.com/kilianp07/shiftplan/infra/logger"
)

// ProgressSource is the subscription side of the progress bus.
type ProgressSource interface {
	Subscribe() <-chan engine.Progress
	Unsubscribe(<-chan engine.Progress)
}

// StartProgressCollector subscribes to src and records every progress event
// of run runID. It stops when ctx is canceled or the bus is closed; the
// returned channel is closed once it has stopped. Recorder failures are
// logged to log and never stop the collector.
func StartProgressCollector(ctx context.Context, src ProgressSource, runID string, rec coremetrics.ProgressRecorder, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if src == nil || rec == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := src.Subscribe()
	go func() {
		defer close(done)
		defer src.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case p, ok := <-sub:
				if !ok {
					return
				}
				err := rec.RecordProgress(coremetrics.ProgressEvent{
					RunID:     runID,
					Objective: p.Objective,
					Count:     p.Count,
					Elapsed:   p.Elapsed,
				})
				if err != nil {
					log.Errorf("record progress of run %s: %v", runID, err)
				}
			}
		}
	}()
	return done
}
