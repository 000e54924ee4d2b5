package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/shiftplan/config"
	"github.com/kilianp07/shiftplan/core/engine"
	coremetrics "github.com/kilianp07/shiftplan/core/metrics"
	"github.com/kilianp07/shiftplan/core/model"
	coremon "github.com/kilianp07/shiftplan/core/monitoring"
	"github.com/kilianp07/shiftplan/core/publish"
	"github.com/kilianp07/shiftplan/core/report"
	"github.com/kilianp07/shiftplan/infra/loader"
	"github.com/kilianp07/shiftplan/infra/logger"
	"github.com/kilianp07/shiftplan/infra/metrics"
	"github.com/kilianp07/shiftplan/infra/monitoring"
	"github.com/kilianp07/shiftplan/infra/mqtt"
	inforeport "github.com/kilianp07/shiftplan/infra/report"
	"github.com/kilianp07/shiftplan/internal/eventbus"
	"github.com/kilianp07/shiftplan/pkg/export"
)

// ErrNoSchedule is returned when a solve ends without any schedule.
var ErrNoSchedule = errors.New("no schedule produced")

// Service orchestrates loading, solving, reporting and publication.
type Service struct {
	cfg       *config.Config
	cal       model.Calendar
	log       logger.Logger
	loader    *loader.Loader
	sink      *coremetrics.MultiSink
	publisher publish.Publisher
	monitor   coremon.Monitor
	console   io.Writer
}

// Option customises a Service.
type Option func(*Service)

// WithConsole redirects console reports.
func WithConsole(w io.Writer) Option { return func(s *Service) { s.console = w } }

// WithPublisher replaces the configured publisher.
func WithPublisher(p publish.Publisher) Option { return func(s *Service) { s.publisher = p } }

// WithMonitor replaces the configured error monitor.
func WithMonitor(m coremon.Monitor) Option { return func(s *Service) { s.monitor = m } }

// WithSink replaces the configured metrics sinks.
func WithSink(sink coremetrics.MetricsSink) Option {
	return func(s *Service) { s.sink = coremetrics.NewMultiSink(sink) }
}

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	cal, err := cfg.Calendar.Grid()
	if err != nil {
		return nil, err
	}
	logg := logger.New("service")
	svc := &Service{
		cfg:     cfg,
		cal:     cal,
		log:     logg,
		loader:  loader.New(cal, logger.New("loader")),
		console: os.Stdout,
	}
	for _, opt := range opts {
		opt(svc)
	}

	if svc.sink == nil {
		sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
		if err != nil {
			return nil, fmt.Errorf("metrics sink: %w", err)
		}
		svc.sink = coremetrics.NewMultiSink(sink)
	}
	if svc.monitor == nil {
		mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
		if err != nil {
			return nil, fmt.Errorf("sentry: %w", err)
		}
		svc.monitor = mon
	}
	if svc.publisher == nil {
		svc.publisher = publish.NopPublisher{}
		if cfg.Publish.MQTT.Enabled {
			pub, err := mqtt.NewPublisher(cfg.Publish.MQTT)
			if err != nil {
				return nil, fmt.Errorf("mqtt publisher: %w", err)
			}
			svc.publisher = pub
		}
	}
	return svc, nil
}

// Load reads the roster and requirement tables.
func (s *Service) Load(rosterPath, requirementsPath string) (engine.Input, error) {
	emps, err := s.loader.RosterFile(rosterPath)
	if err != nil {
		s.capture(err, "", "load")
		return engine.Input{}, err
	}
	reqs, err := s.loader.RequirementsFile(requirementsPath)
	if err != nil {
		s.capture(err, "", "load")
		return engine.Input{}, err
	}
	return engine.Input{
		Calendar:     s.cal,
		Roster:       model.Roster{Employees: emps, Gatekeeper: model.Role(s.cfg.Policy.GatekeeperRole)},
		Requirements: reqs,
	}, nil
}

// Validate checks in and builds its model without solving it.
func (s *Service) Validate(in engine.Input) (engine.Stats, error) {
	eng, err := s.engine(nil)
	if err != nil {
		s.capture(err, "", "validate")
		return engine.Stats{}, err
	}
	p, err := eng.Build(in)
	if err != nil {
		s.capture(err, "", "validate")
		return engine.Stats{}, err
	}
	return p.Stats(), nil
}

// Run is the outcome of one Solve call.
type Run struct {
	ID        string
	Result    *engine.Result
	Report    *report.Report
	Files     []string
	MessageID string
}

// Solve runs the engine on in, then records metrics, writes the configured
// reports and publishes the schedule. A run without schedule returns the Run
// together with ErrNoSchedule.
func (s *Service) Solve(ctx context.Context, in engine.Input) (*Run, error) {
	run := &Run{ID: uuid.NewString()}
	bus := eventbus.NewTyped[engine.Progress](eventbus.WithBuffer(32))
	eng, err := s.engine(bus)
	if err != nil {
		bus.Close()
		s.capture(err, run.ID, "solve")
		return nil, err
	}
	collected := metrics.StartProgressCollector(ctx, bus, run.ID, s.sink, s.log)
	logged := s.logProgress(bus)

	s.log.Infof("run %s: solving %d employees over %d days", run.ID, len(in.Roster.Employees), in.Calendar.NumDays())
	res, err := eng.Solve(ctx, in)
	bus.Close()
	<-collected
	<-logged
	if err != nil {
		s.capture(err, run.ID, "solve")
		return nil, err
	}
	run.Result = res
	s.log.Infof("run %s: %s objective=%.2f improvements=%d in %s", run.ID, res.Status, res.Objective, res.Improvements, res.Elapsed.Round(time.Millisecond))

	if res.Schedule == nil {
		s.log.Errorf("run %s: %s", run.ID, res.Message)
		s.record(run, in)
		err := fmt.Errorf("%w: %s", ErrNoSchedule, res.Message)
		s.capture(err, run.ID, res.Status.String())
		return run, err
	}
	run.Report = report.Build(in, s.cfg.Policy, res.Schedule)
	s.record(run, in)

	doc := export.NewDocument(run.ID, res.Status.String(), res.Objective, res.Schedule)
	files, err := s.write(run, doc)
	run.Files = files
	if err != nil {
		s.capture(err, run.ID, "report")
		return run, err
	}
	if run.MessageID, err = s.publisher.PublishSchedule(ctx, doc); err != nil {
		s.capture(err, run.ID, "publish")
		return run, fmt.Errorf("publish: %w", err)
	}
	return run, nil
}

// capture reports err with its stage; runID is empty outside a solve.
func (s *Service) capture(err error, runID, stage string) {
	tags := map[string]string{"stage": stage}
	if runID != "" {
		tags["run_id"] = runID
	}
	s.monitor.CaptureException(err, tags)
}

// Close releases the publisher and flushes the sinks and the monitor.
func (s *Service) Close() error {
	s.publisher.Close()
	s.monitor.Flush(2 * time.Second)
	return s.sink.Flush()
}

func (s *Service) engine(progress engine.ProgressPublisher) (*engine.Engine, error) {
	opts := []engine.Option{
		engine.WithLogger(logger.New("engine")),
		engine.WithBudget(s.cfg.Solver.Budget()),
	}
	if progress != nil {
		opts = append(opts, engine.WithProgress(progress))
	}
	return engine.New(s.cfg.Policy, s.cfg.Weights, opts...)
}

func (s *Service) logProgress(bus *eventbus.TypedBus[engine.Progress]) <-chan struct{} {
	done := make(chan struct{})
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		for p := range sub {
			s.log.Infof("improved schedule #%d: objective=%.2f after %s", p.Count, p.Objective, p.Elapsed.Round(time.Millisecond))
		}
	}()
	return done
}

// record sends the run's events to the metrics sinks. Sink failures are
// logged, never returned.
func (s *Service) record(run *Run, in engine.Input) {
	res := run.Result
	now := time.Now()
	ev := coremetrics.SolveEvent{
		RunID:        run.ID,
		Status:       res.Status.String(),
		Duration:     res.Elapsed,
		Objective:    res.Objective,
		Variables:    res.Stats.Variables,
		Constraints:  res.Stats.Constraints,
		Improvements: res.Improvements,
		TotalSlots:   in.Calendar.Cells(),
		Time:         now,
	}
	if res.Schedule != nil {
		ev.Assignments = len(res.Schedule.Assignments)
	}
	if run.Report != nil {
		ev.CoveredSlots = run.Report.CoveredSlots
	}
	if err := s.sink.RecordSolve(ev); err != nil {
		s.log.Errorf("record solve: %v", err)
	}
	if run.Report == nil {
		return
	}

	depts := make([]coremetrics.DepartmentEvent, 0, len(run.Report.Departments))
	for _, d := range run.Report.Departments {
		depts = append(depts, coremetrics.DepartmentEvent{
			RunID:        run.ID,
			Department:   string(d.Role),
			ActualHours:  d.Actual,
			TargetHours:  d.Target,
			MaxHours:     d.Max,
			FocusedHours: d.Focused,
			DualHours:    d.DualCounted,
			Time:         now,
		})
	}
	if err := s.sink.RecordDepartments(depts); err != nil {
		s.log.Errorf("record departments: %v", err)
	}

	emps := make([]coremetrics.EmployeeEvent, 0, len(run.Report.Employees))
	for _, e := range run.Report.Employees {
		emps = append(emps, coremetrics.EmployeeEvent{
			RunID:       run.ID,
			EmployeeID:  e.ID,
			Year:        e.Year,
			Hours:       e.Hours,
			TargetHours: e.TargetHours,
			Time:        now,
		})
	}
	if err := s.sink.RecordEmployees(emps); err != nil {
		s.log.Errorf("record employees: %v", err)
	}
}

// write renders the configured report formats and returns the written files.
func (s *Service) write(run *Run, doc export.Document) ([]string, error) {
	rc := s.cfg.Report
	var files []string
	if rc.Wants(config.FormatConsole) {
		fmt.Fprintf(s.console, "Run %s: %s (objective %.2f)\n", run.ID, run.Result.Status, run.Result.Objective)
		if err := inforeport.WriteConsole(s.console, run.Report); err != nil {
			return files, fmt.Errorf("console report: %w", err)
		}
	}
	if rc.Wants(config.FormatXLSX) {
		path := rc.Path(config.FormatXLSX)
		if err := ensureDir(path); err != nil {
			return files, err
		}
		if err := inforeport.WriteWorkbook(path, run.Report); err != nil {
			return files, fmt.Errorf("workbook: %w", err)
		}
		files = append(files, path)
	}

	writers := []struct {
		format string
		write  func(io.Writer, export.Document) error
	}{
		{config.FormatJSON, export.WriteJSON},
		{config.FormatCSV, export.WriteCSV},
		{config.FormatHTML, func(w io.Writer, _ export.Document) error { return inforeport.WriteCharts(w, run.Report) }},
	}
	for _, w := range writers {
		if !rc.Wants(w.format) {
			continue
		}
		path := rc.Path(w.format)
		if err := writeFile(path, func(f io.Writer) error { return w.write(f, doc) }); err != nil {
			return files, fmt.Errorf("%s export: %w", w.format, err)
		}
		files = append(files, path)
	}
	for _, f := range files {
		s.log.Infof("wrote %s", f)
	}
	return files, nil
}

func ensureDir(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		return os.MkdirAll(dir, 0o755)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
