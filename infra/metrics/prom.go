package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	coremetrics "github.com/kilianp07/shiftplan/core/metrics"
)

// PromConfig configures the Prometheus sink. When PushURL is set, Flush
// pushes the collected metrics to a Pushgateway, which suits one-shot runs.
type PromConfig struct {
	PushURL string `json:"push_url"`
	Job     string `json:"job"`
}

// PromSink records scheduling runs in Prometheus metrics.
type PromSink struct {
	runs         *prometheus.CounterVec
	duration     prometheus.Histogram
	objective    prometheus.Gauge
	coverage     prometheus.Gauge
	modelSize    *prometheus.GaugeVec
	department   *prometheus.GaugeVec
	employee     *prometheus.GaugeVec
	improvements prometheus.Counter
	best         prometheus.Gauge

	gatherer prometheus.Gatherer
	cfg      PromConfig
}

// NewPromSink registers schedule metrics on the default Prometheus registerer.
func NewPromSink(cfg PromConfig) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg PromConfig, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if cfg.Job == "" {
		cfg.Job = "shiftplan"
	}
	s := &PromSink{cfg: cfg, gatherer: prometheus.DefaultGatherer}
	if g, ok := reg.(prometheus.Gatherer); ok {
		s.gatherer = g
	}

	var err error
	if s.runs, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_runs_total",
		Help: "Scheduling runs by terminal status",
	}, []string{"status"})); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_solve_seconds",
		Help:    "Wall-clock time of the bounded solve",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 90, 120},
	})); err != nil {
		return nil, err
	}
	if s.objective, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_objective",
		Help: "Objective value of the last solved schedule",
	})); err != nil {
		return nil, err
	}
	if s.coverage, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_gatekeeper_coverage_ratio",
		Help: "Share of slots with the gatekeeper role staffed",
	})); err != nil {
		return nil, err
	}
	if s.modelSize, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "schedule_model_size",
		Help: "Size of the last built model",
	}, []string{"kind"})); err != nil {
		return nil, err
	}
	if s.department, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "schedule_department_hours",
		Help: "Department hours of the last solved schedule",
	}, []string{"department", "kind"})); err != nil {
		return nil, err
	}
	if s.employee, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "schedule_employee_hours",
		Help: "Employee hours of the last solved schedule",
	}, []string{"employee", "kind"})); err != nil {
		return nil, err
	}
	if s.improvements, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_improvements_total",
		Help: "Improving solutions found during solves",
	})); err != nil {
		return nil, err
	}
	if s.best, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_best_objective",
		Help: "Best objective found so far in the running solve",
	})); err != nil {
		return nil, err
	}
	return s, nil
}

// register adds c to reg, reusing an identical collector registered earlier.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordSolve records the run summary.
func (s *PromSink) RecordSolve(ev coremetrics.SolveEvent) error {
	s.runs.WithLabelValues(ev.Status).Inc()
	s.duration.Observe(ev.Duration.Seconds())
	s.objective.Set(ev.Objective)
	if ev.TotalSlots > 0 {
		s.coverage.Set(float64(ev.CoveredSlots) / float64(ev.TotalSlots))
	}
	s.modelSize.WithLabelValues("variables").Set(float64(ev.Variables))
	s.modelSize.WithLabelValues("constraints").Set(float64(ev.Constraints))
	return nil
}

// RecordDepartments sets the department hour gauges.
func (s *PromSink) RecordDepartments(evs []coremetrics.DepartmentEvent) error {
	for _, ev := range evs {
		s.department.WithLabelValues(ev.Department, "actual").Set(ev.ActualHours)
		s.department.WithLabelValues(ev.Department, "target").Set(ev.TargetHours)
		s.department.WithLabelValues(ev.Department, "max").Set(ev.MaxHours)
		s.department.WithLabelValues(ev.Department, "focused").Set(ev.FocusedHours)
		s.department.WithLabelValues(ev.Department, "dual").Set(ev.DualHours)
	}
	return nil
}

// RecordEmployees sets the employee hour gauges.
func (s *PromSink) RecordEmployees(evs []coremetrics.EmployeeEvent) error {
	for _, ev := range evs {
		s.employee.WithLabelValues(ev.EmployeeID, "actual").Set(ev.Hours)
		s.employee.WithLabelValues(ev.EmployeeID, "target").Set(ev.TargetHours)
	}
	return nil
}

// RecordProgress tracks the best objective of the running solve.
func (s *PromSink) RecordProgress(ev coremetrics.ProgressEvent) error {
	s.improvements.Inc()
	s.best.Set(ev.Objective)
	return nil
}

// Flush pushes the metrics to the configured Pushgateway, if any.
func (s *PromSink) Flush() error {
	if s.cfg.PushURL == "" {
		return nil
	}
	if err := push.New(s.cfg.PushURL, s.cfg.Job).Gatherer(s.gatherer).Push(); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
