package metrics

import "github.com/kilianp07/shiftplan/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// Listen, when set, exposes /metrics on this address while a run is in
	// progress.
	Listen string `json:"listen"`
}
