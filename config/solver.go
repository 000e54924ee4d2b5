package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/shiftplan/core/engine"
)

// SolverConfig bounds the search.
type SolverConfig struct {
	MaxTimeSeconds float64 `json:"max_time_seconds"`
}

// SetDefaults applies sane defaults.
func (c *SolverConfig) SetDefaults() {
	if c.MaxTimeSeconds == 0 {
		c.MaxTimeSeconds = engine.DefaultBudget.Seconds()
	}
}

// Validate checks mandatory fields.
func (c SolverConfig) Validate() error {
	if c.MaxTimeSeconds <= 0 {
		return fmt.Errorf("solver: max_time_seconds must be positive")
	}
	return nil
}

// Budget returns the wall-clock limit of a solve.
func (c SolverConfig) Budget() time.Duration {
	return time.Duration(c.MaxTimeSeconds * float64(time.Second))
}
