package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/shiftplan/core/engine"
	"github.com/kilianp07/shiftplan/core/metrics"
	"github.com/kilianp07/shiftplan/infra/monitoring"
	"github.com/kilianp07/shiftplan/infra/mqtt"
)

// EnvPrefix marks environment overrides. Nested keys use "__", e.g.
// SHIFTPLAN_SOLVER__MAX_TIME_SECONDS=30.
const EnvPrefix = "SHIFTPLAN_"

type Config struct {
	Calendar CalendarConfig          `json:"calendar"`
	Policy   engine.Policy           `json:"policy"`
	Weights  engine.Weights          `json:"weights"`
	Solver   SolverConfig            `json:"solver"`
	Logging  LoggingConfig           `json:"logging"`
	Metrics  metrics.Config          `json:"metrics"`
	Publish  PublishConfig           `json:"publish"`
	Report   ReportConfig            `json:"report"`
	Sentry   monitoring.SentryConfig `json:"sentry"`
}

// PublishConfig groups the schedule publication channels.
type PublishConfig struct {
	MQTT mqtt.Config `json:"mqtt"`
}

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	cfg := &Config{
		Policy:  engine.DefaultPolicy(),
		Weights: engine.DefaultWeights(),
	}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills every unset section.
func (c *Config) SetDefaults() {
	c.Calendar.SetDefaults()
	c.Solver.SetDefaults()
	c.Logging.SetDefaults()
	c.Report.SetDefaults()
	c.Publish.MQTT.SetDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if _, err := c.Calendar.Grid(); err != nil {
		return err
	}
	return errors.Join(
		c.Policy.Validate(),
		c.Weights.Validate(),
		c.Solver.Validate(),
		c.Logging.Validate(),
		c.Report.Validate(),
		c.Publish.MQTT.Validate(),
	)
}

// Load reads the file at path over the defaults, then applies environment
// overrides. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
