package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/shiftplan/config"
	"github.com/kilianp07/shiftplan/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "shiftplan",
	Short:        "Weekly staff scheduling with gatekeeper coverage",
	SilenceUsage: true,
	PersistentPostRunE: func(*cobra.Command, []string) error {
		return logger.CloseFile()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	if lc := cfg.Logging; lc.File != "" {
		if err := logger.SetFile(logger.FileOptions{
			Path:       lc.File,
			MaxSizeMB:  lc.MaxSizeMB,
			MaxBackups: lc.MaxBackups,
			MaxAgeDays: lc.MaxAgeDays,
		}); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
