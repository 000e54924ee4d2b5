package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/shiftplan/app"
	"github.com/kilianp07/shiftplan/config"
	"github.com/kilianp07/shiftplan/infra/logger"
	"github.com/kilianp07/shiftplan/infra/metrics"
)

var solveFlags struct {
	output        string
	format        string
	maxSeconds    float64
	metricsListen string
}

var solveCmd = &cobra.Command{
	Use:   "solve <roster.csv> <requirements.csv>",
	Short: "Build and solve the weekly schedule",
	Args:  cobra.ExactArgs(2),
	RunE:  runSolve,
}

func init() {
	solveCmd.Flags().StringVarP(&solveFlags.output, "output", "o", "", "output path without extension")
	solveCmd.Flags().StringVarP(&solveFlags.format, "format", "f", "", "comma separated formats: console,xlsx,json,csv,html")
	solveCmd.Flags().StringVar(&solveFlags.metricsListen, "metrics-listen", "", "address serving /metrics during the run")
	solveCmd.Flags().Float64Var(&solveFlags.maxSeconds, "max-solve-seconds", 0, "solver time budget in seconds")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if solveFlags.output != "" {
		cfg.Report.Output = solveFlags.output
	}
	if solveFlags.format != "" {
		cfg.Report.Formats = config.ParseFormats(solveFlags.format)
	}
	if solveFlags.maxSeconds > 0 {
		cfg.Solver.MaxTimeSeconds = solveFlags.maxSeconds
	}
	if solveFlags.metricsListen != "" {
		cfg.Metrics.Listen = solveFlags.metricsListen
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.Metrics.Listen != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, cfg.Metrics.Listen, nil); err != nil {
				logger.New("main").Errorf("prom server: %v", err)
			}
		}()
	}

	svc, err := app.New(cfg, app.WithConsole(cmd.OutOrStdout()))
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()

	in, err := svc.Load(args[0], args[1])
	if err != nil {
		return err
	}
	_, err = svc.Solve(ctx, in)
	return err
}
