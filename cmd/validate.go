package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/shiftplan/app"
	"github.com/kilianp07/shiftplan/core/publish"
)

var validateCmd = &cobra.Command{
	Use:   "validate <roster.csv> <requirements.csv>",
	Short: "Check the input tables and build the model without solving",
	Args:  cobra.ExactArgs(2),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := app.New(cfg, app.WithPublisher(publish.NopPublisher{}))
	if err != nil {
		return err
	}
	defer svc.Close()

	in, err := svc.Load(args[0], args[1])
	if err != nil {
		return err
	}
	stats, err := svc.Validate(in)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "inputs valid: %d employees, %d cells, %d variables, %d constraints\n",
		stats.Employees, stats.Cells, stats.Variables, stats.Constraints)
	return nil
}
