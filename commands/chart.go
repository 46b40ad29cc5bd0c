package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-health-dashboard/internal/application/dashboard"
	"github.com/penwyp/go-health-dashboard/internal/presentation/formatter"
)

func newChartCmd(opts *options) *cobra.Command {
	var combined bool

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Show per-day chart series",
		Long: `Aggregates the patient's logs per calendar day and prints one series per chart:

  insulin   mean CBG, Pre-Meal CBG and Post-Meal CBG
  activity  total duration in minutes
  meal      number of breakfasts, lunches, dinners and snacks
  sleep     hours slept (latest entry of the day)
  stress    stress score (latest entry of the day)

Days without records are not shown. A shown day without a value for a series reads 0.
CSV and JSON output of several categories is always combined on one day axis.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChart(cmd, opts, combined)
		},
	}

	cmd.Flags().BoolVar(&combined, "combined", false,
		"Align all categories on one day axis in a single table")
	return cmd
}

func runChart(cmd *cobra.Command, opts *options, combined bool) error {
	if err := requirePatient(opts); err != nil {
		return err
	}

	a, err := newApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	snap, err := a.controller.Recompute(cmd.Context(), a.request)
	if err != nil {
		return fmt.Errorf("failed to load logs: %w", err)
	}

	combined = combined || (a.cfg.Display.Format != formatter.FormatTable && len(snap.Results) > 1)
	return renderCharts(cmd.OutOrStdout(), a.formatter, snap, combined)
}

func renderCharts(w io.Writer, f formatter.Formatter, snap *dashboard.Snapshot, combined bool) error {
	if combined {
		return f.FormatChart(w, "Patient Health Overview", snap.Combined)
	}

	for i, r := range snap.Results {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := f.FormatChart(w, formatter.ChartTitle(r.Category), r.Series); err != nil {
			return err
		}
	}
	return nil
}
