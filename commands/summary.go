package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-health-dashboard/internal/data/aggregator"
)

func newSummaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print range totals per category",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			summaries := make([]aggregator.Summary, 0, len(snap.Results))
			for _, r := range snap.Results {
				summaries = append(summaries, r.Summary)
			}
			return a.formatter.FormatSummary(cmd.OutOrStdout(), summaries)
		},
	}
}
