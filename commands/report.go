package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-health-dashboard/internal/application/dashboard"
	"github.com/penwyp/go-health-dashboard/internal/presentation/formatter"
)

func newReportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the patient's logs as report tables",
		Long: `Prints every filtered log entry, oldest first, with the original fields of the
patient's entry. Values the patient left empty show as "—".

With --doctor (or session.doctor_id in the config file) the notes that doctor left
on the patient are appended, newest first.`,
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
			return a.formatter.FormatReport(cmd.OutOrStdout(), buildReport(snap, time.Now()))
		},
	}
}

func buildReport(snap *dashboard.Snapshot, now time.Time) formatter.Report {
	r := formatter.Report{
		PatientID:   snap.Request.PatientID,
		GeneratedAt: now,
		Notes:       snap.Notes,
		Location:    snap.Location,
	}
	for _, res := range snap.Results {
		r.Sections = append(r.Sections, formatter.ReportSection{
			Category: res.Category,
			Records:  res.Records,
		})
	}
	return r
}
