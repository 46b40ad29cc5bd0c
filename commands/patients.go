package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-health-dashboard/internal/data/source"
)

func newPatientsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "patients",
		Short: "List patients that have logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			lister, ok := a.source.(source.PatientLister)
			if !ok {
				return fmt.Errorf("source %q cannot list patients", a.cfg.Source.Kind)
			}
			patients, err := lister.Patients(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list patients: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(patients) == 0 {
				fmt.Fprintln(out, "No patients found.")
				return nil
			}
			for _, p := range patients {
				fmt.Fprintln(out, p)
			}
			return nil
		},
	}
}
