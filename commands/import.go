package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-health-dashboard/internal/core/model"
	"github.com/penwyp/go-health-dashboard/internal/data/source"
	"github.com/penwyp/go-health-dashboard/internal/util"
)

func newImportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Load table exports into the SQLite store",
		Long: `Reads every export under --dir and inserts the rows into the SQLite database at
--db. Rows keep their patient, timestamp and original fields. Run it once per new
batch of exports; rows are appended, not merged.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if cfg.Source.DBPath == "" {
				return fmt.Errorf("--db is required")
			}

			files := source.NewFileSource(cfg.Source.Dir, cfg.Source.Concurrency)
			defer files.Close()

			db, err := source.NewSQLiteSource(cfg.Source.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			patient := opts.patientID

			total := 0
			for _, c := range model.AllCategories {
				records, err := files.FetchLogs(ctx, patient, c)
				if err != nil {
					return fmt.Errorf("failed to read %s exports: %w", c.Table(), err)
				}
				n, err := db.InsertLogs(ctx, c, records)
				if err != nil {
					return fmt.Errorf("failed to import %s: %w", c.Table(), err)
				}
				total += n
				fmt.Fprintf(out, "%-12s %s rows\n", c.Table(), util.FormatNumber(n))
			}

			notes, err := files.AllDoctorNotes(ctx, patient)
			if err != nil {
				return fmt.Errorf("failed to read doctor reports: %w", err)
			}
			for _, n := range notes {
				if err := db.InsertDoctorNote(ctx, n); err != nil {
					return fmt.Errorf("failed to import doctor report: %w", err)
				}
			}
			fmt.Fprintf(out, "%-12s %s rows\n", model.TableDoctorReports, util.FormatNumber(len(notes)))

			util.LogInfof("Imported %d log rows and %d doctor notes into %s", total, len(notes), cfg.Source.DBPath)
			return nil
		},
	}
}
