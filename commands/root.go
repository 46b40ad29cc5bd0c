package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// options holds the flags shared by every command. Flags left at their
// zero value fall back to the config file.
type options struct {
	// Logging related
	debug bool

	// Config and data location
	configPath string
	sourceKind string
	dataDir    string
	dbPath     string

	// Session
	patientID string
	doctorID  string

	// Output related
	outputFormat string
	timezone     string
	noColor      bool

	// Filtering
	from       string
	to         string
	mealType   string
	categories []string
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "go-health-dashboard [flags]",
		Short: "Clinician dashboard over patient health logs",
		Long: `go-health-dashboard aggregates the logs patients record (insulin and blood sugar,
meals, physical activity, sleep and stress) into per-day chart series and reports.

Logs are read from a directory of table exports (<patient>/<table>.jsonl) or from a
SQLite copy of the store.

Examples:
  go-health-dashboard --patient p1                          # Charts for every category
  go-health-dashboard chart --patient p1 --category insulin  # Blood sugar chart only
  go-health-dashboard report --patient p1 --doctor d1       # Report with doctor notes
  go-health-dashboard chart --patient p1 --from 2024-01-01 --to 2024-01-31 -o csv
  go-health-dashboard chart --patient p1 --category meal --meal-type lunch
  go-health-dashboard watch --patient p1                    # Re-render on new logs
  go-health-dashboard import --dir ./exports --db ./health.db`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChart(cmd, opts, false)
		},
	}

	flags := rootCmd.PersistentFlags()

	flags.StringVar(&opts.configPath, "config", "",
		"Config file path (default ~/.config/go-health-dashboard/config.toml)")
	flags.StringVar(&opts.sourceKind, "source", "",
		"Log source (file, sqlite)")
	flags.StringVar(&opts.dataDir, "dir", "",
		"Directory of table exports")
	flags.StringVar(&opts.dbPath, "db", "",
		"SQLite database path")

	flags.StringVarP(&opts.patientID, "patient", "p", "",
		"Patient ID")
	flags.StringVar(&opts.doctorID, "doctor", "",
		"Doctor ID; scopes doctor notes")

	flags.StringVarP(&opts.outputFormat, "output", "o", "",
		"Output format (table, csv, json)")
	flags.StringVar(&opts.timezone, "timezone", "",
		"Timezone days are bucketed in (e.g., Asia/Manila, UTC, Local)")
	flags.BoolVar(&opts.noColor, "no-color", false,
		"Disable colored output")

	flags.StringVar(&opts.from, "from", "",
		"First day to include (2006-01-02 or 1/2/2006)")
	flags.StringVar(&opts.to, "to", "",
		"Last day to include (2006-01-02 or 1/2/2006)")
	flags.StringVar(&opts.mealType, "meal-type", "",
		"Only count meals of this type (breakfast, lunch, dinner, snacks, all)")
	flags.StringSliceVarP(&opts.categories, "category", "c", nil,
		"Categories to show (insulin, meal, activity, sleep, stress); default all")

	flags.BoolVar(&opts.debug, "debug", false,
		"Enable debug mode")

	rootCmd.AddCommand(
		newChartCmd(opts),
		newReportCmd(opts),
		newSummaryCmd(opts),
		newWatchCmd(opts),
		newImportCmd(opts),
		newPatientsCmd(opts),
	)

	return rootCmd
}

func Execute() error {
	return NewRootCommand().Execute()
}

// Helper functions

func expandPath(path string) string {
	if path == "" {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

func requirePatient(opts *options) error {
	if strings.TrimSpace(opts.patientID) == "" {
		return fmt.Errorf("--patient is required")
	}
	return nil
}
