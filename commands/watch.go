package commands

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/penwyp/go-health-dashboard/internal/application/dashboard"
	"github.com/penwyp/go-health-dashboard/internal/config"
	"github.com/penwyp/go-health-dashboard/internal/presentation/formatter"
	"github.com/penwyp/go-health-dashboard/internal/util"
)

func newWatchCmd(opts *options) *cobra.Command {
	var combined bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-render the charts whenever new logs arrive",
		Long: `Watches the export directory and re-runs the aggregation when an export file
changes. Bursts of changes are collapsed (watch.debounce_ms in the config file).
Only the file source can be watched. Press Ctrl+C to stop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePatient(opts); err != nil {
				return err
			}

			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.cfg.Source.Kind != config.SourceFile {
				return fmt.Errorf("watch needs the file source, got %q", a.cfg.Source.Kind)
			}

			monitor, err := dashboard.NewFileWatcher([]string{a.cfg.Source.Dir})
			if err != nil {
				return fmt.Errorf("failed to start file watcher: %w", err)
			}

			// Set up signal handling
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			out := cmd.OutOrStdout()
			renderer := newWatchRenderer(out, a.formatter, combined)
			orch := dashboard.NewOrchestrator(a.controller, monitor, renderer, a.request, dashboard.WatchConfig{
				Debounce: a.cfg.Watch.Debounce(),
				Paths:    []string{a.cfg.Source.Dir},
			})

			util.LogInfof("Watching %s for patient %s", a.cfg.Source.Dir, a.request.PatientID)
			return orch.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&combined, "combined", false,
		"Align all categories on one day axis in a single table")
	return cmd
}

// newWatchRenderer clears the screen between frames when writing to a
// terminal and separates frames with a timestamp line otherwise.
func newWatchRenderer(w io.Writer, f formatter.Formatter, combined bool) dashboard.Renderer {
	isTerminal := false
	if file, ok := w.(*os.File); ok {
		isTerminal = term.IsTerminal(int(file.Fd()))
	}

	return dashboard.RendererFunc(func(snap *dashboard.Snapshot) error {
		if isTerminal {
			if _, err := io.WriteString(w, "\033[H\033[2J"); err != nil {
				return err
			}
		}
		stamp := util.GetTimeProvider().Format(time.Now(), "1/2/2006, 3:04:05 PM")
		if _, err := fmt.Fprintf(w, "Updated %s (%s)\n\n", stamp, snap.Took.Round(time.Millisecond)); err != nil {
			return err
		}
		return renderCharts(w, f, snap, combined)
	})
}
