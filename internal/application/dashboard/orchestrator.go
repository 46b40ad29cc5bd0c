package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/penwyp/go-health-dashboard/internal/util"
)

// Orchestrator re-runs aggregation whenever the watched exports change and
// hands every published snapshot to a renderer.
type Orchestrator struct {
	recomputer Recomputer
	monitor    FileMonitor
	renderer   Renderer
	request    Request
	debounce   time.Duration
}

// NewOrchestrator wires a recomputer, a file monitor and a renderer. When
// the recomputer caches file parses, changed paths are invalidated before
// the refresh.
func NewOrchestrator(recomputer Recomputer, monitor FileMonitor, renderer Renderer, req Request, cfg WatchConfig) *Orchestrator {
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Orchestrator{
		recomputer: recomputer,
		monitor:    monitor,
		renderer:   renderer,
		request:    req,
		debounce:   debounce,
	}
}

// Run renders once, then again after every debounced burst of changes,
// until ctx is cancelled or the monitor closes.
func (o *Orchestrator) Run(ctx context.Context) error {
	defer o.monitor.Close()

	if err := o.refresh(ctx); err != nil {
		return err
	}

	timer := time.NewTimer(o.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	pending := false
	for {
		select {
		case <-ctx.Done():
			util.LogInfo("Stopping watch")
			return nil

		case event, ok := <-o.monitor.Events():
			if !ok {
				return nil
			}
			util.LogDebugf("File changed: %s (%s)", event.Path, event.Operation)
			if inv, ok := o.recomputer.(invalidator); ok {
				inv.Invalidate(event.Path)
			}
			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(o.debounce)
			pending = true

		case <-timer.C:
			pending = false
			if err := o.refresh(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				// A failed refresh keeps the last rendered view
				util.LogErrorf("Refresh failed: %v", err)
			}
		}
	}
}

func (o *Orchestrator) refresh(ctx context.Context) error {
	snap, err := o.recomputer.Recompute(ctx, o.request)
	if errors.Is(err, ErrSuperseded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("recompute: %w", err)
	}
	if err := o.renderer.Render(snap); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}
