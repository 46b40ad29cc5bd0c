package dashboard

import (
	"context"

	"github.com/penwyp/go-health-dashboard/internal/core/model"
)

// Recomputer produces a fresh snapshot for a request.
type Recomputer interface {
	Recompute(ctx context.Context, req Request) (*Snapshot, error)
}

// FileMonitor watches for file changes
type FileMonitor interface {
	// Events returns a channel of file change events
	Events() <-chan model.FileEvent
	// Close stops monitoring and cleans up resources
	Close() error
}

// Renderer shows a snapshot to the viewer.
type Renderer interface {
	Render(snap *Snapshot) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(snap *Snapshot) error

func (f RendererFunc) Render(snap *Snapshot) error { return f(snap) }

// invalidator is implemented by sources that cache file parses, and by
// recomputers that front such a source.
type invalidator interface {
	Invalidate(path string)
}
