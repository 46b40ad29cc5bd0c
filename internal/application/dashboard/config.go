package dashboard

import (
	"time"

	"github.com/penwyp/go-health-dashboard/internal/core/model"
)

// Request is one recompute: which patient, on whose behalf, under which
// filter. DoctorID stands in for the logged-in doctor session and is passed
// explicitly so no component reads ambient session state.
type Request struct {
	PatientID  string
	DoctorID   string
	Filter     model.Filter
	Categories []model.Category
}

// categories returns the requested categories, all of them by default.
func (r Request) categories() []model.Category {
	if len(r.Categories) == 0 {
		return model.AllCategories
	}
	return r.Categories
}

// WatchConfig configures the re-aggregate-on-change loop.
type WatchConfig struct {
	// Debounce collapses bursts of file events into one recompute.
	Debounce time.Duration
	// Paths are the directories to watch.
	Paths []string
}

// DefaultDebounce is used when WatchConfig.Debounce is zero.
const DefaultDebounce = 300 * time.Millisecond
