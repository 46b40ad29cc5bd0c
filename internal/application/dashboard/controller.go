package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/penwyp/go-health-dashboard/internal/core/model"
	"github.com/penwyp/go-health-dashboard/internal/data/pipeline"
	"github.com/penwyp/go-health-dashboard/internal/data/source"
	"github.com/penwyp/go-health-dashboard/internal/util"
)

// ErrSuperseded is returned when a newer recompute published first. The
// stale result is discarded.
var ErrSuperseded = errors.New("recompute superseded by a newer request")

// Snapshot is the output of one recompute.
type Snapshot struct {
	// Generation orders recomputes by start time.
	Generation ulid.ULID
	Request    Request
	Results    []pipeline.Result
	// Combined aligns every category on one day axis.
	Combined model.ChartSeries
	Notes    []model.DoctorNote
	Location *time.Location
	Took     time.Duration
}

// Result returns the result of a category, if it was requested.
func (s *Snapshot) Result(c model.Category) (pipeline.Result, bool) {
	for _, r := range s.Results {
		if r.Category == c {
			return r, true
		}
	}
	return pipeline.Result{}, false
}

var _ Recomputer = (*Controller)(nil)

// Controller fetches a patient's logs and runs the engine over them. Only
// the newest recompute may replace the published snapshot.
type Controller struct {
	source   source.Source
	location *time.Location

	mu      sync.Mutex
	entropy io.Reader
	latest  *Snapshot
}

// NewController creates a Controller reading from src, bucketing days in loc.
func NewController(src source.Source, loc *time.Location) *Controller {
	if loc == nil {
		loc = time.Local
	}
	return &Controller{
		source:   src,
		location: loc,
		entropy:  ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

// Invalidate forgets cached parses of path when the source keeps any.
func (c *Controller) Invalidate(path string) {
	if inv, ok := c.source.(invalidator); ok {
		inv.Invalidate(path)
	}
}

// Latest returns the most recently published snapshot, or nil.
func (c *Controller) Latest() *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest
}

func (c *Controller) nextGeneration() ulid.ULID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ulid.MustNew(ulid.Now(), c.entropy)
}

// Recompute fetches every requested category in parallel, waits for all of
// them, then aggregates. A failed fetch fails the whole recompute; partial
// data is never aggregated.
func (c *Controller) Recompute(ctx context.Context, req Request) (*Snapshot, error) {
	start := time.Now()
	gen := c.nextGeneration()
	logger := util.GetLogger()
	if logger != nil {
		logger = logger.With(util.F("generation", gen.String()), util.F("patient", req.PatientID))
		logger.Debug("recompute started")
	}

	raw, notes, err := c.fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]pipeline.Result, 0, len(req.categories()))
	for _, cat := range req.categories() {
		results = append(results, pipeline.Recompute(cat, raw[cat], req.Filter, c.location))
	}

	snap := &Snapshot{
		Generation: gen,
		Request:    req,
		Results:    results,
		Combined:   pipeline.Combined(results),
		Notes:      notes,
		Location:   c.location,
		Took:       time.Since(start),
	}

	if err := c.publish(snap); err != nil {
		if logger != nil {
			logger.Debug("recompute discarded", util.F("reason", err.Error()))
		}
		return nil, err
	}
	if logger != nil {
		logger.Debug("recompute published", util.F("days", len(snap.Combined.Labels)), util.F("took", snap.Took))
	}
	return snap, nil
}

func (c *Controller) publish(snap *Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.latest != nil && c.latest.Generation.Compare(snap.Generation) > 0 {
		return ErrSuperseded
	}
	c.latest = snap
	return nil
}

type fetchResult struct {
	category model.Category
	records  []model.RawLogRecord
	err      error
}

func (c *Controller) fetch(ctx context.Context, req Request) (map[model.Category][]model.RawLogRecord, []model.DoctorNote, error) {
	cats := req.categories()
	results := make(chan fetchResult, len(cats))
	var wg sync.WaitGroup

	for _, cat := range cats {
		wg.Add(1)
		go func(cat model.Category) {
			defer wg.Done()
			records, err := c.source.FetchLogs(ctx, req.PatientID, cat)
			results <- fetchResult{category: cat, records: records, err: err}
		}(cat)
	}

	var (
		notes    []model.DoctorNote
		notesErr error
	)
	if req.DoctorID != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			notes, notesErr = c.source.FetchDoctorNotes(ctx, req.DoctorID, req.PatientID)
		}()
	}

	wg.Wait()
	close(results)

	raw := make(map[model.Category][]model.RawLogRecord, len(cats))
	var errs []error
	for r := range results {
		if r.err != nil {
			errs = append(errs, fmt.Errorf("fetch %s: %w", r.category, r.err))
			continue
		}
		raw[r.category] = r.records
	}
	if notesErr != nil {
		errs = append(errs, fmt.Errorf("fetch doctor notes: %w", notesErr))
	}
	if len(errs) > 0 {
		return nil, nil, errors.Join(errs...)
	}
	return raw, notes, nil
}
