// Package pipeline composes the engine stages:
// normalize, filter, bucket, aggregate, assemble.
//
// Everything here is a pure function of its arguments. Calls share no state
// and may run in parallel, e.g. one per patient.
package pipeline

import (
	"time"

	"github.com/penwyp/go-health-dashboard/internal/core/model"
	"github.com/penwyp/go-health-dashboard/internal/data/aggregator"
	"github.com/penwyp/go-health-dashboard/internal/data/filter"
	"github.com/penwyp/go-health-dashboard/internal/data/normalizer"
	"github.com/penwyp/go-health-dashboard/internal/data/series"
)

// Result is what one recompute hands to the chart and report views.
type Result struct {
	Category model.Category
	Series   model.ChartSeries
	// Records is the filtered input, oldest first, for tabular views.
	Records []model.NormalizedRecord
	Summary aggregator.Summary
}

// Recompute runs the whole engine for one category.
func Recompute(category model.Category, raw []model.RawLogRecord, f model.Filter, loc *time.Location) Result {
	if loc == nil {
		loc = time.Local
	}

	normalized := normalizer.Normalize(category, raw, loc)
	filtered := filter.Apply(normalized, f, loc)

	agg := aggregator.NewAggregator(loc)
	res := Result{
		Category: category,
		Records:  filter.SortChronological(filtered),
		Summary:  agg.Summarize(category, filtered),
	}
	if len(filtered) == 0 {
		res.Series = series.Empty(category)
	} else {
		res.Series = series.Assemble(agg.Aggregate(category, filtered))
	}
	return res
}

// RecomputeAll runs Recompute for every category in AllCategories order.
// Categories missing from raw produce empty results.
func RecomputeAll(raw map[model.Category][]model.RawLogRecord, f model.Filter, loc *time.Location) []Result {
	results := make([]Result, 0, len(model.AllCategories))
	for _, c := range model.AllCategories {
		results = append(results, Recompute(c, raw[c], f, loc))
	}
	return results
}

// Combined merges the series of several results onto one day axis.
func Combined(results []Result) model.ChartSeries {
	parts := make([]model.ChartSeries, 0, len(results))
	for _, r := range results {
		parts = append(parts, r.Series)
	}
	return series.Merge(parts...)
}
