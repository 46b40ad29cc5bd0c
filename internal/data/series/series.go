// Package series aligns per-day aggregates into chart-ready series.
package series

import (
	"github.com/samber/lo"

	"github.com/penwyp/go-health-dashboard/internal/core/model"
	"github.com/penwyp/go-health-dashboard/internal/data/aggregator"
)

// Assemble lays the sub-series of agg out on one label axis: the ascending
// union of every day any sub-series has, with 0 for days a sub-series lacks.
// It never fails; no data gives empty labels and empty value slices.
func Assemble(agg aggregator.Aggregate) model.ChartSeries {
	labels := unionDays(agg.Series)

	out := model.ChartSeries{
		Labels:   labels,
		Datasets: make([]model.Dataset, 0, len(agg.Series)),
	}
	for _, sub := range agg.Series {
		out.Datasets = append(out.Datasets, model.Dataset{
			Name:   sub.Name,
			Color:  sub.Color,
			Values: align(labels, sub.Values),
		})
	}
	return out
}

// Empty returns the series a category produces for no records.
func Empty(category model.Category) model.ChartSeries {
	return Assemble(aggregator.AggregateBuckets(category, nil))
}

// Merge puts several series on a shared axis so that, say, glucose and meal
// counts line up by day. Datasets keep their order; values of days missing
// from a source series are 0.
func Merge(parts ...model.ChartSeries) model.ChartSeries {
	seen := make(map[model.DateBucketKey]struct{})
	var labels []model.DateBucketKey
	for _, p := range parts {
		for _, l := range p.Labels {
			if _, ok := seen[l]; !ok {
				seen[l] = struct{}{}
				labels = append(labels, l)
			}
		}
	}
	labels = aggregator.SortKeys(labels)
	if labels == nil {
		labels = []model.DateBucketKey{}
	}

	out := model.ChartSeries{Labels: labels}
	for _, p := range parts {
		for _, ds := range p.Datasets {
			byDay := make(map[model.DateBucketKey]float64, len(p.Labels))
			for i, l := range p.Labels {
				if i < len(ds.Values) {
					byDay[l] = ds.Values[i]
				}
			}
			out.Datasets = append(out.Datasets, model.Dataset{
				Name:   ds.Name,
				Color:  ds.Color,
				Values: align(labels, byDay),
			})
		}
	}
	return out
}

func unionDays(subs []aggregator.SubSeries) []model.DateBucketKey {
	var days []model.DateBucketKey
	for _, sub := range subs {
		days = append(days, lo.Keys(sub.Values)...)
	}
	days = aggregator.SortKeys(lo.Uniq(days))
	if days == nil {
		return []model.DateBucketKey{}
	}
	return days
}

func align(labels []model.DateBucketKey, values map[model.DateBucketKey]float64) []float64 {
	out := make([]float64, len(labels))
	for i, l := range labels {
		out[i] = values[l]
	}
	return out
}
