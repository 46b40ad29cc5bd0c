package aggregator

import (
	"github.com/penwyp/go-health-dashboard/internal/core/model"
)

// Total is a whole-range figure for one sub-series.
type Total struct {
	Name  string
	Kind  Kind
	Value float64
	// Samples is how many values went into Value.
	Samples int
}

// Summary describes a category over the filtered range.
type Summary struct {
	Category model.Category
	Records  int
	Days     int
	First    model.DateBucketKey
	Last     model.DateBucketKey
	Totals   []Total
}

// Summarize computes range totals: means over all readings, sums and counts
// over all records, and for latest-wins series the mean of the daily values.
func (a *Aggregator) Summarize(category model.Category, records []model.NormalizedRecord) Summary {
	buckets := BucketByDay(records, a.location)
	days := buckets.Keys()

	s := Summary{
		Category: category,
		Records:  len(records),
		Days:     len(days),
	}
	if len(days) > 0 {
		s.First, s.Last = days[0], days[len(days)-1]
	}

	for _, rule := range rules[category] {
		t := Total{Name: rule.Name, Kind: rule.Kind}
		switch rule.Kind {
		case KindMean:
			values := presentValues(records, rule.Key)
			t.Value, t.Samples = Mean(values), len(values)
		case KindSum:
			values := presentValues(records, rule.Key)
			t.Value, t.Samples = Sum(values), len(values)
		case KindCount:
			n := countMealType(records, rule.Key)
			t.Value, t.Samples = float64(n), n
		case KindLatest:
			daily := make([]float64, 0, len(days))
			for _, day := range days {
				if v, ok := Latest(buckets[day], rule.Key); ok {
					daily = append(daily, v)
				}
			}
			t.Value, t.Samples = Mean(daily), len(daily)
		}
		s.Totals = append(s.Totals, t)
	}
	return s
}
