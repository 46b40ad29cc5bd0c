// Package aggregator reduces day buckets into per-category chart values.
package aggregator

import (
	"time"

	"github.com/penwyp/go-health-dashboard/internal/core/model"
	"github.com/penwyp/go-health-dashboard/internal/util"
)

// Kind names the reduction a sub-series uses.
type Kind string

const (
	KindMean   Kind = "mean"
	KindSum    Kind = "sum"
	KindCount  Kind = "count"
	KindLatest Kind = "latest"
)

// Sub-series display names
const (
	SeriesCBG         = "CBG"
	SeriesPreMealCBG  = "Pre-Meal CBG"
	SeriesPostMealCBG = "Post-Meal CBG"
	SeriesDuration    = "Total Duration (minutes)"
	SeriesBreakfast   = "Breakfast"
	SeriesLunch       = "Lunch"
	SeriesDinner      = "Dinner"
	SeriesSnacks      = "Snacks"
	SeriesSleepHours  = "Hours Slept"
	SeriesStressScore = "Stress Score"
)

// Rule describes one sub-series of a category. Key is the numeric field for
// mean/sum/latest rules and the meal type for count rules.
type Rule struct {
	Name  string
	Color string
	Key   string
	Kind  Kind
}

var rules = map[model.Category][]Rule{
	model.CategoryInsulin: {
		{Name: SeriesCBG, Color: "#007b55", Key: model.FieldCBG, Kind: KindMean},
		{Name: SeriesPreMealCBG, Color: "#FF9900", Key: model.FieldCBGPreMeal, Kind: KindMean},
		{Name: SeriesPostMealCBG, Color: "#3366CC", Key: model.FieldCBGPostMeal, Kind: KindMean},
	},
	model.CategoryActivity: {
		{Name: SeriesDuration, Color: "#34a853", Key: model.FieldDuration, Kind: KindSum},
	},
	model.CategoryMeal: {
		{Name: SeriesBreakfast, Color: "#FFD700", Key: model.MealBreakfast, Kind: KindCount},
		{Name: SeriesLunch, Color: "#FF8C00", Key: model.MealLunch, Kind: KindCount},
		{Name: SeriesDinner, Color: "#FF4500", Key: model.MealDinner, Kind: KindCount},
		{Name: SeriesSnacks, Color: "#32CD32", Key: model.MealSnacks, Kind: KindCount},
	},
	model.CategorySleep: {
		{Name: SeriesSleepHours, Color: "#6f42c1", Key: model.FieldSleepHours, Kind: KindLatest},
	},
	model.CategoryStress: {
		{Name: SeriesStressScore, Color: "#dc3545", Key: model.FieldStressScore, Kind: KindLatest},
	},
}

// RulesFor returns the sub-series rules of a category in display order.
func RulesFor(category model.Category) []Rule {
	return append([]Rule(nil), rules[category]...)
}

// SubSeries holds one aggregated value per day that had records.
type SubSeries struct {
	Name   string
	Color  string
	Kind   Kind
	Values map[model.DateBucketKey]float64
}

// Aggregate is the per-day result for one category.
type Aggregate struct {
	Category model.Category
	Series   []SubSeries
}

// Aggregator reduces records of one category into sub-series.
type Aggregator struct {
	location *time.Location
}

// NewAggregator creates an Aggregator bucketing days in loc.
func NewAggregator(loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	return &Aggregator{location: loc}
}

// Location returns the zone used for day buckets.
func (a *Aggregator) Location() *time.Location {
	return a.location
}

// Aggregate buckets records by day and applies the category's rules to each
// bucket. Every sub-series gets a value for every bucket, 0 when nothing in
// the bucket contributed.
func (a *Aggregator) Aggregate(category model.Category, records []model.NormalizedRecord) Aggregate {
	buckets := BucketByDay(records, a.location)
	return AggregateBuckets(category, buckets)
}

// AggregateBuckets applies the category's rules to already bucketed records.
func AggregateBuckets(category model.Category, buckets Buckets) Aggregate {
	catRules := rules[category]
	agg := Aggregate{
		Category: category,
		Series:   make([]SubSeries, len(catRules)),
	}
	for i, rule := range catRules {
		agg.Series[i] = SubSeries{
			Name:   rule.Name,
			Color:  rule.Color,
			Kind:   rule.Kind,
			Values: make(map[model.DateBucketKey]float64, len(buckets)),
		}
	}

	for day, bucket := range buckets {
		for i, rule := range catRules {
			agg.Series[i].Values[day] = Reduce(rule, bucket)
		}
	}

	util.LogDebug("aggregated category",
		util.F("category", category), util.F("days", len(buckets)), util.F("series", len(catRules)))
	return agg
}

// Reduce applies a rule to one bucket.
func Reduce(rule Rule, bucket []model.NormalizedRecord) float64 {
	switch rule.Kind {
	case KindMean:
		return Mean(presentValues(bucket, rule.Key))
	case KindSum:
		return Sum(presentValues(bucket, rule.Key))
	case KindCount:
		return float64(countMealType(bucket, rule.Key))
	case KindLatest:
		v, _ := Latest(bucket, rule.Key)
		return v
	}
	return 0
}

// Mean is sum/count, or 0 for no values. A 0 mean does not by itself mean
// there was no reading; check bucket membership for that.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return Sum(values) / float64(len(values))
}

// Sum adds values.
func Sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

// Latest returns the value of field from the record observed last: the
// greatest timestamp, and on equal timestamps the later one in input order.
// Records without the field are skipped.
func Latest(bucket []model.NormalizedRecord, field string) (float64, bool) {
	var (
		best   float64
		bestTs int64
		found  bool
	)
	for _, r := range bucket {
		v, ok := r.Value(field)
		if !ok {
			continue
		}
		if !found || r.TimestampMs >= bestTs {
			best, bestTs, found = v, r.TimestampMs, true
		}
	}
	return best, found
}

func presentValues(bucket []model.NormalizedRecord, field string) []float64 {
	values := make([]float64, 0, len(bucket))
	for _, r := range bucket {
		if v, ok := r.Value(field); ok {
			values = append(values, v)
		}
	}
	return values
}

func countMealType(bucket []model.NormalizedRecord, mealType string) int {
	n := 0
	for _, r := range bucket {
		if model.MealType(r.Subtype) == mealType {
			n++
		}
	}
	return n
}
