// Package filter applies the viewer's date range and meal type selection.
package filter

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/penwyp/go-health-dashboard/internal/core/model"
)

// Apply keeps records inside the filter. Both date bounds are inclusive and
// compared by calendar day in loc. The subtype only restricts categories
// that have one, compared as canonical meal types. Input order is preserved.
func Apply(records []model.NormalizedRecord, f model.Filter, loc *time.Location) []model.NormalizedRecord {
	if loc == nil {
		loc = time.Local
	}
	if f.IsEmpty() {
		return append([]model.NormalizedRecord(nil), records...)
	}

	subtype := model.MealType(f.Subtype)
	allSubtypes := f.AllSubtypes()

	return lo.Filter(records, func(r model.NormalizedRecord, _ int) bool {
		return inRange(model.KeyOf(r.TimestampMs, loc), f.StartDate, f.EndDate) &&
			(allSubtypes || !r.Category.HasSubtype() || model.MealType(r.Subtype) == subtype)
	})
}

// Matches reports whether a single record passes the filter.
func Matches(r model.NormalizedRecord, f model.Filter, loc *time.Location) bool {
	return len(Apply([]model.NormalizedRecord{r}, f, loc)) == 1
}

func inRange(day model.DateBucketKey, start, end *model.DateBucketKey) bool {
	if start != nil && day.Before(*start) {
		return false
	}
	if end != nil && end.Before(day) {
		return false
	}
	return true
}

// SortChronological returns a copy ordered by timestamp, oldest first.
// Records with equal timestamps keep their relative order.
func SortChronological(records []model.NormalizedRecord) []model.NormalizedRecord {
	out := append([]model.NormalizedRecord(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimestampMs < out[j].TimestampMs
	})
	return out
}
