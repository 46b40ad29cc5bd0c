package aggregator

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/penwyp/go-health-dashboard/internal/core/model"
)

// Buckets groups records by calendar day. Only days with records have a key.
type Buckets map[model.DateBucketKey][]model.NormalizedRecord

// BucketByDay partitions records by their day in loc. Each bucket keeps the
// input order of its records.
func BucketByDay(records []model.NormalizedRecord, loc *time.Location) Buckets {
	if loc == nil {
		loc = time.Local
	}
	buckets := make(Buckets)
	for _, r := range records {
		key := model.KeyOf(r.TimestampMs, loc)
		buckets[key] = append(buckets[key], r)
	}
	return buckets
}

// Keys returns the bucket days in ascending date order.
func (b Buckets) Keys() []model.DateBucketKey {
	return SortKeys(lo.Keys(b))
}

// SortKeys sorts days ascending in place and returns them.
func SortKeys(keys []model.DateBucketKey) []model.DateBucketKey {
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Before(keys[j])
	})
	return keys
}
