// Package normalizer turns raw store rows into NormalizedRecord values.
// Rows with an unusable timestamp are dropped; they are a data quality
// problem of the patient-side app, not an error for the viewer.
package normalizer

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/penwyp/go-health-dashboard/internal/core/model"
	"github.com/penwyp/go-health-dashboard/internal/util"
)

// Layouts with an explicit zone offset.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	time.RFC1123Z,
	time.RFC1123,
}

// Layouts without an offset are read in the viewer's zone.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006, 3:04:05 PM",
	"1/2/2006",
}

// Normalize validates and coerces raw records of category. When a record
// carries its own category, that one wins. Output keeps input order.
func Normalize(category model.Category, raw []model.RawLogRecord, loc *time.Location) []model.NormalizedRecord {
	if loc == nil {
		loc = time.Local
	}

	out := make([]model.NormalizedRecord, 0, len(raw))
	dropped := 0
	for i := range raw {
		rec, ok := NormalizeOne(category, raw[i], loc)
		if !ok {
			dropped++
			continue
		}
		out = append(out, rec)
	}

	if dropped > 0 {
		util.LogDebug("dropped records with unparseable timestamps",
			util.F("category", category), util.F("dropped", dropped), util.F("kept", len(out)))
	}
	return out
}

// NormalizeOne normalizes a single record; ok is false when it must be dropped.
func NormalizeOne(category model.Category, raw model.RawLogRecord, loc *time.Location) (model.NormalizedRecord, bool) {
	ms, ok := ParseTimestamp(raw.CreatedAt, loc)
	if !ok {
		return model.NormalizedRecord{}, false
	}

	if raw.Category != "" {
		category = raw.Category
	}

	rec := model.NormalizedRecord{
		TimestampMs: ms,
		Category:    category,
		Values:      make(map[string]float64),
		Fields:      raw.Fields,
		Notes:       raw.Notes,
	}
	for _, field := range category.NumericFields() {
		if v, ok := CoerceNumber(raw.Fields[field]); ok {
			rec.Values[field] = v
		}
	}
	if category.HasSubtype() {
		if s, ok := raw.Fields[model.FieldMealType].(string); ok {
			rec.Subtype = strings.TrimSpace(s)
		}
	}
	return rec, true
}

// ParseTimestamp converts a created_at value into epoch milliseconds.
// Strings are tried against the known layouts; numbers are epoch millis.
// Numeric strings are not timestamps.
func ParseTimestamp(v any, loc *time.Location) (int64, bool) {
	switch x := v.(type) {
	case string:
		return parseTimeString(x, loc)
	case time.Time:
		if x.IsZero() {
			return 0, false
		}
		return x.UnixMilli(), true
	case float64:
		return fromEpochMs(x)
	case int64:
		return x, true
	case int:
		return int64(x), true
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		return fromEpochMs(f)
	}
	return 0, false
}

func parseTimeString(s string, loc *time.Location) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli(), true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UnixMilli(), true
		}
	}
	return 0, false
}

func fromEpochMs(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > 8.64e15 {
		return 0, false
	}
	return int64(f), true
}

// CoerceNumber reads a numeric field. Non-numeric values count as absent,
// never as zero, so that means only see real readings.
func CoerceNumber(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
