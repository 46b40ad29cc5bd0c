package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Placeholder shown in report cells for absent values.
const Placeholder = "—"

// FormatNumber renders an integer with thousands separators.
func FormatNumber(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, digit := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteByte(digit)
	}
	return b.String()
}

// FormatValue renders a chart value: integers without decimals, everything
// else with at most two.
func FormatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Placeholder
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return FormatNumber(int(v))
	}
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// FormatTimestamp renders epoch milliseconds like the dashboard tables do,
// e.g. "1/2/2024, 9:05:00 AM".
func FormatTimestamp(ms int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(ms).In(loc).Format("1/2/2006, 3:04:05 PM")
}

// FormatCell renders a raw store value for a report table.
func FormatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return Placeholder
	case string:
		if strings.TrimSpace(x) == "" {
			return Placeholder
		}
		return x
	case float64:
		return FormatValue(x)
	case float32:
		return FormatValue(float64(x))
	case int:
		return FormatNumber(x)
	case int64:
		return FormatNumber(int(x))
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
