package model

import (
	"fmt"
	"strings"
	"time"
)

// DateBucketKey is a calendar day in the viewer's time zone.
type DateBucketKey struct {
	Year  int
	Month time.Month
	Day   int
}

// KeyOf derives the bucket key of an epoch-millisecond instant in loc.
func KeyOf(ms int64, loc *time.Location) DateBucketKey {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := time.UnixMilli(ms).In(loc).Date()
	return DateBucketKey{Year: y, Month: m, Day: d}
}

// ParseDateBucketKey accepts 2006-01-02 and the en-US short form 1/2/2006.
func ParseDateBucketKey(s string) (DateBucketKey, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "1/2/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return DateBucketKey{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
		}
	}
	return DateBucketKey{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or M/D/YYYY", s)
}

// String renders the key the way chart labels show it, e.g. 1/2/2024.
func (k DateBucketKey) String() string {
	return fmt.Sprintf("%d/%d/%d", int(k.Month), k.Day, k.Year)
}

// ISO renders the key as 2024-01-02.
func (k DateBucketKey) ISO() string {
	return fmt.Sprintf("%04d-%02d-%02d", k.Year, int(k.Month), k.Day)
}

// Compare returns -1, 0 or 1 ordering keys by calendar date.
func (k DateBucketKey) Compare(o DateBucketKey) int {
	switch {
	case k.Year != o.Year:
		return sign(k.Year - o.Year)
	case k.Month != o.Month:
		return sign(int(k.Month) - int(o.Month))
	default:
		return sign(k.Day - o.Day)
	}
}

// Before reports whether k is an earlier day than o.
func (k DateBucketKey) Before(o DateBucketKey) bool {
	return k.Compare(o) < 0
}

// IsZero reports whether the key is unset.
func (k DateBucketKey) IsZero() bool {
	return k.Year == 0 && k.Month == 0 && k.Day == 0
}

// MarshalText makes keys usable as JSON strings and map keys.
func (k DateBucketKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (k *DateBucketKey) UnmarshalText(b []byte) error {
	parsed, err := ParseDateBucketKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
