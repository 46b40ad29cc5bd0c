package util

import (
	"fmt"
	"sync"
	"time"
)

// TimeProvider holds the viewer's time zone. Day buckets, date filters and
// report timestamps all read it so that every category shares one calendar.
type TimeProvider struct {
	mu       sync.RWMutex
	location *time.Location
}

var (
	globalTimeProvider *TimeProvider
	timeProviderMu     sync.Mutex
)

// LoadLocation resolves a zone name. Empty and "Local" mean the machine zone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" || timezone == "auto" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone '%s': %w\nValid examples: Local, UTC, America/New_York, Asia/Manila, Europe/London", timezone, err)
	}
	return loc, nil
}

// NewTimeProvider creates a provider for the given zone name.
func NewTimeProvider(timezone string) (*TimeProvider, error) {
	tp := &TimeProvider{}
	if err := tp.SetTimezone(timezone); err != nil {
		return nil, err
	}
	return tp, nil
}

// InitializeTimeProvider replaces the global provider. On error the previous
// provider stays in place.
func InitializeTimeProvider(timezone string) error {
	tp, err := NewTimeProvider(timezone)
	if err != nil {
		return err
	}

	timeProviderMu.Lock()
	globalTimeProvider = tp
	timeProviderMu.Unlock()
	return nil
}

// GetTimeProvider returns the global provider, defaulting to Local.
func GetTimeProvider() *TimeProvider {
	timeProviderMu.Lock()
	defer timeProviderMu.Unlock()

	if globalTimeProvider == nil {
		globalTimeProvider = &TimeProvider{location: time.Local}
	}
	return globalTimeProvider
}

// SetTimezone updates the zone
func (tp *TimeProvider) SetTimezone(timezone string) error {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return err
	}

	tp.mu.Lock()
	defer tp.mu.Unlock()
	tp.location = loc
	return nil
}

// Location returns the configured zone
func (tp *TimeProvider) Location() *time.Location {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return tp.location
}

// Now returns the current time in the configured zone
func (tp *TimeProvider) Now() time.Time {
	return time.Now().In(tp.Location())
}

// In converts a time to the configured zone
func (tp *TimeProvider) In(t time.Time) time.Time {
	return t.In(tp.Location())
}

// Format formats a time in the configured zone
func (tp *TimeProvider) Format(t time.Time, layout string) string {
	return t.In(tp.Location()).Format(layout)
}
