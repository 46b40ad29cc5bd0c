package model

import "strings"

// Filter restricts which records reach the aggregators. Nil bounds are open.
type Filter struct {
	StartDate *DateBucketKey `json:"startDate,omitempty"`
	EndDate   *DateBucketKey `json:"endDate,omitempty"`
	Subtype   string         `json:"subtype,omitempty"`
}

// AllSubtypes reports whether the subtype filter is a pass-through.
func (f Filter) AllSubtypes() bool {
	s := strings.TrimSpace(f.Subtype)
	return s == "" || strings.EqualFold(s, SubtypeAll)
}

// IsEmpty reports whether the filter lets every record through.
func (f Filter) IsEmpty() bool {
	return f.StartDate == nil && f.EndDate == nil && f.AllSubtypes()
}
