package model

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// RawLogRecord is one row of a patient log table as the store returns it.
// CreatedAt is kept untyped because exports carry either ISO strings or
// epoch milliseconds.
type RawLogRecord struct {
	PatientID string         `json:"patient_id"`
	Category  Category       `json:"category,omitempty"`
	CreatedAt any            `json:"created_at"`
	Fields    map[string]any `json:"fields,omitempty"`
	Notes     string         `json:"notes,omitempty"`
}

// UnmarshalJSON decodes a flat store row. Everything that is not the patient
// id, the timestamp or the notes ends up in Fields under its original name.
func (r *RawLogRecord) UnmarshalJSON(data []byte) error {
	var row map[string]any
	if err := sonic.Unmarshal(data, &row); err != nil {
		return err
	}
	if row == nil {
		return fmt.Errorf("log row must be a JSON object")
	}

	*r = FromRow(row)
	return nil
}

// MarshalJSON writes the record back as a flat store row.
func (r RawLogRecord) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(r.Row())
}

// FromRow builds a RawLogRecord from a generic column map.
func FromRow(row map[string]any) RawLogRecord {
	rec := RawLogRecord{Fields: make(map[string]any, len(row))}
	for k, v := range row {
		switch k {
		case FieldPatientID:
			rec.PatientID = stringify(v)
		case FieldCreatedAt:
			rec.CreatedAt = v
		case FieldNotes:
			rec.Notes = stringify(v)
		case "category":
			if c, err := ParseCategory(stringify(v)); err == nil {
				rec.Category = c
			}
		default:
			rec.Fields[k] = v
		}
	}
	return rec
}

// Row flattens the record into a column map.
func (r RawLogRecord) Row() map[string]any {
	row := make(map[string]any, len(r.Fields)+3)
	for k, v := range r.Fields {
		row[k] = v
	}
	if r.PatientID != "" {
		row[FieldPatientID] = r.PatientID
	}
	row[FieldCreatedAt] = r.CreatedAt
	if r.Notes != "" {
		row[FieldNotes] = r.Notes
	}
	if r.Category != "" {
		row["category"] = string(r.Category)
	}
	return row
}

// NormalizedRecord is a validated record inside the engine. TimestampMs is
// always a real instant; Values only holds fields that were numeric.
type NormalizedRecord struct {
	TimestampMs int64              `json:"timestampMs"`
	Category    Category           `json:"category"`
	Subtype     string             `json:"subtype,omitempty"`
	Values      map[string]float64 `json:"values"`
	Fields      map[string]any     `json:"fields,omitempty"`
	Notes       string             `json:"notes,omitempty"`
}

// Value returns a numeric field and whether it was present.
func (n NormalizedRecord) Value(field string) (float64, bool) {
	v, ok := n.Values[field]
	return v, ok
}

// DoctorNote is a free-text note a doctor left on a patient.
type DoctorNote struct {
	DoctorID  string `json:"doctor_id,omitempty"`
	PatientID string `json:"patient_id,omitempty"`
	CreatedAt string `json:"created_at"`
	Note      string `json:"note"`
}

// IsBlank reports whether the note has no visible text.
func (d DoctorNote) IsBlank() bool {
	return strings.TrimSpace(d.Note) == ""
}

// FileEvent represents a file system event
type FileEvent struct {
	Path      string
	Operation string
}

func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
