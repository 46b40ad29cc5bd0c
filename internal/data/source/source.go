// Package source fetches raw patient logs from where the patient-side app
// left them. The engine never talks to a source directly; the dashboard
// controller fetches first and aggregates after every fetch has settled.
package source

import (
	"context"
	"sort"
	"time"

	"github.com/penwyp/go-health-dashboard/internal/core/model"
	"github.com/penwyp/go-health-dashboard/internal/data/normalizer"
)

// Source is the store collaborator.
type Source interface {
	// FetchLogs returns the raw rows of one category for one patient, in
	// no particular order.
	FetchLogs(ctx context.Context, patientID string, category model.Category) ([]model.RawLogRecord, error)

	// FetchDoctorNotes returns the notes doctorID left on patientID.
	FetchDoctorNotes(ctx context.Context, doctorID, patientID string) ([]model.DoctorNote, error)

	Close() error
}

// PatientLister is implemented by sources that can enumerate patients.
type PatientLister interface {
	Patients(ctx context.Context) ([]string, error)
}

// VisibleNotes drops blank notes and orders the rest newest first. Notes
// whose timestamps do not parse are ordered by their raw text.
func VisibleNotes(notes []model.DoctorNote) []model.DoctorNote {
	type keyed struct {
		note model.DoctorNote
		ms   int64
		ok   bool
	}
	visible := make([]keyed, 0, len(notes))
	for _, n := range notes {
		if n.IsBlank() {
			continue
		}
		ms, ok := normalizer.ParseTimestamp(n.CreatedAt, time.UTC)
		visible = append(visible, keyed{note: n, ms: ms, ok: ok})
	}
	sort.SliceStable(visible, func(i, j int) bool {
		a, b := visible[i], visible[j]
		if a.ok && b.ok {
			return a.ms > b.ms
		}
		return a.note.CreatedAt > b.note.CreatedAt
	})

	out := make([]model.DoctorNote, len(visible))
	for i, k := range visible {
		out[i] = k.note
	}
	return out
}
