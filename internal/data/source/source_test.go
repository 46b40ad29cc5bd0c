package source

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-health-dashboard/internal/core/model"
	"github.com/penwyp/go-health-dashboard/internal/testing/fixtures"
)

var scenarioDay = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newScenarioSource(t *testing.T) (*FileSource, *fixtures.TestDataGenerator) {
	t.Helper()
	gen := fixtures.NewTestDataGenerator(t.TempDir())
	require.NoError(t, gen.GenerateTwoDayScenario("p1", scenarioDay))
	require.NoError(t, gen.GenerateDays("p2", scenarioDay, 3))
	return NewFileSource(gen.GetBaseDir(), 2), gen
}

func TestVisibleNotes(t *testing.T) {
	notes := []model.DoctorNote{
		{CreatedAt: "2024-01-01T10:00:00Z", Note: "first"},
		{CreatedAt: "2024-01-03T10:00:00Z", Note: " "},
		{CreatedAt: "2024-01-02T10:00:00Z", Note: "second"},
	}

	got := VisibleNotes(notes)
	require.Len(t, got, 2)
	assert.Equal(t, "second", got[0].Note)
	assert.Equal(t, "first", got[1].Note)
	assert.Empty(t, VisibleNotes(nil))
}

func TestVisibleNotesMixedTimestampFormats(t *testing.T) {
	notes := []model.DoctorNote{
		{CreatedAt: "2024-01-02T12:00:00+08:00", Note: "early"},
		{CreatedAt: "2024-01-02T10:00:00Z", Note: "late"},
		{CreatedAt: "2024-01-02 09:00:00+00", Note: "middle"},
	}

	got := VisibleNotes(notes)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"late", "middle", "early"}, []string{got[0].Note, got[1].Note, got[2].Note})
}

func TestFileSourceFetchLogs(t *testing.T) {
	src, _ := newScenarioSource(t)
	ctx := context.Background()

	insulin, err := src.FetchLogs(ctx, "p1", model.CategoryInsulin)
	require.NoError(t, err)
	assert.Len(t, insulin, 4)
	for _, r := range insulin {
		assert.Equal(t, "p1", r.PatientID)
		assert.Equal(t, model.CategoryInsulin, r.Category)
	}

	meals, err := src.FetchLogs(ctx, "p2", model.CategoryMeal)
	require.NoError(t, err)
	assert.Len(t, meals, 3)

	none, err := src.FetchLogs(ctx, "nobody", model.CategorySleep)
	require.NoError(t, err)
	assert.Empty(t, none)

	everyone, err := src.FetchLogs(ctx, "", model.CategoryInsulin)
	require.NoError(t, err)
	assert.Len(t, everyone, 7)
}

func TestFileSourceOwnerFromDirectory(t *testing.T) {
	gen := fixtures.NewTestDataGenerator(t.TempDir())
	require.NoError(t, gen.WriteTableArray("p3", model.TableStress, []fixtures.Row{
		{"created_at": "2024-01-01T08:00:00Z", "stress_score": 3},
	}))

	records, err := NewFileSource(gen.GetBaseDir(), 1).FetchLogs(context.Background(), "p3", model.CategoryStress)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "p3", records[0].PatientID)
}

func TestFileSourceCancelled(t *testing.T) {
	src, _ := newScenarioSource(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.FetchLogs(ctx, "p1", model.CategoryInsulin)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileSourceDoctorNotes(t *testing.T) {
	src, _ := newScenarioSource(t)
	ctx := context.Background()

	notes, err := src.FetchDoctorNotes(ctx, "doc-1", "p1")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Reduce evening dose", notes[0].Note)

	anyDoctor, err := src.FetchDoctorNotes(ctx, "", "p1")
	require.NoError(t, err)
	require.Len(t, anyDoctor, 2)
	assert.Equal(t, "doc-2", anyDoctor[0].DoctorID)

	all, err := src.AllDoctorNotes(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := src.FetchDoctorNotes(ctx, "doc-1", "p2")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFileSourcePatients(t *testing.T) {
	src, gen := newScenarioSource(t)
	require.NoError(t, gen.CreateEmptyPatient("p0"))

	patients, err := src.Patients(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, patients)
	assert.NoError(t, src.Close())
}

func TestFileSourceInvalidate(t *testing.T) {
	src, gen := newScenarioSource(t)
	ctx := context.Background()

	before, err := src.FetchLogs(ctx, "p1", model.CategoryStress)
	require.NoError(t, err)
	require.Len(t, before, 1)

	require.NoError(t, gen.WriteTable("p1", model.TableStress, []fixtures.Row{
		{"patient_id": "p1", "created_at": "2024-01-01T20:00:00Z", "stress_score": 4},
		{"patient_id": "p1", "created_at": "2024-01-02T20:00:00Z", "stress_score": 5},
	}))
	src.Invalidate(filepath.Join(gen.PatientDir("p1"), model.TableStress+".jsonl"))

	after, err := src.FetchLogs(ctx, "p1", model.CategoryStress)
	require.NoError(t, err)
	assert.Len(t, after, 2)
}

func TestSQLiteSource(t *testing.T) {
	ctx := context.Background()
	files, _ := newScenarioSource(t)

	db, err := NewSQLiteSource(filepath.Join(t.TempDir(), "nested", "health.db"))
	require.NoError(t, err)
	defer db.Close()

	for _, c := range model.AllCategories {
		records, err := files.FetchLogs(ctx, "", c)
		require.NoError(t, err)
		n, err := db.InsertLogs(ctx, c, records)
		require.NoError(t, err)
		assert.Equal(t, len(records), n)
	}

	insulin, err := db.FetchLogs(ctx, "p1", model.CategoryInsulin)
	require.NoError(t, err)
	require.Len(t, insulin, 4)
	var cbg []any
	for _, r := range insulin {
		assert.Equal(t, model.CategoryInsulin, r.Category)
		assert.NotContains(t, r.Fields, "id")
		cbg = append(cbg, r.Fields[model.FieldCBG])
	}
	assert.ElementsMatch(t, []any{100.0, 120.0, 90.0, 500.0}, cbg)

	activities, err := db.FetchLogs(ctx, "p1", model.CategoryActivity)
	require.NoError(t, err)
	durations := make([]any, 0, len(activities))
	for _, r := range activities {
		durations = append(durations, r.Fields[model.FieldDuration])
	}
	// Untyped columns keep numeric text as text
	assert.ElementsMatch(t, []any{30.0, "15", 20.0}, durations)

	patients, err := db.Patients(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, patients)

	_, err = db.FetchLogs(ctx, "p1", model.Category("weight"))
	assert.Error(t, err)
}

func TestSQLiteSourceDoctorNotes(t *testing.T) {
	ctx := context.Background()
	db, err := NewSQLiteSource(filepath.Join(t.TempDir(), "health.db"))
	require.NoError(t, err)
	defer db.Close()

	for _, n := range []model.DoctorNote{
		{DoctorID: "doc-1", PatientID: "p1", CreatedAt: "2024-01-02T10:00:00Z", Note: "older"},
		{DoctorID: "doc-1", PatientID: "p1", CreatedAt: "2024-01-03T10:00:00Z", Note: "newer"},
		{DoctorID: "doc-1", PatientID: "p1", CreatedAt: "2024-01-04T10:00:00Z", Note: ""},
		{DoctorID: "doc-2", PatientID: "p1", Note: "someone else"},
	} {
		require.NoError(t, db.InsertDoctorNote(ctx, n))
	}

	notes, err := db.FetchDoctorNotes(ctx, "doc-1", "p1")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "newer", notes[0].Note)
	assert.Equal(t, "older", notes[1].Note)
}
