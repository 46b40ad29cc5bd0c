package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-health-dashboard/internal/core/model"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseReaderLines(t *testing.T) {
	input := strings.Join([]string{
		`{"patient_id":"p1","created_at":"2024-01-01T08:00:00Z","cbg":110}`,
		``,
		`{not json}`,
		`["array line"]`,
		`  {"patient_id":"p1","created_at":1704182400000,"cbg":"90","notes":"ok"}  `,
	}, "\n")

	records, err := ParseReader(strings.NewReader(input), "insulin.jsonl")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "p1", records[0].PatientID)
	assert.Equal(t, 110.0, records[0].Fields["cbg"])
	assert.Equal(t, 1704182400000.0, records[1].CreatedAt)
	assert.Equal(t, "ok", records[1].Notes)
}

func TestParseReaderArray(t *testing.T) {
	input := "\ufeff  [\n" +
		`{"patient_id":"p1","created_at":"2024-01-01","meal_type":"lunch"},` +
		`42,` +
		`{"patient_id":"p2","created_at":"2024-01-02","meal_type":"dinner","category":"meals"}` +
		"]"

	records, err := ParseReader(strings.NewReader(input), "meals.json")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "lunch", records[0].Fields["meal_type"])
	assert.Equal(t, "p2", records[1].PatientID)
	assert.Equal(t, model.CategoryMeal, records[1].Category)
}

func TestParseReaderStrayLeadByte(t *testing.T) {
	// 0xEF not followed by BB BF is not a byte order mark and must not eat
	// the start of the next row
	input := "\xef\n" + `{"created_at":"2024-01-01","cbg":2}`
	records, err := ParseReader(strings.NewReader(input), "stray.jsonl")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 2.0, records[0].Fields["cbg"])

	records, err = ParseReader(strings.NewReader("\xef\xbb\xbf"+`{"created_at":"2024-01-01","cbg":1}`), "bom.jsonl")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestParseReaderBrokenArray(t *testing.T) {
	_, err := ParseReader(strings.NewReader(`[{"a":1},`), "broken.json")
	assert.Error(t, err)
}

func TestParseReaderEmpty(t *testing.T) {
	records, err := ParseReader(strings.NewReader(" \n\t"), "empty.jsonl")
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestParseFileCache(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "sleep.jsonl", `{"patient_id":"p1","created_at":"2024-01-01","sleep_hours":7}`+"\n")

	p := NewParser(0)
	first, err := p.ParseFile(path)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Same size and mtime is served from cache
	again, err := p.ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	content := `{"patient_id":"p1","created_at":"2024-01-01","sleep_hours":7}` + "\n" +
		`{"patient_id":"p1","created_at":"2024-01-02","sleep_hours":6}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	updated, err := p.ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, updated, 2)

	p.Forget(path)
	reparsed, err := p.ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, reparsed, 2)
}

func TestParseFileMissing(t *testing.T) {
	_, err := NewParser(1).ParseFile(filepath.Join(t.TempDir(), "nope.jsonl"))
	assert.True(t, os.IsNotExist(err))
}

func TestParseFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "insulin.jsonl", `{"created_at":"2024-01-01","cbg":100}`+"\n")
	b := writeFile(t, dir, "stress.jsonl", `{"created_at":"2024-01-01","stress_score":4}`+"\n"+`{"created_at":"2024-01-02","stress_score":5}`)
	missing := filepath.Join(dir, "missing.jsonl")

	got := make(map[string]ParseResult)
	for res := range NewParser(2).ParseFiles([]string{a, b, missing}) {
		got[res.File] = res
	}

	require.Len(t, got, 3)
	assert.Len(t, got[a].Records, 1)
	assert.Len(t, got[b].Records, 2)
	assert.Error(t, got[missing].Error)
}

func TestParseDoctorReports(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doctor_reports.jsonl", strings.Join([]string{
		`{"doctor_id":"doc-1","patient_id":"p1","created_at":"2024-01-03T09:00:00Z","report_data":{"note":"Reduce evening dose"}}`,
		`{"doctor_id":"doc-2","patient_id":"p1","created_at":"2024-01-04T09:00:00Z","report_data":"{\"note\":\"Encoded note\"}"}`,
		`{"doctor_id":"doc-1","patient_id":"p1","report_data":{}}`,
	}, "\n"))

	notes, err := NewParser(1).ParseDoctorReports(path)
	require.NoError(t, err)
	require.Len(t, notes, 3)

	assert.Equal(t, model.DoctorNote{DoctorID: "doc-1", PatientID: "p1", CreatedAt: "2024-01-03T09:00:00Z", Note: "Reduce evening dose"}, notes[0])
	assert.Equal(t, "Encoded note", notes[1].Note)
	assert.Empty(t, notes[2].CreatedAt)
	assert.True(t, notes[2].IsBlank())
}

func TestParseDoctorReportsMissingFile(t *testing.T) {
	notes, err := NewParser(1).ParseDoctorReports(filepath.Join(t.TempDir(), "doctor_reports.jsonl"))
	require.NoError(t, err)
	assert.Empty(t, notes)
}
