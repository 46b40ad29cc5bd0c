package commands

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-health-dashboard/internal/testing/fixtures"
)

var scenarioDay = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func scenarioDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	g := fixtures.NewTestDataGenerator(dir)
	require.NoError(t, g.GenerateTwoDayScenario("p1", scenarioDay))
	require.NoError(t, g.GenerateDays("p2", scenarioDay, 3))
	return dir
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	base := []string{
		"--config", filepath.Join(t.TempDir(), "missing.toml"),
		"--timezone", "UTC",
		"--no-color",
	}
	cmd.SetArgs(append(base, args...))
	err := cmd.Execute()
	return out.String(), err
}

type chartDoc struct {
	Title    string   `json:"title"`
	Labels   []string `json:"labels"`
	Datasets []struct {
		Name   string    `json:"name"`
		Values []float64 `json:"values"`
	} `json:"datasets"`
}

func (d chartDoc) values(name string) []float64 {
	for _, ds := range d.Datasets {
		if ds.Name == name {
			return ds.Values
		}
	}
	return nil
}

func decodeChart(t *testing.T, out string) chartDoc {
	t.Helper()
	var doc chartDoc
	require.NoError(t, sonic.UnmarshalString(out, &doc), out)
	return doc
}

func TestChartRequiresPatient(t *testing.T) {
	_, err := runCommand(t, "chart", "--dir", t.TempDir())
	assert.ErrorContains(t, err, "--patient")
}

func TestChartTable(t *testing.T) {
	out, err := runCommand(t, "chart", "--dir", scenarioDir(t), "--patient", "p1", "--category", "insulin")
	require.NoError(t, err)

	assert.Contains(t, out, "Blood Sugar Levels")
	assert.Contains(t, out, "1/1/2024")
	assert.Contains(t, out, "110")
	assert.Contains(t, out, "1/2/2024")
	assert.NotContains(t, out, "Meal Distribution")
	assert.NotContains(t, out, "500", "malformed row is dropped")
}

func TestChartDefaultCommandShowsAllCategories(t *testing.T) {
	out, err := runCommand(t, "--dir", scenarioDir(t), "--patient", "p1")
	require.NoError(t, err)

	for _, title := range []string{"Blood Sugar Levels", "Meal Distribution", "Physical Activities (Duration per Day)", "Sleep", "Stress"} {
		assert.Contains(t, out, title)
	}
}

func TestChartJSON(t *testing.T) {
	dir := scenarioDir(t)

	t.Run("insulin", func(t *testing.T) {
		out, err := runCommand(t, "chart", "--dir", dir, "-p", "p1", "-c", "insulin", "-o", "json")
		require.NoError(t, err)
		doc := decodeChart(t, out)
		assert.Equal(t, []string{"1/1/2024", "1/2/2024"}, doc.Labels)
		assert.Equal(t, []float64{110, 90}, doc.values("CBG"))
		assert.Equal(t, []float64{110, 0}, doc.values("Pre-Meal CBG"))
		assert.Equal(t, []float64{0, 140}, doc.values("Post-Meal CBG"))
	})

	t.Run("meals", func(t *testing.T) {
		out, err := runCommand(t, "chart", "--dir", dir, "-p", "p1", "-c", "meal", "-o", "json")
		require.NoError(t, err)
		doc := decodeChart(t, out)
		assert.Equal(t, "Meal Distribution", doc.Title)
		assert.Equal(t, []float64{1, 0}, doc.values("Breakfast"))
		assert.Equal(t, []float64{0, 2}, doc.values("Lunch"))
		assert.Equal(t, []float64{0, 1}, doc.values("Dinner"))
		assert.Equal(t, []float64{0, 0}, doc.values("Snacks"))
	})

	t.Run("activity_sum", func(t *testing.T) {
		out, err := runCommand(t, "chart", "--dir", dir, "-p", "p1", "-c", "activity", "-o", "json")
		require.NoError(t, err)
		assert.Equal(t, []float64{30, 35}, decodeChart(t, out).values("Total Duration (minutes)"))
	})

	t.Run("sleep_latest_wins", func(t *testing.T) {
		out, err := runCommand(t, "chart", "--dir", dir, "-p", "p1", "-c", "sleep", "-o", "json")
		require.NoError(t, err)
		assert.Equal(t, []float64{7, 8}, decodeChart(t, out).values("Hours Slept"))
	})

	t.Run("meal_type_filter", func(t *testing.T) {
		out, err := runCommand(t, "chart", "--dir", dir, "-p", "p1", "-c", "meal", "--meal-type", "LUNCH", "-o", "json")
		require.NoError(t, err)
		doc := decodeChart(t, out)
		assert.Equal(t, []string{"1/2/2024"}, doc.Labels)
		assert.Equal(t, []float64{2}, doc.values("Lunch"))
		assert.Equal(t, []float64{0}, doc.values("Breakfast"))
	})

	t.Run("date_range", func(t *testing.T) {
		out, err := runCommand(t, "chart", "--dir", dir, "-p", "p1", "-c", "insulin", "--from", "2024-01-02", "-o", "json")
		require.NoError(t, err)
		doc := decodeChart(t, out)
		assert.Equal(t, []string{"1/2/2024"}, doc.Labels)
		assert.Equal(t, []float64{90}, doc.values("CBG"))
	})

	t.Run("inverted_range_is_empty", func(t *testing.T) {
		out, err := runCommand(t, "chart", "--dir", dir, "-p", "p1", "-c", "insulin", "--from", "2024-01-02", "--to", "2024-01-01", "-o", "json")
		require.NoError(t, err)
		doc := decodeChart(t, out)
		assert.Empty(t, doc.Labels)
		assert.Equal(t, []float64{}, doc.values("CBG"))
	})

	t.Run("unknown_patient_is_empty", func(t *testing.T) {
		out, err := runCommand(t, "chart", "--dir", dir, "-p", "nobody", "-c", "insulin", "-o", "json")
		require.NoError(t, err)
		assert.Empty(t, decodeChart(t, out).Labels)
	})
}

func TestChartCSVCombinesCategories(t *testing.T) {
	out, err := runCommand(t, "chart", "--dir", scenarioDir(t), "-p", "p1", "-o", "csv")
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Date", records[0][0])
	assert.Contains(t, records[0], "CBG")
	assert.Contains(t, records[0], "Stress Score")
	assert.Equal(t, "1/1/2024", records[1][0])
	assert.Equal(t, "1/2/2024", records[2][0])
}

func TestReport(t *testing.T) {
	dir := scenarioDir(t)

	out, err := runCommand(t, "report", "--dir", dir, "-p", "p1", "--doctor", "doc-1")
	require.NoError(t, err)

	assert.Contains(t, out, "Report for p1")
	assert.Contains(t, out, "Insulin & Blood Sugar Logs")
	assert.Contains(t, out, "fasting")
	assert.Contains(t, out, "champorado")
	assert.Contains(t, out, "—")
	assert.Contains(t, out, "Reduce evening dose")
	assert.NotContains(t, out, "Other doctor's note")
	assert.Less(t, strings.Index(out, "1/1/2024, 8:00:00 AM"), strings.Index(out, "1/1/2024, 12:00:00 PM"))

	t.Run("without_doctor", func(t *testing.T) {
		out, err := runCommand(t, "report", "--dir", dir, "-p", "p1")
		require.NoError(t, err)
		assert.Contains(t, out, "No doctor's notes available.")
	})
}

func TestSummary(t *testing.T) {
	out, err := runCommand(t, "summary", "--dir", scenarioDir(t), "-p", "p1", "-c", "insulin")
	require.NoError(t, err)
	assert.Contains(t, out, "Records: 3 over 2 days")
	assert.Contains(t, out, "Date Range: 1/1/2024 to 1/2/2024")
}

func TestPatients(t *testing.T) {
	out, err := runCommand(t, "patients", "--dir", scenarioDir(t))
	require.NoError(t, err)
	assert.Equal(t, "p1\np2\n", out)
}

func TestImportThenChartFromSQLite(t *testing.T) {
	dir := scenarioDir(t)
	db := filepath.Join(t.TempDir(), "store", "health.db")

	out, err := runCommand(t, "import", "--dir", dir, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "insulin")
	assert.Contains(t, out, "doctor_reports")

	out, err = runCommand(t, "chart", "--db", db, "-p", "p1", "-c", "insulin", "-o", "json")
	require.NoError(t, err)
	doc := decodeChart(t, out)
	assert.Equal(t, []string{"1/1/2024", "1/2/2024"}, doc.Labels)
	assert.Equal(t, []float64{110, 90}, doc.values("CBG"))

	out, err = runCommand(t, "report", "--db", db, "-p", "p1", "--doctor", "doc-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Reduce evening dose")

	out, err = runCommand(t, "patients", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "p1\np2\n", out)
}

func TestWatchRejectsSQLite(t *testing.T) {
	_, err := runCommand(t, "watch", "--db", filepath.Join(t.TempDir(), "h.db"), "-p", "p1")
	assert.ErrorContains(t, err, "file source")
}

func TestInvalidOutputFormat(t *testing.T) {
	_, err := runCommand(t, "chart", "--dir", t.TempDir(), "-p", "p1", "-o", "xml")
	assert.ErrorContains(t, err, "display format")
}
