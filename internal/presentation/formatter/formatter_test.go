package formatter

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-health-dashboard/internal/core/model"
	"github.com/penwyp/go-health-dashboard/internal/data/aggregator"
	"github.com/penwyp/go-health-dashboard/internal/data/pipeline"
)

func insulinRows() []model.RawLogRecord {
	return []model.RawLogRecord{
		{CreatedAt: "2024-01-01T08:00:00Z", Fields: map[string]any{"cbg": 100.0, "dosage": 4.0}, Notes: "fasting"},
		{CreatedAt: "2024-01-01T12:00:00Z", Fields: map[string]any{"cbg": 120.0}},
		{CreatedAt: "2024-01-02T08:00:00Z", Fields: map[string]any{"cbg": 90.0, "cbg_pre_meal": 95.0}},
	}
}

func mealRows() []model.RawLogRecord {
	return []model.RawLogRecord{
		{CreatedAt: "2024-01-02T12:00:00Z", Fields: map[string]any{"meal_type": "lunch", "dish": "adobo", "rice_cups": 1.5}},
	}
}

func testReport() Report {
	insulin := pipeline.Recompute(model.CategoryInsulin, insulinRows(), model.Filter{}, time.UTC)
	meals := pipeline.Recompute(model.CategoryMeal, mealRows(), model.Filter{}, time.UTC)
	return Report{
		PatientID:   "p1",
		GeneratedAt: time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC),
		Location:    time.UTC,
		Sections: []ReportSection{
			{Category: model.CategoryInsulin, Records: insulin.Records},
			{Category: model.CategoryMeal, Records: meals.Records},
			{Category: model.CategoryActivity},
		},
		Notes: []model.DoctorNote{{CreatedAt: "2024-01-03T08:00:00Z", Note: "Reduce evening dose"}},
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format  string
		want    interface{}
		wantErr bool
	}{
		{"", &TableFormatter{}, false},
		{"table", &TableFormatter{}, false},
		{"CSV", &CSVFormatter{}, false},
		{"json", &JSONFormatter{}, false},
		{"xml", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			f, err := NewFormatter(tt.format, Options{})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, f)
		})
	}
}

func TestTableFormatChart(t *testing.T) {
	res := pipeline.Recompute(model.CategoryInsulin, insulinRows(), model.Filter{}, time.UTC)
	var buf bytes.Buffer

	require.NoError(t, NewTableFormatter(Options{Width: 100}).FormatChart(&buf, "Glucose", res.Series))
	out := buf.String()

	assert.Contains(t, out, "Glucose")
	assert.Contains(t, out, "Pre-Meal CBG")
	assert.Contains(t, out, "1/1/2024")
	assert.Contains(t, out, "110")
	assert.Less(t, strings.Index(out, "1/1/2024"), strings.Index(out, "1/2/2024"))
	assert.NotContains(t, out, "\x1b[", "no styling without color")
}

func TestTableFormatChartEmpty(t *testing.T) {
	var buf bytes.Buffer
	res := pipeline.Recompute(model.CategorySleep, nil, model.Filter{}, time.UTC)
	require.NoError(t, NewTableFormatter(Options{Width: 80}).FormatChart(&buf, "Sleep", res.Series))
	assert.Contains(t, buf.String(), "No data in range.")
}

func TestTableFormatReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(Options{Width: 140}).FormatReport(&buf, testReport()))
	out := buf.String()

	assert.Contains(t, out, "Report for p1")
	assert.Contains(t, out, "Insulin & Blood Sugar Logs")
	assert.Contains(t, out, "Rice (cups)")
	assert.Contains(t, out, "adobo")
	assert.Contains(t, out, "fasting")
	assert.Contains(t, out, "—", "absent values use the placeholder")
	assert.Contains(t, out, "No activity logs available.")
	assert.Contains(t, out, "Reduce evening dose")
	assert.Contains(t, out, "1/1/2024, 8:00:00 AM")
}

func TestTableFormatReportNoNotes(t *testing.T) {
	r := testReport()
	r.Notes = nil
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(Options{Width: 140}).FormatReport(&buf, r))
	assert.Contains(t, buf.String(), "No doctor's notes available.")
}

func TestTableFormatSummary(t *testing.T) {
	res := pipeline.Recompute(model.CategoryInsulin, insulinRows(), model.Filter{}, time.UTC)
	empty := pipeline.Recompute(model.CategoryStress, nil, model.Filter{}, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(Options{}).FormatSummary(&buf, []aggregator.Summary{res.Summary, empty.Summary}))
	out := buf.String()

	assert.Contains(t, out, "Date Range: 1/1/2024 to 1/2/2024")
	assert.Contains(t, out, "Records: 3 over 2 days")
	assert.Contains(t, out, "No records in range")
}

func TestCSVFormatChart(t *testing.T) {
	res := pipeline.Recompute(model.CategoryInsulin, insulinRows(), model.Filter{}, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, NewCSVFormatter().FormatChart(&buf, "Glucose", res.Series))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Date", "CBG", "Pre-Meal CBG", "Post-Meal CBG"}, records[0])
	assert.Equal(t, []string{"1/1/2024", "110", "0", "0"}, records[1])
	assert.Equal(t, []string{"1/2/2024", "90", "95", "0"}, records[2])
}

func TestCSVFormatReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVFormatter().FormatReport(&buf, testReport()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	header := records[0]
	assert.Equal(t, []string{"Category", "#", "Date"}, header[:3])
	assert.Equal(t, "Notes", header[len(header)-1])
	// 3 insulin rows, 1 meal row, 1 note
	require.Len(t, records, 6)
	assert.Equal(t, "insulin", records[1][0])
	assert.Equal(t, "fasting", records[1][len(header)-1])
	assert.Equal(t, "meal", records[4][0])
	assert.Equal(t, "note", records[5][0])
	assert.Equal(t, "Reduce evening dose", records[5][len(header)-1])
}

func TestJSONFormatChart(t *testing.T) {
	res := pipeline.Recompute(model.CategoryMeal, mealRows(), model.Filter{}, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().FormatChart(&buf, "Meals", res.Series))

	var doc struct {
		Title    string   `json:"title"`
		Labels   []string `json:"labels"`
		Datasets []struct {
			Name   string    `json:"name"`
			Values []float64 `json:"values"`
		} `json:"datasets"`
	}
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "Meals", doc.Title)
	assert.Equal(t, []string{"1/2/2024"}, doc.Labels)
	require.Len(t, doc.Datasets, 4)
	assert.Equal(t, "Lunch", doc.Datasets[1].Name)
	assert.Equal(t, []float64{1}, doc.Datasets[1].Values)
}

func TestJSONFormatChartEmptyLabels(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().FormatChart(&buf, "", model.ChartSeries{}))
	assert.Contains(t, buf.String(), `"labels": []`)
}

func TestJSONFormatReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().FormatReport(&buf, testReport()))

	var doc map[string]any
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "p1", doc["patient_id"])

	sections := doc["sections"].([]any)
	require.Len(t, sections, 3)
	first := sections[0].(map[string]any)
	rows := first["records"].([]any)
	require.Len(t, rows, 3)
	row := rows[0].(map[string]any)
	assert.Equal(t, "2024-01-01T08:00:00Z", row["created_at"])
	assert.Equal(t, "fasting", row["notes"])
}

func TestJSONFormatSummary(t *testing.T) {
	res := pipeline.Recompute(model.CategoryActivity, []model.RawLogRecord{
		{CreatedAt: "2024-01-01T08:00:00Z", Fields: map[string]any{"duration": 30.0}},
		{CreatedAt: "2024-01-01T18:00:00Z", Fields: map[string]any{"duration": "15"}},
	}, model.Filter{}, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().FormatSummary(&buf, []aggregator.Summary{res.Summary}))

	var docs []map[string]any
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "1/1/2024", docs[0]["first"])
	totals := docs[0]["totals"].([]any)
	assert.Equal(t, 45.0, totals[0].(map[string]any)["value"])
}
