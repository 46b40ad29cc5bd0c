package formatter

import (
	"strconv"
	"time"

	"github.com/penwyp/go-health-dashboard/internal/core/model"
	"github.com/penwyp/go-health-dashboard/internal/data/normalizer"
	"github.com/penwyp/go-health-dashboard/internal/util"
)

type cellKind int

const (
	cellValue cellKind = iota
	cellClock
	cellNotes
)

// Column is one report table column.
type Column struct {
	Header string
	Field  string
	kind   cellKind
}

var reportColumns = map[model.Category][]Column{
	model.CategoryInsulin: {
		{Header: "Dosage", Field: model.FieldDosage},
		{Header: "CBG", Field: model.FieldCBG},
		{Header: "Pre-Meal", Field: model.FieldCBGPreMeal},
		{Header: "Post-Meal", Field: model.FieldCBGPostMeal},
		{Header: "Notes", Field: model.FieldNotes, kind: cellNotes},
	},
	model.CategoryActivity: {
		{Header: "Activity Type", Field: model.FieldActivityType},
		{Header: "Duration", Field: model.FieldDuration},
		{Header: "Start Time", Field: model.FieldStartTime, kind: cellClock},
		{Header: "End Time", Field: model.FieldEndTime, kind: cellClock},
		{Header: "Notes", Field: model.FieldNotes, kind: cellNotes},
	},
	model.CategoryMeal: {
		{Header: "Meal Type", Field: model.FieldMealType},
		{Header: "Calories", Field: model.FieldCalories},
		{Header: "Rice (cups)", Field: model.FieldRiceCups},
		{Header: "Dish", Field: model.FieldDish},
		{Header: "Drinks", Field: model.FieldDrinks},
		{Header: "Notes", Field: model.FieldNotes, kind: cellNotes},
	},
	model.CategorySleep: {
		{Header: "Hours Slept", Field: model.FieldSleepHours},
		{Header: "Notes", Field: model.FieldNotes, kind: cellNotes},
	},
	model.CategoryStress: {
		{Header: "Stress Score", Field: model.FieldStressScore},
		{Header: "Notes", Field: model.FieldNotes, kind: cellNotes},
	},
}

var sectionTitles = map[model.Category]string{
	model.CategoryInsulin:  "Insulin & Blood Sugar Logs",
	model.CategoryActivity: "Physical Activities",
	model.CategoryMeal:     "Meals",
	model.CategorySleep:    "Sleep",
	model.CategoryStress:   "Stress",
}

var chartTitles = map[model.Category]string{
	model.CategoryInsulin:  "Blood Sugar Levels",
	model.CategoryActivity: "Physical Activities (Duration per Day)",
	model.CategoryMeal:     "Meal Distribution",
	model.CategorySleep:    "Sleep",
	model.CategoryStress:   "Stress",
}

var emptyMessages = map[model.Category]string{
	model.CategoryInsulin:  "No insulin logs available.",
	model.CategoryActivity: "No activity logs available.",
	model.CategoryMeal:     "No meal logs available.",
	model.CategorySleep:    "No sleep logs available.",
	model.CategoryStress:   "No stress logs available.",
}

// Columns returns the report columns of a category, without the leading
// row number and date.
func Columns(c model.Category) []Column {
	return reportColumns[c]
}

// SectionTitle returns the report heading of a category.
func SectionTitle(c model.Category) string {
	if t, ok := sectionTitles[c]; ok {
		return t
	}
	return string(c)
}

// ChartTitle returns the chart heading of a category.
func ChartTitle(c model.Category) string {
	if t, ok := chartTitles[c]; ok {
		return t
	}
	return string(c)
}

// reportHeaders returns the full header row of a category table.
func reportHeaders(c model.Category) []string {
	cols := Columns(c)
	headers := make([]string, 0, len(cols)+2)
	headers = append(headers, "#", "Date")
	for _, col := range cols {
		headers = append(headers, col.Header)
	}
	return headers
}

// reportRow renders one record under the category columns. Absent values
// render as the placeholder.
func reportRow(i int, rec model.NormalizedRecord, loc *time.Location) []string {
	cols := Columns(rec.Category)
	row := make([]string, 0, len(cols)+2)
	row = append(row, strconv.Itoa(i+1), util.FormatTimestamp(rec.TimestampMs, loc))
	for _, col := range cols {
		row = append(row, cellText(col, rec, loc))
	}
	return row
}

func cellText(col Column, rec model.NormalizedRecord, loc *time.Location) string {
	switch col.kind {
	case cellNotes:
		return util.FormatCell(rec.Notes)
	case cellClock:
		v := rec.Fields[col.Field]
		if ms, ok := normalizer.ParseTimestamp(v, loc); ok {
			return time.UnixMilli(ms).In(loc).Format("3:04:05 PM")
		}
		return util.FormatCell(v)
	default:
		return util.FormatCell(rec.Fields[col.Field])
	}
}

// noteTime renders a doctor note timestamp, falling back to the raw text.
func noteTime(n model.DoctorNote, loc *time.Location) string {
	if ms, ok := normalizer.ParseTimestamp(n.CreatedAt, loc); ok {
		return util.FormatTimestamp(ms, loc)
	}
	return util.FormatCell(n.CreatedAt)
}
