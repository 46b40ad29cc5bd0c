// Package formatter renders chart series, report tables and summaries as
// terminal tables, CSV or JSON.
package formatter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/penwyp/go-health-dashboard/internal/core/model"
	"github.com/penwyp/go-health-dashboard/internal/data/aggregator"
)

// Output formats
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

// Formatter writes the three dashboard views.
type Formatter interface {
	// FormatChart writes a chart series: one row per day, one column per
	// dataset.
	FormatChart(w io.Writer, title string, s model.ChartSeries) error
	// FormatReport writes the per-category log tables and doctor notes.
	FormatReport(w io.Writer, r Report) error
	// FormatSummary writes range totals per category.
	FormatSummary(w io.Writer, summaries []aggregator.Summary) error
}

// Options tune the formatters.
type Options struct {
	// Color enables styled titles and legends in table output.
	Color bool
	// Width overrides the terminal width for table output.
	Width int
}

// Report is the printable report of one patient.
type Report struct {
	PatientID   string
	GeneratedAt time.Time
	Sections    []ReportSection
	Notes       []model.DoctorNote
	Location    *time.Location
}

// ReportSection is the filtered log of one category, oldest first.
type ReportSection struct {
	Category model.Category
	Records  []model.NormalizedRecord
}

func (r Report) location() *time.Location {
	if r.Location == nil {
		return time.Local
	}
	return r.Location
}

// NewFormatter returns the formatter for an output format name.
func NewFormatter(format string, opts Options) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatTable:
		return NewTableFormatter(opts), nil
	case FormatCSV:
		return NewCSVFormatter(), nil
	case FormatJSON:
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want table, csv or json)", format)
	}
}
