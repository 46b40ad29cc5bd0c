package formatter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/penwyp/go-health-dashboard/internal/core/model"
	"github.com/penwyp/go-health-dashboard/internal/data/aggregator"
	"github.com/penwyp/go-health-dashboard/internal/util"
)

type CSVFormatter struct{}

func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

// FormatChart writes a header of dataset names and one row per day.
func (f *CSVFormatter) FormatChart(w io.Writer, title string, s model.ChartSeries) error {
	cw := csv.NewWriter(w)

	headers := make([]string, 0, len(s.Datasets)+1)
	headers = append(headers, "Date")
	for _, ds := range s.Datasets {
		headers = append(headers, ds.Name)
	}
	if err := cw.Write(headers); err != nil {
		return err
	}

	for i, label := range s.Labels {
		record := make([]string, 0, len(s.Datasets)+1)
		record = append(record, label.String())
		for _, ds := range s.Datasets {
			record = append(record, strconv.FormatFloat(ds.Values[i], 'f', -1, 64))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// FormatReport writes every section into one table. The columns are the
// union of the section columns; cells a category does not have stay empty.
// Doctor notes follow as rows of category "note".
func (f *CSVFormatter) FormatReport(w io.Writer, r Report) error {
	loc := r.location()
	cw := csv.NewWriter(w)

	var columns []string
	index := make(map[string]int)
	for _, section := range r.Sections {
		for _, col := range Columns(section.Category) {
			if col.Field == model.FieldNotes {
				continue
			}
			if _, ok := index[col.Header]; !ok {
				index[col.Header] = len(columns)
				columns = append(columns, col.Header)
			}
		}
	}
	notesCol := len(columns) + 3

	headers := append([]string{"Category", "#", "Date"}, columns...)
	headers = append(headers, "Notes")
	if err := cw.Write(headers); err != nil {
		return err
	}

	for _, section := range r.Sections {
		cols := Columns(section.Category)
		for i, rec := range section.Records {
			record := make([]string, len(headers))
			record[0] = string(section.Category)
			record[1] = strconv.Itoa(i + 1)
			record[2] = util.FormatTimestamp(rec.TimestampMs, loc)
			for _, col := range cols {
				pos := notesCol
				if col.Field != model.FieldNotes {
					pos = index[col.Header] + 3
				}
				record[pos] = csvCell(cellText(col, rec, loc))
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}

	for i, n := range r.Notes {
		record := make([]string, len(headers))
		record[0] = "note"
		record[1] = strconv.Itoa(i + 1)
		record[2] = noteTime(n, loc)
		record[notesCol] = n.Note
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// FormatSummary writes one row per category total.
func (f *CSVFormatter) FormatSummary(w io.Writer, summaries []aggregator.Summary) error {
	cw := csv.NewWriter(w)
	headers := []string{"Category", "Series", "Kind", "Value", "Samples", "Records", "Days", "First", "Last"}
	if err := cw.Write(headers); err != nil {
		return err
	}

	for _, s := range summaries {
		first, last := "", ""
		if s.Days > 0 {
			first, last = s.First.String(), s.Last.String()
		}
		for _, t := range s.Totals {
			record := []string{
				string(s.Category),
				t.Name,
				string(t.Kind),
				strconv.FormatFloat(t.Value, 'f', -1, 64),
				strconv.Itoa(t.Samples),
				strconv.Itoa(s.Records),
				strconv.Itoa(s.Days),
				first,
				last,
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvCell(s string) string {
	if s == util.Placeholder {
		return ""
	}
	return s
}
