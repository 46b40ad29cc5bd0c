package formatter

import (
	"io"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-health-dashboard/internal/core/model"
	"github.com/penwyp/go-health-dashboard/internal/data/aggregator"
)

type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

type chartDocument struct {
	Title string `json:"title,omitempty"`
	model.ChartSeries
}

type reportDocument struct {
	PatientID   string             `json:"patient_id"`
	GeneratedAt string             `json:"generated_at,omitempty"`
	Sections    []reportSection    `json:"sections"`
	Notes       []model.DoctorNote `json:"notes"`
}

type reportSection struct {
	Category model.Category   `json:"category"`
	Records  []map[string]any `json:"records"`
}

type summaryDocument struct {
	Category model.Category       `json:"category"`
	Records  int                  `json:"records"`
	Days     int                  `json:"days"`
	First    *model.DateBucketKey `json:"first,omitempty"`
	Last     *model.DateBucketKey `json:"last,omitempty"`
	Totals   []summaryTotal       `json:"totals"`
}

type summaryTotal struct {
	Name    string  `json:"name"`
	Kind    string  `json:"kind"`
	Value   float64 `json:"value"`
	Samples int     `json:"samples"`
}

func (f *JSONFormatter) encode(w io.Writer, v any) error {
	encoder := sonic.ConfigStd.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// FormatChart writes {"title", "labels", "datasets"}.
func (f *JSONFormatter) FormatChart(w io.Writer, title string, s model.ChartSeries) error {
	if s.Labels == nil {
		s.Labels = []model.DateBucketKey{}
	}
	return f.encode(w, chartDocument{Title: title, ChartSeries: s})
}

// FormatReport writes each record as its original store row, with the
// timestamp rewritten as RFC 3339 in the viewer location.
func (f *JSONFormatter) FormatReport(w io.Writer, r Report) error {
	loc := r.location()
	doc := reportDocument{
		PatientID: r.PatientID,
		Sections:  make([]reportSection, 0, len(r.Sections)),
		Notes:     r.Notes,
	}
	if doc.Notes == nil {
		doc.Notes = []model.DoctorNote{}
	}
	if !r.GeneratedAt.IsZero() {
		doc.GeneratedAt = r.GeneratedAt.In(loc).Format(time.RFC3339)
	}

	for _, section := range r.Sections {
		rows := make([]map[string]any, 0, len(section.Records))
		for _, rec := range section.Records {
			row := make(map[string]any, len(rec.Fields)+2)
			for k, v := range rec.Fields {
				row[k] = v
			}
			row[model.FieldCreatedAt] = time.UnixMilli(rec.TimestampMs).In(loc).Format(time.RFC3339)
			if rec.Notes != "" {
				row[model.FieldNotes] = rec.Notes
			}
			rows = append(rows, row)
		}
		doc.Sections = append(doc.Sections, reportSection{Category: section.Category, Records: rows})
	}

	return f.encode(w, doc)
}

func (f *JSONFormatter) FormatSummary(w io.Writer, summaries []aggregator.Summary) error {
	docs := make([]summaryDocument, 0, len(summaries))
	for _, s := range summaries {
		doc := summaryDocument{
			Category: s.Category,
			Records:  s.Records,
			Days:     s.Days,
			Totals:   make([]summaryTotal, 0, len(s.Totals)),
		}
		if s.Days > 0 {
			first, last := s.First, s.Last
			doc.First, doc.Last = &first, &last
		}
		for _, t := range s.Totals {
			doc.Totals = append(doc.Totals, summaryTotal{Name: t.Name, Kind: string(t.Kind), Value: t.Value, Samples: t.Samples})
		}
		docs = append(docs, doc)
	}
	return f.encode(w, docs)
}
