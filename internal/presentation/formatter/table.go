package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/penwyp/go-health-dashboard/internal/core/model"
	"github.com/penwyp/go-health-dashboard/internal/presentation/layout"
	"github.com/penwyp/go-health-dashboard/internal/util"
)

const minColumnWidth = 6

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("69"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// TableFormatter draws box tables sized to the terminal.
type TableFormatter struct {
	opts Options
}

func NewTableFormatter(opts Options) *TableFormatter {
	return &TableFormatter{opts: opts}
}

func (f *TableFormatter) sizer(w io.Writer) *layout.Sizer {
	if f.opts.Width > 0 {
		return layout.NewSizer(f.opts.Width)
	}
	return layout.ForWriter(w)
}

func (f *TableFormatter) style(s lipgloss.Style, text string) string {
	if !f.opts.Color {
		return text
	}
	return s.Render(text)
}

// FormatChart prints one row per day and one column per dataset, followed
// by a legend with the dataset colors.
func (f *TableFormatter) FormatChart(w io.Writer, title string, s model.ChartSeries) error {
	ew := &errWriter{w: w}

	ew.println(f.style(titleStyle, title))
	if s.IsEmpty() {
		ew.println(f.style(dimStyle, "No data in range."))
		return ew.err
	}

	headers := make([]string, 0, len(s.Datasets)+1)
	headers = append(headers, "Date")
	for _, ds := range s.Datasets {
		headers = append(headers, ds.Name)
	}

	rows := make([][]string, len(s.Labels))
	for i, label := range s.Labels {
		row := make([]string, 0, len(s.Datasets)+1)
		row = append(row, label.String())
		for _, ds := range s.Datasets {
			row = append(row, util.FormatValue(ds.Values[i]))
		}
		rows[i] = row
	}

	f.writeTable(ew, headers, rows, func(col int) bool { return col > 0 })

	if f.opts.Color {
		legend := make([]string, 0, len(s.Datasets))
		for _, ds := range s.Datasets {
			swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(ds.Color)).Render("■")
			legend = append(legend, swatch+" "+ds.Name)
		}
		ew.println(strings.Join(legend, "  "))
	}
	return ew.err
}

// FormatReport prints a table per category and the doctor notes.
func (f *TableFormatter) FormatReport(w io.Writer, r Report) error {
	ew := &errWriter{w: w}
	loc := r.location()
	sizer := f.sizer(w)

	ew.println(f.style(titleStyle, "Report for "+r.PatientID))
	if !r.GeneratedAt.IsZero() {
		ew.printf("Generated on: %s\n", r.GeneratedAt.In(loc).Format("1/2/2006, 3:04:05 PM"))
	}

	for _, section := range r.Sections {
		ew.println()
		ew.println(f.style(sectionStyle, SectionTitle(section.Category)))
		if len(section.Records) == 0 {
			ew.println(f.style(dimStyle, emptyMessages[section.Category]))
			continue
		}

		rows := make([][]string, len(section.Records))
		for i, rec := range section.Records {
			rows[i] = reportRow(i, rec, loc)
		}
		f.writeTable(ew, reportHeaders(section.Category), rows, func(col int) bool { return col == 0 })
	}

	ew.println()
	ew.println(f.style(sectionStyle, "Doctor's Notes"))
	if len(r.Notes) == 0 {
		ew.println(f.style(dimStyle, "No doctor's notes available."))
		return ew.err
	}
	for _, n := range r.Notes {
		ew.printf("- %s\n", f.style(dimStyle, noteTime(n, loc)))
		for _, line := range strings.Split(strings.TrimSpace(n.Note), "\n") {
			ew.printf("  %s\n", sizer.Truncate(line, sizer.Width-2))
		}
	}
	return ew.err
}

// writeTable draws a bordered table. Cells wider than their fitted column
// are truncated.
func (f *TableFormatter) writeTable(ew *errWriter, headers []string, rows [][]string, rightAlign func(col int) bool) {
	sizer := f.sizer(ew.w)

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = sizer.DisplayWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := sizer.DisplayWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	widths = sizer.FitColumns(widths, minColumnWidth)

	f.printBorder(ew, widths, "top")
	f.printRow(ew, sizer, headers, widths, func(int) bool { return false })
	f.printBorder(ew, widths, "middle")
	for _, row := range rows {
		f.printRow(ew, sizer, row, widths, rightAlign)
	}
	f.printBorder(ew, widths, "bottom")
}

// printBorder prints table borders (top, middle, bottom)
func (f *TableFormatter) printBorder(ew *errWriter, widths []int, borderType string) {
	var left, middle, right string
	switch borderType {
	case "top":
		left, middle, right = "┌", "┬", "┐"
	case "middle":
		left, middle, right = "├", "┼", "┤"
	default:
		left, middle, right = "└", "┴", "┘"
	}

	var b strings.Builder
	b.WriteString(left)
	for i, width := range widths {
		b.WriteString(strings.Repeat("─", width+2))
		if i < len(widths)-1 {
			b.WriteString(middle)
		}
	}
	b.WriteString(right)
	ew.println(b.String())
}

func (f *TableFormatter) printRow(ew *errWriter, sizer *layout.Sizer, values []string, widths []int, rightAlign func(col int) bool) {
	var b strings.Builder
	b.WriteString("│")
	for i, value := range values {
		cell := sizer.Truncate(strings.ReplaceAll(value, "\n", " "), widths[i])
		b.WriteString(" ")
		b.WriteString(sizer.PadString(cell, widths[i], !rightAlign(i)))
		b.WriteString(" │")
	}
	ew.println(b.String())
}

// errWriter keeps the first write error so printing code stays linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (e *errWriter) println(args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintln(e.w, args...)
}
