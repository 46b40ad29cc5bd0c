package formatter

import (
	"io"
	"strings"

	"github.com/penwyp/go-health-dashboard/internal/data/aggregator"
	"github.com/penwyp/go-health-dashboard/internal/util"
)

// FormatSummary prints totals per category over the filtered range.
func (f *TableFormatter) FormatSummary(w io.Writer, summaries []aggregator.Summary) error {
	ew := &errWriter{w: w}

	ew.println(strings.Repeat("=", 60))
	ew.println(f.style(titleStyle, "Patient Log Summary"))
	ew.println(strings.Repeat("=", 60))

	for _, s := range summaries {
		ew.println()
		ew.printf("%s:\n", f.style(sectionStyle, SectionTitle(s.Category)))
		if s.Records == 0 {
			ew.println("  No records in range")
			continue
		}
		if s.First == s.Last {
			ew.printf("  Date Range: %s\n", s.First)
		} else {
			ew.printf("  Date Range: %s to %s\n", s.First, s.Last)
		}
		ew.printf("  Records: %s over %s days\n", util.FormatNumber(s.Records), util.FormatNumber(s.Days))
		for _, t := range s.Totals {
			ew.printf("  %-26s %10s  (%s, %d samples)\n", t.Name+":", util.FormatValue(t.Value), totalLabel(t.Kind), t.Samples)
		}
	}

	ew.println()
	ew.println(strings.Repeat("=", 60))
	return ew.err
}

func totalLabel(k aggregator.Kind) string {
	switch k {
	case aggregator.KindMean:
		return "mean"
	case aggregator.KindSum:
		return "total"
	case aggregator.KindCount:
		return "count"
	case aggregator.KindLatest:
		return "daily mean"
	default:
		return string(k)
	}
}
