// Package layout measures text for terminal tables.
package layout

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/penwyp/go-health-dashboard/internal/util"
)

const (
	// DefaultWidth is used when the output is not a terminal.
	DefaultWidth = 120
	minWidth     = 40
	ellipsis     = "…"
)

// Sizer measures and fits cells by display width, so wide runes and
// emoji in notes keep table borders aligned.
type Sizer struct {
	Width int
}

// NewSizer returns a Sizer for the given width. Widths below the minimum
// are raised to it.
func NewSizer(width int) *Sizer {
	if width < minWidth {
		width = minWidth
	}
	return &Sizer{Width: width}
}

// ForWriter sizes to the terminal behind w, or DefaultWidth when w is not
// a terminal.
func ForWriter(w io.Writer) *Sizer {
	return NewSizer(TerminalWidth(w))
}

// TerminalWidth reports the column count of the terminal behind w.
func TerminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return DefaultWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return DefaultWidth
	}
	util.LogDebugf("Terminal width %d", width)
	return width
}

// DisplayWidth calculates the display width of s.
func (s *Sizer) DisplayWidth(str string) int {
	return runewidth.StringWidth(str)
}

// PadString pads str to width display columns.
func (s *Sizer) PadString(str string, width int, leftAlign bool) string {
	actual := s.DisplayWidth(str)
	if actual >= width {
		return str
	}
	padding := strings.Repeat(" ", width-actual)
	if leftAlign {
		return str + padding
	}
	return padding + str
}

// Truncate shortens str to at most width display columns, marking the cut
// with an ellipsis.
func (s *Sizer) Truncate(str string, width int) string {
	if width <= 0 {
		return ""
	}
	if s.DisplayWidth(str) <= width {
		return str
	}
	return runewidth.Truncate(str, width, ellipsis)
}

// FitColumns shrinks the widest columns until the table, with its borders,
// fits in the sizer width. Columns never go below floor.
func (s *Sizer) FitColumns(widths []int, floor int) []int {
	out := make([]int, len(widths))
	copy(out, widths)

	// "│ " before each cell, " " after, and a closing "│"
	total := func() int {
		n := 1
		for _, w := range out {
			n += w + 3
		}
		return n
	}

	for total() > s.Width {
		widest := -1
		for i, w := range out {
			if w > floor && (widest < 0 || w > out[widest]) {
				widest = i
			}
		}
		if widest < 0 {
			break
		}
		out[widest]--
	}
	return out
}
