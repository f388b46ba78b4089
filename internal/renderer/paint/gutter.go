package paint

import (
	"strconv"
	"strings"

	"github.com/dshills/tateview/internal/renderer/orientation"
)

// LineNumberMode defines how line numbers are displayed.
type LineNumberMode uint8

const (
	// LineNumbersOff hides the gutter.
	LineNumbersOff LineNumberMode = iota
	// LineNumbersAbsolute shows absolute line numbers (1, 2, 3, ...).
	LineNumbersAbsolute
	// LineNumbersRelative shows the distance from the cursor line.
	LineNumbersRelative
	// LineNumbersHybrid shows the absolute number on the cursor line and
	// distances elsewhere.
	LineNumbersHybrid
)

// ParseLineNumberMode parses "off", "on"/"absolute", "relative" or "hybrid".
func ParseLineNumberMode(s string) (LineNumberMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "false", "none":
		return LineNumbersOff, true
	case "on", "true", "absolute", "":
		return LineNumbersAbsolute, true
	case "relative":
		return LineNumbersRelative, true
	case "hybrid":
		return LineNumbersHybrid, true
	}
	return LineNumbersAbsolute, false
}

// LineNumberFormatter formats model line numbers for the gutter.
type LineNumberFormatter struct {
	Mode LineNumberMode
	// Width pads numbers on the left.
	Width int
	// Current is the 1-based model line of the primary cursor, or 0.
	Current int
}

// Format returns the padded label for a 1-based model line.
func (f LineNumberFormatter) Format(line int) string {
	n := line
	switch f.Mode {
	case LineNumbersRelative:
		if f.Current > 0 {
			n = absDiff(line, f.Current)
		}
	case LineNumbersHybrid:
		if f.Current > 0 && line != f.Current {
			n = absDiff(line, f.Current)
		}
	}
	return PadLeft(strconv.Itoa(n), f.Width)
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// PadLeft pads a string with spaces on the left to the given width.
func PadLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// GutterCells returns the gutter size for a document: the digits of the
// last line number, at least minDigits, plus one cell of padding.
func GutterCells(mode LineNumberMode, lineCount, minDigits int) int {
	if mode == LineNumbersOff {
		return 0
	}
	return max(countDigits(lineCount), minDigits) + 1
}

func countDigits(n int) int {
	if n <= 0 {
		return 1
	}
	d := 0
	for ; n > 0; n /= 10 {
		d++
	}
	return d
}

// PaintLineNumbers draws model line numbers beside each visible line. The
// cell nearest the content is left as padding.
func PaintLineNumbers(ctx *Context, c *Canvas) {
	snap := ctx.Snapshot
	l := ctx.Layout
	if ctx.Options.LineNumbers == LineNumbersOff || snap.IsEmpty() || l.Gutter.A1 <= l.Gutter.A0 {
		return
	}
	defer c.Clip(l.Cells(l.Gutter))()

	cw := ctx.Metrics.CharWidth
	labelEnd := l.Gutter.A1 - cw
	f := LineNumberFormatter{
		Mode:  ctx.Options.LineNumbers,
		Width: int((labelEnd - l.Gutter.A0) / cw),
	}
	if cursors := snap.Cursors(); len(cursors) > 0 {
		if m, ok := snap.ModelLine(cursors[0].Line); ok {
			f.Current = m
		}
	}

	for line := snap.First; line <= snap.Last; line++ {
		model, ok := snap.ModelLine(line)
		if !ok {
			continue
		}
		off, _ := snap.Offset(line)
		r := l.Cells(orientation.AxisRect{
			A0: l.Gutter.A0, A1: labelEnd,
			S0: l.Content.S0 + off, S1: l.Content.S0 + off + ctx.Metrics.LineHeight,
		})
		style := ctx.Theme.LineNumber
		if model == f.Current {
			style = ctx.Theme.ActiveLineNumber
		}
		c.Text(r, f.Format(model), style, ctx.Roles.PrimaryIsHorizontal)
	}
}
