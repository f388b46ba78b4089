package coords

import (
	"fmt"
	"unicode/utf16"

	"github.com/dshills/tateview/internal/renderer/core"
)

// Span is an extent along the primary axis. End is exclusive.
type Span struct {
	Start, End float64
}

// Contains reports whether x lies inside the span.
func (s Span) Contains(x float64) bool {
	return x >= s.Start && x < s.End
}

// Size returns the span length.
func (s Span) Size() float64 {
	return s.End - s.Start
}

// Measurer is the rendering surface's text measurement primitive. Measure
// returns the extent of units [start, end) of a node. It fails with
// ErrMeasurementUnavailable when the surface cannot produce a box.
type Measurer interface {
	Measure(elem LineElement, node, start, end int) (Span, error)
}

// Preparer is implemented by measurers that precompute per-line state.
// Converter.Element prepares every element it builds.
type Preparer interface {
	Prepare(elem LineElement) LineElement
}

// MonospaceMeasurer measures text laid out on a fixed cell grid. Wide
// East Asian glyphs occupy two cells; tabs advance to the next tab stop.
type MonospaceMeasurer struct {
	CharWidth float64
	TabSize   int
	// Uniform gives every printable rune one cell, as in vertical lines
	// where glyphs are stacked rather than laid side by side.
	Uniform bool
}

// gridKey identifies the measurer settings a LineElement was prepared for.
type gridKey struct {
	tab     int
	uniform bool
}

func (m MonospaceMeasurer) key() gridKey {
	return gridKey{tab: m.TabSize, uniform: m.Uniform}
}

// Prepare records the cell column after every UTF-16 unit of elem, so
// Measure no longer walks the text before the measured units.
func (m MonospaceMeasurer) Prepare(elem LineElement) LineElement {
	cols := make([]int, elem.Len()+1)
	cells, units := 0, 0
	for _, node := range elem.Nodes {
		for _, r := range node.Text {
			n := max(1, utf16.RuneLen(r))
			cells += m.runeCells(r, cells)
			for k := 1; k <= n && units+k < len(cols); k++ {
				cols[units+k] = cells
			}
			units += n
		}
	}
	elem.cols, elem.grid = cols, m.key()
	return elem
}

// Measure implements Measurer.
func (m MonospaceMeasurer) Measure(elem LineElement, node, start, end int) (Span, error) {
	if node < 0 || node >= len(elem.Nodes) {
		return Span{}, fmt.Errorf("%w: node %d of %d", ErrMeasurementUnavailable, node, len(elem.Nodes))
	}
	n := elem.Nodes[node]
	if start < 0 || end > n.Len || start > end {
		return Span{}, fmt.Errorf("%w: units [%d, %d) of %d", ErrMeasurementUnavailable, start, end, n.Len)
	}
	if m.CharWidth <= 0 {
		return Span{}, fmt.Errorf("%w: no character width", ErrMeasurementUnavailable)
	}

	if elem.grid == m.key() && len(elem.cols) == elem.Len()+1 {
		return Span{
			Start: elem.Origin + float64(elem.cols[n.Offset+start])*m.CharWidth,
			End:   elem.Origin + float64(elem.cols[n.Offset+end])*m.CharWidth,
		}, nil
	}

	cells := 0
	for i := range node {
		cells = m.advance(elem.Nodes[i].Text, cells, -1)
	}
	s := m.advance(n.Text, cells, start)
	e := m.advance(n.Text, cells, end)
	return Span{
		Start: elem.Origin + float64(s)*m.CharWidth,
		End:   elem.Origin + float64(e)*m.CharWidth,
	}, nil
}

// Cells returns the cell count of a whole line of text.
func (m MonospaceMeasurer) Cells(text string) int {
	return m.advance(text, 0, -1)
}

// advance walks text from column cells and returns the cell column reached
// after limit UTF-16 units. A negative limit consumes all of text.
func (m MonospaceMeasurer) advance(text string, cells, limit int) int {
	units := 0
	for _, r := range text {
		if limit >= 0 && units >= limit {
			break
		}
		cells += m.runeCells(r, cells)
		units += max(1, utf16.RuneLen(r))
	}
	return cells
}

func (m MonospaceMeasurer) runeCells(r rune, at int) int {
	if r == '\t' {
		tab := m.TabSize
		if tab <= 0 {
			tab = 4
		}
		return tab - at%tab
	}
	w := core.RuneWidth(r)
	if m.Uniform && w > 1 {
		return 1
	}
	return w
}
