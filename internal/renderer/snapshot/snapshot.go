// Package snapshot captures the external engine's per-render viewport state
// into immutable values that every downstream derivation takes as a parameter.
package snapshot

import (
	"errors"
	"fmt"
	"unicode/utf16"
)

// Errors returned while capturing a snapshot.
var (
	ErrNoSnapshot      = errors.New("no snapshot available")
	ErrInvalidRange    = errors.New("invalid visible line range")
	ErrOffsetsMismatch = errors.New("relative offsets do not match visible range")
	ErrLineDataMissing = errors.New("line rendering data unavailable")
)

// Snapshot is one render tick's view of the engine. It is never mutated after
// construction; slice accessors return copies.
//
// Primary scroll values run across stacked lines (the engine's scrollTop);
// secondary values run along the text (scrollLeft).
type Snapshot struct {
	// First and Last bound the visible lines, inclusive and 1-based.
	First int
	Last  int

	ScrollPrimary     float64
	ScrollSecondary   float64
	ExtentPrimary     float64
	ExtentSecondary   float64
	ViewportPrimary   float64
	ViewportSecondary float64

	LineHeight float64
	LineCount  int

	offsets     []float64
	lines       []LineData
	modelLines  []int
	cursors     []Position
	selections  []Range
	decorations []Decoration
}

// Capture copies the engine's current state into a new Snapshot.
func Capture(src Source) (Snapshot, error) {
	vd := src.ViewportData()
	if vd.LineCount == 0 {
		return Snapshot{LineHeight: vd.LineHeight}, nil
	}
	if vd.StartLine < 1 || vd.EndLine < vd.StartLine {
		return Snapshot{}, fmt.Errorf("%w: [%d, %d]", ErrInvalidRange, vd.StartLine, vd.EndLine)
	}
	count := vd.EndLine - vd.StartLine + 1
	if len(vd.RelativeOffsets) != count {
		return Snapshot{}, fmt.Errorf("%w: %d offsets for %d lines", ErrOffsetsMismatch, len(vd.RelativeOffsets), count)
	}

	s := Snapshot{
		First:             vd.StartLine,
		Last:              vd.EndLine,
		ScrollPrimary:     vd.ScrollTop,
		ScrollSecondary:   vd.ScrollLeft,
		ExtentPrimary:     vd.ScrollHeight,
		ExtentSecondary:   vd.ScrollWidth,
		ViewportPrimary:   vd.ViewportHeight,
		ViewportSecondary: vd.ViewportWidth,
		LineHeight:        vd.LineHeight,
		LineCount:         vd.LineCount,
		offsets:           append([]float64(nil), vd.RelativeOffsets...),
		lines:             make([]LineData, count),
		modelLines:        make([]int, count),
	}
	for i := range count {
		line := vd.StartLine + i
		d, err := src.GetLineRenderingData(line)
		if err != nil {
			return Snapshot{}, fmt.Errorf("%w: line %d: %w", ErrLineDataMissing, line, err)
		}
		s.lines[i] = d.clone()
		s.modelLines[i] = src.ViewToModel(Position{Line: line, Column: 1}).Line
	}

	// Cursor and range state arrives in model positions; painters work in
	// view positions.
	if dec, ok := src.(Decorated); ok {
		for _, c := range dec.Cursors() {
			s.cursors = append(s.cursors, src.ModelToView(c))
		}
		for _, r := range dec.Selections() {
			s.selections = append(s.selections, toView(src, r))
		}
		for _, d := range dec.Decorations() {
			s.decorations = append(s.decorations, Decoration{Range: toView(src, d.Range), Class: d.Class})
		}
	}
	return s, nil
}

func toView(src Source, r Range) Range {
	return Range{Start: src.ModelToView(r.Start), End: src.ModelToView(r.End)}
}

// IsEmpty reports whether the snapshot has no visible lines.
func (s Snapshot) IsEmpty() bool {
	return len(s.lines) == 0
}

// VisibleCount returns the number of visible lines.
func (s Snapshot) VisibleCount() int {
	return len(s.lines)
}

// Contains reports whether a line is inside the visible range.
func (s Snapshot) Contains(line int) bool {
	return !s.IsEmpty() && line >= s.First && line <= s.Last
}

// Offset returns the stacking offset of a visible line from the viewport origin.
func (s Snapshot) Offset(line int) (float64, bool) {
	if !s.Contains(line) {
		return 0, false
	}
	return s.offsets[line-s.First], true
}

// Offsets returns a copy of the per-line offsets.
func (s Snapshot) Offsets() []float64 {
	return append([]float64(nil), s.offsets...)
}

// Line returns a copy of a visible line's rendering data.
func (s Snapshot) Line(line int) (LineData, bool) {
	if !s.Contains(line) {
		return LineData{}, false
	}
	return s.lines[line-s.First].clone(), true
}

// ModelLine returns the model line number a visible view line belongs to.
func (s Snapshot) ModelLine(line int) (int, bool) {
	if !s.Contains(line) {
		return 0, false
	}
	return s.modelLines[line-s.First], true
}

// LineLength returns the length of a visible line in UTF-16 code units.
func (s Snapshot) LineLength(line int) (int, bool) {
	if !s.Contains(line) {
		return 0, false
	}
	return UTF16Len(s.lines[line-s.First].Content), true
}

// Cursors returns a copy of the cursor positions. The first is the primary.
func (s Snapshot) Cursors() []Position {
	return append([]Position(nil), s.cursors...)
}

// Selections returns a copy of the selections.
func (s Snapshot) Selections() []Range {
	return append([]Range(nil), s.selections...)
}

// Decorations returns a copy of the decorations.
func (s Snapshot) Decorations() []Decoration {
	return append([]Decoration(nil), s.decorations...)
}

// MaxScrollPrimary returns the largest valid primary scroll offset.
func (s Snapshot) MaxScrollPrimary() float64 {
	return max(0, s.ExtentPrimary-s.ViewportPrimary)
}

// MaxScrollSecondary returns the largest valid secondary scroll offset.
func (s Snapshot) MaxScrollSecondary() float64 {
	return max(0, s.ExtentSecondary-s.ViewportSecondary)
}

// UTF16Len returns the length of s in UTF-16 code units.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += max(1, utf16.RuneLen(r))
	}
	return n
}
