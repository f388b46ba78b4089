// Package fragment splits document ranges into per-line pieces positioned
// from the snapshot's line offsets. Selections and decorations share it.
package fragment

import (
	"sort"

	"github.com/dshills/tateview/internal/renderer/snapshot"
)

// PixelFragment is one visible line's slice of a range. Columns are 1-based;
// EndColumn is exclusive.
type PixelFragment struct {
	Line        int
	StartColumn int
	EndColumn   int
	// Offset and Size place the fragment along the stacking axis.
	Offset float64
	Size   float64

	// Continues is set when the range runs on past this line's break.
	Continues bool
	// Primary marks fragments of the primary selection.
	Primary bool
	// Class is the decoration class, empty for selections.
	Class string
}

// Width returns the fragment's length in columns.
func (f PixelFragment) Width() int {
	return max(0, f.EndColumn-f.StartColumn)
}

// Fragment splits r into one fragment per visible line it touches.
//
// A single-line range yields [start, end]. A multi-line range yields
// [start, len+1] on its first line, [1, len+1] on interior lines and
// [1, end] on its last line. Lines outside the snapshot are dropped, so a
// range whose start was clipped begins with an interior fragment. An empty
// range yields nothing.
func Fragment(r snapshot.Range, snap snapshot.Snapshot) []PixelFragment {
	if r.IsEmpty() || snap.IsEmpty() {
		return nil
	}
	n := r.Normalize()
	first := max(n.Start.Line, snap.First)
	last := min(n.End.Line, snap.Last)
	if first > last {
		return nil
	}

	out := make([]PixelFragment, 0, last-first+1)
	for line := first; line <= last; line++ {
		length, _ := snap.LineLength(line)
		offset, _ := snap.Offset(line)

		start, end := 1, length+1
		if line == n.Start.Line {
			start = n.Start.Column
		}
		if line == n.End.Line {
			end = n.End.Column
		}
		out = append(out, PixelFragment{
			Line:        line,
			StartColumn: start,
			EndColumn:   end,
			Offset:      offset,
			Size:        snap.LineHeight,
			Continues:   line != n.End.Line,
		})
	}
	return out
}

// Selections fragments the snapshot's selections. The first selection is the
// primary one.
func Selections(snap snapshot.Snapshot) []PixelFragment {
	sels := snap.Selections()
	var out []PixelFragment
	for i, sel := range sels {
		for _, f := range Fragment(sel, snap) {
			f.Primary = i == 0
			out = append(out, f)
		}
	}
	return out
}

// Decorations fragments decorations, tagging each fragment with its class.
func Decorations(decos []snapshot.Decoration, snap snapshot.Snapshot) []PixelFragment {
	var out []PixelFragment
	for _, d := range decos {
		for _, f := range Fragment(d.Range, snap) {
			f.Class = d.Class
			out = append(out, f)
		}
	}
	return out
}

// MergeOverlapping normalizes ranges and merges those that overlap or touch.
// Empty ranges are dropped. The result is sorted by start position.
func MergeOverlapping(ranges []snapshot.Range) []snapshot.Range {
	norm := make([]snapshot.Range, 0, len(ranges))
	for _, r := range ranges {
		if !r.IsEmpty() {
			norm = append(norm, r.Normalize())
		}
	}
	if len(norm) < 2 {
		return norm
	}

	sort.Slice(norm, func(i, j int) bool {
		return norm[i].Start.Before(norm[j].Start)
	})

	merged := []snapshot.Range{norm[0]}
	for _, r := range norm[1:] {
		last := &merged[len(merged)-1]
		if !last.End.Before(r.Start) {
			if last.End.Before(r.End) {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}
