// Package coords converts between document positions and viewport pixels.
//
// All pixel values here are in axis space: Advance runs along the text of a
// line and Stack across lines. The orientation package maps them to physical
// surface coordinates.
package coords

import (
	"errors"
	"fmt"

	"github.com/dshills/tateview/internal/renderer/orientation"
	"github.com/dshills/tateview/internal/renderer/snapshot"
)

// Errors returned by coordinate conversion.
var (
	ErrOutOfViewport          = errors.New("position outside viewport")
	ErrMeasurementUnavailable = errors.New("measurement unavailable")
)

// OutOfViewportError reports a lookup for a line outside the visible range.
type OutOfViewportError struct {
	Line        int
	First, Last int
}

func (e *OutOfViewportError) Error() string {
	return fmt.Sprintf("line %d outside viewport [%d, %d]", e.Line, e.First, e.Last)
}

// Is lets errors.Is match ErrOutOfViewport.
func (e *OutOfViewportError) Is(target error) bool {
	return target == ErrOutOfViewport
}

// LineOffset returns the precomputed stacking offset of pos's line.
// Callers iterate only over the snapshot's visible range; anything else is
// an *OutOfViewportError.
func LineOffset(pos snapshot.Position, snap snapshot.Snapshot) (float64, error) {
	off, ok := snap.Offset(pos.Line)
	if !ok {
		return 0, &OutOfViewportError{Line: pos.Line, First: snap.First, Last: snap.Last}
	}
	return off, nil
}

// Converter maps document positions to axis-space pixels and back.
type Converter struct {
	Measurer  Measurer
	CharWidth float64
}

// Element builds the rendered element of a visible line, positioned for the
// snapshot's secondary scroll offset.
func (c Converter) Element(line int, snap snapshot.Snapshot) (LineElement, error) {
	data, ok := snap.Line(line)
	if !ok {
		return LineElement{}, &OutOfViewportError{Line: line, First: snap.First, Last: snap.Last}
	}
	elem := NewLineElement(line, data, -snap.ScrollSecondary)
	if p, ok := c.Measurer.(Preparer); ok {
		elem = p.Prepare(elem)
	}
	return elem, nil
}

// ModelToPixel returns the axis point of pos's leading edge.
func (c Converter) ModelToPixel(pos snapshot.Position, snap snapshot.Snapshot) (orientation.AxisPoint, error) {
	stack, err := LineOffset(pos, snap)
	if err != nil {
		return orientation.AxisPoint{}, err
	}
	elem, err := c.Element(pos.Line, snap)
	if err != nil {
		return orientation.AxisPoint{}, err
	}
	adv, err := c.Advance(elem, pos.Column)
	if err != nil {
		return orientation.AxisPoint{}, err
	}
	return orientation.AxisPoint{Advance: adv, Stack: stack}, nil
}

// Advance returns the advance coordinate of column's leading edge. Columns
// past the end of the line clamp to the end.
func (c Converter) Advance(elem LineElement, column int) (float64, error) {
	if len(elem.Nodes) == 0 || column <= 1 {
		return elem.Origin, nil
	}
	offset := min(column-1, elem.Len())
	for i, node := range elem.Nodes {
		if offset <= node.Offset+node.Len {
			sp, err := c.Measurer.Measure(elem, i, 0, offset-node.Offset)
			if err != nil {
				return 0, err
			}
			return sp.End, nil
		}
	}
	return elem.Origin, nil
}

// PixelToPosition hit-tests an axis point against the snapshot. Points
// beyond the first or last visible line resolve to that line.
func (c Converter) PixelToPosition(p orientation.AxisPoint, snap snapshot.Snapshot) (snapshot.Position, error) {
	if snap.IsEmpty() {
		return snapshot.Position{}, snapshot.ErrNoSnapshot
	}
	line := LineAt(p.Stack, snap)
	elem, err := c.Element(line, snap)
	if err != nil {
		return snapshot.Position{}, err
	}
	col, err := HitTest(elem, p.Advance, c.CharWidth, c.Measurer)
	return snapshot.Position{Line: line, Column: col}, err
}

// LineAt returns the visible line whose band along the stacking axis holds
// stack, clamped to the visible range.
func LineAt(stack float64, snap snapshot.Snapshot) int {
	line := snap.First
	for l := snap.First; l <= snap.Last; l++ {
		off, _ := snap.Offset(l)
		if stack < off {
			break
		}
		line = l
	}
	return line
}
