// Package virtual computes which items of a large uniform list must be
// materialized for the current scroll offset.
package virtual

import (
	"math"

	"github.com/dshills/tateview/internal/renderer/orientation"
)

// DefaultOverscan is the number of items rendered past each viewport edge.
const DefaultOverscan = 5

// Stack is the direction items are laid out in.
type Stack uint8

const (
	// StackForward places item 0 at offset 0 and grows toward increasing coordinates.
	StackForward Stack = iota
	// StackReverse places item 0 at the far end and grows toward decreasing
	// coordinates, as lines do in right-to-left vertical writing.
	StackReverse
)

// StackFor returns the stacking direction for axis roles. Lines stack along
// the secondary axis, so its sign decides.
func StackFor(r orientation.AxisRoles) Stack {
	if r.SecondarySignPositive {
		return StackForward
	}
	return StackReverse
}

// Params are the inputs of Compute.
type Params struct {
	ItemCount    int
	ItemSize     float64
	ScrollOffset float64
	ViewportSize float64
	Overscan     int
	PaddingEnd   float64
	Stack        Stack
}

// Window is the materialized slice of a list. Indices are the only stable
// handle; a Window holds no references to items.
type Window struct {
	StartIndex  int
	EndIndex    int // inclusive; -1 when empty
	TotalExtent float64
	// ItemOffsets holds the physical offset of each item in
	// [StartIndex, EndIndex] along the stacking axis.
	ItemOffsets []float64
}

// Len returns the number of items in the window.
func (w Window) Len() int {
	if w.EndIndex < w.StartIndex {
		return 0
	}
	return w.EndIndex - w.StartIndex + 1
}

// Contains reports whether index is inside the window.
func (w Window) Contains(index int) bool {
	return index >= w.StartIndex && index <= w.EndIndex
}

// Offset returns the physical offset of a windowed item.
func (w Window) Offset(index int) (float64, bool) {
	if !w.Contains(index) {
		return 0, false
	}
	return w.ItemOffsets[index-w.StartIndex], true
}

// Compute returns the window of items intersecting
// [scroll - overscan*size, scroll + viewport + overscan*size], clamped to
// [0, count). It is a pure function of p.
func Compute(p Params) Window {
	total := float64(max(0, p.ItemCount))*p.ItemSize + p.PaddingEnd
	if p.ItemCount <= 0 || p.ItemSize <= 0 {
		return Window{StartIndex: 0, EndIndex: -1, TotalExtent: max(0, total)}
	}
	overscan := max(0, p.Overscan)

	lo := p.ScrollOffset - float64(overscan)*p.ItemSize
	hi := p.ScrollOffset + max(0, p.ViewportSize) + float64(overscan)*p.ItemSize

	start := clamp(int(math.Floor(lo/p.ItemSize)), 0, p.ItemCount-1)
	end := clamp(int(math.Ceil(hi/p.ItemSize))-1, 0, p.ItemCount-1)
	if end < start {
		end = start
	}

	w := Window{
		StartIndex:  start,
		EndIndex:    end,
		TotalExtent: total,
		ItemOffsets: make([]float64, end-start+1),
	}
	for i := start; i <= end; i++ {
		w.ItemOffsets[i-start] = ItemOffset(i, p.ItemSize, total, p.Stack)
	}
	return w
}

// ItemOffset returns the physical offset of item i in a list of total extent.
func ItemOffset(i int, size, total float64, s Stack) float64 {
	start := float64(i) * size
	if s == StackReverse {
		return total - start - size
	}
	return start
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
