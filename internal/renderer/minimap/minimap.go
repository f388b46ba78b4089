// Package minimap computes the scaled overview of the whole document: its
// own virtualized line window and a slider mapped onto the scroll state.
package minimap

import (
	"math"
	"unicode"

	"github.com/dshills/tateview/internal/renderer/orientation"
	"github.com/dshills/tateview/internal/renderer/scroll"
	"github.com/dshills/tateview/internal/renderer/snapshot"
	"github.com/dshills/tateview/internal/renderer/virtual"
)

// DefaultScale is the minimap line height relative to the editor's.
const DefaultScale = 0.2

// Minimap is the minimap's fixed layout.
type Minimap struct {
	// Scale multiplies the engine line height.
	Scale float64
	// Size is the minimap viewport extent along the stacking axis.
	Size float64
	// Overscan is passed to the line window.
	Overscan int
}

// New returns a minimap with the given scale and viewport size.
func New(scale, size float64) Minimap {
	if scale <= 0 {
		scale = DefaultScale
	}
	return Minimap{Scale: scale, Size: size, Overscan: virtual.DefaultOverscan}
}

// Geometry is the minimap layout derived from one snapshot.
type Geometry struct {
	LineCount  int
	LineHeight float64
	PaddingEnd float64
	// InnerSize is the full scaled document extent including padding.
	InnerSize float64

	SliderSize   float64
	SliderOffset float64
	// Available is how far the slider can travel.
	Available float64
	// ScrollMax is the primary scroll value that puts the slider at the end
	// of its travel.
	ScrollMax float64
	// ScrollPrimary is the scroll value the geometry was derived for.
	ScrollPrimary float64
	// ListOffset scrolls the minimap's own line list.
	ListOffset float64

	size     float64
	overscan int
}

// Geometry derives the slider and list layout from a snapshot. An empty
// snapshot yields the zero Geometry.
func (m Minimap) Geometry(snap snapshot.Snapshot) Geometry {
	lh := snap.LineHeight
	if lh <= 0 || snap.LineCount <= 0 {
		return Geometry{}
	}
	mlh := lh * m.Scale
	viewportLines := snap.ViewportPrimary / lh
	extra := max(0, viewportLines-1)

	g := Geometry{
		LineCount:     snap.LineCount,
		LineHeight:    mlh,
		PaddingEnd:    mlh * extra,
		SliderSize:    mlh * math.Ceil(viewportLines),
		ScrollPrimary: snap.ScrollPrimary,
		size:          m.Size,
		overscan:      m.Overscan,
	}
	g.InnerSize = float64(snap.LineCount)*mlh + g.PaddingEnd
	g.Available = max(0, min(g.InnerSize, m.Size)-g.SliderSize)

	// scrollMax keeps one engine line height of slack against the viewport.
	g.ScrollMax = snap.ExtentPrimary - (snap.ViewportPrimary - lh)
	if g.ScrollMax > 0 {
		g.SliderOffset = clamp(snap.ScrollPrimary/g.ScrollMax*g.Available, 0, g.Available)
	}
	if snap.ExtentPrimary > 0 {
		g.ListOffset = max(0, snap.ScrollPrimary/snap.ExtentPrimary*g.InnerSize-g.SliderOffset)
	}
	return g
}

// Window returns the minimap's own virtualized line window.
func (g Geometry) Window(stack virtual.Stack) virtual.Window {
	return virtual.Compute(virtual.Params{
		ItemCount:    g.LineCount,
		ItemSize:     g.LineHeight,
		ScrollOffset: g.ListOffset,
		ViewportSize: g.size,
		Overscan:     g.overscan,
		PaddingEnd:   g.PaddingEnd,
		Stack:        stack,
	})
}

// ScrollForPointer maps a pointer at track coordinate p, measured from the
// minimap's start edge, to the scroll value centering the slider on it.
func (g Geometry) ScrollForPointer(p float64) float64 {
	if g.Available <= 0 || g.ScrollMax <= 0 {
		return 0
	}
	d := clamp(p-g.SliderSize/2, 0, g.Available)
	return d / g.Available * g.ScrollMax
}

// HitSlider reports whether track coordinate p falls on the slider.
func (g Geometry) HitSlider(p float64) bool {
	return p >= g.SliderOffset && p < g.SliderOffset+g.SliderSize
}

// LineAt returns the 1-based document line drawn at track coordinate p, or
// 0 when p is past the last line.
func (g Geometry) LineAt(p float64) int {
	if g.LineHeight <= 0 {
		return 0
	}
	idx := int(math.Floor((p + g.ListOffset) / g.LineHeight))
	if idx < 0 || idx >= g.LineCount {
		return 0
	}
	return idx + 1
}

// PointerMove builds the drag handler for a minimap gesture. The geometry is
// captured at drag start; project maps a surface point onto the track axis.
func PointerMove(g Geometry, project func(orientation.Point) float64, set func(float64)) scroll.MoveFunc {
	return func(p orientation.Point) {
		set(g.ScrollForPointer(project(p)))
	}
}

// Coverage returns the fraction of columns [from, to) of content that hold
// visible ink. Whitespace renders as blank space.
func Coverage(content string, from, to int) float64 {
	if to <= from {
		return 0
	}
	col, ink := 0, 0
	for _, r := range content {
		if col >= to {
			break
		}
		if col >= from && !unicode.IsSpace(r) {
			ink++
		}
		col++
	}
	return float64(ink) / float64(to-from)
}

var shades = []rune{' ', '░', '▒', '▓', '█'}

// Shade maps a coverage fraction to a block glyph.
func Shade(c float64) rune {
	if c <= 0 {
		return shades[0]
	}
	i := int(math.Ceil(c * float64(len(shades)-1)))
	return shades[min(i, len(shades)-1)]
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
