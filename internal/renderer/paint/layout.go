package paint

import (
	"math"

	"github.com/dshills/tateview/internal/renderer/core"
	"github.com/dshills/tateview/internal/renderer/orientation"
	"github.com/dshills/tateview/internal/renderer/scroll"
	"github.com/dshills/tateview/internal/renderer/snapshot"
)

// Metrics are the font metrics the text engine lays lines out with.
type Metrics struct {
	// CharWidth is the advance of one cell along a line.
	CharWidth float64
	// LineHeight is a line's thickness across the stacking axis.
	LineHeight float64
	// Uniform is set when every glyph takes one cell along the line.
	Uniform bool
}

// MetricsFor derives metrics from the cell grid. Horizontal lines are one
// row thick with one column per narrow glyph. Vertical lines are two
// columns thick, wide enough for an East Asian glyph, with one row per glyph.
func MetricsFor(roles orientation.AxisRoles, grid core.Grid) Metrics {
	if roles.PrimaryIsHorizontal {
		return Metrics{CharWidth: grid.CellWidth, LineHeight: grid.CellHeight}
	}
	return Metrics{CharWidth: grid.CellHeight, LineHeight: 2 * grid.CellWidth, Uniform: true}
}

// Sizes are the panel thicknesses along the advance axis, in cells.
type Sizes struct {
	GutterCells    int
	MinimapCells   int
	ScrollbarCells int
}

// Region identifies the panel under a point.
type Region uint8

const (
	RegionNone Region = iota
	RegionGutter
	RegionContent
	RegionMinimap
	RegionPrimaryBar
	RegionSecondaryBar
)

var regionNames = [...]string{"none", "gutter", "content", "minimap", "primary-scrollbar", "secondary-scrollbar"}

func (r Region) String() string {
	if int(r) < len(regionNames) {
		return regionNames[r]
	}
	return "none"
}

// Layout places the view's panels. Panels are rectangles in axis space over
// the whole view; Roles maps them onto the surface, so a right-to-left mode
// mirrors the whole arrangement without any panel knowing.
//
// Along the advance axis the order is gutter, content, minimap and the
// primary scrollbar. The secondary scrollbar closes the stacking axis under
// the content.
type Layout struct {
	Roles  orientation.AxisRoles
	Grid   core.Grid
	Extent orientation.Extent

	Gutter       orientation.AxisRect
	Content      orientation.AxisRect
	Minimap      orientation.AxisRect
	PrimaryBar   orientation.AxisRect
	SecondaryBar orientation.AxisRect
}

// MinContentCells is the content width panels give way to.
const MinContentCells = 4

// NewLayout lays out a surface of cols x rows cells. Panels that would leave
// the content narrower than MinContentCells give way: the minimap shrinks
// first, then the gutter.
func NewLayout(roles orientation.AxisRoles, grid core.Grid, cols, rows int, sizes Sizes) Layout {
	extent := orientation.Extent{
		Width:  float64(max(0, cols)) * grid.CellWidth,
		Height: float64(max(0, rows)) * grid.CellHeight,
	}
	l := Layout{Roles: roles, Grid: grid, Extent: extent}

	ac, sc := l.AdvanceCell(), l.StackCell()
	A, S := roles.Primary(extent), roles.Secondary(extent)

	bar := min(float64(sizes.ScrollbarCells)*ac, A)
	room := A - bar
	spare := max(0, room-MinContentCells*ac)
	gutter := min(float64(sizes.GutterCells)*ac, spare)
	mm := min(float64(sizes.MinimapCells)*ac, spare-gutter)
	contentEnd := room - mm
	stackEnd := max(0, S-float64(sizes.ScrollbarCells)*sc)

	l.Gutter = orientation.AxisRect{A0: 0, A1: gutter, S0: 0, S1: stackEnd}
	l.Content = orientation.AxisRect{A0: gutter, A1: contentEnd, S0: 0, S1: stackEnd}
	l.Minimap = orientation.AxisRect{A0: contentEnd, A1: room, S0: 0, S1: stackEnd}
	l.PrimaryBar = orientation.AxisRect{A0: room, A1: A, S0: 0, S1: stackEnd}
	l.SecondaryBar = orientation.AxisRect{A0: gutter, A1: contentEnd, S0: stackEnd, S1: S}
	return l
}

// AdvanceCell is the size of one cell along the advance axis.
func (l Layout) AdvanceCell() float64 {
	if l.Roles.PrimaryIsHorizontal {
		return l.Grid.CellWidth
	}
	return l.Grid.CellHeight
}

// StackCell is the size of one cell along the stacking axis.
func (l Layout) StackCell() float64 {
	if l.Roles.PrimaryIsHorizontal {
		return l.Grid.CellHeight
	}
	return l.Grid.CellWidth
}

// ContentExtent returns the content viewport along the advance and
// stacking axes. These are the engine's viewport width and height.
func (l Layout) ContentExtent() (advance, stack float64) {
	return l.Content.A1 - l.Content.A0, l.Content.S1 - l.Content.S0
}

// Physical maps an axis rectangle onto the surface.
func (l Layout) Physical(r orientation.AxisRect) core.PixelRect {
	x0, y0, x1, y1 := l.Roles.Physical(r, l.Extent)
	return core.PixelRect{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// Cells returns the cells covered by an axis rectangle.
func (l Layout) Cells(r orientation.AxisRect) core.ScreenRect {
	return l.Grid.Cells(l.Physical(r))
}

// Axis converts a surface point to view axis space.
func (l Layout) Axis(p orientation.Point) orientation.AxisPoint {
	return l.Roles.ToAxis(p, l.Extent)
}

// CellRect returns the axis rectangle of one surface cell.
func (l Layout) CellRect(col, row int) orientation.AxisRect {
	px := l.Grid.Pixels(core.ScreenRect{Left: col, Top: row, Right: col + 1, Bottom: row + 1})
	a := l.Axis(orientation.Point{X: px.X0, Y: px.Y0})
	b := l.Axis(orientation.Point{X: px.X1, Y: px.Y1})
	return orientation.AxisRect{
		A0: math.Min(a.Advance, b.Advance), A1: math.Max(a.Advance, b.Advance),
		S0: math.Min(a.Stack, b.Stack), S1: math.Max(a.Stack, b.Stack),
	}
}

// CellCenter returns the surface point at the middle of a cell.
func (l Layout) CellCenter(col, row int) orientation.Point {
	return orientation.Point{
		X: (float64(col) + 0.5) * l.Grid.CellWidth,
		Y: (float64(row) + 0.5) * l.Grid.CellHeight,
	}
}

// ContentPoint returns the content-local axis point used to hit-test a
// cell: the cell's leading edge along the line and its middle across it.
func (l Layout) ContentPoint(col, row int) orientation.AxisPoint {
	r := l.CellRect(col, row)
	return orientation.AxisPoint{
		Advance: r.A0 - l.Content.A0,
		Stack:   (r.S0+r.S1)/2 - l.Content.S0,
	}
}

// Hit returns the panel under a surface point.
func (l Layout) Hit(p orientation.Point) Region {
	a := l.Axis(p)
	for _, c := range []struct {
		r      orientation.AxisRect
		region Region
	}{
		{l.Content, RegionContent},
		{l.Gutter, RegionGutter},
		{l.Minimap, RegionMinimap},
		{l.PrimaryBar, RegionPrimaryBar},
		{l.SecondaryBar, RegionSecondaryBar},
	} {
		if inside(c.r, a) {
			return c.region
		}
	}
	return RegionNone
}

// Local returns a point relative to a panel's axis origin.
func (l Layout) Local(r orientation.AxisRect, p orientation.Point) orientation.AxisPoint {
	a := l.Axis(p)
	return orientation.AxisPoint{Advance: a.Advance - r.A0, Stack: a.Stack - r.S0}
}

// Bar is a scrollbar placed on the surface. Track coordinates are measured
// along the physical axis from the bar's low edge.
type Bar struct {
	Rect   core.PixelRect
	AlongX bool
	Track  scroll.Track
}

// Empty reports whether the bar has no area.
func (b Bar) Empty() bool {
	return b.Rect.Width() <= 0 || b.Rect.Height() <= 0
}

// Project returns the track coordinate of a surface point.
func (b Bar) Project(p orientation.Point) float64 {
	if b.AlongX {
		return p.X - b.Rect.X0
	}
	return p.Y - b.Rect.Y0
}

// Slider returns the slider rectangle for a scroll value.
func (b Bar) Slider(value float64) core.PixelRect {
	off := b.Track.SliderOffset(value)
	size := b.Track.SliderSize()
	r := b.Rect
	if b.AlongX {
		r.X0 += off
		r.X1 = r.X0 + size
	} else {
		r.Y0 += off
		r.Y1 = r.Y0 + size
	}
	return r
}

// PrimaryScrollbar returns the bar that scrolls lines. Its track runs along
// the stacking axis and reflects when lines stack toward lower coordinates.
func (l Layout) PrimaryScrollbar(snap snapshot.Snapshot) Bar {
	rect := l.Physical(l.PrimaryBar)
	alongX := l.Roles.SecondaryIsHorizontal()
	return Bar{
		Rect:   rect,
		AlongX: alongX,
		Track: scroll.Track{
			TrackSize:    trackSize(rect, alongX),
			ScrollExtent: snap.ExtentPrimary,
			ViewportSize: snap.ViewportPrimary,
			Inverted:     !l.Roles.SecondarySignPositive,
		},
	}
}

// SecondaryScrollbar returns the bar that scrolls along lines. It reflects
// when characters advance toward lower coordinates.
func (l Layout) SecondaryScrollbar(snap snapshot.Snapshot) Bar {
	rect := l.Physical(l.SecondaryBar)
	alongX := l.Roles.PrimaryIsHorizontal
	return Bar{
		Rect:   rect,
		AlongX: alongX,
		Track: scroll.Track{
			TrackSize:    trackSize(rect, alongX),
			ScrollExtent: snap.ExtentSecondary,
			ViewportSize: snap.ViewportSecondary,
			Inverted:     !l.Roles.PrimarySignPositive,
		},
	}
}

func trackSize(r core.PixelRect, alongX bool) float64 {
	if alongX {
		return r.Width()
	}
	return r.Height()
}

func inside(r orientation.AxisRect, a orientation.AxisPoint) bool {
	return a.Advance >= r.A0 && a.Advance < r.A1 && a.Stack >= r.S0 && a.Stack < r.S1
}
