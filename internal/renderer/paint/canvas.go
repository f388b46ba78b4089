package paint

import (
	"github.com/dshills/tateview/internal/logging"
	"github.com/dshills/tateview/internal/renderer/core"
)

// Surface is the cell grid a frame is painted into.
type Surface interface {
	Size() (width, height int)
	SetCell(x, y int, cell core.Cell)
	GetCell(x, y int) core.Cell
}

// CursorCell is where the display cursor should be shown.
type CursorCell struct {
	X, Y    int
	Visible bool
}

// Canvas wraps a surface for one frame. Writes are clipped to the surface
// and to the current panel clip.
type Canvas struct {
	s       Surface
	bounds  core.ScreenRect
	clip    core.ScreenRect
	log     *logging.Logger
	omitted int
	cursor  CursorCell
}

func newCanvas(s Surface, log *logging.Logger) *Canvas {
	w, h := s.Size()
	bounds := core.ScreenRect{Right: w, Bottom: h}
	if log == nil {
		log = logging.Null
	}
	return &Canvas{s: s, bounds: bounds, clip: bounds, log: log}
}

// Clip restricts writes to r until the returned function restores the
// previous clip.
func (c *Canvas) Clip(r core.ScreenRect) (restore func()) {
	prev := c.clip
	c.clip = prev.Intersection(r)
	return func() { c.clip = prev }
}

// Omit records a visual dropped from this frame.
func (c *Canvas) Omit(visual string, err error) {
	c.omitted++
	c.log.Debug("visual omitted", "visual", visual, "error", err)
}

// Omitted returns how many visuals were dropped.
func (c *Canvas) Omitted() int {
	return c.omitted
}

func (c *Canvas) writable(x, y int) bool {
	return c.clip.Contains(x, y)
}

// Set writes a cell.
func (c *Canvas) Set(x, y int, cell core.Cell) {
	if c.writable(x, y) {
		c.s.SetCell(x, y, cell)
	}
}

// Get reads a cell.
func (c *Canvas) Get(x, y int) core.Cell {
	return c.s.GetCell(x, y)
}

// Fill writes blank cells of the given style over r.
func (c *Canvas) Fill(r core.ScreenRect, style core.Style) {
	r = r.Intersection(c.clip)
	blank := core.Cell{Rune: ' ', Width: 1, Style: style}
	for y := r.Top; y < r.Bottom; y++ {
		for x := r.Left; x < r.Right; x++ {
			c.s.SetCell(x, y, blank)
		}
	}
}

// Tint layers style over the cells of r, keeping their glyphs.
func (c *Canvas) Tint(r core.ScreenRect, style core.Style) {
	r = r.Intersection(c.clip)
	for y := r.Top; y < r.Bottom; y++ {
		for x := r.Left; x < r.Right; x++ {
			cell := c.s.GetCell(x, y)
			cell.Style = cell.Style.Merge(style)
			c.s.SetCell(x, y, cell)
		}
	}
}

// Glyph draws one grapheme cluster into the cells of r. The cluster's base
// rune goes in the first cell; a wide rune claims the next one; any other
// cell of r is blanked. Styles are layered over what is already there.
func (c *Canvas) Glyph(r core.ScreenRect, base rune, combining string, width int, style core.Style) {
	if r.IsEmpty() {
		return
	}
	for y := r.Top; y < r.Bottom; y++ {
		for x := r.Left; x < r.Right; x++ {
			if !c.writable(x, y) {
				continue
			}
			cell := c.s.GetCell(x, y)
			st := cell.Style.Merge(style)
			switch {
			case y == r.Top && x == r.Left:
				cell = core.Cell{Rune: base, Combining: combining, Width: width, Style: st}
			case y == r.Top && x == r.Left+1 && width == 2:
				cell = core.ContinuationCell().WithStyle(st)
			default:
				cell = core.Cell{Rune: ' ', Width: 1, Style: st}
			}
			c.s.SetCell(x, y, cell)
		}
	}
}

// Text writes s one rune per cell from the low corner of r, along x when
// alongX is set and along y otherwise. Text is never mirrored, so labels
// read the same in every mode.
func (c *Canvas) Text(r core.ScreenRect, s string, style core.Style, alongX bool) {
	x, y := r.Left, r.Top
	for _, ch := range s {
		if !r.Contains(x, y) {
			return
		}
		if c.writable(x, y) {
			cell := c.s.GetCell(x, y)
			c.s.SetCell(x, y, core.Cell{Rune: ch, Width: 1, Style: cell.Style.Merge(style)})
		}
		if alongX {
			x++
		} else {
			y++
		}
	}
}

// ShowCursor records the display cursor position if it is inside the clip.
func (c *Canvas) ShowCursor(x, y int) {
	if c.writable(x, y) {
		c.cursor = CursorCell{X: x, Y: y, Visible: true}
	}
}

func rectAt(x, y int) core.ScreenRect {
	return core.ScreenRect{Left: x, Top: y, Right: x + 1, Bottom: y + 1}
}
