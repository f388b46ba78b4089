// Package paint draws a view frame into a cell surface.
//
// Every painter is a function of one read-only Context: the snapshot, the
// scroll state, the layout and the theme. Nothing is cached between frames,
// so a bad frame is repaired by the next one.
package paint

import (
	"fmt"

	"github.com/dshills/tateview/internal/logging"
	"github.com/dshills/tateview/internal/renderer/coords"
	"github.com/dshills/tateview/internal/renderer/minimap"
	"github.com/dshills/tateview/internal/renderer/orientation"
	"github.com/dshills/tateview/internal/renderer/scroll"
	"github.com/dshills/tateview/internal/renderer/snapshot"
)

// LineSource supplies line data beyond the visible range, for the minimap.
type LineSource interface {
	GetLineRenderingData(line int) (snapshot.LineData, error)
}

// Options toggle optional visuals.
type Options struct {
	LineNumbers  LineNumberMode
	IndentGuides bool
	TabSize      int
}

// Context is everything a frame is painted from.
type Context struct {
	Mode      orientation.Mode
	Roles     orientation.AxisRoles
	Keys      orientation.StyleKeys
	Layout    Layout
	Metrics   Metrics
	Snapshot  snapshot.Snapshot
	Scroll    scroll.State
	Converter coords.Converter
	Minimap   minimap.Minimap
	Theme     *Theme
	Options   Options
	Lines     LineSource
	Log       *logging.Logger
}

// String summarizes the context for debug logs.
func (ctx *Context) String() string {
	return fmt.Sprintf("%s lines=%d-%d scroll=%.0f/%.0f advance=%s(%s) stack=%s(%s)",
		ctx.Mode, ctx.Snapshot.First, ctx.Snapshot.Last, ctx.Scroll.Primary, ctx.Scroll.Secondary,
		ctx.Keys.Left, ctx.Keys.Width, ctx.Keys.Top, ctx.Keys.Height)
}

// Painter draws one component of the view.
type Painter struct {
	Name  string
	Paint func(ctx *Context, c *Canvas)
}

// Painters is the default component order: background, decorations and
// selections under the text, then guides, gutter, cursors and chrome.
var Painters = []Painter{
	{"background", PaintBackground},
	{"decorations", PaintDecorations},
	{"selections", PaintSelections},
	{"lines", PaintLines},
	{"indent-guides", PaintIndentGuides},
	{"line-numbers", PaintLineNumbers},
	{"cursors", PaintCursors},
	{"scrollbars", PaintScrollbars},
	{"minimap", PaintMinimap},
}

// Result reports what a frame produced.
type Result struct {
	Cursor  CursorCell
	Omitted int
}

// Render paints a frame. A painter that panics loses only its own visuals;
// the rest of the frame is still drawn.
func Render(ctx *Context, s Surface, painters ...Painter) Result {
	if len(painters) == 0 {
		painters = Painters
	}
	c := newCanvas(s, ctx.Log)
	for _, p := range painters {
		runPainter(ctx, c, p)
	}
	return Result{Cursor: c.cursor, Omitted: c.omitted}
}

func runPainter(ctx *Context, c *Canvas, p Painter) {
	restore := c.Clip(c.bounds)
	defer restore()
	defer func() {
		if r := recover(); r != nil {
			c.Omit(p.Name, fmt.Errorf("panic: %v", r))
		}
	}()
	p.Paint(ctx, c)
}

// PaintBackground fills every panel with its base style.
func PaintBackground(ctx *Context, c *Canvas) {
	l := ctx.Layout
	c.Fill(l.Cells(l.Gutter), ctx.Theme.Base)
	c.Fill(l.Cells(l.Content), ctx.Theme.Base)
	c.Fill(l.Cells(l.Minimap), ctx.Theme.Minimap)
	c.Fill(l.Cells(l.PrimaryBar), ctx.Theme.ScrollbarTrack)
	c.Fill(l.Cells(l.SecondaryBar), ctx.Theme.ScrollbarTrack)
}

// contentRect returns the axis rectangle of an advance span on a line band,
// placed in the content panel.
func (ctx *Context) contentRect(a0, a1, s0, s1 float64) orientation.AxisRect {
	l := ctx.Layout
	return orientation.AxisRect{
		A0: l.Content.A0 + a0, A1: l.Content.A0 + a1,
		S0: l.Content.S0 + s0, S1: l.Content.S0 + s1,
	}
}
