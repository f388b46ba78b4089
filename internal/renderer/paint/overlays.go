package paint

import (
	"github.com/dshills/tateview/internal/renderer/core"
	"github.com/dshills/tateview/internal/renderer/fragment"
)

// PaintSelections tints every visible selection fragment.
func PaintSelections(ctx *Context, c *Canvas) {
	for _, f := range fragment.Selections(ctx.Snapshot) {
		style := ctx.Theme.SecondarySelection
		if f.Primary {
			style = ctx.Theme.Selection
		}
		paintFragment(ctx, c, f, style, "selection")
	}
}

// PaintDecorations tints every visible decoration fragment by its class.
func PaintDecorations(ctx *Context, c *Canvas) {
	snap := ctx.Snapshot
	for _, f := range fragment.Decorations(snap.Decorations(), snap) {
		paintFragment(ctx, c, f, ctx.Theme.DecorationStyle(f.Class), "decoration")
	}
}

// paintFragment tints the advance span between a fragment's columns. An
// empty span on a line whose break the range covers still gets one cell, so
// a selected blank line stays visible. Other empty spans draw nothing.
func paintFragment(ctx *Context, c *Canvas, f fragment.PixelFragment, style core.Style, visual string) {
	l := ctx.Layout
	defer c.Clip(l.Cells(l.Content))()

	elem, err := ctx.Converter.Element(f.Line, ctx.Snapshot)
	if err != nil {
		c.Omit(visual, err)
		return
	}
	a0, err := ctx.Converter.Advance(elem, f.StartColumn)
	if err != nil {
		c.Omit(visual, err)
		return
	}
	a1, err := ctx.Converter.Advance(elem, f.EndColumn)
	if err != nil {
		c.Omit(visual, err)
		return
	}
	if a1 <= a0 {
		if !f.Continues {
			return
		}
		a1 = a0 + ctx.Metrics.CharWidth
	}
	c.Tint(l.Cells(ctx.contentRect(a0, a1, f.Offset, f.Offset+f.Size)), style)
}

// PaintCursors places the display cursor on the primary cursor and draws
// the others in reverse video. Cursors off screen are skipped.
func PaintCursors(ctx *Context, c *Canvas) {
	snap := ctx.Snapshot
	l := ctx.Layout
	defer c.Clip(l.Cells(l.Content))()

	for i, pos := range snap.Cursors() {
		if !snap.Contains(pos.Line) {
			continue
		}
		p, err := ctx.Converter.ModelToPixel(pos, snap)
		if err != nil {
			c.Omit("cursor", err)
			continue
		}
		r := l.Cells(ctx.contentRect(p.Advance, p.Advance+ctx.Metrics.CharWidth, p.Stack, p.Stack+ctx.Metrics.LineHeight))
		if r.IsEmpty() {
			continue
		}
		if i == 0 {
			c.ShowCursor(r.Left, r.Top)
			continue
		}
		c.Tint(rectAt(r.Left, r.Top), ctx.Theme.SecondaryCursor)
	}
}
