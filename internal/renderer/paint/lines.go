package paint

import (
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/dshills/tateview/internal/renderer/coords"
	"github.com/dshills/tateview/internal/renderer/core"
	"github.com/dshills/tateview/internal/renderer/snapshot"
)

// PaintLines draws the text of every visible line, one grapheme cluster at
// a time, styled by its token class. Whitespace renders as blank cells.
func PaintLines(ctx *Context, c *Canvas) {
	snap := ctx.Snapshot
	if snap.IsEmpty() {
		return
	}
	l := ctx.Layout
	defer c.Clip(l.Cells(l.Content))()

	advance, _ := l.ContentExtent()
	for line := snap.First; line <= snap.Last; line++ {
		off, _ := snap.Offset(line)
		elem, err := ctx.Converter.Element(line, snap)
		if err != nil {
			c.Omit("line", err)
			continue
		}
		if err := paintElement(ctx, c, elem, off, advance); err != nil {
			c.Omit("line", err)
		}
	}
}

func paintElement(ctx *Context, c *Canvas, elem coords.LineElement, off, advance float64) error {
	lh := ctx.Metrics.LineHeight
	for i, node := range elem.Nodes {
		style := ctx.Theme.StyleForClass(node.Class)
		unit := 0
		g := uniseg.NewGraphemes(node.Text)
		for g.Next() {
			cluster := g.Str()
			n := snapshot.UTF16Len(cluster)
			sp, err := ctx.Converter.Measurer.Measure(elem, i, unit, unit+n)
			unit += n
			if err != nil {
				return err
			}
			if sp.Start >= advance {
				return nil
			}
			if sp.End <= 0 || sp.Size() <= 0 {
				continue
			}

			cells := ctx.Layout.Cells(ctx.contentRect(sp.Start, sp.End, off, off+lh))
			base, size := utf8.DecodeRuneInString(cluster)
			if unicode.IsSpace(base) {
				c.Tint(cells, style)
				blankGlyphs(c, cells)
				continue
			}
			c.Glyph(cells, base, cluster[size:], core.RuneWidth(base), style)
		}
	}
	return nil
}

func blankGlyphs(c *Canvas, r core.ScreenRect) {
	r = r.Intersection(c.clip)
	for y := r.Top; y < r.Bottom; y++ {
		for x := r.Left; x < r.Right; x++ {
			cell := c.Get(x, y)
			cell.Rune, cell.Combining, cell.Width = ' ', "", 1
			c.Set(x, y, cell)
		}
	}
}

// PaintIndentGuides draws a guide at every tab stop inside a line's leading
// whitespace. Guides only occupy blank cells.
func PaintIndentGuides(ctx *Context, c *Canvas) {
	snap := ctx.Snapshot
	if !ctx.Options.IndentGuides || snap.IsEmpty() {
		return
	}
	l := ctx.Layout
	defer c.Clip(l.Cells(l.Content))()

	tab := ctx.Options.TabSize
	if tab <= 0 {
		tab = 4
	}
	step := float64(tab) * ctx.Metrics.CharWidth
	if step <= 0 {
		return
	}
	glyph := '─'
	if ctx.Roles.PrimaryIsHorizontal {
		glyph = '│'
	}

	for line := snap.First; line <= snap.Last; line++ {
		elem, err := ctx.Converter.Element(line, snap)
		if err != nil {
			c.Omit("indent guide", err)
			continue
		}
		lead, ok := leadingWhitespace(elem.Text())
		if !ok || lead == 0 {
			continue
		}
		end, err := ctx.Converter.Advance(elem, lead+1)
		if err != nil {
			c.Omit("indent guide", err)
			continue
		}
		off, _ := snap.Offset(line)
		for a := elem.Origin; a < end; a += step {
			r := ctx.Layout.Cells(ctx.contentRect(a, a+ctx.Metrics.CharWidth, off, off+ctx.Metrics.LineHeight))
			x, y := r.Left, r.Top
			if r.IsEmpty() || !c.writable(x, y) || c.Get(x, y).Rune != ' ' {
				continue
			}
			cell := c.Get(x, y)
			cell.Rune = glyph
			cell.Style = cell.Style.Merge(ctx.Theme.IndentGuide)
			c.Set(x, y, cell)
		}
	}
}

// leadingWhitespace returns the UTF-16 length of the indentation. ok is
// false for lines that are entirely blank.
func leadingWhitespace(s string) (units int, ok bool) {
	for _, r := range s {
		if r != ' ' && r != '\t' {
			return units, true
		}
		units++
	}
	return units, false
}
