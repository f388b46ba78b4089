package paint

import (
	"math"

	"github.com/dshills/tateview/internal/renderer/minimap"
	"github.com/dshills/tateview/internal/renderer/orientation"
	"github.com/dshills/tateview/internal/renderer/virtual"
)

// PaintScrollbars draws both scrollbar sliders over their tracks.
func PaintScrollbars(ctx *Context, c *Canvas) {
	snap := ctx.Snapshot
	if snap.IsEmpty() {
		return
	}
	l := ctx.Layout
	for _, b := range []struct {
		bar   Bar
		value float64
	}{
		{l.PrimaryScrollbar(snap), ctx.Scroll.Primary},
		{l.SecondaryScrollbar(snap), ctx.Scroll.Secondary},
	} {
		if b.bar.Empty() || b.bar.Track.Ratio() <= 0 {
			continue
		}
		c.Fill(l.Grid.Cells(b.bar.Slider(b.value)), ctx.Theme.ScrollbarSlider)
	}
}

// MinimapGeometry returns the minimap geometry for the context's scroll state.
func MinimapGeometry(ctx *Context) minimap.Geometry {
	snap := ctx.Snapshot
	snap.ScrollPrimary = ctx.Scroll.Primary
	m := ctx.Minimap
	m.Size = ctx.Layout.Minimap.S1 - ctx.Layout.Minimap.S0
	return m.Geometry(snap)
}

// PaintMinimap draws the scaled document overview. Each cell is shaded by
// the ink of the scaled lines and columns it covers; cells under the
// slider are tinted.
func PaintMinimap(ctx *Context, c *Canvas) {
	snap := ctx.Snapshot
	l := ctx.Layout
	panel := l.Minimap
	if snap.IsEmpty() || panel.A1 <= panel.A0 || ctx.Lines == nil {
		return
	}
	area := l.Cells(panel)
	defer c.Clip(area)()

	g := MinimapGeometry(ctx)
	w := g.Window(virtual.StackFor(ctx.Roles))
	content := make(map[int]string, w.Len())
	for i := w.StartIndex; i >= 0 && i <= w.EndIndex; i++ {
		data, err := ctx.Lines.GetLineRenderingData(i + 1)
		if err != nil {
			c.Omit("minimap line", err)
			continue
		}
		content[i+1] = data.Content
	}

	colWidth := ctx.Metrics.CharWidth * ctx.Minimap.Scale
	if colWidth <= 0 {
		return
	}
	for y := area.Top; y < area.Bottom; y++ {
		for x := area.Left; x < area.Right; x++ {
			r := l.CellRect(x, y)
			s0, s1 := r.S0-panel.S0, r.S1-panel.S0
			from := int(math.Floor((r.A0 - panel.A0) / colWidth))
			to := int(math.Ceil((r.A1 - panel.A0) / colWidth))

			cov := cellCoverage(g, content, s0, s1, from, to)
			style := ctx.Theme.Minimap
			if mid := (s0 + s1) / 2; g.HitSlider(mid) {
				style = style.Merge(ctx.Theme.MinimapSlider)
			}
			c.Glyph(rectAt(x, y), minimap.Shade(cov), "", 1, style)
		}
	}
}

// cellCoverage averages the ink of the minimap lines in the stack band
// [s0, s1) over columns [from, to).
func cellCoverage(g minimap.Geometry, content map[int]string, s0, s1 float64, from, to int) float64 {
	first := g.LineAt(s0)
	if first == 0 {
		return 0
	}
	last := g.LineAt(math.Nextafter(s1, s0))
	if last == 0 {
		last = g.LineCount
	}
	total, n := 0.0, 0
	for line := first; line <= last; line++ {
		total += minimap.Coverage(content[line], from, to)
		n++
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// MinimapPoint returns a surface point's coordinate along the minimap track.
func MinimapPoint(l Layout, p orientation.Point) float64 {
	return l.Local(l.Minimap, p).Stack
}
