package renderer

import (
	"errors"

	"github.com/dshills/tateview/internal/renderer/backend"
	"github.com/dshills/tateview/internal/renderer/coords"
	"github.com/dshills/tateview/internal/renderer/minimap"
	"github.com/dshills/tateview/internal/renderer/orientation"
	"github.com/dshills/tateview/internal/renderer/paint"
	"github.com/dshills/tateview/internal/renderer/scroll"
	"github.com/dshills/tateview/internal/renderer/snapshot"
)

// HandleMouse routes a mouse event. While a drag is in progress every
// event belongs to it, wherever the pointer is; otherwise a press is routed
// by the panel under it. It reports whether the event was used.
func (v *View) HandleMouse(ev backend.Event) bool {
	v.mu.Lock()
	col, row := ev.MouseX-v.x, ev.MouseY-v.y
	l := v.layout
	inside := col >= 0 && col < v.width && row >= 0 && row < v.height
	v.mu.Unlock()
	p := l.CellCenter(col, row)

	switch {
	case ev.MouseButton.IsWheel():
		if !inside {
			return false
		}
		v.wheel(ev.MouseButton, ev.Mod)
		return true
	case ev.MouseButton == backend.MouseLeft:
		if v.drag.Active() {
			v.drag.Move(p)
			return true
		}
		if !inside {
			return false
		}
		return v.press(l, col, row, p, ev.Mod)
	case ev.MouseButton == backend.MouseNone:
		if v.drag.Active() {
			v.drag.End()
			return true
		}
	}
	return false
}

// wheel scrolls across lines, or along them with shift held.
func (v *View) wheel(b backend.MouseButton, mod backend.ModMask) {
	v.mu.Lock()
	step := v.opts.WheelStep
	v.mu.Unlock()

	var dp, ds float64
	switch b {
	case backend.MouseWheelUp:
		dp = -step
	case backend.MouseWheelDown:
		dp = step
	case backend.MouseWheelLeft:
		ds = -step
	case backend.MouseWheelRight:
		ds = step
	}
	if mod.Has(backend.ModShift) {
		dp, ds = ds, dp
	}
	v.scroll.Wheel(dp, ds)
}

func (v *View) press(l paint.Layout, col, row int, p orientation.Point, mod backend.ModMask) bool {
	snap, ok := v.provider.Current()
	if !ok || snap.IsEmpty() {
		return false
	}
	st := v.scroll.State()

	switch l.Hit(p) {
	case paint.RegionPrimaryBar:
		v.pressBar(l.PrimaryScrollbar(snap), p, st.Primary, v.scroll.SetPrimary)
	case paint.RegionSecondaryBar:
		v.pressBar(l.SecondaryScrollbar(snap), p, st.Secondary, v.scroll.SetSecondary)
	case paint.RegionMinimap:
		v.pressMinimap(l, snap, p)
	case paint.RegionContent:
		if mod.Has(backend.ModAlt) {
			v.addCursor(l, snap, col, row)
			break
		}
		v.pressText(l, snap, col, row)
	default:
		return false
	}
	return true
}

// pressBar starts a slider drag. A press on the track first jumps so the
// slider is centered on the pointer. The track and the grab offset are
// fixed for the rest of the gesture.
func (v *View) pressBar(bar paint.Bar, p orientation.Point, value float64, set func(float64)) {
	t := bar.Track
	if bar.Empty() || t.Ratio() <= 0 {
		return
	}
	at := bar.Project(p)
	if !t.HitSlider(at, value) {
		value = t.ScrollForPointer(at)
		set(value)
	}
	grab := at - t.SliderOffset(value)
	v.drag.Begin(scroll.SliderMove(t, grab, bar.Project, set))
}

// pressMinimap jumps to the pointer unless it is on the slider, then drags
// the slider.
func (v *View) pressMinimap(l paint.Layout, snap snapshot.Snapshot, p orientation.Point) {
	v.mu.Lock()
	g := paint.MinimapGeometry(v.contextLocked(snap))
	v.mu.Unlock()

	project := func(p orientation.Point) float64 { return paint.MinimapPoint(l, p) }
	if at := project(p); !g.HitSlider(at) {
		v.scroll.SetPrimary(g.ScrollForPointer(at))
	}
	v.drag.Begin(minimap.PointerMove(g, project, v.scroll.SetPrimary))
}

// pressText places the caret under the pointer and starts a selection drag
// anchored there.
func (v *View) pressText(l paint.Layout, snap snapshot.Snapshot, col, row int) {
	anchor, ok := v.positionAt(l, snap, col, row)
	if !ok {
		return
	}
	v.engine.SetPosition(anchor)
	v.drag.Begin(func(p orientation.Point) {
		cur, ok := v.Snapshot()
		if !ok {
			return
		}
		layout := v.Layout()
		c, r := layout.Grid.CellOf(p.X, p.Y)
		head, ok := v.positionAt(layout, cur, c, r)
		if !ok {
			return
		}
		v.engine.SetSelection(snapshot.Range{Start: anchor, End: head})
	})
}

// addCursor adds a secondary cursor under the pointer when the engine keeps
// more than one.
func (v *View) addCursor(l paint.Layout, snap snapshot.Snapshot, col, row int) {
	mc, ok := v.engine.(snapshot.MultiCursor)
	if !ok {
		return
	}
	if pos, ok := v.positionAt(l, snap, col, row); ok {
		mc.AddCursor(pos)
	}
}

// Find highlights every match of query with the engine's search
// decorations and returns the match count. An empty query clears them.
func (v *View) Find(query string) (int, error) {
	s, ok := v.engine.(snapshot.Searcher)
	if !ok {
		return 0, ErrUnsupported
	}
	if query == "" {
		s.SetDecorations(nil)
		return 0, nil
	}
	return s.Find(query)
}

// PositionAt returns the model position under a view-local cell.
func (v *View) PositionAt(col, row int) (snapshot.Position, bool) {
	snap, ok := v.provider.Current()
	if !ok {
		return snapshot.Position{}, false
	}
	return v.positionAt(v.Layout(), snap, col, row)
}

func (v *View) positionAt(l paint.Layout, snap snapshot.Snapshot, col, row int) (snapshot.Position, bool) {
	v.mu.Lock()
	conv := coords.Converter{Measurer: v.measurerLocked(), CharWidth: v.metrics.CharWidth}
	v.mu.Unlock()

	pos, err := conv.PixelToPosition(l.ContentPoint(col, row), snap)
	switch {
	case errors.Is(err, coords.ErrMeasurementUnavailable):
		v.log.Debug("hit test fell back", "column", pos.Column, "error", err)
	case err != nil:
		v.log.Debug("hit test failed", "error", err)
		return snapshot.Position{}, false
	}
	return v.engine.ViewToModel(pos), true
}

// HandleKey scrolls the view. Arrow keys move in the direction pressed on
// screen, whatever the writing mode. It reports whether the key was used.
func (v *View) HandleKey(ev backend.Event) bool {
	v.mu.Lock()
	roles := v.roles
	m := v.metrics
	v.mu.Unlock()
	snap, _ := v.provider.Current()
	page := max(m.LineHeight, snap.ViewportPrimary-m.LineHeight)

	switch ev.Key {
	case backend.KeyUp:
		v.nudge(roles, m, 0, -1)
	case backend.KeyDown:
		v.nudge(roles, m, 0, 1)
	case backend.KeyLeft:
		v.nudge(roles, m, -1, 0)
	case backend.KeyRight:
		v.nudge(roles, m, 1, 0)
	case backend.KeyPageUp:
		v.scroll.ScrollBy(-page, 0)
	case backend.KeyPageDown:
		v.scroll.ScrollBy(page, 0)
	case backend.KeyHome:
		v.scroll.SetPrimary(0)
	case backend.KeyEnd:
		v.scroll.SetPrimary(v.scroll.Extents().MaxPrimary())
	default:
		return false
	}
	return true
}

// nudge scrolls one line or one character in a physical direction.
func (v *View) nudge(roles orientation.AxisRoles, m paint.Metrics, dx, dy float64) {
	adv, stack := dx, dy
	if !roles.PrimaryIsHorizontal {
		adv, stack = dy, dx
	}
	if !roles.PrimarySignPositive {
		adv = -adv
	}
	if !roles.SecondarySignPositive {
		stack = -stack
	}
	v.scroll.ScrollBy(stack*m.LineHeight, adv*m.CharWidth)
}
