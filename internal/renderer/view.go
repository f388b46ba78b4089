package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/tateview/internal/logging"
	"github.com/dshills/tateview/internal/renderer/backend"
	"github.com/dshills/tateview/internal/renderer/coords"
	"github.com/dshills/tateview/internal/renderer/core"
	"github.com/dshills/tateview/internal/renderer/minimap"
	"github.com/dshills/tateview/internal/renderer/orientation"
	"github.com/dshills/tateview/internal/renderer/paint"
	"github.com/dshills/tateview/internal/renderer/scroll"
	"github.com/dshills/tateview/internal/renderer/snapshot"
	"github.com/dshills/tateview/internal/renderer/virtual"
)

// ErrOrientationChange reports that a view changed writing mode. Nothing
// derived under the old mode survives: layout, metrics, engine geometry and
// any drag in progress are rebuilt from scratch.
var ErrOrientationChange = errors.New("orientation change requires full re-layout")

// ErrUnsupported reports a command the view's engine does not implement.
var ErrUnsupported = errors.New("engine does not support the command")

// ViewOptions configures a single view.
type ViewOptions struct {
	Mode orientation.Mode
	// Grid is the pixel size of one terminal cell.
	Grid     core.Grid
	Overscan int

	ShowMinimap  bool
	MinimapCells int
	MinimapScale float64

	ScrollbarCells int
	WheelDamping   float64
	// WheelStep is the raw scroll delta of one wheel notch, before damping.
	WheelStep float64

	LineNumbers     paint.LineNumberMode
	MinGutterDigits int
	IndentGuides    bool
	TabSize         int
	Theme           string
}

// DefaultViewOptions returns default view options.
func DefaultViewOptions() ViewOptions {
	return ViewOptions{
		Mode:            orientation.LeftToRightHorizontal,
		Grid:            core.Grid{CellWidth: 10, CellHeight: 20},
		Overscan:        virtual.DefaultOverscan,
		ShowMinimap:     true,
		MinimapCells:    10,
		MinimapScale:    minimap.DefaultScale,
		ScrollbarCells:  1,
		WheelDamping:    scroll.WheelDamping,
		WheelStep:       240,
		LineNumbers:     paint.LineNumbersAbsolute,
		MinGutterDigits: 3,
		IndentGuides:    true,
		TabSize:         4,
		Theme:           paint.DefaultThemeName,
	}
}

// View presents one engine in a rectangle of the screen. It owns the
// snapshot provider, the scroll synchronizer and the drag machine for that
// engine, and turns pointer and key input into engine commands.
//
// Engine calls are never made while the view's lock is held, since any of
// them may fire a render notification that re-enters the view.
type View struct {
	mu sync.Mutex

	id string

	x, y          int
	width, height int

	opts        ViewOptions
	roles       orientation.AxisRoles
	metrics     paint.Metrics
	layout      paint.Layout
	gutterCells int
	theme       *paint.Theme

	engine   snapshot.Engine
	provider *snapshot.Provider
	scroll   *scroll.Synchronizer
	drag     *scroll.Drag

	log         *logging.Logger
	focused     bool
	needsRedraw bool
	frame       paint.Result
	disposers   []snapshot.Dispose
}

// NewView creates a view over engine covering the given screen rectangle
// and performs the first layout.
func NewView(engine snapshot.Engine, x, y, width, height int, opts ViewOptions, log *logging.Logger) *View {
	if log == nil {
		log = logging.Null
	}
	v := &View{
		id:          uuid.NewString(),
		x:           x,
		y:           y,
		width:       width,
		height:      height,
		opts:        opts,
		roles:       orientation.Roles(opts.Mode),
		theme:       paint.NewTheme(opts.Theme),
		engine:      engine,
		provider:    snapshot.NewProvider(engine),
		scroll:      scroll.NewSynchronizer(engine, scroll.WithDamping(opts.WheelDamping)),
		focused:     true,
		needsRedraw: true,
	}
	v.log = log.WithComponent("view").WithField("view", v.id[:8])
	v.drag = scroll.NewDrag(
		func() { v.log.Debug("pointer captured") },
		func() { v.log.Debug("pointer released") },
	)
	v.disposers = append(v.disposers,
		v.provider.Subscribe(v.onSnapshot),
		v.scroll.Subscribe(func(scroll.State) { v.MarkDirty() }),
		engine.OnDidChangeConfiguration(v.Relayout),
	)
	v.Relayout()
	return v
}

func (v *View) onSnapshot(snap snapshot.Snapshot) {
	v.scroll.Observe(snap)
	v.MarkDirty()
}

// ID returns the view's identifier.
func (v *View) ID() string {
	return v.id
}

// Mode returns the active writing mode.
func (v *View) Mode() orientation.Mode {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.opts.Mode
}

// Options returns the view's options.
func (v *View) Options() ViewOptions {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.opts
}

// Bounds returns the view's position and size.
func (v *View) Bounds() (x, y, width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.x, v.y, v.width, v.height
}

// Layout returns the current panel layout, in view-local coordinates.
func (v *View) Layout() paint.Layout {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.layout
}

// Snapshot returns the latest engine snapshot. The boolean is false until
// the engine has rendered once.
func (v *View) Snapshot() (snapshot.Snapshot, bool) {
	return v.provider.Current()
}

// ScrollState returns the authoritative scroll state.
func (v *View) ScrollState() scroll.State {
	return v.scroll.State()
}

// Scroll returns the view's scroll synchronizer.
func (v *View) Scroll() *scroll.Synchronizer {
	return v.scroll
}

// Dragging reports whether a pointer gesture is in progress.
func (v *View) Dragging() bool {
	return v.drag.Active()
}

// MarkDirty marks the view as needing redraw.
func (v *View) MarkDirty() {
	v.mu.Lock()
	v.needsRedraw = true
	v.mu.Unlock()
}

// NeedsRedraw returns whether the view needs redrawing.
func (v *View) NeedsRedraw() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.needsRedraw
}

// SetBounds moves or resizes the view and lays it out again.
func (v *View) SetBounds(x, y, width, height int) {
	v.mu.Lock()
	v.x, v.y, v.width, v.height = x, y, width, height
	v.mu.Unlock()
	v.Relayout()
}

// SetMode switches the writing mode. Geometry is never patched across a
// mode change: any drag is cancelled and the view is laid out from scratch.
// The returned error wraps ErrOrientationChange so callers can repaint the
// whole screen; it is nil when the mode is unchanged.
func (v *View) SetMode(m orientation.Mode) error {
	v.mu.Lock()
	prev := v.opts.Mode
	if m == prev {
		v.mu.Unlock()
		return nil
	}
	v.opts.Mode = m
	v.roles = orientation.Roles(m)
	v.mu.Unlock()

	v.drag.Cancel()
	v.Relayout()
	v.log.Info("writing mode changed", "from", prev.String(), "to", m.String())
	return fmt.Errorf("%w: %s to %s", ErrOrientationChange, prev, m)
}

// SetOptions applies new options, such as a reloaded configuration. A mode
// change is handled as in SetMode.
func (v *View) SetOptions(opts ViewOptions) error {
	v.mu.Lock()
	modeChanged := opts.Mode != v.opts.Mode
	if opts.Theme != v.opts.Theme {
		v.theme = paint.NewTheme(opts.Theme)
	}
	prev := v.opts.Mode
	v.opts = opts
	v.roles = orientation.Roles(opts.Mode)
	v.mu.Unlock()

	v.scroll.SetDamping(opts.WheelDamping)
	if modeChanged {
		v.drag.Cancel()
	}
	v.Relayout()
	if modeChanged {
		return fmt.Errorf("%w: %s to %s", ErrOrientationChange, prev, opts.Mode)
	}
	return nil
}

// Relayout recomputes metrics and panels, pushes the resulting geometry to
// the engine and captures a fresh snapshot.
func (v *View) Relayout() {
	snap, _ := v.provider.Current()

	v.mu.Lock()
	v.layoutLocked(snap.LineCount)
	g := v.geometryLocked()
	v.mu.Unlock()

	if l, ok := v.engine.(snapshot.Layouter); ok {
		l.Layout(g)
	}
	if err := v.provider.Refresh(); err != nil {
		v.log.Warn("snapshot refresh failed", "error", err)
	}
}

func (v *View) layoutLocked(lineCount int) {
	o := v.opts
	v.metrics = paint.MetricsFor(v.roles, o.Grid)
	v.gutterCells = paint.GutterCells(o.LineNumbers, lineCount, o.MinGutterDigits)
	sizes := paint.Sizes{
		GutterCells:    v.gutterCells,
		ScrollbarCells: o.ScrollbarCells,
	}
	if o.ShowMinimap {
		sizes.MinimapCells = o.MinimapCells
	}
	v.layout = paint.NewLayout(v.roles, o.Grid, v.width, v.height, sizes)
	v.needsRedraw = true
}

func (v *View) geometryLocked() snapshot.Geometry {
	adv, stack := v.layout.ContentExtent()
	m := v.measurerLocked()
	return snapshot.Geometry{
		ViewportWidth:  adv,
		ViewportHeight: stack,
		LineHeight:     v.metrics.LineHeight,
		CharWidth:      v.metrics.CharWidth,
		Cells:          m.Cells,
	}
}

func (v *View) measurerLocked() coords.MonospaceMeasurer {
	return coords.MonospaceMeasurer{
		CharWidth: v.metrics.CharWidth,
		TabSize:   v.opts.TabSize,
		Uniform:   v.metrics.Uniform,
	}
}

func (v *View) contextLocked(snap snapshot.Snapshot) *paint.Context {
	o := v.opts
	return &paint.Context{
		Mode:     o.Mode,
		Roles:    v.roles,
		Keys:     v.roles.Keys(),
		Layout:   v.layout,
		Metrics:  v.metrics,
		Snapshot: snap,
		Scroll:   v.scroll.State(),
		Converter: coords.Converter{
			Measurer:  v.measurerLocked(),
			CharWidth: v.metrics.CharWidth,
		},
		Minimap: minimap.Minimap{Scale: o.MinimapScale, Overscan: o.Overscan},
		Theme:   v.theme,
		Options: paint.Options{
			LineNumbers:  o.LineNumbers,
			IndentGuides: o.IndentGuides,
			TabSize:      o.TabSize,
		},
		Lines: v.engine,
		Log:   v.log,
	}
}

// Render paints the view into s, which is the whole screen; the view draws
// only inside its bounds. The returned cursor is in screen coordinates.
// Before the engine has rendered once only the empty panels are drawn.
func (v *View) Render(s paint.Surface) paint.Result {
	snap, ok := v.provider.Current()
	if ok && v.gutterStale(snap.LineCount) {
		v.Relayout()
		snap, ok = v.provider.Current()
	}
	if !ok {
		snap = snapshot.Snapshot{}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	ctx := v.contextLocked(snap)
	v.log.Debug("frame", "context", ctx)
	res := paint.Render(ctx, &region{s: s, x: v.x, y: v.y, w: v.width, h: v.height})
	if res.Cursor.Visible {
		res.Cursor.X += v.x
		res.Cursor.Y += v.y
	}
	if !v.focused {
		res.Cursor.Visible = false
	}
	v.frame = res
	v.needsRedraw = false
	return res
}

func (v *View) gutterStale(lineCount int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return paint.GutterCells(v.opts.LineNumbers, lineCount, v.opts.MinGutterDigits) != v.gutterCells
}

// SetFocused records input focus. Losing focus cancels any drag.
func (v *View) SetFocused(focused bool) {
	v.mu.Lock()
	v.focused = focused
	v.needsRedraw = true
	v.mu.Unlock()
	if !focused {
		v.drag.Cancel()
	}
}

// Close cancels any gesture and detaches from the engine.
func (v *View) Close() {
	v.drag.Close()
	v.mu.Lock()
	disposers := v.disposers
	v.disposers = nil
	v.mu.Unlock()
	for _, d := range disposers {
		if d != nil {
			d()
		}
	}
	v.provider.Close()
}

// region is the part of the screen a view draws into.
type region struct {
	s          paint.Surface
	x, y, w, h int
}

func (r *region) Size() (int, int) {
	return r.w, r.h
}

func (r *region) SetCell(x, y int, cell core.Cell) {
	if x >= 0 && x < r.w && y >= 0 && y < r.h {
		r.s.SetCell(r.x+x, r.y+y, cell)
	}
}

func (r *region) GetCell(x, y int) core.Cell {
	return r.s.GetCell(r.x+x, r.y+y)
}

var _ paint.Surface = (*backend.ScreenBuffer)(nil)
