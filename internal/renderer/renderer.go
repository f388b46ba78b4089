package renderer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dshills/tateview/internal/logging"
	"github.com/dshills/tateview/internal/renderer/backend"
	"github.com/dshills/tateview/internal/renderer/core"
	"github.com/dshills/tateview/internal/renderer/orientation"
	"github.com/dshills/tateview/internal/renderer/paint"
	"github.com/dshills/tateview/internal/renderer/snapshot"
)

// Options configures the renderer.
type Options struct {
	View ViewOptions

	CursorStyle backend.CursorStyle
	// MaxFPS caps how often frames are flushed.
	MaxFPS int
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		View:        DefaultViewOptions(),
		CursorStyle: backend.CursorBlock,
		MaxFPS:      60,
	}
}

// Renderer is the rendering facade. It owns the display, the screen buffer
// frames are composed in, and the view presenting the engine.
//
// All methods except Post are meant to be called from the goroutine running
// Run; Post hands work to it from anywhere.
type Renderer struct {
	mu sync.Mutex

	opts    Options
	backend backend.Backend
	screen  *backend.ScreenBuffer
	view    *View
	log     *logging.Logger

	lastFrame    time.Time
	minFrameTime time.Duration
	frameCount   uint64
	wakeup       *time.Timer

	// prompt is the search query being typed after "/".
	prompt      []rune
	prompting   bool
	promptDirty bool
}

// New creates a renderer over an initialized backend.
func New(b backend.Backend, opts Options, log *logging.Logger) *Renderer {
	if log == nil {
		log = logging.Null
	}
	if opts.MaxFPS <= 0 {
		opts.MaxFPS = 60
	}
	w, h := b.Size()
	r := &Renderer{
		opts:         opts,
		backend:      b,
		screen:       backend.NewScreenBuffer(w, h),
		log:          log.WithComponent("renderer"),
		minFrameTime: time.Second / time.Duration(opts.MaxFPS),
	}
	b.SetCursorStyle(opts.CursorStyle)
	b.OnResize(r.Resize)
	return r
}

// Open presents engine in a view covering the whole screen, replacing any
// previous view.
func (r *Renderer) Open(engine snapshot.Engine) *View {
	r.mu.Lock()
	old := r.view
	w, h := r.screen.Size()
	opts := r.opts.View
	r.mu.Unlock()

	if old != nil {
		old.Close()
	}
	v := NewView(engine, 0, 0, w, h, opts, r.log)

	r.mu.Lock()
	r.view = v
	r.screen.MarkFullRedraw()
	r.mu.Unlock()
	return v
}

// View returns the current view, or nil before Open.
func (r *Renderer) View() *View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view
}

// Resize handles display size changes.
func (r *Renderer) Resize(width, height int) {
	r.mu.Lock()
	r.screen.Resize(width, height)
	v := r.view
	r.mu.Unlock()

	if v != nil {
		v.SetBounds(0, 0, width, height)
	}
}

// SetMode switches the view's writing mode and repaints every cell.
func (r *Renderer) SetMode(m orientation.Mode) {
	v := r.View()
	if v == nil {
		return
	}
	r.afterViewChange(v.SetMode(m))
}

// ApplyOptions applies reloaded options to the renderer and its view.
func (r *Renderer) ApplyOptions(opts Options) {
	r.mu.Lock()
	if opts.MaxFPS <= 0 {
		opts.MaxFPS = 60
	}
	r.opts = opts
	r.minFrameTime = time.Second / time.Duration(opts.MaxFPS)
	v := r.view
	r.mu.Unlock()

	r.backend.SetCursorStyle(opts.CursorStyle)
	if v != nil {
		r.afterViewChange(v.SetOptions(opts.View))
	}
}

func (r *Renderer) afterViewChange(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, ErrOrientationChange) {
		r.log.Debug("view update", "error", err)
		r.mu.Lock()
		r.screen.MarkFullRedraw()
		r.mu.Unlock()
		return
	}
	r.log.Warn("view update failed", "error", err)
}

// NeedsRedraw reports whether the next Render would draw a frame.
func (r *Renderer) NeedsRedraw() bool {
	r.mu.Lock()
	v, dirty := r.view, r.promptDirty
	r.mu.Unlock()
	return v != nil && (dirty || v.NeedsRedraw())
}

// Render draws a frame if the view changed, respecting the frame rate cap.
// A frame held back by the cap is drawn once the interval has passed. It
// reports whether a frame was drawn.
func (r *Renderer) Render() bool {
	if !r.NeedsRedraw() {
		return false
	}
	r.mu.Lock()
	wait := r.minFrameTime - time.Since(r.lastFrame)
	if wait > 0 {
		if r.wakeup == nil {
			r.wakeup = time.AfterFunc(wait, func() {
				r.mu.Lock()
				r.wakeup = nil
				r.mu.Unlock()
				r.backend.PostEvent(backend.Event{Type: backend.EventInterrupt})
			})
		}
		r.mu.Unlock()
		return false
	}
	r.mu.Unlock()

	r.RenderNow()
	return true
}

// RenderNow draws a frame immediately.
func (r *Renderer) RenderNow() {
	v := r.View()

	r.mu.Lock()
	defer r.mu.Unlock()

	if v == nil {
		r.screen.Clear()
		r.backend.HideCursor()
		r.screen.Flush(r.backend)
		return
	}
	// Cells the view leaves alone, such as a closed prompt, start blank.
	r.screen.Clear()
	res := v.Render(r.screen)
	if res.Omitted > 0 {
		r.log.Debug("visuals omitted", "frame", r.frameCount+1, "omitted", res.Omitted)
	}
	if r.prompting {
		res.Cursor = r.drawPromptLocked()
	}
	r.promptDirty = false
	if res.Cursor.Visible {
		r.backend.ShowCursor(res.Cursor.X, res.Cursor.Y)
	} else {
		r.backend.HideCursor()
	}
	r.screen.Flush(r.backend)
	r.frameCount++
	r.lastFrame = time.Now()
}

// FrameCount returns the number of frames drawn.
func (r *Renderer) FrameCount() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frameCount
}

// Post runs fn on the event loop. It is safe to call from any goroutine.
func (r *Renderer) Post(fn func()) {
	r.backend.PostEvent(backend.Event{Type: backend.EventInterrupt, Data: fn})
}

// HandleEvent dispatches one display event and reports whether the viewer
// should quit.
func (r *Renderer) HandleEvent(ev backend.Event) (quit bool) {
	v := r.View()
	switch ev.Type {
	case backend.EventKey:
		if r.Prompting() {
			r.promptKey(ev)
			return false
		}
		switch {
		case ev.Key == backend.KeyCtrlC, ev.Key == backend.KeyEscape,
			ev.Key == backend.KeyRune && ev.Rune == 'q':
			return true
		case ev.Key == backend.KeyCtrlL:
			r.mu.Lock()
			r.screen.MarkFullRedraw()
			r.mu.Unlock()
			if v != nil {
				v.MarkDirty()
			}
		case ev.Key == backend.KeyRune && ev.Rune == 'm':
			if v != nil {
				r.SetMode(nextMode(v.Mode()))
			}
		case ev.Key == backend.KeyRune && ev.Rune == '/':
			if v != nil {
				r.setPrompt(true, nil)
			}
		case v != nil:
			v.HandleKey(ev)
		}
	case backend.EventMouse:
		if v != nil {
			v.HandleMouse(ev)
		}
	case backend.EventResize:
		r.Resize(ev.Width, ev.Height)
	case backend.EventFocus:
		if v != nil {
			v.SetFocused(ev.Focused)
		}
	case backend.EventInterrupt:
		if fn, ok := ev.Data.(func()); ok {
			fn()
		}
	}
	return false
}

// Find highlights the matches of query in the current view and returns the
// match count. An empty query clears the highlights.
func (r *Renderer) Find(query string) (int, error) {
	v := r.View()
	if v == nil {
		return 0, nil
	}
	n, err := v.Find(query)
	if err != nil {
		r.log.Warn("find failed", "query", query, "error", err)
		return 0, err
	}
	r.log.Debug("find", "query", query, "matches", n)
	return n, nil
}

// Prompting reports whether a search query is being typed.
func (r *Renderer) Prompting() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.prompting
}

func (r *Renderer) setPrompt(open bool, query []rune) {
	r.mu.Lock()
	r.prompting, r.prompt, r.promptDirty = open, query, true
	v := r.view
	r.mu.Unlock()
	if !open && v != nil {
		v.MarkDirty()
	}
}

// promptKey edits the search prompt. Enter runs the query, Escape drops it.
func (r *Renderer) promptKey(ev backend.Event) {
	r.mu.Lock()
	query := append([]rune(nil), r.prompt...)
	r.mu.Unlock()

	switch ev.Key {
	case backend.KeyEscape, backend.KeyCtrlC:
		r.setPrompt(false, nil)
	case backend.KeyEnter:
		r.setPrompt(false, nil)
		_, _ = r.Find(string(query))
	case backend.KeyBackspace:
		if len(query) > 0 {
			query = query[:len(query)-1]
		}
		r.setPrompt(true, query)
	case backend.KeyRune:
		r.setPrompt(true, append(query, ev.Rune))
	}
}

// drawPromptLocked writes "/query" over the bottom row and returns the
// cursor cell after it.
func (r *Renderer) drawPromptLocked() paint.CursorCell {
	w, h := r.screen.Size()
	if w <= 0 || h <= 0 {
		return paint.CursorCell{}
	}
	y := h - 1
	style := core.DefaultStyle().Reverse()
	r.screen.Fill(core.ScreenRect{Left: 0, Top: y, Right: w, Bottom: h}, core.Cell{Rune: ' ', Width: 1, Style: style})

	x := 0
	for _, ch := range append([]rune{'/'}, r.prompt...) {
		cw := max(1, core.RuneWidth(ch))
		if x+cw > w {
			break
		}
		r.screen.SetCell(x, y, core.Cell{Rune: ch, Width: cw, Style: style})
		if cw == 2 {
			r.screen.SetCell(x+1, y, core.ContinuationCell().WithStyle(style))
		}
		x += cw
	}
	return paint.CursorCell{X: min(x, w-1), Y: y, Visible: true}
}

// nextMode cycles through the writing modes.
func nextMode(m orientation.Mode) orientation.Mode {
	modes := orientation.Modes()
	for i, mm := range modes {
		if mm == m {
			return modes[(i+1)%len(modes)]
		}
	}
	return modes[0]
}

// Run draws and dispatches events until the viewer quits or ctx is done.
func (r *Renderer) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		r.backend.PostEvent(backend.Event{Type: backend.EventInterrupt})
	})
	defer stop()
	defer r.stopWakeup()

	r.RenderNow()
	for {
		ev := r.backend.PollEvent()
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.HandleEvent(ev) {
			return nil
		}
		r.Render()
	}
}

func (r *Renderer) stopWakeup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.wakeup != nil {
		r.wakeup.Stop()
		r.wakeup = nil
	}
}

// Close releases the view.
func (r *Renderer) Close() {
	r.stopWakeup()
	r.mu.Lock()
	v := r.view
	r.view = nil
	r.mu.Unlock()
	if v != nil {
		v.Close()
	}
}
