package renderer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dshills/tateview/internal/engine"
	"github.com/dshills/tateview/internal/renderer/backend"
	"github.com/dshills/tateview/internal/renderer/orientation"
)

// newTestRenderer opens a 100-line document on a 40x11 headless display.
func newTestRenderer(t *testing.T, mutate func(*Options)) (*Renderer, *backend.NullBackend, *engine.Document) {
	t.Helper()
	b := backend.NewNullBackend(40, 11)
	if err := b.Init(); err != nil {
		t.Fatal(err)
	}
	opts := DefaultOptions()
	opts.View.ShowMinimap = false
	if mutate != nil {
		mutate(&opts)
	}
	r := New(b, opts, nil)
	t.Cleanup(r.Close)

	doc := engine.New("notes.txt", numberedLines(100))
	r.Open(doc)
	return r, b, doc
}

func keyRune(ch rune) backend.Event {
	return backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: ch}
}

func TestRendererRenderNow(t *testing.T) {
	r, b, _ := newTestRenderer(t, nil)

	r.RenderNow()

	if got := b.Row(0); !strings.HasPrefix(got, "  1 line 1") {
		t.Errorf("row 0 = %q", got)
	}
	if got := b.Row(9); !strings.HasPrefix(got, " 10 line 10") {
		t.Errorf("row 9 = %q", got)
	}
	if x, y, visible := b.CursorPosition(); x != 4 || y != 0 || !visible {
		t.Errorf("cursor = (%d, %d, %v)", x, y, visible)
	}
	if r.FrameCount() != 1 || b.ShowCount() != 1 {
		t.Errorf("frames = %d, shows = %d", r.FrameCount(), b.ShowCount())
	}
	if r.NeedsRedraw() {
		t.Error("nothing changed since the frame")
	}
	if r.Render() {
		t.Error("Render drew an unchanged frame")
	}
}

func TestRendererFollowsScroll(t *testing.T) {
	r, b, doc := newTestRenderer(t, func(o *Options) { o.MaxFPS = 1000 })
	r.RenderNow()

	doc.SetScrollTop(200)
	if !r.NeedsRedraw() {
		t.Fatal("scrolling the engine should dirty the view")
	}
	r.RenderNow()
	if got := b.Row(0); !strings.HasPrefix(got, " 11 line 11") {
		t.Errorf("row 0 = %q", got)
	}
	if _, _, visible := b.CursorPosition(); visible {
		t.Error("cursor on line 1 is scrolled out of view")
	}
}

func TestRendererFrameCap(t *testing.T) {
	r, _, doc := newTestRenderer(t, func(o *Options) { o.MaxFPS = 1 })
	r.RenderNow()

	doc.SetScrollTop(20)
	if r.Render() {
		t.Error("frame inside the interval should be held back")
	}
	if !r.NeedsRedraw() {
		t.Error("held frame should stay pending")
	}
	if r.FrameCount() != 1 {
		t.Errorf("frames = %d", r.FrameCount())
	}
}

func TestRendererWithoutView(t *testing.T) {
	b := backend.NewNullBackend(10, 2)
	if err := b.Init(); err != nil {
		t.Fatal(err)
	}
	r := New(b, DefaultOptions(), nil)
	defer r.Close()

	if r.View() != nil || r.NeedsRedraw() {
		t.Error("renderer without a view has nothing to draw")
	}
	r.RenderNow()
	if _, _, visible := b.CursorPosition(); visible {
		t.Error("cursor shown without a view")
	}
	if r.HandleEvent(backend.Event{Type: backend.EventMouse, MouseButton: backend.MouseLeft}) {
		t.Error("mouse event should not quit")
	}
}

func TestRendererHandleEventQuit(t *testing.T) {
	tests := []struct {
		name string
		ev   backend.Event
		quit bool
	}{
		{"q", keyRune('q'), true},
		{"escape", key(backend.KeyEscape), true},
		{"ctrl-c", key(backend.KeyCtrlC), true},
		{"other rune", keyRune('x'), false},
		{"arrow", key(backend.KeyDown), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newTestRenderer(t, nil)
			if got := r.HandleEvent(tt.ev); got != tt.quit {
				t.Errorf("quit = %v, want %v", got, tt.quit)
			}
		})
	}
}

func TestRendererCycleMode(t *testing.T) {
	r, _, _ := newTestRenderer(t, nil)

	want := []orientation.Mode{
		orientation.LeftToRightVertical,
		orientation.RightToLeftHorizontal,
		orientation.RightToLeftVertical,
		orientation.LeftToRightHorizontal,
	}
	for _, m := range want {
		r.HandleEvent(keyRune('m'))
		if got := r.View().Mode(); got != m {
			t.Fatalf("mode = %v, want %v", got, m)
		}
	}
}

func TestRendererModeSwitchRepaints(t *testing.T) {
	r, b, _ := newTestRenderer(t, nil)
	r.RenderNow()

	r.SetMode(orientation.RightToLeftHorizontal)
	r.RenderNow()

	// Right-to-left mirrors the row: the gutter is on the right and the
	// line scrollbar on the left.
	if got := b.Row(0); !strings.HasSuffix(got, "1 enil   1") {
		t.Errorf("row 0 = %q", got)
	}
}

func TestRendererKeysScroll(t *testing.T) {
	r, _, doc := newTestRenderer(t, nil)

	r.HandleEvent(key(backend.KeyPageDown))
	if got := doc.ViewportData().ScrollTop; got != 180 {
		t.Errorf("scroll top = %v, want 180", got)
	}
	r.HandleEvent(backend.Event{Type: backend.EventMouse, MouseX: 10, MouseY: 3, MouseButton: backend.MouseWheelUp})
	if got := doc.ViewportData().ScrollTop; got != 120 {
		t.Errorf("scroll top = %v, want 120", got)
	}
}

func TestRendererResizeEvent(t *testing.T) {
	r, _, doc := newTestRenderer(t, nil)

	r.HandleEvent(backend.Event{Type: backend.EventResize, Width: 60, Height: 21})
	if _, _, w, h := r.View().Bounds(); w != 60 || h != 21 {
		t.Errorf("view size = %dx%d", w, h)
	}
	if got := doc.ViewportData().ViewportHeight; got != 400 {
		t.Errorf("engine viewport height = %v", got)
	}
}

func TestRendererBackendResize(t *testing.T) {
	r, b, _ := newTestRenderer(t, nil)
	b.Resize(30, 5)
	if _, _, w, h := r.View().Bounds(); w != 30 || h != 5 {
		t.Errorf("view size = %dx%d", w, h)
	}
}

func TestRendererFocus(t *testing.T) {
	r, b, _ := newTestRenderer(t, nil)

	r.HandleEvent(backend.Event{Type: backend.EventFocus, Focused: false})
	r.RenderNow()
	if _, _, visible := b.CursorPosition(); visible {
		t.Error("cursor visible without focus")
	}

	r.HandleEvent(backend.Event{Type: backend.EventFocus, Focused: true})
	r.RenderNow()
	if _, _, visible := b.CursorPosition(); !visible {
		t.Error("cursor hidden with focus")
	}
}

func TestRendererApplyOptions(t *testing.T) {
	r, b, _ := newTestRenderer(t, nil)

	opts := DefaultOptions()
	opts.CursorStyle = backend.CursorBar
	opts.View.Mode = orientation.LeftToRightVertical
	r.ApplyOptions(opts)

	if b.CursorStyleValue() != backend.CursorBar {
		t.Errorf("cursor style = %v", b.CursorStyleValue())
	}
	if r.View().Mode() != orientation.LeftToRightVertical {
		t.Errorf("mode = %v", r.View().Mode())
	}
	if !r.View().Options().ShowMinimap {
		t.Error("options not applied to the view")
	}
}

func TestRendererOpenReplacesView(t *testing.T) {
	r, _, first := newTestRenderer(t, nil)
	old := r.View()

	second := engine.New("other.txt", "only line")
	v := r.Open(second)
	if v == old || r.View() != v {
		t.Fatal("Open should install a new view")
	}

	first.SetScrollTop(100)
	if old.NeedsRedraw() {
		old.Render(backend.NewScreenBuffer(40, 11))
	}
	first.SetScrollTop(200)
	if old.NeedsRedraw() {
		t.Error("replaced view still follows its engine")
	}
}

func TestRendererRunPostAndQuit(t *testing.T) {
	r, b, _ := newTestRenderer(t, nil)

	ran := false
	r.Post(func() { ran = true })
	b.PostEvent(keyRune('q'))

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !ran {
		t.Error("posted function did not run")
	}
	if r.FrameCount() == 0 {
		t.Error("Run should draw the first frame")
	}
}

func TestRendererRunCancelled(t *testing.T) {
	r, _, _ := newTestRenderer(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run error = %v", err)
	}
}

func TestRendererSearchPrompt(t *testing.T) {
	r, b, doc := newTestRenderer(t, nil)
	r.RenderNow()

	for _, ev := range []backend.Event{keyRune('/'), keyRune('l'), keyRune('x'), key(backend.KeyBackspace)} {
		if r.HandleEvent(ev) {
			t.Fatal("typing a query should not quit")
		}
	}
	for _, ch := range "ine 7" {
		r.HandleEvent(keyRune(ch))
	}
	if !r.Prompting() || !r.NeedsRedraw() {
		t.Fatal("the prompt should be open and pending a frame")
	}
	r.RenderNow()
	if got := b.Row(10); !strings.HasPrefix(got, "/line 7") {
		t.Errorf("prompt row = %q", got)
	}
	if x, y, visible := b.CursorPosition(); x != 7 || y != 10 || !visible {
		t.Errorf("cursor = (%d, %d, %v), want after the query", x, y, visible)
	}

	// "q" is part of the query while the prompt is open.
	if r.HandleEvent(keyRune('q')) {
		t.Fatal("q inside the prompt should not quit")
	}
	r.HandleEvent(key(backend.KeyBackspace))
	r.HandleEvent(key(backend.KeyEnter))

	if r.Prompting() {
		t.Error("Enter should close the prompt")
	}
	// "line 7" and "line 70" to "line 79".
	if got := len(doc.Decorations()); got != 11 {
		t.Errorf("decorations = %d, want 11", got)
	}
	r.RenderNow()
	if got := b.Row(10); strings.HasPrefix(got, "/") {
		t.Errorf("prompt row should be repainted by the view, got %q", got)
	}
}

func TestRendererSearchPromptEscape(t *testing.T) {
	r, _, doc := newTestRenderer(t, nil)
	if _, err := r.Find("line 1"); err != nil {
		t.Fatal(err)
	}
	if len(doc.Decorations()) == 0 {
		t.Fatal("Find should decorate matches")
	}

	r.HandleEvent(keyRune('/'))
	if r.HandleEvent(key(backend.KeyEscape)) {
		t.Error("Escape should close the prompt, not quit")
	}
	if r.Prompting() {
		t.Error("prompt still open")
	}

	r.HandleEvent(keyRune('/'))
	r.HandleEvent(key(backend.KeyEnter))
	if got := len(doc.Decorations()); got != 0 {
		t.Errorf("an empty query should clear the highlights, got %d", got)
	}
}
