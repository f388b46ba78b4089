package snapshot

import (
	"errors"
	"testing"
)

type fakeSource struct {
	vd      ViewportData
	lines   map[int]LineData
	cursors []Position
	sels    []Range

	render []func()
	layout []func()
}

func newFakeSource(first, last int, lh float64) *fakeSource {
	f := &fakeSource{lines: make(map[int]LineData)}
	f.vd = ViewportData{
		StartLine:      first,
		EndLine:        last,
		ScrollHeight:   1000,
		ScrollWidth:    300,
		ViewportHeight: 200,
		ViewportWidth:  100,
		LineHeight:     lh,
		LineCount:      50,
	}
	for l := first; l <= last; l++ {
		f.vd.RelativeOffsets = append(f.vd.RelativeOffsets, float64(l-first)*lh)
		f.lines[l] = LineData{Content: "abc", Tokens: []TokenRun{{EndOffset: 3, StyleClass: "k"}}}
	}
	return f
}

func (f *fakeSource) ViewportData() ViewportData { return f.vd }

func (f *fakeSource) GetLineRenderingData(line int) (LineData, error) {
	d, ok := f.lines[line]
	if !ok {
		return LineData{}, errors.New("missing")
	}
	return d, nil
}

func (f *fakeSource) ModelToView(p Position) Position { return p }
func (f *fakeSource) ViewToModel(p Position) Position { return p }
func (f *fakeSource) Cursors() []Position             { return f.cursors }
func (f *fakeSource) Selections() []Range             { return f.sels }
func (f *fakeSource) Decorations() []Decoration       { return nil }

func (f *fakeSource) OnDidRender(fn func()) Dispose {
	f.render = append(f.render, fn)
	return func() { f.render = nil }
}

func (f *fakeSource) OnDidLayoutChange(fn func()) Dispose {
	f.layout = append(f.layout, fn)
	return func() { f.layout = nil }
}

func (f *fakeSource) OnDidChangeConfiguration(fn func()) Dispose { return func() {} }

func (f *fakeSource) fireRender() {
	for _, fn := range f.render {
		fn()
	}
}

func TestCapture(t *testing.T) {
	src := newFakeSource(3, 6, 20)
	src.vd.ScrollTop = 40
	src.cursors = []Position{{Line: 4, Column: 2}}

	s, err := Capture(src)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if s.First != 3 || s.Last != 6 {
		t.Errorf("range = [%d, %d]", s.First, s.Last)
	}
	if s.ScrollPrimary != 40 || s.ExtentPrimary != 1000 || s.ViewportPrimary != 200 {
		t.Errorf("primary scroll not mapped from scrollTop/scrollHeight/viewportHeight: %+v", s)
	}
	if s.ExtentSecondary != 300 || s.ViewportSecondary != 100 {
		t.Errorf("secondary scroll not mapped from scrollWidth/viewportWidth: %+v", s)
	}
	if off, ok := s.Offset(5); !ok || off != 40 {
		t.Errorf("Offset(5) = %v, %v", off, ok)
	}
	if _, ok := s.Offset(7); ok {
		t.Error("Offset outside the visible range should fail")
	}
	if n, _ := s.LineLength(3); n != 3 {
		t.Errorf("LineLength = %d", n)
	}
	if len(s.Cursors()) != 1 {
		t.Errorf("cursors not copied")
	}
}

func TestCaptureIsDefensiveCopy(t *testing.T) {
	src := newFakeSource(1, 2, 20)
	s, err := Capture(src)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}

	src.vd.RelativeOffsets[0] = 999
	src.lines[1].Tokens[0].StyleClass = "mutated"

	if off, _ := s.Offset(1); off != 0 {
		t.Errorf("snapshot offsets changed with engine: %v", off)
	}
	d, _ := s.Line(1)
	if d.Tokens[0].StyleClass != "k" {
		t.Errorf("snapshot tokens changed with engine: %q", d.Tokens[0].StyleClass)
	}

	d.Tokens[0].StyleClass = "local"
	again, _ := s.Line(1)
	if again.Tokens[0].StyleClass != "k" {
		t.Error("Line should return a copy")
	}

	offs := s.Offsets()
	offs[1] = -1
	if off, _ := s.Offset(2); off != 20 {
		t.Error("Offsets should return a copy")
	}
}

func TestCaptureErrors(t *testing.T) {
	src := newFakeSource(1, 3, 20)
	src.vd.RelativeOffsets = src.vd.RelativeOffsets[:2]
	if _, err := Capture(src); !errors.Is(err, ErrOffsetsMismatch) {
		t.Errorf("expected ErrOffsetsMismatch, got %v", err)
	}

	src = newFakeSource(1, 3, 20)
	delete(src.lines, 2)
	if _, err := Capture(src); !errors.Is(err, ErrLineDataMissing) {
		t.Errorf("expected ErrLineDataMissing, got %v", err)
	}

	src = newFakeSource(1, 3, 20)
	src.vd.StartLine = 0
	if _, err := Capture(src); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
}

func TestCaptureEmptyDocument(t *testing.T) {
	src := newFakeSource(1, 1, 20)
	src.vd.LineCount = 0
	s, err := Capture(src)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if !s.IsEmpty() || s.Contains(1) {
		t.Error("empty document should produce an empty snapshot")
	}
}

func TestProviderBeforeFirstRender(t *testing.T) {
	p := NewProvider(newFakeSource(1, 5, 20))
	if _, ok := p.Current(); ok {
		t.Error("provider should report no snapshot before the first render")
	}
}

func TestProviderPublishesOnRender(t *testing.T) {
	src := newFakeSource(1, 5, 20)
	p := NewProvider(src)

	var got []Snapshot
	dispose := p.Subscribe(func(s Snapshot) { got = append(got, s) })

	src.fireRender()
	if len(got) != 1 {
		t.Fatalf("expected 1 publication, got %d", len(got))
	}
	if s, ok := p.Current(); !ok || s.Last != 5 {
		t.Errorf("Current = %+v, %v", s, ok)
	}

	dispose()
	dispose()
	src.fireRender()
	if len(got) != 1 {
		t.Errorf("disposed subscriber should not be called, got %d", len(got))
	}
}

func TestProviderKeepsLastGoodSnapshot(t *testing.T) {
	src := newFakeSource(1, 5, 20)
	p := NewProvider(src)
	if err := p.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	delete(src.lines, 3)
	if err := p.Refresh(); err == nil {
		t.Fatal("expected refresh error")
	}
	if p.Err() == nil {
		t.Error("Err should report the failed refresh")
	}
	if s, ok := p.Current(); !ok || s.VisibleCount() != 5 {
		t.Error("previous snapshot should remain current")
	}
}

func TestProviderClose(t *testing.T) {
	src := newFakeSource(1, 5, 20)
	p := NewProvider(src)
	p.Close()
	if src.render != nil || src.layout != nil {
		t.Error("Close should dispose engine subscriptions")
	}
}

func TestRangeNormalize(t *testing.T) {
	r := Range{Start: Position{Line: 5, Column: 3}, End: Position{Line: 2, Column: 8}}
	n := r.Normalize()
	if n.Start.Line != 2 || n.End.Line != 5 {
		t.Errorf("Normalize = %+v", n)
	}
	if !r.Contains(Position{Line: 3, Column: 1}) {
		t.Error("Contains should use the normalized range")
	}
	if r.Contains(Position{Line: 5, Column: 3}) {
		t.Error("End should be exclusive")
	}
}

func TestUTF16Len(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"abc", 3},
		{"縦書き", 3},
		{"a😀", 3},
	}
	for _, tt := range tests {
		if got := UTF16Len(tt.in); got != tt.want {
			t.Errorf("UTF16Len(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
