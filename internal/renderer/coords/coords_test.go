package coords

import (
	"errors"
	"strings"
	"testing"

	"github.com/dshills/tateview/internal/renderer/orientation"
	"github.com/dshills/tateview/internal/renderer/snapshot"
)

type stubSource struct {
	vd    snapshot.ViewportData
	lines map[int]snapshot.LineData
}

func (s *stubSource) ViewportData() snapshot.ViewportData { return s.vd }

func (s *stubSource) GetLineRenderingData(line int) (snapshot.LineData, error) {
	return s.lines[line], nil
}

func (s *stubSource) ModelToView(p snapshot.Position) snapshot.Position { return p }
func (s *stubSource) ViewToModel(p snapshot.Position) snapshot.Position { return p }

func testSnapshot(t *testing.T, first int, contents ...string) snapshot.Snapshot {
	t.Helper()
	src := &stubSource{lines: make(map[int]snapshot.LineData)}
	src.vd = snapshot.ViewportData{
		StartLine:      first,
		EndLine:        first + len(contents) - 1,
		LineHeight:     20,
		LineCount:      first + len(contents) + 10,
		ViewportHeight: 200,
		ViewportWidth:  300,
	}
	for i, c := range contents {
		src.vd.RelativeOffsets = append(src.vd.RelativeOffsets, float64(i*20))
		src.lines[first+i] = snapshot.LineData{Content: c}
	}
	snap, err := snapshot.Capture(src)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	return snap
}

func monoConverter() Converter {
	return Converter{Measurer: MonospaceMeasurer{CharWidth: 10, TabSize: 4}, CharWidth: 10}
}

func TestLineOffset(t *testing.T) {
	snap := testSnapshot(t, 5, "a", "b", "c")

	off, err := LineOffset(snapshot.Position{Line: 6, Column: 1}, snap)
	if err != nil || off != 20 {
		t.Errorf("LineOffset = %v, %v", off, err)
	}

	_, err = LineOffset(snapshot.Position{Line: 9, Column: 1}, snap)
	if !errors.Is(err, ErrOutOfViewport) {
		t.Fatalf("expected ErrOutOfViewport, got %v", err)
	}
	var oov *OutOfViewportError
	if !errors.As(err, &oov) || oov.Line != 9 || oov.First != 5 || oov.Last != 7 {
		t.Errorf("unexpected error detail %+v", oov)
	}
}

func TestRoundTrip(t *testing.T) {
	snap := testSnapshot(t, 1, "hello world", "", "func main() {}")
	c := monoConverter()

	for line := snap.First; line <= snap.Last; line++ {
		n, _ := snap.LineLength(line)
		for col := 1; col <= n+1; col++ {
			pos := snapshot.Position{Line: line, Column: col}
			p, err := c.ModelToPixel(pos, snap)
			if err != nil {
				t.Fatalf("ModelToPixel(%+v): %v", pos, err)
			}
			got, err := c.PixelToPosition(p, snap)
			if err != nil {
				t.Fatalf("PixelToPosition(%+v): %v", p, err)
			}
			if got != pos {
				t.Errorf("round trip %+v -> %+v -> %+v", pos, p, got)
			}
		}
	}
}

func TestRoundTripWithTokens(t *testing.T) {
	data := snapshot.LineData{
		Content: "let x = 42;",
		Tokens: []snapshot.TokenRun{
			{EndOffset: 3, StyleClass: "kd"},
			{EndOffset: 4, StyleClass: "w"},
			{EndOffset: 5, StyleClass: "n"},
			{EndOffset: 8, StyleClass: "o"},
			{EndOffset: 10, StyleClass: "mi"},
		},
	}
	elem := NewLineElement(1, data, 0)
	if len(elem.Nodes) != 6 {
		t.Fatalf("expected 6 nodes (5 tokens + tail), got %d", len(elem.Nodes))
	}
	if elem.Text() != data.Content {
		t.Errorf("nodes do not reassemble the line: %q", elem.Text())
	}

	c := monoConverter()
	for col := 1; col <= elem.Len()+1; col++ {
		adv, err := c.Advance(elem, col)
		if err != nil {
			t.Fatalf("Advance(%d): %v", col, err)
		}
		got, err := HitTest(elem, adv, 10, c.Measurer)
		if err != nil {
			t.Fatalf("HitTest: %v", err)
		}
		if got != col {
			t.Errorf("column %d -> advance %v -> column %d", col, adv, got)
		}
	}
}

func TestHitTestBias(t *testing.T) {
	elem := NewLineElement(1, snapshot.LineData{Content: "abcdefghij"}, 0)
	m := MonospaceMeasurer{CharWidth: 10}

	tests := []struct {
		x    float64
		want int
	}{
		{0, 1},
		{4, 1},
		{5, 2},
		{52, 6},
		{99, 11},
		{500, 11},
		{-20, 1},
	}
	for _, tt := range tests {
		got, err := HitTest(elem, tt.x, 10, m)
		if err != nil {
			t.Errorf("HitTest(%v): %v", tt.x, err)
		}
		if got != tt.want {
			t.Errorf("HitTest(%v) = %d, want %d", tt.x, got, tt.want)
		}
	}
}

func TestHitTestRightToLeftVertical(t *testing.T) {
	roles := orientation.Roles(orientation.RightToLeftVertical)
	extent := orientation.Extent{Width: 300, Height: 200}

	// Characters advance down the y axis in vertical writing.
	a := roles.ToAxis(orientation.Point{X: 10, Y: 52}, extent)
	elem := NewLineElement(1, snapshot.LineData{Content: "縦書きの文章です"}, 0)

	got, err := HitTest(elem, a.Advance, 10, MonospaceMeasurer{CharWidth: 5})
	if err != nil {
		t.Fatalf("HitTest: %v", err)
	}
	// Wide glyphs occupy two 5px cells, so each character is 10px along the axis.
	if got != 6 {
		t.Errorf("column = %d, want 6", got)
	}
	if a.Stack != 290 {
		t.Errorf("stack = %v, want lines counted from the right edge", a.Stack)
	}
}

func TestHitTestWideAndSurrogates(t *testing.T) {
	// "a😀b": the emoji is two UTF-16 units and two cells.
	elem := NewLineElement(1, snapshot.LineData{Content: "a😀b"}, 0)
	m := MonospaceMeasurer{CharWidth: 10}
	if elem.Len() != 4 {
		t.Fatalf("Len = %d", elem.Len())
	}

	got, _ := HitTest(elem, 32, 10, m)
	if got != 4 {
		t.Errorf("click on b = column %d, want 4", got)
	}
}

type failingMeasurer struct {
	inner  Measurer
	failOn int
	calls  int
}

func (f *failingMeasurer) Measure(elem LineElement, node, start, end int) (Span, error) {
	f.calls++
	if f.calls >= f.failOn {
		return Span{}, ErrMeasurementUnavailable
	}
	return f.inner.Measure(elem, node, start, end)
}

func TestHitTestMeasurementUnavailable(t *testing.T) {
	data := snapshot.LineData{
		Content: "abcdefgh",
		Tokens:  []snapshot.TokenRun{{EndOffset: 4, StyleClass: "a"}, {EndOffset: 8, StyleClass: "b"}},
	}
	elem := NewLineElement(1, data, 0)
	m := &failingMeasurer{inner: MonospaceMeasurer{CharWidth: 10}, failOn: 2}

	got, err := HitTest(elem, 65, 10, m)
	if !errors.Is(err, ErrMeasurementUnavailable) {
		t.Fatalf("expected ErrMeasurementUnavailable, got %v", err)
	}
	// The first node was measured and skipped; the second failed.
	if got != 5 {
		t.Errorf("fallback column = %d, want 5", got)
	}
}

func TestHitTestLogarithmicMeasures(t *testing.T) {
	content := make([]byte, 1024)
	for i := range content {
		content[i] = 'x'
	}
	elem := NewLineElement(1, snapshot.LineData{Content: string(content)}, 0)
	m := &failingMeasurer{inner: MonospaceMeasurer{CharWidth: 10}, failOn: 1 << 30}

	if _, err := HitTest(elem, 7003, 10, m); err != nil {
		t.Fatalf("HitTest: %v", err)
	}
	if m.calls > 12 {
		t.Errorf("expected O(log n) measurements, got %d", m.calls)
	}
}

func TestPixelToPositionClampsLines(t *testing.T) {
	snap := testSnapshot(t, 3, "abc", "def")
	c := monoConverter()

	pos, err := c.PixelToPosition(orientation.AxisPoint{Advance: 12, Stack: 500}, snap)
	if err != nil {
		t.Fatalf("PixelToPosition: %v", err)
	}
	if pos.Line != 4 || pos.Column != 2 {
		t.Errorf("got %+v", pos)
	}

	pos, _ = c.PixelToPosition(orientation.AxisPoint{Advance: 0, Stack: -5}, snap)
	if pos.Line != 3 {
		t.Errorf("got %+v", pos)
	}

	if _, err := c.PixelToPosition(orientation.AxisPoint{}, snapshot.Snapshot{}); !errors.Is(err, snapshot.ErrNoSnapshot) {
		t.Errorf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestAdvanceTabs(t *testing.T) {
	elem := NewLineElement(1, snapshot.LineData{Content: "\tx"}, 0)
	c := monoConverter()
	adv, err := c.Advance(elem, 2)
	if err != nil {
		t.Fatal(err)
	}
	if adv != 40 {
		t.Errorf("tab advance = %v, want 40", adv)
	}
}

func TestNewLineElementTokens(t *testing.T) {
	tests := []struct {
		name    string
		content string
		tokens  []snapshot.TokenRun
		want    []TextNode
	}{
		{
			name:    "untokenized",
			content: "hello",
			want:    []TextNode{{Text: "hello", Offset: 0, Len: 5}},
		},
		{
			name:    "tokens and tail",
			content: "var x",
			tokens:  []snapshot.TokenRun{{EndOffset: 3, StyleClass: "kw"}, {EndOffset: 4, StyleClass: "ws"}},
			want: []TextNode{
				{Text: "var", Class: "kw", Offset: 0, Len: 3},
				{Text: " ", Class: "ws", Offset: 3, Len: 1},
				{Text: "x", Offset: 4, Len: 1},
			},
		},
		{
			name:    "surrogate pair kept whole",
			content: "a😀b",
			tokens:  []snapshot.TokenRun{{EndOffset: 2, StyleClass: "p"}, {EndOffset: 4, StyleClass: "q"}},
			want: []TextNode{
				{Text: "a😀", Class: "p", Offset: 0, Len: 3},
				{Text: "b", Class: "q", Offset: 3, Len: 1},
			},
		},
		{
			name:    "token past the end",
			content: "ab",
			tokens:  []snapshot.TokenRun{{EndOffset: 1, StyleClass: "p"}, {EndOffset: 1, StyleClass: "dup"}, {EndOffset: 9, StyleClass: "q"}},
			want: []TextNode{
				{Text: "a", Class: "p", Offset: 0, Len: 1},
				{Text: "b", Class: "q", Offset: 1, Len: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			elem := NewLineElement(1, snapshot.LineData{Content: tt.content, Tokens: tt.tokens}, 0)
			if len(elem.Nodes) != len(tt.want) {
				t.Fatalf("nodes = %+v, want %+v", elem.Nodes, tt.want)
			}
			for i, want := range tt.want {
				if elem.Nodes[i] != want {
					t.Errorf("node %d = %+v, want %+v", i, elem.Nodes[i], want)
				}
			}
			if elem.Text() != tt.content {
				t.Errorf("Text = %q", elem.Text())
			}
		})
	}
}

func TestPreparedMeasureMatchesWalk(t *testing.T) {
	lines := []snapshot.LineData{
		{Content: "\tfoo\tbar"},
		{Content: "a😀b\t縦c", Tokens: []snapshot.TokenRun{{EndOffset: 3}, {EndOffset: 5}}},
		{Content: "x\t\ty", Tokens: []snapshot.TokenRun{{EndOffset: 1}, {EndOffset: 2}, {EndOffset: 4}}},
	}
	measurers := []MonospaceMeasurer{
		{CharWidth: 10, TabSize: 4},
		{CharWidth: 7, TabSize: 8},
		{CharWidth: 20, TabSize: 2, Uniform: true},
	}

	for _, m := range measurers {
		for _, data := range lines {
			plain := NewLineElement(1, data, -15)
			prepared := m.Prepare(plain)
			for i, node := range plain.Nodes {
				for start := 0; start <= node.Len; start++ {
					for end := start; end <= node.Len; end++ {
						want, err := m.Measure(plain, i, start, end)
						if err != nil {
							t.Fatal(err)
						}
						got, err := m.Measure(prepared, i, start, end)
						if err != nil {
							t.Fatal(err)
						}
						if got != want {
							t.Errorf("%+v %q node %d [%d,%d) = %+v, want %+v", m, data.Content, i, start, end, got, want)
						}
					}
				}
			}
		}
	}
}

func TestPreparedMeasureSkipsPrefix(t *testing.T) {
	data := snapshot.LineData{
		Content: "abcdefgh",
		Tokens:  []snapshot.TokenRun{{EndOffset: 4}, {EndOffset: 8}},
	}
	m := MonospaceMeasurer{CharWidth: 10, TabSize: 4}
	elem := m.Prepare(NewLineElement(1, data, 0))

	// Widen the first node's text behind the prepared columns. A measurer
	// that re-walked the prefix would now place the second node later.
	nodes := append([]TextNode(nil), elem.Nodes...)
	nodes[0].Text = "縦縦縦縦"
	elem.Nodes = nodes

	sp, err := m.Measure(elem, 1, 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	if sp.Start != 40 || sp.End != 60 {
		t.Errorf("span = %+v, want the prepared columns [40, 60)", sp)
	}

	other := MonospaceMeasurer{CharWidth: 10, TabSize: 8}
	if sp, _ := other.Measure(elem, 1, 0, 2); sp.Start != 80 {
		t.Errorf("a measurer with other settings must not reuse the columns, got %+v", sp)
	}
}

func TestConverterElementIsPrepared(t *testing.T) {
	snap := testSnapshot(t, 1, "\tlong line")
	elem, err := monoConverter().Element(1, snap)
	if err != nil {
		t.Fatal(err)
	}
	if len(elem.cols) != elem.Len()+1 || elem.cols[1] != 4 {
		t.Errorf("cols = %v", elem.cols)
	}
}

func BenchmarkHitTestLongLine(b *testing.B) {
	content := strings.Repeat("abc\tdef ", 2000)
	m := MonospaceMeasurer{CharWidth: 10, TabSize: 4}
	elem := m.Prepare(NewLineElement(1, snapshot.LineData{Content: content}, 0))
	b.ResetTimer()
	for range b.N {
		if _, err := HitTest(elem, 150000, 10, m); err != nil {
			b.Fatal(err)
		}
	}
}

func TestUniformMeasurer(t *testing.T) {
	elem := NewLineElement(1, snapshot.LineData{Content: "縦a書"}, 0)
	m := MonospaceMeasurer{CharWidth: 20, Uniform: true}

	sp, err := m.Measure(elem, 0, 0, 3)
	if err != nil {
		t.Fatal(err)
	}
	if sp.End != 60 {
		t.Errorf("uniform width = %v, want 60", sp.End)
	}
	if got := m.Cells("縦書き"); got != 3 {
		t.Errorf("Cells = %d, want 3", got)
	}
	if got := (MonospaceMeasurer{CharWidth: 20}).Cells("縦書き"); got != 6 {
		t.Errorf("proportional Cells = %d, want 6", got)
	}
}
