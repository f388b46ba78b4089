package fragment

import (
	"strings"
	"testing"

	"github.com/dshills/tateview/internal/renderer/snapshot"
)

type docSource struct {
	lines []string
	first int
	last  int
	sels  []snapshot.Range
	decos []snapshot.Decoration
}

func (d *docSource) ViewportData() snapshot.ViewportData {
	vd := snapshot.ViewportData{
		StartLine:  d.first,
		EndLine:    d.last,
		LineHeight: 20,
		LineCount:  len(d.lines),
	}
	for l := d.first; l <= d.last; l++ {
		vd.RelativeOffsets = append(vd.RelativeOffsets, float64(l-d.first)*20)
	}
	return vd
}

func (d *docSource) GetLineRenderingData(line int) (snapshot.LineData, error) {
	return snapshot.LineData{Content: d.lines[line-1]}, nil
}

func (d *docSource) ModelToView(p snapshot.Position) snapshot.Position { return p }
func (d *docSource) ViewToModel(p snapshot.Position) snapshot.Position { return p }
func (d *docSource) Cursors() []snapshot.Position                      { return nil }
func (d *docSource) Selections() []snapshot.Range                      { return d.sels }
func (d *docSource) Decorations() []snapshot.Decoration                { return d.decos }

func newDoc(t *testing.T, first, last int, sels ...snapshot.Range) snapshot.Snapshot {
	t.Helper()
	src := &docSource{first: first, last: last, sels: sels}
	for i := range 20 {
		src.lines = append(src.lines, strings.Repeat("x", i+1))
	}
	snap, err := snapshot.Capture(src)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	return snap
}

func pos(line, col int) snapshot.Position {
	return snapshot.Position{Line: line, Column: col}
}

func TestFragmentMultiLine(t *testing.T) {
	snap := newDoc(t, 1, 10)
	frags := Fragment(snapshot.Range{Start: pos(3, 2), End: pos(6, 4)}, snap)

	if len(frags) != 4 {
		t.Fatalf("expected 4 fragments, got %d", len(frags))
	}
	want := []PixelFragment{
		{Line: 3, StartColumn: 2, EndColumn: 4, Offset: 40, Size: 20, Continues: true},
		{Line: 4, StartColumn: 1, EndColumn: 5, Offset: 60, Size: 20, Continues: true},
		{Line: 5, StartColumn: 1, EndColumn: 6, Offset: 80, Size: 20, Continues: true},
		{Line: 6, StartColumn: 1, EndColumn: 4, Offset: 100, Size: 20},
	}
	for i := range want {
		if frags[i] != want[i] {
			t.Errorf("fragment %d = %+v, want %+v", i, frags[i], want[i])
		}
	}
}

func TestFragmentSingleLine(t *testing.T) {
	snap := newDoc(t, 1, 10)
	frags := Fragment(snapshot.Range{Start: pos(2, 1), End: pos(2, 3)}, snap)
	if len(frags) != 1 || frags[0].StartColumn != 1 || frags[0].EndColumn != 3 {
		t.Errorf("got %+v", frags)
	}
}

func TestFragmentEndsAtLineStart(t *testing.T) {
	snap := newDoc(t, 1, 10)
	frags := Fragment(snapshot.Range{Start: pos(1, 1), End: pos(3, 1)}, snap)
	if len(frags) != 3 {
		t.Fatalf("expected 3 fragments, got %d", len(frags))
	}
	if !frags[0].Continues || !frags[1].Continues {
		t.Error("lines before the end line should continue past their break")
	}
	last := frags[2]
	if last.Continues || last.StartColumn != 1 || last.EndColumn != 1 || last.Width() != 0 {
		t.Errorf("last fragment = %+v, want an empty closing fragment", last)
	}
}

func TestFragmentReversedRange(t *testing.T) {
	snap := newDoc(t, 1, 10)
	fwd := Fragment(snapshot.Range{Start: pos(3, 2), End: pos(5, 1)}, snap)
	rev := Fragment(snapshot.Range{Start: pos(5, 1), End: pos(3, 2)}, snap)
	if len(fwd) != len(rev) {
		t.Fatalf("lengths differ: %d vs %d", len(fwd), len(rev))
	}
	for i := range fwd {
		if fwd[i] != rev[i] {
			t.Errorf("fragment %d differs: %+v vs %+v", i, fwd[i], rev[i])
		}
	}
}

func TestFragmentEmpty(t *testing.T) {
	snap := newDoc(t, 1, 10)
	if frags := Fragment(snapshot.Range{Start: pos(4, 2), End: pos(4, 2)}, snap); len(frags) != 0 {
		t.Errorf("empty range produced %d fragments", len(frags))
	}
	if frags := Fragment(snapshot.Range{Start: pos(1, 1), End: pos(2, 1)}, snapshot.Snapshot{}); frags != nil {
		t.Error("missing snapshot should produce nothing")
	}
}

func TestFragmentClipped(t *testing.T) {
	snap := newDoc(t, 5, 8)

	frags := Fragment(snapshot.Range{Start: pos(2, 2), End: pos(12, 1)}, snap)
	if len(frags) != 4 {
		t.Fatalf("expected 4 fragments, got %d", len(frags))
	}
	// Line 5 was not the start line, so it is interior.
	if frags[0].Line != 5 || frags[0].StartColumn != 1 || frags[0].EndColumn != 6 {
		t.Errorf("first fragment = %+v", frags[0])
	}
	if frags[0].Offset != 0 {
		t.Errorf("first fragment offset = %v", frags[0].Offset)
	}
	last := frags[len(frags)-1]
	if last.Line != 8 || last.EndColumn != 9 {
		t.Errorf("last fragment = %+v", last)
	}

	if frags := Fragment(snapshot.Range{Start: pos(1, 1), End: pos(3, 1)}, snap); len(frags) != 0 {
		t.Errorf("range above the viewport produced %d fragments", len(frags))
	}
}

func TestSelectionsAndDecorations(t *testing.T) {
	snap := newDoc(t, 1, 10,
		snapshot.Range{Start: pos(1, 1), End: pos(2, 2)},
		snapshot.Range{Start: pos(5, 1), End: pos(5, 3)},
	)
	frags := Selections(snap)
	if len(frags) != 3 {
		t.Fatalf("expected 3 fragments, got %d", len(frags))
	}
	if !frags[0].Primary || !frags[1].Primary || frags[2].Primary {
		t.Errorf("primary flags = %v %v %v", frags[0].Primary, frags[1].Primary, frags[2].Primary)
	}

	decos := Decorations([]snapshot.Decoration{
		{Range: snapshot.Range{Start: pos(7, 1), End: pos(8, 2)}, Class: "findMatch"},
	}, snap)
	if len(decos) != 2 || decos[0].Class != "findMatch" || decos[1].Class != "findMatch" {
		t.Errorf("decorations = %+v", decos)
	}
}

func TestMergeOverlapping(t *testing.T) {
	in := []snapshot.Range{
		{Start: pos(5, 1), End: pos(6, 1)},
		{Start: pos(1, 5), End: pos(1, 1)},
		{Start: pos(1, 3), End: pos(2, 1)},
		{Start: pos(6, 1), End: pos(6, 4)},
		{Start: pos(9, 9), End: pos(9, 9)},
	}
	got := MergeOverlapping(in)
	want := []snapshot.Range{
		{Start: pos(1, 1), End: pos(2, 1)},
		{Start: pos(5, 1), End: pos(6, 4)},
	}
	if len(got) != len(want) {
		t.Fatalf("got %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("range %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
