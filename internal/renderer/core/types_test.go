package core

import (
	"testing"
)

func TestColorFromRGB(t *testing.T) {
	c := ColorFromRGB(255, 128, 64)

	if c.R != 255 || c.G != 128 || c.B != 64 {
		t.Errorf("unexpected components %v", c)
	}
	if c.Indexed {
		t.Error("RGB color should not be indexed")
	}
	if c.IsDefault() {
		t.Error("RGB color should not be default")
	}
}

func TestColorFromHex(t *testing.T) {
	tests := []struct {
		hex     string
		r, g, b uint8
		wantErr bool
	}{
		{"#FF8040", 255, 128, 64, false},
		{"ff8040", 255, 128, 64, false},
		{"#FFF", 255, 255, 255, false}, // Short form
		{"invalid", 0, 0, 0, true},
		{"#GGG", 0, 0, 0, true},
	}

	for _, tt := range tests {
		c, err := ColorFromHex(tt.hex)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ColorFromHex(%q): expected error", tt.hex)
			}
			continue
		}
		if err != nil {
			t.Errorf("ColorFromHex(%q): unexpected error %v", tt.hex, err)
			continue
		}
		if c.R != tt.r || c.G != tt.g || c.B != tt.b {
			t.Errorf("ColorFromHex(%q) = %v", tt.hex, c)
		}
	}
}

func TestColorEquals(t *testing.T) {
	if !ColorDefault.Equals(Color{Default: true}) {
		t.Error("default colors should be equal")
	}
	if ColorDefault.Equals(ColorFromRGB(0, 0, 0)) {
		t.Error("default should not equal black")
	}
	if !ColorFromIndex(3).Equals(ColorFromIndex(3)) {
		t.Error("same index should be equal")
	}
	if ColorFromIndex(3).Equals(ColorFromRGB(3, 0, 0)) {
		t.Error("indexed and RGB should differ")
	}
}

func TestStyleMerge(t *testing.T) {
	base := DefaultStyle().WithForeground(ColorFromRGB(1, 2, 3))
	over := DefaultStyle().WithBackground(ColorFromRGB(9, 9, 9))
	over.Attributes = AttrBold

	got := base.Merge(over)
	if !got.Foreground.Equals(ColorFromRGB(1, 2, 3)) {
		t.Errorf("foreground should be kept, got %v", got.Foreground)
	}
	if !got.Background.Equals(ColorFromRGB(9, 9, 9)) {
		t.Errorf("background should be layered, got %v", got.Background)
	}
	if !got.Attributes.Has(AttrBold) {
		t.Error("attributes should be combined")
	}
}

func TestRuneWidth(t *testing.T) {
	tests := []struct {
		r    rune
		want int
	}{
		{'a', 1},
		{'\t', 0},
		{0x7F, 0},
		{'日', 2},
		{'あ', 2},
	}
	for _, tt := range tests {
		if got := RuneWidth(tt.r); got != tt.want {
			t.Errorf("RuneWidth(%q) = %d, want %d", tt.r, got, tt.want)
		}
	}
}

func TestScreenRectIntersection(t *testing.T) {
	a := RectFromSize(0, 0, 10, 10)
	b := RectFromSize(5, 5, 10, 10)
	got := a.Intersection(b)
	if got != (ScreenRect{Top: 5, Left: 5, Bottom: 10, Right: 10}) {
		t.Errorf("unexpected intersection %+v", got)
	}
	if !a.Intersection(RectFromSize(20, 20, 1, 1)).IsEmpty() {
		t.Error("disjoint rectangles should not intersect")
	}
	if !a.Contains(9, 9) || a.Contains(10, 0) {
		t.Error("Contains should treat Bottom/Right as exclusive")
	}
}

func TestGridCells(t *testing.T) {
	g := Grid{CellWidth: 10, CellHeight: 20}

	tests := []struct {
		name string
		in   PixelRect
		want ScreenRect
	}{
		{"aligned", PixelRect{X0: 0, Y0: 0, X1: 30, Y1: 40}, ScreenRect{Top: 0, Left: 0, Bottom: 2, Right: 3}},
		{"center inclusion", PixelRect{X0: 4, Y0: 0, X1: 16, Y1: 20}, ScreenRect{Top: 0, Left: 0, Bottom: 1, Right: 2}},
		{"reversed", PixelRect{X0: 30, Y0: 40, X1: 0, Y1: 0}, ScreenRect{Top: 0, Left: 0, Bottom: 2, Right: 3}},
		{"sub-cell", PixelRect{X0: 6, Y0: 0, X1: 14, Y1: 20}, ScreenRect{Top: 0, Left: 1, Bottom: 1, Right: 1}},
	}
	for _, tt := range tests {
		if got := g.Cells(tt.in); got != tt.want {
			t.Errorf("%s: got %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func TestGridCellOf(t *testing.T) {
	g := Grid{CellWidth: 10, CellHeight: 20}
	col, row := g.CellOf(25, 41)
	if col != 2 || row != 2 {
		t.Errorf("got (%d,%d)", col, row)
	}
	p := g.Pixels(ScreenRect{Top: 1, Left: 2, Bottom: 2, Right: 3})
	if p.X0 != 20 || p.Y0 != 20 || p.Width() != 10 || p.Height() != 20 {
		t.Errorf("unexpected pixels %+v", p)
	}
}
