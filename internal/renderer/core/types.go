// Package core provides the cell-grid primitives shared by the painters and
// the display backends. It breaks import cycles between paint and backend.
package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Attribute represents text attributes (bold, italic, etc.).
type Attribute uint16

// Text attribute flags.
const (
	AttrNone      Attribute = 0
	AttrBold      Attribute = 1 << iota
	AttrDim                 // Faint/dim text
	AttrItalic              // Italic text
	AttrUnderline           // Underlined text
	AttrReverse             // Reverse video (swap fg/bg)
)

// Has returns true if the attribute set contains the given attribute.
func (a Attribute) Has(attr Attribute) bool {
	return a&attr != 0
}

// Color represents a color value.
// Supports true color (RGB) and terminal palette colors.
type Color struct {
	R, G, B uint8
	// If Indexed is true, R contains the palette index (0-255).
	Indexed bool
	// Default indicates this is the terminal's default color.
	Default bool
}

// ColorDefault represents the terminal's default color.
var ColorDefault = Color{Default: true}

// ColorFromRGB creates a true color from RGB components.
func ColorFromRGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// ColorFromIndex creates an indexed palette color.
func ColorFromIndex(index uint8) Color {
	return Color{R: index, Indexed: true}
}

// ColorFromHex parses "#rgb" or "#rrggbb".
func ColorFromHex(hex string) (Color, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("invalid hex color length: %q", hex)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// IsDefault returns true if this is the default/transparent color.
func (c Color) IsDefault() bool {
	return c.Default
}

// Equals returns true if two colors are equal.
func (c Color) Equals(other Color) bool {
	if c.Default || other.Default {
		return c.Default == other.Default
	}
	if c.Indexed != other.Indexed {
		return false
	}
	if c.Indexed {
		return c.R == other.R
	}
	return c.R == other.R && c.G == other.G && c.B == other.B
}

// String returns a string representation of the color.
func (c Color) String() string {
	switch {
	case c.Default:
		return "default"
	case c.Indexed:
		return fmt.Sprintf("idx(%d)", c.R)
	default:
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
}

// Style represents the visual style of a cell.
type Style struct {
	Foreground Color
	Background Color
	Attributes Attribute
}

// DefaultStyle returns the default terminal style.
func DefaultStyle() Style {
	return Style{Foreground: ColorDefault, Background: ColorDefault}
}

// WithForeground returns a new style with the given foreground color.
func (s Style) WithForeground(fg Color) Style {
	s.Foreground = fg
	return s
}

// WithBackground returns a new style with the given background color.
func (s Style) WithBackground(bg Color) Style {
	s.Background = bg
	return s
}

// Reverse returns a new style with reverse video attribute added.
func (s Style) Reverse() Style {
	s.Attributes |= AttrReverse
	return s
}

// Merge layers other on top of s. Default colors in other are transparent.
func (s Style) Merge(other Style) Style {
	result := s
	if !other.Foreground.IsDefault() {
		result.Foreground = other.Foreground
	}
	if !other.Background.IsDefault() {
		result.Background = other.Background
	}
	result.Attributes |= other.Attributes
	return result
}

// Equals returns true if two styles are identical.
func (s Style) Equals(other Style) bool {
	return s.Foreground.Equals(other.Foreground) &&
		s.Background.Equals(other.Background) &&
		s.Attributes == other.Attributes
}

// Cell represents a single terminal cell.
type Cell struct {
	// Rune is the character to display.
	Rune rune
	// Combining holds marks drawn over Rune in the same cell.
	Combining string
	// Width is the display width of this cell.
	Width int
	// Style is the visual style for this cell.
	Style Style
}

// EmptyCell returns an empty cell with default style.
func EmptyCell() Cell {
	return Cell{Rune: ' ', Width: 1, Style: DefaultStyle()}
}

// NewStyledCell creates a cell with the given rune and style.
func NewStyledCell(r rune, style Style) Cell {
	return Cell{Rune: r, Width: RuneWidth(r), Style: style}
}

// ContinuationCell returns the placeholder for the second half of a wide rune.
func ContinuationCell() Cell {
	return Cell{Rune: 0, Width: 0, Style: DefaultStyle()}
}

// IsContinuation reports whether the cell is covered by a wide rune to its left.
func (c Cell) IsContinuation() bool {
	return c.Width == 0 && c.Rune == 0
}

// Equals returns true if two cells render identically.
func (c Cell) Equals(other Cell) bool {
	return c.Rune == other.Rune && c.Combining == other.Combining &&
		c.Width == other.Width && c.Style.Equals(other.Style)
}

// WithStyle returns a new cell with the given style.
func (c Cell) WithStyle(style Style) Cell {
	c.Style = style
	return c
}

// RuneWidth returns the display width of a rune in cells.
func RuneWidth(r rune) int {
	if r < 32 || r == 0x7F {
		return 0
	}
	return runewidth.RuneWidth(r)
}

// ScreenRect represents a rectangular region of cells.
// Bottom and Right are exclusive.
type ScreenRect struct {
	Top, Left, Bottom, Right int
}

// RectFromSize creates a rectangle from position and size.
func RectFromSize(top, left, height, width int) ScreenRect {
	return ScreenRect{Top: top, Left: left, Bottom: top + height, Right: left + width}
}

// Width returns the width of the rectangle.
func (r ScreenRect) Width() int {
	return max(0, r.Right-r.Left)
}

// Height returns the height of the rectangle.
func (r ScreenRect) Height() int {
	return max(0, r.Bottom-r.Top)
}

// IsEmpty returns true if the rectangle has no area.
func (r ScreenRect) IsEmpty() bool {
	return r.Width() == 0 || r.Height() == 0
}

// Contains returns true if the cell lies inside the rectangle.
func (r ScreenRect) Contains(col, row int) bool {
	return row >= r.Top && row < r.Bottom && col >= r.Left && col < r.Right
}

// Intersection returns the overlapping area of two rectangles.
func (r ScreenRect) Intersection(other ScreenRect) ScreenRect {
	out := ScreenRect{
		Top:    max(r.Top, other.Top),
		Left:   max(r.Left, other.Left),
		Bottom: min(r.Bottom, other.Bottom),
		Right:  min(r.Right, other.Right),
	}
	if out.IsEmpty() {
		return ScreenRect{}
	}
	return out
}

// PixelRect is a rectangle in surface pixels. X1 and Y1 are exclusive.
type PixelRect struct {
	X0, Y0, X1, Y1 float64
}

// Normalize returns the rectangle with X0 <= X1 and Y0 <= Y1.
func (r PixelRect) Normalize() PixelRect {
	if r.X0 > r.X1 {
		r.X0, r.X1 = r.X1, r.X0
	}
	if r.Y0 > r.Y1 {
		r.Y0, r.Y1 = r.Y1, r.Y0
	}
	return r
}

// Width returns the horizontal extent of the rectangle.
func (r PixelRect) Width() float64 { return r.X1 - r.X0 }

// Height returns the vertical extent of the rectangle.
func (r PixelRect) Height() float64 { return r.Y1 - r.Y0 }

// Grid maps surface pixels onto terminal cells.
type Grid struct {
	CellWidth  float64
	CellHeight float64
}

// CellOf returns the cell containing the pixel.
func (g Grid) CellOf(x, y float64) (col, row int) {
	return int(math.Floor(x / g.CellWidth)), int(math.Floor(y / g.CellHeight))
}

// Cells returns the cells whose centers fall inside the pixel rectangle.
func (g Grid) Cells(r PixelRect) ScreenRect {
	r = r.Normalize()
	return ScreenRect{
		Left:   int(math.Ceil(r.X0/g.CellWidth - 0.5)),
		Right:  int(math.Ceil(r.X1/g.CellWidth - 0.5)),
		Top:    int(math.Ceil(r.Y0/g.CellHeight - 0.5)),
		Bottom: int(math.Ceil(r.Y1/g.CellHeight - 0.5)),
	}
}

// Pixels returns the pixel rectangle covered by the cells.
func (g Grid) Pixels(r ScreenRect) PixelRect {
	return PixelRect{
		X0: float64(r.Left) * g.CellWidth,
		Y0: float64(r.Top) * g.CellHeight,
		X1: float64(r.Right) * g.CellWidth,
		Y1: float64(r.Bottom) * g.CellHeight,
	}
}
