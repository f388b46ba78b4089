// Package orientation models the four writing modes and the axis roles they
// assign. Every geometry computation in the renderer consumes Roles or Keys;
// nothing else branches on Mode.
package orientation

import (
	"errors"
	"fmt"
	"strings"
)

// Mode is a writing mode.
type Mode uint8

const (
	// LeftToRightHorizontal is horizontal-tb: characters advance rightward, lines stack downward.
	LeftToRightHorizontal Mode = iota
	// LeftToRightVertical is vertical-lr: characters advance downward, lines stack rightward.
	LeftToRightVertical
	// RightToLeftHorizontal advances characters leftward, lines stack downward.
	RightToLeftHorizontal
	// RightToLeftVertical is vertical-rl: characters advance downward, lines stack leftward.
	RightToLeftVertical
)

// ErrUnknownMode is returned by ParseMode for unrecognized names.
var ErrUnknownMode = errors.New("unknown writing mode")

var modeNames = [...]string{
	LeftToRightHorizontal: "left-to-right-horizontal-writing",
	LeftToRightVertical:   "left-to-right-vertical-writing",
	RightToLeftHorizontal: "right-to-left-horizontal-writing",
	RightToLeftVertical:   "right-to-left-vertical-writing",
}

// Modes lists every writing mode.
func Modes() []Mode {
	return []Mode{LeftToRightHorizontal, LeftToRightVertical, RightToLeftHorizontal, RightToLeftVertical}
}

// String returns the mode name.
func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return modeNames[LeftToRightHorizontal]
}

// CSS returns the writing-mode property value for the mode.
func (m Mode) CSS() string {
	r := Roles(m)
	switch {
	case r.PrimaryIsHorizontal:
		return "horizontal-tb"
	case r.SecondarySignPositive:
		return "vertical-lr"
	default:
		return "vertical-rl"
	}
}

// ParseMode accepts the long mode names, the CSS values and short aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ltr", "ltr-h", "horizontal-tb", modeNames[LeftToRightHorizontal]:
		return LeftToRightHorizontal, nil
	case "ltr-v", "vertical-lr", modeNames[LeftToRightVertical]:
		return LeftToRightVertical, nil
	case "rtl", "rtl-h", modeNames[RightToLeftHorizontal]:
		return RightToLeftHorizontal, nil
	case "rtl-v", "vertical-rl", "tate", modeNames[RightToLeftVertical]:
		return RightToLeftVertical, nil
	}
	return LeftToRightHorizontal, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// AxisRoles describes how a mode maps its two logical axes onto the screen.
// The primary axis is the one characters advance along; the secondary axis is
// the one successive lines stack along.
type AxisRoles struct {
	PrimaryIsHorizontal   bool
	PrimarySignPositive   bool
	SecondarySignPositive bool
}

// Roles returns the axis roles for a mode.
func Roles(m Mode) AxisRoles {
	switch m {
	case LeftToRightVertical:
		return AxisRoles{PrimaryIsHorizontal: false, PrimarySignPositive: true, SecondarySignPositive: true}
	case RightToLeftHorizontal:
		return AxisRoles{PrimaryIsHorizontal: true, PrimarySignPositive: false, SecondarySignPositive: true}
	case RightToLeftVertical:
		return AxisRoles{PrimaryIsHorizontal: false, PrimarySignPositive: true, SecondarySignPositive: false}
	default:
		return AxisRoles{PrimaryIsHorizontal: true, PrimarySignPositive: true, SecondarySignPositive: true}
	}
}

// SecondaryIsHorizontal reports whether lines stack along the x axis.
func (r AxisRoles) SecondaryIsHorizontal() bool {
	return !r.PrimaryIsHorizontal
}

// Point is a physical surface coordinate in pixels.
type Point struct {
	X, Y float64
}

// AxisPoint is a coordinate in logical axes: Advance runs along the primary
// axis from the start edge of a line, Stack runs along the secondary axis from
// the edge where the first line sits.
type AxisPoint struct {
	Advance float64
	Stack   float64
}

// Extent is the physical size of a surface region.
type Extent struct {
	Width, Height float64
}

// Primary returns the extent along the primary axis.
func (r AxisRoles) Primary(e Extent) float64 {
	if r.PrimaryIsHorizontal {
		return e.Width
	}
	return e.Height
}

// Secondary returns the extent along the secondary axis.
func (r AxisRoles) Secondary(e Extent) float64 {
	if r.PrimaryIsHorizontal {
		return e.Height
	}
	return e.Width
}

// ToAxis converts a point local to a region of the given extent into logical axes.
func (r AxisRoles) ToAxis(p Point, e Extent) AxisPoint {
	h, v := p.X, p.Y
	if r.PrimaryIsHorizontal {
		if !r.PrimarySignPositive {
			h = e.Width - h
		}
		if !r.SecondarySignPositive {
			v = e.Height - v
		}
		return AxisPoint{Advance: h, Stack: v}
	}
	if !r.PrimarySignPositive {
		v = e.Height - v
	}
	if !r.SecondarySignPositive {
		h = e.Width - h
	}
	return AxisPoint{Advance: v, Stack: h}
}

// ToPhysical is the inverse of ToAxis.
func (r AxisRoles) ToPhysical(a AxisPoint, e Extent) Point {
	if r.PrimaryIsHorizontal {
		x, y := a.Advance, a.Stack
		if !r.PrimarySignPositive {
			x = e.Width - x
		}
		if !r.SecondarySignPositive {
			y = e.Height - y
		}
		return Point{X: x, Y: y}
	}
	x, y := a.Stack, a.Advance
	if !r.PrimarySignPositive {
		y = e.Height - y
	}
	if !r.SecondarySignPositive {
		x = e.Width - x
	}
	return Point{X: x, Y: y}
}
