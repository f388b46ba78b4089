package orientation

// StyleKeys names the physical box properties each logical dimension maps to.
//
// Width is the key holding a line's advance extent, Height the key holding a
// line's thickness, Top the edge lines are offset from and Left the edge
// characters advance from.
type StyleKeys struct {
	Width  string
	Height string
	Top    string
	Left   string
}

// Keys derives the style keys from the axis roles.
func Keys(m Mode) StyleKeys {
	return Roles(m).Keys()
}

// Keys derives the style keys from the axis roles.
func (r AxisRoles) Keys() StyleKeys {
	if r.PrimaryIsHorizontal {
		k := StyleKeys{Width: "width", Height: "height", Top: "top", Left: "left"}
		if !r.PrimarySignPositive {
			k.Left = "right"
		}
		if !r.SecondarySignPositive {
			k.Top = "bottom"
		}
		return k
	}
	k := StyleKeys{Width: "height", Height: "width", Top: "left", Left: "top"}
	if !r.SecondarySignPositive {
		k.Top = "right"
	}
	if !r.PrimarySignPositive {
		k.Left = "bottom"
	}
	return k
}

// AxisRect is a rectangle in logical axes. A1 and S1 are exclusive.
type AxisRect struct {
	A0, A1 float64
	S0, S1 float64
}

// Physical returns the rectangle as a normalized physical rectangle
// (x0, y0, x1, y1) inside a region of the given extent.
func (r AxisRoles) Physical(a AxisRect, e Extent) (x0, y0, x1, y1 float64) {
	p0 := r.ToPhysical(AxisPoint{Advance: a.A0, Stack: a.S0}, e)
	p1 := r.ToPhysical(AxisPoint{Advance: a.A1, Stack: a.S1}, e)
	x0, x1 = p0.X, p1.X
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	y0, y1 = p0.Y, p1.Y
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return x0, y0, x1, y1
}
