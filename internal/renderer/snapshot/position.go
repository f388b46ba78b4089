package snapshot

// Position is a 1-based document position. Column counts UTF-16 code units,
// matching the engine's indexing.
type Position struct {
	Line   int
	Column int
}

// Before reports whether p sorts strictly before other.
func (p Position) Before(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}

// Range is a document range. Start is the anchor, End the active end.
type Range struct {
	Start Position
	End   Position
}

// IsEmpty returns true if the range selects nothing.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// Normalize returns a range where Start is never after End.
func (r Range) Normalize() Range {
	if r.End.Before(r.Start) {
		return Range{Start: r.End, End: r.Start}
	}
	return r
}

// Contains returns true if the position is inside the range. End is exclusive.
func (r Range) Contains(p Position) bool {
	if r.IsEmpty() {
		return false
	}
	n := r.Normalize()
	return !p.Before(n.Start) && p.Before(n.End)
}

// LineRange returns the first and last lines the range touches.
func (r Range) LineRange() (startLine, endLine int) {
	n := r.Normalize()
	return n.Start.Line, n.End.Line
}

// Decoration is a styled document range, such as a search match.
type Decoration struct {
	Range Range
	Class string
}
