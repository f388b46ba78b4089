package coords

import (
	"fmt"
)

// HitTest returns the 1-based column under the advance coordinate x.
//
// Half a character width is added first so a pointer on a glyph's trailing
// half lands after it. Nodes are walked in order, accumulating columns, and
// the node containing x is bisected by measuring substrings. A coordinate past
// the last node returns the end-of-line column; one before the line start
// returns 1.
//
// The returned column is always usable. When the measurer fails, the error
// wraps ErrMeasurementUnavailable and the column is the nearest one known.
func HitTest(elem LineElement, x, charWidth float64, m Measurer) (int, error) {
	x += charWidth / 2
	if x < elem.Origin {
		return 1, nil
	}

	column := 1
	for i, node := range elem.Nodes {
		whole, err := m.Measure(elem, i, 0, node.Len)
		if err != nil {
			return column, fmt.Errorf("hit test line %d: %w", elem.Line, err)
		}
		if !whole.Contains(x) {
			column += node.Len
			continue
		}

		start, end := 0, node.Len
		for end-start > 1 {
			mid := (start + end) / 2
			sp, err := m.Measure(elem, i, start, mid)
			if err != nil {
				return column + start, fmt.Errorf("hit test line %d: %w", elem.Line, err)
			}
			if sp.Contains(x) {
				end = mid
			} else {
				start = mid
			}
		}
		return column + start, nil
	}
	return column, nil
}
