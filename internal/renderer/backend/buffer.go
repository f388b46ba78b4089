package backend

import (
	"github.com/dshills/tateview/internal/renderer/core"
)

// ScreenBuffer is a double-buffered cell grid. Frames are painted into the
// back buffer; Flush sends only the cells that differ from the front buffer.
type ScreenBuffer struct {
	width, height int
	front         [][]core.Cell
	back          [][]core.Cell
	fullRedraw    bool
}

// NewScreenBuffer creates a screen buffer with the given dimensions.
func NewScreenBuffer(width, height int) *ScreenBuffer {
	sb := &ScreenBuffer{}
	sb.Resize(width, height)
	return sb
}

// Resize reallocates both buffers and forces a full redraw. Content is not
// preserved; the next frame repaints everything.
func (sb *ScreenBuffer) Resize(width, height int) {
	sb.width = max(0, width)
	sb.height = max(0, height)
	sb.front = blankRows(sb.width, sb.height)
	sb.back = blankRows(sb.width, sb.height)
	sb.fullRedraw = true
}

// Size returns the buffer dimensions.
func (sb *ScreenBuffer) Size() (width, height int) {
	return sb.width, sb.height
}

// SetCell sets a cell in the back buffer.
func (sb *ScreenBuffer) SetCell(x, y int, cell core.Cell) {
	if x < 0 || x >= sb.width || y < 0 || y >= sb.height {
		return
	}
	sb.back[y][x] = cell
}

// GetCell returns a cell from the back buffer.
func (sb *ScreenBuffer) GetCell(x, y int) core.Cell {
	if x < 0 || x >= sb.width || y < 0 || y >= sb.height {
		return core.EmptyCell()
	}
	return sb.back[y][x]
}

// Fill fills a rectangle of the back buffer.
func (sb *ScreenBuffer) Fill(rect core.ScreenRect, cell core.Cell) {
	rect = rect.Intersection(core.ScreenRect{Right: sb.width, Bottom: sb.height})
	for y := rect.Top; y < rect.Bottom; y++ {
		for x := rect.Left; x < rect.Right; x++ {
			sb.back[y][x] = cell
		}
	}
}

// Clear resets the back buffer to empty cells.
func (sb *ScreenBuffer) Clear() {
	sb.Fill(core.ScreenRect{Right: sb.width, Bottom: sb.height}, core.EmptyCell())
}

// DiffChange is one cell to send to the display.
type DiffChange struct {
	X, Y int
	Cell core.Cell
}

// ComputeDiff returns the cells that differ between back and front.
func (sb *ScreenBuffer) ComputeDiff() []DiffChange {
	var changes []DiffChange
	for y := range sb.height {
		for x := range sb.width {
			if sb.fullRedraw || !sb.back[y][x].Equals(sb.front[y][x]) {
				changes = append(changes, DiffChange{X: x, Y: y, Cell: sb.back[y][x]})
			}
		}
	}
	return changes
}

// Sync copies the back buffer to the front buffer.
func (sb *ScreenBuffer) Sync() {
	for y := range sb.height {
		copy(sb.front[y], sb.back[y])
	}
	sb.fullRedraw = false
}

// MarkFullRedraw forces every cell out on the next flush.
func (sb *ScreenBuffer) MarkFullRedraw() {
	sb.fullRedraw = true
}

// Flush sends the changed cells to b, shows them and syncs. It returns the
// number of cells written.
func (sb *ScreenBuffer) Flush(b Backend) int {
	changes := sb.ComputeDiff()
	for _, ch := range changes {
		b.SetCell(ch.X, ch.Y, ch.Cell)
	}
	sb.Sync()
	b.Show()
	return len(changes)
}
