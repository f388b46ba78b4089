// Package backend abstracts the cell display the view is presented on.
package backend

import "github.com/dshills/tateview/internal/renderer/core"

// CursorStyle defines how the text cursor appears.
type CursorStyle int

const (
	CursorBlock CursorStyle = iota
	CursorUnderline
	CursorBar
	CursorHidden
)

// EventType identifies the type of display event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventMouse
	EventResize
	EventFocus
	// EventInterrupt is a synthetic wakeup posted from another goroutine.
	EventInterrupt
)

// Event is a display event.
type Event struct {
	Type EventType

	// Key event fields
	Key  Key
	Rune rune
	Mod  ModMask

	// Mouse event fields
	MouseX, MouseY int
	MouseButton    MouseButton

	// Resize event fields
	Width, Height int

	// Focus event fields
	Focused bool

	// Interrupt payload
	Data any
}

// Key is a keyboard key.
type Key int

// Keys the viewer reacts to. Everything else arrives as KeyNone.
const (
	KeyNone Key = iota
	KeyRune     // Regular character (use Rune field)
	KeyEscape
	KeyEnter
	KeyTab
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyCtrlC
	KeyCtrlL
	KeyBackspace
)

// ModMask represents modifier key state.
type ModMask int

const (
	ModNone  ModMask = 0
	ModShift ModMask = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Has returns true if the mask contains the given modifier.
func (m ModMask) Has(mod ModMask) bool {
	return m&mod != 0
}

// MouseButton is the button state carried by a mouse event. A motion event
// with a held button repeats that button; MouseNone after a press is the
// release.
type MouseButton int

const (
	MouseNone MouseButton = iota
	MouseLeft
	MouseMiddle
	MouseRight
	MouseWheelUp
	MouseWheelDown
	MouseWheelLeft
	MouseWheelRight
)

// IsWheel reports whether the button is a wheel notch.
func (b MouseButton) IsWheel() bool {
	return b >= MouseWheelUp && b <= MouseWheelRight
}

// Backend is a cell display.
type Backend interface {
	// Init initializes the backend. Must be called before any other method.
	Init() error

	// Shutdown releases the display and restores terminal state.
	Shutdown()

	// Size returns the display dimensions in cells.
	Size() (width, height int)

	// OnResize registers a callback for resize events.
	OnResize(callback func(width, height int))

	// SetCell sets a single cell. Positions outside the display are ignored.
	SetCell(x, y int, cell core.Cell)

	// GetCell returns the cell at a position, or an empty cell outside the display.
	GetCell(x, y int) core.Cell

	// Fill fills a rectangular region with the given cell.
	Fill(rect core.ScreenRect, cell core.Cell)

	// Clear clears the display with the default style.
	Clear()

	// Show flushes pending changes to the display.
	Show()

	// ShowCursor positions and displays the cursor.
	ShowCursor(x, y int)

	// HideCursor hides the cursor.
	HideCursor()

	// SetCursorStyle changes the cursor appearance.
	SetCursorStyle(style CursorStyle)

	// PollEvent blocks until the next event.
	PollEvent() Event

	// PostEvent queues a synthetic event.
	PostEvent(event Event)

	// HasTrueColor returns true if the backend supports 24-bit color.
	HasTrueColor() bool

	// EnableMouse enables mouse reporting, including motion while a button is held.
	EnableMouse()

	// DisableMouse disables mouse reporting.
	DisableMouse()
}

// NullBackend is an in-memory backend for tests and headless rendering.
type NullBackend struct {
	width, height int
	cells         [][]core.Cell
	cursorX       int
	cursorY       int
	cursorVisible bool
	cursorStyle   CursorStyle
	mouse         bool
	shows         int
	resizeHandler func(width, height int)
	events        chan Event
}

// NewNullBackend creates a null backend with the given dimensions.
func NewNullBackend(width, height int) *NullBackend {
	return &NullBackend{
		width:  width,
		height: height,
		events: make(chan Event, 100),
	}
}

func (b *NullBackend) Init() error {
	b.cells = blankRows(b.width, b.height)
	return nil
}

func (b *NullBackend) Shutdown() {}

func (b *NullBackend) Size() (int, int) {
	return b.width, b.height
}

func (b *NullBackend) OnResize(callback func(width, height int)) {
	b.resizeHandler = callback
}

func (b *NullBackend) SetCell(x, y int, cell core.Cell) {
	if b.inside(x, y) {
		b.cells[y][x] = cell
	}
}

func (b *NullBackend) GetCell(x, y int) core.Cell {
	if b.inside(x, y) {
		return b.cells[y][x]
	}
	return core.EmptyCell()
}

func (b *NullBackend) Fill(rect core.ScreenRect, cell core.Cell) {
	for y := rect.Top; y < rect.Bottom; y++ {
		for x := rect.Left; x < rect.Right; x++ {
			b.SetCell(x, y, cell)
		}
	}
}

func (b *NullBackend) Clear() {
	b.cells = blankRows(b.width, b.height)
}

func (b *NullBackend) Show() { b.shows++ }

func (b *NullBackend) ShowCursor(x, y int) {
	b.cursorX = x
	b.cursorY = y
	b.cursorVisible = true
}

func (b *NullBackend) HideCursor() {
	b.cursorVisible = false
}

func (b *NullBackend) SetCursorStyle(style CursorStyle) {
	b.cursorStyle = style
}

func (b *NullBackend) PollEvent() Event {
	return <-b.events
}

func (b *NullBackend) PostEvent(event Event) {
	select {
	case b.events <- event:
	default:
		// Dropped when the queue is full; tests never block on it.
	}
}

func (b *NullBackend) HasTrueColor() bool { return true }
func (b *NullBackend) EnableMouse()       { b.mouse = true }
func (b *NullBackend) DisableMouse()      { b.mouse = false }

// CursorPosition returns the cursor position and visibility.
func (b *NullBackend) CursorPosition() (x, y int, visible bool) {
	return b.cursorX, b.cursorY, b.cursorVisible
}

// CursorStyleValue returns the current cursor style.
func (b *NullBackend) CursorStyleValue() CursorStyle {
	return b.cursorStyle
}

// MouseEnabled reports whether mouse reporting is on.
func (b *NullBackend) MouseEnabled() bool {
	return b.mouse
}

// ShowCount returns how many times Show was called.
func (b *NullBackend) ShowCount() int {
	return b.shows
}

// Row returns the runes of row y, with continuation cells skipped.
func (b *NullBackend) Row(y int) string {
	if y < 0 || y >= b.height {
		return ""
	}
	out := make([]rune, 0, b.width)
	for _, c := range b.cells[y] {
		if c.IsContinuation() {
			continue
		}
		out = append(out, c.Rune)
	}
	return string(out)
}

// Resize simulates a display resize.
func (b *NullBackend) Resize(width, height int) {
	b.width = width
	b.height = height
	b.cells = blankRows(width, height)
	if b.resizeHandler != nil {
		b.resizeHandler(width, height)
	}
}

func (b *NullBackend) inside(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height && y < len(b.cells)
}

func blankRows(width, height int) [][]core.Cell {
	rows := make([][]core.Cell, height)
	for y := range rows {
		rows[y] = make([]core.Cell, width)
		for x := range rows[y] {
			rows[y][x] = core.EmptyCell()
		}
	}
	return rows
}
