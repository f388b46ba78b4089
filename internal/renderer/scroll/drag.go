package scroll

import (
	"sync"

	"github.com/dshills/tateview/internal/renderer/orientation"
)

// DragState is the state of a drag gesture.
type DragState uint8

const (
	// DragIdle means no gesture is active.
	DragIdle DragState = iota
	// DragDragging means pointer capture is held.
	DragDragging
)

func (s DragState) String() string {
	if s == DragDragging {
		return "dragging"
	}
	return "idle"
}

// MoveFunc handles a pointer move in surface coordinates.
type MoveFunc func(p orientation.Point)

// Drag is the Idle -> Dragging -> Idle gesture machine. Entering Dragging
// runs acquire; every path back to Idle runs release exactly once.
type Drag struct {
	mu      sync.Mutex
	state   DragState
	move    MoveFunc
	acquire func()
	release func()
}

// NewDrag creates a drag machine. acquire and release may be nil.
func NewDrag(acquire, release func()) *Drag {
	return &Drag{acquire: acquire, release: release}
}

// State returns the current state.
func (d *Drag) State() DragState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Active reports whether a drag is in progress.
func (d *Drag) Active() bool {
	return d.State() == DragDragging
}

// Begin enters Dragging with move as the handler for the whole gesture.
// A gesture already in progress is ended first.
func (d *Drag) Begin(move MoveFunc) {
	d.End()

	d.mu.Lock()
	d.state = DragDragging
	d.move = move
	acquire := d.acquire
	d.mu.Unlock()

	if acquire != nil {
		acquire()
	}
}

// Move forwards a pointer move to the active gesture. It returns false when
// idle. If the handler panics the gesture is ended before the panic continues.
func (d *Drag) Move(p orientation.Point) bool {
	d.mu.Lock()
	move := d.move
	active := d.state == DragDragging
	d.mu.Unlock()

	if !active || move == nil {
		return false
	}

	ok := false
	defer func() {
		if !ok {
			d.End()
		}
	}()
	move(p)
	ok = true
	return true
}

// End returns to Idle on pointer release.
func (d *Drag) End() {
	d.mu.Lock()
	if d.state != DragDragging {
		d.mu.Unlock()
		return
	}
	d.state = DragIdle
	d.move = nil
	release := d.release
	d.mu.Unlock()

	if release != nil {
		release()
	}
}

// Cancel returns to Idle when the gesture is interrupted by focus loss or the
// pointer leaving the surface.
func (d *Drag) Cancel() {
	d.End()
}

// Close ends any gesture when the owner is torn down.
func (d *Drag) Close() {
	d.End()
}

// SliderMove builds the handler for a slider drag. The track geometry and the
// pointer's grab offset within the slider are captured once; later layout
// changes do not affect the gesture. project maps a surface point onto the
// track axis.
func SliderMove(t Track, grab float64, project func(orientation.Point) float64, set func(float64)) MoveFunc {
	return func(p orientation.Point) {
		set(t.ScrollFor(project(p) - grab))
	}
}
