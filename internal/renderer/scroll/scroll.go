// Package scroll owns the authoritative scroll state and the geometry that
// maps scrollbar and minimap gestures onto it.
package scroll

import (
	"sync"

	"github.com/dshills/tateview/internal/renderer/snapshot"
)

// WheelDamping divides wheel deltas before they are applied.
const WheelDamping = 4

// State is the scroll position. Primary runs across stacked lines (the
// engine's scrollTop); Secondary runs along the text (scrollLeft).
type State struct {
	Primary   float64
	Secondary float64
}

// Extents bound the scroll state.
type Extents struct {
	ExtentPrimary     float64
	ExtentSecondary   float64
	ViewportPrimary   float64
	ViewportSecondary float64
}

// MaxPrimary returns the largest valid primary offset.
func (e Extents) MaxPrimary() float64 {
	return max(0, e.ExtentPrimary-e.ViewportPrimary)
}

// MaxSecondary returns the largest valid secondary offset.
func (e Extents) MaxSecondary() float64 {
	return max(0, e.ExtentSecondary-e.ViewportSecondary)
}

// ExtentsOf reads the extents of a snapshot.
func ExtentsOf(snap snapshot.Snapshot) Extents {
	return Extents{
		ExtentPrimary:     snap.ExtentPrimary,
		ExtentSecondary:   snap.ExtentSecondary,
		ViewportPrimary:   snap.ViewportPrimary,
		ViewportSecondary: snap.ViewportSecondary,
	}
}

// Target receives every scroll write. The external engine implements it.
type Target interface {
	SetScrollTop(v float64)
	SetScrollLeft(v float64)
}

// Synchronizer is the single writer of State. Scrollbars, the minimap and the
// wheel all funnel through its setters; widgets read State and never keep
// their own copy.
type Synchronizer struct {
	mu      sync.RWMutex
	state   State
	extents Extents
	target  Target
	damping float64

	subs   map[uint64]func(State)
	nextID uint64
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithDamping overrides the wheel damping factor.
func WithDamping(d float64) Option {
	return func(s *Synchronizer) {
		if d > 0 {
			s.damping = d
		}
	}
}

// NewSynchronizer creates a synchronizer writing through to target.
func NewSynchronizer(target Target, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		target:  target,
		damping: WheelDamping,
		subs:    make(map[uint64]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current scroll state.
func (s *Synchronizer) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Extents returns the current bounds.
func (s *Synchronizer) Extents() Extents {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.extents
}

// Observe adopts the engine's reported state and bounds after a render.
// It does not write back to the engine.
func (s *Synchronizer) Observe(snap snapshot.Snapshot) {
	s.mu.Lock()
	s.extents = ExtentsOf(snap)
	next := State{
		Primary:   clamp(snap.ScrollPrimary, 0, s.extents.MaxPrimary()),
		Secondary: clamp(snap.ScrollSecondary, 0, s.extents.MaxSecondary()),
	}
	changed := next != s.state
	s.state = next
	subs := s.subscribers()
	s.mu.Unlock()

	if changed {
		notify(subs, next)
	}
}

// SetPrimary clamps v to [0, extent - viewport] and applies it.
func (s *Synchronizer) SetPrimary(v float64) {
	s.mu.Lock()
	v = clamp(v, 0, s.extents.MaxPrimary())
	if v == s.state.Primary {
		s.mu.Unlock()
		return
	}
	s.state.Primary = v
	st := s.state
	subs := s.subscribers()
	s.mu.Unlock()

	if s.target != nil {
		s.target.SetScrollTop(v)
	}
	notify(subs, st)
}

// SetSecondary clamps v to [0, extent - viewport] and applies it.
func (s *Synchronizer) SetSecondary(v float64) {
	s.mu.Lock()
	v = clamp(v, 0, s.extents.MaxSecondary())
	if v == s.state.Secondary {
		s.mu.Unlock()
		return
	}
	s.state.Secondary = v
	st := s.state
	subs := s.subscribers()
	s.mu.Unlock()

	if s.target != nil {
		s.target.SetScrollLeft(v)
	}
	notify(subs, st)
}

// ScrollBy moves both offsets by the given deltas.
func (s *Synchronizer) ScrollBy(dPrimary, dSecondary float64) {
	st := s.State()
	if dPrimary != 0 {
		s.SetPrimary(st.Primary + dPrimary)
	}
	if dSecondary != 0 {
		s.SetSecondary(st.Secondary + dSecondary)
	}
}

// SetDamping changes the wheel damping factor. Non-positive values are ignored.
func (s *Synchronizer) SetDamping(d float64) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	s.damping = d
	s.mu.Unlock()
}

// Wheel applies a damped wheel delta.
func (s *Synchronizer) Wheel(dPrimary, dSecondary float64) {
	s.mu.RLock()
	d := s.damping
	s.mu.RUnlock()
	s.ScrollBy(dPrimary/d, dSecondary/d)
}

// Subscribe registers fn to be called after every state change.
func (s *Synchronizer) Subscribe(fn func(State)) snapshot.Dispose {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// subscribers must be called with mu held.
func (s *Synchronizer) subscribers() []func(State) {
	out := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func(State), st State) {
	for _, fn := range subs {
		fn(st)
	}
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
