package snapshot

import (
	"sync"
)

// Provider owns the current snapshot. It refreshes on every engine render
// and layout notification and publishes the result to subscribers.
type Provider struct {
	mu      sync.RWMutex
	src     Source
	current Snapshot
	ok      bool
	lastErr error

	subs   map[uint64]func(Snapshot)
	nextID uint64

	disposers []Dispose
}

// NewProvider creates a provider over src. If src also implements Events the
// provider subscribes to its render and layout notifications.
func NewProvider(src Source) *Provider {
	p := &Provider{
		src:  src,
		subs: make(map[uint64]func(Snapshot)),
	}
	if ev, ok := src.(Events); ok {
		refresh := func() { _ = p.Refresh() }
		p.disposers = append(p.disposers,
			ev.OnDidRender(refresh),
			ev.OnDidLayoutChange(refresh),
		)
	}
	return p
}

// Refresh captures a new snapshot and publishes it. On failure the previous
// snapshot stays current so the next successful tick replaces it.
func (p *Provider) Refresh() error {
	snap, err := Capture(p.src)

	p.mu.Lock()
	if err != nil {
		p.lastErr = err
		p.mu.Unlock()
		return err
	}
	p.current = snap
	p.ok = true
	p.lastErr = nil
	subs := make([]func(Snapshot), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	return nil
}

// Current returns the latest snapshot. The boolean is false before the first
// successful capture; consumers must render nothing in that case.
func (p *Provider) Current() (Snapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current, p.ok
}

// Err returns the error from the most recent failed refresh, if any.
func (p *Provider) Err() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastErr
}

// Subscribe registers fn to receive every published snapshot.
func (p *Provider) Subscribe(fn func(Snapshot)) Dispose {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, id)
			p.mu.Unlock()
		})
	}
}

// Close detaches the provider from the engine and drops all subscribers.
func (p *Provider) Close() {
	p.mu.Lock()
	disposers := p.disposers
	p.disposers = nil
	p.subs = make(map[uint64]func(Snapshot))
	p.mu.Unlock()

	for _, d := range disposers {
		if d != nil {
			d()
		}
	}
}
