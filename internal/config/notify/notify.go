// Package notify delivers configuration change notifications.
//
// Observers subscribe to every change or to a section or setting path
// ("minimap" receives "minimap.scale"). A reload produces one ChangeSet
// per setting that changed, followed by a single ChangeReload that carries
// the new configuration.
package notify

import (
	"strings"
	"sync"
)

// ChangeType represents the type of configuration change.
type ChangeType int

const (
	// ChangeSet indicates a setting took a new value.
	ChangeSet ChangeType = iota

	// ChangeReload indicates the whole configuration was reloaded.
	ChangeReload
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeSet:
		return "set"
	case ChangeReload:
		return "reload"
	default:
		return "unknown"
	}
}

// Change represents a configuration change event.
type Change struct {
	// Path is the dot-separated path of the setting. Empty for reloads.
	Path string

	Type     ChangeType
	OldValue any
	NewValue any

	// Source identifies where the change came from, such as a file path.
	Source string
}

// Observer is called when configuration changes occur.
type Observer func(change Change)

// Subscription represents an active observer subscription.
type Subscription struct {
	id       uint64
	notifier *Notifier
	once     sync.Once
}

// Unsubscribe removes this subscription. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		if s.notifier != nil {
			s.notifier.unsubscribe(s.id)
		}
	})
}

type entry struct {
	path     string
	observer Observer
}

// Notifier manages configuration change subscriptions.
type Notifier struct {
	mu sync.RWMutex

	observers map[uint64]entry
	nextID    uint64

	async  bool
	buffer chan Change
	done   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithAsync delivers changes from a goroutine through a buffer of the
// given size, so Notify never runs observers on the caller's goroutine.
func WithAsync(bufferSize int) Option {
	return func(n *Notifier) {
		if bufferSize > 0 {
			n.async = true
			n.buffer = make(chan Change, bufferSize)
		}
	}
}

// New creates a new Notifier.
func New(opts ...Option) *Notifier {
	n := &Notifier{
		observers: make(map[uint64]entry),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.async {
		n.wg.Add(1)
		go n.processAsync()
	}
	return n
}

// Subscribe registers an observer for all changes.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	return n.SubscribePath("", observer)
}

// SubscribePath registers an observer for changes at or below path.
// Reloads reach every observer.
func (n *Notifier) SubscribePath(path string, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.observers[id] = entry{path: path, observer: observer}
	return &Subscription{id: id, notifier: n}
}

// Notify sends a change to all matching observers.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()
	closed := n.closed
	n.mu.RUnlock()
	if closed {
		return
	}

	if n.async {
		select {
		case n.buffer <- change:
		case <-n.done:
		}
		return
	}
	n.deliver(change)
}

// NotifySet is a convenience method for set changes.
func (n *Notifier) NotifySet(path string, oldValue, newValue any, source string) {
	n.Notify(Change{Path: path, Type: ChangeSet, OldValue: oldValue, NewValue: newValue, Source: source})
}

// NotifyReload is a convenience method for reload events.
func (n *Notifier) NotifyReload(oldValue, newValue any, source string) {
	n.Notify(Change{Type: ChangeReload, OldValue: oldValue, NewValue: newValue, Source: source})
}

// Close shuts down the notifier, delivering any buffered changes first.
// It is safe to call Close multiple times.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.mu.Unlock()

	close(n.done)
	n.wg.Wait()
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.observers, id)
}

// deliver calls matching observers outside the lock.
func (n *Notifier) deliver(change Change) {
	n.mu.RLock()
	var observers []Observer
	for _, e := range n.observers {
		if change.Type == ChangeReload || Matches(e.path, change.Path) {
			observers = append(observers, e.observer)
		}
	}
	n.mu.RUnlock()

	for _, obs := range observers {
		obs(change)
	}
}

func (n *Notifier) processAsync() {
	defer n.wg.Done()

	for {
		select {
		case change := <-n.buffer:
			n.deliver(change)
		case <-n.done:
			for {
				select {
				case change := <-n.buffer:
					n.deliver(change)
				default:
					return
				}
			}
		}
	}
}

// Matches reports whether a subscription to prefix receives a change at
// path: the paths are equal, prefix is empty, or path lies below prefix.
func Matches(prefix, path string) bool {
	if prefix == "" || prefix == path {
		return true
	}
	return strings.HasPrefix(path, prefix) && path[len(prefix)] == '.'
}
