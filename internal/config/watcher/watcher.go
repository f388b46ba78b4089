// Package watcher reports changes to configuration files for live reload.
//
// Files are watched through their parent directory so that editors which
// save by writing a temporary file and renaming it over the original keep
// being observed. Bursts of events for one file are debounced into a single
// Event.
package watcher

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrClosed is returned when watching with a closed Watcher.
var ErrClosed = errors.New("watcher closed")

// Event represents a file change event.
type Event struct {
	// Path is the absolute path to the changed file.
	Path string

	// Op is the operation that triggered the event.
	Op Operation

	// Time is when the last raw event of the burst arrived.
	Time time.Time
}

// Operation represents the type of file operation.
type Operation int

const (
	// OpWrite indicates the file was modified.
	OpWrite Operation = iota

	// OpCreate indicates the file was created, or renamed into place.
	OpCreate

	// OpRemove indicates the file was deleted.
	OpRemove

	// OpRename indicates the file was renamed away.
	OpRename
)

// String returns the operation name.
func (op Operation) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Handler is called when a file change is detected.
type Handler func(event Event)

// Watcher monitors files for changes.
type Watcher struct {
	mu sync.RWMutex

	fsw *fsnotify.Watcher

	// files holds the watched files; dirs counts watched files per directory.
	files map[string]bool
	dirs  map[string]int

	handlers []Handler
	onError  func(error)

	debounce  time.Duration
	pendingMu sync.Mutex
	pending   map[string]*pendingEvent

	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

type pendingEvent struct {
	op    Operation
	time  time.Time
	timer *time.Timer
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long a file must stay quiet before its event is
// delivered. Zero delivers every raw event immediately.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithErrorHandler receives errors reported by the underlying watcher.
func WithErrorHandler(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// New creates a watcher and starts its event loop.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		files:    make(map[string]bool),
		dirs:     make(map[string]int),
		debounce: 100 * time.Millisecond,
		pending:  make(map[string]*pendingEvent),
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.processLoop()
	return w, nil
}

// Watch adds a file to the watch list. The file need not exist yet, but
// its directory must.
func (w *Watcher) Watch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if w.files[absPath] {
		return nil
	}

	dir := filepath.Dir(absPath)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[absPath] = true
	return nil
}

// Unwatch removes a file from the watch list.
func (w *Watcher) Unwatch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if !w.files[absPath] {
		return nil
	}
	delete(w.files, absPath)

	dir := filepath.Dir(absPath)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		return w.fsw.Remove(dir)
	}
	return nil
}

// WatchedFiles returns the list of watched files.
func (w *Watcher) WatchedFiles() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	files := make([]string, 0, len(w.files))
	for path := range w.files {
		files = append(files, path)
	}
	return files
}

// OnChange registers a handler for file change events.
func (w *Watcher) OnChange(handler Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// Close stops the watcher. Pending debounced events are dropped.
// It is safe to call Close multiple times.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.wg.Wait()

	w.pendingMu.Lock()
	for path, p := range w.pending {
		p.timer.Stop()
		delete(w.pending, path)
	}
	w.pendingMu.Unlock()

	return w.fsw.Close()
}

func (w *Watcher) processLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case fsEvent, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFSEvent(fsEvent)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

func (w *Watcher) handleFSEvent(fsEvent fsnotify.Event) {
	op, ok := convertOp(fsEvent.Op)
	if !ok {
		return
	}

	path := filepath.Clean(fsEvent.Name)
	w.mu.RLock()
	watched := w.files[path]
	w.mu.RUnlock()
	if !watched {
		return
	}

	event := Event{Path: path, Op: op, Time: time.Now()}
	if w.debounce == 0 {
		w.emitEvent(event)
		return
	}
	w.queueEvent(event)
}

// convertOp maps an fsnotify operation onto the most significant
// Operation it carries. Chmod alone is not a change.
func convertOp(fsOp fsnotify.Op) (Operation, bool) {
	switch {
	case fsOp.Has(fsnotify.Remove):
		return OpRemove, true
	case fsOp.Has(fsnotify.Rename):
		return OpRename, true
	case fsOp.Has(fsnotify.Create):
		return OpCreate, true
	case fsOp.Has(fsnotify.Write):
		return OpWrite, true
	default:
		return 0, false
	}
}

// queueEvent folds event into the file's pending burst and restarts its
// quiet timer.
func (w *Watcher) queueEvent(event Event) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	p, exists := w.pending[event.Path]
	if !exists {
		path := event.Path
		p = &pendingEvent{op: event.Op}
		p.timer = time.AfterFunc(w.debounce, func() { w.flush(path) })
		w.pending[path] = p
	} else {
		p.op = coalesce(p.op, event.Op)
		p.timer.Reset(w.debounce)
	}
	p.time = event.Time
}

// coalesce combines the pending operation with a newer one:
// removal wins until the file comes back, a create survives later writes,
// and anything else takes the newer operation.
func coalesce(pending, next Operation) Operation {
	switch next {
	case OpWrite:
		return pending
	default:
		return next
	}
}

func (w *Watcher) flush(path string) {
	w.pendingMu.Lock()
	p, ok := w.pending[path]
	if ok {
		delete(w.pending, path)
	}
	w.pendingMu.Unlock()
	if !ok {
		return
	}

	w.mu.RLock()
	closed := w.closed
	w.mu.RUnlock()
	if closed {
		return
	}
	w.emitEvent(Event{Path: path, Op: p.op, Time: p.time})
}

// emitEvent calls all handlers with the event.
func (w *Watcher) emitEvent(event Event) {
	w.mu.RLock()
	handlers := make([]Handler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.RUnlock()

	for _, handler := range handlers {
		safeCallHandler(handler, event)
	}
}

// safeCallHandler keeps the watcher running when a handler panics.
func safeCallHandler(handler Handler, event Event) {
	defer func() {
		_ = recover()
	}()
	handler(event)
}
