package engine

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-enry/go-enry/v2"

	"github.com/dshills/tateview/internal/logging"
	"github.com/dshills/tateview/internal/renderer/snapshot"
	"github.com/dshills/tateview/internal/renderer/virtual"
)

// Document is an in-memory text engine over the lines of one file.
//
// Scroll values follow the view: Top runs across lines, Left along them.
// Lines scroll past the end so the last line can reach the top of the
// viewport.
type Document struct {
	mu sync.RWMutex

	name     string
	language string
	lines    []string
	tokens   [][]snapshot.TokenRun

	geom     snapshot.Geometry
	maxCells int

	scrollTop  float64
	scrollLeft float64

	cursors     []snapshot.Position
	selections  []snapshot.Range
	decorations []snapshot.Decoration

	onRender listeners
	onLayout listeners
	onConfig listeners

	log *logging.Logger
}

// Option configures a Document.
type Option func(*Document)

// WithLanguage overrides language detection.
func WithLanguage(language string) Option {
	return func(d *Document) {
		d.language = language
	}
}

// WithLogger sets the document's logger.
func WithLogger(l *logging.Logger) Option {
	return func(d *Document) {
		if l != nil {
			d.log = l
		}
	}
}

// New creates a document from text. name is used for language detection.
func New(name, text string, opts ...Option) *Document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	d := &Document{
		name:    name,
		lines:   strings.Split(text, "\n"),
		cursors: []snapshot.Position{{Line: 1, Column: 1}},
		log:     logging.Null,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.language == "" {
		d.language = DetectLanguage(name, []byte(text))
	}
	d.log = d.log.WithComponent("engine").WithField("doc", name)
	d.tokenize()
	return d
}

// Open reads a file into a new document.
func Open(path string, opts ...Option) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if enry.IsBinary(data) {
		return nil, fmt.Errorf("%w: %s", ErrBinary, path)
	}
	return New(path, string(data), opts...), nil
}

func (d *Document) tokenize() {
	text := strings.Join(d.lines, "\n")
	lexer := LexerFor(d.language, d.name, text)
	d.tokens = Tokenize(lexer, d.lines)
	d.log.Debug("tokenized", "lines", len(d.lines), "lexer", lexer.Config().Name)
}

// Name returns the document name.
func (d *Document) Name() string {
	return d.name
}

// Language returns the detected or configured language.
func (d *Document) Language() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.language
}

// SetLanguage re-tokenizes the document for another language and notifies
// configuration listeners. An empty language detects it again.
func (d *Document) SetLanguage(language string) {
	d.mu.Lock()
	if language == "" {
		language = DetectLanguage(d.name, []byte(strings.Join(d.lines, "\n")))
	}
	d.language = language
	d.tokenize()
	d.mu.Unlock()

	d.onConfig.fire()
	d.onRender.fire()
}

// LineCount returns the number of lines.
func (d *Document) LineCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.lines)
}

// LineText returns the content of a 1-based line.
func (d *Document) LineText(line int) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if line < 1 || line > len(d.lines) {
		return "", fmt.Errorf("%w: %d of %d", ErrLineOutOfRange, line, len(d.lines))
	}
	return d.lines[line-1], nil
}

// Layout adopts the view's geometry, clamps the scroll position to it and
// notifies layout listeners.
func (d *Document) Layout(g snapshot.Geometry) {
	d.mu.Lock()
	d.geom = g
	d.maxCells = 0
	for _, l := range d.lines {
		d.maxCells = max(d.maxCells, d.cellsLocked(l))
	}
	d.scrollTop = clamp(d.scrollTop, 0, d.maxScrollTopLocked())
	d.scrollLeft = clamp(d.scrollLeft, 0, d.maxScrollLeftLocked())
	d.mu.Unlock()

	d.onLayout.fire()
}

func (d *Document) cellsLocked(text string) int {
	if d.geom.Cells != nil {
		return d.geom.Cells(text)
	}
	return utf8.RuneCountInString(text)
}

func (d *Document) scrollHeightLocked() float64 {
	lh := d.geom.LineHeight
	content := float64(len(d.lines)) * lh
	return max(content, content+d.geom.ViewportHeight-lh)
}

func (d *Document) scrollWidthLocked() float64 {
	return float64(d.maxCells) * d.geom.CharWidth
}

func (d *Document) maxScrollTopLocked() float64 {
	return max(0, d.scrollHeightLocked()-d.geom.ViewportHeight)
}

func (d *Document) maxScrollLeftLocked() float64 {
	return max(0, d.scrollWidthLocked()-d.geom.ViewportWidth)
}

// ViewportData reports the visible lines for the current geometry and
// scroll position. Before the first Layout the document reports no lines.
func (d *Document) ViewportData() snapshot.ViewportData {
	d.mu.RLock()
	defer d.mu.RUnlock()

	g := d.geom
	vd := snapshot.ViewportData{
		ScrollTop:      d.scrollTop,
		ScrollLeft:     d.scrollLeft,
		ScrollWidth:    d.scrollWidthLocked(),
		ViewportWidth:  g.ViewportWidth,
		ViewportHeight: g.ViewportHeight,
		LineHeight:     g.LineHeight,
	}
	if g.LineHeight <= 0 {
		return vd
	}
	vd.ScrollHeight = d.scrollHeightLocked()
	vd.LineCount = len(d.lines)

	w := virtual.Compute(virtual.Params{
		ItemCount:    len(d.lines),
		ItemSize:     g.LineHeight,
		ScrollOffset: d.scrollTop,
		ViewportSize: g.ViewportHeight,
	})
	vd.StartLine = w.StartIndex + 1
	vd.EndLine = w.EndIndex + 1
	vd.RelativeOffsets = make([]float64, 0, w.Len())
	for i := w.StartIndex; i <= w.EndIndex; i++ {
		off, _ := w.Offset(i)
		vd.RelativeOffsets = append(vd.RelativeOffsets, off-d.scrollTop)
	}
	return vd
}

// GetLineRenderingData returns a line's content and token runs.
func (d *Document) GetLineRenderingData(line int) (snapshot.LineData, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if line < 1 || line > len(d.lines) {
		return snapshot.LineData{}, fmt.Errorf("%w: %d of %d", ErrLineOutOfRange, line, len(d.lines))
	}
	return snapshot.LineData{
		Content: d.lines[line-1],
		Tokens:  d.tokens[line-1],
	}, nil
}

// ModelToView maps a model position to a view position. Lines never wrap,
// so this only clamps.
func (d *Document) ModelToView(pos snapshot.Position) snapshot.Position {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.clampLocked(pos)
}

// ViewToModel is the inverse of ModelToView.
func (d *Document) ViewToModel(pos snapshot.Position) snapshot.Position {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.clampLocked(pos)
}

func (d *Document) clampLocked(pos snapshot.Position) snapshot.Position {
	line := min(max(pos.Line, 1), len(d.lines))
	limit := snapshot.UTF16Len(d.lines[line-1]) + 1
	return snapshot.Position{Line: line, Column: min(max(pos.Column, 1), limit)}
}

// Cursors returns the cursor positions; the first is the primary cursor.
func (d *Document) Cursors() []snapshot.Position {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]snapshot.Position(nil), d.cursors...)
}

// Selections returns the selections; the first is the primary selection.
func (d *Document) Selections() []snapshot.Range {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]snapshot.Range(nil), d.selections...)
}

// Decorations returns the decorated ranges.
func (d *Document) Decorations() []snapshot.Decoration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]snapshot.Decoration(nil), d.decorations...)
}

// SetScrollTop scrolls across lines.
func (d *Document) SetScrollTop(v float64) {
	d.mu.Lock()
	v = clamp(v, 0, d.maxScrollTopLocked())
	changed := v != d.scrollTop
	d.scrollTop = v
	d.mu.Unlock()

	if changed {
		d.onRender.fire()
	}
}

// SetScrollLeft scrolls along lines.
func (d *Document) SetScrollLeft(v float64) {
	d.mu.Lock()
	v = clamp(v, 0, d.maxScrollLeftLocked())
	changed := v != d.scrollLeft
	d.scrollLeft = v
	d.mu.Unlock()

	if changed {
		d.onRender.fire()
	}
}

// SetPosition moves the primary cursor and clears the selections and any
// secondary cursors.
func (d *Document) SetPosition(pos snapshot.Position) {
	d.mu.Lock()
	d.cursors = []snapshot.Position{d.clampLocked(pos)}
	d.selections = nil
	d.mu.Unlock()

	d.onRender.fire()
}

// SetSelection selects r. The primary cursor moves to the active end.
func (d *Document) SetSelection(r snapshot.Range) {
	d.mu.Lock()
	r = snapshot.Range{Start: d.clampLocked(r.Start), End: d.clampLocked(r.End)}
	d.selections = []snapshot.Range{r}
	d.cursors = []snapshot.Position{r.End}
	d.mu.Unlock()

	d.onRender.fire()
}

// AddCursor adds a secondary cursor.
func (d *Document) AddCursor(pos snapshot.Position) {
	d.mu.Lock()
	d.cursors = append(d.cursors, d.clampLocked(pos))
	d.mu.Unlock()

	d.onRender.fire()
}

// SetDecorations replaces every decoration.
func (d *Document) SetDecorations(decos []snapshot.Decoration) {
	d.mu.Lock()
	d.decorations = append([]snapshot.Decoration(nil), decos...)
	d.mu.Unlock()

	d.onRender.fire()
}

// Find decorates every occurrence of query with the "findMatch" class and
// returns how many were found. Matches do not span lines.
func (d *Document) Find(query string) (int, error) {
	if query == "" {
		return 0, ErrEmptyQuery
	}
	qlen := snapshot.UTF16Len(query)

	d.mu.Lock()
	var decos []snapshot.Decoration
	for i, text := range d.lines {
		rest, col := text, 1
		for {
			at := strings.Index(rest, query)
			if at < 0 {
				break
			}
			col += snapshot.UTF16Len(rest[:at])
			decos = append(decos, snapshot.Decoration{
				Range: snapshot.Range{
					Start: snapshot.Position{Line: i + 1, Column: col},
					End:   snapshot.Position{Line: i + 1, Column: col + qlen},
				},
				Class: "findMatch",
			})
			col += qlen
			rest = rest[at+len(query):]
		}
	}
	d.decorations = decos
	d.mu.Unlock()

	d.log.Debug("find", "query", query, "matches", len(decos))
	d.onRender.fire()
	return len(decos), nil
}

// OnDidRender registers fn to run after every change that affects the view.
func (d *Document) OnDidRender(fn func()) snapshot.Dispose {
	return d.onRender.add(fn)
}

// OnDidLayoutChange registers fn to run after every Layout.
func (d *Document) OnDidLayoutChange(fn func()) snapshot.Dispose {
	return d.onLayout.add(fn)
}

// OnDidChangeConfiguration registers fn to run when the document's
// configuration changes.
func (d *Document) OnDidChangeConfiguration(fn func()) snapshot.Dispose {
	return d.onConfig.add(fn)
}

var (
	_ snapshot.Engine      = (*Document)(nil)
	_ snapshot.Decorated   = (*Document)(nil)
	_ snapshot.Searcher    = (*Document)(nil)
	_ snapshot.MultiCursor = (*Document)(nil)
	_ snapshot.Layouter    = (*Document)(nil)
)

// listeners is a set of notification callbacks.
type listeners struct {
	mu     sync.Mutex
	fns    map[uint64]func()
	nextID uint64
}

func (l *listeners) add(fn func()) snapshot.Dispose {
	l.mu.Lock()
	if l.fns == nil {
		l.fns = make(map[uint64]func())
	}
	id := l.nextID
	l.nextID++
	l.fns[id] = fn
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.fns, id)
			l.mu.Unlock()
		})
	}
}

func (l *listeners) fire() {
	l.mu.Lock()
	fns := make([]func(), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
