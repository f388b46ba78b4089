package snapshot

// TokenRun ends a run of same-styled text. EndOffset is the exclusive
// UTF-16 offset within the line where the run stops.
type TokenRun struct {
	EndOffset  int
	StyleClass string
}

// LineData is the rendering data the engine supplies for one line.
type LineData struct {
	Content string
	Tokens  []TokenRun
}

// clone returns a deep copy of the line data.
func (d LineData) clone() LineData {
	out := LineData{Content: d.Content}
	if d.Tokens != nil {
		out.Tokens = append([]TokenRun(nil), d.Tokens...)
	}
	return out
}

// ViewportData is the layout the engine reports after each render.
//
// The engine works in logical terms: Top values run along the axis lines
// stack on, Left values along the axis characters advance on.
type ViewportData struct {
	// StartLine and EndLine bound the visible lines, inclusive.
	StartLine int
	EndLine   int
	// RelativeOffsets holds one stacking offset per visible line,
	// measured from the viewport origin.
	RelativeOffsets []float64

	ScrollTop      float64
	ScrollLeft     float64
	ScrollWidth    float64
	ScrollHeight   float64
	ViewportWidth  float64
	ViewportHeight float64

	LineHeight float64
	LineCount  int
}

// Dispose releases a subscription. Calling it more than once is safe.
type Dispose func()

// Source is the read side of the external text engine.
type Source interface {
	ViewportData() ViewportData
	GetLineRenderingData(line int) (LineData, error)
	ModelToView(pos Position) Position
	ViewToModel(pos Position) Position
}

// Decorated is implemented by engines that expose cursor, selection and
// decoration state in model positions. Snapshots copy it, converted to view
// positions, when present.
type Decorated interface {
	Cursors() []Position
	Selections() []Range
	Decorations() []Decoration
}

// Commander is the command side of the external text engine.
type Commander interface {
	SetScrollTop(v float64)
	SetScrollLeft(v float64)
	SetPosition(pos Position)
	SetSelection(r Range)
}

// Searcher is implemented by engines that decorate search matches.
type Searcher interface {
	// Find replaces the decorations with the matches of query and returns
	// how many there are.
	Find(query string) (int, error)
	SetDecorations(decos []Decoration)
}

// MultiCursor is implemented by engines that keep secondary cursors.
type MultiCursor interface {
	AddCursor(pos Position)
}

// Events carries the engine notifications the renderer listens to.
type Events interface {
	OnDidRender(fn func()) Dispose
	OnDidLayoutChange(fn func()) Dispose
	OnDidChangeConfiguration(fn func()) Dispose
}

// Engine is the full external text engine contract.
type Engine interface {
	Source
	Commander
	Events
}

// Geometry is the viewport and font layout the view imposes on an engine.
// Width values run along lines, height values across them.
type Geometry struct {
	ViewportWidth  float64
	ViewportHeight float64
	LineHeight     float64
	CharWidth      float64
	// Cells returns how many character cells a line's text occupies.
	Cells func(text string) int
}

// Layouter is implemented by engines that take their geometry from the view.
type Layouter interface {
	Layout(g Geometry)
}
