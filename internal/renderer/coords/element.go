package coords

import (
	"unicode/utf16"

	"github.com/dshills/tateview/internal/renderer/snapshot"
)

// TextNode is one styled run of a rendered line.
type TextNode struct {
	Text  string
	Class string
	// Offset is the UTF-16 offset of the node's first unit within the line.
	Offset int
	// Len is the node length in UTF-16 units.
	Len int
}

// LineElement is a rendered line as a sequence of text nodes, one per token run.
type LineElement struct {
	Line  int
	Nodes []TextNode
	// Origin is the advance coordinate of the line's start edge.
	Origin float64

	// cols[u] is the cell column reached after UTF-16 unit u, filled by
	// MonospaceMeasurer.Prepare for the grid in grid.
	cols []int
	grid gridKey
}

// NewLineElement splits line data into nodes at its token boundaries.
// Content past the last token becomes an unstyled node.
func NewLineElement(line int, data snapshot.LineData, origin float64) LineElement {
	elem := LineElement{Line: line, Origin: origin}
	content := data.Content
	pos, at := 0, 0
	for _, tok := range data.Tokens {
		if tok.EndOffset <= pos {
			continue
		}
		end, units := cutUTF16(content, at, tok.EndOffset-pos)
		if units == 0 {
			break
		}
		elem.Nodes = append(elem.Nodes, TextNode{
			Text:   content[at:end],
			Class:  tok.StyleClass,
			Offset: pos,
			Len:    units,
		})
		pos += units
		at = end
	}
	if at < len(content) {
		elem.Nodes = append(elem.Nodes, TextNode{
			Text:   content[at:],
			Offset: pos,
			Len:    snapshot.UTF16Len(content[at:]),
		})
	}
	return elem
}

// cutUTF16 advances from byte index at by up to n UTF-16 units and returns
// the byte index reached and the units consumed. A surrogate pair is never
// split.
func cutUTF16(s string, at, n int) (int, int) {
	units := 0
	for i, r := range s[at:] {
		if units >= n {
			return at + i, units
		}
		units += max(1, utf16.RuneLen(r))
	}
	return len(s), units
}

// Len returns the line length in UTF-16 units.
func (e LineElement) Len() int {
	if len(e.Nodes) == 0 {
		return 0
	}
	last := e.Nodes[len(e.Nodes)-1]
	return last.Offset + last.Len
}

// Text returns the full line content.
func (e LineElement) Text() string {
	n := 0
	for _, node := range e.Nodes {
		n += len(node.Text)
	}
	buf := make([]byte, 0, n)
	for _, node := range e.Nodes {
		buf = append(buf, node.Text...)
	}
	return string(buf)
}
