package paint

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/dshills/tateview/internal/renderer/core"
)

// DefaultThemeName is the chroma style used when none is configured.
const DefaultThemeName = "monokai"

// Theme maps token style classes and view chrome to cell styles.
type Theme struct {
	// Name is the chroma style the theme was built from.
	Name string

	// Base is the content background and default text color.
	Base core.Style

	// Classes maps chroma short class names ("kd", "s2") to styles.
	Classes map[string]core.Style

	// Decorations maps decoration classes to the tint applied over text.
	Decorations map[string]core.Style

	LineNumber         core.Style
	ActiveLineNumber   core.Style
	Selection          core.Style
	SecondarySelection core.Style
	SecondaryCursor    core.Style
	IndentGuide        core.Style
	ScrollbarTrack     core.Style
	ScrollbarSlider    core.Style
	Minimap            core.Style
	MinimapSlider      core.Style
}

// NewTheme builds a theme from a chroma style. Unknown names fall back to
// chroma's default style.
func NewTheme(name string) *Theme {
	if name == "" {
		name = DefaultThemeName
	}
	cs := styles.Get(name)

	bgEntry := cs.Get(chroma.Background)
	bg := chromaColor(bgEntry.Background)
	fg := chromaColor(cs.Get(chroma.Text).Colour)
	if fg.IsDefault() {
		fg = chromaColor(bgEntry.Colour)
	}
	base := core.Style{Foreground: fg, Background: bg}

	t := &Theme{
		Name:        cs.Name,
		Base:        base,
		Classes:     make(map[string]core.Style, len(chroma.StandardTypes)),
		Decorations: make(map[string]core.Style),
	}
	for tt, class := range chroma.StandardTypes {
		if class == "" {
			continue
		}
		t.Classes[class] = tokenStyle(cs.Get(tt), bgEntry.Background)
	}

	lineNo := cs.Get(chroma.LineNumbers)
	t.LineNumber = core.Style{Foreground: chromaColor(lineNo.Colour), Background: core.ColorDefault}
	if t.LineNumber.Foreground.IsDefault() {
		t.LineNumber.Foreground = fg
		t.LineNumber.Attributes = core.AttrDim
	}
	t.ActiveLineNumber = core.Style{Foreground: fg, Background: core.ColorDefault, Attributes: core.AttrBold}

	sel := chromaColor(cs.Get(chroma.LineHighlight).Background)
	if sel.IsDefault() || sel.Equals(bg) {
		sel = chromaColor(bgEntry.Background.Brighten(0.25))
	}
	t.Selection = core.Style{Foreground: core.ColorDefault, Background: sel}
	t.SecondarySelection = core.Style{Foreground: core.ColorDefault, Background: chromaColor(bgEntry.Background.Brighten(0.15))}
	t.SecondaryCursor = core.Style{Foreground: core.ColorDefault, Background: core.ColorDefault, Attributes: core.AttrReverse}
	t.IndentGuide = core.Style{Foreground: chromaColor(bgEntry.Background.Brighten(0.3)), Background: core.ColorDefault}
	t.ScrollbarTrack = core.Style{Foreground: fg, Background: chromaColor(bgEntry.Background.Brighten(0.08))}
	t.ScrollbarSlider = core.Style{Foreground: fg, Background: chromaColor(bgEntry.Background.Brighten(0.35))}
	t.Minimap = core.Style{Foreground: fg, Background: bg, Attributes: core.AttrDim}
	t.MinimapSlider = core.Style{Foreground: core.ColorDefault, Background: chromaColor(bgEntry.Background.Brighten(0.18))}

	t.Decorations["findMatch"] = core.Style{
		Foreground: core.ColorDefault,
		Background: chromaColor(cs.Get(chroma.GenericInserted).Colour),
	}
	if t.Decorations["findMatch"].Background.IsDefault() {
		t.Decorations["findMatch"] = core.Style{Foreground: core.ColorDefault, Background: core.ColorFromRGB(110, 90, 20)}
	}
	t.Decorations["error"] = core.Style{
		Foreground: chromaColor(cs.Get(chroma.Error).Colour),
		Background: core.ColorDefault,
		Attributes: core.AttrUnderline,
	}
	return t
}

// StyleForClass returns the style of a token class. A class without its own
// entry takes the style of its longest known prefix, so "kd" falls back to
// "k". Unknown classes render in the base style.
func (t *Theme) StyleForClass(class string) core.Style {
	for c := class; c != ""; c = c[:len(c)-1] {
		if s, ok := t.Classes[c]; ok {
			return s
		}
	}
	return core.Style{Foreground: t.Base.Foreground, Background: core.ColorDefault}
}

// DecorationStyle returns the tint of a decoration class. Dotted classes
// fall back to their parent ("findMatch.current" to "findMatch"); anything
// else is underlined.
func (t *Theme) DecorationStyle(class string) core.Style {
	for c := class; c != ""; {
		if s, ok := t.Decorations[c]; ok {
			return s
		}
		i := strings.LastIndexByte(c, '.')
		if i < 0 {
			break
		}
		c = c[:i]
	}
	return core.Style{Foreground: core.ColorDefault, Background: core.ColorDefault, Attributes: core.AttrUnderline}
}

func tokenStyle(e chroma.StyleEntry, base chroma.Colour) core.Style {
	s := core.Style{Foreground: chromaColor(e.Colour), Background: core.ColorDefault}
	if e.Background.IsSet() && e.Background != base {
		s.Background = chromaColor(e.Background)
	}
	if e.Bold == chroma.Yes {
		s.Attributes |= core.AttrBold
	}
	if e.Italic == chroma.Yes {
		s.Attributes |= core.AttrItalic
	}
	if e.Underline == chroma.Yes {
		s.Attributes |= core.AttrUnderline
	}
	return s
}

func chromaColor(c chroma.Colour) core.Color {
	if !c.IsSet() {
		return core.ColorDefault
	}
	return core.ColorFromRGB(c.Red(), c.Green(), c.Blue())
}
