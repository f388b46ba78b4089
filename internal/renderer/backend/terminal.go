package backend

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/tateview/internal/renderer/core"
)

// Terminal implements Backend using tcell.
type Terminal struct {
	screen        tcell.Screen
	resizeHandler func(width, height int)
	mu            sync.Mutex
}

// NewTerminal creates a terminal backend on the controlling terminal.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Terminal{screen: screen}, nil
}

// NewTerminalWithScreen wraps an existing screen, such as a simulation screen.
func NewTerminalWithScreen(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen}
}

func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.EnableMouse()
	t.screen.EnableFocus()
	return nil
}

func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Fini()
}

func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.screen.Size()
}

func (t *Terminal) OnResize(callback func(width, height int)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resizeHandler = callback
}

func (t *Terminal) SetCell(x, y int, cell core.Cell) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.setContent(x, y, cell)
}

func (t *Terminal) setContent(x, y int, cell core.Cell) {
	if cell.IsContinuation() {
		// tcell draws the right half of a wide rune itself.
		return
	}
	var comb []rune
	if cell.Combining != "" {
		comb = []rune(cell.Combining)
	}
	t.screen.SetContent(x, y, cell.Rune, comb, convertStyle(cell.Style))
}

func (t *Terminal) GetCell(x, y int) core.Cell {
	t.mu.Lock()
	defer t.mu.Unlock()

	mainc, comb, style, width := t.screen.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
	return core.Cell{
		Rune:      mainc,
		Combining: string(comb),
		Width:     width,
		Style:     convertTcellStyle(style),
	}
}

func (t *Terminal) Fill(rect core.ScreenRect, cell core.Cell) {
	t.mu.Lock()
	defer t.mu.Unlock()

	width, height := t.screen.Size()
	rect = rect.Intersection(core.ScreenRect{Right: width, Bottom: height})
	for y := rect.Top; y < rect.Bottom; y++ {
		for x := rect.Left; x < rect.Right; x++ {
			t.setContent(x, y, cell)
		}
	}
}

func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Clear()
}

func (t *Terminal) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Show()
}

func (t *Terminal) ShowCursor(x, y int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.ShowCursor(x, y)
}

func (t *Terminal) HideCursor() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.HideCursor()
}

func (t *Terminal) SetCursorStyle(style CursorStyle) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var tcellStyle tcell.CursorStyle
	switch style {
	case CursorBlock:
		tcellStyle = tcell.CursorStyleSteadyBlock
	case CursorUnderline:
		tcellStyle = tcell.CursorStyleSteadyUnderline
	case CursorBar:
		tcellStyle = tcell.CursorStyleSteadyBar
	case CursorHidden:
		t.screen.HideCursor()
		return
	}
	t.screen.SetCursorStyle(tcellStyle)
}

func (t *Terminal) PollEvent() Event {
	ev := t.screen.PollEvent()
	return convertEvent(ev, t)
}

// PostEvent posts key and interrupt events; other types are not synthesized.
func (t *Terminal) PostEvent(event Event) {
	var ev tcell.Event
	switch event.Type {
	case EventKey:
		ev = tcell.NewEventKey(convertToTcellKey(event.Key), event.Rune, convertToTcellMod(event.Mod))
	case EventInterrupt:
		ev = tcell.NewEventInterrupt(event.Data)
	default:
		return
	}
	_ = t.screen.PostEvent(ev) // best-effort; the queue may be full
}

func (t *Terminal) HasTrueColor() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.screen.Colors() > 256
}

func (t *Terminal) EnableMouse() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.EnableMouse()
}

func (t *Terminal) DisableMouse() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.DisableMouse()
}

// convertStyle converts a core style to tcell.Style.
func convertStyle(s core.Style) tcell.Style {
	style := tcell.StyleDefault
	if !s.Foreground.IsDefault() {
		style = style.Foreground(convertColor(s.Foreground))
	}
	if !s.Background.IsDefault() {
		style = style.Background(convertColor(s.Background))
	}
	return style.
		Bold(s.Attributes.Has(core.AttrBold)).
		Dim(s.Attributes.Has(core.AttrDim)).
		Italic(s.Attributes.Has(core.AttrItalic)).
		Underline(s.Attributes.Has(core.AttrUnderline)).
		Reverse(s.Attributes.Has(core.AttrReverse))
}

func convertColor(c core.Color) tcell.Color {
	if c.Indexed {
		return tcell.PaletteColor(int(c.R))
	}
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// convertTcellStyle converts tcell.Style back to a core style.
func convertTcellStyle(ts tcell.Style) core.Style {
	fg, bg, attrs := ts.Decompose()

	s := core.Style{
		Foreground: convertTcellColor(fg),
		Background: convertTcellColor(bg),
	}
	pairs := []struct {
		tc tcell.AttrMask
		a  core.Attribute
	}{
		{tcell.AttrBold, core.AttrBold},
		{tcell.AttrDim, core.AttrDim},
		{tcell.AttrItalic, core.AttrItalic},
		{tcell.AttrUnderline, core.AttrUnderline},
		{tcell.AttrReverse, core.AttrReverse},
	}
	for _, p := range pairs {
		if attrs&p.tc != 0 {
			s.Attributes |= p.a
		}
	}
	return s
}

// convertTcellColor converts tcell.Color to a core color.
func convertTcellColor(tc tcell.Color) core.Color {
	if tc == tcell.ColorDefault {
		return core.ColorDefault
	}
	if tc >= tcell.ColorValid && tc < tcell.ColorIsRGB {
		return core.ColorFromIndex(uint8(tc - tcell.ColorValid))
	}
	r, g, b := tc.RGB()
	return core.ColorFromRGB(uint8(r), uint8(g), uint8(b))
}

// convertEvent converts tcell events to backend events.
func convertEvent(ev tcell.Event, t *Terminal) Event {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return Event{
			Type: EventKey,
			Key:  convertKey(e.Key()),
			Rune: e.Rune(),
			Mod:  convertMod(e.Modifiers()),
		}

	case *tcell.EventMouse:
		x, y := e.Position()
		return Event{
			Type:        EventMouse,
			MouseX:      x,
			MouseY:      y,
			MouseButton: convertMouseButton(e.Buttons()),
			Mod:         convertMod(e.Modifiers()),
		}

	case *tcell.EventResize:
		w, h := e.Size()
		t.mu.Lock()
		handler := t.resizeHandler
		t.mu.Unlock()
		if handler != nil {
			handler(w, h)
		}
		return Event{Type: EventResize, Width: w, Height: h}

	case *tcell.EventFocus:
		return Event{Type: EventFocus, Focused: e.Focused}

	case *tcell.EventInterrupt:
		return Event{Type: EventInterrupt, Data: e.Data()}

	default:
		return Event{Type: EventNone}
	}
}

var keyMap = map[tcell.Key]Key{
	tcell.KeyRune:       KeyRune,
	tcell.KeyEscape:     KeyEscape,
	tcell.KeyEnter:      KeyEnter,
	tcell.KeyTab:        KeyTab,
	tcell.KeyHome:       KeyHome,
	tcell.KeyEnd:        KeyEnd,
	tcell.KeyPgUp:       KeyPageUp,
	tcell.KeyPgDn:       KeyPageDown,
	tcell.KeyUp:         KeyUp,
	tcell.KeyDown:       KeyDown,
	tcell.KeyLeft:       KeyLeft,
	tcell.KeyRight:      KeyRight,
	tcell.KeyCtrlC:      KeyCtrlC,
	tcell.KeyCtrlL:      KeyCtrlL,
	tcell.KeyBackspace:  KeyBackspace,
	tcell.KeyBackspace2: KeyBackspace,
}

// convertKey converts a tcell key; unmapped keys become KeyNone.
func convertKey(k tcell.Key) Key {
	return keyMap[k]
}

// convertToTcellKey is the inverse of convertKey.
func convertToTcellKey(k Key) tcell.Key {
	for tk, key := range keyMap {
		if key == k {
			return tk
		}
	}
	return tcell.KeyRune
}

// convertMod converts tcell modifier mask to ModMask.
func convertMod(m tcell.ModMask) ModMask {
	var result ModMask
	if m&tcell.ModShift != 0 {
		result |= ModShift
	}
	if m&tcell.ModCtrl != 0 {
		result |= ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		result |= ModAlt
	}
	if m&tcell.ModMeta != 0 {
		result |= ModMeta
	}
	return result
}

// convertToTcellMod converts ModMask to tcell.ModMask.
func convertToTcellMod(m ModMask) tcell.ModMask {
	var result tcell.ModMask
	if m&ModShift != 0 {
		result |= tcell.ModShift
	}
	if m&ModCtrl != 0 {
		result |= tcell.ModCtrl
	}
	if m&ModAlt != 0 {
		result |= tcell.ModAlt
	}
	if m&ModMeta != 0 {
		result |= tcell.ModMeta
	}
	return result
}

// convertMouseButton converts tcell button mask to MouseButton.
func convertMouseButton(b tcell.ButtonMask) MouseButton {
	switch {
	case b&tcell.Button1 != 0:
		return MouseLeft
	case b&tcell.Button2 != 0:
		return MouseMiddle
	case b&tcell.Button3 != 0:
		return MouseRight
	case b&tcell.WheelUp != 0:
		return MouseWheelUp
	case b&tcell.WheelDown != 0:
		return MouseWheelDown
	case b&tcell.WheelLeft != 0:
		return MouseWheelLeft
	case b&tcell.WheelRight != 0:
		return MouseWheelRight
	default:
		return MouseNone
	}
}
