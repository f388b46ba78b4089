package config

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dshills/tateview/internal/config/loader"
	"github.com/dshills/tateview/internal/logging"
	"github.com/dshills/tateview/internal/renderer"
	"github.com/dshills/tateview/internal/renderer/backend"
	"github.com/dshills/tateview/internal/renderer/core"
	"github.com/dshills/tateview/internal/renderer/orientation"
	"github.com/dshills/tateview/internal/renderer/paint"
)

// ViewConfig is the decoded viewer configuration. Values are copies;
// mutating one does not change the loaded configuration.
type ViewConfig struct {
	View      ViewSection
	Grid      GridSection
	Minimap   MinimapSection
	Scrollbar ScrollbarSection
	Gutter    GutterSection
	Log       LogSection
}

// ViewSection holds [view] settings.
type ViewSection struct {
	// Mode is the writing mode, such as "horizontal-tb" or "tate".
	Mode string

	// Overscan is the number of extra lines laid out past each edge.
	Overscan int

	TabSize int

	// Theme is a chroma style name.
	Theme string

	MaxFPS int

	// Cursor is "block", "underline", "bar" or "hidden".
	Cursor string

	// Language overrides syntax detection when set, e.g. "go" or "markdown".
	Language string
}

// GridSection holds [grid] settings: the pixel size of one terminal cell.
type GridSection struct {
	CellWidth  float64
	CellHeight float64
}

// MinimapSection holds [minimap] settings.
type MinimapSection struct {
	Enabled bool

	// Width is the minimap width in cells.
	Width int

	// Scale is the minimap line height relative to the editor's.
	Scale float64
}

// ScrollbarSection holds [scrollbar] settings.
type ScrollbarSection struct {
	// Size is the scrollbar thickness in cells.
	Size int

	// WheelDamping divides wheel deltas.
	WheelDamping float64

	// WheelStep is the raw delta of one wheel notch.
	WheelStep float64
}

// GutterSection holds [gutter] settings.
type GutterSection struct {
	// LineNumbers is "off", "absolute", "relative" or "hybrid".
	LineNumbers  string
	MinDigits    int
	IndentGuides bool
}

// LogSection holds [log] settings.
type LogSection struct {
	Level string

	// File receives logs when set. The terminal is never logged to.
	File string
}

var cursorNames = map[string]backend.CursorStyle{
	"block":     backend.CursorBlock,
	"underline": backend.CursorUnderline,
	"bar":       backend.CursorBar,
	"hidden":    backend.CursorHidden,
}

var lineNumberNames = [...]string{
	paint.LineNumbersOff:      "off",
	paint.LineNumbersAbsolute: "absolute",
	paint.LineNumbersRelative: "relative",
	paint.LineNumbersHybrid:   "hybrid",
}

var logLevels = []string{"debug", "info", "warn", "warning", "error"}

// defaultConfig returns the defaults layer, derived from the renderer's own
// defaults so the two cannot drift apart.
func defaultConfig() map[string]any {
	opts := renderer.DefaultOptions()
	v := opts.View
	return map[string]any{
		"view": map[string]any{
			"mode":     v.Mode.String(),
			"overscan": int64(v.Overscan),
			"tab_size": int64(v.TabSize),
			"theme":    v.Theme,
			"max_fps":  int64(opts.MaxFPS),
			"cursor":   "block",
			"language": "",
		},
		"grid": map[string]any{
			"cell_width":  v.Grid.CellWidth,
			"cell_height": v.Grid.CellHeight,
		},
		"minimap": map[string]any{
			"enabled": v.ShowMinimap,
			"width":   int64(v.MinimapCells),
			"scale":   v.MinimapScale,
		},
		"scrollbar": map[string]any{
			"size":          int64(v.ScrollbarCells),
			"wheel_damping": v.WheelDamping,
			"wheel_step":    v.WheelStep,
		},
		"gutter": map[string]any{
			"line_numbers":  "absolute",
			"min_digits":    int64(v.MinGutterDigits),
			"indent_guides": v.IndentGuides,
		},
		"log": map[string]any{
			"level": "info",
			"file":  "",
		},
	}
}

// Default returns the default configuration.
func Default() ViewConfig {
	cfg, err := Decode(defaultConfig())
	if err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return cfg
}

// Decode validates a settings map layered over the defaults and converts it
// to a ViewConfig. Every problem is reported; the result is the errors.Join
// of one *ValidationError per bad setting.
func Decode(m map[string]any) (ViewConfig, error) {
	d := &decoder{m: loader.DeepMerge(defaultConfig(), loader.Clone(m))}
	d.checkUnknown(defaultConfig())

	cfg := ViewConfig{
		View: ViewSection{
			Mode:     d.mode("view.mode"),
			Overscan: d.integer("view.overscan", 0, 1000),
			TabSize:  d.integer("view.tab_size", 1, 16),
			Theme:    d.str("view.theme"),
			MaxFPS:   d.integer("view.max_fps", 1, 240),
			Cursor:   d.enum("view.cursor", sortedKeys(cursorNames)),
			Language: d.str("view.language"),
		},
		Grid: GridSection{
			CellWidth:  d.positive("grid.cell_width", 1000),
			CellHeight: d.positive("grid.cell_height", 1000),
		},
		Minimap: MinimapSection{
			Enabled: d.boolean("minimap.enabled"),
			Width:   d.integer("minimap.width", 1, 200),
			Scale:   d.positive("minimap.scale", 1),
		},
		Scrollbar: ScrollbarSection{
			Size:         d.integer("scrollbar.size", 0, 4),
			WheelDamping: d.positive("scrollbar.wheel_damping", 100),
			WheelStep:    d.positive("scrollbar.wheel_step", 10000),
		},
		Gutter: GutterSection{
			LineNumbers:  d.lineNumbers("gutter.line_numbers"),
			MinDigits:    d.integer("gutter.min_digits", 1, 10),
			IndentGuides: d.boolean("gutter.indent_guides"),
		},
		Log: LogSection{
			Level: d.enum("log.level", logLevels),
			File:  d.str("log.file"),
		},
	}
	return cfg, errors.Join(d.errs...)
}

// RendererOptions converts the configuration to renderer options.
func (c ViewConfig) RendererOptions() (renderer.Options, error) {
	mode, err := orientation.ParseMode(c.View.Mode)
	if err != nil {
		return renderer.Options{}, &ValidationError{Path: "view.mode", Message: err.Error(), Value: c.View.Mode, Code: ErrCodeInvalidEnum}
	}
	lineNumbers, ok := paint.ParseLineNumberMode(c.Gutter.LineNumbers)
	if !ok {
		return renderer.Options{}, &ValidationError{Path: "gutter.line_numbers", Message: "unknown line number mode", Value: c.Gutter.LineNumbers, Code: ErrCodeInvalidEnum}
	}
	cursor, ok := cursorNames[c.View.Cursor]
	if !ok {
		return renderer.Options{}, &ValidationError{Path: "view.cursor", Message: "unknown cursor style", Value: c.View.Cursor, Code: ErrCodeInvalidEnum}
	}

	opts := renderer.DefaultOptions()
	opts.CursorStyle = cursor
	opts.MaxFPS = c.View.MaxFPS
	v := &opts.View
	v.Mode = mode
	v.Grid = core.Grid{CellWidth: c.Grid.CellWidth, CellHeight: c.Grid.CellHeight}
	v.Overscan = c.View.Overscan
	v.ShowMinimap = c.Minimap.Enabled
	v.MinimapCells = c.Minimap.Width
	v.MinimapScale = c.Minimap.Scale
	v.ScrollbarCells = c.Scrollbar.Size
	v.WheelDamping = c.Scrollbar.WheelDamping
	v.WheelStep = c.Scrollbar.WheelStep
	v.LineNumbers = lineNumbers
	v.MinGutterDigits = c.Gutter.MinDigits
	v.IndentGuides = c.Gutter.IndentGuides
	v.TabSize = c.View.TabSize
	v.Theme = c.View.Theme
	return opts, nil
}

// LogLevel returns the configured log level.
func (c ViewConfig) LogLevel() logging.Level {
	return logging.ParseLevel(c.Log.Level)
}

// decoder reads typed values out of a merged map, collecting errors.
type decoder struct {
	m    map[string]any
	errs []error
}

func (d *decoder) fail(path, msg string, value any, code ValidationErrorCode) {
	d.errs = append(d.errs, &ValidationError{Path: path, Message: msg, Value: value, Code: code})
}

// checkUnknown reports sections and settings absent from the schema.
func (d *decoder) checkUnknown(schema map[string]any) {
	for _, section := range sortedKeys(d.m) {
		known, ok := schema[section].(map[string]any)
		if !ok {
			d.fail(section, "unknown section", nil, ErrCodeUnknownSetting)
			continue
		}
		values, ok := d.m[section].(map[string]any)
		if !ok {
			d.fail(section, "expected a table", d.m[section], ErrCodeTypeMismatch)
			continue
		}
		for _, key := range sortedKeys(values) {
			if _, ok := known[key]; !ok {
				d.fail(section+"."+key, "unknown setting", nil, ErrCodeUnknownSetting)
			}
		}
	}
}

func (d *decoder) lookup(path string) (any, bool) {
	v, ok := loader.Lookup(d.m, path)
	if !ok {
		d.fail(path, "missing", nil, ErrCodeUnknownSetting)
	}
	return v, ok
}

func (d *decoder) str(path string) string {
	v, ok := d.lookup(path)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		d.fail(path, "expected string, got "+typeName(v), v, ErrCodeTypeMismatch)
	}
	return s
}

func (d *decoder) boolean(path string) bool {
	v, ok := d.lookup(path)
	if !ok {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		d.fail(path, "expected bool, got "+typeName(v), v, ErrCodeTypeMismatch)
	}
	return b
}

func (d *decoder) integer(path string, lo, hi int) int {
	v, ok := d.lookup(path)
	if !ok {
		return 0
	}
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int64:
		n = x
	case float64:
		if x != math.Trunc(x) {
			d.fail(path, "expected integer", v, ErrCodeTypeMismatch)
			return 0
		}
		n = int64(x)
	default:
		d.fail(path, "expected integer, got "+typeName(v), v, ErrCodeTypeMismatch)
		return 0
	}
	if n < int64(lo) || n > int64(hi) {
		d.fail(path, fmt.Sprintf("must be between %d and %d", lo, hi), v, ErrCodeOutOfRange)
		return 0
	}
	return int(n)
}

// positive reads a number in (0, hi].
func (d *decoder) positive(path string, hi float64) float64 {
	v, ok := d.lookup(path)
	if !ok {
		return 0
	}
	var f float64
	switch x := v.(type) {
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case float64:
		f = x
	default:
		d.fail(path, "expected number, got "+typeName(v), v, ErrCodeTypeMismatch)
		return 0
	}
	if !(f > 0 && f <= hi) {
		d.fail(path, fmt.Sprintf("must be greater than 0 and at most %g", hi), v, ErrCodeOutOfRange)
		return 0
	}
	return f
}

func (d *decoder) enum(path string, allowed []string) string {
	s := d.str(path)
	for _, a := range allowed {
		if strings.EqualFold(s, a) {
			return a
		}
	}
	if v, ok := loader.Lookup(d.m, path); ok {
		if _, isString := v.(string); isString {
			d.fail(path, "must be one of "+strings.Join(allowed, ", "), s, ErrCodeInvalidEnum)
		}
	}
	return ""
}

func (d *decoder) mode(path string) string {
	v, ok := loader.Lookup(d.m, path)
	s := d.str(path)
	if !ok {
		return ""
	}
	if _, isString := v.(string); !isString {
		return ""
	}
	m, err := orientation.ParseMode(s)
	if err != nil {
		d.fail(path, err.Error(), s, ErrCodeInvalidEnum)
		return ""
	}
	return m.String()
}

func (d *decoder) lineNumbers(path string) string {
	v, ok := loader.Lookup(d.m, path)
	if !ok {
		d.fail(path, "missing", nil, ErrCodeUnknownSetting)
		return ""
	}
	// line_numbers = false is accepted as "off".
	if b, isBool := v.(bool); isBool {
		if b {
			return lineNumberNames[paint.LineNumbersAbsolute]
		}
		return lineNumberNames[paint.LineNumbersOff]
	}
	s, isString := v.(string)
	if !isString {
		d.fail(path, "expected string, got "+typeName(v), v, ErrCodeTypeMismatch)
		return ""
	}
	m, ok := paint.ParseLineNumberMode(s)
	if !ok {
		d.fail(path, "must be one of "+strings.Join(lineNumberNames[:], ", "), s, ErrCodeInvalidEnum)
		return ""
	}
	return lineNumberNames[m]
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int64:
		return "integer"
	case float64:
		return "float"
	case map[string]any:
		return "table"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
