package loader

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return &memFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

type memFileInfo struct {
	name string
}

func (f *memFileInfo) Name() string       { return f.name }
func (f *memFileInfo) Size() int64        { return 0 }
func (f *memFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memFileInfo) ModTime() time.Time { return time.Now() }
func (f *memFileInfo) IsDir() bool        { return false }
func (f *memFileInfo) Sys() any           { return nil }

func TestTOMLLoader_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/tateview.toml", `
[view]
mode = "vertical-rl"
tab_size = 8

[minimap]
enabled = false
scale = 0.25
`)

	config, err := NewTOMLLoaderWithFS(memfs, "/tateview.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		path string
		want any
	}{
		{"view.mode", "vertical-rl"},
		{"view.tab_size", int64(8)},
		{"minimap.enabled", false},
		{"minimap.scale", 0.25},
	}
	for _, tt := range tests {
		got, ok := Lookup(config, tt.path)
		if !ok || got != tt.want {
			t.Errorf("%s = %v (%T), want %v", tt.path, got, got, tt.want)
		}
	}
}

func TestTOMLLoader_Missing(t *testing.T) {
	config, err := NewTOMLLoaderWithFS(NewMemFS(), "/absent.toml").Load()
	if err != nil || config != nil {
		t.Errorf("missing file = %v, %v; want nil, nil", config, err)
	}
}

func TestTOMLLoader_ParseError(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/bad.toml", "[view]\nmode = \n")

	_, err := NewTOMLLoaderWithFS(memfs, "/bad.toml").Load()
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if pe.Path != "/bad.toml" || pe.Line != 2 {
		t.Errorf("parse error = %+v", pe)
	}
	if !strings.Contains(pe.Error(), "line 2") {
		t.Errorf("message = %q", pe.Error())
	}
}

func TestTOMLLoader_LoadFromReader(t *testing.T) {
	config, err := NewTOMLLoader("").LoadFromReader(strings.NewReader("[grid]\ncell_width = 8\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := Lookup(config, "grid.cell_width"); got != int64(8) {
		t.Errorf("grid.cell_width = %v", got)
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"a.toml", FormatTOML, false},
		{"a.TOML", FormatTOML, false},
		{"a.yaml", FormatYAML, false},
		{"dir/a.yml", FormatYAML, false},
		{"a.json", FormatTOML, true},
		{"noext", FormatTOML, true},
	}
	for _, tt := range tests {
		got, err := FormatOf(tt.path)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("FormatOf(%q) = %v, %v", tt.path, got, err)
		}
		if tt.wantErr && !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("FormatOf(%q) error = %v", tt.path, err)
		}
	}
}

func TestForFile(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/c.yaml", "view:\n  theme: dracula\n")
	l, err := ForFile(memfs, "/c.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := l.(*YAMLLoader); !ok {
		t.Errorf("loader = %T", l)
	}
	config, err := l.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := Lookup(config, "view.theme"); got != "dracula" {
		t.Errorf("view.theme = %v", got)
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"view":    map[string]any{"mode": "ltr", "tab_size": int64(4)},
		"minimap": map[string]any{"enabled": true},
	}
	src := map[string]any{
		"view": map[string]any{"mode": "tate"},
		"log":  map[string]any{"level": "debug"},
	}
	got := DeepMerge(dst, src)

	tests := []struct {
		path string
		want any
	}{
		{"view.mode", "tate"},
		{"view.tab_size", int64(4)},
		{"minimap.enabled", true},
		{"log.level", "debug"},
	}
	for _, tt := range tests {
		if v, ok := Lookup(got, tt.path); !ok || v != tt.want {
			t.Errorf("%s = %v, want %v", tt.path, v, tt.want)
		}
	}
}

func TestClone(t *testing.T) {
	src := map[string]any{"view": map[string]any{"mode": "ltr"}}
	dst := Clone(src)
	dst["view"].(map[string]any)["mode"] = "tate"
	if got, _ := Lookup(src, "view.mode"); got != "ltr" {
		t.Errorf("clone shares nested maps: %v", got)
	}
}

func TestLookup(t *testing.T) {
	m := map[string]any{"view": map[string]any{"mode": "ltr"}}
	if _, ok := Lookup(m, "view.mode.deeper"); ok {
		t.Error("lookup through a scalar should fail")
	}
	if _, ok := Lookup(m, "grid.cell_width"); ok {
		t.Error("lookup of a missing section should fail")
	}
}
