package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/tateview/internal/config"
	"github.com/dshills/tateview/internal/config/notify"
	"github.com/dshills/tateview/internal/engine"
	"github.com/dshills/tateview/internal/logging"
	"github.com/dshills/tateview/internal/renderer"
	"github.com/dshills/tateview/internal/renderer/backend"
	"github.com/dshills/tateview/internal/renderer/orientation"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantDone bool
		wantCode int
		check    func(t *testing.T, o options)
	}{
		{
			name: "file only",
			args: []string{"notes.txt"},
			check: func(t *testing.T, o options) {
				if o.File != "notes.txt" || o.Mode != "" || o.ConfigPath != config.DefaultPath() {
					t.Errorf("options = %+v", o)
				}
			},
		},
		{
			name: "all flags",
			args: []string{"-mode", "tate", "-c", "my.yaml", "-theme", "monokai", "-log-level", "debug", "-log-file", "v.log", "a.go"},
			check: func(t *testing.T, o options) {
				want := options{ConfigPath: "my.yaml", Mode: "tate", Theme: "monokai", LogLevel: "debug", LogFile: "v.log", File: "a.go"}
				if o != want {
					t.Errorf("options = %+v, want %+v", o, want)
				}
			},
		},
		{
			name: "language and find",
			args: []string{"-lang", "go", "-find", "TODO", "main.txt"},
			check: func(t *testing.T, o options) {
				if o.Language != "go" || o.Find != "TODO" || o.File != "main.txt" {
					t.Errorf("options = %+v", o)
				}
			},
		},
		{name: "no file", args: nil, wantDone: true, wantCode: 2},
		{name: "two files", args: []string{"a", "b"}, wantDone: true, wantCode: 2},
		{name: "bad mode", args: []string{"-mode", "diagonal", "a"}, wantDone: true, wantCode: 2},
		{name: "bad level", args: []string{"-log-level", "loud", "a"}, wantDone: true, wantCode: 2},
		{name: "unknown flag", args: []string{"-x", "a"}, wantDone: true, wantCode: 2},
		{name: "help", args: []string{"-h"}, wantDone: true, wantCode: 0},
		{name: "version", args: []string{"-version"}, wantDone: true, wantCode: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			o, code, done := parseFlags(tt.args, &stderr)
			if done != tt.wantDone || code != tt.wantCode {
				t.Fatalf("done, code = %v, %d; want %v, %d (%s)", done, code, tt.wantDone, tt.wantCode, stderr.String())
			}
			if tt.check != nil {
				tt.check(t, o)
			}
		})
	}
}

func TestParseFlags_Version(t *testing.T) {
	var stderr bytes.Buffer
	parseFlags([]string{"-v"}, &stderr)
	if !strings.HasPrefix(stderr.String(), "tateview dev") {
		t.Errorf("version output = %q", stderr.String())
	}
}

func TestResolveOptions(t *testing.T) {
	vc := config.Default()
	vc.View.Theme = "dracula"

	ro, err := resolveOptions(vc, options{})
	if err != nil {
		t.Fatal(err)
	}
	if ro.View.Theme != "dracula" || ro.View.Mode != orientation.LeftToRightHorizontal {
		t.Errorf("without flags: %+v", ro.View)
	}

	ro, err = resolveOptions(vc, options{Mode: "vertical-rl", Theme: "monokai"})
	if err != nil {
		t.Fatal(err)
	}
	if ro.View.Theme != "monokai" || ro.View.Mode != orientation.RightToLeftVertical {
		t.Errorf("flags should win: %+v", ro.View)
	}

	vc.View.Cursor = "beam"
	if _, err := resolveOptions(vc, options{}); err == nil {
		t.Error("invalid config should fail")
	}
}

func TestLanguage(t *testing.T) {
	vc := config.Default()
	if got := language(vc, options{}); got != "" {
		t.Errorf("default language = %q, want detection", got)
	}
	vc.View.Language = "go"
	if got := language(vc, options{}); got != "go" {
		t.Errorf("configured language = %q", got)
	}
	if got := language(vc, options{Language: "python"}); got != "python" {
		t.Errorf("flag language = %q, flag should win", got)
	}
}

func TestOnReloadAppliesLanguageAndOptions(t *testing.T) {
	b := backend.NewNullBackend(40, 10)
	if err := b.Init(); err != nil {
		t.Fatal(err)
	}
	r := renderer.New(b, renderer.DefaultOptions(), nil)
	defer r.Close()
	doc := engine.New("notes.txt", "package main\n")
	r.Open(doc)
	detected := doc.Language()

	observe := onReload(r, doc, options{}, "", logging.Null)
	observe(notify.Change{Type: notify.ChangeSet, Path: "view.language", NewValue: "go"})

	vc := config.Default()
	vc.View.Language = "go"
	vc.View.Mode = orientation.RightToLeftVertical.String()
	observe(notify.Change{Type: notify.ChangeReload, NewValue: vc})

	// Only the reload posts work to the event loop.
	r.HandleEvent(b.PollEvent())
	if doc.Language() != "go" {
		t.Errorf("language = %q, want go", doc.Language())
	}
	if r.View().Mode() != orientation.RightToLeftVertical {
		t.Errorf("mode = %v, reloaded options should apply", r.View().Mode())
	}

	vc.View.Language = ""
	observe(notify.Change{Type: notify.ChangeReload, NewValue: vc})
	r.HandleEvent(b.PollEvent())
	if doc.Language() != detected {
		t.Errorf("language = %q, clearing the setting should detect %q again", doc.Language(), detected)
	}
}

func TestOpenLog(t *testing.T) {
	log, closeLog, err := openLog(config.Default(), options{})
	if err != nil {
		t.Fatal(err)
	}
	closeLog()
	if log != logging.Null {
		t.Error("no log file should log nowhere")
	}

	path := filepath.Join(t.TempDir(), "tateview.log")
	vc := config.Default()
	vc.Log.Level = "error"
	log, closeLog, err = openLog(vc, options{LogFile: path, LogLevel: "debug"})
	if err != nil {
		t.Fatal(err)
	}
	log.Debug("hello", "n", 1)
	closeLog()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"msg=hello", "app=tateview", "n=1"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log file = %q missing %q, flag level should win", data, want)
		}
	}

	if _, _, err := openLog(vc, options{LogFile: filepath.Join(t.TempDir(), "missing", "x.log")}); err == nil {
		t.Error("unwritable log path should fail")
	}
}
