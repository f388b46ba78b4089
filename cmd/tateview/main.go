// Package main is the entry point for the tateview document viewer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/dshills/tateview/internal/config"
	"github.com/dshills/tateview/internal/config/notify"
	"github.com/dshills/tateview/internal/engine"
	"github.com/dshills/tateview/internal/logging"
	"github.com/dshills/tateview/internal/renderer"
	"github.com/dshills/tateview/internal/renderer/backend"
	"github.com/dshills/tateview/internal/renderer/orientation"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// options holds the command line. Empty strings leave the configured value.
type options struct {
	ConfigPath string
	Mode       string
	Theme      string
	LogLevel   string
	LogFile    string
	Language   string
	Find       string
	File       string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts, code, done := parseFlags(os.Args[1:], os.Stderr)
	if done {
		return code
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: tateview needs an interactive terminal")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.New(opts.ConfigPath)
	defer cfg.Close()
	if err := cfg.Load(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading config: %v\n", err)
		return 1
	}

	log, closeLog, err := openLog(cfg.Current(), opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closeLog()

	rendererOpts, err := resolveOptions(cfg.Current(), opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	lang := language(cfg.Current(), opts)
	doc, err := engine.Open(opts.File, engine.WithLogger(log), engine.WithLanguage(lang))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	display, err := backend.NewTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	if err := display.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize terminal: %v\n", err)
		return 1
	}
	defer display.Shutdown()

	r := renderer.New(display, rendererOpts, log)
	defer r.Close()
	r.Open(doc)
	if opts.Find != "" {
		_, _ = r.Find(opts.Find)
	}

	cfg.SetLogger(log)
	cfg.Subscribe(onReload(r, doc, opts, lang, log))
	if err := cfg.Watch(); err != nil {
		log.Warn("config live reload unavailable", "path", cfg.Path(), "error", err)
	}

	log.Info("viewing", "file", opts.File, "mode", rendererOpts.View.Mode.String())
	if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("viewer stopped", "error", err)
		return 1
	}
	return 0
}

// onReload applies a reloaded configuration on the event loop. A changed
// language re-tokenizes the document.
func onReload(r *renderer.Renderer, doc *engine.Document, opts options, applied string, log *logging.Logger) notify.Observer {
	return func(ch notify.Change) {
		if ch.Type != notify.ChangeReload {
			return
		}
		vc := ch.NewValue.(config.ViewConfig)
		next, err := resolveOptions(vc, opts)
		if err != nil {
			log.Warn("ignoring reloaded config", "error", err)
			return
		}
		lang := language(vc, opts)
		r.Post(func() {
			r.ApplyOptions(next)
			if lang != applied {
				applied = lang
				doc.SetLanguage(lang)
			}
		})
	}
}

// parseFlags parses args. done reports that the process should exit with
// code without starting the viewer.
func parseFlags(args []string, stderr io.Writer) (opts options, code int, done bool) {
	fs := flag.NewFlagSet("tateview", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var showVersion bool
	fs.StringVar(&opts.ConfigPath, "config", config.DefaultPath(), "Path to configuration file (.toml or .yaml)")
	fs.StringVar(&opts.ConfigPath, "c", config.DefaultPath(), "Path to configuration file (shorthand)")
	fs.StringVar(&opts.Mode, "mode", "", "Writing mode (horizontal-tb, rtl, vertical-lr, vertical-rl/tate)")
	fs.StringVar(&opts.Mode, "m", "", "Writing mode (shorthand)")
	fs.StringVar(&opts.Theme, "theme", "", "Chroma style name")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.LogFile, "log-file", "", "Write logs to this file")
	fs.StringVar(&opts.Language, "lang", "", "Syntax language, overriding detection")
	fs.StringVar(&opts.Find, "find", "", "Highlight every match of this text")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "tateview - read a text file in any writing mode\n\n")
		fmt.Fprintf(stderr, "Usage: tateview [options] file\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nKeys: arrows/PgUp/PgDn/Home/End scroll, m cycles the mode, / searches,\nalt-click adds a cursor, q quits.\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, 0, true
		}
		return opts, 2, true
	}

	if showVersion {
		fmt.Fprintf(stderr, "tateview %s\nCommit: %s\nBuilt: %s\n", version, commit, date)
		return opts, 0, true
	}

	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		return opts, 2, true
	}
	if opts.Mode != "" {
		if _, err := orientation.ParseMode(opts.Mode); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return opts, 2, true
		}
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return opts, 2, true
	}
	opts.File = fs.Arg(0)
	return opts, 0, false
}

// resolveOptions converts the configuration and lays the command line
// over it.
func resolveOptions(vc config.ViewConfig, opts options) (renderer.Options, error) {
	ro, err := vc.RendererOptions()
	if err != nil {
		return ro, err
	}
	if opts.Mode != "" {
		mode, err := orientation.ParseMode(opts.Mode)
		if err != nil {
			return ro, err
		}
		ro.View.Mode = mode
	}
	if opts.Theme != "" {
		ro.View.Theme = opts.Theme
	}
	return ro, nil
}

// language returns the syntax language override; the flag wins over the
// configuration. Empty means detect.
func language(vc config.ViewConfig, opts options) string {
	if opts.Language != "" {
		return opts.Language
	}
	return vc.View.Language
}

// openLog builds the logger. The terminal belongs to the viewer, so logs
// go to a file or nowhere.
func openLog(vc config.ViewConfig, opts options) (*logging.Logger, func(), error) {
	path := vc.Log.File
	if opts.LogFile != "" {
		path = opts.LogFile
	}
	if path == "" {
		return logging.Null, func() {}, nil
	}

	level := vc.LogLevel()
	if opts.LogLevel != "" {
		level = logging.ParseLevel(opts.LogLevel)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	log := logging.New(logging.Config{Level: level, Output: f, Prefix: "tateview"})
	return log, func() { _ = f.Close() }, nil
}
