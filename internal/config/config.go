package config

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/dshills/tateview/internal/config/loader"
	"github.com/dshills/tateview/internal/config/notify"
	"github.com/dshills/tateview/internal/config/watcher"
	"github.com/dshills/tateview/internal/logging"
)

// Config loads the viewer configuration from its sources, keeps the last
// valid result and reports changes to subscribers.
//
// Sources from lowest to highest precedence: built-in defaults, the config
// file (TOML or YAML by extension), TATEVIEW_* environment variables.
type Config struct {
	mu sync.RWMutex

	path    string
	fs      loader.FileSystem
	environ func() []string
	log     *logging.Logger

	loaded  bool
	merged  map[string]any
	current ViewConfig

	notifier *notify.Notifier
	watcher  *watcher.Watcher
	debounce time.Duration
}

// Option configures a Config instance.
type Option func(*Config)

// WithFileSystem reads the config file through fs.
func WithFileSystem(fs loader.FileSystem) Option {
	return func(c *Config) {
		c.fs = fs
	}
}

// WithEnviron replaces os.Environ as the source of environment overrides.
func WithEnviron(environ func() []string) Option {
	return func(c *Config) {
		c.environ = environ
	}
}

// WithLogger sets the logger reload problems are reported to.
func WithLogger(log *logging.Logger) Option {
	return func(c *Config) {
		if log != nil {
			c.log = log
		}
	}
}

// WithDebounce sets how long the file must stay quiet before a reload.
func WithDebounce(d time.Duration) Option {
	return func(c *Config) {
		c.debounce = d
	}
}

// New creates a Config for the file at path. An empty path uses only
// defaults and the environment.
func New(path string, opts ...Option) *Config {
	c := &Config{
		path:     path,
		fs:       loader.DefaultFS(),
		environ:  os.Environ,
		log:      logging.Null,
		current:  Default(),
		merged:   defaultConfig(),
		notifier: notify.New(),
		debounce: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithComponent("config")
	return c
}

// DefaultPath returns $XDG_CONFIG_HOME/tateview/config.toml, falling back
// to ~/.config.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tateview", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "tateview", "config.toml")
}

// SetLogger replaces the logger, for when logging is itself configured by
// the loaded file.
func (c *Config) SetLogger(log *logging.Logger) {
	if log == nil {
		log = logging.Null
	}
	c.mu.Lock()
	c.log = log.WithComponent("config")
	c.mu.Unlock()
}

func (c *Config) logger() *logging.Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.log
}

// Path returns the config file path.
func (c *Config) Path() string {
	return c.path
}

// Load reads every source and replaces the current configuration. On error
// the previous configuration stays in effect. After the first load, each
// changed setting is announced with a set notification, followed by one
// reload notification carrying the old and new ViewConfig.
func (c *Config) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	merged, err := c.read()
	if err != nil {
		return err
	}
	cfg, err := Decode(merged)
	if err != nil {
		return err
	}

	c.mu.Lock()
	wasLoaded := c.loaded
	oldMerged, oldCfg := c.merged, c.current
	c.merged, c.current, c.loaded = merged, cfg, true
	c.mu.Unlock()

	if !wasLoaded {
		return nil
	}
	changes := diff(oldMerged, merged)
	for _, path := range changes {
		oldValue, _ := loader.Lookup(oldMerged, path)
		newValue, _ := loader.Lookup(merged, path)
		c.notifier.NotifySet(path, oldValue, newValue, c.path)
	}
	if len(changes) > 0 {
		c.notifier.NotifyReload(oldCfg, cfg, c.path)
	}
	return nil
}

// read merges defaults, the file and the environment.
func (c *Config) read() (map[string]any, error) {
	merged := defaultConfig()

	if c.path != "" {
		l, err := loader.ForFile(c.fs, c.path)
		if err != nil {
			return nil, err
		}
		data, err := l.Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, data)
	}

	env := loader.NewEnvLoader(loader.EnvPrefix)
	env.SetEnviron(c.environ)
	data, err := env.Load()
	if err != nil {
		return nil, err
	}
	return loader.DeepMerge(merged, data), nil
}

// Current returns the configuration in effect.
func (c *Config) Current() ViewConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Get returns the merged value at a dot-separated path such as
// "minimap.scale".
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return loader.Lookup(c.merged, path)
}

// Subscribe registers an observer for all configuration changes.
func (c *Config) Subscribe(observer notify.Observer) *notify.Subscription {
	return c.notifier.Subscribe(observer)
}

// SubscribePath registers an observer for changes at or below path.
func (c *Config) SubscribePath(path string, observer notify.Observer) *notify.Subscription {
	return c.notifier.SubscribePath(path, observer)
}

// Watch reloads the configuration whenever the file changes. A reload that
// fails is logged and the previous configuration is kept.
func (c *Config) Watch() error {
	if c.path == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watcher != nil {
		return nil
	}

	w, err := watcher.New(
		watcher.WithDebounce(c.debounce),
		watcher.WithErrorHandler(func(err error) {
			c.logger().Warn("watch error", "error", err)
		}),
	)
	if err != nil {
		return err
	}
	w.OnChange(c.handleFileChange)
	if err := w.Watch(c.path); err != nil {
		_ = w.Close()
		return err
	}
	c.watcher = w
	return nil
}

// handleFileChange handles file change events from the watcher. A removed
// file reloads to defaults and environment.
func (c *Config) handleFileChange(event watcher.Event) {
	log := c.logger()
	log.Debug("config file changed", "path", event.Path, "op", event.Op.String())
	if err := c.Load(context.Background()); err != nil {
		log.Warn("reload failed, keeping previous configuration", "path", event.Path, "error", err)
	}
}

// Close stops watching and shuts down notification delivery.
func (c *Config) Close() {
	c.mu.Lock()
	w := c.watcher
	c.watcher = nil
	c.mu.Unlock()

	if w != nil {
		_ = w.Close()
	}
	c.notifier.Close()
}

// diff returns the sorted setting paths whose values differ.
func diff(a, b map[string]any) []string {
	fa, fb := flatten(a), flatten(b)
	seen := make(map[string]bool, len(fa)+len(fb))
	var paths []string
	for _, m := range []map[string]any{fa, fb} {
		for path := range m {
			if seen[path] {
				continue
			}
			seen[path] = true
			if !reflect.DeepEqual(fa[path], fb[path]) {
				paths = append(paths, path)
			}
		}
	}
	sort.Strings(paths)
	return paths
}

func flatten(m map[string]any) map[string]any {
	out := make(map[string]any)
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, v := range m {
			path := k
			if prefix != "" {
				path = prefix + "." + k
			}
			if sub, ok := v.(map[string]any); ok {
				walk(path, sub)
				continue
			}
			out[path] = v
		}
	}
	walk("", m)
	return out
}
