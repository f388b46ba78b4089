// Package config provides the viewer configuration.
//
// Settings are merged from three sources, higher overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← TATEVIEW_* (highest priority)
//	├─────────────────────────────┤
//	│  2. Config File             │  ← ~/.config/tateview/config.toml or .yaml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// # Sub-packages
//
//   - loader: TOML, YAML and environment variable sources, map merging
//   - notify: change notification to subscribers
//   - watcher: file watching for live reload
//
// # Example Configuration
//
//	# ~/.config/tateview/config.toml
//	[view]
//	mode = "tate"
//	theme = "monokai"
//	language = "go"
//
//	[grid]
//	cell_width = 9
//	cell_height = 18
//
//	[minimap]
//	enabled = true
//	scale = 0.2
//
//	[gutter]
//	line_numbers = "relative"
//
// # Usage
//
//	cfg := config.New(config.DefaultPath())
//	if err := cfg.Load(ctx); err != nil {
//	    return err
//	}
//	opts, err := cfg.Current().RendererOptions()
//
//	cfg.Subscribe(func(ch notify.Change) {
//	    if ch.Type == notify.ChangeReload {
//	        // apply ch.NewValue.(config.ViewConfig)
//	    }
//	})
//	_ = cfg.Watch()
package config
