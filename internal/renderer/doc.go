// Package renderer presents a text engine's viewport in any of four writing
// modes.
//
// The engine owns the document, its tokens and its scroll position. The
// renderer reads a snapshot of the visible lines after every engine render,
// paints it into a cell grid, and turns pointer and key input back into
// engine commands.
//
// Architecture:
//
//	┌─────────────────────────────────────────┐
//	│        Renderer (facade, event loop)    │
//	├─────────────────────────────────────────┤
//	│  View: Provider │ Synchronizer │ Drag   │
//	├─────────────────────────────────────────┤
//	│  paint: lines, overlays, gutter, chrome │
//	├─────────────────────────────────────────┤
//	│  coords │ fragment │ minimap │ virtual  │
//	├─────────────────────────────────────────┤
//	│  orientation │ snapshot │ core          │
//	├─────────────────────────────────────────┤
//	│  backend: Terminal (tcell) │ Null       │
//	└─────────────────────────────────────────┘
//
// Usage:
//
//	b, _ := backend.NewTerminal()
//	_ = b.Init()
//	r := renderer.New(b, renderer.DefaultOptions(), logger)
//	r.Open(doc)
//	_ = r.Run(ctx)
package renderer
