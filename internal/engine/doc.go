// Package engine provides an in-memory text engine for the renderer.
//
// A Document holds the lines of one file, their syntax tokens and a scroll
// position. It lays itself out with the geometry the view pushes to it and
// reports the visible lines after every change, the way an editor's view
// model would.
//
// # Thread Safety
//
// All Document methods are safe for concurrent use. Notifications are
// delivered after the document's lock is released, so listeners may call
// back into the document.
//
// # Basic Usage
//
//	doc, err := engine.Open("main.go")
//	if err != nil {
//		return err
//	}
//	doc.OnDidRender(func() { ... })
//	doc.Layout(snapshot.Geometry{ViewportWidth: 800, ViewportHeight: 400, LineHeight: 20, CharWidth: 10})
//	vd := doc.ViewportData()
package engine
