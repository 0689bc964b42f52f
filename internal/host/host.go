// Package host declares the windowing/GPU surface boundary: present
// the frame just painted and pump pointer/keyboard events into the
// render loop. The window system and GPU live outside this module;
// Surface is the narrow interface the render loop needs from whatever
// surface a platform backend provides (an app.Window in gio's own
// terms).
package host

import "github.com/z71200/runtime/internal/geom"

// PointerSample is one polled pointer state, the render loop's input
// to input.Router.Update per frame.
type PointerSample struct {
	Position    geom.Point
	ButtonDown  bool
}

// Surface is the window/GPU boundary a render loop drives once per
// frame: sample the pointer, then present whatever the Paint Pass
// just drew into the canvas bound to this surface.
type Surface interface {
	// Poll returns the latest pointer sample and reports whether the
	// surface wants the loop to keep running (false on window close).
	Poll() (PointerSample, bool)
	// Size returns the surface's current drawable size in pixels,
	// the root element's viewport for the constraint solver.
	Size() (width, height float32)
	// Present flips the frame just painted onto the screen.
	Present() error
	// Close releases the surface's OS resources.
	Close() error
}
