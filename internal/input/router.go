// Package input implements the hit-test router: it turns a raw
// pointer position and button state into per-element hover/pressed/
// clicked bits, keyed by the positional element ids the Layout Pass
// assigns each frame. Grounded on gio's io/router pointerQueue (a
// tag-keyed hit tree walked back-to-front to find the topmost handler
// under the pointer), adapted here to walk a flat depth-first order
// list against resolved rectangles instead of a retained op tree,
// since this module has no handler registration step of its own: hit
// areas are implicit in an element's resolved box, not separately
// declared.
package input

import (
	"github.com/z71200/runtime/internal/geom"
	"github.com/z71200/runtime/internal/vm"
)

// Bits is one element's input state for a single frame.
type Bits struct {
	Hover   bool
	Pressed bool
	Clicked bool
}

// Router tracks hover/pressed/clicked across frames. It is not
// goroutine-safe; the caller serializes access under the same lock
// that guards a frame's page access.
type Router struct {
	geometry map[vm.ElementID]geom.Rectangle
	order    []vm.ElementID

	previous map[vm.ElementID]Bits
	current  map[vm.ElementID]Bits

	pressedOn vm.ElementID
	hasPress  bool
}

// NewRouter returns an empty Router. Call SetGeometry once per frame,
// before Update, with the previous frame's resolved rectangles and
// the Layout Pass's depth-first Enter order.
func NewRouter() *Router {
	return &Router{
		previous: make(map[vm.ElementID]Bits),
		current:  make(map[vm.ElementID]Bits),
	}
}

// SetGeometry installs the rectangles and z-order a frame's hit tests
// run against. Both the Layout and Paint Pass of a given frame
// hit-test against the *previous* frame's resolved geometry, since the
// current frame's geometry doesn't exist until after the Layout Pass
// (and its solver.Solver call) completes.
func (r *Router) SetGeometry(geometry map[vm.ElementID]geom.Rectangle, order []vm.ElementID) {
	r.geometry = geometry
	r.order = order
}

// hitTest returns the topmost element containing pos, walking the
// depth-first order back-to-front: later Enter instructions draw over
// earlier ones, and a nested child's Enter always follows its
// parent's in the order, so the last match is the most specific one
// under the pointer.
func (r *Router) hitTest(pos geom.Point) (vm.ElementID, bool) {
	for i := len(r.order) - 1; i >= 0; i-- {
		id := r.order[i]
		box, ok := r.geometry[id]
		if !ok || box.Empty() {
			continue
		}
		if box.Contains(pos) {
			return id, true
		}
	}
	return 0, false
}

// Update applies one frame's pointer sample. It must be called
// exactly once per frame, before the Layout Pass starts: hit-testing
// runs ahead of both passes. PreviousState reads the state as it
// stood *before* this call, for the Layout Pass; CurrentState
// exposes the state Update just computed for the Paint Pass to read,
// producing the asymmetry between the two passes.
func (r *Router) Update(pos geom.Point, buttonDown bool) {
	r.previous = r.current
	next := make(map[vm.ElementID]Bits, len(r.previous))

	hit, ok := r.hitTest(pos)

	if ok {
		b := next[hit]
		b.Hover = true
		next[hit] = b
	}

	switch {
	case buttonDown && !r.hasPress:
		if ok {
			r.hasPress = true
			r.pressedOn = hit
			b := next[hit]
			b.Pressed = true
			next[hit] = b
		}
	case buttonDown && r.hasPress:
		b := next[r.pressedOn]
		b.Pressed = true
		if r.pressedOn == hit {
			b.Hover = true
		}
		next[r.pressedOn] = b
	case !buttonDown && r.hasPress:
		if ok && hit == r.pressedOn {
			b := next[hit]
			b.Clicked = true
			next[hit] = b
		}
		r.hasPress = false
	}

	r.current = next
}

// EndFrame clears the one-frame clicked pulse after the Paint Pass
// has had a chance to observe it: clicked is true for exactly one
// frame.
func (r *Router) EndFrame() {
	for id, b := range r.current {
		if b.Clicked {
			b.Clicked = false
			r.current[id] = b
		}
	}
}

// PreviousState implements layoutpass.StateProvider.
func (r *Router) PreviousState(id vm.ElementID, kind vm.StateKind) bool {
	return bit(r.previous[id], kind)
}

// CurrentState implements paintpass.StateProvider.
func (r *Router) CurrentState(id vm.ElementID, kind vm.StateKind) bool {
	return bit(r.current[id], kind)
}

func bit(b Bits, kind vm.StateKind) bool {
	switch kind {
	case vm.StateHover:
		return b.Hover
	case vm.StatePressed:
		return b.Pressed
	case vm.StateClicked:
		return b.Clicked
	default:
		return false
	}
}
