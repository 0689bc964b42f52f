package vm

import "github.com/z71200/runtime/internal/tagword"

// Visitor receives the side effects of each decoded instruction as
// the Machine walks the bytecode. The Layout and Paint passes each
// implement Visitor, reacting to the calls relevant to their pass
// and ignoring the rest, so the decode loop, argument fetch and jump
// resolution are written exactly once and shared between both passes
// over the same program.
type Visitor interface {
	// Enter is called when a new element scope opens, after the
	// Machine has pushed id onto the scope stack and reset the pen.
	Enter(id ElementID, parent ElementID, hasParent bool)
	// Leave is called when id's scope closes, before it is popped.
	Leave(id ElementID)

	Width(id ElementID, l tagword.Length)
	Height(id ElementID, l tagword.Length)
	Padding(id ElementID, e tagword.Edges)
	Margin(id ElementID, e tagword.Edges)
	Display(id ElementID, d tagword.Display)
	Gap(id ElementID, horizontal, vertical tagword.Length)

	Rect(id ElementID, x, y, w, h tagword.Length, pen Pen)
	Arc(id ElementID, x, y, radius, startRad, sweepRad tagword.Length, pen Pen)
	Text(id ElementID, x, y tagword.Length, text []byte, pen Pen)
	Cursor(id ElementID, kind CursorKind)
	Event(id ElementID, evtID uint64)

	// StateBit reports whether id's kind input-state bit is set for
	// the current frame. The Layout pass answers with last frame's
	// state (geometry doesn't exist yet); the Paint pass answers with
	// this frame's freshly hit-tested state.
	StateBit(id ElementID, kind StateKind) bool
}
