// Package paintpass implements the Paint Pass vm.Visitor: it replays
// the same bytecode the Layout Pass just walked, this time against
// resolved geometry, turning Rect/Arc/Text/Cursor/Event instructions
// into draw.Canvas calls, textshape.Shaper runs and a queued event
// list.
package paintpass

import (
	"github.com/z71200/runtime/internal/draw"
	"github.com/z71200/runtime/internal/geom"
	"github.com/z71200/runtime/internal/tagword"
	"github.com/z71200/runtime/internal/textshape"
	"github.com/z71200/runtime/internal/vm"
)

// StateProvider answers the gated-jump state query the Paint Pass
// needs: unlike the Layout Pass, it reads *this* frame's freshly
// hit-tested bit, computed against the previous frame's geometry and
// the pointer position sampled at the start of this frame.
type StateProvider interface {
	CurrentState(id vm.ElementID, kind vm.StateKind) bool
}

// QueuedEvent is one Event instruction encountered during the walk,
// recorded in encounter order for the RPC layer to flush afterward.
type QueuedEvent struct {
	Element vm.ElementID
	EventID uint64
}

// Pass is a single-use vm.Visitor: build a new Pass per frame.
type Pass struct {
	geometry map[vm.ElementID]geom.Rectangle
	base     float32
	canvas   draw.Canvas
	shaper   textshape.Shaper
	states   StateProvider

	events []QueuedEvent
}

// New returns a Pass that paints into canvas using geometry (the map
// the Layout Pass's solver.Solver produced this frame) and base as
// the root font size used to resolve Rems arguments.
func New(geometry map[vm.ElementID]geom.Rectangle, base float32, canvas draw.Canvas, shaper textshape.Shaper, states StateProvider) *Pass {
	return &Pass{geometry: geometry, base: base, canvas: canvas, shaper: shaper, states: states}
}

// Events returns the Event instructions encountered this frame, in
// bytecode encounter order.
func (p *Pass) Events() []QueuedEvent { return p.events }

func (p *Pass) Enter(id, parent vm.ElementID, hasParent bool) {}
func (p *Pass) Leave(id vm.ElementID)                         {}

func (p *Pass) Width(vm.ElementID, tagword.Length)    {}
func (p *Pass) Height(vm.ElementID, tagword.Length)   {}
func (p *Pass) Padding(vm.ElementID, tagword.Edges)   {}
func (p *Pass) Margin(vm.ElementID, tagword.Edges)    {}
func (p *Pass) Display(vm.ElementID, tagword.Display) {}
func (p *Pass) Gap(vm.ElementID, tagword.Length, tagword.Length) {
}

func (p *Pass) box(id vm.ElementID) (geom.Rectangle, bool) {
	r, ok := p.geometry[id]
	return r, ok
}

func (p *Pass) Rect(id vm.ElementID, x, y, w, h tagword.Length, pen vm.Pen) {
	box, ok := p.box(id)
	if !ok {
		return
	}
	bw, bh := box.Dx(), box.Dy()
	rx := resolveOrZero(x, bw, p.base)
	ry := resolveOrZero(y, bh, p.base)
	rw := resolveOrZero(w, bw, p.base)
	rh := resolveOrZero(h, bh, p.base)
	abs := geom.Rectangle{
		Min: geom.Point{X: box.Min.X + rx, Y: box.Min.Y + ry},
		Max: geom.Point{X: box.Min.X + rx + rw, Y: box.Min.Y + ry + rh},
	}
	p.canvas.Rect(abs, pen.Color)
}

func (p *Pass) Arc(id vm.ElementID, x, y, radius, startRad, sweepRad tagword.Length, pen vm.Pen) {
	box, ok := p.box(id)
	if !ok {
		return
	}
	bw, bh := box.Dx(), box.Dy()
	cx := resolveOrZero(x, bw, p.base)
	cy := resolveOrZero(y, bh, p.base)
	r := resolveOrZero(radius, bw, p.base)
	center := geom.Point{X: box.Min.X + cx, Y: box.Min.Y + cy}
	p.canvas.Arc(center, r, p.angle(startRad), p.angle(sweepRad), pen.Color)
}

// angle resolves a length used as a radian measure: Pxs and Frac are
// both taken as literal radians (an angle has no parent dimension to
// be a fraction of), Rems scale by the root font size as usual.
func (p *Pass) angle(l tagword.Length) float32 {
	return resolveOrZero(l, 1, p.base)
}

func (p *Pass) Text(id vm.ElementID, x, y tagword.Length, text []byte, pen vm.Pen) {
	box, ok := p.box(id)
	if !ok || p.shaper == nil {
		return
	}
	bw, bh := box.Dx(), box.Dy()
	tx := resolveOrZero(x, bw, p.base)
	ty := resolveOrZero(y, bh, p.base)
	style := textshape.Style{
		FontFamily: pen.FontFamily,
		SizePx:     pen.FontSizePx,
		Align:      textshape.Align(pen.FontAlign),
	}
	glyphs := p.shaper.Shape(text, style)
	origin := geom.Point{X: box.Min.X + tx, Y: box.Min.Y + ty}
	p.canvas.Text(origin, glyphs, pen.Color)
}

func (p *Pass) Cursor(id vm.ElementID, kind vm.CursorKind) {
	if p.canvas == nil {
		return
	}
	if !p.StateBit(id, vm.StateHover) {
		return
	}
	switch kind {
	case vm.CursorPointer:
		p.canvas.SetCursor(draw.CursorPointer)
	default:
		p.canvas.SetCursor(draw.CursorDefault)
	}
}

func (p *Pass) Event(id vm.ElementID, evtID uint64) {
	p.events = append(p.events, QueuedEvent{Element: id, EventID: evtID})
}

func (p *Pass) StateBit(id vm.ElementID, kind vm.StateKind) bool {
	if p.states == nil {
		return false
	}
	return p.states.CurrentState(id, kind)
}

func resolveOrZero(l tagword.Length, parent, base float32) float32 {
	v := l.Resolve(parent, base)
	if v == tagword.AutoSentinel {
		return 0
	}
	return v
}
