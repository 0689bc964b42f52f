// Package layoutpass implements the Layout Pass vm.Visitor: it walks
// the bytecode once, builds a solver.Tree from the style-bearing
// instructions, and leaves drawing instructions untouched, since
// Rect/Arc/Text/Cursor/Event carry no layout side effect of their own.
// The caller submits the resulting Tree to a solver.Solver after Run
// returns.
package layoutpass

import (
	"github.com/z71200/runtime/internal/solver"
	"github.com/z71200/runtime/internal/tagword"
	"github.com/z71200/runtime/internal/vm"
)

// StateProvider answers the gated-jump state query the Layout Pass
// needs. The Layout Pass always reads the *previous* frame's bit,
// the state as it stood before this frame's hit test, so it sees the
// board as it was left at the end of the last frame.
type StateProvider interface {
	PreviousState(id vm.ElementID, kind vm.StateKind) bool
}

// Pass is a single-use vm.Visitor: build a new Pass per frame.
type Pass struct {
	states StateProvider
	tree   *solver.Tree
	order  []vm.ElementID
}

// New returns a Pass that consults states for gated jumps.
func New(states StateProvider) *Pass {
	return &Pass{states: states, tree: solver.NewTree()}
}

// Tree returns the element tree accumulated so far. Call after Run
// returns to submit it to a solver.Solver.
func (p *Pass) Tree() *solver.Tree { return p.tree }

// Order returns element ids in depth-first Enter order, the z-order
// the input router hit-tests against (later entries draw on top).
func (p *Pass) Order() []vm.ElementID { return p.order }

func (p *Pass) node(id vm.ElementID) *solver.Node {
	n := p.tree.Nodes[id]
	if n == nil {
		n = &solver.Node{ID: id}
		p.tree.Nodes[id] = n
	}
	return n
}

func (p *Pass) Enter(id, parent vm.ElementID, hasParent bool) {
	p.node(id)
	p.order = append(p.order, id)
	if !hasParent {
		p.tree.Root = id
		return
	}
	pn := p.node(parent)
	pn.Children = append(pn.Children, id)
}

func (p *Pass) Leave(id vm.ElementID) {}

func (p *Pass) Width(id vm.ElementID, l tagword.Length)  { p.node(id).Width = l }
func (p *Pass) Height(id vm.ElementID, l tagword.Length) { p.node(id).Height = l }
func (p *Pass) Padding(id vm.ElementID, e tagword.Edges) { p.node(id).Padding = e }
func (p *Pass) Margin(id vm.ElementID, e tagword.Edges)  { p.node(id).Margin = e }
func (p *Pass) Display(id vm.ElementID, d tagword.Display) {
	p.node(id).Display = d
}
func (p *Pass) Gap(id vm.ElementID, horizontal, vertical tagword.Length) {
	n := p.node(id)
	n.GapH = horizontal
	n.GapV = vertical
}

// Rect, Arc, Text, Cursor and Event are drawing/paint-side concerns
// the Layout Pass doesn't act on.
func (p *Pass) Rect(vm.ElementID, tagword.Length, tagword.Length, tagword.Length, tagword.Length, vm.Pen) {
}
func (p *Pass) Arc(vm.ElementID, tagword.Length, tagword.Length, tagword.Length, tagword.Length, tagword.Length, vm.Pen) {
}
func (p *Pass) Text(vm.ElementID, tagword.Length, tagword.Length, []byte, vm.Pen) {}
func (p *Pass) Cursor(vm.ElementID, vm.CursorKind)                               {}
func (p *Pass) Event(vm.ElementID, uint64)                                       {}

func (p *Pass) StateBit(id vm.ElementID, kind vm.StateKind) bool {
	if p.states == nil {
		return false
	}
	return p.states.PreviousState(id, kind)
}
