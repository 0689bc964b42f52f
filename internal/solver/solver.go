// Package solver implements the flexbox/grid constraint solver
// boundary the layout pass submits its element tree to. A native
// constraint solver is an out-of-scope external collaborator; this
// package is the reference implementation used when none is wired in,
// grounded on gio's layout package generalized from its
// widget-callback model to a resolved-tree model.
package solver

import (
	"github.com/z71200/runtime/internal/geom"
	"github.com/z71200/runtime/internal/tagword"
	"github.com/z71200/runtime/internal/vm"
)

// Node is one element's layout-affecting style, collected by the
// layout pass as it walks the bytecode.
type Node struct {
	ID       vm.ElementID
	Width    tagword.Length
	Height   tagword.Length
	Padding  tagword.Edges
	Margin   tagword.Edges
	Display  tagword.Display
	GapH     tagword.Length
	GapV     tagword.Length
	Children []vm.ElementID
}

// Tree is the complete element tree built by one Layout Pass.
type Tree struct {
	Nodes map[vm.ElementID]*Node
	Root  vm.ElementID
}

// NewTree returns an empty Tree ready for incremental construction.
func NewTree() *Tree {
	return &Tree{Nodes: make(map[vm.ElementID]*Node)}
}

// Solver resolves a Tree's styles into window-coordinate rectangles.
// A concrete native flex/grid/constraint engine implements this in
// production; Flex below is the module's own reference
// implementation.
type Solver interface {
	Solve(tree *Tree, viewport geom.Rectangle, baseFontSizePx float32) (map[vm.ElementID]geom.Rectangle, error)
}
