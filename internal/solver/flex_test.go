package solver

import (
	"testing"

	"github.com/z71200/runtime/internal/geom"
	"github.com/z71200/runtime/internal/tagword"
	"github.com/z71200/runtime/internal/vm"
)

func px(v float32) tagword.Length { return tagword.Length{Unit: tagword.Pxs, V: v} }
func frac(v float32) tagword.Length { return tagword.Length{Unit: tagword.Frac, V: v} }
func auto() tagword.Length { return tagword.Length{Unit: tagword.Auto} }

func TestFracChildFillsParentWidth(t *testing.T) {
	tree := NewTree()
	tree.Root = 0
	tree.Nodes[0] = &Node{ID: 0, Width: px(400), Height: px(100), Display: tagword.Block, Children: []vm.ElementID{1}}
	tree.Nodes[1] = &Node{ID: 1, Width: frac(1.0), Height: px(50)}

	result, err := (Flex{}).Solve(tree, geom.Rectangle{Max: geom.Point{X: 400, Y: 100}}, 16)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	child := result[1]
	if got := child.Dx(); got != 400 {
		t.Fatalf("child width = %v, want 400 (Frac(1.0) of parent)", got)
	}
}

func TestFracChildRespectsParentPadding(t *testing.T) {
	tree := NewTree()
	tree.Root = 0
	tree.Nodes[0] = &Node{
		ID: 0, Width: px(400), Height: px(100), Display: tagword.Block,
		Padding:  tagword.Edges{Top: px(10), Right: px(10), Bottom: px(10), Left: px(10)},
		Children: []vm.ElementID{1},
	}
	tree.Nodes[1] = &Node{ID: 1, Width: frac(1.0), Height: px(50)}

	result, _ := (Flex{}).Solve(tree, geom.Rectangle{Max: geom.Point{X: 400, Y: 100}}, 16)
	if got := result[1].Dx(); got != 380 {
		t.Fatalf("child width = %v, want 380 (400 - 10 - 10 padding)", got)
	}
}

func TestAutoHeightWithNoChildrenIsZero(t *testing.T) {
	tree := NewTree()
	tree.Root = 0
	tree.Nodes[0] = &Node{ID: 0, Width: px(200), Height: auto(), Display: tagword.Block}

	result, err := (Flex{}).Solve(tree, geom.Rectangle{Max: geom.Point{X: 200, Y: 500}}, 16)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if got := result[0].Dy(); got != 0 {
		t.Fatalf("height = %v, want 0 for an Auto-height leaf with no children", got)
	}
}

func TestAutoHeightSumsFlexColChildren(t *testing.T) {
	tree := NewTree()
	tree.Root = 0
	tree.Nodes[0] = &Node{ID: 0, Width: px(200), Height: auto(), Display: tagword.FlexCol, Children: []vm.ElementID{1, 2}}
	tree.Nodes[1] = &Node{ID: 1, Width: px(200), Height: px(30)}
	tree.Nodes[2] = &Node{ID: 2, Width: px(200), Height: px(40)}

	result, _ := (Flex{}).Solve(tree, geom.Rectangle{Max: geom.Point{X: 200, Y: 500}}, 16)
	if got := result[0].Dy(); got != 70 {
		t.Fatalf("height = %v, want 70 (30 + 40, no gap set)", got)
	}
}

func TestGridApproximatesEqualFlexColumns(t *testing.T) {
	tree := NewTree()
	tree.Root = 0
	tree.Nodes[0] = &Node{ID: 0, Width: px(300), Height: px(50), Display: tagword.Grid, Children: []vm.ElementID{1, 2, 3}}
	tree.Nodes[1] = &Node{ID: 1, Width: auto(), Height: auto()}
	tree.Nodes[2] = &Node{ID: 2, Width: auto(), Height: auto()}
	tree.Nodes[3] = &Node{ID: 3, Width: auto(), Height: auto()}

	result, _ := (Flex{}).Solve(tree, geom.Rectangle{Max: geom.Point{X: 300, Y: 50}}, 16)
	for _, id := range []vm.ElementID{1, 2, 3} {
		if got := result[id].Dx(); got != 100 {
			t.Fatalf("column %d width = %v, want 100 (300/3 equal columns)", id, got)
		}
	}
}

func TestDisplayNoneCollapsesToZeroArea(t *testing.T) {
	tree := NewTree()
	tree.Root = 0
	tree.Nodes[0] = &Node{ID: 0, Width: px(200), Height: px(200), Display: tagword.FlexCol, Children: []vm.ElementID{1}}
	tree.Nodes[1] = &Node{ID: 1, Width: px(50), Height: px(50), Display: tagword.DisplayNone}

	result, _ := (Flex{}).Solve(tree, geom.Rectangle{Max: geom.Point{X: 200, Y: 200}}, 16)
	if !result[1].Empty() {
		t.Fatalf("DisplayNone element rect = %+v, want empty", result[1])
	}
}

func TestAutoMarginResolvesToZero(t *testing.T) {
	tree := NewTree()
	tree.Root = 0
	tree.Nodes[0] = &Node{ID: 0, Width: px(200), Height: px(100), Display: tagword.Block, Children: []vm.ElementID{1}}
	tree.Nodes[1] = &Node{
		ID: 1, Width: px(50), Height: px(50),
		Margin: tagword.Edges{Top: auto(), Right: auto(), Bottom: auto(), Left: auto()},
	}

	result, _ := (Flex{}).Solve(tree, geom.Rectangle{Max: geom.Point{X: 200, Y: 100}}, 16)
	child := result[1]
	if child.Min.X != 0 || child.Min.Y != 0 {
		t.Fatalf("child origin = %+v, want (0,0): Auto margins resolve to 0, not centering", child.Min)
	}
}
