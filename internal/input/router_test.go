package input

import (
	"testing"

	"github.com/z71200/runtime/internal/geom"
	"github.com/z71200/runtime/internal/vm"
)

func rect(x0, y0, x1, y1 float32) geom.Rectangle {
	return geom.Rectangle{Min: geom.Point{X: x0, Y: y0}, Max: geom.Point{X: x1, Y: y1}}
}

func TestHitTestNothingUnderPointerHoversNothing(t *testing.T) {
	r := NewRouter()
	r.SetGeometry(map[vm.ElementID]geom.Rectangle{0: rect(0, 0, 10, 10)}, []vm.ElementID{0})

	r.Update(geom.Point{X: 500, Y: 500}, false)
	if r.CurrentState(0, vm.StateHover) {
		t.Fatal("hover should be false when the pointer is outside every element")
	}
}

func TestHoverTracksTopmostElementInOrder(t *testing.T) {
	r := NewRouter()
	// id 1 is a child of id 0, drawn on top, and overlaps it: the
	// later DFS entry wins the hit test.
	r.SetGeometry(map[vm.ElementID]geom.Rectangle{
		0: rect(0, 0, 100, 100),
		1: rect(0, 0, 50, 50),
	}, []vm.ElementID{0, 1})

	r.Update(geom.Point{X: 10, Y: 10}, false)
	if !r.CurrentState(1, vm.StateHover) {
		t.Fatal("expected the topmost (later DFS order) element to be hovered")
	}
	if r.CurrentState(0, vm.StateHover) {
		t.Fatal("the occluded parent should not be hovered when the child also matches")
	}
}

func TestPressThenReleaseInsideProducesOneFrameClick(t *testing.T) {
	r := NewRouter()
	r.SetGeometry(map[vm.ElementID]geom.Rectangle{0: rect(0, 0, 100, 100)}, []vm.ElementID{0})

	r.Update(geom.Point{X: 5, Y: 5}, true) // press
	if !r.CurrentState(0, vm.StatePressed) {
		t.Fatal("expected pressed after a press inside the element")
	}
	if r.CurrentState(0, vm.StateClicked) {
		t.Fatal("clicked should not fire on press")
	}

	r.Update(geom.Point{X: 5, Y: 5}, false) // release, still inside
	if !r.CurrentState(0, vm.StateClicked) {
		t.Fatal("expected clicked after releasing inside the pressed element")
	}

	r.EndFrame()
	if r.CurrentState(0, vm.StateClicked) {
		t.Fatal("clicked must clear after EndFrame: it's a one-frame pulse")
	}
}

func TestReleaseOutsidePressedElementDoesNotClick(t *testing.T) {
	r := NewRouter()
	r.SetGeometry(map[vm.ElementID]geom.Rectangle{0: rect(0, 0, 100, 100)}, []vm.ElementID{0})

	r.Update(geom.Point{X: 5, Y: 5}, true)
	r.Update(geom.Point{X: 500, Y: 500}, false) // released way outside

	if r.CurrentState(0, vm.StateClicked) {
		t.Fatal("clicked should not fire when the release lands outside the element")
	}
}

func TestLayoutPassSeesPreviousFrameState(t *testing.T) {
	r := NewRouter()
	r.SetGeometry(map[vm.ElementID]geom.Rectangle{0: rect(0, 0, 100, 100)}, []vm.ElementID{0})

	// Frame 1: pointer enters and hovers.
	r.Update(geom.Point{X: 5, Y: 5}, false)
	if r.PreviousState(0, vm.StateHover) {
		t.Fatal("before any prior frame, PreviousState must be false")
	}

	// Frame 2: pointer leaves. The Layout Pass for frame 2 runs after
	// Update for frame 2 and must still see frame 1's hover bit, which
	// Update just moved into `previous`.
	r.Update(geom.Point{X: 500, Y: 500}, false)
	if !r.PreviousState(0, vm.StateHover) {
		t.Fatal("PreviousState should report frame 1's hover bit during frame 2")
	}
	if r.CurrentState(0, vm.StateHover) {
		t.Fatal("CurrentState should report frame 2's (no longer hovering) bit")
	}
}
