package solver

import (
	"github.com/z71200/runtime/internal/geom"
	"github.com/z71200/runtime/internal/tagword"
	"github.com/z71200/runtime/internal/vm"
)

// Flex is the module's reference Solver: a block/flex box model
// generalized from gio's layout.Flex (axis-based main/cross sizing,
// spacing-free here since the bytecode has no spacing mode), adapted
// from its widget-callback shape to a resolved, already-built tree.
//
// Grid is approximated as a FlexRow of equal-width columns: the
// bytecode has no track-sizing syntax, so an N-column grid degenerates
// to N equal flex columns (see DESIGN.md).
type Flex struct{}

// Solve implements Solver.
func (Flex) Solve(tree *Tree, viewport geom.Rectangle, baseFontSizePx float32) (map[vm.ElementID]geom.Rectangle, error) {
	s := &flexSolve{tree: tree, base: baseFontSizePx, result: make(map[vm.ElementID]geom.Rectangle)}
	s.layout(tree.Root, viewport.Min, viewport.Dx(), viewport.Dy())
	return s.result, nil
}

type flexSolve struct {
	tree   *Tree
	base   float32
	result map[vm.ElementID]geom.Rectangle
}

// layout resolves id's box at origin given the available content
// width/height offered by its parent, records the result, and
// returns it.
func (s *flexSolve) layout(id vm.ElementID, origin geom.Point, availW, availH float32) geom.Rectangle {
	n := s.tree.Nodes[id]
	if n == nil {
		r := geom.Rectangle{Min: origin, Max: origin}
		s.result[id] = r
		return r
	}
	if n.Display == tagword.DisplayNone {
		r := geom.Rectangle{Min: origin, Max: origin}
		s.result[id] = r
		return r
	}

	w := n.Width.Resolve(availW, s.base)
	h := n.Height.Resolve(availH, s.base)
	wAuto := w == tagword.AutoSentinel
	hAuto := h == tagword.AutoSentinel
	if wAuto {
		w = availW
	}
	if hAuto {
		h = availH
	}

	padL := n.Padding.Left.Resolve(w, s.base)
	padR := n.Padding.Right.Resolve(w, s.base)
	padT := n.Padding.Top.Resolve(h, s.base)
	padB := n.Padding.Bottom.Resolve(h, s.base)

	contentW := nonNegative(w - padL - padR)
	contentH := nonNegative(h - padT - padB)
	childOrigin := geom.Point{X: origin.X + padL, Y: origin.Y + padT}

	var usedMain, maxCross float32
	horizontal := n.Display == tagword.FlexRow || n.Display == tagword.Grid

	gapH := n.GapH.Resolve(contentW, s.base)
	gapV := n.GapV.Resolve(contentH, s.base)
	gap := gapV
	if horizontal {
		gap = gapH
	}

	columnWidth := contentW
	if n.Display == tagword.Grid && len(n.Children) > 0 {
		columnWidth = nonNegative((contentW - gap*float32(len(n.Children)-1)) / float32(len(n.Children)))
	}

	cursor := float32(0)
	for i, cid := range n.Children {
		child := s.tree.Nodes[cid]
		mL, mR, mT, mB := childMargins(child, contentW, contentH, s.base)

		var childAvailW, childAvailH float32
		var pos geom.Point
		if horizontal {
			childAvailW = nonNegative(columnWidth - mL - mR)
			childAvailH = nonNegative(contentH - mT - mB)
			pos = geom.Point{X: childOrigin.X + cursor + mL, Y: childOrigin.Y + mT}
		} else {
			childAvailW = nonNegative(contentW - mL - mR)
			childAvailH = nonNegative(contentH - mT - mB)
			pos = geom.Point{X: childOrigin.X + mL, Y: childOrigin.Y + cursor + mT}
		}

		r := s.layout(cid, pos, childAvailW, childAvailH)

		if horizontal {
			step := r.Dx() + mL + mR
			if n.Display == tagword.Grid {
				step = columnWidth + mL + mR
			}
			cursor += step
			if cross := r.Dy() + mT + mB; cross > maxCross {
				maxCross = cross
			}
		} else {
			cursor += r.Dy() + mT + mB
			if cross := r.Dx() + mL + mR; cross > maxCross {
				maxCross = cross
			}
		}
		if i < len(n.Children)-1 {
			cursor += gap
		}
	}
	usedMain = cursor

	if wAuto {
		if horizontal {
			w = usedMain + padL + padR
		} else {
			w = maxCross + padL + padR
		}
	}
	if hAuto {
		if horizontal {
			h = maxCross + padT + padB
		} else {
			h = usedMain + padT + padB
		}
	}

	r := geom.Rectangle{Min: origin, Max: geom.Point{X: origin.X + w, Y: origin.Y + h}}
	s.result[id] = r
	return r
}

func childMargins(n *Node, availW, availH, base float32) (left, right, top, bottom float32) {
	if n == nil {
		return 0, 0, 0, 0
	}
	left = resolveNonAuto(n.Margin.Left, availW, base)
	right = resolveNonAuto(n.Margin.Right, availW, base)
	top = resolveNonAuto(n.Margin.Top, availH, base)
	bottom = resolveNonAuto(n.Margin.Bottom, availH, base)
	return
}

// resolveNonAuto treats an Auto margin as zero: Auto sizing is defined
// for width/height content sizing, not for margin centering.
func resolveNonAuto(l tagword.Length, parent, base float32) float32 {
	v := l.Resolve(parent, base)
	if v == tagword.AutoSentinel {
		return 0
	}
	return v
}

func nonNegative(f float32) float32 {
	if f < 0 {
		return 0
	}
	return f
}
