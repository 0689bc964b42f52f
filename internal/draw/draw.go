// Package draw declares the Canvas boundary the Paint Pass draws
// through. The actual rasterizer (GPU or otherwise) lives outside this
// module; Canvas is the narrow surface the paint pass needs from it,
// shaped after gio's op/paint draw-call split (a ColorOp/material
// followed by a PaintOp/geometry) but collapsed into single calls
// since this module has no retained op list of its own to replay.
package draw

import (
	"github.com/z71200/runtime/internal/geom"
	"github.com/z71200/runtime/internal/tagword"
)

// Canvas receives one frame's resolved draw calls in the order the
// Paint Pass encounters the Rect/Arc/Text instructions that produced
// them while replaying the bytecode.
type Canvas interface {
	// Rect fills an axis-aligned box in window coordinates.
	Rect(box geom.Rectangle, color tagword.Color)
	// Arc fills a circular sector centered at center, with the given
	// radius, start angle and sweep, both in radians.
	Arc(center geom.Point, radius, startRad, sweepRad float32, color tagword.Color)
	// Text draws a run of shaped glyphs at the given origin; the Paint
	// Pass has already resolved the font and color through the pen and
	// shaped the run via textshape.Shaper.
	Text(origin geom.Point, glyphs []Glyph, color tagword.Color)
	// SetCursor requests the host change the pointer cursor shown
	// over the current frame. Called for every cursor instruction of a
	// hovered element, changed or not; the last call in paint order
	// wins.
	SetCursor(kind CursorKind)
}

// Glyph is one shaped glyph, positioned relative to the run's origin.
// It's the common currency between textshape.Shaper (which produces
// it) and Canvas (which consumes it); neither package imports the
// other.
type Glyph struct {
	GID     uint32
	Advance float32
	X, Y    float32
}

// CursorKind mirrors vm.CursorKind without importing the vm package,
// keeping this boundary interface dependency-free of the interpreter.
type CursorKind uint8

const (
	CursorDefault CursorKind = iota
	CursorPointer
)
