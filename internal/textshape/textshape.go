// Package textshape declares the Shaper boundary the Paint Pass uses
// to turn pen-resolved font state and UTF-8 bytes into positioned
// glyphs and measured extents. Font rasterization and shaping live
// outside this module; Shaper is the narrow surface the paint pass
// needs from whatever shaping engine a host wires in.
package textshape

import "github.com/z71200/runtime/internal/draw"

// Style is the subset of vm.Pen that affects shaping, passed by value
// so this package stays independent of the vm package.
type Style struct {
	FontFamily string
	SizePx     float32
	Align      Align
}

// Align mirrors tagword.Align without importing tagword.
type Align uint64

const (
	AlignStart Align = iota
	AlignCenter
	AlignEnd
	AlignJustify
)

// Shaper turns text into glyph runs and measures their extent.
type Shaper interface {
	// Shape lays out text under style and returns one glyph per rune
	// (ligatures and complex scripts are a shaping-engine concern, not
	// modeled at this boundary).
	Shape(text []byte, style Style) []draw.Glyph
	// Measure returns the advance width and line height text would
	// occupy under style, without producing glyphs. The Layout Pass
	// never calls this directly, since text carries no layout side
	// effect of its own; it exists for hosts that want to support
	// text-driven Auto sizing as a documented extension.
	Measure(text []byte, style Style) (width, height float32)
}
