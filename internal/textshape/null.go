package textshape

import "github.com/z71200/runtime/internal/draw"

// Null is a Shaper that measures everything as zero-sized and shapes
// no glyphs, used where a real text engine isn't wired in.
type Null struct{}

func (Null) Shape(text []byte, style Style) []draw.Glyph         { return nil }
func (Null) Measure(text []byte, style Style) (float32, float32) { return 0, 0 }
