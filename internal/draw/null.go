package draw

import (
	"github.com/z71200/runtime/internal/geom"
	"github.com/z71200/runtime/internal/tagword"
)

// Null is a Canvas that discards everything drawn to it, used where a
// real rasterizer isn't wired in (the headless host, tests).
type Null struct{}

func (Null) Rect(geom.Rectangle, tagword.Color)                        {}
func (Null) Arc(geom.Point, float32, float32, float32, tagword.Color)  {}
func (Null) Text(geom.Point, []Glyph, tagword.Color)                   {}
func (Null) SetCursor(CursorKind)                                      {}
