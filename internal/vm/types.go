// Package vm implements the stack-based bytecode interpreter:
// program counter, argument stack, register file, scope stack, and
// the shared decode/jump/argument-fetch logic that both the layout
// and paint passes drive through a pass-specific Visitor.
//
// The split mirrors gio's ops.Reader, which decodes one shared
// instruction stream and lets callers (here, Visitor implementations)
// react to ops as they're read, rather than building an AST first.
package vm

import "github.com/z71200/runtime/internal/tagword"

// ElementID identifies an element by its position in depth-first
// Enter order. IDs are assigned by the Machine, starting at 0 for
// each Run, and are stable across frames only if the client keeps
// its Enter/Leave structure stable.
type ElementID uint32

// CursorKind is the window cursor hint set by CursorDefault or
// CursorPointer.
type CursorKind uint8

const (
	CursorDefault CursorKind = iota
	CursorPointer
)

// StateKind names the per-element input state bit a Hover,
// MousePressed or Clicked instruction gates its jump on.
type StateKind uint8

const (
	StateHover StateKind = iota
	StatePressed
	StateClicked
)

// Pen is the interpreter's current drawing attributes: color, font
// size/alignment/family, and cursor hint. It resets to its default
// value on every Enter, so no element inherits attributes set by a
// sibling or ancestor's instructions.
type Pen struct {
	Color      tagword.Color
	FontSizePx float32
	FontFamily string
	FontAlign  tagword.Align
	Cursor     CursorKind
}

// DefaultPen is the attribute set an element starts with before any
// Color/FontFamily/FontSize/FontAlign instruction runs in its scope.
var DefaultPen = Pen{
	Color:      tagword.Color{Space: tagword.Rgb, C0: 0, C1: 0, C2: 0, C3: 255},
	FontSizePx: 16,
	FontAlign:  tagword.AlignStart,
	Cursor:     CursorDefault,
}
