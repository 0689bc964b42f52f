package tagword

// Display is the value packed into a Display instruction's word
// field: Block, FlexRow, FlexCol, Grid or None.
type Display uint64

const (
	Block Display = iota
	FlexRow
	FlexCol
	Grid
	DisplayNone
)

// Align is the value packed into a FontAlign instruction's word
// field.
type Align uint64

const (
	AlignStart Align = iota
	AlignCenter
	AlignEnd
	AlignJustify
)

// Edges holds the four lengths an Padding or Margin instruction
// contributes to an element's box, in the order the instruction's
// four arguments are read: top, right, bottom, left.
type Edges struct {
	Top, Right, Bottom, Left Length
}
