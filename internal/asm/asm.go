// Package asm implements the line-oriented bytecode assembler behind
// cmd/z71200c: a human-readable instruction listing compiles to the
// binary tagged-word stream the interpreter reads. It exists for
// fixtures and manual testing, not as a general authoring surface —
// it does not expose PushArg/PullArg/register chaining syntax; tests
// that need that resolution path build the tagword.Word sequence
// directly.
package asm

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/z71200/runtime/internal/tagword"
)

// slotKind distinguishes the three ways a tagged-word slot's payload
// is produced once the assembler knows the whole program's layout.
type slotKind int

const (
	slotLiteral slotKind = iota
	slotJump
	slotTextPtr
)

type slot struct {
	kind    slotKind
	tag     tagword.Tag
	payload uint64 // slotLiteral
	label   string // slotJump
	literal int    // slotTextPtr: index into Assembler.literals
}

// Assembler compiles one program's source text to bytecode.
type Assembler struct {
	slots    []slot
	labels   map[string]int // label -> slot index
	literals [][]byte
	litIndex map[string]int
}

// New returns an empty Assembler.
func New() *Assembler {
	return &Assembler{labels: make(map[string]int), litIndex: make(map[string]int)}
}

// Assemble compiles src and returns the finished page bytes, with the
// instruction stream starting at byte 0 and the text-literal pool
// immediately after it. The returned root pointer is always 0: the
// first line must be an `enter`.
func Assemble(src string) (page []byte, rootPtr uint64, err error) {
	a := New()
	if err := a.compile(src); err != nil {
		return nil, 0, err
	}
	return a.emit()
}

func (a *Assembler) compile(src string) error {
	scanner := bufio.NewScanner(strings.NewReader(src))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "label:") {
			name := strings.TrimPrefix(line, "label:")
			a.labels[name] = len(a.slots)
			continue
		}
		fields := strings.Fields(line)
		if err := a.compileInstruction(fields); err != nil {
			return fmt.Errorf("asm: line %d: %w", lineNo, err)
		}
	}
	return scanner.Err()
}

func (a *Assembler) pushLiteral(tag tagword.Tag, payload uint64) {
	a.slots = append(a.slots, slot{kind: slotLiteral, tag: tag, payload: payload})
}

func (a *Assembler) pushJump(tag tagword.Tag, label string) {
	a.slots = append(a.slots, slot{kind: slotJump, tag: tag, label: label})
}

func (a *Assembler) pushTextPtr(text string) {
	idx, ok := a.litIndex[text]
	if !ok {
		idx = len(a.literals)
		a.literals = append(a.literals, []byte(text))
		a.litIndex[text] = idx
	}
	a.slots = append(a.slots, slot{kind: slotTextPtr, tag: tagword.TextPtr, literal: idx})
}

func (a *Assembler) compileInstruction(f []string) error {
	if len(f) == 0 {
		return fmt.Errorf("empty instruction")
	}
	op, args := f[0], f[1:]

	length := func(i int) (tagword.Tag, uint64, error) { return parseLength(args[i]) }
	pushLen := func(i int) error {
		tag, payload, err := length(i)
		if err != nil {
			return err
		}
		a.pushLiteral(tag, payload)
		return nil
	}
	pushNLens := func(n int) error {
		if len(args) < n {
			return fmt.Errorf("%s: want %d length args, got %d", op, n, len(args))
		}
		for i := 0; i < n; i++ {
			if err := pushLen(i); err != nil {
				return err
			}
		}
		return nil
	}

	switch op {
	case "enter":
		a.pushLiteral(tagword.Enter, 0)
	case "leave":
		a.pushLiteral(tagword.Leave, 0)
	case "width":
		a.pushLiteral(tagword.Width, 0)
		return pushLen(0)
	case "height":
		a.pushLiteral(tagword.Height, 0)
		return pushLen(0)
	case "padding":
		a.pushLiteral(tagword.Padding, 0)
		return pushNLens(4)
	case "margin":
		a.pushLiteral(tagword.Margin, 0)
		return pushNLens(4)
	case "display":
		if len(args) != 1 {
			return fmt.Errorf("display: want 1 arg")
		}
		d, err := parseDisplay(args[0])
		if err != nil {
			return err
		}
		a.pushLiteral(tagword.Display, uint64(d))
	case "gap":
		a.pushLiteral(tagword.Gap, 0)
		return pushNLens(2)
	case "color":
		if len(args) != 1 {
			return fmt.Errorf("color: want 1 arg")
		}
		tag, payload, err := parseColor(args[0])
		if err != nil {
			return err
		}
		a.pushLiteral(tagword.Color, 0)
		a.pushLiteral(tag, payload)
	case "rect":
		a.pushLiteral(tagword.Rect, 0)
		return pushNLens(4)
	case "arc":
		a.pushLiteral(tagword.Arc, 0)
		return pushNLens(5)
	case "text":
		if len(args) != 3 {
			return fmt.Errorf("text: want x, y, \"literal\"")
		}
		a.pushLiteral(tagword.Text, 0)
		if err := pushLen(0); err != nil {
			return err
		}
		if err := pushLen(1); err != nil {
			return err
		}
		lit, err := parseString(args[2])
		if err != nil {
			return err
		}
		a.pushTextPtr(lit)
	case "fontfamily":
		if len(args) != 1 {
			return fmt.Errorf("fontfamily: want \"name\"")
		}
		lit, err := parseString(args[0])
		if err != nil {
			return err
		}
		a.pushLiteral(tagword.FontFamily, 0)
		a.pushTextPtr(lit)
	case "fontsize":
		a.pushLiteral(tagword.FontSize, 0)
		return pushLen(0)
	case "fontalign":
		if len(args) != 1 {
			return fmt.Errorf("fontalign: want 1 arg")
		}
		al, err := parseAlign(args[0])
		if err != nil {
			return err
		}
		a.pushLiteral(tagword.FontAlign, uint64(al))
	case "cursordefault":
		a.pushLiteral(tagword.CursorDefault, 0)
	case "cursorpointer":
		a.pushLiteral(tagword.CursorPointer, 0)
	case "event":
		if len(args) != 1 {
			return fmt.Errorf("event: want 1 numeric id")
		}
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("event: %w", err)
		}
		a.pushLiteral(tagword.Event, id)
	case "jmp":
		return a.jumpInstr(tagword.Jmp, args)
	case "nojmp":
		a.pushLiteral(tagword.NoJmp, 0)
	case "hover":
		return a.jumpInstr(tagword.Hover, args)
	case "mousepressed":
		return a.jumpInstr(tagword.MousePressed, args)
	case "clicked":
		return a.jumpInstr(tagword.Clicked, args)
	default:
		return fmt.Errorf("unknown instruction %q", op)
	}
	return nil
}

func (a *Assembler) jumpInstr(tag tagword.Tag, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%s: want 1 label", tag)
	}
	a.pushJump(tag, strings.TrimPrefix(args[0], "@"))
	return nil
}

func parseLength(tok string) (tagword.Tag, uint64, error) {
	if tok == "auto" {
		return tagword.Auto, 0, nil
	}
	parts := strings.SplitN(tok, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("bad length %q (want px:<n>, rem:<n>, frac:<n> or auto)", tok)
	}
	v, err := strconv.ParseFloat(parts[1], 32)
	if err != nil {
		return 0, 0, fmt.Errorf("bad length value %q: %w", tok, err)
	}
	var tag tagword.Tag
	switch parts[0] {
	case "px":
		tag = tagword.Pxs
	case "rem":
		tag = tagword.Rems
	case "frac":
		tag = tagword.Frac
	default:
		return 0, 0, fmt.Errorf("bad length unit %q", parts[0])
	}
	return tag, tagword.PayloadFloat32(float32(v)), nil
}

func parseColor(tok string) (tagword.Tag, uint64, error) {
	parts := strings.SplitN(tok, ":", 2)
	if len(parts) != 2 || !strings.HasPrefix(parts[1], "#") {
		return 0, 0, fmt.Errorf("bad color %q (want rgb:#RRGGBB or rgba:#RRGGBBAA)", tok)
	}
	hex := strings.TrimPrefix(parts[1], "#")
	raw, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("bad color hex %q: %w", tok, err)
	}
	var tag tagword.Tag
	var c tagword.Color
	switch parts[0] {
	case "rgb":
		tag = tagword.Rgb
		c = tagword.Color{Space: tag, C0: uint8(raw >> 16), C1: uint8(raw >> 8), C2: uint8(raw), C3: 255}
	case "rgba":
		tag = tagword.Rgba
		c = tagword.Color{Space: tag, C0: uint8(raw >> 24), C1: uint8(raw >> 16), C2: uint8(raw >> 8), C3: uint8(raw)}
	default:
		return 0, 0, fmt.Errorf("bad color space %q", parts[0])
	}
	return tag, tagword.PayloadFromColor(c), nil
}

func parseDisplay(tok string) (tagword.Display, error) {
	switch tok {
	case "block":
		return tagword.Block, nil
	case "flexrow":
		return tagword.FlexRow, nil
	case "flexcol":
		return tagword.FlexCol, nil
	case "grid":
		return tagword.Grid, nil
	case "none":
		return tagword.DisplayNone, nil
	default:
		return 0, fmt.Errorf("bad display mode %q", tok)
	}
}

func parseAlign(tok string) (tagword.Align, error) {
	switch tok {
	case "start":
		return tagword.AlignStart, nil
	case "center":
		return tagword.AlignCenter, nil
	case "end":
		return tagword.AlignEnd, nil
	case "justify":
		return tagword.AlignJustify, nil
	default:
		return 0, fmt.Errorf("bad text alignment %q", tok)
	}
}

func parseString(tok string) (string, error) {
	if len(tok) < 2 || tok[0] != '"' || tok[len(tok)-1] != '"' {
		return "", fmt.Errorf("expected a quoted string, got %q", tok)
	}
	return tok[1 : len(tok)-1], nil
}

// emit lays out the instruction stream followed by the text-literal
// pool and resolves jump offsets and TextPtr targets against it. The
// stream's layout (every slot is exactly tagword.Size bytes) is fixed
// before any bytes are written, so label and literal offsets are
// known up front and the whole page is built in one append pass.
func (a *Assembler) emit() ([]byte, uint64, error) {
	streamLen := uint64(len(a.slots)) * tagword.Size

	litOffsets := make([]uint64, len(a.literals))
	cursor := streamLen
	for i, lit := range a.literals {
		litOffsets[i] = cursor
		cursor += tagword.ArrayWords(uint64(len(lit))) * tagword.W
	}

	page := make([]byte, 0, cursor)
	for i, s := range a.slots {
		off := uint64(i) * tagword.Size
		switch s.kind {
		case slotLiteral:
			page = tagword.Encode(page, s.tag, s.payload)
		case slotTextPtr:
			page = tagword.Encode(page, tagword.TextPtr, litOffsets[s.literal])
		case slotJump:
			target, ok := a.labels[s.label]
			if !ok {
				return nil, 0, fmt.Errorf("asm: undefined label %q", s.label)
			}
			targetOff := int64(uint64(target) * tagword.Size)
			pcAfter := int64(off + tagword.Size)
			page = tagword.Encode(page, s.tag, tagword.PayloadSignedOffset(targetOff-pcAfter))
		}
	}
	for _, lit := range a.literals {
		page = tagword.EncodeArray(page, lit)
	}

	return page, 0, nil
}
