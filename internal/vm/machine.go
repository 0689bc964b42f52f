package vm

import (
	"errors"

	"github.com/z71200/runtime/internal/tagword"
)

// instructionCapPerWord bounds the number of tagged words a single Run
// will decode per word of page size, guaranteeing termination against
// malicious or buggy jump loops. NewMachine derives the concrete cap
// from the page it's given.
const instructionCapPerWord = 100

// Machine is the stack-based interpreter: program counter, argument
// stack, register file and scope stack, plus the pen. Events are
// handed to the Visitor, not queued here. It is single-threaded, deterministic and re-run twice
// per frame (once per pass) against the same page bytes.
type Machine struct {
	page []byte
	cap  int

	pc         uint64
	argStack   []tagword.Word
	regFile    map[uint64]tagword.Word
	scopeStack []ElementID
	pen        Pen
	nextID     ElementID
	instrCount int
}

// NewMachine returns a Machine bound to page, a read-only view of the
// shared page's bytes for the duration of one pass.
func NewMachine(page []byte) *Machine {
	return &Machine{
		page: page,
		cap:  instructionCapPerWord * len(page) / tagword.W,
	}
}

// WithInstructionCap overrides the per-page instruction cap NewMachine
// derived from page size, letting a configured cap take precedence. A
// non-positive n is a no-op, so callers can pass an unset config value
// through unconditionally.
func (m *Machine) WithInstructionCap(n int) *Machine {
	if n > 0 {
		m.cap = n
	}
	return m
}

// Pen returns the interpreter's current pen, for callers (such as
// tests) that want to inspect it after or during a walk.
func (m *Machine) Pen() Pen { return m.pen }

func (m *Machine) reset() {
	m.argStack = m.argStack[:0]
	m.regFile = make(map[uint64]tagword.Word)
	m.scopeStack = m.scopeStack[:0]
	m.pen = DefaultPen
	m.nextID = 0
	m.instrCount = 0
}

func (m *Machine) decodeAt(offset uint64) (tagword.Word, error) {
	w, err := tagword.Decode(m.page, offset)
	if err != nil {
		return tagword.Word{}, frameErr("decode", err)
	}
	return w, nil
}

// decodeAdvance decodes the tagged word at pc and advances pc past it.
func (m *Machine) decodeAdvance() (tagword.Word, error) {
	w, err := m.decodeAt(m.pc)
	if err != nil {
		return tagword.Word{}, err
	}
	m.pc += tagword.Size
	return w, nil
}

func (m *Machine) currentElement() (ElementID, bool) {
	if len(m.scopeStack) == 0 {
		return 0, false
	}
	return m.scopeStack[len(m.scopeStack)-1], true
}

// resolveJump computes the absolute target of a relative displacement
// measured from the byte immediately after the decoded jump word
// (i.e. from the current, already-advanced pc), validating it lands
// W-aligned within page bounds. The offset is stored as a machine word
// but interpreted as signed, to allow backward branches.
func (m *Machine) resolveJump(off int64) (uint64, error) {
	target := int64(m.pc) + off
	if target < 0 || target >= int64(len(m.page)) {
		return 0, frameErr("jump", errJumpBounds(target, len(m.page)))
	}
	if target%tagword.W != 0 {
		return 0, frameErr("jump", errJumpAlign(target))
	}
	return uint64(target), nil
}

// Run walks the bytecode tree rooted at rootPtr once, calling v for
// every instruction with a pass-relevant side effect. It returns once
// the root element's scope closes, marking the end of the program.
func (m *Machine) Run(v Visitor, rootPtr uint64) error {
	m.reset()
	m.pc = rootPtr

	first, err := m.decodeAt(m.pc)
	if err != nil {
		return err
	}
	if first.Tag != tagword.Enter {
		return frameErr("run", errRootNotEnter)
	}

	for {
		if m.instrCount >= m.cap {
			return frameErr("run", errInstructionCap)
		}
		m.instrCount++

		w, err := m.decodeAdvance()
		if err != nil {
			return err
		}
		done, err := m.dispatch(v, w)
		if err != nil {
			var fe *FrameError
			if errors.As(err, &fe) {
				return err
			}
			return frameErr("dispatch", err)
		}
		if done {
			return nil
		}
	}
}

func (m *Machine) dispatch(v Visitor, w tagword.Word) (done bool, err error) {
	switch w.Tag {
	case tagword.Enter:
		id := m.nextID
		m.nextID++
		parent, hasParent := m.currentElement()
		m.scopeStack = append(m.scopeStack, id)
		m.pen = DefaultPen
		v.Enter(id, parent, hasParent)
		return false, nil

	case tagword.Leave:
		id, ok := m.currentElement()
		if !ok {
			return false, frameErr("leave", errUnbalancedLeave)
		}
		v.Leave(id)
		m.scopeStack = m.scopeStack[:len(m.scopeStack)-1]
		return len(m.scopeStack) == 0, nil

	case tagword.Width:
		return false, m.withElement(func(id ElementID) error {
			l, err := m.fetchLength()
			if err != nil {
				return err
			}
			v.Width(id, l)
			return nil
		})

	case tagword.Height:
		return false, m.withElement(func(id ElementID) error {
			l, err := m.fetchLength()
			if err != nil {
				return err
			}
			v.Height(id, l)
			return nil
		})

	case tagword.Padding:
		return false, m.withElement(func(id ElementID) error {
			e, err := m.fetchEdges()
			if err != nil {
				return err
			}
			v.Padding(id, e)
			return nil
		})

	case tagword.Margin:
		return false, m.withElement(func(id ElementID) error {
			e, err := m.fetchEdges()
			if err != nil {
				return err
			}
			v.Margin(id, e)
			return nil
		})

	case tagword.Display:
		return false, m.withElement(func(id ElementID) error {
			v.Display(id, tagword.Display(w.Payload))
			return nil
		})

	case tagword.Gap:
		return false, m.withElement(func(id ElementID) error {
			h, err := m.fetchLength()
			if err != nil {
				return err
			}
			vert, err := m.fetchLength()
			if err != nil {
				return err
			}
			v.Gap(id, h, vert)
			return nil
		})

	case tagword.Color:
		c, err := m.fetchColor()
		if err != nil {
			return false, err
		}
		m.pen.Color = c
		return false, nil

	case tagword.FontFamily:
		name, err := m.fetchTextPtr()
		if err != nil {
			return false, err
		}
		m.pen.FontFamily = string(name)
		return false, nil

	case tagword.FontSize:
		l, err := m.fetchLength()
		if err != nil {
			return false, err
		}
		m.pen.FontSizePx = l.V
		return false, nil

	case tagword.FontAlign:
		m.pen.FontAlign = tagword.Align(w.Payload)
		return false, nil

	case tagword.Rect:
		return false, m.withElement(func(id ElementID) error {
			x, y, ww, hh, err := m.fetch4Lengths()
			if err != nil {
				return err
			}
			v.Rect(id, x, y, ww, hh, m.pen)
			return nil
		})

	case tagword.Arc:
		return false, m.withElement(func(id ElementID) error {
			x, err := m.fetchLength()
			if err != nil {
				return err
			}
			y, err := m.fetchLength()
			if err != nil {
				return err
			}
			r, err := m.fetchLength()
			if err != nil {
				return err
			}
			start, err := m.fetchLength()
			if err != nil {
				return err
			}
			sweep, err := m.fetchLength()
			if err != nil {
				return err
			}
			v.Arc(id, x, y, r, start, sweep, m.pen)
			return nil
		})

	case tagword.Text:
		return false, m.withElement(func(id ElementID) error {
			x, err := m.fetchLength()
			if err != nil {
				return err
			}
			y, err := m.fetchLength()
			if err != nil {
				return err
			}
			text, err := m.fetchTextPtr()
			if err != nil {
				return err
			}
			v.Text(id, x, y, text, m.pen)
			return nil
		})

	case tagword.CursorDefault:
		m.pen.Cursor = CursorDefault
		return false, m.withElement(func(id ElementID) error {
			v.Cursor(id, CursorDefault)
			return nil
		})

	case tagword.CursorPointer:
		m.pen.Cursor = CursorPointer
		return false, m.withElement(func(id ElementID) error {
			v.Cursor(id, CursorPointer)
			return nil
		})

	case tagword.Event:
		return false, m.withElement(func(id ElementID) error {
			v.Event(id, w.Payload)
			return nil
		})

	case tagword.Jmp:
		target, err := m.resolveJump(w.SignedOffset())
		if err != nil {
			return false, err
		}
		m.pc = target
		return false, nil

	case tagword.NoJmp:
		return false, nil

	case tagword.Hover:
		return false, m.gatedJump(v, w, StateHover)
	case tagword.MousePressed:
		return false, m.gatedJump(v, w, StatePressed)
	case tagword.Clicked:
		return false, m.gatedJump(v, w, StateClicked)

	// PushArg and LoadReg also appear as standalone top-level
	// instructions (e.g. "PushArg Rgb 0x00ff00; Color PullArg"),
	// priming the stack or a register ahead of a later instruction's
	// argument fetch. Used there, they resolve exactly one argument
	// and stop; used *within* another instruction's argument fetch
	// (argfetch.go) they additionally chain into fetching that
	// instruction's real argument.
	case tagword.PushArg:
		val, err := m.fetchArgument()
		if err != nil {
			return false, err
		}
		m.argStack = append(m.argStack, val)
		return false, nil

	case tagword.LoadReg:
		id := w.Payload
		val, err := m.fetchArgument()
		if err != nil {
			return false, err
		}
		m.regFile[id] = val
		return false, nil

	default:
		if isArgumentValue(w.Tag) {
			return false, frameErr("dispatch", errValueAtTopLevel)
		}
		switch w.Tag {
		case tagword.PullArg, tagword.PullArgOr, tagword.FromReg, tagword.FromRegOr:
			return false, frameErr("dispatch", errArgTagAtTopLevel)
		}
		return false, frameErr("dispatch", errUnknownInstruction)
	}
}

// gatedJump implements Hover/MousePressed/Clicked: the jump is taken
// unless the current element's state bit is set for this frame.
func (m *Machine) gatedJump(v Visitor, w tagword.Word, kind StateKind) error {
	id, ok := m.currentElement()
	if !ok {
		return frameErr("gated-jump", errUnbalancedLeave)
	}
	if v.StateBit(id, kind) {
		return nil
	}
	target, err := m.resolveJump(w.SignedOffset())
	if err != nil {
		return err
	}
	m.pc = target
	return nil
}

func (m *Machine) withElement(f func(id ElementID) error) error {
	id, ok := m.currentElement()
	if !ok {
		return frameErr("argument", errUnbalancedLeave)
	}
	return f(id)
}

func (m *Machine) fetch4Lengths() (a, b, c, d tagword.Length, err error) {
	if a, err = m.fetchLength(); err != nil {
		return
	}
	if b, err = m.fetchLength(); err != nil {
		return
	}
	if c, err = m.fetchLength(); err != nil {
		return
	}
	if d, err = m.fetchLength(); err != nil {
		return
	}
	return
}
