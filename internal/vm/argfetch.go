package vm

import "github.com/z71200/runtime/internal/tagword"

// isArgumentValue reports whether t terminates a recursive argument
// fetch directly: the nine value tags (0-8) plus TextPtr (41), the
// only tags valid in argument position.
func isArgumentValue(t tagword.Tag) bool {
	return t.IsValue() || t == tagword.TextPtr
}

// fetchArgument resolves the next argument for a pending instruction:
// it reads the tagged word at pc, advances pc, and recurses through
// PushArg/PullArg/PullArgOr/LoadReg/FromReg/FromRegOr until a direct
// value is reached.
func (m *Machine) fetchArgument() (tagword.Word, error) {
	w, err := m.decodeAdvance()
	if err != nil {
		return tagword.Word{}, err
	}
	switch {
	case isArgumentValue(w.Tag):
		return w, nil
	case w.Tag == tagword.PushArg:
		v, err := m.fetchArgument()
		if err != nil {
			return tagword.Word{}, err
		}
		m.argStack = append(m.argStack, v)
		return m.fetchArgument()
	case w.Tag == tagword.PullArg:
		if len(m.argStack) == 0 {
			return tagword.Word{}, errStackUnderflow
		}
		v := m.argStack[len(m.argStack)-1]
		m.argStack = m.argStack[:len(m.argStack)-1]
		return v, nil
	case w.Tag == tagword.PullArgOr:
		def, err := m.fetchArgument()
		if err != nil {
			return tagword.Word{}, err
		}
		if len(m.argStack) > 0 {
			v := m.argStack[len(m.argStack)-1]
			m.argStack = m.argStack[:len(m.argStack)-1]
			return v, nil
		}
		return def, nil
	case w.Tag == tagword.LoadReg:
		id := w.Payload
		v, err := m.fetchArgument()
		if err != nil {
			return tagword.Word{}, err
		}
		m.regFile[id] = v
		// Transparent pass-through: the store doesn't consume the
		// pending instruction's argument slot, so fetch the real
		// argument that follows.
		return m.fetchArgument()
	case w.Tag == tagword.FromReg:
		id := w.Payload
		v, ok := m.regFile[id]
		if !ok {
			return tagword.Word{}, errRegisterUnset(id)
		}
		return v, nil
	case w.Tag == tagword.FromRegOr:
		id := w.Payload
		def, err := m.fetchArgument()
		if err != nil {
			return tagword.Word{}, err
		}
		if v, ok := m.regFile[id]; ok {
			return v, nil
		}
		return def, nil
	default:
		return tagword.Word{}, errUnknownInstruction
	}
}

func (m *Machine) fetchLength() (tagword.Length, error) {
	w, err := m.fetchArgument()
	if err != nil {
		return tagword.Length{}, err
	}
	return tagword.DecodeLength(w)
}

func (m *Machine) fetchColor() (tagword.Color, error) {
	w, err := m.fetchArgument()
	if err != nil {
		return tagword.Color{}, err
	}
	return tagword.DecodeColor(w)
}

// fetchTextPtr fetches a TextPtr argument and resolves it to the
// Array bytes it points to.
func (m *Machine) fetchTextPtr() ([]byte, error) {
	w, err := m.fetchArgument()
	if err != nil {
		return nil, err
	}
	if w.Tag != tagword.TextPtr {
		return nil, &tagword.TypeError{Want: "text_ptr", Got: w.Tag}
	}
	return tagword.DecodeArray(m.page, w.Payload)
}

func (m *Machine) fetchEdges() (tagword.Edges, error) {
	var e tagword.Edges
	var err error
	if e.Top, err = m.fetchLength(); err != nil {
		return e, err
	}
	if e.Right, err = m.fetchLength(); err != nil {
		return e, err
	}
	if e.Bottom, err = m.fetchLength(); err != nil {
		return e, err
	}
	if e.Left, err = m.fetchLength(); err != nil {
		return e, err
	}
	return e, nil
}
