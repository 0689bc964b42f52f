package asm

import (
	"testing"

	"github.com/z71200/runtime/internal/tagword"
)

func TestAssembleSimpleProgramFirstWordIsEnter(t *testing.T) {
	src := `
enter
width px:150
height px:100
color rgb:#ff0000
rect px:0 px:0 px:150 px:100
leave
`
	page, root, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if root != 0 {
		t.Fatalf("root = %d, want 0", root)
	}
	w, err := tagword.Decode(page, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if w.Tag != tagword.Enter {
		t.Fatalf("first word tag = %v, want Enter", w.Tag)
	}
}

func TestAssembleRejectsUnknownInstruction(t *testing.T) {
	if _, _, err := Assemble("enter\nbogus\nleave\n"); err == nil {
		t.Fatal("expected an error for an unknown instruction")
	}
}

func TestAssembleRejectsUndefinedLabel(t *testing.T) {
	src := `
enter
hover @missing
leave
`
	if _, _, err := Assemble(src); err == nil {
		t.Fatal("expected an error for a jump to an undefined label")
	}
}

// TestAssembleJumpLandsOnLabel builds a hover-gated program and checks
// the emitted offset resolves to exactly the labeled word.
func TestAssembleJumpLandsOnLabel(t *testing.T) {
	src := `
enter
hover @skip
color rgb:#00ff00
label:skip
leave
`
	page, _, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	// Word 0: enter. Word 1: hover (jump). Word 2: color. Word 3: rgb
	// arg. Word 4: leave (the "skip" label).
	hoverWord, err := tagword.Decode(page, tagword.Size)
	if err != nil {
		t.Fatalf("decode hover word: %v", err)
	}
	if hoverWord.Tag != tagword.Hover {
		t.Fatalf("word 1 tag = %v, want Hover", hoverWord.Tag)
	}

	pcAfterHover := int64(2 * tagword.Size)
	target := pcAfterHover + hoverWord.SignedOffset()
	if target != int64(4*tagword.Size) {
		t.Fatalf("hover jump target = %d, want %d (the leave word)", target, 4*tagword.Size)
	}

	leaveWord, err := tagword.Decode(page, uint64(target))
	if err != nil {
		t.Fatalf("decode target word: %v", err)
	}
	if leaveWord.Tag != tagword.Leave {
		t.Fatalf("jump target tag = %v, want Leave", leaveWord.Tag)
	}
}

// TestAssembleTextLiteralRoundTrips checks the trailing text pool is
// laid out after the instruction stream and TextPtr resolves into it.
func TestAssembleTextLiteralRoundTrips(t *testing.T) {
	src := `
enter
text px:0 px:0 "hello"
leave
`
	page, _, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	// Word 0: enter. Word 1: text. Word 2,3: x,y lengths. Word 4: text_ptr.
	ptrWord, err := tagword.Decode(page, 4*tagword.Size)
	if err != nil {
		t.Fatalf("decode text_ptr word: %v", err)
	}
	if ptrWord.Tag != tagword.TextPtr {
		t.Fatalf("word 4 tag = %v, want TextPtr", ptrWord.Tag)
	}

	got, err := tagword.DecodeArray(page, ptrWord.Payload)
	if err != nil {
		t.Fatalf("DecodeArray: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("text literal = %q, want %q", got, "hello")
	}
}

// TestAssembleDeduplicatesRepeatedLiterals checks two identical text
// literals share one pool entry rather than being stored twice.
func TestAssembleDeduplicatesRepeatedLiterals(t *testing.T) {
	src := `
enter
text px:0 px:0 "same"
text px:0 px:10 "same"
leave
`
	page, _, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	// Word 0 enter, 1 text, 2 x, 3 y, 4 text_ptr, 5 text, 6 x, 7 y, 8 text_ptr.
	first, err := tagword.Decode(page, 4*tagword.Size)
	if err != nil {
		t.Fatalf("decode first text_ptr: %v", err)
	}
	second, err := tagword.Decode(page, 8*tagword.Size)
	if err != nil {
		t.Fatalf("decode second text_ptr: %v", err)
	}
	if first.Payload != second.Payload {
		t.Fatalf("two identical literals got separate pool entries: %d vs %d", first.Payload, second.Payload)
	}
}
