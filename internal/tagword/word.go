package tagword

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Word is one decoded tagged word: the 2*W-byte unit [tag][word]
// every instruction or value in the stream is built from.
type Word struct {
	Tag     Tag
	Payload uint64
}

// Decode reads one tagged word from data at offset. It does not
// advance or validate bounds beyond the word itself; callers combine
// it with page-level bounds checks.
func Decode(data []byte, offset uint64) (Word, error) {
	if offset%W != 0 {
		return Word{}, fmt.Errorf("tagword: offset %d is not %d-byte aligned", offset, W)
	}
	if offset+uint64(Size) > uint64(len(data)) {
		return Word{}, fmt.Errorf("tagword: offset %d out of bounds (len %d)", offset, len(data))
	}
	bo := binary.LittleEndian
	return Word{
		Tag:     Tag(bo.Uint64(data[offset:])),
		Payload: bo.Uint64(data[offset+W:]),
	}, nil
}

// Encode appends the tagged word [tag][payload] to dst and returns
// the result, used by the CLI assembler to build fixtures.
func Encode(dst []byte, tag Tag, payload uint64) []byte {
	var buf [Size]byte
	bo := binary.LittleEndian
	bo.PutUint64(buf[0:], uint64(tag))
	bo.PutUint64(buf[W:], payload)
	return append(dst, buf[:]...)
}

// Float32 returns the low 32 bits of payload as an IEEE-754 float32,
// the representation used by length and angle arguments.
func (w Word) Float32() float32 {
	return math.Float32frombits(uint32(w.Payload))
}

// PayloadFloat32 packs f into a word payload.
func PayloadFloat32(f float32) uint64 {
	return uint64(math.Float32bits(f))
}

// SignedOffset interprets the payload as a signed relative
// displacement: jump offsets are stored as a machine word but must be
// read as signed to allow backward branches.
func (w Word) SignedOffset() int64 {
	return int64(w.Payload)
}

// PayloadSignedOffset packs a signed displacement into a word payload.
func PayloadSignedOffset(off int64) uint64 {
	return uint64(off)
}
