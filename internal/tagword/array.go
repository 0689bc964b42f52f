package tagword

import "fmt"

// DecodeArray reads the array header at offset (tag Array, word = byte
// length n) and returns the following n raw bytes. The header and its
// payload occupy Size + align(n) bytes in total; arrays are the only
// non-tagged-word payload inside the stream.
func DecodeArray(data []byte, offset uint64) ([]byte, error) {
	w, err := Decode(data, offset)
	if err != nil {
		return nil, err
	}
	if w.Tag != Array {
		return nil, &TypeError{Want: "array", Got: w.Tag}
	}
	start := offset + Size
	n := w.Payload
	if start+n > uint64(len(data)) {
		return nil, fmt.Errorf("tagword: array at %d (len %d) exceeds page bounds", offset, n)
	}
	return data[start : start+n], nil
}

// ArrayWords returns the number of W-byte words an array of n raw
// bytes occupies: two for the tagged-word header plus ceil(n/W) for
// the payload, padded to the next W boundary. ArrayWords(n)*W is the
// byte length EncodeArray writes.
func ArrayWords(n uint64) uint64 {
	return Size/W + (n+W-1)/W
}

// EncodeArray appends an Array header followed by the given bytes,
// padded to the next W-byte boundary, used by the CLI assembler.
func EncodeArray(dst []byte, b []byte) []byte {
	dst = Encode(dst, Array, uint64(len(b)))
	dst = append(dst, b...)
	if pad := (W - len(b)%W) % W; pad != 0 {
		dst = append(dst, make([]byte, pad)...)
	}
	return dst
}
