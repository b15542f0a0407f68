// Package tsvarint implements the length-encoded unsigned integer used
// uniformly for tokens and chunk lengths on the wire, including the 0xF8
// list-prefix escape.
package tsvarint

import (
	"bufio"
	"errors"
	"io"
)

// ListEscape is the reserved first byte that introduces a list prefix in
// place of a chunk's token; Decode rejects it where a length is expected.
const ListEscape = 0xF8

const (
	oneByteMax  = 0x80
	twoByteMax  = 0x7800
	wideBase = 0xF7
)

// ErrMalformed is returned when a decoded prefix byte does not correspond to
// any valid encoding shape.
var ErrMalformed = errors.New("tsvarint: malformed encoding")

// Encode appends the length-encoded form of v to dst and returns the
// extended slice.
func Encode(dst []byte, v uint64) []byte {
	switch {
	case v < oneByteMax:
		return append(dst, byte(v))
	case v < twoByteMax:
		return append(dst, byte(0x80|(v>>8)), byte(v))
	default:
		var buf [8]byte
		buf[0] = byte(v >> 56)
		buf[1] = byte(v >> 48)
		buf[2] = byte(v >> 40)
		buf[3] = byte(v >> 32)
		buf[4] = byte(v >> 24)
		buf[5] = byte(v >> 16)
		buf[6] = byte(v >> 8)
		buf[7] = byte(v)
		n := 0
		for n < 7 && buf[n] == 0 {
			n++
		}
		significant := buf[n:]
		dst = append(dst, byte(wideBase+len(significant)))
		return append(dst, significant...)
	}
}

// ByteReader is the minimal interface Decode needs from its source; both
// *bufio.Reader and *bytes.Reader satisfy it.
type ByteReader interface {
	io.Reader
	io.ByteReader
}

// Decode reads one length-encoded value from r. forToken indicates the
// caller is decoding a chunk's token (where 0xF8 may legally introduce a
// list prefix, since that prefix takes the place of a per-chunk token) as
// opposed to its length (where 0xF8 is always malformed: the wide-form
// prefix byte for a trimmed payload never comes out to exactly 0xF8, so a
// genuine length can never start with it). When the first byte is the list
// escape and forToken is true, isList reports true and the returned value
// carries no meaning — callers must separately decode the element count and
// shared token that follow.
func Decode(r ByteReader, forToken bool) (v uint64, isList bool, err error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, false, err
	}
	switch {
	case b < oneByteMax:
		return uint64(b), false, nil
	case b < ListEscape:
		c, err := r.ReadByte()
		if err != nil {
			return 0, false, err
		}
		return (uint64(b&0x7F) << 8) | uint64(c), false, nil
	case b == ListEscape:
		if !forToken {
			return 0, false, ErrMalformed
		}
		return 0, true, nil
	default:
		n := int(b) - wideBase
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[8-n:]); err != nil {
			return 0, false, err
		}
		for i := 0; i < 8; i++ {
			v = (v << 8) | uint64(buf[i])
		}
		return v, false, nil
	}
}

// NewByteReader wraps an io.Reader that does not already implement ByteReader.
func NewByteReader(r io.Reader) ByteReader {
	if br, ok := r.(ByteReader); ok {
		return br
	}
	return bufio.NewReader(r)
}
