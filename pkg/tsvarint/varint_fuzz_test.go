//go:build fuzz
// +build fuzz

package tsvarint

import (
	"bytes"
	"testing"
)

// FuzzEncodeDecodeRoundTrip checks that every u64 survives an Encode/Decode
// round trip when decoded as a token (the permissive side: 0xF8 is legal
// there, but Encode never itself emits it as a first byte for a real value).
func FuzzEncodeDecodeRoundTrip(f *testing.F) {
	f.Add(uint64(0))
	f.Add(uint64(0x7F))
	f.Add(uint64(0x80))
	f.Add(uint64(0x7800))
	f.Add(uint64(0xFFFFFFFFFFFFFFFF))

	f.Fuzz(func(t *testing.T, v uint64) {
		enc := Encode(nil, v)
		got, isList, err := Decode(bytes.NewReader(enc), true)
		if err != nil {
			t.Fatalf("Decode failed for v=%d enc=%x: %v", v, enc, err)
		}
		if isList {
			t.Fatalf("Encode(%d) produced a byte sequence Decode mistook for a list prefix: %x", v, enc)
		}
		if got != v {
			t.Fatalf("round trip mismatch: got %d, want %d (enc=%x)", got, v, enc)
		}
	})
}

// FuzzDecodeNeverPanics feeds arbitrary bytes through Decode in both token
// and length modes; a malformed prefix must return ErrMalformed or a read
// error, never panic.
func FuzzDecodeNeverPanics(f *testing.F) {
	f.Add([]byte{0xF8})
	f.Add([]byte{0xFF})
	f.Add([]byte{})
	f.Add([]byte{0x80})

	f.Fuzz(func(t *testing.T, data []byte) {
		for _, forToken := range []bool{true, false} {
			_, _, _ = Decode(bytes.NewReader(data), forToken)
		}
	})
}
