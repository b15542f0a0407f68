// Package tsnum implements the numeric payload encoding shared by every
// scalar chunk: big-endian integers with leading-zero/leading-0xFF trimming
// and sign extension, and little-endian floats trimmed by the identical
// front-of-buffer rule. Both share one trim/fetch primitive; only the byte
// order the caller lays the value out in differs.
package tsnum

import (
	"encoding/binary"
	"math"
)

// trimZero strips leading zero bytes from buf, always leaving at least one
// byte so a payload of exactly 0 still encodes as a single zero byte... in
// practice callers special-case the all-zero value to an empty payload, see
// EncodeUint.
func trimZero(buf []byte) []byte {
	i := 0
	for i < len(buf)-1 && buf[i] == 0 {
		i++
	}
	return buf[i:]
}

// trimSignExtend strips leading 0xFF bytes from a two's-complement negative
// value's big-endian layout, stopping one byte before the sign bit of the
// remaining most-significant byte would flip from 1 to 0 (which would change
// the decoded sign).
func trimSignExtend(buf []byte) []byte {
	i := 0
	for i < len(buf)-1 && buf[i] == 0xFF && buf[i+1]&0x80 == 0x80 {
		i++
	}
	return buf[i:]
}

// EncodeUint returns the minimal big-endian payload for v. The zero value
// encodes as an empty slice (a zero-length chunk decodes back to 0).
func EncodeUint(v uint64, width int) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	trimmed := trimZero(buf[8-width:])
	if len(trimmed) == 1 && trimmed[0] == 0 {
		return nil
	}
	return trimmed
}

// EncodeInt returns the minimal big-endian payload for v, trimming leading
// zero bytes for non-negative values and leading 0xFF bytes for negative
// ones.
func EncodeInt(v int64, width int) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	raw := buf[8-width:]
	if v >= 0 {
		trimmed := trimZero(raw)
		if len(trimmed) == 1 && trimmed[0] == 0 {
			return nil
		}
		// trimZero has no notion of sign: if it stripped far enough that the
		// kept leading byte's high bit is now set, a decoder will read this
		// as a negative value. Back off one byte — guaranteed zero, since
		// that's why trimZero advanced past it — to keep the sign bit clear.
		if stripped := len(raw) - len(trimmed); stripped > 0 && trimmed[0]&0x80 == 0x80 {
			trimmed = raw[stripped-1:]
		}
		return trimmed
	}
	return trimSignExtend(raw)
}

// fetchRightAligned places payload right-aligned at the tail of a dest-width
// buffer, zero-filling (or, if signExtend and the kept high bit is set,
// 0xFF-filling) the leading bytes. This is the single primitive both the
// big-endian integer fetch and the little-endian float fetch are built on.
func fetchRightAligned(payload []byte, width int, signExtend bool) []byte {
	dest := make([]byte, width)
	if len(payload) == 0 {
		return dest
	}
	copy(dest[width-len(payload):], payload)
	if signExtend && payload[0]&0x80 == 0x80 {
		for i := 0; i < width-len(payload); i++ {
			dest[i] = 0xFF
		}
	}
	return dest
}

// DecodeUint reconstructs an unsigned value of the given width from a
// trimmed big-endian payload.
func DecodeUint(payload []byte, width int) uint64 {
	dest := fetchRightAligned(payload, width, false)
	var buf [8]byte
	copy(buf[8-width:], dest)
	return binary.BigEndian.Uint64(buf[:])
}

// DecodeInt reconstructs a signed value of the given width from a trimmed,
// sign-extended big-endian payload.
func DecodeInt(payload []byte, width int) int64 {
	dest := fetchRightAligned(payload, width, true)
	var signByte byte
	if len(dest) > 0 && dest[0]&0x80 == 0x80 {
		signByte = 0xFF
	}
	var buf [8]byte
	for i := 0; i < 8-width; i++ {
		buf[i] = signByte
	}
	copy(buf[8-width:], dest)
	return int64(binary.BigEndian.Uint64(buf[:]))
}

// EncodeFloat32 lays out v's IEEE-754 bits in little-endian order and trims
// leading (i.e. least-significant-mantissa) zero bytes.
func EncodeFloat32(v float32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
	trimmed := trimZero(buf[:])
	if len(trimmed) == 1 && trimmed[0] == 0 {
		return nil
	}
	return trimmed
}

// EncodeFloat64 is the double-precision counterpart of EncodeFloat32.
func EncodeFloat64(v float64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	trimmed := trimZero(buf[:])
	if len(trimmed) == 1 && trimmed[0] == 0 {
		return nil
	}
	return trimmed
}

// DecodeFloat32 zero-fills the trimmed least-significant mantissa bytes back
// in at the front of a 4-byte little-endian buffer.
func DecodeFloat32(payload []byte) float32 {
	dest := fetchRightAligned(payload, 4, false)
	return math.Float32frombits(binary.LittleEndian.Uint32(dest))
}

// DecodeFloat64 is the double-precision counterpart of DecodeFloat32.
func DecodeFloat64(payload []byte) float64 {
	dest := fetchRightAligned(payload, 8, false)
	return math.Float64frombits(binary.LittleEndian.Uint64(dest))
}

// EncodeBool encodes true as a single 0x01 byte and false as an empty
// payload (omitted entirely when trim-defaults is active and false is the
// declared default).
func EncodeBool(v bool) []byte {
	if !v {
		return nil
	}
	return []byte{0x01}
}

// DecodeBool reports true for any non-empty payload.
func DecodeBool(payload []byte) bool {
	return len(payload) > 0
}
