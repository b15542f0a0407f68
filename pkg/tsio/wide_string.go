package tsio

import "unicode/utf16"

// utf16ToUTF8 transcodes UTF-16 code units to UTF-8 bytes deterministically,
// independent of process locale — the re-architecture the design notes call
// for in place of the source library's locale-aware wide/narrow conversion.
func utf16ToUTF8(v []uint16) []byte {
	runes := utf16.Decode(v)
	return []byte(string(runes))
}

// utf8ToUTF16 is the read-side counterpart of utf16ToUTF8.
func utf8ToUTF16(b []byte) []uint16 {
	return utf16.Encode([]rune(string(b)))
}
