package tsvarint

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeOneByte(t *testing.T) {
	require.Equal(t, []byte{0x00}, Encode(nil, 0))
	require.Equal(t, []byte{0x7F}, Encode(nil, 0x7F))
}

func TestEncodeTwoByte(t *testing.T) {
	// Scenario B from the design docs: 200 (0xC8) encodes as 0x80 | 0xC8 two bytes.
	require.Equal(t, []byte{0x80, 0xC8}, Encode(nil, 0xC8))
	require.Equal(t, []byte{0x80, 0x80}, Encode(nil, 0x80))
}

func TestEncodeWide(t *testing.T) {
	got := Encode(nil, 0x7800)
	require.Equal(t, []byte{wideBase + 2, 0x78, 0x00}, got)

	got = Encode(nil, 0xFFFFFFFFFFFFFFFF)
	require.Equal(t, []byte{wideBase + 8, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, got)
}

func TestRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 0x7F, 0x80, 0xC8, 0x7800, 0x7801, 1 << 20, 1 << 40, 0xFFFFFFFFFFFFFFFF}
	for _, v := range values {
		enc := Encode(nil, v)
		got, isList, err := Decode(bytes.NewReader(enc), true)
		require.NoError(t, err)
		require.False(t, isList)
		require.Equal(t, v, got)
	}
}

func TestDecodeListEscape(t *testing.T) {
	_, isList, err := Decode(bytes.NewReader([]byte{ListEscape}), true)
	require.NoError(t, err)
	require.True(t, isList)

	_, _, err = Decode(bytes.NewReader([]byte{ListEscape}), false)
	require.ErrorIs(t, err, ErrMalformed)
}

