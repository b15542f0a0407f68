package tsstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRoundTripPut(t *testing.T) {
	in := newPutRecord([]byte("key"), []byte("value"))
	data := encodeRecord(in)

	out, err := decodeRecord(data)
	require.NoError(t, err)
	assert.Equal(t, in.Key, out.Key)
	assert.Equal(t, in.Value, out.Value)
	assert.Equal(t, in.Timestamp, out.Timestamp)
	assert.False(t, out.Tombstone)
}

func TestRecordRoundTripTombstone(t *testing.T) {
	in := newTombstoneRecord([]byte("key"))
	data := encodeRecord(in)

	out, err := decodeRecord(data)
	require.NoError(t, err)
	assert.Equal(t, in.Key, out.Key)
	assert.Empty(t, out.Value)
	assert.True(t, out.Tombstone)
}

func TestDecodeRecordMalformedReturnsCorruption(t *testing.T) {
	_, err := decodeRecord([]byte{0xF9})
	assert.ErrorIs(t, err, ErrCorruption)
}
