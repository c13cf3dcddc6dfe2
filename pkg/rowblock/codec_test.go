package rowblock

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/sparsefeed/pkg/errors"
)

func buildMixed(t *testing.T) *Container[uint32] {
	t.Helper()
	c := NewContainer[uint32]()
	require.NoError(t, Push(c, Row[uint32]{Label: 1, Index: []uint32{1, 3}, Value: []float32{0.5, 2.0}}))
	require.NoError(t, Push(c, Row[uint32]{Label: -1, Index: []uint32{2}, Value: []float32{1.0}}))

	src := NewContainer[uint64]()
	require.NoError(t, Push(src, Row[uint64]{Label: 7, Index: []uint64{9, 11}, Value: []float32{4, 5}}))
	require.NoError(t, PushBlock(c, src.Block()))
	return c
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c := buildMixed(t)

	var buf bytes.Buffer
	require.NoError(t, c.Save(&buf))

	loaded := NewContainer[uint32]()
	require.NoError(t, loaded.Load(&buf))

	want, got := c.Block(), loaded.Block()
	assert.Equal(t, want.Offset, got.Offset)
	assert.Equal(t, want.Label, got.Label)
	assert.Equal(t, want.Index, got.Index)
	assert.Equal(t, want.Value, got.Value)
	assert.Equal(t, c.MaxIndex(), loaded.MaxIndex())
}

func TestSaveLoadRoundTripImplicitValues(t *testing.T) {
	c := NewContainer[uint32]()
	require.NoError(t, Push(c, Row[uint32]{Label: 1, Index: []uint32{2, 4}}))

	var buf bytes.Buffer
	require.NoError(t, c.Save(&buf))

	loaded := NewContainer[uint32]()
	require.NoError(t, loaded.Load(&buf))
	assert.Nil(t, loaded.Block().Value)
}

func TestBinaryLayoutIsPositional(t *testing.T) {
	c := NewContainer[uint32]()
	require.NoError(t, Push(c, Row[uint32]{Label: 1, Index: []uint32{5}, Value: []float32{2}}))

	var buf bytes.Buffer
	require.NoError(t, c.Save(&buf))
	raw := buf.Bytes()

	// offset array: count 2, then 0 and 1 as uint64 little-endian
	assert.Equal(t, uint64(2), binary.LittleEndian.Uint64(raw[0:8]))
	assert.Equal(t, uint64(0), binary.LittleEndian.Uint64(raw[8:16]))
	assert.Equal(t, uint64(1), binary.LittleEndian.Uint64(raw[16:24]))
	// label array: count 1, then float32 bits of 1.0
	assert.Equal(t, uint64(1), binary.LittleEndian.Uint64(raw[24:32]))
	assert.Equal(t, uint32(0x3f800000), binary.LittleEndian.Uint32(raw[32:36]))
	// index array: count 1, then uint32 5 at the container's exact width
	assert.Equal(t, uint64(1), binary.LittleEndian.Uint64(raw[36:44]))
	assert.Equal(t, uint32(5), binary.LittleEndian.Uint32(raw[44:48]))
	// value array: count 1, then float32 bits of 2.0
	assert.Equal(t, uint64(1), binary.LittleEndian.Uint64(raw[48:56]))
	assert.Equal(t, uint32(0x40000000), binary.LittleEndian.Uint32(raw[56:60]))
	assert.Len(t, raw, 60)
}

func TestLoadTruncatedStream(t *testing.T) {
	c := buildMixed(t)
	var buf bytes.Buffer
	require.NoError(t, c.Save(&buf))
	raw := buf.Bytes()

	for _, cut := range []int{0, 4, 8, len(raw) / 2, len(raw) - 1} {
		loaded := NewContainer[uint32]()
		err := loaded.Load(bytes.NewReader(raw[:cut]))
		require.Error(t, err, "cut at %d", cut)
		assert.True(t, errors.IsType(err, errors.ErrorTypeCorruptData), "cut at %d", cut)
	}
}

func TestLoadRejectsImplausibleLength(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(1)<<50))

	loaded := NewContainer[uint32]()
	err := loaded.Load(&buf)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeCorruptData))
}
