package vj

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDecodeDeltaSingleByte(t *testing.T) {
	c := newCursor([]byte{0x05, 0xff})
	d, err := decodeDelta(c)
	require.NoError(t, err)
	assert.Equal(t, uint16(5), d)
	assert.Equal(t, 1, c.offset())
}

func TestDecodeDeltaEscaped(t *testing.T) {
	c := newCursor([]byte{0x00, 0x01, 0x00, 0x07})
	d, err := decodeDelta(c)
	require.NoError(t, err)
	assert.Equal(t, uint16(256), d)
	assert.Equal(t, 3, c.offset())
	assert.Equal(t, []byte{0x07}, c.rest())
}

func TestDecodeDeltaEscapedZero(t *testing.T) {
	d, err := decodeDelta(newCursor([]byte{0, 0, 0}))
	require.NoError(t, err)
	assert.Zero(t, d)
}

func TestDecodeDeltaUnderrun(t *testing.T) {
	for _, buf := range [][]byte{{}, {0x00}, {0x00, 0x01}} {
		_, err := decodeDelta(newCursor(buf))
		assert.True(t, errors.Is(err, errUnderrun), "buffer %v", buf)
	}
}

func TestDeltaWraparound(t *testing.T) {
	assert.Equal(t, uint16(1), addDelta16(0xFFFF, 2))
	assert.Equal(t, uint32(0x0F), addDelta32(0xFFFFFFF0, 0x1F))
	assert.Equal(t, uint32(0xFF), addDelta32(0xFFFFFFFF, 0x100))
}

func TestDeltaRoundTrip16(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.Uint16().Draw(t, "value")
		d := rapid.Uint16().Draw(t, "delta")

		enc := encodeDelta(d)
		if d >= 1 && d <= 255 {
			require.Len(t, enc, 1)
		} else {
			require.Len(t, enc, 3)
		}

		field := v
		c := newCursor(enc)
		err := decodeDelta16(c, func() uint16 { return field }, func(n uint16) { field = n })
		require.NoError(t, err)
		require.Equal(t, v+d, field)
		require.Empty(t, c.rest())
	})
}

func TestDeltaRoundTrip32(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.Uint32().Draw(t, "value")
		d := rapid.Uint16().Draw(t, "delta")

		field := v
		err := decodeDelta32(newCursor(encodeDelta(d)), func() uint32 { return field }, func(n uint32) { field = n })
		require.NoError(t, err)
		require.Equal(t, v+uint32(d), field)
	})
}
