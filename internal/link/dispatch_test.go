package link

import (
	"testing"
	"time"

	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/vjtap/internal/core"
)

func TestDecodePPP(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		proto   layers.PPPType
		payload []byte
	}{
		{"full header", []byte{0xFF, 0x03, 0x00, 0x2D, 0xAA}, PPPTypeVJCompressed, []byte{0xAA}},
		{"no address control", []byte{0x00, 0x2F, 0xBB, 0xCC}, PPPTypeVJUncompressed, []byte{0xBB, 0xCC}},
		{"compressed protocol", []byte{0x21, 0x45}, layers.PPPTypeIPv4, []byte{0x45}},
		{"address control and compressed protocol", []byte{0xFF, 0x03, 0x2D, 0x01}, PPPTypeVJCompressed, []byte{0x01}},
		{"empty information field", []byte{0x00, 0x2D}, PPPTypeVJCompressed, []byte{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proto, payload, err := decodePPP(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.proto, proto)
			assert.Equal(t, tt.payload, payload)
		})
	}
}

func TestDecodePPPTooShort(t *testing.T) {
	for _, data := range [][]byte{{}, {0x00}, {0xFF, 0x03}, {0xFF, 0x03, 0x00}} {
		_, _, err := decodePPP(data)
		assert.ErrorIs(t, err, core.ErrPacketTooShort, "data %x", data)
	}
}

func TestNewDispatcherUnsupportedLink(t *testing.T) {
	_, err := NewDispatcher(layers.LinkTypeEthernet, core.DirectionReceived)
	assert.ErrorIs(t, err, core.ErrUnsupportedLink)
}

func TestDispatchPPP(t *testing.T) {
	d, err := NewDispatcher(layers.LinkTypePPP, core.DirectionSent)
	require.NoError(t, err)
	assert.Equal(t, layers.LinkTypePPP, d.LinkType())

	ts := time.Unix(1700000000, 0)
	frame, err := d.Dispatch(core.RawPacket{
		Data:      []byte{0xFF, 0x03, 0x00, 0x2D, 0x00, 0x12, 0x34},
		Timestamp: ts,
		Index:     7,
	})
	require.NoError(t, err)
	assert.Equal(t, core.DirectionSent, frame.Direction)
	assert.Equal(t, core.VariantCompressed, frame.Variant)
	assert.Equal(t, []byte{0x00, 0x12, 0x34}, frame.Payload)
	assert.Equal(t, ts, frame.Timestamp)
	assert.Equal(t, uint64(7), frame.Index)
}

func TestDispatchPPPWithDir(t *testing.T) {
	d, err := NewDispatcher(LinkTypePPPWithDir, core.DirectionSent)
	require.NoError(t, err)

	frame, err := d.Dispatch(core.RawPacket{Data: []byte{0x00, 0x00, 0x2F, 0x45}})
	require.NoError(t, err)
	assert.Equal(t, core.DirectionReceived, frame.Direction)
	assert.Equal(t, core.VariantUncompressed, frame.Variant)

	frame, err = d.Dispatch(core.RawPacket{Data: []byte{0x01, 0xFF, 0x03, 0x00, 0x21, 0x45}})
	require.NoError(t, err)
	assert.Equal(t, core.DirectionSent, frame.Direction)
	assert.Equal(t, core.VariantIPv4, frame.Variant)
	assert.Equal(t, []byte{0x45}, frame.Payload)

	_, err = d.Dispatch(core.RawPacket{})
	assert.ErrorIs(t, err, core.ErrPacketTooShort)
}

func TestDispatchUnsupportedProtocol(t *testing.T) {
	d, err := NewDispatcher(layers.LinkTypePPP, core.DirectionReceived)
	require.NoError(t, err)

	// LCP
	_, err = d.Dispatch(core.RawPacket{Data: []byte{0xC0, 0x21, 0x01}})
	assert.ErrorIs(t, err, core.ErrUnsupportedProto)
}
