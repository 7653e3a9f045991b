// Package link turns captured link-layer frames into codec input.
package link

import (
	"encoding/binary"
	"fmt"

	"github.com/google/gopacket/layers"

	"firestige.xyz/vjtap/internal/core"
)

const (
	// Address and control bytes of an HDLC-framed PPP header
	pppAddress = 0xFF
	pppControl = 0x03

	// PPP protocol numbers of the VJ frame types (RFC 1332)
	PPPTypeVJCompressed   layers.PPPType = 0x002D
	PPPTypeVJUncompressed layers.PPPType = 0x002F
)

// decodePPP strips the PPP header. The address/control pair is optional
// (address-and-control-field compression) and a protocol whose first byte is
// odd was sent as a single byte (protocol-field compression).
// Returns the protocol number and the information field.
func decodePPP(data []byte) (layers.PPPType, []byte, error) {
	offset := 0
	if len(data) >= 2 && data[0] == pppAddress && data[1] == pppControl {
		offset = 2
	}

	if len(data) < offset+1 {
		return 0, nil, core.ErrPacketTooShort
	}

	// Protocol field: odd first byte means it was compressed to one byte
	if data[offset]&0x01 != 0 {
		return layers.PPPType(data[offset]), data[offset+1:], nil
	}
	if len(data) < offset+2 {
		return 0, nil, core.ErrPacketTooShort
	}
	proto := layers.PPPType(binary.BigEndian.Uint16(data[offset : offset+2]))
	return proto, data[offset+2:], nil
}

// variantOf maps a PPP protocol number to the frame variant.
func variantOf(proto layers.PPPType) (core.Variant, error) {
	switch proto {
	case layers.PPPTypeIPv4:
		return core.VariantIPv4, nil
	case PPPTypeVJUncompressed:
		return core.VariantUncompressed, nil
	case PPPTypeVJCompressed:
		return core.VariantCompressed, nil
	default:
		return 0, fmt.Errorf("%w: ppp protocol 0x%04x", core.ErrUnsupportedProto, uint16(proto))
	}
}
