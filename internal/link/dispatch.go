package link

import (
	"fmt"

	"github.com/google/gopacket/layers"

	"firestige.xyz/vjtap/internal/core"
)

// LinkTypePPPWithDir is LINKTYPE_PPP_WITH_DIR: a PPP frame preceded by one
// byte, 0 for received and 1 for sent. gopacket has no constant for it.
const LinkTypePPPWithDir layers.LinkType = 204

// Dispatcher splits frames of one capture into direction, variant and payload.
type Dispatcher struct {
	linkType   layers.LinkType
	defaultDir core.Direction
}

// NewDispatcher creates a dispatcher for captures of linkType. Frames of
// link types without a direction pseudo-header are assigned defaultDir.
func NewDispatcher(linkType layers.LinkType, defaultDir core.Direction) (*Dispatcher, error) {
	switch linkType {
	case layers.LinkTypePPP, layers.LinkTypePPP_HDLC, LinkTypePPPWithDir:
	default:
		return nil, fmt.Errorf("%w: link type %d", core.ErrUnsupportedLink, linkType)
	}
	return &Dispatcher{linkType: linkType, defaultDir: defaultDir}, nil
}

// LinkType returns the capture link type the dispatcher was built for.
func (d *Dispatcher) LinkType() layers.LinkType {
	return d.linkType
}

// Dispatch decodes the link headers of raw. The frame payload aliases raw.Data.
func (d *Dispatcher) Dispatch(raw core.RawPacket) (core.Frame, error) {
	frame := core.Frame{
		Timestamp: raw.Timestamp,
		Index:     raw.Index,
		Direction: d.defaultDir,
	}

	data := raw.Data
	if d.linkType == LinkTypePPPWithDir {
		if len(data) < 1 {
			return frame, core.ErrPacketTooShort
		}
		// Any non-zero value means the frame was sent by the capturing host
		if data[0] == 0 {
			frame.Direction = core.DirectionReceived
		} else {
			frame.Direction = core.DirectionSent
		}
		data = data[1:]
	}

	proto, payload, err := decodePPP(data)
	if err != nil {
		return frame, err
	}
	variant, err := variantOf(proto)
	if err != nil {
		return frame, err
	}

	frame.Variant = variant
	frame.Payload = payload
	return frame, nil
}
