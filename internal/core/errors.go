// Package core defines sentinel errors.
package core

import "errors"

// Sentinel errors. Callers match them with errors.Is; producers wrap them
// with fmt.Errorf("%w: ...") to add packet context.
var (
	// Header decompression errors
	ErrHeaderTooShort      = errors.New("vjtap: header too short")
	ErrSlotOutOfRange      = errors.New("vjtap: slot id out of range")
	ErrChecksumInvalid     = errors.New("vjtap: ip header checksum invalid")
	ErrInvalidLength       = errors.New("vjtap: invalid payload length")
	ErrStillDesynchronized = errors.New("vjtap: link direction desynchronized")
	ErrMalformed           = errors.New("vjtap: malformed compressed packet")

	// Frame dispatch errors
	ErrPacketTooShort   = errors.New("vjtap: packet too short")
	ErrUnsupportedProto = errors.New("vjtap: unsupported protocol")
	ErrUnsupportedLink  = errors.New("vjtap: unsupported link type")

	// Pipeline errors
	ErrPipelineStopped = errors.New("vjtap: pipeline stopped")

	// Configuration errors
	ErrConfigInvalid = errors.New("vjtap: invalid configuration")
)

// ErrorKind maps an error to a short stable label used in metrics and stats.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrHeaderTooShort):
		return "header_too_short"
	case errors.Is(err, ErrSlotOutOfRange):
		return "slot_out_of_range"
	case errors.Is(err, ErrChecksumInvalid):
		return "checksum_invalid"
	case errors.Is(err, ErrInvalidLength):
		return "invalid_length"
	case errors.Is(err, ErrStillDesynchronized):
		return "desynchronized"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrPacketTooShort):
		return "packet_too_short"
	case errors.Is(err, ErrUnsupportedProto):
		return "unsupported_proto"
	default:
		return "other"
	}
}
