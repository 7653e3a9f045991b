// Package core defines core data structures with zero external dependencies.
package core

import (
	"net/netip"
	"time"
)

// RawPacket is one frame read from a capture source.
type RawPacket struct {
	Data       []byte    // Raw frame data, including link-layer framing
	Timestamp  time.Time // Capture timestamp
	CaptureLen uint32    // Actual captured length
	OrigLen    uint32    // Original frame length
	Index      uint64    // 1-based frame number within the capture
}

// Frame is a link frame after PPP dispatch: the codec-specific payload plus
// the direction and variant needed to pick a slot table and a handler.
type Frame struct {
	Timestamp time.Time
	Index     uint64
	Direction Direction
	Variant   Variant
	Payload   []byte // Starts at the IP header or at the compressed change byte
}

// OutputPacket is the final output handed to sinks.
type OutputPacket struct {
	Timestamp time.Time
	Index     uint64
	Direction Direction
	Variant   Variant

	// Network context, filled from the reconstructed datagram
	SrcIP     netip.Addr
	DstIP     netip.Addr
	IP        IPHeader
	Transport TransportHeader

	Labels Labels

	// Data is the reconstructed IPv4 datagram (header and payload).
	// Nil when Err is set.
	Data []byte
	Err  error
}
