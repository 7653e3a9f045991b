// Package core defines core types with zero external dependencies.
package core

import "net/netip"

// Direction identifies one side of a point-to-point link.
type Direction uint8

const (
	DirectionReceived Direction = iota
	DirectionSent
)

// String returns the lowercase direction name.
func (d Direction) String() string {
	switch d {
	case DirectionReceived:
		return "received"
	case DirectionSent:
		return "sent"
	default:
		return "unknown"
	}
}

// ParseDirection parses "received"/"sent" (also "rx"/"tx").
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "received", "rx", "in":
		return DirectionReceived, true
	case "sent", "tx", "out":
		return DirectionSent, true
	default:
		return DirectionReceived, false
	}
}

// Variant is the on-wire frame type a payload was carried in.
type Variant uint8

const (
	VariantIPv4         Variant = iota // plain IPv4, not touched by the codec
	VariantUncompressed                // VJ uncompressed TCP (baseline)
	VariantCompressed                  // VJ compressed TCP
)

// String returns the variant name.
func (v Variant) String() string {
	switch v {
	case VariantIPv4:
		return "ipv4"
	case VariantUncompressed:
		return "uncompressed"
	case VariantCompressed:
		return "compressed"
	default:
		return "unknown"
	}
}

// IPHeader represents an IPv4 header as seen by the downstream interpreter.
type IPHeader struct {
	Version  uint8
	IHL      uint8
	SrcIP    netip.Addr // Go stdlib value type, zero allocation
	DstIP    netip.Addr
	Protocol uint8 // TCP=6
	TTL      uint8
	TotalLen uint16
	ID       uint16
	Checksum uint16
}

// TransportHeader represents the TCP header of a reconstructed datagram.
type TransportHeader struct {
	SrcPort  uint16
	DstPort  uint16
	Protocol uint8 // Redundant storage for convenience
	TCPFlags uint8
	SeqNum   uint32
	AckNum   uint32
	Window   uint16
	Checksum uint16
	Urgent   uint16
}
