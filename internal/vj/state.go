package vj

import (
	"bytes"
	"encoding/binary"
)

const (
	ipHeaderLen  = 20 // IPv4 header without options
	tcpHeaderLen = 20 // TCP header without options

	protocolTCP = 6
)

// TCP flag bits (byte 13 of the TCP header).
const (
	tcpFlagPSH = 0x08
	tcpFlagURG = 0x20
)

// ConnectionState is the saved header of one connection slot. IP and TCP hold
// the fixed headers in network byte order; the option slices hold whatever
// followed them on the last baseline (IHL and data offset never change while
// a connection is compressed).
type ConnectionState struct {
	IP         [ipHeaderLen]byte
	IPOptions  []byte
	TCP        [tcpHeaderLen]byte
	TCPOptions []byte
}

// newConnectionState copies ipHdr (header plus options) and tcpHdr (header
// plus options) into a fresh state.
func newConnectionState(ipHdr, tcpHdr []byte) ConnectionState {
	var st ConnectionState
	copy(st.IP[:], ipHdr[:ipHeaderLen])
	if len(ipHdr) > ipHeaderLen {
		st.IPOptions = append([]byte(nil), ipHdr[ipHeaderLen:]...)
	}
	copy(st.TCP[:], tcpHdr[:tcpHeaderLen])
	if len(tcpHdr) > tcpHeaderLen {
		st.TCPOptions = append([]byte(nil), tcpHdr[tcpHeaderLen:]...)
	}
	return st
}

// clone returns a deep copy so a decode can run without touching the slot.
func (s *ConnectionState) clone() ConnectionState {
	c := *s
	if s.IPOptions != nil {
		c.IPOptions = append([]byte(nil), s.IPOptions...)
	}
	if s.TCPOptions != nil {
		c.TCPOptions = append([]byte(nil), s.TCPOptions...)
	}
	return c
}

// Equal reports whether two states hold byte-identical headers.
func (s *ConnectionState) Equal(o *ConnectionState) bool {
	return s.IP == o.IP && s.TCP == o.TCP &&
		bytes.Equal(s.IPOptions, o.IPOptions) &&
		bytes.Equal(s.TCPOptions, o.TCPOptions)
}

// IPHeaderLen is the IP header length including options.
func (s *ConnectionState) IPHeaderLen() int { return ipHeaderLen + len(s.IPOptions) }

// TCPHeaderLen is the TCP header length including options.
func (s *ConnectionState) TCPHeaderLen() int { return tcpHeaderLen + len(s.TCPOptions) }

// HeaderLen is the combined IP and TCP header length.
func (s *ConnectionState) HeaderLen() int { return s.IPHeaderLen() + s.TCPHeaderLen() }

// IPv4 fields

func (s *ConnectionState) TotalLength() uint16     { return binary.BigEndian.Uint16(s.IP[2:4]) }
func (s *ConnectionState) SetTotalLength(v uint16) { binary.BigEndian.PutUint16(s.IP[2:4], v) }
func (s *ConnectionState) ID() uint16              { return binary.BigEndian.Uint16(s.IP[4:6]) }
func (s *ConnectionState) SetID(v uint16)          { binary.BigEndian.PutUint16(s.IP[4:6], v) }
func (s *ConnectionState) Protocol() uint8         { return s.IP[9] }
func (s *ConnectionState) IPChecksum() uint16      { return binary.BigEndian.Uint16(s.IP[10:12]) }

// updateIPChecksum recomputes the header checksum over the fixed header and options.
func (s *ConnectionState) updateIPChecksum() {
	s.IP[10], s.IP[11] = 0, 0
	hdr := make([]byte, 0, s.IPHeaderLen())
	hdr = append(hdr, s.IP[:]...)
	hdr = append(hdr, s.IPOptions...)
	binary.BigEndian.PutUint16(s.IP[10:12], ipv4Checksum(hdr))
}

// TCP fields

func (s *ConnectionState) SrcPort() uint16           { return binary.BigEndian.Uint16(s.TCP[0:2]) }
func (s *ConnectionState) DstPort() uint16           { return binary.BigEndian.Uint16(s.TCP[2:4]) }
func (s *ConnectionState) Seq() uint32               { return binary.BigEndian.Uint32(s.TCP[4:8]) }
func (s *ConnectionState) SetSeq(v uint32)           { binary.BigEndian.PutUint32(s.TCP[4:8], v) }
func (s *ConnectionState) Ack() uint32               { return binary.BigEndian.Uint32(s.TCP[8:12]) }
func (s *ConnectionState) SetAck(v uint32)           { binary.BigEndian.PutUint32(s.TCP[8:12], v) }
func (s *ConnectionState) Flags() uint8              { return s.TCP[13] }
func (s *ConnectionState) Window() uint16            { return binary.BigEndian.Uint16(s.TCP[14:16]) }
func (s *ConnectionState) SetWindow(v uint16)        { binary.BigEndian.PutUint16(s.TCP[14:16], v) }
func (s *ConnectionState) TCPChecksum() uint16       { return binary.BigEndian.Uint16(s.TCP[16:18]) }
func (s *ConnectionState) SetTCPChecksum(v uint16)   { binary.BigEndian.PutUint16(s.TCP[16:18], v) }
func (s *ConnectionState) UrgentPointer() uint16     { return binary.BigEndian.Uint16(s.TCP[18:20]) }
func (s *ConnectionState) SetUrgentPointer(v uint16) { binary.BigEndian.PutUint16(s.TCP[18:20], v) }

// setFlag sets or clears a TCP flag bit.
func (s *ConnectionState) setFlag(flag uint8, on bool) {
	if on {
		s.TCP[13] |= flag
	} else {
		s.TCP[13] &^= flag
	}
}
