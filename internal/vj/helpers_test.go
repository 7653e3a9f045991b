package vj

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// Default field values of test packets.
const (
	testID     uint16 = 0x1c46
	testSeq    uint32 = 1000
	testAck    uint32 = 2000
	testWindow uint16 = 4096
	testTCPSum uint16 = 0xbeef
)

// tcpPacket describes an IPv4/TCP packet built by makePacket.
type tcpPacket struct {
	ipOpts  []byte
	tcpOpts []byte
	payload []byte
	seq     uint32
	ack     uint32
}

// makePacket builds a valid IPv4/TCP datagram with a correct IP checksum.
func makePacket(p tcpPacket) []byte {
	ipLen := ipHeaderLen + len(p.ipOpts)
	tcpLen := tcpHeaderLen + len(p.tcpOpts)
	pkt := make([]byte, ipLen+tcpLen+len(p.payload))

	pkt[0] = 0x40 | byte(ipLen/4) // Version 4, IHL
	binary.BigEndian.PutUint16(pkt[2:4], uint16(len(pkt)))
	binary.BigEndian.PutUint16(pkt[4:6], testID)
	pkt[6] = 0x40 // DF
	pkt[8] = 64   // TTL
	pkt[9] = protocolTCP
	copy(pkt[12:16], []byte{10, 0, 0, 1})
	copy(pkt[16:20], []byte{10, 0, 0, 2})
	copy(pkt[ipHeaderLen:], p.ipOpts)
	binary.BigEndian.PutUint16(pkt[10:12], ipv4Checksum(pkt[:ipLen]))

	seq, ack := p.seq, p.ack
	if seq == 0 {
		seq = testSeq
	}
	if ack == 0 {
		ack = testAck
	}
	tcp := pkt[ipLen:]
	binary.BigEndian.PutUint16(tcp[0:2], 1025)
	binary.BigEndian.PutUint16(tcp[2:4], 23)
	binary.BigEndian.PutUint32(tcp[4:8], seq)
	binary.BigEndian.PutUint32(tcp[8:12], ack)
	tcp[12] = byte(tcpLen/4) << 4
	tcp[13] = 0x10 // ACK
	binary.BigEndian.PutUint16(tcp[14:16], testWindow)
	binary.BigEndian.PutUint16(tcp[16:18], testTCPSum)
	copy(tcp[tcpHeaderLen:], p.tcpOpts)
	copy(pkt[ipLen+tcpLen:], p.payload)
	return pkt
}

// asUncompressed hides slot in the protocol byte, as a compressor does.
func asUncompressed(pkt []byte, slot byte) []byte {
	out := append([]byte(nil), pkt...)
	out[9] = slot
	return out
}

// encodeDelta is the compressor-side encoding of one delta.
func encodeDelta(d uint16) []byte {
	if d >= 1 && d <= 255 {
		return []byte{byte(d)}
	}
	return []byte{0, byte(d >> 8), byte(d)}
}

// seededTable returns a table of capacity slots with slot seeded from pkt.
func seededTable(t *testing.T, capacity int, slot byte, pkt []byte) *SlotTable {
	t.Helper()
	table, err := NewSlotTable(capacity)
	require.NoError(t, err)
	_, err = DecompressUncompressed(asUncompressed(pkt, slot), table)
	require.NoError(t, err)
	return table
}

// snapshot copies every slot for later comparison.
func snapshot(t *SlotTable) []ConnectionState {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]ConnectionState, len(t.slots))
	for i := range t.slots {
		out[i] = t.slots[i].clone()
	}
	return out
}
