package vj

import (
	"fmt"

	"firestige.xyz/vjtap/internal/core"
)

// DecompressUncompressed ingests a VJ uncompressed-TCP packet: a full IPv4 and
// TCP header whose protocol byte carries the slot id. The slot is replaced by
// the packet's headers and the table is resynchronized on it. The returned
// buffer is a copy of buf with the protocol byte restored to TCP.
func DecompressUncompressed(buf []byte, t *SlotTable) ([]byte, error) {
	if len(buf) < ipHeaderLen {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", core.ErrHeaderTooShort, len(buf), ipHeaderLen)
	}

	// IHL (Internet Header Length) - lower 4 bits of first byte, in 32-bit words
	ipLen := int(buf[0]&0x0F) * 4
	if ipLen < ipHeaderLen {
		return nil, fmt.Errorf("%w: ip header length %d", core.ErrHeaderTooShort, ipLen)
	}
	if len(buf) < ipLen+tcpHeaderLen {
		return nil, fmt.Errorf("%w: %d bytes, need %d for ip and tcp headers",
			core.ErrHeaderTooShort, len(buf), ipLen+tcpHeaderLen)
	}

	// Data Offset (upper 4 bits of TCP byte 12), in 32-bit words
	tcpLen := int(buf[ipLen+12]>>4) * 4
	if tcpLen < tcpHeaderLen || len(buf) < ipLen+tcpLen {
		return nil, fmt.Errorf("%w: tcp header length %d with %d bytes after ip header",
			core.ErrHeaderTooShort, tcpLen, len(buf)-ipLen)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	slot := int(buf[9])
	st, err := t.selectSlot(slot)
	if err != nil {
		t.toss()
		return nil, err
	}

	pkt := make([]byte, len(buf))
	copy(pkt, buf)
	pkt[9] = protocolTCP

	// The compressor checksummed the header before hiding the slot id in it.
	if sum := ipv4Checksum(pkt[:ipLen]); sum != 0 {
		return nil, fmt.Errorf("%w: residue 0x%04x for slot %d", core.ErrChecksumInvalid, sum, slot)
	}

	*st = newConnectionState(pkt[:ipLen], pkt[ipLen:ipLen+tcpLen])
	t.resync(slot)
	return pkt, nil
}
