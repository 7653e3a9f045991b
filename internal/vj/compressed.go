package vj

import (
	"fmt"

	"firestige.xyz/vjtap/internal/core"
)

// Change byte bits of a compressed packet (RFC 1144 section 3.2.2).
const (
	changeU = 0x01 // urgent pointer delta present
	changeW = 0x02 // window delta present
	changeA = 0x04 // ack delta present
	changeS = 0x08 // sequence delta present
	changeP = 0x10 // PSH flag value
	changeI = 0x20 // IP identification delta present
	changeC = 0x40 // explicit slot id follows

	specialsMask = changeS | changeA | changeW | changeU
	// specialI: echoed interactive traffic, ack and seq both advance by the last payload length.
	specialI = changeS | changeW | changeU
	// specialD: unidirectional data, seq advances by the last payload length.
	specialD = changeS | changeA | changeW | changeU
)

// minCompressedLen is the change byte plus the TCP checksum.
const minCompressedLen = 3

// DecompressCompressed rebuilds the IPv4 and TCP headers of a VJ
// compressed-TCP packet from the change bitmap and the deltas in buf, applied
// to the state of the named (or last used) slot. The slot is only updated
// when the whole packet decodes. Length and slot errors desynchronize the
// table; while desynchronized, packets without an explicit slot id are
// rejected with ErrStillDesynchronized.
func DecompressCompressed(buf []byte, t *SlotTable) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(buf) < minCompressedLen {
		t.toss()
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", core.ErrMalformed, len(buf), minCompressedLen)
	}

	cur := newCursor(buf)
	changes, _ := cur.readByte()

	slot := t.lastSlot
	if changes&changeC != 0 {
		id, _ := cur.readByte()
		if _, err := t.selectSlot(int(id)); err != nil {
			t.toss()
			return nil, err
		}
		slot = int(id)
		t.resync(slot)
	} else if t.desynchronized {
		return nil, fmt.Errorf("%w: change byte 0x%02x without slot id", core.ErrStillDesynchronized, changes)
	}

	stored, err := t.selectSlot(slot)
	if err != nil {
		t.toss()
		return nil, err
	}

	checksum, err := cur.readUint16()
	if err != nil {
		t.toss()
		return nil, fmt.Errorf("%w: no room for tcp checksum", core.ErrMalformed)
	}

	st := stored.clone()
	st.SetTCPChecksum(checksum)
	st.setFlag(tcpFlagPSH, changes&changeP != 0)

	if err := decodeChanges(cur, &st, changes); err != nil {
		t.toss()
		return nil, err
	}

	payload := cur.rest()
	total := len(payload) + st.HeaderLen()
	if total > 0xFFFF {
		t.toss()
		return nil, fmt.Errorf("%w: total length %d exceeds ipv4 maximum", core.ErrInvalidLength, total)
	}
	st.SetTotalLength(uint16(total))
	st.updateIPChecksum()

	*stored = st
	return assemble(stored, payload), nil
}

// decodeChanges applies the sequence/ack/window/urgent section and the IP id
// to st. Any cursor underrun is reported as ErrInvalidLength.
func decodeChanges(c *cursor, st *ConnectionState, changes byte) error {
	switch changes & specialsMask {
	case specialI:
		n, err := lastPayloadLen(st)
		if err != nil {
			return err
		}
		st.SetAck(st.Ack() + n)
		st.SetSeq(st.Seq() + n)

	case specialD:
		n, err := lastPayloadLen(st)
		if err != nil {
			return err
		}
		st.SetSeq(st.Seq() + n)

	default:
		if changes&changeU != 0 {
			st.setFlag(tcpFlagURG, true)
			if err := decodeDelta16(c, st.UrgentPointer, st.SetUrgentPointer); err != nil {
				return underrun("urgent pointer", c)
			}
		} else {
			st.setFlag(tcpFlagURG, false)
			st.SetUrgentPointer(0)
		}
		if changes&changeW != 0 {
			if err := decodeDelta16(c, st.Window, st.SetWindow); err != nil {
				return underrun("window", c)
			}
		}
		if changes&changeA != 0 {
			if err := decodeDelta32(c, st.Ack, st.SetAck); err != nil {
				return underrun("ack", c)
			}
		}
		if changes&changeS != 0 {
			if err := decodeDelta32(c, st.Seq, st.SetSeq); err != nil {
				return underrun("sequence", c)
			}
		}
	}

	if changes&changeI != 0 {
		if err := decodeDelta16(c, st.ID, st.SetID); err != nil {
			return underrun("ip id", c)
		}
	} else {
		st.SetID(st.ID() + 1)
	}
	return nil
}

// lastPayloadLen is the TCP payload length of the previous packet on the
// connection, as recorded in the stored total length.
func lastPayloadLen(st *ConnectionState) (uint32, error) {
	n := int(st.TotalLength()) - st.HeaderLen()
	if n < 0 {
		return 0, fmt.Errorf("%w: stored total length %d below header length %d",
			core.ErrInvalidLength, st.TotalLength(), st.HeaderLen())
	}
	return uint32(n), nil
}

func underrun(field string, c *cursor) error {
	return fmt.Errorf("%w: %s delta runs past end of packet at offset %d", core.ErrInvalidLength, field, c.offset())
}
