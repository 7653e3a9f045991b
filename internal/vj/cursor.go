package vj

import (
	"encoding/binary"
	"errors"
)

// errUnderrun is returned when a read would run past the end of the buffer.
// Handlers translate it into the error kind that fits the field being read.
var errUnderrun = errors.New("vj: read past end of buffer")

// cursor is a bounds-checked forward reader over a compressed packet.
type cursor struct {
	buf []byte
	off int
}

func newCursor(buf []byte) *cursor {
	return &cursor{buf: buf}
}

func (c *cursor) readByte() (byte, error) {
	if c.off >= len(c.buf) {
		return 0, errUnderrun
	}
	b := c.buf[c.off]
	c.off++
	return b, nil
}

// readUint16 reads a big-endian 16-bit value.
func (c *cursor) readUint16() (uint16, error) {
	if len(c.buf)-c.off < 2 {
		return 0, errUnderrun
	}
	v := binary.BigEndian.Uint16(c.buf[c.off : c.off+2])
	c.off += 2
	return v, nil
}

// rest returns the unread tail of the buffer without advancing.
func (c *cursor) rest() []byte {
	return c.buf[c.off:]
}

func (c *cursor) offset() int {
	return c.off
}
