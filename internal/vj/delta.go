package vj

// decodeDelta reads one delta. A leading zero byte escapes a big-endian
// 16-bit value (3 bytes total); any other byte is the delta itself.
func decodeDelta(c *cursor) (uint16, error) {
	b, err := c.readByte()
	if err != nil {
		return 0, err
	}
	if b != 0 {
		return uint16(b), nil
	}
	return c.readUint16()
}

// Field widths wrap on overflow, matching the header arithmetic on the wire.

func addDelta16(v, d uint16) uint16 { return v + d }

func addDelta32(v uint32, d uint16) uint32 { return v + uint32(d) }

// decodeDelta16 decodes a delta and applies it to a 16-bit field.
func decodeDelta16(c *cursor, get func() uint16, set func(uint16)) error {
	d, err := decodeDelta(c)
	if err != nil {
		return err
	}
	set(addDelta16(get(), d))
	return nil
}

// decodeDelta32 decodes a delta and applies it to a 32-bit field.
func decodeDelta32(c *cursor, get func() uint32, set func(uint32)) error {
	d, err := decodeDelta(c)
	if err != nil {
		return err
	}
	set(addDelta32(get(), d))
	return nil
}
