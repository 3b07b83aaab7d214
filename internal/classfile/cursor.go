package classfile

import "encoding/binary"

// Cursor reads big-endian values from an immutable byte slice. Every read
// is checked against the slice length; a failed read leaves the position
// unchanged.
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor returns a cursor positioned at the start of data.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Offset returns the current position.
func (c *Cursor) Offset() int {
	return c.pos
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.data) - c.pos
}

// Seek moves to an absolute position. Seeking to the end is allowed.
func (c *Cursor) Seek(off int) error {
	if off < 0 || off > len(c.data) {
		return errorf(c.pos, "seek to %d outside of %d bytes", off, len(c.data))
	}

	c.pos = off

	return nil
}

// Skip advances n bytes.
func (c *Cursor) Skip(n int) error {
	if err := c.need(n); err != nil {
		return err
	}

	c.pos += n

	return nil
}

// U8 reads one byte.
func (c *Cursor) U8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}

	v := c.data[c.pos]
	c.pos++

	return v, nil
}

// U16 reads an unsigned 16-bit value.
func (c *Cursor) U16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}

	v := binary.BigEndian.Uint16(c.data[c.pos:])
	c.pos += 2

	return v, nil
}

// U32 reads an unsigned 32-bit value.
func (c *Cursor) U32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}

	v := binary.BigEndian.Uint32(c.data[c.pos:])
	c.pos += 4

	return v, nil
}

// S32 reads a signed 32-bit value.
func (c *Cursor) S32() (int32, error) {
	v, err := c.U32()
	return int32(v), err
}

// Bytes returns the next n bytes without copying. The result's capacity is
// clipped so appending to it cannot overwrite the underlying data.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}

	b := c.data[c.pos : c.pos+n : c.pos+n]
	c.pos += n

	return b, nil
}

func (c *Cursor) need(n int) error {
	if n < 0 || n > len(c.data)-c.pos {
		return errorf(c.pos, "need %d bytes, %d left", n, len(c.data)-c.pos)
	}

	return nil
}
