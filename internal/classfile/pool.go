package classfile

import (
	"encoding/binary"
	"fmt"
)

const (
	// MaxUTF8Length is the largest encodable UTF-8 entry body.
	MaxUTF8Length = 65535
	// MaxCodeLength is the largest code array a method may have.
	MaxCodeLength = 65535
)

// PoolBuilder serializes constant-pool entries to be appended after the
// existing entries of a class. Identical entries are emitted once.
type PoolBuilder struct {
	next  int
	buf   []byte
	dedup map[string]uint16
}

// NewPoolBuilder returns a builder whose first entry gets index first,
// normally the constant_pool_count of the class being extended.
func NewPoolBuilder(first int) *PoolBuilder {
	return &PoolBuilder{next: first, dedup: make(map[string]uint16)}
}

// Next returns the index the next new entry will get.
func (p *PoolBuilder) Next() int {
	return p.next
}

// Count returns the constant_pool_count after all added entries.
func (p *PoolBuilder) Count() int {
	return p.next
}

// Bytes returns the serialized entries.
func (p *PoolBuilder) Bytes() []byte {
	return p.buf
}

// Len returns the number of serialized bytes.
func (p *PoolBuilder) Len() int {
	return len(p.buf)
}

func (p *PoolBuilder) add(entry []byte, slots int) (uint16, error) {
	key := string(entry)
	if idx, ok := p.dedup[key]; ok {
		return idx, nil
	}

	if p.next+slots > MaxPoolCount {
		return 0, fmt.Errorf("constant pool would need %d slots: %w", p.next+slots, ErrCapacityExceeded)
	}

	idx := uint16(p.next)
	p.next += slots
	p.buf = append(p.buf, entry...)
	p.dedup[key] = idx

	return idx, nil
}

// UTF8 adds a UTF-8 entry holding s, which must already be in modified
// UTF-8 form.
func (p *PoolBuilder) UTF8(s []byte) (uint16, error) {
	if len(s) > MaxUTF8Length {
		return 0, fmt.Errorf("UTF-8 constant of %d bytes: %w", len(s), ErrCapacityExceeded)
	}

	entry := make([]byte, 3, 3+len(s))
	entry[0] = byte(TagUTF8)
	binary.BigEndian.PutUint16(entry[1:], uint16(len(s)))

	return p.add(append(entry, s...), 1)
}

func (p *PoolBuilder) ref1(tag Tag, a uint16) (uint16, error) {
	return p.add([]byte{byte(tag), byte(a >> 8), byte(a)}, 1)
}

func (p *PoolBuilder) ref2(tag Tag, a, b uint16) (uint16, error) {
	return p.add([]byte{byte(tag), byte(a >> 8), byte(a), byte(b >> 8), byte(b)}, 1)
}

// Class adds a Class entry naming the UTF-8 entry name.
func (p *PoolBuilder) Class(name uint16) (uint16, error) {
	return p.ref1(TagClass, name)
}

// String adds a String entry for the UTF-8 entry value.
func (p *PoolBuilder) String(value uint16) (uint16, error) {
	return p.ref1(TagString, value)
}

// MethodType adds a MethodType entry for the UTF-8 descriptor desc.
func (p *PoolBuilder) MethodType(desc uint16) (uint16, error) {
	return p.ref1(TagMethodType, desc)
}

// NameAndType adds a NameAndType entry.
func (p *PoolBuilder) NameAndType(name, desc uint16) (uint16, error) {
	return p.ref2(TagNameAndType, name, desc)
}

// Member adds a Fieldref, Methodref or InterfaceMethodref entry.
func (p *PoolBuilder) Member(tag Tag, class, nat uint16) (uint16, error) {
	return p.ref2(tag, class, nat)
}

// Integer adds an Integer entry.
func (p *PoolBuilder) Integer(v int32) (uint16, error) {
	entry := []byte{byte(TagInteger), 0, 0, 0, 0}
	binary.BigEndian.PutUint32(entry[1:], uint32(v))

	return p.add(entry, 1)
}

// Long adds a Long entry, which occupies two indexes.
func (p *PoolBuilder) Long(v int64) (uint16, error) {
	entry := make([]byte, 9)
	entry[0] = byte(TagLong)
	binary.BigEndian.PutUint64(entry[1:], uint64(v))

	return p.add(entry, 2)
}

// MethodHandle adds a MethodHandle entry.
func (p *PoolBuilder) MethodHandle(kind uint8, ref uint16) (uint16, error) {
	return p.add([]byte{byte(TagMethodHandle), kind, byte(ref >> 8), byte(ref)}, 1)
}

// ClassNamed adds a UTF-8 entry and a Class entry for name.
func (p *PoolBuilder) ClassNamed(name string) (uint16, error) {
	utf, err := p.UTF8([]byte(name))
	if err != nil {
		return 0, err
	}

	return p.Class(utf)
}

// StringNamed adds a UTF-8 entry and a String entry for s.
func (p *PoolBuilder) StringNamed(s string) (uint16, error) {
	utf, err := p.UTF8([]byte(s))
	if err != nil {
		return 0, err
	}

	return p.String(utf)
}

// MemberNamed adds the UTF-8, NameAndType and member reference entries for
// owner.name:desc, reusing a Class entry already added for owner.
func (p *PoolBuilder) MemberNamed(tag Tag, class uint16, name, desc string) (uint16, error) {
	n, err := p.UTF8([]byte(name))
	if err != nil {
		return 0, err
	}

	d, err := p.UTF8([]byte(desc))
	if err != nil {
		return 0, err
	}

	nat, err := p.NameAndType(n, d)
	if err != nil {
		return 0, err
	}

	return p.Member(tag, class, nat)
}
