package classfile

import (
	"bytes"
	"encoding/binary"
)

const (
	// Magic is the class-file signature.
	Magic = 0xCAFEBABE
	// PoolCountOffset is the offset of constant_pool_count.
	PoolCountOffset = 8
	// MaxPoolCount is the largest representable constant_pool_count.
	MaxPoolCount = 65535

	// Oldest supported version is 45.3: earlier files use one-byte
	// max_stack/max_locals and a two-byte code_length.
	MinMajor = 45
	MinMinor = 3
	// MaxMajor is Java 25.
	MaxMajor = 69
)

// Method locates one method_info structure.
type Method struct {
	Index           int
	Offset          int
	AccessFlags     uint16
	NameIndex       uint16
	DescriptorIndex uint16
	// Code is nil for abstract and native methods.
	Code *Code
}

// Code locates the fields of a Code attribute. All fields are byte offsets
// into the class file.
type Code struct {
	// Attr is the offset of attribute_name_index; attribute_length follows.
	Attr       int
	MaxStack   int
	MaxLocals  int
	CodeLength int
	// Start and End delimit the instruction bytes.
	Start int
	End   int
}

// AttrLength returns the offset of the attribute_length field.
func (c *Code) AttrLength() int {
	return c.Attr + 2
}

// View is a read-only structural index over one class file.
type View struct {
	data []byte

	Minor uint16
	Major uint16

	// offsets[i] is the offset of the tag byte of pool entry i; 0 for the
	// unused index 0 and for the second slot of Long and Double entries.
	offsets []int
	poolEnd int

	AccessFlags uint16
	ThisClass   uint16
	SuperClass  uint16

	methods []Method
}

// Parse indexes data. It fails with a *FormatError when the bytes do not
// hold a supported, structurally consistent class file.
func Parse(data []byte) (*View, error) {
	v := &View{data: data}
	c := NewCursor(data)

	magic, err := c.U32()
	if err != nil {
		return nil, err
	}

	if magic != Magic {
		return nil, errorf(0, "bad magic %#x", magic)
	}

	if v.Minor, err = c.U16(); err != nil {
		return nil, err
	}

	if v.Major, err = c.U16(); err != nil {
		return nil, err
	}

	if !SupportedVersion(v.Major, v.Minor) {
		return nil, errorf(4, "unsupported class file version %d.%d", v.Major, v.Minor)
	}

	if err := v.parsePool(c); err != nil {
		return nil, err
	}

	if err := v.parseHeader(c); err != nil {
		return nil, err
	}

	// Fields carry nothing we need beyond their length.
	if err := skipMembers(c); err != nil {
		return nil, err
	}

	if err := v.parseMethods(c); err != nil {
		return nil, err
	}

	if err := skipAttributes(c); err != nil {
		return nil, err
	}

	if c.Remaining() != 0 {
		return nil, errorf(c.Offset(), "%d trailing bytes", c.Remaining())
	}

	return v, nil
}

// SupportedVersion reports whether major.minor is a version Parse accepts.
func SupportedVersion(major, minor uint16) bool {
	switch {
	case major < MinMajor || major > MaxMajor:
		return false
	case major == MinMajor && minor < MinMinor:
		return false
	default:
		return true
	}
}

func (v *View) parsePool(c *Cursor) error {
	count, err := c.U16()
	if err != nil {
		return err
	}

	if count == 0 {
		return errorf(PoolCountOffset, "constant_pool_count is zero")
	}

	v.offsets = make([]int, count)

	for i := 1; i < int(count); i++ {
		off := c.Offset()

		b, err := c.U8()
		if err != nil {
			return err
		}

		tag := Tag(b)
		if !tag.Valid() {
			return errorf(off, "unrecognized constant pool tag %d at index %d", b, i)
		}

		v.offsets[i] = off

		if size := tags[tag].size; size >= 0 {
			err = c.Skip(size)
		} else {
			var n uint16
			if n, err = c.U16(); err == nil {
				err = c.Skip(int(n))
			}
		}

		if err != nil {
			return err
		}

		if tag.Slots() == 2 {
			i++
			if i >= int(count) {
				return errorf(off, "%s entry at index %d overruns the pool", tag, i-1)
			}
		}
	}

	v.poolEnd = c.Offset()

	return nil
}

func (v *View) parseHeader(c *Cursor) error {
	var err error

	if v.AccessFlags, err = c.U16(); err != nil {
		return err
	}

	thisOff := c.Offset()
	if v.ThisClass, err = c.U16(); err != nil {
		return err
	}

	if v.Tag(int(v.ThisClass)) != TagClass {
		return errorf(thisOff, "this_class %d is not a Class entry", v.ThisClass)
	}

	if v.SuperClass, err = c.U16(); err != nil {
		return err
	}

	interfaces, err := c.U16()
	if err != nil {
		return err
	}

	return c.Skip(2 * int(interfaces))
}

func (v *View) parseMethods(c *Cursor) error {
	codeName := v.findUTF8([]byte("Code"))

	count, err := c.U16()
	if err != nil {
		return err
	}

	v.methods = make([]Method, 0, count)

	for i := 0; i < int(count); i++ {
		m := Method{Index: i, Offset: c.Offset()}

		if m.AccessFlags, err = c.U16(); err != nil {
			return err
		}

		if m.NameIndex, err = c.U16(); err != nil {
			return err
		}

		if m.DescriptorIndex, err = c.U16(); err != nil {
			return err
		}

		if v.Tag(int(m.NameIndex)) != TagUTF8 || v.Tag(int(m.DescriptorIndex)) != TagUTF8 {
			return errorf(m.Offset, "method %d has invalid name or descriptor index", i)
		}

		attrs, err := c.U16()
		if err != nil {
			return err
		}

		for j := 0; j < int(attrs); j++ {
			attr := c.Offset()

			name, err := c.U16()
			if err != nil {
				return err
			}

			length, err := c.U32()
			if err != nil {
				return err
			}

			if codeName == 0 || int(name) != codeName {
				if err := c.Skip(int(length)); err != nil {
					return err
				}

				continue
			}

			if m.Code != nil {
				return errorf(attr, "method %d has more than one Code attribute", i)
			}

			if m.Code, err = parseCode(c, attr, length); err != nil {
				return err
			}
		}

		v.methods = append(v.methods, m)
	}

	return nil
}

func parseCode(c *Cursor, attr int, length uint32) (*Code, error) {
	start := c.Offset()
	end := start + int(length)

	if int64(length) > int64(c.Remaining()) {
		return nil, errorf(attr, "Code attribute length %d exceeds the file", length)
	}

	code := &Code{
		Attr:       attr,
		MaxStack:   start,
		MaxLocals:  start + 2,
		CodeLength: start + 4,
		Start:      start + 8,
	}

	if err := c.Skip(4); err != nil {
		return nil, err
	}

	n, err := c.U32()
	if err != nil {
		return nil, err
	}

	// code, exception_table_length and attributes_count must all fit.
	if n == 0 || int64(n) > int64(end-code.Start-4) {
		return nil, errorf(code.CodeLength, "code_length %d inconsistent with attribute length %d", n, length)
	}

	code.End = code.Start + int(n)

	return code, c.Seek(end)
}

func skipMembers(c *Cursor) error {
	count, err := c.U16()
	if err != nil {
		return err
	}

	for i := 0; i < int(count); i++ {
		if err := c.Skip(6); err != nil {
			return err
		}

		if err := skipAttributes(c); err != nil {
			return err
		}
	}

	return nil
}

func skipAttributes(c *Cursor) error {
	count, err := c.U16()
	if err != nil {
		return err
	}

	for i := 0; i < int(count); i++ {
		if err := c.Skip(2); err != nil {
			return err
		}

		length, err := c.U32()
		if err != nil {
			return err
		}

		if err := c.Skip(int(length)); err != nil {
			return err
		}
	}

	return nil
}

// findUTF8 returns the index of the first UTF-8 entry equal to s, or 0.
func (v *View) findUTF8(s []byte) int {
	for i := 1; i < len(v.offsets); i++ {
		if v.Tag(i) != TagUTF8 {
			continue
		}

		if b, _ := v.UTF8(i); bytes.Equal(b, s) {
			return i
		}
	}

	return 0
}

// Bytes returns the indexed class file. It must not be modified.
func (v *View) Bytes() []byte {
	return v.data
}

// Count returns constant_pool_count: one more than the highest index.
func (v *View) Count() int {
	return len(v.offsets)
}

// PoolEnd returns the offset just past the last constant-pool entry.
func (v *View) PoolEnd() int {
	return v.poolEnd
}

// Offset returns the offset of pool entry i, or 0 for an unused index.
func (v *View) Offset(i int) int {
	if i <= 0 || i >= len(v.offsets) {
		return 0
	}

	return v.offsets[i]
}

// Tag returns the tag of pool entry i, or 0 for an unused or out of range
// index.
func (v *View) Tag(i int) Tag {
	off := v.Offset(i)
	if off == 0 {
		return 0
	}

	return Tag(v.data[off])
}

func (v *View) u16(off int) uint16 {
	return binary.BigEndian.Uint16(v.data[off:])
}

// U16 returns the unsigned 16-bit value at an offset known to lie inside
// the indexed structure.
func (v *View) U16(off int) uint16 {
	return v.u16(off)
}

// U32 returns the unsigned 32-bit value at an offset known to lie inside
// the indexed structure.
func (v *View) U32(off int) uint32 {
	return binary.BigEndian.Uint32(v.data[off:])
}

func (v *View) expect(i int, want Tag) (int, error) {
	if got := v.Tag(i); got != want {
		return 0, errorf(v.Offset(i), "constant %d is %s, want %s", i, got, want)
	}

	return v.offsets[i], nil
}

// UTF8Span returns the bounds of the content of UTF-8 entry i.
func (v *View) UTF8Span(i int) (start, end int, err error) {
	off, err := v.expect(i, TagUTF8)
	if err != nil {
		return 0, 0, err
	}

	start = off + 3

	return start, start + int(v.u16(off+1)), nil
}

// UTF8 returns the content of UTF-8 entry i without copying.
func (v *View) UTF8(i int) ([]byte, error) {
	start, end, err := v.UTF8Span(i)
	if err != nil {
		return nil, err
	}

	return v.data[start:end:end], nil
}

func (v *View) indirect(i int, tag Tag) ([]byte, error) {
	off, err := v.expect(i, tag)
	if err != nil {
		return nil, err
	}

	return v.UTF8(int(v.u16(off + 1)))
}

// ClassName returns the internal name held by Class entry i.
func (v *View) ClassName(i int) ([]byte, error) {
	return v.indirect(i, TagClass)
}

// StringValue returns the content of String entry i.
func (v *View) StringValue(i int) ([]byte, error) {
	return v.indirect(i, TagString)
}

// NameAndType returns the name and descriptor indexes of entry i.
func (v *View) NameAndType(i int) (name, desc uint16, err error) {
	off, err := v.expect(i, TagNameAndType)
	if err != nil {
		return 0, 0, err
	}

	return v.u16(off + 1), v.u16(off + 3), nil
}

// MemberRef returns the class and name-and-type indexes of a Fieldref,
// Methodref or InterfaceMethodref entry.
func (v *View) MemberRef(i int) (class, nat uint16, err error) {
	switch tag := v.Tag(i); tag {
	case TagFieldref, TagMethodref, TagInterfaceMethodref:
		off := v.offsets[i]
		return v.u16(off + 1), v.u16(off + 3), nil
	default:
		return 0, 0, errorf(v.Offset(i), "constant %d is %s, want a member reference", i, tag)
	}
}

// MethodHandle returns the reference kind and reference index of entry i.
func (v *View) MethodHandle(i int) (kind uint8, ref uint16, err error) {
	off, err := v.expect(i, TagMethodHandle)
	if err != nil {
		return 0, 0, err
	}

	return v.data[off+1], v.u16(off + 2), nil
}

// Ref is a resolved member reference.
type Ref struct {
	Tag        Tag
	Class      string
	Name       string
	Descriptor string
}

func (r Ref) String() string {
	return r.Class + "." + r.Name + r.Descriptor
}

// Ref resolves member reference i to its class, name and descriptor.
func (v *View) Ref(i int) (Ref, error) {
	class, nat, err := v.MemberRef(i)
	if err != nil {
		return Ref{}, err
	}

	owner, err := v.ClassName(int(class))
	if err != nil {
		return Ref{}, err
	}

	nameIdx, descIdx, err := v.NameAndType(int(nat))
	if err != nil {
		return Ref{}, err
	}

	name, err := v.UTF8(int(nameIdx))
	if err != nil {
		return Ref{}, err
	}

	desc, err := v.UTF8(int(descIdx))
	if err != nil {
		return Ref{}, err
	}

	return Ref{Tag: v.Tag(i), Class: string(owner), Name: string(name), Descriptor: string(desc)}, nil
}

// ThisClassName returns the internal name of the class.
func (v *View) ThisClassName() ([]byte, error) {
	return v.ClassName(int(v.ThisClass))
}

// Methods returns the indexed methods in file order.
func (v *View) Methods() []Method {
	return v.methods
}

// Method returns method i.
func (v *View) Method(i int) Method {
	return v.methods[i]
}

// MethodName returns the name and descriptor of m.
func (v *View) MethodName(m Method) (name, desc []byte, err error) {
	if name, err = v.UTF8(int(m.NameIndex)); err != nil {
		return nil, nil, err
	}

	desc, err = v.UTF8(int(m.DescriptorIndex))

	return name, desc, err
}

// Code returns the instruction bytes of m, or nil when m has no code.
func (v *View) Code(m Method) []byte {
	if m.Code == nil {
		return nil
	}

	return v.data[m.Code.Start:m.Code.End:m.Code.End]
}

// FindRef returns the index of the first member reference with the given
// tag resolving to class.name:desc, or 0.
func (v *View) FindRef(tag Tag, class, name, desc string) int {
	for i := 1; i < len(v.offsets); i++ {
		if v.Tag(i) != tag {
			continue
		}

		if r, err := v.Ref(i); err == nil && r.Class == class && r.Name == name && r.Descriptor == desc {
			return i
		}
	}

	return 0
}

// FindMethod returns the method named name with descriptor desc.
func (v *View) FindMethod(name, desc string) (Method, bool) {
	for _, m := range v.methods {
		n, d, err := v.MethodName(m)
		if err == nil && string(n) == name && string(d) == desc {
			return m, true
		}
	}

	return Method{}, false
}
