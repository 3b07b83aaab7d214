package asm

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"class-migrator/internal/classfile"
)

// Assemble serializes c.
func Assemble(c *Class) ([]byte, error) {
	a := &assembler{pool: classfile.NewPoolBuilder(1)}

	return a.class(c)
}

type assembler struct {
	pool *classfile.PoolBuilder
}

// member is a serialized field_info or method_info minus its header.
type member struct {
	access uint16
	name   uint16
	desc   uint16
	attrs  [][]byte
}

func (a *assembler) class(c *Class) ([]byte, error) {
	major, super := c.Major, c.Super
	if major == 0 {
		major = DefaultMajor
	}

	if super == "" {
		super = DefaultSuper
	}

	this, err := a.pool.ClassNamed(c.Name)
	if err != nil {
		return nil, err
	}

	superIdx, err := a.pool.ClassNamed(super)
	if err != nil {
		return nil, err
	}

	interfaces := make([]uint16, 0, len(c.Interfaces))
	for _, name := range c.Interfaces {
		idx, err := a.pool.ClassNamed(name)
		if err != nil {
			return nil, err
		}

		interfaces = append(interfaces, idx)
	}

	for _, k := range c.Constants {
		if _, err := a.constant(k); err != nil {
			return nil, fmt.Errorf("constant %q: %w", k, err)
		}
	}

	fields := make([]member, 0, len(c.Fields))
	for _, f := range c.Fields {
		m, err := a.member(f.Access, f.Name, f.Descriptor, f.Attributes)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}

		fields = append(fields, m)
	}

	methods := make([]member, 0, len(c.Methods))
	for _, md := range c.Methods {
		m, err := a.method(md)
		if err != nil {
			return nil, fmt.Errorf("method %s%s: %w", md.Name, md.Descriptor, err)
		}

		methods = append(methods, m)
	}

	attrs, err := a.attributes(c.Attributes)
	if err != nil {
		return nil, err
	}

	if c.SourceFile != "" {
		name, err := a.pool.UTF8([]byte("SourceFile"))
		if err != nil {
			return nil, err
		}

		file, err := a.pool.UTF8([]byte(c.SourceFile))
		if err != nil {
			return nil, err
		}

		attrs = append(attrs, attribute(name, binary.BigEndian.AppendUint16(nil, file)))
	}

	out := binary.BigEndian.AppendUint32(nil, classfile.Magic)
	out = binary.BigEndian.AppendUint16(out, c.Minor)
	out = binary.BigEndian.AppendUint16(out, major)
	out = binary.BigEndian.AppendUint16(out, uint16(a.pool.Count()))
	out = append(out, a.pool.Bytes()...)
	out = binary.BigEndian.AppendUint16(out, c.Access)
	out = binary.BigEndian.AppendUint16(out, this)
	out = binary.BigEndian.AppendUint16(out, superIdx)
	out = binary.BigEndian.AppendUint16(out, uint16(len(interfaces)))

	for _, idx := range interfaces {
		out = binary.BigEndian.AppendUint16(out, idx)
	}

	out = appendMembers(out, fields)
	out = appendMembers(out, methods)
	out = appendAttributes(out, attrs)

	return out, nil
}

func (a *assembler) member(access uint16, name, desc string, raw []Attribute) (member, error) {
	m := member{access: access}

	var err error
	if m.name, err = a.pool.UTF8([]byte(name)); err != nil {
		return m, err
	}

	if m.desc, err = a.pool.UTF8([]byte(desc)); err != nil {
		return m, err
	}

	m.attrs, err = a.attributes(raw)

	return m, err
}

func (a *assembler) method(md Method) (member, error) {
	m, err := a.member(md.Access, md.Name, md.Descriptor, md.Attributes)
	if err != nil || md.Code == "" {
		return m, err
	}

	name, err := a.pool.UTF8([]byte("Code"))
	if err != nil {
		return m, err
	}

	code, labels, err := a.code(md.Code)
	if err != nil {
		return m, err
	}

	body := binary.BigEndian.AppendUint16(nil, md.MaxStack)
	body = binary.BigEndian.AppendUint16(body, md.MaxLocals)
	body = binary.BigEndian.AppendUint32(body, uint32(len(code)))
	body = append(body, code...)
	body = binary.BigEndian.AppendUint16(body, uint16(len(md.Exceptions)))

	for _, h := range md.Exceptions {
		var pcs [3]uint16

		for i, l := range []string{h.Start, h.End, h.Handler} {
			pc, ok := labels[l]
			if !ok {
				return m, fmt.Errorf("exception handler: unknown label %q", l)
			}

			pcs[i] = uint16(pc)
		}

		var catch uint16
		if h.Type != "" {
			if catch, err = a.pool.ClassNamed(h.Type); err != nil {
				return m, err
			}
		}

		body = binary.BigEndian.AppendUint16(body, pcs[0])
		body = binary.BigEndian.AppendUint16(body, pcs[1])
		body = binary.BigEndian.AppendUint16(body, pcs[2])
		body = binary.BigEndian.AppendUint16(body, catch)
	}

	// Code attributes of their own are not supported.
	body = binary.BigEndian.AppendUint16(body, 0)

	m.attrs = append([][]byte{attribute(name, body)}, m.attrs...)

	return m, nil
}

func (a *assembler) attributes(raw []Attribute) ([][]byte, error) {
	out := make([][]byte, 0, len(raw))

	for _, r := range raw {
		body, err := hex.DecodeString(r.Hex)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", r.Name, err)
		}

		name, err := a.pool.UTF8([]byte(r.Name))
		if err != nil {
			return nil, err
		}

		out = append(out, attribute(name, body))
	}

	return out, nil
}

func attribute(name uint16, body []byte) []byte {
	out := binary.BigEndian.AppendUint16(nil, name)
	out = binary.BigEndian.AppendUint32(out, uint32(len(body)))

	return append(out, body...)
}

func appendMembers(out []byte, ms []member) []byte {
	out = binary.BigEndian.AppendUint16(out, uint16(len(ms)))

	for _, m := range ms {
		out = binary.BigEndian.AppendUint16(out, m.access)
		out = binary.BigEndian.AppendUint16(out, m.name)
		out = binary.BigEndian.AppendUint16(out, m.desc)
		out = appendAttributes(out, m.attrs)
	}

	return out
}

func appendAttributes(out []byte, attrs [][]byte) []byte {
	out = binary.BigEndian.AppendUint16(out, uint16(len(attrs)))
	for _, attr := range attrs {
		out = append(out, attr...)
	}

	return out
}
