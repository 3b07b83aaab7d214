package patch

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"class-migrator/internal/classfile"
)

// MaxSize is the largest class file Apply produces.
const MaxSize = math.MaxInt32

// Apply returns data with every patch of s applied. v must be the view of
// data. Neither data nor s is modified.
func Apply(data []byte, v *classfile.View, s Set) ([]byte, error) {
	return ApplyLimit(data, v, s, MaxSize)
}

// ApplyLimit is Apply with a smaller bound on the output size.
func ApplyLimit(data []byte, v *classfile.View, s Set, limit int64) ([]byte, error) {
	size := int64(len(data)) + s.Growth()
	if size > limit {
		return nil, &CapacityError{What: "class file", Size: size, Limit: limit}
	}

	if err := checkOrder(s.Strings); err != nil {
		return nil, fmt.Errorf("string patches: %w", err)
	}

	if err := checkOrder(s.Code); err != nil {
		return nil, fmt.Errorf("code patches: %w", err)
	}

	w := &writer{data: data, out: make([]byte, 0, size)}

	if len(s.Pool) > 0 {
		if s.PoolCount <= v.Count() || s.PoolCount > classfile.MaxPoolCount {
			return nil, &CapacityError{What: "constant pool", Size: int64(s.PoolCount), Limit: classfile.MaxPoolCount}
		}

		w.copyTo(classfile.PoolCountOffset)
		w.u16(uint16(s.PoolCount))
		w.pos += 2
	}

	for _, d := range s.Strings {
		if err := w.utf8(v, d, s.StringSource); err != nil {
			return nil, err
		}
	}

	if len(s.Pool) > 0 {
		w.copyTo(v.PoolEnd())
		w.out = append(w.out, s.Pool...)
	}

	for _, d := range s.Code {
		if err := w.code(v, d, s.CodeSource); err != nil {
			return nil, err
		}
	}

	w.copyTo(len(data))

	if int64(len(w.out)) != size {
		return nil, fmt.Errorf("output is %d bytes, expected %d: %w", len(w.out), size, ErrMismatch)
	}

	return w.out, nil
}

func checkOrder(ds []Descriptor) error {
	for i, d := range ds {
		if i > 0 && d.Target <= ds[i-1].Target {
			return fmt.Errorf("target %d after %d: %w", d.Target, ds[i-1].Target, ErrUnordered)
		}

		for j := 1; j < len(d.Edits); j++ {
			if d.Edits[j].Offset <= d.Edits[j-1].Offset {
				return fmt.Errorf("target %d: edit at %d after %d: %w",
					d.Target, d.Edits[j].Offset, d.Edits[j-1].Offset, ErrUnordered)
			}
		}
	}

	return nil
}

// writer copies data to out, remembering how far the input is consumed.
type writer struct {
	data []byte
	out  []byte
	pos  int
}

func (w *writer) copyTo(end int) {
	w.out = append(w.out, w.data[w.pos:end]...)
	w.pos = end
}

func (w *writer) u16(v uint16) {
	w.out = binary.BigEndian.AppendUint16(w.out, v)
}

func (w *writer) u32(v uint32) {
	w.out = binary.BigEndian.AppendUint32(w.out, v)
}

func (w *writer) utf8(v *classfile.View, d Descriptor, src Source) error {
	start, end, err := v.UTF8Span(d.Target)
	if err != nil {
		return fmt.Errorf("string patch: %w", err)
	}

	length := int64(end-start) + int64(d.Delta)
	if length < 0 || length > classfile.MaxUTF8Length {
		return &CapacityError{
			What:  fmt.Sprintf("UTF-8 constant %d", d.Target),
			Size:  length,
			Limit: classfile.MaxUTF8Length,
		}
	}

	w.copyTo(start - 2)
	w.u16(uint16(length))
	w.pos = start

	return w.splice(d, src, start, end)
}

func (w *writer) code(v *classfile.View, d Descriptor, src Source) error {
	if d.Target < 0 || d.Target >= len(v.Methods()) {
		return fmt.Errorf("code patch for method %d of %d: %w", d.Target, len(v.Methods()), ErrMismatch)
	}

	c := v.Method(d.Target).Code
	if c == nil {
		return fmt.Errorf("code patch for method %d without code: %w", d.Target, ErrMismatch)
	}

	length := int64(c.End-c.Start) + int64(d.Delta)
	if length <= 0 || length > classfile.MaxCodeLength {
		return &CapacityError{
			What:  fmt.Sprintf("code of method %d", d.Target),
			Size:  length,
			Limit: classfile.MaxCodeLength,
		}
	}

	attr := int64(v.U32(c.AttrLength())) + int64(d.Delta)
	if attr > math.MaxUint32 {
		return &CapacityError{What: fmt.Sprintf("Code attribute of method %d", d.Target), Size: attr, Limit: math.MaxUint32}
	}

	w.copyTo(c.AttrLength())
	w.u32(uint32(attr))
	w.pos += 4
	w.copyTo(c.CodeLength)
	w.u32(uint32(length))
	w.pos = c.Start

	return w.splice(d, src, c.Start, c.End)
}

// splice applies the edits of d to the region [start, end) of the input,
// which w has consumed up to start. The region tail is left to the next
// copy.
func (w *writer) splice(d Descriptor, src Source, start, end int) error {
	delta := 0

	for _, e := range d.Edits {
		from, to := src.From(e.Index), src.To(e.Index)
		off := start + e.Offset

		if e.Offset < 0 || off < w.pos || off+len(from) > end || !bytes.Equal(w.data[off:off+len(from)], from) {
			return fmt.Errorf("target %d: edit %d at offset %d: %w", d.Target, e.Index, e.Offset, ErrMismatch)
		}

		w.copyTo(off)
		w.out = append(w.out, to...)
		w.pos = off + len(from)
		delta += len(to) - len(from)
	}

	if delta != d.Delta {
		return fmt.Errorf("target %d: edits add %d bytes, descriptor says %d: %w", d.Target, delta, d.Delta, ErrMismatch)
	}

	return nil
}
