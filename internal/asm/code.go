package asm

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"class-migrator/internal/classfile"
)

// fixup is a branch offset to fill in once every label is known.
type fixup struct {
	// at is the offset of the operand in the code array.
	at    int
	pc    int
	label string
	wide  bool
	line  int
}

type codeBuilder struct {
	code   []byte
	labels map[string]int
	fixups []fixup
	line   int
}

func (a *assembler) code(src string) ([]byte, map[string]int, error) {
	b := &codeBuilder{labels: map[string]int{}}

	for n, raw := range strings.Split(src, "\n") {
		b.line = n + 1

		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if label, ok := strings.CutSuffix(line, ":"); ok && !strings.ContainsAny(label, " \t") {
			if _, dup := b.labels[label]; dup {
				return nil, nil, b.errorf("duplicate label %q", label)
			}

			b.labels[label] = len(b.code)

			continue
		}

		if err := a.instruction(b, line); err != nil {
			return nil, nil, err
		}
	}

	for _, f := range b.fixups {
		target, ok := b.labels[f.label]
		if !ok {
			return nil, nil, fmt.Errorf("line %d: unknown label %q", f.line, f.label)
		}

		off := target - f.pc
		if f.wide {
			binary.BigEndian.PutUint32(b.code[f.at:], uint32(int32(off)))

			continue
		}

		if off < math.MinInt16 || off > math.MaxInt16 {
			return nil, nil, fmt.Errorf("line %d: branch to %q out of range", f.line, f.label)
		}

		binary.BigEndian.PutUint16(b.code[f.at:], uint16(int16(off)))
	}

	if len(b.code) == 0 || len(b.code) > classfile.MaxCodeLength {
		return nil, nil, fmt.Errorf("code length %d out of range", len(b.code))
	}

	return b.code, b.labels, nil
}

func (b *codeBuilder) errorf(format string, args ...any) error {
	return fmt.Errorf("line %d: %s", b.line, fmt.Sprintf(format, args...))
}

func (b *codeBuilder) u8(v int) {
	b.code = append(b.code, byte(v))
}

func (b *codeBuilder) u16(v uint16) {
	b.code = binary.BigEndian.AppendUint16(b.code, v)
}

func (b *codeBuilder) u32(v uint32) {
	b.code = binary.BigEndian.AppendUint32(b.code, v)
}

// branch emits a placeholder offset relative to pc.
func (b *codeBuilder) branch(pc int, label string, wide bool) {
	b.fixups = append(b.fixups, fixup{at: len(b.code), pc: pc, label: label, wide: wide, line: b.line})

	if wide {
		b.u32(0)
	} else {
		b.u16(0)
	}
}

func (a *assembler) instruction(b *codeBuilder, line string) error {
	fields := strings.Fields(line)
	mnemonic, args := fields[0], fields[1:]

	op, ok := classfile.LookupOpcode(mnemonic)
	if !ok {
		return b.errorf("unknown instruction %q", mnemonic)
	}

	pc := len(b.code)
	kind := op.Kind()

	if n := wantArgs(kind); n >= 0 && len(args) != n && kind != classfile.KindLoadConst && kind != classfile.KindLoadConstWide {
		return b.errorf("%s takes %d operands, got %d", op, n, len(args))
	}

	b.u8(int(op))

	switch kind {
	case classfile.KindNone:
	case classfile.KindLocal:
		v, err := number(args[0], 0, math.MaxUint8)
		if err != nil {
			return b.errorf("%s: %v", op, err)
		}

		b.u8(v)
	case classfile.KindByte:
		v, err := byteOperand(op, args[0])
		if err != nil {
			return b.errorf("%s: %v", op, err)
		}

		b.u8(v)
	case classfile.KindShort:
		v, err := number(args[0], math.MinInt16, math.MaxInt16)
		if err != nil {
			return b.errorf("%s: %v", op, err)
		}

		b.u16(uint16(int16(v)))
	case classfile.KindLoadConst, classfile.KindLoadConstWide:
		return a.loadConst(b, op, strings.TrimSpace(strings.TrimPrefix(line, mnemonic)))
	case classfile.KindField:
		idx, err := a.fieldRef(args[0])
		if err != nil {
			return b.errorf("%s: %v", op, err)
		}

		b.u16(idx)
	case classfile.KindInvoke:
		idx, _, err := a.methodRef(classfile.TagMethodref, args[0])
		if err != nil {
			return b.errorf("%s: %v", op, err)
		}

		b.u16(idx)
	case classfile.KindInvokeInterface:
		idx, desc, err := a.methodRef(classfile.TagInterfaceMethodref, args[0])
		if err != nil {
			return b.errorf("%s: %v", op, err)
		}

		slots, err := classfile.ArgSlots(desc)
		if err != nil {
			return b.errorf("%s: %v", op, err)
		}

		b.u16(idx)
		b.u8(slots + 1)
		b.u8(0)
	case classfile.KindType:
		idx, err := a.pool.ClassNamed(args[0])
		if err != nil {
			return b.errorf("%s: %v", op, err)
		}

		b.u16(idx)
	case classfile.KindMultiArray:
		idx, err := a.pool.ClassNamed(args[0])
		if err != nil {
			return b.errorf("%s: %v", op, err)
		}

		dims, err := number(args[1], 1, math.MaxUint8)
		if err != nil {
			return b.errorf("%s: %v", op, err)
		}

		b.u16(idx)
		b.u8(dims)
	case classfile.KindBranch:
		b.branch(pc, args[0], false)
	case classfile.KindBranchWide:
		b.branch(pc, args[0], true)
	case classfile.KindIinc:
		local, err := number(args[0], 0, math.MaxUint8)
		if err != nil {
			return b.errorf("%s: %v", op, err)
		}

		inc, err := number(args[1], math.MinInt8, math.MaxInt8)
		if err != nil {
			return b.errorf("%s: %v", op, err)
		}

		b.u8(local)
		b.u8(inc)
	case classfile.KindSwitch:
		return b.switchTable(op, pc, args)
	case classfile.KindWide:
		return b.wide(args)
	default:
		return b.errorf("%s is not supported", op)
	}

	return nil
}

// wantArgs returns the operand count of kind, or -1 when it varies.
func wantArgs(kind classfile.Kind) int {
	switch kind {
	case classfile.KindNone:
		return 0
	case classfile.KindMultiArray, classfile.KindIinc:
		return 2
	case classfile.KindSwitch, classfile.KindWide, classfile.KindInvokeDynamic:
		return -1
	default:
		return 1
	}
}

func (b *codeBuilder) switchTable(op classfile.Opcode, pc int, args []string) error {
	if len(args) < 1 {
		return b.errorf("%s needs a default label", op)
	}

	for len(b.code)%4 != 0 {
		b.u8(0)
	}

	if op == classfile.Tableswitch {
		if len(args) < 3 {
			return b.errorf("tableswitch needs low, default and at least one label")
		}

		low, err := number(args[0], math.MinInt32, math.MaxInt32)
		if err != nil {
			return b.errorf("tableswitch: %v", err)
		}

		b.branch(pc, args[1], true)
		b.u32(uint32(int32(low)))
		b.u32(uint32(int32(low + len(args) - 3)))

		for _, l := range args[2:] {
			b.branch(pc, l, true)
		}

		return nil
	}

	b.branch(pc, args[0], true)
	b.u32(uint32(len(args) - 1))

	prev := int64(math.MinInt64)

	for _, pair := range args[1:] {
		key, label, ok := strings.Cut(pair, ":")
		if !ok {
			return b.errorf("lookupswitch pair %q is not key:label", pair)
		}

		k, err := number(key, math.MinInt32, math.MaxInt32)
		if err != nil {
			return b.errorf("lookupswitch: %v", err)
		}

		if int64(k) <= prev {
			return b.errorf("lookupswitch keys must ascend")
		}

		prev = int64(k)

		b.u32(uint32(int32(k)))
		b.branch(pc, label, true)
	}

	return nil
}

func (b *codeBuilder) wide(args []string) error {
	if len(args) < 2 {
		return b.errorf("wide needs an instruction and a local")
	}

	op, ok := classfile.LookupOpcode(args[0])
	if !ok || (op != classfile.Iinc && op.Kind() != classfile.KindLocal) {
		return b.errorf("wide cannot modify %q", args[0])
	}

	local, err := number(args[1], 0, math.MaxUint16)
	if err != nil {
		return b.errorf("wide: %v", err)
	}

	b.u8(int(op))
	b.u16(uint16(local))

	if op != classfile.Iinc {
		if len(args) != 2 {
			return b.errorf("wide %s takes one operand", op)
		}

		return nil
	}

	if len(args) != 3 {
		return b.errorf("wide iinc takes two operands")
	}

	inc, err := number(args[2], math.MinInt16, math.MaxInt16)
	if err != nil {
		return b.errorf("wide: %v", err)
	}

	b.u16(uint16(int16(inc)))

	return nil
}

var arrayTypes = map[string]int{
	"boolean": 4, "char": 5, "float": 6, "double": 7,
	"byte": 8, "short": 9, "int": 10, "long": 11,
}

func byteOperand(op classfile.Opcode, arg string) (int, error) {
	if op == classfile.Newarray {
		if t, ok := arrayTypes[arg]; ok {
			return t, nil
		}

		return number(arg, 4, 11)
	}

	return number(arg, math.MinInt8, math.MaxInt8)
}

func number(s string, lo, hi int) (int, error) {
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", s)
	}

	if v < int64(lo) || v > int64(hi) {
		return 0, fmt.Errorf("%d out of range [%d, %d]", v, lo, hi)
	}

	return int(v), nil
}

func (a *assembler) loadConst(b *codeBuilder, op classfile.Opcode, operand string) error {
	if operand == "" {
		return b.errorf("%s needs a constant", op)
	}

	isLong := strings.HasPrefix(operand, "long:")
	if isLong != (op == classfile.Ldc2W) {
		return b.errorf("%s cannot load %q", op, operand)
	}

	idx, err := a.constant(operand)
	if err != nil {
		return b.errorf("%s: %v", op, err)
	}

	if op == classfile.Ldc {
		if idx > math.MaxUint8 {
			return b.errorf("ldc constant index %d out of range, use ldc_w", idx)
		}

		b.u8(int(idx))

		return nil
	}

	b.u16(idx)

	return nil
}

var refKinds = map[string]uint8{
	"getfield":         classfile.RefGetField,
	"getstatic":        classfile.RefGetStatic,
	"putfield":         classfile.RefPutField,
	"putstatic":        classfile.RefPutStatic,
	"invokevirtual":    classfile.RefInvokeVirtual,
	"invokestatic":     classfile.RefInvokeStatic,
	"invokespecial":    classfile.RefInvokeSpecial,
	"newinvokespecial": classfile.RefNewInvokeSpecial,
	"invokeinterface":  classfile.RefInvokeInterface,
}

// constant adds the constant written as kind:value and returns its index.
func (a *assembler) constant(s string) (uint16, error) {
	kind, value, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("constant %q has no kind prefix", s)
	}

	switch kind {
	case "utf8":
		return a.pool.UTF8([]byte(value))
	case "string":
		return a.pool.StringNamed(value)
	case "class":
		return a.pool.ClassNamed(value)
	case "int":
		v, err := number(value, math.MinInt32, math.MaxInt32)
		if err != nil {
			return 0, err
		}

		return a.pool.Integer(int32(v))
	case "long":
		v, err := strconv.ParseInt(value, 0, 64)
		if err != nil {
			return 0, fmt.Errorf("bad number %q", value)
		}

		return a.pool.Long(v)
	case "methodtype":
		desc, err := a.pool.UTF8([]byte(value))
		if err != nil {
			return 0, err
		}

		return a.pool.MethodType(desc)
	case "handle":
		return a.handle(value)
	default:
		return 0, fmt.Errorf("unknown constant kind %q", kind)
	}
}

func (a *assembler) handle(s string) (uint16, error) {
	name, ref, ok := strings.Cut(s, ":")
	kind, known := refKinds[name]

	if !ok || !known {
		return 0, fmt.Errorf("method handle %q is not KIND:REF", s)
	}

	var (
		idx uint16
		err error
	)

	switch kind {
	case classfile.RefGetField, classfile.RefGetStatic, classfile.RefPutField, classfile.RefPutStatic:
		idx, err = a.fieldRef(ref)
	case classfile.RefInvokeInterface:
		idx, _, err = a.methodRef(classfile.TagInterfaceMethodref, ref)
	default:
		idx, _, err = a.methodRef(classfile.TagMethodref, ref)
	}

	if err != nil {
		return 0, err
	}

	return a.pool.MethodHandle(kind, idx)
}

// methodRef adds owner.name(desc) and returns its index and descriptor.
func (a *assembler) methodRef(tag classfile.Tag, s string) (uint16, string, error) {
	paren := strings.IndexByte(s, '(')
	if paren < 0 {
		return 0, "", fmt.Errorf("method reference %q has no descriptor", s)
	}

	owner, name, ok := splitMember(s[:paren])
	if !ok {
		return 0, "", fmt.Errorf("method reference %q is not owner.name(desc)", s)
	}

	class, err := a.pool.ClassNamed(owner)
	if err != nil {
		return 0, "", err
	}

	idx, err := a.pool.MemberNamed(tag, class, name, s[paren:])

	return idx, s[paren:], err
}

// fieldRef adds owner.name:desc.
func (a *assembler) fieldRef(s string) (uint16, error) {
	head, desc, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("field reference %q is not owner.name:desc", s)
	}

	owner, name, ok := splitMember(head)
	if !ok {
		return 0, fmt.Errorf("field reference %q is not owner.name:desc", s)
	}

	class, err := a.pool.ClassNamed(owner)
	if err != nil {
		return 0, err
	}

	return a.pool.MemberNamed(classfile.TagFieldref, class, name, desc)
}

func splitMember(s string) (owner, name string, ok bool) {
	i := strings.LastIndexByte(s, '.')
	if i <= 0 || i == len(s)-1 {
		return "", "", false
	}

	return s[:i], s[i+1:], true
}
