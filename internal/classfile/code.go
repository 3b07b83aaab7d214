package classfile

import "encoding/binary"

// Instruction is one decoded instruction position.
type Instruction struct {
	PC  int
	Op  Opcode
	Len int
}

// Operand returns the u2 operand following the opcode.
func (in Instruction) Operand(code []byte) uint16 {
	return binary.BigEndian.Uint16(code[in.PC+1:])
}

// InstructionLength returns the length of the instruction at pc, opcode
// and operands included. Offsets in the returned error are relative to the
// start of code.
func InstructionLength(code []byte, pc int) (int, error) {
	op := Opcode(code[pc])

	switch kind := op.Kind(); kind {
	case KindInvalid:
		return 0, errorf(pc, "invalid opcode %#x", uint8(op))
	case KindSwitch:
		return switchLength(code, pc, op)
	case KindWide:
		if pc+1 >= len(code) {
			return 0, errorf(pc, "truncated wide instruction")
		}

		switch next := Opcode(code[pc+1]); {
		case next == Iinc:
			return 6, nil
		case next.Kind() == KindLocal:
			return 4, nil
		default:
			return 0, errorf(pc, "wide cannot modify %s", next)
		}
	default:
		return kind.Length(), nil
	}
}

func switchLength(code []byte, pc int, op Opcode) (int, error) {
	pad := (4 - (pc+1)%4) % 4
	base := pc + 1 + pad

	// default + low + high, or default + npairs
	head := 12
	if op == Lookupswitch {
		head = 8
	}

	if base+head > len(code) {
		return 0, errorf(pc, "truncated %s", op)
	}

	var entries int64

	if op == Tableswitch {
		low := int32(binary.BigEndian.Uint32(code[base+4:]))
		high := int32(binary.BigEndian.Uint32(code[base+8:]))

		if high < low {
			return 0, errorf(pc, "tableswitch high %d below low %d", high, low)
		}

		entries = 4 * (int64(high) - int64(low) + 1)
	} else {
		n := int32(binary.BigEndian.Uint32(code[base+4:]))
		if n < 0 {
			return 0, errorf(pc, "lookupswitch with %d pairs", n)
		}

		entries = 8 * int64(n)
	}

	total := int64(1+pad+head) + entries
	if int64(pc)+total > int64(len(code)) {
		return 0, errorf(pc, "truncated %s", op)
	}

	return int(total), nil
}

// Walk calls fn for each instruction of code in order. It stops at the
// first error returned by fn or found while decoding.
func Walk(code []byte, fn func(Instruction) error) error {
	for pc := 0; pc < len(code); {
		n, err := InstructionLength(code, pc)
		if err != nil {
			return err
		}

		if pc+n > len(code) {
			return errorf(pc, "truncated %s", Opcode(code[pc]))
		}

		if err := fn(Instruction{PC: pc, Op: Opcode(code[pc]), Len: n}); err != nil {
			return err
		}

		pc += n
	}

	return nil
}
