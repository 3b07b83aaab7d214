package classfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpcodeCatalogue(t *testing.T) {
	tests := []struct {
		op   Opcode
		name string
		kind Kind
	}{
		{Nop, "nop", KindNone},
		{Ldc, "ldc", KindLoadConst},
		{LdcW, "ldc_w", KindLoadConstWide},
		{Invokestatic, "invokestatic", KindInvoke},
		{Invokeinterface, "invokeinterface", KindInvokeInterface},
		{Invokedynamic, "invokedynamic", KindInvokeDynamic},
		{Tableswitch, "tableswitch", KindSwitch},
		{Wide, "wide", KindWide},
		{GotoW, "goto_w", KindBranchWide},
		{Multianewarray, "multianewarray", KindMultiArray},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.op.String())
			assert.Equal(t, tt.kind, tt.op.Kind())

			op, ok := LookupOpcode(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.op, op)
		})
	}

	assert.Equal(t, KindInvalid, Opcode(0xca).Kind())
	assert.Equal(t, "opcode(0xca)", Opcode(0xca).String())

	_, ok := LookupOpcode("breakpoint")
	assert.False(t, ok)
}

func TestInstructionLength(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		pc   int
		want int
	}{
		{"return", []byte{0xb1}, 0, 1},
		{"invokeinterface", []byte{0xb9, 0, 1, 1, 0}, 0, 5},
		{"wide iload", []byte{0xc4, 0x15, 0x01, 0x00}, 0, 4},
		{"wide iinc", []byte{0xc4, 0x84, 0x01, 0x00, 0x00, 0x01}, 0, 6},
		{
			// pad of 3 after the opcode at pc 0
			name: "tableswitch at 0",
			code: []byte{
				0xaa, 0, 0, 0,
				0, 0, 0, 20, // default
				0, 0, 0, 1, // low
				0, 0, 0, 2, // high
				0, 0, 0, 20,
				0, 0, 0, 20,
			},
			want: 24,
		},
		{
			// no pad after the opcode at pc 3
			name: "lookupswitch at 3",
			code: []byte{
				0, 0, 0,
				0xab,
				0, 0, 0, 9, // default
				0, 0, 0, 1, // npairs
				0, 0, 0, 5, 0, 0, 0, 9,
			},
			pc:   3,
			want: 17,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InstructionLength(tt.code, tt.pc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInstructionLength_Malformed(t *testing.T) {
	tests := []struct {
		name string
		code []byte
	}{
		{"invalid opcode", []byte{0xcb}},
		{"wide of goto", []byte{0xc4, 0xa7, 0, 0}},
		{"truncated wide", []byte{0xc4}},
		{"truncated tableswitch", []byte{0xaa, 0, 0, 0, 0, 0}},
		{"inverted tableswitch", []byte{0xaa, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2, 0, 0, 0, 1}},
		{"negative lookupswitch", []byte{0xab, 0, 0, 0, 0, 0, 0, 0, 0xff, 0xff, 0xff, 0xff}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := InstructionLength(tt.code, 0)
			assert.ErrorIs(t, err, ErrMalformedFormat)
		})
	}
}

func TestWalk(t *testing.T) {
	// aload_0; ifnull +6; ldc 2; areturn; aconst_null; areturn
	code := []byte{0x2a, 0xc6, 0x00, 0x06, 0x12, 0x02, 0xb0, 0x01, 0xb0}

	var got []Instruction
	err := Walk(code, func(in Instruction) error {
		got = append(got, in)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []Instruction{
		{PC: 0, Op: Aload0, Len: 1},
		{PC: 1, Op: Ifnull, Len: 3},
		{PC: 4, Op: Ldc, Len: 2},
		{PC: 6, Op: Areturn, Len: 1},
		{PC: 7, Op: AconstNull, Len: 1},
		{PC: 8, Op: Areturn, Len: 1},
	}, got)
	assert.Equal(t, uint16(6), got[1].Operand(code))

	err = Walk([]byte{0xb8, 0x00}, func(Instruction) error { return nil })
	assert.ErrorIs(t, err, ErrMalformedFormat, "truncated invokestatic")
}
