package classfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolBuilder(t *testing.T) {
	p := NewPoolBuilder(10)

	class, err := p.ClassNamed("a/B")
	require.NoError(t, err)
	assert.Equal(t, uint16(11), class)

	again, err := p.ClassNamed("a/B")
	require.NoError(t, err)
	assert.Equal(t, class, again, "identical entries are shared")

	long, err := p.Long(7)
	require.NoError(t, err)
	assert.Equal(t, uint16(12), long)

	ref, err := p.MemberNamed(TagMethodref, class, "run", "()V")
	require.NoError(t, err)
	// run, ()V, NameAndType, then the Methodref
	assert.Equal(t, uint16(17), ref)
	assert.Equal(t, 18, p.Count())

	assert.Equal(t, []byte{
		1, 0, 3, 'a', '/', 'B',
		7, 0, 10,
		5, 0, 0, 0, 0, 0, 0, 0, 7,
		1, 0, 3, 'r', 'u', 'n',
		1, 0, 3, '(', ')', 'V',
		12, 0, 14, 0, 15,
		10, 0, 11, 0, 16,
	}, p.Bytes())
	assert.Equal(t, len(p.Bytes()), p.Len())
}

func TestPoolBuilder_Capacity(t *testing.T) {
	p := NewPoolBuilder(MaxPoolCount - 1)

	_, err := p.Integer(1)
	require.NoError(t, err)

	_, err = p.Integer(2)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	p = NewPoolBuilder(MaxPoolCount - 1)
	_, err = p.Long(1)
	assert.ErrorIs(t, err, ErrCapacityExceeded, "a long needs two slots")

	_, err = NewPoolBuilder(1).UTF8(make([]byte, MaxUTF8Length+1))
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestArgSlots(t *testing.T) {
	tests := []struct {
		desc string
		want int
	}{
		{"()V", 0},
		{"(I)V", 1},
		{"(JD)V", 4},
		{"(Ljava/lang/String;ZLjava/lang/ClassLoader;)Ljava/lang/Class;", 3},
		{"([[I[Ljava/lang/Object;J)V", 4},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got, err := ArgSlots(tt.desc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "V", "(", "(Ljava/lang/String", "(Q)V", "([", "([I"} {
		_, err := ArgSlots(bad)
		assert.ErrorIs(t, err, ErrMalformedFormat, bad)
	}
}

func TestEncodeModified(t *testing.T) {
	ascii := []byte("javax/persistence")
	assert.Same(t, &ascii[0], &EncodeModified(ascii)[0], "unchanged input is returned as is")

	assert.Equal(t, []byte("caf\xc3\xa9"), EncodeModified([]byte("café")))
	assert.Equal(t, []byte{'a', 0xc0, 0x80, 'b'}, EncodeModified([]byte{'a', 0, 'b'}))
	// U+1F600 as a surrogate pair
	assert.Equal(t, []byte{0xed, 0xa0, 0xbd, 0xed, 0xb8, 0x80}, EncodeModified([]byte("\U0001F600")))
}
