package mapping

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		pairs []string
		codes []string
	}{
		{
			name:  "empty",
			pairs: nil,
			codes: []string{"empty_table"},
		},
		{
			name:  "identity",
			pairs: []string{"javax/persistence", "javax/persistence"},
			codes: []string{"identity_mapping"},
		},
		{
			name:  "empty from",
			pairs: []string{"", "jakarta"},
			codes: []string{"empty_from"},
		},
		{
			name:  "empty to",
			pairs: []string{"javax", ""},
			codes: []string{"empty_to"},
		},
		{
			name:  "substring",
			pairs: []string{"javax/", "jakarta/", "javax/persistence/", "jakarta/persistence/"},
			codes: []string{"overlapping_from"},
		},
		{
			name:  "substring in the middle",
			pairs: []string{"x/persist", "y/persist", "javax/persistence", "jakarta/persistence"},
			codes: []string{"overlapping_from"},
		},
		{
			name:  "duplicate",
			pairs: []string{"javax/ws", "jakarta/ws", "javax/ws", "jakarta/rs"},
			codes: []string{"duplicate_from"},
		},
		{
			name:  "nul byte",
			pairs: []string{"javax\x00", "jakarta"},
			codes: []string{"nul_byte"},
		},
		{
			name:  "every problem is reported",
			pairs: []string{"a/b", "a/b", "c", ""},
			codes: []string{"identity_mapping", "empty_to"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := FromStrings(tt.pairs...)
			require.Error(t, err)
			assert.Nil(t, table)
			require.ErrorIs(t, err, ErrConfiguration)

			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.codes, cfgErr.Codes())
		})
	}
}

func TestNewTable_Size(t *testing.T) {
	entries := make([]Entry, MaxEntries)
	for i := range entries {
		entries[i] = Entry{From: fmt.Appendf(nil, "p%05d/", i), To: fmt.Appendf(nil, "q%05d/", i)}
	}

	table, err := NewTable(entries)
	require.NoError(t, err)
	assert.Equal(t, MaxEntries, table.Len())

	entries = append(entries, Entry{From: []byte("extra/"), To: []byte("other/")})

	_, err = NewTable(entries)
	require.ErrorIs(t, err, ErrConfiguration)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{"table_too_large"}, cfgErr.Codes())
}

func TestNewTable_CopiesInput(t *testing.T) {
	from := []byte("javax/")
	table, err := NewTable([]Entry{{From: from, To: []byte("jakarta/")}})
	require.NoError(t, err)

	from[0] = 'X'
	assert.Equal(t, "javax/", string(table.From(0)))
}

func TestTable_Minimum(t *testing.T) {
	table, err := FromStrings("javax/persistence", "jakarta/persistence", "javax/ws", "jakarta/ws")
	require.NoError(t, err)

	assert.Equal(t, len("javax/ws"), table.Minimum())
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "javax/ws -> jakarta/ws", table.Entry(1).String())
}

func TestTable_Replace(t *testing.T) {
	table, err := FromStrings("javax/persistence", "jakarta/persistence", "javax/ws/rs", "jakarta/ws/rs")
	require.NoError(t, err)

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"javax", "javax"},
		{"Ljavax/persistence/Entity;", "Ljakarta/persistence/Entity;"},
		{"(Ljavax/ws/rs/core/Response;Ljavax/persistence/Id;)V", "(Ljakarta/ws/rs/core/Response;Ljakarta/persistence/Id;)V"},
		{"javax/persistencejavax/persistence", "jakarta/persistencejakarta/persistence"},
		{"javax/servlet/Filter", "javax/servlet/Filter"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, table.ReplaceString(tt.in))
			assert.Equal(t, tt.in != tt.want, table.Contains([]byte(tt.in)))
		})
	}
}

func TestTable_ReplaceReturnsInputWhenUnchanged(t *testing.T) {
	table, err := FromStrings("javax/", "jakarta/")
	require.NoError(t, err)

	in := []byte("java/lang/String")
	out := table.Replace(in)
	assert.Same(t, &in[0], &out[0])
}

func TestTable_Match(t *testing.T) {
	table, err := FromStrings("javax/persistence", "jakarta/persistence", "javax/ws", "jakarta/ws")
	require.NoError(t, err)

	b := []byte("Ljavax/ws/rs;")

	i, ok := table.Match(b, 1)
	require.True(t, ok)
	assert.Equal(t, 1, i)

	_, ok = table.Match(b, 0)
	assert.False(t, ok)

	_, ok = table.Match(b, len(b)-3)
	assert.False(t, ok)
}

func TestTable_Invert(t *testing.T) {
	table, err := FromStrings("javax/persistence", "jakarta/persistence")
	require.NoError(t, err)

	inv, err := table.Invert()
	require.NoError(t, err)
	assert.Equal(t, "jakarta/persistence", string(inv.From(0)))
	assert.Equal(t, "javax/persistence", string(inv.To(0)))
	assert.Equal(t, "Ljavax/persistence/Id;", inv.ReplaceString("Ljakarta/persistence/Id;"))

	// Distinct sources, overlapping targets: fine forward, invalid inverted.
	table, err = FromStrings("old/a", "new/x", "old/b", "new/xy")
	require.NoError(t, err)

	_, err = table.Invert()
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestTable_Dotted(t *testing.T) {
	table, err := FromStrings("javax/persistence", "jakarta/persistence", "javax", "jakartaee")
	require.Error(t, err, "javax is a substring of javax/persistence")

	table, err = FromStrings("javax/persistence", "jakarta/persistence", "JAVAX", "JAKARTA")
	require.NoError(t, err)

	dotted := table.Dotted()
	require.Len(t, dotted, 1)
	assert.Equal(t, "javax.persistence -> jakarta.persistence", dotted[0].String())

	both, err := table.WithDotted()
	require.NoError(t, err)
	assert.Equal(t, 3, both.Len())
	assert.Equal(t, "jakarta.persistence.Entity", both.ReplaceString("javax.persistence.Entity"))
	assert.Equal(t, "jakarta/persistence/Entity", both.ReplaceString("javax/persistence/Entity"))
}
