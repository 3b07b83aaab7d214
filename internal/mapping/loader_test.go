package mapping

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	yaml := `
version: "1"
helper: JakartaBridge
workers: 3
text_extensions: [.XML, .properties]
mappings:
  - from: javax/persistence
    to: jakarta/persistence
  - from: javax/ws/rs
    to: jakarta/ws/rs
`

	c, err := Parse([]byte(yaml))
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.Equal(t, "1", c.Version)
	assert.Equal(t, "JakartaBridge", c.Helper)
	assert.Equal(t, 3, c.Workers)
	assert.False(t, c.Invert)
	assert.Equal(t, []string{".xml", ".properties"}, c.TextExtensions)
	require.Len(t, c.Mappings, 2)
	assert.Equal(t, Pair{From: "javax/ws/rs", To: "jakarta/ws/rs"}, c.Mappings[1])

	table, err := c.Table()
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "jakarta/persistence", string(table.To(0)))
}

func TestParseMinimal(t *testing.T) {
	yaml := `
mappings:
  - from: a/b
    to: c/d
`

	c, err := Parse([]byte(yaml))
	require.NoError(t, err)

	assert.Equal(t, "1", c.Version) // Default version
	assert.Equal(t, DefaultHelper, c.Helper)
	assert.Equal(t, runtime.NumCPU(), c.Workers)
	assert.Equal(t, DefaultTextExtensions, c.TextExtensions)
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("mappings: [from: x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse mapping YAML")
}

func TestConfigTable_Invert(t *testing.T) {
	yaml := `
invert: true
mappings:
  - from: javax/persistence
    to: jakarta/persistence
`

	c, err := Parse([]byte(yaml))
	require.NoError(t, err)

	table, err := c.Table()
	require.NoError(t, err)
	assert.Equal(t, "jakarta/persistence -> javax/persistence", table.Entry(0).String())
}

func TestConfigTable_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		codes []string
	}{
		{
			name: "unsupported version",
			yaml: `
version: "2"
mappings: [{from: a/b, to: c/d}]
`,
			codes: []string{"unsupported_version"},
		},
		{
			name: "helper with package",
			yaml: `
helper: com/acme/Helper
mappings: [{from: a/b, to: c/d}]
`,
			codes: []string{"invalid_helper_name"},
		},
		{
			name: "extension without dot",
			yaml: `
text_extensions: [xml]
mappings: [{from: a/b, to: c/d}]
`,
			codes: []string{"invalid_extension"},
		},
		{
			name:  "no mappings",
			yaml:  `version: "1"`,
			codes: []string{"empty_table"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)

			_, err = c.Table()
			require.ErrorIs(t, err, ErrConfiguration)

			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.codes, cfgErr.Codes())
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "migrate.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mappings: [{from: javax/el, to: jakarta/el}]\n"), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, c.Mappings, 1)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	out, err := Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(out), "from: javax/el")
}
