package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassNames(t *testing.T) {
	tests := []struct {
		name   string
		pkg    string
		simple string
	}{
		{"a/b/C", "a/b", "C"},
		{"C", "", "C"},
		{"jakarta/persistence/Entity", "jakarta/persistence", "Entity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.pkg, PackageOf(tt.name))
			assert.Equal(t, tt.simple, SimpleName(tt.name))
			assert.Equal(t, tt.name, ClassName(tt.pkg, tt.simple))
		})
	}

	assert.Equal(t, "a/b/C.class", ClassResource("a/b/C"))
}
