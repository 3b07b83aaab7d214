package scan

import (
	"class-migrator/internal/classfile"
	"class-migrator/internal/mapping"
	"class-migrator/internal/patch"
)

// UTF8 returns one descriptor per UTF-8 constant of v that contains at least
// one From of t, in ascending pool index order. Edits refer to t by entry
// index, so t is the Source to apply them with.
func UTF8(v *classfile.View, t *mapping.Table) []patch.Descriptor {
	var out []patch.Descriptor

	for i := 1; i < v.Count(); i++ {
		if v.Tag(i) != classfile.TagUTF8 {
			continue
		}

		b, err := v.UTF8(i)
		if err != nil {
			continue
		}

		if d, ok := Bytes(b, t); ok {
			d.Target = i
			out = append(out, d)
		}
	}

	return out
}

// Bytes scans b left to right for non-overlapping occurrences of the
// entries of t. The returned descriptor has no target set.
func Bytes(b []byte, t *mapping.Table) (patch.Descriptor, bool) {
	var d patch.Descriptor

	for pos := 0; len(b)-pos >= t.Minimum(); {
		idx, ok := t.Match(b, pos)
		if !ok {
			pos++
			continue
		}

		d.Edits = append(d.Edits, patch.Edit{Index: idx, Offset: pos})
		d.Delta += len(t.To(idx)) - len(t.From(idx))
		pos += len(t.From(idx))
	}

	return d, len(d.Edits) > 0
}
