package helper

import (
	"encoding/binary"
	"fmt"

	"github.com/emirpasic/gods/sets/linkedhashset"

	"class-migrator/internal/classfile"
	"class-migrator/internal/common"
	"class-migrator/internal/mapping"
	"class-migrator/internal/patch"
	"class-migrator/internal/scan"
)

// Class is a synthesized helper.
type Class struct {
	// Name is the internal class name.
	Name  string
	Bytes []byte
	// Entries are the runtime mappings, duplicates removed.
	Entries []mapping.Entry
}

// Resource returns the resource path of the class.
func (c *Class) Resource() string {
	return common.ClassResource(c.Name)
}

// Synthesize builds the helper class name carrying entries.
func Synthesize(name string, entries []mapping.Entry) (*Class, error) {
	t, err := loadTemplate()
	if err != nil {
		return nil, err
	}

	return t.synthesize(name, entries)
}

func (t *template) synthesize(name string, entries []mapping.Entry) (*Class, error) {
	v := t.view
	set := patch.Set{}

	if name != TemplateName {
		rename, err := mapping.NewTable([]mapping.Entry{{From: []byte(TemplateName), To: []byte(name)}})
		if err != nil {
			return nil, fmt.Errorf("helper name %q: %w", name, err)
		}

		set.Strings = scan.UTF8(v, rename)
		set.StringSource = rename
	}

	entries = dedupe(entries)
	pool := classfile.NewPoolBuilder(v.Count())
	code := t.data[v.Method(t.clinit).Code.Start:][t.seed : t.seed+3]

	put, err := pool.MemberNamed(classfile.TagMethodref, v.ThisClass, putName, putDesc)
	if err != nil {
		return nil, fmt.Errorf("helper %s: %w", name, err)
	}

	splice := make([]byte, 0, len(code)+spliceLength*len(entries))
	splice = append(splice, code...)

	for _, e := range entries {
		from, err := pool.StringNamed(string(classfile.EncodeModified(e.From)))
		if err != nil {
			return nil, fmt.Errorf("helper %s: %w", name, err)
		}

		to, err := pool.StringNamed(string(classfile.EncodeModified(e.To)))
		if err != nil {
			return nil, fmt.Errorf("helper %s: %w", name, err)
		}

		splice = binary.BigEndian.AppendUint16(append(splice, byte(classfile.LdcW)), from)
		splice = binary.BigEndian.AppendUint16(append(splice, byte(classfile.LdcW)), to)
		splice = binary.BigEndian.AppendUint16(append(splice, byte(classfile.Invokestatic)), put)
	}

	if len(entries) > 0 {
		set.Pool = pool.Bytes()
		set.PoolCount = pool.Count()
		set.Code = []patch.Descriptor{{
			Target: t.clinit,
			Delta:  len(splice) - len(code),
			Edits:  []patch.Edit{{Index: 0, Offset: t.seed}},
		}}
		set.CodeSource = patch.Pairs{{Old: code, New: splice}}
	}

	data, err := patch.Apply(t.data, v, set)
	if err != nil {
		return nil, fmt.Errorf("helper %s: %w", name, err)
	}

	return &Class{Name: name, Bytes: data, Entries: entries}, nil
}

// dedupe drops repeated (from, to) pairs, keeping first occurrences in
// order.
func dedupe(entries []mapping.Entry) []mapping.Entry {
	keys := linkedhashset.New()
	byKey := make(map[string]mapping.Entry, len(entries))

	for _, e := range entries {
		key := string(e.From) + "\x00" + string(e.To)
		if _, ok := byKey[key]; !ok {
			byKey[key] = e
		}

		keys.Add(key)
	}

	out := make([]mapping.Entry, 0, keys.Size())
	for _, k := range keys.Values() {
		out = append(out, byKey[k.(string)])
	}

	return out
}
