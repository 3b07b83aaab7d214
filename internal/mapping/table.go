package mapping

import (
	"bytes"
	"fmt"
)

// MaxEntries is the largest table size. Each entry may end up occupying its
// own constant-pool slot, and those are addressed by unsigned 16-bit indexes.
const MaxEntries = 65535

// Entry is a single literal replacement.
type Entry struct {
	From []byte
	To   []byte
}

// String returns "from -> to".
func (e Entry) String() string {
	return string(e.From) + " -> " + string(e.To)
}

// Table is a validated, immutable list of mapping entries.
type Table struct {
	entries []Entry
	// minimum is the length of the shortest From; no match can start closer
	// than this to the end of a scanned string.
	minimum int
}

// NewTable validates entries and builds a table from private copies of them.
// It fails with a *ConfigurationError listing every violated invariant.
func NewTable(entries []Entry) (*Table, error) {
	if diags := Validate(entries); diags.HasErrors() {
		return nil, &ConfigurationError{Diagnostics: *diags}
	}

	t := &Table{entries: make([]Entry, len(entries))}
	for i, e := range entries {
		t.entries[i] = Entry{From: bytes.Clone(e.From), To: bytes.Clone(e.To)}

		if i == 0 || len(e.From) < t.minimum {
			t.minimum = len(e.From)
		}
	}

	return t, nil
}

// FromStrings builds a table from alternating from, to arguments.
func FromStrings(pairs ...string) (*Table, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("%w: odd number of arguments to FromStrings", ErrConfiguration)
	}

	entries := make([]Entry, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		entries = append(entries, Entry{From: []byte(pairs[i]), To: []byte(pairs[i+1])})
	}

	return NewTable(entries)
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// Entry returns entry i. The returned slices are shared and must not be
// modified.
func (t *Table) Entry(i int) Entry {
	return t.entries[i]
}

// From returns the source bytes of entry i.
func (t *Table) From(i int) []byte {
	return t.entries[i].From
}

// To returns the replacement bytes of entry i.
func (t *Table) To(i int) []byte {
	return t.entries[i].To
}

// Entries returns a copy of the entry list. The byte slices are shared.
func (t *Table) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

// Minimum returns the length of the shortest From.
func (t *Table) Minimum() int {
	return t.minimum
}

// Match returns the index of the entry whose From occurs in b at pos.
// The no-substring invariant guarantees there is at most one.
func (t *Table) Match(b []byte, pos int) (int, bool) {
	rest := b[pos:]
	if len(rest) < t.minimum {
		return -1, false
	}

	for i, e := range t.entries {
		if bytes.HasPrefix(rest, e.From) {
			return i, true
		}
	}

	return -1, false
}

// Contains reports whether any From occurs in b.
func (t *Table) Contains(b []byte) bool {
	for pos := 0; pos+t.minimum <= len(b); pos++ {
		if _, ok := t.Match(b, pos); ok {
			return true
		}
	}

	return false
}

// Replace substitutes every non-overlapping occurrence, scanning left to
// right. It returns b itself when nothing matched.
func (t *Table) Replace(b []byte) []byte {
	var out []byte

	last := 0
	for pos := 0; pos+t.minimum <= len(b); {
		i, ok := t.Match(b, pos)
		if !ok {
			pos++
			continue
		}

		if out == nil {
			out = make([]byte, 0, len(b)+len(t.entries[i].To))
		}

		out = append(out, b[last:pos]...)
		out = append(out, t.entries[i].To...)
		pos += len(t.entries[i].From)
		last = pos
	}

	if out == nil {
		return b
	}

	return append(out, b[last:]...)
}

// ReplaceString is Replace for strings.
func (t *Table) ReplaceString(s string) string {
	return string(t.Replace([]byte(s)))
}

// Invert returns the table mapping every To back to its From. The reversed
// table is validated again: distinct sources may have overlapping targets.
func (t *Table) Invert() (*Table, error) {
	entries := make([]Entry, len(t.entries))
	for i, e := range t.entries {
		entries[i] = Entry{From: e.To, To: e.From}
	}

	return NewTable(entries)
}

// Dotted returns the dot-separated form of every entry whose From contains
// a path separator.
func (t *Table) Dotted() []Entry {
	var out []Entry

	for _, e := range t.entries {
		if bytes.IndexByte(e.From, '/') < 0 {
			continue
		}

		out = append(out, Entry{
			From: bytes.ReplaceAll(e.From, []byte("/"), []byte(".")),
			To:   bytes.ReplaceAll(e.To, []byte("/"), []byte(".")),
		})
	}

	return out
}

// WithDotted returns a table holding the entries of t followed by their
// dotted forms.
func (t *Table) WithDotted() (*Table, error) {
	return NewTable(append(t.Entries(), t.Dotted()...))
}
