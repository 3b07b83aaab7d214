package patch

import "bytes"

// Edit replaces From(Index) at Offset with To(Index). Offset is relative to
// the start of the UTF-8 content or of the method code.
type Edit struct {
	Index  int
	Offset int
}

// Descriptor lists the edits of one target in ascending offset order.
type Descriptor struct {
	// Target is a constant-pool index for string patches and a method index
	// for code patches.
	Target int
	// Delta is the sum of len(To)-len(From) over all edits.
	Delta int
	Edits []Edit
}

// Source supplies the replacement pairs edits refer to.
type Source interface {
	From(i int) []byte
	To(i int) []byte
}

// Pair is a single replacement.
type Pair struct {
	Old []byte
	New []byte
}

// Pairs is a Source backed by a list of replacements.
type Pairs []Pair

// From returns the bytes replaced by pair i.
func (p Pairs) From(i int) []byte {
	return p[i].Old
}

// To returns the replacement bytes of pair i.
func (p Pairs) To(i int) []byte {
	return p[i].New
}

// Add returns the index of the pair old -> new, appending it when it is not
// present yet.
func (p *Pairs) Add(old, new []byte) int {
	for i, pair := range *p {
		if bytes.Equal(pair.Old, old) && bytes.Equal(pair.New, new) {
			return i
		}
	}

	*p = append(*p, Pair{Old: old, New: new})

	return len(*p) - 1
}

// Set is everything Apply writes into one class file.
type Set struct {
	// Strings are UTF-8 entry patches in ascending pool index order.
	Strings      []Descriptor
	StringSource Source
	// Code are method code patches in ascending method index order.
	Code       []Descriptor
	CodeSource Source
	// Pool holds serialized entries appended after the last pool entry and
	// PoolCount the resulting constant_pool_count.
	Pool      []byte
	PoolCount int
}

// Empty reports whether applying s would leave the input unchanged.
func (s *Set) Empty() bool {
	return len(s.Strings) == 0 && len(s.Code) == 0 && len(s.Pool) == 0
}

// Growth returns the number of bytes s adds to a class file.
func (s *Set) Growth() int64 {
	n := int64(len(s.Pool))
	for _, d := range s.Strings {
		n += int64(d.Delta)
	}

	for _, d := range s.Code {
		n += int64(d.Delta)
	}

	return n
}
