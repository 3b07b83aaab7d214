// Package classfile indexes the structure of a Java class file without
// copying or decoding it.
//
// Parse makes one linear pass over the bytes and records where things are:
// the offset of every constant-pool entry, the offsets of every method and
// of the fields of its Code attribute. Nothing else is interpreted; unknown
// attributes are skipped by their declared length. The resulting View is
// read-only and is what the scanners and the patch applier work against.
//
// All reads go through Cursor, a bounds-checked reader over an immutable
// slice, so a truncated or inconsistent file surfaces as a *FormatError
// (matching ErrMalformedFormat) rather than a panic.
//
// The package also carries the instruction catalogue used to step through
// method code (Opcode, Kind, Walk) and PoolBuilder, which encodes new
// constant-pool entries either for a fresh class or for a tail appended to
// an existing pool.
package classfile
