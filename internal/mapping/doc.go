// Package mapping provides the validated name mapping table that drives the
// class migrator, and the YAML configuration it is loaded from.
//
// A Table is an ordered list of (from, to) byte strings. Construction
// enforces the invariants every scanner relies on:
//
//   - the table is not empty and holds at most 65535 entries
//   - from and to are non-empty, differ, and contain no NUL byte
//   - no from is a substring of another from
//
// The last rule makes matching unambiguous: at any position of a scanned
// string at most one entry can match, so scanners never need longest-match
// logic and matches never overlap.
//
// Tables are immutable once built and may be shared by concurrent
// transforms.
//
// # Configuration file
//
//	version: "1"
//	invert: false            # apply the mappings to -> from
//	helper: MigrationHelper  # simple name of the synthesized helper class
//	workers: 8
//	text_extensions: [.xml, .properties]
//	mappings:
//	  - from: javax/persistence
//	    to: jakarta/persistence
//
// Mappings are written in internal (slash separated) form; the dotted form
// used by reflective names and service files is derived with Table.Dotted.
package mapping
