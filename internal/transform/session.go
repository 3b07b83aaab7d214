package transform

import (
	"math"
	"runtime"
	"strings"

	"github.com/emirpasic/gods/sets/hashset"
	"rsc.io/binaryregexp"

	"class-migrator/internal/classfile"
	"class-migrator/internal/diagnostic"
	"class-migrator/internal/helper"
	"class-migrator/internal/mapping"
)

// Options configures a Session.
type Options struct {
	// Helper is the simple name of synthesized helper classes.
	Helper string
	// Workers bounds TransformAll's concurrency.
	Workers int
	// TextExtensions lists the extensions of text resources, dot included.
	TextExtensions []string
	// MaxSize is the largest resource accepted and produced.
	MaxSize int64
}

// DefaultOptions returns the default session options.
func DefaultOptions() Options {
	return Options{
		Helper:         mapping.DefaultHelper,
		Workers:        runtime.NumCPU(),
		TextExtensions: append([]string(nil), mapping.DefaultTextExtensions...),
		MaxSize:        math.MaxInt32,
	}
}

// OptionsFromConfig returns the options set by a configuration file.
func OptionsFromConfig(c *mapping.Config) Options {
	opts := DefaultOptions()
	opts.Helper = c.Helper
	opts.Workers = c.Workers
	opts.TextExtensions = c.TextExtensions

	return opts
}

// Session is the state shared by the transforms of one run.
type Session struct {
	// table maps internal names and their dotted forms; classTable is the
	// same in modified UTF-8.
	table      *mapping.Table
	classTable *mapping.Table
	// slash renames resource paths, dotted renames service files. dotted is
	// nil when no mapping contains a path separator.
	slash  *mapping.Table
	dotted *mapping.Table

	text   *binaryregexp.Regexp
	textTo map[string][]byte
	// runtimeEntries are carried by synthesized helpers.
	runtimeEntries []mapping.Entry

	helper     string
	registry   *helper.Registry
	diags      diagnostic.Collector
	extensions *hashset.Set
	workers    int
	maxSize    int64
}

// NewSession prepares a session applying table, which must already be in
// the wanted direction. Deriving the dotted forms can break the table
// invariants, which is reported as a *mapping.ConfigurationError.
func NewSession(table *mapping.Table, opts Options) (*Session, error) {
	merged, err := table.WithDotted()
	if err != nil {
		return nil, err
	}

	classTable, err := encodeTable(merged)
	if err != nil {
		return nil, err
	}

	s := &Session{
		table:          merged,
		classTable:     classTable,
		slash:          table,
		runtimeEntries: merged.Entries(),
		helper:         opts.Helper,
		registry:       helper.NewRegistry(),
		extensions:     hashset.New(),
		workers:        opts.Workers,
		maxSize:        opts.MaxSize,
	}

	if s.helper == "" {
		s.helper = mapping.DefaultHelper
	}

	if s.workers <= 0 {
		s.workers = runtime.NumCPU()
	}

	if s.maxSize <= 0 || s.maxSize > math.MaxInt32 {
		s.maxSize = math.MaxInt32
	}

	if dotted := table.Dotted(); len(dotted) > 0 {
		if s.dotted, err = mapping.NewTable(dotted); err != nil {
			return nil, err
		}
	}

	for _, ext := range opts.TextExtensions {
		s.extensions.Add(strings.ToLower(ext))
	}

	s.compileText()

	return s, nil
}

// encodeTable returns t with every entry converted to modified UTF-8, or t
// itself when no entry needs converting.
func encodeTable(t *mapping.Table) (*mapping.Table, error) {
	entries := t.Entries()
	changed := false

	for i, e := range entries {
		from, to := classfile.EncodeModified(e.From), classfile.EncodeModified(e.To)
		if len(from) != len(e.From) || len(to) != len(e.To) {
			entries[i] = mapping.Entry{From: from, To: to}
			changed = true
		}
	}

	if !changed {
		return t, nil
	}

	return mapping.NewTable(entries)
}

func (s *Session) compileText() {
	alts := make([]string, s.table.Len())
	s.textTo = make(map[string][]byte, s.table.Len())

	for i := range alts {
		e := s.table.Entry(i)
		alts[i] = binaryregexp.QuoteMeta(string(e.From))
		s.textTo[string(e.From)] = e.To
	}

	s.text = binaryregexp.MustCompile(strings.Join(alts, "|"))
}

// Table returns the mapping table applied to class files, dotted forms
// included.
func (s *Session) Table() *mapping.Table {
	return s.table
}

// Warnings returns every warning raised so far.
func (s *Session) Warnings() diagnostic.Diagnostics {
	return s.diags.Snapshot()
}

// Helpers returns the names of the helper classes synthesized so far.
func (s *Session) Helpers() []string {
	return s.registry.Names()
}
