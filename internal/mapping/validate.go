package mapping

import (
	"bytes"
	"fmt"
	"slices"

	"class-migrator/internal/diagnostic"
)

// Validate checks a list of entries against the table invariants and reports
// every violation found.
func Validate(entries []Entry) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}

	if len(entries) == 0 {
		res.AddError("empty_table", "mapping table has no entries", "", "")
		return res
	}

	if len(entries) > MaxEntries {
		res.AddError("table_too_large",
			fmt.Sprintf("mapping table has %d entries, limit is %d", len(entries), MaxEntries), "", "")
		return res
	}

	for i, e := range entries {
		subject := entrySubject(i)

		switch {
		case len(e.From) == 0:
			res.AddError("empty_from", "mapping source is empty", subject, e.String())
		case len(e.To) == 0:
			res.AddError("empty_to", "mapping target is empty", subject, e.String())
		case bytes.Equal(e.From, e.To):
			res.AddError("identity_mapping", fmt.Sprintf("%q is mapped to itself", e.From), subject, "")
		}

		if bytes.IndexByte(e.From, 0) >= 0 || bytes.IndexByte(e.To, 0) >= 0 {
			res.AddError("nul_byte", "mapping contains a NUL byte", subject, e.String())
		}
	}

	validateOverlaps(res, entries)

	return res
}

// validateOverlaps rejects duplicate sources and sources contained in other
// sources. Only substrings whose length is the length of some source are
// probed, which keeps large tables tractable.
func validateOverlaps(res *diagnostic.Diagnostics, entries []Entry) {
	index := make(map[string]int, len(entries))

	var lengths []int

	for i, e := range entries {
		if len(e.From) == 0 {
			continue
		}

		key := string(e.From)
		if first, dup := index[key]; dup {
			res.AddError("duplicate_from", fmt.Sprintf("%q is mapped more than once", e.From),
				entrySubject(i), "first defined by "+entrySubject(first))

			continue
		}

		index[key] = i

		if !slices.Contains(lengths, len(e.From)) {
			lengths = append(lengths, len(e.From))
		}
	}

	slices.Sort(lengths)

	for i, e := range entries {
		from := e.From

	probe:
		for _, n := range lengths {
			if n >= len(from) {
				break
			}

			for p := 0; p+n <= len(from); p++ {
				j, ok := index[string(from[p:p+n])]
				if !ok || j == i {
					continue
				}

				res.AddError("overlapping_from",
					fmt.Sprintf("%q contains %q", from, entries[j].From),
					entrySubject(i), "overlaps "+entrySubject(j))

				break probe
			}
		}
	}
}

func entrySubject(i int) string {
	return fmt.Sprintf("entry %d", i)
}
