package classfile

import "fmt"

// ArgSlots returns the number of operand-stack slots taken by the
// arguments of method descriptor desc. Long and double take two.
func ArgSlots(desc string) (int, error) {
	if len(desc) == 0 || desc[0] != '(' {
		return 0, fmt.Errorf("method descriptor %q: %w", desc, ErrMalformedFormat)
	}

	slots := 0

	for i := 1; i < len(desc); {
		switch desc[i] {
		case ')':
			return slots, nil
		case 'J', 'D':
			slots += 2
			i++
		case 'B', 'C', 'F', 'I', 'S', 'Z':
			slots++
			i++
		case 'L':
			end := i
			for end < len(desc) && desc[end] != ';' {
				end++
			}

			if end == len(desc) {
				return 0, fmt.Errorf("method descriptor %q: %w", desc, ErrMalformedFormat)
			}

			slots++
			i = end + 1
		case '[':
			for i < len(desc) && desc[i] == '[' {
				i++
			}

			if i < len(desc) && desc[i] != 'L' {
				i++
				slots++

				continue
			}

			end := i
			for end < len(desc) && desc[end] != ';' {
				end++
			}

			if end == len(desc) {
				return 0, fmt.Errorf("method descriptor %q: %w", desc, ErrMalformedFormat)
			}

			slots++
			i = end + 1
		default:
			return 0, fmt.Errorf("method descriptor %q: %w", desc, ErrMalformedFormat)
		}
	}

	return 0, fmt.Errorf("method descriptor %q: %w", desc, ErrMalformedFormat)
}
