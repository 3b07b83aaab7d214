package classfile

import "unicode/utf8"

// EncodeModified converts standard UTF-8 to the modified UTF-8 stored in
// UTF-8 constants: NUL becomes 0xC0 0x80 and supplementary characters become
// surrogate pairs of three bytes each. It returns b itself when no
// conversion is needed. Invalid sequences are copied unchanged.
func EncodeModified(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] != 0 && b[i] < 0xF0 {
		i++
	}

	if i == len(b) {
		return b
	}

	out := make([]byte, 0, len(b)+len(b)/2)
	out = append(out, b[:i]...)

	for i < len(b) {
		c := b[i]

		switch {
		case c == 0:
			out = append(out, 0xC0, 0x80)
			i++
		case c >= 0xF0:
			r, n := utf8.DecodeRune(b[i:])
			if r == utf8.RuneError && n <= 1 {
				out = append(out, c)
				i++

				continue
			}

			r -= 0x10000
			out = appendSurrogate(out, 0xD800+(r>>10))
			out = appendSurrogate(out, 0xDC00+(r&0x3FF))
			i += n
		default:
			out = append(out, c)
			i++
		}
	}

	return out
}

func appendSurrogate(out []byte, r rune) []byte {
	return append(out, 0xE0|byte(r>>12), 0x80|byte(r>>6)&0x3F, 0x80|byte(r)&0x3F)
}
