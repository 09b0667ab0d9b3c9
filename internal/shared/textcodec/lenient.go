package textcodec

import (
	"strings"
	"unicode/utf8"
)

// decodeLenient reads raw as UTF-8, falling back to Latin-1 for each byte
// that does not start a valid sequence.
func decodeLenient(raw []byte) string {
	var sb strings.Builder
	sb.Grow(len(raw) * 2)
	for len(raw) > 0 {
		r, size := utf8.DecodeRune(raw)
		if r == utf8.RuneError && size <= 1 {
			sb.WriteRune(rune(raw[0]))
			raw = raw[1:]
			continue
		}
		sb.WriteRune(r)
		raw = raw[size:]
	}
	return sb.String()
}
