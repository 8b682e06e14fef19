package epub

import (
	"strings"
	"unicode/utf8"
)

// idRanges approximates the NCName character production of XML Namespaces
// 1.1. It is slightly permissive: start-character restrictions are not
// enforced.
var idRanges = []struct{ lo, hi rune }{
	{'0', '9'},
	{'A', 'Z'},
	{'a', 'z'},
	{0xB7, 0xB7},
	{0xC0, 0xD6},
	{0xD8, 0xF6},
	{0xF8, 0x2FF},
	{0x300, 0x36F},
	{0x370, 0x37D},
	{0x37F, 0x1FFF},
	{0x200C, 0x200D},
	{0x203F, 0x2040},
	{0x2070, 0x218F},
	{0x2C00, 0x2FEF},
	{0x3001, 0xD7FF},
	{0xF900, 0xFDCF},
	{0xFDF0, 0xFFFD},
	{0x10000, 0xEFFFF},
}

func isIDChar(r rune) bool {
	switch r {
	case '_', '-', '.':
		return true
	}
	for _, rg := range idRanges {
		if r >= rg.lo && r <= rg.hi {
			return true
		}
	}
	return false
}

// SanitizeID turns an arbitrary resource path into a manifest item id by
// replacing every character outside the allow-list with an underscore.
// Distinct paths may map to the same id; collisions are not detected.
func SanitizeID(path string) string {
	var b strings.Builder
	b.Grow(len(path))
	for i := 0; i < len(path); {
		r, size := utf8.DecodeRuneInString(path[i:])
		i += size
		if r == utf8.RuneError && size == 1 {
			b.WriteByte('_')
			continue
		}
		if isIDChar(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
