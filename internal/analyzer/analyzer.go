// Package analyzer turns a UTF-8 document or query string into a list of
// stemmed terms: bytewise normalization, whitespace splitting, script-routed
// stemming, and a minimum-length filter.
package analyzer

import (
	"strings"

	"github.com/kljensen/snowball/english"
	"github.com/kljensen/snowball/russian"
)

// minStemLen is the shortest post-stemming token length that is kept; the
// source discards anything at or below this.
const minStemLen = 2

// Analyze runs the full normalize -> split -> stem -> filter pipeline over
// text and returns the stemmed terms in input order, duplicates included.
func Analyze(text string) []string {
	normalized := normalize(text)
	fields := strings.Fields(normalized)

	terms := make([]string, 0, len(fields))
	for _, token := range fields {
		stemmed := stemToken(token)
		if len(stemmed) > minStemLen {
			terms = append(terms, stemmed)
		}
	}
	return terms
}

// isRussianToken reports whether token contains any byte outside the ASCII
// range, which is sufficient to distinguish the two scripts this analyzer
// handles.
func isRussianToken(token string) bool {
	for i := 0; i < len(token); i++ {
		if token[i] >= 0x80 {
			return true
		}
	}
	return false
}

// stemToken routes token to the Russian or English stemmer by script.
func stemToken(token string) string {
	if isRussianToken(token) {
		return russian.Stem(token, true)
	}
	return english.Stem(token, true)
}

// normalize rewrites text byte-by-byte into a same- or shorter-length
// string over [a-z0-9 ] plus lowercase Cyrillic letters and spaces:
//
//   - ASCII alnum -> lowercase; any other ASCII byte -> a single space.
//   - A two-byte Cyrillic sequence (lead byte 0xD0 or 0xD1) is kept
//     verbatim, except a 0xD0-lead capital letter (trail in [0x90, 0xAF])
//     is lowercased by adding 0x20 to the trail byte. Ё/ё and the 0xD1
//     lead range pass through unchanged.
//   - Any other UTF-8 sequence becomes a single space, advancing by its
//     encoded length.
func normalize(input string) string {
	var out strings.Builder
	out.Grow(len(input))

	for i := 0; i < len(input); {
		c := input[i]
		switch {
		case c < 0x80:
			if isASCIIAlnum(c) {
				out.WriteByte(toLowerASCII(c))
			} else {
				out.WriteByte(' ')
			}
			i++
		case (c == 0xD0 || c == 0xD1) && i+1 < len(input):
			b1, b2 := c, input[i+1]
			if b1 == 0xD0 && b2 >= 0x90 && b2 <= 0xAF {
				b2 += 0x20
			}
			out.WriteByte(b1)
			out.WriteByte(b2)
			i += 2
		default:
			out.WriteByte(' ')
			i += utf8CharLen(c)
		}
	}
	return out.String()
}

func isASCIIAlnum(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func toLowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 0x20
	}
	return c
}

// utf8CharLen derives the byte length of a UTF-8 character from its lead
// byte's high bits.
func utf8CharLen(c byte) int {
	switch {
	case c&0x80 == 0x00:
		return 1
	case c&0xE0 == 0xC0:
		return 2
	case c&0xF0 == 0xE0:
		return 3
	case c&0xF8 == 0xF0:
		return 4
	default:
		return 1
	}
}
