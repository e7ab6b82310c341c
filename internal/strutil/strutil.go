// Package strutil holds small string helpers shared by handlers and views.
package strutil

import (
	"unicode"
	"unicode/utf8"
)

// Capitalise returns text with its first character upper-cased and the rest
// left untouched. Empty input is returned unchanged.
func Capitalise(text string) string {
	r, size := utf8.DecodeRuneInString(text)
	if size == 0 {
		return text
	}
	upper := unicode.ToUpper(r)
	if upper == r {
		return text
	}
	return string(upper) + text[size:]
}
