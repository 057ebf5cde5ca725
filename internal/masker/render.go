package masker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Glyph replaces each masked character. It is U+25FB followed by the
// text-presentation selector U+FE0E.
const Glyph = "◻︎"

// keptPunctuation is left in place when it ends a masked token.
const keptPunctuation = ".,!?:;-_~|=+*/\\@"

// redact renders a masked token.
func redact(token string) string {
	n := utf8.RuneCountInString(token)
	last, size := utf8.DecodeLastRuneInString(token)
	if strings.ContainsRune(keptPunctuation, last) {
		return strings.Repeat(Glyph, n-1) + token[len(token)-size:]
	}
	return strings.Repeat(Glyph, n)
}

// trailingBlank returns the whitespace suffix of line when the line ends in
// a space or tab, and "" otherwise.
func trailingBlank(line string) string {
	if !strings.HasSuffix(line, " ") && !strings.HasSuffix(line, "\t") {
		return ""
	}
	return line[len(strings.TrimRightFunc(line, unicode.IsSpace)):]
}
