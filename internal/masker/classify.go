package masker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NounOracle reports whether any reading of word is a common noun.
type NounOracle interface {
	IsNoun(word string) bool
}

// Source yields uniform values in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// eligible applies the structural and lexical exclusions to token. It does
// not consult the oracle or draw from the source.
func eligible(token string, doc *documentState, line *lineState) bool {
	if doc.inFence || doc.inHeader || line.insideSpan() || strings.HasPrefix(token, fenceMarker) {
		return false
	}
	if utf8.RuneCountInString(token) <= 2 {
		return false
	}
	return hasAlnum(token)
}

func hasAlnum(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}

// shouldMask decides a single token. The source is drawn from only when the
// token is a noun, so the stream advances once per candidate in scan order.
func (m *Masker) shouldMask(token string, doc *documentState, line *lineState) bool {
	if !eligible(token, doc, line) {
		return false
	}
	if !m.oracle.IsNoun(token) {
		return false
	}
	return m.src.Float64() < m.cfg.Probability
}
