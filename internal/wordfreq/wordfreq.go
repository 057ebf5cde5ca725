// Package wordfreq counts words across the unmasked proposal corpus.
package wordfreq

import (
	"bufio"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/npillmayer/uax/segment"
	"github.com/npillmayer/uax/uax29"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// CommonWords are left out of rankings so that domain terms surface.
var CommonWords = []string{
	"the", "is", "in", "to", "of", "and", "a", "that", "it", "with",
	"as", "but", "if", "or", "because", "until", "while",
}

// Histogram maps a lower-cased word to its number of occurrences.
type Histogram map[string]int

// Entry is one ranked word.
type Entry struct {
	Word  string `json:"word"`
	Count int    `json:"frequency"`
}

// Count segments text into Unicode words and counts the purely alphabetic
// ones, case-folded.
func Count(text string) Histogram {
	h := make(Histogram)
	lower := cases.Lower(language.English)

	words := segment.NewSegmenter(uax29.NewWordBreaker(1))
	words.BreakOnZero(true, false)
	words.Init(bufio.NewReader(norm.NFC.Reader(strings.NewReader(text))))
	for words.Next() {
		w := words.Text()
		if !isAlpha(w) {
			continue
		}
		h[lower.String(w)]++
	}
	return h
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// Add merges other into h.
func (h Histogram) Add(other Histogram) {
	for w, n := range other {
		h[w] += n
	}
}

// Top returns up to n entries by descending count, ties broken by word.
// Common words are skipped. n <= 0 returns every entry.
func (h Histogram) Top(n int) []Entry {
	skip := make(map[string]bool, len(CommonWords))
	for _, w := range CommonWords {
		skip[w] = true
	}

	entries := make([]Entry, 0, len(h))
	for w, c := range h {
		if skip[w] {
			continue
		}
		entries = append(entries, Entry{Word: w, Count: c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Word < entries[j].Word
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// Aggregator accumulates histograms from concurrent publishers.
type Aggregator struct {
	mu    sync.Mutex
	total Histogram
	docs  int
}

func NewAggregator() *Aggregator {
	return &Aggregator{total: make(Histogram)}
}

// AddText counts text and folds it into the running total.
func (a *Aggregator) AddText(text string) {
	h := Count(text)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.total.Add(h)
	a.docs++
}

// Top ranks the running total.
func (a *Aggregator) Top(n int) []Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.total.Top(n)
}

// Documents returns how many texts have been added.
func (a *Aggregator) Documents() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.docs
}
