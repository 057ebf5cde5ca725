// Package nouns decides whether a word reads as a common noun.
package nouns

import (
	"log/slog"
	"sync"

	"github.com/jdkato/prose/v2"
)

// commonNounTags are the Penn Treebank tags for common nouns. Proper nouns
// (NNP, NNPS) are deliberately absent.
var commonNounTags = map[string]bool{
	"NN":  true,
	"NNS": true,
}

type tagFunc func(word string) ([]string, error)

// Tagger classifies words with a part-of-speech model and memoises the
// answers. It is safe for concurrent use.
type Tagger struct {
	tag tagFunc
	log *slog.Logger

	mu      sync.RWMutex
	entries map[string]bool
	maxSize int
}

// NewTagger returns a Tagger backed by the prose averaged-perceptron model.
// At most cacheSize answers are kept; the cache is dropped when full.
func NewTagger(cacheSize int, log *slog.Logger) *Tagger {
	return newTagger(proseTags, cacheSize, log)
}

func newTagger(tag tagFunc, cacheSize int, log *slog.Logger) *Tagger {
	if cacheSize <= 0 {
		cacheSize = 50000
	}
	if log == nil {
		log = slog.Default()
	}
	return &Tagger{
		tag:     tag,
		log:     log,
		entries: make(map[string]bool),
		maxSize: cacheSize,
	}
}

func proseTags(word string) ([]string, error) {
	doc, err := prose.NewDocument(word,
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, err
	}
	toks := doc.Tokens()
	tags := make([]string, 0, len(toks))
	for _, t := range toks {
		tags = append(tags, t.Tag)
	}
	return tags, nil
}

// IsNoun reports whether any token of word is tagged as a common noun.
// Tagging failures count as "not a noun".
func (t *Tagger) IsNoun(word string) bool {
	t.mu.RLock()
	v, ok := t.entries[word]
	t.mu.RUnlock()
	if ok {
		return v
	}

	tags, err := t.tag(word)
	if err != nil {
		t.log.Warn("pos tagging failed", "word", word, "error", err)
		return false
	}
	v = false
	for _, tag := range tags {
		if commonNounTags[tag] {
			v = true
			break
		}
	}

	t.mu.Lock()
	if len(t.entries) >= t.maxSize {
		t.entries = make(map[string]bool)
	}
	t.entries[word] = v
	t.mu.Unlock()
	return v
}

// Len returns the number of cached answers.
func (t *Tagger) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
