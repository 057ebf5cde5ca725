package nouns

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Set is a fixed word list. Lookups are case-insensitive and ignore
// surrounding punctuation.
type Set map[string]struct{}

func NewSet(words ...string) Set {
	s := make(Set, len(words))
	for _, w := range words {
		if w = normalize(w); w != "" {
			s[w] = struct{}{}
		}
	}
	return s
}

// ReadSet loads one word per line. Blank lines and lines starting with '#'
// are skipped.
func ReadSet(r io.Reader) (Set, error) {
	s := make(Set)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if w := normalize(line); w != "" {
			s[w] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read noun list: %w", err)
	}
	return s, nil
}

func (s Set) IsNoun(word string) bool {
	_, ok := s[normalize(word)]
	return ok
}

func normalize(w string) string {
	return strings.ToLower(strings.Trim(w, ".,!?:;-_~|=+*/\\@\"'()[]{}<>`"))
}
