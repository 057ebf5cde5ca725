package wordfreq

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/muesli/reflow/padding"
	"github.com/muesli/reflow/truncate"
)

const (
	maxLabelWidth = 20
	bar           = "█"
)

// WriteJSON writes entries as an indented JSON array.
func WriteJSON(w io.Writer, entries []Entry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if entries == nil {
		entries = []Entry{}
	}
	return enc.Encode(entries)
}

// WriteChart draws a horizontal bar chart no wider than width columns.
func WriteChart(w io.Writer, entries []Entry, width int) error {
	if len(entries) == 0 {
		return nil
	}

	label := 0
	for _, e := range entries {
		label = max(label, len([]rune(e.Word)))
	}
	label = min(label, maxLabelWidth)
	digits := len(strconv.Itoa(entries[0].Count))

	room := width - label - digits - 2
	if room < 1 {
		room = 1
	}
	top := entries[0].Count

	for _, e := range entries {
		name := truncate.StringWithTail(e.Word, uint(label), "…")
		n := e.Count * room / top
		if n == 0 && e.Count > 0 {
			n = 1
		}
		_, err := fmt.Fprintf(w, "%s %*d %s\n",
			padding.String(name, uint(label)), digits, e.Count, strings.Repeat(bar, n))
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteArtifact stores entries as word_freq_hist.json under dir.
func WriteArtifact(dir string, entries []Entry) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifacts dir: %w", err)
	}
	path := filepath.Join(dir, "word_freq_hist.json")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create artifact: %w", err)
	}
	if err := WriteJSON(f, entries); err != nil {
		f.Close()
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, f.Close()
}
