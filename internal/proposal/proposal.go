// Package proposal loads proposal documents from disk.
package proposal

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
)

// Proposal is one Markdown document with its front matter removed.
type Proposal struct {
	ID          string         // Leading number of the file name, e.g. "0042".
	Filename    string         // Base name of the source file.
	Body        string         // Markdown after the front matter.
	FrontMatter map[string]any // Decoded front matter, nil when absent.
}

// Parse reads a proposal. YAML, TOML and JSON front matter are stripped;
// documents without front matter are returned whole.
func Parse(r io.Reader, filename string) (*Proposal, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}

	var fm map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(src), &fm)
	if err != nil {
		return nil, fmt.Errorf("parse front matter %s: %w", filename, err)
	}

	base := filepath.Base(filename)
	return &Proposal{
		ID:          IDFromFilename(base),
		Filename:    base,
		Body:        string(body),
		FrontMatter: fm,
	}, nil
}

// Load parses the proposal stored at path.
func Load(path string) (*Proposal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, path)
}

// IDFromFilename returns the part of the base name before the first '-'.
// A name without a dash yields the name minus its extension.
func IDFromFilename(name string) string {
	name = filepath.Base(name)
	if id, _, ok := strings.Cut(name, "-"); ok {
		return id
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Glob returns the files matching pattern in lexical order. Masking draws
// from a shared stream, so the order must be stable between runs.
func Glob(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}
