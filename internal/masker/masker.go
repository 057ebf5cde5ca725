// Package masker redacts common nouns in Markdown prose while leaving
// headings, metadata, code and links untouched.
package masker

import (
	"hash/fnv"
	"math/rand/v2"
	"strings"
)

// Config controls masking behavior.
type Config struct {
	Probability float64 // Chance that an eligible noun is masked.
}

// DefaultConfig returns the standard masking ratio.
func DefaultConfig() Config {
	return Config{Probability: 0.3}
}

// Masker scans documents and masks eligible tokens. A Masker consumes its
// Source in scan order and is not safe for concurrent use.
type Masker struct {
	oracle NounOracle
	src    Source
	cfg    Config
}

func New(oracle NounOracle, src Source, cfg Config) *Masker {
	if cfg.Probability < 0 {
		cfg.Probability = DefaultConfig().Probability
	}
	return &Masker{oracle: oracle, src: src, cfg: cfg}
}

// Result is the outcome of masking one document.
type Result struct {
	Text     string
	Metadata Metadata
	Tokens   int // Tokens scanned outside verbatim lines.
	Masked   int // Tokens replaced with glyphs.
}

// Mask returns the masked document and its header metadata.
func (m *Masker) Mask(text string) (string, Metadata) {
	r := m.MaskDocument(text)
	return r.Text, r.Metadata
}

// MaskDocument masks text line by line. Unbalanced fences or spans never
// fail; they suppress masking for the rest of the document or line.
func (m *Masker) MaskDocument(text string) Result {
	var doc documentState
	doc.reset()

	var res Result
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if doc.consumeStructural(line) {
			out = append(out, line)
			continue
		}
		masked, tokens, n := m.maskLine(line, &doc)
		res.Tokens += tokens
		res.Masked += n
		out = append(out, masked)
	}

	res.Text = strings.Join(out, "\n")
	res.Metadata = doc.meta
	return res
}

func (m *Masker) maskLine(line string, doc *documentState) (string, int, int) {
	words := strings.Fields(line)
	var ls lineState
	masked := 0
	for i, w := range words {
		ls.advance(w)
		if m.shouldMask(w, doc, &ls) {
			words[i] = redact(w)
			masked++
		}
	}
	return strings.Join(words, " ") + trailingBlank(line), len(words), masked
}

// NewStream returns the generator shared by a sequential batch.
func NewStream(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0))
}

// StreamFor returns an independent generator for the document identified by
// key. The stream depends only on seed and key, so documents may be masked
// in any order or in parallel.
func StreamFor(seed uint64, key string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(key))
	return rand.New(rand.NewPCG(seed, h.Sum64()))
}
