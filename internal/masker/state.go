package masker

import (
	"strings"
	"unicode"
)

const fenceMarker = "```"

// documentState is carried from line to line for a single document.
type documentState struct {
	inFence          bool
	inHeader         bool
	titleFromHeading bool
	meta             Metadata
}

func (d *documentState) reset() {
	*d = documentState{inHeader: true}
}

// consumeStructural applies the heading, metadata and fence rules to line.
// It reports true when the line must be emitted verbatim.
func (d *documentState) consumeStructural(line string) bool {
	if strings.HasPrefix(line, "# ") {
		d.parseHeading(line)
		return true
	}
	if strings.HasPrefix(line, "##") {
		d.inHeader = false
	}
	if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "---") || strings.TrimSpace(line) == "" {
		return true
	}
	if d.inHeader && d.parseField(line) {
		return true
	}
	if strings.HasPrefix(strings.TrimLeftFunc(line, unicode.IsSpace), fenceMarker) {
		d.inFence = !d.inFence
		return true
	}
	return d.inFence
}

// inlineCode tracks a backtick-delimited span within one line.
type inlineCode struct {
	opened bool
	closed bool
}

func (c *inlineCode) observe(token string) {
	if !strings.Contains(token, "`") {
		return
	}
	if c.opened {
		c.closed = true
	} else {
		c.opened = true
	}
}

func (c *inlineCode) active() bool   { return c.opened || c.closed }
func (c *inlineCode) complete() bool { return c.opened && c.closed }

// hyperlink tracks the [text](target) shape of a Markdown link within one
// line. Each flag can only be set once the previous one is.
type hyperlink struct {
	textOpen    bool
	textClosed  bool
	targetOpen  bool
	targetClose bool
}

func (h *hyperlink) observe(token string) {
	if strings.Contains(token, "[") {
		h.textOpen = true
	}
	if h.textOpen && strings.Contains(token, "]") {
		h.textClosed = true
	}
	if h.textClosed && strings.Contains(token, "(") {
		h.targetOpen = true
	}
	if h.targetOpen && strings.Contains(token, ")") {
		h.targetClose = true
	}
}

func (h *hyperlink) active() bool {
	return h.textOpen || h.textClosed || h.targetOpen || h.targetClose
}

func (h *hyperlink) complete() bool {
	return h.textOpen && h.textClosed && h.targetOpen && h.targetClose
}

// lineState is reset at the start of every tokenized line.
type lineState struct {
	code inlineCode
	link hyperlink
}

// advance folds token into the span state. Spans completed by the previous
// token are cleared first, so a closing token is still treated as inside.
func (l *lineState) advance(token string) {
	if l.link.complete() {
		l.link = hyperlink{}
	}
	if l.code.complete() {
		l.code = inlineCode{}
	}
	l.code.observe(token)
	l.link.observe(token)
}

func (l *lineState) insideSpan() bool {
	return l.code.active() || l.link.active()
}
