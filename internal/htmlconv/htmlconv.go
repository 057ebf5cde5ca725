// Package htmlconv renders masked Markdown to the HTML stored in the CMS.
package htmlconv

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dgallion1/docmask/internal/masker"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MaskedClass is the class of the span wrapped around runs of mask glyphs.
const MaskedClass = "masked"

var md = goldmark.New(
	goldmark.WithExtensions(
		extension.Table,
		extension.Strikethrough,
		extension.Footnote,
	),
	goldmark.WithRendererOptions(
		gmhtml.WithHardWraps(),
	),
)

// Convert renders src and wraps masked words in <span class="masked">.
func Convert(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	if !strings.Contains(buf.String(), masker.Glyph) {
		return buf.String(), nil
	}
	return wrapMasked(buf.String())
}

func wrapMasked(fragment string) (string, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return "", fmt.Errorf("parse rendered html: %w", err)
	}

	// Reparent so siblings can be replaced in place.
	for _, n := range nodes {
		body.AppendChild(n)
	}

	var targets []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Pre, atom.Code, atom.Script, atom.Style:
				return
			}
		}
		if n.Type == html.TextNode && strings.Contains(n.Data, masker.Glyph) {
			targets = append(targets, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(body)

	for _, n := range targets {
		parent := n.Parent
		for _, seg := range splitMasked(n.Data) {
			if !seg.masked {
				parent.InsertBefore(&html.Node{Type: html.TextNode, Data: seg.text}, n)
				continue
			}
			span := &html.Node{
				Type:     html.ElementNode,
				Data:     "span",
				DataAtom: atom.Span,
				Attr:     []html.Attribute{{Key: "class", Val: MaskedClass}},
			}
			span.AppendChild(&html.Node{Type: html.TextNode, Data: seg.text})
			parent.InsertBefore(span, n)
		}
		parent.RemoveChild(n)
	}

	var out bytes.Buffer
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&out, c); err != nil {
			return "", fmt.Errorf("render html: %w", err)
		}
	}
	return out.String(), nil
}

type segment struct {
	text   string
	masked bool
}

// splitMasked cuts s into alternating plain and glyph-run segments.
func splitMasked(s string) []segment {
	var segs []segment
	for s != "" {
		i := strings.Index(s, masker.Glyph)
		if i < 0 {
			segs = append(segs, segment{text: s})
			break
		}
		if i > 0 {
			segs = append(segs, segment{text: s[:i]})
		}
		j := i
		for strings.HasPrefix(s[j:], masker.Glyph) {
			j += len(masker.Glyph)
		}
		segs = append(segs, segment{text: s[i:j], masked: true})
		s = s[j:]
	}
	return segs
}
