package htmlconv

import (
	"strings"
	"testing"

	"github.com/dgallion1/docmask/internal/masker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_PlainMarkdown(t *testing.T) {
	out, err := Convert("# Title\n\nfirst line\nsecond line\n")
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Title</h1>")
	assert.Contains(t, out, "first line<br")
}

func TestConvert_Table(t *testing.T) {
	out, err := Convert("| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>1</td>")
}

func TestConvert_WrapsMaskedRuns(t *testing.T) {
	g := masker.Glyph
	src := "## Section\n\nsome " + strings.Repeat(g, 4) + " text " + strings.Repeat(g, 3) + ".\n\n`" + g + g + "`\n"

	out, err := Convert(src)
	require.NoError(t, err)

	assert.Contains(t, out, `some <span class="masked">`+strings.Repeat(g, 4)+`</span> text`)
	assert.Contains(t, out, `<span class="masked">`+strings.Repeat(g, 3)+`</span>.`)
	assert.Contains(t, out, "<code>"+g+g+"</code>")
	assert.Equal(t, 2, strings.Count(out, `class="masked"`))
}

func TestSplitMasked(t *testing.T) {
	g := masker.Glyph
	segs := splitMasked("a" + g + g + "b" + g)
	require.Len(t, segs, 4)
	assert.Equal(t, segment{text: "a"}, segs[0])
	assert.Equal(t, segment{text: g + g, masked: true}, segs[1])
	assert.Equal(t, segment{text: "b"}, segs[2])
	assert.Equal(t, segment{text: g, masked: true}, segs[3])
}
