package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firstParagraph(t *testing.T, elements []Element) Element {
	t.Helper()
	for _, e := range elements {
		if e.Kind == KindParagraph {
			return e
		}
	}
	t.Fatalf("no paragraph element found")
	return Element{}
}

func flattenLine(l Line) string {
	var out string
	for _, s := range l {
		out += s.Text
	}
	return out
}

func TestParseHeadingAndParagraph(t *testing.T) {
	elements, err := New().Parse("t.md", []byte("# Title\n\nhello world\n"))
	require.NoError(t, err)

	var sawHeading bool
	for _, e := range elements {
		if e.Kind == KindHeading {
			sawHeading = true
			assert.Equal(t, 1, e.HeadingLevel)
			assert.Equal(t, "Title", flattenLine(e.HeadingText))
		}
	}
	assert.True(t, sawHeading)

	p := firstParagraph(t, elements)
	assert.Equal(t, "hello world", flattenLine(p.ParagraphLines[0]))
}

func TestInlineSpanStyleFlags(t *testing.T) {
	elements, err := New().Parse("t.md", []byte("**bold** and *italic* and `code`\n"))
	require.NoError(t, err)

	p := firstParagraph(t, elements)
	line := p.ParagraphLines[0]

	var sawBold, sawItalic, sawCode bool
	for _, span := range line {
		switch span.Text {
		case "bold":
			sawBold = span.Bold
		case "italic":
			sawItalic = span.Italic
		case "code":
			sawCode = span.Code
		}
	}
	assert.True(t, sawBold)
	assert.True(t, sawItalic)
	assert.True(t, sawCode)
}

func TestInlineHTMLSpanColorPassthrough(t *testing.T) {
	elements, err := New().Parse("t.md", []byte(`a <span style="color:#ff0000;background-color:#00ff00">red on green</span> b`+"\n"))
	require.NoError(t, err)

	p := firstParagraph(t, elements)
	var found bool
	for _, span := range p.ParagraphLines[0] {
		if span.Text == "red on green" {
			found = true
			assert.Equal(t, "#ff0000", span.FgColor)
			assert.Equal(t, "#00ff00", span.BgColor)
		}
	}
	assert.True(t, found)
}

func TestInlineHTMLSuperscript(t *testing.T) {
	elements, err := New().Parse("t.md", []byte("x<sup>2</sup> plain\n"))
	require.NoError(t, err)

	p := firstParagraph(t, elements)
	var found bool
	for _, span := range p.ParagraphLines[0] {
		if span.Text == "2" {
			found = true
			assert.True(t, span.Superscript)
		}
	}
	assert.True(t, found)
}

func TestInlineHTMLBreakSplitsLine(t *testing.T) {
	elements, err := New().Parse("t.md", []byte("first<br>second\n"))
	require.NoError(t, err)

	p := firstParagraph(t, elements)
	require.Len(t, p.ParagraphLines, 2)
	assert.Equal(t, "first", flattenLine(p.ParagraphLines[0]))
	assert.Equal(t, "second", flattenLine(p.ParagraphLines[1]))
}
