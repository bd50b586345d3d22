// Package highlight provides the default SnippetHighlighter façade the
// core consumes (spec.md's syntax-highlighting backend is declared
// external; this package is the concrete adapter chroma supplies for it).
package highlight

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/mdslide/mdslide/internal/render"
	"github.com/mdslide/mdslide/internal/theme"
)

// Highlighter turns a language + source string into styled Lines, one per
// source line, ready to feed into RenderText/RenderOperation. It is the
// concrete type satisfying the builder's SnippetHighlighter dependency.
type Highlighter struct {
	StyleName string // chroma style name; "" falls back to "monokai"
}

// New builds a Highlighter using the given chroma style name.
func New(styleName string) *Highlighter {
	if styleName == "" {
		styleName = "monokai"
	}
	return &Highlighter{StyleName: styleName}
}

// Highlight tokenizes source as language and returns one render.Line per
// source line with each token run styled per the chroma style's color
// table. An unrecognized language falls back to a plain-text lexer so
// snippets in unknown languages still render, just without coloring.
func (h *Highlighter) Highlight(language, source string) ([]render.Line, error) {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(h.StyleName)
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return nil, err
	}

	var lines []render.Line
	current := render.Line{}
	flush := func() {
		lines = append(lines, current)
		current = render.Line{}
	}

	for _, token := range iterator.Tokens() {
		entry := style.Get(token.Type)
		runStyle := styleFromChroma(entry)
		parts := splitLines(token.Value)
		for i, part := range parts {
			if i > 0 {
				flush()
			}
			if part != "" {
				current = append(current, render.Text{Content: part, Style: runStyle})
			}
		}
	}
	flush()
	return lines, nil
}

func styleFromChroma(entry chroma.StyleEntry) theme.TextStyle {
	st := theme.TextStyle{}
	if entry.Bold == chroma.Yes {
		st = st.With(theme.FlagBold)
	}
	if entry.Italic == chroma.Yes {
		st = st.With(theme.FlagItalics)
	}
	if entry.Underline == chroma.Yes {
		st = st.With(theme.FlagUnderline)
	}
	colors := theme.Colors{}
	if entry.Colour.IsSet() {
		colors.Foreground = theme.RGB(entry.Colour.Red(), entry.Colour.Green(), entry.Colour.Blue())
	}
	if entry.Background.IsSet() {
		colors.Background = theme.RGB(entry.Background.Red(), entry.Background.Green(), entry.Background.Blue())
	}
	st.Colors = colors
	return st
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}
