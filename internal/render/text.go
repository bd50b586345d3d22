// Package render defines the render operation IR (the only contract
// between the presentation builder and the render engine) and the engine
// that interprets it against a terminal grid.
package render

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/mdslide/mdslide/internal/theme"
)

// Text is a run of content carrying one TextStyle. ANSI marks content that
// already carries its own escape sequences (pasted `lolcat`-style gradients
// and similar) — the engine trusts those bytes verbatim instead of
// recomputing a style for them. Width is still measured the normal way, by
// go-runewidth, which also counts the printable characters of the escape
// sequence itself.
type Text struct {
	Content string
	Style   theme.TextStyle
	ANSI    bool
}

// Width returns the display-column width of t's content, expanding tabs to
// four spaces before measuring, per spec.md §3.
func (t Text) Width() int {
	return runewidth.StringWidth(ExpandTabs(t.Content))
}

// ExpandTabs expands tab characters to four spaces, matching the width
// measurement rule shared by Text/Line/BlockLine.
func ExpandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	return strings.ReplaceAll(s, "\t", "    ")
}

// Line is an ordered sequence of Text runs drawn on one terminal row.
type Line []Text

// Width is the sum of each run's display width.
func (l Line) Width() int {
	w := 0
	for _, t := range l {
		w += t.Width()
	}
	return w
}

// String concatenates the line's raw content, ignoring style — used for
// width/wrap calculations that need the plain text.
func (l Line) String() string {
	var b strings.Builder
	for _, t := range l {
		b.WriteString(t.Content)
	}
	return b.String()
}

// WeightedLine is a Line plus the highlight "weight" state the builder
// assigns per line (dimmed vs highlighted). The render engine draws each
// run's Style as is and does not read Dimmed; the diff engine compares it.
type WeightedLine struct {
	Line   Line
	Dimmed bool
}

// WrapGraphemes splits s into chunks no wider than maxWidth display
// columns, breaking only on Unicode grapheme-cluster boundaries so
// combining marks and multi-rune emoji are never split mid-cluster.
func WrapGraphemes(s string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{s}
	}
	var lines []string
	var current strings.Builder
	width := 0

	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		cluster := gr.Str()
		clusterWidth := runewidth.StringWidth(cluster)
		if width+clusterWidth > maxWidth && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
			width = 0
		}
		current.WriteString(cluster)
		width += clusterWidth
	}
	if current.Len() > 0 || len(lines) == 0 {
		lines = append(lines, current.String())
	}
	return lines
}

// BlockLine is a single line of a block quote / alert rendering: a prefix
// repeated on every wrapped line, the text, the block's fixed width, and
// whether wrapping should re-emit the prefix.
type BlockLine struct {
	Prefix             string
	Text               Line
	BlockLength        int
	RepeatPrefixOnWrap bool
	Style              theme.TextStyle
}
