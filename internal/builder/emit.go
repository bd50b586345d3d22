package builder

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/mdslide/mdslide/internal/markdown"
	"github.com/mdslide/mdslide/internal/render"
	"github.com/mdslide/mdslide/internal/theme"
)

func inlineLineToRenderLine(l markdown.Line, base theme.TextStyle) render.Line {
	out := make(render.Line, 0, len(l))
	for _, span := range l {
		style := base
		if span.Bold {
			style = style.With(theme.FlagBold)
		}
		if span.Italic {
			style = style.With(theme.FlagItalics)
		}
		if span.Code {
			style = style.With(theme.FlagCode)
		}
		if span.Strike {
			style = style.With(theme.FlagStrikethrough)
		}
		if span.Link != "" {
			style = style.With(theme.FlagLink)
		}
		if span.Superscript {
			style = style.With(theme.FlagSuperscript)
		}
		colors := style.Colors
		if span.FgColor != "" {
			if c, err := theme.ParseColor(strings.TrimPrefix(span.FgColor, "#")); err == nil {
				colors.Foreground = c
			}
		}
		if span.BgColor != "" {
			if c, err := theme.ParseColor(strings.TrimPrefix(span.BgColor, "#")); err == nil {
				colors.Background = c
			}
		}
		style = style.WithColors(colors)
		// A span carrying a raw escape sequence (pasted lolcat-style
		// gradients, etc.) is passed through verbatim instead of having its
		// style recomputed over already-styled bytes (original_source/
		// src/ansi.rs; spec.md's Non-goals don't exclude this). Width is
		// measured by go-runewidth like any other run, which also counts the
		// printable characters of the escape sequence itself.
		out = append(out, render.Text{Content: span.Text, Style: style, ANSI: containsANSIEscape(span.Text)})
	}
	return out
}

// containsANSIEscape reports whether s embeds a raw CSI/OSC escape
// sequence rather than being plain Markdown-sourced text.
func containsANSIEscape(s string) bool {
	return strings.ContainsRune(s, '\x1b')
}

// emitHeading renders a Heading/SetexHeading element. A level-1 heading at
// the very first position of a slide is treated as that slide's title
// (surfaced in the index modal); every heading also becomes a RenderText.
func (b *Builder) emitHeading(st *slideState, el markdown.Element, chunk *[]render.Operation) {
	idx := el.HeadingLevel - 1
	if idx < 0 {
		idx = 0
	}
	if idx > 5 {
		idx = 5
	}
	elStyle := b.opts.Theme.Headings[idx]

	if st.lastElement == lastNone && el.HeadingLevel == 1 {
		st.title = plainText(el.HeadingText)
	}

	line := inlineLineToRenderLine(el.HeadingText, elStyle.Style)
	alignment := b.alignmentFor(st, theme.ElementHeading)
	*chunk = append(*chunk, render.RenderText{Line: render.WeightedLine{Line: line}, Alignment: alignment})
	*chunk = append(*chunk, render.RenderLineBreak{})
}

func plainText(l markdown.Line) string {
	var b strings.Builder
	for _, s := range l {
		b.WriteString(s.Text)
	}
	return b.String()
}

func (b *Builder) emitParagraph(st *slideState, el markdown.Element, chunk *[]render.Operation) {
	alignment := b.alignmentFor(st, theme.ElementParagraph)
	for _, l := range el.ParagraphLines {
		line := inlineLineToRenderLine(l, b.opts.Theme.DefaultStyle.Style)
		*chunk = append(*chunk, render.RenderText{Line: render.WeightedLine{Line: line}, Alignment: alignment})
		*chunk = append(*chunk, render.RenderLineBreak{})
	}
	*chunk = append(*chunk, render.RenderLineBreak{})
}

// emitList renders every flattened entry of a (possibly nested) list into
// the current chunk. The incremental_lists setting (directive or
// IncrementalListsDefault) is not consulted here: no pause and no mutator
// is inserted between items.
func (b *Builder) emitList(st *slideState, el markdown.Element, chunk *[]render.Operation) {
	alignment := b.alignmentFor(st, theme.ElementList)
	it := NewListIterator(el.ListItems)
	spacesPerIndent := b.opts.Theme.SpacesPerIndent
	if spacesPerIndent == 0 {
		spacesPerIndent = 3
	}

	for _, entry := range it.Entries() {
		indent := Indent(entry, spacesPerIndent)
		marker := Marker(entry)
		prefix := strings.Repeat(" ", indent) + marker + " "

		for i, l := range entry.Item.Lines {
			line := inlineLineToRenderLine(l, b.opts.Theme.DefaultStyle.Style)
			var full render.Line
			if i == 0 {
				full = append(render.Line{{Content: prefix}}, line...)
			} else {
				full = append(render.Line{{Content: strings.Repeat(" ", indent+len(marker)+1)}}, line...)
			}
			*chunk = append(*chunk, render.RenderText{Line: render.WeightedLine{Line: full}, Alignment: alignment})
			*chunk = append(*chunk, render.RenderLineBreak{})
		}
		for i := 0; i < b.opts.ListItemNewlines; i++ {
			*chunk = append(*chunk, render.RenderLineBreak{})
		}
	}
}

// emitTable renders a table as one column-aligned header line, one
// separator line of dashes, and one line per row — simple fixed-width
// columns sized to the widest cell, matching how the teacher's plain-text
// table renderer (no external table layout dependency pulled in for this)
// would lay it out.
func (b *Builder) emitTable(st *slideState, el markdown.Element, chunk *[]render.Operation) {
	alignment := b.alignmentFor(st, theme.ElementTable)
	widths := columnWidths(el.TableHeader, el.TableRows)

	*chunk = append(*chunk, render.RenderText{Line: render.WeightedLine{Line: padRow(el.TableHeader, widths, b.opts.Theme.DefaultStyle.Style)}, Alignment: alignment})
	*chunk = append(*chunk, render.RenderLineBreak{})

	sep := make(render.Line, 0, len(widths))
	for i, w := range widths {
		if i > 0 {
			sep = append(sep, render.Text{Content: "  "})
		}
		sep = append(sep, render.Text{Content: strings.Repeat("-", w)})
	}
	*chunk = append(*chunk, render.RenderText{Line: render.WeightedLine{Line: sep}, Alignment: alignment})
	*chunk = append(*chunk, render.RenderLineBreak{})

	for _, row := range el.TableRows {
		*chunk = append(*chunk, render.RenderText{Line: render.WeightedLine{Line: padRow(row, widths, b.opts.Theme.DefaultStyle.Style)}, Alignment: alignment})
		*chunk = append(*chunk, render.RenderLineBreak{})
	}
	*chunk = append(*chunk, render.RenderLineBreak{})
}

func columnWidths(header markdown.TableRow, rows []markdown.TableRow) []int {
	widths := make([]int, len(header))
	for i, cell := range header {
		widths[i] = len(plainText(cell))
	}
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				continue
			}
			if w := len(plainText(cell)); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func padRow(row markdown.TableRow, widths []int, base theme.TextStyle) render.Line {
	out := render.Line{}
	for i, cell := range row {
		if i > 0 {
			out = append(out, render.Text{Content: "  "})
		}
		text := plainText(cell)
		if i < len(widths) {
			if pad := widths[i] - len(text); pad > 0 {
				text += strings.Repeat(" ", pad)
			}
		}
		out = append(out, render.Text{Content: text, Style: base})
	}
	return out
}

func (b *Builder) emitBlockQuote(el markdown.Element, chunk *[]render.Operation) {
	style := b.opts.Theme.BlockQuote.Style
	prefix := b.opts.Theme.BlockQuotePrefix
	if prefix == "" {
		prefix = "▍ "
	}
	for _, l := range el.QuoteLines {
		line := inlineLineToRenderLine(l, style)
		*chunk = append(*chunk, render.RenderBlockLine{Block: render.BlockLine{
			Prefix: prefix, Text: line, BlockLength: 80, RepeatPrefixOnWrap: true, Style: style,
		}})
	}
	*chunk = append(*chunk, render.RenderLineBreak{})
}

func (b *Builder) emitAlert(el markdown.Element, chunk *[]render.Operation) {
	kind := theme.AlertKind(el.AlertKind)
	alert, ok := b.opts.Theme.Alerts[kind]
	if !ok {
		b.emitBlockQuote(el, chunk)
		return
	}
	title := alert.Title
	if el.AlertTitle != "" {
		title = el.AlertTitle
	}
	header := render.Line{{Content: alert.Icon + " " + title, Style: alert.Block.Style}}
	*chunk = append(*chunk, render.RenderBlockLine{Block: render.BlockLine{
		Prefix: b.opts.Theme.BlockQuotePrefix, Text: header, BlockLength: 80, RepeatPrefixOnWrap: true, Style: alert.Block.Style,
	}})
	for _, l := range el.QuoteLines {
		line := inlineLineToRenderLine(l, alert.Block.Style)
		*chunk = append(*chunk, render.RenderBlockLine{Block: render.BlockLine{
			Prefix: b.opts.Theme.BlockQuotePrefix, Text: line, BlockLength: 80, RepeatPrefixOnWrap: true, Style: alert.Block.Style,
		}})
	}
	*chunk = append(*chunk, render.RenderLineBreak{})
}

// emitImage parses spec.md's `image:width:N%` title-attribute convention
// (the only image attribute surface the builder itself understands; pixel
// decoding and terminal protocol selection belong to internal/imaging).
func (b *Builder) emitImage(el markdown.Element, chunk *[]render.Operation) error {
	policy := render.ImageSizePolicy{Kind: render.ImageShrinkIfNeeded}
	noBackground := false

	for _, attr := range strings.Fields(el.ImageTitle) {
		if !strings.HasPrefix(attr, b.opts.ImageAttributePrefix) {
			continue
		}
		rest := strings.TrimPrefix(attr, b.opts.ImageAttributePrefix)
		key, val, _ := strings.Cut(rest, ":")
		switch key {
		case "width":
			pct := strings.TrimSuffix(val, "%")
			var n int
			if _, err := fmt.Sscanf(pct, "%d", &n); err != nil {
				return fmt.Errorf("builder: invalid image width %q: %w", val, err)
			}
			policy = render.ImageSizePolicy{Kind: render.ImageWidthScaled, Ratio: float64(n) / 100}
		case "no_background":
			noBackground = true
		}
	}

	*chunk = append(*chunk, render.RenderImage{
		Image:        render.Image{Path: el.ImagePath},
		Policy:       policy,
		NoBackground: noBackground,
	})
	return nil
}

// footerOperations renders the per-slide footer band: exit any open column
// layout, pop back to the base margin, then draw the dynamic footer content
// at the bottom row.
func (b *Builder) footerOperations(st *slideState) []render.Operation {
	return []render.Operation{
		render.ExitLayout{},
		render.PopMargin{},
		render.JumpToBottomRow{Index: 0},
		render.RenderDynamic{Source: footerSource{style: b.opts.Theme.Footer.Style, title: st.title}},
	}
}

// footerSource is a RenderDynamic producer for the footer band: it draws the
// slide title as one line at the current cursor. It ignores the window size
// and draws no slide number.
type footerSource struct {
	style theme.TextStyle
	title string
}

func (f footerSource) AsRenderOperations(size render.WindowSize) []render.Operation {
	line := render.Line{{Content: f.title, Style: f.style}}
	return []render.Operation{render.RenderText{Line: render.WeightedLine{Line: line}}}
}

// DiffableContent implements render.Diffable: the footer only ever changes
// when the slide title it carries changes.
func (f footerSource) DiffableContent() string { return f.title }

// modalSource is a RenderDynamic producer wrapping Markdown rendered once
// (at modal-build time, not per-frame) through glamour — the teacher's
// markdownRenderer pattern in internal/tui/tui.go's rebuildRenderer,
// narrowed here to the two overlay modals rather than the whole UI (see
// SPEC_FULL.md §11: the core engine keeps owning cursor-level layout for
// everything else). glamour's output already carries its own ANSI escapes,
// so each line is marked ANSI and handed to the engine verbatim instead of
// being re-styled.
type modalSource struct {
	markdown string
	lines    []string
}

func newModalSource(md string) modalSource {
	rendered := md
	if r, err := glamour.NewTermRenderer(glamour.WithStylePath("dark"), glamour.WithWordWrap(88)); err == nil {
		if out, err := r.Render(md); err == nil {
			rendered = out
		}
	}
	return modalSource{markdown: md, lines: strings.Split(strings.TrimRight(rendered, "\n"), "\n")}
}

func (m modalSource) AsRenderOperations(render.WindowSize) []render.Operation {
	ops := make([]render.Operation, 0, len(m.lines)*2)
	for _, line := range m.lines {
		ops = append(ops, render.RenderText{Line: render.WeightedLine{Line: render.Line{{Content: line, ANSI: true}}}})
		ops = append(ops, render.RenderLineBreak{})
	}
	return ops
}

// DiffableContent implements render.Diffable: the modal only changes when
// its source Markdown changes (e.g. the slide index after an edit).
func (m modalSource) DiffableContent() string { return m.markdown }

func (b *Builder) buildSlideIndexModal(slides []Slide) Slide {
	var md strings.Builder
	md.WriteString("# Slide index\n\n")
	for i, s := range slides {
		title := s.Title
		if title == "" {
			title = "untitled"
		}
		fmt.Fprintf(&md, "%3d. %s\n", i+1, title)
	}
	ops := []render.Operation{render.ClearScreen{}, render.RenderDynamic{Source: newModalSource(md.String())}}
	return Slide{Title: "Slide index", Chunks: []SlideChunk{{Operations: ops}}}
}

func (b *Builder) buildKeyBindingsModal() Slide {
	md := "# Key bindings\n\n" +
		"| Action | Keys |\n" +
		"|---|---|\n" +
		"| Next slide | Right, Space, PageDown, j |\n" +
		"| Previous slide | Left, PageUp, k |\n" +
		"| First slide | gg |\n" +
		"| Last slide | G |\n" +
		"| Slide index | Tab |\n" +
		"| Key bindings | ? |\n" +
		"| Run interactive snippet | e |\n" +
		"| Hard reload | Ctrl-R |\n" +
		"| Exit | q, Ctrl-C |\n"
	ops := []render.Operation{render.ClearScreen{}, render.RenderDynamic{Source: newModalSource(md)}}
	return Slide{Title: "Key bindings", Chunks: []SlideChunk{{Operations: ops}}}
}
