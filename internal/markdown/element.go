// Package markdown is the default external Markdown tokenizer the builder
// consumes: spec.md declares Markdown tokenization out of scope for the
// core and specifies only the flat MarkdownElement stream contract. This
// package supplies that producer, built on top of goldmark.
package markdown

// ElementKind tags which MarkdownElement variant is populated.
type ElementKind int

const (
	KindHeading ElementKind = iota
	KindSetexHeading
	KindParagraph
	KindList
	KindTable
	KindBlockQuote
	KindAlert
	KindImage
	KindSnippet
	KindThematicBreak
	KindComment
	KindFrontMatter
)

// Position is a 1-based line in the originating source, attached to
// every element so directive errors can carry a source position.
type Position struct {
	Path string
	Line int
}

// InlineSpan is one run of inline-styled text within a line (bold, italic,
// code, link, plain).
type InlineSpan struct {
	Text   string
	Bold   bool
	Italic bool
	Code   bool
	Strike bool
	Link   string // non-empty if this span is a link

	// Superscript/FgColor/BgColor come from the narrow inline-HTML
	// passthrough allowlist (<span style="...">, <sup>) — see
	// internal/markdown's htmlState. FgColor/BgColor are raw color tokens
	// (hex or named), resolved by internal/builder the same way a theme
	// color would be.
	Superscript bool
	FgColor     string
	BgColor     string
}

// Line is a sequence of inline spans forming one logical source line
// (before any width-based wrapping the render engine later performs).
type Line []InlineSpan

// ListItem is one entry of a (possibly nested) list.
type ListItem struct {
	Lines    []Line
	Ordered  bool
	Number   int // only meaningful when Ordered
	Depth    int
	Children []ListItem
}

// TableRow is one row of a Table element.
type TableRow []Line

// AlertKind mirrors theme.AlertKind without importing internal/theme here,
// keeping the markdown package free of a render-side dependency.
type AlertKind string

// Element is one item of the flat stream the builder consumes. Exactly one
// of the Kind-tagged fields is meaningful per element, selected by Kind.
type Element struct {
	Kind ElementKind
	Pos  Position

	// Heading / SetexHeading
	HeadingLevel int
	HeadingText  Line

	// Paragraph
	ParagraphLines []Line

	// List
	ListItems []ListItem

	// Table
	TableHeader TableRow
	TableRows   []TableRow

	// BlockQuote / Alert
	QuoteLines []Line
	AlertKind  AlertKind
	AlertTitle string

	// Image
	ImagePath  string
	ImageTitle string // carries attributes like "image:width:50%"

	// Snippet
	SnippetLanguage string
	SnippetInfo     string // the full fenced-code info string, attrs unparsed
	SnippetContents string

	// Comment
	CommentBody string

	// FrontMatter
	FrontMatterYAML string
}
