package theme

import "fmt"

// ElementStyle pairs a TextStyle with the Alignment it should be drawn at.
type ElementStyle struct {
	Style     TextStyle
	Alignment Alignment
}

// AlertKind names one of the configured alert block variants.
type AlertKind string

const (
	AlertNote      AlertKind = "note"
	AlertTip       AlertKind = "tip"
	AlertImportant AlertKind = "important"
	AlertWarning   AlertKind = "warning"
	AlertCaution   AlertKind = "caution"
)

// AlertStyle is one alert{type} entry: icon, title, and a block style.
type AlertStyle struct {
	Icon  string
	Title string
	Block ElementStyle
}

// Theme is the fully resolved set of styles a presentation is built
// against. All palette references have already been substituted and all
// `extends` chains already flattened by Load/Resolve — nothing downstream
// ever sees a raw theme again.
type Theme struct {
	Name string

	DefaultStyle    ElementStyle
	SlideTitle      ElementStyle
	Headings        [6]ElementStyle // h1..h6
	Code            ElementStyle
	ExecutionOutput ElementStyle
	BlockQuote      ElementStyle
	Alerts          map[AlertKind]AlertStyle
	IntroSlide      ElementStyle
	Footer          ElementStyle
	Modals          ElementStyle
	Typst           ElementStyle
	Mermaid         ElementStyle

	// BlockQuotePrefix is the left-hand marker repeated on each wrapped
	// block-quote line (e.g. "▍ ").
	BlockQuotePrefix string

	// SpacesPerIndent is the list-item indent unit; the builder applies it
	// unchanged at every depth and font size.
	SpacesPerIndent int

	alignments map[ElementType]Alignment
}

// Alignment returns the alignment configured for an element type, falling
// back to the default style's alignment when none is set.
func (t *Theme) Alignment(element ElementType) Alignment {
	if a, ok := t.alignments[element]; ok {
		return a
	}
	return t.DefaultStyle.Alignment
}

// Raw is the shape a theme is decoded from YAML into, before palette
// resolution and `extends` flattening. Field names mirror spec.md's
// theme surface (§4.A, §6 config keys).
type Raw struct {
	Extends string `yaml:"extends,omitempty"`

	Palette map[string]string          `yaml:"palette,omitempty"`
	Classes map[string]RawElementStyle `yaml:"classes,omitempty"`

	DefaultStyle    *RawElementStyle           `yaml:"default_style,omitempty"`
	SlideTitle      *RawElementStyle           `yaml:"slide_title,omitempty"`
	Headings        map[string]RawElementStyle `yaml:"headings,omitempty"`
	Code            *RawElementStyle           `yaml:"code,omitempty"`
	ExecutionOutput *RawElementStyle           `yaml:"execution_output,omitempty"`
	BlockQuote      *RawBlockQuote             `yaml:"block_quote,omitempty"`
	Alert           map[string]RawAlert        `yaml:"alert,omitempty"`
	IntroSlide      *RawElementStyle           `yaml:"intro_slide,omitempty"`
	Footer          *RawElementStyle           `yaml:"footer,omitempty"`
	Modals          *RawElementStyle           `yaml:"modals,omitempty"`
	Typst           *RawElementStyle           `yaml:"typst,omitempty"`
	Mermaid         *RawElementStyle           `yaml:"mermaid,omitempty"`

	Alignments map[string]RawAlignment `yaml:"alignment,omitempty"`
}

// RawElementStyle is the YAML shape of one styled element before resolution.
type RawElementStyle struct {
	Bold          bool          `yaml:"bold,omitempty"`
	Italics       bool          `yaml:"italics,omitempty"`
	Underline     bool          `yaml:"underline,omitempty"`
	Strikethrough bool          `yaml:"strikethrough,omitempty"`
	Foreground    string        `yaml:"foreground,omitempty"`
	Background    string        `yaml:"background,omitempty"`
	Alignment     *RawAlignment `yaml:"alignment,omitempty"`
}

// RawAlignment is the YAML shape of an Alignment.
type RawAlignment struct {
	Kind          string `yaml:"kind"` // left, right, center
	Margin        string `yaml:"margin,omitempty"`
	MinimumMargin string `yaml:"minimum_margin,omitempty"`
	MinimumSize   uint16 `yaml:"minimum_size,omitempty"`
}

// RawBlockQuote is block_quote's YAML shape: a style plus the wrap prefix.
type RawBlockQuote struct {
	RawElementStyle `yaml:",inline"`
	Prefix          string `yaml:"prefix,omitempty"`
}

// RawAlert is one alert{type} YAML entry.
type RawAlert struct {
	Icon  string          `yaml:"icon"`
	Title string          `yaml:"title"`
	Style RawElementStyle `yaml:"style,omitempty"`
}

// Merge overlays non-zero fields of other onto r, used to flatten `extends`
// chains: the base theme is r, other is the more-derived theme.
func (r Raw) Merge(other Raw) Raw {
	out := r
	if other.Palette != nil {
		merged := map[string]string{}
		for k, v := range r.Palette {
			merged[k] = v
		}
		for k, v := range other.Palette {
			merged[k] = v
		}
		out.Palette = merged
	}
	if other.Classes != nil {
		merged := map[string]RawElementStyle{}
		for k, v := range r.Classes {
			merged[k] = v
		}
		for k, v := range other.Classes {
			merged[k] = v
		}
		out.Classes = merged
	}
	if other.DefaultStyle != nil {
		out.DefaultStyle = other.DefaultStyle
	}
	if other.SlideTitle != nil {
		out.SlideTitle = other.SlideTitle
	}
	if other.Headings != nil {
		merged := map[string]RawElementStyle{}
		for k, v := range r.Headings {
			merged[k] = v
		}
		for k, v := range other.Headings {
			merged[k] = v
		}
		out.Headings = merged
	}
	if other.Code != nil {
		out.Code = other.Code
	}
	if other.ExecutionOutput != nil {
		out.ExecutionOutput = other.ExecutionOutput
	}
	if other.BlockQuote != nil {
		out.BlockQuote = other.BlockQuote
	}
	if other.Alert != nil {
		merged := map[string]RawAlert{}
		for k, v := range r.Alert {
			merged[k] = v
		}
		for k, v := range other.Alert {
			merged[k] = v
		}
		out.Alert = merged
	}
	if other.IntroSlide != nil {
		out.IntroSlide = other.IntroSlide
	}
	if other.Footer != nil {
		out.Footer = other.Footer
	}
	if other.Modals != nil {
		out.Modals = other.Modals
	}
	if other.Typst != nil {
		out.Typst = other.Typst
	}
	if other.Mermaid != nil {
		out.Mermaid = other.Mermaid
	}
	if other.Alignments != nil {
		merged := map[string]RawAlignment{}
		for k, v := range r.Alignments {
			merged[k] = v
		}
		for k, v := range other.Alignments {
			merged[k] = v
		}
		out.Alignments = merged
	}
	out.Extends = ""
	return out
}

// ErrExtensionLoop is returned when a theme's `extends` chain cycles back
// on itself.
type ErrExtensionLoop struct{ Themes []string }

func (e *ErrExtensionLoop) Error() string {
	return fmt.Sprintf("theme: extension loop among %v", e.Themes)
}

// ErrThemeNotFound is returned when an `extends` target cannot be located.
type ErrThemeNotFound struct{ Name string }

func (e *ErrThemeNotFound) Error() string {
	return fmt.Sprintf("theme: extended theme %q not found", e.Name)
}
