// Package theme resolves a declarative theme (colors, text styles,
// alignments, margins) into concrete values the render engine can apply
// without consulting a palette or an "extends" chain again.
package theme

import (
	"encoding/hex"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Color is either one of the 16 named ANSI colors or a 24-bit RGB triple.
// Raw colors, as parsed from theme YAML, may also be a palette reference
// ("p:accent") or a class reference (".warning"); those are resolved away
// by Palette.Resolve before a Color ever reaches the render engine.
type Color struct {
	name    string // non-empty for named ANSI colors, empty for RGB
	r, g, b byte
	isRGB   bool
}

var namedANSI = map[string]string{
	"black": "0", "red": "1", "green": "2", "yellow": "3",
	"blue": "4", "magenta": "5", "cyan": "6", "white": "7",
	"grey": "8", "gray": "8",
	"dark_red": "1", "dark_green": "2", "dark_yellow": "3",
	"dark_blue": "4", "dark_magenta": "5", "dark_cyan": "6",
}

// ParseColor parses a raw color token (named ANSI, hex RGB, or palette/class
// reference). Palette and class references are returned unresolved and must
// go through Palette.Resolve before use.
func ParseColor(raw string) (Color, error) {
	if _, ok := namedANSI[raw]; ok {
		return Color{name: raw}, nil
	}
	b, err := hex.DecodeString(raw)
	if err != nil || len(b) != 3 {
		return Color{}, fmt.Errorf("theme: invalid color %q", raw)
	}
	return Color{isRGB: true, r: b[0], g: b[1], b: b[2]}, nil
}

// RGB builds a Color directly from components.
func RGB(r, g, b byte) Color { return Color{isRGB: true, r: r, g: g, b: b} }

// Named builds one of the 16 ANSI named colors.
func Named(name string) Color { return Color{name: name} }

// IsZero reports whether no color was ever set.
func (c Color) IsZero() bool { return c == Color{} }

// Lipgloss resolves the color, downgrading RGB to the given terminal color
// profile when necessary (e.g. a basic-ANSI terminal can't display 24-bit
// color, so TrueColor values are approximated to their nearest ANSI16 slot).
func (c Color) Lipgloss(profile termenv.Profile) lipgloss.Color {
	if c.IsZero() {
		return lipgloss.Color("")
	}
	if !c.isRGB {
		return lipgloss.Color(namedANSI[c.name])
	}
	hexStr := fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b)
	if profile == termenv.TrueColor {
		return lipgloss.Color(hexStr)
	}
	// Downgrade: ask termenv to convert to the terminal's best-supported
	// approximation, then hand lipgloss the resulting ANSI sequence's color.
	converted := profile.Color(hexStr)
	return lipgloss.Color(converted.Sequence(false))
}

// Colors is a foreground/background pair. Either side may be the zero Color
// (unset).
type Colors struct {
	Foreground Color
	Background Color
}

// Merge combines c with other, with other's non-zero colors taking priority
// — "colors favor the later non-empty" per the text-style merge rule.
func (c Colors) Merge(other Colors) Colors {
	out := c
	if !other.Foreground.IsZero() {
		out.Foreground = other.Foreground
	}
	if !other.Background.IsZero() {
		out.Background = other.Background
	}
	return out
}
