package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Flag is a single text-format bit.
type Flag uint8

const (
	FlagBold Flag = 1 << iota
	FlagItalics
	FlagUnderline
	FlagStrikethrough
	FlagCode
	FlagLink
	FlagSuperscript
)

// TextStyle is a bit-flag set plus a size and a foreground/background pair.
// Styles merge: flags OR, colors favor the later non-empty (see Colors.Merge).
type TextStyle struct {
	flags  Flag
	Size   uint8 // 1..7, 0 means "unset / inherit"
	Colors Colors
}

// With returns a copy of s with flag set.
func (s TextStyle) With(flag Flag) TextStyle {
	s.flags |= flag
	return s
}

// Has reports whether flag is set.
func (s TextStyle) Has(flag Flag) bool { return s.flags&flag != 0 }

// WithColors returns a copy of s using colors.
func (s TextStyle) WithColors(c Colors) TextStyle {
	s.Colors = c
	return s
}

// WithSize returns a copy of s with the given font size, clamped to 1..7.
func (s TextStyle) WithSize(size uint8) TextStyle {
	switch {
	case size < 1:
		size = 1
	case size > 7:
		size = 7
	}
	s.Size = size
	return s
}

// Merge combines s with other: flags OR together, colors favor other's
// non-zero values, size takes other's value when set.
func (s TextStyle) Merge(other TextStyle) TextStyle {
	out := s
	out.flags |= other.flags
	out.Colors = s.Colors.Merge(other.Colors)
	if other.Size != 0 {
		out.Size = other.Size
	}
	return out
}

// Lipgloss renders s as a lipgloss.Style against the given color profile.
func (s TextStyle) Lipgloss(profile termenv.Profile) lipgloss.Style {
	st := lipgloss.NewStyle()
	if s.Has(FlagBold) {
		st = st.Bold(true)
	}
	if s.Has(FlagItalics) {
		st = st.Italic(true)
	}
	if s.Has(FlagUnderline) || s.Has(FlagLink) {
		st = st.Underline(true)
	}
	if s.Has(FlagStrikethrough) {
		st = st.Strikethrough(true)
	}
	if !s.Colors.Foreground.IsZero() {
		st = st.Foreground(s.Colors.Foreground.Lipgloss(profile))
	}
	if !s.Colors.Background.IsZero() {
		st = st.Background(s.Colors.Background.Lipgloss(profile))
	}
	return st
}
