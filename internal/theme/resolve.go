package theme

import "strings"

// Resolve turns a flattened Raw theme (after `extends` merging) into a
// fully concrete Theme: every palette/class reference substituted, every
// alignment parsed, every map fully populated.
func Resolve(name string, raw Raw) (*Theme, error) {
	palette, err := NewPalette(raw.Palette, raw.Classes)
	if err != nil {
		return nil, err
	}

	t := &Theme{
		Name:            name,
		Alerts:          map[AlertKind]AlertStyle{},
		SpacesPerIndent: 3,
		alignments:      map[ElementType]Alignment{},
	}

	resolveOne := func(raw *RawElementStyle) (ElementStyle, error) {
		if raw == nil {
			return ElementStyle{}, nil
		}
		return resolveElementStyle(palette, *raw)
	}

	if t.DefaultStyle, err = resolveOne(raw.DefaultStyle); err != nil {
		return nil, err
	}
	if t.SlideTitle, err = resolveOne(raw.SlideTitle); err != nil {
		return nil, err
	}
	if t.Code, err = resolveOne(raw.Code); err != nil {
		return nil, err
	}
	if t.ExecutionOutput, err = resolveOne(raw.ExecutionOutput); err != nil {
		return nil, err
	}
	if t.IntroSlide, err = resolveOne(raw.IntroSlide); err != nil {
		return nil, err
	}
	if t.Footer, err = resolveOne(raw.Footer); err != nil {
		return nil, err
	}
	if t.Modals, err = resolveOne(raw.Modals); err != nil {
		return nil, err
	}
	if t.Typst, err = resolveOne(raw.Typst); err != nil {
		return nil, err
	}
	if t.Mermaid, err = resolveOne(raw.Mermaid); err != nil {
		return nil, err
	}

	for key, rawStyle := range raw.Headings {
		idx, ok := headingIndex(key)
		if !ok {
			continue
		}
		style, err := resolveElementStyle(palette, rawStyle)
		if err != nil {
			return nil, err
		}
		t.Headings[idx] = style
	}

	if raw.BlockQuote != nil {
		style, err := resolveElementStyle(palette, raw.BlockQuote.RawElementStyle)
		if err != nil {
			return nil, err
		}
		t.BlockQuote = style
		t.BlockQuotePrefix = raw.BlockQuote.Prefix
		if t.BlockQuotePrefix == "" {
			t.BlockQuotePrefix = "▍ "
		}
	}

	for kind, rawAlert := range raw.Alert {
		style, err := resolveElementStyle(palette, rawAlert.Style)
		if err != nil {
			return nil, err
		}
		t.Alerts[AlertKind(kind)] = AlertStyle{Icon: rawAlert.Icon, Title: rawAlert.Title, Block: style}
	}

	for key, rawAlign := range raw.Alignments {
		align, err := resolveAlignment(rawAlign)
		if err != nil {
			return nil, err
		}
		t.alignments[ElementType(key)] = align
	}

	return t, nil
}

func headingIndex(key string) (int, bool) {
	switch strings.ToLower(key) {
	case "h1":
		return 0, true
	case "h2":
		return 1, true
	case "h3":
		return 2, true
	case "h4":
		return 3, true
	case "h5":
		return 4, true
	case "h6":
		return 5, true
	default:
		return 0, false
	}
}

func resolveElementStyle(p *Palette, raw RawElementStyle) (ElementStyle, error) {
	if strings.HasPrefix(raw.Foreground, ".") {
		classed, err := p.ResolveClass(raw.Foreground)
		if err != nil {
			return ElementStyle{}, err
		}
		raw.Foreground = classed.Foreground
		if !raw.Bold {
			raw.Bold = classed.Bold
		}
	}

	style := TextStyle{}
	if raw.Bold {
		style = style.With(FlagBold)
	}
	if raw.Italics {
		style = style.With(FlagItalics)
	}
	if raw.Underline {
		style = style.With(FlagUnderline)
	}
	if raw.Strikethrough {
		style = style.With(FlagStrikethrough)
	}

	var colors Colors
	if raw.Foreground != "" {
		c, err := p.Resolve(raw.Foreground)
		if err != nil {
			return ElementStyle{}, err
		}
		colors.Foreground = c
	}
	if raw.Background != "" {
		c, err := p.Resolve(raw.Background)
		if err != nil {
			return ElementStyle{}, err
		}
		colors.Background = c
	}
	style.Colors = colors

	align := Alignment{Kind: AlignLeft}
	if raw.Alignment != nil {
		var err error
		align, err = resolveAlignment(*raw.Alignment)
		if err != nil {
			return ElementStyle{}, err
		}
	}

	return ElementStyle{Style: style, Alignment: align}, nil
}

func resolveAlignment(raw RawAlignment) (Alignment, error) {
	switch strings.ToLower(raw.Kind) {
	case "right":
		m, err := parseMargin(raw.Margin)
		if err != nil {
			return Alignment{}, err
		}
		return Alignment{Kind: AlignRight, Margin: m}, nil
	case "center":
		mm, err := parseMargin(raw.MinimumMargin)
		if err != nil {
			return Alignment{}, err
		}
		return Alignment{Kind: AlignCenter, MinimumMargin: mm, MinimumSize: raw.MinimumSize}, nil
	case "left", "":
		m, err := parseMargin(raw.Margin)
		if err != nil {
			return Alignment{}, err
		}
		return Alignment{Kind: AlignLeft, Margin: m}, nil
	default:
		return Alignment{}, &ErrUnresolvedPalette{Ref: raw.Kind}
	}
}

// parseMargin parses "N" (fixed columns) or "N%" (percent of outer width).
func parseMargin(raw string) (Margin, error) {
	if raw == "" {
		return Margin{}, nil
	}
	if strings.HasSuffix(raw, "%") {
		var pct uint8
		if _, err := parseUint(strings.TrimSuffix(raw, "%"), &pct); err != nil {
			return Margin{}, err
		}
		return Margin{Percent: pct}, nil
	}
	var fixed uint16
	if _, err := parseUint(raw, &fixed); err != nil {
		return Margin{}, err
	}
	return Margin{Fixed: fixed}, nil
}

func parseUint[T ~uint8 | ~uint16](raw string, out *T) (T, error) {
	var n uint64
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, &ErrUnresolvedPalette{Ref: raw}
		}
		n = n*10 + uint64(r-'0')
	}
	*out = T(n)
	return *out, nil
}
