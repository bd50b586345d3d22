package theme

import "strings"

// Palette resolves symbolic color references (`p:accent`) and classed style
// references (`.warning`) against a theme's declared `palette` and
// `classes` maps. Resolution is total: any name the palette doesn't know
// about is a build error, never a silent fallback.
type Palette struct {
	named   map[string]Color
	classes map[string]RawElementStyle
}

// NewPalette builds a Palette from a theme's raw `palette`/`classes` maps.
// Palette entries may themselves reference other palette entries by name,
// resolved eagerly here so later lookups are O(1).
func NewPalette(named map[string]string, classes map[string]RawElementStyle) (*Palette, error) {
	p := &Palette{named: map[string]Color{}, classes: classes}
	pending := map[string]string{}
	for k, v := range named {
		pending[k] = v
	}
	// Resolve in passes: a palette entry may point at another entry.
	for len(pending) > 0 {
		progressed := false
		for name, raw := range pending {
			resolved, ok := p.tryResolveRaw(raw)
			if !ok {
				continue
			}
			p.named[name] = resolved
			delete(pending, name)
			progressed = true
		}
		if !progressed {
			for name := range pending {
				return nil, &ErrUnresolvedPalette{Ref: name}
			}
		}
	}
	return p, nil
}

func (p *Palette) tryResolveRaw(raw string) (Color, bool) {
	if strings.HasPrefix(raw, "p:") {
		c, ok := p.named[strings.TrimPrefix(raw, "p:")]
		return c, ok
	}
	c, err := ParseColor(raw)
	if err != nil {
		return Color{}, false
	}
	return c, true
}

// Resolve turns a raw color token into a concrete Color, following `p:`
// palette references. An unresolved reference is a named build error.
func (p *Palette) Resolve(raw string) (Color, error) {
	if raw == "" {
		return Color{}, nil
	}
	if strings.HasPrefix(raw, "p:") {
		name := strings.TrimPrefix(raw, "p:")
		c, ok := p.named[name]
		if !ok {
			return Color{}, &ErrUnresolvedPalette{Ref: raw}
		}
		return c, nil
	}
	c, err := ParseColor(raw)
	if err != nil {
		return Color{}, &ErrUnresolvedPalette{Ref: raw}
	}
	return c, nil
}

// ResolveClass returns the element style registered under a `.name` class
// reference.
func (p *Palette) ResolveClass(name string) (RawElementStyle, error) {
	class := strings.TrimPrefix(name, ".")
	style, ok := p.classes[class]
	if !ok {
		return RawElementStyle{}, &ErrUnresolvedPalette{Ref: name}
	}
	return style, nil
}
