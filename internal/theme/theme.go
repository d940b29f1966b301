// Package theme derives concrete layout and style primitives from a
// normalized portfolio theme.
package theme

import (
	"strings"

	"jobfolio/internal/model"
)

// FontFamily is the logical font variant driving the document style class.
type FontFamily string

const (
	FontSans FontFamily = "sans"
	FontMono FontFamily = "mono"
)

// Render-time fallbacks; never written back into the canonical theme.
const (
	DefaultWidth         = "100%"
	DefaultMaxWidth      = "1280px"
	DefaultMargin        = "0 auto"
	DefaultDisplay       = "flex"
	DefaultFlexDirection = "column"
	DefaultAlignItems    = "center"
)

// DefaultPalette is indexed positionally: primary, secondary, accent.
var DefaultPalette = [3]string{"#1917fc", "#134331", "#ed2f25"}

type Resolved struct {
	Width         string     `json:"width"`
	MaxWidth      string     `json:"maxWidth"`
	Margin        string     `json:"margin"`
	Display       string     `json:"display"`
	FlexDirection string     `json:"flexDirection"`
	AlignItems    string     `json:"alignItems"`
	Palette       []string   `json:"palette"`
	Font          FontFamily `json:"font"`
	RawFont       string     `json:"rawFont,omitempty"`
}

// Resolve applies the fallback chain to every layout primitive. A nil theme
// resolves to all defaults.
func Resolve(t *model.Theme) Resolved {
	if t == nil {
		t = &model.Theme{}
	}
	palette := make([]string, len(t.ColorPalette))
	copy(palette, t.ColorPalette)
	return Resolved{
		Width:         or(t.Width, DefaultWidth),
		MaxWidth:      or(t.MaxWidth, DefaultMaxWidth),
		Margin:        or(t.Margin, DefaultMargin),
		Display:       or(t.Display, DefaultDisplay),
		FlexDirection: or(t.FlexDirection, DefaultFlexDirection),
		AlignItems:    or(t.AlignItems, DefaultAlignItems),
		Palette:       palette,
		Font:          ClassifyFont(t.Font),
		RawFont:       t.Font,
	}
}

// Color returns palette entry i, falling back to DefaultPalette[i].
func (r Resolved) Color(i int) string {
	if i >= 0 && i < len(r.Palette) && strings.TrimSpace(r.Palette[i]) != "" {
		return r.Palette[i]
	}
	if i >= 0 && i < len(DefaultPalette) {
		return DefaultPalette[i]
	}
	return DefaultPalette[0]
}

func (r Resolved) Primary() string   { return r.Color(0) }
func (r Resolved) Secondary() string { return r.Color(1) }
func (r Resolved) Accent() string    { return r.Color(2) }

// FontClass is the document-level style class for the font family.
func (r Resolved) FontClass() string {
	if r.Font == FontMono {
		return "font-mono"
	}
	return "font-sans"
}

// PaletteAttr joins the resolved palette for a data attribute.
func (r Resolved) PaletteAttr() string {
	return strings.Join(r.Palette, ",")
}

// ParsePalette accepts a comma separated string or a sequence of strings.
// Any other shape, including a sequence holding non-strings, yields an empty
// (non-nil) slice.
func ParsePalette(v interface{}) []string {
	switch p := v.(type) {
	case string:
		out := []string{}
		for _, part := range strings.Split(p, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		out := make([]string, len(p))
		copy(out, p)
		return out
	case []interface{}:
		out := make([]string, 0, len(p))
		for _, it := range p {
			s, ok := it.(string)
			if !ok {
				return []string{}
			}
			out = append(out, s)
		}
		return out
	}
	return []string{}
}

// ClassifyFont maps free text onto a font family. It never fails: nil,
// non-strings and blank text are sans.
func ClassifyFont(v interface{}) FontFamily {
	s, ok := v.(string)
	if !ok {
		return FontSans
	}
	if strings.Contains(strings.ToLower(s), "mono") {
		return FontMono
	}
	return FontSans
}

func or(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
