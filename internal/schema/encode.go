package schema

import (
	"strings"

	"jobfolio/internal/model"
)

// Backend defaults injected by Denormalize when the canonical document lacks
// a field the backend contract requires.
const (
	DefaultRole          = "Developer"
	DefaultSchemaVersion = "1.0"
)

type keyStyle int

const (
	camelKeys keyStyle = iota
	snakeKeys
)

func (k keyStyle) pick(camel, snake string) string {
	if k == snakeKeys {
		return snake
	}
	return camel
}

// Canonical encodes s as a camelCase document. Extra keys are emitted first
// and typed fields override them, so Normalize(Canonical(s)) equals s.
func Canonical(s model.PortfolioSchema) map[string]interface{} {
	return encodeDoc(s, camelKeys)
}

// Clone returns a deep copy of s sharing no maps or slices with it.
func Clone(s model.PortfolioSchema) model.PortfolioSchema {
	return normalizeDoc(Canonical(s))
}

type DenormalizeOptions struct {
	DefaultRole          string
	DefaultSchemaVersion string
}

// Denormalize encodes s in the backend's snake_case convention. The colour
// palette is written as a comma separated string. Fields the backend
// requires but the canonical schema does not carry are filled in:
// profile.role, schema_version and an empty layout on every section.
func Denormalize(s model.PortfolioSchema, opts DenormalizeOptions) map[string]interface{} {
	if opts.DefaultRole == "" {
		opts.DefaultRole = DefaultRole
	}
	if opts.DefaultSchemaVersion == "" {
		opts.DefaultSchemaVersion = DefaultSchemaVersion
	}

	out := encodeDoc(s, snakeKeys)

	if v, _ := out["schema_version"].(string); v == "" {
		out["schema_version"] = opts.DefaultSchemaVersion
	}
	switch p := out["profile"].(type) {
	case map[string]interface{}:
		if model.Str(p, "role") == "" {
			p["role"] = opts.DefaultRole
		}
	case nil:
		out["profile"] = map[string]interface{}{"role": opts.DefaultRole}
	}
	if secs, ok := out["sections"].([]interface{}); ok {
		for _, e := range secs {
			m, ok := e.(map[string]interface{})
			if !ok {
				continue
			}
			if l, ok := m["layout"]; !ok || l == nil {
				m["layout"] = map[string]interface{}{}
			}
		}
	}
	return out
}

func encodeDoc(s model.PortfolioSchema, ks keyStyle) map[string]interface{} {
	out := copyMap(s.Extra)
	putStr(out, ks.pick("schemaVersion", "schema_version"), s.SchemaVersion)
	if s.Profile != nil {
		out["profile"] = copyMap(s.Profile)
	}
	th := encodeTheme(s.Theme, ks)
	put(out, "theme", th, len(th) == 0)

	secs := make([]interface{}, 0, len(s.Sections))
	for _, sec := range s.Sections {
		secs = append(secs, encodeSection(sec, ks))
	}
	put(out, "sections", secs, len(secs) == 0)
	return out
}

func encodeTheme(t model.Theme, ks keyStyle) map[string]interface{} {
	out := copyMap(t.Extra)
	putStr(out, "width", t.Width)
	putStr(out, ks.pick("maxWidth", "max_width"), t.MaxWidth)
	putStr(out, "margin", t.Margin)
	putStr(out, "display", t.Display)
	putStr(out, ks.pick("flexDirection", "flex_direction"), t.FlexDirection)
	putStr(out, ks.pick("alignItems", "align_items"), t.AlignItems)
	if len(t.ColorPalette) > 0 {
		if ks == snakeKeys {
			out["color_palette"] = strings.Join(t.ColorPalette, ",")
		} else {
			out["colorPalette"] = deepCopy(t.ColorPalette)
		}
	}
	putStr(out, "font", t.Font)
	putStr(out, "style", t.Style)
	putStr(out, "tone", t.Tone)
	return out
}

func encodeSection(sec model.Section, ks keyStyle) interface{} {
	if sec.Raw != nil {
		return deepCopy(sec.Raw)
	}
	out := copyMap(sec.Extra)
	putStr(out, "id", sec.ID)
	putStr(out, "type", sec.Type)
	putStr(out, "priority", sec.Priority)
	if sec.Props != nil {
		out["props"] = copyMap(sec.Props)
	}
	if sec.Items != nil {
		out["items"] = deepCopy(sec.Items)
	}
	if sec.Layout != nil {
		out["layout"] = encodeLayout(sec.Layout, ks)
	}
	if sec.ItemLayout != nil {
		out[ks.pick("itemLayout", "item_layout")] = encodeItemLayout(sec.ItemLayout, ks)
	}
	return out
}

func encodeLayout(l *model.Layout, ks keyStyle) map[string]interface{} {
	out := copyMap(l.Extra)
	putStr(out, "type", l.Type)
	putStr(out, "direction", l.Direction)
	putStr(out, "gap", l.Gap)
	putStr(out, "align", l.Align)
	putStr(out, "justify", l.Justify)
	putStr(out, "width", l.Width)
	putStr(out, ks.pick("maxWidth", "max_width"), l.MaxWidth)
	putStr(out, "margin", l.Margin)
	putStr(out, "padding", l.Padding)
	putStr(out, ks.pick("alignItems", "align_items"), l.AlignItems)
	putStr(out, ks.pick("justifyContent", "justify_content"), l.JustifyContent)
	if c := l.Columns; c != nil {
		cols := copyMap(c.Extra)
		putInt(cols, "desktop", c.Desktop)
		putInt(cols, "mobile", c.Mobile)
		out["columns"] = cols
	}
	if l.Slots != nil {
		slots := make(map[string]interface{}, len(l.Slots))
		for region, refs := range l.Slots {
			slots[region] = encodeSlots(refs)
		}
		out["slots"] = slots
	}
	if l.Desktop != nil {
		out["desktop"] = encodeLayout(l.Desktop, ks)
	}
	if l.Mobile != nil {
		out["mobile"] = encodeLayout(l.Mobile, ks)
	}
	return out
}

func encodeItemLayout(il *model.ItemLayout, ks keyStyle) map[string]interface{} {
	out := copyMap(il.Extra)
	putStr(out, "type", il.Type)
	if il.Layout != nil {
		out["layout"] = encodeLayout(il.Layout, ks)
	}
	if il.Slots != nil {
		out["slots"] = encodeSlots(il.Slots)
	}
	if c := il.Constraints; c != nil {
		cons := copyMap(c.Extra)
		putStr(cons, ks.pick("maxWidth", "max_width"), c.MaxWidth)
		out["constraints"] = cons
	}
	return out
}

func encodeSlots(refs []model.SlotRef) interface{} {
	if refs == nil {
		return nil
	}
	out := make([]interface{}, 0, len(refs))
	for _, ref := range refs {
		switch {
		case ref.Raw != nil:
			out = append(out, deepCopy(ref.Raw))
		case ref.Bare:
			out = append(out, ref.Name)
		default:
			m := copyMap(ref.Extra)
			putStr(m, "name", ref.Name)
			putStr(m, "type", ref.Type)
			if ref.Optional {
				m["optional"] = true
			}
			out = append(out, m)
		}
	}
	return out
}

func putStr(m map[string]interface{}, key, v string) {
	if v != "" {
		m[key] = v
	}
}

func putInt(m map[string]interface{}, key string, v int) {
	if v != 0 {
		m[key] = v
	}
}

// put writes v unless it is empty and an extra key already occupies the slot.
func put(m map[string]interface{}, key string, v interface{}, empty bool) {
	if _, clash := m[key]; empty && clash {
		return
	}
	m[key] = v
}
