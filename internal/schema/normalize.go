// Package schema converts between the loosely typed portfolio documents the
// backend produces and the canonical model the renderer and editor work on.
package schema

import (
	"encoding/json"
	"fmt"

	"jobfolio/internal/model"
	"jobfolio/internal/theme"
)

// Normalize turns an arbitrary document into the canonical schema. It never
// fails: malformed fields are left out of the typed model and kept in the
// owning record's Extra bag. Accepted inputs are decoded JSON objects, raw
// JSON ([]byte, json.RawMessage, string) and already normalized schemas.
//
// Normalize is idempotent.
func Normalize(raw interface{}) model.PortfolioSchema {
	switch v := raw.(type) {
	case model.PortfolioSchema:
		return normalizeDoc(Canonical(v))
	case *model.PortfolioSchema:
		if v == nil {
			return normalizeDoc(nil)
		}
		return normalizeDoc(Canonical(*v))
	case map[string]interface{}:
		return normalizeDoc(v)
	case model.Record:
		return normalizeDoc(v)
	case json.RawMessage:
		return normalizeDoc(decodeObject(v))
	case []byte:
		return normalizeDoc(decodeObject(v))
	case string:
		return normalizeDoc(decodeObject([]byte(v)))
	}
	return normalizeDoc(nil)
}

func decodeObject(b []byte) map[string]interface{} {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	m, _ := v.(map[string]interface{})
	return m
}

func normalizeDoc(m map[string]interface{}) model.PortfolioSchema {
	r := newReader(m)
	s := model.PortfolioSchema{
		SchemaVersion: r.str("schemaVersion", "schema_version"),
		Sections:      []model.Section{},
	}
	if p, ok := r.obj("profile"); ok {
		s.Profile = copyMap(p)
	}
	t, _ := r.obj("theme")
	s.Theme = normalizeTheme(t)
	if arr, ok := r.list("sections"); ok {
		s.Sections = make([]model.Section, 0, len(arr))
		for _, e := range arr {
			s.Sections = append(s.Sections, normalizeSection(e))
		}
	}
	s.Extra = r.extra()
	return s
}

func normalizeTheme(m map[string]interface{}) model.Theme {
	r := newReader(m)
	t := model.Theme{
		Width:         r.str("width"),
		MaxWidth:      r.str("maxWidth", "max_width"),
		Margin:        r.str("margin"),
		Display:       r.str("display"),
		FlexDirection: r.str("flexDirection", "flex_direction"),
		AlignItems:    r.str("alignItems", "align_items"),
		ColorPalette:  palette(r, "colorPalette", "color_palette"),
		Font:          r.str("font"),
		Style:         r.str("style"),
		Tone:          r.str("tone"),
	}
	t.Extra = r.extra()
	return t
}

// palette resolves the first key holding a non-empty palette. Values that
// are not a palette shape at all stay unconsumed.
func palette(r *reader, keys ...string) []string {
	var val []string
	for _, k := range keys {
		v, ok := r.src[k]
		if !ok {
			continue
		}
		if v != nil && !isPaletteShape(v) {
			continue
		}
		r.used[k] = true
		if p := theme.ParsePalette(v); val == nil && len(p) > 0 {
			val = p
		}
	}
	if val == nil {
		return []string{}
	}
	r.consume(keys)
	return val
}

func isPaletteShape(v interface{}) bool {
	switch p := v.(type) {
	case string, []string:
		return true
	case []interface{}:
		for _, it := range p {
			if _, ok := it.(string); !ok {
				return false
			}
		}
		return true
	}
	return false
}

func normalizeSection(e interface{}) model.Section {
	var m map[string]interface{}
	switch v := e.(type) {
	case map[string]interface{}:
		m = v
	case model.Record:
		m = v
	default:
		return model.Section{Raw: deepCopy(e)}
	}

	r := newReader(m)
	sec := model.Section{
		ID:       r.str("id"),
		Type:     r.str("type"),
		Priority: r.str("priority"),
	}
	if p, ok := r.obj("props"); ok {
		sec.Props = copyMap(p)
	}
	if arr, ok := r.list("items"); ok {
		sec.Items = normalizeItems(arr)
	}
	if l, ok := r.obj("layout"); ok {
		sec.Layout = normalizeLayout(l)
	}
	if il, ok := r.obj("itemLayout", "item_layout"); ok {
		sec.ItemLayout = normalizeItemLayout(il)
	}
	sec.Extra = r.extra()
	return sec
}

// normalizeItems keeps list order. Bare strings (skills authored as
// ["Go", "SQL"]) become name records; other scalars are stringified the
// same way.
func normalizeItems(arr []interface{}) []model.Record {
	out := make([]model.Record, 0, len(arr))
	for _, it := range arr {
		switch v := it.(type) {
		case map[string]interface{}:
			out = append(out, model.Record(copyMap(v)))
		case model.Record:
			out = append(out, model.Record(copyMap(v)))
		case string:
			out = append(out, model.Record{"name": v})
		case nil:
			out = append(out, model.Record{})
		default:
			out = append(out, model.Record{"name": fmt.Sprint(v)})
		}
	}
	return out
}

func normalizeLayout(m map[string]interface{}) *model.Layout {
	r := newReader(m)
	l := &model.Layout{
		Type:           r.str("type"),
		Direction:      r.str("direction"),
		Gap:            r.str("gap"),
		Align:          r.str("align"),
		Justify:        r.str("justify"),
		Width:          r.str("width"),
		MaxWidth:       r.str("maxWidth", "max_width"),
		Margin:         r.str("margin"),
		Padding:        r.str("padding"),
		AlignItems:     r.str("alignItems", "align_items"),
		JustifyContent: r.str("justifyContent", "justify_content"),
	}
	if c, ok := r.obj("columns"); ok {
		cr := newReader(c)
		l.Columns = &model.Columns{Desktop: cr.integer("desktop"), Mobile: cr.integer("mobile")}
		l.Columns.Extra = cr.extra()
	}
	if s, ok := r.obj("slots"); ok {
		l.Slots = make(model.Slots, len(s))
		for region, v := range s {
			l.Slots[region] = slotList(v)
		}
	}
	if d, ok := r.obj("desktop"); ok {
		l.Desktop = normalizeLayout(d)
	}
	if mo, ok := r.obj("mobile"); ok {
		l.Mobile = normalizeLayout(mo)
	}
	l.Extra = r.extra()
	return l
}

func normalizeItemLayout(m map[string]interface{}) *model.ItemLayout {
	r := newReader(m)
	il := &model.ItemLayout{Type: r.str("type")}
	if l, ok := r.obj("layout"); ok {
		il.Layout = normalizeLayout(l)
	}
	if arr, ok := r.list("slots"); ok {
		il.Slots = slotList(arr)
	}
	if c, ok := r.obj("constraints"); ok {
		cr := newReader(c)
		il.Constraints = &model.Constraints{MaxWidth: cr.str("maxWidth", "max_width")}
		il.Constraints.Extra = cr.extra()
	}
	il.Extra = r.extra()
	return il
}

// slotList accepts a single slot id, a slot record, or a sequence of either.
func slotList(v interface{}) []model.SlotRef {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return []model.SlotRef{{Name: t, Bare: true}}
	case map[string]interface{}:
		return []model.SlotRef{slotRef(t)}
	case model.Record:
		return []model.SlotRef{slotRef(t)}
	}
	arr, ok := asList(v)
	if !ok {
		return []model.SlotRef{{Raw: deepCopy(v)}}
	}
	out := make([]model.SlotRef, 0, len(arr))
	for _, e := range arr {
		switch s := e.(type) {
		case string:
			out = append(out, model.SlotRef{Name: s, Bare: true})
		case map[string]interface{}:
			out = append(out, slotRef(s))
		default:
			out = append(out, model.SlotRef{Raw: deepCopy(e)})
		}
	}
	return out
}

func slotRef(m map[string]interface{}) model.SlotRef {
	r := newReader(m)
	ref := model.SlotRef{
		Name:     r.str("name"),
		Type:     r.str("type"),
		Optional: r.boolean("optional"),
	}
	ref.Extra = r.extra()
	return ref
}
