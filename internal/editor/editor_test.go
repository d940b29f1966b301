package editor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobfolio/internal/model"
	"jobfolio/internal/schema"
)

func source() model.PortfolioSchema {
	return schema.Normalize(map[string]interface{}{
		"schema_version": "1.0",
		"profile":        map[string]interface{}{"name": "Ada", "role": "Engineer"},
		"theme":          map[string]interface{}{"color_palette": "#111,#222", "font": "Inter", "glow": true},
		"sections": []interface{}{
			map[string]interface{}{
				"type": "navbar",
				"props": map[string]interface{}{
					"name":  "Ada",
					"links": []interface{}{map[string]interface{}{"label": "Blog", "url": "/blog"}},
				},
				"layout": map[string]interface{}{},
			},
			map[string]interface{}{
				"type":   "skills",
				"items":  []interface{}{map[string]interface{}{"name": "Go"}, map[string]interface{}{"name": "SQL"}},
				"layout": map[string]interface{}{},
			},
			map[string]interface{}{"type": "navbar", "props": map[string]interface{}{"name": "Second"}, "layout": map[string]interface{}{}},
			map[string]interface{}{"type": "timeline", "layout": map[string]interface{}{}, "custom": "keep"},
		},
	})
}

type recordingSaver struct {
	calls int
	err   error
	last  map[string]interface{}
}

func (s *recordingSaver) Save(_ context.Context, _ string, doc map[string]interface{}) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	s.last = doc
	return nil
}

func TestEditor_DraftDoesNotAliasSource(t *testing.T) {
	src := source()
	snapshot := schema.Clone(src)
	e := New("p1", src, nil)

	require.NoError(t, e.SetTheme("maxWidth", "900px"))
	require.NoError(t, e.SetTheme("colorPalette", "red, blue"))
	require.NoError(t, e.SetSectionProp("navbar", "name", "Grace"))
	require.NoError(t, e.SetPropListField("navbar", "links", 0, "label", "Notes"))
	require.NoError(t, e.SetItemField("skills", 0, "name", "Rust"))
	require.NoError(t, e.AddItem("skills", map[string]interface{}{"name": "Zig"}))
	require.NoError(t, e.RemoveItem("skills", 1))

	assert.Equal(t, snapshot, src, "source schema was mutated")

	d := e.Draft()
	assert.Equal(t, "900px", d.Theme.MaxWidth)
	assert.Equal(t, []string{"red", "blue"}, d.Theme.ColorPalette)
	assert.Equal(t, "Grace", d.Sections[0].Props["name"])
	assert.Equal(t, "Second", d.Sections[2].Props["name"], "only the first matching section is edited")
	assert.Equal(t, "Notes", d.Sections[0].NavbarProps().Links[0].Label)
	assert.Equal(t, "/blog", d.Sections[0].NavbarProps().Links[0].URL)
	assert.Equal(t, []model.Record{{"name": "Rust"}, {"name": "Zig"}}, d.Sections[1].Items)
	assert.True(t, e.Dirty())

	// mutating the returned copy does not reach the draft
	d.Sections[0].Props["name"] = "Mallory"
	assert.Equal(t, "Grace", e.Draft().Sections[0].Props["name"])
}

func TestEditor_PropLists(t *testing.T) {
	e := New("p1", source(), nil)

	require.NoError(t, e.AddPropListItem("navbar", "links", map[string]interface{}{"label": "CV"}))
	require.NoError(t, e.SetPropListField("navbar", "links", 2, "label", "Talks"))
	require.NoError(t, e.RemovePropListItem("navbar", "links", 0))

	links := e.Draft().Sections[0].NavbarProps().Links
	require.Len(t, links, 2)
	assert.Equal(t, "CV", links[0].Label)
	assert.Equal(t, "Talks", links[1].Label)

	require.NoError(t, e.AddPropListItem("skills", "badges", nil))
	assert.Len(t, e.Draft().Sections[1].Props["badges"], 1)
}

func TestEditor_Errors(t *testing.T) {
	e := New("p1", source(), nil)

	assert.ErrorIs(t, e.SetSectionProp("hero", "name", "x"), ErrSectionNotFound)
	assert.ErrorIs(t, e.SetItemField("skills", 5, "name", "x"), ErrIndexOutOfRange)
	assert.ErrorIs(t, e.RemoveItem("skills", -1), ErrIndexOutOfRange)
	assert.ErrorIs(t, e.RemovePropListItem("navbar", "links", 1), ErrIndexOutOfRange)
	assert.ErrorIs(t, e.SetTheme("font", []interface{}{"x"}), ErrInvalidValue)
	assert.False(t, e.Dirty())
}

func TestEditor_SetThemePalette(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		want    []string
		wantErr bool
	}{
		{"comma string", "red, blue", []string{"red", "blue"}, false},
		{"string list", []string{"red"}, []string{"red"}, false},
		{"decoded list", []interface{}{"red", "blue"}, []string{"red", "blue"}, false},
		{"nil clears", nil, []string{}, false},
		{"number", 42.0, []string{"#111", "#222"}, true},
		{"object", map[string]interface{}{"primary": "red"}, []string{"#111", "#222"}, true},
		{"mixed list", []interface{}{"red", 1.0}, []string{"#111", "#222"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := New("p1", source(), nil)
			err := e.SetTheme("color_palette", tc.value)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidValue)
				assert.False(t, e.Dirty())
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.want, e.Draft().Theme.ColorPalette)
		})
	}
}

func TestEditor_UnknownThemeKeysAreExtras(t *testing.T) {
	e := New("p1", source(), nil)
	require.NoError(t, e.SetTheme("radius", "8px"))

	doc := e.Document()
	th := doc["theme"].(map[string]interface{})
	assert.Equal(t, "8px", th["radius"])
	assert.Equal(t, true, th["glow"])
	assert.Equal(t, "#111,#222", th["color_palette"])
}

func TestEditor_SaveFailureKeepsDraft(t *testing.T) {
	saver := &recordingSaver{err: errors.New("connection refused")}
	e := New("p1", source(), saver)
	require.NoError(t, e.SetSectionProp("navbar", "name", "Grace"))

	err := e.Save(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, saver.err)
	assert.True(t, e.Dirty())
	assert.Equal(t, "Grace", e.Draft().Sections[0].Props["name"])

	saver.err = nil
	require.NoError(t, e.Save(context.Background()))
	assert.Equal(t, 2, saver.calls)
	assert.False(t, e.Dirty())

	secs := saver.last["sections"].([]interface{})
	assert.Equal(t, "Grace", secs[0].(map[string]interface{})["props"].(map[string]interface{})["name"])
	assert.Equal(t, "keep", secs[3].(map[string]interface{})["custom"])
	assert.Equal(t, "Engineer", saver.last["profile"].(map[string]interface{})["role"])
}

func TestEditor_ValidatorBlocksSave(t *testing.T) {
	saver := &recordingSaver{}
	e := New("p1", source(), saver, WithValidator(model.ValidateBackendDocument))
	require.NoError(t, e.Save(context.Background()))
	require.Equal(t, 1, saver.calls)

	e2 := New("p1", schema.Normalize(map[string]interface{}{
		"sections": []interface{}{map[string]interface{}{"type": 3.0}},
	}), saver, WithValidator(model.ValidateBackendDocument))
	err := e2.Save(context.Background())
	assert.ErrorIs(t, err, ErrInvalidDocument)
	assert.Equal(t, 1, saver.calls)
}

func TestEditor_SaveKeepsUntypedSections(t *testing.T) {
	saver := &recordingSaver{}
	src := schema.Normalize(map[string]interface{}{
		"schema_version": "1.0",
		"theme":          map[string]interface{}{},
		"sections": []interface{}{
			map[string]interface{}{"type": "hero", "props": map[string]interface{}{"name": "Ada"}, "layout": map[string]interface{}{}},
			map[string]interface{}{"id": "legacy-block", "props": map[string]interface{}{"html": "<hr>"}},
			"divider",
		},
	})
	e := New("p1", src, saver, WithValidator(model.ValidateDraftDocument))

	require.NoError(t, e.SetSectionProp("hero", "name", "Grace"))
	require.NoError(t, e.Save(context.Background()))
	require.Equal(t, 1, saver.calls)

	secs := saver.last["sections"].([]interface{})
	require.Len(t, secs, 3)
	assert.Equal(t, "Grace", secs[0].(map[string]interface{})["props"].(map[string]interface{})["name"])
	assert.Equal(t, "legacy-block", secs[1].(map[string]interface{})["id"])
	assert.Equal(t, "divider", secs[2])
}

func TestEditor_ApplyIsAllOrNothing(t *testing.T) {
	e := New("p1", source(), nil)

	var ops []Op
	require.NoError(t, json.Unmarshal([]byte(`[
		{"op": "set_prop", "section": "navbar", "key": "name", "value": "Grace"},
		{"op": "remove_item", "section": "skills", "index": 9}
	]`), &ops))

	err := e.Apply(ops...)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.Equal(t, "Ada", e.Draft().Sections[0].Props["name"])
	assert.False(t, e.Dirty())

	require.NoError(t, e.Apply(
		Op{Kind: OpSetProp, Section: "navbar", Key: "name", Value: "Grace"},
		Op{Kind: OpAddListItem, Section: "navbar", List: "links", Value: map[string]interface{}{"label": "CV"}},
		Op{Kind: OpSetTheme, Key: "font", Value: "Space Mono"},
	))
	d := e.Draft()
	assert.Equal(t, "Grace", d.Sections[0].Props["name"])
	assert.Len(t, d.Sections[0].NavbarProps().Links, 2)
	assert.Equal(t, "Space Mono", d.Theme.Font)

	assert.ErrorIs(t, e.Apply(Op{Kind: "rename"}), ErrUnknownOp)
	assert.ErrorIs(t, e.Apply(Op{Kind: OpAddItem, Section: "skills", Value: "Go"}), ErrInvalidValue)
}

func TestEditor_Reset(t *testing.T) {
	e := New("p1", source(), nil)
	require.NoError(t, e.SetSectionProp("navbar", "name", "Grace"))

	fresh := source()
	fresh.Sections[0].Props["name"] = "Server copy"
	e.Reset(fresh)

	assert.False(t, e.Dirty())
	assert.Equal(t, "Server copy", e.Draft().Sections[0].Props["name"])
}
