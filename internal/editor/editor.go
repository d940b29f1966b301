// Package editor holds the working draft of a portfolio and applies
// structural edits to it. The draft is a deep copy: nothing an edit does is
// visible through the schema the editor was created from.
package editor

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cast"

	"jobfolio/internal/model"
	"jobfolio/internal/schema"
	"jobfolio/internal/theme"
)

var (
	ErrSectionNotFound = errors.New("section not found")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrInvalidValue    = errors.New("invalid value")
	ErrInvalidDocument = errors.New("document rejected by backend contract")
	ErrUnknownOp       = errors.New("unknown edit operation")
)

var savesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "jobfolio_saves_total",
		Help: "Draft saves, by outcome.",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(savesTotal)
}

// Saver persists a denormalized document under a portfolio id.
type Saver interface {
	Save(ctx context.Context, id string, doc map[string]interface{}) error
}

type SaverFunc func(ctx context.Context, id string, doc map[string]interface{}) error

func (f SaverFunc) Save(ctx context.Context, id string, doc map[string]interface{}) error {
	return f(ctx, id, doc)
}

type Option func(*Editor)

func WithDenormalizeOptions(o schema.DenormalizeOptions) Option {
	return func(e *Editor) { e.opts = o }
}

// WithValidator checks the denormalized document before it is handed to
// the saver.
func WithValidator(fn func(map[string]interface{}) error) Option {
	return func(e *Editor) { e.validate = fn }
}

// Editor is not safe for concurrent use; it belongs to a single view.
type Editor struct {
	id       string
	draft    model.PortfolioSchema
	saver    Saver
	opts     schema.DenormalizeOptions
	validate func(map[string]interface{}) error
	dirty    bool
}

func New(id string, src model.PortfolioSchema, saver Saver, opts ...Option) *Editor {
	e := &Editor{id: id, draft: schema.Clone(src), saver: saver}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Editor) ID() string { return e.id }

// Draft returns a copy of the working draft.
func (e *Editor) Draft() model.PortfolioSchema { return schema.Clone(e.draft) }

// Dirty reports whether the draft has edits that were not saved.
func (e *Editor) Dirty() bool { return e.dirty }

// Reset discards the draft and starts over from src.
func (e *Editor) Reset(src model.PortfolioSchema) {
	e.draft = schema.Clone(src)
	e.dirty = false
}

// Document returns the draft in the backend's convention.
func (e *Editor) Document() map[string]interface{} {
	return schema.Denormalize(e.draft, e.opts)
}

// Save denormalizes the draft and hands it to the saver. On failure the
// draft is kept so the save can be retried.
func (e *Editor) Save(ctx context.Context) error {
	doc := e.Document()
	if e.validate != nil {
		if err := e.validate(doc); err != nil {
			savesTotal.WithLabelValues("invalid").Inc()
			return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
	}
	if e.saver == nil {
		return errors.New("editor has no saver")
	}
	if err := e.saver.Save(ctx, e.id, doc); err != nil {
		savesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("save portfolio %s: %w", e.id, err)
	}
	savesTotal.WithLabelValues("ok").Inc()
	e.dirty = false
	return nil
}

// SetTheme sets one theme field. Either key spelling is accepted; keys the
// model does not know are stored as theme extras.
func (e *Editor) SetTheme(key string, value interface{}) error {
	t := e.draft.Theme
	if key == "colorPalette" || key == "color_palette" {
		if !isPalette(value) {
			return fmt.Errorf("theme %s: %w", key, ErrInvalidValue)
		}
		t.ColorPalette = theme.ParsePalette(value)
		e.draft.Theme = t
		e.dirty = true
		return nil
	}

	field := themeField(&t, key)
	if field == nil {
		extra := copyMap(t.Extra)
		extra[key] = schema.CopyValue(value)
		t.Extra = extra
	} else {
		s, err := cast.ToStringE(value)
		if err != nil {
			return fmt.Errorf("theme %s: %w", key, ErrInvalidValue)
		}
		*field = s
	}
	e.draft.Theme = t
	e.dirty = true
	return nil
}

// isPalette accepts a comma separated string, a list of strings, or nil to
// clear the palette.
func isPalette(v interface{}) bool {
	switch p := v.(type) {
	case nil, string, []string:
		return true
	case []interface{}:
		for _, c := range p {
			if _, ok := c.(string); !ok {
				return false
			}
		}
		return true
	}
	return false
}

func themeField(t *model.Theme, key string) *string {
	switch key {
	case "width":
		return &t.Width
	case "maxWidth", "max_width":
		return &t.MaxWidth
	case "margin":
		return &t.Margin
	case "display":
		return &t.Display
	case "flexDirection", "flex_direction":
		return &t.FlexDirection
	case "alignItems", "align_items":
		return &t.AlignItems
	case "font":
		return &t.Font
	case "style":
		return &t.Style
	case "tone":
		return &t.Tone
	}
	return nil
}

// SetSectionProp sets a prop on the first section of the given type.
func (e *Editor) SetSectionProp(sectionType, key string, value interface{}) error {
	return e.withSection(sectionType, func(sec *model.Section) error {
		props := copyMap(sec.Props)
		props[key] = schema.CopyValue(value)
		sec.Props = props
		return nil
	})
}

// SetItemField sets one field of an item. Index len(items) appends a new
// item.
func (e *Editor) SetItemField(sectionType string, index int, key string, value interface{}) error {
	return e.withSection(sectionType, func(sec *model.Section) error {
		if index < 0 || index > len(sec.Items) {
			return fmt.Errorf("%s item %d: %w", sectionType, index, ErrIndexOutOfRange)
		}
		items := make([]model.Record, len(sec.Items), len(sec.Items)+1)
		copy(items, sec.Items)
		var item model.Record
		if index < len(items) {
			item = model.Record(copyMap(items[index]))
		} else {
			item = model.Record{}
			items = append(items, nil)
		}
		item[key] = schema.CopyValue(value)
		items[index] = item
		sec.Items = items
		return nil
	})
}

func (e *Editor) AddItem(sectionType string, item map[string]interface{}) error {
	return e.withSection(sectionType, func(sec *model.Section) error {
		items := make([]model.Record, len(sec.Items), len(sec.Items)+1)
		copy(items, sec.Items)
		sec.Items = append(items, model.Record(copyMap(item)))
		return nil
	})
}

func (e *Editor) RemoveItem(sectionType string, index int) error {
	return e.withSection(sectionType, func(sec *model.Section) error {
		if index < 0 || index >= len(sec.Items) {
			return fmt.Errorf("%s item %d: %w", sectionType, index, ErrIndexOutOfRange)
		}
		items := make([]model.Record, 0, len(sec.Items)-1)
		items = append(items, sec.Items[:index]...)
		sec.Items = append(items, sec.Items[index+1:]...)
		return nil
	})
}

// SetPropListField sets a field on an entry of a list nested under the
// section props, such as navbar links. Index len(list) appends.
func (e *Editor) SetPropListField(sectionType, listKey string, index int, key string, value interface{}) error {
	return e.withSection(sectionType, func(sec *model.Section) error {
		list := propList(sec.Props, listKey)
		if index < 0 || index > len(list) {
			return fmt.Errorf("%s %s %d: %w", sectionType, listKey, index, ErrIndexOutOfRange)
		}
		entry := map[string]interface{}{}
		if index < len(list) {
			if m, ok := list[index].(map[string]interface{}); ok {
				entry = copyMap(m)
			}
		} else {
			list = append(list, nil)
		}
		entry[key] = schema.CopyValue(value)
		list[index] = entry
		sec.Props = withProp(sec.Props, listKey, list)
		return nil
	})
}

func (e *Editor) AddPropListItem(sectionType, listKey string, item map[string]interface{}) error {
	return e.withSection(sectionType, func(sec *model.Section) error {
		list := append(propList(sec.Props, listKey), copyMap(item))
		sec.Props = withProp(sec.Props, listKey, list)
		return nil
	})
}

func (e *Editor) RemovePropListItem(sectionType, listKey string, index int) error {
	return e.withSection(sectionType, func(sec *model.Section) error {
		list := propList(sec.Props, listKey)
		if index < 0 || index >= len(list) {
			return fmt.Errorf("%s %s %d: %w", sectionType, listKey, index, ErrIndexOutOfRange)
		}
		list = append(list[:index], list[index+1:]...)
		sec.Props = withProp(sec.Props, listKey, list)
		return nil
	})
}

// withSection edits a copy of the first section of the given type and
// swaps it into a fresh sections slice when fn succeeds.
func (e *Editor) withSection(sectionType string, fn func(*model.Section) error) error {
	i := e.draft.FirstSection(sectionType)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrSectionNotFound, sectionType)
	}
	sec := e.draft.Sections[i]
	if err := fn(&sec); err != nil {
		return err
	}
	sections := make([]model.Section, len(e.draft.Sections))
	copy(sections, e.draft.Sections)
	sections[i] = sec
	e.draft.Sections = sections
	e.dirty = true
	return nil
}

// propList returns a fresh copy of the list stored under key; anything
// that is not a list reads as empty.
func propList(props map[string]interface{}, key string) []interface{} {
	src, _ := props[key].([]interface{})
	out := make([]interface{}, len(src), len(src)+1)
	copy(out, src)
	return out
}

func withProp(props map[string]interface{}, key string, v interface{}) map[string]interface{} {
	out := copyMap(props)
	out[key] = v
	return out
}

// copyMap is a shallow copy; values reachable from the draft are never
// mutated in place, so sharing them is safe.
func copyMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
