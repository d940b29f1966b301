package editor

import (
	"fmt"
)

// Op kinds accepted by Apply.
const (
	OpSetTheme       = "set_theme"
	OpSetProp        = "set_prop"
	OpSetItemField   = "set_item_field"
	OpAddItem        = "add_item"
	OpRemoveItem     = "remove_item"
	OpSetListField   = "set_list_field"
	OpAddListItem    = "add_list_item"
	OpRemoveListItem = "remove_list_item"
)

// Op is a serializable edit.
//
//	{"op": "set_prop", "section": "hero", "key": "hero_text", "value": "Hi"}
//	{"op": "set_list_field", "section": "navbar", "list": "links", "index": 0, "key": "url", "value": "/blog"}
type Op struct {
	Kind    string      `json:"op"`
	Section string      `json:"section,omitempty"`
	List    string      `json:"list,omitempty"`
	Index   int         `json:"index,omitempty"`
	Key     string      `json:"key,omitempty"`
	Value   interface{} `json:"value,omitempty"`
}

// Apply runs ops in order. Either every op applies or the draft is left as
// it was.
func (e *Editor) Apply(ops ...Op) error {
	prev, prevDirty := e.draft, e.dirty
	for i, op := range ops {
		if err := e.apply(op); err != nil {
			e.draft, e.dirty = prev, prevDirty
			return fmt.Errorf("op %d (%s): %w", i, op.Kind, err)
		}
	}
	return nil
}

func (e *Editor) apply(op Op) error {
	switch op.Kind {
	case OpSetTheme:
		return e.SetTheme(op.Key, op.Value)
	case OpSetProp:
		return e.SetSectionProp(op.Section, op.Key, op.Value)
	case OpSetItemField:
		return e.SetItemField(op.Section, op.Index, op.Key, op.Value)
	case OpAddItem:
		item, err := record(op.Value)
		if err != nil {
			return err
		}
		return e.AddItem(op.Section, item)
	case OpRemoveItem:
		return e.RemoveItem(op.Section, op.Index)
	case OpSetListField:
		return e.SetPropListField(op.Section, op.List, op.Index, op.Key, op.Value)
	case OpAddListItem:
		item, err := record(op.Value)
		if err != nil {
			return err
		}
		return e.AddPropListItem(op.Section, op.List, item)
	case OpRemoveListItem:
		return e.RemovePropListItem(op.Section, op.List, op.Index)
	}
	return fmt.Errorf("%w: %q", ErrUnknownOp, op.Kind)
}

func record(v interface{}) (map[string]interface{}, error) {
	switch m := v.(type) {
	case nil:
		return map[string]interface{}{}, nil
	case map[string]interface{}:
		return m, nil
	}
	return nil, fmt.Errorf("expected an object: %w", ErrInvalidValue)
}
