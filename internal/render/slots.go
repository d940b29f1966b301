package render

import (
	"strings"

	"jobfolio/internal/model"
)

// contentSlots returns the slot map that decides which sub-elements a
// slot-driven section renders. Content always comes from the desktop
// branch; the active branch only changes the container style.
func contentSlots(l *model.Layout) model.Slots {
	if l == nil {
		return nil
	}
	if l.Desktop != nil && l.Desktop.Slots != nil {
		return l.Desktop.Slots
	}
	return l.Slots
}

// region returns the lower-cased slot names placed in a region, and whether
// the region was authored at all.
func region(slots model.Slots, name string) ([]string, bool) {
	refs, ok := slots[name]
	if !ok || refs == nil {
		return nil, false
	}
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if n := strings.ToLower(strings.TrimSpace(ref.Name)); n != "" {
			out = append(out, n)
		}
	}
	return out, true
}

// regionOr is region with a fallback arrangement for unauthored regions.
func regionOr(slots model.Slots, name string, def ...string) []string {
	if names, ok := region(slots, name); ok {
		return names
	}
	return def
}

func fill(names []string, fn func(string) *Block) []*Block {
	out := make([]*Block, 0, len(names))
	for _, n := range names {
		if b := fn(n); b != nil {
			out = append(out, b)
		}
	}
	return out
}

func or(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// active dereferences l, reading a missing layout as the zero layout.
func active(l *model.Layout) model.Layout {
	if l == nil {
		return model.Layout{}
	}
	return *l
}
