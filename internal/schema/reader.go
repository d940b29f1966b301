package schema

import (
	"github.com/spf13/cast"

	"jobfolio/internal/model"
)

// reader pulls known keys out of a loosely typed record and remembers which
// ones it consumed; whatever is left over becomes the record's Extra bag.
//
// A key is consumed when its value has the expected shape or is null. When
// a value resolves, every alias spelling is consumed so the canonical form
// carries exactly one field.
type reader struct {
	src  map[string]interface{}
	used map[string]bool
}

func newReader(m map[string]interface{}) *reader {
	if m == nil {
		m = map[string]interface{}{}
	}
	return &reader{src: m, used: map[string]bool{}}
}

func (r *reader) consume(keys []string) {
	for _, k := range keys {
		r.used[k] = true
	}
}

// str resolves keys in precedence order: the first non-empty string wins.
func (r *reader) str(keys ...string) string {
	val := ""
	for _, k := range keys {
		v, ok := r.src[k]
		if !ok {
			continue
		}
		switch s := v.(type) {
		case nil:
			r.used[k] = true
		case string:
			r.used[k] = true
			if val == "" && s != "" {
				val = s
			}
		}
	}
	if val != "" {
		r.consume(keys)
	}
	return val
}

func (r *reader) boolean(key string) bool {
	v, ok := r.src[key]
	if !ok {
		return false
	}
	if v == nil {
		r.used[key] = true
		return false
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false
	}
	r.used[key] = true
	return b
}

func (r *reader) integer(key string) int {
	v, ok := r.src[key]
	if !ok {
		return 0
	}
	if v == nil {
		r.used[key] = true
		return 0
	}
	if _, isBool := v.(bool); isBool {
		return 0
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0
	}
	r.used[key] = true
	return n
}

func (r *reader) obj(keys ...string) (map[string]interface{}, bool) {
	var found map[string]interface{}
	for _, k := range keys {
		v, ok := r.src[k]
		if !ok {
			continue
		}
		switch m := v.(type) {
		case nil:
			r.used[k] = true
		case map[string]interface{}:
			r.used[k] = true
			if found == nil {
				found = m
			}
		case model.Record:
			r.used[k] = true
			if found == nil {
				found = m
			}
		}
	}
	if found != nil {
		r.consume(keys)
		return found, true
	}
	return nil, false
}

func (r *reader) list(key string) ([]interface{}, bool) {
	v, ok := r.src[key]
	if !ok {
		return nil, false
	}
	if v == nil {
		r.used[key] = true
		return nil, false
	}
	l, ok := asList(v)
	if ok {
		r.used[key] = true
	}
	return l, ok
}

// asList accepts the slice shapes Go callers build by hand as well as
// decoded JSON arrays.
func asList(v interface{}) ([]interface{}, bool) {
	switch l := v.(type) {
	case []interface{}:
		return l, true
	case []map[string]interface{}, []model.Record, []string:
		return deepCopy(l).([]interface{}), true
	}
	return nil, false
}

// extra returns a deep copy of every unconsumed key, or nil.
func (r *reader) extra() map[string]interface{} {
	var out map[string]interface{}
	for k, v := range r.src {
		if r.used[k] {
			continue
		}
		if out == nil {
			out = map[string]interface{}{}
		}
		out[k] = deepCopy(v)
	}
	return out
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = deepCopy(v)
	}
	return out
}

func deepCopy(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return copyMap(t)
	case model.Record:
		return copyMap(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, it := range t {
			out[i] = deepCopy(it)
		}
		return out
	case []model.Record:
		out := make([]interface{}, len(t))
		for i, it := range t {
			out[i] = copyMap(it)
		}
		return out
	case []map[string]interface{}:
		out := make([]interface{}, len(t))
		for i, it := range t {
			out[i] = copyMap(it)
		}
		return out
	case []string:
		out := make([]interface{}, len(t))
		for i, it := range t {
			out[i] = it
		}
		return out
	}
	return v
}

// CopyValue deep-copies a decoded JSON value. Maps and slices are never
// shared with v.
func CopyValue(v interface{}) interface{} {
	return deepCopy(v)
}
