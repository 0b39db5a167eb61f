package entity

import (
	"reflect"
	"sort"

	"github.com/mitchellh/mapstructure"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Map is the ordered mapping every representation is made of. It marshals
// to JSON and YAML in insertion order.
type Map = orderedmap.OrderedMap[string, any]

// NewMap creates an empty Map.
func NewMap() *Map {
	return orderedmap.New[string, any]()
}

// MapOf builds a Map from alternating keys and values.
func MapOf(pairs ...any) *Map {
	m := NewMap()
	for i := 0; i+1 < len(pairs); i += 2 {
		k, _ := pairs[i].(string)
		m.Set(k, pairs[i+1])
	}
	return m
}

// Keys lists the keys of m in order.
func Keys(m *Map) []string {
	if m == nil {
		return nil
	}
	keys := make([]string, 0, m.Len())
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

func copyMap(m *Map) *Map {
	out := NewMap()
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, pair.Value)
	}
	return out
}

// isMapping reports values that render as mappings.
func isMapping(v any) bool {
	switch v.(type) {
	case *Map, map[string]any:
		return true
	}
	return false
}

// asSequence returns the elements of slices and arrays. Byte slices and
// strings are scalars.
func asSequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case nil, []byte, string:
		return nil, false
	case []any:
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// toMergeable coerces a merge value: nil becomes an empty mapping, Go maps
// become ordered (sorted keys), structs are decoded field by field.
func toMergeable(v any) (*Map, []any, bool) {
	switch t := v.(type) {
	case nil:
		return NewMap(), nil, true
	case *Map:
		if t == nil {
			return NewMap(), nil, true
		}
		return t, nil, true
	case map[string]any:
		return sortedMap(t), nil, true
	}
	if seq, ok := asSequence(v); ok {
		if len(seq) == 0 {
			return NewMap(), nil, true
		}
		return nil, seq, true
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return NewMap(), nil, true
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, nil, false
		}
		plain := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			plain[iter.Key().String()] = iter.Value().Interface()
		}
		return sortedMap(plain), nil, true
	case reflect.Struct:
		var plain map[string]any
		if err := mapstructure.Decode(rv.Interface(), &plain); err != nil {
			return nil, nil, false
		}
		return structMap(rv.Type(), plain), nil, true
	}
	return nil, nil, false
}

func sortedMap(plain map[string]any) *Map {
	keys := make([]string, 0, len(plain))
	for k := range plain {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	m := NewMap()
	for _, k := range keys {
		m.Set(k, plain[k])
	}
	return m
}

// structMap orders decoded struct fields by declaration order.
func structMap(t reflect.Type, plain map[string]any) *Map {
	m := NewMap()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := f.Name
		if tag, ok := f.Tag.Lookup("mapstructure"); ok {
			if n := tagBase(tag); n != "" {
				name = n
			}
		}
		if v, ok := plain[name]; ok {
			m.Set(name, v)
			delete(plain, name)
		}
	}
	for pair := sortedMap(plain).Oldest(); pair != nil; pair = pair.Next() {
		m.Set(pair.Key, pair.Value)
	}
	return m
}

func tagBase(tag string) string {
	for i := 0; i < len(tag); i++ {
		if tag[i] == ',' {
			return tag[:i]
		}
	}
	return tag
}
