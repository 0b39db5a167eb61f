package resolve

import (
	"reflect"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// MappingStrategy reads keys from maps with string keys and from ordered maps.
// A key holding a zero-argument function is invoked lazily.
type MappingStrategy struct{}

// TryResolve implements Strategy.
func (MappingStrategy) TryResolve(in Input) (any, bool, error) {
	v, ok := Lookup(in.Value, in.Name)
	if !ok {
		return nil, false, nil
	}
	out, err := Lazy(v)
	return out, true, err
}

// Lookup reads key from a mapping-like value.
// ok is false when v is not mapping-like or the key is absent.
func Lookup(v any, key string) (any, bool) {
	switch m := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		val, ok := m[key]
		return val, ok
	case *orderedmap.OrderedMap[string, any]:
		if m == nil {
			return nil, false
		}
		return m.Get(key)
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	val := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
	if !val.IsValid() {
		return nil, false
	}
	return val.Interface(), true
}

// IsMapping reports whether v is a mapping-like value Lookup understands.
func IsMapping(v any) bool {
	switch v.(type) {
	case nil:
		return false
	case map[string]any, *orderedmap.OrderedMap[string, any]:
		return true
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	return rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String
}

// Lazy invokes v when it is a zero-argument function returning a value
// (optionally followed by an error); other values are returned unchanged.
func Lazy(v any) (any, error) {
	switch fn := v.(type) {
	case func() any:
		return fn(), nil
	case func() (any, error):
		return fn()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return v, nil
	}
	return callNoArgs(rv)
}
