package resolve

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// ErrMissingAttribute is returned when no strategy can read the requested attribute.
var ErrMissingAttribute = errors.New("missing attribute")

// MissingAttributeError names the attribute and describes the input it was looked up on.
type MissingAttributeError struct {
	Name  string
	Input string
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("Missing property or method `%s` on `%s`", e.Name, e.Input)
}

func (e *MissingAttributeError) Unwrap() error {
	return ErrMissingAttribute
}

// Missing is the terminal step shared by the chain and by adapters:
// safe lookups yield nil, the others a *MissingAttributeError.
func Missing(name string, input any, safe bool) (any, error) {
	if safe {
		logger().Debug("missing attribute resolved to nil", "attribute", name, "input", TypeName(input))
		return nil, nil
	}
	return nil, &MissingAttributeError{Name: name, Input: Describe(input)}
}

// Describe renders an input for diagnostics: collections as JSON, structured
// values by type name, scalars by their string form.
func Describe(v any) string {
	if v == nil {
		return ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%v", v)
	case reflect.Struct, reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.Type().String()
	default:
		return fmt.Sprint(v)
	}
}

// TypeName is the stable identifier used to key caches by input type.
func TypeName(v any) string {
	if v == nil {
		return "<nil>"
	}
	return reflect.TypeOf(v).String()
}
