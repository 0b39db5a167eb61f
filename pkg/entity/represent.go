package entity

import (
	"fmt"
	"reflect"
)

// Represent renders value. A non-empty sequence is a collection: each element
// is rendered on its own and the plural root applies. Anything else is one
// item under the singular root; with PresentCollection the raw value is first
// wrapped under the collection name.
//
// Without the "serializable" option items are returned as lazy
// *Representation handles; with it, as plain data. The "root" option
// replaces the configured root key, and nil or false disables wrapping.
func (e *Entity) Represent(value any, opts Options) (any, error) {
	t, err := e.load()
	if err != nil {
		return nil, err
	}
	opts = opts.Clone()

	var root string
	var inner any
	if items, ok := asSequence(value); ok && len(items) > 0 && !t.presentCollection {
		root = t.pluralRoot
		if _, set := opts["collection"]; !set {
			opts["collection"] = true
		}
		out := make([]any, 0, len(items))
		for _, item := range items {
			v, err := e.present(item, opts)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		inner = out
	} else {
		root = t.singularRoot
		if _, set := opts["collection"]; !set {
			opts["collection"] = false
		}
		if t.presentCollection {
			value = map[string]any{t.collectionName: value}
		}
		if inner, err = e.present(value, opts); err != nil {
			return nil, err
		}
	}

	if r, ok := opts["root"]; ok {
		root = rootName(r)
	}
	if root == "" {
		return inner, nil
	}
	return MapOf(transformKey(root), inner), nil
}

func (e *Entity) present(obj any, opts Options) (any, error) {
	if opts.Truthy("serializable") {
		return e.SerializableArray(obj, opts)
	}
	return &Representation{entity: e, object: obj, options: opts}, nil
}

func rootName(v any) string {
	switch r := v.(type) {
	case nil, bool:
		return ""
	case string:
		return r
	}
	if truthy(v) {
		return fmt.Sprint(v)
	}
	return ""
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
