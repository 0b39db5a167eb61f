package entity

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/vitrine/pkg/resolve"
)

// SerializableArray renders one item into plain data: usually a *Map, or a
// []any when merged sequences were spliced in. A nil item renders as nil.
func (e *Entity) SerializableArray(obj any, opts Options) (any, error) {
	t, err := e.load()
	if err != nil {
		return nil, err
	}
	return e.walk(t, t.exposures, obj, opts)
}

func (e *Entity) walk(t *tree, nodes []*Exposure, obj any, opts Options) (any, error) {
	if isNil(obj) {
		return nil, nil
	}
	only := parseProjection(opts["only"], true)
	except := parseProjection(opts["except"], false)
	parent := opts.AttrPath()

	exposures := NewMap()
	var root []any
	placed := false
	place := func() {
		if !placed {
			placed = true
			root = append(root, exposures)
		}
	}

	for _, x := range nodes {
		o := &x.opts
		if !checkCondition(o.cond, obj, opts) {
			continue
		}
		key := transformKey(outputKey(x, obj, opts))
		path := attrPathFor(o, parent, key, obj, opts)
		nodeOpts := opts.Clone()
		nodeOpts["attr_path"] = path

		value, err := e.valueOf(t, x, key, obj, nodeOpts)
		if err != nil {
			return nil, err
		}
		if isNil(value) && o.exposeNull != nil && !*o.exposeNull {
			continue
		}
		if x.children != nil {
			if existing, ok := exposures.Get(key); ok {
				value = coalesce(existing, value)
			}
		}
		if o.formatWith != nil {
			if value, err = e.format(t, o.formatWith, value, obj, nodeOpts); err != nil {
				return nil, err
			}
		}

		if o.merge {
			m, seq, ok := toMergeable(value)
			if !ok {
				return nil, &TypeError{
					Path:    path,
					Message: fmt.Sprintf("Merge error: `%s` should be a mapping", strings.Join(path, ".")),
				}
			}
			if seq != nil {
				root = append(root, seq...)
				continue
			}
			for pair := m.Oldest(); pair != nil; pair = pair.Next() {
				if !shouldIncludeKey(pair.Key, only, except) {
					continue
				}
				v := pair.Value
				if o.mergeFunc != nil {
					if old, exists := exposures.Get(pair.Key); exists && !isNil(old) {
						v = o.mergeFunc(pair.Key, old, v)
					}
				}
				exposures.Set(pair.Key, v)
			}
			place()
			continue
		}

		if shouldIncludeKey(key, only, except) {
			exposures.Set(key, value)
			place()
		}
	}

	if len(root) > 0 && (!placed || len(root) > 1) {
		return root, nil
	}
	return exposures, nil
}

// valueOf resolves the raw value of x, delegates it to Using, expands
// serializable values and applies the default.
func (e *Entity) valueOf(t *tree, x *Exposure, key string, obj any, opts Options) (any, error) {
	o := &x.opts
	var value any
	var err error
	switch {
	case o.value != nil:
		value, err = o.value(obj, opts)
	case x.children != nil:
		value, err = e.walk(t, x.children, obj, narrowOptions(opts, key))
	default:
		value, err = e.chain.Resolve(resolve.Input{
			Value:   obj,
			Name:    x.name,
			Safe:    o.safe,
			Members: e.members,
			Options: opts,
		})
	}
	if err != nil {
		return nil, err
	}

	if o.using != nil {
		sub := narrowOptions(opts, key)
		delete(sub, "collection")
		sub["root"] = nil
		if value, err = o.using.Represent(value, sub); err != nil {
			return nil, err
		}
	}

	if value, err = expandSerializable(value); err != nil {
		return nil, err
	}

	if o.hasDefault && blank(value) {
		return o.def, nil
	}
	return value, nil
}

func checkCondition(cond any, obj any, opts Options) bool {
	switch c := cond.(type) {
	case nil:
		return true
	case ConditionFunc:
		return c(obj, opts)
	case string:
		return opts.Truthy(c)
	case map[string]any:
		for k, want := range c {
			got, ok := opts[k]
			if !ok || got == nil || !sameValue(got, want) {
				return false
			}
		}
		return true
	}
	return false
}

// sameValue compares numbers by value so decoded JSON options (float64)
// match integer literals.
func sameValue(a, b any) bool {
	if x, ok := number(a); ok {
		if y, ok := number(b); ok {
			return x == y
		}
	}
	return reflect.DeepEqual(a, b)
}

func number(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func outputKey(x *Exposure, obj any, opts Options) string {
	switch as := x.opts.as.(type) {
	case string:
		return as
	case KeyFunc:
		return as(obj, opts)
	}
	return x.name
}

// attrPathFor is the parent path plus the output key, or plus the attr_path
// override when one is set. A nil or false override adds nothing.
func attrPathFor(o *exposureOptions, parent []string, key string, obj any, opts Options) []string {
	path := make([]string, len(parent), len(parent)+1)
	copy(path, parent)
	if !o.hasAttrPath {
		return append(path, key)
	}
	override := o.attrPath
	if fn, ok := override.(AttrPathFunc); ok {
		override = fn(obj, opts)
	}
	switch p := override.(type) {
	case []string:
		return append(path, p...)
	case string:
		if p != "" {
			return append(path, p)
		}
		return path
	}
	if truthy(override) {
		if _, isBool := override.(bool); !isBool {
			return append(path, fmt.Sprint(override))
		}
	}
	return path
}

// coalesce combines two values produced under the same key by different
// nested scopes.
func coalesce(existing, incoming any) any {
	exMap, inMap := isMapping(existing), isMapping(incoming)
	switch {
	case exMap && inMap:
		merged := copyMap(toMap(existing))
		for pair := toMap(incoming).Oldest(); pair != nil; pair = pair.Next() {
			merged.Set(pair.Key, pair.Value)
		}
		return merged
	case exMap:
		if seq, ok := asSequence(incoming); ok {
			return append([]any{existing}, seq...)
		}
		if incoming == nil {
			return existing
		}
		return incoming
	case inMap:
		if seq, ok := asSequence(existing); ok {
			return append(append([]any(nil), seq...), incoming)
		}
		if existing == nil {
			return incoming
		}
		return []any{existing, incoming}
	}
	return incoming
}

func toMap(v any) *Map {
	switch m := v.(type) {
	case *Map:
		return m
	case map[string]any:
		return sortedMap(m)
	}
	return NewMap()
}

// Serializable is implemented by values that render themselves. Resolved
// values implementing it are expanded eagerly, element-wise for collections.
type Serializable interface {
	Serialize() (any, error)
}

func expandSerializable(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case Serializable:
		return v.Serialize()
	case *Map:
		var out *Map
		for pair := v.Oldest(); pair != nil; pair = pair.Next() {
			s, ok := pair.Value.(Serializable)
			if !ok {
				continue
			}
			if out == nil {
				out = copyMap(v)
			}
			expanded, err := s.Serialize()
			if err != nil {
				return nil, err
			}
			out.Set(pair.Key, expanded)
		}
		if out != nil {
			return out, nil
		}
		return v, nil
	case map[string]any:
		var out map[string]any
		for k, el := range v {
			s, ok := el.(Serializable)
			if !ok {
				continue
			}
			if out == nil {
				out = make(map[string]any, len(v))
				for k2, v2 := range v {
					out[k2] = v2
				}
			}
			expanded, err := s.Serialize()
			if err != nil {
				return nil, err
			}
			out[k] = expanded
		}
		if out != nil {
			return out, nil
		}
		return v, nil
	}

	seq, ok := asSequence(value)
	if !ok {
		return value, nil
	}
	var out []any
	for i, el := range seq {
		s, ok := el.(Serializable)
		if !ok {
			continue
		}
		if out == nil {
			out = append([]any(nil), seq...)
		}
		expanded, err := s.Serialize()
		if err != nil {
			return nil, err
		}
		out[i] = expanded
	}
	if out != nil {
		return out, nil
	}
	return value, nil
}
