package entity

import (
	"reflect"
	"strings"
)

// Options are render options. The engine reads "serializable", "only",
// "except", "root", "collection" and "attr_path"; every other key belongs to
// the caller and is visible to conditions and value functions.
type Options map[string]any

// Clone returns a shallow copy. A nil receiver yields an empty map.
func (o Options) Clone() Options {
	out := make(Options, len(o)+1)
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Truthy reports whether key is set to a truthy value.
func (o Options) Truthy(key string) bool {
	v, ok := o[key]
	return ok && truthy(v)
}

// AttrPath returns the attribute path of the exposure being resolved.
func (o Options) AttrPath() []string {
	p, _ := o["attr_path"].([]string)
	return p
}

// ValueFunc computes an exposure's value from the input and the render options.
type ValueFunc func(obj any, opts Options) (any, error)

// KeyFunc computes an output key.
type KeyFunc func(obj any, opts Options) string

// ConditionFunc decides whether an exposure is rendered.
type ConditionFunc func(obj any, opts Options) bool

// AttrPathFunc computes an attr_path override: a string, a []string, or
// nil/false to add no segment.
type AttrPathFunc func(obj any, opts Options) any

// Formatter post-processes a resolved value.
type Formatter func(value any, obj any, opts Options) (any, error)

// MergeFunc resolves a key collision while merging.
type MergeFunc func(key string, existing, incoming any) any

// Presenter renders a value the way Entity.Represent does. Used with the
// Using option.
type Presenter interface {
	Represent(value any, opts Options) (any, error)
}

// Option configures one exposure.
type Option func(*exposureOptions)

type exposureOptions struct {
	as            any
	hasDefault    bool
	def           any
	cond          any
	using         Presenter
	safe          bool
	merge         bool
	mergeFunc     MergeFunc
	formatWith    any
	exposeNull    *bool
	override      bool
	hasAttrPath   bool
	attrPath      any
	documentation any
	value         ValueFunc
	nest          func(*Builder)
	err           error
}

// As renames the output key.
func As(key string) Option {
	return func(o *exposureOptions) { o.as = key }
}

// AsFunc computes the output key from the input and options.
func AsFunc(fn KeyFunc) Option {
	return func(o *exposureOptions) { o.as = fn }
}

// Default substitutes v when the value is nil, false, a blank string or an
// empty collection.
func Default(v any) Option {
	return func(o *exposureOptions) {
		o.hasDefault = true
		o.def = v
	}
}

// If renders the exposure only when cond holds. cond is a ConditionFunc (or
// a plain func(any, Options) bool), the name of a render option that must be
// truthy, or a map of render options that must all be equal.
func If(cond any) Option {
	return func(o *exposureOptions) {
		switch c := cond.(type) {
		case ConditionFunc, string, map[string]any:
			o.cond = c
		case func(any, Options) bool:
			o.cond = ConditionFunc(c)
		case Options:
			o.cond = map[string]any(c)
		default:
			o.err = invalidOption("Invalid `if` option")
		}
	}
}

// Using delegates rendering of the value to p.
func Using(p Presenter) Option {
	return func(o *exposureOptions) { o.using = p }
}

// Safe turns a missing attribute into nil.
func Safe() Option {
	return func(o *exposureOptions) { o.safe = true }
}

// Merge splices the value into the enclosing scope instead of nesting it.
func Merge() Option {
	return func(o *exposureOptions) {
		o.merge = true
		o.mergeFunc = nil
	}
}

// MergeWith merges like Merge and resolves key collisions with fn.
func MergeWith(fn MergeFunc) Option {
	return func(o *exposureOptions) {
		o.merge = true
		o.mergeFunc = fn
	}
}

// FormatWith post-processes the value with a Formatter or with a named
// formatter (entity formatters first, then global ones).
func FormatWith(f any) Option {
	return func(o *exposureOptions) {
		switch fn := f.(type) {
		case Formatter, string:
			o.formatWith = fn
		case func(any, any, Options) (any, error):
			o.formatWith = Formatter(fn)
		default:
			o.err = invalidOption("Invalid format_with option")
		}
	}
}

// ExposeNull controls whether a nil value is kept (true, the default) or
// dropped (false).
func ExposeNull(expose bool) Option {
	return func(o *exposureOptions) { o.exposeNull = &expose }
}

// Override removes earlier exposures with the same name.
func Override() Option {
	return func(o *exposureOptions) { o.override = true }
}

// AttrPath overrides the attribute path segment of the exposure: a string,
// a []string, an AttrPathFunc, or nil/false to drop the segment.
func AttrPath(p any) Option {
	return func(o *exposureOptions) {
		switch v := p.(type) {
		case nil:
			o.attrPath = false
		case string, []string, bool, AttrPathFunc:
			o.attrPath = v
		case func(any, Options) any:
			o.attrPath = AttrPathFunc(v)
		default:
			o.err = invalidOption("Invalid `attr_path` option")
			return
		}
		o.hasAttrPath = true
	}
}

// Documentation attaches an opaque description blob.
func Documentation(doc any) Option {
	return func(o *exposureOptions) { o.documentation = doc }
}

// Value computes the exposure with fn instead of reading an attribute.
func Value(fn ValueFunc) Option {
	return func(o *exposureOptions) {
		o.value = fn
		o.nest = nil
	}
}

// Nest opens a nested scope: fn declares the child exposures on b.
func Nest(fn func(b *Builder)) Option {
	return func(o *exposureOptions) {
		o.nest = fn
		o.value = nil
	}
}

func buildOptions(layers ...[]Option) exposureOptions {
	var o exposureOptions
	for _, layer := range layers {
		for _, opt := range layer {
			if opt != nil {
				opt(&o)
			}
		}
	}
	return o
}

// truthy follows loose truthiness: nil, false, zero numbers, "" and "0",
// and empty collections are false.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != "" && t != "0"
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	}
	return true
}

// blank reports whether a default should replace v.
func blank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return strings.TrimSpace(t) == ""
	case *Map:
		return t == nil || t.Len() == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	case reflect.Pointer:
		return rv.IsNil()
	}
	return false
}
