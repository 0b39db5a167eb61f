package resolve

import (
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"
	"unsafe"
)

// Visibility gates which struct members reflection may reach.
// Exported, directly declared members are always reachable.
type Visibility struct {
	// UnexportedFields allows reading unexported struct fields.
	UnexportedFields bool
	// PromotedFields allows reading fields promoted from embedded structs.
	PromotedFields bool
	// PromotedMethods allows calling methods promoted from embedded types.
	PromotedMethods bool
}

// AllowAll is the default visibility.
var AllowAll = Visibility{UnexportedFields: true, PromotedFields: true, PromotedMethods: true}

var visibility atomic.Pointer[Visibility]

func init() {
	v := AllowAll
	visibility.Store(&v)
}

// SetVisibility replaces the process-wide visibility gates.
func SetVisibility(v Visibility) {
	visibility.Store(&v)
}

// CurrentVisibility returns the process-wide visibility gates.
func CurrentVisibility() Visibility {
	return *visibility.Load()
}

type memberKind int

const (
	memberNone memberKind = iota
	memberField
	memberMethod
)

type member struct {
	kind       memberKind
	index      []int
	method     string
	unexported bool
	promoted   bool
}

type memberKey struct {
	t    reflect.Type
	name string
}

var members sync.Map // memberKey -> member

// ResetReflectionCache drops every cached member lookup.
func ResetReflectionCache() {
	members.Range(func(k, _ any) bool {
		members.Delete(k)
		return true
	})
}

// findMember locates name on t (a non-pointer type). Fields win over methods.
// Field matching tries struct tags (vitrine, then json), the exact Go name,
// and finally a case-insensitive match ignoring '_' and '-'.
func findMember(t reflect.Type, name string) member {
	key := memberKey{t: t, name: name}
	if m, ok := members.Load(key); ok {
		return m.(member)
	}
	m := lookupMember(t, name)
	members.Store(key, m)
	return m
}

func lookupMember(t reflect.Type, name string) member {
	if t.Kind() == reflect.Struct {
		if f, ok := matchField(t, name); ok {
			return member{
				kind:       memberField,
				index:      f.Index,
				unexported: !f.IsExported(),
				promoted:   len(f.Index) > 1,
			}
		}
	}

	pt := reflect.PointerTo(t)
	for i := 0; i < pt.NumMethod(); i++ {
		meth := pt.Method(i)
		if meth.Name == name || foldName(meth.Name) == foldName(name) {
			return member{
				kind:     memberMethod,
				method:   meth.Name,
				promoted: isPromotedMethod(t, meth.Name),
			}
		}
	}
	return member{}
}

func matchField(t reflect.Type, name string) (reflect.StructField, bool) {
	fields := reflect.VisibleFields(t)
	for _, f := range fields {
		if f.Anonymous {
			continue
		}
		if tagName(f, "vitrine") == name || tagName(f, "json") == name {
			return f, true
		}
	}
	for _, f := range fields {
		if !f.Anonymous && f.Name == name {
			return f, true
		}
	}
	folded := foldName(name)
	for _, f := range fields {
		if !f.Anonymous && foldName(f.Name) == folded {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

func tagName(f reflect.StructField, tag string) string {
	v, ok := f.Tag.Lookup(tag)
	if !ok {
		return ""
	}
	name, _, _ := strings.Cut(v, ",")
	if name == "-" {
		return ""
	}
	return name
}

func foldName(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '_' || r == '-' {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func isPromotedMethod(t reflect.Type, name string) bool {
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}
		ft := f.Type
		if ft.Kind() != reflect.Pointer {
			ft = reflect.PointerTo(ft)
		}
		if _, ok := ft.MethodByName(name); ok {
			return true
		}
	}
	return false
}

func (m member) allowed(v Visibility) bool {
	switch m.kind {
	case memberField:
		if m.unexported && !v.UnexportedFields {
			return false
		}
		if m.promoted && !v.PromotedFields {
			return false
		}
		return true
	case memberMethod:
		return !m.promoted || v.PromotedMethods
	}
	return false
}

// addressable returns an addressable copy of rv (a non-pointer value) unless
// rv already is addressable.
func addressable(rv reflect.Value) reflect.Value {
	if rv.CanAddr() {
		return rv
	}
	cp := reflect.New(rv.Type()).Elem()
	cp.Set(rv)
	return cp
}

// readField reads the field at index, unexported ones included.
// ok is false when an embedded nil pointer sits on the path.
func readField(rv reflect.Value, index []int) (any, bool) {
	f, err := addressable(rv).FieldByIndexErr(index)
	if err != nil {
		return nil, false
	}
	if f.CanInterface() {
		return f.Interface(), true
	}
	return reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem().Interface(), true
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// callNoArgs calls a bound zero-argument function returning a value,
// optionally followed by an error. Functions of any other shape are
// returned as values.
func callNoArgs(fn reflect.Value) (any, error) {
	ft := fn.Type()
	if ft.NumIn() != 0 || !validOuts(ft) {
		return fn.Interface(), nil
	}
	return splitOuts(fn.Call(nil))
}

func validOuts(ft reflect.Type) bool {
	switch ft.NumOut() {
	case 1:
		return true
	case 2:
		return ft.Out(1).Implements(errorType)
	}
	return false
}

func splitOuts(out []reflect.Value) (any, error) {
	var err error
	if len(out) == 2 && !out[1].IsNil() {
		err = out[1].Interface().(error)
	}
	return out[0].Interface(), err
}
