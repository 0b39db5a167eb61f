package resolve

import "reflect"

// AttributeGetter is the catch-all "dynamic get" hook.
// found=false passes the lookup on.
type AttributeGetter interface {
	GetAttribute(name string) (value any, found bool)
}

// AttributeCaller is the catch-all "dynamic call" hook, tried after AttributeGetter.
// Any error passes the lookup on.
type AttributeCaller interface {
	CallAttribute(name string) (any, error)
}

// ObjectStrategy reads struct fields and zero-argument methods through
// reflection, then falls back to the dynamic hooks.
type ObjectStrategy struct{}

// TryResolve implements Strategy.
func (ObjectStrategy) TryResolve(in Input) (any, bool, error) {
	if in.Value == nil {
		return nil, false, nil
	}
	if rv, ok := indirect(reflect.ValueOf(in.Value)); ok {
		m := findMember(rv.Type(), in.Name)
		if m.allowed(CurrentVisibility()) {
			switch m.kind {
			case memberField:
				if v, ok := readField(rv, m.index); ok {
					return v, true, nil
				}
			case memberMethod:
				fn := addressable(rv).Addr().MethodByName(m.method)
				if fn.Type().NumIn() == 0 && validOuts(fn.Type()) {
					v, err := splitOuts(fn.Call(nil))
					return v, true, err
				}
			}
		}
	}

	if g, ok := in.Value.(AttributeGetter); ok {
		if v, found := g.GetAttribute(in.Name); found {
			return v, true, nil
		}
	}
	if c, ok := in.Value.(AttributeCaller); ok {
		if v, err := c.CallAttribute(in.Name); err == nil {
			return v, true, nil
		}
	}
	return nil, false, nil
}

// MembersStrategy reads fields and methods of the declaring entity's members
// value. Methods may take (), (obj) or (obj, opts).
type MembersStrategy struct{}

var optionsType = reflect.TypeOf(map[string]any(nil))

// TryResolve implements Strategy.
func (MembersStrategy) TryResolve(in Input) (any, bool, error) {
	if in.Members == nil {
		return nil, false, nil
	}
	rv, ok := indirect(reflect.ValueOf(in.Members))
	if !ok {
		return nil, false, nil
	}
	m := findMember(rv.Type(), in.Name)
	if !m.allowed(CurrentVisibility()) {
		return nil, false, nil
	}
	switch m.kind {
	case memberField:
		v, ok := readField(rv, m.index)
		return v, ok, nil
	case memberMethod:
		return callMember(addressable(rv).Addr().MethodByName(m.method), in)
	}
	return nil, false, nil
}

func callMember(fn reflect.Value, in Input) (any, bool, error) {
	ft := fn.Type()
	if !validOuts(ft) || ft.IsVariadic() || ft.NumIn() > 2 {
		return nil, false, nil
	}
	args := make([]reflect.Value, 0, ft.NumIn())
	if ft.NumIn() >= 1 {
		obj := reflect.Zero(ft.In(0))
		if in.Value != nil {
			obj = reflect.ValueOf(in.Value)
			if !obj.Type().AssignableTo(ft.In(0)) {
				return nil, false, nil
			}
		}
		args = append(args, obj)
	}
	if ft.NumIn() == 2 {
		if !optionsType.AssignableTo(ft.In(1)) {
			return nil, false, nil
		}
		args = append(args, reflect.ValueOf(in.Options))
	}
	v, err := splitOuts(fn.Call(args))
	return v, true, err
}

// indirect follows pointers and interfaces down to a concrete value.
func indirect(rv reflect.Value) (reflect.Value, bool) {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	return rv, rv.IsValid()
}
