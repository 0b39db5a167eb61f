package entity

// Projections come from the "only" and "except" render options. Both accept
// a field name, a list of names, or a list mixing names and mappings of
// field name to sub-projection:
//
//	Options{"only": []any{"id", map[string]any{"user": []any{"name"}}}}
//
// "only" keeps the listed names plus the keys of nested mappings. "except"
// drops the listed names; nested mappings only narrow the inner render.

type keySet map[string]struct{}

func parseProjection(spec any, only bool) keySet {
	if spec == nil {
		return nil
	}
	set := keySet{}
	flattenProjection(spec, only, set)
	return set
}

func flattenProjection(spec any, only bool, set keySet) {
	switch s := spec.(type) {
	case string:
		set[s] = struct{}{}
	case []string:
		for _, k := range s {
			set[k] = struct{}{}
		}
	case []any:
		for _, item := range s {
			flattenProjection(item, only, set)
		}
	default:
		if only {
			for _, k := range projectionKeys(spec) {
				set[k] = struct{}{}
			}
		}
	}
}

func projectionKeys(spec any) []string {
	switch m := spec.(type) {
	case map[string]any:
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		return keys
	case Options:
		return projectionKeys(map[string]any(m))
	case *Map:
		return Keys(m)
	}
	return nil
}

func projectionEntry(spec any, key string) (any, bool) {
	switch m := spec.(type) {
	case map[string]any:
		v, ok := m[key]
		return v, ok
	case Options:
		v, ok := m[key]
		return v, ok
	case *Map:
		if m == nil {
			return nil, false
		}
		return m.Get(key)
	}
	return nil, false
}

func shouldIncludeKey(key string, only, except keySet) bool {
	if only != nil {
		if _, ok := only[key]; !ok {
			return false
		}
	}
	_, excluded := except[key]
	return !excluded
}

// narrowOptions descends the projections one level into key: a nested entry
// for key becomes the new projection, otherwise the projection is removed.
func narrowOptions(opts Options, key string) Options {
	out := opts.Clone()
	for _, kind := range [...]string{"only", "except"} {
		spec, ok := out[kind]
		if !ok || spec == nil {
			continue
		}
		var items []any
		switch s := spec.(type) {
		case []any:
			items = s
		default:
			items = []any{s}
		}
		found := false
		for _, item := range items {
			if sub, ok := projectionEntry(item, key); ok {
				out[kind] = sub
				found = true
				break
			}
		}
		if !found {
			delete(out, kind)
		}
	}
	return out
}
