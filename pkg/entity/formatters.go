package entity

import "sync"

var (
	globalFormattersMu sync.RWMutex
	globalFormatters   = make(map[string]Formatter)
)

// RegisterFormatter registers a formatter visible to every entity under name.
// A nil formatter removes it.
func RegisterFormatter(name string, fn Formatter) {
	globalFormattersMu.Lock()
	defer globalFormattersMu.Unlock()
	if fn == nil {
		delete(globalFormatters, name)
		return
	}
	globalFormatters[name] = fn
}

// ResetFormatters removes every global formatter.
func ResetFormatters() {
	globalFormattersMu.Lock()
	defer globalFormattersMu.Unlock()
	globalFormatters = make(map[string]Formatter)
}

func globalFormatter(name string) (Formatter, bool) {
	globalFormattersMu.RLock()
	defer globalFormattersMu.RUnlock()
	fn, ok := globalFormatters[name]
	return fn, ok
}

// format applies the format_with option of an exposure.
func (e *Entity) format(t *tree, f any, value, obj any, opts Options) (any, error) {
	switch fn := f.(type) {
	case Formatter:
		return fn(value, obj, opts)
	case string:
		if local, ok := t.formatters[fn]; ok {
			return local(value, obj, opts)
		}
		if global, ok := globalFormatter(fn); ok {
			return global(value, obj, opts)
		}
		return nil, &ConfigError{
			Kind:    ErrInvalidOption,
			Entity:  e.name,
			Message: "Invalid format_with option: " + fn,
		}
	}
	return nil, &ConfigError{Kind: ErrInvalidOption, Entity: e.name, Message: "Invalid format_with option"}
}
