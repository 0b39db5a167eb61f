// Package redact masks sensitive values in rendered output.
//
// A Redactor replaces the value of every key matching one of its patterns,
// at any depth, with Mask. The "redact" formatter does the same for a
// single exposure:
//
//	redact.RegisterFormatter()
//	b.Expose("ssn", entity.FormatWith("redact"))
package redact

import (
	"fmt"
	"regexp"

	"github.com/aretw0/vitrine/pkg/entity"
)

// Mask replaces redacted values.
const Mask = "***"

// FormatterName is the name RegisterFormatter uses.
const FormatterName = "redact"

// Redactor masks the values of keys that match its patterns.
type Redactor struct {
	patterns []*regexp.Regexp
}

// New compiles patterns. It returns nil, and no error, when there are none.
func New(patterns ...string) (*Redactor, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	r := &Redactor{patterns: make([]*regexp.Regexp, len(patterns))}
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redact pattern %q: %w", p, err)
		}
		r.patterns[i] = re
	}
	return r, nil
}

// Apply returns a copy of v with matching keys masked. v itself is never
// modified. A nil Redactor returns v unchanged.
func (r *Redactor) Apply(v any) any {
	if r == nil {
		return v
	}
	return r.walk(v)
}

func (r *Redactor) walk(v any) any {
	switch t := v.(type) {
	case *entity.Map:
		out := entity.NewMap()
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			out.Set(pair.Key, r.value(pair.Key, pair.Value))
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = r.value(k, val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = r.walk(el)
		}
		return out
	}
	return v
}

func (r *Redactor) value(key string, v any) any {
	if r.matches(key) {
		return Mask
	}
	return r.walk(v)
}

func (r *Redactor) matches(key string) bool {
	for _, p := range r.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}

// Formatter masks any non-nil value.
func Formatter(value, _ any, _ entity.Options) (any, error) {
	if value == nil {
		return nil, nil
	}
	return Mask, nil
}

// RegisterFormatter makes Formatter available to every entity as "redact".
func RegisterFormatter() {
	entity.RegisterFormatter(FormatterName, Formatter)
}
