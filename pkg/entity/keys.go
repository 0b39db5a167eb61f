package entity

import (
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// KeyTransformer reshapes every emitted key and root name.
type KeyTransformer func(key string) string

type keyTransformerState struct {
	fn      KeyTransformer
	version uint64
}

var (
	keyTransformer  atomic.Pointer[keyTransformerState]
	keyTransformers = map[string]KeyTransformer{
		"camel": Camel,
		"snake": Snake,
	}
)

func init() {
	keyTransformer.Store(&keyTransformerState{})
}

// SetKeyTransformer installs the process-wide key transformer. nil disables it.
func SetKeyTransformer(fn KeyTransformer) {
	prev := keyTransformer.Load()
	keyTransformer.Store(&keyTransformerState{fn: fn, version: prev.version + 1})
}

// UseKeyTransformer installs a built-in transformer by name ("camel" or
// "snake"). An empty name disables key transformation.
func UseKeyTransformer(name string) error {
	if name == "" {
		SetKeyTransformer(nil)
		return nil
	}
	fn, ok := keyTransformers[name]
	if !ok {
		return invalidOption("Unknown key transformer `%s`", name)
	}
	SetKeyTransformer(fn)
	return nil
}

// KeyTransformerFunc returns the installed transformer, or nil.
func KeyTransformerFunc() KeyTransformer {
	return keyTransformer.Load().fn
}

func transformKey(key string) string {
	if fn := keyTransformer.Load().fn; fn != nil {
		return fn(key)
	}
	return key
}

func keyTransformerVersion() uint64 {
	return keyTransformer.Load().version
}

var camelCache, snakeCache sync.Map

func isKeySeparator(r rune) bool {
	return r == '-' || r == '_' || unicode.IsSpace(r)
}

// Camel lowercases s, drops '-', '_' and whitespace, and upper-cases the
// character following each dropped run, except at the start.
// "first_name-and-last_name" becomes "firstNameAndLastName".
func Camel(s string) string {
	if v, ok := camelCache.Load(s); ok {
		return v.(string)
	}
	upper := cases.Upper(language.Und)
	var b strings.Builder
	pending, leading := false, true
	for _, r := range cases.Lower(language.Und).String(s) {
		if isKeySeparator(r) {
			pending = true
			continue
		}
		if pending && !leading {
			b.WriteString(upper.String(string(r)))
		} else {
			b.WriteRune(r)
		}
		pending, leading = false, false
	}
	out := b.String()
	camelCache.Store(s, out)
	return out
}

var snakePattern = regexp.MustCompile(`(.)(\p{Lu})|(\s+(.)?)`)

// Snake inserts '_' before every upper-case letter that follows another
// character, removes whitespace runs, and lowercases the result.
// "firstName" becomes "first_name".
func Snake(s string) string {
	if v, ok := snakeCache.Load(s); ok {
		return v.(string)
	}
	var b strings.Builder
	last := 0
	for _, m := range snakePattern.FindAllStringSubmatchIndex(s, -1) {
		b.WriteString(s[last:m[0]])
		if m[6] >= 0 {
			if m[8] >= 0 {
				b.WriteString(s[m[8]:m[9]])
			}
		} else {
			b.WriteString(s[m[2]:m[3]])
			b.WriteByte('_')
			b.WriteString(s[m[4]:m[5]])
		}
		last = m[1]
	}
	b.WriteString(s[last:])
	out := cases.Lower(language.Und).String(b.String())
	snakeCache.Store(s, out)
	return out
}
