package resolve_test

import (
	"errors"
	"testing"

	"github.com/aretw0/vitrine/pkg/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type Base struct {
	ID int
}

func (Base) Kind() string { return "base" }

type Account struct {
	Base
	Email    string `json:"email_address"`
	Nick     string `vitrine:"handle" json:"nick"`
	FullName string
	secret   string
}

func (a Account) Greeting() string { return "hi " + a.Nick }

func (a *Account) Score() (int, error) { return 42, nil }

func (a Account) Broken() (string, error) { return "", errors.New("boom") }

type dynamic struct{}

func (dynamic) GetAttribute(name string) (any, bool) {
	if name == "color" {
		return "blue", true
	}
	return nil, false
}

func (dynamic) CallAttribute(name string) (any, error) {
	if name == "size" {
		return 3, nil
	}
	return nil, errors.New("no")
}

func resolveName(t *testing.T, v any, name string) any {
	t.Helper()
	out, err := resolve.Resolve(resolve.Input{Value: v, Name: name})
	require.NoError(t, err)
	return out
}

func TestMappingStrategy(t *testing.T) {
	om := orderedmap.New[string, any]()
	om.Set("a", 1)

	assert.Equal(t, 1, resolveName(t, map[string]any{"a": 1}, "a"))
	assert.Equal(t, 7, resolveName(t, map[string]int{"a": 7}, "a"))
	assert.Equal(t, 1, resolveName(t, om, "a"))
	assert.Nil(t, resolveName(t, map[string]any{"a": nil}, "a"))

	t.Run("Lazy values", func(t *testing.T) {
		assert.Equal(t, "x", resolveName(t, map[string]any{"a": func() any { return "x" }}, "a"))
		assert.Equal(t, 5, resolveName(t, map[string]any{"a": func() int { return 5 }}, "a"))

		_, err := resolve.Resolve(resolve.Input{
			Value: map[string]any{"a": func() (any, error) { return nil, errors.New("lazy failed") }},
			Name:  "a",
		})
		assert.EqualError(t, err, "lazy failed")

		oneArg := func(int) int { return 1 }
		got := resolveName(t, map[string]any{"a": oneArg}, "a")
		assert.NotNil(t, got)
	})

	t.Run("Missing key", func(t *testing.T) {
		_, err := resolve.Resolve(resolve.Input{Value: map[string]any{"a": 1}, Name: "b"})
		var missing *resolve.MissingAttributeError
		require.ErrorAs(t, err, &missing)
		assert.ErrorIs(t, err, resolve.ErrMissingAttribute)
		assert.Equal(t, "Missing property or method `b` on `{\"a\":1}`", err.Error())
	})
}

func TestObjectStrategy(t *testing.T) {
	acct := Account{Base: Base{ID: 9}, Email: "a@x", Nick: "ada", FullName: "Ada L", secret: "s"}

	tests := []struct {
		name string
		want any
	}{
		{"email_address", "a@x"},
		{"handle", "ada"},
		{"nick", "ada"},
		{"Email", "a@x"},
		{"full_name", "Ada L"},
		{"secret", "s"},
		{"ID", 9},
		{"Greeting", "hi ada"},
		{"greeting", "hi ada"},
		{"score", 42},
		{"kind", "base"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveName(t, acct, tt.name))
			assert.Equal(t, tt.want, resolveName(t, &acct, tt.name))
		})
	}

	t.Run("Method error", func(t *testing.T) {
		_, err := resolve.Resolve(resolve.Input{Value: acct, Name: "broken"})
		assert.EqualError(t, err, "boom")
	})

	t.Run("Nil pointer is missing", func(t *testing.T) {
		var p *Account
		_, err := resolve.Resolve(resolve.Input{Value: p, Name: "email"})
		assert.ErrorIs(t, err, resolve.ErrMissingAttribute)
	})

	t.Run("Dynamic hooks", func(t *testing.T) {
		assert.Equal(t, "blue", resolveName(t, dynamic{}, "color"))
		assert.Equal(t, 3, resolveName(t, dynamic{}, "size"))
		_, err := resolve.Resolve(resolve.Input{Value: dynamic{}, Name: "weight"})
		assert.ErrorIs(t, err, resolve.ErrMissingAttribute)
	})
}

func TestVisibility(t *testing.T) {
	t.Cleanup(func() { resolve.SetVisibility(resolve.AllowAll) })
	acct := Account{Base: Base{ID: 9}, secret: "s"}

	resolve.SetVisibility(resolve.Visibility{})
	for _, name := range []string{"secret", "ID", "kind"} {
		_, err := resolve.Resolve(resolve.Input{Value: acct, Name: name})
		assert.ErrorIs(t, err, resolve.ErrMissingAttribute, name)
	}

	resolve.SetVisibility(resolve.Visibility{PromotedFields: true})
	assert.Equal(t, 9, resolveName(t, acct, "ID"))
	assert.Equal(t, resolve.Visibility{PromotedFields: true}, resolve.CurrentVisibility())
}

type members struct {
	Prefix string
}

func (m members) Label(obj map[string]any) string {
	return m.Prefix + obj["name"].(string)
}

func (m members) Scoped(obj map[string]any, opts map[string]any) string {
	return opts["scope"].(string)
}

func (members) Constant() int { return 1 }

func TestMembersStrategy(t *testing.T) {
	in := resolve.Input{
		Value:   map[string]any{"name": "Ada"},
		Members: members{Prefix: "Dr. "},
		Options: map[string]any{"scope": "admin"},
	}

	for name, want := range map[string]any{
		"prefix":   "Dr. ",
		"label":    "Dr. Ada",
		"scoped":   "admin",
		"constant": 1,
	} {
		in.Name = name
		got, err := resolve.Resolve(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}

	t.Run("Mapping keys win", func(t *testing.T) {
		in := resolve.Input{Value: map[string]any{"label": "raw"}, Name: "label", Members: members{}}
		got, err := resolve.Resolve(in)
		require.NoError(t, err)
		assert.Equal(t, "raw", got)
	})
}

func TestSafe(t *testing.T) {
	got, err := resolve.Resolve(resolve.Input{Value: struct{}{}, Name: "nope", Safe: true})
	require.NoError(t, err)
	assert.Nil(t, got)
}

type point struct{ X, Y int }

func TestAdapters(t *testing.T) {
	t.Cleanup(func() {
		resolve.RegisterAdapter("points", nil)
		resolve.RegisterAdapter("fallback", nil)
	})

	calls := 0
	resolve.RegisterAdapter("points", &resolve.Adapter{
		Condition: func(v any) bool { _, ok := v.(point); return ok },
		Resolve: func(v any, name string, safe bool, cache resolve.Cache) (any, error) {
			if cached, ok := cache.Get(resolve.TypeName(v), name); ok {
				return cached, nil
			}
			calls++
			if name != "sum" {
				return resolve.Missing(name, v, safe)
			}
			p := v.(point)
			cache.Set(resolve.TypeName(v), name, p.X+p.Y)
			return p.X + p.Y, nil
		},
	})
	resolve.RegisterAdapter("fallback", &resolve.Adapter{
		Condition: func(any) bool { return true },
		Resolve: func(any, string, bool, resolve.Cache) (any, error) {
			return "fallback", nil
		},
	})

	assert.Equal(t, []string{"points", "fallback"}, resolve.Adapters())
	assert.Equal(t, 3, resolveName(t, point{1, 2}, "sum"))
	assert.Equal(t, 3, resolveName(t, point{5, 5}, "sum"), "cached per type and field")
	assert.Equal(t, 1, calls)

	// Adapters run before reflection.
	assert.Equal(t, "fallback", resolveName(t, Account{Email: "a@x"}, "email"))

	t.Run("Adapter miss honours safe", func(t *testing.T) {
		got, err := resolve.Resolve(resolve.Input{Value: point{}, Name: "X", Safe: true})
		require.NoError(t, err)
		assert.Nil(t, got)
		_, err = resolve.Resolve(resolve.Input{Value: point{}, Name: "X"})
		assert.ErrorIs(t, err, resolve.ErrMissingAttribute)
	})

	t.Run("Replacing keeps the slot and resets the cache", func(t *testing.T) {
		resolve.RegisterAdapter("points", &resolve.Adapter{
			Condition: func(v any) bool { _, ok := v.(point); return ok },
			Resolve: func(any, string, bool, resolve.Cache) (any, error) {
				return "replaced", nil
			},
		})
		assert.Equal(t, []string{"points", "fallback"}, resolve.Adapters())
		c, ok := resolve.AdapterCache("points")
		require.True(t, ok)
		_, hit := c.Get("resolve_test.point", "sum")
		assert.False(t, hit)
		assert.Equal(t, "replaced", resolveName(t, point{}, "sum"))
	})

	t.Run("Removal", func(t *testing.T) {
		resolve.RegisterAdapter("fallback", nil)
		_, ok := resolve.AdapterCache("fallback")
		assert.False(t, ok)
		assert.Equal(t, []string{"points"}, resolve.Adapters())
	})
}

func TestCacheFactory(t *testing.T) {
	t.Cleanup(func() {
		resolve.SetCacheFactory(nil)
		resolve.RegisterAdapter("custom", nil)
	})

	var built []string
	resolve.SetCacheFactory(func(name string) resolve.Cache {
		built = append(built, name)
		return resolve.NewMemoryCache()
	})
	resolve.RegisterAdapter("custom", &resolve.Adapter{Condition: func(any) bool { return false }})
	assert.Equal(t, []string{"custom"}, built)
}

func TestChain(t *testing.T) {
	upper := resolve.StrategyFunc(func(in resolve.Input) (any, bool, error) {
		if in.Name == "shout" {
			return "HEY", true, nil
		}
		return nil, false, nil
	})
	chain := append(resolve.Chain{upper}, resolve.DefaultChain()...)

	got, err := chain.Resolve(resolve.Input{Value: map[string]any{"shout": "hey"}, Name: "shout"})
	require.NoError(t, err)
	assert.Equal(t, "HEY", got)

	got, err = chain.Resolve(resolve.Input{Value: map[string]any{"a": 1}, Name: "a"})
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	_, err = resolve.Chain{}.Resolve(resolve.Input{Value: 1, Name: "a"})
	assert.ErrorIs(t, err, resolve.ErrMissingAttribute)
}

func TestMemoryCache(t *testing.T) {
	c := resolve.NewMemoryCache()
	_, ok := c.Get("T", "a")
	assert.False(t, ok)

	c.Set("T", "a", 1)
	v, ok := c.Get("T", "a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	c.Reset()
	_, ok = c.Get("T", "a")
	assert.False(t, ok)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "", resolve.Describe(nil))
	assert.Equal(t, `[1,2]`, resolve.Describe([]int{1, 2}))
	assert.Equal(t, "resolve_test.point", resolve.Describe(point{}))
	assert.Equal(t, "*resolve_test.point", resolve.Describe(&point{}))
	assert.Equal(t, "12", resolve.Describe(12))
	assert.Equal(t, "<nil>", resolve.TypeName(nil))
	assert.Equal(t, "int", resolve.TypeName(1))
}
