package declare_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/vitrine/pkg/declare"
	"github.com/aretw0/vitrine/pkg/entity"
	"github.com/aretw0/vitrine/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersYAML = `
entities:
  address:
    expose:
      - name: city
      - name: zip
        as: postal_code
  user:
    root: [users, user]
    expose:
      - name: name
      - name: email
        if: admin
      - name: nickname
        safe: true
        default: anonymous
      - name: address
        using: address
      - name: meta
        expose:
          - names: [created_at, updated_at]
      - name: kind
        value: person
`

func render(t *testing.T, reg *registry.Registry, name string, input any, opts entity.Options) string {
	t.Helper()
	if opts == nil {
		opts = entity.Options{}
	}
	opts["serializable"] = true
	out, err := reg.Represent(name, input, opts)
	require.NoError(t, err)
	b, err := json.Marshal(out)
	require.NoError(t, err)
	return string(b)
}

func TestLoader_YAML(t *testing.T) {
	reg := registry.NewRegistry()
	names, err := declare.NewLoader(reg).Load(strings.NewReader(usersYAML), "yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"address", "user"}, names)
	assert.Equal(t, []string{"address", "user"}, reg.Names())

	input := map[string]any{
		"name":       "Ada",
		"email":      "ada@example.com",
		"address":    map[string]any{"city": "London", "zip": "N1"},
		"created_at": "2024-01-01",
		"updated_at": "2024-02-01",
	}

	t.Run("Single item", func(t *testing.T) {
		got := render(t, reg, "user", input, nil)
		assert.JSONEq(t, `{"user":{
			"name":"Ada",
			"nickname":"anonymous",
			"address":{"city":"London","postal_code":"N1"},
			"meta":{"created_at":"2024-01-01","updated_at":"2024-02-01"},
			"kind":"person"}}`, got)
	})

	t.Run("Condition option", func(t *testing.T) {
		got := render(t, reg, "user", input, entity.Options{"admin": true, "root": nil})
		assert.Contains(t, got, `"email":"ada@example.com"`)
	})

	t.Run("Key order follows declaration", func(t *testing.T) {
		got := render(t, reg, "user", input, entity.Options{"root": false})
		assert.True(t, strings.HasPrefix(got, `{"name":"Ada","nickname":"anonymous","address":`), got)
	})

	t.Run("Collection root", func(t *testing.T) {
		got := render(t, reg, "user", []any{input}, entity.Options{"only": []any{"name"}})
		assert.JSONEq(t, `{"users":[{"name":"Ada"}]}`, got)
	})
}

func TestLoader_JSONC(t *testing.T) {
	doc := `{
		// comments are allowed
		"entities": {
			"item": {
				"present_collection": {"enabled": true, "name": "things"},
				"expose": [
					{"name": "things", "expose": [{"name": "count", "value": 2}]},
				],
			},
		},
	}`
	reg := registry.NewRegistry()
	_, err := declare.NewLoader(reg).Load(strings.NewReader(doc), "json")
	require.NoError(t, err)

	got := render(t, reg, "item", []any{1, 2}, nil)
	assert.JSONEq(t, `{"things":{"count":2}}`, got)
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		message string
	}{
		{
			name: "Unknown exposure key",
			doc: `
entities:
  user:
    expose:
      - name: name
        colour: red
`,
			message: "Unrecognized `colour` option",
		},
		{
			name: "Unknown using reference",
			doc: `
entities:
  user:
    expose:
      - name: address
        using: nowhere
`,
			message: "Unknown entity `nowhere`",
		},
		{
			name: "Unknown parent",
			doc: `
entities:
  admin:
    extends: [user]
`,
			message: "Unknown entity `user`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := registry.NewRegistry()
			_, err := declare.NewLoader(reg).Load(strings.NewReader(tt.doc), "yaml")
			require.Error(t, err)
			assert.ErrorIs(t, err, entity.ErrInvalidOption)
			assert.Contains(t, err.Error(), tt.message)
			assert.Empty(t, reg.Names())
		})
	}

	t.Run("Multi-name exposure with as fails on load", func(t *testing.T) {
		doc := `
entities:
  user:
    expose:
      - names: [a, b]
        as: c
`
		reg := registry.NewRegistry()
		_, err := declare.NewLoader(reg).Load(strings.NewReader(doc), "yaml")
		require.NoError(t, err)
		err = reg.LoadAll()
		assert.ErrorIs(t, err, entity.ErrInvalidOption)
	})

	t.Run("Unsupported format", func(t *testing.T) {
		_, err := declare.NewLoader(registry.NewRegistry()).Load(strings.NewReader(""), "toml")
		assert.Error(t, err)
	})
}

func TestLoader_Extends(t *testing.T) {
	doc := `
entities:
  user:
    expose:
      - name: name
      - name: email
  admin:
    extends: [user]
    expose:
      - name: email
        override: true
        as: contact
      - name: role
`
	reg := registry.NewRegistry()
	_, err := declare.NewLoader(reg).Load(strings.NewReader(doc), "yaml")
	require.NoError(t, err)

	got := render(t, reg, "admin", map[string]any{"name": "Ada", "email": "a@x", "role": "root"}, nil)
	assert.Equal(t, `{"name":"Ada","contact":"a@x","role":"root"}`, got)
}

func TestLoader_Dir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_address.yaml"), []byte(`
entities:
  address:
    expose:
      - name: city
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b_user.json"), []byte(`{
  "entities": {"user": {"expose": [{"name": "home", "using": "address"}]}}
}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	reg := registry.NewRegistry()
	names, err := declare.NewLoader(reg).LoadPath(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"address", "user"}, names)

	got := render(t, reg, "user", map[string]any{"home": map[string]any{"city": "Lisbon"}}, nil)
	assert.Equal(t, `{"home":{"city":"Lisbon"}}`, got)
}

func TestFormatOf(t *testing.T) {
	for path, want := range map[string]string{
		"a.yaml": "yaml", "a.YML": "yaml", "a.json": "json", "a.jsonc": "json",
	} {
		got, err := declare.FormatOf(path)
		require.NoError(t, err)
		assert.Equal(t, want, got, path)
	}
	_, err := declare.FormatOf("a.toml")
	assert.Error(t, err)
}
