package redact_test

import (
	"testing"

	"github.com/aretw0/vitrine/pkg/entity"
	"github.com/aretw0/vitrine/pkg/redact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactor(t *testing.T) {
	r, err := redact.New(`(?i)password`, `^ssn$`)
	require.NoError(t, err)

	in := entity.MapOf(
		"name", "Ada",
		"Password", "hunter2",
		"profile", map[string]any{"ssn": "123", "city": "London"},
		"accounts", []any{entity.MapOf("db_password", "x", "id", 1)},
	)
	out := r.Apply(in).(*entity.Map)

	assert.Equal(t, []string{"name", "Password", "profile", "accounts"}, entity.Keys(out))
	assert.Equal(t, redact.Mask, out.Value("Password"))
	assert.Equal(t, map[string]any{"ssn": redact.Mask, "city": "London"}, out.Value("profile"))
	acct := out.Value("accounts").([]any)[0].(*entity.Map)
	assert.Equal(t, redact.Mask, acct.Value("db_password"))
	assert.Equal(t, 1, acct.Value("id"))

	t.Run("Original untouched", func(t *testing.T) {
		assert.Equal(t, "hunter2", in.Value("Password"))
		assert.Equal(t, "123", in.Value("profile").(map[string]any)["ssn"])
	})
}

func TestNew(t *testing.T) {
	r, err := redact.New()
	require.NoError(t, err)
	assert.Nil(t, r)
	assert.Equal(t, "same", r.Apply("same"))

	_, err = redact.New("(")
	assert.ErrorContains(t, err, "invalid redact pattern")
}

func TestFormatter(t *testing.T) {
	redact.RegisterFormatter()
	t.Cleanup(func() { entity.RegisterFormatter(redact.FormatterName, nil) })

	e := entity.New("user", func(b *entity.Builder) {
		b.Expose("name")
		b.Expose("token", entity.FormatWith("redact"))
		b.Expose("backup", entity.FormatWith("redact"), entity.Safe())
	})
	out, err := e.Represent(map[string]any{"name": "Ada", "token": "t0k"}, entity.Options{"serializable": true})
	require.NoError(t, err)
	m := out.(*entity.Map)
	assert.Equal(t, redact.Mask, m.Value("token"))
	assert.Nil(t, m.Value("backup"))
}
