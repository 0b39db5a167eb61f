package tui_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/vitrine/internal/presentation/tui"
	"github.com/aretw0/vitrine/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocsMarkdown(t *testing.T) {
	docs := entity.MapOf(
		"name", map[string]any{"type": "string", "desc": "Full name"},
		"email", "Contact | work",
		"tags", []any{"a", "b"},
	)

	got := tui.DocsMarkdown("user", docs)
	assert.Equal(t, "# user\n\n"+
		"| Field | Type | Description |\n"+
		"|---|---|---|\n"+
		"| `name` | string | Full name |\n"+
		"| `email` |  | Contact \\| work |\n"+
		"| `tags` |  | [\"a\",\"b\"] |\n", got)

	assert.Contains(t, tui.DocsMarkdown("empty", entity.NewMap()), "_No documented exposures._")
}

func TestNewRenderer(t *testing.T) {
	render, err := tui.NewRenderer(80)
	require.NoError(t, err)
	out, err := render(tui.DocsMarkdown("user", entity.MapOf("name", "Full name")))
	require.NoError(t, err)
	assert.Contains(t, out, "Full name")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, "0.1.0")
	assert.Contains(t, buf.String(), "0.1.0")
}
