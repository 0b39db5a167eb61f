package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/vitrine"
	"github.com/aretw0/vitrine/pkg/entity"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	eng := vitrine.New()
	eng.Register(entity.New("user", func(b *entity.Builder) {
		b.Expose("name", entity.Documentation("Full name"))
		b.Expose("email", entity.If("admin"))
	}))
	return NewServer(eng)
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestHandleRender(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	t.Run("JSON", func(t *testing.T) {
		res, err := s.handleRender(ctx, call(map[string]any{
			"entity":  "user",
			"input":   `{"name":"Ada","email":"a@x"}`,
			"options": `{"admin":true}`,
		}))
		require.NoError(t, err)
		assert.False(t, res.IsError)
		assert.JSONEq(t, `{"name":"Ada","email":"a@x"}`, text(t, res))
	})

	t.Run("YAML", func(t *testing.T) {
		res, err := s.handleRender(ctx, call(map[string]any{
			"entity": "user",
			"input":  `{"name":"Ada"}`,
			"format": "yaml",
		}))
		require.NoError(t, err)
		assert.Equal(t, "name: Ada\n", text(t, res))
	})

	t.Run("Errors are tool results", func(t *testing.T) {
		for name, args := range map[string]map[string]any{
			"missing entity arg": {"input": `{}`},
			"bad input":          {"entity": "user", "input": `{`},
			"bad options":        {"entity": "user", "input": `{}`, "options": `[1]`},
			"unknown entity":     {"entity": "nope", "input": `{}`},
		} {
			res, err := s.handleRender(ctx, call(args))
			require.NoError(t, err, name)
			assert.True(t, res.IsError, name)
		}
	})
}

func TestHandleDescribe(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleDescribe(context.Background(), call(map[string]any{"entity": "user"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Full name"}`, text(t, res))

	res, err = s.handleDescribe(context.Background(), call(map[string]any{"entity": "nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
