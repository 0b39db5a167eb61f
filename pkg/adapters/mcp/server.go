package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/vitrine"
	"github.com/aretw0/vitrine/internal/logging"
	"github.com/aretw0/vitrine/pkg/entity"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Engine defines the interface required by the MCP server to render entities.
type Engine interface {
	Entities() []string
	Documentation(name string) (*entity.Map, error)
	Encode(ctx context.Context, name string, input any, opts entity.Options, format string, pretty bool) ([]byte, string, error)
}

// Server wraps the vitrine Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

type Option func(*Server)

// WithLogger sets the logger used for tool failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("vitrine-mcp", strings.TrimSpace(vitrine.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when
// ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: render_entity
	s.mcpServer.AddTool(mcp.NewTool("render_entity",
		mcp.WithDescription("Render an input object through a registered entity."),
		mcp.WithString("entity", mcp.Required(), mcp.Description("Name of the entity")),
		mcp.WithString("input", mcp.Required(), mcp.Description("JSON value to render (object or array)")),
		mcp.WithString("options", mcp.Description("JSON object of render options, e.g. {\"only\":[\"id\"]}")),
		mcp.WithString("format", mcp.Description("Output format: json (default), yaml or xml")),
	), s.handleRender)

	// TOOL: describe_entity
	s.mcpServer.AddTool(mcp.NewTool("describe_entity",
		mcp.WithDescription("Get the documentation attached to the exposures of an entity."),
		mcp.WithString("entity", mcp.Required(), mcp.Description("Name of the entity")),
	), s.handleDescribe)

	// TOOL: list_entities
	s.mcpServer.AddTool(mcp.NewTool("list_entities",
		mcp.WithDescription("List the registered entities."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, _ := json.Marshal(s.engine.Entities())
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleRender(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("entity")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rawInput, err := request.RequireString("input")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var input any
	if err := json.Unmarshal([]byte(rawInput), &input); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("input is not valid JSON: %v", err)), nil
	}
	opts := entity.Options{}
	if rawOpts := request.GetString("options", ""); rawOpts != "" {
		if err := json.Unmarshal([]byte(rawOpts), &opts); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("options is not a valid JSON object: %v", err)), nil
		}
	}

	format := request.GetString("format", "json")
	data, _, err := s.engine.Encode(ctx, name, input, opts, format, format == "json")
	if err != nil {
		if !errors.Is(err, entity.ErrMissingAttribute) {
			s.logger.Warn("MCP render failed", "entity", name, "err", err)
		}
		return mcp.NewToolResultError(fmt.Sprintf("render failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleDescribe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("entity")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	docs, err := s.engine.Documentation(name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("describe failed: %v", err)), nil
	}
	jsonBytes, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) registerResources() {
	// EXPOSE: vitrine://entities
	s.mcpServer.AddResource(mcp.NewResource("vitrine://entities", "Registered Entities",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, _ := json.Marshal(s.engine.Entities())

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "vitrine://entities",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
