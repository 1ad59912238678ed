package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/digest"
	"github.com/aretw0/digest/internal/logging"
	"github.com/aretw0/digest/pkg/ports"
	"github.com/aretw0/digest/pkg/session"
)

// graphURI is the resource exposing the pipeline definition.
const graphURI = "digest://graph"

// Server exposes the research pipeline as MCP tools.
type Server struct {
	pipeline  ports.Pipeline
	sessions  *session.Manager
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a new MCP Server instance.
func NewServer(p ports.Pipeline, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		pipeline: p,
		sessions: sessions,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcpServer = server.NewMCPServer(
		"digest-mcp",
		strings.TrimSpace(digest.Version),
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
		server.WithInstructions("Digest researches a topic on the web, summarizes and edits it in a requested style, then asks for approval. Use research to start a run, resume to send a run back to an editor with instructions, history and stats to inspect past runs."),
	)
	s.mcpServer.AddTools(s.tools()...)
	s.registerResources()
	return s
}

// MCPServer returns the underlying MCPServer for testing or custom transports.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves on Stdin/Stdout until ctx is cancelled or stdin closes.
func (s *Server) ServeStdio(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutdown signal received, stopping MCP server")
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

func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: researchTool(), Handler: s.handleResearch},
		{Tool: resumeTool(), Handler: s.handleResume},
		{Tool: historyTool(), Handler: s.handleHistory},
		{Tool: statsTool(), Handler: s.handleStats},
		{Tool: graphTool(), Handler: s.handleGraph},
	}
}

// --- Tool definitions ---

func researchTool() mcp.Tool {
	return mcp.NewTool("research",
		mcp.WithDescription("Research a topic and return the edited digest"),
		mcp.WithString("query", mcp.Required(), mcp.Description("Topic to research")),
		mcp.WithString("style", mcp.Description("Output style: academic (default), journalistic, technical, popularized, or any free-form register")),
	)
}

func resumeTool() mcp.Tool {
	return mcp.NewTool("resume",
		mcp.WithDescription("Send a stored run back through the pipeline with reviewer instructions"),
		mcp.WithString("run_id", mcp.Required(), mcp.Description("ID returned by research")),
		mcp.WithString("instructions", mcp.Description("Guidance for the editor")),
		mcp.WithString("step", mcp.Description("Step to re-enter (default: edit)")),
	)
}

func historyTool() mcp.Tool {
	return mcp.NewTool("history",
		mcp.WithDescription("List every completed run saved to memory"),
	)
}

func statsTool() mcp.Tool {
	return mcp.NewTool("stats",
		mcp.WithDescription("Aggregate statistics over the run history"),
	)
}

func graphTool() mcp.Tool {
	return mcp.NewTool("get_graph",
		mcp.WithDescription("Get the pipeline graph definition for introspection"),
	)
}
