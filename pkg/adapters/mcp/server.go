// Package mcp exposes flow validation to AI agents over the Model Context
// Protocol.
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

	"github.com/aretw0/chatflow"
	"github.com/aretw0/chatflow/internal/logging"
	mermaid "github.com/aretw0/chatflow/internal/presentation/graph"
	"github.com/aretw0/chatflow/pkg/adapters/flowfile"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/graph"
	"github.com/aretw0/chatflow/pkg/session"
	"github.com/aretw0/chatflow/pkg/validation"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

// ValidateResponse is the structured result of validate_flow.
type ValidateResponse struct {
	validation.Report
	Warnings []string `json:"warnings,omitempty" jsonschema_description:"Document problems that do not block saving"`
}

// CycleResponse is the structured result of find_cycle.
type CycleResponse struct {
	HasCycle bool     `json:"has_cycle" jsonschema_description:"Whether the flow contains a directed cycle"`
	Cycle    []string `json:"cycle,omitempty" jsonschema_description:"Node IDs along one cycle, first node repeated at the end"`
}

// ConnectResponse is the structured result of can_connect.
type ConnectResponse struct {
	Allowed bool   `json:"allowed" jsonschema_description:"Whether the connection would be accepted"`
	Reason  string `json:"reason,omitempty" jsonschema_description:"Why the connection is refused"`
}

// Server exposes flow validation and open sessions as an MCP Server.
type Server struct {
	rules     *validation.Engine
	sessions  *session.Manager
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithSessions exposes the sessions of a manager as resources and tools.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.sessions = m
	}
}

// WithRules replaces the default save rules.
func WithRules(rules *validation.Engine) Option {
	return func(s *Server) {
		s.rules = rules
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(opts ...Option) *Server {
	s := &Server{
		rules:  validation.Default(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcpServer = server.NewMCPServer("chatflow-mcp", strings.TrimSpace(chatflow.Version))
	s.registerTools()
	if s.sessions != nil {
		s.registerSessionTools()
		s.registerResources()
	}
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

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
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

const flowArgDescription = "Flow document as JSON or YAML: {nodes: [...], edges: [...]}"

func (s *Server) registerTools() {
	// TOOL: validate_flow
	validateTool := mcp.NewTool("validate_flow",
		mcp.WithDescription("Run save validation on a flow: no cycles and a single entry node."),
		mcp.WithString("flow", mcp.Required(), mcp.Description(flowArgDescription)),
		mcp.WithOutputSchema[ValidateResponse](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))

	// TOOL: find_cycle
	cycleTool := mcp.NewTool("find_cycle",
		mcp.WithDescription("Find one directed cycle in a flow, if any."),
		mcp.WithString("flow", mcp.Required(), mcp.Description(flowArgDescription)),
		mcp.WithOutputSchema[CycleResponse](),
	)
	s.mcpServer.AddTool(cycleTool, mcp.NewStructuredToolHandler(s.handleFindCycle))

	// TOOL: can_connect
	connectTool := mcp.NewTool("can_connect",
		mcp.WithDescription("Check whether a new edge source -> target would be accepted. A node may have at most one outgoing edge."),
		mcp.WithString("flow", mcp.Required(), mcp.Description(flowArgDescription)),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source node ID")),
		mcp.WithString("target", mcp.Required(), mcp.Description("Target node ID")),
		mcp.WithOutputSchema[ConnectResponse](),
	)
	s.mcpServer.AddTool(connectTool, mcp.NewStructuredToolHandler(s.handleCanConnect))

	// TOOL: render_mermaid
	s.mcpServer.AddTool(mcp.NewTool("render_mermaid",
		mcp.WithDescription("Render a flow as a Mermaid flowchart with validation problems highlighted."),
		mcp.WithString("flow", mcp.Required(), mcp.Description(flowArgDescription)),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		g, err := flowfile.Decode([]byte(request.GetString("flow", "")))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid flow: %v", err)), nil
		}
		overlay := mermaid.OverlayFromReport(s.rules.Evaluate(g))
		return mcp.NewToolResultText(mermaid.GenerateMermaid(g, overlay)), nil
	})
}

func (s *Server) registerSessionTools() {
	// TOOL: get_session
	s.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Get the current flow of an open editing session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ed, err := s.sessions.Get(ctx, request.GetString("session_id", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		jsonBytes, _ := json.Marshal(ed.Graph())
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: validate_session
	s.mcpServer.AddTool(mcp.NewTool("validate_session",
		mcp.WithDescription("Run save validation on an open editing session without saving."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[ValidateResponse](),
	), mcp.NewStructuredToolHandler(s.handleValidateSession))
}

func (s *Server) registerResources() {
	// EXPOSE: chatflow://sessions
	s.mcpServer.AddResource(mcp.NewResource("chatflow://sessions", "Open Editing Sessions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.sessions.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list sessions: %w", err)
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "chatflow://sessions",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

// Handler methods for structured tools

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ValidateResponse, error) {
	g, err := flowArg(args)
	if err != nil {
		return ValidateResponse{}, err
	}
	return ValidateResponse{
		Report:   s.rules.Evaluate(g),
		Warnings: flowfile.Lint(g),
	}, nil
}

func (s *Server) handleFindCycle(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CycleResponse, error) {
	g, err := flowArg(args)
	if err != nil {
		return CycleResponse{}, err
	}
	cycle := graph.FindCycle(g.Nodes, g.Edges)
	return CycleResponse{HasCycle: cycle != nil, Cycle: cycle}, nil
}

func (s *Server) handleCanConnect(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ConnectResponse, error) {
	g, err := flowArg(args)
	if err != nil {
		return ConnectResponse{}, err
	}
	source, _ := args["source"].(string)
	target, _ := args["target"].(string)

	switch {
	case !g.HasNode(source):
		return ConnectResponse{Reason: fmt.Sprintf("unknown source node %q", source)}, nil
	case !g.HasNode(target):
		return ConnectResponse{Reason: fmt.Sprintf("unknown target node %q", target)}, nil
	}

	conn := domain.Connection{Source: source, Target: target}
	if !graph.CanConnect(conn, g.Edges) {
		return ConnectResponse{Reason: fmt.Sprintf("node %q already has an outgoing edge", source)}, nil
	}
	return ConnectResponse{Allowed: true}, nil
}

func (s *Server) handleValidateSession(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ValidateResponse, error) {
	id, _ := args["session_id"].(string)
	ed, err := s.sessions.Get(ctx, id)
	if err != nil {
		return ValidateResponse{}, err
	}
	g := ed.Graph()
	return ValidateResponse{
		Report:   ed.Validate(),
		Warnings: flowfile.Lint(g),
	}, nil
}

func flowArg(args map[string]interface{}) (domain.Graph, error) {
	raw, _ := args["flow"].(string)
	if strings.TrimSpace(raw) == "" {
		return domain.Graph{}, errors.New("flow is required")
	}
	g, err := flowfile.Decode([]byte(raw))
	if err != nil {
		return domain.Graph{}, fmt.Errorf("invalid flow: %w", err)
	}
	return g, nil
}
