// Package http serves chatflow editing sessions as a JSON API described by
// an embedded OpenAPI document.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/chatflow"
	"github.com/aretw0/chatflow/internal/logging"
	mermaid "github.com/aretw0/chatflow/internal/presentation/graph"
	"github.com/aretw0/chatflow/pkg/adapters/flowfile"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/observability"
	"github.com/aretw0/chatflow/pkg/session"
	"github.com/aretw0/chatflow/pkg/suggest"
	"github.com/aretw0/chatflow/pkg/validation"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server serves editing sessions over HTTP.
type Server struct {
	Sessions *session.Manager
	Streams  *StreamManager
	Rules    *validation.Engine

	metrics *observability.Metrics
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics instruments requests and exposes GET /metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRules sets the rules used by the stateless POST /validate.
func WithRules(rules *validation.Engine) Option {
	return func(s *Server) {
		s.Rules = rules
	}
}

// NewHandler creates a new HTTP handler for the session manager. It fails
// when the embedded API document does not load.
func NewHandler(sessions *session.Manager, opts ...Option) (http.Handler, error) {
	s := &Server{
		Sessions: sessions,
		Rules:    validation.Default(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)

	doc, err := LoadSpec(context.Background())
	if err != nil {
		return nil, err
	}
	validate, err := requestValidator(doc)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if s.metrics != nil {
		r.Use(s.instrument)
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(RawSpec())
	})

	r.Group(func(r chi.Router) {
		r.Use(validate)

		r.Get("/health", s.GetHealth)
		r.Post("/validate", s.ValidateFlow)

		r.Get("/sessions", s.ListSessions)
		r.Post("/sessions", s.CreateSession)
		r.Get("/sessions/{id}", s.GetSession)
		r.Delete("/sessions/{id}", s.DeleteSession)
		r.Get("/sessions/{id}/mermaid", s.GetSessionMermaid)
		r.Get("/sessions/{id}/events", s.SubscribeEvents)

		r.Post("/sessions/{id}/nodes", s.AddNode)
		r.Patch("/sessions/{id}/nodes/{nodeID}", s.UpdateNode)
		r.Delete("/sessions/{id}/nodes/{nodeID}", s.DeleteNode)
		r.Post("/sessions/{id}/nodes/{nodeID}/suggest", s.Suggest)

		r.Get("/sessions/{id}/connections/check", s.CheckConnection)
		r.Post("/sessions/{id}/edges", s.Connect)
		r.Delete("/sessions/{id}/edges/{edgeID}", s.DeleteEdge)

		r.Post("/sessions/{id}/undo", s.Undo)
		r.Post("/sessions/{id}/redo", s.Redo)
		r.Post("/sessions/{id}/save", s.Save)
	})

	return enableCORS(r), nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.ObserveRequest(r.Method, route, status, time.Since(start))
	})
}

// -- Wire types --

type sessionResponse struct {
	ID      string       `json:"id"`
	Graph   domain.Graph `json:"graph"`
	CanUndo bool         `json:"can_undo"`
	CanRedo bool         `json:"can_redo"`
}

type createSessionRequest struct {
	ID    string          `json:"id"`
	Graph json.RawMessage `json:"graph"`
}

type addNodeRequest struct {
	Type     domain.NodeType `json:"type"`
	Position domain.Position `json:"position"`
}

type updateNodeRequest struct {
	Label    *string          `json:"label"`
	ImageURL *string          `json:"imageUrl"`
	Position *domain.Position `json:"position"`
}

type connectResponse struct {
	Accepted bool         `json:"accepted"`
	Edge     *domain.Edge `json:"edge,omitempty"`
}

type historyResponse struct {
	Applied bool `json:"applied"`
	CanUndo bool `json:"can_undo"`
	CanRedo bool `json:"can_redo"`
}

type reportResponse struct {
	validation.Report
	Warnings []string `json:"warnings,omitempty"`
}

// -- Handlers --

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ValidateFlow handles POST /validate: save validation of a posted flow
// without opening a session.
func (s *Server) ValidateFlow(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	g, err := flowfile.Decode(body)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, reportResponse{
		Report:   s.Rules.Evaluate(g),
		Warnings: flowfile.Lint(g),
	})
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// CreateSession handles POST /sessions. The body is optional.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	var seed *domain.Graph
	if len(body.Graph) > 0 && string(body.Graph) != "null" {
		g, err := flowfile.Decode(body.Graph)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		seed = &g
	}

	id, ed, err := s.Sessions.Open(r.Context(), body.ID, seed)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, snapshot(id, ed))
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ed, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snapshot(id, ed))
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSessionMermaid handles GET /sessions/{id}/mermaid.
func (s *Server) GetSessionMermaid(w http.ResponseWriter, r *http.Request) {
	_, ed, ok := s.session(w, r)
	if !ok {
		return
	}
	g := ed.Graph()
	overlay := mermaid.OverlayFromReport(ed.Validate())

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, mermaid.GenerateMermaid(g, overlay))
}

// AddNode handles POST /sessions/{id}/nodes.
func (s *Server) AddNode(w http.ResponseWriter, r *http.Request) {
	id, ed, ok := s.session(w, r)
	if !ok {
		return
	}
	var body addNodeRequest
	if !decode(w, r, &body) {
		return
	}

	before := ed.Graph()
	n, err := ed.AddNode(body.Type, body.Position)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.publish(id, ed, before)
	writeJSON(w, http.StatusCreated, n)
}

// UpdateNode handles PATCH /sessions/{id}/nodes/{nodeID}.
func (s *Server) UpdateNode(w http.ResponseWriter, r *http.Request) {
	id, ed, ok := s.session(w, r)
	if !ok {
		return
	}
	var body updateNodeRequest
	if !decode(w, r, &body) {
		return
	}
	nodeID := chi.URLParam(r, "nodeID")

	// A body is applied whole or not at all.
	current, err := ed.Node(nodeID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if body.Label != nil && current.Type != domain.NodeTypeText {
		s.fail(w, r, fmt.Errorf("%w: %s", domain.ErrNotTextNode, nodeID))
		return
	}
	if body.ImageURL != nil && current.Type != domain.NodeTypeImage {
		s.fail(w, r, fmt.Errorf("%w: %s", domain.ErrNotImageNode, nodeID))
		return
	}

	before := ed.Graph()
	defer s.publish(id, ed, before)

	if body.Label != nil {
		if err := ed.UpdateText(nodeID, *body.Label); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	if body.ImageURL != nil {
		if err := ed.UpdateImageURL(nodeID, *body.ImageURL); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	if body.Position != nil {
		if err := ed.MoveNode(nodeID, *body.Position); err != nil {
			s.fail(w, r, err)
			return
		}
	}

	n, err := ed.Node(nodeID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// DeleteNode handles DELETE /sessions/{id}/nodes/{nodeID}.
func (s *Server) DeleteNode(w http.ResponseWriter, r *http.Request) {
	id, ed, ok := s.session(w, r)
	if !ok {
		return
	}
	nodeID := chi.URLParam(r, "nodeID")

	before := ed.Graph()
	if ed.DeleteNodes(nodeID) == 0 {
		s.fail(w, r, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, nodeID))
		return
	}
	s.publish(id, ed, before)
	w.WriteHeader(http.StatusNoContent)
}

// Suggest handles POST /sessions/{id}/nodes/{nodeID}/suggest.
func (s *Server) Suggest(w http.ResponseWriter, r *http.Request) {
	id, ed, ok := s.session(w, r)
	if !ok {
		return
	}
	nodeID := chi.URLParam(r, "nodeID")

	before := ed.Graph()
	text, err := ed.Suggest(r.Context(), nodeID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.publish(id, ed, before)

	n, err := ed.Node(nodeID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestion": text, "node": n})
}

// CheckConnection handles GET /sessions/{id}/connections/check.
func (s *Server) CheckConnection(w http.ResponseWriter, r *http.Request) {
	_, ed, ok := s.session(w, r)
	if !ok {
		return
	}
	conn := domain.Connection{
		Source: r.URL.Query().Get("source"),
		Target: r.URL.Query().Get("target"),
	}
	writeJSON(w, http.StatusOK, map[string]bool{"allowed": ed.CanConnect(conn)})
}

// Connect handles POST /sessions/{id}/edges. A rejected connection is
// reported with accepted=false, not as an error.
func (s *Server) Connect(w http.ResponseWriter, r *http.Request) {
	id, ed, ok := s.session(w, r)
	if !ok {
		return
	}
	var conn domain.Connection
	if !decode(w, r, &conn) {
		return
	}

	before := ed.Graph()
	edge, accepted := ed.Connect(conn)
	resp := connectResponse{Accepted: accepted}
	if accepted {
		resp.Edge = &edge
		s.publish(id, ed, before)
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteEdge handles DELETE /sessions/{id}/edges/{edgeID}.
func (s *Server) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	id, ed, ok := s.session(w, r)
	if !ok {
		return
	}
	edgeID := chi.URLParam(r, "edgeID")

	before := ed.Graph()
	if ed.DeleteEdges(edgeID) == 0 {
		writeError(w, http.StatusNotFound, fmt.Errorf("edge not found: %s", edgeID))
		return
	}
	s.publish(id, ed, before)
	w.WriteHeader(http.StatusNoContent)
}

// Undo handles POST /sessions/{id}/undo.
func (s *Server) Undo(w http.ResponseWriter, r *http.Request) {
	s.moveHistory(w, r, (*chatflow.Editor).Undo)
}

// Redo handles POST /sessions/{id}/redo.
func (s *Server) Redo(w http.ResponseWriter, r *http.Request) {
	s.moveHistory(w, r, (*chatflow.Editor).Redo)
}

func (s *Server) moveHistory(w http.ResponseWriter, r *http.Request, move func(*chatflow.Editor) bool) {
	id, ed, ok := s.session(w, r)
	if !ok {
		return
	}
	before := ed.Graph()
	applied := move(ed)
	if applied {
		s.publish(id, ed, before)
	}
	writeJSON(w, http.StatusOK, historyResponse{
		Applied: applied,
		CanUndo: ed.CanUndo(),
		CanRedo: ed.CanRedo(),
	})
}

// Save handles POST /sessions/{id}/save. A structural violation answers
// 422 with the report.
func (s *Server) Save(w http.ResponseWriter, r *http.Request) {
	_, ed, ok := s.session(w, r)
	if !ok {
		return
	}
	report, err := ed.Save()
	status := http.StatusOK
	if err != nil {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, report)
}

// SubscribeEvents handles GET /sessions/{id}/events (SSE). Every change to
// the session is sent as a JSON graph diff.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	id, _, ok := s.session(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("streaming not supported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()

	s.logger.Info("SSE: Subscribing to Session Updates", "session_id", id)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "session_id", id)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// -- Helpers --

func (s *Server) session(w http.ResponseWriter, r *http.Request) (string, *chatflow.Editor, bool) {
	id := chi.URLParam(r, "id")
	ed, err := s.Sessions.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return "", nil, false
	}
	return id, ed, true
}

// publish broadcasts what changed since before to the session listeners.
func (s *Server) publish(sessionID string, ed *chatflow.Editor, before domain.Graph) {
	after := ed.Graph()
	diff := domain.Diff(&before, &after)
	if diff == nil {
		return
	}
	bytes, err := json.Marshal(diff)
	if err != nil {
		s.logger.Error("Diff encode failed", "error", err)
		return
	}
	s.Streams.Broadcast(sessionID, string(bytes))
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeError(w, status, err)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func snapshot(id string, ed *chatflow.Editor) sessionResponse {
	return sessionResponse{
		ID:      id,
		Graph:   ed.Graph(),
		CanUndo: ed.CanUndo(),
		CanRedo: ed.CanRedo(),
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidNodeType),
		errors.Is(err, domain.ErrNotTextNode),
		errors.Is(err, domain.ErrNotImageNode),
		errors.Is(err, flowfile.ErrInvalidDocument):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrSessionExists):
		return http.StatusConflict
	case errors.Is(err, suggest.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
