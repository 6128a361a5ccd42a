// Package server exposes the assistant over HTTP: a chat endpoint, session
// history endpoints, a health probe, and Prometheus metrics. Policy and
// vocabulary files hot-reload without dropping connections.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/redfield/usiop/internal/actor"
	"github.com/redfield/usiop/internal/audit"
	"github.com/redfield/usiop/internal/clearance"
	"github.com/redfield/usiop/internal/compose"
	"github.com/redfield/usiop/internal/guard"
	"github.com/redfield/usiop/internal/pipeline"
)

// Config holds HTTP server configuration.
type Config struct {
	Addr       string
	PolicyPath string
	VocabPath  string
}

// SessionStore is the conversation store surface the server needs.
type SessionStore interface {
	pipeline.History
	Clear(ctx context.Context, sessionID string) error
}

// Server handles chat turns over HTTP. The guard and pipeline are swapped
// atomically on hot reload; in-flight requests keep the snapshot they
// started with.
type Server struct {
	cfg       Config
	roster    *actor.Roster
	retriever pipeline.Retriever
	generator pipeline.Generator
	sessions  SessionStore
	recorder  pipeline.Recorder

	mu         sync.RWMutex
	pipe       *pipeline.Pipeline
	policyHash string

	metrics  *Metrics
	registry *prometheus.Registry
	router   chi.Router
	httpSrv  *http.Server
}

// New creates a Server, loading the policy table and vocabulary from the
// configured paths (built-in defaults when absent).
func New(cfg Config, roster *actor.Roster, ret pipeline.Retriever, gen pipeline.Generator, sessions SessionStore, recorder pipeline.Recorder) (*Server, error) {
	registry := prometheus.NewRegistry()
	s := &Server{
		cfg:       cfg,
		roster:    roster,
		retriever: ret,
		generator: gen,
		sessions:  sessions,
		recorder:  recorder,
		metrics:   NewMetrics(registry),
		registry:  registry,
	}
	if err := s.ReloadPolicy(); err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Post("/v1/chat", s.handleChat)
	r.Get("/v1/sessions/{sessionID}/messages", s.handleListMessages)
	r.Delete("/v1/sessions/{sessionID}/messages", s.handleClearMessages)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	s.router = r
	return s, nil
}

// Handler returns the HTTP handler. For testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve starts the HTTP server on the configured address. Blocks until
// Shutdown or a listener error.
func (s *Server) Serve() error {
	s.httpSrv = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// ReloadPolicy reloads the clearance table and vocabulary files and swaps
// in a pipeline built on them. Called at startup and by the hot-reloader.
func (s *Server) ReloadPolicy() error {
	table, hash, err := clearance.LoadTableWithHash(s.cfg.PolicyPath)
	if err != nil {
		return fmt.Errorf("server: load policy table: %w", err)
	}
	vocab, err := guard.LoadVocabulary(s.cfg.VocabPath)
	if err != nil {
		return fmt.Errorf("server: load vocabulary: %w", err)
	}

	g := guard.New(table, vocab)
	pipe := pipeline.New(g, s.retriever, s.generator, s.sessions,
		pipeline.WithRecorder(multiRecorder{s.metrics, s.recorder}))

	s.mu.Lock()
	s.pipe = pipe
	s.policyHash = hash
	s.mu.Unlock()
	return nil
}

func (s *Server) snapshot() (*pipeline.Pipeline, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pipe, s.policyHash
}

type chatRequest struct {
	EmployeeID string `json:"employee_id"`
	SessionID  string `json:"session_id,omitempty"`
	Query      string `json:"query"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
	Welcome   string `json:"welcome,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	a, ok := s.roster.Lookup(req.EmployeeID)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown employee id %q", req.EmployeeID))
		return
	}

	resp := chatResponse{SessionID: req.SessionID}
	if resp.SessionID == "" {
		resp.SessionID = uuid.NewString()
		resp.Welcome = compose.Welcome(a)
	}

	pipe, _ := s.snapshot()
	start := time.Now()
	resp.Response = pipe.HandleTurn(r.Context(), a, resp.SessionID, req.Query)
	s.metrics.ObserveTurn(time.Since(start))

	writeJSON(w, http.StatusOK, resp)
}

type messagePayload struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	msgs, err := s.sessions.List(r.Context(), sessionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "server: list messages: %v\n", err)
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}

	out := make([]messagePayload, len(msgs))
	for i, m := range msgs {
		out[i] = messagePayload{
			Role:      m.Role,
			Content:   m.Content,
			Timestamp: m.Timestamp.UTC().Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"messages":   out,
	})
}

func (s *Server) handleClearMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := s.sessions.Clear(r.Context(), sessionID); err != nil {
		fmt.Fprintf(os.Stderr, "server: clear messages: %v\n", err)
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_, hash := s.snapshot()
	writeJSON(w, http.StatusOK, map[string]string{
		"status":      "ok",
		"policy_hash": hash,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "server: write response: %v\n", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// multiRecorder fans a decision entry out to each non-nil recorder.
type multiRecorder []pipeline.Recorder

func (m multiRecorder) Record(e audit.Entry) error {
	var firstErr error
	for _, r := range m {
		if r == nil {
			continue
		}
		if err := r.Record(e); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
