// Package http exposes parley sessions over HTTP: a minimal browser chat
// widget, a JSON relay API, the embedded OpenAPI contract, and metrics.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/hinaba/parley/internal/logging"
	"github.com/hinaba/parley/pkg/domain"
	"github.com/hinaba/parley/pkg/runner"
	"github.com/hinaba/parley/pkg/session"
)

// Server routes widget and API traffic onto a session registry.
type Server struct {
	sessions *session.Manager
	logger   *slog.Logger
	metrics  http.Handler
}

// Option defines a functional option for configuring the Server.
type Option func(*Server)

// WithLogger sets a structured logger for request handling.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsHandler mounts a Prometheus handler at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewHandler wires the routes around the given session registry.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		sessions: sessions,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := validateSpec(); err != nil {
		// The spec ships inside the binary; a failure here is a build defect.
		s.logger.Error("embedded OpenAPI contract is invalid", "err", err)
	}

	r := chi.NewRouter()

	r.Get("/", s.Widget)
	r.Post("/api/chat", s.Chat)
	r.Get("/api/transcript", s.GetTranscript)
	r.Get("/healthz", s.Health)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ChatRequest is the body of POST /api/chat. An empty SessionID starts a
// fresh conversation; its generated ID comes back in the response.
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// ChatResponse is the reply of POST /api/chat.
type ChatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

// TranscriptResponse is the reply of GET /api/transcript.
type TranscriptResponse struct {
	SessionID string        `json:"session_id"`
	Turns     []domain.Turn `json:"turns"`
}

// ErrorResponse carries the single user-facing error line.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Widget serves the embedded single-page chat client.
func (s *Server) Widget(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(widgetHTML))
}

// Health handles the GET /healthz request.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Chat handles the POST /api/chat request: one dispatch on the named
// session, serialized by the registry's per-session lock.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var body ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.logger.Warn("chat: invalid request body", "err", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if strings.TrimSpace(body.Message) == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "message must not be empty"})
		return
	}

	// Global input policy, same as the terminal loop.
	clean, err := runner.SanitizeInput(body.Message)
	if err != nil {
		s.logger.Warn("chat: input rejected", "err", err, "size", len(body.Message))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid input"})
		return
	}

	sessionID := body.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	var reply string
	err = s.sessions.WithSession(r.Context(), sessionID, func(ctx context.Context, chat session.Chat) error {
		var sendErr error
		reply, sendErr = chat.Send(ctx, clean)
		return sendErr
	})
	if err != nil {
		// Cause to the log, one generic line to the user.
		s.logger.Error("chat: dispatch failed", "session_id", sessionID, "err", err)
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: domain.GenericErrorReply})
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{SessionID: sessionID, Reply: reply})
}

// GetTranscript handles the GET /api/transcript request.
func (s *Server) GetTranscript(w http.ResponseWriter, r *http.Request) {
	var sessionID string
	if err := runtime.BindQueryParameter("form", true, true, "session_id", r.URL.Query(), &sessionID); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "session_id is required"})
		return
	}

	var turns []domain.Turn
	err := s.sessions.Lookup(r.Context(), sessionID, func(ctx context.Context, chat session.Chat) error {
		turns = chat.Transcript()
		return nil
	})
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "session not found"})
			return
		}
		s.logger.Error("transcript: lookup failed", "session_id", sessionID, "err", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: domain.GenericErrorReply})
		return
	}

	writeJSON(w, http.StatusOK, TranscriptResponse{SessionID: sessionID, Turns: turns})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("response encode failed", "err", err)
	}
}
