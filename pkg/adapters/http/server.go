// Package http exposes the assistant as a small JSON API for the restaurant website.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/aretw0/tafel/internal/logging"
	"github.com/aretw0/tafel/pkg/domain"
	"github.com/getkin/kin-openapi/routers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

const (
	msgMissingMessage  = "Fehlende JSON-Nachricht"
	msgInvalidMessage  = "Ungültige Nachricht"
	msgTooManyRequests = "Zu viele Anfragen"
	msgInternal        = "Interner Serverfehler"

	// maxBodyBytes caps the request body before validation reads it.
	// The message itself is limited further by the assistant.
	maxBodyBytes = 64 << 10
)

// Assistant answers one chat message for a client.
type Assistant interface {
	Reply(ctx context.Context, clientID, message string) (string, error)
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the success body of POST /api/chat.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ErrorResponse is the body of every error status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server holds the handler dependencies.
type Server struct {
	assistant  Assistant
	logger     *slog.Logger
	metrics    http.Handler
	limiter    *rateLimiter
	trustProxy bool
	spec       routers.Router
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler mounts h at GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithRateLimit allows each client perSecond messages with the given burst.
// A non-positive rate disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Server) {
		if perSecond <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = newRateLimiter(rate.Limit(perSecond), burst)
	}
}

// WithTrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
// Enable only behind a reverse proxy that sets these headers.
func WithTrustProxy(trust bool) Option {
	return func(s *Server) {
		s.trustProxy = trust
	}
}

// NewHandler creates the HTTP handler for the assistant.
func NewHandler(assistant Assistant, opts ...Option) (http.Handler, error) {
	s := &Server{
		assistant: assistant,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	spec, err := newSpecRouter(context.Background())
	if err != nil {
		return nil, err
	}
	s.spec = spec

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if s.trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(s.logRequests)
	r.Use(s.recoverPanics)
	r.Use(enableCORS)

	r.Get("/health", s.health)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(Spec())
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limitRate)
		}
		r.Use(middleware.RequestSize(maxBodyBytes))
		r.Use(s.validateRequests)
		r.Post("/api/chat", s.chat)
	})

	return r, nil
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var body ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.logger.Warn("chat: invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, msgMissingMessage)
		return
	}

	id := clientID(r)
	reply, err := s.assistant.Reply(r.Context(), id, body.Message)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			s.logger.Warn("chat: input rejected", "client_id", id, "error", err)
			writeError(w, http.StatusBadRequest, msgInvalidMessage)
			return
		}
		s.logger.Error("chat failed",
			"client_id", id,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Reply: reply})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// clientID identifies the caller by the host part of its address.
func clientID(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
