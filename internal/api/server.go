// Package api serves the assistant over HTTP: a query endpoint, the
// evaluation report, health checks and a websocket stream of
// observability events.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"jarvis/internal/agent"
	"jarvis/internal/eval"
	"jarvis/internal/events"
)

// Status reported by GET /.
const RunningStatus = "Jarvis Elite is running"

// Asker runs one query through the agents.
type Asker interface {
	Run(ctx context.Context, command string) agent.RunResult
}

// Evaluator produces the evaluation report.
type Evaluator interface {
	Run(ctx context.Context) eval.Report
}

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Query string `json:"query"`
}

// AskResponse is the reply to POST /ask. Executor is present only when
// the query was routed to the Executor.
type AskResponse struct {
	Response string  `json:"response"`
	Executor *string `json:"executor,omitempty"`
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

type Options struct {
	Address    string
	Platform   string
	Automation bool
	Asker      Asker
	Evaluator  Evaluator
	Bus        *events.Bus
	Logger     *slog.Logger
}

// Server is the HTTP API server.
type Server struct {
	opt    Options
	logger *slog.Logger
	server *http.Server
}

func NewServer(opt Options) *Server {
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	return &Server{opt: opt, logger: opt.Logger}
}

// writeJSON encodes v as JSON to w, logging any errors at debug level.
func writeJSON(w http.ResponseWriter, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("failed to write JSON response", "error", err)
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /ask", s.handleAsk)
	mux.HandleFunc("GET /evaluate", s.handleEvaluate)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ws/events", s.handleEvents)
	mux.HandleFunc("GET /{$}", s.handleRoot)
	return s.withLogging(mux)
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.opt.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("starting API server", "address", s.opt.Address)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{
		"status":   RunningStatus,
		"platform": s.opt.Platform,
	}, s.logger)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{
		"status":           "healthy",
		"platform":         s.opt.Platform,
		"windows_features": s.opt.Automation,
	}, s.logger)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, ErrorResponse{Error: "invalid request body: " + err.Error()}, s.logger)
		return
	}

	resp, err := s.ask(r.Context(), req.Query)
	if err != nil {
		writeJSON(w, ErrorResponse{Error: err.Error()}, s.logger)
		return
	}
	writeJSON(w, resp, s.logger)
}

func (s *Server) ask(ctx context.Context, query string) (resp AskResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("ask failed", "err", r)
			err = fmt.Errorf("%v", r)
		}
	}()

	res := s.opt.Asker.Run(ctx, query)
	return AskResponse{Response: res.AI, Executor: res.Executor}, nil
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.opt.Evaluator.Run(r.Context()), s.logger)
}
