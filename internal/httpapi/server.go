// Package httpapi exposes the report workflow over HTTP: one endpoint to run
// an analysis and one to download a produced report.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/datasage-ai/datasage/internal/pipeline"
)

// RunFunc answers one question and returns the final workflow state. The
// store descriptor selects the database to run against; empty means the
// configured default.
type RunFunc func(ctx context.Context, question, store string) (pipeline.State, error)

// Config controls the HTTP server.
type Config struct {
	Addr           string
	ReportsDir     string
	RequestTimeout time.Duration
}

// Server serves the report API.
type Server struct {
	run        RunFunc
	reportsDir string
	timeout    time.Duration
	logger     *slog.Logger
	router     chi.Router
}

// NewServer builds the API server around a workflow run function.
func NewServer(cfg Config, run RunFunc, logger *slog.Logger) *Server {
	if cfg.ReportsDir == "" {
		cfg.ReportsDir = "reports"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		run:        run,
		reportsDir: cfg.ReportsDir,
		timeout:    cfg.RequestTimeout,
		logger:     logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Post("/api/analyze", s.handleAnalyze)
	r.Get("/api/reports/{name}", s.handleReport)

	s.router = r
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe runs the server until ctx is cancelled, then shuts it down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type analyzeRequest struct {
	Question string `json:"question"`
	Store    string `json:"store,omitempty"`
}

type analyzeResponse struct {
	Success bool     `json:"success"`
	Report  string   `json:"report,omitempty"`
	Error   string   `json:"error,omitempty"`
	Log     []string `json:"log,omitempty"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		s.writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	state, err := s.run(ctx, req.Question, strings.TrimSpace(req.Store))
	if err != nil {
		s.logger.ErrorContext(ctx, "workflow execution failed",
			"question", req.Question, "error", err)
		s.writeError(w, http.StatusInternalServerError, "analysis failed: "+err.Error())
		return
	}

	// Success tracks whether a report artifact exists: a run whose query
	// failed still produces a report documenting the failure, and that is a
	// successful request. Only a run with no artifact at all failed.
	resp := analyzeResponse{
		Success: state.ReportPath != "",
		Error:   state.Err,
		Log:     state.Log,
	}
	if state.ReportPath != "" {
		resp.Report = filepath.Base(state.ReportPath)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	// The route param arrives percent-encoded; decode before checking so an
	// encoded separator cannot smuggle a path through.
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || !safeReportName(name) {
		s.writeError(w, http.StatusBadRequest, "invalid report name")
		return
	}

	path := filepath.Join(s.reportsDir, name)
	if _, err := os.Stat(path); err != nil {
		s.writeError(w, http.StatusNotFound, "report not found")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, path)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// safeReportName accepts only a bare filename. Anything that could climb out
// of the reports directory is rejected before touching the filesystem.
func safeReportName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.Contains(name, "..") {
		return false
	}
	if strings.ContainsAny(name, "/\\") {
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, analyzeResponse{Success: false, Error: msg})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
