// Package server exposes scoring and saved results over HTTP.
//
// The API is intentionally small: scoring is stateless (the corpus travels
// in the request body), and the result endpoints read from whatever store
// the server was constructed with.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/lrvideckis/keygen/pkg/errors"
	"github.com/lrvideckis/keygen/pkg/penalty"
	"github.com/lrvideckis/keygen/pkg/pipeline"
	"github.com/lrvideckis/keygen/pkg/store"
)

const shutdownTimeout = 10 * time.Second

// Server routes scoring and result requests.
type Server struct {
	runner *pipeline.Runner
	setup  *pipeline.Setup
	store  store.Store
	logger *log.Logger
}

// New creates a server. The store may be nil, in which case the result
// endpoints respond 404.
func New(runner *pipeline.Runner, setup *pipeline.Setup, st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, setup: setup, store: st, logger: logger}
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/score", s.handleScore)
		r.Get("/results", s.handleListResults)
		r.Get("/results/{id}", s.handleGetResult)
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// =============================================================================
// Handlers
// =============================================================================

type scoreRequest struct {
	Corpus   string `json:"corpus"`
	Layout   string `json:"layout,omitempty"`
	Detailed bool   `json:"detailed,omitempty"`
}

type scoreResponse struct {
	Total     float64            `json:"total"`
	Average   float64            `json:"average"`
	CorpusLen int                `json:"corpus_len"`
	Breakdown map[string]float64 `json:"breakdown,omitempty"`
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Corpus == "" {
		s.writeError(w, http.StatusBadRequest, "corpus is required")
		return
	}

	lay := s.setup.Reference
	if req.Layout != "" {
		parsed, err := s.setup.ParseLayout(req.Layout)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, errors.UserMessage(err))
			return
		}
		lay = parsed
	}

	res, bd, _, err := s.runner.Score(r.Context(), req.Corpus, lay, s.setup, req.Detailed)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	resp := scoreResponse{Total: res.Total, Average: res.Average, CorpusLen: res.CorpusLen}
	if bd != nil {
		resp.Breakdown = make(map[string]float64, len(penalty.Terms))
		for _, term := range penalty.Terms {
			if total := bd.Total(term); total != 0 {
				resp.Breakdown[string(term)] = total
			}
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusNotFound, "no result store configured")
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	recs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if recs == nil {
		recs = []store.Record{}
	}
	s.writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusNotFound, "no result store configured")
		return
	}

	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps domain error codes onto HTTP statuses.
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeInvalidLayout, errors.ErrCodeInvalidConfig,
		errors.ErrCodeInvalidCorpus, errors.ErrCodeEmptyCorpus,
		errors.ErrCodeMissingChar:
		status = http.StatusBadRequest
	}
	if stderrors.Is(err, store.ErrNotFound) {
		status = http.StatusNotFound
	}
	s.writeError(w, status, errors.UserMessage(err))
}

// logRequests records method, path, status and latency for every request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
