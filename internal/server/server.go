// Package server exposes the daemon's HTTP trigger and admin surface.
//
// Endpoints:
//
//	POST /v1/export  run one export; body {"test_mode": bool} optional
//	GET  /v1/stats   run statistics snapshot
//	GET  /v1/runs    run ledger for one partition, ?date=YYYY-MM-DD|unknown
//	GET  /healthz    liveness
//
// Export requests run synchronously and return the invocation result
// with its status code. The pipeline serializes invocations, so a
// trigger request and a scheduled run never interleave partition writes
// within one process.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/xtxerr/siphon/internal/ledger"
	"github.com/xtxerr/siphon/internal/logging"
	"github.com/xtxerr/siphon/internal/partition"
	"github.com/xtxerr/siphon/internal/pipeline"
)

// Runner runs one export invocation.
type Runner interface {
	Run(ctx context.Context, testMode bool) pipeline.Result
	Stats() *pipeline.Stats
	Ledger() *ledger.Ledger
}

// Server is the HTTP trigger/admin server.
type Server struct {
	runner Runner
	log    *slog.Logger
	http   *http.Server
}

// New creates a server listening on addr.
func New(addr string, runner Runner) *Server {
	s := &Server{
		runner: runner,
		log:    logging.Component("server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/export", s.handleExport)
	mux.HandleFunc("GET /v1/stats", s.handleStats)
	mux.HandleFunc("GET /v1/runs", s.handleRuns)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.http = &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 30 * time.Second,
	}
	return s
}

// Handler returns the server's HTTP handler. Tests only.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until ctx is canceled, then shuts down gracefully within
// the given timeout.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info("server shutting down")
	return s.http.Shutdown(shutCtx)
}

type exportRequest struct {
	TestMode bool `json:"test_mode"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}

	res := s.runner.Run(r.Context(), req.TestMode)
	s.writeJSON(w, res.StatusCode, res.Body)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.runner.Stats().Snapshot())
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	key, ok := parseDateParam(r.URL.Query().Get("date"))
	if !ok {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD or unknown"})
		return
	}

	runs, err := s.runner.Ledger().Runs(r.Context(), key)
	if err != nil {
		s.log.Error("reading run ledger failed", "date", key.DateString(), "error", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "reading run ledger failed"})
		return
	}
	if runs == nil {
		runs = []ledger.RunRecord{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"date": key.DateString(),
		"runs": runs,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("writing response failed", "error", err)
	}
}

// parseDateParam maps the date query parameter to a partition key.
func parseDateParam(v string) (partition.Key, bool) {
	if v == "unknown" {
		return partition.UnknownKey, true
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return partition.Key{}, false
	}
	return partition.KeyForDate(t), true
}
