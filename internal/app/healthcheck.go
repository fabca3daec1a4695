package app

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/vk/slangbuild/internal/shader"
)

// buildStatus is the outcome of the most recent batch.
type buildStatus struct {
	mu       sync.Mutex
	finished time.Time
	summary  shader.Summary
	err      error
}

func (s *buildStatus) record(summary *shader.Summary, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = time.Now()
	s.err = err
	if summary != nil {
		s.summary = *summary
	}
}

type statusBody struct {
	Status   string `json:"status"`
	Finished string `json:"finished,omitempty"`
	Compiled int    `json:"compiled"`
	Skipped  int    `json:"skipped"`
	Failed   string `json:"failed,omitempty"`
	Error    string `json:"error,omitempty"`
}

// healthHandler reports the last build: 200 while it succeeded, 503 while it
// failed or before the first batch finished.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)

	a.status.mu.Lock()
	body := statusBody{
		Status:   "ok",
		Compiled: a.status.summary.Compiled,
		Skipped:  a.status.summary.Skipped,
		Failed:   a.status.summary.Failed,
	}
	code := http.StatusOK
	switch {
	case a.status.finished.IsZero():
		body.Status = "building"
		code = http.StatusServiceUnavailable
	case a.status.err != nil:
		body.Status = "failed"
		body.Error = a.status.err.Error()
		code = http.StatusServiceUnavailable
	}
	if !a.status.finished.IsZero() {
		body.Finished = a.status.finished.UTC().Format(time.RFC3339)
	}
	a.status.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// startHealthcheckServer binds the health check listener and serves it in
// the background. The returned function shuts the server down.
func (a *App) startHealthcheckServer(ctx context.Context, port int) (func(), error) {
	a.logger.Debug("Configuring health check server.")
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)

	listener, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(port)))
	if err != nil {
		return nil, err
	}
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		a.logger.Info("🩺 Health check server starting", "address", "http://"+listener.Addr().String()+"/health")
		// Serve returns ErrServerClosed on graceful shutdown.
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Health check server failed unexpectedly", "error", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		a.logger.Debug("Shutting down health check server...")
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("Health check server shutdown failed", "error", err)
		}
	}, nil
}
