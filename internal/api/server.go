// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api serves the search service over HTTP. Every envelope is
// written with status 200; failures are signaled by code=1.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/pdiddy/paper-searcher/internal/query"
	"github.com/pdiddy/paper-searcher/internal/search"
	"github.com/pdiddy/paper-searcher/pkg/types"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	svc    *search.Service
	logger *slog.Logger
}

// NewHandler returns the API routes wrapped in request logging.
func NewHandler(svc *search.Service, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &server{svc: svc, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /search", srv.handleSearch)
	mux.HandleFunc("GET /abstract/{id}", srv.handleAbstract)
	mux.HandleFunc("GET /venues", srv.handleVenues)
	mux.HandleFunc("GET /venues/{abbr}", srv.handleVenue)
	mux.HandleFunc("GET /healthz", srv.handleHealth)

	return srv.logRequests(mux)
}

// Serve listens on the configured address until ctx is canceled, then
// shuts down gracefully.
func Serve(ctx context.Context, cfg types.ServerConfig, h http.Handler, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving %s: %w", addr, err)
	}
	return nil
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	resp := s.svc.Search(r.Context(), rawRequest(r))
	if !resp.OK() {
		s.logger.Warn("search failed", "query", r.URL.RawQuery, "msg", resp.Msg)
	}
	s.writeJSON(w, resp)
}

// rawRequest maps query parameters q, s, y, offset, and limit. s and y
// keep their presence so an explicitly empty filter is rejected.
func rawRequest(r *http.Request) query.RawRequest {
	values := r.URL.Query()
	param := func(key string) query.Param {
		v, ok := values[key]
		if !ok || len(v) == 0 {
			return query.Param{}
		}
		return query.Set(v[0])
	}
	return query.RawRequest{
		Query:  values.Get("q"),
		Venues: param("s"),
		Years:  param("y"),
		Offset: values.Get("offset"),
		Limit:  values.Get("limit"),
	}
}

func (s *server) handleAbstract(w http.ResponseWriter, r *http.Request) {
	resp := s.svc.Abstract(r.Context(), r.PathValue("id"))
	if !resp.OK() {
		s.logger.Warn("abstract failed", "id", r.PathValue("id"), "msg", resp.Msg)
	}
	s.writeJSON(w, resp)
}

func (s *server) handleVenues(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	resp := s.svc.Venues(r.Context(), values.Get("rank"), values.Get("domain"), values.Get("type"))
	if !resp.OK() {
		s.logger.Warn("venue list failed", "query", r.URL.RawQuery, "msg", resp.Msg)
	}
	s.writeJSON(w, resp)
}

func (s *server) handleVenue(w http.ResponseWriter, r *http.Request) {
	resp := s.svc.Venue(r.Context(), r.PathValue("abbr"))
	if !resp.OK() {
		s.logger.Warn("venue lookup failed", "abbr", r.PathValue("abbr"), "msg", resp.Msg)
	}
	s.writeJSON(w, resp)
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, types.DataResponse{Code: types.CodeOK, Msg: "ok"})
}

func (s *server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "err", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
