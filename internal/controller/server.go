// Package controller contains the controller-specific logic for the HTTP API.
package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"fieldops/internal/controller/handlers"
	"fieldops/internal/controller/middleware"
	"fieldops/internal/logger"
)

// Store is the part of the store the HTTP layer needs directly.
type Store interface {
	handlers.StoreFactory
	middleware.TechnicianStore
}

// Server is the HTTP server for the controller API.
type Server struct {
	httpServer *http.Server
	limiter    *middleware.RateLimiter
	logger     *slog.Logger

	shutdownTimeout time.Duration
}

// New creates a new controller server.
func New(addr string, jobs handlers.JobService, counter handlers.CounterReader, s Store, metricsHandler http.Handler, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	h := handlers.New(jobs, counter, s, log)
	limiter := middleware.NewRateLimiter()

	authMW := middleware.AuthMiddleware(s)
	rateMW := limiter.Middleware()
	authed := func(f http.HandlerFunc) http.Handler {
		return authMW(rateMW(f))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	mux.Handle("POST /jobs", authed(h.CreateJob))
	mux.Handle("GET /jobs", authed(h.ListJobs))
	mux.Handle("GET /jobs/{id}", authed(h.GetJob))
	mux.Handle("PUT /jobs/{id}/status", authed(h.TransitionJob))
	mux.Handle("PATCH /jobs/{id}", authed(h.AmendJob))
	mux.Handle("POST /jobs/{id}/parts", authed(h.EditParts))
	mux.Handle("DELETE /jobs/{id}", authed(h.DeleteJob))
	mux.Handle("GET /counter", authed(h.GetCounter))

	mux.Handle("POST /technicians", authMW(middleware.RequireAdmin(http.HandlerFunc(h.CreateTechnician))))

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      middleware.RequestID(accessLog(log, mux)),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		limiter:         limiter,
		logger:          log,
		shutdownTimeout: 10 * time.Second,
	}
}

// WithShutdownTimeout sets how long Run waits for in-flight requests once
// its context is cancelled.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	if d > 0 {
		s.shutdownTimeout = d
	}
	return s
}

// Handler returns the root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	sweep := time.NewTicker(time.Minute)
	defer sweep.Stop()

	for {
		select {
		case err := <-serverErr:
			return err
		case <-sweep.C:
			s.limiter.Sweep()
		case <-ctx.Done():
			shutDownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
			defer cancel()

			return s.Shutdown(shutDownCtx)
		}
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func accessLog(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.FromContext(r.Context(), log).Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
