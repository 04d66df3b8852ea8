// internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"loan-review-console/internal/common/logger"
)

// Server is the operator-facing HTTP surface of the review console.
type Server struct {
	httpServer *http.Server
	logger     logger.Logger
}

func New(port int, handlers *Handlers, log logger.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Get("/health", handlers.Health)
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/applications", func(r chi.Router) {
		r.Get("/", handlers.ListApplications)
		r.Get("/{id}", handlers.GetApplication)
		r.Post("/{id}/actions", handlers.SubmitAction)
		r.Get("/{id}/history", handlers.History)
	})
	router.Get("/stats", handlers.Stats)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		logger: log,
	}
}

// Start blocks serving requests until Shutdown or failure.
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting", map[string]interface{}{
		"addr": s.httpServer.Addr,
	})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down", nil)
	return s.httpServer.Shutdown(ctx)
}
