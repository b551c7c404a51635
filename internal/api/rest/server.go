// Package rest exposes a small read-only API over the canonical schema
// plus the health and metrics endpoints.
package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/soosb/aquafeed/internal/store/repository"
	"go.uber.org/zap"
)

// Server is the HTTP API server.
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates the API server and wires its routes.
func NewServer(port string, repo *repository.Repository, log *zap.Logger) *Server {
	handler := NewHandler(repo, log)

	router := mux.NewRouter()
	router.Use(RecoveryMiddleware(log))
	router.Use(LoggingMiddleware(log))

	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/sources", handler.GetSources).Methods("GET")
	api.HandleFunc("/meets", handler.GetMeets).Methods("GET")
	api.HandleFunc("/meets/{meetID}", handler.GetMeet).Methods("GET")

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start starts the API server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
