package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fortuna/augur/internal/scheduler"
	"github.com/fortuna/augur/internal/store"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server
func NewServer(port string, db *store.Database, orch *scheduler.Orchestrator) *Server {
	handler := NewHandler(db, orch)

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Feature dataset
	api.HandleFunc("/features", handler.GetFeaturesByDate).Methods("GET")
	api.HandleFunc("/features/{gameID}", handler.GetGameFeatures).Methods("GET")

	// Team form
	api.HandleFunc("/teams/{teamID}/form", handler.GetTeamForm).Methods("GET")

	// Predictions
	api.HandleFunc("/predictions/upcoming", handler.GetUpcomingPredictions).Methods("GET")

	// Dataset operations
	api.HandleFunc("/dataset/build", handler.TriggerDatasetBuild).Methods("POST")
	api.HandleFunc("/scheduler/status", handler.GetSchedulerStatus).Methods("GET")

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
