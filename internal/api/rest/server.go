package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewRouter builds the API routes around handler
func NewRouter(handler *Handler) *mux.Router {
	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	// Preflight requests only need the CORS headers
	router.PathPrefix("/").Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// Parsing
	api.HandleFunc("/parse", handler.ParseText).Methods("POST")
	api.HandleFunc("/import", handler.ImportText).Methods("POST")

	// Scraping jobs
	api.HandleFunc("/scrape/{hockeydbID:[0-9]+}", handler.ScrapePlayer).Methods("POST")
	api.HandleFunc("/jobs", handler.GetJobs).Methods("GET")
	api.HandleFunc("/jobs/{jobID}", handler.GetJob).Methods("GET")

	// Scheduled refresh
	api.HandleFunc("/tracked", handler.ListTracked).Methods("GET")
	api.HandleFunc("/tracked/{hockeydbID:[0-9]+}", handler.TrackPlayer).Methods("POST")

	// Players
	api.HandleFunc("/players", handler.ListPlayers).Methods("GET")
	api.HandleFunc("/players/search", handler.SearchPlayers).Methods("GET")
	api.HandleFunc("/players/{playerID:[0-9]+}", handler.GetPlayer).Methods("GET")

	return router
}

// NewServer creates a new REST API server
func NewServer(port string, handler *Handler) *Server {
	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%s", port),
			Handler:           NewRouter(handler),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start starts the REST API server
func (s *Server) Start() error {
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
