package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/fuzzydedup/internal/db"
	"github.com/fuzzydedup/internal/store"
	"github.com/fuzzydedup/internal/web/handlers"
	"github.com/fuzzydedup/internal/web/jobs"
	"github.com/fuzzydedup/internal/web/middleware"
)

// Server represents the web server
type Server struct {
	config     *Config
	conn       *db.Connection
	store      *store.Store
	jobs       *jobs.Manager
	httpServer *http.Server
	router     *mux.Router
}

// NewServer creates a new web server instance. Persistence is optional:
// with no database URL configured, runs are kept in memory only.
func NewServer(config *Config) (*Server, error) {
	server := &Server{config: config}

	if config.Database.URL != "" {
		conn, err := db.Open(config.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		conn.DB.SetMaxOpenConns(config.Database.MaxConnections)
		conn.DB.SetMaxIdleConns(config.Database.MaxConnections / 2)
		conn.DB.SetConnMaxLifetime(time.Hour)

		server.conn = conn
		server.store = store.New(conn.DB)
		if err := server.store.Init(); err != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	server.jobs = jobs.NewManager(server.store, config.Engine.Workers)
	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
		Handler:      server.router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	// Convert config for handlers (to avoid import cycle)
	handlerConfig := &handlers.Config{}
	handlerConfig.Features.ExportEnabled = s.config.Features.ExportEnabled
	handlerConfig.Features.PersistenceEnabled = s.store != nil

	jobsHandler := &handlers.JobsHandler{Jobs: s.jobs, Config: handlerConfig}
	apiHandler := &handlers.APIHandler{Store: s.store, Jobs: s.jobs, Config: handlerConfig}

	api := s.router.PathPrefix("/api").Subrouter()

	// Job lifecycle
	api.HandleFunc("/jobs", jobsHandler.CreateJob).Methods("POST")
	api.HandleFunc("/jobs/{id}", jobsHandler.GetJob).Methods("GET")
	api.HandleFunc("/jobs/{id}", jobsHandler.StopJob).Methods("DELETE")
	api.HandleFunc("/jobs/{id}/result", jobsHandler.GetResult).Methods("GET")

	if s.config.Features.ExportEnabled {
		api.HandleFunc("/jobs/{id}/export", jobsHandler.ExportResult).Methods("GET")
	}

	// Run history and statistics
	api.HandleFunc("/runs", apiHandler.ListRuns).Methods("GET")
	api.HandleFunc("/runs/{id}", apiHandler.GetRun).Methods("GET")
	api.HandleFunc("/stats", apiHandler.GetStats).Methods("GET")

	// Static file serving
	staticDir := "internal/web/static"
	if _, err := os.Stat(staticDir); err == nil {
		s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir + "/")))
	}

	s.router.Use(middleware.CORS())
	s.router.Use(middleware.RequestLogging())
}

// Start starts the web server
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		fmt.Printf("Starting server on http://%s\n", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Server error: %v\n", err)
		}
	}()

	<-stop
	fmt.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		fmt.Printf("Server shutdown error: %v\n", err)
	}

	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			fmt.Printf("Database close error: %v\n", err)
		}
	}

	fmt.Println("Server stopped")
	return nil
}
