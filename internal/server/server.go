// Package server exposes scans and the title parser over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/guarzo/cardsnipe/internal/fingerprint"
	"github.com/guarzo/cardsnipe/internal/model"
	"github.com/guarzo/cardsnipe/internal/roster"
	"github.com/guarzo/cardsnipe/internal/scheduler"
)

// Scanner runs scans on request.
type Scanner interface {
	Scan(ctx context.Context, players []roster.Player) (*model.ScanResult, error)
	Running() bool
}

// Config holds server configuration
type Config struct {
	Port        int
	Log         zerolog.Logger
	Scanner     Scanner
	Parser      *fingerprint.Parser
	Players     []roster.Player
	Results     *scheduler.Results // latest completed scan; shared with the scheduler
	Configured  bool               // marketplace credentials present
	ScanTimeout time.Duration      // upper bound for a synchronous scan request
}

// Server represents the HTTP server
type Server struct {
	router      *chi.Mux
	server      *http.Server
	log         zerolog.Logger
	port        int
	scanner     Scanner
	parser      *fingerprint.Parser
	players     []roster.Player
	results     *scheduler.Results
	configured  bool
	scanTimeout time.Duration
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	results := cfg.Results
	if results == nil {
		results = &scheduler.Results{}
	}
	scanTimeout := cfg.ScanTimeout
	if scanTimeout <= 0 {
		scanTimeout = 30 * time.Minute
	}

	s := &Server{
		router:      chi.NewRouter(),
		log:         cfg.Log.With().Str("component", "server").Logger(),
		port:        cfg.Port,
		scanner:     cfg.Scanner,
		parser:      cfg.Parser,
		players:     cfg.Players,
		results:     results,
		configured:  cfg.Configured,
		scanTimeout: scanTimeout,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		// A scan is answered synchronously, so writes may take as long
		// as the scan itself.
		WriteTimeout: scanTimeout + time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/players", s.handlePlayers)
		r.Get("/deals", s.handleDeals)
		r.Post("/parse", s.handleParse)
		r.Post("/scan", s.handleScan)
	})
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
