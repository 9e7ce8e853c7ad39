// Package server provides the HTTP server for the hovertype input system.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/hovertype/internal/app"
	"github.com/ayusman/hovertype/internal/detector"
	"github.com/ayusman/hovertype/internal/server/api"
	"github.com/ayusman/hovertype/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	App       *app.App
	Events    *EventHub
	Source    *detector.PushSource
}

// Server represents the HTTP server for the hovertype application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	// Register layout and history APIs if Store is configured
	if s.config.Store != nil {
		layoutHandler := api.NewLayoutHandler(s.config.Store, s.config.App)
		s.mux.Handle("/api/layouts", layoutHandler)
		s.mux.Handle("/api/layouts/", layoutHandler)
		s.mux.Handle("/api/history", api.NewHistoryHandler(s.config.Store))
	}

	if s.config.App != nil {
		s.mux.Handle("/api/text", api.NewTextHandler(s.config.App))
		s.mux.Handle("/api/status", api.NewStatusHandler(s.config.App))
	}

	if s.config.Events != nil {
		s.mux.Handle("/api/events", s.config.Events)
	}

	// Register tracker ingest if the frame loop reads from a push source
	if s.config.Source != nil {
		s.mux.Handle("/api/frames", NewFramesHandler(s.config.Source))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.App != nil {
		response["enabled"] = s.config.App.IsEnabled()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
