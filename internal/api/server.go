package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/docview/docview/internal/config"
	"github.com/docview/docview/internal/notify"
	"github.com/docview/docview/internal/viewer"
)

// Server is the HTTP surface over the document session manager.
type Server struct {
	router  chi.Router
	manager *viewer.Manager
	hub     *notify.Hub
	log     *slog.Logger
	cfg     config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(manager *viewer.Manager, hub *notify.Hub, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		manager: manager,
		hub:     hub,
		log:     log,
		cfg:     cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/document/open", s.handleOpen)
		r.Get("/api/document", s.handleInfo)
		r.Get("/api/document/pages/{pageNum}", s.handleGetPage)
		r.Delete("/api/document", s.handleClose)

		r.Post("/api/cache/cleanup", s.handleCacheCleanup)
		r.Get("/api/cache/stats", s.handleCacheStats)

		r.Get("/api/events", s.handleEvents)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
