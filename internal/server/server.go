// Package server provides the HTTP front end for searchhi.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/searchhi/internal/config"
	"github.com/hyperjump/searchhi/internal/highlight"
	"github.com/hyperjump/searchhi/internal/pages"
	"go.uber.org/zap"
)

// Server serves pages with search terms highlighted, plus a small JSON API.
type Server struct {
	highlighter *highlight.Highlighter
	pages       *pages.Store
	config      *config.ServerConfig
	logger      *zap.Logger
	server      *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	h *highlight.Highlighter,
	store *pages.Store,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		highlighter: h,
		pages:       store,
		config:      cfg,
		logger:      logger,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)
	r.Post("/api/v1/terms", s.handleTerms)
	r.Post("/api/v1/highlight", s.handleHighlight)

	r.Group(func(r chi.Router) {
		r.Use(s.highlightMiddleware)
		r.Get("/*", s.handlePage)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr), zap.String("content_root", s.pages.Root()))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
