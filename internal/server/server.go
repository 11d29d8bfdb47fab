// Package server provides the HTTP API for sheetserve.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/hyperjump/sheetserve/internal/config"
	"github.com/hyperjump/sheetserve/internal/workbook"
	"go.uber.org/zap"
)

// Server is the HTTP server for the sheetserve API.
type Server struct {
	locator *workbook.Locator
	config  *config.Config
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(locator *workbook.Locator, cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		locator: locator,
		config:  cfg,
		logger:  logger,
	}
}

// Router builds the chi router with the full middleware chain. Requests
// are identified, logged, recovered, rate limited, and authenticated
// before any handler touches the filesystem.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(httprate.Limit(
		s.config.RateLimit.Requests,
		time.Duration(s.config.RateLimit.WindowMinutes)*time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			s.respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
		}),
	))
	r.Use(s.bearerAuth)

	r.Get("/files", s.handleListFiles)
	r.Get("/file/{filename}", s.handleSinglePage)
	r.Get("/file/{filename}/sheets", s.handleListSheets)
	r.Get("/file/{filename}/sheet/{sheet}", s.handleSheetPage)
	r.Get("/health", s.handleHealth)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server",
		zap.String("addr", addr),
		zap.String("data_dir", s.locator.Dir()),
		zap.Int("page_size", s.config.Data.PageSize),
	)
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
