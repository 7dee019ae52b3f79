// Package server provides the HTTP API for encoding, decoding and storing JCSDL.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/jcsdl/internal/config"
	"github.com/hyperjump/jcsdl/internal/indexer"
	"github.com/hyperjump/jcsdl/internal/schema"
	"github.com/hyperjump/jcsdl/internal/search"
	"github.com/hyperjump/jcsdl/internal/storage"
)

// maxBodyBytes caps request bodies; JCSDL documents are small text.
const maxBodyBytes = 1 << 20

// Server is the HTTP server for the jcsdl API.
type Server struct {
	engine  *search.Engine
	indexer *indexer.Indexer
	storage storage.Storage
	schemas *schema.Store
	codec   indexer.CodecFunc
	config  *config.Config
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	engine *search.Engine,
	idx *indexer.Indexer,
	storage storage.Storage,
	schemas *schema.Store,
	codec indexer.CodecFunc,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		engine:  engine,
		indexer: idx,
		storage: storage,
		schemas: schemas,
		codec:   codec,
		config:  cfg,
		logger:  logger,
	}
}

// Routes returns the API router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/encode", s.handleEncode)
		r.Post("/decode", s.handleDecode)
		r.Post("/verify", s.handleVerify)

		r.Get("/schema/targets", s.handleSchemaTargets)
		r.Get("/schema/fields", s.handleSchemaFields)

		r.Post("/documents", s.handleSaveDocument)
		r.Get("/documents", s.handleListDocuments)
		r.Get("/documents/search", s.handleSearchDocuments)
		r.Get("/documents/{id}", s.handleGetDocument)
		r.Delete("/documents/{id}", s.handleDeleteDocument)

		r.Get("/status", s.handleStatus)
	})
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
