// Package api exposes the search daemon over HTTP: issuing and
// observing searches, reading the corpus, and ingesting new records.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ghndrx/hearth-mobile-sub001/internal/ingest"
	"github.com/ghndrx/hearth-mobile-sub001/internal/search"
	"github.com/ghndrx/hearth-mobile-sub001/internal/store"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Server is the daemon's HTTP API server.
type Server struct {
	addr    string
	db      *store.DB
	session *search.Session
	ingest  *ingest.Engine
	logger  *zap.Logger
	router  chi.Router
	server  *http.Server
}

// NewServer creates the API server. session is the daemon-owned search
// session the /search endpoints drive.
func NewServer(addr string, db *store.DB, session *search.Session, ing *ingest.Engine, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		addr:    addr,
		db:      db,
		session: session,
		ingest:  ing,
		logger:  logger,
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) setupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(s.loggerMiddleware)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleIssueSearch)
		r.Post("/search/refresh", s.handleRefreshSearch)
		r.Get("/search", s.handleSearchState)

		r.Get("/messages", s.handleFetchMessages)
		r.Post("/messages", s.handleIngestMessage)
		r.Post("/messages/batch", s.handleIngestBatch)

		r.Get("/channels", s.handleListChannels)
		r.Get("/channels/{id}", s.handleGetChannel)
		r.Post("/channels", s.handleIngestChannel)

		r.Get("/users/{id}", s.handleGetUser)
		r.Post("/users", s.handleIngestUser)
	})

	return r
}

// Start begins listening for HTTP requests. Blocks until shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	s.logger.Info("starting API server", zap.String("addr", s.addr))
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

func (s *Server) loggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimw.GetReqID(r.Context())),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
