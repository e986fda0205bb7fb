// Package web exposes the search, suggestion and collection HTTP API.
package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"songlog/internal/config"
	"songlog/internal/search"
	"songlog/internal/store"
)

type Server struct {
	searcher search.Searcher
	store    *store.Store
	config   config.Config
	logger   *zap.Logger
}

func NewServer(searcher search.Searcher, st *store.Store, cfg config.Config, logger *zap.Logger) *Server {
	return &Server{
		searcher: searcher,
		store:    st,
		config:   cfg,
		logger:   logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)
	r.Get("/api/search", s.handleSearch)
	r.Get("/api/songs", s.handleListSongs)
	r.Get("/ws", s.handleSuggestions)

	// Mutating collection endpoints sit behind the admin token.
	r.Group(func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Post("/api/songs", s.handleAddSong)
		r.Post("/api/songs/candidate", s.handleAddCandidate)
		r.Patch("/api/songs/{id}", s.handleUpdateSong)
		r.Delete("/api/songs/{id}", s.handleDeleteSong)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}

// requireAdmin gates mutating endpoints behind a bearer token. With no
// token configured the endpoints are disabled entirely rather than left
// open.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.AdminToken == "" {
			s.respondError(w, http.StatusForbidden, "collection editing is disabled")
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+s.config.AdminToken {
			s.respondError(w, http.StatusUnauthorized, "invalid or missing admin token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
