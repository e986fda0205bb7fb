package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"songlog/internal/musicbrainz"
	"songlog/internal/search"
	"songlog/internal/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSearch serves both search forms. With ?q= the raw input goes
// through the prefix parser; otherwise ?artist=, ?title= and ?album=
// are used as-is. ?kind= selects the sub-resource and ?limit= caps the
// result count.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	kind, ok := search.ParseKind(params.Get("kind"))
	if !ok {
		s.respondError(w, http.StatusBadRequest, "kind must be recording, release or artist")
		return
	}

	limit := s.config.SearchLimit
	if raw := params.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	req := search.Request{
		Kind:   kind,
		Title:  params.Get("title"),
		Artist: params.Get("artist"),
		Album:  params.Get("album"),
		Limit:  limit,
	}
	if q := params.Get("q"); q != "" {
		filter := search.Parse(q)
		req.Title = filter.Song
		req.Artist = filter.Artist
		req.Album = filter.Album
	}

	candidates, err := s.searcher.Search(r.Context(), req)
	if err != nil {
		var provErr *musicbrainz.ProviderError
		if errors.As(err, &provErr) {
			s.logger.Warn("provider rejected search",
				zap.Int("status", provErr.Status),
				zap.String("body", provErr.Body))
			s.respondError(w, http.StatusBadGateway, provErr.Error())
			return
		}
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusGatewayTimeout, "metadata provider unreachable")
		return
	}

	s.respondJSON(w, http.StatusOK, candidates)
}

func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request) {
	songs := s.store.List()

	switch r.URL.Query().Get("group") {
	case "":
		s.respondJSON(w, http.StatusOK, songs)
	case "month":
		s.respondJSON(w, http.StatusOK, store.GroupByMonth(songs))
	case "album":
		s.respondJSON(w, http.StatusOK, store.GroupByAlbum(songs))
	default:
		s.respondError(w, http.StatusBadRequest, "group must be month or album")
	}
}

func (s *Server) handleAddSong(w http.ResponseWriter, r *http.Request) {
	var song store.Song
	if err := json.NewDecoder(r.Body).Decode(&song); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if song.Title == "" || song.Artist == "" {
		s.respondError(w, http.StatusBadRequest, "title and artist are required")
		return
	}

	added, err := s.store.Append(song)
	if err != nil {
		s.logger.Error("failed to append song", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to save song")
		return
	}

	s.logger.Info("song added", zap.String("id", added.ID), zap.String("title", added.Title))
	s.respondJSON(w, http.StatusCreated, added)
}

// handleAddCandidate hydrates a search candidate into a persisted song.
func (s *Server) handleAddCandidate(w http.ResponseWriter, r *http.Request) {
	var cand search.Candidate
	if err := json.NewDecoder(r.Body).Decode(&cand); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if cand.Title == "" {
		s.respondError(w, http.StatusBadRequest, "candidate title is required")
		return
	}

	added, err := s.store.Append(store.FromCandidate(cand))
	if err != nil {
		s.logger.Error("failed to append song", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to save song")
		return
	}

	s.logger.Info("candidate added",
		zap.String("id", added.ID),
		zap.String("title", added.Title),
		zap.String("artist", added.Artist))
	s.respondJSON(w, http.StatusCreated, added)
}

func (s *Server) handleUpdateSong(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch store.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := s.store.Update(id, patch)
	if errors.Is(err, store.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "song not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to update song", zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to save song")
		return
	}

	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteSong(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := s.store.Delete(id)
	if errors.Is(err, store.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "song not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to delete song", zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to save collection")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
