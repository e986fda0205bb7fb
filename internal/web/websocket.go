package web

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"songlog/internal/search"
	"songlog/internal/suggest"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for simplicity
	},
}

// suggestInput is one keystroke frame from the client.
type suggestInput struct {
	Channel suggest.Channel `json:"channel"`
	Value   string          `json:"value"`
}

// suggestUpdate is pushed to the client whenever a channel's suggestion
// list changes. On a fetch failure only Error is set; the client keeps
// its last good list.
type suggestUpdate struct {
	Channel     suggest.Channel    `json:"channel"`
	Suggestions []search.Candidate `json:"suggestions"`
	Error       string             `json:"error,omitempty"`
}

// handleSuggestions streams live per-field suggestions. Each connection
// owns its own debouncer, so the three channels of one client never
// contend with another client's typing.
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	var writeMu sync.Mutex
	send := func(update suggestUpdate) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(update); err != nil {
			s.logger.Debug("websocket write failed", zap.Error(err))
		}
	}

	deb := suggest.New(
		s.fetchSuggestions,
		s.config.SuggestWindow(),
		func(ch suggest.Channel, results []search.Candidate) {
			if results == nil {
				results = []search.Candidate{}
			}
			send(suggestUpdate{Channel: ch, Suggestions: results})
		},
		func(ch suggest.Channel, err error) {
			s.logger.Warn("suggestion fetch failed",
				zap.String("channel", string(ch)), zap.Error(err))
			send(suggestUpdate{Channel: ch, Error: "suggestion lookup failed"})
		},
	)
	defer deb.Stop()

	for {
		var in suggestInput
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket read failed", zap.Error(err))
			}
			return
		}
		if !in.Channel.Valid() {
			continue
		}
		deb.Schedule(r.Context(), in.Channel, in.Value)
	}
}

// fetchSuggestions maps a suggestion channel onto the provider
// sub-resource its field suggests from: song titles come from
// recordings, artists from artists, albums from releases. The raw field
// value is sent as the provider query, unscoped.
func (s *Server) fetchSuggestions(ctx context.Context, ch suggest.Channel, value string) ([]search.Candidate, error) {
	req := search.Request{
		RawQuery: value,
		Limit:    s.config.SuggestLimit,
	}
	switch ch {
	case suggest.ChannelArtist:
		req.Kind = search.KindArtist
	case suggest.ChannelAlbum:
		req.Kind = search.KindRelease
	default:
		req.Kind = search.KindRecording
	}
	return s.searcher.Search(ctx, req)
}
