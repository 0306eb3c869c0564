package web

import (
	"context"
	"encoding/json"
	"net/http"

	"golang.org/x/net/websocket"

	"github.com/louisbranch/assassin/internal/game/domain"
	"github.com/louisbranch/assassin/internal/store"
)

// watchFrame is a single live-update message sent to websocket clients.
type watchFrame struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// handleWatchGame streams a game's status, alive counter, and result
// over a websocket until the client disconnects.
func (s *Server) handleWatchGame(w http.ResponseWriter, r *http.Request, name string) {
	if _, err := s.registry.GetStatus(r.Context(), name); err != nil {
		s.writeError(w, r, err)
		return
	}

	handler := websocket.Handler(func(conn *websocket.Conn) {
		defer conn.Close()
		s.streamGame(conn.Request().Context(), conn, name)
	})
	handler.ServeHTTP(w, r)
}

func (s *Server) streamGame(ctx context.Context, conn *websocket.Conn, name string) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fields := map[string]string{
		"status": domain.GameStatusPath(name),
		"alive":  domain.GameAlivePath(name),
		"result": domain.GameResultPath(name),
	}

	frames := make(chan watchFrame)
	for field, path := range fields {
		events, err := s.store.Watch(ctx, path)
		if err != nil {
			s.logf("watch %s: %v", path, err)
			return
		}
		go func(field string, events <-chan store.Event) {
			for event := range events {
				if event.Err != nil {
					continue
				}
				select {
				case frames <- watchFrame{Field: field, Value: event.Value}:
				case <-ctx.Done():
					return
				}
			}
		}(field, events)
	}

	for {
		select {
		case frame := <-frames:
			payload, err := json.Marshal(frame)
			if err != nil {
				s.logf("marshal watch frame: %v", err)
				continue
			}
			if err := websocket.Message.Send(conn, string(payload)); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
