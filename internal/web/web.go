// Package web exposes the game services over a JSON HTTP API, plus a
// websocket stream for live game updates.
package web

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	apperrors "github.com/louisbranch/assassin/internal/errors"
	"github.com/louisbranch/assassin/internal/game/directory"
	"github.com/louisbranch/assassin/internal/game/invite"
	"github.com/louisbranch/assassin/internal/game/registry"
	"github.com/louisbranch/assassin/internal/game/session"
	"github.com/louisbranch/assassin/internal/stats"
	"github.com/louisbranch/assassin/internal/store"
)

// Server holds the service dependencies behind the HTTP API.
type Server struct {
	registry  *registry.Registry
	directory *directory.Directory
	session   *session.Session
	invites   *invite.Flow
	stats     *stats.Tracker
	store     store.Store
	logger    *log.Logger

	onGameStarted func(name string)
}

// OnGameStarted registers a callback invoked after a game successfully
// starts. The caller uses it to attach a win evaluator to the game.
func (s *Server) OnGameStarted(fn func(name string)) {
	s.onGameStarted = fn
}

// New creates a Server. A nil logger discards request logging.
func New(reg *registry.Registry, dir *directory.Directory, sess *session.Session, invites *invite.Flow, tracker *stats.Tracker, st store.Store, logger *log.Logger) *Server {
	return &Server{
		registry:  reg,
		directory: dir,
		session:   sess,
		invites:   invites,
		stats:     tracker,
		store:     st,
		logger:    logger,
	}
}

// Routes wires all API routes into a mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/games", s.handleGames)
	mux.HandleFunc("/v1/games/", s.handleGamePath)
	mux.HandleFunc("/v1/players", s.handlePlayers)
	mux.HandleFunc("/v1/players/", s.handlePlayerPath)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// splitPathParts breaks a trimmed subpath into its non-empty segments.
func splitPathParts(path string) []string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	cleaned := parts[:0]
	for _, part := range parts {
		if part != "" {
			cleaned = append(cleaned, part)
		}
	}
	return cleaned
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers are already sent; nothing left to do.
		return
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.GetCode(err)
	status := code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		s.logf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, errorResponse{Error: errorBody{Code: string(code), Message: err.Error()}})
}

func (s *Server) logf(format string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Printf(format, args...)
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
		Error: errorBody{Code: "METHOD_NOT_ALLOWED", Message: "method not allowed"},
	})
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Error: errorBody{Code: "BAD_REQUEST", Message: message},
	})
}
