package web

import (
	"net/http"
	"strings"

	"github.com/louisbranch/assassin/internal/game/domain"
	"github.com/louisbranch/assassin/internal/game/invite"
)

type registerEmailRequest struct {
	Player string `json:"player"`
	Email  string `json:"email"`
}

type playerResult struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleRegisterEmail(w, r)
	case http.MethodGet:
		s.handleSearchPlayers(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleRegisterEmail(w http.ResponseWriter, r *http.Request) {
	var req registerEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if err := s.directory.RegisterEmail(r.Context(), req.Email, req.Player); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, playerResult{Name: req.Player, Email: req.Email})
}

// handleSearchPlayers looks players up by exact email or by username
// fragment. Email lookup wins when both parameters are present.
func (s *Server) handleSearchPlayers(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	name := r.URL.Query().Get("name")

	switch {
	case email != "":
		player, err := s.directory.FindByEmail(r.Context(), email)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]playerResult{
			"players": {{Name: player.Name, Email: player.EmailID}},
		})
	case name != "":
		players, err := s.directory.FindByUsernameContains(r.Context(), name)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		results := make([]playerResult, 0, len(players))
		for _, player := range players {
			results = append(results, playerResult{Name: player.Name})
		}
		writeJSON(w, http.StatusOK, map[string][]playerResult{"players": results})
	default:
		badRequest(w, "email or name query parameter is required")
	}
}

// handlePlayerPath dispatches /v1/players/{id}/... subroutes.
func (s *Server) handlePlayerPath(w http.ResponseWriter, r *http.Request) {
	parts := splitPathParts(strings.TrimPrefix(r.URL.Path, "/v1/players/"))
	if len(parts) != 2 || r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	player := parts[0]

	switch parts[1] {
	case "stats":
		record, err := s.stats.Get(r.Context(), player)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, record)
	case "invites":
		mailbox, err := s.invites.Mailbox(r.Context(), player)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]invite.MailboxInvite{"invites": mailbox})
	case "messages":
		messages, err := s.invites.Messages(r.Context(), player)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]invite.Message{"messages": messages})
	case "invitation":
		game := r.URL.Query().Get("game")
		if game == "" {
			badRequest(w, "game query parameter is required")
			return
		}
		status, err := s.invites.InvitationStatus(r.Context(), game, player)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": domain.InvitationStatusLabel(status)})
	default:
		http.NotFound(w, r)
	}
}
