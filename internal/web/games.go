package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/assassin/internal/game/domain"
)

type gameResponse struct {
	Name       string           `json:"name"`
	Visibility string           `json:"visibility"`
	Creator    string           `json:"creator"`
	Status     string           `json:"status"`
	Alive      int              `json:"alive"`
	Result     string           `json:"result,omitempty"`
	Players    []playerResponse `json:"players"`
}

type playerResponse struct {
	Name      string `json:"name"`
	Character string `json:"character,omitempty"`
	Status    string `json:"status,omitempty"`
}

func toGameResponse(game domain.Game) gameResponse {
	players := make([]playerResponse, 0, len(game.Roster))
	for _, member := range game.Roster {
		player := playerResponse{Name: member}
		if role, ok := game.Roles[member]; ok && role != domain.RoleUnspecified {
			player.Character = domain.RoleLabel(role)
		}
		players = append(players, player)
	}
	return gameResponse{
		Name:       game.Name,
		Visibility: domain.VisibilityLabel(game.Visibility),
		Creator:    game.Creator,
		Status:     domain.StatusLabel(game.Status),
		Alive:      game.AliveCivilianCount,
		Result:     game.Result,
		Players:    players,
	}
}

type createGameRequest struct {
	Name       string   `json:"name"`
	Visibility string   `json:"visibility"`
	Creator    string   `json:"creator"`
	Roster     []string `json:"roster"`
}

func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateGame(w, r)
	case http.MethodGet:
		s.handleListGames(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	game, err := s.registry.CreateGame(r.Context(), domain.CreateGameInput{
		Name:       req.Name,
		Visibility: domain.VisibilityFromLabel(req.Visibility),
		Creator:    req.Creator,
		Roster:     req.Roster,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGameResponse(game))
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	names, err := s.registry.ListPublicGames(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"games": names})
}

// handleGamePath dispatches /v1/games/{name}/... subroutes.
func (s *Server) handleGamePath(w http.ResponseWriter, r *http.Request) {
	parts := splitPathParts(strings.TrimPrefix(r.URL.Path, "/v1/games/"))
	if len(parts) == 0 {
		http.NotFound(w, r)
		return
	}
	name := parts[0]

	switch {
	case len(parts) == 1:
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		s.handleGetGame(w, r, name)
	case len(parts) == 2 && parts[1] == "visibility":
		if r.Method != http.MethodPut {
			methodNotAllowed(w)
			return
		}
		s.handleSetVisibility(w, r, name)
	case len(parts) == 2 && parts[1] == "start":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.handleStartGame(w, r, name)
	case len(parts) == 2 && parts[1] == "finish":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.handleFinishGame(w, r, name)
	case len(parts) == 2 && parts[1] == "players":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		s.handleGamePlayers(w, r, name)
	case len(parts) == 4 && parts[1] == "players" && parts[3] == "status":
		if r.Method != http.MethodPut {
			methodNotAllowed(w)
			return
		}
		s.handlePlayerStatus(w, r, name, parts[2])
	case len(parts) == 2 && parts[1] == "invites":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.handleSendInvite(w, r, name)
	case len(parts) == 4 && parts[1] == "invites" && parts[3] == "response":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.handleInviteResponse(w, r, name, parts[2])
	case len(parts) == 2 && parts[1] == "watch":
		s.handleWatchGame(w, r, name)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request, name string) {
	game, err := s.registry.GetGame(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGameResponse(game))
}

func (s *Server) handleSetVisibility(w http.ResponseWriter, r *http.Request, name string) {
	var req struct {
		Visibility string `json:"visibility"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if err := s.registry.SetVisibility(r.Context(), name, domain.VisibilityFromLabel(req.Visibility)); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"visibility": req.Visibility})
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request, name string) {
	if err := s.session.Start(r.Context(), name); err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.onGameStarted != nil {
		s.onGameStarted(name)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": domain.StatusLabel(domain.StatusStarted)})
}

func (s *Server) handleFinishGame(w http.ResponseWriter, r *http.Request, name string) {
	var req struct {
		AssassinWon bool   `json:"assassinWon"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if err := s.session.Finish(r.Context(), name, req.AssassinWon, req.Description); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": domain.StatusLabel(domain.StatusFinished)})
}

func (s *Server) handleGamePlayers(w http.ResponseWriter, r *http.Request, name string) {
	players, err := s.session.Players(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]playerResponse, 0, len(players))
	for _, player := range players {
		out = append(out, playerResponse{
			Name:      player.Name,
			Character: domain.RoleLabel(player.Character),
			Status:    domain.PlayerStatusLabel(player.Status),
		})
	}
	writeJSON(w, http.StatusOK, map[string][]playerResponse{"players": out})
}

func (s *Server) handlePlayerStatus(w http.ResponseWriter, r *http.Request, name, player string) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	status := domain.PlayerStatusFromLabel(req.Status)
	if err := s.session.UpdatePlayerStatus(r.Context(), name, player, status); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

func (s *Server) handleSendInvite(w http.ResponseWriter, r *http.Request, name string) {
	var req struct {
		Player string `json:"player"`
		From   string `json:"from"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if err := s.invites.Invite(r.Context(), name, req.Player, req.From); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"player": req.Player})
}

func (s *Server) handleInviteResponse(w http.ResponseWriter, r *http.Request, name, player string) {
	var req struct {
		Accepted    bool       `json:"accepted"`
		RespondedAt *time.Time `json:"respondedAt"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	var err error
	if req.RespondedAt != nil {
		err = s.invites.RespondAt(r.Context(), name, player, req.Accepted, *req.RespondedAt)
	} else {
		err = s.invites.Respond(r.Context(), name, player, req.Accepted)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"accepted": req.Accepted})
}
