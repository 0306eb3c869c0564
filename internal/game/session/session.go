// Package session drives a game's lifecycle after creation: role
// assignment at start, per-player status updates, the alive-civilian
// counter, and finishing with a recorded outcome.
package session

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"

	apperrors "github.com/louisbranch/assassin/internal/errors"
	"github.com/louisbranch/assassin/internal/game/domain"
	"github.com/louisbranch/assassin/internal/store"
	"github.com/louisbranch/assassin/internal/telemetry"
)

// Default result strings when Finish is not given a description.
const (
	ResultAssassinWon  = "The assassin won!"
	ResultCiviliansWon = "The civilians won!"
)

// Config controls which roles the alive counter tracks. The counter
// reaching zero means every player with a counted role is out.
type Config struct {
	CountedRoles map[domain.Role]bool
}

// DefaultConfig counts civilians only.
func DefaultConfig() Config {
	return Config{CountedRoles: map[domain.Role]bool{domain.RoleCivilian: true}}
}

// Session implements the game lifecycle state machine.
type Session struct {
	store   store.Store
	emitter *telemetry.Emitter
	config  Config
	shuffle func(n int) []int
}

// New creates a Session. A nil emitter disables telemetry.
func New(st store.Store, emitter *telemetry.Emitter, config Config) *Session {
	if config.CountedRoles == nil {
		config = DefaultConfig()
	}
	return &Session{
		store:   st,
		emitter: emitter,
		config:  config,
		shuffle: rand.Perm,
	}
}

// assignRoles maps a shuffled roster to roles: exactly one assassin,
// a detective when at least two players, a doctor when at least three,
// civilians for the rest.
func assignRoles(roster []string, perm []int) map[string]domain.Role {
	roles := make(map[string]domain.Role, len(roster))
	for position, index := range perm {
		player := roster[index]
		switch {
		case position == 0:
			roles[player] = domain.RoleAssassin
		case position == 1 && len(roster) >= 2:
			roles[player] = domain.RoleDetective
		case position == 2 && len(roster) >= 3:
			roles[player] = domain.RoleDoctor
		default:
			roles[player] = domain.RoleCivilian
		}
	}
	return roles
}

// Start transitions a game from created to started, secretly assigns
// roles to the roster, and initializes the alive counter to the number
// of players holding a counted role. The status transition is claimed
// atomically, so concurrent starts fail with an invalid transition.
func (s *Session) Start(ctx context.Context, name string) error {
	if err := store.ValidateKey(name); err != nil {
		return err
	}
	if _, err := s.status(ctx, name); err != nil {
		return err
	}

	roster, err := s.roster(ctx, name)
	if err != nil {
		return err
	}
	if len(roster) == 0 {
		return apperrors.WithMetadata(apperrors.CodeGameRosterEmpty, "game has no roster",
			map[string]string{"game": name})
	}

	if err := s.transition(ctx, name, domain.StatusStarted); err != nil {
		return err
	}

	roles := assignRoles(roster, s.shuffle(len(roster)))
	counted := 0
	for _, player := range roster {
		role := roles[player]
		if err := s.store.Set(ctx, domain.PlayerCharacterPath(name, player), domain.RoleLabel(role)); err != nil {
			return fmt.Errorf("assign role: %w", err)
		}
		if s.config.CountedRoles[role] {
			counted++
		}
	}

	if err := s.store.Set(ctx, domain.GameAlivePath(name), strconv.Itoa(counted)); err != nil {
		return fmt.Errorf("init alive counter: %w", err)
	}

	s.emit(ctx, "game_started", name, "")
	return nil
}

// UpdatePlayerStatus records a roster member's new status and adjusts
// the alive counter when the member holds a counted role. The counter
// change is an atomic read-modify-write, so concurrent eliminations
// are never lost. Finished games reject all further mutations.
func (s *Session) UpdatePlayerStatus(ctx context.Context, name, player string, status domain.PlayerStatus) error {
	if status == domain.PlayerStatusUnspecified {
		return apperrors.WithMetadata(apperrors.CodePlayerInvalidStatus, "player status is invalid",
			map[string]string{"game": name, "player": player})
	}

	gameStatus, err := s.status(ctx, name)
	if err != nil {
		return err
	}
	if gameStatus == domain.StatusFinished {
		return apperrors.WithMetadata(apperrors.CodeGameInvalidStatusTransition,
			"game is finished", map[string]string{"game": name, "player": player})
	}

	var previous domain.PlayerStatus
	_, err = s.store.Update(ctx, domain.PlayerStatusPath(name, player), func(current string, exists bool) (string, error) {
		if !exists {
			return "", apperrors.WithMetadata(apperrors.CodePlayerNotInRoster, "player is not in the roster",
				map[string]string{"game": name, "player": player})
		}
		previous = domain.PlayerStatusFromLabel(current)
		return domain.PlayerStatusLabel(status), nil
	})
	if err != nil {
		return err
	}

	if previous == status {
		return nil
	}

	role, err := s.playerRole(ctx, name, player)
	if err != nil {
		return err
	}
	if !s.config.CountedRoles[role] {
		s.emit(ctx, "player_status_changed", name, player)
		return nil
	}

	switch {
	case previous == domain.PlayerStatusAlive && status != domain.PlayerStatusAlive:
		err = s.adjustAlive(ctx, name, -1)
	case previous != domain.PlayerStatusAlive && status == domain.PlayerStatusAlive:
		err = s.adjustAlive(ctx, name, 1)
	}
	if err != nil {
		return err
	}

	s.emit(ctx, "player_status_changed", name, player)
	return nil
}

// Finish transitions a started game to finished and records the outcome.
// An empty description falls back to the default result string for the
// winning side.
func (s *Session) Finish(ctx context.Context, name string, assassinWon bool, description string) error {
	if err := store.ValidateKey(name); err != nil {
		return err
	}

	if err := s.transition(ctx, name, domain.StatusFinished); err != nil {
		return err
	}

	result := description
	if result == "" {
		if assassinWon {
			result = ResultAssassinWon
		} else {
			result = ResultCiviliansWon
		}
	}
	if err := s.store.Set(ctx, domain.GameResultPath(name), result); err != nil {
		return fmt.Errorf("record result: %w", err)
	}

	s.emit(ctx, "game_finished", name, "")
	return nil
}

// AliveCivilians returns the current alive counter value.
func (s *Session) AliveCivilians(ctx context.Context, name string) (int, error) {
	raw, err := s.store.Get(ctx, domain.GameAlivePath(name))
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return 0, apperrors.Wrap(apperrors.CodeNotFound, "game has no alive counter", err)
		}
		return 0, err
	}
	count, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse alive counter: %w", err)
	}
	return count, nil
}

// Players returns the full roster projection: each member's role,
// play status, and invitation status. Pending invitees are not roster
// members and are not listed.
func (s *Session) Players(ctx context.Context, name string) ([]domain.Player, error) {
	roster, err := s.roster(ctx, name)
	if err != nil {
		return nil, err
	}

	players := make([]domain.Player, 0, len(roster))
	for _, member := range roster {
		player := domain.Player{Name: member}
		if raw, err := s.store.Get(ctx, domain.PlayerCharacterPath(name, member)); err == nil {
			player.Character = domain.RoleFromLabel(raw)
		}
		if raw, err := s.store.Get(ctx, domain.PlayerStatusPath(name, member)); err == nil {
			player.Status = domain.PlayerStatusFromLabel(raw)
		}
		players = append(players, player)
	}
	return players, nil
}

// status reads the game's lifecycle status, failing with not-found for
// games that were never committed.
func (s *Session) status(ctx context.Context, name string) (domain.Status, error) {
	raw, err := s.store.Get(ctx, domain.GameStatusPath(name))
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return domain.StatusUnspecified, apperrors.WithMetadata(apperrors.CodeNotFound,
				"game not found", map[string]string{"game": name})
		}
		return domain.StatusUnspecified, err
	}
	return domain.StatusFromLabel(raw), nil
}

// roster returns the members that actually joined the game: those with
// a status entry under the players path. Invitation marks also live
// under that path, so a raw child listing would include players who
// were merely invited.
func (s *Session) roster(ctx context.Context, name string) ([]string, error) {
	members, err := s.store.Children(ctx, domain.GamePlayersPath(name))
	if err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}

	joined := make([]string, 0, len(members))
	for _, member := range members {
		if _, err := s.store.Get(ctx, domain.PlayerStatusPath(name, member)); err == nil {
			joined = append(joined, member)
		}
	}
	return joined, nil
}

// transition atomically moves the game's status forward, rejecting
// anything the lifecycle does not allow.
func (s *Session) transition(ctx context.Context, name string, to domain.Status) error {
	_, err := s.store.Update(ctx, domain.GameStatusPath(name), func(current string, exists bool) (string, error) {
		if !exists {
			return "", apperrors.WithMetadata(apperrors.CodeNotFound, "game not found",
				map[string]string{"game": name})
		}
		from := domain.StatusFromLabel(current)
		if !domain.CanTransition(from, to) {
			return "", apperrors.WithMetadata(apperrors.CodeGameInvalidStatusTransition, "invalid status transition",
				map[string]string{
					"game": name,
					"from": domain.StatusLabel(from),
					"to":   domain.StatusLabel(to),
				})
		}
		return domain.StatusLabel(to), nil
	})
	return err
}

// adjustAlive applies a delta to the alive counter, refusing to go
// below zero.
func (s *Session) adjustAlive(ctx context.Context, name string, delta int) error {
	_, err := s.store.Update(ctx, domain.GameAlivePath(name), func(current string, exists bool) (string, error) {
		if !exists {
			return "", apperrors.WithMetadata(apperrors.CodeNotFound, "game has no alive counter",
				map[string]string{"game": name})
		}
		count, err := strconv.Atoi(current)
		if err != nil {
			return "", fmt.Errorf("parse alive counter: %w", err)
		}
		count += delta
		if count < 0 {
			return "", apperrors.WithMetadata(apperrors.CodeCounterUnderflow, "alive counter cannot go below zero",
				map[string]string{"game": name})
		}
		return strconv.Itoa(count), nil
	})
	return err
}

func (s *Session) playerRole(ctx context.Context, name, player string) (domain.Role, error) {
	raw, err := s.store.Get(ctx, domain.PlayerCharacterPath(name, player))
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return domain.RoleUnspecified, nil
		}
		return domain.RoleUnspecified, err
	}
	return domain.RoleFromLabel(raw), nil
}

func (s *Session) emit(ctx context.Context, kind, game, player string) {
	if s.emitter == nil {
		return
	}
	_ = s.emitter.Emit(ctx, telemetry.Event{Kind: kind, Game: game, Player: player})
}
