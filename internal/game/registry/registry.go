// Package registry creates and looks up games.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/assassin/internal/errors"
	"github.com/louisbranch/assassin/internal/game/domain"
	"github.com/louisbranch/assassin/internal/store"
	"github.com/louisbranch/assassin/internal/telemetry"
)

// Registry manages game records in the store.
type Registry struct {
	store   store.Store
	emitter *telemetry.Emitter
}

// New creates a Registry. The emitter may be nil.
func New(st store.Store, emitter *telemetry.Emitter) *Registry {
	return &Registry{store: st, emitter: emitter}
}

// CreateGame creates a game record. The creator path is the atomic
// existence claim, so duplicate names fail before any other write. The
// status path is written last and acts as the commit marker: readers that
// gate on status never observe a partially-initialized game.
func (r *Registry) CreateGame(ctx context.Context, input domain.CreateGameInput) (domain.Game, error) {
	if r.store == nil {
		return domain.Game{}, fmt.Errorf("store is not configured")
	}

	normalized, err := domain.NormalizeCreateGameInput(input)
	if err != nil {
		return domain.Game{}, err
	}

	_, err = r.store.Update(ctx, domain.GameCreatorPath(normalized.Name), func(current string, exists bool) (string, error) {
		if exists {
			return "", apperrors.WithMetadata(apperrors.CodeGameDuplicate,
				"game already exists", map[string]string{"game": normalized.Name})
		}
		return normalized.Creator, nil
	})
	if err != nil {
		return domain.Game{}, err
	}

	if err := r.store.Set(ctx, domain.GameTypePath(normalized.Name), domain.VisibilityLabel(normalized.Visibility)); err != nil {
		return domain.Game{}, fmt.Errorf("write game visibility: %w", err)
	}
	for _, member := range normalized.Roster {
		if err := r.store.Set(ctx, domain.PlayerStatusPath(normalized.Name, member), domain.PlayerStatusLabel(domain.PlayerStatusAlive)); err != nil {
			return domain.Game{}, fmt.Errorf("write roster entry %s: %w", member, err)
		}
	}
	if err := r.store.Set(ctx, domain.GameStatusPath(normalized.Name), domain.StatusLabel(domain.StatusCreated)); err != nil {
		return domain.Game{}, fmt.Errorf("commit game status: %w", err)
	}

	// Verify the commit marker is visible before declaring success.
	label, err := r.store.Get(ctx, domain.GameStatusPath(normalized.Name))
	if err != nil || domain.StatusFromLabel(label) != domain.StatusCreated {
		return domain.Game{}, apperrors.Wrap(apperrors.CodeStoreUnavailable, "verify created game", err)
	}

	_ = r.emitter.Emit(ctx, telemetry.Event{Kind: "game_created", Game: normalized.Name, Player: normalized.Creator})

	return domain.Game{
		Name:       normalized.Name,
		Visibility: normalized.Visibility,
		Creator:    normalized.Creator,
		Status:     domain.StatusCreated,
		Roster:     normalized.Roster,
	}, nil
}

// SetVisibility updates a game's visibility. Idempotent.
func (r *Registry) SetVisibility(ctx context.Context, name string, visibility domain.Visibility) error {
	if visibility == domain.VisibilityUnspecified {
		return apperrors.New(apperrors.CodeGameInvalidVisibility, "game visibility is required")
	}
	if _, err := r.GetStatus(ctx, name); err != nil {
		return err
	}
	return r.store.Set(ctx, domain.GameTypePath(name), domain.VisibilityLabel(visibility))
}

// IsGamePublic reports whether the game is publicly listed.
func (r *Registry) IsGamePublic(ctx context.Context, name string) (bool, error) {
	label, err := r.store.Get(ctx, domain.GameTypePath(name))
	if errors.Is(err, store.ErrNotFound) {
		return false, apperrors.WithMetadata(apperrors.CodeNotFound,
			"game not found", map[string]string{"game": name})
	}
	if err != nil {
		return false, err
	}
	return domain.VisibilityFromLabel(label) == domain.VisibilityPublic, nil
}

// ListPublicGames returns the names of public games as of the read
// snapshot. Staleness is acceptable; games missing their commit marker are
// skipped, never an error.
func (r *Registry) ListPublicGames(ctx context.Context) ([]string, error) {
	names, err := r.store.Children(ctx, domain.GamesPath())
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}

	public := make([]string, 0, len(names))
	for _, name := range names {
		if _, err := r.store.Get(ctx, domain.GameStatusPath(name)); err != nil {
			continue
		}
		label, err := r.store.Get(ctx, domain.GameTypePath(name))
		if err != nil {
			continue
		}
		if domain.VisibilityFromLabel(label) == domain.VisibilityPublic {
			public = append(public, name)
		}
	}
	return public, nil
}

// GetStatus returns a game's lifecycle status.
func (r *Registry) GetStatus(ctx context.Context, name string) (domain.Status, error) {
	label, err := r.store.Get(ctx, domain.GameStatusPath(name))
	if errors.Is(err, store.ErrNotFound) {
		return domain.StatusUnspecified, apperrors.WithMetadata(apperrors.CodeNotFound,
			"game not found", map[string]string{"game": name})
	}
	if err != nil {
		return domain.StatusUnspecified, err
	}
	return domain.StatusFromLabel(label), nil
}

// IsStarted reports whether the game has started.
func (r *Registry) IsStarted(ctx context.Context, name string) (bool, error) {
	status, err := r.GetStatus(ctx, name)
	if err != nil {
		return false, err
	}
	return status == domain.StatusStarted, nil
}

// IsFinished reports whether the game has finished.
func (r *Registry) IsFinished(ctx context.Context, name string) (bool, error) {
	status, err := r.GetStatus(ctx, name)
	if err != nil {
		return false, err
	}
	return status == domain.StatusFinished, nil
}

// GetGame assembles the full game read model.
func (r *Registry) GetGame(ctx context.Context, name string) (domain.Game, error) {
	status, err := r.GetStatus(ctx, name)
	if err != nil {
		return domain.Game{}, err
	}

	game := domain.Game{
		Name:   name,
		Status: status,
		Roles:  make(map[string]domain.Role),
	}

	if label, err := r.store.Get(ctx, domain.GameTypePath(name)); err == nil {
		game.Visibility = domain.VisibilityFromLabel(label)
	}
	if creator, err := r.store.Get(ctx, domain.GameCreatorPath(name)); err == nil {
		game.Creator = creator
	}
	if raw, err := r.store.Get(ctx, domain.GameAlivePath(name)); err == nil {
		if count, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			game.AliveCivilianCount = count
		}
	}
	if result, err := r.store.Get(ctx, domain.GameResultPath(name)); err == nil {
		game.Result = result
	}

	members, err := r.store.Children(ctx, domain.GamePlayersPath(name))
	if err != nil {
		return domain.Game{}, fmt.Errorf("list roster: %w", err)
	}
	// Invitation marks also live under the players path; only members
	// with a status entry have joined the roster.
	roster := make([]string, 0, len(members))
	for _, member := range members {
		if _, err := r.store.Get(ctx, domain.PlayerStatusPath(name, member)); err != nil {
			continue
		}
		roster = append(roster, member)
		if label, err := r.store.Get(ctx, domain.PlayerCharacterPath(name, member)); err == nil {
			game.Roles[member] = domain.RoleFromLabel(label)
		}
	}
	game.Roster = roster
	return game, nil
}
