// Package directory resolves players by email or username.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/assassin/internal/errors"
	"github.com/louisbranch/assassin/internal/game/domain"
	"github.com/louisbranch/assassin/internal/store"
)

// Directory looks up players against the store.
type Directory struct {
	store store.Store
}

// New creates a Directory.
func New(st store.Store) *Directory {
	return &Directory{store: st}
}

// RegisterEmail indexes a player id under their email for exact-match
// lookup. The key is the email with reserved characters removed. It
// also seeds the player's users entry, so registered players show up
// in username search before any invite or game touches them.
func (d *Directory) RegisterEmail(ctx context.Context, email, playerID string) error {
	original := strings.TrimSpace(email)
	normalized := store.NormalizeKey(original)
	if normalized == "" {
		return apperrors.New(apperrors.CodePlayerEmailEmpty, "email is required")
	}
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return apperrors.New(apperrors.CodePlayerIDEmpty, "player id is required")
	}
	if err := store.ValidateKey(playerID); err != nil {
		return err
	}
	if err := d.store.Set(ctx, domain.EmailPath(normalized), playerID); err != nil {
		return err
	}
	return d.store.Set(ctx, domain.UserEmailPath(playerID), original)
}

// FindByEmail resolves a player by exact email match. Fuzzy matching on
// emails is never done. Key normalization is lossy and one-way, so the
// returned Player carries the caller's original email string.
func (d *Directory) FindByEmail(ctx context.Context, email string) (domain.Player, error) {
	original := strings.TrimSpace(email)
	normalized := store.NormalizeKey(original)
	if normalized == "" {
		return domain.Player{}, apperrors.New(apperrors.CodePlayerEmailEmpty, "email is required")
	}

	playerID, err := d.store.Get(ctx, domain.EmailPath(normalized))
	if errors.Is(err, store.ErrNotFound) {
		return domain.Player{}, apperrors.WithMetadata(apperrors.CodeNotFound,
			"no player with that email", map[string]string{"email": original})
	}
	if err != nil {
		return domain.Player{}, err
	}

	return domain.Player{Name: playerID, EmailID: original}, nil
}

// FindByUsernameContains returns players whose name contains the fragment.
// The match is case-sensitive. Results are populated with names only;
// callers must not assume email or role data from this path.
func (d *Directory) FindByUsernameContains(ctx context.Context, fragment string) ([]domain.Player, error) {
	names, err := d.store.Children(ctx, domain.UsersPath())
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	players := make([]domain.Player, 0)
	for _, name := range names {
		if strings.Contains(name, fragment) {
			players = append(players, domain.Player{Name: name})
		}
	}
	return players, nil
}
