// Package stats tracks per-player win and loss counters.
package stats

import (
	"context"
	"fmt"
	"strconv"

	apperrors "github.com/louisbranch/assassin/internal/errors"
	"github.com/louisbranch/assassin/internal/game/domain"
	"github.com/louisbranch/assassin/internal/store"
)

const (
	statWins   = "wins"
	statLosses = "losses"
)

// Stats is a player's lifetime record.
type Stats struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

// Tracker reads and increments player stats.
type Tracker struct {
	store store.Store
}

// New creates a Tracker.
func New(st store.Store) *Tracker {
	return &Tracker{store: st}
}

// AddWin increments the player's win counter.
func (t *Tracker) AddWin(ctx context.Context, player string) error {
	return t.increment(ctx, player, statWins)
}

// AddLoss increments the player's loss counter.
func (t *Tracker) AddLoss(ctx context.Context, player string) error {
	return t.increment(ctx, player, statLosses)
}

// Get returns the player's record. Players with no recorded games have
// a zero record.
func (t *Tracker) Get(ctx context.Context, player string) (Stats, error) {
	if err := store.ValidateKey(player); err != nil {
		return Stats{}, err
	}

	wins, err := t.read(ctx, player, statWins)
	if err != nil {
		return Stats{}, err
	}
	losses, err := t.read(ctx, player, statLosses)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Wins: wins, Losses: losses}, nil
}

// increment is an atomic read-modify-write, so simultaneous game
// finishes never drop a result.
func (t *Tracker) increment(ctx context.Context, player, stat string) error {
	if err := store.ValidateKey(player); err != nil {
		return err
	}

	_, err := t.store.Update(ctx, domain.UserStatPath(player, stat), func(current string, exists bool) (string, error) {
		count := 0
		if exists {
			parsed, err := strconv.Atoi(current)
			if err != nil {
				return "", fmt.Errorf("parse %s counter: %w", stat, err)
			}
			count = parsed
		}
		return strconv.Itoa(count + 1), nil
	})
	return err
}

func (t *Tracker) read(ctx context.Context, player, stat string) (int, error) {
	raw, err := t.store.Get(ctx, domain.UserStatPath(player, stat))
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return 0, nil
		}
		return 0, err
	}
	count, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s counter: %w", stat, err)
	}
	return count, nil
}
