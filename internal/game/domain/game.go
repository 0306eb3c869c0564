package domain

import (
	"slices"
	"strings"

	apperrors "github.com/louisbranch/assassin/internal/errors"
	"github.com/louisbranch/assassin/internal/store"
)

// Game represents a game record. Name is the unique identifier and doubles
// as the store path segment.
type Game struct {
	Name               string
	Visibility         Visibility
	Creator            string
	Status             Status
	Roster             []string
	Roles              map[string]Role
	AliveCivilianCount int
	Result             string
}

// CreateGameInput describes the metadata needed to create a game.
type CreateGameInput struct {
	Name       string
	Visibility Visibility
	Creator    string
	Roster     []string
}

// NormalizeCreateGameInput trims and validates game creation input. The
// creator is always part of the resulting roster.
func NormalizeCreateGameInput(input CreateGameInput) (CreateGameInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return CreateGameInput{}, apperrors.New(apperrors.CodeGameNameEmpty, "game name is required")
	}
	if err := store.ValidateKey(input.Name); err != nil {
		return CreateGameInput{}, apperrors.WithMetadata(apperrors.CodeGameNameInvalid,
			"game name contains reserved characters", map[string]string{"name": input.Name})
	}
	if input.Visibility == VisibilityUnspecified {
		return CreateGameInput{}, apperrors.New(apperrors.CodeGameInvalidVisibility, "game visibility is required")
	}
	input.Creator = strings.TrimSpace(input.Creator)
	if input.Creator == "" {
		return CreateGameInput{}, apperrors.New(apperrors.CodePlayerIDEmpty, "game creator is required")
	}

	roster := make([]string, 0, len(input.Roster)+1)
	for _, member := range input.Roster {
		member = strings.TrimSpace(member)
		if member == "" {
			continue
		}
		if err := store.ValidateKey(member); err != nil {
			return CreateGameInput{}, apperrors.WithMetadata(apperrors.CodePlayerIDEmpty,
				"roster member id contains reserved characters", map[string]string{"player": member})
		}
		if !slices.Contains(roster, member) {
			roster = append(roster, member)
		}
	}
	if err := store.ValidateKey(input.Creator); err != nil {
		return CreateGameInput{}, apperrors.WithMetadata(apperrors.CodePlayerIDEmpty,
			"creator id contains reserved characters", map[string]string{"player": input.Creator})
	}
	if !slices.Contains(roster, input.Creator) {
		roster = append(roster, input.Creator)
	}
	input.Roster = roster
	return input, nil
}
