package domain

import "strings"

// Status describes the lifecycle state of a game. Transitions are strictly
// forward: CREATED -> STARTED -> FINISHED.
type Status int

const (
	// StatusUnspecified represents an invalid game status value.
	StatusUnspecified Status = iota
	// StatusCreated indicates the game exists but has not started.
	StatusCreated
	// StatusStarted indicates play is in progress.
	StatusStarted
	// StatusFinished indicates the game is over. Terminal.
	StatusFinished
)

// StatusLabel returns the store label for a game status.
func StatusLabel(status Status) string {
	switch status {
	case StatusCreated:
		return "created"
	case StatusStarted:
		return "started"
	case StatusFinished:
		return "finished"
	default:
		return "unspecified"
	}
}

// StatusFromLabel converts a store label to a Status value.
func StatusFromLabel(label string) Status {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "created":
		return StatusCreated
	case "started":
		return StatusStarted
	case "finished":
		return StatusFinished
	default:
		return StatusUnspecified
	}
}

// CanTransition reports whether a game may move from one status to another.
func CanTransition(from, to Status) bool {
	switch {
	case from == StatusCreated && to == StatusStarted:
		return true
	case from == StatusStarted && to == StatusFinished:
		return true
	default:
		return false
	}
}

// Visibility controls whether a game appears in public listings.
type Visibility int

const (
	// VisibilityUnspecified represents an invalid visibility value.
	VisibilityUnspecified Visibility = iota
	// VisibilityPublic lists the game for all players.
	VisibilityPublic
	// VisibilityPrivate hides the game from listings.
	VisibilityPrivate
)

// VisibilityLabel returns the store label for a visibility.
func VisibilityLabel(visibility Visibility) string {
	switch visibility {
	case VisibilityPublic:
		return "public"
	case VisibilityPrivate:
		return "private"
	default:
		return "unspecified"
	}
}

// VisibilityFromLabel converts a store label to a Visibility value.
func VisibilityFromLabel(label string) Visibility {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "public":
		return VisibilityPublic
	case "private":
		return VisibilityPrivate
	default:
		return VisibilityUnspecified
	}
}
