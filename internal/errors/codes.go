package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Game errors
	CodeGameNameEmpty               Code = "GAME_NAME_EMPTY"
	CodeGameNameInvalid             Code = "GAME_NAME_INVALID"
	CodeGameDuplicate               Code = "GAME_DUPLICATE"
	CodeGameInvalidVisibility       Code = "GAME_INVALID_VISIBILITY"
	CodeGameInvalidStatusTransition Code = "GAME_INVALID_STATUS_TRANSITION"
	CodeGameRosterEmpty             Code = "GAME_ROSTER_EMPTY"

	// Player errors
	CodePlayerIDEmpty        Code = "PLAYER_ID_EMPTY"
	CodePlayerInvalidStatus  Code = "PLAYER_INVALID_STATUS"
	CodePlayerNotInRoster    Code = "PLAYER_NOT_IN_ROSTER"
	CodePlayerEmailEmpty     Code = "PLAYER_EMAIL_EMPTY"

	// Counter errors
	CodeCounterUnderflow Code = "COUNTER_UNDERFLOW"

	// Invite errors
	CodeInviteGameEmpty    Code = "INVITE_GAME_EMPTY"
	CodeInvitePlayerEmpty  Code = "INVITE_PLAYER_EMPTY"

	// Storage errors
	CodeNotFound         Code = "NOT_FOUND"
	CodeStoreUnavailable Code = "STORE_UNAVAILABLE"
	CodeStorePathInvalid Code = "STORE_PATH_INVALID"
)

// HTTPStatus maps domain codes to HTTP status codes for client responses.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input
	case CodeGameNameEmpty,
		CodeGameNameInvalid,
		CodeGameInvalidVisibility,
		CodeGameRosterEmpty,
		CodePlayerIDEmpty,
		CodePlayerInvalidStatus,
		CodePlayerEmailEmpty,
		CodeInviteGameEmpty,
		CodeInvitePlayerEmpty,
		CodeStorePathInvalid:
		return http.StatusBadRequest

	// Conflict - state doesn't allow operation
	case CodeGameDuplicate,
		CodeGameInvalidStatusTransition,
		CodeCounterUnderflow,
		CodePlayerNotInRoster:
		return http.StatusConflict

	// Not found - resource doesn't exist
	case CodeNotFound:
		return http.StatusNotFound

	// Unavailable - backend failures
	case CodeStoreUnavailable:
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}
