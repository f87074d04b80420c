package apperror

import "errors"

// Kind groups errors by how a caller should react to them.
type Kind string

const (
	KindInternal   Kind = "internal"
	KindNotFound   Kind = "not_found"
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
)

// Error is a rejected operation with a machine-readable code.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (that *Error) Error() string {
	return that.Message
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	ErrSessionNotFound = newError(KindNotFound, "SESSION_NOT_FOUND", "session not found")
	ErrUnknownPlayer   = newError(KindNotFound, "UNKNOWN_PLAYER", "player is not seated in this session")
	ErrNotQueued       = newError(KindNotFound, "NOT_QUEUED", "player is not in the matchmaking queue")
	ErrMatchNotFound   = newError(KindNotFound, "MATCH_NOT_FOUND", "no match is waiting for this player")

	ErrGameFull          = newError(KindValidation, "GAME_FULL", "game already has two players")
	ErrInvalidName       = newError(KindValidation, "INVALID_NAME", "name must be 2-15 letters, digits, spaces, dashes or underscores")
	ErrOutOfRange        = newError(KindValidation, "OUT_OF_RANGE", "position must be between 0 and 8")
	ErrInvalidDifficulty = newError(KindValidation, "INVALID_DIFFICULTY", "difficulty must be easy, medium or hard")

	ErrNotPlaying        = newError(KindConflict, "NOT_PLAYING", "game is not in progress")
	ErrCellOccupied      = newError(KindConflict, "CELL_OCCUPIED", "cell is already occupied")
	ErrNotYourTurn       = newError(KindConflict, "NOT_YOUR_TURN", "it's not your turn")
	ErrRematchInProgress = newError(KindConflict, "IN_PROGRESS", "round is still in progress")
	ErrNoAvailableMoves  = newError(KindConflict, "NO_AVAILABLE_MOVES", "no available moves")
)

// KindOf reports the kind of err, looking through wrapping.
// Errors outside the taxonomy are internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}

	return KindInternal
}

// CodeOf returns the machine-readable code of err, or "INTERNAL_ERROR".
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}

	return "INTERNAL_ERROR"
}
