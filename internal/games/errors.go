package games

import "errors"

// Not-found errors.
var (
	ErrGameNotFound   = errors.New("game not found")
	ErrPlayerNotFound = errors.New("player not found")
)

// Invalid-state errors. Their messages are shown to the acting player.
var (
	ErrInvalidPhase     = errors.New("that action is not available in the current phase")
	ErrInvalidStatus    = errors.New("the game is not in the right stage for that")
	ErrNotOwner         = errors.New("only the game owner can do that")
	ErrNotEnoughPlayers = errors.New("at least 3 players are needed to start")
	ErrOwnerCannotLeave = errors.New("the game owner cannot leave the lobby")
	ErrAlreadyJoined    = errors.New("you are already in this game")
	ErrChannelBusy      = errors.New("a game is already running in this channel")
	ErrWrongPassword    = errors.New("wrong lobby password")
	ErrNotAllowed       = errors.New("your role cannot do that")
	ErrAlreadyActed     = errors.New("you already acted this night")
	ErrInvalidTarget    = errors.New("that target is not allowed")
	ErrAbilityUsed      = errors.New("that ability has already been used")
	ErrRepeatProtection = errors.New("you cannot protect the same player two nights in a row")
	ErrRoleLocked       = errors.New("villagers and werewolves are always in the game")
)

// ErrInternal wraps unexpected faults recovered inside a game operation.
var ErrInternal = errors.New("internal error")

var invalidState = []error{
	ErrInvalidPhase,
	ErrInvalidStatus,
	ErrNotOwner,
	ErrNotEnoughPlayers,
	ErrOwnerCannotLeave,
	ErrAlreadyJoined,
	ErrChannelBusy,
	ErrWrongPassword,
	ErrNotAllowed,
	ErrAlreadyActed,
	ErrInvalidTarget,
	ErrAbilityUsed,
	ErrRepeatProtection,
	ErrRoleLocked,
}

// IsInvalidState reports whether err rejects an action without changing state.
// It returns the sentinel so callers can show its message.
func IsInvalidState(err error) (error, bool) {
	for _, sentinel := range invalidState {
		if errors.Is(err, sentinel) {
			return sentinel, true
		}
	}
	return nil, false
}

// IsNotFound reports whether err is a missing game or player.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrGameNotFound) || errors.Is(err, ErrPlayerNotFound)
}
