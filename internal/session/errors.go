package session

import "errors"

// Validation sentinels. All of these reject an action without mutating
// session state; the controller maps them to user-visible notices.
var (
	ErrUnknownSession = errors.New("unknown or finished session")
	ErrNotYourTurn    = errors.New("not your turn")
	ErrNotInGame      = errors.New("player is not in this game")
	ErrInvalidAction  = errors.New("invalid action")
	ErrGameFinished   = errors.New("game already finished")
	ErrGameNotStarted = errors.New("game has not started")
)
