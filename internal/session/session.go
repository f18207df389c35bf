// Package session defines the shared shape of a running minigame: player
// slots, the Session interface every variant implements, the transition
// Update record, the process-wide Registry, and the timeout Scheduler.
//
// Sessions are reducers: a transition validates the caller against the
// latest in-memory state under the session's own lock, mutates, and
// returns an Update describing what changed. Sessions never render and
// never touch the ledger; the parlor controller does both using the
// Update's render state and settlement legs.
package session

import (
	"time"

	"github.com/nix24/ChipMinigameParlor/internal/economy"
)

// Variant tags one of the supported game types.
type Variant string

const (
	VariantSwitches  Variant = "switches"
	VariantFourtress Variant = "fourtress"
	VariantBlackjack Variant = "blackjack"
	VariantPokerDuel Variant = "pokerduel"
)

// Status is the lifecycle state of a session.
type Status int

const (
	StatusWaiting Status = iota
	StatusPlaying
	StatusFinished
)

// String returns the lifecycle state name.
func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusPlaying:
		return "playing"
	case StatusFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// PlayerSlot is a seat in a session, occupied by a human identity or a
// CPU marker. Order is assigned once at assembly and never reused within
// the session; Eliminated only ever flips false to true.
type PlayerSlot struct {
	UserID     string
	Label      string
	CPU        bool
	Eliminated bool
	Order      int
}

// Is reports whether the slot belongs to the given human identity.
func (p PlayerSlot) Is(userID string) bool {
	return !p.CPU && p.UserID == userID
}

// TimerDirective tells the controller what to do with the session's turn
// timer after a transition.
type TimerDirective struct {
	// Arm true schedules a fresh timeout in Duration tagged with Epoch;
	// false cancels any pending timer.
	Arm      bool
	Duration time.Duration
	Epoch    uint64
}

// Update is the result of a successful transition.
type Update struct {
	// StatusText is the headline for the next render ("Alice hit the
	// detonator!").
	StatusText string

	// Terminal marks the session finished: the controller settles, then
	// removes it from the registry. A terminal session is never reused.
	Terminal bool

	// Outcome is the variant-specific result tag on terminal updates
	// ("win", "loss", "draw", "push", "expired").
	Outcome string

	// Settlement legs to apply on terminal updates, in order.
	Settlement []economy.Update

	// Timer is nil to leave the pending timer untouched.
	Timer *TimerDirective

	// Render is the state to project for the players.
	Render RenderState
}

// Session is one in-progress game instance. Implementations serialize
// Submit/Timeout/Describe internally; callers may invoke them from any
// goroutine.
type Session interface {
	// ID is the triggering interaction's identifier, unique for the
	// process lifetime.
	ID() string

	Variant() Variant

	Status() Status

	// Submit applies a player action. Validation failures (wrong turn,
	// unknown action, finished game) return a sentinel error and mutate
	// nothing.
	Submit(playerID, actionID string) (*Update, error)

	// Timeout applies the forced-forfeit transition for the turn tagged
	// with epoch. A stale epoch returns nil: the user action won the race
	// and the fire is a no-op.
	Timeout(epoch uint64) *Update

	// Describe projects the current state for rendering without mutating
	// anything.
	Describe() RenderState
}

// Common action identifiers shared across variants. Variant packages add
// their own (column indices, hit/stand, reveal).
const (
	ActionJoin = "join"
)
