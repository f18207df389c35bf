// Package parlor is the driving controller over the game sessions. It
// owns the registry, the timeout scheduler and the ledger: sessions are
// pure reducers, and everything an Update asks for (rendering, timer
// changes, settlement, removal) happens here.
package parlor

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/nix24/ChipMinigameParlor/internal/economy"
	"github.com/nix24/ChipMinigameParlor/internal/games/blackjack"
	"github.com/nix24/ChipMinigameParlor/internal/games/fourtress"
	"github.com/nix24/ChipMinigameParlor/internal/games/pokerduel"
	"github.com/nix24/ChipMinigameParlor/internal/games/switches"
	"github.com/nix24/ChipMinigameParlor/internal/randutil"
	"github.com/nix24/ChipMinigameParlor/internal/session"
)

// Notifier receives every render produced by a transition. The embedding
// bot translates it into whatever its chat platform displays.
type Notifier func(state session.RenderState, statusText string)

// Timeouts are the windows applied to new sessions.
type Timeouts struct {
	Turn  time.Duration
	Lobby time.Duration
	Round time.Duration
}

// VariantLimits constrains what Create accepts for one variant.
type VariantLimits struct {
	Enabled  bool
	MinWager int64
	MaxWager int64
}

var (
	// ErrVariantDisabled is returned by Create for a variant the
	// configuration has switched off.
	ErrVariantDisabled = errors.New("variant is disabled")
	// ErrWagerOutOfRange is returned by Create when the wager falls
	// outside the variant's configured limits.
	ErrWagerOutOfRange = errors.New("wager out of range")
)

// Options wires a controller. Clock is injectable so tests drive
// timeouts with a mock.
type Options struct {
	Clock    quartz.Clock
	Ledger   economy.Ledger
	Logger   *log.Logger
	Rand     *rand.Rand
	Notify   Notifier
	Timeouts Timeouts

	// Limits holds the per-variant wager limits. Variants without an
	// entry (or a nil map) are unrestricted.
	Limits map[session.Variant]VariantLimits
}

// Controller routes actions to sessions and carries out their updates.
type Controller struct {
	registry  *session.Registry
	scheduler *session.Scheduler
	ledger    economy.Ledger
	logger    *log.Logger
	notify    Notifier
	timeouts  Timeouts
	limits    map[session.Variant]VariantLimits

	// seedMu guards rng: *rand.Rand is not safe for concurrent use, and
	// Create can run from any goroutine. Each session gets its own
	// derived rng instead of sharing this one.
	seedMu sync.Mutex
	rng    *rand.Rand

	stats *Stats
}

func (c *Controller) nextRand() *rand.Rand {
	c.seedMu.Lock()
	defer c.seedMu.Unlock()
	return randutil.New(c.rng.Int64())
}

// NewController builds a controller and its scheduler on the given
// clock.
func NewController(opts Options) *Controller {
	c := &Controller{
		registry: session.NewRegistry(),
		ledger:   opts.Ledger,
		logger:   opts.Logger.WithPrefix("parlor"),
		rng:      opts.Rand,
		notify:   opts.Notify,
		timeouts: opts.Timeouts,
		limits:   opts.Limits,
		stats:    newStats(),
	}
	c.scheduler = session.NewScheduler(opts.Clock, opts.Logger, c.handleTimeout)
	return c
}

// CreateRequest describes a new game. SessionID is the triggering
// interaction id; left empty, one is generated. Opponent fields apply to
// the connect-four variant, Invited to the elimination game.
type CreateRequest struct {
	Variant     session.Variant
	SessionID   string
	GuildID     string
	CreatorID   string
	CreatorName string
	Wager       int64

	OpponentID   string
	OpponentName string
	Invited      []switches.Invite
}

// Create validates the wager against the variant's limits and the
// creator's balance, assembles the session and registers it. Sessions
// that resolve at the deal (a blackjack natural) settle immediately and
// are never registered.
func (c *Controller) Create(ctx context.Context, req CreateRequest) (string, error) {
	if req.Wager < 0 {
		return "", fmt.Errorf("negative wager %d", req.Wager)
	}
	if lim, ok := c.limits[req.Variant]; ok {
		if !lim.Enabled {
			return "", fmt.Errorf("%w: %s", ErrVariantDisabled, req.Variant)
		}
		if req.Wager < lim.MinWager || req.Wager > lim.MaxWager {
			return "", fmt.Errorf("%w: %d outside %d..%d for %s",
				ErrWagerOutOfRange, req.Wager, lim.MinWager, lim.MaxWager, req.Variant)
		}
	}
	if req.Wager > 0 {
		balance, err := c.ledger.GetBalance(ctx, req.CreatorID, req.GuildID)
		if err != nil {
			return "", fmt.Errorf("balance check: %w", err)
		}
		if balance < req.Wager {
			return "", economy.ErrInsufficientFunds
		}
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	s, upd, err := c.assemble(req)
	if err != nil {
		return "", err
	}
	c.logger.Info("session created",
		"session", req.SessionID, "variant", s.Variant(), "wager", req.Wager)

	if !upd.Terminal {
		if err := c.registry.Put(s); err != nil {
			return "", err
		}
	}
	c.apply(ctx, s, upd)
	return req.SessionID, nil
}

func (c *Controller) assemble(req CreateRequest) (session.Session, *session.Update, error) {
	switch req.Variant {
	case session.VariantSwitches:
		s, upd := switches.New(switches.Config{
			SessionID:    req.SessionID,
			GuildID:      req.GuildID,
			CreatorID:    req.CreatorID,
			CreatorName:  req.CreatorName,
			Invited:      req.Invited,
			Wager:        req.Wager,
			TurnTimeout:  c.timeouts.Turn,
			LobbyTimeout: c.timeouts.Lobby,
			Rand:         c.nextRand(),
			Logger:       c.logger,
		})
		return s, upd, nil
	case session.VariantFourtress:
		s, upd := fourtress.New(fourtress.Config{
			SessionID:    req.SessionID,
			GuildID:      req.GuildID,
			CreatorID:    req.CreatorID,
			CreatorName:  req.CreatorName,
			OpponentID:   req.OpponentID,
			OpponentName: req.OpponentName,
			Wager:        req.Wager,
			TurnTimeout:  c.timeouts.Turn,
			LobbyTimeout: c.timeouts.Lobby,
			Rand:         c.nextRand(),
			Logger:       c.logger,
		})
		return s, upd, nil
	case session.VariantBlackjack:
		s, upd := blackjack.New(blackjack.Config{
			SessionID:   req.SessionID,
			GuildID:     req.GuildID,
			PlayerID:    req.CreatorID,
			PlayerName:  req.CreatorName,
			Wager:       req.Wager,
			TurnTimeout: c.timeouts.Turn,
			Rand:        c.nextRand(),
			Logger:      c.logger,
		})
		return s, upd, nil
	case session.VariantPokerDuel:
		s, upd := pokerduel.New(pokerduel.Config{
			SessionID:    req.SessionID,
			GuildID:      req.GuildID,
			PlayerID:     req.CreatorID,
			PlayerName:   req.CreatorName,
			Wager:        req.Wager,
			RoundTimeout: c.timeouts.Round,
			LobbyTimeout: c.timeouts.Lobby,
			Rand:         c.nextRand(),
			Logger:       c.logger,
		})
		return s, upd, nil
	default:
		return nil, nil, fmt.Errorf("unknown variant %q", req.Variant)
	}
}

// balanceConfirmer is implemented by sessions whose start commits a
// stake derived from a fresh balance read.
type balanceConfirmer interface {
	ConfirmStart(playerID string, balance int64) (*session.Update, error)
	GuildID() string
}

// Submit routes a player action. Validation errors come back unchanged
// so the caller can show a non-mutating notice; the session state is
// untouched in that case.
func (c *Controller) Submit(ctx context.Context, sessionID, playerID, actionID string) error {
	s, ok := c.registry.Get(sessionID)
	if !ok {
		return session.ErrUnknownSession
	}

	var upd *session.Update
	var err error
	if bc, isBC := s.(balanceConfirmer); isBC && actionID == pokerduel.ActionConfirm {
		var balance int64
		balance, err = c.ledger.GetBalance(ctx, playerID, bc.GuildID())
		if err != nil {
			return fmt.Errorf("balance check: %w", err)
		}
		upd, err = bc.ConfirmStart(playerID, balance)
	} else {
		upd, err = s.Submit(playerID, actionID)
	}
	if err != nil {
		return err
	}
	c.apply(ctx, s, upd)
	return nil
}

// Describe projects a session for rendering.
func (c *Controller) Describe(sessionID string) (session.RenderState, error) {
	s, ok := c.registry.Get(sessionID)
	if !ok {
		return session.RenderState{}, session.ErrUnknownSession
	}
	return s.Describe(), nil
}

// Active returns the number of registered sessions.
func (c *Controller) Active() int { return c.registry.Len() }

// Stats returns the per-variant finished-game counters.
func (c *Controller) Stats() map[session.Variant]uint64 { return c.stats.Snapshot() }

// Shutdown cancels all timers and drops every live session without
// settling; unfinished games are abandoned, not forfeited.
func (c *Controller) Shutdown() {
	c.scheduler.Stop()
	for _, s := range c.registry.Drain() {
		c.logger.Warn("abandoning session", "session", s.ID(), "variant", s.Variant())
	}
}

func (c *Controller) handleTimeout(sessionID string, epoch uint64) {
	s, ok := c.registry.Get(sessionID)
	if !ok {
		return
	}
	upd := s.Timeout(epoch)
	if upd == nil {
		// The user action won the race.
		return
	}
	c.logger.Info("timeout fired", "session", sessionID, "epoch", epoch)
	c.apply(context.Background(), s, upd)
}

// apply carries out an Update: adjust the timer, notify the renderer,
// and on terminal updates settle before removing the session so a
// ledger failure can never re-open a finished game.
func (c *Controller) apply(ctx context.Context, s session.Session, upd *session.Update) {
	if upd.Timer != nil {
		if upd.Timer.Arm {
			c.scheduler.Arm(s.ID(), upd.Timer.Epoch, upd.Timer.Duration)
		} else {
			c.scheduler.Disarm(s.ID())
		}
	}
	if c.notify != nil {
		c.notify(upd.Render, upd.StatusText)
	}
	if !upd.Terminal {
		return
	}

	if failed := economy.Apply(ctx, c.ledger, c.logger, upd.Settlement); failed > 0 {
		c.logger.Warn("settlement degraded",
			"session", s.ID(), "failed_legs", failed, "total_legs", len(upd.Settlement))
	}
	c.registry.Remove(s.ID())
	c.scheduler.Disarm(s.ID())
	c.stats.Finished(s.Variant(), upd.Outcome)
}
