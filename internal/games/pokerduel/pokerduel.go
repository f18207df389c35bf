// Package pokerduel implements the best-of-three five-card showdown
// against the house CPU. The player risks a quarter of their balance,
// computed at confirmation time, for a shot at double the wager.
package pokerduel

import (
	"fmt"
	rand "math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nix24/ChipMinigameParlor/internal/deck"
	"github.com/nix24/ChipMinigameParlor/internal/economy"
	"github.com/nix24/ChipMinigameParlor/internal/handeval"
	"github.com/nix24/ChipMinigameParlor/internal/session"
)

const (
	ActionConfirm = "confirm"
	ActionReveal  = "reveal"

	roundsToWin = 2
)

// Config carries everything a duel needs at creation.
type Config struct {
	SessionID    string
	GuildID      string
	PlayerID     string
	PlayerName   string
	Wager        int64
	RoundTimeout time.Duration
	LobbyTimeout time.Duration
	Rand         *rand.Rand
	Logger       *log.Logger
}

// Session is a best-of-three poker duel. It starts in the waiting state
// and only begins dealing once the driving controller confirms the
// player's stake against a fresh balance read.
type Session struct {
	mu sync.Mutex

	id           string
	guildID      string
	wager        int64
	logger       *log.Logger
	roundTimeout time.Duration
	lobbyTimeout time.Duration
	newDeck      func() *deck.Deck

	status        session.Status
	player        session.PlayerSlot
	round         int
	playerWins    int
	cpuWins       int
	playerHand    handeval.Hand
	cpuHand       handeval.Hand
	potentialLoss int64
	history       []string
	epoch         uint64
}

// New creates the duel in its confirmation state. No cards are dealt
// and no stake is known until ConfirmStart.
func New(cfg Config) (*Session, *session.Update) {
	rng := cfg.Rand
	s := &Session{
		id:           cfg.SessionID,
		guildID:      cfg.GuildID,
		wager:        cfg.Wager,
		logger:       cfg.Logger.WithPrefix("pokerduel").With("session", cfg.SessionID),
		roundTimeout: cfg.RoundTimeout,
		lobbyTimeout: cfg.LobbyTimeout,
		newDeck:      func() *deck.Deck { return deck.NewShuffled(rng) },
		status:       session.StatusWaiting,
		player:       session.PlayerSlot{UserID: cfg.PlayerID, Label: cfg.PlayerName},
	}
	s.epoch++
	return s, &session.Update{
		StatusText: fmt.Sprintf("%s, winning pays double your %d wager but losing costs a quarter of your balance. Confirm to deal.",
			cfg.PlayerName, cfg.Wager),
		Timer:  &session.TimerDirective{Arm: true, Duration: s.lobbyTimeout, Epoch: s.epoch},
		Render: s.renderLocked(),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Variant() session.Variant { return session.VariantPokerDuel }

// GuildID exposes the economy scope so the controller can read a fresh
// balance when the player confirms.
func (s *Session) GuildID() string { return s.guildID }

func (s *Session) Status() session.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) Describe() session.RenderState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderLocked()
}

// ConfirmStart locks in the stake and deals the first round. The
// balance must be read from the ledger at call time, not when the duel
// was created, so a stale figure cannot shrink the downside.
func (s *Session) ConfirmStart(playerID string, balance int64) (*session.Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == session.StatusFinished {
		return nil, session.ErrGameFinished
	}
	if !s.player.Is(playerID) {
		return nil, session.ErrNotInGame
	}
	if s.status != session.StatusWaiting {
		return nil, session.ErrInvalidAction
	}

	s.potentialLoss = balance / 4
	s.status = session.StatusPlaying
	s.round = 1
	s.logger.Info("confirmed", "balance", balance, "potential_loss", s.potentialLoss)

	if upd := s.dealLocked(); upd != nil {
		return upd, nil
	}
	s.epoch++
	return &session.Update{
		StatusText: fmt.Sprintf("Round 1. %s, reveal when ready. Losing the match costs %d chips.",
			s.player.Label, s.potentialLoss),
		Timer:  &session.TimerDirective{Arm: true, Duration: s.roundTimeout, Epoch: s.epoch},
		Render: s.renderLocked(),
	}, nil
}

func (s *Session) Submit(playerID, actionID string) (*session.Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == session.StatusFinished {
		return nil, session.ErrGameFinished
	}
	if !s.player.Is(playerID) {
		return nil, session.ErrNotInGame
	}
	if actionID != ActionReveal {
		return nil, session.ErrInvalidAction
	}
	if s.status == session.StatusWaiting {
		return nil, session.ErrGameNotStarted
	}
	return s.revealLocked(), nil
}

// Timeout forfeits. An unconfirmed duel simply expires; a running one
// counts as a match loss at the full potential-loss stake.
func (s *Session) Timeout(epoch uint64) *session.Update {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == session.StatusFinished || epoch != s.epoch {
		return nil
	}
	if s.status == session.StatusWaiting {
		s.status = session.StatusFinished
		return &session.Update{
			StatusText: "Duel offer expired unconfirmed.",
			Terminal:   true,
			Outcome:    "expired",
			Render:     s.renderLocked(),
		}
	}
	s.logger.Info("round timeout", "round", s.round)
	return s.finishLocked(false,
		fmt.Sprintf("%s let round %d time out and forfeits the match.", s.player.Label, s.round))
}

// dealLocked draws both five-card hands from a freshly shuffled deck.
// Returns a terminal voiding update only on the unreachable case of a
// short deal.
func (s *Session) dealLocked() *session.Update {
	d := s.newDeck()
	mine := d.DealN(5)
	theirs := d.DealN(5)
	if len(mine) < 5 || len(theirs) < 5 {
		s.logger.Error("short deal", "round", s.round)
		s.status = session.StatusFinished
		return &session.Update{
			StatusText: "The deck came up short. Duel voided, nothing settled.",
			Terminal:   true,
			Outcome:    "push",
			Render:     s.renderLocked(),
		}
	}

	var err error
	s.playerHand, err = handeval.Evaluate([5]deck.Card(mine))
	if err == nil {
		s.cpuHand, err = handeval.Evaluate([5]deck.Card(theirs))
	}
	if err != nil {
		s.logger.Error("hand evaluation failed", "err", err)
		s.status = session.StatusFinished
		return &session.Update{
			StatusText: "The hands could not be scored. Duel voided, nothing settled.",
			Terminal:   true,
			Outcome:    "push",
			Render:     s.renderLocked(),
		}
	}
	return nil
}

func (s *Session) revealLocked() *session.Update {
	cmp := handeval.Compare(s.playerHand, s.cpuHand)
	line := fmt.Sprintf("Round %d: %s shows %s, dealer shows %s.",
		s.round, s.player.Label, s.playerHand.Name, s.cpuHand.Name)
	s.history = append(s.history, line)
	s.logger.Info("reveal", "round", s.round, "player", s.playerHand.Name, "cpu", s.cpuHand.Name, "cmp", cmp)

	switch {
	case cmp > 0:
		s.playerWins++
		line += fmt.Sprintf(" %s takes the round (%d-%d).", s.player.Label, s.playerWins, s.cpuWins)
	case cmp < 0:
		s.cpuWins++
		line += fmt.Sprintf(" Dealer takes the round (%d-%d).", s.playerWins, s.cpuWins)
	default:
		// Same round number replays until someone wins it.
		line += " Dead heat, dealing the round again."
		if upd := s.dealLocked(); upd != nil {
			return upd
		}
		s.epoch++
		return &session.Update{
			StatusText: line,
			Timer:      &session.TimerDirective{Arm: true, Duration: s.roundTimeout, Epoch: s.epoch},
			Render:     s.renderLocked(),
		}
	}

	if s.playerWins == roundsToWin || s.cpuWins == roundsToWin {
		return s.finishLocked(s.playerWins == roundsToWin, line)
	}

	s.round++
	if upd := s.dealLocked(); upd != nil {
		return upd
	}
	s.epoch++
	return &session.Update{
		StatusText: line + fmt.Sprintf(" On to round %d.", s.round),
		Timer:      &session.TimerDirective{Arm: true, Duration: s.roundTimeout, Epoch: s.epoch},
		Render:     s.renderLocked(),
	}
}

// finishLocked settles the asymmetric stake: a match win pays twice the
// wager, a match loss costs the quarter-balance computed at
// confirmation.
func (s *Session) finishLocked(playerWon bool, text string) *session.Update {
	s.status = session.StatusFinished

	var legs []economy.Update
	outcome := "loss"
	if playerWon {
		outcome = "win"
		text += fmt.Sprintf(" %s wins the duel and %d chips!", s.player.Label, 2*s.wager)
		if s.wager > 0 {
			legs = append(legs, economy.Update{
				PlayerID: s.player.UserID,
				GuildID:  s.guildID,
				Delta:    2 * s.wager,
				Reason:   "pokerduel win",
			})
		}
	} else {
		text += fmt.Sprintf(" The house collects %d chips.", s.potentialLoss)
		if s.potentialLoss > 0 {
			legs = append(legs, economy.Update{
				PlayerID: s.player.UserID,
				GuildID:  s.guildID,
				Delta:    -s.potentialLoss,
				Reason:   "pokerduel loss",
			})
		}
	}

	return &session.Update{
		StatusText: text,
		Terminal:   true,
		Outcome:    outcome,
		Settlement: legs,
		Render:     s.renderLocked(),
	}
}

func (s *Session) renderLocked() session.RenderState {
	var b strings.Builder
	var actions []session.Action

	switch s.status {
	case session.StatusWaiting:
		fmt.Fprintf(&b, "Wager: %d. A loss costs a quarter of your balance at confirmation.", s.wager)
		actions = []session.Action{{ID: ActionConfirm, Label: "Confirm"}}
	case session.StatusPlaying:
		fmt.Fprintf(&b, "Round %d of 3. Score %d-%d.\n", s.round, s.playerWins, s.cpuWins)
		fmt.Fprintf(&b, "%s: %s\nDealer: ?????", s.player.Label, handString(s.playerHand.Cards))
		actions = []session.Action{{ID: ActionReveal, Label: "Reveal"}}
	case session.StatusFinished:
		fmt.Fprintf(&b, "Final score %d-%d.", s.playerWins, s.cpuWins)
	}
	if len(s.history) > 0 {
		b.WriteString("\n" + strings.Join(s.history, "\n"))
	}

	return session.RenderState{
		SessionID: s.id,
		Variant:   session.VariantPokerDuel,
		Status:    s.status,
		Title:     "Poker Duel",
		Body:      b.String(),
		Actions:   actions,
		Players:   []session.PlayerSlot{s.player},
		Wager:     s.wager,
	}
}

func handString(cards [5]deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
