// Package blackjack implements the single-player card session: a fixed
// 17-stand dealer, hit/stand player actions and 3:2 natural payouts.
package blackjack

import (
	"fmt"
	rand "math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nix24/ChipMinigameParlor/internal/deck"
	"github.com/nix24/ChipMinigameParlor/internal/economy"
	"github.com/nix24/ChipMinigameParlor/internal/session"
)

const (
	ActionHit   = "hit"
	ActionStand = "stand"

	dealerStandsAt = 17
)

// Config carries everything a blackjack session needs at creation.
type Config struct {
	SessionID   string
	GuildID     string
	PlayerID    string
	PlayerName  string
	Wager       int64
	TurnTimeout time.Duration
	Rand        *rand.Rand
	Logger      *log.Logger
}

// Session is a single player against the house. The dealer plays out
// synchronously once the player stands, so the session only ever waits
// on the player.
type Session struct {
	mu sync.Mutex

	id          string
	guildID     string
	wager       int64
	logger      *log.Logger
	turnTimeout time.Duration

	status session.Status
	player session.PlayerSlot
	shoe   *deck.Deck
	hand   []deck.Card
	dealer []deck.Card
	epoch  uint64
}

// New deals the opening hands. Naturals resolve immediately, so the
// returned update may already be terminal; callers must settle it
// without registering the session.
func New(cfg Config) (*Session, *session.Update) {
	return newWithShoe(cfg, deck.NewShuffled(cfg.Rand))
}

func newWithShoe(cfg Config, shoe *deck.Deck) (*Session, *session.Update) {
	s := &Session{
		id:          cfg.SessionID,
		guildID:     cfg.GuildID,
		wager:       cfg.Wager,
		logger:      cfg.Logger.WithPrefix("blackjack").With("session", cfg.SessionID),
		turnTimeout: cfg.TurnTimeout,
		status:      session.StatusPlaying,
		player:      session.PlayerSlot{UserID: cfg.PlayerID, Label: cfg.PlayerName},
		shoe:        shoe,
	}

	for i := 0; i < 2; i++ {
		s.hand = append(s.hand, s.mustDeal())
		s.dealer = append(s.dealer, s.mustDeal())
	}
	s.logger.Info("dealt", "player", handString(s.hand), "dealer_up", s.dealer[0])

	if deck.IsBlackjack(s.hand) || deck.IsBlackjack(s.dealer) {
		return s, s.resolveLocked()
	}

	s.epoch++
	total, soft := deck.HandValue(s.hand)
	return s, &session.Update{
		StatusText: fmt.Sprintf("%s has %s for %s. Dealer shows %s.",
			cfg.PlayerName, handString(s.hand), totalString(total, soft), s.dealer[0]),
		Timer:  &session.TimerDirective{Arm: true, Duration: s.turnTimeout, Epoch: s.epoch},
		Render: s.renderLocked(),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Variant() session.Variant { return session.VariantBlackjack }

func (s *Session) Describe() session.RenderState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderLocked()
}

func (s *Session) Status() session.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
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

	switch actionID {
	case ActionHit:
		return s.hitLocked(), nil
	case ActionStand:
		return s.resolveLocked(), nil
	default:
		return nil, session.ErrInvalidAction
	}
}

// Timeout forfeits the hand. A timed-out player turn is a loss, not an
// implicit stand.
func (s *Session) Timeout(epoch uint64) *session.Update {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == session.StatusFinished || epoch != s.epoch {
		return nil
	}
	s.status = session.StatusFinished
	s.logger.Info("forfeit", "player", s.player.Label)
	return &session.Update{
		StatusText: fmt.Sprintf("%s ran out of time and forfeits the hand.", s.player.Label),
		Terminal:   true,
		Outcome:    "loss",
		Settlement: s.legs(-s.wager, "blackjack forfeit"),
		Render:     s.renderLocked(),
	}
}

func (s *Session) hitLocked() *session.Update {
	card, ok := s.shoe.Deal()
	if !ok {
		return s.shoeExhaustedLocked()
	}
	s.hand = append(s.hand, card)
	total, soft := deck.HandValue(s.hand)
	s.logger.Debug("hit", "card", card, "total", total)

	if deck.IsBust(s.hand) {
		s.status = session.StatusFinished
		return &session.Update{
			StatusText: fmt.Sprintf("%s draws %s and busts with %d!", s.player.Label, card, total),
			Terminal:   true,
			Outcome:    "loss",
			Settlement: s.legs(-s.wager, "blackjack loss"),
			Render:     s.renderLocked(),
		}
	}
	if total == 21 {
		// Nothing left to decide, roll straight into the dealer.
		return s.resolveLocked()
	}

	s.epoch++
	return &session.Update{
		StatusText: fmt.Sprintf("%s draws %s for %s.", s.player.Label, card, totalString(total, soft)),
		Timer:      &session.TimerDirective{Arm: true, Duration: s.turnTimeout, Epoch: s.epoch},
		Render:     s.renderLocked(),
	}
}

// resolveLocked plays out the dealer and settles by the fixed
// precedence: both naturals push, a lone natural decides, then busts,
// then a straight total comparison.
func (s *Session) resolveLocked() *session.Update {
	playerBJ := deck.IsBlackjack(s.hand)
	dealerBJ := deck.IsBlackjack(s.dealer)

	if !playerBJ && !dealerBJ {
		for total, _ := deck.HandValue(s.dealer); total < dealerStandsAt; total, _ = deck.HandValue(s.dealer) {
			card, ok := s.shoe.Deal()
			if !ok {
				return s.shoeExhaustedLocked()
			}
			s.dealer = append(s.dealer, card)
			s.logger.Debug("dealer hits", "card", card)
		}
	}

	s.status = session.StatusFinished
	playerTotal, _ := deck.HandValue(s.hand)
	dealerTotal, _ := deck.HandValue(s.dealer)
	s.logger.Info("resolved", "player", playerTotal, "dealer", dealerTotal)

	switch {
	case playerBJ && dealerBJ:
		return s.pushLocked("Both sides have blackjack. Push.")
	case playerBJ:
		payout := s.wager * 3 / 2
		return &session.Update{
			StatusText: fmt.Sprintf("Blackjack! %s wins %d chips at 3:2.", s.player.Label, payout),
			Terminal:   true,
			Outcome:    "blackjack",
			Settlement: s.legs(payout, "blackjack natural"),
			Render:     s.renderLocked(),
		}
	case dealerBJ:
		return s.lossLocked(fmt.Sprintf("Dealer has blackjack. %s loses.", s.player.Label))
	case dealerTotal > 21:
		return s.winLocked(fmt.Sprintf("Dealer busts with %d! %s wins.", dealerTotal, s.player.Label))
	case playerTotal > dealerTotal:
		return s.winLocked(fmt.Sprintf("%s wins %d to %d.", s.player.Label, playerTotal, dealerTotal))
	case playerTotal < dealerTotal:
		return s.lossLocked(fmt.Sprintf("Dealer wins %d to %d.", dealerTotal, playerTotal))
	default:
		return s.pushLocked(fmt.Sprintf("Both sides hold %d. Push.", playerTotal))
	}
}

// shoeExhaustedLocked should be unreachable with a 52-card shoe; the
// session is voided as a push with nothing settled.
func (s *Session) shoeExhaustedLocked() *session.Update {
	s.logger.Error("shoe exhausted mid-deal", "player_cards", len(s.hand), "dealer_cards", len(s.dealer))
	s.status = session.StatusFinished
	return &session.Update{
		StatusText: "The shoe ran dry. Hand voided, wager returned.",
		Terminal:   true,
		Outcome:    "push",
		Render:     s.renderLocked(),
	}
}

func (s *Session) winLocked(text string) *session.Update {
	return &session.Update{
		StatusText: text,
		Terminal:   true,
		Outcome:    "win",
		Settlement: s.legs(s.wager, "blackjack win"),
		Render:     s.renderLocked(),
	}
}

func (s *Session) lossLocked(text string) *session.Update {
	return &session.Update{
		StatusText: text,
		Terminal:   true,
		Outcome:    "loss",
		Settlement: s.legs(-s.wager, "blackjack loss"),
		Render:     s.renderLocked(),
	}
}

func (s *Session) pushLocked(text string) *session.Update {
	return &session.Update{
		StatusText: text,
		Terminal:   true,
		Outcome:    "push",
		Render:     s.renderLocked(),
	}
}

func (s *Session) legs(delta int64, reason string) []economy.Update {
	if s.wager == 0 || delta == 0 {
		return nil
	}
	return []economy.Update{{
		PlayerID: s.player.UserID,
		GuildID:  s.guildID,
		Delta:    delta,
		Reason:   reason,
	}}
}

func (s *Session) mustDeal() deck.Card {
	card, _ := s.shoe.Deal()
	return card
}

func (s *Session) renderLocked() session.RenderState {
	var b strings.Builder
	total, soft := deck.HandValue(s.hand)
	fmt.Fprintf(&b, "%s: %s (%s)\n", s.player.Label, handString(s.hand), totalString(total, soft))

	if s.status == session.StatusFinished {
		dealerTotal, _ := deck.HandValue(s.dealer)
		fmt.Fprintf(&b, "Dealer: %s (%d)", handString(s.dealer), dealerTotal)
	} else {
		fmt.Fprintf(&b, "Dealer: %s ??", s.dealer[0])
	}

	var actions []session.Action
	if s.status == session.StatusPlaying {
		actions = []session.Action{
			{ID: ActionHit, Label: "Hit"},
			{ID: ActionStand, Label: "Stand"},
		}
	}
	return session.RenderState{
		SessionID: s.id,
		Variant:   session.VariantBlackjack,
		Status:    s.status,
		Title:     "Blackjack",
		Body:      b.String(),
		Actions:   actions,
		Players:   []session.PlayerSlot{s.player},
		Wager:     s.wager,
	}
}

func handString(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func totalString(total int, soft bool) string {
	if soft {
		return fmt.Sprintf("soft %d", total)
	}
	return fmt.Sprintf("%d", total)
}
