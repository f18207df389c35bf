// Package switches implements the four-player elimination game: each
// round hides a detonator behind one of the available switches, players
// pick in turn order, and hitting the detonator eliminates you. Last
// player standing collects the eliminated humans' wagers.
package switches

import (
	"fmt"
	rand "math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nix24/ChipMinigameParlor/internal/economy"
	"github.com/nix24/ChipMinigameParlor/internal/session"
)

const maxPlayers = 4

// switchesForPlayers maps remaining-player count to the switch count for
// the next round: 4 players get 5 switches, 3 get 4, 2 get 3.
func switchesForPlayers(n int) int {
	return n + 1
}

// Config assembles a session.
type Config struct {
	SessionID    string
	GuildID      string
	CreatorID    string
	CreatorName  string
	Invited      []Invite
	Wager        int64
	TurnTimeout  time.Duration
	LobbyTimeout time.Duration
	Rand         *rand.Rand
	Logger       *log.Logger
}

// Invite names a human asked to join the lobby.
type Invite struct {
	UserID string
	Name   string
}

// Session is the elimination game state machine. All mutable state lives
// behind mu; transitions re-validate against it so stale or out-of-turn
// actions never mutate anything.
type Session struct {
	mu sync.Mutex

	id      string
	guildID string
	wager   int64
	rng     *rand.Rand
	logger  *log.Logger

	turnTimeout  time.Duration
	lobbyTimeout time.Duration

	status  session.Status
	slots   []session.PlayerSlot
	joined  map[string]bool
	pending int

	// order holds slot indices in randomized turn order; eliminated slots
	// are filtered out, preserving relative order.
	order   []int
	turnPos int
	epoch   uint64

	// detonator is the unsafe index among the switches still available
	// this round. available shrinks as safe picks consume switches.
	available int
	detonator int
	round     int
}

// New assembles a session. The returned Update carries the initial render
// and timer directive: a lobby window when invites are outstanding,
// otherwise the first turn's timer (CPU turns before the first human have
// already been resolved).
func New(cfg Config) (*Session, *session.Update) {
	s := &Session{
		id:           cfg.SessionID,
		guildID:      cfg.GuildID,
		wager:        cfg.Wager,
		rng:          cfg.Rand,
		logger:       cfg.Logger.WithPrefix("switches").With("session", cfg.SessionID),
		turnTimeout:  cfg.TurnTimeout,
		lobbyTimeout: cfg.LobbyTimeout,
		status:       session.StatusWaiting,
		joined:       map[string]bool{cfg.CreatorID: true},
		round:        1,
	}

	s.slots = append(s.slots, session.PlayerSlot{
		UserID: cfg.CreatorID,
		Label:  cfg.CreatorName,
		Order:  0,
	})
	for _, inv := range cfg.Invited {
		s.slots = append(s.slots, session.PlayerSlot{
			UserID: inv.UserID,
			Label:  inv.Name,
			Order:  len(s.slots),
		})
		s.pending++
	}
	for len(s.slots) < maxPlayers {
		s.slots = append(s.slots, session.PlayerSlot{
			Label: fmt.Sprintf("CPU %d", len(s.slots)),
			CPU:   true,
			Order: len(s.slots),
		})
	}

	if s.pending > 0 {
		return s, &session.Update{
			StatusText: fmt.Sprintf("Waiting for %d player(s) to join", s.pending),
			Timer:      &session.TimerDirective{Arm: true, Duration: s.lobbyTimeout, Epoch: s.epoch},
			Render:     s.renderLocked(),
		}
	}
	return s, s.startLocked()
}

// ID implements session.Session.
func (s *Session) ID() string { return s.id }

// Variant implements session.Session.
func (s *Session) Variant() session.Variant { return session.VariantSwitches }

// Status implements session.Session.
func (s *Session) Status() session.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Submit implements session.Session.
func (s *Session) Submit(playerID, actionID string) (*session.Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status {
	case session.StatusFinished:
		return nil, session.ErrGameFinished
	case session.StatusWaiting:
		if actionID != session.ActionJoin {
			return nil, session.ErrGameNotStarted
		}
		return s.joinLocked(playerID)
	}

	idx, ok := strings.CutPrefix(actionID, "pick:")
	if !ok {
		return nil, session.ErrInvalidAction
	}
	pick, err := strconv.Atoi(idx)
	if err != nil || pick < 0 || pick >= s.available {
		return nil, session.ErrInvalidAction
	}

	current := s.currentSlotLocked()
	if !s.slots[current].Is(playerID) {
		if s.isPlayerLocked(playerID) {
			return nil, session.ErrNotYourTurn
		}
		return nil, session.ErrNotInGame
	}

	terminal, text := s.stepLocked(pick)
	if terminal != nil {
		terminal.StatusText = text
		return terminal, nil
	}
	return s.driveLocked(text), nil
}

// Timeout implements session.Session. A timed-out player is eliminated
// exactly as if they had hit the detonator; a lobby timeout expires the
// session with no settlement.
func (s *Session) Timeout(epoch uint64) *session.Update {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == session.StatusFinished || epoch != s.epoch {
		return nil
	}
	if s.status == session.StatusWaiting {
		s.status = session.StatusFinished
		return &session.Update{
			StatusText: "Lobby expired before everyone joined.",
			Terminal:   true,
			Outcome:    "expired",
			Render:     s.renderLocked(),
		}
	}

	label := s.slots[s.currentSlotLocked()].Label
	s.logger.Info("turn timeout, forcing elimination", "player", label)
	terminal, text := s.eliminateCurrentLocked("took too long")
	if terminal != nil {
		terminal.StatusText = text
		return terminal
	}
	return s.driveLocked(text)
}

// Describe implements session.Session.
func (s *Session) Describe() session.RenderState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderLocked()
}

func (s *Session) joinLocked(playerID string) (*session.Update, error) {
	if !s.isPlayerLocked(playerID) {
		return nil, session.ErrNotInGame
	}
	if s.joined[playerID] {
		// Re-joining is a no-op.
		return &session.Update{
			StatusText: "Already joined.",
			Render:     s.renderLocked(),
		}, nil
	}
	s.joined[playerID] = true
	s.pending--
	if s.pending > 0 {
		return &session.Update{
			StatusText: fmt.Sprintf("Waiting for %d more player(s)", s.pending),
			Render:     s.renderLocked(),
		}, nil
	}
	return s.startLocked(), nil
}

// startLocked transitions waiting -> playing: randomizes turn order once,
// sets up the first round, and resolves any leading CPU turns.
func (s *Session) startLocked() *session.Update {
	s.status = session.StatusPlaying
	s.order = s.rng.Perm(len(s.slots))
	s.turnPos = 0
	s.available = switchesForPlayers(len(s.slots))
	s.detonator = s.rng.IntN(s.available)
	s.logger.Debug("game started", "order", s.order, "switches", s.available)

	text := fmt.Sprintf("Round %d begins with %d switches. %s goes first.",
		s.round, s.available, s.slots[s.currentSlotLocked()].Label)
	return s.driveLocked(text)
}

// stepLocked applies one switch selection for the current player. It
// returns a non-nil update only when the pick ended the game; otherwise
// the narrative line for this step.
func (s *Session) stepLocked(pick int) (*session.Update, string) {
	label := s.slots[s.currentSlotLocked()].Label

	if pick == s.detonator {
		return s.eliminateCurrentLocked("hit the detonator")
	}

	// Safe pick: one fewer switch for the rest of this round. Removing a
	// lower-indexed switch shifts the remaining indices down, so the
	// detonator index follows.
	s.available--
	if pick < s.detonator {
		s.detonator--
	}
	s.logger.Debug("safe pick", "player", label, "pick", pick, "remaining", s.available)
	s.advanceTurnLocked()
	return nil, fmt.Sprintf("%s picked switch %d - safe! %d switches left.", label, pick+1, s.available)
}

// eliminateCurrentLocked removes the current player and either ends the
// game or starts the next round with freshly recomputed switches.
func (s *Session) eliminateCurrentLocked(how string) (*session.Update, string) {
	current := s.currentSlotLocked()
	label := s.slots[current].Label
	s.slots[current].Eliminated = true
	s.order = filterOrder(s.order, current)
	if s.turnPos >= len(s.order) {
		s.turnPos = 0
	}
	s.logger.Info("player eliminated", "player", label, "remaining", len(s.order))

	if len(s.order) == 1 {
		winner := s.order[0]
		return s.finishLocked(winner), fmt.Sprintf("%s %s! %s wins the game!",
			label, how, s.slots[winner].Label)
	}

	// Next round: switch count recomputed from the fixed mapping for the
	// new player count, detonator drawn fresh.
	s.round++
	s.available = switchesForPlayers(len(s.order))
	s.detonator = s.rng.IntN(s.available)
	return nil, fmt.Sprintf("%s %s! Round %d: %d switches remain.", label, how, s.round, s.available)
}

// driveLocked plays out consecutive CPU turns synchronously, then arms
// the next human turn's timer. The CPU policy is a uniform-random pick
// over the available switches; the game is pure chance, so there is
// nothing to look ahead at.
func (s *Session) driveLocked(text string) *session.Update {
	for s.status == session.StatusPlaying && s.slots[s.currentSlotLocked()].CPU {
		pick := s.rng.IntN(s.available)
		s.logger.Debug("cpu pick", "player", s.slots[s.currentSlotLocked()].Label, "pick", pick)
		terminal, line := s.stepLocked(pick)
		text = text + "\n" + line
		if terminal != nil {
			terminal.StatusText = text
			return terminal
		}
	}

	s.epoch++
	return &session.Update{
		StatusText: text,
		Timer:      &session.TimerDirective{Arm: true, Duration: s.turnTimeout, Epoch: s.epoch},
		Render:     s.renderLocked(),
	}
}

// finishLocked settles the game. Each eliminated human forfeits the
// wager; a human winner collects them all, a CPU winner collects for the
// house (pure debit). CPU eliminations never touch the ledger.
func (s *Session) finishLocked(winnerSlot int) *session.Update {
	s.status = session.StatusFinished
	winner := s.slots[winnerSlot]

	var legs []economy.Update
	var pot int64
	for _, slot := range s.slots {
		if slot.Eliminated && !slot.CPU && s.wager > 0 {
			legs = append(legs, economy.Update{
				PlayerID: slot.UserID,
				GuildID:  s.guildID,
				Delta:    -s.wager,
				Reason:   "switches elimination",
			})
			pot += s.wager
		}
	}
	outcome := "cpu_win"
	if !winner.CPU {
		outcome = "win"
		if pot > 0 {
			legs = append(legs, economy.Update{
				PlayerID: winner.UserID,
				GuildID:  s.guildID,
				Delta:    pot,
				Reason:   "switches pot",
			})
		}
	}

	return &session.Update{
		Terminal:   true,
		Outcome:    outcome,
		Settlement: legs,
		Render:     s.renderLocked(),
	}
}

func (s *Session) advanceTurnLocked() {
	s.turnPos = (s.turnPos + 1) % len(s.order)
}

func (s *Session) currentSlotLocked() int {
	return s.order[s.turnPos]
}

func (s *Session) isPlayerLocked(playerID string) bool {
	for _, slot := range s.slots {
		if slot.Is(playerID) {
			return true
		}
	}
	return false
}

func (s *Session) renderLocked() session.RenderState {
	r := session.RenderState{
		SessionID: s.id,
		Variant:   session.VariantSwitches,
		Status:    s.status,
		Title:     "Switch Roulette",
		Players:   append([]session.PlayerSlot(nil), s.slots...),
		Wager:     s.wager,
	}

	switch s.status {
	case session.StatusWaiting:
		r.Body = fmt.Sprintf("Waiting for %d player(s) to join.", s.pending)
		r.Actions = []session.Action{{ID: session.ActionJoin, Label: "Join"}}
	case session.StatusPlaying:
		var b strings.Builder
		fmt.Fprintf(&b, "Round %d: %d switches. ", s.round, s.available)
		fmt.Fprintf(&b, "It is %s's turn.", s.slots[s.currentSlotLocked()].Label)
		r.Body = b.String()
		for i := 0; i < s.available; i++ {
			r.Actions = append(r.Actions, session.Action{
				ID:    fmt.Sprintf("pick:%d", i),
				Label: fmt.Sprintf("Switch %d", i+1),
			})
		}
	case session.StatusFinished:
		r.Body = "Game over."
	}
	return r
}

func filterOrder(order []int, remove int) []int {
	out := order[:0]
	for _, idx := range order {
		if idx != remove {
			out = append(out, idx)
		}
	}
	return out
}
