// Package fourtress implements the connect-four variant with the
// row-clear mechanic: completing a full row of any mix of pieces clears
// it and drops everything above, which can create or destroy winning
// lines. Two players, human vs human or human vs CPU.
package fourtress

import (
	"fmt"
	rand "math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nix24/ChipMinigameParlor/internal/board"
	"github.com/nix24/ChipMinigameParlor/internal/economy"
	"github.com/nix24/ChipMinigameParlor/internal/session"
)

// Config assembles a session. An empty OpponentID plays against the CPU
// and the game starts immediately; otherwise the invited human must
// accept within the lobby window.
type Config struct {
	SessionID    string
	GuildID      string
	CreatorID    string
	CreatorName  string
	OpponentID   string
	OpponentName string
	Wager        int64
	TurnTimeout  time.Duration
	LobbyTimeout time.Duration
	Rand         *rand.Rand
	Logger       *log.Logger
}

// Session is the fourtress state machine.
type Session struct {
	mu sync.Mutex

	id      string
	guildID string
	wager   int64
	rng     *rand.Rand
	logger  *log.Logger

	turnTimeout  time.Duration
	lobbyTimeout time.Duration

	status session.Status
	slots  [2]session.PlayerSlot
	grid   *board.Board
	turn   int
	epoch  uint64
	moves  int
}

// New assembles a session and returns the initial update.
func New(cfg Config) (*Session, *session.Update) {
	s := &Session{
		id:           cfg.SessionID,
		guildID:      cfg.GuildID,
		wager:        cfg.Wager,
		rng:          cfg.Rand,
		logger:       cfg.Logger.WithPrefix("fourtress").With("session", cfg.SessionID),
		turnTimeout:  cfg.TurnTimeout,
		lobbyTimeout: cfg.LobbyTimeout,
		grid:         board.New(),
	}
	s.slots[0] = session.PlayerSlot{UserID: cfg.CreatorID, Label: cfg.CreatorName, Order: 0}
	if cfg.OpponentID == "" {
		s.slots[1] = session.PlayerSlot{Label: "CPU", CPU: true, Order: 1}
		s.status = session.StatusPlaying
		s.epoch++
		return s, &session.Update{
			StatusText: fmt.Sprintf("%s vs CPU. %s moves first.", cfg.CreatorName, cfg.CreatorName),
			Timer:      &session.TimerDirective{Arm: true, Duration: s.turnTimeout, Epoch: s.epoch},
			Render:     s.renderLocked(),
		}
	}

	s.slots[1] = session.PlayerSlot{UserID: cfg.OpponentID, Label: cfg.OpponentName, Order: 1}
	s.status = session.StatusWaiting
	return s, &session.Update{
		StatusText: fmt.Sprintf("%s challenged %s. Waiting for them to accept.", cfg.CreatorName, cfg.OpponentName),
		Timer:      &session.TimerDirective{Arm: true, Duration: s.lobbyTimeout, Epoch: s.epoch},
		Render:     s.renderLocked(),
	}
}

// ID implements session.Session.
func (s *Session) ID() string { return s.id }

// Variant implements session.Session.
func (s *Session) Variant() session.Variant { return session.VariantFourtress }

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

	colStr, ok := strings.CutPrefix(actionID, "drop:")
	if !ok {
		return nil, session.ErrInvalidAction
	}
	col, err := strconv.Atoi(colStr)
	if err != nil || !s.grid.IsValidMove(col) {
		return nil, session.ErrInvalidAction
	}

	if !s.slots[s.turn].Is(playerID) {
		if s.slots[1-s.turn].Is(playerID) {
			return nil, session.ErrNotYourTurn
		}
		return nil, session.ErrNotInGame
	}

	return s.playLocked(col), nil
}

// Timeout implements session.Session. The player who failed to act
// forfeits; the opponent is declared winner. A lobby timeout expires the
// challenge with no settlement.
func (s *Session) Timeout(epoch uint64) *session.Update {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == session.StatusFinished || epoch != s.epoch {
		return nil
	}
	if s.status == session.StatusWaiting {
		s.status = session.StatusFinished
		return &session.Update{
			StatusText: fmt.Sprintf("%s never accepted the challenge.", s.slots[1].Label),
			Terminal:   true,
			Outcome:    "expired",
			Render:     s.renderLocked(),
		}
	}

	forfeiter := s.turn
	s.logger.Info("turn timeout, forfeit", "player", s.slots[forfeiter].Label)
	return s.finishLocked(1-forfeiter, fmt.Sprintf("%s ran out of time. %s wins by forfeit!",
		s.slots[forfeiter].Label, s.slots[1-forfeiter].Label))
}

// Describe implements session.Session.
func (s *Session) Describe() session.RenderState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderLocked()
}

func (s *Session) joinLocked(playerID string) (*session.Update, error) {
	if !s.slots[1].Is(playerID) {
		if s.slots[0].Is(playerID) {
			// Creator is already in; accepting again is a no-op.
			return &session.Update{StatusText: "Waiting for your opponent.", Render: s.renderLocked()}, nil
		}
		return nil, session.ErrNotInGame
	}
	if s.status == session.StatusPlaying {
		return &session.Update{StatusText: "Already joined.", Render: s.renderLocked()}, nil
	}

	s.status = session.StatusPlaying
	s.epoch++
	return &session.Update{
		StatusText: fmt.Sprintf("%s accepted! %s moves first.", s.slots[1].Label, s.slots[0].Label),
		Timer:      &session.TimerDirective{Arm: true, Duration: s.turnTimeout, Epoch: s.epoch},
		Render:     s.renderLocked(),
	}, nil
}

// playLocked drops the current player's piece, evaluates the board, and
// if the next slot is the CPU resolves its move in the same logical turn.
func (s *Session) playLocked(col int) *session.Update {
	mover := s.turn
	s.grid.Place(col, s.cell(mover))
	s.moves++
	s.logger.Debug("placed", "player", s.slots[mover].Label, "col", col, "move", s.moves)

	if upd, text := s.evaluateLocked(mover); upd != nil {
		upd.StatusText = text
		return upd
	}
	s.turn = 1 - s.turn
	text := fmt.Sprintf("%s played column %d.", s.slots[mover].Label, col+1)

	if s.slots[s.turn].CPU {
		cpuCol := ChooseMove(s.grid, s.cell(s.turn), s.cell(mover), s.rng)
		if cpuCol == NoMove {
			// Board full with no winner: draw.
			return s.finishDrawLocked(text + " No columns left - it's a draw!")
		}
		s.grid.Place(cpuCol, s.cell(s.turn))
		s.moves++
		s.logger.Debug("cpu placed", "col", cpuCol, "move", s.moves)
		if upd, cpuText := s.evaluateLocked(s.turn); upd != nil {
			upd.StatusText = text + "\n" + cpuText
			return upd
		}
		text = fmt.Sprintf("%s\nCPU played column %d. Your move.", text, cpuCol+1)
		s.turn = 1 - s.turn
	}

	s.epoch++
	return &session.Update{
		StatusText: text,
		Timer:      &session.TimerDirective{Arm: true, Duration: s.turnTimeout, Epoch: s.epoch},
		Render:     s.renderLocked(),
	}
}

// evaluateLocked checks the board after a placement by mover, in a
// fixed order: win, draw, row-clear, then win and draw again because a clear
// can complete or break a line for either side. Returns a terminal
// update plus its narrative, or nil to continue.
func (s *Session) evaluateLocked(mover int) (*session.Update, string) {
	other := 1 - mover
	if s.grid.CheckWin(s.cell(mover)) {
		return s.finishLocked(mover, ""), fmt.Sprintf("%s connects four and wins!", s.slots[mover].Label)
	}
	if s.grid.IsFull() {
		return s.finishDrawLocked(""), "The board is full - it's a draw!"
	}

	cleared := s.grid.ClearFullRows()
	if cleared == 0 {
		return nil, ""
	}
	s.logger.Debug("rows cleared", "rows", cleared)

	if s.grid.CheckWin(s.cell(mover)) {
		return s.finishLocked(mover, ""), fmt.Sprintf("%d row(s) cleared and %s connects four!", cleared, s.slots[mover].Label)
	}
	if s.grid.CheckWin(s.cell(other)) {
		return s.finishLocked(other, ""), fmt.Sprintf("%d row(s) cleared and %s connects four!", cleared, s.slots[other].Label)
	}
	if s.grid.IsFull() {
		return s.finishDrawLocked(""), "The board is full - it's a draw!"
	}
	return nil, ""
}

// finishLocked ends the game with a winner and builds the settlement.
// Human vs human transfers the wager loser to winner. Against the CPU
// the house is the counterparty: a human winner is paid with no debit,
// a human loser forfeits with no credit. Draws settle nothing.
func (s *Session) finishLocked(winner int, text string) *session.Update {
	s.status = session.StatusFinished
	loser := 1 - winner
	win, lose := s.slots[winner], s.slots[loser]

	var legs []economy.Update
	if s.wager > 0 {
		if !lose.CPU {
			legs = append(legs, economy.Update{
				PlayerID: lose.UserID,
				GuildID:  s.guildID,
				Delta:    -s.wager,
				Reason:   "fourtress loss",
			})
		}
		if !win.CPU {
			legs = append(legs, economy.Update{
				PlayerID: win.UserID,
				GuildID:  s.guildID,
				Delta:    s.wager,
				Reason:   "fourtress win",
			})
		}
	}

	outcome := "win"
	if win.CPU {
		outcome = "cpu_win"
	}
	return &session.Update{
		StatusText: text,
		Terminal:   true,
		Outcome:    outcome,
		Settlement: legs,
		Render:     s.renderLocked(),
	}
}

func (s *Session) finishDrawLocked(text string) *session.Update {
	s.status = session.StatusFinished
	return &session.Update{
		StatusText: text,
		Terminal:   true,
		Outcome:    "draw",
		Render:     s.renderLocked(),
	}
}

func (s *Session) cell(slot int) board.Cell {
	if slot == 0 {
		return board.P1
	}
	return board.P2
}

func (s *Session) renderLocked() session.RenderState {
	r := session.RenderState{
		SessionID: s.id,
		Variant:   session.VariantFourtress,
		Status:    s.status,
		Title:     "4tress",
		Players:   append([]session.PlayerSlot(nil), s.slots[:]...),
		Wager:     s.wager,
	}

	var b strings.Builder
	for row := 0; row < board.Rows; row++ {
		for col := 0; col < board.Cols; col++ {
			b.WriteString(s.grid.At(row, col).String())
		}
		b.WriteByte('\n')
	}
	r.Body = b.String()

	switch s.status {
	case session.StatusWaiting:
		r.Actions = []session.Action{{ID: session.ActionJoin, Label: "Accept"}}
	case session.StatusPlaying:
		r.StatusText = fmt.Sprintf("It is %s's turn.", s.slots[s.turn].Label)
		for _, col := range s.grid.ValidMoves() {
			r.Actions = append(r.Actions, session.Action{
				ID:    fmt.Sprintf("drop:%d", col),
				Label: fmt.Sprintf("Column %d", col+1),
			})
		}
	}
	return r
}
