package session

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// FireFunc is invoked when a turn or lobby window elapses. The epoch
// identifies which turn the timer was armed for; the session rejects
// stale epochs, so a late fire after a valid action is harmless.
type FireFunc func(sessionID string, epoch uint64)

// Scheduler owns at most one pending timer per session. Arming replaces
// and stops any previous timer for that session, which is how a valid
// transition cancels the old turn's timeout before a delayed fire can
// corrupt a later round.
//
// Epochs are also enforced on the way in: transitions arm outside the
// session's lock, so two quick back-to-back transitions can reach Arm in
// reverse order. Letting the older epoch replace the newer one would
// leave the live turn with a timer the session will reject as stale, and
// no working timeout at all. Arm keeps the highest epoch seen per
// session and ignores anything older.
type Scheduler struct {
	clock  quartz.Clock
	logger *log.Logger
	fire   FireFunc

	mu     sync.Mutex
	timers map[string]*quartz.Timer
	epochs map[string]uint64
}

// NewScheduler constructs a scheduler on the given clock. Tests pass
// quartz.NewMock to fire timeouts deterministically.
func NewScheduler(clock quartz.Clock, logger *log.Logger, fire FireFunc) *Scheduler {
	return &Scheduler{
		clock:  clock,
		logger: logger.WithPrefix("scheduler"),
		fire:   fire,
		timers: make(map[string]*quartz.Timer),
		epochs: make(map[string]uint64),
	}
}

// Arm schedules a timeout for sessionID after d, tagged with epoch. An
// epoch at or below the last one armed for this session lost the race to
// a newer transition and is ignored.
func (s *Scheduler) Arm(sessionID string, epoch uint64, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if last, ok := s.epochs[sessionID]; ok && epoch <= last {
		s.logger.Debug("ignoring stale arm", "session", sessionID, "epoch", epoch, "armed", last)
		return
	}
	s.epochs[sessionID] = epoch

	if prev, ok := s.timers[sessionID]; ok {
		prev.Stop()
	}
	s.logger.Debug("arming timer", "session", sessionID, "epoch", epoch, "after", d)
	var timer *quartz.Timer
	timer = s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		if s.timers[sessionID] == timer {
			delete(s.timers, sessionID)
		}
		s.mu.Unlock()
		s.fire(sessionID, epoch)
	})
	s.timers[sessionID] = timer
}

// Disarm cancels any pending timer for sessionID and forgets its epoch
// watermark. Disarm is only called when the session is finished, so a
// straggling Arm after it can at worst schedule a fire the controller
// will fail to route (the session has left the registry).
func (s *Scheduler) Disarm(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[sessionID]; ok {
		timer.Stop()
		delete(s.timers, sessionID)
	}
	delete(s.epochs, sessionID)
}

// Stop cancels every pending timer, for shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	for id := range s.epochs {
		delete(s.epochs, id)
	}
}
