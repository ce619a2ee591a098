package app

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"quiz-runner/internal/domain"
)

const tickInterval = time.Second

// Settings configures the timing of a session.
type Settings struct {
	TimerSeconds     int
	AdvanceDelay     time.Duration
	LowTimeThreshold int
	// ManualTick disables the built-in one-second tick source; the caller drives Tick.
	ManualTick bool
}

// DefaultSettings mirrors the product defaults: 30s countdown, 1.5s feedback delay.
func DefaultSettings() Settings {
	return Settings{
		TimerSeconds:     30,
		AdvanceDelay:     1500 * time.Millisecond,
		LowTimeThreshold: 10,
	}
}

// Validate rejects settings the state machine cannot run with.
func (s Settings) Validate() error {
	if s.TimerSeconds <= 0 {
		return fmt.Errorf("timer seconds must be positive, got %d", s.TimerSeconds)
	}
	if s.AdvanceDelay < 0 {
		return fmt.Errorf("advance delay must not be negative, got %s", s.AdvanceDelay)
	}
	return nil
}

// Controller owns one Session and drives its deferred transitions.
// Commands run one at a time under mu, so every broadcast snapshot is a
// fully applied state.
type Controller struct {
	id     string
	clock  clockwork.Clock
	delay  time.Duration
	manual bool
	logger zerolog.Logger

	mu           sync.Mutex
	session      *Session
	advanceTimer clockwork.Timer
	tickTimer    clockwork.Timer
	tickGen      uint64
	closed       bool
	subscribers  map[chan domain.Snapshot]struct{}
}

// NewController validates the quiz and settings and returns a NotStarted controller.
// A nil clock means the real wall clock.
func NewController(id string, quiz domain.Quiz, settings Settings, clock clockwork.Clock) (*Controller, error) {
	if err := quiz.Validate(); err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Controller{
		id:          id,
		clock:       clock,
		delay:       settings.AdvanceDelay,
		manual:      settings.ManualTick,
		logger:      log.With().Str("session_id", id).Str("quiz_id", quiz.ID).Logger(),
		session:     NewSession(quiz, settings.TimerSeconds, settings.LowTimeThreshold),
		subscribers: make(map[chan domain.Snapshot]struct{}),
	}, nil
}

// ID returns the session identifier.
func (c *Controller) ID() string { return c.id }

// Snapshot returns the current state.
func (c *Controller) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Snapshot()
}

// Start enters play. Repeated or racing calls collapse into one activation.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrSessionClosed
	}
	if err := c.session.Start(); err != nil {
		c.logger.Debug().Err(err).Str("command", "start").Msg("ignored")
		return nil
	}
	c.armTickLocked()
	c.logger.Debug().Msg("session started")
	c.broadcastLocked()
	return nil
}

// Restart resets to the first question with a full timer and re-enters play.
// Any pending advance from the previous run is cancelled.
func (c *Controller) Restart() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrSessionClosed
	}
	c.session.Restart()
	stopTimer(&c.advanceTimer)
	c.armTickLocked()
	c.logger.Debug().Msg("session restarted")
	c.broadcastLocked()
	return nil
}

// SubmitAnswer records the answer for the current question and schedules the
// advance. The boolean is false when the submission had no effect because the
// question was already answered or the session is not active.
func (c *Controller) SubmitAnswer(option int) (domain.AnswerResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.AnswerResult{}, false, domain.ErrSessionClosed
	}

	result, epoch, err := c.session.SubmitAnswer(option)
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		c.logger.Debug().Int("option", option).Str("command", "answer").Msg("ignored")
		return domain.AnswerResult{}, false, nil
	case err != nil:
		c.logger.Warn().Err(err).Int("option", option).Msg("rejected answer")
		return domain.AnswerResult{}, false, err
	}

	stopTimer(&c.advanceTimer)
	c.advanceTimer = c.clock.AfterFunc(c.delay, func() { c.fireAdvance(epoch) })
	c.logger.Debug().
		Int("question", result.QuestionIndex).
		Int("option", option).
		Bool("correct", result.Correct).
		Int("score", result.Score).
		Msg("answer recorded")
	c.broadcastLocked()
	return result, true, nil
}

// Tick consumes one second of the countdown. Only useful with ManualTick;
// otherwise the controller ticks itself.
func (c *Controller) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.tickLocked()
}

// Close cancels pending timers and ends every subscription.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	stopTimer(&c.advanceTimer)
	c.disarmTickLocked()
	for ch := range c.subscribers {
		delete(c.subscribers, ch)
		close(ch)
	}
	c.logger.Debug().Msg("session closed")
}

// Subscribe returns a channel that receives a snapshot after every transition,
// starting with the current state. The caller must invoke cancel to avoid leaks.
func (c *Controller) Subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 8)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	c.subscribers[ch] = struct{}{}
	ch <- c.session.Snapshot()
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.subscribers[ch]; ok {
			delete(c.subscribers, ch)
			close(ch)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

func (c *Controller) fireAdvance(epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if err := c.session.Advance(epoch); err != nil {
		c.logger.Debug().Err(err).Uint64("epoch", epoch).Msg("stale advance")
		return
	}
	if c.session.Phase() == domain.PhaseFinished {
		c.disarmTickLocked()
		c.logger.Debug().Msg("session finished: last question answered")
	}
	c.broadcastLocked()
}

func (c *Controller) fireTick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.tickGen {
		return
	}
	c.tickLocked()
}

func (c *Controller) tickLocked() {
	if err := c.session.Tick(); err != nil {
		return
	}
	if c.session.Phase() == domain.PhaseFinished {
		stopTimer(&c.advanceTimer)
		c.disarmTickLocked()
		c.logger.Debug().Msg("session finished: time expired")
	} else {
		c.armTickLocked()
	}
	c.broadcastLocked()
}

// armTickLocked (re)starts the one-second tick chain. A tick that already
// fired but is waiting on mu carries the old generation and is dropped.
func (c *Controller) armTickLocked() {
	c.disarmTickLocked()
	if c.manual {
		return
	}
	gen := c.tickGen
	c.tickTimer = c.clock.AfterFunc(tickInterval, func() { c.fireTick(gen) })
}

func (c *Controller) disarmTickLocked() {
	c.tickGen++
	stopTimer(&c.tickTimer)
}

func (c *Controller) broadcastLocked() {
	snap := c.session.Snapshot()
	for ch := range c.subscribers {
		select {
		case ch <- snap:
		default:
			// Slow reader: drop the stale snapshot so the latest one always lands.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func stopTimer(t *clockwork.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}
