package app_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"quiz-runner/internal/app"
	"quiz-runner/internal/domain"
	"quiz-runner/internal/infra/memory"
)

const feedbackDelay = 1500 * time.Millisecond

func newTestController(t *testing.T, settings app.Settings) (*app.Controller, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	c, err := app.NewController("s-1", memory.DefaultQuiz(), settings, clock)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	t.Cleanup(c.Close)
	return c, clock
}

func manualSettings(seconds int) app.Settings {
	settings := app.DefaultSettings()
	settings.TimerSeconds = seconds
	settings.ManualTick = true
	return settings
}

// waitFor reads snapshots until match succeeds or the deadline passes.
func waitFor(t *testing.T, ch <-chan domain.Snapshot, match func(domain.Snapshot) bool) domain.Snapshot {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap, ok := <-ch:
			if !ok {
				t.Fatalf("subscription closed while waiting")
			}
			if match(snap) {
				return snap
			}
		case <-deadline:
			t.Fatalf("timed out waiting for snapshot")
		}
	}
}

func playController(t *testing.T, answers []int) domain.Snapshot {
	t.Helper()
	c, clock := newTestController(t, manualSettings(30))
	updates, cancel := c.Subscribe()
	defer cancel()

	if err := c.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i, option := range answers {
		if _, applied, err := c.SubmitAnswer(option); err != nil || !applied {
			t.Fatalf("answer %d: applied=%v err=%v", i, applied, err)
		}
		clock.Advance(feedbackDelay)
		next := i + 1
		waitFor(t, updates, func(s domain.Snapshot) bool {
			return s.Phase == domain.PhaseFinished || (s.CurrentIndex == next && !s.Answered())
		})
	}
	return c.Snapshot()
}

func TestControllerAllCorrect(t *testing.T) {
	snap := playController(t, []int{0, 1, 1, 0, 0})
	if snap.Phase != domain.PhaseFinished || snap.Score != 5 {
		t.Fatalf("expected finished 5/5, got %+v", snap)
	}
}

func TestControllerAllWrong(t *testing.T) {
	snap := playController(t, []int{1, 0, 0, 1, 1})
	if snap.Phase != domain.PhaseFinished || snap.Score != 0 {
		t.Fatalf("expected finished 0/5, got %+v", snap)
	}
}

func TestControllerAdvanceWaitsForDelay(t *testing.T) {
	c, clock := newTestController(t, manualSettings(30))
	_ = c.Start()
	if _, _, err := c.SubmitAnswer(0); err != nil {
		t.Fatalf("answer: %v", err)
	}

	clock.Advance(feedbackDelay - time.Millisecond)
	if snap := c.Snapshot(); snap.CurrentIndex != 0 || !snap.Answered() {
		t.Fatalf("advanced before the feedback delay: %+v", snap)
	}
}

func TestControllerTimerExpiresWithoutAnswers(t *testing.T) {
	settings := app.DefaultSettings()
	settings.TimerSeconds = 3
	c, clock := newTestController(t, settings)
	updates, cancel := c.Subscribe()
	defer cancel()

	_ = c.Start()
	for remaining := 2; remaining >= 0; remaining-- {
		clock.Advance(time.Second)
		want := remaining
		waitFor(t, updates, func(s domain.Snapshot) bool { return s.RemainingSeconds == want })
	}

	snap := c.Snapshot()
	if snap.Phase != domain.PhaseFinished || snap.CurrentIndex != 0 {
		t.Fatalf("expected expiry at first question, got %+v", snap)
	}
}

func TestControllerExpiryOverridesPendingAdvance(t *testing.T) {
	c, clock := newTestController(t, manualSettings(1))
	_ = c.Start()
	if _, _, err := c.SubmitAnswer(0); err != nil {
		t.Fatalf("answer: %v", err)
	}
	c.Tick()
	clock.Advance(feedbackDelay)

	snap := c.Snapshot()
	if snap.Phase != domain.PhaseFinished || snap.CurrentIndex != 0 || snap.Score != 1 {
		t.Fatalf("expected finished at question 0 with score 1, got %+v", snap)
	}
}

func TestControllerLastAdvanceBeatsTickChain(t *testing.T) {
	quiz := memory.DefaultQuiz()
	quiz.Questions = quiz.Questions[:1]
	clock := clockwork.NewFakeClock()
	c, err := app.NewController("s-2", quiz, app.DefaultSettings(), clock)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	defer c.Close()
	updates, cancel := c.Subscribe()
	defer cancel()

	_ = c.Start()
	if _, applied, err := c.SubmitAnswer(0); err != nil || !applied {
		t.Fatalf("answer: applied=%v err=%v", applied, err)
	}
	// The one-second tick fires inside this window too; either order must end finished.
	clock.Advance(feedbackDelay)
	finished := waitFor(t, updates, func(s domain.Snapshot) bool { return s.Phase == domain.PhaseFinished })
	if finished.Score != 1 || finished.RemainingSeconds <= 0 {
		t.Fatalf("expected finished by advance with time left, got %+v", finished)
	}

	clock.Advance(5 * time.Second)
	c.Tick()

	select {
	case snap := <-updates:
		t.Fatalf("late tick produced a transition: %+v", snap)
	case <-time.After(50 * time.Millisecond):
	}
	snap := c.Snapshot()
	if snap.Phase != domain.PhaseFinished || snap.RemainingSeconds != finished.RemainingSeconds || snap.Score != 1 {
		t.Fatalf("late tick changed state: before %+v after %+v", finished, snap)
	}
}

func TestControllerRestartCancelsPendingAdvance(t *testing.T) {
	c, clock := newTestController(t, manualSettings(30))
	_ = c.Start()
	if _, _, err := c.SubmitAnswer(0); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if err := c.Restart(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	clock.Advance(2 * feedbackDelay)

	snap := c.Snapshot()
	if snap.Phase != domain.PhaseActive || snap.CurrentIndex != 0 || snap.Answered() || snap.Score != 0 {
		t.Fatalf("stale advance leaked into restarted session: %+v", snap)
	}
}

func TestControllerRestartFromFinished(t *testing.T) {
	c, _ := newTestController(t, manualSettings(2))
	_ = c.Start()
	c.Tick()
	c.Tick()
	if c.Snapshot().Phase != domain.PhaseFinished {
		t.Fatalf("expected finished")
	}

	_ = c.Restart()
	snap := c.Snapshot()
	if snap.Phase != domain.PhaseActive || snap.CurrentIndex != 0 || snap.Score != 0 ||
		snap.Answered() || snap.RemainingSeconds != 2 {
		t.Fatalf("unexpected restart state %+v", snap)
	}
}

func TestControllerDoubleStartBroadcastsOnce(t *testing.T) {
	c, _ := newTestController(t, manualSettings(30))
	updates, cancel := c.Subscribe()
	defer cancel()
	<-updates // initial snapshot

	_ = c.Start()
	_ = c.Start()

	if snap := <-updates; snap.Phase != domain.PhaseActive {
		t.Fatalf("expected active snapshot, got %s", snap.Phase)
	}
	select {
	case snap := <-updates:
		t.Fatalf("second start produced another transition: %+v", snap)
	default:
	}
}

func TestControllerConcurrentStartAndAnswers(t *testing.T) {
	c, _ := newTestController(t, manualSettings(30))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Start()
		}()
	}
	wg.Wait()

	var mu sync.Mutex
	applied := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(option int) {
			defer wg.Done()
			if _, ok, _ := c.SubmitAnswer(option); ok {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}(i % 4)
	}
	wg.Wait()

	if applied != 1 {
		t.Fatalf("expected exactly one applied answer, got %d", applied)
	}
	if snap := c.Snapshot(); snap.Score > 1 || snap.RemainingSeconds != 30 {
		t.Fatalf("unexpected state after racing commands: %+v", snap)
	}
}

func TestControllerInvalidInput(t *testing.T) {
	c, _ := newTestController(t, manualSettings(30))
	_ = c.Start()

	if _, applied, err := c.SubmitAnswer(7); !errors.Is(err, domain.ErrInvalidInput) || applied {
		t.Fatalf("expected invalid input, got applied=%v err=%v", applied, err)
	}
	if c.Snapshot().Answered() {
		t.Fatalf("invalid input must not select")
	}
}

func TestControllerClose(t *testing.T) {
	c, _ := newTestController(t, manualSettings(30))
	updates, _ := c.Subscribe()
	<-updates

	c.Close()
	if _, ok := <-updates; ok {
		t.Fatalf("expected subscription closed")
	}
	if err := c.Start(); !errors.Is(err, domain.ErrSessionClosed) {
		t.Fatalf("expected closed error, got %v", err)
	}
}

func TestNewControllerRejectsBadInput(t *testing.T) {
	if _, err := app.NewController("x", domain.Quiz{ID: "empty"}, app.DefaultSettings(), nil); !errors.Is(err, domain.ErrInvalidQuiz) {
		t.Fatalf("expected invalid quiz, got %v", err)
	}
	settings := app.DefaultSettings()
	settings.TimerSeconds = 0
	if _, err := app.NewController("x", memory.DefaultQuiz(), settings, nil); err == nil {
		t.Fatalf("expected settings error")
	}
}
