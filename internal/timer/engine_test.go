package timer

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/quizfriends/quizmaster/internal/game"
	"github.com/quizfriends/quizmaster/internal/models"
)

// harness wires an engine to a store subscription so every timer write is
// observable as a synchronization point.
type harness struct {
	engine *Engine
	clock  *clockwork.FakeClock
	states chan models.TimerState
}

func newHarness(t *testing.T, onExpire func()) *harness {
	t.Helper()
	store := game.NewStore()
	states := make(chan models.TimerState, 64)
	store.Subscribe(func(state models.GameState) {
		states <- state.Timer
	})
	clock := clockwork.NewFakeClock()
	h := &harness{
		engine: New(store, clock, onExpire),
		clock:  clock,
		states: states,
	}
	t.Cleanup(h.engine.Stop)
	return h
}

func (h *harness) recv(t *testing.T) models.TimerState {
	t.Helper()
	select {
	case state := <-h.states:
		return state
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for a timer state")
		return models.TimerState{}
	}
}

// advanceTick fires exactly one engine tick and returns the resulting state.
func (h *harness) advanceTick(t *testing.T) models.TimerState {
	t.Helper()
	h.clock.BlockUntil(1)
	h.clock.Advance(time.Second)
	return h.recv(t)
}

func TestCountdownVisitsEverySecondInOrder(t *testing.T) {
	h := newHarness(t, nil)

	h.engine.Start(3)
	if got := h.recv(t); got != (models.TimerState{IsActive: true, TimeRemaining: 3, InitialTime: 3}) {
		t.Fatalf("unexpected start state %+v", got)
	}

	for want := 2; want >= 0; want-- {
		got := h.advanceTick(t)
		if got.TimeRemaining != want {
			t.Fatalf("expected remaining %d, got %+v", want, got)
		}
		wantActive := want > 0
		if got.IsActive != wantActive {
			t.Fatalf("at remaining %d expected active=%v, got %+v", want, wantActive, got)
		}
	}
}

func TestResetReturnsToInitialNotZero(t *testing.T) {
	h := newHarness(t, nil)

	h.engine.Start(30)
	h.recv(t)
	for i := 0; i < 10; i++ {
		h.advanceTick(t)
	}

	h.engine.Reset()
	got := h.recv(t)
	want := models.TimerState{IsActive: false, TimeRemaining: 30, InitialTime: 30}
	if got != want {
		t.Fatalf("expected %+v after reset, got %+v", want, got)
	}
}

func TestPauseAndResumeKeepOneSecondCadence(t *testing.T) {
	h := newHarness(t, nil)

	h.engine.Start(10)
	h.recv(t)
	h.advanceTick(t) // 9

	h.engine.Pause()
	got := h.recv(t)
	if got.IsActive || got.TimeRemaining != 9 {
		t.Fatalf("expected paused at 9, got %+v", got)
	}

	// Time passing while paused must not consume the countdown.
	h.clock.Advance(5 * time.Second)

	h.engine.Resume()
	got = h.recv(t)
	if !got.IsActive || got.TimeRemaining != 9 {
		t.Fatalf("expected running at 9 after resume, got %+v", got)
	}

	if got := h.advanceTick(t); got.TimeRemaining != 8 {
		t.Fatalf("expected 8 one second after resume, got %+v", got)
	}
}

func TestPauseIsNoOpUnlessRunning(t *testing.T) {
	h := newHarness(t, nil)

	h.engine.SetInitialValue(20)
	h.recv(t)

	h.engine.Pause()
	select {
	case got := <-h.states:
		t.Fatalf("pause on an armed timer must be a no-op, got %+v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestResumeIsNoOpWhenExpired(t *testing.T) {
	h := newHarness(t, nil)

	h.engine.Start(1)
	h.recv(t)
	h.advanceTick(t) // expired

	h.engine.Resume()
	select {
	case got := <-h.states:
		t.Fatalf("resume after expiry must be a no-op, got %+v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestExpiryNotificationFiresExactlyOnce(t *testing.T) {
	expired := make(chan struct{}, 4)
	h := newHarness(t, func() { expired <- struct{}{} })

	h.engine.Start(2)
	h.recv(t)
	h.advanceTick(t)
	got := h.advanceTick(t)
	if got.IsActive || got.TimeRemaining != 0 {
		t.Fatalf("expected expired state, got %+v", got)
	}

	select {
	case <-expired:
	case <-time.After(2 * time.Second):
		t.Fatalf("expiry notification never fired")
	}

	// Further time passing must not re-fire.
	h.clock.Advance(10 * time.Second)
	select {
	case <-expired:
		t.Fatalf("expiry notification fired more than once")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSetInitialValueCancelsRunningCountdown(t *testing.T) {
	h := newHarness(t, nil)

	h.engine.Start(10)
	h.recv(t)
	h.advanceTick(t)

	h.engine.SetInitialValue(45)
	got := h.recv(t)
	want := models.TimerState{IsActive: false, TimeRemaining: 45, InitialTime: 45}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	// The cancelled countdown must not keep ticking.
	h.clock.Advance(3 * time.Second)
	select {
	case got := <-h.states:
		t.Fatalf("stale tick after cancel: %+v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStartWithNonPositiveDurationIdles(t *testing.T) {
	h := newHarness(t, nil)

	h.engine.Start(0)
	got := h.recv(t)
	want := models.TimerState{}
	if got != want {
		t.Fatalf("expected idle state, got %+v", got)
	}
}

func TestStopCancelsPendingTick(t *testing.T) {
	h := newHarness(t, nil)

	h.engine.Start(5)
	h.recv(t)

	h.engine.Stop()
	h.clock.Advance(3 * time.Second)
	select {
	case got := <-h.states:
		t.Fatalf("tick fired after teardown: %+v", got)
	case <-time.After(50 * time.Millisecond):
	}
}
