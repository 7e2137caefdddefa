// Package timer implements the countdown clock. The engine owns a single
// one-shot timer handle per running countdown; while active it decrements
// exactly once per wall-clock second and writes every change into the state
// store, which carries it to the display over the broadcast path.
package timer

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/quizfriends/quizmaster/internal/game"
	"github.com/quizfriends/quizmaster/internal/models"
)

// Engine drives the countdown. States: idle (remaining 0), armed (remaining =
// initial, inactive), running, paused (inactive, remaining > 0) and expired
// (remaining 0 after a countdown). Only one tick loop exists at a time; pause
// cancels the pending tick and resume arms a fresh one, so pause/resume cycles
// never skew the one-second cadence.
type Engine struct {
	clock    clockwork.Clock
	store    *game.Store
	onExpire func()

	mu        sync.Mutex
	active    bool
	remaining int
	initial   int
	stop      chan struct{}
}

// New creates an engine writing into store. onExpire, if non-nil, fires
// exactly once when a countdown reaches zero.
func New(store *game.Store, clock clockwork.Clock, onExpire func()) *Engine {
	return &Engine{
		clock:    clock,
		store:    store,
		onExpire: onExpire,
	}
}

// SetInitialValue arms the timer at the given duration without starting it.
// Any running countdown is cancelled.
func (e *Engine) SetInitialValue(seconds int) {
	if seconds < 0 {
		seconds = 0
	}
	e.mu.Lock()
	e.cancelLoopLocked()
	e.active = false
	e.initial = seconds
	e.remaining = seconds
	e.mu.Unlock()
	e.push()
}

// Start begins a countdown from the given duration immediately, replacing any
// countdown already in flight.
func (e *Engine) Start(seconds int) {
	if seconds <= 0 {
		e.SetInitialValue(0)
		return
	}
	e.mu.Lock()
	e.cancelLoopLocked()
	e.active = true
	e.initial = seconds
	e.remaining = seconds
	stop := make(chan struct{})
	e.stop = stop
	e.mu.Unlock()

	go e.run(stop)
	e.push()
	log.Debug().Int("seconds", seconds).Msg("timer started")
}

// Pause halts a running countdown, cancelling the pending tick. No-op unless
// running.
func (e *Engine) Pause() {
	e.mu.Lock()
	if !e.active {
		e.mu.Unlock()
		return
	}
	e.cancelLoopLocked()
	e.active = false
	e.mu.Unlock()
	e.push()
}

// Resume continues a paused countdown with a fresh one-second tick. No-op
// unless paused with time left.
func (e *Engine) Resume() {
	e.mu.Lock()
	if e.active || e.remaining <= 0 {
		e.mu.Unlock()
		return
	}
	e.active = true
	stop := make(chan struct{})
	e.stop = stop
	e.mu.Unlock()

	go e.run(stop)
	e.push()
}

// Reset returns to armed at the original initial value, cancelling any
// countdown.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.cancelLoopLocked()
	e.active = false
	e.remaining = e.initial
	e.mu.Unlock()
	e.push()
}

// Stop tears the engine down, cancelling any pending tick. The store is not
// touched; callers stop the engine before disposing the store so a late tick
// can never fire into it.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.cancelLoopLocked()
	e.active = false
	e.mu.Unlock()
}

// Snapshot returns the engine's current timer state.
func (e *Engine) Snapshot() models.TimerState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return models.TimerState{
		IsActive:      e.active,
		TimeRemaining: e.remaining,
		InitialTime:   e.initial,
	}
}

// cancelLoopLocked signals the current tick loop, if any, to exit.
func (e *Engine) cancelLoopLocked() {
	if e.stop != nil {
		close(e.stop)
		e.stop = nil
	}
}

// run is the tick loop for one countdown. Each iteration arms a fresh
// one-second timer; the stop channel identifies the loop's generation so a
// tick that races a cancellation never decrements stale state.
func (e *Engine) run(stop chan struct{}) {
	for {
		t := e.clock.NewTimer(time.Second)
		select {
		case <-t.Chan():
			if !e.tick(stop) {
				return
			}
		case <-stop:
			stopAndDrainTimer(t)
			return
		}
	}
}

// tick applies one decrement. Returns false when the loop should exit, either
// because it was superseded or because the countdown expired.
func (e *Engine) tick(stop chan struct{}) bool {
	e.mu.Lock()
	if e.stop != stop {
		// A cancellation or restart won the race; this loop is stale.
		e.mu.Unlock()
		return false
	}
	e.remaining--
	expired := e.remaining <= 0
	if expired {
		e.remaining = 0
		e.active = false
		e.stop = nil
	}
	e.mu.Unlock()

	e.push()
	if expired {
		log.Debug().Msg("timer expired")
		if e.onExpire != nil {
			e.onExpire()
		}
		return false
	}
	return true
}

// push writes the current timer fields into the store.
func (e *Engine) push() {
	e.store.Apply(game.SetTimerState{Timer: e.Snapshot()})
}

// stopAndDrainTimer stops a timer and drains its channel if it already fired,
// per the time.Timer.Stop documentation, so no goroutine leaks on a pending
// receive.
func stopAndDrainTimer(t clockwork.Timer) {
	if !t.Stop() {
		select {
		case <-t.Chan():
		default:
		}
	}
}
