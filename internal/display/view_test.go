package display

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/quizfriends/quizmaster/internal/broadcast"
	"github.com/quizfriends/quizmaster/internal/console"
	"github.com/quizfriends/quizmaster/internal/game"
	"github.com/quizfriends/quizmaster/internal/models"
)

const (
	consoleOrigin = "quizmaster-console"
	displayOrigin = "quizmaster-display"
)

func snapshotMessage(t *testing.T, mutate func(*models.GameState)) broadcast.Message {
	t.Helper()
	state := models.NewGameState()
	if mutate != nil {
		mutate(&state)
	}
	payload, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	return broadcast.Message{
		Type:    broadcast.TypeGameStateUpdate,
		Origin:  consoleOrigin,
		Payload: payload,
	}
}

func TestViewStartsWaiting(t *testing.T) {
	_, ep := broadcast.NewBus(8)
	v := NewView(ep, consoleOrigin, displayOrigin)

	if v.Connected() {
		t.Fatalf("a fresh view must be waiting, not connected")
	}
	if _, ok := v.Snapshot(); ok {
		t.Fatalf("no snapshot must be available while waiting")
	}
	if rows := v.ScoreboardRows(); rows != nil {
		t.Fatalf("waiting view must render nothing, got %v", rows)
	}
}

func TestFirstSnapshotConnects(t *testing.T) {
	_, ep := broadcast.NewBus(8)
	v := NewView(ep, consoleOrigin, displayOrigin)

	v.handle(snapshotMessage(t, func(s *models.GameState) {
		s.Phase = models.PhaseOngoing
	}))

	if !v.Connected() {
		t.Fatalf("view must connect on the first accepted snapshot")
	}
	state, ok := v.Snapshot()
	if !ok || state.Phase != models.PhaseOngoing {
		t.Fatalf("expected the received snapshot, got %+v ok=%v", state, ok)
	}
}

// Only the last received snapshot determines rendered state; duplicates and
// dropped intermediates change nothing as long as the last one arrives.
func TestFullReplaceIsIdempotent(t *testing.T) {
	snapshots := make([]broadcast.Message, 0, 4)
	for i := 1; i <= 4; i++ {
		score := i
		snapshots = append(snapshots, snapshotMessage(t, func(s *models.GameState) {
			s.Scores = map[string]int{"Alice": score}
		}))
	}

	sequences := [][]broadcast.Message{
		{snapshots[0], snapshots[1], snapshots[2], snapshots[3]},          // in order
		{snapshots[0], snapshots[3]},                                      // dropped intermediates
		{snapshots[0], snapshots[1], snapshots[1], snapshots[3]},          // duplicate
		{snapshots[2], snapshots[2], snapshots[0], snapshots[0], snapshots[3]}, // redelivery noise
	}

	for i, seq := range sequences {
		_, ep := broadcast.NewBus(8)
		v := NewView(ep, consoleOrigin, displayOrigin)
		for _, msg := range seq {
			v.handle(msg)
		}
		state, ok := v.Snapshot()
		if !ok || state.Score("Alice") != 4 {
			t.Fatalf("sequence %d: expected final score 4, got %+v", i, state.Scores)
		}
	}
}

func TestUntrustedOriginIsRejectedSilently(t *testing.T) {
	_, ep := broadcast.NewBus(8)
	v := NewView(ep, consoleOrigin, displayOrigin)

	msg := snapshotMessage(t, nil)
	msg.Origin = "somebody-else"
	v.handle(msg)

	if v.Connected() {
		t.Fatalf("a snapshot from an untrusted origin must be dropped")
	}
}

func TestMalformedSnapshotIsDropped(t *testing.T) {
	_, ep := broadcast.NewBus(8)
	v := NewView(ep, consoleOrigin, displayOrigin)

	v.handle(broadcast.Message{
		Type:    broadcast.TypeGameStateUpdate,
		Origin:  consoleOrigin,
		Payload: json.RawMessage(`{broken`),
	})

	if v.Connected() {
		t.Fatalf("a malformed snapshot must be dropped")
	}
}

func TestScoreboardRowsHonorMode(t *testing.T) {
	seed := func(s *models.GameState) {
		s.Players = []models.Player{{Name: "Alice"}, {Name: "Bob"}, {Name: "Carol"}}
		s.Teams = []models.Team{{Name: "Red"}, {Name: "Blue"}}
		s.Scores = map[string]int{"Alice": 5, "Bob": 2, "Red": 7}
	}

	tests := []struct {
		mode models.ScoreboardMode
		want []ScoreRow
	}{
		{models.ScoreboardHidden, nil},
		{models.ScoreboardPlayers, []ScoreRow{{"Alice", 5}, {"Bob", 2}, {"Carol", 0}}},
		{models.ScoreboardTeams, []ScoreRow{{"Red", 7}, {"Blue", 0}}},
	}

	for _, tc := range tests {
		_, ep := broadcast.NewBus(8)
		v := NewView(ep, consoleOrigin, displayOrigin)
		v.handle(snapshotMessage(t, func(s *models.GameState) {
			seed(s)
			s.ScoreboardMode = tc.mode
		}))

		got := v.ScoreboardRows()
		if len(got) != len(tc.want) {
			t.Fatalf("mode %s: expected %v, got %v", tc.mode, tc.want, got)
		}
		for i := range tc.want {
			if got[i] != tc.want[i] {
				t.Fatalf("mode %s row %d: expected %v, got %v", tc.mode, i, tc.want[i], got[i])
			}
		}
	}
}

func TestDismissScoreboardRelaysInsteadOfMutating(t *testing.T) {
	consoleEP, displayEP := broadcast.NewBus(8)
	v := NewView(displayEP, consoleOrigin, displayOrigin)
	v.handle(snapshotMessage(t, func(s *models.GameState) {
		s.ScoreboardMode = models.ScoreboardPlayers
	}))

	v.DismissScoreboard()

	select {
	case msg := <-consoleEP.Receive():
		if msg.Type != broadcast.TypeHideScoreboard || msg.Origin != displayOrigin {
			t.Fatalf("unexpected reverse message %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatalf("dismiss gesture never reached the console side")
	}

	// The local copy stays untouched until a fresh snapshot arrives.
	state, _ := v.Snapshot()
	if state.ScoreboardMode != models.ScoreboardPlayers {
		t.Fatalf("dismiss must not mutate the local copy")
	}
}

// The console performs many mutations with no display listening, then a
// display opens, announces readiness and immediately sees the fully-current
// state rather than a replay.
func TestLateDisplaySeesCurrentStateViaReadyPush(t *testing.T) {
	consoleEP, displayEP := broadcast.NewBus(128)
	defer consoleEP.Close()

	gm := console.New(console.Config{
		Transport:     consoleEP,
		Origin:        consoleOrigin,
		DisplayOrigin: displayOrigin,
	})
	defer gm.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go gm.Run(ctx)

	for i := 0; i < 50; i++ {
		gm.Store().Apply(game.UpdateScore{Name: "Alice", Delta: 1})
	}

	v := NewView(displayEP, consoleOrigin, displayOrigin)
	go v.Run(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if state, ok := v.Snapshot(); ok && state.Score("Alice") == 50 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	state, ok := v.Snapshot()
	t.Fatalf("display never caught up: ok=%v state=%+v", ok, state.Scores)
}
