package broadcast

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/quizfriends/quizmaster/internal/game"
	"github.com/quizfriends/quizmaster/internal/models"
)

func recvSnapshot(t *testing.T, ch <-chan Message) models.GameState {
	t.Helper()
	select {
	case msg := <-ch:
		if msg.Type != TypeGameStateUpdate {
			t.Fatalf("expected a snapshot, got %+v", msg)
		}
		var state models.GameState
		if err := json.Unmarshal(msg.Payload, &state); err != nil {
			t.Fatalf("unmarshal snapshot: %v", err)
		}
		return state
	case <-time.After(time.Second):
		t.Fatalf("no snapshot arrived")
		return models.GameState{}
	}
}

func TestEveryMutationIsBroadcastWholesale(t *testing.T) {
	store := game.NewStore()
	consoleEP, displayEP := NewBus(16)
	p := NewPublisher(store, consoleEP, "console")
	defer p.Close()

	store.Apply(game.AddPlayer{Player: models.Player{Name: "Alice"}})
	state := recvSnapshot(t, displayEP.Receive())
	if len(state.Players) != 1 || state.Players[0].Name != "Alice" {
		t.Fatalf("snapshot missing the mutation: %+v", state.Players)
	}

	store.Apply(game.UpdateScore{Name: "Alice", Delta: 2})
	state = recvSnapshot(t, displayEP.Receive())
	if state.Score("Alice") != 2 {
		t.Fatalf("snapshot must carry the full current state, got %+v", state.Scores)
	}
	if len(state.Players) != 1 {
		t.Fatalf("snapshot must be the whole state, not a diff")
	}
}

func TestPushCurrentSendsWithoutMutation(t *testing.T) {
	store := game.NewStore()
	store.Apply(game.SetPhase{Phase: models.PhaseOngoing})

	consoleEP, displayEP := NewBus(16)
	p := NewPublisher(store, consoleEP, "console")
	defer p.Close()

	p.PushCurrent()
	state := recvSnapshot(t, displayEP.Receive())
	if state.Phase != models.PhaseOngoing {
		t.Fatalf("expected the current state, got %+v", state)
	}
}

func TestCloseStopsPublishing(t *testing.T) {
	store := game.NewStore()
	consoleEP, displayEP := NewBus(16)
	p := NewPublisher(store, consoleEP, "console")
	p.Close()

	store.Apply(game.SetPhase{Phase: models.PhaseCompleted})
	select {
	case msg := <-displayEP.Receive():
		t.Fatalf("publisher kept sending after close: %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSnapshotCarriesOrigin(t *testing.T) {
	store := game.NewStore()
	consoleEP, displayEP := NewBus(16)
	p := NewPublisher(store, consoleEP, "quizmaster-console")
	defer p.Close()

	store.Apply(game.SetPhase{Phase: models.PhaseOngoing})
	select {
	case msg := <-displayEP.Receive():
		if msg.Origin != "quizmaster-console" {
			t.Fatalf("expected stamped origin, got %q", msg.Origin)
		}
	case <-time.After(time.Second):
		t.Fatalf("no snapshot arrived")
	}
}
