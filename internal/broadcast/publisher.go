package broadcast

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/quizfriends/quizmaster/internal/game"
	"github.com/quizfriends/quizmaster/internal/models"
)

// Publisher watches a store and sends the entire current snapshot on every
// state change, tagged GAME_STATE_UPDATE. No diffing, no partial updates:
// the display wholly replaces its copy, so duplicated or coalesced sends are
// harmless.
type Publisher struct {
	store       *game.Store
	transport   Transport
	origin      string
	unsubscribe func()
}

// NewPublisher wires a store to a transport and starts publishing. origin is
// stamped onto every outbound message for the receiver's identity check.
func NewPublisher(store *game.Store, transport Transport, origin string) *Publisher {
	p := &Publisher{
		store:     store,
		transport: transport,
		origin:    origin,
	}
	p.unsubscribe = store.Subscribe(func(state models.GameState) {
		p.send(state)
	})
	return p
}

// PushCurrent sends the current snapshot immediately. Used when a display
// announces readiness, so a display opened after the last mutation does not
// sit empty until the next unrelated change.
func (p *Publisher) PushCurrent() {
	p.send(p.store.State())
}

// Close stops publishing. The transport is not closed; its owner does that.
func (p *Publisher) Close() {
	if p.unsubscribe != nil {
		p.unsubscribe()
		p.unsubscribe = nil
	}
}

func (p *Publisher) send(state models.GameState) {
	payload, err := json.Marshal(state)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal game state snapshot")
		return
	}
	msg := Message{
		Type:    TypeGameStateUpdate,
		Origin:  p.origin,
		Payload: payload,
	}
	if err := p.transport.Send(msg); err != nil {
		// Fire and forget: a failed broadcast never disturbs the console.
		log.Warn().Err(err).Msg("snapshot broadcast failed, dropping")
	}
}
