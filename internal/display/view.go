// Package display is the read-only player-facing view model. It holds nothing
// but the latest received snapshot; every accepted GAME_STATE_UPDATE wholly
// replaces the local copy, so missed or duplicated deliveries cannot corrupt
// anything.
package display

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/quizfriends/quizmaster/internal/broadcast"
	"github.com/quizfriends/quizmaster/internal/models"
)

// ScoreRow is one line of the rendered scoreboard, highest score first.
type ScoreRow struct {
	Name  string
	Score int
}

// View reconstructs render state from inbound snapshots. It starts in a
// distinct waiting state, not an empty game, and flips to connected on the
// first accepted snapshot. It never mutates its copy: the dismiss gesture is
// relayed back to the console as a HIDE_SCOREBOARD message.
type View struct {
	transport     broadcast.Transport
	trustedOrigin string
	selfOrigin    string

	mu        sync.RWMutex
	connected bool
	state     models.GameState
}

// NewView creates a view over the given transport. trustedOrigin is the only
// sender accepted; selfOrigin is stamped onto reverse messages.
func NewView(transport broadcast.Transport, trustedOrigin, selfOrigin string) *View {
	return &View{
		transport:     transport,
		trustedOrigin: trustedOrigin,
		selfOrigin:    selfOrigin,
	}
}

// Run announces readiness once, then consumes snapshots until the context is
// cancelled.
func (v *View) Run(ctx context.Context) {
	if err := v.transport.Send(broadcast.Message{
		Type:   broadcast.TypePlayerViewReady,
		Origin: v.selfOrigin,
	}); err != nil {
		log.Warn().Err(err).Msg("failed to announce display readiness")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-v.transport.Receive():
			if !ok {
				return
			}
			v.handle(msg)
		}
	}
}

func (v *View) handle(msg broadcast.Message) {
	if msg.Origin != v.trustedOrigin {
		log.Warn().Str("origin", msg.Origin).Msg("rejecting snapshot from untrusted origin")
		return
	}
	if msg.Type != broadcast.TypeGameStateUpdate {
		return
	}

	var state models.GameState
	if err := json.Unmarshal(msg.Payload, &state); err != nil {
		log.Warn().Err(err).Msg("dropping malformed snapshot")
		return
	}

	v.mu.Lock()
	v.state = state
	v.connected = true
	v.mu.Unlock()
}

// Connected reports whether at least one snapshot has been accepted. While
// false, the renderer shows the waiting surface.
func (v *View) Connected() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.connected
}

// Snapshot returns the latest accepted state. ok is false while waiting.
func (v *View) Snapshot() (state models.GameState, ok bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state, v.connected
}

// DisplayedQuestion returns the question currently published to players, or
// nil when the console cleared the player view.
func (v *View) DisplayedQuestion() *models.Question {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if !v.connected || v.state.DisplayedQuestion == nil {
		return nil
	}
	q := *v.state.DisplayedQuestion
	return &q
}

// Timer returns the countdown as last broadcast.
func (v *View) Timer() models.TimerState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state.Timer
}

// ScoreboardRows renders the ledger under the broadcast scoreboard mode:
// players mode lists every player, teams mode every team (absent ledger
// entries read as zero), hidden mode yields nothing.
func (v *View) ScoreboardRows() []ScoreRow {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if !v.connected {
		return nil
	}

	var rows []ScoreRow
	switch v.state.ScoreboardMode {
	case models.ScoreboardPlayers:
		for _, p := range v.state.Players {
			rows = append(rows, ScoreRow{Name: p.Name, Score: v.state.Scores[p.Name]})
		}
	case models.ScoreboardTeams:
		for _, t := range v.state.Teams {
			rows = append(rows, ScoreRow{Name: t.Name, Score: v.state.Scores[t.Name]})
		}
	default:
		return nil
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

// DismissScoreboard relays the player-side dismiss gesture to the console.
// The local copy is left alone; the console's resulting transition comes back
// as a fresh snapshot.
func (v *View) DismissScoreboard() {
	if err := v.transport.Send(broadcast.Message{
		Type:   broadcast.TypeHideScoreboard,
		Origin: v.selfOrigin,
	}); err != nil {
		log.Warn().Err(err).Msg("failed to send scoreboard dismiss")
	}
}
