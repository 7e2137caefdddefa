// Package broadcast carries full GameState snapshots from the console to any
// number of display surfaces, fire-and-forget, plus the narrow reverse channel
// for display-side requests. No acknowledgement, no backpressure: a send that
// cannot be delivered is dropped and the console keeps running, with or
// without a listening display.
package broadcast

import (
	"encoding/json"
)

// Type tags a message on the wire.
type Type string

const (
	// TypeGameStateUpdate carries a full GameState snapshot, console -> display.
	TypeGameStateUpdate Type = "GAME_STATE_UPDATE"
	// TypePlayerViewReady announces a display's readiness, fired once on mount.
	TypePlayerViewReady Type = "PLAYER_VIEW_READY"
	// TypeHideScoreboard is the display's scoreboard dismiss gesture. The
	// console interprets it as an ordinary transition; the display never
	// mutates its local copy.
	TypeHideScoreboard Type = "HIDE_SCOREBOARD"
)

// Message is the wire envelope. Origin identifies the sender; receivers
// silently drop anything not from their single trusted origin.
type Message struct {
	Type    Type            `json:"type"`
	Origin  string          `json:"origin"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Transport is the cross-surface messaging primitive. Send is best-effort and
// must never block on a missing or slow peer; Receive yields inbound messages
// until Close. Close is idempotent.
type Transport interface {
	Send(Message) error
	Receive() <-chan Message
	Close() error
}
