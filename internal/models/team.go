package models

import (
	"github.com/google/uuid"
)

// Team groups players under a shared name and color. Membership is not
// exclusive: a player may appear on any number of teams.
type Team struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Players []Player  `json:"players"`
	Color   string    `json:"color"`
}

// TeamPalette is the fixed set of colors teams are drawn from. Uniqueness of
// color across active teams is advisory and checked by the console, not here.
var TeamPalette = []string{
	"#e53935", // red
	"#1e88e5", // blue
	"#43a047", // green
	"#fdd835", // yellow
	"#8e24aa", // purple
	"#fb8c00", // orange
	"#00acc1", // cyan
	"#d81b60", // pink
}

// HasPlayer reports whether the named player is on the team roster.
func (t Team) HasPlayer(name string) bool {
	for _, p := range t.Players {
		if p.Name == name {
			return true
		}
	}
	return false
}
