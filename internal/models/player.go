package models

// Player represents a quiz participant. The name is the unique key; scores and
// selections reference players by name, never by pointer.
type Player struct {
	Name           string `json:"name"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}
