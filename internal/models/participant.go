package models

import (
	"time"
)

// Participant represents a player's membership in a session
type Participant struct {
	// UserID is the ID of the player
	UserID string `json:"user_id"`

	// Username is the display name of the player
	Username string `json:"username"`

	// CharacterID is the character bound to this session, if any
	CharacterID string `json:"character_id,omitempty"`

	// CharacterName is a snapshot of the bound character's name
	CharacterName string `json:"character_name,omitempty"`

	// Race is a snapshot of the bound character's race
	Race string `json:"race,omitempty"`

	// Class is a snapshot of the bound character's class
	Class string `json:"class,omitempty"`

	// HasVoted is set once the participant voted in the current round
	HasVoted bool `json:"has_voted"`

	// IsOnline is false once the participant missed heartbeats for too long
	IsOnline bool `json:"is_online"`

	// LastActivity is when the participant last showed signs of life
	LastActivity time.Time `json:"last_activity"`

	// JoinedAt is when the participant joined the session
	JoinedAt time.Time `json:"joined_at"`
}

// DisplayName prefers the character name over the username
func (p *Participant) DisplayName() string {
	if p.CharacterName != "" {
		return p.CharacterName
	}
	return p.Username
}
