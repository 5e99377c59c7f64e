package models

import (
	"time"
)

// CombatSide identifies one of the two sides of a fight
type CombatSide string

const (
	// CombatSidePlayers is the party of player characters
	CombatSidePlayers CombatSide = "players"

	// CombatSideEnemies is the generated opposition
	CombatSideEnemies CombatSide = "enemies"
)

// CombatantKind tells players and enemies apart in the turn order
type CombatantKind string

const (
	// CombatantKindPlayer is a player character
	CombatantKindPlayer CombatantKind = "player"

	// CombatantKindEnemy is a generated enemy
	CombatantKindEnemy CombatantKind = "enemy"
)

// MaxReviveAttempts is the number of failed revives before death is permanent
const MaxReviveAttempts = 3

// CombatState is the active (or just resolved) fight of a session
type CombatState struct {
	// SessionID is the session the fight belongs to
	SessionID string `json:"session_id"`

	// ChapterID is the chapter that triggered the fight
	ChapterID string `json:"chapter_id"`

	// IsActive is false once a side has won
	IsActive bool `json:"is_active"`

	// WinningSide is empty until the fight resolves
	WinningSide CombatSide `json:"winning_side,omitempty"`

	// Participants are the player combatants in roster order
	Participants []*CombatParticipant `json:"participants"`

	// Enemies are the generated enemies in generation order
	Enemies []*Enemy `json:"enemies"`

	// TurnOrder is empty until every living combatant rolled initiative
	TurnOrder []CombatantRef `json:"turn_order"`

	// CurrentTurnIndex indexes TurnOrder
	CurrentTurnIndex int `json:"current_turn_index"`

	// Round starts at 1 and increments each time the turn order wraps
	Round int `json:"round"`

	// StartedAt is when the fight was initiated
	StartedAt time.Time `json:"started_at"`

	// EndedAt is when a side won
	EndedAt *time.Time `json:"ended_at,omitempty"`
}

// CombatantRef points into Participants or Enemies
type CombatantRef struct {
	// Kind is player or enemy
	Kind CombatantKind `json:"kind"`

	// ID is the character ID for players and the enemy ID for enemies
	ID string `json:"id"`
}

// CombatParticipant is a player character's combat sheet
type CombatParticipant struct {
	CharacterID     string `json:"character_id"`
	UserID          string `json:"user_id"`
	Name            string `json:"name"`
	Class           string `json:"class"`
	HP              int    `json:"hp"`
	MaxHP           int    `json:"max_hp"`
	AC              int    `json:"ac"`
	AttackModifier  int    `json:"attack_modifier"`
	DexModifier     int    `json:"dex_modifier"`
	DamageDie       int    `json:"damage_die"`
	Initiative      int    `json:"initiative"`
	HasRolled       bool   `json:"has_rolled"`
	IsDead          bool   `json:"is_dead"`
	ReviveAttempts  int    `json:"revive_attempts"`
	PermanentlyDead bool   `json:"permanently_dead"`
}

// Enemy is a generated opponent
type Enemy struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	HP             int    `json:"hp"`
	MaxHP          int    `json:"max_hp"`
	AC             int    `json:"ac"`
	AttackModifier int    `json:"attack_modifier"`
	DamageDie      int    `json:"damage_die"`
	Initiative     int    `json:"initiative"`
	HasRolled      bool   `json:"has_rolled"`
	IsDead         bool   `json:"is_dead"`
}

// GetParticipant returns the player combatant for a character, or nil
func (c *CombatState) GetParticipant(characterID string) *CombatParticipant {
	for _, p := range c.Participants {
		if p.CharacterID == characterID {
			return p
		}
	}
	return nil
}

// GetEnemy returns the enemy with the given ID, or nil
func (c *CombatState) GetEnemy(enemyID string) *Enemy {
	for _, e := range c.Enemies {
		if e.ID == enemyID {
			return e
		}
	}
	return nil
}

// IsAlive reports whether the referenced combatant exists and is not dead
func (c *CombatState) IsAlive(ref CombatantRef) bool {
	switch ref.Kind {
	case CombatantKindPlayer:
		p := c.GetParticipant(ref.ID)
		return p != nil && !p.IsDead
	case CombatantKindEnemy:
		e := c.GetEnemy(ref.ID)
		return e != nil && !e.IsDead
	}
	return false
}

// LivingPlayers counts player combatants that are not dead
func (c *CombatState) LivingPlayers() int {
	n := 0
	for _, p := range c.Participants {
		if !p.IsDead {
			n++
		}
	}
	return n
}

// LivingEnemies counts enemies that are not dead
func (c *CombatState) LivingEnemies() int {
	n := 0
	for _, e := range c.Enemies {
		if !e.IsDead {
			n++
		}
	}
	return n
}

// CurrentTurn returns the combatant whose turn it is, or false before initiative completes
func (c *CombatState) CurrentTurn() (CombatantRef, bool) {
	if len(c.TurnOrder) == 0 || c.CurrentTurnIndex < 0 || c.CurrentTurnIndex >= len(c.TurnOrder) {
		return CombatantRef{}, false
	}
	return c.TurnOrder[c.CurrentTurnIndex], true
}

// NameOf returns the display name of a combatant
func (c *CombatState) NameOf(ref CombatantRef) string {
	switch ref.Kind {
	case CombatantKindPlayer:
		if p := c.GetParticipant(ref.ID); p != nil {
			return p.Name
		}
	case CombatantKindEnemy:
		if e := c.GetEnemy(ref.ID); e != nil {
			return e.Name
		}
	}
	return ""
}
