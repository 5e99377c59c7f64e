package models

// Attributes are the six classic ability scores
type Attributes struct {
	Strength     int `json:"strength" yaml:"strength"`
	Dexterity    int `json:"dexterity" yaml:"dexterity"`
	Constitution int `json:"constitution" yaml:"constitution"`
	Intelligence int `json:"intelligence" yaml:"intelligence"`
	Wisdom       int `json:"wisdom" yaml:"wisdom"`
	Charisma     int `json:"charisma" yaml:"charisma"`
}

// Modifier converts an ability score into its modifier, (score-10)/2 rounded down
func Modifier(score int) int {
	diff := score - 10
	if diff < 0 && diff%2 != 0 {
		return diff/2 - 1
	}
	return diff / 2
}

// Character is a player's character as owned by the character service
type Character struct {
	// ID is the unique identifier for the character
	ID string `json:"id"`

	// UserID is the owning player
	UserID string `json:"user_id"`

	// SessionID is the session the character was created for
	SessionID string `json:"session_id"`

	// Name is the character's name
	Name string `json:"name"`

	// Race is the character's race
	Race string `json:"race"`

	// Class is the character's class
	Class string `json:"class"`

	// Attributes are the ability scores
	Attributes Attributes `json:"attributes"`

	// IsComplete is set once character creation finished
	IsComplete bool `json:"is_complete"`
}
