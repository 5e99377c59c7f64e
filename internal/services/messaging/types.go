package messaging

import (
	"github.com/KirkDiggler/taleforge/internal/models"
	"github.com/KirkDiggler/taleforge/internal/services/game"
)

// MessageTone represents the tone of a message
type MessageTone string

const (
	// ToneNeutral is a neutral tone
	ToneNeutral MessageTone = "neutral"

	// ToneDramatic is an ominous, high-fantasy tone
	ToneDramatic MessageTone = "dramatic"

	// ToneFunny is a humorous tone
	ToneFunny MessageTone = "funny"
)

// GetMilestoneMessageInput contains parameters for getting a milestone message
type GetMilestoneMessageInput struct {
	// Type is the announced update type
	Type models.UpdateType

	// SessionName names the party in the line
	SessionName string

	// ChapterTitle is set for chapter changes
	ChapterTitle string

	// IsCombat marks chapters where a fight waits
	IsCombat bool

	// PreferredTone is the preferred tone for the message (optional)
	PreferredTone MessageTone
}

// GetMilestoneMessageOutput contains the result of getting a milestone message
type GetMilestoneMessageOutput struct {
	// Message is empty when the update type has no narration
	Message string

	// Tone is the tone that was used
	Tone MessageTone
}

// GetErrorMessageInput contains parameters for getting an error message
type GetErrorMessageInput struct {
	// Kind is the failure category of the operation
	Kind game.Kind

	// Detail is the safe message carried by the error, if any
	Detail string
}

// GetErrorMessageOutput contains the result of getting an error message
type GetErrorMessageOutput struct {
	// Title is the title of the message
	Title string

	// Message is the body of the message
	Message string
}

// ServiceConfig contains configuration for the messaging service
type ServiceConfig struct {
	// DefaultTone is used when the caller has no preference; empty means dramatic
	DefaultTone MessageTone

	// Seed makes the message choice deterministic when set
	Seed int64
}
