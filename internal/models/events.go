package models

import (
	"encoding/json"
	"time"
)

// TimelineEntryKind classifies narrative history entries
type TimelineEntryKind string

const (
	// TimelineEntryStory records a chapter being visited
	TimelineEntryStory TimelineEntryKind = "STORY"

	// TimelineEntryChoiceResult records a resolved decision
	TimelineEntryChoiceResult TimelineEntryKind = "CHOICE_RESULT"

	// TimelineEntrySystemMessage records engine notices (combat outcomes, revotes)
	TimelineEntrySystemMessage TimelineEntryKind = "SYSTEM_MESSAGE"
)

// TimelineEntry is one immutable line of a session's narrative history
type TimelineEntry struct {
	// ID is assigned by the event log on append
	ID string `json:"id"`

	// SessionID is the owning session
	SessionID string `json:"session_id"`

	// ChapterID is the chapter the entry refers to
	ChapterID string `json:"chapter_id"`

	// ChapterText is a snapshot of the chapter text at the time of the entry
	ChapterText string `json:"chapter_text,omitempty"`

	// ChoiceMade is the option chosen, for CHOICE_RESULT entries
	ChoiceMade string `json:"choice_made,omitempty"`

	// VotingResult is the tally, for CHOICE_RESULT entries
	VotingResult *VotingResult `json:"voting_result,omitempty"`

	// Message is free text for SYSTEM_MESSAGE entries
	Message string `json:"message,omitempty"`

	// Kind classifies the entry
	Kind TimelineEntryKind `json:"kind"`

	// Timestamp is when the entry was recorded
	Timestamp time.Time `json:"timestamp"`
}

// UpdateType is the closed set of client-visible update events
type UpdateType string

const (
	UpdatePlayerJoined        UpdateType = "PLAYER_JOINED"
	UpdatePlayerLeft          UpdateType = "PLAYER_LEFT"
	UpdateCharacterCreated    UpdateType = "CHARACTER_CREATED"
	UpdateCharacterUpdated    UpdateType = "CHARACTER_UPDATED"
	UpdateAllCharactersReady  UpdateType = "ALL_CHARACTERS_READY"
	UpdateSessionStateChanged UpdateType = "SESSION_STATE_CHANGED"
	UpdateVoteReceived        UpdateType = "VOTE_RECEIVED"
	UpdateChapterChanged      UpdateType = "CHAPTER_CHANGED"
	UpdateStoryEnded          UpdateType = "STORY_ENDED"
	UpdateGameStarted         UpdateType = "GAME_STARTED"
	UpdateCombatStarted       UpdateType = "COMBAT_STARTED"
	UpdateAttackMade          UpdateType = "ATTACK_MADE"
	UpdateCharacterDied       UpdateType = "CHARACTER_DIED"
	UpdateCharacterRevived    UpdateType = "CHARACTER_REVIVED"
	UpdateReviveFailed        UpdateType = "REVIVE_FAILED"
	UpdateVoteFinalized       UpdateType = "VOTE_FINALIZED"
	UpdateTieDetected         UpdateType = "TIE_DETECTED"
	UpdateSessionDeleted      UpdateType = "SESSION_DELETED"
	UpdateNewMessage          UpdateType = "NEW_MESSAGE"
)

var knownUpdateTypes = map[UpdateType]struct{}{
	UpdatePlayerJoined:        {},
	UpdatePlayerLeft:          {},
	UpdateCharacterCreated:    {},
	UpdateCharacterUpdated:    {},
	UpdateAllCharactersReady:  {},
	UpdateSessionStateChanged: {},
	UpdateVoteReceived:        {},
	UpdateChapterChanged:      {},
	UpdateStoryEnded:          {},
	UpdateGameStarted:         {},
	UpdateCombatStarted:       {},
	UpdateAttackMade:          {},
	UpdateCharacterDied:       {},
	UpdateCharacterRevived:    {},
	UpdateReviveFailed:        {},
	UpdateVoteFinalized:       {},
	UpdateTieDetected:         {},
	UpdateSessionDeleted:      {},
	UpdateNewMessage:          {},
}

// Valid reports whether t belongs to the closed set of update types
func (t UpdateType) Valid() bool {
	_, ok := knownUpdateTypes[t]
	return ok
}

// UpdateEvent is one client-visible state change, addressable by cursor
type UpdateEvent struct {
	// ID is a global, monotonically increasing decimal cursor assigned on append
	ID string `json:"id"`

	// SessionID is the owning session
	SessionID string `json:"session_id"`

	// Type is the kind of change
	Type UpdateType `json:"type"`

	// Timestamp is when the change happened
	Timestamp time.Time `json:"timestamp"`

	// Payload is an opaque JSON object describing the change
	Payload json.RawMessage `json:"payload,omitempty"`
}
