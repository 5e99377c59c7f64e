package models

import (
	"time"
)

// SessionStatus represents the lifecycle state of a story session
type SessionStatus string

const (
	// SessionStatusWaitingPlayers indicates the session is gathering players
	SessionStatusWaitingPlayers SessionStatus = "WAITING_PLAYERS"

	// SessionStatusCreatingCharacters indicates players are binding characters
	SessionStatusCreatingCharacters SessionStatus = "CREATING_CHARACTERS"

	// SessionStatusInProgress indicates the story is being played
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"

	// SessionStatusCompleted indicates the story reached a final chapter
	SessionStatusCompleted SessionStatus = "COMPLETED"
)

// sessionStatusOrder is the only permitted forward sequence of statuses
var sessionStatusOrder = map[SessionStatus]int{
	SessionStatusWaitingPlayers:     0,
	SessionStatusCreatingCharacters: 1,
	SessionStatusInProgress:         2,
	SessionStatusCompleted:          3,
}

// CanTransitionTo reports whether moving from s to next respects the forward-only order.
// Skipping forward (e.g. IN_PROGRESS straight to COMPLETED) is allowed, revisiting is not.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	from, ok := sessionStatusOrder[s]
	if !ok {
		return false
	}
	to, ok := sessionStatusOrder[next]
	if !ok {
		return false
	}
	return to > from
}

// TieResolutionStrategy decides how a tied voting round is settled
type TieResolutionStrategy string

const (
	// TieResolutionRevote clears the round and lets everybody vote again
	TieResolutionRevote TieResolutionStrategy = "REVOTE"

	// TieResolutionRandom picks uniformly among the tied options
	TieResolutionRandom TieResolutionStrategy = "RANDOM"

	// TieResolutionMasterDecides lets the session owner pick among the tied options
	TieResolutionMasterDecides TieResolutionStrategy = "MASTER_DECIDES"
)

// Valid reports whether the strategy is one of the known values
func (t TieResolutionStrategy) Valid() bool {
	switch t {
	case TieResolutionRevote, TieResolutionRandom, TieResolutionMasterDecides:
		return true
	}
	return false
}

// Session is one playthrough of a story by a group of players
type Session struct {
	// ID is the unique identifier for the session
	ID string `json:"id"`

	// JoinCode is the short human code players use to join
	JoinCode string `json:"join_code"`

	// Name is the display name chosen by the owner
	Name string `json:"name"`

	// OwnerID is the user ID of the session owner (the "master")
	OwnerID string `json:"owner_id"`

	// MaxPlayers caps the number of participants
	MaxPlayers int `json:"max_players"`

	// Status is the current lifecycle state
	Status SessionStatus `json:"status"`

	// StoryID identifies the story graph being played
	StoryID string `json:"story_id"`

	// CurrentChapterID is the chapter the party is currently in
	CurrentChapterID string `json:"current_chapter_id,omitempty"`

	// IsLocked blocks new joins once the story has started
	IsLocked bool `json:"is_locked"`

	// Participants is the ordered roster, unique by user ID
	Participants []*Participant `json:"participants"`

	// Votes holds the votes of the current round only
	Votes []*Vote `json:"votes"`

	// TieResolutionStrategy is the default strategy for tied rounds
	TieResolutionStrategy TieResolutionStrategy `json:"tie_resolution_strategy"`

	// VotingTimeoutMinutes forces a round resolution after this long (0 disables)
	VotingTimeoutMinutes int `json:"voting_timeout_minutes"`

	// RoundStartedAt is when the current voting round opened
	RoundStartedAt *time.Time `json:"round_started_at,omitempty"`

	// PendingTie is set while a tied round awaits resolution
	PendingTie *PendingTie `json:"pending_tie,omitempty"`

	// CreatedAt is when the session was created
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the session was last mutated
	UpdatedAt time.Time `json:"updated_at"`
}

// PendingTie records the options tied for the highest vote count
type PendingTie struct {
	// OptionIDs are the tied option IDs in chapter order
	OptionIDs []string `json:"option_ids"`

	// VoteCount is the shared highest count
	VoteCount int `json:"vote_count"`

	// DetectedAt is when the tie was detected
	DetectedAt time.Time `json:"detected_at"`
}

// GetParticipant returns the participant for a user, or nil
func (s *Session) GetParticipant(userID string) *Participant {
	for _, p := range s.Participants {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

// GetParticipantByCharacter returns the participant bound to a character, or nil
func (s *Session) GetParticipantByCharacter(characterID string) *Participant {
	if characterID == "" {
		return nil
	}
	for _, p := range s.Participants {
		if p.CharacterID == characterID {
			return p
		}
	}
	return nil
}

// IsOwner reports whether the user owns the session
func (s *Session) IsOwner(userID string) bool {
	return s.OwnerID == userID
}

// OnlineParticipants is the single source of truth for who counts toward a round.
func (s *Session) OnlineParticipants() []*Participant {
	online := make([]*Participant, 0, len(s.Participants))
	for _, p := range s.Participants {
		if p.IsOnline {
			online = append(online, p)
		}
	}
	return online
}

// GetVote returns the vote cast by a character this round, or nil
func (s *Session) GetVote(characterID string) *Vote {
	for _, v := range s.Votes {
		if v.CharacterID == characterID {
			return v
		}
	}
	return nil
}

// RemoveVotesBy drops any vote cast by the given user and clears their flag.
// It returns true if a vote was removed.
func (s *Session) RemoveVotesBy(userID string) bool {
	removed := false
	kept := make([]*Vote, 0, len(s.Votes))
	for _, v := range s.Votes {
		if v.UserID == userID {
			removed = true
			continue
		}
		kept = append(kept, v)
	}
	s.Votes = kept
	if p := s.GetParticipant(userID); p != nil {
		p.HasVoted = false
	}
	return removed
}

// ResetRound clears every vote and voted flag
func (s *Session) ResetRound() {
	s.Votes = []*Vote{}
	s.PendingTie = nil
	for _, p := range s.Participants {
		p.HasVoted = false
	}
}
