package models

import (
	"time"
)

// DecisionMethod describes how a round's winning option was chosen
type DecisionMethod string

const (
	// DecisionUnanimous means every vote went to the winner
	DecisionUnanimous DecisionMethod = "UNANIMOUS"

	// DecisionMajority means the winner had a strict plurality
	DecisionMajority DecisionMethod = "MAJORITY"

	// DecisionTieResolved means a tie was resolved by the owner or at random
	DecisionTieResolved DecisionMethod = "TIE_RESOLVED"

	// DecisionTimeout means the round ran out of time without any vote
	DecisionTimeout DecisionMethod = "TIMEOUT"

	// DecisionCombat means a combat outcome chose the next chapter
	DecisionCombat DecisionMethod = "COMBAT"
)

// Vote is one character's choice for the current round
type Vote struct {
	// CharacterID is the voting character
	CharacterID string `json:"character_id"`

	// UserID is the player controlling the character
	UserID string `json:"user_id"`

	// OptionID is the chosen option of the current chapter
	OptionID string `json:"option_id"`

	// Timestamp is when the vote was cast
	Timestamp time.Time `json:"timestamp"`
}

// VotingResult summarizes a finalized round
type VotingResult struct {
	// WinningOptionID is the option that advanced the story
	WinningOptionID string `json:"winning_option_id"`

	// DecisionMethod is how the winner was chosen
	DecisionMethod DecisionMethod `json:"decision_method"`

	// Counts maps option ID to number of votes
	Counts map[string]int `json:"counts"`

	// TotalVotes is the number of votes that were tallied
	TotalVotes int `json:"total_votes"`
}
