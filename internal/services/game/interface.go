package game

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/taleforge/internal/services/game Service

import (
	"context"

	"github.com/KirkDiggler/taleforge/internal/models"
)

// Service defines the interface for story session operations.
// Every operation that takes a UserID trusts it as the verified caller.
type Service interface {
	// CreateSession creates a session with the caller as owner and first participant
	CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error)

	// JoinSession adds the caller to a session found by ID or join code
	JoinSession(ctx context.Context, input *JoinSessionInput) (*JoinSessionOutput, error)

	// LeaveSession removes a non-owner participant
	LeaveSession(ctx context.Context, input *LeaveSessionInput) (*LeaveSessionOutput, error)

	// DeleteSession removes a session with its combat record and event streams
	DeleteSession(ctx context.Context, input *DeleteSessionInput) (*DeleteSessionOutput, error)

	// TransitionToCreatingCharacters closes the lobby phase
	TransitionToCreatingCharacters(ctx context.Context, input *TransitionToCreatingCharactersInput) (*TransitionToCreatingCharactersOutput, error)

	// BindCharacter binds one of the caller's characters to the session
	BindCharacter(ctx context.Context, input *BindCharacterInput) (*BindCharacterOutput, error)

	// CanStartSession reports whether every participant has a complete character
	CanStartSession(ctx context.Context, input *CanStartSessionInput) (*CanStartSessionOutput, error)

	// StartSession locks the session and enters the first chapter
	StartSession(ctx context.Context, input *StartSessionInput) (*StartSessionOutput, error)

	// GetGameState returns the current chapter, roster and round
	GetGameState(ctx context.Context, input *GetGameStateInput) (*GetGameStateOutput, error)

	// GetTimelineHistory returns the narrative history of a session
	GetTimelineHistory(ctx context.Context, input *GetTimelineHistoryInput) (*GetTimelineHistoryOutput, error)

	// Vote casts the caller's character vote for an option of the current chapter
	Vote(ctx context.Context, input *VoteInput) (*VoteOutput, error)

	// GetVoteStatus summarizes the current round
	GetVoteStatus(ctx context.Context, input *GetVoteStatusInput) (*GetVoteStatusOutput, error)

	// ResolveTie settles a tied round on behalf of the owner
	ResolveTie(ctx context.Context, input *ResolveTieInput) (*ResolveTieOutput, error)

	// ForceResolveRound ends the current round without waiting for more votes
	ForceResolveRound(ctx context.Context, input *ForceResolveRoundInput) (*ForceResolveRoundOutput, error)

	// InitiateCombat starts a fight on the current combat chapter
	InitiateCombat(ctx context.Context, input *InitiateCombatInput) (*InitiateCombatOutput, error)

	// GetCombatState returns the combat record of a session
	GetCombatState(ctx context.Context, input *GetCombatStateInput) (*GetCombatStateOutput, error)

	// RollInitiative rolls initiative for one of the caller's characters
	RollInitiative(ctx context.Context, input *RollInitiativeInput) (*RollInitiativeOutput, error)

	// GetCurrentTurn reports whose turn it is
	GetCurrentTurn(ctx context.Context, input *GetCurrentTurnInput) (*GetCurrentTurnOutput, error)

	// PerformAttack resolves an attack by the acting player
	PerformAttack(ctx context.Context, input *PerformAttackInput) (*PerformAttackOutput, error)

	// SkipTurn lets the acting player recover a little HP instead of attacking
	SkipTurn(ctx context.Context, input *SkipTurnInput) (*SkipTurnOutput, error)

	// AttemptRevive tries to bring a dead player character back
	AttemptRevive(ctx context.Context, input *AttemptReviveInput) (*AttemptReviveOutput, error)

	// CheckGameUpdates returns updates after a cursor
	CheckGameUpdates(ctx context.Context, input *CheckGameUpdatesInput) (*CheckGameUpdatesOutput, error)

	// UpdatePlayerStatus records a heartbeat from the caller
	UpdatePlayerStatus(ctx context.Context, input *UpdatePlayerStatusInput) (*UpdatePlayerStatusOutput, error)

	// RecordUpdate appends an update on behalf of a collaborator such as chat
	RecordUpdate(ctx context.Context, input *RecordUpdateInput) (*models.UpdateEvent, error)

	// RecordTimelineEntry appends a timeline entry on behalf of a collaborator
	RecordTimelineEntry(ctx context.Context, input *RecordTimelineEntryInput) (*models.TimelineEntry, error)

	// SweepOfflineParticipants demotes participants whose heartbeat went stale
	SweepOfflineParticipants(ctx context.Context, input *SweepOfflineParticipantsInput) (*SweepOfflineParticipantsOutput, error)

	// SweepVotingTimeouts force-resolves rounds that outlived their voting timeout
	SweepVotingTimeouts(ctx context.Context, input *SweepVotingTimeoutsInput) (*SweepVotingTimeoutsOutput, error)

	// PurgeExpiredEvents applies the retention windows to the event log
	PurgeExpiredEvents(ctx context.Context, input *PurgeExpiredEventsInput) (*PurgeExpiredEventsOutput, error)
}

// Notifier receives every update after it was durably recorded.
// Failures are logged and never fail the operation.
type Notifier interface {
	Notify(ctx context.Context, session *models.Session, update *models.UpdateEvent) error
}
