package game

import (
	"time"

	"github.com/KirkDiggler/taleforge/internal/common/clock"
	"github.com/KirkDiggler/taleforge/internal/common/joincode"
	"github.com/KirkDiggler/taleforge/internal/common/uuid"
	"github.com/KirkDiggler/taleforge/internal/dice"
	"github.com/KirkDiggler/taleforge/internal/encounter"
	"github.com/KirkDiggler/taleforge/internal/models"
	characterRepo "github.com/KirkDiggler/taleforge/internal/repositories/character"
	combatRepo "github.com/KirkDiggler/taleforge/internal/repositories/combat"
	eventsRepo "github.com/KirkDiggler/taleforge/internal/repositories/events"
	sessionRepo "github.com/KirkDiggler/taleforge/internal/repositories/session"
	storyRepo "github.com/KirkDiggler/taleforge/internal/repositories/story"
)

const (
	// MinPlayers is the smallest allowed session size
	MinPlayers = 2

	// MaxPlayers is the largest allowed session size
	MaxPlayers = 8

	// DefaultMaxPlayers is used when neither the caller nor the config picks a size
	DefaultMaxPlayers = 4

	// DefaultOfflineThreshold is how long a participant may go without a heartbeat
	DefaultOfflineThreshold = 5 * time.Minute

	// DefaultSkipTurnHeal is the HP a player recovers by skipping a turn
	DefaultSkipTurnHeal = 2

	// DefaultUpdateRetention is how long updates are kept
	DefaultUpdateRetention = 24 * time.Hour

	// DefaultTimelineRetention is how long timeline entries are kept
	DefaultTimelineRetention = 30 * 24 * time.Hour

	// maxJoinCodeAttempts bounds the search for a free join code
	maxJoinCodeAttempts = 10
)

// Config holds configuration for the game service
type Config struct {
	// DefaultMaxPlayers is used when CreateSession omits MaxPlayers
	DefaultMaxPlayers int

	// OfflineThreshold is the heartbeat age after which a participant goes offline
	OfflineThreshold time.Duration

	// SkipTurnHeal is the HP recovered by SkipTurn
	SkipTurnHeal int

	// UpdateRetention and TimelineRetention are the default retention windows
	UpdateRetention   time.Duration
	TimelineRetention time.Duration

	// Repository dependencies
	SessionRepo   sessionRepo.Repository
	CombatRepo    combatRepo.Repository
	EventRepo     eventsRepo.Repository
	CharacterRepo characterRepo.Repository
	StoryProvider storyRepo.Provider

	// Service dependencies
	EncounterGenerator encounter.Generator
	DiceRoller         dice.Roller
	Clock              clock.Clock
	UUIDGenerator      uuid.UUID
	JoinCodeGenerator  joincode.Generator

	// Notifier is optional
	Notifier Notifier
}

// CreateSessionInput contains parameters for creating a session
type CreateSessionInput struct {
	// UserID and Username identify the caller, who becomes the owner
	UserID   string
	Username string

	// Name is the display name of the session
	Name string

	// MaxPlayers caps the roster; 0 picks the configured default
	MaxPlayers int

	// StoryID selects the story graph
	StoryID string

	// TieResolutionStrategy is the default for tied rounds; empty means RANDOM
	TieResolutionStrategy models.TieResolutionStrategy

	// VotingTimeoutMinutes forces round resolution after this long; 0 disables
	VotingTimeoutMinutes int
}

// CreateSessionOutput contains the created session
type CreateSessionOutput struct {
	Session *models.Session
}

// JoinSessionInput identifies the session by ID or by join code
type JoinSessionInput struct {
	UserID    string
	Username  string
	SessionID string
	JoinCode  string
}

// JoinSessionOutput contains the joined session
type JoinSessionOutput struct {
	Session *models.Session

	// AlreadyJoined is set when the caller was already a participant
	AlreadyJoined bool
}

type LeaveSessionInput struct {
	UserID    string
	SessionID string
}

type LeaveSessionOutput struct {
	Session *models.Session
}

type DeleteSessionInput struct {
	UserID    string
	SessionID string
}

type DeleteSessionOutput struct {
}

type TransitionToCreatingCharactersInput struct {
	UserID    string
	SessionID string
}

type TransitionToCreatingCharactersOutput struct {
	Session *models.Session
}

type BindCharacterInput struct {
	UserID      string
	SessionID   string
	CharacterID string
}

type BindCharacterOutput struct {
	Session *models.Session

	// AllReady is set once every participant has a complete character
	AllReady bool
}

type CanStartSessionInput struct {
	UserID    string
	SessionID string
}

type CanStartSessionOutput struct {
	CanStart bool

	// MissingParticipants are the usernames still lacking a complete character
	MissingParticipants []string
}

type StartSessionInput struct {
	UserID    string
	SessionID string
}

type StartSessionOutput struct {
	Session *models.Session
	Chapter *models.Chapter
}

type GetGameStateInput struct {
	UserID    string
	SessionID string
}

// GetGameStateOutput composes everything a client needs to render the session
type GetGameStateOutput struct {
	Session        *models.Session
	Chapter        *models.Chapter
	IsFinalChapter bool
	Votes          []*models.Vote
	PendingTie     *models.PendingTie
	CombatActive   bool
}

type GetTimelineHistoryInput struct {
	UserID    string
	SessionID string

	// AfterID is an optional cursor
	AfterID string

	// Limit caps the page size; 0 returns everything
	Limit int
}

type GetTimelineHistoryOutput struct {
	Entries     []*models.TimelineEntry
	LastEntryID string
	HasMore     bool
}

type VoteInput struct {
	UserID      string
	SessionID   string
	CharacterID string
	OptionID    string
}

type VoteOutput struct {
	Vote *models.Vote

	// RoundComplete is set when this vote was the last one needed
	RoundComplete bool

	// Result is set when the round finalized with a winner
	Result *models.VotingResult

	// TieDetected is set when the round ended in a tie
	TieDetected bool
}

type GetVoteStatusInput struct {
	UserID    string
	SessionID string
}

// OptionTally is the vote count of one option
type OptionTally struct {
	OptionID   string
	Text       string
	Count      int
	Percentage int
}

type GetVoteStatusOutput struct {
	TotalOnline   int
	TotalVotes    int
	Options       []*OptionTally
	PendingVoters []string
	HasVoted      bool
	PendingTie    *models.PendingTie
}

type ResolveTieInput struct {
	UserID    string
	SessionID string

	// Strategy overrides the session default when set
	Strategy models.TieResolutionStrategy

	// MasterChoice is required for MASTER_DECIDES
	MasterChoice string
}

type ResolveTieOutput struct {
	// Result is nil when the round restarted
	Result *models.VotingResult
	Revote bool
}

type ForceResolveRoundInput struct {
	SessionID string

	// OnlyIfExpired leaves the round alone unless its voting timeout has
	// elapsed when the session lock is held
	OnlyIfExpired bool
}

type ForceResolveRoundOutput struct {
	Result *models.VotingResult
	Revote bool

	// Skipped is set when OnlyIfExpired found a round that is still open
	Skipped bool

	// TieDetected is set when the votes cast so far were tied
	TieDetected bool
}

type InitiateCombatInput struct {
	UserID    string
	SessionID string
}

type InitiateCombatOutput struct {
	Combat *models.CombatState
}

type GetCombatStateInput struct {
	UserID    string
	SessionID string
}

type GetCombatStateOutput struct {
	Combat *models.CombatState
}

type RollInitiativeInput struct {
	UserID      string
	SessionID   string
	CharacterID string
}

type RollInitiativeOutput struct {
	Roll       int
	Initiative int

	// TurnOrderReady is set once every combatant rolled and the order is fixed
	TurnOrderReady bool

	// EnemyActions are turns enemies played right after the order was fixed
	EnemyActions []*AttackResult

	Combat *models.CombatState
}

type GetCurrentTurnInput struct {
	UserID    string
	SessionID string
}

type GetCurrentTurnOutput struct {
	// Ready is false while initiative is still being rolled
	Ready          bool
	Kind           models.CombatantKind
	CombatantID    string
	Name           string
	TurnIndex      int
	CombatantCount int
	Round          int
}

type PerformAttackInput struct {
	UserID     string
	SessionID  string
	AttackerID string
	TargetID   string
}

// AttackResult describes one resolved attack
type AttackResult struct {
	AttackerID   string `json:"attacker_id"`
	AttackerName string `json:"attacker_name"`
	TargetID     string `json:"target_id"`
	TargetName   string `json:"target_name"`
	Roll         int    `json:"roll"`
	Total        int    `json:"total"`
	Hit          bool   `json:"hit"`
	Critical     bool   `json:"critical"`
	Fumble       bool   `json:"fumble"`
	Damage       int    `json:"damage"`
	SelfDamage   int    `json:"self_damage"`
	TargetHP     int    `json:"target_hp"`
	TargetDied   bool   `json:"target_died"`
}

type PerformAttackOutput struct {
	Attack *AttackResult

	// EnemyActions are the enemy turns played before control returned to a player
	EnemyActions []*AttackResult
	CombatOver   bool
	WinningSide  models.CombatSide
	Combat       *models.CombatState
}

type SkipTurnInput struct {
	UserID      string
	SessionID   string
	CharacterID string
}

type SkipTurnOutput struct {
	Healed       int
	HP           int
	EnemyActions []*AttackResult
	CombatOver   bool
	WinningSide  models.CombatSide
	Combat       *models.CombatState
}

type AttemptReviveInput struct {
	UserID      string
	SessionID   string
	CharacterID string
}

type AttemptReviveOutput struct {
	Rolls           []int
	Total           int
	Success         bool
	HP              int
	ReviveAttempts  int
	PermanentlyDead bool
}

type CheckGameUpdatesInput struct {
	UserID    string
	SessionID string

	// LastUpdateID is the last cursor the client saw; empty reads from the start
	LastUpdateID string

	// Limit caps the page size; 0 returns everything
	Limit int
}

type CheckGameUpdatesOutput struct {
	Updates      []*models.UpdateEvent
	LastUpdateID string
	HasMore      bool
}

type UpdatePlayerStatusInput struct {
	UserID    string
	SessionID string
}

type UpdatePlayerStatusOutput struct {
	// Reconnected is set when the caller was offline before this heartbeat
	Reconnected bool
}

type RecordUpdateInput struct {
	SessionID string
	Type      models.UpdateType
	Payload   any
}

type RecordTimelineEntryInput struct {
	Entry *models.TimelineEntry
}

type SweepOfflineParticipantsInput struct {
	// Threshold overrides the configured offline threshold when set
	Threshold time.Duration
}

type SweepOfflineParticipantsOutput struct {
	SessionsChecked int
	Demoted         int
}

type SweepVotingTimeoutsInput struct {
}

type SweepVotingTimeoutsOutput struct {
	Resolved int
}

type PurgeExpiredEventsInput struct {
	// Zero values fall back to the configured retention windows
	UpdateRetention   time.Duration
	TimelineRetention time.Duration
}

type PurgeExpiredEventsOutput struct {
	UpdatesDeleted  int
	TimelineDeleted int
}
