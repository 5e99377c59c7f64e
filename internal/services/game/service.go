package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/KirkDiggler/taleforge/internal/common/clock"
	"github.com/KirkDiggler/taleforge/internal/common/joincode"
	"github.com/KirkDiggler/taleforge/internal/common/keylock"
	"github.com/KirkDiggler/taleforge/internal/common/uuid"
	"github.com/KirkDiggler/taleforge/internal/dice"
	"github.com/KirkDiggler/taleforge/internal/encounter"
	"github.com/KirkDiggler/taleforge/internal/models"
	characterRepo "github.com/KirkDiggler/taleforge/internal/repositories/character"
	combatRepo "github.com/KirkDiggler/taleforge/internal/repositories/combat"
	eventsRepo "github.com/KirkDiggler/taleforge/internal/repositories/events"
	sessionRepo "github.com/KirkDiggler/taleforge/internal/repositories/session"
	storyRepo "github.com/KirkDiggler/taleforge/internal/repositories/story"
	"github.com/rs/zerolog/log"
)

// service implements the Service interface
type service struct {
	sessionRepo   sessionRepo.Repository
	combatRepo    combatRepo.Repository
	eventRepo     eventsRepo.Repository
	characterRepo characterRepo.Repository
	storyProvider storyRepo.Provider

	encounters encounter.Generator
	diceRoller dice.Roller
	clock      clock.Clock
	uuidGen    uuid.UUID
	joinCodes  joincode.Generator
	notifier   Notifier

	// locks linearizes mutations per session ID
	locks *keylock.KeyLock

	defaultMaxPlayers int
	offlineThreshold  time.Duration
	skipTurnHeal      int
	updateRetention   time.Duration
	timelineRetention time.Duration
}

// New creates a new game service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.SessionRepo == nil {
		return nil, ErrNilSessionRepo
	}

	if cfg.CombatRepo == nil {
		return nil, ErrNilCombatRepo
	}

	if cfg.EventRepo == nil {
		return nil, ErrNilEventRepo
	}

	if cfg.CharacterRepo == nil {
		return nil, ErrNilCharacterRepo
	}

	if cfg.StoryProvider == nil {
		return nil, ErrNilStoryProvider
	}

	if cfg.DiceRoller == nil {
		return nil, ErrNilDiceRoller
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}

	if cfg.JoinCodeGenerator == nil {
		return nil, ErrNilJoinCodeGenerator
	}

	svc := &service{
		sessionRepo:       cfg.SessionRepo,
		combatRepo:        cfg.CombatRepo,
		eventRepo:         cfg.EventRepo,
		characterRepo:     cfg.CharacterRepo,
		storyProvider:     cfg.StoryProvider,
		encounters:        cfg.EncounterGenerator,
		diceRoller:        cfg.DiceRoller,
		clock:             cfg.Clock,
		uuidGen:           cfg.UUIDGenerator,
		joinCodes:         cfg.JoinCodeGenerator,
		notifier:          cfg.Notifier,
		locks:             keylock.New(),
		defaultMaxPlayers: cfg.DefaultMaxPlayers,
		offlineThreshold:  cfg.OfflineThreshold,
		skipTurnHeal:      cfg.SkipTurnHeal,
		updateRetention:   cfg.UpdateRetention,
		timelineRetention: cfg.TimelineRetention,
	}

	// Set default values if not provided
	if svc.encounters == nil {
		svc.encounters = encounter.New()
	}
	if svc.defaultMaxPlayers == 0 {
		svc.defaultMaxPlayers = DefaultMaxPlayers
	}
	if svc.offlineThreshold == 0 {
		svc.offlineThreshold = DefaultOfflineThreshold
	}
	if svc.skipTurnHeal == 0 {
		svc.skipTurnHeal = DefaultSkipTurnHeal
	}
	if svc.updateRetention == 0 {
		svc.updateRetention = DefaultUpdateRetention
	}
	if svc.timelineRetention == 0 {
		svc.timelineRetention = DefaultTimelineRetention
	}

	if svc.defaultMaxPlayers < MinPlayers || svc.defaultMaxPlayers > MaxPlayers {
		return nil, fmt.Errorf("default max players must be between %d and %d", MinPlayers, MaxPlayers)
	}

	return svc, nil
}

// pendingUpdate is an update waiting for its mutation to be saved
type pendingUpdate struct {
	updateType models.UpdateType
	payload    any
}

// txn collects one operation's mutations so that state and events are written
// together at the end of the critical section.
type txn struct {
	now     time.Time
	session *models.Session

	combat     *models.CombatState
	saveCombat bool
	dropCombat bool

	timeline []*models.TimelineEntry
	updates  []pendingUpdate
}

func (s *service) begin(session *models.Session) *txn {
	return &txn{
		now:     s.clock.Now(),
		session: session,
	}
}

// emit queues a client-visible update
func (t *txn) emit(updateType models.UpdateType, payload any) {
	t.updates = append(t.updates, pendingUpdate{updateType: updateType, payload: payload})
}

// record queues a timeline entry for the session
func (t *txn) record(kind models.TimelineEntryKind, chapterID string, fill func(e *models.TimelineEntry)) {
	entry := &models.TimelineEntry{
		SessionID: t.session.ID,
		ChapterID: chapterID,
		Kind:      kind,
		Timestamp: t.now,
	}
	if fill != nil {
		fill(entry)
	}
	t.timeline = append(t.timeline, entry)
}

// putCombat marks the combat record for saving
func (t *txn) putCombat(combat *models.CombatState) {
	t.combat = combat
	t.saveCombat = true
	t.dropCombat = false
}

// deleteCombat marks the combat record for removal
func (t *txn) deleteCombat() {
	t.saveCombat = false
	t.dropCombat = true
}

// commit writes the session, the combat record and the queued events in that order.
// An event append failure fails the operation even though the state was saved.
func (s *service) commit(ctx context.Context, t *txn) error {
	t.session.UpdatedAt = t.now
	if err := s.sessionRepo.SaveSession(ctx, &sessionRepo.SaveSessionInput{
		Session: t.session,
	}); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	if t.saveCombat && t.combat != nil {
		if err := s.combatRepo.SaveCombat(ctx, &combatRepo.SaveCombatInput{
			Combat: t.combat,
		}); err != nil {
			return fmt.Errorf("failed to save combat: %w", err)
		}
	}

	if t.dropCombat {
		if err := s.combatRepo.DeleteCombat(ctx, &combatRepo.DeleteCombatInput{
			SessionID: t.session.ID,
		}); err != nil {
			return fmt.Errorf("failed to delete combat: %w", err)
		}
	}

	for _, entry := range t.timeline {
		if _, err := s.eventRepo.AppendTimelineEntry(ctx, &eventsRepo.AppendTimelineEntryInput{
			Entry: entry,
		}); err != nil {
			return fmt.Errorf("failed to record timeline entry: %w", err)
		}
	}

	appended := make([]*models.UpdateEvent, 0, len(t.updates))
	for _, pending := range t.updates {
		update, err := s.appendUpdate(ctx, t.session.ID, pending.updateType, pending.payload, t.now)
		if err != nil {
			return err
		}
		appended = append(appended, update)
	}

	for _, update := range appended {
		s.notify(ctx, t.session, update)
	}

	return nil
}

func (s *service) appendUpdate(ctx context.Context, sessionID string, updateType models.UpdateType, payload any, at time.Time) (*models.UpdateEvent, error) {
	var raw json.RawMessage
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", updateType, err)
		}
		raw = encoded
	}

	update, err := s.eventRepo.AppendUpdate(ctx, &eventsRepo.AppendUpdateInput{
		Update: &models.UpdateEvent{
			SessionID: sessionID,
			Type:      updateType,
			Timestamp: at,
			Payload:   raw,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record %s update: %w", updateType, err)
	}

	return update, nil
}

func (s *service) notify(ctx context.Context, session *models.Session, update *models.UpdateEvent) {
	if s.notifier == nil {
		return
	}

	if err := s.notifier.Notify(ctx, session, update); err != nil {
		log.Warn().Err(err).
			Str("session_id", session.ID).
			Str("update_type", string(update.Type)).
			Msg("failed to notify update")
	}
}

// getSession loads a session, translating a missing record into NotFound
func (s *service) getSession(ctx context.Context, sessionID string) (*models.Session, error) {
	if sessionID == "" {
		return nil, newError(KindInvalidParams, "session ID is required")
	}

	session, err := s.sessionRepo.GetSession(ctx, &sessionRepo.GetSessionInput{
		SessionID: sessionID,
	})
	if err != nil {
		if errors.Is(err, sessionRepo.ErrSessionNotFound) {
			return nil, newError(KindNotFound, "session %s not found", sessionID)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// lockSession acquires the session lock and loads the session under it
func (s *service) lockSession(ctx context.Context, sessionID string) (*models.Session, func(), error) {
	if sessionID == "" {
		return nil, nil, newError(KindInvalidParams, "session ID is required")
	}

	unlock := s.locks.Lock(sessionID)
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		unlock()
		return nil, nil, err
	}

	return session, unlock, nil
}

// requireParticipant returns the caller's participant record or Forbidden
func requireParticipant(session *models.Session, userID string) (*models.Participant, error) {
	if userID == "" {
		return nil, newError(KindUnauthorized, "caller is not authenticated")
	}

	participant := session.GetParticipant(userID)
	if participant == nil {
		return nil, newError(KindForbidden, "user %s is not a participant of session %s", userID, session.ID)
	}

	return participant, nil
}

// requireOwner returns Forbidden unless the caller owns the session
func requireOwner(session *models.Session, userID string) error {
	if userID == "" {
		return newError(KindUnauthorized, "caller is not authenticated")
	}

	if !session.IsOwner(userID) {
		return newError(KindForbidden, "only the session owner can do this")
	}

	return nil
}

// transition moves the session forward, refusing anything that would regress
func transition(t *txn, next models.SessionStatus) error {
	previous := t.session.Status
	if !previous.CanTransitionTo(next) {
		return newError(KindInvalidState, "session cannot move from %s to %s", previous, next)
	}

	t.session.Status = next
	log.Info().
		Str("session_id", t.session.ID).
		Str("from", string(previous)).
		Str("to", string(next)).
		Msg("session status changed")

	return nil
}

func (s *service) getStory(ctx context.Context, storyID string) (*models.Story, error) {
	story, err := s.storyProvider.GetStory(ctx, &storyRepo.GetStoryInput{
		StoryID: storyID,
	})
	if err != nil {
		if errors.Is(err, storyRepo.ErrStoryNotFound) {
			return nil, newError(KindNotFound, "story %s not found", storyID)
		}
		return nil, fmt.Errorf("failed to get story: %w", err)
	}

	return story, nil
}

// currentChapter resolves the story and the chapter the session is in
func (s *service) currentChapter(ctx context.Context, session *models.Session) (*models.Story, *models.Chapter, error) {
	story, err := s.getStory(ctx, session.StoryID)
	if err != nil {
		return nil, nil, err
	}

	chapter := story.GetChapter(session.CurrentChapterID)
	if chapter == nil {
		return nil, nil, fmt.Errorf("chapter %s missing from story %s", session.CurrentChapterID, story.ID)
	}

	return story, chapter, nil
}

// findCombat returns the combat record of a session, or nil when there is none
func (s *service) findCombat(ctx context.Context, sessionID string) (*models.CombatState, error) {
	combat, err := s.combatRepo.GetCombat(ctx, &combatRepo.GetCombatInput{
		SessionID: sessionID,
	})
	if err != nil {
		if errors.Is(err, combatRepo.ErrCombatNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get combat: %w", err)
	}

	return combat, nil
}

func (s *service) getCharacter(ctx context.Context, characterID string) (*models.Character, error) {
	character, err := s.characterRepo.GetCharacter(ctx, &characterRepo.GetCharacterInput{
		CharacterID: characterID,
	})
	if err != nil {
		if errors.Is(err, characterRepo.ErrCharacterNotFound) {
			return nil, newError(KindNotFound, "character %s not found", characterID)
		}
		return nil, fmt.Errorf("failed to get character: %w", err)
	}

	return character, nil
}
