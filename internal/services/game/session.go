package game

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/KirkDiggler/taleforge/internal/models"
	combatRepo "github.com/KirkDiggler/taleforge/internal/repositories/combat"
	eventsRepo "github.com/KirkDiggler/taleforge/internal/repositories/events"
	sessionRepo "github.com/KirkDiggler/taleforge/internal/repositories/session"
	"github.com/rs/zerolog/log"
)

// CreateSession creates a session with the caller as owner and first participant
func (s *service) CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error) {
	if input == nil {
		return nil, newError(KindInvalidParams, "input cannot be nil")
	}

	if input.UserID == "" {
		return nil, newError(KindUnauthorized, "caller is not authenticated")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, newError(KindInvalidParams, "session name is required")
	}

	if input.StoryID == "" {
		return nil, newError(KindInvalidParams, "story ID is required")
	}

	maxPlayers := input.MaxPlayers
	if maxPlayers == 0 {
		maxPlayers = s.defaultMaxPlayers
	}
	if maxPlayers < MinPlayers || maxPlayers > MaxPlayers {
		return nil, newError(KindInvalidParams, "max players must be between %d and %d", MinPlayers, MaxPlayers)
	}

	strategy := input.TieResolutionStrategy
	if strategy == "" {
		strategy = models.TieResolutionRandom
	}
	if !strategy.Valid() {
		return nil, newError(KindInvalidParams, "unknown tie resolution strategy %q", strategy)
	}

	if input.VotingTimeoutMinutes < 0 {
		return nil, newError(KindInvalidParams, "voting timeout cannot be negative")
	}

	story, err := s.getStory(ctx, input.StoryID)
	if err != nil {
		return nil, err
	}

	sessionID := s.uuidGen.NewUUID()
	code, err := s.reserveJoinCode(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	username := input.Username
	if username == "" {
		username = input.UserID
	}

	session := &models.Session{
		ID:         sessionID,
		JoinCode:   code,
		Name:       name,
		OwnerID:    input.UserID,
		MaxPlayers: maxPlayers,
		Status:     models.SessionStatusWaitingPlayers,
		StoryID:    story.ID,
		Participants: []*models.Participant{
			{
				UserID:       input.UserID,
				Username:     username,
				IsOnline:     true,
				LastActivity: now,
				JoinedAt:     now,
			},
		},
		Votes:                 []*models.Vote{},
		TieResolutionStrategy: strategy,
		VotingTimeoutMinutes:  input.VotingTimeoutMinutes,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := s.sessionRepo.SaveSession(ctx, &sessionRepo.SaveSessionInput{
		Session: session,
	}); err != nil {
		if releaseErr := s.sessionRepo.ReleaseJoinCode(ctx, &sessionRepo.ReleaseJoinCodeInput{
			JoinCode:  code,
			SessionID: sessionID,
		}); releaseErr != nil {
			log.Warn().Err(releaseErr).Str("join_code", code).Msg("failed to release join code")
		}
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	log.Info().
		Str("session_id", session.ID).
		Str("join_code", session.JoinCode).
		Str("story_id", session.StoryID).
		Str("owner_id", session.OwnerID).
		Msg("session created")

	return &CreateSessionOutput{
		Session: session,
	}, nil
}

// reserveJoinCode draws codes until one is free
func (s *service) reserveJoinCode(ctx context.Context, sessionID string) (string, error) {
	for attempt := 0; attempt < maxJoinCodeAttempts; attempt++ {
		code := s.joinCodes.NewCode()

		ok, err := s.sessionRepo.ReserveJoinCode(ctx, &sessionRepo.ReserveJoinCodeInput{
			JoinCode:  code,
			SessionID: sessionID,
		})
		if err != nil {
			return "", fmt.Errorf("failed to reserve join code: %w", err)
		}
		if ok {
			return code, nil
		}
	}

	return "", fmt.Errorf("no free join code after %d attempts", maxJoinCodeAttempts)
}

// JoinSession adds the caller to a session found by ID or join code
func (s *service) JoinSession(ctx context.Context, input *JoinSessionInput) (*JoinSessionOutput, error) {
	if input == nil {
		return nil, newError(KindInvalidParams, "input cannot be nil")
	}

	if input.UserID == "" {
		return nil, newError(KindUnauthorized, "caller is not authenticated")
	}

	sessionID := input.SessionID
	if sessionID == "" {
		if input.JoinCode == "" {
			return nil, newError(KindInvalidParams, "session ID or join code is required")
		}

		byCode, err := s.sessionRepo.GetSessionByJoinCode(ctx, &sessionRepo.GetSessionByJoinCodeInput{
			JoinCode: strings.ToUpper(strings.TrimSpace(input.JoinCode)),
		})
		if err != nil {
			if errors.Is(err, sessionRepo.ErrSessionNotFound) {
				return nil, newError(KindNotFound, "no session with join code %s", input.JoinCode)
			}
			return nil, fmt.Errorf("failed to get session by join code: %w", err)
		}
		sessionID = byCode.ID
	}

	session, unlock, err := s.lockSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	t := s.begin(session)

	if existing := session.GetParticipant(input.UserID); existing != nil {
		wasOffline := !existing.IsOnline
		existing.IsOnline = true
		existing.LastActivity = t.now
		if wasOffline {
			t.emit(models.UpdatePlayerJoined, map[string]any{
				"user_id":     existing.UserID,
				"username":    existing.Username,
				"reconnected": true,
			})
		}

		if err := s.commit(ctx, t); err != nil {
			return nil, err
		}

		return &JoinSessionOutput{
			Session:       session,
			AlreadyJoined: true,
		}, nil
	}

	if session.IsLocked || session.Status == models.SessionStatusCompleted {
		return nil, newError(KindInvalidState, "session %s is locked", session.ID)
	}

	if len(session.Participants) >= session.MaxPlayers {
		return nil, newError(KindConflict, "session %s is full", session.ID)
	}

	username := input.Username
	if username == "" {
		username = input.UserID
	}

	session.Participants = append(session.Participants, &models.Participant{
		UserID:       input.UserID,
		Username:     username,
		IsOnline:     true,
		LastActivity: t.now,
		JoinedAt:     t.now,
	})

	t.emit(models.UpdatePlayerJoined, map[string]any{
		"user_id":     input.UserID,
		"username":    username,
		"reconnected": false,
	})

	if err := s.commit(ctx, t); err != nil {
		return nil, err
	}

	log.Info().
		Str("session_id", session.ID).
		Str("user_id", input.UserID).
		Int("participants", len(session.Participants)).
		Msg("player joined session")

	return &JoinSessionOutput{
		Session: session,
	}, nil
}

// LeaveSession removes a non-owner participant
func (s *service) LeaveSession(ctx context.Context, input *LeaveSessionInput) (*LeaveSessionOutput, error) {
	if input == nil {
		return nil, newError(KindInvalidParams, "input cannot be nil")
	}

	session, unlock, err := s.lockSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	participant, err := requireParticipant(session, input.UserID)
	if err != nil {
		return nil, err
	}

	if session.IsOwner(input.UserID) {
		return nil, newError(KindForbidden, "the owner cannot leave; delete the session instead")
	}

	if session.Status == models.SessionStatusCompleted {
		return nil, newError(KindInvalidState, "session %s is already completed", session.ID)
	}

	creating := session.Status == models.SessionStatusCreatingCharacters
	readyBefore := false
	if creating {
		if readyBefore, _, err = s.canStart(ctx, session); err != nil {
			return nil, err
		}
	}

	t := s.begin(session)

	session.RemoveVotesBy(participant.UserID)
	kept := make([]*models.Participant, 0, len(session.Participants))
	for _, p := range session.Participants {
		if p.UserID != participant.UserID {
			kept = append(kept, p)
		}
	}
	session.Participants = kept

	t.emit(models.UpdatePlayerLeft, map[string]any{
		"user_id":  participant.UserID,
		"username": participant.Username,
		"reason":   "left",
	})

	// the leaver may have been the last one without a character
	if creating && !readyBefore {
		ready, _, err := s.canStart(ctx, session)
		if err != nil {
			return nil, err
		}
		if ready {
			t.emit(models.UpdateAllCharactersReady, map[string]any{
				"participants": len(session.Participants),
			})
		}
	}

	if session.Status == models.SessionStatusInProgress {
		if err := s.forfeitCombatant(ctx, t, participant); err != nil {
			return nil, err
		}
		if _, err := s.checkRoundComplete(ctx, t); err != nil {
			return nil, err
		}
	}

	if err := s.commit(ctx, t); err != nil {
		return nil, err
	}

	log.Info().
		Str("session_id", session.ID).
		Str("user_id", participant.UserID).
		Msg("player left session")

	return &LeaveSessionOutput{
		Session: session,
	}, nil
}

// DeleteSession removes a session with its combat record and event streams.
// SESSION_DELETED is recorded and announced before the streams are dropped.
func (s *service) DeleteSession(ctx context.Context, input *DeleteSessionInput) (*DeleteSessionOutput, error) {
	if input == nil {
		return nil, newError(KindInvalidParams, "input cannot be nil")
	}

	session, unlock, err := s.lockSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := requireOwner(session, input.UserID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	update, err := s.appendUpdate(ctx, session.ID, models.UpdateSessionDeleted, map[string]any{
		"session_id": session.ID,
		"name":       session.Name,
	}, now)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, session, update)

	if err := s.combatRepo.DeleteCombat(ctx, &combatRepo.DeleteCombatInput{
		SessionID: session.ID,
	}); err != nil {
		return nil, fmt.Errorf("failed to delete combat: %w", err)
	}

	if err := s.eventRepo.DeleteSessionEvents(ctx, &eventsRepo.DeleteSessionEventsInput{
		SessionID: session.ID,
	}); err != nil {
		return nil, fmt.Errorf("failed to delete session events: %w", err)
	}

	if err := s.sessionRepo.DeleteSession(ctx, &sessionRepo.DeleteSessionInput{
		SessionID: session.ID,
	}); err != nil {
		return nil, fmt.Errorf("failed to delete session: %w", err)
	}

	log.Info().Str("session_id", session.ID).Msg("session deleted")

	return &DeleteSessionOutput{}, nil
}

// TransitionToCreatingCharacters closes the lobby phase
func (s *service) TransitionToCreatingCharacters(ctx context.Context, input *TransitionToCreatingCharactersInput) (*TransitionToCreatingCharactersOutput, error) {
	if input == nil {
		return nil, newError(KindInvalidParams, "input cannot be nil")
	}

	session, unlock, err := s.lockSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := requireOwner(session, input.UserID); err != nil {
		return nil, err
	}

	if session.Status != models.SessionStatusWaitingPlayers {
		return nil, newError(KindInvalidState, "session is %s, not %s", session.Status, models.SessionStatusWaitingPlayers)
	}

	if len(session.Participants) < MinPlayers {
		return nil, newError(KindInvalidState, "at least %d participants are required", MinPlayers)
	}

	t := s.begin(session)
	previous := session.Status
	if err := transition(t, models.SessionStatusCreatingCharacters); err != nil {
		return nil, err
	}

	t.emit(models.UpdateSessionStateChanged, map[string]any{
		"status":          session.Status,
		"previous_status": previous,
	})

	if err := s.commit(ctx, t); err != nil {
		return nil, err
	}

	return &TransitionToCreatingCharactersOutput{
		Session: session,
	}, nil
}

// BindCharacter binds one of the caller's characters to the session
func (s *service) BindCharacter(ctx context.Context, input *BindCharacterInput) (*BindCharacterOutput, error) {
	if input == nil {
		return nil, newError(KindInvalidParams, "input cannot be nil")
	}

	if input.CharacterID == "" {
		return nil, newError(KindInvalidParams, "character ID is required")
	}

	session, unlock, err := s.lockSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	participant, err := requireParticipant(session, input.UserID)
	if err != nil {
		return nil, err
	}

	if session.Status != models.SessionStatusCreatingCharacters {
		return nil, newError(KindInvalidState, "characters can only be bound while the session is %s", models.SessionStatusCreatingCharacters)
	}

	character, err := s.getCharacter(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}

	if character.UserID != input.UserID {
		return nil, newError(KindForbidden, "character %s does not belong to the caller", character.ID)
	}

	if character.SessionID != session.ID {
		return nil, newError(KindForbidden, "character %s was not created for this session", character.ID)
	}

	if other := session.GetParticipantByCharacter(character.ID); other != nil && other.UserID != participant.UserID {
		return nil, newError(KindConflict, "character %s is already bound", character.ID)
	}

	readyBefore, _, err := s.canStart(ctx, session)
	if err != nil {
		return nil, err
	}

	t := s.begin(session)
	rebind := participant.CharacterID != ""
	participant.CharacterID = character.ID
	participant.CharacterName = character.Name
	participant.Race = character.Race
	participant.Class = character.Class
	participant.LastActivity = t.now

	updateType := models.UpdateCharacterCreated
	if rebind {
		updateType = models.UpdateCharacterUpdated
	}
	t.emit(updateType, map[string]any{
		"user_id":        participant.UserID,
		"character_id":   character.ID,
		"character_name": character.Name,
		"race":           character.Race,
		"class":          character.Class,
		"is_complete":    character.IsComplete,
	})

	ready, _, err := s.canStart(ctx, session)
	if err != nil {
		return nil, err
	}
	if ready && !readyBefore {
		t.emit(models.UpdateAllCharactersReady, map[string]any{
			"participants": len(session.Participants),
		})
	}

	if err := s.commit(ctx, t); err != nil {
		return nil, err
	}

	return &BindCharacterOutput{
		Session:  session,
		AllReady: ready,
	}, nil
}

// canStart checks that every participant has exactly one complete character bound
// to this session. It returns the usernames still missing one.
func (s *service) canStart(ctx context.Context, session *models.Session) (bool, []string, error) {
	missing := []string{}
	for _, p := range session.Participants {
		if p.CharacterID == "" {
			missing = append(missing, p.Username)
			continue
		}

		character, err := s.getCharacter(ctx, p.CharacterID)
		if err != nil {
			if IsKind(err, KindNotFound) {
				missing = append(missing, p.Username)
				continue
			}
			return false, nil, err
		}

		if character.SessionID != session.ID || character.UserID != p.UserID || !character.IsComplete {
			missing = append(missing, p.Username)
		}
	}

	return len(missing) == 0 && len(session.Participants) > 0, missing, nil
}

// CanStartSession reports whether every participant has a complete character
func (s *service) CanStartSession(ctx context.Context, input *CanStartSessionInput) (*CanStartSessionOutput, error) {
	if input == nil {
		return nil, newError(KindInvalidParams, "input cannot be nil")
	}

	session, err := s.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	if _, err := requireParticipant(session, input.UserID); err != nil {
		return nil, err
	}

	ready, missing, err := s.canStart(ctx, session)
	if err != nil {
		return nil, err
	}

	return &CanStartSessionOutput{
		CanStart:            ready && session.Status == models.SessionStatusCreatingCharacters,
		MissingParticipants: missing,
	}, nil
}

// StartSession locks the session and enters the first chapter
func (s *service) StartSession(ctx context.Context, input *StartSessionInput) (*StartSessionOutput, error) {
	if input == nil {
		return nil, newError(KindInvalidParams, "input cannot be nil")
	}

	session, unlock, err := s.lockSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := requireOwner(session, input.UserID); err != nil {
		return nil, err
	}

	if session.Status != models.SessionStatusCreatingCharacters {
		return nil, newError(KindInvalidState, "session is %s, not %s", session.Status, models.SessionStatusCreatingCharacters)
	}

	ready, missing, err := s.canStart(ctx, session)
	if err != nil {
		return nil, err
	}
	if !ready {
		return nil, newError(KindInvalidState, "participants without a complete character: %s", strings.Join(missing, ", "))
	}

	story, err := s.getStory(ctx, session.StoryID)
	if err != nil {
		return nil, err
	}

	chapter := story.GetChapter(story.InitialChapterID)
	if chapter == nil {
		return nil, fmt.Errorf("initial chapter %s missing from story %s", story.InitialChapterID, story.ID)
	}

	t := s.begin(session)
	if err := transition(t, models.SessionStatusInProgress); err != nil {
		return nil, err
	}

	session.IsLocked = true
	session.CurrentChapterID = chapter.ID
	session.ResetRound()
	roundStart := t.now
	session.RoundStartedAt = &roundStart

	t.emit(models.UpdateGameStarted, map[string]any{
		"story_id":     story.ID,
		"story_title":  story.Title,
		"participants": len(session.Participants),
	})
	s.enterChapter(t, chapter)

	if err := s.commit(ctx, t); err != nil {
		return nil, err
	}

	return &StartSessionOutput{
		Session: session,
		Chapter: chapter,
	}, nil
}

// GetGameState returns the current chapter, roster and round
func (s *service) GetGameState(ctx context.Context, input *GetGameStateInput) (*GetGameStateOutput, error) {
	if input == nil {
		return nil, newError(KindInvalidParams, "input cannot be nil")
	}

	session, err := s.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	if _, err := requireParticipant(session, input.UserID); err != nil {
		return nil, err
	}

	out := &GetGameStateOutput{
		Session:    session,
		Votes:      session.Votes,
		PendingTie: session.PendingTie,
	}

	if session.CurrentChapterID == "" {
		return out, nil
	}

	_, chapter, err := s.currentChapter(ctx, session)
	if err != nil {
		return nil, err
	}
	out.Chapter = chapter
	out.IsFinalChapter = chapter.IsFinal()

	combat, err := s.findCombat(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	out.CombatActive = combat != nil && combat.IsActive

	return out, nil
}

// GetTimelineHistory returns the narrative history of a session
func (s *service) GetTimelineHistory(ctx context.Context, input *GetTimelineHistoryInput) (*GetTimelineHistoryOutput, error) {
	if input == nil {
		return nil, newError(KindInvalidParams, "input cannot be nil")
	}

	if input.Limit < 0 {
		return nil, newError(KindInvalidParams, "limit cannot be negative")
	}

	afterID, err := eventsRepo.ParseCursor(input.AfterID)
	if err != nil {
		return nil, newError(KindInvalidParams, "invalid cursor %q", input.AfterID)
	}

	session, err := s.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	if _, err := requireParticipant(session, input.UserID); err != nil {
		return nil, err
	}

	timeline, err := s.eventRepo.GetTimeline(ctx, &eventsRepo.GetTimelineInput{
		SessionID: session.ID,
		AfterID:   afterID,
		Limit:     input.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get timeline: %w", err)
	}

	lastID := input.AfterID
	if n := len(timeline.Entries); n > 0 {
		lastID = timeline.Entries[n-1].ID
	}

	return &GetTimelineHistoryOutput{
		Entries:     timeline.Entries,
		LastEntryID: lastID,
		HasMore:     timeline.HasMore,
	}, nil
}
