package game

import (
	"context"
	"fmt"
	"time"

	"github.com/KirkDiggler/taleforge/internal/models"
	eventsRepo "github.com/KirkDiggler/taleforge/internal/repositories/events"
	sessionRepo "github.com/KirkDiggler/taleforge/internal/repositories/session"
	"github.com/rs/zerolog/log"
)

// CheckGameUpdates returns updates after a cursor. Reads take no lock: the
// event log only ever grows at the tail.
func (s *service) CheckGameUpdates(ctx context.Context, input *CheckGameUpdatesInput) (*CheckGameUpdatesOutput, error) {
	if input == nil {
		return nil, newError(KindInvalidParams, "input cannot be nil")
	}

	if input.Limit < 0 {
		return nil, newError(KindInvalidParams, "limit cannot be negative")
	}

	afterID, err := eventsRepo.ParseCursor(input.LastUpdateID)
	if err != nil {
		return nil, newError(KindInvalidParams, "invalid cursor %q", input.LastUpdateID)
	}

	session, err := s.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	if _, err := requireParticipant(session, input.UserID); err != nil {
		return nil, err
	}

	page, err := s.eventRepo.GetUpdates(ctx, &eventsRepo.GetUpdatesInput{
		SessionID: session.ID,
		AfterID:   afterID,
		Limit:     input.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get updates: %w", err)
	}

	lastID := input.LastUpdateID
	if n := len(page.Updates); n > 0 {
		lastID = page.Updates[n-1].ID
	}

	return &CheckGameUpdatesOutput{
		Updates:      page.Updates,
		LastUpdateID: lastID,
		HasMore:      page.HasMore,
	}, nil
}

// UpdatePlayerStatus records a heartbeat from the caller
func (s *service) UpdatePlayerStatus(ctx context.Context, input *UpdatePlayerStatusInput) (*UpdatePlayerStatusOutput, error) {
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

	t := s.begin(session)
	reconnected := !participant.IsOnline
	participant.IsOnline = true
	participant.LastActivity = t.now

	if reconnected {
		t.emit(models.UpdatePlayerJoined, map[string]any{
			"user_id":     participant.UserID,
			"username":    participant.Username,
			"reconnected": true,
		})
	}

	if err := s.commit(ctx, t); err != nil {
		return nil, err
	}

	return &UpdatePlayerStatusOutput{
		Reconnected: reconnected,
	}, nil
}

// RecordUpdate appends an update on behalf of a collaborator such as chat
func (s *service) RecordUpdate(ctx context.Context, input *RecordUpdateInput) (*models.UpdateEvent, error) {
	if input == nil {
		return nil, newError(KindInvalidParams, "input cannot be nil")
	}

	if !input.Type.Valid() {
		return nil, newError(KindInvalidParams, "unknown update type %q", input.Type)
	}

	session, err := s.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	update, err := s.appendUpdate(ctx, session.ID, input.Type, input.Payload, s.clock.Now())
	if err != nil {
		return nil, err
	}
	s.notify(ctx, session, update)

	return update, nil
}

// RecordTimelineEntry appends a timeline entry on behalf of a collaborator
func (s *service) RecordTimelineEntry(ctx context.Context, input *RecordTimelineEntryInput) (*models.TimelineEntry, error) {
	if input == nil || input.Entry == nil {
		return nil, newError(KindInvalidParams, "entry cannot be nil")
	}

	entry := *input.Entry
	switch entry.Kind {
	case models.TimelineEntryStory, models.TimelineEntryChoiceResult, models.TimelineEntrySystemMessage:
	default:
		return nil, newError(KindInvalidParams, "unknown timeline entry kind %q", entry.Kind)
	}

	if _, err := s.getSession(ctx, entry.SessionID); err != nil {
		return nil, err
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.clock.Now()
	}

	appended, err := s.eventRepo.AppendTimelineEntry(ctx, &eventsRepo.AppendTimelineEntryInput{
		Entry: &entry,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record timeline entry: %w", err)
	}

	return appended, nil
}

func (s *service) activeSessionIDs(ctx context.Context) ([]string, error) {
	out, err := s.sessionRepo.ListActiveSessionIDs(ctx, &sessionRepo.ListActiveSessionIDsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}
	return out.SessionIDs, nil
}

// SweepOfflineParticipants demotes participants whose heartbeat went stale. A
// demoted participant's vote is withdrawn, so the round can complete without it.
func (s *service) SweepOfflineParticipants(ctx context.Context, input *SweepOfflineParticipantsInput) (*SweepOfflineParticipantsOutput, error) {
	threshold := s.offlineThreshold
	if input != nil && input.Threshold > 0 {
		threshold = input.Threshold
	}

	sessionIDs, err := s.activeSessionIDs(ctx)
	if err != nil {
		return nil, err
	}

	out := &SweepOfflineParticipantsOutput{}
	for _, sessionID := range sessionIDs {
		demoted, err := s.sweepSession(ctx, sessionID, threshold)
		if err != nil {
			if IsKind(err, KindNotFound) {
				continue
			}
			return out, err
		}
		out.SessionsChecked++
		out.Demoted += demoted
	}

	if out.Demoted > 0 {
		log.Info().
			Int("sessions", out.SessionsChecked).
			Int("demoted", out.Demoted).
			Msg("offline participants demoted")
	}

	return out, nil
}

func (s *service) sweepSession(ctx context.Context, sessionID string, threshold time.Duration) (int, error) {
	session, unlock, err := s.lockSession(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	defer unlock()

	t := s.begin(session)
	cutoff := t.now.Add(-threshold)

	demoted := 0
	for _, p := range session.Participants {
		if !p.IsOnline || !p.LastActivity.Before(cutoff) {
			continue
		}

		p.IsOnline = false
		session.RemoveVotesBy(p.UserID)
		demoted++

		t.emit(models.UpdatePlayerLeft, map[string]any{
			"user_id":  p.UserID,
			"username": p.Username,
			"reason":   "timeout",
		})
	}

	if demoted == 0 {
		return 0, nil
	}

	if _, err := s.checkRoundComplete(ctx, t); err != nil {
		return 0, err
	}

	if err := s.commit(ctx, t); err != nil {
		return 0, err
	}

	return demoted, nil
}

// SweepVotingTimeouts force-resolves rounds that outlived their voting timeout
func (s *service) SweepVotingTimeouts(ctx context.Context, input *SweepVotingTimeoutsInput) (*SweepVotingTimeoutsOutput, error) {
	sessionIDs, err := s.activeSessionIDs(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	out := &SweepVotingTimeoutsOutput{}
	for _, sessionID := range sessionIDs {
		session, err := s.getSession(ctx, sessionID)
		if err != nil {
			if IsKind(err, KindNotFound) {
				continue
			}
			return out, err
		}

		if !roundExpired(session, now) {
			continue
		}

		// the round may have moved on since the read above
		forced, err := s.ForceResolveRound(ctx, &ForceResolveRoundInput{
			SessionID:     sessionID,
			OnlyIfExpired: true,
		})
		if err != nil {
			// fights hold the round open until they are won
			if IsKind(err, KindInvalidState) || IsKind(err, KindNotFound) {
				log.Debug().Err(err).Str("session_id", sessionID).Msg("voting timeout skipped")
				continue
			}
			return out, err
		}
		if forced.Skipped {
			continue
		}
		out.Resolved++
	}

	return out, nil
}

// PurgeExpiredEvents applies the retention windows to the event log
func (s *service) PurgeExpiredEvents(ctx context.Context, input *PurgeExpiredEventsInput) (*PurgeExpiredEventsOutput, error) {
	updateRetention := s.updateRetention
	timelineRetention := s.timelineRetention
	if input != nil {
		if input.UpdateRetention > 0 {
			updateRetention = input.UpdateRetention
		}
		if input.TimelineRetention > 0 {
			timelineRetention = input.TimelineRetention
		}
	}

	now := s.clock.Now()
	purged, err := s.eventRepo.PurgeBefore(ctx, &eventsRepo.PurgeBeforeInput{
		UpdatesBefore:  now.Add(-updateRetention),
		TimelineBefore: now.Add(-timelineRetention),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to purge events: %w", err)
	}

	if purged.UpdatesDeleted > 0 || purged.TimelineDeleted > 0 {
		log.Info().
			Int("updates", purged.UpdatesDeleted).
			Int("timeline", purged.TimelineDeleted).
			Msg("expired events purged")
	}

	return &PurgeExpiredEventsOutput{
		UpdatesDeleted:  purged.UpdatesDeleted,
		TimelineDeleted: purged.TimelineDeleted,
	}, nil
}
