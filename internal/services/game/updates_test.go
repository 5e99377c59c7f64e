package game

import (
	"time"

	"github.com/KirkDiggler/taleforge/internal/models"
	eventsRepo "github.com/KirkDiggler/taleforge/internal/repositories/events"
)

func (s *GameServiceTestSuite) TestCheckGameUpdates() {
	sessionID := s.startedSession(2, nil)

	all, err := s.svc.CheckGameUpdates(s.ctx, &CheckGameUpdatesInput{UserID: userID(2), SessionID: sessionID})
	s.Require().NoError(err)
	s.Require().Len(all.Updates, 7)
	s.False(all.HasMore)
	s.Equal(models.UpdatePlayerJoined, all.Updates[0].Type)
	s.Equal(models.UpdateChapterChanged, all.Updates[6].Type)

	var previous int64
	for _, u := range all.Updates {
		id, err := eventsRepo.ParseCursor(u.ID)
		s.Require().NoError(err)
		s.Greater(id, previous)
		previous = id
	}

	page, err := s.svc.CheckGameUpdates(s.ctx, &CheckGameUpdatesInput{UserID: userID(2), SessionID: sessionID, Limit: 2})
	s.Require().NoError(err)
	s.Len(page.Updates, 2)
	s.True(page.HasMore)
	s.Equal(all.Updates[1].ID, page.LastUpdateID)

	rest, err := s.svc.CheckGameUpdates(s.ctx, &CheckGameUpdatesInput{UserID: userID(2), SessionID: sessionID, LastUpdateID: page.LastUpdateID})
	s.Require().NoError(err)
	s.Len(rest.Updates, 5)

	// polling with the same cursor returns nothing new and keeps the cursor
	for i := 0; i < 2; i++ {
		idle, err := s.svc.CheckGameUpdates(s.ctx, &CheckGameUpdatesInput{UserID: userID(2), SessionID: sessionID, LastUpdateID: all.LastUpdateID})
		s.Require().NoError(err)
		s.Empty(idle.Updates)
		s.Equal(all.LastUpdateID, idle.LastUpdateID)
	}

	s.vote(sessionID, 1, "flee")
	fresh, err := s.svc.CheckGameUpdates(s.ctx, &CheckGameUpdatesInput{UserID: userID(2), SessionID: sessionID, LastUpdateID: all.LastUpdateID})
	s.Require().NoError(err)
	s.Require().Len(fresh.Updates, 1)
	s.Equal(models.UpdateVoteReceived, fresh.Updates[0].Type)
}

func (s *GameServiceTestSuite) TestCheckGameUpdates_Validation() {
	sessionID := s.startedSession(2, nil)

	_, err := s.svc.CheckGameUpdates(s.ctx, &CheckGameUpdatesInput{UserID: userID(1), SessionID: sessionID, LastUpdateID: "last"})
	s.requireKind(err, KindInvalidParams)

	_, err = s.svc.CheckGameUpdates(s.ctx, &CheckGameUpdatesInput{UserID: userID(1), SessionID: sessionID, Limit: -1})
	s.requireKind(err, KindInvalidParams)

	_, err = s.svc.CheckGameUpdates(s.ctx, &CheckGameUpdatesInput{UserID: userID(4), SessionID: sessionID})
	s.requireKind(err, KindForbidden)

	_, err = s.svc.CheckGameUpdates(s.ctx, &CheckGameUpdatesInput{SessionID: sessionID})
	s.requireKind(err, KindUnauthorized)
}

func (s *GameServiceTestSuite) TestSweepOfflineParticipants_CompletesRound() {
	sessionID := s.startedSession(3, nil)

	s.now = s.now.Add(time.Minute)
	s.vote(sessionID, 1, "enter_cave")
	s.vote(sessionID, 2, "enter_cave")

	s.now = s.now.Add(5 * time.Minute)
	out, err := s.svc.SweepOfflineParticipants(s.ctx, &SweepOfflineParticipantsInput{})
	s.Require().NoError(err)
	s.Equal(1, out.SessionsChecked)
	s.Equal(1, out.Demoted)

	session := s.getSession(sessionID)
	s.False(session.GetParticipant(userID(3)).IsOnline)
	s.True(session.GetParticipant(userID(1)).IsOnline)
	s.Equal("cave", session.CurrentChapterID)

	left := s.updatesOfType(sessionID, models.UpdatePlayerLeft)
	s.Require().Len(left, 1)
	s.Equal("timeout", s.payload(left[0])["reason"])

	// nobody else is stale
	out, err = s.svc.SweepOfflineParticipants(s.ctx, &SweepOfflineParticipantsInput{})
	s.Require().NoError(err)
	s.Equal(0, out.Demoted)
}

func (s *GameServiceTestSuite) TestSweepOfflineParticipants_WithdrawsVote() {
	sessionID := s.startedSession(3, nil)
	s.vote(sessionID, 3, "flee")

	s.now = s.now.Add(2 * time.Minute)
	_, err := s.svc.UpdatePlayerStatus(s.ctx, &UpdatePlayerStatusInput{UserID: userID(1), SessionID: sessionID})
	s.Require().NoError(err)
	_, err = s.svc.UpdatePlayerStatus(s.ctx, &UpdatePlayerStatusInput{UserID: userID(2), SessionID: sessionID})
	s.Require().NoError(err)

	s.now = s.now.Add(4 * time.Minute)
	out, err := s.svc.SweepOfflineParticipants(s.ctx, &SweepOfflineParticipantsInput{})
	s.Require().NoError(err)
	s.Equal(1, out.Demoted)

	session := s.getSession(sessionID)
	s.Empty(session.Votes)
	s.Equal("gate", session.CurrentChapterID)

	status, err := s.svc.GetVoteStatus(s.ctx, &GetVoteStatusInput{UserID: userID(1), SessionID: sessionID})
	s.Require().NoError(err)
	s.Equal(2, status.TotalOnline)
	s.Equal(0, status.TotalVotes)

	// voting again brings the player back online
	s.vote(sessionID, 3, "flee")
	session = s.getSession(sessionID)
	s.True(session.GetParticipant(userID(3)).IsOnline)

	joined := s.updatesOfType(sessionID, models.UpdatePlayerJoined)
	s.Equal(true, s.payload(joined[len(joined)-1])["reconnected"])
}

func (s *GameServiceTestSuite) TestUpdatePlayerStatus() {
	sessionID := s.startedSession(2, nil)

	out, err := s.svc.UpdatePlayerStatus(s.ctx, &UpdatePlayerStatusInput{UserID: userID(2), SessionID: sessionID})
	s.Require().NoError(err)
	s.False(out.Reconnected)

	s.now = s.now.Add(10 * time.Minute)
	_, err = s.svc.SweepOfflineParticipants(s.ctx, &SweepOfflineParticipantsInput{Threshold: time.Minute})
	s.Require().NoError(err)
	s.False(s.getSession(sessionID).GetParticipant(userID(2)).IsOnline)

	out, err = s.svc.UpdatePlayerStatus(s.ctx, &UpdatePlayerStatusInput{UserID: userID(2), SessionID: sessionID})
	s.Require().NoError(err)
	s.True(out.Reconnected)

	participant := s.getSession(sessionID).GetParticipant(userID(2))
	s.True(participant.IsOnline)
	s.Equal(s.now, participant.LastActivity)

	_, err = s.svc.UpdatePlayerStatus(s.ctx, &UpdatePlayerStatusInput{UserID: userID(9), SessionID: sessionID})
	s.requireKind(err, KindForbidden)
}

func (s *GameServiceTestSuite) TestRecordUpdate() {
	sessionID := s.startedSession(2, nil)

	update, err := s.svc.RecordUpdate(s.ctx, &RecordUpdateInput{
		SessionID: sessionID,
		Type:      models.UpdateNewMessage,
		Payload:   map[string]string{"from": userID(2), "text": "watch the left flank"},
	})
	s.Require().NoError(err)
	s.NotEmpty(update.ID)
	s.Equal("watch the left flank", s.payload(update)["text"])

	messages := s.updatesOfType(sessionID, models.UpdateNewMessage)
	s.Require().Len(messages, 1)
	s.Equal(update.ID, messages[0].ID)
	s.Contains(s.notifier.types(), models.UpdateNewMessage)

	_, err = s.svc.RecordUpdate(s.ctx, &RecordUpdateInput{SessionID: sessionID, Type: "WHISPER"})
	s.requireKind(err, KindInvalidParams)

	_, err = s.svc.RecordUpdate(s.ctx, &RecordUpdateInput{SessionID: "nope", Type: models.UpdateNewMessage})
	s.requireKind(err, KindNotFound)
}

func (s *GameServiceTestSuite) TestRecordTimelineEntry() {
	sessionID := s.startedSession(2, nil)

	entry, err := s.svc.RecordTimelineEntry(s.ctx, &RecordTimelineEntryInput{
		Entry: &models.TimelineEntry{
			SessionID: sessionID,
			ChapterID: "gate",
			Kind:      models.TimelineEntrySystemMessage,
			Message:   "The owner paused the game.",
		},
	})
	s.Require().NoError(err)
	s.NotEmpty(entry.ID)
	s.Equal(s.now, entry.Timestamp)

	entries := s.timeline(sessionID)
	s.Equal("The owner paused the game.", entries[len(entries)-1].Message)

	_, err = s.svc.RecordTimelineEntry(s.ctx, &RecordTimelineEntryInput{
		Entry: &models.TimelineEntry{SessionID: sessionID, Kind: "DIARY"},
	})
	s.requireKind(err, KindInvalidParams)

	_, err = s.svc.RecordTimelineEntry(s.ctx, &RecordTimelineEntryInput{})
	s.requireKind(err, KindInvalidParams)
}

func (s *GameServiceTestSuite) TestPurgeExpiredEvents() {
	sessionID := s.startedSession(2, nil)

	out, err := s.svc.PurgeExpiredEvents(s.ctx, &PurgeExpiredEventsInput{})
	s.Require().NoError(err)
	s.Equal(0, out.UpdatesDeleted)

	s.now = s.now.Add(25 * time.Hour)
	out, err = s.svc.PurgeExpiredEvents(s.ctx, &PurgeExpiredEventsInput{})
	s.Require().NoError(err)
	s.Equal(7, out.UpdatesDeleted)
	s.Equal(0, out.TimelineDeleted)

	page, err := s.svc.CheckGameUpdates(s.ctx, &CheckGameUpdatesInput{UserID: userID(1), SessionID: sessionID})
	s.Require().NoError(err)
	s.Empty(page.Updates)
	s.Len(s.timeline(sessionID), 1)

	out, err = s.svc.PurgeExpiredEvents(s.ctx, &PurgeExpiredEventsInput{TimelineRetention: time.Hour})
	s.Require().NoError(err)
	s.Equal(1, out.TimelineDeleted)
}
