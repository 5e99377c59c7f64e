package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/KirkDiggler/taleforge/internal/models"
	"github.com/stretchr/testify/suite"
)

// repositorySuite holds the behavior every event log backend must share.
// Backend suites embed it and set repo in their SetupTest.
type repositorySuite struct {
	suite.Suite
	repo    Repository
	ctx     context.Context
	testNow time.Time
}

func (s *repositorySuite) appendUpdate(sessionID string, typ models.UpdateType, payload string, at time.Time) *models.UpdateEvent {
	update, err := s.repo.AppendUpdate(s.ctx, &AppendUpdateInput{
		Update: &models.UpdateEvent{
			SessionID: sessionID,
			Type:      typ,
			Timestamp: at,
			Payload:   json.RawMessage(payload),
		},
	})
	s.Require().NoError(err)
	return update
}

func (s *repositorySuite) appendEntry(sessionID, chapterID string, at time.Time) *models.TimelineEntry {
	entry, err := s.repo.AppendTimelineEntry(s.ctx, &AppendTimelineEntryInput{
		Entry: &models.TimelineEntry{
			SessionID:   sessionID,
			ChapterID:   chapterID,
			ChapterText: "The gate creaks open.",
			Kind:        models.TimelineEntryStory,
			Timestamp:   at,
		},
	})
	s.Require().NoError(err)
	return entry
}

func (s *repositorySuite) cursor(id string) int64 {
	n, err := ParseCursor(id)
	s.Require().NoError(err)
	return n
}

func (s *repositorySuite) TestAppendUpdate_AssignsIncreasingIDs() {
	first := s.appendUpdate("session-1", models.UpdatePlayerJoined, `{"user_id":"u1"}`, s.testNow)
	second := s.appendUpdate("session-2", models.UpdatePlayerJoined, `{"user_id":"u2"}`, s.testNow)
	third := s.appendUpdate("session-1", models.UpdatePlayerLeft, `{"user_id":"u1"}`, s.testNow)

	s.Less(s.cursor(first.ID), s.cursor(second.ID))
	s.Less(s.cursor(second.ID), s.cursor(third.ID))
}

func (s *repositorySuite) TestAppendUpdate_Validation() {
	_, err := s.repo.AppendUpdate(s.ctx, nil)
	s.Error(err)

	_, err = s.repo.AppendUpdate(s.ctx, &AppendUpdateInput{Update: &models.UpdateEvent{Type: models.UpdatePlayerJoined}})
	s.Error(err)
}

func (s *repositorySuite) TestGetUpdates_AfterCursor() {
	first := s.appendUpdate("session-1", models.UpdatePlayerJoined, `{"user_id":"u1"}`, s.testNow)
	second := s.appendUpdate("session-1", models.UpdateSessionStateChanged, `{"status":"CREATING_CHARACTERS"}`, s.testNow)
	s.appendUpdate("session-2", models.UpdatePlayerJoined, `{"user_id":"u9"}`, s.testNow)

	out, err := s.repo.GetUpdates(s.ctx, &GetUpdatesInput{SessionID: "session-1"})
	s.Require().NoError(err)
	s.Require().Len(out.Updates, 2)
	s.Equal(first.ID, out.Updates[0].ID)
	s.Equal(second.ID, out.Updates[1].ID)
	s.Equal(models.UpdateSessionStateChanged, out.Updates[1].Type)
	s.JSONEq(`{"status":"CREATING_CHARACTERS"}`, string(out.Updates[1].Payload))
	s.True(out.Updates[0].Timestamp.Equal(s.testNow))
	s.False(out.HasMore)

	out, err = s.repo.GetUpdates(s.ctx, &GetUpdatesInput{SessionID: "session-1", AfterID: s.cursor(first.ID)})
	s.Require().NoError(err)
	s.Require().Len(out.Updates, 1)
	s.Equal(second.ID, out.Updates[0].ID)

	out, err = s.repo.GetUpdates(s.ctx, &GetUpdatesInput{SessionID: "session-1", AfterID: s.cursor(second.ID)})
	s.Require().NoError(err)
	s.Empty(out.Updates)
}

func (s *repositorySuite) TestGetUpdates_SameCursorIsIdempotent() {
	first := s.appendUpdate("session-1", models.UpdatePlayerJoined, `{}`, s.testNow)
	s.appendUpdate("session-1", models.UpdateVoteReceived, `{}`, s.testNow)

	in := &GetUpdatesInput{SessionID: "session-1", AfterID: s.cursor(first.ID)}
	a, err := s.repo.GetUpdates(s.ctx, in)
	s.Require().NoError(err)
	b, err := s.repo.GetUpdates(s.ctx, in)
	s.Require().NoError(err)

	s.Equal(a.Updates, b.Updates)
}

func (s *repositorySuite) TestGetUpdates_LimitReportsHasMore() {
	for i := 0; i < 5; i++ {
		s.appendUpdate("session-1", models.UpdateNewMessage, fmt.Sprintf(`{"n":%d}`, i), s.testNow)
	}

	out, err := s.repo.GetUpdates(s.ctx, &GetUpdatesInput{SessionID: "session-1", Limit: 3})
	s.Require().NoError(err)
	s.Len(out.Updates, 3)
	s.True(out.HasMore)

	rest, err := s.repo.GetUpdates(s.ctx, &GetUpdatesInput{
		SessionID: "session-1",
		AfterID:   s.cursor(out.Updates[2].ID),
		Limit:     3,
	})
	s.Require().NoError(err)
	s.Len(rest.Updates, 2)
	s.False(rest.HasMore)
}

func (s *repositorySuite) TestAppendUpdate_IdenticalPayloadsStayDistinct() {
	s.appendUpdate("session-1", models.UpdateNewMessage, `{"text":"hi"}`, s.testNow)
	s.appendUpdate("session-1", models.UpdateNewMessage, `{"text":"hi"}`, s.testNow)

	out, err := s.repo.GetUpdates(s.ctx, &GetUpdatesInput{SessionID: "session-1"})
	s.Require().NoError(err)
	s.Len(out.Updates, 2)
	s.NotEqual(out.Updates[0].ID, out.Updates[1].ID)
}

func (s *repositorySuite) TestTimeline_RoundTrip() {
	s.appendEntry("session-1", "gate", s.testNow)
	result, err := s.repo.AppendTimelineEntry(s.ctx, &AppendTimelineEntryInput{
		Entry: &models.TimelineEntry{
			SessionID:  "session-1",
			ChapterID:  "gate",
			ChoiceMade: "enter",
			VotingResult: &models.VotingResult{
				WinningOptionID: "enter",
				DecisionMethod:  models.DecisionMajority,
				Counts:          map[string]int{"enter": 2, "flee": 1},
				TotalVotes:      3,
			},
			Kind:      models.TimelineEntryChoiceResult,
			Timestamp: s.testNow,
		},
	})
	s.Require().NoError(err)

	out, err := s.repo.GetTimeline(s.ctx, &GetTimelineInput{SessionID: "session-1"})
	s.Require().NoError(err)
	s.Require().Len(out.Entries, 2)
	s.Equal(models.TimelineEntryStory, out.Entries[0].Kind)
	s.Equal("The gate creaks open.", out.Entries[0].ChapterText)

	choice := out.Entries[1]
	s.Equal(result.ID, choice.ID)
	s.Equal("enter", choice.ChoiceMade)
	s.Require().NotNil(choice.VotingResult)
	s.Equal(models.DecisionMajority, choice.VotingResult.DecisionMethod)
	s.Equal(2, choice.VotingResult.Counts["enter"])
}

func (s *repositorySuite) TestDeleteSessionEvents() {
	s.appendUpdate("session-1", models.UpdatePlayerJoined, `{}`, s.testNow)
	s.appendEntry("session-1", "gate", s.testNow)
	s.appendUpdate("session-2", models.UpdatePlayerJoined, `{}`, s.testNow)

	s.Require().NoError(s.repo.DeleteSessionEvents(s.ctx, &DeleteSessionEventsInput{SessionID: "session-1"}))

	updates, err := s.repo.GetUpdates(s.ctx, &GetUpdatesInput{SessionID: "session-1"})
	s.Require().NoError(err)
	s.Empty(updates.Updates)

	timeline, err := s.repo.GetTimeline(s.ctx, &GetTimelineInput{SessionID: "session-1"})
	s.Require().NoError(err)
	s.Empty(timeline.Entries)

	other, err := s.repo.GetUpdates(s.ctx, &GetUpdatesInput{SessionID: "session-2"})
	s.Require().NoError(err)
	s.Len(other.Updates, 1)
}

func (s *repositorySuite) TestPurgeBefore() {
	old := s.testNow.Add(-48 * time.Hour)
	s.appendUpdate("session-1", models.UpdatePlayerJoined, `{}`, old)
	s.appendUpdate("session-2", models.UpdatePlayerJoined, `{}`, old)
	recent := s.appendUpdate("session-1", models.UpdateVoteReceived, `{}`, s.testNow)
	s.appendEntry("session-1", "gate", old)

	out, err := s.repo.PurgeBefore(s.ctx, &PurgeBeforeInput{
		UpdatesBefore:  s.testNow.Add(-24 * time.Hour),
		TimelineBefore: s.testNow.Add(-30 * 24 * time.Hour),
	})
	s.Require().NoError(err)
	s.Equal(2, out.UpdatesDeleted)
	s.Equal(0, out.TimelineDeleted)

	updates, err := s.repo.GetUpdates(s.ctx, &GetUpdatesInput{SessionID: "session-1"})
	s.Require().NoError(err)
	s.Require().Len(updates.Updates, 1)
	s.Equal(recent.ID, updates.Updates[0].ID)

	timeline, err := s.repo.GetTimeline(s.ctx, &GetTimelineInput{SessionID: "session-1"})
	s.Require().NoError(err)
	s.Len(timeline.Entries, 1)
}
