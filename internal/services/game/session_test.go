package game

import (
	"context"
	"fmt"

	"github.com/KirkDiggler/taleforge/internal/models"
	sessionRepo "github.com/KirkDiggler/taleforge/internal/repositories/session"
)

func (s *GameServiceTestSuite) TestCreateSession() {
	out, err := s.svc.CreateSession(s.ctx, &CreateSessionInput{
		UserID:   userID(1),
		Username: "Player 1",
		Name:     "  Friday Night  ",
		StoryID:  "sunken-keep",
	})
	s.Require().NoError(err)

	session := out.Session
	s.Equal("session-1", session.ID)
	s.Equal("CODE01", session.JoinCode)
	s.Equal("Friday Night", session.Name)
	s.Equal(userID(1), session.OwnerID)
	s.Equal(DefaultMaxPlayers, session.MaxPlayers)
	s.Equal(models.SessionStatusWaitingPlayers, session.Status)
	s.Equal(models.TieResolutionRandom, session.TieResolutionStrategy)
	s.False(session.IsLocked)
	s.Require().Len(session.Participants, 1)
	s.True(session.Participants[0].IsOnline)

	byCode, err := s.sessions.GetSessionByJoinCode(s.ctx, &sessionRepo.GetSessionByJoinCodeInput{JoinCode: "CODE01"})
	s.Require().NoError(err)
	s.Equal(session.ID, byCode.ID)
}

func (s *GameServiceTestSuite) TestCreateSession_Validation() {
	testCases := []struct {
		name  string
		input *CreateSessionInput
		kind  Kind
	}{
		{"nil input", nil, KindInvalidParams},
		{"anonymous", &CreateSessionInput{Name: "x", StoryID: "sunken-keep"}, KindUnauthorized},
		{"blank name", &CreateSessionInput{UserID: userID(1), Name: "   ", StoryID: "sunken-keep"}, KindInvalidParams},
		{"no story", &CreateSessionInput{UserID: userID(1), Name: "x"}, KindInvalidParams},
		{"too few players", &CreateSessionInput{UserID: userID(1), Name: "x", StoryID: "sunken-keep", MaxPlayers: 1}, KindInvalidParams},
		{"too many players", &CreateSessionInput{UserID: userID(1), Name: "x", StoryID: "sunken-keep", MaxPlayers: 9}, KindInvalidParams},
		{"bad strategy", &CreateSessionInput{UserID: userID(1), Name: "x", StoryID: "sunken-keep", TieResolutionStrategy: "COIN"}, KindInvalidParams},
		{"negative timeout", &CreateSessionInput{UserID: userID(1), Name: "x", StoryID: "sunken-keep", VotingTimeoutMinutes: -1}, KindInvalidParams},
		{"unknown story", &CreateSessionInput{UserID: userID(1), Name: "x", StoryID: "nope"}, KindNotFound},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.svc.CreateSession(s.ctx, tc.input)
			s.requireKind(err, tc.kind)
		})
	}
}

func (s *GameServiceTestSuite) TestCreateSession_JoinCodeCollision() {
	// the first session takes CODE01, the second draws past it
	first := s.lobby(1)
	s.Equal("CODE01", first.JoinCode)

	s.codeSeq = 0
	second := s.lobby(1)
	s.Equal("CODE02", second.JoinCode)
	s.NotEqual(first.ID, second.ID)
}

func (s *GameServiceTestSuite) TestJoinSession_ByCode() {
	session := s.lobby(1)

	out, err := s.svc.JoinSession(s.ctx, &JoinSessionInput{
		UserID:   userID(2),
		Username: "Player 2",
		JoinCode: " code01 ",
	})
	s.Require().NoError(err)
	s.False(out.AlreadyJoined)
	s.Len(out.Session.Participants, 2)

	joined := s.updatesOfType(session.ID, models.UpdatePlayerJoined)
	s.Require().Len(joined, 1)
	s.Equal(false, s.payload(joined[0])["reconnected"])
}

func (s *GameServiceTestSuite) TestJoinSession_Idempotent() {
	session := s.lobby(2)

	out, err := s.svc.JoinSession(s.ctx, &JoinSessionInput{UserID: userID(2), SessionID: session.ID})
	s.Require().NoError(err)
	s.True(out.AlreadyJoined)
	s.Len(out.Session.Participants, 2)

	// an online re-join is silent
	s.Len(s.updatesOfType(session.ID, models.UpdatePlayerJoined), 1)
}

func (s *GameServiceTestSuite) TestJoinSession_Errors() {
	session := s.lobby(2, func(in *CreateSessionInput) { in.MaxPlayers = 2 })

	_, err := s.svc.JoinSession(s.ctx, &JoinSessionInput{UserID: userID(3), SessionID: session.ID})
	s.requireKind(err, KindConflict)

	_, err = s.svc.JoinSession(s.ctx, &JoinSessionInput{UserID: userID(3), JoinCode: "ZZZZZZ"})
	s.requireKind(err, KindNotFound)

	_, err = s.svc.JoinSession(s.ctx, &JoinSessionInput{UserID: userID(3)})
	s.requireKind(err, KindInvalidParams)

	_, err = s.svc.JoinSession(s.ctx, &JoinSessionInput{SessionID: session.ID})
	s.requireKind(err, KindUnauthorized)
}

func (s *GameServiceTestSuite) TestJoinSession_LockedAfterStart() {
	sessionID := s.startedSession(2, nil)

	_, err := s.svc.JoinSession(s.ctx, &JoinSessionInput{UserID: userID(3), SessionID: sessionID})
	s.requireKind(err, KindInvalidState)

	// existing participants can still come back
	out, err := s.svc.JoinSession(s.ctx, &JoinSessionInput{UserID: userID(2), SessionID: sessionID})
	s.Require().NoError(err)
	s.True(out.AlreadyJoined)
}

func (s *GameServiceTestSuite) TestLeaveSession() {
	session := s.lobby(3)

	_, err := s.svc.LeaveSession(s.ctx, &LeaveSessionInput{UserID: userID(1), SessionID: session.ID})
	s.requireKind(err, KindForbidden)

	_, err = s.svc.LeaveSession(s.ctx, &LeaveSessionInput{UserID: userID(9), SessionID: session.ID})
	s.requireKind(err, KindForbidden)

	out, err := s.svc.LeaveSession(s.ctx, &LeaveSessionInput{UserID: userID(3), SessionID: session.ID})
	s.Require().NoError(err)
	s.Len(out.Session.Participants, 2)
	s.Nil(out.Session.GetParticipant(userID(3)))

	left := s.updatesOfType(session.ID, models.UpdatePlayerLeft)
	s.Require().Len(left, 1)
	s.Equal("left", s.payload(left[0])["reason"])
}

func (s *GameServiceTestSuite) TestLeaveSession_LastWithoutCharacterMakesReady() {
	session := s.lobby(4)
	_, err := s.svc.TransitionToCreatingCharacters(s.ctx, &TransitionToCreatingCharactersInput{
		UserID:    userID(1),
		SessionID: session.ID,
	})
	s.Require().NoError(err)

	for i := 1; i <= 3; i++ {
		s.saveCharacter(i, session.ID, nil)
		_, err := s.svc.BindCharacter(s.ctx, &BindCharacterInput{
			UserID:      userID(i),
			SessionID:   session.ID,
			CharacterID: characterID(i),
		})
		s.Require().NoError(err)
	}
	s.Empty(s.updatesOfType(session.ID, models.UpdateAllCharactersReady))

	_, err = s.svc.LeaveSession(s.ctx, &LeaveSessionInput{UserID: userID(4), SessionID: session.ID})
	s.Require().NoError(err)

	ready := s.updatesOfType(session.ID, models.UpdateAllCharactersReady)
	s.Require().Len(ready, 1)
	s.EqualValues(3, s.payload(ready[0])["participants"])

	out, err := s.svc.CanStartSession(s.ctx, &CanStartSessionInput{UserID: userID(1), SessionID: session.ID})
	s.Require().NoError(err)
	s.True(out.CanStart)

	// already ready, so another departure announces nothing new
	_, err = s.svc.LeaveSession(s.ctx, &LeaveSessionInput{UserID: userID(3), SessionID: session.ID})
	s.Require().NoError(err)
	s.Len(s.updatesOfType(session.ID, models.UpdateAllCharactersReady), 1)
}

func (s *GameServiceTestSuite) TestLeaveSession_CompletesRound() {
	sessionID := s.startedSession(3, nil)

	s.vote(sessionID, 1, "flee")
	s.vote(sessionID, 2, "flee")

	// player 3 was the last one missing
	_, err := s.svc.LeaveSession(s.ctx, &LeaveSessionInput{UserID: userID(3), SessionID: sessionID})
	s.Require().NoError(err)

	session := s.getSession(sessionID)
	s.Equal("road", session.CurrentChapterID)
	s.Equal(models.SessionStatusCompleted, session.Status)
}

func (s *GameServiceTestSuite) TestDeleteSession() {
	sessionID := s.startedSession(2, nil)

	_, err := s.svc.DeleteSession(s.ctx, &DeleteSessionInput{UserID: userID(2), SessionID: sessionID})
	s.requireKind(err, KindForbidden)

	_, err = s.svc.DeleteSession(s.ctx, &DeleteSessionInput{UserID: userID(1), SessionID: sessionID})
	s.Require().NoError(err)

	_, err = s.sessions.GetSession(s.ctx, &sessionRepo.GetSessionInput{SessionID: sessionID})
	s.ErrorIs(err, sessionRepo.ErrSessionNotFound)

	s.Empty(s.timeline(sessionID))
	s.Contains(s.notifier.types(), models.UpdateSessionDeleted)

	_, err = s.svc.GetGameState(s.ctx, &GetGameStateInput{UserID: userID(1), SessionID: sessionID})
	s.requireKind(err, KindNotFound)
}

func (s *GameServiceTestSuite) TestTransitionToCreatingCharacters() {
	solo := s.lobby(1)
	_, err := s.svc.TransitionToCreatingCharacters(s.ctx, &TransitionToCreatingCharactersInput{UserID: userID(1), SessionID: solo.ID})
	s.requireKind(err, KindInvalidState)

	session := s.lobby(2)
	_, err = s.svc.TransitionToCreatingCharacters(s.ctx, &TransitionToCreatingCharactersInput{UserID: userID(2), SessionID: session.ID})
	s.requireKind(err, KindForbidden)

	out, err := s.svc.TransitionToCreatingCharacters(s.ctx, &TransitionToCreatingCharactersInput{UserID: userID(1), SessionID: session.ID})
	s.Require().NoError(err)
	s.Equal(models.SessionStatusCreatingCharacters, out.Session.Status)

	changed := s.updatesOfType(session.ID, models.UpdateSessionStateChanged)
	s.Require().Len(changed, 1)
	s.Equal(string(models.SessionStatusWaitingPlayers), s.payload(changed[0])["previous_status"])

	// the phase cannot be entered twice
	_, err = s.svc.TransitionToCreatingCharacters(s.ctx, &TransitionToCreatingCharactersInput{UserID: userID(1), SessionID: session.ID})
	s.requireKind(err, KindInvalidState)
}

func (s *GameServiceTestSuite) TestBindCharacter() {
	session := s.lobby(2)

	s.saveCharacter(1, session.ID, nil)
	_, err := s.svc.BindCharacter(s.ctx, &BindCharacterInput{UserID: userID(1), SessionID: session.ID, CharacterID: characterID(1)})
	s.requireKind(err, KindInvalidState)

	_, err = s.svc.TransitionToCreatingCharacters(s.ctx, &TransitionToCreatingCharactersInput{UserID: userID(1), SessionID: session.ID})
	s.Require().NoError(err)

	// someone else's character
	_, err = s.svc.BindCharacter(s.ctx, &BindCharacterInput{UserID: userID(2), SessionID: session.ID, CharacterID: characterID(1)})
	s.requireKind(err, KindForbidden)

	// a character made for another session
	s.saveCharacter(2, "session-other", nil)
	_, err = s.svc.BindCharacter(s.ctx, &BindCharacterInput{UserID: userID(2), SessionID: session.ID, CharacterID: characterID(2)})
	s.requireKind(err, KindForbidden)

	_, err = s.svc.BindCharacter(s.ctx, &BindCharacterInput{UserID: userID(2), SessionID: session.ID, CharacterID: "missing"})
	s.requireKind(err, KindNotFound)

	out, err := s.svc.BindCharacter(s.ctx, &BindCharacterInput{UserID: userID(1), SessionID: session.ID, CharacterID: characterID(1)})
	s.Require().NoError(err)
	s.False(out.AllReady)
	s.Equal("Hero 1", out.Session.GetParticipant(userID(1)).CharacterName)

	s.saveCharacter(2, session.ID, nil)
	out, err = s.svc.BindCharacter(s.ctx, &BindCharacterInput{UserID: userID(2), SessionID: session.ID, CharacterID: characterID(2)})
	s.Require().NoError(err)
	s.True(out.AllReady)

	// rebinding reports an update rather than a creation
	_, err = s.svc.BindCharacter(s.ctx, &BindCharacterInput{UserID: userID(2), SessionID: session.ID, CharacterID: characterID(2)})
	s.Require().NoError(err)

	s.Len(s.updatesOfType(session.ID, models.UpdateCharacterCreated), 2)
	s.Len(s.updatesOfType(session.ID, models.UpdateCharacterUpdated), 1)
	s.Len(s.updatesOfType(session.ID, models.UpdateAllCharactersReady), 1)
}

func (s *GameServiceTestSuite) TestCanStartSession() {
	session := s.lobby(2)
	_, err := s.svc.TransitionToCreatingCharacters(s.ctx, &TransitionToCreatingCharactersInput{UserID: userID(1), SessionID: session.ID})
	s.Require().NoError(err)

	s.saveCharacter(1, session.ID, nil)
	_, err = s.svc.BindCharacter(s.ctx, &BindCharacterInput{UserID: userID(1), SessionID: session.ID, CharacterID: characterID(1)})
	s.Require().NoError(err)

	s.saveCharacter(2, session.ID, func(c *models.Character) { c.IsComplete = false })
	_, err = s.svc.BindCharacter(s.ctx, &BindCharacterInput{UserID: userID(2), SessionID: session.ID, CharacterID: characterID(2)})
	s.Require().NoError(err)

	out, err := s.svc.CanStartSession(s.ctx, &CanStartSessionInput{UserID: userID(2), SessionID: session.ID})
	s.Require().NoError(err)
	s.False(out.CanStart)
	s.Equal([]string{"Player 2"}, out.MissingParticipants)

	_, err = s.svc.StartSession(s.ctx, &StartSessionInput{UserID: userID(1), SessionID: session.ID})
	s.requireKind(err, KindInvalidState)

	// finishing the character in the character service is enough
	s.saveCharacter(2, session.ID, nil)
	out, err = s.svc.CanStartSession(s.ctx, &CanStartSessionInput{UserID: userID(2), SessionID: session.ID})
	s.Require().NoError(err)
	s.True(out.CanStart)
	s.Empty(out.MissingParticipants)

	_, err = s.svc.CanStartSession(s.ctx, &CanStartSessionInput{UserID: userID(7), SessionID: session.ID})
	s.requireKind(err, KindForbidden)
}

func (s *GameServiceTestSuite) TestStartSession() {
	sessionID := s.startedSession(2, nil)

	session := s.getSession(sessionID)
	s.Equal(models.SessionStatusInProgress, session.Status)
	s.True(session.IsLocked)
	s.Equal("gate", session.CurrentChapterID)
	s.Require().NotNil(session.RoundStartedAt)

	entries := s.timeline(sessionID)
	s.Require().Len(entries, 1)
	s.Equal(models.TimelineEntryStory, entries[0].Kind)
	s.Equal("gate", entries[0].ChapterID)

	chapter := s.updatesOfType(sessionID, models.UpdateChapterChanged)
	s.Require().Len(chapter, 1)
	s.Equal("gate", s.payload(chapter[0])["chapter_id"])

	_, err := s.svc.StartSession(s.ctx, &StartSessionInput{UserID: userID(1), SessionID: sessionID})
	s.requireKind(err, KindInvalidState)
}

func (s *GameServiceTestSuite) TestGetGameState() {
	sessionID := s.startedSession(2, nil)

	out, err := s.svc.GetGameState(s.ctx, &GetGameStateInput{UserID: userID(2), SessionID: sessionID})
	s.Require().NoError(err)
	s.Equal("gate", out.Chapter.ID)
	s.False(out.IsFinalChapter)
	s.False(out.CombatActive)
	s.Empty(out.Votes)

	_, err = s.svc.GetGameState(s.ctx, &GetGameStateInput{UserID: userID(5), SessionID: sessionID})
	s.requireKind(err, KindForbidden)

	_, err = s.svc.GetGameState(s.ctx, &GetGameStateInput{UserID: userID(1)})
	s.requireKind(err, KindInvalidParams)
}

func (s *GameServiceTestSuite) TestGetTimelineHistory() {
	sessionID := s.startedSession(2, nil)
	s.vote(sessionID, 1, "enter_cave")
	s.vote(sessionID, 2, "enter_cave")

	out, err := s.svc.GetTimelineHistory(s.ctx, &GetTimelineHistoryInput{UserID: userID(1), SessionID: sessionID})
	s.Require().NoError(err)
	s.Require().Len(out.Entries, 3)
	s.Equal(models.TimelineEntryStory, out.Entries[0].Kind)
	s.Equal(models.TimelineEntryChoiceResult, out.Entries[1].Kind)
	s.Equal("enter_cave", out.Entries[1].ChoiceMade)
	s.Require().NotNil(out.Entries[1].VotingResult)
	s.Equal(models.DecisionUnanimous, out.Entries[1].VotingResult.DecisionMethod)
	s.Equal("cave", out.Entries[2].ChapterID)

	page, err := s.svc.GetTimelineHistory(s.ctx, &GetTimelineHistoryInput{UserID: userID(1), SessionID: sessionID, Limit: 1})
	s.Require().NoError(err)
	s.Len(page.Entries, 1)
	s.True(page.HasMore)

	rest, err := s.svc.GetTimelineHistory(s.ctx, &GetTimelineHistoryInput{UserID: userID(1), SessionID: sessionID, AfterID: page.LastEntryID})
	s.Require().NoError(err)
	s.Len(rest.Entries, 2)
	s.False(rest.HasMore)

	empty, err := s.svc.GetTimelineHistory(s.ctx, &GetTimelineHistoryInput{UserID: userID(1), SessionID: sessionID, AfterID: rest.LastEntryID})
	s.Require().NoError(err)
	s.Empty(empty.Entries)
	s.Equal(rest.LastEntryID, empty.LastEntryID)

	_, err = s.svc.GetTimelineHistory(s.ctx, &GetTimelineHistoryInput{UserID: userID(1), SessionID: sessionID, AfterID: "abc"})
	s.requireKind(err, KindInvalidParams)
}

func (s *GameServiceTestSuite) TestConcurrentJoinsRespectCapacity() {
	session := s.lobby(1, func(in *CreateSessionInput) { in.MaxPlayers = 4 })

	errs := make(chan error, 6)
	for i := 2; i <= 7; i++ {
		go func(n int) {
			_, err := s.svc.JoinSession(context.Background(), &JoinSessionInput{
				UserID:    userID(n),
				Username:  fmt.Sprintf("Player %d", n),
				SessionID: session.ID,
			})
			errs <- err
		}(i)
	}

	conflicts := 0
	for i := 0; i < 6; i++ {
		if err := <-errs; err != nil {
			s.Equal(KindConflict, KindOf(err))
			conflicts++
		}
	}

	s.Equal(3, conflicts)
	s.Len(s.getSession(session.ID).Participants, 4)
}
