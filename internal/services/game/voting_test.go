package game

import (
	"context"
	"time"

	"github.com/KirkDiggler/taleforge/internal/models"
	sessionRepo "github.com/KirkDiggler/taleforge/internal/repositories/session"
)

// interleavedSessions runs afterRead once, right after the first session read.
// It lets a test slip other calls between an unlocked read and what follows it.
type interleavedSessions struct {
	sessionRepo.Repository
	afterRead func()
}

func (r *interleavedSessions) GetSession(ctx context.Context, input *sessionRepo.GetSessionInput) (*models.Session, error) {
	session, err := r.Repository.GetSession(ctx, input)
	if hook := r.afterRead; hook != nil {
		r.afterRead = nil
		hook()
	}
	return session, err
}

func withStrategy(strategy models.TieResolutionStrategy) func(*CreateSessionInput) {
	return func(in *CreateSessionInput) {
		in.TieResolutionStrategy = strategy
	}
}

func (s *GameServiceTestSuite) TestVote_Majority() {
	sessionID := s.startedSession(4, nil)

	out := s.vote(sessionID, 1, "flee")
	s.False(out.RoundComplete)
	s.vote(sessionID, 2, "enter_cave")
	s.vote(sessionID, 3, "flee")

	status, err := s.svc.GetVoteStatus(s.ctx, &GetVoteStatusInput{UserID: userID(4), SessionID: sessionID})
	s.Require().NoError(err)
	s.Equal(4, status.TotalOnline)
	s.Equal(3, status.TotalVotes)
	s.False(status.HasVoted)
	s.Equal([]string{"Hero 4"}, status.PendingVoters)
	s.Require().Len(status.Options, 3)
	s.Equal("enter_cave", status.Options[0].OptionID)
	s.Equal(33, status.Options[0].Percentage)
	s.Equal(67, status.Options[1].Percentage)
	s.Equal(0, status.Options[2].Count)

	out = s.vote(sessionID, 4, "flee")
	s.True(out.RoundComplete)
	s.Require().NotNil(out.Result)
	s.Equal("flee", out.Result.WinningOptionID)
	s.Equal(models.DecisionMajority, out.Result.DecisionMethod)
	s.Equal(3, out.Result.Counts["flee"])
	s.Equal(4, out.Result.TotalVotes)

	session := s.getSession(sessionID)
	s.Equal("road", session.CurrentChapterID)
	s.Equal(models.SessionStatusCompleted, session.Status)
	s.Empty(session.Votes)

	finalized := s.updatesOfType(sessionID, models.UpdateVoteFinalized)
	s.Require().Len(finalized, 1)
	s.Equal("flee", s.payload(finalized[0])["winning_option_id"])

	ended := s.updatesOfType(sessionID, models.UpdateStoryEnded)
	s.Require().Len(ended, 1)
	s.Equal("final_chapter", s.payload(ended[0])["reason"])

	s.Len(s.updatesOfType(sessionID, models.UpdateVoteReceived), 4)
}

func (s *GameServiceTestSuite) TestVote_Unanimous() {
	sessionID := s.startedSession(2, nil)

	s.vote(sessionID, 1, "enter_cave")
	out := s.vote(sessionID, 2, "enter_cave")
	s.True(out.RoundComplete)
	s.Equal(models.DecisionUnanimous, out.Result.DecisionMethod)

	session := s.getSession(sessionID)
	s.Equal("cave", session.CurrentChapterID)
	s.Equal(models.SessionStatusInProgress, session.Status)
	s.False(session.Participants[0].HasVoted)
}

func (s *GameServiceTestSuite) TestVote_Rejections() {
	sessionID := s.startedSession(2, nil)

	testCases := []struct {
		name  string
		input *VoteInput
		kind  Kind
	}{
		{"missing option", &VoteInput{UserID: userID(1), SessionID: sessionID, CharacterID: characterID(1)}, KindInvalidParams},
		{"stranger", &VoteInput{UserID: userID(9), SessionID: sessionID, CharacterID: characterID(1), OptionID: "flee"}, KindForbidden},
		{"someone else's character", &VoteInput{UserID: userID(2), SessionID: sessionID, CharacterID: characterID(1), OptionID: "flee"}, KindForbidden},
		{"unknown option", &VoteInput{UserID: userID(1), SessionID: sessionID, CharacterID: characterID(1), OptionID: "dance"}, KindInvalidParams},
		{"unknown session", &VoteInput{UserID: userID(1), SessionID: "nope", CharacterID: characterID(1), OptionID: "flee"}, KindNotFound},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.svc.Vote(s.ctx, tc.input)
			s.requireKind(err, tc.kind)
		})
	}

	s.vote(sessionID, 1, "flee")
	_, err := s.svc.Vote(s.ctx, &VoteInput{UserID: userID(1), SessionID: sessionID, CharacterID: characterID(1), OptionID: "climb"})
	s.requireKind(err, KindConflict)

	s.Len(s.getSession(sessionID).Votes, 1)
}

func (s *GameServiceTestSuite) TestVote_BeforeStart() {
	session := s.lobby(2)

	_, err := s.svc.Vote(s.ctx, &VoteInput{UserID: userID(1), SessionID: session.ID, CharacterID: characterID(1), OptionID: "flee"})
	s.requireKind(err, KindInvalidState)
}

func (s *GameServiceTestSuite) TestVote_TieResolvedAtRandom() {
	sessionID := s.startedSession(2, nil)

	s.vote(sessionID, 1, "flee")
	out := s.vote(sessionID, 2, "enter_cave")
	s.True(out.RoundComplete)
	s.True(out.TieDetected)
	s.Nil(out.Result)

	session := s.getSession(sessionID)
	s.Require().NotNil(session.PendingTie)
	s.Equal([]string{"enter_cave", "flee"}, session.PendingTie.OptionIDs)
	s.Equal(1, session.PendingTie.VoteCount)
	s.Equal("gate", session.CurrentChapterID)
	s.Len(s.updatesOfType(sessionID, models.UpdateTieDetected), 1)

	// the round is frozen until the tie is settled
	_, err := s.svc.Vote(s.ctx, &VoteInput{UserID: userID(1), SessionID: sessionID, CharacterID: characterID(1), OptionID: "climb"})
	s.requireKind(err, KindInvalidState)

	_, err = s.svc.ResolveTie(s.ctx, &ResolveTieInput{UserID: userID(2), SessionID: sessionID})
	s.requireKind(err, KindForbidden)

	s.mockDice.EXPECT().Roll(2).Return(1)

	resolved, err := s.svc.ResolveTie(s.ctx, &ResolveTieInput{UserID: userID(1), SessionID: sessionID})
	s.Require().NoError(err)
	s.False(resolved.Revote)
	s.Require().NotNil(resolved.Result)
	s.Equal("enter_cave", resolved.Result.WinningOptionID)
	s.Equal(models.DecisionTieResolved, resolved.Result.DecisionMethod)

	session = s.getSession(sessionID)
	s.Equal("cave", session.CurrentChapterID)
	s.Nil(session.PendingTie)

	_, err = s.svc.ResolveTie(s.ctx, &ResolveTieInput{UserID: userID(1), SessionID: sessionID})
	s.requireKind(err, KindInvalidState)
}

func (s *GameServiceTestSuite) TestVote_TieMasterDecides() {
	sessionID := s.startedSession(2, nil, withStrategy(models.TieResolutionMasterDecides))

	s.vote(sessionID, 1, "flee")
	s.vote(sessionID, 2, "enter_cave")

	_, err := s.svc.ResolveTie(s.ctx, &ResolveTieInput{UserID: userID(1), SessionID: sessionID})
	s.requireKind(err, KindInvalidParams)

	_, err = s.svc.ResolveTie(s.ctx, &ResolveTieInput{UserID: userID(1), SessionID: sessionID, MasterChoice: "climb"})
	s.requireKind(err, KindInvalidParams)

	_, err = s.svc.ResolveTie(s.ctx, &ResolveTieInput{UserID: userID(1), SessionID: sessionID, Strategy: "COIN"})
	s.requireKind(err, KindInvalidParams)

	out, err := s.svc.ResolveTie(s.ctx, &ResolveTieInput{UserID: userID(1), SessionID: sessionID, MasterChoice: "flee"})
	s.Require().NoError(err)
	s.Equal("flee", out.Result.WinningOptionID)
	s.Equal(models.SessionStatusCompleted, s.getSession(sessionID).Status)
}

func (s *GameServiceTestSuite) TestVote_TieRevote() {
	sessionID := s.startedSession(2, nil, withStrategy(models.TieResolutionRevote))

	s.vote(sessionID, 1, "flee")
	s.vote(sessionID, 2, "enter_cave")

	out, err := s.svc.ResolveTie(s.ctx, &ResolveTieInput{UserID: userID(1), SessionID: sessionID})
	s.Require().NoError(err)
	s.True(out.Revote)
	s.Nil(out.Result)

	session := s.getSession(sessionID)
	s.Nil(session.PendingTie)
	s.Empty(session.Votes)
	s.Equal("gate", session.CurrentChapterID)

	entries := s.timeline(sessionID)
	s.Equal(models.TimelineEntrySystemMessage, entries[len(entries)-1].Kind)

	s.vote(sessionID, 1, "enter_cave")
	again := s.vote(sessionID, 2, "enter_cave")
	s.True(again.RoundComplete)
	s.Equal("cave", s.getSession(sessionID).CurrentChapterID)
}

func (s *GameServiceTestSuite) TestForceResolveRound_NoVotes() {
	sessionID := s.startedSession(2, nil)

	s.mockDice.EXPECT().Roll(3).Return(2)

	out, err := s.svc.ForceResolveRound(s.ctx, &ForceResolveRoundInput{SessionID: sessionID})
	s.Require().NoError(err)
	s.Equal("flee", out.Result.WinningOptionID)
	s.Equal(models.DecisionTimeout, out.Result.DecisionMethod)
	s.Equal("road", s.getSession(sessionID).CurrentChapterID)

	_, err = s.svc.ForceResolveRound(s.ctx, &ForceResolveRoundInput{SessionID: sessionID})
	s.requireKind(err, KindInvalidState)
}

func (s *GameServiceTestSuite) TestForceResolveRound_PartialVotes() {
	sessionID := s.startedSession(3, nil)
	s.vote(sessionID, 2, "enter_cave")

	out, err := s.svc.ForceResolveRound(s.ctx, &ForceResolveRoundInput{SessionID: sessionID})
	s.Require().NoError(err)
	s.Equal("enter_cave", out.Result.WinningOptionID)
	s.Equal(models.DecisionUnanimous, out.Result.DecisionMethod)
	s.Equal("cave", s.getSession(sessionID).CurrentChapterID)
}

func (s *GameServiceTestSuite) TestForceResolveRound_PendingTieFallsBackToRandom() {
	sessionID := s.startedSession(2, nil, withStrategy(models.TieResolutionMasterDecides))
	s.vote(sessionID, 1, "flee")
	s.vote(sessionID, 2, "enter_cave")

	s.mockDice.EXPECT().Roll(2).Return(2)

	out, err := s.svc.ForceResolveRound(s.ctx, &ForceResolveRoundInput{SessionID: sessionID})
	s.Require().NoError(err)
	s.Equal("flee", out.Result.WinningOptionID)
	s.Equal(models.DecisionTieResolved, out.Result.DecisionMethod)
}

func (s *GameServiceTestSuite) TestSweepVotingTimeouts() {
	timed := s.startedSession(2, nil, func(in *CreateSessionInput) { in.VotingTimeoutMinutes = 10 })
	untimed := s.startedSession(2, nil)

	s.now = s.now.Add(5 * time.Minute)
	out, err := s.svc.SweepVotingTimeouts(s.ctx, &SweepVotingTimeoutsInput{})
	s.Require().NoError(err)
	s.Equal(0, out.Resolved)

	s.mockDice.EXPECT().Roll(3).Return(1)

	s.now = s.now.Add(6 * time.Minute)
	out, err = s.svc.SweepVotingTimeouts(s.ctx, &SweepVotingTimeoutsInput{})
	s.Require().NoError(err)
	s.Equal(1, out.Resolved)

	s.Equal("cave", s.getSession(timed).CurrentChapterID)
	s.Equal("gate", s.getSession(untimed).CurrentChapterID)

	// the cave fight holds the round open past the timeout
	s.now = s.now.Add(30 * time.Minute)
	out, err = s.svc.SweepVotingTimeouts(s.ctx, &SweepVotingTimeoutsInput{})
	s.Require().NoError(err)
	s.Equal(0, out.Resolved)
}

func (s *GameServiceTestSuite) TestForceResolveRound_OnlyIfExpiredLeavesFreshRound() {
	sessionID := s.startedSession(2, nil, func(in *CreateSessionInput) { in.VotingTimeoutMinutes = 1 })

	s.now = s.now.Add(30 * time.Second)
	out, err := s.svc.ForceResolveRound(s.ctx, &ForceResolveRoundInput{
		SessionID:     sessionID,
		OnlyIfExpired: true,
	})
	s.Require().NoError(err)
	s.True(out.Skipped)
	s.Nil(out.Result)
	s.Equal("gate", s.getSession(sessionID).CurrentChapterID)
}

func (s *GameServiceTestSuite) TestSweepVotingTimeouts_RoundRestartedAfterRead() {
	sessionID := s.startedSession(2, nil,
		withStrategy(models.TieResolutionRevote),
		func(in *CreateSessionInput) { in.VotingTimeoutMinutes = 1 },
	)
	s.now = s.now.Add(2 * time.Minute)

	// between the sweep's read and its forced resolution the players tie
	// and the owner calls a revote, which opens a fresh round
	s.svc.sessionRepo = &interleavedSessions{
		Repository: s.sessions,
		afterRead: func() {
			s.vote(sessionID, 1, "flee")
			s.vote(sessionID, 2, "enter_cave")
			_, err := s.svc.ResolveTie(s.ctx, &ResolveTieInput{
				UserID:    userID(1),
				SessionID: sessionID,
			})
			s.Require().NoError(err)
		},
	}

	out, err := s.svc.SweepVotingTimeouts(s.ctx, &SweepVotingTimeoutsInput{})
	s.Require().NoError(err)
	s.Equal(0, out.Resolved)

	session := s.getSession(sessionID)
	s.Equal("gate", session.CurrentChapterID)
	s.Equal(models.SessionStatusInProgress, session.Status)
	s.Empty(session.Votes)
	s.Nil(session.PendingTie)
	s.Empty(s.updatesOfType(sessionID, models.UpdateVoteFinalized))
}

func (s *GameServiceTestSuite) TestConcurrentVotesFinalizeOnce() {
	sessionID := s.startedSession(4, nil)

	errs := make(chan error, 4)
	for i := 1; i <= 4; i++ {
		go func(n int) {
			_, err := s.svc.Vote(context.Background(), &VoteInput{
				UserID:      userID(n),
				SessionID:   sessionID,
				CharacterID: characterID(n),
				OptionID:    "enter_cave",
			})
			errs <- err
		}(i)
	}
	for i := 0; i < 4; i++ {
		s.NoError(<-errs)
	}

	s.Len(s.updatesOfType(sessionID, models.UpdateVoteReceived), 4)
	finalized := s.updatesOfType(sessionID, models.UpdateVoteFinalized)
	s.Require().Len(finalized, 1)
	s.Equal("enter_cave", s.payload(finalized[0])["winning_option_id"])
	s.Equal("cave", s.getSession(sessionID).CurrentChapterID)
}
