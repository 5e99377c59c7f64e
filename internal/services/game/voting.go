package game

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/KirkDiggler/taleforge/internal/models"
	"github.com/rs/zerolog/log"
)

// roundOutcome is what a completion check ended with
type roundOutcome struct {
	result *models.VotingResult
	tie    bool
}

// Vote casts the caller's character vote for an option of the current chapter
func (s *service) Vote(ctx context.Context, input *VoteInput) (*VoteOutput, error) {
	if input == nil {
		return nil, newError(KindInvalidParams, "input cannot be nil")
	}

	if input.CharacterID == "" || input.OptionID == "" {
		return nil, newError(KindInvalidParams, "character ID and option ID are required")
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

	if session.Status != models.SessionStatusInProgress {
		return nil, newError(KindInvalidState, "voting is only open while the session is in progress")
	}

	if session.PendingTie != nil {
		return nil, newError(KindInvalidState, "the round is tied and waits for the owner")
	}

	if participant.CharacterID != input.CharacterID {
		return nil, newError(KindForbidden, "character %s is not bound to the caller in this session", input.CharacterID)
	}

	_, chapter, err := s.currentChapter(ctx, session)
	if err != nil {
		return nil, err
	}

	if chapter.IsCombat {
		combat, err := s.findCombat(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		if combat == nil || combat.IsActive || combat.WinningSide != models.CombatSidePlayers {
			return nil, newError(KindInvalidState, "the party has to win the fight before voting")
		}
	}

	option := chapter.GetOption(input.OptionID)
	if option == nil {
		return nil, newError(KindInvalidParams, "option %s is not available in chapter %s", input.OptionID, chapter.ID)
	}

	if session.GetVote(input.CharacterID) != nil {
		return nil, newError(KindConflict, "character %s already voted this round", input.CharacterID)
	}

	t := s.begin(session)

	// a vote is a sign of life
	if !participant.IsOnline {
		participant.IsOnline = true
		t.emit(models.UpdatePlayerJoined, map[string]any{
			"user_id":     participant.UserID,
			"username":    participant.Username,
			"reconnected": true,
		})
	}
	participant.LastActivity = t.now

	vote := &models.Vote{
		CharacterID: input.CharacterID,
		UserID:      input.UserID,
		OptionID:    option.ID,
		Timestamp:   t.now,
	}
	session.Votes = append(session.Votes, vote)
	participant.HasVoted = true

	t.emit(models.UpdateVoteReceived, map[string]any{
		"user_id":        participant.UserID,
		"character_id":   input.CharacterID,
		"character_name": participant.CharacterName,
		"option_id":      option.ID,
		"total_votes":    len(session.Votes),
		"total_online":   len(session.OnlineParticipants()),
	})

	outcome, err := s.checkRoundComplete(ctx, t)
	if err != nil {
		return nil, err
	}

	if err := s.commit(ctx, t); err != nil {
		return nil, err
	}

	out := &VoteOutput{
		Vote: vote,
	}
	if outcome != nil {
		out.RoundComplete = true
		out.Result = outcome.result
		out.TieDetected = outcome.tie
	}

	return out, nil
}

// checkRoundComplete finalizes the round once every online participant voted.
// It returns nil while the round is still open.
func (s *service) checkRoundComplete(ctx context.Context, t *txn) (*roundOutcome, error) {
	session := t.session
	if session.Status != models.SessionStatusInProgress || session.PendingTie != nil {
		return nil, nil
	}

	online := session.OnlineParticipants()
	if len(session.Votes) == 0 || len(session.Votes) < len(online) {
		return nil, nil
	}

	story, chapter, err := s.currentChapter(ctx, session)
	if err != nil {
		return nil, err
	}

	return s.finalizeRound(t, story, chapter)
}

// tally counts votes per option in chapter order and returns the options sharing
// the highest count.
func tally(session *models.Session, chapter *models.Chapter) (map[string]int, []string, int) {
	counts := make(map[string]int, len(chapter.Options))
	for _, option := range chapter.Options {
		counts[option.ID] = 0
	}
	for _, vote := range session.Votes {
		counts[vote.OptionID]++
	}

	top := 0
	leaders := []string{}
	for _, option := range chapter.Options {
		count := counts[option.ID]
		switch {
		case count == 0:
		case count > top:
			top = count
			leaders = []string{option.ID}
		case count == top:
			leaders = append(leaders, option.ID)
		}
	}

	return counts, leaders, top
}

// finalizeRound tallies the votes and either advances the story or records a tie
func (s *service) finalizeRound(t *txn, story *models.Story, chapter *models.Chapter) (*roundOutcome, error) {
	session := t.session
	counts, leaders, top := tally(session, chapter)

	if len(leaders) > 1 {
		session.PendingTie = &models.PendingTie{
			OptionIDs:  leaders,
			VoteCount:  top,
			DetectedAt: t.now,
		}
		t.emit(models.UpdateTieDetected, map[string]any{
			"chapter_id": chapter.ID,
			"option_ids": leaders,
			"vote_count": top,
			"counts":     counts,
			"strategy":   session.TieResolutionStrategy,
		})

		log.Info().
			Str("session_id", session.ID).
			Strs("option_ids", leaders).
			Msg("voting round tied")

		return &roundOutcome{tie: true}, nil
	}

	if len(leaders) == 0 {
		return nil, nil
	}

	method := models.DecisionMajority
	if top == len(session.Votes) {
		method = models.DecisionUnanimous
	}

	result := &models.VotingResult{
		WinningOptionID: leaders[0],
		DecisionMethod:  method,
		Counts:          counts,
		TotalVotes:      len(session.Votes),
	}

	if err := s.finishRound(t, story, chapter, result); err != nil {
		return nil, err
	}

	return &roundOutcome{result: result}, nil
}

// finishRound announces the result and advances to the winning option's target
func (s *service) finishRound(t *txn, story *models.Story, chapter *models.Chapter, result *models.VotingResult) error {
	t.emit(models.UpdateVoteFinalized, map[string]any{
		"chapter_id":        chapter.ID,
		"winning_option_id": result.WinningOptionID,
		"decision_method":   result.DecisionMethod,
		"counts":            result.Counts,
		"total_votes":       result.TotalVotes,
	})

	return s.advanceChapter(t, story, chapter, result.WinningOptionID, result)
}

// advanceChapter is the only place the current chapter changes after the start
func (s *service) advanceChapter(t *txn, story *models.Story, from *models.Chapter, optionID string, result *models.VotingResult) error {
	option := from.GetOption(optionID)
	if option == nil {
		return newError(KindInvalidParams, "option %s is not available in chapter %s", optionID, from.ID)
	}

	target := story.GetChapter(option.TargetChapterID)
	if target == nil {
		return fmt.Errorf("option %s of chapter %s points to missing chapter %s", option.ID, from.ID, option.TargetChapterID)
	}

	t.record(models.TimelineEntryChoiceResult, from.ID, func(e *models.TimelineEntry) {
		e.ChoiceMade = option.ID
		e.ChapterText = option.Text
		e.VotingResult = result
	})

	t.session.ResetRound()
	if from.IsCombat {
		t.deleteCombat()
	}

	s.enterChapter(t, target)

	log.Info().
		Str("session_id", t.session.ID).
		Str("from", from.ID).
		Str("to", target.ID).
		Str("decision", string(result.DecisionMethod)).
		Msg("chapter advanced")

	return nil
}

// enterChapter moves the session into a chapter and completes it on a final one
func (s *service) enterChapter(t *txn, chapter *models.Chapter) {
	session := t.session
	session.CurrentChapterID = chapter.ID
	roundStart := t.now
	session.RoundStartedAt = &roundStart

	t.record(models.TimelineEntryStory, chapter.ID, func(e *models.TimelineEntry) {
		e.ChapterText = chapter.Text
	})

	t.emit(models.UpdateChapterChanged, map[string]any{
		"chapter_id": chapter.ID,
		"title":      chapter.Title,
		"text":       chapter.Text,
		"is_combat":  chapter.IsCombat,
		"is_final":   chapter.IsFinal(),
	})

	if chapter.IsFinal() {
		s.endStory(t, chapter.ID, "final_chapter")
	}
}

// endStory completes the session
func (s *service) endStory(t *txn, chapterID, reason string) {
	if err := transition(t, models.SessionStatusCompleted); err != nil {
		log.Warn().Err(err).Str("session_id", t.session.ID).Msg("session already completed")
		return
	}

	t.session.RoundStartedAt = nil
	t.emit(models.UpdateStoryEnded, map[string]any{
		"chapter_id": chapterID,
		"reason":     reason,
	})
}

// restartRound clears the round so everybody votes again
func (s *service) restartRound(t *txn, reason string) {
	t.session.ResetRound()
	roundStart := t.now
	t.session.RoundStartedAt = &roundStart

	t.record(models.TimelineEntrySystemMessage, t.session.CurrentChapterID, func(e *models.TimelineEntry) {
		e.Message = "The vote was tied. Everybody votes again."
	})
	t.emit(models.UpdateSessionStateChanged, map[string]any{
		"status": t.session.Status,
		"reason": reason,
	})
}

// pickRandom draws uniformly from the options using the dice roller
func (s *service) pickRandom(options []string) string {
	if len(options) == 0 {
		return ""
	}
	idx := s.diceRoller.Roll(len(options)) - 1
	if idx < 0 || idx >= len(options) {
		idx = 0
	}
	return options[idx]
}

// resolvePendingTie applies a strategy to the pending tie. It reports revote=true
// when the round restarted instead of producing a winner.
func (s *service) resolvePendingTie(t *txn, story *models.Story, chapter *models.Chapter, strategy models.TieResolutionStrategy, masterChoice string) (*models.VotingResult, bool, error) {
	session := t.session
	tied := session.PendingTie.OptionIDs

	var winner string
	switch strategy {
	case models.TieResolutionRevote:
		s.restartRound(t, "revote")
		return nil, true, nil
	case models.TieResolutionRandom:
		winner = s.pickRandom(tied)
	case models.TieResolutionMasterDecides:
		if masterChoice == "" {
			return nil, false, newError(KindInvalidParams, "master choice is required for %s", strategy)
		}
		for _, id := range tied {
			if id == masterChoice {
				winner = id
			}
		}
		if winner == "" {
			return nil, false, newError(KindInvalidParams, "option %s is not one of the tied options", masterChoice)
		}
	default:
		return nil, false, newError(KindInvalidParams, "unknown tie resolution strategy %q", strategy)
	}

	counts, _, _ := tally(session, chapter)
	result := &models.VotingResult{
		WinningOptionID: winner,
		DecisionMethod:  models.DecisionTieResolved,
		Counts:          counts,
		TotalVotes:      len(session.Votes),
	}

	if err := s.finishRound(t, story, chapter, result); err != nil {
		return nil, false, err
	}

	return result, false, nil
}

// ResolveTie settles a tied round on behalf of the owner
func (s *service) ResolveTie(ctx context.Context, input *ResolveTieInput) (*ResolveTieOutput, error) {
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

	if session.Status != models.SessionStatusInProgress || session.PendingTie == nil {
		return nil, newError(KindInvalidState, "there is no tie to resolve")
	}

	strategy := input.Strategy
	if strategy == "" {
		strategy = session.TieResolutionStrategy
	}
	if !strategy.Valid() {
		return nil, newError(KindInvalidParams, "unknown tie resolution strategy %q", strategy)
	}

	story, chapter, err := s.currentChapter(ctx, session)
	if err != nil {
		return nil, err
	}

	t := s.begin(session)
	result, revote, err := s.resolvePendingTie(t, story, chapter, strategy, input.MasterChoice)
	if err != nil {
		return nil, err
	}

	if err := s.commit(ctx, t); err != nil {
		return nil, err
	}

	return &ResolveTieOutput{
		Result: result,
		Revote: revote,
	}, nil
}

// roundExpired reports whether the open round has outlived the session's voting timeout
func roundExpired(session *models.Session, now time.Time) bool {
	if session.Status != models.SessionStatusInProgress ||
		session.VotingTimeoutMinutes <= 0 ||
		session.RoundStartedAt == nil {
		return false
	}
	timeout := time.Duration(session.VotingTimeoutMinutes) * time.Minute
	return now.Sub(*session.RoundStartedAt) >= timeout
}

// ForceResolveRound ends the current round without waiting for more votes.
// It is the entry point for the voting timer.
func (s *service) ForceResolveRound(ctx context.Context, input *ForceResolveRoundInput) (*ForceResolveRoundOutput, error) {
	if input == nil {
		return nil, newError(KindInvalidParams, "input cannot be nil")
	}

	session, unlock, err := s.lockSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if input.OnlyIfExpired && !roundExpired(session, s.clock.Now()) {
		return &ForceResolveRoundOutput{Skipped: true}, nil
	}

	if session.Status != models.SessionStatusInProgress {
		return nil, newError(KindInvalidState, "session %s has no open round", session.ID)
	}

	story, chapter, err := s.currentChapter(ctx, session)
	if err != nil {
		return nil, err
	}

	if chapter.IsCombat {
		combat, err := s.findCombat(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		if combat == nil || combat.IsActive || combat.WinningSide != models.CombatSidePlayers {
			return nil, newError(KindInvalidState, "the round cannot be forced before the fight is won")
		}
	}

	t := s.begin(session)
	out := &ForceResolveRoundOutput{}

	switch {
	case session.PendingTie != nil:
		strategy := session.TieResolutionStrategy
		if strategy == models.TieResolutionMasterDecides {
			strategy = models.TieResolutionRandom
		}
		out.Result, out.Revote, err = s.resolvePendingTie(t, story, chapter, strategy, "")
		if err != nil {
			return nil, err
		}
	case len(session.Votes) > 0:
		outcome, err := s.finalizeRound(t, story, chapter)
		if err != nil {
			return nil, err
		}
		if outcome != nil {
			out.Result = outcome.result
			out.TieDetected = outcome.tie
		}
	default:
		optionIDs := make([]string, 0, len(chapter.Options))
		for _, option := range chapter.Options {
			optionIDs = append(optionIDs, option.ID)
		}
		counts, _, _ := tally(session, chapter)
		out.Result = &models.VotingResult{
			WinningOptionID: s.pickRandom(optionIDs),
			DecisionMethod:  models.DecisionTimeout,
			Counts:          counts,
		}
		if err := s.finishRound(t, story, chapter, out.Result); err != nil {
			return nil, err
		}
	}

	if err := s.commit(ctx, t); err != nil {
		return nil, err
	}

	log.Info().
		Str("session_id", session.ID).
		Bool("revote", out.Revote).
		Bool("tie", out.TieDetected).
		Msg("voting round forced")

	return out, nil
}

// GetVoteStatus summarizes the current round
func (s *service) GetVoteStatus(ctx context.Context, input *GetVoteStatusInput) (*GetVoteStatusOutput, error) {
	if input == nil {
		return nil, newError(KindInvalidParams, "input cannot be nil")
	}

	session, err := s.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	participant, err := requireParticipant(session, input.UserID)
	if err != nil {
		return nil, err
	}

	online := session.OnlineParticipants()
	out := &GetVoteStatusOutput{
		TotalOnline:   len(online),
		TotalVotes:    len(session.Votes),
		Options:       []*OptionTally{},
		PendingVoters: []string{},
		HasVoted:      participant.HasVoted,
		PendingTie:    session.PendingTie,
	}

	for _, p := range online {
		if !p.HasVoted {
			out.PendingVoters = append(out.PendingVoters, p.DisplayName())
		}
	}

	if session.CurrentChapterID == "" {
		return out, nil
	}

	_, chapter, err := s.currentChapter(ctx, session)
	if err != nil {
		return nil, err
	}

	counts, _, _ := tally(session, chapter)
	for _, option := range chapter.Options {
		percentage := 0
		if out.TotalVotes > 0 {
			percentage = int(math.Round(float64(counts[option.ID]) * 100 / float64(out.TotalVotes)))
		}
		out.Options = append(out.Options, &OptionTally{
			OptionID:   option.ID,
			Text:       option.Text,
			Count:      counts[option.ID],
			Percentage: percentage,
		})
	}

	return out, nil
}
