package game

import (
	"context"

	"github.com/KirkDiggler/taleforge/internal/models"
	combatRepo "github.com/KirkDiggler/taleforge/internal/repositories/combat"
	"go.uber.org/mock/gomock"
)

// weakWizard has 5 HP and AC 10
func weakWizard(c *models.Character) {
	c.Class = "wizard"
	c.Attributes.Constitution = 1
	c.Attributes.Dexterity = 10
}

// enterFight votes the party into a chapter and starts its fight
func (s *GameServiceTestSuite) enterFight(sessionID, optionID string) *models.CombatState {
	s.vote(sessionID, 1, optionID)
	s.vote(sessionID, 2, optionID)

	out, err := s.svc.InitiateCombat(s.ctx, &InitiateCombatInput{UserID: userID(1), SessionID: sessionID})
	s.Require().NoError(err)
	return out.Combat
}

// rollInitiative rolls for both players and returns the second result
func (s *GameServiceTestSuite) rollInitiative(sessionID string) *RollInitiativeOutput {
	var out *RollInitiativeOutput
	for i := 1; i <= 2; i++ {
		res, err := s.svc.RollInitiative(s.ctx, &RollInitiativeInput{
			UserID:      userID(i),
			SessionID:   sessionID,
			CharacterID: characterID(i),
		})
		s.Require().NoError(err)
		out = res
	}
	return out
}

func (s *GameServiceTestSuite) expectRolls(sides int, results ...int) []any {
	calls := make([]any, 0, len(results))
	for _, r := range results {
		calls = append(calls, s.mockDice.EXPECT().Roll(sides).Return(r))
	}
	return calls
}

func (s *GameServiceTestSuite) attack(sessionID string, n int, targetID string) *PerformAttackOutput {
	out, err := s.svc.PerformAttack(s.ctx, &PerformAttackInput{
		UserID:     userID(n),
		SessionID:  sessionID,
		AttackerID: characterID(n),
		TargetID:   targetID,
	})
	s.Require().NoError(err)
	return out
}

func (s *GameServiceTestSuite) skip(sessionID string, n int) *SkipTurnOutput {
	out, err := s.svc.SkipTurn(s.ctx, &SkipTurnInput{
		UserID:      userID(n),
		SessionID:   sessionID,
		CharacterID: characterID(n),
	})
	s.Require().NoError(err)
	return out
}

func (s *GameServiceTestSuite) TestInitiateCombat() {
	sessionID := s.startedSession(2, nil)

	_, err := s.svc.InitiateCombat(s.ctx, &InitiateCombatInput{UserID: userID(1), SessionID: sessionID})
	s.requireKind(err, KindInvalidState)

	// voting is closed on a combat chapter until the fight is won
	s.vote(sessionID, 1, "enter_cave")
	s.vote(sessionID, 2, "enter_cave")
	_, err = s.svc.Vote(s.ctx, &VoteInput{UserID: userID(1), SessionID: sessionID, CharacterID: characterID(1), OptionID: "press_on"})
	s.requireKind(err, KindInvalidState)
	_, err = s.svc.ForceResolveRound(s.ctx, &ForceResolveRoundInput{SessionID: sessionID})
	s.requireKind(err, KindInvalidState)

	out, err := s.svc.InitiateCombat(s.ctx, &InitiateCombatInput{UserID: userID(2), SessionID: sessionID})
	s.Require().NoError(err)

	combat := out.Combat
	s.True(combat.IsActive)
	s.Equal("cave", combat.ChapterID)
	s.Empty(combat.TurnOrder)
	s.Require().Len(combat.Enemies, 1)
	s.Equal("goblin-1", combat.Enemies[0].ID)
	s.Equal("Goblin", combat.Enemies[0].Name)
	s.Require().Len(combat.Participants, 2)

	fighter := combat.Participants[0]
	s.Equal(12, fighter.HP)
	s.Equal(12, fighter.MaxHP)
	s.Equal(12, fighter.AC)
	s.Equal(3, fighter.AttackModifier)
	s.Equal(10, fighter.DamageDie)

	_, err = s.svc.InitiateCombat(s.ctx, &InitiateCombatInput{UserID: userID(1), SessionID: sessionID})
	s.requireKind(err, KindConflict)

	started := s.updatesOfType(sessionID, models.UpdateCombatStarted)
	s.Require().Len(started, 1)
	s.Equal("cave", s.payload(started[0])["chapter_id"])

	state, err := s.svc.GetGameState(s.ctx, &GetGameStateInput{UserID: userID(1), SessionID: sessionID})
	s.Require().NoError(err)
	s.True(state.CombatActive)
}

func (s *GameServiceTestSuite) TestRollInitiative() {
	sessionID := s.startedSession(2, nil)
	s.enterFight(sessionID, "enter_cave")

	_, err := s.svc.RollInitiative(s.ctx, &RollInitiativeInput{UserID: userID(2), SessionID: sessionID, CharacterID: characterID(1)})
	s.requireKind(err, KindForbidden)

	_, err = s.svc.RollInitiative(s.ctx, &RollInitiativeInput{UserID: userID(1), SessionID: sessionID, CharacterID: "char-nobody"})
	s.requireKind(err, KindNotFound)

	gomock.InOrder(s.expectRolls(20, 13, 12, 10)...)

	first, err := s.svc.RollInitiative(s.ctx, &RollInitiativeInput{UserID: userID(1), SessionID: sessionID, CharacterID: characterID(1)})
	s.Require().NoError(err)
	s.Equal(13, first.Roll)
	s.Equal(15, first.Initiative)
	s.False(first.TurnOrderReady)

	_, err = s.svc.RollInitiative(s.ctx, &RollInitiativeInput{UserID: userID(1), SessionID: sessionID, CharacterID: characterID(1)})
	s.requireKind(err, KindConflict)

	turn, err := s.svc.GetCurrentTurn(s.ctx, &GetCurrentTurnInput{UserID: userID(1), SessionID: sessionID})
	s.Require().NoError(err)
	s.False(turn.Ready)

	_, err = s.svc.PerformAttack(s.ctx, &PerformAttackInput{UserID: userID(1), SessionID: sessionID, AttackerID: characterID(1), TargetID: "goblin-1"})
	s.requireKind(err, KindInvalidState)

	second, err := s.svc.RollInitiative(s.ctx, &RollInitiativeInput{UserID: userID(2), SessionID: sessionID, CharacterID: characterID(2)})
	s.Require().NoError(err)
	s.Equal(14, second.Initiative)
	s.True(second.TurnOrderReady)
	s.Empty(second.EnemyActions)

	s.Equal([]models.CombatantRef{
		{Kind: models.CombatantKindPlayer, ID: characterID(1)},
		{Kind: models.CombatantKindPlayer, ID: characterID(2)},
		{Kind: models.CombatantKindEnemy, ID: "goblin-1"},
	}, second.Combat.TurnOrder)
	s.Equal(1, second.Combat.Round)

	turn, err = s.svc.GetCurrentTurn(s.ctx, &GetCurrentTurnInput{UserID: userID(2), SessionID: sessionID})
	s.Require().NoError(err)
	s.True(turn.Ready)
	s.Equal(models.CombatantKindPlayer, turn.Kind)
	s.Equal(characterID(1), turn.CombatantID)
	s.Equal("Hero 1", turn.Name)
	s.Equal(3, turn.CombatantCount)
}

func (s *GameServiceTestSuite) TestInitiativeTiesKeepRegistrationOrder() {
	sessionID := s.startedSession(2, nil)
	s.enterFight(sessionID, "enter_cave")

	// 12+2, 12+2 and a goblin 14 all tie
	gomock.InOrder(s.expectRolls(20, 12, 12, 14)...)
	out := s.rollInitiative(sessionID)

	s.Equal([]models.CombatantRef{
		{Kind: models.CombatantKindPlayer, ID: characterID(1)},
		{Kind: models.CombatantKindPlayer, ID: characterID(2)},
		{Kind: models.CombatantKindEnemy, ID: "goblin-1"},
	}, out.Combat.TurnOrder)
}

func (s *GameServiceTestSuite) TestPerformAttack_CriticalKillOpensVoting() {
	sessionID := s.startedSession(2, nil)
	s.enterFight(sessionID, "enter_cave")

	gomock.InOrder(
		s.mockDice.EXPECT().Roll(20).Return(13),
		s.mockDice.EXPECT().Roll(20).Return(12),
		s.mockDice.EXPECT().Roll(20).Return(10),
		// natural 20 doubles the d10
		s.mockDice.EXPECT().Roll(20).Return(20),
		s.mockDice.EXPECT().Roll(10).Return(4),
		s.mockDice.EXPECT().Roll(10).Return(5),
	)
	s.rollInitiative(sessionID)

	_, err := s.svc.PerformAttack(s.ctx, &PerformAttackInput{UserID: userID(2), SessionID: sessionID, AttackerID: characterID(2), TargetID: "goblin-1"})
	s.requireKind(err, KindForbidden)

	_, err = s.svc.PerformAttack(s.ctx, &PerformAttackInput{UserID: userID(1), SessionID: sessionID, AttackerID: characterID(1), TargetID: characterID(2)})
	s.requireKind(err, KindInvalidParams)

	out := s.attack(sessionID, 1, "goblin-1")
	s.True(out.Attack.Hit)
	s.True(out.Attack.Critical)
	s.Equal(9, out.Attack.Damage)
	s.True(out.Attack.TargetDied)
	s.Equal(0, out.Attack.TargetHP)
	s.True(out.CombatOver)
	s.Equal(models.CombatSidePlayers, out.WinningSide)

	s.False(s.getCombat(sessionID).IsActive)
	s.Equal("cave", s.getSession(sessionID).CurrentChapterID)

	_, err = s.svc.PerformAttack(s.ctx, &PerformAttackInput{UserID: userID(1), SessionID: sessionID, AttackerID: characterID(1), TargetID: "goblin-1"})
	s.requireKind(err, KindConflict)

	// the same fight cannot be started again
	_, err = s.svc.InitiateCombat(s.ctx, &InitiateCombatInput{UserID: userID(1), SessionID: sessionID})
	s.requireKind(err, KindConflict)

	attacks := s.updatesOfType(sessionID, models.UpdateAttackMade)
	s.Require().Len(attacks, 1)
	s.Equal(true, s.payload(attacks[0])["critical"])

	s.vote(sessionID, 1, "press_on")
	s.vote(sessionID, 2, "press_on")
	s.Equal("hall", s.getSession(sessionID).CurrentChapterID)

	_, err = s.svc.GetCombatState(s.ctx, &GetCombatStateInput{UserID: userID(1), SessionID: sessionID})
	s.requireKind(err, KindNotFound)
}

func (s *GameServiceTestSuite) TestCombatRounds() {
	sessionID := s.startedSession(2, nil)
	s.enterFight(sessionID, "enter_cave")

	gomock.InOrder(
		// initiative: hero 1, hero 2, goblin
		s.mockDice.EXPECT().Roll(20).Return(13),
		s.mockDice.EXPECT().Roll(20).Return(12),
		s.mockDice.EXPECT().Roll(20).Return(10),
		// hero 1 fumbles into a d4
		s.mockDice.EXPECT().Roll(20).Return(1),
		s.mockDice.EXPECT().Roll(4).Return(3),
		// goblin swings at hero 1 and misses
		s.mockDice.EXPECT().Roll(20).Return(2),
		// hero 2 hits for 3
		s.mockDice.EXPECT().Roll(20).Return(10),
		s.mockDice.EXPECT().Roll(10).Return(3),
		// goblin hits hero 1 for 4
		s.mockDice.EXPECT().Roll(20).Return(15),
		s.mockDice.EXPECT().Roll(6).Return(4),
	)
	s.rollInitiative(sessionID)

	fumble := s.attack(sessionID, 1, "goblin-1")
	s.True(fumble.Attack.Fumble)
	s.False(fumble.Attack.Hit)
	s.Equal(3, fumble.Attack.SelfDamage)
	s.Equal(9, fumble.Combat.GetParticipant(characterID(1)).HP)
	s.Empty(fumble.EnemyActions)

	// a full-health skip heals nothing, then the goblin acts
	full := s.skip(sessionID, 2)
	s.Equal(0, full.Healed)
	s.Require().Len(full.EnemyActions, 1)
	s.Equal(characterID(1), full.EnemyActions[0].TargetID)
	s.False(full.EnemyActions[0].Hit)
	s.Equal(2, full.Combat.Round)

	healed := s.skip(sessionID, 1)
	s.Equal(2, healed.Healed)
	s.Equal(11, healed.HP)

	hit := s.attack(sessionID, 2, "goblin-1")
	s.True(hit.Attack.Hit)
	s.Equal(13, hit.Attack.Total)
	s.Equal(4, hit.Attack.TargetHP)
	s.Require().Len(hit.EnemyActions, 1)
	s.Equal(4, hit.EnemyActions[0].Damage)
	s.Equal(7, hit.Combat.GetParticipant(characterID(1)).HP)
	s.Equal(3, hit.Combat.Round)

	again := s.skip(sessionID, 1)
	s.Equal(2, again.Healed)
	s.Equal(9, again.HP)
	s.Empty(again.EnemyActions)

	_, err := s.svc.SkipTurn(s.ctx, &SkipTurnInput{UserID: userID(1), SessionID: sessionID, CharacterID: characterID(1)})
	s.requireKind(err, KindForbidden)
}

func (s *GameServiceTestSuite) TestDeathAndRevive() {
	sessionID := s.startedSession(2, func(n int, c *models.Character) {
		if n == 2 {
			weakWizard(c)
		}
	})
	s.enterFight(sessionID, "enter_cave")

	gomock.InOrder(
		// hero 1 17, hero 2 14, goblin 19 acts first
		s.mockDice.EXPECT().Roll(20).Return(15),
		s.mockDice.EXPECT().Roll(20).Return(14),
		s.mockDice.EXPECT().Roll(20).Return(19),
		// goblin crits the 5 HP wizard
		s.mockDice.EXPECT().Roll(20).Return(20),
		s.mockDice.EXPECT().Roll(6).Return(3),
		s.mockDice.EXPECT().Roll(6).Return(3),
		// revives: 10, 7, then 11
		s.mockDice.EXPECT().Roll(10).Return(5),
		s.mockDice.EXPECT().Roll(10).Return(5),
		s.mockDice.EXPECT().Roll(10).Return(3),
		s.mockDice.EXPECT().Roll(10).Return(4),
		s.mockDice.EXPECT().Roll(10).Return(6),
		s.mockDice.EXPECT().Roll(10).Return(5),
	)
	out := s.rollInitiative(sessionID)

	s.Require().Len(out.EnemyActions, 1)
	s.True(out.EnemyActions[0].TargetDied)
	s.Equal(characterID(2), out.EnemyActions[0].TargetID)

	wizard := out.Combat.GetParticipant(characterID(2))
	s.True(wizard.IsDead)
	s.Equal(0, wizard.HP)
	s.True(out.Combat.IsActive)
	s.Len(s.updatesOfType(sessionID, models.UpdateCharacterDied), 1)

	turn, err := s.svc.GetCurrentTurn(s.ctx, &GetCurrentTurnInput{UserID: userID(1), SessionID: sessionID})
	s.Require().NoError(err)
	s.Equal(characterID(1), turn.CombatantID)

	_, err = s.svc.AttemptRevive(s.ctx, &AttemptReviveInput{UserID: userID(1), SessionID: sessionID, CharacterID: characterID(1)})
	s.requireKind(err, KindInvalidState)

	_, err = s.svc.AttemptRevive(s.ctx, &AttemptReviveInput{UserID: userID(1), SessionID: sessionID, CharacterID: characterID(2)})
	s.requireKind(err, KindForbidden)

	revive := func() *AttemptReviveOutput {
		res, err := s.svc.AttemptRevive(s.ctx, &AttemptReviveInput{UserID: userID(2), SessionID: sessionID, CharacterID: characterID(2)})
		s.Require().NoError(err)
		return res
	}

	failed := revive()
	s.False(failed.Success)
	s.Equal(10, failed.Total)
	s.Equal(1, failed.ReviveAttempts)
	s.False(failed.PermanentlyDead)

	failed = revive()
	s.Equal([]int{3, 4}, failed.Rolls)
	s.Equal(2, failed.ReviveAttempts)

	success := revive()
	s.True(success.Success)
	s.Equal(11, success.Total)
	s.Equal(2, success.HP)

	wizard = s.getCombat(sessionID).GetParticipant(characterID(2))
	s.False(wizard.IsDead)
	s.Len(s.updatesOfType(sessionID, models.UpdateReviveFailed), 2)
	s.Len(s.updatesOfType(sessionID, models.UpdateCharacterRevived), 1)
}

func (s *GameServiceTestSuite) TestReviveBecomesPermanent() {
	sessionID := s.startedSession(2, func(n int, c *models.Character) {
		if n == 2 {
			weakWizard(c)
		}
	})
	s.enterFight(sessionID, "enter_cave")

	calls := []any{
		s.mockDice.EXPECT().Roll(20).Return(15),
		s.mockDice.EXPECT().Roll(20).Return(14),
		s.mockDice.EXPECT().Roll(20).Return(19),
		s.mockDice.EXPECT().Roll(20).Return(20),
		s.mockDice.EXPECT().Roll(6).Return(3),
		s.mockDice.EXPECT().Roll(6).Return(3),
	}
	calls = append(calls, s.expectRolls(10, 1, 1, 1, 1, 1, 1)...)
	gomock.InOrder(calls...)
	s.rollInitiative(sessionID)

	var last *AttemptReviveOutput
	for i := 0; i < models.MaxReviveAttempts; i++ {
		res, err := s.svc.AttemptRevive(s.ctx, &AttemptReviveInput{UserID: userID(2), SessionID: sessionID, CharacterID: characterID(2)})
		s.Require().NoError(err)
		last = res
	}
	s.True(last.PermanentlyDead)
	s.Equal(models.MaxReviveAttempts, last.ReviveAttempts)

	_, err := s.svc.AttemptRevive(s.ctx, &AttemptReviveInput{UserID: userID(2), SessionID: sessionID, CharacterID: characterID(2)})
	s.requireKind(err, KindInvalidState)
}

func (s *GameServiceTestSuite) TestPartyWipeEndsStory() {
	sessionID := s.startedSession(2, func(_ int, c *models.Character) {
		weakWizard(c)
	})
	s.enterFight(sessionID, "enter_cave")

	gomock.InOrder(
		// goblin 19, hero 2 3, hero 1 2
		s.mockDice.EXPECT().Roll(20).Return(2),
		s.mockDice.EXPECT().Roll(20).Return(3),
		s.mockDice.EXPECT().Roll(20).Return(19),
		// goblin kills hero 1, the earliest of the weakest
		s.mockDice.EXPECT().Roll(20).Return(20),
		s.mockDice.EXPECT().Roll(6).Return(3),
		s.mockDice.EXPECT().Roll(6).Return(3),
		// hero 2 misses
		s.mockDice.EXPECT().Roll(20).Return(5),
		// goblin kills hero 2
		s.mockDice.EXPECT().Roll(20).Return(20),
		s.mockDice.EXPECT().Roll(6).Return(3),
		s.mockDice.EXPECT().Roll(6).Return(3),
	)
	opening := s.rollInitiative(sessionID)
	s.Require().Len(opening.EnemyActions, 1)
	s.Equal(characterID(1), opening.EnemyActions[0].TargetID)

	out := s.attack(sessionID, 2, "goblin-1")
	s.False(out.Attack.Hit)
	s.True(out.CombatOver)
	s.Equal(models.CombatSideEnemies, out.WinningSide)
	s.Require().Len(out.EnemyActions, 1)
	s.True(out.EnemyActions[0].TargetDied)

	session := s.getSession(sessionID)
	s.Equal(models.SessionStatusCompleted, session.Status)
	s.Nil(session.RoundStartedAt)

	ended := s.updatesOfType(sessionID, models.UpdateStoryEnded)
	s.Require().Len(ended, 1)
	s.Equal("party_defeated", s.payload(ended[0])["reason"])
	s.Len(s.updatesOfType(sessionID, models.UpdateCharacterDied), 2)
}

func (s *GameServiceTestSuite) TestVictoryOutcomeAdvancesStory() {
	sessionID := s.startedSession(2, nil)
	combat := s.enterFight(sessionID, "climb")

	s.Require().Len(combat.Enemies, 1)
	s.Equal("dragon-1", combat.Enemies[0].ID)
	s.Equal(15, combat.Enemies[0].AC)

	// wound the dragon so one hit ends it
	stored := s.getCombat(sessionID)
	stored.Enemies[0].HP = 1
	s.Require().NoError(s.combats.SaveCombat(s.ctx, &combatRepo.SaveCombatInput{Combat: stored}))

	gomock.InOrder(
		s.mockDice.EXPECT().Roll(20).Return(15),
		s.mockDice.EXPECT().Roll(20).Return(14),
		s.mockDice.EXPECT().Roll(20).Return(10),
		s.mockDice.EXPECT().Roll(20).Return(14),
		s.mockDice.EXPECT().Roll(10).Return(6),
	)
	s.rollInitiative(sessionID)

	out := s.attack(sessionID, 1, "dragon-1")
	s.Equal(17, out.Attack.Total)
	s.True(out.Attack.TargetDied)
	s.True(out.CombatOver)

	session := s.getSession(sessionID)
	s.Equal("hoard", session.CurrentChapterID)
	s.Equal(models.SessionStatusCompleted, session.Status)

	_, err := s.combats.GetCombat(s.ctx, &combatRepo.GetCombatInput{SessionID: sessionID})
	s.ErrorIs(err, combatRepo.ErrCombatNotFound)

	var choice *models.TimelineEntry
	for _, e := range s.timeline(sessionID) {
		if e.Kind == models.TimelineEntryChoiceResult && e.ChapterID == "lair" {
			choice = e
		}
	}
	s.Require().NotNil(choice)
	s.Equal("claim", choice.ChoiceMade)
	s.Equal(models.DecisionCombat, choice.VotingResult.DecisionMethod)
}

func (s *GameServiceTestSuite) TestLeavingForfeitsCombat() {
	sessionID := s.startedSession(3, nil)
	s.vote(sessionID, 1, "enter_cave")
	s.vote(sessionID, 2, "enter_cave")
	s.vote(sessionID, 3, "enter_cave")

	_, err := s.svc.InitiateCombat(s.ctx, &InitiateCombatInput{UserID: userID(1), SessionID: sessionID})
	s.Require().NoError(err)

	gomock.InOrder(s.expectRolls(20, 13, 12, 10)...)
	s.rollInitiative(sessionID)

	// player 3 never rolled, so leaving lets the turn order form
	_, err = s.svc.LeaveSession(s.ctx, &LeaveSessionInput{UserID: userID(3), SessionID: sessionID})
	s.Require().NoError(err)

	combat := s.getCombat(sessionID)
	gone := combat.GetParticipant(characterID(3))
	s.True(gone.IsDead)
	s.True(gone.PermanentlyDead)
	s.Len(combat.TurnOrder, 3)
	s.Equal(models.CombatantRef{Kind: models.CombatantKindPlayer, ID: characterID(1)}, combat.TurnOrder[0])
	s.True(combat.IsActive)

	died := s.updatesOfType(sessionID, models.UpdateCharacterDied)
	s.Require().Len(died, 1)
	payload := s.payload(died[0])
	s.Equal(characterID(3), payload["character_id"])
	s.Equal(userID(3), payload["user_id"])
	s.Equal("left", payload["reason"])
}

func (s *GameServiceTestSuite) TestConcurrentInitiativeOrdersTurnsOnce() {
	sessionID := s.startedSession(2, nil)
	s.enterFight(sessionID, "enter_cave")

	// both heroes land on 12, the goblin on 10, so no enemy acts first
	s.mockDice.EXPECT().Roll(20).Return(10).Times(3)

	outs := make(chan *RollInitiativeOutput, 2)
	errs := make(chan error, 2)
	for i := 1; i <= 2; i++ {
		go func(n int) {
			out, err := s.svc.RollInitiative(context.Background(), &RollInitiativeInput{
				UserID:      userID(n),
				SessionID:   sessionID,
				CharacterID: characterID(n),
			})
			errs <- err
			outs <- out
		}(i)
	}

	ready := 0
	for i := 0; i < 2; i++ {
		s.Require().NoError(<-errs)
		if out := <-outs; out.TurnOrderReady {
			ready++
		}
	}
	s.Equal(1, ready)

	ordered := 0
	for _, u := range s.updatesOfType(sessionID, models.UpdateSessionStateChanged) {
		if s.payload(u)["reason"] == "turn_order_ready" {
			ordered++
		}
	}
	s.Equal(1, ordered)

	combat := s.getCombat(sessionID)
	s.Len(combat.TurnOrder, 3)
	s.Equal(models.CombatantRef{Kind: models.CombatantKindEnemy, ID: "goblin-1"}, combat.TurnOrder[2])
}
