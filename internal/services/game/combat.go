package game

import (
	"context"
	"fmt"
	"sort"

	"github.com/KirkDiggler/taleforge/internal/dice"
	"github.com/KirkDiggler/taleforge/internal/models"
	"github.com/rs/zerolog/log"
)

// fight bundles what a combat mutation needs to resolve a fight
type fight struct {
	t       *txn
	story   *models.Story
	chapter *models.Chapter
	combat  *models.CombatState
}

// InitiateCombat starts a fight on the current combat chapter
func (s *service) InitiateCombat(ctx context.Context, input *InitiateCombatInput) (*InitiateCombatOutput, error) {
	if input == nil {
		return nil, newError(KindInvalidParams, "input cannot be nil")
	}

	session, unlock, err := s.lockSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, err := requireParticipant(session, input.UserID); err != nil {
		return nil, err
	}

	if session.Status != models.SessionStatusInProgress {
		return nil, newError(KindInvalidState, "combat needs a session in progress")
	}

	_, chapter, err := s.currentChapter(ctx, session)
	if err != nil {
		return nil, err
	}

	if !chapter.IsCombat {
		return nil, newError(KindInvalidState, "chapter %s is not a combat chapter", chapter.ID)
	}

	existing, err := s.findCombat(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.IsActive {
		return nil, newError(KindConflict, "combat is already active")
	}
	if existing != nil && existing.ChapterID == chapter.ID {
		return nil, newError(KindConflict, "the fight of chapter %s is already over", chapter.ID)
	}

	enemies := s.encounters.Generate(chapter)
	if len(enemies) == 0 {
		return nil, fmt.Errorf("no enemies generated for chapter %s", chapter.ID)
	}

	players := make([]*models.CombatParticipant, 0, len(session.Participants))
	for _, p := range session.Participants {
		if p.CharacterID == "" {
			continue
		}
		character, err := s.getCharacter(ctx, p.CharacterID)
		if err != nil {
			return nil, err
		}
		players = append(players, newCombatParticipant(character))
	}
	if len(players) == 0 {
		return nil, newError(KindInvalidState, "no characters to fight with")
	}

	t := s.begin(session)
	combat := &models.CombatState{
		SessionID:    session.ID,
		ChapterID:    chapter.ID,
		IsActive:     true,
		Participants: players,
		Enemies:      enemies,
		TurnOrder:    []models.CombatantRef{},
		StartedAt:    t.now,
	}
	t.putCombat(combat)

	enemySummary := make([]map[string]any, 0, len(enemies))
	for _, e := range enemies {
		enemySummary = append(enemySummary, map[string]any{
			"id":     e.ID,
			"name":   e.Name,
			"hp":     e.HP,
			"max_hp": e.MaxHP,
			"ac":     e.AC,
		})
	}
	t.emit(models.UpdateCombatStarted, map[string]any{
		"chapter_id": chapter.ID,
		"enemies":    enemySummary,
		"players":    len(players),
	})
	t.record(models.TimelineEntrySystemMessage, chapter.ID, func(e *models.TimelineEntry) {
		e.Message = fmt.Sprintf("Combat begins against %d enemies.", len(enemies))
	})

	if err := s.commit(ctx, t); err != nil {
		return nil, err
	}

	log.Info().
		Str("session_id", session.ID).
		Str("chapter_id", chapter.ID).
		Int("enemies", len(enemies)).
		Int("players", len(players)).
		Msg("combat started")

	return &InitiateCombatOutput{
		Combat: combat,
	}, nil
}

// lockFight loads the session and its active combat under the session lock
func (s *service) lockFight(ctx context.Context, sessionID, userID string) (*fight, func(), error) {
	session, unlock, err := s.lockSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	f, err := s.loadFight(ctx, session, userID)
	if err != nil {
		unlock()
		return nil, nil, err
	}

	return f, unlock, nil
}

func (s *service) loadFight(ctx context.Context, session *models.Session, userID string) (*fight, error) {
	if _, err := requireParticipant(session, userID); err != nil {
		return nil, err
	}

	combat, err := s.findCombat(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if combat == nil {
		return nil, newError(KindNotFound, "session %s has no combat", session.ID)
	}
	if !combat.IsActive {
		return nil, newError(KindConflict, "combat is over")
	}

	story, chapter, err := s.currentChapter(ctx, session)
	if err != nil {
		return nil, err
	}

	t := s.begin(session)
	t.putCombat(combat)

	return &fight{
		t:       t,
		story:   story,
		chapter: chapter,
		combat:  combat,
	}, nil
}

// ownCombatant returns the caller's combat sheet for a character
func ownCombatant(combat *models.CombatState, characterID, userID string) (*models.CombatParticipant, error) {
	cp := combat.GetParticipant(characterID)
	if cp == nil {
		return nil, newError(KindNotFound, "character %s is not in this combat", characterID)
	}
	if cp.UserID != userID {
		return nil, newError(KindForbidden, "character %s does not belong to the caller", characterID)
	}
	return cp, nil
}

// GetCombatState returns the combat record of a session
func (s *service) GetCombatState(ctx context.Context, input *GetCombatStateInput) (*GetCombatStateOutput, error) {
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

	combat, err := s.findCombat(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if combat == nil {
		return nil, newError(KindNotFound, "session %s has no combat", session.ID)
	}

	return &GetCombatStateOutput{
		Combat: combat,
	}, nil
}

// RollInitiative rolls initiative for one of the caller's characters
func (s *service) RollInitiative(ctx context.Context, input *RollInitiativeInput) (*RollInitiativeOutput, error) {
	if input == nil {
		return nil, newError(KindInvalidParams, "input cannot be nil")
	}

	f, unlock, err := s.lockFight(ctx, input.SessionID, input.UserID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	cp, err := ownCombatant(f.combat, input.CharacterID, input.UserID)
	if err != nil {
		return nil, err
	}

	if cp.HasRolled || len(f.combat.TurnOrder) > 0 {
		return nil, newError(KindConflict, "%s already rolled initiative", cp.Name)
	}

	roll := s.diceRoller.Roll(d20)
	cp.Initiative = roll + cp.DexModifier
	cp.HasRolled = true

	actions := s.maybeFixTurnOrder(f)
	if err := s.resolveIfWon(f); err != nil {
		return nil, err
	}

	if err := s.commit(ctx, f.t); err != nil {
		return nil, err
	}

	return &RollInitiativeOutput{
		Roll:           roll,
		Initiative:     cp.Initiative,
		TurnOrderReady: len(f.combat.TurnOrder) > 0,
		EnemyActions:   actions,
		Combat:         f.combat,
	}, nil
}

// maybeFixTurnOrder fixes the turn order once every living player rolled.
// Enemies roll a plain d20. Ties keep registration order: players in roster order,
// then enemies in generation order.
func (s *service) maybeFixTurnOrder(f *fight) []*AttackResult {
	combat := f.combat
	if len(combat.TurnOrder) > 0 || !combat.IsActive {
		return nil
	}

	for _, p := range combat.Participants {
		if !p.IsDead && !p.HasRolled {
			return nil
		}
	}

	for _, e := range combat.Enemies {
		if !e.IsDead && !e.HasRolled {
			e.Initiative = s.diceRoller.Roll(d20)
			e.HasRolled = true
		}
	}

	type entry struct {
		ref        models.CombatantRef
		initiative int
	}
	entries := make([]entry, 0, len(combat.Participants)+len(combat.Enemies))
	for _, p := range combat.Participants {
		if !p.IsDead {
			entries = append(entries, entry{models.CombatantRef{Kind: models.CombatantKindPlayer, ID: p.CharacterID}, p.Initiative})
		}
	}
	for _, e := range combat.Enemies {
		if !e.IsDead {
			entries = append(entries, entry{models.CombatantRef{Kind: models.CombatantKindEnemy, ID: e.ID}, e.Initiative})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].initiative > entries[j].initiative
	})

	order := make([]models.CombatantRef, 0, len(entries))
	for _, e := range entries {
		order = append(order, e.ref)
	}
	combat.TurnOrder = order
	combat.CurrentTurnIndex = 0
	combat.Round = 1

	first := combat.NameOf(order[0])
	f.t.emit(models.UpdateSessionStateChanged, map[string]any{
		"status":     f.t.session.Status,
		"reason":     "turn_order_ready",
		"turn_order": order,
		"first_turn": first,
	})

	return s.runEnemyTurns(f)
}

// GetCurrentTurn reports whose turn it is
func (s *service) GetCurrentTurn(ctx context.Context, input *GetCurrentTurnInput) (*GetCurrentTurnOutput, error) {
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

	combat, err := s.findCombat(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if combat == nil {
		return nil, newError(KindNotFound, "session %s has no combat", session.ID)
	}

	out := &GetCurrentTurnOutput{
		CombatantCount: len(combat.Participants) + len(combat.Enemies),
		Round:          combat.Round,
	}

	ref, ok := combat.CurrentTurn()
	if !ok || !combat.IsActive {
		return out, nil
	}

	out.Ready = true
	out.Kind = ref.Kind
	out.CombatantID = ref.ID
	out.Name = combat.NameOf(ref)
	out.TurnIndex = combat.CurrentTurnIndex
	out.CombatantCount = len(combat.TurnOrder)

	return out, nil
}

// requireTurn checks that it is the caller's character that acts now
func requireTurn(combat *models.CombatState, characterID, userID string) (*models.CombatParticipant, error) {
	ref, ok := combat.CurrentTurn()
	if !ok {
		return nil, newError(KindInvalidState, "initiative is still being rolled")
	}

	cp, err := ownCombatant(combat, characterID, userID)
	if err != nil {
		return nil, err
	}

	if ref.Kind != models.CombatantKindPlayer || ref.ID != characterID {
		return nil, newError(KindForbidden, "it is not %s's turn", cp.Name)
	}

	return cp, nil
}

// rollAttack rolls a d20 against an armor class. A natural 20 always hits with
// doubled dice, a natural 1 always misses and hurts the attacker.
func (s *service) rollAttack(modifier, damageDie, targetAC int) *AttackResult {
	if damageDie <= 0 {
		damageDie = defaultProfile.damageDie
	}

	roll := s.diceRoller.Roll(d20)
	result := &AttackResult{
		Roll:  roll,
		Total: roll + modifier,
	}

	switch {
	case roll == d20:
		result.Hit = true
		result.Critical = true
		result.Damage = dice.Sum(dice.RollMany(s.diceRoller, 2, damageDie))
	case roll == 1:
		result.Fumble = true
		result.SelfDamage = s.diceRoller.Roll(fumbleDie)
	case result.Total >= targetAC:
		result.Hit = true
		result.Damage = s.diceRoller.Roll(damageDie)
	}

	return result
}

// applyFumble hurts the attacker without ever knocking it out
func applyFumble(hp *int, selfDamage int) {
	*hp -= selfDamage
	if *hp < 1 {
		*hp = 1
	}
}

// PerformAttack resolves an attack by the acting player
func (s *service) PerformAttack(ctx context.Context, input *PerformAttackInput) (*PerformAttackOutput, error) {
	if input == nil {
		return nil, newError(KindInvalidParams, "input cannot be nil")
	}

	f, unlock, err := s.lockFight(ctx, input.SessionID, input.UserID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	attacker, err := requireTurn(f.combat, input.AttackerID, input.UserID)
	if err != nil {
		return nil, err
	}

	target := f.combat.GetEnemy(input.TargetID)
	if target == nil {
		return nil, newError(KindInvalidParams, "%s is not an enemy in this combat", input.TargetID)
	}
	if target.IsDead {
		return nil, newError(KindInvalidState, "%s is already dead", target.Name)
	}

	result := s.rollAttack(attacker.AttackModifier, attacker.DamageDie, target.AC)
	result.AttackerID = attacker.CharacterID
	result.AttackerName = attacker.Name
	result.TargetID = target.ID
	result.TargetName = target.Name

	if result.Fumble {
		applyFumble(&attacker.HP, result.SelfDamage)
	}
	if result.Hit {
		target.HP -= result.Damage
		if target.HP <= 0 {
			target.HP = 0
			target.IsDead = true
			result.TargetDied = true
		}
	}
	result.TargetHP = target.HP
	f.t.emit(models.UpdateAttackMade, result)

	actions, err := s.endTurn(f)
	if err != nil {
		return nil, err
	}

	if err := s.commit(ctx, f.t); err != nil {
		return nil, err
	}

	return &PerformAttackOutput{
		Attack:       result,
		EnemyActions: actions,
		CombatOver:   !f.combat.IsActive,
		WinningSide:  f.combat.WinningSide,
		Combat:       f.combat,
	}, nil
}

// SkipTurn lets the acting player recover a little HP instead of attacking
func (s *service) SkipTurn(ctx context.Context, input *SkipTurnInput) (*SkipTurnOutput, error) {
	if input == nil {
		return nil, newError(KindInvalidParams, "input cannot be nil")
	}

	f, unlock, err := s.lockFight(ctx, input.SessionID, input.UserID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	cp, err := requireTurn(f.combat, input.CharacterID, input.UserID)
	if err != nil {
		return nil, err
	}

	healed := s.skipTurnHeal
	if cp.HP+healed > cp.MaxHP {
		healed = cp.MaxHP - cp.HP
	}
	cp.HP += healed

	f.t.emit(models.UpdateSessionStateChanged, map[string]any{
		"status":       f.t.session.Status,
		"reason":       "turn_skipped",
		"character_id": cp.CharacterID,
		"healed":       healed,
		"hp":           cp.HP,
	})

	actions, err := s.endTurn(f)
	if err != nil {
		return nil, err
	}

	if err := s.commit(ctx, f.t); err != nil {
		return nil, err
	}

	return &SkipTurnOutput{
		Healed:       healed,
		HP:           cp.HP,
		EnemyActions: actions,
		CombatOver:   !f.combat.IsActive,
		WinningSide:  f.combat.WinningSide,
		Combat:       f.combat,
	}, nil
}

// endTurn resolves the fight if a side is wiped out, otherwise passes the turn on
// and plays any enemy turns that follow.
func (s *service) endTurn(f *fight) ([]*AttackResult, error) {
	if over, err := s.checkCombatOver(f); over || err != nil {
		return nil, err
	}

	advanceTurn(f.combat)
	actions := s.runEnemyTurns(f)

	return actions, s.resolveIfWon(f)
}

// resolveIfWon resolves a fight that enemy turns just ended
func (s *service) resolveIfWon(f *fight) error {
	if f.combat.IsActive || f.combat.WinningSide == "" {
		return nil
	}
	return s.resolveCombat(f)
}

// advanceTurn moves to the next living combatant, counting a round on every wrap
func advanceTurn(combat *models.CombatState) {
	n := len(combat.TurnOrder)
	if n == 0 {
		return
	}

	for step := 1; step <= n; step++ {
		next := combat.CurrentTurnIndex + step
		idx := next % n
		if !combat.IsAlive(combat.TurnOrder[idx]) {
			continue
		}
		if next >= n {
			combat.Round++
		}
		combat.CurrentTurnIndex = idx
		return
	}
}

// runEnemyTurns plays enemy turns until a player is up or a side has won.
// A side winning only marks the combat; the caller resolves it.
func (s *service) runEnemyTurns(f *fight) []*AttackResult {
	combat := f.combat
	actions := []*AttackResult{}

	for i := 0; i < len(combat.TurnOrder) && combat.IsActive; i++ {
		ref, ok := combat.CurrentTurn()
		if !ok || ref.Kind != models.CombatantKindEnemy {
			break
		}

		enemy := combat.GetEnemy(ref.ID)
		target := weakestPlayer(combat)
		if enemy == nil || enemy.IsDead || target == nil {
			break
		}

		result := s.rollAttack(enemy.AttackModifier, enemy.DamageDie, target.AC)
		result.AttackerID = enemy.ID
		result.AttackerName = enemy.Name
		result.TargetID = target.CharacterID
		result.TargetName = target.Name

		if result.Fumble {
			applyFumble(&enemy.HP, result.SelfDamage)
		}
		if result.Hit {
			target.HP -= result.Damage
			if target.HP <= 0 {
				target.HP = 0
				target.IsDead = true
				result.TargetDied = true
			}
		}
		result.TargetHP = target.HP

		f.t.emit(models.UpdateAttackMade, result)
		if result.TargetDied {
			f.t.emit(models.UpdateCharacterDied, map[string]any{
				"character_id": target.CharacterID,
				"user_id":      target.UserID,
				"name":         target.Name,
				"killed_by":    enemy.Name,
			})
		}
		actions = append(actions, result)

		if combat.LivingPlayers() == 0 {
			markWinner(f, models.CombatSideEnemies)
			break
		}

		advanceTurn(combat)
	}

	return actions
}

// weakestPlayer is the living player with the lowest HP, earliest in the roster on ties
func weakestPlayer(combat *models.CombatState) *models.CombatParticipant {
	var weakest *models.CombatParticipant
	for _, p := range combat.Participants {
		if p.IsDead {
			continue
		}
		if weakest == nil || p.HP < weakest.HP {
			weakest = p
		}
	}
	return weakest
}

func markWinner(f *fight, side models.CombatSide) {
	endedAt := f.t.now
	f.combat.IsActive = false
	f.combat.WinningSide = side
	f.combat.EndedAt = &endedAt
}

// checkCombatOver resolves the fight when one side has no living members
func (s *service) checkCombatOver(f *fight) (bool, error) {
	switch {
	case f.combat.LivingEnemies() == 0:
		markWinner(f, models.CombatSidePlayers)
	case f.combat.LivingPlayers() == 0:
		markWinner(f, models.CombatSideEnemies)
	default:
		return false, nil
	}

	return true, s.resolveCombat(f)
}

// resolveCombat follows the chapter's outcome options. Without one, a victory
// opens voting on the chapter and a defeat ends the story.
func (s *service) resolveCombat(f *fight) error {
	t := f.t
	side := f.combat.WinningSide

	reason := "combat_won"
	message := "The party is victorious."
	if side == models.CombatSideEnemies {
		reason = "combat_lost"
		message = "The party has fallen."
	}

	t.record(models.TimelineEntrySystemMessage, f.chapter.ID, func(e *models.TimelineEntry) {
		e.Message = message
	})
	t.emit(models.UpdateSessionStateChanged, map[string]any{
		"status":       t.session.Status,
		"reason":       reason,
		"winning_side": side,
		"rounds":       f.combat.Round,
	})

	log.Info().
		Str("session_id", t.session.ID).
		Str("chapter_id", f.chapter.ID).
		Str("winning_side", string(side)).
		Int("rounds", f.combat.Round).
		Msg("combat resolved")

	outcome := f.chapter.VictoryOptionID
	if side == models.CombatSideEnemies {
		outcome = f.chapter.DefeatOptionID
	}

	if outcome != "" {
		return s.advanceChapter(t, f.story, f.chapter, outcome, &models.VotingResult{
			WinningOptionID: outcome,
			DecisionMethod:  models.DecisionCombat,
			Counts:          map[string]int{},
		})
	}

	if side == models.CombatSideEnemies {
		s.endStory(t, f.chapter.ID, "party_defeated")
		return nil
	}

	t.session.ResetRound()
	roundStart := t.now
	t.session.RoundStartedAt = &roundStart
	return nil
}

// AttemptRevive tries to bring a dead player character back
func (s *service) AttemptRevive(ctx context.Context, input *AttemptReviveInput) (*AttemptReviveOutput, error) {
	if input == nil {
		return nil, newError(KindInvalidParams, "input cannot be nil")
	}

	f, unlock, err := s.lockFight(ctx, input.SessionID, input.UserID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	cp, err := ownCombatant(f.combat, input.CharacterID, input.UserID)
	if err != nil {
		return nil, err
	}

	if !cp.IsDead {
		return nil, newError(KindInvalidState, "%s is not dead", cp.Name)
	}

	if cp.PermanentlyDead || cp.ReviveAttempts >= models.MaxReviveAttempts {
		return nil, newError(KindInvalidState, "%s cannot be revived anymore", cp.Name)
	}

	rolls := dice.RollMany(s.diceRoller, 2, d10)
	total := dice.Sum(rolls)
	out := &AttemptReviveOutput{
		Rolls: rolls,
		Total: total,
	}

	if total >= reviveTarget {
		cp.IsDead = false
		cp.HP = cp.MaxHP / 2
		if cp.HP < 1 {
			cp.HP = 1
		}
		out.Success = true
		f.t.emit(models.UpdateCharacterRevived, map[string]any{
			"character_id": cp.CharacterID,
			"user_id":      cp.UserID,
			"name":         cp.Name,
			"hp":           cp.HP,
			"rolls":        rolls,
		})
	} else {
		cp.ReviveAttempts++
		if cp.ReviveAttempts >= models.MaxReviveAttempts {
			cp.PermanentlyDead = true
		}
		f.t.emit(models.UpdateReviveFailed, map[string]any{
			"character_id":     cp.CharacterID,
			"user_id":          cp.UserID,
			"name":             cp.Name,
			"attempts":         cp.ReviveAttempts,
			"permanently_dead": cp.PermanentlyDead,
			"rolls":            rolls,
		})
	}

	if err := s.commit(ctx, f.t); err != nil {
		return nil, err
	}

	out.HP = cp.HP
	out.ReviveAttempts = cp.ReviveAttempts
	out.PermanentlyDead = cp.PermanentlyDead

	return out, nil
}

// forfeitCombatant takes a departing player out of an active fight for good
func (s *service) forfeitCombatant(ctx context.Context, t *txn, participant *models.Participant) error {
	if participant.CharacterID == "" {
		return nil
	}

	combat, err := s.findCombat(ctx, t.session.ID)
	if err != nil {
		return err
	}
	if combat == nil || !combat.IsActive {
		return nil
	}

	cp := combat.GetParticipant(participant.CharacterID)
	if cp == nil || cp.IsDead {
		return nil
	}

	story, chapter, err := s.currentChapter(ctx, t.session)
	if err != nil {
		return err
	}

	f := &fight{t: t, story: story, chapter: chapter, combat: combat}
	t.putCombat(combat)

	ref, ok := combat.CurrentTurn()
	wasTurn := ok && ref.Kind == models.CombatantKindPlayer && ref.ID == cp.CharacterID

	cp.IsDead = true
	cp.PermanentlyDead = true
	t.emit(models.UpdateCharacterDied, map[string]any{
		"character_id": cp.CharacterID,
		"user_id":      cp.UserID,
		"name":         cp.Name,
		"reason":       "left",
	})

	if over, err := s.checkCombatOver(f); over || err != nil {
		return err
	}

	if len(combat.TurnOrder) == 0 {
		s.maybeFixTurnOrder(f)
		return s.resolveIfWon(f)
	}

	if wasTurn {
		_, err := s.endTurn(f)
		return err
	}

	return nil
}
