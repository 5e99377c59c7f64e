package api

import (
	"net/http"

	"github.com/KirkDiggler/taleforge/internal/services/game"
)

type characterRequest struct {
	CharacterID string `json:"character_id" validate:"required"`
}

type attackRequest struct {
	AttackerID string `json:"attacker_id" validate:"required"`
	TargetID   string `json:"target_id" validate:"required"`
}

func enemyActions(actions []*game.AttackResult) []*game.AttackResult {
	if actions == nil {
		return []*game.AttackResult{}
	}
	return actions
}

func (h *Handler) initiateCombat(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.InitiateCombat(r.Context(), &game.InitiateCombatInput{
		UserID:    UserID(r.Context()),
		SessionID: sessionID(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	created(w, out.Combat)
}

func (h *Handler) getCombatState(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.GetCombatState(r.Context(), &game.GetCombatStateInput{
		UserID:    UserID(r.Context()),
		SessionID: sessionID(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	ok(w, out.Combat)
}

func (h *Handler) rollInitiative(w http.ResponseWriter, r *http.Request) {
	var req characterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := h.service.RollInitiative(r.Context(), &game.RollInitiativeInput{
		UserID:      UserID(r.Context()),
		SessionID:   sessionID(r),
		CharacterID: req.CharacterID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	ok(w, map[string]any{
		"roll":             out.Roll,
		"initiative":       out.Initiative,
		"turn_order_ready": out.TurnOrderReady,
		"enemy_actions":    enemyActions(out.EnemyActions),
		"combat":           out.Combat,
	})
}

func (h *Handler) getCurrentTurn(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.GetCurrentTurn(r.Context(), &game.GetCurrentTurnInput{
		UserID:    UserID(r.Context()),
		SessionID: sessionID(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	ok(w, map[string]any{
		"ready":           out.Ready,
		"kind":            out.Kind,
		"combatant_id":    out.CombatantID,
		"name":            out.Name,
		"turn_index":      out.TurnIndex,
		"combatant_count": out.CombatantCount,
		"round":           out.Round,
	})
}

func (h *Handler) performAttack(w http.ResponseWriter, r *http.Request) {
	var req attackRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := h.service.PerformAttack(r.Context(), &game.PerformAttackInput{
		UserID:     UserID(r.Context()),
		SessionID:  sessionID(r),
		AttackerID: req.AttackerID,
		TargetID:   req.TargetID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	ok(w, map[string]any{
		"attack":        out.Attack,
		"enemy_actions": enemyActions(out.EnemyActions),
		"combat_over":   out.CombatOver,
		"winning_side":  out.WinningSide,
		"combat":        out.Combat,
	})
}

func (h *Handler) skipTurn(w http.ResponseWriter, r *http.Request) {
	var req characterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := h.service.SkipTurn(r.Context(), &game.SkipTurnInput{
		UserID:      UserID(r.Context()),
		SessionID:   sessionID(r),
		CharacterID: req.CharacterID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	ok(w, map[string]any{
		"healed":        out.Healed,
		"hp":            out.HP,
		"enemy_actions": enemyActions(out.EnemyActions),
		"combat_over":   out.CombatOver,
		"winning_side":  out.WinningSide,
		"combat":        out.Combat,
	})
}

func (h *Handler) attemptRevive(w http.ResponseWriter, r *http.Request) {
	var req characterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := h.service.AttemptRevive(r.Context(), &game.AttemptReviveInput{
		UserID:      UserID(r.Context()),
		SessionID:   sessionID(r),
		CharacterID: req.CharacterID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	ok(w, map[string]any{
		"rolls":            out.Rolls,
		"total":            out.Total,
		"success":          out.Success,
		"hp":               out.HP,
		"revive_attempts":  out.ReviveAttempts,
		"permanently_dead": out.PermanentlyDead,
	})
}
