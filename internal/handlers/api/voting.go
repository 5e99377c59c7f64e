package api

import (
	"net/http"

	"github.com/KirkDiggler/taleforge/internal/models"
	"github.com/KirkDiggler/taleforge/internal/services/game"
)

type voteRequest struct {
	CharacterID string `json:"character_id" validate:"required"`
	OptionID    string `json:"option_id" validate:"required"`
}

func (h *Handler) vote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := h.service.Vote(r.Context(), &game.VoteInput{
		UserID:      UserID(r.Context()),
		SessionID:   sessionID(r),
		CharacterID: req.CharacterID,
		OptionID:    req.OptionID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	ok(w, map[string]any{
		"vote":           out.Vote,
		"round_complete": out.RoundComplete,
		"result":         out.Result,
		"tie_detected":   out.TieDetected,
	})
}

type optionTally struct {
	OptionID   string `json:"option_id"`
	Text       string `json:"text"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

func (h *Handler) getVoteStatus(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.GetVoteStatus(r.Context(), &game.GetVoteStatusInput{
		UserID:    UserID(r.Context()),
		SessionID: sessionID(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	options := make([]optionTally, 0, len(out.Options))
	for _, o := range out.Options {
		options = append(options, optionTally{
			OptionID:   o.OptionID,
			Text:       o.Text,
			Count:      o.Count,
			Percentage: o.Percentage,
		})
	}
	pending := out.PendingVoters
	if pending == nil {
		pending = []string{}
	}

	ok(w, map[string]any{
		"total_online":   out.TotalOnline,
		"total_votes":    out.TotalVotes,
		"options":        options,
		"pending_voters": pending,
		"has_voted":      out.HasVoted,
		"pending_tie":    out.PendingTie,
	})
}

type resolveTieRequest struct {
	Strategy     models.TieResolutionStrategy `json:"strategy" validate:"omitempty,oneof=REVOTE RANDOM MASTER_DECIDES"`
	MasterChoice string                       `json:"master_choice"`
}

func (h *Handler) resolveTie(w http.ResponseWriter, r *http.Request) {
	var req resolveTieRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := h.service.ResolveTie(r.Context(), &game.ResolveTieInput{
		UserID:       UserID(r.Context()),
		SessionID:    sessionID(r),
		Strategy:     req.Strategy,
		MasterChoice: req.MasterChoice,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	ok(w, map[string]any{
		"result": out.Result,
		"revote": out.Revote,
	})
}
