package api

import (
	"net/http"

	"github.com/KirkDiggler/taleforge/internal/models"
	"github.com/KirkDiggler/taleforge/internal/services/game"
)

type createSessionRequest struct {
	Name                  string                       `json:"name" validate:"required,max=100"`
	StoryID               string                       `json:"story_id" validate:"required"`
	MaxPlayers            int                          `json:"max_players" validate:"omitempty,min=2,max=8"`
	TieResolutionStrategy models.TieResolutionStrategy `json:"tie_resolution_strategy" validate:"omitempty,oneof=REVOTE RANDOM MASTER_DECIDES"`
	VotingTimeoutMinutes  int                          `json:"voting_timeout_minutes" validate:"min=0"`
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := h.service.CreateSession(r.Context(), &game.CreateSessionInput{
		UserID:                UserID(r.Context()),
		Username:              Username(r.Context()),
		Name:                  req.Name,
		MaxPlayers:            req.MaxPlayers,
		StoryID:               req.StoryID,
		TieResolutionStrategy: req.TieResolutionStrategy,
		VotingTimeoutMinutes:  req.VotingTimeoutMinutes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	created(w, out.Session)
}

type joinSessionRequest struct {
	JoinCode string `json:"join_code"`
}

// joinSession serves both /sessions/join (by code) and /sessions/{sessionID}/join
func (h *Handler) joinSession(w http.ResponseWriter, r *http.Request) {
	var req joinSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	id := sessionID(r)
	if id == "" && req.JoinCode == "" {
		badRequest(w, "validation failed", map[string]string{"join_code": "field is required"})
		return
	}

	out, err := h.service.JoinSession(r.Context(), &game.JoinSessionInput{
		UserID:    UserID(r.Context()),
		Username:  Username(r.Context()),
		SessionID: id,
		JoinCode:  req.JoinCode,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	ok(w, map[string]any{
		"session":        out.Session,
		"already_joined": out.AlreadyJoined,
	})
}

func (h *Handler) leaveSession(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.LeaveSession(r.Context(), &game.LeaveSessionInput{
		UserID:    UserID(r.Context()),
		SessionID: sessionID(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	ok(w, out.Session)
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	_, err := h.service.DeleteSession(r.Context(), &game.DeleteSessionInput{
		UserID:    UserID(r.Context()),
		SessionID: sessionID(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) transitionToCreatingCharacters(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.TransitionToCreatingCharacters(r.Context(), &game.TransitionToCreatingCharactersInput{
		UserID:    UserID(r.Context()),
		SessionID: sessionID(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	ok(w, out.Session)
}

type bindCharacterRequest struct {
	CharacterID string `json:"character_id" validate:"required"`
}

func (h *Handler) bindCharacter(w http.ResponseWriter, r *http.Request) {
	var req bindCharacterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := h.service.BindCharacter(r.Context(), &game.BindCharacterInput{
		UserID:      UserID(r.Context()),
		SessionID:   sessionID(r),
		CharacterID: req.CharacterID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	ok(w, map[string]any{
		"session":   out.Session,
		"all_ready": out.AllReady,
	})
}

func (h *Handler) canStartSession(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.CanStartSession(r.Context(), &game.CanStartSessionInput{
		UserID:    UserID(r.Context()),
		SessionID: sessionID(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	missing := out.MissingParticipants
	if missing == nil {
		missing = []string{}
	}
	ok(w, map[string]any{
		"can_start":            out.CanStart,
		"missing_participants": missing,
	})
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.StartSession(r.Context(), &game.StartSessionInput{
		UserID:    UserID(r.Context()),
		SessionID: sessionID(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	ok(w, map[string]any{
		"session": out.Session,
		"chapter": out.Chapter,
	})
}

func (h *Handler) getGameState(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.GetGameState(r.Context(), &game.GetGameStateInput{
		UserID:    UserID(r.Context()),
		SessionID: sessionID(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	ok(w, map[string]any{
		"session":          out.Session,
		"chapter":          out.Chapter,
		"is_final_chapter": out.IsFinalChapter,
		"votes":            out.Votes,
		"pending_tie":      out.PendingTie,
		"combat_active":    out.CombatActive,
	})
}

func (h *Handler) getTimelineHistory(w http.ResponseWriter, r *http.Request) {
	limit, valid := queryInt(w, r, "limit")
	if !valid {
		return
	}

	out, err := h.service.GetTimelineHistory(r.Context(), &game.GetTimelineHistoryInput{
		UserID:    UserID(r.Context()),
		SessionID: sessionID(r),
		AfterID:   r.URL.Query().Get("after"),
		Limit:     limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	entries := out.Entries
	if entries == nil {
		entries = []*models.TimelineEntry{}
	}
	ok(w, map[string]any{
		"entries":       entries,
		"last_entry_id": out.LastEntryID,
		"has_more":      out.HasMore,
	})
}
