package api

import (
	"net/http"

	"github.com/KirkDiggler/taleforge/internal/models"
	"github.com/KirkDiggler/taleforge/internal/services/game"
)

func (h *Handler) checkGameUpdates(w http.ResponseWriter, r *http.Request) {
	limit, valid := queryInt(w, r, "limit")
	if !valid {
		return
	}

	out, err := h.service.CheckGameUpdates(r.Context(), &game.CheckGameUpdatesInput{
		UserID:       UserID(r.Context()),
		SessionID:    sessionID(r),
		LastUpdateID: r.URL.Query().Get("after"),
		Limit:        limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	updates := out.Updates
	if updates == nil {
		updates = []*models.UpdateEvent{}
	}
	ok(w, map[string]any{
		"updates":        updates,
		"last_update_id": out.LastUpdateID,
		"has_more":       out.HasMore,
	})
}

func (h *Handler) updatePlayerStatus(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.UpdatePlayerStatus(r.Context(), &game.UpdatePlayerStatusInput{
		UserID:    UserID(r.Context()),
		SessionID: sessionID(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	ok(w, map[string]any{"reconnected": out.Reconnected})
}
