package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/KirkDiggler/taleforge/internal/services/game"
)

// Response is the envelope of every API response
type Response struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Error   any  `json:"error,omitempty"`
}

// ErrorBody describes a failed operation
type ErrorBody struct {
	Kind    game.Kind         `json:"kind"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Warn().Err(err).Msg("failed to encode response")
	}
}

func ok(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func created(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, Response{Success: true, Data: data})
}

func fail(w http.ResponseWriter, status int, body *ErrorBody) {
	writeJSON(w, status, Response{Success: false, Error: body})
}

func badRequest(w http.ResponseWriter, message string, fields map[string]string) {
	fail(w, http.StatusBadRequest, &ErrorBody{
		Kind:    game.KindInvalidParams,
		Message: message,
		Fields:  fields,
	})
}

func unauthorized(w http.ResponseWriter, message string) {
	fail(w, http.StatusUnauthorized, &ErrorBody{
		Kind:    game.KindUnauthorized,
		Message: message,
	})
}

// StatusForKind maps an error kind onto an HTTP status code
func StatusForKind(kind game.Kind) int {
	switch kind {
	case game.KindUnauthorized:
		return http.StatusUnauthorized
	case game.KindForbidden:
		return http.StatusForbidden
	case game.KindNotFound:
		return http.StatusNotFound
	case game.KindConflict:
		return http.StatusConflict
	case game.KindInvalidState:
		return http.StatusUnprocessableEntity
	case game.KindInvalidParams:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders a service error. Internal details never reach the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := game.KindOf(err)
	body := &ErrorBody{Kind: kind}

	var gameErr *game.Error
	if kind != game.KindInternal && errors.As(err, &gameErr) {
		body.Message = gameErr.Message
	} else {
		body.Kind = game.KindInternal
		body.Message = "internal error"
		log.Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
	}

	fail(w, StatusForKind(body.Kind), body)
}
