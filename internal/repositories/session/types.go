package session

import "github.com/KirkDiggler/taleforge/internal/models"

type SaveSessionInput struct {
	Session *models.Session
}

type GetSessionInput struct {
	SessionID string
}

type GetSessionByJoinCodeInput struct {
	JoinCode string
}

type ReserveJoinCodeInput struct {
	JoinCode  string
	SessionID string
}

type ReleaseJoinCodeInput struct {
	JoinCode  string
	SessionID string
}

type DeleteSessionInput struct {
	SessionID string
}

type ListActiveSessionIDsInput struct {
}

type ListActiveSessionIDsOutput struct {
	SessionIDs []string
}
