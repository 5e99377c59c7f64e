package session

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/taleforge/internal/repositories/session Repository

import (
	"context"

	"github.com/KirkDiggler/taleforge/internal/models"
)

// Repository defines the interface for session data persistence
type Repository interface {
	// SaveSession persists a session
	SaveSession(ctx context.Context, input *SaveSessionInput) error

	// GetSession retrieves a session by ID
	GetSession(ctx context.Context, input *GetSessionInput) (*models.Session, error)

	// GetSessionByJoinCode retrieves a session by its join code
	GetSessionByJoinCode(ctx context.Context, input *GetSessionByJoinCodeInput) (*models.Session, error)

	// ReserveJoinCode claims a join code for a session, reporting false if it is taken
	ReserveJoinCode(ctx context.Context, input *ReserveJoinCodeInput) (bool, error)

	// ReleaseJoinCode frees a join code if it is still held by the given session
	ReleaseJoinCode(ctx context.Context, input *ReleaseJoinCodeInput) error

	// DeleteSession removes a session and its join code
	DeleteSession(ctx context.Context, input *DeleteSessionInput) error

	// ListActiveSessionIDs returns the IDs of every session that has not completed
	ListActiveSessionIDs(ctx context.Context, input *ListActiveSessionIDsInput) (*ListActiveSessionIDsOutput, error)
}
