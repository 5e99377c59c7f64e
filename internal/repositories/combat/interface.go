package combat

import (
	"context"

	"github.com/KirkDiggler/taleforge/internal/models"
)

// Repository defines the interface for combat state persistence.
// A session has at most one combat record at a time.
type Repository interface {
	// SaveCombat persists the combat state of a session
	SaveCombat(ctx context.Context, input *SaveCombatInput) error

	// GetCombat retrieves the combat state of a session
	GetCombat(ctx context.Context, input *GetCombatInput) (*models.CombatState, error)

	// DeleteCombat removes the combat state of a session
	DeleteCombat(ctx context.Context, input *DeleteCombatInput) error
}

type SaveCombatInput struct {
	Combat *models.CombatState
}

type GetCombatInput struct {
	SessionID string
}

type DeleteCombatInput struct {
	SessionID string
}
