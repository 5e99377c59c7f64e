package character

import (
	"context"

	"github.com/KirkDiggler/taleforge/internal/models"
)

// Repository defines the interface for character lookup.
// Characters are authored by the character service; sessions only read them.
type Repository interface {
	// SaveCharacter persists a character
	SaveCharacter(ctx context.Context, input *SaveCharacterInput) error

	// GetCharacter retrieves a character by ID
	GetCharacter(ctx context.Context, input *GetCharacterInput) (*models.Character, error)

	// GetCharactersForSession lists characters created for a session
	GetCharactersForSession(ctx context.Context, input *GetCharactersForSessionInput) (*GetCharactersForSessionOutput, error)
}

type SaveCharacterInput struct {
	Character *models.Character
}

type GetCharacterInput struct {
	CharacterID string
}

type GetCharactersForSessionInput struct {
	SessionID string
}

type GetCharactersForSessionOutput struct {
	Characters []*models.Character
}
