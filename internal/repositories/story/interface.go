package story

import (
	"context"

	"github.com/KirkDiggler/taleforge/internal/models"
)

// Provider resolves a story ID to its chapter graph
type Provider interface {
	// GetStory returns the story graph for an ID
	GetStory(ctx context.Context, input *GetStoryInput) (*models.Story, error)
}

type GetStoryInput struct {
	StoryID string
}
