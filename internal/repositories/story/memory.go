package story

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/KirkDiggler/taleforge/internal/models"
)

// MemoryProvider serves stories registered in process
type MemoryProvider struct {
	mu      sync.RWMutex
	stories map[string]*models.Story
}

// NewMemory creates a provider preloaded with the given stories
func NewMemory(stories ...*models.Story) (*MemoryProvider, error) {
	p := &MemoryProvider{
		stories: make(map[string]*models.Story, len(stories)),
	}
	for _, s := range stories {
		if err := p.Add(s); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Add validates and registers a story, replacing any with the same ID
func (p *MemoryProvider) Add(s *models.Story) error {
	if err := Validate(s); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.stories[s.ID] = s
	return nil
}

// GetStory returns a registered story
func (p *MemoryProvider) GetStory(ctx context.Context, input *GetStoryInput) (*models.Story, error) {
	if input == nil || input.StoryID == "" {
		return nil, errors.New("input and story ID cannot be empty")
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	s, ok := p.stories[input.StoryID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStoryNotFound, input.StoryID)
	}
	return s, nil
}
