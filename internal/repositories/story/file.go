package story

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/KirkDiggler/taleforge/internal/models"
	"gopkg.in/yaml.v3"
)

var storyIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// FileConfig holds configuration for the YAML story provider
type FileConfig struct {
	// Directory containing <story-id>.yaml files
	Directory string
}

// FileProvider loads <story-id>.yaml files from a directory and caches them
type FileProvider struct {
	dir   string
	mu    sync.RWMutex
	cache map[string]*models.Story
}

// NewFile creates a YAML-backed story provider
func NewFile(cfg *FileConfig) (*FileProvider, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Directory == "" {
		return nil, errors.New("story directory cannot be empty")
	}

	info, err := os.Stat(cfg.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to open story directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("story path %s is not a directory", cfg.Directory)
	}

	return &FileProvider{
		dir:   cfg.Directory,
		cache: make(map[string]*models.Story),
	}, nil
}

// GetStory returns the cached story or loads it from disk
func (p *FileProvider) GetStory(ctx context.Context, input *GetStoryInput) (*models.Story, error) {
	if input == nil || input.StoryID == "" {
		return nil, errors.New("input and story ID cannot be empty")
	}

	// Story IDs become file names, so reject anything that could escape the directory
	if !storyIDPattern.MatchString(input.StoryID) {
		return nil, fmt.Errorf("%w: %s", ErrStoryNotFound, input.StoryID)
	}

	p.mu.RLock()
	cached, ok := p.cache[input.StoryID]
	p.mu.RUnlock()
	if ok {
		return cached, nil
	}

	loaded, err := p.load(input.StoryID)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.cache[input.StoryID] = loaded
	p.mu.Unlock()

	return loaded, nil
}

func (p *FileProvider) load(storyID string) (*models.Story, error) {
	path := filepath.Join(p.dir, storyID+".yaml")

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrStoryNotFound, storyID)
		}
		return nil, fmt.Errorf("failed to read story %s: %w", storyID, err)
	}

	var s models.Story
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidStory, path, err)
	}

	if s.ID == "" {
		s.ID = storyID
	}
	if s.ID != storyID {
		return nil, fmt.Errorf("%w: file %s declares story ID %s", ErrInvalidStory, path, s.ID)
	}

	if err := Validate(&s); err != nil {
		return nil, err
	}

	return &s, nil
}
