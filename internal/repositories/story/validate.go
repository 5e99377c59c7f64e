package story

import (
	"errors"
	"fmt"

	"github.com/KirkDiggler/taleforge/internal/models"
)

// ErrStoryNotFound is returned when no story exists for an ID
var ErrStoryNotFound = errors.New("story not found")

// ErrInvalidStory wraps every structural problem found in a story graph
var ErrInvalidStory = errors.New("invalid story")

// Validate checks that a story graph is internally consistent and fills chapter IDs
// from their map keys when they were left blank.
func Validate(s *models.Story) error {
	if s == nil {
		return fmt.Errorf("%w: story is nil", ErrInvalidStory)
	}

	if s.ID == "" {
		return fmt.Errorf("%w: story ID is empty", ErrInvalidStory)
	}

	if len(s.Chapters) == 0 {
		return fmt.Errorf("%w: story %s has no chapters", ErrInvalidStory, s.ID)
	}

	for key, chapter := range s.Chapters {
		if chapter == nil {
			return fmt.Errorf("%w: chapter %s is empty", ErrInvalidStory, key)
		}
		if chapter.ID == "" {
			chapter.ID = key
		}
		if chapter.ID != key {
			return fmt.Errorf("%w: chapter key %s does not match ID %s", ErrInvalidStory, key, chapter.ID)
		}
	}

	if s.GetChapter(s.InitialChapterID) == nil {
		return fmt.Errorf("%w: initial chapter %q does not exist", ErrInvalidStory, s.InitialChapterID)
	}

	for _, chapter := range s.Chapters {
		seen := make(map[string]struct{}, len(chapter.Options))
		for _, option := range chapter.Options {
			if option.ID == "" {
				return fmt.Errorf("%w: chapter %s has an option without ID", ErrInvalidStory, chapter.ID)
			}
			if _, dup := seen[option.ID]; dup {
				return fmt.Errorf("%w: chapter %s repeats option %s", ErrInvalidStory, chapter.ID, option.ID)
			}
			seen[option.ID] = struct{}{}

			if s.GetChapter(option.TargetChapterID) == nil {
				return fmt.Errorf("%w: option %s of chapter %s targets unknown chapter %q",
					ErrInvalidStory, option.ID, chapter.ID, option.TargetChapterID)
			}
		}

		for _, outcome := range []string{chapter.VictoryOptionID, chapter.DefeatOptionID} {
			if outcome == "" {
				continue
			}
			if !chapter.IsCombat {
				return fmt.Errorf("%w: chapter %s has combat outcomes but is not a combat chapter", ErrInvalidStory, chapter.ID)
			}
			if chapter.GetOption(outcome) == nil {
				return fmt.Errorf("%w: combat outcome %s is not an option of chapter %s", ErrInvalidStory, outcome, chapter.ID)
			}
		}
	}

	return nil
}
