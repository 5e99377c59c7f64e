package messaging

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/KirkDiggler/taleforge/internal/models"
	"github.com/KirkDiggler/taleforge/internal/services/game"
)

// service implements the Service interface
type service struct {
	defaultTone MessageTone

	// rand is not safe for concurrent use
	mu   sync.Mutex
	rand *rand.Rand
}

// NewService creates a new messaging service
func NewService(config *ServiceConfig) (Service, error) {
	if config == nil {
		config = &ServiceConfig{}
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	tone := config.DefaultTone
	if tone == "" {
		tone = ToneDramatic
	}

	return &service{
		defaultTone: tone,
		rand:        rand.New(rand.NewSource(seed)),
	}, nil
}

func (s *service) pick(messages []string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return messages[s.rand.Intn(len(messages))]
}

// GetMilestoneMessage returns a narrator line for an announced update
func (s *service) GetMilestoneMessage(ctx context.Context, input *GetMilestoneMessageInput) (*GetMilestoneMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	tone := input.PreferredTone
	if tone == "" {
		tone = s.defaultTone
	}

	party := input.SessionName
	if party == "" {
		party = "the party"
	}

	var messages []string
	switch input.Type {
	case models.UpdateGameStarted:
		switch tone {
		case ToneFunny:
			messages = []string{
				fmt.Sprintf("%s sets off. Someone definitely forgot the rope.", party),
				fmt.Sprintf("Snacks packed, swords mostly sharpened. Go get 'em, %s!", party),
				fmt.Sprintf("%s begins an adventure nobody will remember the same way.", party),
			}
		case ToneNeutral:
			messages = []string{
				fmt.Sprintf("%s has started the story.", party),
			}
		default:
			messages = []string{
				fmt.Sprintf("The road unfurls before %s. Fate is watching.", party),
				fmt.Sprintf("Torches are lit. Oaths are sworn. %s steps into legend.", party),
				fmt.Sprintf("Somewhere, an old bard clears their throat. The tale of %s begins.", party),
			}
		}

	case models.UpdateChapterChanged:
		switch {
		case input.IsCombat && tone == ToneFunny:
			messages = []string{
				"Roll for initiative, and maybe for your dignity.",
				"Whatever is in there, it looks hungry.",
				"This is the part where the plan falls apart.",
			}
		case input.IsCombat:
			messages = []string{
				"Steel whispers from scabbards. Blood will be spilled.",
				"The air grows cold. Something waits in the dark.",
				"Hold the line. Not everyone walks out of this one.",
			}
		case tone == ToneFunny:
			messages = []string{
				fmt.Sprintf("Next stop: %s. Please keep your limbs inside the story.", input.ChapterTitle),
				"The party ambles on, arguing about directions.",
			}
		case tone == ToneNeutral:
			messages = []string{
				fmt.Sprintf("The story moves to %s.", input.ChapterTitle),
			}
		default:
			messages = []string{
				fmt.Sprintf("%s. The path twists, and the story with it.", input.ChapterTitle),
				"Footsteps echo onward. The choice is made and cannot be unmade.",
			}
		}

	case models.UpdateStoryEnded:
		switch tone {
		case ToneFunny:
			messages = []string{
				"And they all lived... well, most of them lived.",
				"Roll credits. Somebody pay the tavern tab.",
			}
		case ToneNeutral:
			messages = []string{
				fmt.Sprintf("The story of %s has ended.", party),
			}
		default:
			messages = []string{
				fmt.Sprintf("The last page turns. The deeds of %s pass into song.", party),
				"The fires burn low. This tale is told.",
			}
		}

	default:
		return &GetMilestoneMessageOutput{Tone: tone}, nil
	}

	return &GetMilestoneMessageOutput{
		Message: s.pick(messages),
		Tone:    tone,
	}, nil
}

// GetErrorMessage returns a user-friendly error message
func (s *service) GetErrorMessage(ctx context.Context, input *GetErrorMessageInput) (*GetErrorMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	var titles []string
	message := input.Detail

	switch input.Kind {
	case game.KindForbidden, game.KindUnauthorized:
		titles = []string{"Not Your Call", "The Gate Stays Shut"}
	case game.KindNotFound:
		titles = []string{"Lost in the Mist", "Nothing Here"}
	case game.KindConflict:
		titles = []string{"Too Late", "Someone Beat You To It"}
	case game.KindInvalidState:
		titles = []string{"Not Now", "The Story Isn't There Yet"}
	case game.KindInvalidParams:
		titles = []string{"Say That Again?", "The Scribe Is Confused"}
	default:
		titles = []string{"Something Broke", "The Spell Fizzled"}
		message = "Something went wrong on our side. Try again in a moment."
	}

	if message == "" {
		message = "That didn't work."
	}

	return &GetErrorMessageOutput{
		Title:   s.pick(titles),
		Message: message,
	}, nil
}
