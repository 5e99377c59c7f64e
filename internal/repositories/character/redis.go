package character

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/KirkDiggler/taleforge/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	characterKeyPrefix         = "character:"
	sessionCharactersKeyPrefix = "session_characters:"
)

// ErrCharacterNotFound is returned when a character is not found
var ErrCharacterNotFound = errors.New("character not found")

// Config holds configuration for the Redis character repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed character repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRepository{
		client: cfg.RedisClient,
	}, nil
}

// SaveCharacter persists a character to Redis
func (r *redisRepository) SaveCharacter(ctx context.Context, input *SaveCharacterInput) error {
	if input == nil || input.Character == nil {
		return errors.New("input and character cannot be nil")
	}

	character := input.Character
	if character.ID == "" {
		return errors.New("character ID cannot be empty")
	}

	characterJSON, err := json.Marshal(character)
	if err != nil {
		return fmt.Errorf("failed to marshal character: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, characterKeyPrefix+character.ID, characterJSON, 0)

	// If the character belongs to a session, add it to the session's index
	if character.SessionID != "" {
		pipe.SAdd(ctx, sessionCharactersKeyPrefix+character.SessionID, character.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save character: %w", err)
	}

	return nil
}

// GetCharacter retrieves a character by ID from Redis
func (r *redisRepository) GetCharacter(ctx context.Context, input *GetCharacterInput) (*models.Character, error) {
	if input == nil || input.CharacterID == "" {
		return nil, errors.New("input and character ID cannot be empty")
	}

	characterJSON, err := r.client.Get(ctx, characterKeyPrefix+input.CharacterID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("failed to get character: %w", err)
	}

	var character models.Character
	if err := json.Unmarshal([]byte(characterJSON), &character); err != nil {
		return nil, fmt.Errorf("failed to unmarshal character: %w", err)
	}

	return &character, nil
}

// GetCharactersForSession retrieves every character indexed under a session
func (r *redisRepository) GetCharactersForSession(ctx context.Context, input *GetCharactersForSessionInput) (*GetCharactersForSessionOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	ids, err := r.client.SMembers(ctx, sessionCharactersKeyPrefix+input.SessionID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session characters: %w", err)
	}

	characters := make([]*models.Character, 0, len(ids))
	for _, id := range ids {
		character, err := r.GetCharacter(ctx, &GetCharacterInput{CharacterID: id})
		if err != nil {
			// Skip characters removed between the index read and the fetch
			if errors.Is(err, ErrCharacterNotFound) {
				continue
			}
			return nil, err
		}
		characters = append(characters, character)
	}

	return &GetCharactersForSessionOutput{
		Characters: characters,
	}, nil
}
