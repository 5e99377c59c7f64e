package combat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/KirkDiggler/taleforge/internal/models"
	"github.com/redis/go-redis/v9"
)

const combatKeyPrefix = "combat:"

// ErrCombatNotFound is returned when a session has no combat record
var ErrCombatNotFound = errors.New("combat not found")

// Config holds configuration for the Redis combat repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed combat repository
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

// SaveCombat persists the combat state keyed by its session
func (r *redisRepository) SaveCombat(ctx context.Context, input *SaveCombatInput) error {
	if input == nil || input.Combat == nil {
		return errors.New("input and combat cannot be nil")
	}

	if input.Combat.SessionID == "" {
		return errors.New("combat session ID cannot be empty")
	}

	combatJSON, err := json.Marshal(input.Combat)
	if err != nil {
		return fmt.Errorf("failed to marshal combat: %w", err)
	}

	if err := r.client.Set(ctx, combatKeyPrefix+input.Combat.SessionID, combatJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to save combat: %w", err)
	}

	return nil
}

// GetCombat retrieves the combat state of a session
func (r *redisRepository) GetCombat(ctx context.Context, input *GetCombatInput) (*models.CombatState, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	combatJSON, err := r.client.Get(ctx, combatKeyPrefix+input.SessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCombatNotFound
		}
		return nil, fmt.Errorf("failed to get combat: %w", err)
	}

	var combat models.CombatState
	if err := json.Unmarshal([]byte(combatJSON), &combat); err != nil {
		return nil, fmt.Errorf("failed to unmarshal combat: %w", err)
	}

	return &combat, nil
}

// DeleteCombat removes the combat state; deleting a missing record is not an error
func (r *redisRepository) DeleteCombat(ctx context.Context, input *DeleteCombatInput) error {
	if input == nil || input.SessionID == "" {
		return errors.New("input and session ID cannot be empty")
	}

	if err := r.client.Del(ctx, combatKeyPrefix+input.SessionID).Err(); err != nil {
		return fmt.Errorf("failed to delete combat: %w", err)
	}

	return nil
}
