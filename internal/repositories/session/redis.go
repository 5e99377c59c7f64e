package session

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
	sessionKeyPrefix  = "session:"
	joinCodeKeyPrefix = "joincode:"
	activeSessionsKey = "active_sessions"
)

// releaseScript deletes a join code only while it still points at the releasing session
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ErrSessionNotFound is returned when a session is not found
var ErrSessionNotFound = errors.New("session not found")

// Config holds configuration for the Redis session repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed session repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	// Validate config
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRepository{
		client: cfg.RedisClient,
	}, nil
}

// SaveSession persists a session to Redis
func (r *redisRepository) SaveSession(ctx context.Context, input *SaveSessionInput) error {
	if input == nil || input.Session == nil {
		return errors.New("input and session cannot be nil")
	}

	if input.Session.ID == "" {
		return errors.New("session ID cannot be empty")
	}

	// Marshal the session to JSON
	sessionJSON, err := json.Marshal(input.Session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := r.client.TxPipeline()

	sessionKey := sessionKeyPrefix + input.Session.ID
	pipe.Set(ctx, sessionKey, sessionJSON, 0)

	// Keep the active index in step with the status so sweeps only visit live sessions
	if input.Session.Status == models.SessionStatusCompleted {
		pipe.SRem(ctx, activeSessionsKey, input.Session.ID)
	} else {
		pipe.SAdd(ctx, activeSessionsKey, input.Session.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// GetSession retrieves a session by ID from Redis
func (r *redisRepository) GetSession(ctx context.Context, input *GetSessionInput) (*models.Session, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	sessionJSON, err := r.client.Get(ctx, sessionKeyPrefix+input.SessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal([]byte(sessionJSON), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

// GetSessionByJoinCode retrieves a session through the join code index
func (r *redisRepository) GetSessionByJoinCode(ctx context.Context, input *GetSessionByJoinCodeInput) (*models.Session, error) {
	if input == nil || input.JoinCode == "" {
		return nil, errors.New("input and join code cannot be empty")
	}

	sessionID, err := r.client.Get(ctx, joinCodeKeyPrefix+input.JoinCode).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session ID for join code: %w", err)
	}

	return r.GetSession(ctx, &GetSessionInput{
		SessionID: sessionID,
	})
}

// ReserveJoinCode claims the code with SETNX so two sessions can never share it
func (r *redisRepository) ReserveJoinCode(ctx context.Context, input *ReserveJoinCodeInput) (bool, error) {
	if input == nil || input.JoinCode == "" || input.SessionID == "" {
		return false, errors.New("join code and session ID cannot be empty")
	}

	ok, err := r.client.SetNX(ctx, joinCodeKeyPrefix+input.JoinCode, input.SessionID, 0).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve join code: %w", err)
	}

	return ok, nil
}

// ReleaseJoinCode hands a reserved code back
func (r *redisRepository) ReleaseJoinCode(ctx context.Context, input *ReleaseJoinCodeInput) error {
	if input == nil || input.JoinCode == "" || input.SessionID == "" {
		return errors.New("join code and session ID cannot be empty")
	}

	if err := releaseScript.Run(ctx, r.client, []string{joinCodeKeyPrefix + input.JoinCode}, input.SessionID).Err(); err != nil {
		return fmt.Errorf("failed to release join code: %w", err)
	}

	return nil
}

// DeleteSession removes a session from Redis
func (r *redisRepository) DeleteSession(ctx context.Context, input *DeleteSessionInput) error {
	if input == nil || input.SessionID == "" {
		return errors.New("input and session ID cannot be empty")
	}

	// Get the session first to find its join code
	session, err := r.GetSession(ctx, &GetSessionInput{
		SessionID: input.SessionID,
	})
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKeyPrefix+input.SessionID)
	if session.JoinCode != "" {
		pipe.Del(ctx, joinCodeKeyPrefix+session.JoinCode)
	}
	pipe.SRem(ctx, activeSessionsKey, input.SessionID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// ListActiveSessionIDs returns every session ID in the active index
func (r *redisRepository) ListActiveSessionIDs(ctx context.Context, input *ListActiveSessionIDsInput) (*ListActiveSessionIDsOutput, error) {
	ids, err := r.client.SMembers(ctx, activeSessionsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get active session IDs: %w", err)
	}

	return &ListActiveSessionIDsOutput{
		SessionIDs: ids,
	}, nil
}
