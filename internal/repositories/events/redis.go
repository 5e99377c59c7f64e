package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KirkDiggler/taleforge/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	sequenceKey         = "events:seq"
	updatesKeyPrefix    = "updates:"
	timelineKeyPrefix   = "timeline:"
	eventSessionsSetKey = "event_sessions"
	memberSeparator     = ":"
	purgeBatchSize      = 500
)

// appendScript assigns the next global ID and stores the member in one atomic step,
// so no reader can observe ID n+1 before ID n. Members are prefixed with their ID to
// keep identical payloads distinct inside the sorted set.
var appendScript = redis.NewScript(`
local id = redis.call('INCR', KEYS[1])
redis.call('ZADD', KEYS[2], id, id .. ':' .. ARGV[1])
redis.call('SADD', KEYS[3], ARGV[2])
return id
`)

// Config holds configuration for the Redis event log
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed event log
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

func (r *redisRepository) append(ctx context.Context, streamKey, sessionID string, value any) (int64, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal event: %w", err)
	}

	id, err := appendScript.Run(ctx, r.client,
		[]string{sequenceKey, streamKey, eventSessionsSetKey},
		string(raw), sessionID,
	).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to append event: %w", err)
	}

	return id, nil
}

// AppendTimelineEntry appends a narrative entry to the session timeline
func (r *redisRepository) AppendTimelineEntry(ctx context.Context, input *AppendTimelineEntryInput) (*models.TimelineEntry, error) {
	if input == nil || input.Entry == nil {
		return nil, errors.New("input and entry cannot be nil")
	}

	if input.Entry.SessionID == "" {
		return nil, errors.New("entry session ID cannot be empty")
	}

	entry := *input.Entry
	entry.ID = ""

	id, err := r.append(ctx, timelineKeyPrefix+entry.SessionID, entry.SessionID, &entry)
	if err != nil {
		return nil, err
	}

	entry.ID = FormatID(id)
	return &entry, nil
}

// AppendUpdate appends a client-facing update to the session feed
func (r *redisRepository) AppendUpdate(ctx context.Context, input *AppendUpdateInput) (*models.UpdateEvent, error) {
	if input == nil || input.Update == nil {
		return nil, errors.New("input and update cannot be nil")
	}

	if input.Update.SessionID == "" {
		return nil, errors.New("update session ID cannot be empty")
	}

	update := *input.Update
	update.ID = ""

	id, err := r.append(ctx, updatesKeyPrefix+update.SessionID, update.SessionID, &update)
	if err != nil {
		return nil, err
	}

	update.ID = FormatID(id)
	return &update, nil
}

// rangeAfter reads members with an ID strictly greater than afterID.
// It fetches one extra member to report whether more remain.
func (r *redisRepository) rangeAfter(ctx context.Context, key string, afterID int64, limit int) ([]string, bool, error) {
	opt := &redis.ZRangeBy{
		Min: "(" + FormatID(afterID),
		Max: "+inf",
	}
	if limit > 0 {
		opt.Count = int64(limit + 1)
	}

	members, err := r.client.ZRangeByScore(ctx, key, opt).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read events: %w", err)
	}

	hasMore := false
	if limit > 0 && len(members) > limit {
		members = members[:limit]
		hasMore = true
	}

	return members, hasMore, nil
}

func splitMember(member string) (string, string, error) {
	id, body, ok := strings.Cut(member, memberSeparator)
	if !ok {
		return "", "", fmt.Errorf("malformed event member %q", member)
	}
	return id, body, nil
}

// GetUpdates returns updates strictly after the cursor, oldest first
func (r *redisRepository) GetUpdates(ctx context.Context, input *GetUpdatesInput) (*GetUpdatesOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	members, hasMore, err := r.rangeAfter(ctx, updatesKeyPrefix+input.SessionID, input.AfterID, input.Limit)
	if err != nil {
		return nil, err
	}

	updates := make([]*models.UpdateEvent, 0, len(members))
	for _, member := range members {
		id, body, err := splitMember(member)
		if err != nil {
			return nil, err
		}

		var update models.UpdateEvent
		if err := json.Unmarshal([]byte(body), &update); err != nil {
			return nil, fmt.Errorf("failed to unmarshal update %s: %w", id, err)
		}
		update.ID = id
		updates = append(updates, &update)
	}

	return &GetUpdatesOutput{
		Updates: updates,
		HasMore: hasMore,
	}, nil
}

// GetTimeline returns timeline entries strictly after the cursor, oldest first
func (r *redisRepository) GetTimeline(ctx context.Context, input *GetTimelineInput) (*GetTimelineOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	members, hasMore, err := r.rangeAfter(ctx, timelineKeyPrefix+input.SessionID, input.AfterID, input.Limit)
	if err != nil {
		return nil, err
	}

	entries := make([]*models.TimelineEntry, 0, len(members))
	for _, member := range members {
		id, body, err := splitMember(member)
		if err != nil {
			return nil, err
		}

		var entry models.TimelineEntry
		if err := json.Unmarshal([]byte(body), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal timeline entry %s: %w", id, err)
		}
		entry.ID = id
		entries = append(entries, &entry)
	}

	return &GetTimelineOutput{
		Entries: entries,
		HasMore: hasMore,
	}, nil
}

// DeleteSessionEvents drops both streams of a session
func (r *redisRepository) DeleteSessionEvents(ctx context.Context, input *DeleteSessionEventsInput) error {
	if input == nil || input.SessionID == "" {
		return errors.New("input and session ID cannot be empty")
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, updatesKeyPrefix+input.SessionID, timelineKeyPrefix+input.SessionID)
	pipe.SRem(ctx, eventSessionsSetKey, input.SessionID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session events: %w", err)
	}

	return nil
}

// timestamped is the shared shape of both stream payloads for retention checks
type timestamped struct {
	Timestamp time.Time `json:"timestamp"`
}

// purgeStream removes members older than the cutoff. IDs grow with time, so the
// scan stops at the first member that is recent enough.
func (r *redisRepository) purgeStream(ctx context.Context, key string, cutoff time.Time) (int, error) {
	deleted := 0
	for {
		members, err := r.client.ZRange(ctx, key, 0, purgeBatchSize-1).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan %s: %w", key, err)
		}

		stale := make([]any, 0, len(members))
		reachedRecent := false
		for _, member := range members {
			_, body, err := splitMember(member)
			if err != nil {
				return deleted, err
			}

			var ts timestamped
			if err := json.Unmarshal([]byte(body), &ts); err != nil {
				return deleted, fmt.Errorf("failed to unmarshal event in %s: %w", key, err)
			}

			if !ts.Timestamp.Before(cutoff) {
				reachedRecent = true
				break
			}
			stale = append(stale, member)
		}

		if len(stale) > 0 {
			if err := r.client.ZRem(ctx, key, stale...).Err(); err != nil {
				return deleted, fmt.Errorf("failed to purge %s: %w", key, err)
			}
			deleted += len(stale)
		}

		if reachedRecent || len(members) < purgeBatchSize {
			return deleted, nil
		}
	}
}

// PurgeBefore applies the retention cutoffs to every session with events
func (r *redisRepository) PurgeBefore(ctx context.Context, input *PurgeBeforeInput) (*PurgeBeforeOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	sessionIDs, err := r.client.SMembers(ctx, eventSessionsSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list event sessions: %w", err)
	}

	out := &PurgeBeforeOutput{}
	for _, sessionID := range sessionIDs {
		if !input.UpdatesBefore.IsZero() {
			n, err := r.purgeStream(ctx, updatesKeyPrefix+sessionID, input.UpdatesBefore)
			out.UpdatesDeleted += n
			if err != nil {
				return out, err
			}
		}

		if !input.TimelineBefore.IsZero() {
			n, err := r.purgeStream(ctx, timelineKeyPrefix+sessionID, input.TimelineBefore)
			out.TimelineDeleted += n
			if err != nil {
				return out, err
			}
		}

		// Forget sessions whose streams are both empty
		remaining, err := r.client.Exists(ctx, updatesKeyPrefix+sessionID, timelineKeyPrefix+sessionID).Result()
		if err != nil {
			return out, fmt.Errorf("failed to check streams of %s: %w", sessionID, err)
		}
		if remaining == 0 {
			if err := r.client.SRem(ctx, eventSessionsSetKey, sessionID).Err(); err != nil {
				return out, fmt.Errorf("failed to untrack %s: %w", sessionID, err)
			}
		}
	}

	return out, nil
}
