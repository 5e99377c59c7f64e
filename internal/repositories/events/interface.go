package events

import (
	"context"
	"time"

	"github.com/KirkDiggler/taleforge/internal/models"
)

// Repository is the append-only log behind the timeline and the update feed.
// Appends must be atomic per call and ids must grow in insertion order, so a reader
// that resumes after id N never misses or repeats an entry.
type Repository interface {
	// AppendTimelineEntry appends a narrative entry and assigns its ID
	AppendTimelineEntry(ctx context.Context, input *AppendTimelineEntryInput) (*models.TimelineEntry, error)

	// AppendUpdate appends a client-facing update and assigns its ID
	AppendUpdate(ctx context.Context, input *AppendUpdateInput) (*models.UpdateEvent, error)

	// GetUpdates returns updates strictly after a cursor, oldest first
	GetUpdates(ctx context.Context, input *GetUpdatesInput) (*GetUpdatesOutput, error)

	// GetTimeline returns timeline entries strictly after a cursor, oldest first
	GetTimeline(ctx context.Context, input *GetTimelineInput) (*GetTimelineOutput, error)

	// DeleteSessionEvents drops both streams of a session
	DeleteSessionEvents(ctx context.Context, input *DeleteSessionEventsInput) error

	// PurgeBefore deletes entries older than the given cutoffs across all sessions
	PurgeBefore(ctx context.Context, input *PurgeBeforeInput) (*PurgeBeforeOutput, error)
}

type AppendTimelineEntryInput struct {
	Entry *models.TimelineEntry
}

type AppendUpdateInput struct {
	Update *models.UpdateEvent
}

type GetUpdatesInput struct {
	SessionID string

	// AfterID is the last seen cursor; 0 reads from the start
	AfterID int64

	// Limit caps the number of returned updates; 0 means no limit
	Limit int
}

type GetUpdatesOutput struct {
	Updates []*models.UpdateEvent
	HasMore bool
}

type GetTimelineInput struct {
	SessionID string
	AfterID   int64
	Limit     int
}

type GetTimelineOutput struct {
	Entries []*models.TimelineEntry
	HasMore bool
}

type DeleteSessionEventsInput struct {
	SessionID string
}

type PurgeBeforeInput struct {
	// UpdatesBefore removes updates with an older timestamp (zero disables)
	UpdatesBefore time.Time

	// TimelineBefore removes timeline entries with an older timestamp (zero disables)
	TimelineBefore time.Time
}

type PurgeBeforeOutput struct {
	UpdatesDeleted  int
	TimelineDeleted int
}
