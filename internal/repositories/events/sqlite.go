package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/KirkDiggler/taleforge/internal/models"
	_ "modernc.org/sqlite"
)

// SQLiteConfig holds configuration for the SQLite event log
type SQLiteConfig struct {
	// Path is the database file, or ":memory:" for tests
	Path string
}

type sqliteRepository struct {
	db *sql.DB
}

// NewSQLite opens (and if needed creates) a SQLite-backed event log
func NewSQLite(cfg *SQLiteConfig) (*sqliteRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Path == "" {
		return nil, errors.New("database path cannot be empty")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serializes writers anyway; one connection also keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	repo := &sqliteRepository{db: db}
	if err := repo.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return repo, nil
}

// Close closes the database connection
func (r *sqliteRepository) Close() error {
	return r.db.Close()
}

func (r *sqliteRepository) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS updates (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		type TEXT NOT NULL,
		payload TEXT,
		created_at_ns INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS timeline_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		chapter_id TEXT NOT NULL,
		chapter_text TEXT,
		choice_made TEXT,
		voting_result TEXT,
		message TEXT,
		kind TEXT NOT NULL,
		created_at_ns INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_updates_session ON updates(session_id, id);
	CREATE INDEX IF NOT EXISTS idx_updates_created ON updates(created_at_ns);
	CREATE INDEX IF NOT EXISTS idx_timeline_session ON timeline_entries(session_id, id);
	CREATE INDEX IF NOT EXISTS idx_timeline_created ON timeline_entries(created_at_ns);
	`

	_, err := r.db.Exec(schema)
	return err
}

// AppendTimelineEntry inserts a timeline entry; the row ID becomes the cursor
func (r *sqliteRepository) AppendTimelineEntry(ctx context.Context, input *AppendTimelineEntryInput) (*models.TimelineEntry, error) {
	if input == nil || input.Entry == nil {
		return nil, errors.New("input and entry cannot be nil")
	}

	if input.Entry.SessionID == "" {
		return nil, errors.New("entry session ID cannot be empty")
	}

	entry := *input.Entry

	var votingResult sql.NullString
	if entry.VotingResult != nil {
		raw, err := json.Marshal(entry.VotingResult)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal voting result: %w", err)
		}
		votingResult = sql.NullString{String: string(raw), Valid: true}
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO timeline_entries (session_id, chapter_id, chapter_text, choice_made, voting_result, message, kind, created_at_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.SessionID,
		entry.ChapterID,
		entry.ChapterText,
		entry.ChoiceMade,
		votingResult,
		entry.Message,
		string(entry.Kind),
		entry.Timestamp.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to append timeline entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get timeline entry ID: %w", err)
	}

	entry.ID = FormatID(id)
	return &entry, nil
}

// AppendUpdate inserts an update; the row ID becomes the cursor
func (r *sqliteRepository) AppendUpdate(ctx context.Context, input *AppendUpdateInput) (*models.UpdateEvent, error) {
	if input == nil || input.Update == nil {
		return nil, errors.New("input and update cannot be nil")
	}

	if input.Update.SessionID == "" {
		return nil, errors.New("update session ID cannot be empty")
	}

	update := *input.Update

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO updates (session_id, type, payload, created_at_ns)
		VALUES (?, ?, ?, ?)
	`,
		update.SessionID,
		string(update.Type),
		string(update.Payload),
		update.Timestamp.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to append update: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get update ID: %w", err)
	}

	update.ID = FormatID(id)
	return &update, nil
}

// queryLimit translates "0 means unlimited" into SQLite's LIMIT -1
func queryLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit + 1
}

// GetUpdates returns updates strictly after the cursor, oldest first
func (r *sqliteRepository) GetUpdates(ctx context.Context, input *GetUpdatesInput) (*GetUpdatesOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, type, payload, created_at_ns
		FROM updates
		WHERE session_id = ? AND id > ?
		ORDER BY id ASC
		LIMIT ?
	`, input.SessionID, input.AfterID, queryLimit(input.Limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query updates: %w", err)
	}
	defer rows.Close()

	updates := []*models.UpdateEvent{}
	for rows.Next() {
		var (
			id        int64
			update    models.UpdateEvent
			payload   sql.NullString
			createdNs int64
		)
		if err := rows.Scan(&id, &update.SessionID, &update.Type, &payload, &createdNs); err != nil {
			return nil, fmt.Errorf("failed to scan update: %w", err)
		}
		update.ID = FormatID(id)
		update.Timestamp = time.Unix(0, createdNs).UTC()
		if payload.Valid && payload.String != "" {
			update.Payload = json.RawMessage(payload.String)
		}
		updates = append(updates, &update)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate updates: %w", err)
	}

	hasMore := false
	if input.Limit > 0 && len(updates) > input.Limit {
		updates = updates[:input.Limit]
		hasMore = true
	}

	return &GetUpdatesOutput{
		Updates: updates,
		HasMore: hasMore,
	}, nil
}

// GetTimeline returns timeline entries strictly after the cursor, oldest first
func (r *sqliteRepository) GetTimeline(ctx context.Context, input *GetTimelineInput) (*GetTimelineOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, chapter_id, chapter_text, choice_made, voting_result, message, kind, created_at_ns
		FROM timeline_entries
		WHERE session_id = ? AND id > ?
		ORDER BY id ASC
		LIMIT ?
	`, input.SessionID, input.AfterID, queryLimit(input.Limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query timeline: %w", err)
	}
	defer rows.Close()

	entries := []*models.TimelineEntry{}
	for rows.Next() {
		var (
			id           int64
			entry        models.TimelineEntry
			chapterText  sql.NullString
			choiceMade   sql.NullString
			votingResult sql.NullString
			message      sql.NullString
			createdNs    int64
		)
		if err := rows.Scan(&id, &entry.SessionID, &entry.ChapterID, &chapterText, &choiceMade,
			&votingResult, &message, &entry.Kind, &createdNs); err != nil {
			return nil, fmt.Errorf("failed to scan timeline entry: %w", err)
		}

		entry.ID = FormatID(id)
		entry.ChapterText = chapterText.String
		entry.ChoiceMade = choiceMade.String
		entry.Message = message.String
		entry.Timestamp = time.Unix(0, createdNs).UTC()

		if votingResult.Valid && votingResult.String != "" {
			var vr models.VotingResult
			if err := json.Unmarshal([]byte(votingResult.String), &vr); err != nil {
				return nil, fmt.Errorf("failed to unmarshal voting result: %w", err)
			}
			entry.VotingResult = &vr
		}

		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate timeline: %w", err)
	}

	hasMore := false
	if input.Limit > 0 && len(entries) > input.Limit {
		entries = entries[:input.Limit]
		hasMore = true
	}

	return &GetTimelineOutput{
		Entries: entries,
		HasMore: hasMore,
	}, nil
}

// DeleteSessionEvents drops both streams of a session in one transaction
func (r *sqliteRepository) DeleteSessionEvents(ctx context.Context, input *DeleteSessionEventsInput) error {
	if input == nil || input.SessionID == "" {
		return errors.New("input and session ID cannot be empty")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM updates WHERE session_id = ?`, input.SessionID); err != nil {
		return fmt.Errorf("failed to delete updates: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM timeline_entries WHERE session_id = ?`, input.SessionID); err != nil {
		return fmt.Errorf("failed to delete timeline: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}

	return nil
}

// PurgeBefore deletes rows older than the cutoffs
func (r *sqliteRepository) PurgeBefore(ctx context.Context, input *PurgeBeforeInput) (*PurgeBeforeOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	out := &PurgeBeforeOutput{}

	if !input.UpdatesBefore.IsZero() {
		result, err := r.db.ExecContext(ctx, `DELETE FROM updates WHERE created_at_ns < ?`, input.UpdatesBefore.UnixNano())
		if err != nil {
			return out, fmt.Errorf("failed to purge updates: %w", err)
		}
		n, _ := result.RowsAffected()
		out.UpdatesDeleted = int(n)
	}

	if !input.TimelineBefore.IsZero() {
		result, err := r.db.ExecContext(ctx, `DELETE FROM timeline_entries WHERE created_at_ns < ?`, input.TimelineBefore.UnixNano())
		if err != nil {
			return out, fmt.Errorf("failed to purge timeline: %w", err)
		}
		n, _ := result.RowsAffected()
		out.TimelineDeleted = int(n)
	}

	return out, nil
}
