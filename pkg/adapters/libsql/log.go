package libsql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aretw0/digest/pkg/domain"
)

// Log implements ports.MemoryLog on the memory_entries table.
type Log struct {
	db *sql.DB
}

// Log returns the history log view of the database.
func (d *DB) Log() *Log {
	return &Log{db: d.db}
}

// Append inserts the entry; the autoincrement sequence preserves append order.
func (l *Log) Append(ctx context.Context, e domain.MemoryEntry) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO memory_entries (run_id, recorded_at, query, style, final_content, validation_approved, feedback, search_result_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Timestamp.UTC().Format(time.RFC3339Nano), e.Query, string(e.Style),
		e.FinalContent, e.ValidationApproved, e.Feedback, e.SearchResultCount,
	)
	if err != nil {
		return fmt.Errorf("insert memory entry: %w", err)
	}
	return nil
}

// ReadAll returns every entry ordered by sequence.
func (l *Log) ReadAll(ctx context.Context) ([]domain.MemoryEntry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT run_id, recorded_at, query, style, final_content, validation_approved, feedback, search_result_count
		 FROM memory_entries ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query memory entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.MemoryEntry{}
	for rows.Next() {
		var (
			e                 domain.MemoryEntry
			runID, feedback   sql.NullString
			recordedAt, style string
		)
		if err := rows.Scan(&runID, &recordedAt, &e.Query, &style, &e.FinalContent,
			&e.ValidationApproved, &feedback, &e.SearchResultCount); err != nil {
			return nil, fmt.Errorf("scan memory entry: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("parse memory timestamp %q: %w", recordedAt, err)
		}
		e.Timestamp = ts
		e.RunID = runID.String
		e.Style = domain.Style(style)
		e.Feedback = feedback.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear deletes every entry.
func (l *Log) Clear(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM memory_entries`); err != nil {
		return fmt.Errorf("clear memory entries: %w", err)
	}
	return nil
}
