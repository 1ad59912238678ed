package libsql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/digest/pkg/domain"
)

// Store implements ports.RecordStore on the run_records table.
type Store struct {
	db *sql.DB
}

// Store returns the record store view of the database.
func (d *DB) Store() *Store {
	return &Store{db: d.db}
}

// Save upserts the record as JSON.
func (s *Store) Save(ctx context.Context, record *domain.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO run_records (run_id, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(run_id) DO UPDATE SET data=excluded.data, updated_at=excluded.updated_at`,
		record.ID, string(data), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

// Load fetches a record by run ID.
func (s *Store) Load(ctx context.Context, runID string) (*domain.Record, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM run_records WHERE run_id = ?`, runID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load record: %w", err)
	}

	var rec domain.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &rec, nil
}

// Delete removes a record.
func (s *Store) Delete(ctx context.Context, runID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM run_records WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// List returns stored run IDs, most recently updated first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id FROM run_records ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan record id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
