package ports

import (
	"context"

	"github.com/aretw0/digest/pkg/domain"
)

// RecordStore persists run records so a host can resume them later.
type RecordStore interface {
	// Save persists the record under its ID.
	Save(ctx context.Context, record *domain.Record) error

	// Load retrieves a record by run ID.
	// Returns domain.ErrRecordNotFound if the run does not exist.
	Load(ctx context.Context, runID string) (*domain.Record, error)

	// Delete removes the record for a given run ID.
	Delete(ctx context.Context, runID string) error

	// List returns the IDs of stored runs.
	List(ctx context.Context) ([]string, error)
}
