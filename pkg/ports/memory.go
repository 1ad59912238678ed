package ports

import (
	"context"

	"github.com/aretw0/digest/pkg/domain"
)

// MemoryLog is the append-only history of finished runs.
// Append must be safe for concurrent use and must never interleave entries.
type MemoryLog interface {
	Append(ctx context.Context, entry domain.MemoryEntry) error

	// ReadAll returns every entry in append order.
	// It is not required to observe an Append that is still in flight.
	ReadAll(ctx context.Context) ([]domain.MemoryEntry, error)

	// Clear drops the whole history.
	Clear(ctx context.Context) error
}
