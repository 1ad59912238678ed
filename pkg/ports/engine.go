package ports

import (
	"context"

	"github.com/aretw0/digest/pkg/domain"
)

// Pipeline is the boundary surface hosts (HTTP, MCP, CLI) drive.
type Pipeline interface {
	// Run executes the whole graph for a new query.
	Run(ctx context.Context, query string, style domain.Style) (*domain.Record, error)

	// Resume re-enters the graph at step with reviewer instructions.
	Resume(ctx context.Context, record *domain.Record, step, instructions string) (*domain.Record, error)

	History(ctx context.Context) ([]domain.MemoryEntry, error)
	Stats(ctx context.Context) (domain.Stats, error)
	ClearHistory(ctx context.Context) error

	// Inspect returns the graph structure for introspection.
	Inspect() []domain.Node
}
