package ports

import (
	"context"

	"github.com/aretw0/digest/pkg/domain"
)

// Step is a single pipeline stage.
//
// Execute receives a private copy of the record and returns the fields to change.
// It must never panic or return collaborator faults any other way than through
// the errorMessage field of the update.
type Step interface {
	Name() string

	// Owns lists the record fields the step may write. Every step may set
	// errorMessage; listing it here additionally allows clearing it.
	Owns() []string

	Execute(ctx context.Context, record domain.Record) domain.Update
}
