package steps

import (
	"context"

	"github.com/aretw0/digest/pkg/domain"
)

// Finalize publishes the approved content as the run result.
type Finalize struct{}

func (Finalize) Name() string   { return domain.StepFinalize }
func (Finalize) Owns() []string { return []string{domain.FieldFinalResult} }

func (Finalize) Execute(_ context.Context, rec domain.Record) domain.Update {
	if rec.Approved() && rec.EditedContent != "" {
		return domain.Update{domain.FieldFinalResult: rec.EditedContent}
	}
	return domain.Update{domain.FieldFinalResult: domain.IncompleteResult}
}
