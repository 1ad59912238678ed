package steps

import (
	"context"
	"fmt"

	"github.com/aretw0/digest/pkg/domain"
	"github.com/aretw0/digest/pkg/ports"
)

// Validate asks the approver for a verdict on the edited content.
type Validate struct {
	Approver ports.Approver
}

func (s *Validate) Name() string   { return domain.StepValidate }
func (s *Validate) Owns() []string { return []string{domain.FieldValidationApproved} }

func (s *Validate) Execute(ctx context.Context, rec domain.Record) domain.Update {
	if rec.EditedContent == "" {
		return domain.Fail("no content to validate")
	}
	approved, err := s.Approver.Approve(ctx, rec.EditedContent)
	if err != nil {
		return domain.Fail(fmt.Sprintf("validation error: %v", err))
	}
	return domain.Update{domain.FieldValidationApproved: approved}
}
