package steps

import (
	"context"
	"fmt"

	"github.com/aretw0/digest/pkg/domain"
	"github.com/aretw0/digest/pkg/ports"
)

// Edit rewrites the summary in the requested style.
//
// Reviewer instructions, when present, are handed to the editor. A successful
// edit clears an error left by an earlier run so a resumed record can finish.
type Edit struct {
	Editor ports.Editor
}

func (s *Edit) Name() string { return domain.StepEdit }
func (s *Edit) Owns() []string {
	return []string{domain.FieldEditedContent, domain.FieldErrorMessage}
}

func (s *Edit) Execute(ctx context.Context, rec domain.Record) domain.Update {
	if rec.Summary == "" {
		return domain.Fail("no summary to edit")
	}
	edited, err := s.Editor.Edit(ctx, rec.Summary, rec.Style, rec.HumanInstructions)
	if err != nil {
		return domain.Fail(fmt.Sprintf("edit error: %v", err))
	}
	u := domain.Update{domain.FieldEditedContent: edited}
	if rec.ErrorMessage != "" {
		u[domain.FieldErrorMessage] = ""
	}
	return u
}
