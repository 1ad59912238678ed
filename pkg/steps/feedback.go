package steps

import (
	"context"
	"fmt"

	"github.com/aretw0/digest/pkg/domain"
	"github.com/aretw0/digest/pkg/ports"
)

// Feedback records a remark about the validated content.
type Feedback struct {
	Collector ports.FeedbackCollector
}

func (s *Feedback) Name() string   { return domain.StepFeedback }
func (s *Feedback) Owns() []string { return []string{domain.FieldFeedback} }

func (s *Feedback) Execute(ctx context.Context, rec domain.Record) domain.Update {
	remark, err := s.Collector.CollectFeedback(ctx, rec.Approved())
	if err != nil {
		return domain.Fail(fmt.Sprintf("feedback error: %v", err))
	}
	return domain.Update{domain.FieldFeedback: remark}
}
