package steps

import (
	"context"
	"fmt"

	"github.com/aretw0/digest/pkg/domain"
	"github.com/aretw0/digest/pkg/ports"
)

// Summarize condenses the search results.
type Summarize struct {
	Summarizer ports.Summarizer
}

func (s *Summarize) Name() string   { return domain.StepSummarize }
func (s *Summarize) Owns() []string { return []string{domain.FieldSummary} }

func (s *Summarize) Execute(ctx context.Context, rec domain.Record) domain.Update {
	if len(rec.SearchResults) == 0 {
		return domain.Fail("no search results to summarize")
	}
	summary, err := s.Summarizer.Summarize(ctx, rec.Query, rec.SearchResults)
	if err != nil {
		return domain.Fail(fmt.Sprintf("summary error: %v", err))
	}
	return domain.Update{domain.FieldSummary: summary}
}
