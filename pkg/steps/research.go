package steps

import (
	"context"
	"fmt"

	"github.com/aretw0/digest/pkg/domain"
	"github.com/aretw0/digest/pkg/ports"
)

// Research queries the web search collaborator.
type Research struct {
	Searcher   ports.Searcher
	MaxResults int
	Depth      ports.SearchDepth
}

func (s *Research) Name() string   { return domain.StepResearch }
func (s *Research) Owns() []string { return []string{domain.FieldSearchResults} }

func (s *Research) Execute(ctx context.Context, rec domain.Record) domain.Update {
	results, err := s.Searcher.Search(ctx, rec.Query, s.MaxResults, s.Depth)
	if err != nil {
		return domain.Fail(fmt.Sprintf("search error: %v", err))
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	return domain.Update{domain.FieldSearchResults: results}
}
