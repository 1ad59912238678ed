package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/digest/pkg/domain"
	"github.com/aretw0/digest/pkg/ports"
)

// Mask replaces every redacted match.
const Mask = "***"

// DefaultPIIPatterns match e-mail addresses and phone numbers.
var DefaultPIIPatterns = []string{
	`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`,
	`\+?\d[\d\s().-]{8,}\d`,
}

type piiMiddleware struct {
	next     ports.RecordStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware masks text matching the patterns in every free-text field
// of a record before it is stored. The in-memory record is left untouched.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.RecordStore) ports.RecordStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, rec *domain.Record) error {
	cloned := rec.Clone()

	for _, field := range []*string{
		&cloned.Query,
		&cloned.Summary,
		&cloned.HumanInstructions,
		&cloned.EditedContent,
		&cloned.Feedback,
		&cloned.FinalResult,
		&cloned.ErrorMessage,
	} {
		*field = m.mask(*field)
	}
	for i := range cloned.SearchResults {
		cloned.SearchResults[i].Title = m.mask(cloned.SearchResults[i].Title)
		cloned.SearchResults[i].Content = m.mask(cloned.SearchResults[i].Content)
	}

	return m.next.Save(ctx, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, runID string) (*domain.Record, error) {
	return m.next.Load(ctx, runID)
}

func (m *piiMiddleware) Delete(ctx context.Context, runID string) error {
	return m.next.Delete(ctx, runID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *piiMiddleware) mask(s string) string {
	if s == "" {
		return s
	}
	for _, p := range m.patterns {
		s = p.ReplaceAllString(s, Mask)
	}
	return s
}
