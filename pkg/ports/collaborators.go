package ports

import (
	"context"

	"github.com/aretw0/digest/pkg/domain"
)

// SearchDepth selects how thoroughly the search collaborator crawls.
type SearchDepth string

const (
	SearchBasic    SearchDepth = "basic"
	SearchAdvanced SearchDepth = "advanced"
)

// Searcher runs web searches for the research step.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int, depth SearchDepth) ([]domain.SearchResult, error)
}

// Summarizer condenses search results into a single text.
type Summarizer interface {
	Summarize(ctx context.Context, query string, results []domain.SearchResult) (string, error)
}

// Editor rewrites content in the requested style.
// Instructions carry optional reviewer guidance and may be empty.
type Editor interface {
	Edit(ctx context.Context, content string, style domain.Style, instructions string) (string, error)
}

// Approver decides whether edited content is accepted.
// Implementations may be human-driven or automated stand-ins.
type Approver interface {
	Approve(ctx context.Context, content string) (bool, error)
}

// FeedbackCollector gathers a feedback remark once validation settled.
type FeedbackCollector interface {
	CollectFeedback(ctx context.Context, approved bool) (string, error)
}

// ApproverFunc adapts a function to the Approver interface.
type ApproverFunc func(ctx context.Context, content string) (bool, error)

// Approve calls f.
func (f ApproverFunc) Approve(ctx context.Context, content string) (bool, error) {
	return f(ctx, content)
}
