package testutils

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aretw0/digest/pkg/domain"
	"github.com/aretw0/digest/pkg/ports"
)

// ErrCollaborator is the fault returned by failing fakes.
var ErrCollaborator = errors.New("collaborator unavailable")

// Searcher returns canned results, or Err when set.
type Searcher struct {
	Results []domain.SearchResult
	Err     error

	mu    sync.Mutex
	calls int
}

// NewSearcher returns a searcher yielding n synthetic results.
func NewSearcher(n int) *Searcher {
	s := &Searcher{}
	for i := 1; i <= n; i++ {
		score := 1 - float64(i)/10
		s.Results = append(s.Results, domain.SearchResult{
			Title:   fmt.Sprintf("Source %d", i),
			URL:     fmt.Sprintf("https://example.com/%d", i),
			Content: fmt.Sprintf("content %d", i),
			Score:   &score,
		})
	}
	return s
}

func (s *Searcher) Search(ctx context.Context, query string, maxResults int, depth ports.SearchDepth) ([]domain.SearchResult, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := s.Results
	if maxResults > 0 && len(out) > maxResults {
		out = out[:maxResults]
	}
	return append([]domain.SearchResult(nil), out...), nil
}

// Calls returns how many searches ran.
func (s *Searcher) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Summarizer joins result titles into a deterministic summary.
type Summarizer struct {
	Err error
}

func (s *Summarizer) Summarize(ctx context.Context, query string, results []domain.SearchResult) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	titles := make([]string, 0, len(results))
	for _, r := range results {
		titles = append(titles, r.Title)
	}
	return fmt.Sprintf("Summary of %s from %s", query, strings.Join(titles, ", ")), nil
}

// EditCall captures one invocation of Editor.
type EditCall struct {
	Content      string
	Style        domain.Style
	Instructions string
}

// Editor tags content with the style and records every call.
type Editor struct {
	Err error

	mu    sync.Mutex
	calls []EditCall
}

func (e *Editor) Edit(ctx context.Context, content string, style domain.Style, instructions string) (string, error) {
	e.mu.Lock()
	e.calls = append(e.calls, EditCall{Content: content, Style: style, Instructions: instructions})
	n := len(e.calls)
	e.mu.Unlock()
	if e.Err != nil {
		return "", e.Err
	}
	out := fmt.Sprintf("[%s v%d] %s", style, n, content)
	if instructions != "" {
		out += " (" + instructions + ")"
	}
	return out, nil
}

// Calls returns a snapshot of the recorded calls.
func (e *Editor) Calls() []EditCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]EditCall(nil), e.calls...)
}

// Approver answers from a script; once exhausted it repeats Default.
type Approver struct {
	Script  []bool
	Default bool
	Err     error

	mu    sync.Mutex
	calls int
}

// AlwaysApprove returns an approver that accepts everything.
func AlwaysApprove() *Approver { return &Approver{Default: true} }

// NeverApprove returns an approver that rejects everything.
func NeverApprove() *Approver { return &Approver{Default: false} }

func (a *Approver) Approve(ctx context.Context, content string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	i := a.calls
	a.calls++
	if a.Err != nil {
		return false, a.Err
	}
	if i < len(a.Script) {
		return a.Script[i], nil
	}
	return a.Default, nil
}

// Calls returns how many approvals were requested.
func (a *Approver) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// Feedback returns a fixed remark per verdict.
type Feedback struct {
	Err error
}

func (f *Feedback) CollectFeedback(ctx context.Context, approved bool) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	if approved {
		return "clear and complete", nil
	}
	return "needs more detail", nil
}

// Collaborators bundles one of each fake so tests can tweak them before wiring.
type Collaborators struct {
	Searcher   *Searcher
	Summarizer *Summarizer
	Editor     *Editor
	Approver   *Approver
	Feedback   *Feedback
}

// NewCollaborators returns fakes for a successful, approved run.
func NewCollaborators() *Collaborators {
	return &Collaborators{
		Searcher:   NewSearcher(3),
		Summarizer: &Summarizer{},
		Editor:     &Editor{},
		Approver:   AlwaysApprove(),
		Feedback:   &Feedback{},
	}
}
