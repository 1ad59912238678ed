package digest_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/digest"
	"github.com/aretw0/digest/internal/testutils"
	"github.com/aretw0/digest/pkg/adapters/memory"
	"github.com/aretw0/digest/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newEngine(t *testing.T, fakes *testutils.Collaborators, log *memory.Log, opts ...digest.Option) *digest.Engine {
	t.Helper()
	opts = append([]digest.Option{digest.WithClock(func() time.Time { return fixedNow })}, opts...)
	eng, err := digest.New(digest.Collaborators{
		Searcher:   fakes.Searcher,
		Summarizer: fakes.Summarizer,
		Editor:     fakes.Editor,
		Approver:   fakes.Approver,
		Feedback:   fakes.Feedback,
		Memory:     log,
	}, opts...)
	require.NoError(t, err)
	return eng
}

func TestEngine_Run_ApprovedFirstTime(t *testing.T) {
	fakes := testutils.NewCollaborators()
	log := memory.NewLog()
	eng := newEngine(t, fakes, log)

	rec, err := eng.Run(context.Background(), "solar storage", domain.StyleAcademic)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, rec.Status)
	assert.Empty(t, rec.ErrorMessage)
	assert.True(t, rec.Approved())
	assert.True(t, rec.SavedToMemory)
	assert.Equal(t, rec.EditedContent, rec.FinalResult)
	assert.Equal(t, 0, rec.RetryCount)
	assert.Len(t, rec.SearchResults, 3)
	assert.Equal(t, []string{
		domain.StepResearch, domain.StepSummarize, domain.StepEdit, domain.StepValidate,
		domain.StepFeedback, domain.StepMemory, domain.StepFinalize,
	}, rec.History)
	assert.Equal(t, fixedNow, rec.CreatedAt)
	assert.NotEmpty(t, rec.ID)

	entries, err := eng.History(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "solar storage", entries[0].Query)
	assert.Equal(t, rec.EditedContent, entries[0].FinalContent)
	assert.Equal(t, 3, entries[0].SearchResultCount)
	assert.True(t, entries[0].ValidationApproved)
}

func TestEngine_Run_RetryBudgetExhausted(t *testing.T) {
	fakes := testutils.NewCollaborators()
	fakes.Approver = testutils.NeverApprove()
	log := memory.NewLog()
	eng := newEngine(t, fakes, log, digest.WithMaxRetries(2))

	rec, err := eng.Run(context.Background(), "cold fusion", domain.StyleTechnical)
	require.NoError(t, err, "an exhausted budget is not a process failure")

	assert.Equal(t, domain.StatusFailed, rec.Status)
	assert.Equal(t, domain.MaxRetriesExceeded, rec.ErrorMessage)
	assert.Equal(t, 2, rec.RetryCount)
	assert.Empty(t, rec.FinalResult)
	assert.False(t, rec.SavedToMemory)
	assert.Equal(t, 3, fakes.Approver.Calls())
	assert.Equal(t, 0, log.Len(), "memory is unreachable on the error branch")
}

func TestEngine_Run_SearchFailureTerminatesEarly(t *testing.T) {
	fakes := testutils.NewCollaborators()
	fakes.Searcher.Err = testutils.ErrCollaborator
	log := memory.NewLog()
	eng := newEngine(t, fakes, log)

	rec, err := eng.Run(context.Background(), "anything", "")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusFailed, rec.Status)
	assert.Equal(t, "search error: collaborator unavailable", rec.ErrorMessage)
	assert.Equal(t, []string{domain.StepResearch}, rec.History)
	assert.Empty(t, rec.Summary)
	assert.Empty(t, rec.FinalResult)
	assert.Empty(t, fakes.Editor.Calls())
	assert.Equal(t, 0, log.Len())
}

func TestEngine_Run_EmptySearchResults(t *testing.T) {
	fakes := testutils.NewCollaborators()
	fakes.Searcher.Results = nil
	eng := newEngine(t, fakes, memory.NewLog())

	rec, err := eng.Run(context.Background(), "obscure topic", domain.StyleAcademic)
	require.NoError(t, err)
	assert.Equal(t, "no search results to summarize", rec.ErrorMessage)
	assert.Equal(t, domain.StepSummarize, rec.CurrentStep)
}

func TestEngine_Resume_ResearchReplacesSources(t *testing.T) {
	fakes := testutils.NewCollaborators()
	eng := newEngine(t, fakes, memory.NewLog())

	first, err := eng.Run(context.Background(), "q", domain.StyleAcademic)
	require.NoError(t, err)
	require.Len(t, first.SearchResults, 3)

	fakes.Searcher.Results = fakes.Searcher.Results[:1]
	second, err := eng.Resume(context.Background(), first, domain.StepResearch, "")
	require.NoError(t, err)
	assert.Len(t, second.SearchResults, 1)
	assert.Equal(t, domain.StatusCompleted, second.Status)

	fakes.Searcher.Results = nil
	third, err := eng.Resume(context.Background(), second, domain.StepResearch, "")
	require.NoError(t, err)
	assert.Empty(t, third.SearchResults)
	assert.Equal(t, "no search results to summarize", third.ErrorMessage)
	assert.Equal(t, domain.StatusFailed, third.Status)
}

func TestEngine_Run_Validation(t *testing.T) {
	eng := newEngine(t, testutils.NewCollaborators(), memory.NewLog())

	_, err := eng.Run(context.Background(), "   ", domain.StyleAcademic)
	assert.ErrorIs(t, err, domain.ErrEmptyQuery)

	_, err = eng.Run(context.Background(), "\xbd\xb2", domain.StyleAcademic)
	assert.ErrorIs(t, err, domain.ErrInvalidUTF8)
}

func TestEngine_Run_SanitizesInput(t *testing.T) {
	eng := newEngine(t, testutils.NewCollaborators(), memory.NewLog(), digest.WithMaxInputSize(32))

	rec, err := eng.Run(context.Background(), " \x1b[1mgo\x00 generics ", domain.StyleAcademic)
	require.NoError(t, err)
	assert.Equal(t, "[1mgo generics", rec.Query)

	_, err = eng.Run(context.Background(), strings.Repeat("q", 33), domain.StyleAcademic)
	assert.ErrorIs(t, err, domain.ErrInputTooLarge)

	_, err = eng.Resume(context.Background(), rec, domain.StepEdit, strings.Repeat("i", 33))
	assert.ErrorIs(t, err, domain.ErrInputTooLarge)
}

func TestEngine_Run_StyleNormalization(t *testing.T) {
	fakes := testutils.NewCollaborators()
	eng := newEngine(t, fakes, memory.NewLog())

	rec, err := eng.Run(context.Background(), "q", " Journalistic ")
	require.NoError(t, err)
	assert.Equal(t, domain.StyleJournalistic, rec.Style)

	rec, err = eng.Run(context.Background(), "q", "haiku")
	require.NoError(t, err)
	assert.Equal(t, domain.Style("haiku"), rec.Style)
	calls := fakes.Editor.Calls()
	assert.Equal(t, domain.Style("haiku"), calls[len(calls)-1].Style)
}

func TestNew_MissingCollaborators(t *testing.T) {
	_, err := digest.New(digest.Collaborators{})

	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Len(t, cfgErr.Missing, 6)
}

func TestEngine_Resume(t *testing.T) {
	fakes := testutils.NewCollaborators()
	fakes.Approver = &testutils.Approver{Script: []bool{false, false}, Default: true}
	log := memory.NewLog()
	eng := newEngine(t, fakes, log, digest.WithMaxRetries(1))

	first, err := eng.Run(context.Background(), "graph databases", domain.StyleTechnical)
	require.NoError(t, err)
	require.Equal(t, domain.MaxRetriesExceeded, first.ErrorMessage)
	require.Equal(t, 1, first.RetryCount)

	resumed, err := eng.Resume(context.Background(), first, domain.StepEdit, "focus on query planners")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, resumed.Status)
	assert.Empty(t, resumed.ErrorMessage)
	assert.Equal(t, first.ID, resumed.ID)
	assert.Equal(t, first.Query, resumed.Query)
	assert.Equal(t, "focus on query planners", resumed.HumanInstructions)
	assert.Equal(t, 0, resumed.RetryCount)
	assert.Equal(t, resumed.EditedContent, resumed.FinalResult)
	assert.Contains(t, resumed.EditedContent, "focus on query planners")
	assert.Equal(t, 1, log.Len())

	calls := fakes.Editor.Calls()
	assert.Equal(t, "focus on query planners", calls[len(calls)-1].Instructions)
	assert.Equal(t, first.Summary, calls[len(calls)-1].Content, "edit re-reads the summary")

	assert.Equal(t, domain.MaxRetriesExceeded, first.ErrorMessage, "resume never mutates its input")
}

func TestEngine_Resume_Errors(t *testing.T) {
	eng := newEngine(t, testutils.NewCollaborators(), memory.NewLog())
	rec := domain.NewRecord("run-x", "q", domain.StyleAcademic, fixedNow)

	_, err := eng.Resume(context.Background(), rec, "publish", "")
	assert.ErrorIs(t, err, domain.ErrUnknownStep)

	_, err = eng.Resume(context.Background(), nil, domain.StepEdit, "")
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestEngine_Run_CancelledRunIsNotPersisted(t *testing.T) {
	fakes := testutils.NewCollaborators()
	log := memory.NewLog()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hooks := domain.LifecycleHooks{
		OnStepLeave: func(_ context.Context, e *domain.StepEvent) {
			if e.Step == domain.StepFeedback {
				cancel()
			}
		},
	}
	eng := newEngine(t, fakes, log, digest.WithLifecycleHooks(hooks))

	rec, err := eng.Run(ctx, "q", domain.StyleAcademic)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, rec, "a cancelled run still returns its record")
	assert.Equal(t, domain.StatusCancelled, rec.Status)
	assert.Equal(t, domain.StepFeedback, rec.CurrentStep)
	assert.False(t, rec.SavedToMemory)
	assert.Equal(t, 0, log.Len())
}

func TestEngine_Stats(t *testing.T) {
	fakes := testutils.NewCollaborators()
	fakes.Approver = &testutils.Approver{Script: []bool{true, false, true}, Default: true}
	log := memory.NewLog()
	eng := newEngine(t, fakes, log, digest.WithMaxRetries(0))

	for _, style := range []domain.Style{domain.StyleAcademic, domain.StyleTechnical, domain.StyleTechnical} {
		_, err := eng.Run(context.Background(), "topic", style)
		require.NoError(t, err)
	}

	stats, err := eng.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total, "the rejected run never reaches memory")
	assert.Equal(t, 2, stats.Approved)
	assert.Equal(t, 100.0, stats.ApprovalRate)
	assert.Equal(t, map[domain.Style]int{domain.StyleAcademic: 1, domain.StyleTechnical: 1}, stats.StylesUsed)

	require.NoError(t, eng.ClearHistory(context.Background()))
	stats, err = eng.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
	assert.Nil(t, stats.LastRun)
}

func TestEngine_ConcurrentRunsShareHistory(t *testing.T) {
	log := memory.NewLog()
	eng := newEngine(t, testutils.NewCollaborators(), log)

	const runs = 25
	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec, err := eng.Run(context.Background(), fmt.Sprintf("topic %d", i), domain.StyleAcademic)
			if assert.NoError(t, err) {
				assert.Equal(t, fmt.Sprintf("topic %d", i), rec.Query)
				assert.Contains(t, rec.FinalResult, fmt.Sprintf("topic %d", i))
			}
		}(i)
	}
	wg.Wait()

	entries, err := eng.History(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, runs)

	ids := make(map[string]bool)
	for _, e := range entries {
		ids[e.RunID] = true
	}
	assert.Len(t, ids, runs)
}

func TestEngine_Inspect(t *testing.T) {
	eng := newEngine(t, testutils.NewCollaborators(), memory.NewLog())

	nodes := eng.Inspect()
	require.Len(t, nodes, 7)
	assert.Equal(t, domain.StepResearch, nodes[0].ID)
	assert.Equal(t, domain.NodeKindRouter, nodes[3].Kind)
	assert.Equal(t, domain.NodeKindTerminal, nodes[6].Kind)
	assert.Equal(t, domain.DefaultMaxRetries, eng.MaxRetries())
}
