package ports

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/digest/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunRecordStoreContract runs a suite of tests to verify that a RecordStore implementation
// adheres to the defined interface contract.
func RunRecordStoreContract(t *testing.T, store RecordStore) {
	ctx := context.Background()
	runID := "contract-test-run-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		approved := true
		score := 0.87
		rec := domain.NewRecord(runID, "quantum computing", domain.StyleTechnical, time.Now().UTC())
		rec.SearchResults = []domain.SearchResult{{Title: "A", URL: "https://a.example", Content: "alpha", Score: &score}}
		rec.EditedContent = "edited"
		rec.ValidationApproved = &approved
		rec.History = []string{domain.StepResearch, domain.StepSummarize}
		rec.RetryCount = 2

		require.NoError(t, store.Save(ctx, rec), "Save should not return error")

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, rec.Query, loaded.Query)
		assert.Equal(t, rec.Style, loaded.Style)
		assert.Equal(t, rec.EditedContent, loaded.EditedContent)
		assert.True(t, loaded.Approved())
		assert.Equal(t, 2, loaded.RetryCount)
		assert.Equal(t, rec.History, loaded.History)
		require.Len(t, loaded.SearchResults, 1)
		require.NotNil(t, loaded.SearchResults[0].Score)
		assert.InDelta(t, score, *loaded.SearchResults[0].Score, 1e-9)
	})

	t.Run("Load returns a detached copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err)
		loaded.EditedContent = "mutated"

		again, err := store.Load(ctx, runID)
		require.NoError(t, err)
		assert.Equal(t, "edited", again.EditedContent)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.NewRecord(runID, "q", domain.DefaultStyle, time.Now())))
		require.NoError(t, store.Delete(ctx, runID), "Delete should not return error")

		_, err := store.Load(ctx, runID)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound, "Load after Delete should return ErrRecordNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		require.NoError(t, store.Save(ctx, domain.NewRecord(id1, "q1", domain.DefaultStyle, time.Now())))
		require.NoError(t, store.Save(ctx, domain.NewRecord(id2, "q2", domain.DefaultStyle, time.Now())))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}

// RunMemoryLogContract verifies that a MemoryLog implementation keeps append order,
// survives concurrent appends without losing or interleaving entries, and clears.
// The log passed in must start empty.
func RunMemoryLogContract(t *testing.T, log MemoryLog) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Empty", func(t *testing.T) {
		entries, err := log.ReadAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Append preserves order", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			entry := domain.MemoryEntry{
				Timestamp:          base.Add(time.Duration(i) * time.Minute),
				RunID:              fmt.Sprintf("run-%d", i),
				Query:              fmt.Sprintf("query %d", i),
				Style:              domain.StyleAcademic,
				FinalContent:       "content",
				ValidationApproved: i%2 == 0,
				SearchResultCount:  i,
			}
			require.NoError(t, log.Append(ctx, entry))
		}

		entries, err := log.ReadAll(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		for i, e := range entries {
			assert.Equal(t, fmt.Sprintf("run-%d", i), e.RunID)
			assert.Equal(t, i, e.SearchResultCount)
			assert.True(t, e.Timestamp.Equal(base.Add(time.Duration(i)*time.Minute)))
		}
		assert.True(t, entries[0].ValidationApproved)
		assert.False(t, entries[1].ValidationApproved)
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, log.Clear(ctx))
		entries, err := log.ReadAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Concurrent appends", func(t *testing.T) {
		const writers = 16
		var wg sync.WaitGroup
		errs := make(chan error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs <- log.Append(ctx, domain.MemoryEntry{
					Timestamp: base,
					RunID:     fmt.Sprintf("concurrent-%d", i),
					Query:     "parallel",
					Style:     domain.StyleJournalistic,
				})
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		entries, err := log.ReadAll(ctx)
		require.NoError(t, err)
		require.Len(t, entries, writers)
		seen := make(map[string]bool)
		for _, e := range entries {
			assert.Equal(t, "parallel", e.Query)
			seen[e.RunID] = true
		}
		assert.Len(t, seen, writers)
		require.NoError(t, log.Clear(ctx))
	})
}
