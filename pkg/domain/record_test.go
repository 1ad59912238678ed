package domain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStyle(t *testing.T) {
	tests := []struct {
		in   string
		want Style
	}{
		{"", StyleAcademic},
		{"   ", StyleAcademic},
		{"Journalistic", StyleJournalistic},
		{" technical ", StyleTechnical},
		{"POPULARIZED", StylePopularized},
		{"haiku", Style("haiku")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseStyle(tt.in)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.False(t, Style("haiku").Known())
	assert.True(t, StyleTechnical.Known())
}

func TestRecord_CloneIsDeep(t *testing.T) {
	score := 0.5
	approved := true
	r := NewRecord("id", "q", StyleAcademic, time.Now())
	r.SearchResults = []SearchResult{{Title: "a", Score: &score}}
	r.ValidationApproved = &approved
	r.History = []string{"research"}

	c := r.Clone()
	*c.SearchResults[0].Score = 0.9
	c.SearchResults[0].Title = "b"
	*c.ValidationApproved = false
	c.History[0] = "edit"

	assert.Equal(t, 0.5, *r.SearchResults[0].Score)
	assert.Equal(t, "a", r.SearchResults[0].Title)
	assert.True(t, r.Approved())
	assert.Equal(t, "research", r.History[0])
}

func TestSchema(t *testing.T) {
	for _, f := range []string{
		FieldQuery, FieldStyle, FieldSearchResults, FieldSummary, FieldHumanInstructions,
		FieldEditedContent, FieldValidationApproved, FieldFeedback, FieldSavedToMemory,
		FieldFinalResult, FieldErrorMessage,
	} {
		assert.True(t, IsField(f), f)
	}
	for _, f := range []string{"id", "currentStep", "retryCount", "history", "bogus", "-"} {
		assert.False(t, IsField(f), f)
	}
	require.Len(t, Fields(), 11)
}

func TestComputeStats(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []MemoryEntry{
		{Timestamp: t0, Style: StyleAcademic, ValidationApproved: true},
		{Timestamp: t0.Add(time.Hour), Style: StyleAcademic, ValidationApproved: false},
		{Timestamp: t0.Add(2 * time.Hour), Style: StyleTechnical, ValidationApproved: true},
	}

	stats := ComputeStats(entries)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Approved)
	assert.Equal(t, 66.67, stats.ApprovalRate)
	assert.Equal(t, map[Style]int{StyleAcademic: 2, StyleTechnical: 1}, stats.StylesUsed)
	require.NotNil(t, stats.LastRun)
	assert.Equal(t, t0.Add(2*time.Hour), *stats.LastRun)

	empty := ComputeStats(nil)
	assert.Zero(t, empty.Total)
	assert.Zero(t, empty.ApprovalRate)
	assert.Nil(t, empty.LastRun)
}

func TestLifecycleHooks_Merge(t *testing.T) {
	var calls []string
	a := LifecycleHooks{OnRunEnd: func(_ context.Context, _ *RunEvent) { calls = append(calls, "a") }}
	b := LifecycleHooks{
		OnRunEnd:    func(_ context.Context, _ *RunEvent) { calls = append(calls, "b") },
		OnStepEnter: func(_ context.Context, _ *StepEvent) { calls = append(calls, "enter") },
	}

	merged := a.Merge(b)
	merged.OnRunEnd(context.Background(), &RunEvent{})
	merged.OnStepEnter(context.Background(), &StepEvent{})
	assert.Nil(t, merged.OnStepLeave)
	assert.Equal(t, []string{"a", "b", "enter"}, calls)
}
