package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/digest/internal/runtime"
	"github.com/aretw0/digest/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_LifecycleHooks(t *testing.T) {
	summarize := newStep("summarize", []string{domain.FieldSummary}, setSummary)
	finalize := newStep("finalize", []string{domain.FieldFinalResult}, func(_ context.Context, rec domain.Record) domain.Update {
		return domain.Update{domain.FieldFinalResult: rec.Summary}
	})

	var entered, left []string
	var changed [][]string
	var end *domain.RunEvent

	hooks := domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) {
			assert.Equal(t, domain.EventStepEnter, e.Type)
			entered = append(entered, e.Step)
		},
		OnStepLeave: func(_ context.Context, e *domain.StepEvent) {
			assert.Equal(t, "run-1", e.RunID)
			left = append(left, e.Step)
			changed = append(changed, e.Changed)
		},
		OnRunEnd: func(_ context.Context, e *domain.RunEvent) {
			end = e
		},
	}

	engine := runtime.NewEngine(linear(t, summarize, finalize), runtime.WithLifecycleHooks(hooks))
	_, err := engine.Execute(context.Background(), newRecord("q"), "summarize")
	require.NoError(t, err)

	assert.Equal(t, []string{"summarize", "finalize"}, entered)
	assert.Equal(t, []string{"summarize", "finalize"}, left)
	assert.Equal(t, [][]string{{domain.FieldSummary}, {domain.FieldFinalResult}}, changed)

	require.NotNil(t, end)
	assert.Equal(t, domain.StatusCompleted, end.Status)
	assert.Equal(t, 2, end.Steps)
	assert.Equal(t, domain.StyleAcademic, end.Style)
}
