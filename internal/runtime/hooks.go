package runtime

import (
	"context"
	"time"

	"github.com/aretw0/digest/pkg/domain"
)

func (e *Engine) emitStepEnter(ctx context.Context, rec *domain.Record, step string) {
	if e.hooks.OnStepEnter == nil {
		return
	}
	e.hooks.OnStepEnter(ctx, &domain.StepEvent{
		EventBase: domain.EventBase{
			Timestamp: e.now(),
			Type:      domain.EventStepEnter,
			RunID:     rec.ID,
		},
		Step:    step,
		Attempt: rec.RetryCount + 1,
	})
}

func (e *Engine) emitStepLeave(ctx context.Context, rec *domain.Record, step string, d time.Duration, changed []string, errMsg string) {
	if e.hooks.OnStepLeave == nil {
		return
	}
	e.hooks.OnStepLeave(ctx, &domain.StepEvent{
		EventBase: domain.EventBase{
			Timestamp: e.now(),
			Type:      domain.EventStepLeave,
			RunID:     rec.ID,
		},
		Step:     step,
		Attempt:  rec.RetryCount + 1,
		Duration: d,
		Changed:  changed,
		Error:    errMsg,
	})
}

func (e *Engine) emitRunEnd(ctx context.Context, rec *domain.Record, steps int) {
	if e.hooks.OnRunEnd == nil {
		return
	}
	e.hooks.OnRunEnd(ctx, &domain.RunEvent{
		EventBase: domain.EventBase{
			Timestamp: e.now(),
			Type:      domain.EventRunEnd,
			RunID:     rec.ID,
		},
		Status:     rec.Status,
		Style:      rec.Style,
		Steps:      steps,
		RetryCount: rec.RetryCount,
		Error:      rec.ErrorMessage,
	})
}
