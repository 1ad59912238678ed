package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/digest/pkg/domain"
)

// AuditHooks logs every step transition at Info level.
func AuditHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			logger.InfoContext(ctx, "step_enter",
				"run_id", e.RunID,
				"step", e.Step,
				"attempt", e.Attempt,
			)
		},
		OnStepLeave: func(ctx context.Context, e *domain.StepEvent) {
			attrs := []any{
				"run_id", e.RunID,
				"step", e.Step,
				"duration", e.Duration,
				"changed", e.Changed,
			}
			if e.Error != "" {
				logger.WarnContext(ctx, "step_leave", append(attrs, "error_message", e.Error)...)
				return
			}
			logger.InfoContext(ctx, "step_leave", attrs...)
		},
		OnRunEnd: func(ctx context.Context, e *domain.RunEvent) {
			logger.InfoContext(ctx, "run_end",
				"run_id", e.RunID,
				"status", e.Status,
				"style", e.Style,
				"steps", e.Steps,
				"retries", e.RetryCount,
			)
		},
	}
}
