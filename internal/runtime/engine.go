package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/digest/internal/logging"
	"github.com/aretw0/digest/pkg/domain"
	"github.com/aretw0/digest/pkg/graph"
	"github.com/aretw0/digest/pkg/ports"
)

// DefaultMaxSteps is the step cap used when none is configured.
const DefaultMaxSteps = 8 + 3*(domain.DefaultMaxRetries+1)

// Engine walks a step graph over a single record at a time.
// It holds no per-run state and is safe for concurrent runs.
type Engine struct {
	graph    *graph.Graph
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	maxSteps int
	now      func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMaxSteps caps how many steps a single Execute call may run.
func WithMaxSteps(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxSteps = n
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates a new engine for g.
func NewEngine(g *graph.Graph, opts ...EngineOption) *Engine {
	e := &Engine{
		graph:    g,
		logger:   logging.NewNop(),
		maxSteps: DefaultMaxSteps,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Graph returns the graph the engine walks.
func (e *Engine) Graph() *graph.Graph {
	return e.graph
}

// Execute runs the graph starting at from until a terminal is reached.
//
// The input record is never mutated. Step faults end the run with a record whose
// ErrorMessage is set and a nil error. A non-nil error is returned only for
// cancellation (alongside the cancelled record) and for fatal engine faults:
// unknown fields, ownership violations, type mismatches, unmapped router labels
// and the step cap.
func (e *Engine) Execute(ctx context.Context, in *domain.Record, from string) (*domain.Record, error) {
	if !e.graph.Has(from) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownStep, from)
	}

	rec := in.Clone()
	rec.Status = domain.StatusActive
	logger := e.logger.With("run_id", rec.ID)

	current := from
	steps := 0
	for current != graph.End {
		if err := ctx.Err(); err != nil {
			return e.cancel(ctx, rec, steps, err), err
		}
		if steps >= e.maxSteps {
			rec.Status = domain.StatusFailed
			e.emitRunEnd(ctx, rec, steps)
			return rec, fmt.Errorf("%w: %d steps", domain.ErrStepLimit, e.maxSteps)
		}
		steps++

		next, err := e.runStep(ctx, logger, rec, current)
		if err != nil {
			rec.Status = domain.StatusFailed
			e.emitRunEnd(ctx, rec, steps)
			logger.Error("run aborted", "step", current, "err", err)
			return rec, err
		}
		rec = next

		if rec.Failed() {
			logger.Debug("step recorded an error, terminating", "step", current, "error_message", rec.ErrorMessage)
			break
		}

		t, err := e.graph.Next(current, rec)
		if err != nil {
			rec.Status = domain.StatusFailed
			e.emitRunEnd(ctx, rec, steps)
			return rec, err
		}
		if t.Label != "" {
			logger.Debug("router decided", "step", current, "label", t.Label, "to", t.ToNodeID)
		}
		if t.Retry {
			rec.RetryCount++
		}
		if t.Fail != "" {
			rec.ErrorMessage = t.Fail
		}
		current = t.ToNodeID
	}

	if rec.Failed() {
		rec.Status = domain.StatusFailed
	} else {
		rec.Status = domain.StatusCompleted
	}
	rec.UpdatedAt = e.now()
	e.emitRunEnd(ctx, rec, steps)
	logger.Info("run finished", "status", rec.Status, "steps", steps, "retries", rec.RetryCount)
	return rec, nil
}

// runStep executes one step against a private copy of rec and merges its update.
func (e *Engine) runStep(ctx context.Context, logger *slog.Logger, rec *domain.Record, id string) (*domain.Record, error) {
	step, ok := e.graph.Step(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownStep, id)
	}

	e.emitStepEnter(ctx, rec, id)
	started := e.now()

	update := invoke(ctx, step, *rec.Clone())

	next, err := merge(step, rec, update)
	if err != nil {
		e.emitStepLeave(ctx, rec, id, e.now().Sub(started), nil, err.Error())
		return nil, err
	}
	next.CurrentStep = id
	next.History = append(next.History, id)
	next.UpdatedAt = e.now()

	changed := domain.Changes(rec, next)
	e.emitStepLeave(ctx, next, id, e.now().Sub(started), changed, next.ErrorMessage)
	logger.Debug("step done", "step", id, "changed", changed)
	return next, nil
}

// invoke calls the step, converting a panic into an error update so a
// misbehaving collaborator never takes the run down.
func invoke(ctx context.Context, step ports.Step, rec domain.Record) (update domain.Update) {
	defer func() {
		if r := recover(); r != nil {
			update = domain.Fail(fmt.Sprintf("step panicked: %v", r))
		}
	}()
	return step.Execute(ctx, rec)
}

func (e *Engine) cancel(ctx context.Context, rec *domain.Record, steps int, cause error) *domain.Record {
	rec.Status = domain.StatusCancelled
	rec.ErrorMessage = fmt.Sprintf("run cancelled: %v", cause)
	rec.UpdatedAt = e.now()
	e.emitRunEnd(context.WithoutCancel(ctx), rec, steps)
	e.logger.Warn("run cancelled", "run_id", rec.ID, "step", rec.CurrentStep, "err", cause)
	return rec
}
