package digest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/digest/internal/logging"
	"github.com/aretw0/digest/internal/runtime"
	"github.com/aretw0/digest/pkg/domain"
	"github.com/aretw0/digest/pkg/graph"
	"github.com/aretw0/digest/pkg/ports"
	"github.com/aretw0/digest/pkg/steps"
	"github.com/google/uuid"
)

// Collaborators are the external services a pipeline needs. All are required.
type Collaborators = steps.Collaborators

// Engine is the high-level entry point of the research pipeline.
// It wraps the internal runtime and is safe for concurrent runs.
type Engine struct {
	runtime *runtime.Engine
	graph   *graph.Graph
	memory  ports.MemoryLog
	cfg     steps.Config
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string

	maxInput int
}

var _ ports.Pipeline = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMaxRetries bounds how many times a rejected draft is sent back to the editor.
func WithMaxRetries(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.cfg.MaxRetries = n
		}
	}
}

// WithSearchOptions configures the research step.
func WithSearchOptions(maxResults int, depth ports.SearchDepth) Option {
	return func(e *Engine) {
		if maxResults > 0 {
			e.cfg.MaxResults = maxResults
		}
		if depth != "" {
			e.cfg.Depth = depth
		}
	}
}

// WithMaxInputSize bounds the byte length of queries and instructions.
func WithMaxInputSize(n int) Option {
	return func(e *Engine) {
		e.maxInput = n
	}
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithIDGenerator overrides how run IDs are minted.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		e.newID = gen
	}
}

// New wires the pipeline over the given collaborators.
// It returns a *domain.ConfigError when any collaborator is missing.
func New(c Collaborators, opts ...Option) (*Engine, error) {
	eng := &Engine{
		cfg:   steps.DefaultConfig(),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	g, err := steps.NewPipeline(c, eng.cfg)
	if err != nil {
		return nil, err
	}

	eng.graph = g
	eng.memory = c.Memory
	eng.runtime = runtime.NewEngine(g,
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithMaxSteps(8+3*(eng.cfg.MaxRetries+1)),
		runtime.WithClock(eng.now),
	)
	return eng, nil
}

// Run executes the whole pipeline for query.
//
// Pipeline failures are reported through the returned record's ErrorMessage.
// An error is returned for an empty or malformed query, cancellation, and
// engine faults. On cancellation the record is still returned, with status
// cancelled, so it can be persisted and resumed.
func (e *Engine) Run(ctx context.Context, query string, style domain.Style) (*domain.Record, error) {
	query, err := domain.SanitizeInput(query, e.maxInput)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	style = domain.ParseStyle(string(style))

	rec := domain.NewRecord(e.newID(), query, style, e.now())
	e.logger.Info("run started", "run_id", rec.ID, "query", query, "style", style)
	return e.runtime.Execute(ctx, rec, e.graph.Entry())
}

// Resume re-enters an existing record at step with reviewer instructions.
//
// The retry budget starts over and the verdict, memory flag and final result of
// the previous pass are cleared. An empty step defaults to edit.
func (e *Engine) Resume(ctx context.Context, record *domain.Record, step, instructions string) (*domain.Record, error) {
	if record == nil {
		return nil, domain.ErrRecordNotFound
	}
	if step == "" {
		step = domain.StepEdit
	}
	if !e.graph.Has(step) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownStep, step)
	}

	instructions, err := domain.SanitizeInput(instructions, e.maxInput)
	if err != nil {
		return nil, err
	}

	next := record.Clone()
	next.HumanInstructions = strings.TrimSpace(instructions)
	next.RetryCount = 0
	next.ValidationApproved = nil
	next.SavedToMemory = false
	next.FinalResult = ""

	e.logger.Info("run resumed", "run_id", next.ID, "step", step)
	return e.runtime.Execute(ctx, next, step)
}

// History returns every persisted run in append order.
func (e *Engine) History(ctx context.Context) ([]domain.MemoryEntry, error) {
	entries, err := e.memory.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return entries, nil
}

// Stats aggregates the history.
func (e *Engine) Stats(ctx context.Context) (domain.Stats, error) {
	entries, err := e.History(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	return domain.ComputeStats(entries), nil
}

// ClearHistory drops the persisted history.
func (e *Engine) ClearHistory(ctx context.Context) error {
	if err := e.memory.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Inspect returns the graph definition for visualization or introspection tools.
func (e *Engine) Inspect() []domain.Node {
	return e.graph.Nodes()
}

// MaxRetries returns the configured retry budget.
func (e *Engine) MaxRetries() int {
	return e.cfg.MaxRetries
}
