// Package cli wires configuration into a runnable pipeline for the digest commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/digest"
	"github.com/aretw0/digest/internal/config"
	"github.com/aretw0/digest/pkg/adapters/approval"
	"github.com/aretw0/digest/pkg/adapters/feedback"
	"github.com/aretw0/digest/pkg/adapters/file"
	"github.com/aretw0/digest/pkg/adapters/gemini"
	"github.com/aretw0/digest/pkg/adapters/libsql"
	"github.com/aretw0/digest/pkg/adapters/memory"
	"github.com/aretw0/digest/pkg/adapters/process"
	"github.com/aretw0/digest/pkg/adapters/redis"
	"github.com/aretw0/digest/pkg/adapters/tavily"
	"github.com/aretw0/digest/pkg/domain"
	"github.com/aretw0/digest/pkg/persistence/middleware"
	"github.com/aretw0/digest/pkg/ports"
	"github.com/aretw0/digest/pkg/session"
)

// App is a fully wired pipeline plus the run store it persists to.
type App struct {
	Config   *config.Config
	Engine   *digest.Engine
	Sessions *session.Manager
	// Info describes the selected collaborators and backends for health output.
	Info map[string]string

	logger  *slog.Logger
	closers []func() error
}

// BuildOption customizes Build.
type BuildOption func(*buildOptions)

type buildOptions struct {
	hooks    domain.LifecycleHooks
	approver ports.Approver
	engine   []digest.Option
}

// WithHooks attaches lifecycle hooks to the engine.
func WithHooks(hooks ...domain.LifecycleHooks) BuildOption {
	return func(o *buildOptions) {
		for _, h := range hooks {
			o.hooks = o.hooks.Merge(h)
		}
	}
}

// WithApprover overrides the approver selected by configuration.
func WithApprover(a ports.Approver) BuildOption {
	return func(o *buildOptions) {
		o.approver = a
	}
}

// WithEngineOptions forwards extra options to digest.New.
func WithEngineOptions(opts ...digest.Option) BuildOption {
	return func(o *buildOptions) {
		o.engine = append(o.engine, opts...)
	}
}

// Build turns a configuration into a running App.
// Credentials are not checked here; callers that execute the pipeline
// should call cfg.Validate first.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...BuildOption) (_ *App, err error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	var bo buildOptions
	for _, opt := range opts {
		opt(&bo)
	}

	app := &App{
		Config: cfg,
		logger: logger,
		Info:   map[string]string{},
	}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	var (
		rdb   *backend.Client
		sqldb *libsql.DB
	)
	if cfg.Uses(config.BackendRedis) {
		rdb = redis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}
		app.closers = append(app.closers, rdb.Close)
	}
	if cfg.Uses(config.BackendLibSQL) {
		sqldb, err = libsql.Open(ctx, cfg.LibSQL.Path)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, sqldb.Close)
	}

	memLog, err := buildMemoryLog(cfg, rdb, sqldb)
	if err != nil {
		return nil, err
	}
	store, err := buildRecordStore(cfg, rdb, sqldb)
	if err != nil {
		return nil, err
	}
	store, err = protectStore(store, cfg.Security)
	if err != nil {
		return nil, err
	}

	approver := bo.approver
	llm := gemini.New(cfg.LLM.APIKey,
		gemini.WithBaseURL(cfg.LLM.BaseURL),
		gemini.WithModel(cfg.LLM.Model),
		gemini.WithTemperature(cfg.LLM.Temperature),
		gemini.WithMaxTokens(cfg.LLM.MaxTokens),
		gemini.WithLogger(logger),
	)
	if approver == nil {
		approver, err = buildApprover(cfg.Approval, llm)
		if err != nil {
			return nil, err
		}
	}

	searcher := tavily.New(cfg.Search.APIKey,
		tavily.WithBaseURL(cfg.Search.BaseURL),
		tavily.WithLogger(logger),
	)

	engineOpts := []digest.Option{
		digest.WithLogger(logger),
		digest.WithLifecycleHooks(bo.hooks),
		digest.WithMaxRetries(cfg.Pipeline.MaxRetries),
		digest.WithMaxInputSize(cfg.Pipeline.MaxInputSize),
		digest.WithSearchOptions(cfg.Search.MaxResults, ports.SearchDepth(cfg.Search.Depth)),
	}
	engineOpts = append(engineOpts, bo.engine...)

	app.Engine, err = digest.New(digest.Collaborators{
		Searcher:   searcher,
		Summarizer: llm,
		Editor:     llm,
		Approver:   approver,
		Feedback:   feedback.NewCanned(feedback.WithPools(cfg.Feedback.Positive, cfg.Feedback.Negative)),
		Memory:     memLog,
	}, engineOpts...)
	if err != nil {
		return nil, err
	}

	sessionOpts := []session.Option{session.WithLogger(logger)}
	if cfg.Runs.Backend == config.BackendRedis {
		sessionOpts = append(sessionOpts, session.WithLocker(redis.NewLocker(rdb, cfg.Redis.Prefix)))
	}
	app.Sessions = session.NewManager(store, sessionOpts...)

	app.Info["search"] = "tavily"
	app.Info["llm"] = "gemini/" + llm.Model()
	app.Info["approval"] = cfg.Approval.Mode
	app.Info["memory"] = cfg.Memory.Backend
	app.Info["runs"] = cfg.Runs.Backend
	app.Info["encrypted"] = strconv.FormatBool(cfg.Security.EncryptionKey != "")
	app.Info["max_retries"] = strconv.Itoa(app.Engine.MaxRetries())

	logger.Debug("app built",
		"approval", cfg.Approval.Mode,
		"memory", cfg.Memory.Backend,
		"runs", cfg.Runs.Backend,
	)
	return app, nil
}

// Close releases backend connections. It is safe to call more than once.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func buildMemoryLog(cfg *config.Config, rdb *backend.Client, db *libsql.DB) (ports.MemoryLog, error) {
	switch cfg.Memory.Backend {
	case config.BackendMemory:
		return memory.NewLog(), nil
	case config.BackendFile:
		return file.NewLog(cfg.Memory.Path), nil
	case config.BackendRedis:
		return redis.NewLog(rdb, redisOptions(cfg.Redis)...), nil
	case config.BackendLibSQL:
		return db.Log(), nil
	default:
		return nil, &domain.ConfigError{Missing: []string{fmt.Sprintf("memory.backend (unknown %q)", cfg.Memory.Backend)}}
	}
}

func buildRecordStore(cfg *config.Config, rdb *backend.Client, db *libsql.DB) (ports.RecordStore, error) {
	switch cfg.Runs.Backend {
	case config.BackendMemory:
		return memory.NewStore(), nil
	case config.BackendFile:
		return file.NewStore(cfg.Runs.Path), nil
	case config.BackendRedis:
		return redis.NewStore(rdb, redisOptions(cfg.Redis)...), nil
	case config.BackendLibSQL:
		return db.Store(), nil
	default:
		return nil, &domain.ConfigError{Missing: []string{fmt.Sprintf("runs.backend (unknown %q)", cfg.Runs.Backend)}}
	}
}

// protectStore layers redaction and encryption over the run store.
func protectStore(store ports.RecordStore, sc config.SecurityConfig) (ports.RecordStore, error) {
	var mws []middleware.Middleware
	if sc.Redact {
		patterns := sc.RedactPatterns
		if len(patterns) == 0 {
			patterns = middleware.DefaultPIIPatterns
		}
		pii, err := middleware.NewPIIMiddleware(patterns)
		if err != nil {
			return nil, err
		}
		mws = append(mws, pii)
	}
	if sc.EncryptionKey != "" {
		active, err := middleware.ParseKey(sc.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("security.encryption_key: %w", err)
		}
		enc := middleware.EncryptionConfig{ActiveKey: active}
		for i, k := range sc.FallbackKeys {
			key, err := middleware.ParseKey(k)
			if err != nil {
				return nil, fmt.Errorf("security.fallback_keys[%d]: %w", i, err)
			}
			enc.FallbackKeys = append(enc.FallbackKeys, key)
		}
		mw, err := middleware.NewEncryptionMiddleware(enc)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	return middleware.Chain(store, mws...), nil
}

func redisOptions(rc config.RedisConfig) []redis.Option {
	opts := []redis.Option{redis.WithPrefix(rc.Prefix)}
	if rc.TTL > 0 {
		opts = append(opts, redis.WithTTL(rc.TTL))
	}
	return opts
}

func buildApprover(ac config.ApprovalConfig, llm *gemini.Client) (ports.Approver, error) {
	switch ac.Mode {
	case config.ApprovalRandom, "":
		return approval.Random(ac.Probability), nil
	case config.ApprovalStatic:
		return approval.Static(ac.Approve), nil
	case config.ApprovalRule:
		return approval.Rule(ac.Rule)
	case config.ApprovalConsole:
		return approval.Console(), nil
	case config.ApprovalLLM:
		return gemini.NewReviewer(llm), nil
	case config.ApprovalCommand:
		return process.NewApprover(ac.Command, ac.Args,
			process.WithEnv(ac.Env),
			process.WithTimeout(ac.Timeout),
		)
	default:
		return nil, &domain.ConfigError{Missing: []string{fmt.Sprintf("approval.mode (unknown %q)", ac.Mode)}}
	}
}
