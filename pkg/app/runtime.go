package app

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/dyike/FinSage/config"
	"github.com/dyike/FinSage/internal/logging"
)

type Option func(*Runtime)

func WithBuilder(builder EngineBuilder) Option {
	return func(r *Runtime) {
		if builder != nil {
			r.builder = builder
		}
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithoutWatch builds the engine once and never reloads it.
func WithoutWatch() Option {
	return func(r *Runtime) {
		r.watch = false
	}
}

// Runtime owns the current Engine and swaps it when the config file changes.
// Callers always read the latest engine through Engine().
type Runtime struct {
	cfgMgr *config.Manager
	engine atomic.Pointer[Engine]

	builder EngineBuilder
	logger  *logging.Logger
	watch   bool
	cancel  context.CancelFunc
}

func NewRuntime(ctx context.Context, cfgMgr *config.Manager, opts ...Option) (*Runtime, error) {
	if cfgMgr == nil {
		return nil, fmt.Errorf("config manager is required")
	}

	rt := &Runtime{
		cfgMgr: cfgMgr,
		watch:  true,
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.logger = logging.OrSilent(rt.logger)
	if rt.builder == nil {
		rt.builder = DefaultBuilder(rt.logger)
	}
	rt.logger = rt.logger.Component("runtime")

	if err := rt.reload(ctx, cfgMgr.Get()); err != nil {
		return nil, err
	}
	if !rt.watch {
		return rt, nil
	}

	watchCtx, cancel := context.WithCancel(ctx)
	rt.cancel = cancel
	if err := cfgMgr.Watch(watchCtx, func(cfg config.Config) {
		if err := rt.reload(watchCtx, cfg); err != nil {
			rt.logger.Error().Err(err).Msg("engine reload failed, keeping previous engine")
		}
	}); err != nil {
		cancel()
		return nil, err
	}

	return rt, nil
}

func (r *Runtime) Engine() *Engine {
	return r.engine.Load()
}

func (r *Runtime) Close() {
	if r.cancel != nil {
		r.cancel()
	}
}

func (r *Runtime) reload(ctx context.Context, cfg config.Config) error {
	engine, err := r.builder(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	r.engine.Store(engine)
	r.logger.Info().
		Uint64("version", engine.Version).
		Str("llm_provider", cfg.LLMProvider).
		Str("market_provider", cfg.MarketProvider).
		Msg("engine ready")
	return nil
}
