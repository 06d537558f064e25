package app

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dyike/FinSage/config"
	"github.com/dyike/FinSage/internal/logging"
	"github.com/dyike/FinSage/internal/service"
)

// Engine is one immutable build of the assistant for a config snapshot.
type Engine struct {
	Config    config.Config
	Assistant *service.Assistant
	BuiltAt   time.Time
	Version   uint64
}

var engineSeq atomic.Uint64

// EngineBuilder builds an engine from a config snapshot.
type EngineBuilder func(ctx context.Context, cfg config.Config) (*Engine, error)

// DefaultBuilder returns a builder that wires the real clients and logs
// through logger.
func DefaultBuilder(logger *logging.Logger) EngineBuilder {
	return func(ctx context.Context, cfg config.Config) (*Engine, error) {
		assistant, err := service.NewAssistant(ctx, &cfg, logger)
		if err != nil {
			return nil, err
		}
		return NewEngine(cfg, assistant), nil
	}
}

func NewEngine(cfg config.Config, assistant *service.Assistant) *Engine {
	return &Engine{
		Config:    cfg,
		Assistant: assistant,
		BuiltAt:   time.Now(),
		Version:   engineSeq.Add(1),
	}
}
