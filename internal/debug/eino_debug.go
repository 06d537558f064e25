// Package debug starts the eino visual debug server when it is enabled.
package debug

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/devops"

	"github.com/dyike/FinSage/config"
	"github.com/dyike/FinSage/internal/logging"
)

type EinoDebugger struct {
	config *config.Config
	logger *logging.Logger
	init   func(ctx context.Context) error
}

func NewEinoDebugger(cfg *config.Config, logger *logging.Logger) *EinoDebugger {
	return &EinoDebugger{
		config: cfg,
		logger: logging.OrSilent(logger).Component("eino_debug"),
		init:   func(ctx context.Context) error { return devops.Init(ctx) },
	}
}

// Initialize starts the debug server if EinoDebugEnabled is set and does
// nothing otherwise.
func (d *EinoDebugger) Initialize(ctx context.Context) error {
	if !d.config.EinoDebugEnabled {
		return nil
	}

	d.logger.Debug().Int("port", d.config.EinoDebugPort).Msg("initializing eino visual debug plugin")

	if err := d.init(ctx); err != nil {
		return fmt.Errorf("failed to initialize Eino debug plugin: %w", err)
	}

	d.logger.Info().Str("url", d.GetDebugURL()).Msg("eino debug server started")
	return nil
}

func (d *EinoDebugger) IsEnabled() bool {
	return d.config.EinoDebugEnabled
}

func (d *EinoDebugger) GetDebugURL() string {
	if !d.config.EinoDebugEnabled {
		return ""
	}
	return fmt.Sprintf("http://localhost:%d", d.config.EinoDebugPort)
}
