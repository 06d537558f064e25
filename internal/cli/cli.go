// Package cli provides the command-line interface for FinSage
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dyike/FinSage/config"
	"github.com/dyike/FinSage/internal/debug"
	"github.com/dyike/FinSage/internal/logging"
	"github.com/dyike/FinSage/internal/service"
	"github.com/dyike/FinSage/pkg/app"
)

var Version = "0.1.0"

// App holds what every command needs: the config, a logger and the current
// engine. The engine comes from a Runtime when --config names a file, or is
// built once from the environment otherwise.
type App struct {
	configPath string
	debug      bool
	plain      bool

	cfg     *config.Config
	mgr     *config.Manager
	logger  *logging.Logger
	runtime *app.Runtime
	engine  *app.Engine
	out     io.Writer
}

// Run starts the CLI application
func Run() {
	rootCmd := NewRootCmd()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the config without building any client. With --config
// the file is read through a Manager, which layers the environment and the
// --debug flag over it.
func (a *App) loadConfig() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}

	if a.configPath == "" {
		cfg := config.DefaultConfig()
		a.applyFlags(cfg)
		a.cfg = cfg
		return cfg, nil
	}

	mgr, err := config.NewManager(a.configPath, config.WithOverride(a.applyFlags))
	if err != nil {
		return nil, err
	}
	cfg := mgr.Get()
	a.mgr = mgr
	a.cfg = &cfg
	return a.cfg, nil
}

func (a *App) applyFlags(cfg *config.Config) {
	if a.debug {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}
}

// start builds the engine. watch keeps it in sync with the config file.
func (a *App) start(ctx context.Context, watch bool) error {
	if a.engine != nil || a.runtime != nil {
		return nil
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if a.logger == nil {
		a.logger = logging.NewLogger(cfg.LogLevel)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	for _, w := range cfg.Warnings() {
		a.logger.Warn().Msg(w)
	}
	if err := debug.NewEinoDebugger(cfg, a.logger).Initialize(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("eino debug server not started")
	}

	if a.mgr == nil {
		engine, err := app.DefaultBuilder(a.logger)(ctx, *cfg)
		if err != nil {
			return err
		}
		a.engine = engine
		return nil
	}

	opts := []app.Option{app.WithLogger(a.logger)}
	if !watch {
		opts = append(opts, app.WithoutWatch())
	}
	rt, err := app.NewRuntime(ctx, a.mgr, opts...)
	if err != nil {
		return err
	}
	a.runtime = rt
	return nil
}

func (a *App) currentEngine() *app.Engine {
	if a.runtime != nil {
		return a.runtime.Engine()
	}
	return a.engine
}

func (a *App) assistant() *service.Assistant {
	return a.currentEngine().Assistant
}

func (a *App) close() {
	if a.runtime != nil {
		a.runtime.Close()
	}
}
