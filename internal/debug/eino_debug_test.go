package debug

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dyike/FinSage/config"
)

func TestEinoDebuggerDisabled(t *testing.T) {
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	d := NewEinoDebugger(cfg, nil)
	called := false
	d.init = func(context.Context) error { called = true; return nil }

	assert.NoError(t, d.Initialize(context.Background()))
	assert.False(t, called)
	assert.False(t, d.IsEnabled())
	assert.Empty(t, d.GetDebugURL())
}

func TestEinoDebuggerEnabled(t *testing.T) {
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	cfg.EinoDebugEnabled = true
	d := NewEinoDebugger(cfg, nil)
	d.init = func(context.Context) error { return errors.New("port in use") }

	assert.ErrorContains(t, d.Initialize(context.Background()), "port in use")
	assert.Equal(t, "http://localhost:52538", d.GetDebugURL())
}
