package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/dyike/FinSage/internal/logging"
)

// Manager serves the config named by --config. Each load decodes the file
// over the built-in defaults, then applies the environment (.env included),
// then the caller's override. Credentials may come from the file or the
// environment, but Save never writes them.
type Manager struct {
	path     string
	debounce time.Duration
	override func(*Config)
	logger   *logging.Logger

	mu       sync.RWMutex
	cfg      Config
	onChange func(Config)
	watching bool
}

type ManagerOption func(*Manager)

// WithOverride applies fn after the environment on every load, e.g. CLI flags.
func WithOverride(fn func(*Config)) ManagerOption {
	return func(m *Manager) {
		m.override = fn
	}
}

func WithDebounce(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.debounce = d
		}
	}
}

func WithLogger(logger *logging.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager loads path, writing a default file there first if none exists.
// Files ending in .toml are TOML, anything else JSON.
func NewManager(path string, opts ...ManagerOption) (*Manager, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("config path is required")
	}

	m := &Manager{
		path:     path,
		debounce: 300 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.OrSilent(m.logger).Component("config")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := Save(path, *DefaultConfigWithRoot(filepath.Dir(path))); err != nil {
			return nil, fmt.Errorf("write initial config: %w", err)
		}
		m.logger.Info().Str("path", path).Msg("created default config")
	} else if err != nil {
		return nil, fmt.Errorf("stat config: %w", err)
	}

	cfg, err := m.load()
	if err != nil {
		return nil, err
	}
	m.cfg = cfg
	return m, nil
}

func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *Manager) Path() string {
	return m.path
}

func (m *Manager) load() (Config, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfigWithRoot(filepath.Dir(m.path))
	if err := decodeConfig(m.path, data, cfg); err != nil {
		return Config{}, err
	}
	cfg.applyEnv()
	if m.override != nil {
		m.override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", m.path, err)
	}
	return *cfg, nil
}

// Reload re-reads the file. When the effective config changed it is stored
// and passed to the Watch callback before Reload returns. On error the
// current config is kept.
func (m *Manager) Reload() error {
	cfg, err := m.load()
	if err != nil {
		return err
	}

	m.mu.Lock()
	if reflect.DeepEqual(m.cfg, cfg) {
		m.mu.Unlock()
		return nil
	}
	m.cfg = cfg
	cb := m.onChange
	m.mu.Unlock()

	m.logger.Info().Str("path", m.path).Msg("config reloaded")
	if cb != nil {
		cb(cfg)
	}
	return nil
}

// Watch calls Reload whenever the file is written, created or renamed, after
// the debounce interval. It stops when ctx is done.
func (m *Manager) Watch(ctx context.Context, onChange func(Config)) error {
	m.mu.Lock()
	m.onChange = onChange
	if m.watching {
		m.mu.Unlock()
		return nil
	}
	m.watching = true
	m.mu.Unlock()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// The directory is watched so editors that replace the file are seen.
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}

	go m.watchLoop(ctx, watcher)
	return nil
}

func (m *Manager) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case evt, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(evt.Name) != filepath.Clean(m.path) {
				continue
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(m.debounce, func() {
				if err := m.Reload(); err != nil {
					m.logger.Error().Err(err).Msg("config reload failed, keeping current config")
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			m.logger.Warn().Err(err).Msg("config watcher error")
		case <-ctx.Done():
			return
		}
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func decodeConfig(path string, data []byte, cfg *Config) error {
	if isTOML(path) {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode toml config: %w", err)
		}
		return nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decode json config: %w", err)
	}
	return nil
}

// redactSecrets clears every credential so it never lands on disk.
func redactSecrets(cfg Config) Config {
	cfg.GroqAPIKey = ""
	cfg.OpenAIAPIKey = ""
	cfg.DeepSeekAPIKey = ""
	cfg.GeminiAPIKey = ""
	cfg.NewsAPIKey = ""
	cfg.LongportAppKey = ""
	cfg.LongportAppSecret = ""
	cfg.LongportAccessToken = ""
	return cfg
}

// Save writes cfg to path atomically, without credentials. Keys are supplied
// through the environment or .env.
func Save(path string, cfg Config) error {
	cfg = redactSecrets(cfg)

	var data []byte
	var err error
	if isTOML(path) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(&cfg, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "cfg-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp config: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
