package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGroq     = "groq"
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
	ProviderGemini   = "gemini"

	MarketYahoo    = "yahoo"
	MarketLongport = "longport"
)

type Config struct {
	ProjectDir string `json:"project_dir" toml:"project_dir"`
	ResultsDir string `json:"results_dir" toml:"results_dir"`

	LLMProvider string `json:"llm_provider" toml:"llm_provider"`
	ChatModel   string `json:"chat_model" toml:"chat_model"`
	BackendURL  string `json:"backend_url" toml:"backend_url"`

	// AI Model API Keys
	GroqAPIKey     string `json:"groq_api_key" toml:"groq_api_key"`
	OpenAIAPIKey   string `json:"openai_api_key" toml:"openai_api_key"`
	DeepSeekAPIKey string `json:"deepseek_api_key" toml:"deepseek_api_key"`
	GeminiAPIKey   string `json:"gemini_api_key" toml:"gemini_api_key"`

	// News API
	NewsAPIKey    string `json:"news_api_key" toml:"news_api_key"`
	NewsBaseURL   string `json:"news_base_url" toml:"news_base_url"`
	HeadlineLimit int    `json:"headline_limit" toml:"headline_limit"`

	MarketProvider string `json:"market_provider" toml:"market_provider"`

	// Longport API Configuration
	LongportAppKey      string `json:"longport_app_key" toml:"longport_app_key"`
	LongportAppSecret   string `json:"longport_app_secret" toml:"longport_app_secret"`
	LongportAccessToken string `json:"longport_access_token" toml:"longport_access_token"`

	// ChatContextWindow bounds the messages resent to the model; 0 resends the whole history.
	ChatContextWindow int           `json:"chat_context_window" toml:"chat_context_window"`
	PriceConcurrency  int           `json:"price_concurrency" toml:"price_concurrency"`
	RequestTimeout    time.Duration `json:"request_timeout" toml:"request_timeout"`

	HTTPAddr   string        `json:"http_addr" toml:"http_addr"`
	SessionTTL time.Duration `json:"session_ttl" toml:"session_ttl"`

	LogLevel string `json:"log_level" toml:"log_level"`
	Debug    bool   `json:"debug" toml:"debug"`

	// Eino Debug configuration
	EinoDebugEnabled bool `json:"eino_debug_enabled" toml:"eino_debug_enabled"`
	EinoDebugPort    int  `json:"eino_debug_port" toml:"eino_debug_port"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	cfg := DefaultConfigWithRoot(currentDir)

	cfg.applyEnv()

	return cfg
}

// DefaultConfigWithRoot returns the built-in defaults rooted at dir, without
// consulting the environment.
func DefaultConfigWithRoot(dir string) *Config {
	return &Config{
		ProjectDir: dir,
		ResultsDir: filepath.Join(dir, "results"),

		LLMProvider: ProviderGroq,
		ChatModel:   "llama-3.1-8b-instant",
		BackendURL:  "https://api.groq.com/openai/v1",

		NewsBaseURL:   "https://newsapi.org",
		HeadlineLimit: 5,

		MarketProvider: MarketYahoo,

		ChatContextWindow: 0,
		PriceConcurrency:  1,
		RequestTimeout:    30 * time.Second,

		HTTPAddr:   ":8080",
		SessionTTL: 2 * time.Hour,

		LogLevel: "info",
		Debug:    false,

		EinoDebugEnabled: false,
		EinoDebugPort:    52538,
	}
}

// applyEnv loads .env (existing variables win) and overlays the environment.
func (c *Config) applyEnv() {
	_ = godotenv.Load()
	c.loadFromEnv()
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("PROJECT_DIR"); val != "" {
		c.ProjectDir = val
	}
	if val := os.Getenv("RESULTS_DIR"); val != "" {
		c.ResultsDir = val
	}

	if val := os.Getenv("LLM_PROVIDER"); val != "" {
		c.LLMProvider = strings.ToLower(val)
	}
	if val := os.Getenv("CHAT_MODEL"); val != "" {
		c.ChatModel = val
	}
	if val := os.Getenv("BACKEND_URL"); val != "" {
		c.BackendURL = val
	}

	if val := os.Getenv("GROQ_API_KEY"); val != "" {
		c.GroqAPIKey = val
	}
	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		c.OpenAIAPIKey = val
	}
	if val := os.Getenv("DEEPSEEK_API_KEY"); val != "" {
		c.DeepSeekAPIKey = val
	}
	if val := os.Getenv("GEMINI_API_KEY"); val != "" {
		c.GeminiAPIKey = val
	}

	if val := os.Getenv("NEWS_API_KEY"); val != "" {
		c.NewsAPIKey = val
	}
	if val := os.Getenv("NEWS_BASE_URL"); val != "" {
		c.NewsBaseURL = val
	}
	if val := os.Getenv("HEADLINE_LIMIT"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.HeadlineLimit = v
		}
	}

	if val := os.Getenv("MARKET_PROVIDER"); val != "" {
		c.MarketProvider = strings.ToLower(val)
	}
	if val := os.Getenv("LONGPORT_APP_KEY"); val != "" {
		c.LongportAppKey = val
	}
	if val := os.Getenv("LONGPORT_APP_SECRET"); val != "" {
		c.LongportAppSecret = val
	}
	if val := os.Getenv("LONGPORT_ACCESS_TOKEN"); val != "" {
		c.LongportAccessToken = val
	}

	if val := os.Getenv("CHAT_CONTEXT_WINDOW"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.ChatContextWindow = v
		}
	}
	if val := os.Getenv("PRICE_CONCURRENCY"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.PriceConcurrency = v
		}
	}
	if val := os.Getenv("REQUEST_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.RequestTimeout = d
		}
	}

	if val := os.Getenv("HTTP_ADDR"); val != "" {
		c.HTTPAddr = val
	}
	if val := os.Getenv("SESSION_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.SessionTTL = d
		}
	}

	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.LogLevel = strings.ToLower(val)
	}
	if val := os.Getenv("FINSAGE_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}

	if val := os.Getenv("EINO_DEBUG_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.EinoDebugEnabled = enabled
		}
	}
	if val := os.Getenv("EINO_DEBUG_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.EinoDebugPort = port
		}
	}
}

// CompletionAPIKey returns the key of the configured completion provider.
func (c *Config) CompletionAPIKey() string {
	switch c.LLMProvider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderDeepSeek:
		return c.DeepSeekAPIKey
	case ProviderGemini:
		return c.GeminiAPIKey
	default:
		return c.GroqAPIKey
	}
}

func (c *Config) HasLongportCredentials() bool {
	return c.LongportAppKey != "" && c.LongportAppSecret != "" && c.LongportAccessToken != ""
}

// Validate checks values that would make a component unusable. Missing API
// keys are not errors: the affected feature reports itself unavailable.
func (c *Config) Validate() error {
	var errs []error

	switch c.LLMProvider {
	case ProviderGroq, ProviderOpenAI, ProviderDeepSeek, ProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider %q", c.LLMProvider))
	}
	switch c.MarketProvider {
	case MarketYahoo, MarketLongport:
	default:
		errs = append(errs, fmt.Errorf("unknown market provider %q", c.MarketProvider))
	}
	if strings.TrimSpace(c.ChatModel) == "" && c.LLMProvider != ProviderGemini {
		errs = append(errs, errors.New("chat model is required"))
	}
	if c.HeadlineLimit < 1 {
		errs = append(errs, fmt.Errorf("headline limit must be positive, got %d", c.HeadlineLimit))
	}
	if c.ChatContextWindow < 0 {
		errs = append(errs, fmt.Errorf("chat context window must not be negative, got %d", c.ChatContextWindow))
	}
	if c.PriceConcurrency < 0 {
		errs = append(errs, fmt.Errorf("price concurrency must not be negative, got %d", c.PriceConcurrency))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("request timeout must not be negative, got %s", c.RequestTimeout))
	}

	return errors.Join(errs...)
}

// Warnings lists features that are unavailable because of missing credentials.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.CompletionAPIKey() == "" {
		warnings = append(warnings, fmt.Sprintf("%s API key not configured: chat and insights unavailable", c.LLMProvider))
	}
	if c.NewsAPIKey == "" {
		warnings = append(warnings, "News API key not configured: news returns no headlines")
	}
	if c.MarketProvider == MarketLongport && !c.HasLongportCredentials() {
		warnings = append(warnings, "Longport credentials not configured: falling back to Yahoo Finance")
	}
	return warnings
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ProjectDir, c.ResultsDir, filepath.Join(c.ResultsDir, "charts")}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}
