package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/FinSage/config"
	"github.com/dyike/FinSage/internal/logging"
	"github.com/dyike/FinSage/internal/service"
	"github.com/dyike/FinSage/models"
	"github.com/dyike/FinSage/pkg/app"
	"github.com/dyike/FinSage/pkg/dataflows"
)

type stubProvider map[string][]float64

func (s stubProvider) Bars(_ context.Context, symbol string, _, end time.Time) ([]models.PricePoint, error) {
	closes := s[symbol]
	points := make([]models.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = models.PricePoint{Date: end.AddDate(0, 0, i-len(closes)), Close: decimal.NewFromFloat(c)}
	}
	return points, nil
}

type stubHeadlines map[string][]models.Headline

func (s stubHeadlines) Headlines(_ context.Context, symbol string) dataflows.Result[[]models.Headline] {
	if h := s[symbol]; len(h) > 0 {
		return dataflows.Found(h)
	}
	return dataflows.NotFound[[]models.Headline]()
}

type stubCompleter struct {
	reply string
	err   error
}

func (s stubCompleter) Complete(context.Context, []models.Message) (string, error) {
	return s.reply, s.err
}

func newTestApp(t *testing.T, completer stubCompleter) *App {
	t.Helper()
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	assistant := service.NewAssistantFromParts(service.Parts{
		Prices:    stubProvider{"AAPL": {149, 150}, "TSLA": {200}},
		Headlines: stubHeadlines{"AAPL": {{Title: "Apple rallies"}, {Title: "iPhone sales up"}}},
		Completer: completer,
	})
	return &App{
		cfg:    cfg,
		logger: logging.NewSilentLogger(),
		engine: app.NewEngine(*cfg, assistant),
		plain:  true,
	}
}

func execute(t *testing.T, a *App, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := newRootCmd(a)
	cmd.SetOut(&buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestPortfolioCommand(t *testing.T) {
	a := newTestApp(t, stubCompleter{reply: "Diversify."})

	out, err := execute(t, a, "portfolio", "AAPL:10, TSLA:5")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Portfolio Value: $2,500.00")
	assert.Contains(t, out, "AAPL → Qty: 10, Price: $150.00, Value: $1500.00")
	assert.Contains(t, out, "TSLA → Qty: 5, Price: $200.00, Value: $1000.00")
	assert.Contains(t, out, "AI Insight")
	assert.Contains(t, out, "Diversify.")
}

func TestPortfolioCommandNoInsight(t *testing.T) {
	a := newTestApp(t, stubCompleter{reply: "Diversify."})

	out, err := execute(t, a, "portfolio", "--no-insight", "AAPL:1")
	require.NoError(t, err)
	assert.Contains(t, out, "$150.00")
	assert.NotContains(t, out, "Diversify.")
}

func TestPortfolioCommandInvalid(t *testing.T) {
	a := newTestApp(t, stubCompleter{reply: "x"})

	out, err := execute(t, a, "portfolio", "AAPL-10")
	require.NoError(t, err)
	assert.Contains(t, out, "Invalid format. Use: STOCK:QTY")
	assert.NotContains(t, out, "Total Portfolio Value")
}

func TestPortfolioCommandInsightFailure(t *testing.T) {
	a := newTestApp(t, stubCompleter{err: errors.New("boom")})

	out, err := execute(t, a, "portfolio", "AAPL:2")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Portfolio Value: $300.00")
	assert.Contains(t, out, "AI insight unavailable right now.")
}

func TestPortfolioCommandCharts(t *testing.T) {
	a := newTestApp(t, stubCompleter{reply: "ok"})

	out, err := execute(t, a, "portfolio", "--no-insight", "--charts", "AAPL:1, TSLA:1")
	require.NoError(t, err)
	assert.Contains(t, out, "AAPL chart saved")
	assert.NotContains(t, out, "TSLA chart saved", "a single close is not enough to draw")

	files, err := filepath.Glob(filepath.Join(a.cfg.ResultsDir, "charts", "AAPL_*.png"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestQuoteCommand(t *testing.T) {
	a := newTestApp(t, stubCompleter{})

	out, err := execute(t, a, "quote", "aapl")
	require.NoError(t, err)
	assert.Contains(t, out, "AAPL price is $150.00")

	out, err = execute(t, a, "quote", "MSFT")
	require.NoError(t, err)
	assert.Contains(t, out, "Stock not found.")
}

func TestNewsCommand(t *testing.T) {
	a := newTestApp(t, stubCompleter{reply: "Mostly positive."})

	out, err := execute(t, a, "news", "AAPL")
	require.NoError(t, err)
	assert.Contains(t, out, "- Apple rallies")
	assert.Contains(t, out, "- iPhone sales up")
	assert.Contains(t, out, "Mostly positive.")

	out, err = execute(t, a, "news", "XYZ")
	require.NoError(t, err)
	assert.Contains(t, out, "No news found.")
}

func TestNewsCommandSentimentFailure(t *testing.T) {
	a := newTestApp(t, stubCompleter{err: errors.New("boom")})

	out, err := execute(t, a, "news", "AAPL")
	require.NoError(t, err)
	assert.Contains(t, out, "Apple rallies")
	assert.Contains(t, out, "Sentiment summary unavailable right now.")
}

func scripted(lines ...string) func() (string, error) {
	return func() (string, error) {
		if len(lines) == 0 {
			return "", io.EOF
		}
		next := lines[0]
		lines = lines[1:]
		return next, nil
	}
}

func TestRunChat(t *testing.T) {
	a := newTestApp(t, stubCompleter{reply: "A bond is a loan."})
	var buf bytes.Buffer
	a.out = &buf

	err := a.runChat(context.Background(), scripted("AAPL", "   ", "What is a bond?", "exit"))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "🧑‍💼 You: AAPL")
	assert.Contains(t, out, "🤖 AI: 📈 AAPL price is $150.00")
	assert.Contains(t, out, "🧑‍💼 You: What is a bond?")
	assert.Contains(t, out, "🤖 AI: A bond is a loan.")
	assert.Contains(t, out, "Goodbye!")
}

func TestRunChatInputError(t *testing.T) {
	a := newTestApp(t, stubCompleter{})
	a.out = io.Discard

	err := a.runChat(context.Background(), scripted())
	assert.ErrorIs(t, err, io.EOF)
}

func TestConfigCommands(t *testing.T) {
	a := newTestApp(t, stubCompleter{})
	a.cfg.NewsAPIKey = "abcdef123456"

	out, err := execute(t, a, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "LLM Provider: groq")
	assert.Contains(t, out, "Completion API Key: not set")
	assert.Contains(t, out, "News API Key: ****3456")

	out, err = execute(t, a, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")

	a.cfg.HeadlineLimit = 0
	_, err = execute(t, a, "config", "validate")
	assert.Error(t, err)
}

func TestConfigFileWithEnvCredentials(t *testing.T) {
	var gotKey string
	newsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("apiKey")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok","articles":[{"title":"Apple rallies"}]}`)
	}))
	defer newsSrv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "finsage.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"headline_limit": 2, "news_api_key": ""}`), 0o644))

	t.Setenv("NEWS_API_KEY", "env-news-key")
	t.Setenv("NEWS_BASE_URL", newsSrv.URL)

	a := &App{plain: true, logger: logging.NewSilentLogger()}
	out, err := execute(t, a, "--config", path, "--debug", "news", "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "env-news-key", gotKey)
	assert.Contains(t, out, "- Apple rallies")

	require.NotNil(t, a.runtime)
	engineCfg := a.runtime.Engine().Config
	assert.Equal(t, "env-news-key", engineCfg.NewsAPIKey)
	assert.Equal(t, 2, engineCfg.HeadlineLimit)
	assert.True(t, engineCfg.Debug, "--debug reaches the engine built from the file")
	assert.Equal(t, "debug", engineCfg.LogLevel)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "env-news-key")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, newTestApp(t, stubCompleter{}), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "FinSage v"+Version)
}

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"3500", "$3,500.00"},
		{"1234.5", "$1,234.50"},
		{"500.3125", "$500.31"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatUSD(decimal.RequireFromString(tt.in)), tt.in)
	}
}

func TestMask(t *testing.T) {
	assert.Equal(t, "not set", mask(""))
	assert.Equal(t, "****", mask("abc"))
	assert.Equal(t, "****wxyz", mask("secret-wxyz"))
}
