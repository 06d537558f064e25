// Package service wires the market, news and completion clients into the
// portfolio, news and chat flows shared by the CLI and the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dyike/FinSage/config"
	"github.com/dyike/FinSage/internal/charts"
	"github.com/dyike/FinSage/internal/chat"
	"github.com/dyike/FinSage/internal/logging"
	"github.com/dyike/FinSage/internal/news"
	"github.com/dyike/FinSage/internal/portfolio"
	"github.com/dyike/FinSage/models"
	"github.com/dyike/FinSage/pkg/dataflows"
	"github.com/dyike/FinSage/pkg/llm"
)

// ErrNoPriceData means a chart was requested for a symbol without history.
var ErrNoPriceData = errors.New("no price data")

type Assistant struct {
	market    *dataflows.MarketData
	completer llm.Completer
	portfolio *portfolio.Evaluator
	news      *news.Analyzer
	router    *chat.Router
	logger    *logging.Logger
}

// Parts are the collaborators of an Assistant. Zero values fall back to the
// defaults of NewAssistant where that is possible.
type Parts struct {
	Prices           dataflows.PriceProvider
	Headlines        news.HeadlineSource
	Completer        llm.Completer
	PriceConcurrency int
	ContextWindow    int
	Logger           *logging.Logger
}

// NewAssistant builds every client from cfg. Missing credentials degrade the
// affected feature only.
func NewAssistant(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*Assistant, error) {
	logger = logging.OrSilent(logger)

	prices, err := dataflows.NewPriceProvider(cfg)
	if errors.Is(err, dataflows.ErrLongportNotConfigured) {
		logger.Warn().Msg("longport credentials not configured, using Yahoo Finance")
		prices, err = dataflows.NewYahooFinanceClient(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("create price provider: %w", err)
	}

	completer, err := llm.NewCompleter(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create completer: %w", err)
	}

	return NewAssistantFromParts(Parts{
		Prices:           prices,
		Headlines:        dataflows.NewNewsAPIClient(cfg, logger),
		Completer:        completer,
		PriceConcurrency: cfg.PriceConcurrency,
		ContextWindow:    cfg.ChatContextWindow,
		Logger:           logger,
	}), nil
}

func NewAssistantFromParts(p Parts) *Assistant {
	logger := logging.OrSilent(p.Logger)
	market := dataflows.NewMarketData(p.Prices, logger)

	return &Assistant{
		market:    market,
		completer: p.Completer,
		portfolio: portfolio.NewEvaluator(market, p.Completer,
			portfolio.WithConcurrency(p.PriceConcurrency),
			portfolio.WithLogger(logger)),
		news: news.NewAnalyzer(p.Headlines, p.Completer, logger),
		router: chat.NewRouter(market, p.Completer,
			chat.WithContextBuilder(chat.NewContextBuilder(p.ContextWindow)),
			chat.WithLogger(logger)),
		logger: logger.Component("assistant"),
	}
}

func (a *Assistant) AnalyzePortfolio(ctx context.Context, text string) (*models.PortfolioResult, error) {
	return a.portfolio.Analyze(ctx, text)
}

func (a *Assistant) PortfolioInsight(ctx context.Context, result *models.PortfolioResult) (string, error) {
	return a.portfolio.Insight(ctx, result)
}

func (a *Assistant) Quote(ctx context.Context, symbol string) dataflows.Result[models.Quote] {
	return a.market.LatestPrice(ctx, symbol)
}

func (a *Assistant) History(ctx context.Context, symbol string, period models.Period) dataflows.Result[[]models.PricePoint] {
	return a.market.History(ctx, symbol, period)
}

// PriceChart renders the close-price history of symbol over period as PNG.
func (a *Assistant) PriceChart(ctx context.Context, symbol string, period models.Period) ([]byte, error) {
	res := a.market.History(ctx, symbol, period)
	if !res.OK() {
		return nil, ErrNoPriceData
	}
	png, err := charts.RenderPriceChart(symbol, res.Value)
	if errors.Is(err, charts.ErrNotEnoughData) {
		return nil, ErrNoPriceData
	}
	return png, err
}

func (a *Assistant) News(ctx context.Context, symbol string) (*news.Report, error) {
	return a.news.Analyze(ctx, symbol)
}

func (a *Assistant) Chat(ctx context.Context, session *chat.Session, q string) (chat.Turn, error) {
	return a.router.Submit(ctx, session, q)
}
