package dataflows

import (
	"context"
	"fmt"
	"time"

	"github.com/dyike/FinSage/config"
	"github.com/dyike/FinSage/internal/logging"
	"github.com/dyike/FinSage/models"
)

// latestLookbackDays covers weekends and market holidays when resolving the
// most recent close.
const latestLookbackDays = 7

// PriceProvider returns daily closes for a symbol between start and end,
// oldest first. An unknown symbol yields no points and no error.
type PriceProvider interface {
	Bars(ctx context.Context, symbol string, start, end time.Time) ([]models.PricePoint, error)
}

// MarketData is the market-data client used by every flow. It turns provider
// failures into Results so callers never see provider-specific errors.
type MarketData struct {
	provider PriceProvider
	logger   *logging.Logger
	now      func() time.Time
}

func NewMarketData(provider PriceProvider, logger *logging.Logger) *MarketData {
	return &MarketData{
		provider: provider,
		logger:   logging.OrSilent(logger).Component("market"),
		now:      time.Now,
	}
}

// NewPriceProvider picks the provider named by cfg.MarketProvider.
func NewPriceProvider(cfg *config.Config) (PriceProvider, error) {
	switch cfg.MarketProvider {
	case "", config.MarketYahoo:
		return NewYahooFinanceClient(), nil
	case config.MarketLongport:
		return NewLongportClient(cfg)
	default:
		return nil, fmt.Errorf("unknown market provider %q", cfg.MarketProvider)
	}
}

func (m *MarketData) LatestPrice(ctx context.Context, symbol string) Result[models.Quote] {
	symbol = NormalizeSymbol(symbol)
	if err := ValidateSymbol(symbol); err != nil {
		return NotFound[models.Quote]()
	}

	end := m.now()
	start := end.AddDate(0, 0, -latestLookbackDays)
	points, err := m.bars(ctx, symbol, start, end)
	if err != nil {
		m.logger.Warn().Err(err).Str("symbol", symbol).Msg("latest price lookup failed")
		return Failed[models.Quote](err)
	}
	if len(points) == 0 {
		m.logger.Debug().Str("symbol", symbol).Msg("no recent price data")
		return NotFound[models.Quote]()
	}

	last := points[len(points)-1]
	return Found(models.Quote{Symbol: symbol, Price: last.Close, AsOf: last.Date})
}

func (m *MarketData) History(ctx context.Context, symbol string, period models.Period) Result[[]models.PricePoint] {
	symbol = NormalizeSymbol(symbol)
	if err := ValidateSymbol(symbol); err != nil {
		return NotFound[[]models.PricePoint]()
	}

	end := m.now()
	start := period.Start(end)
	points, err := m.bars(ctx, symbol, start, end)
	if err != nil {
		m.logger.Warn().Err(err).
			Str("symbol", symbol).
			Str("range", FormatDateRange(start, end)).
			Msg("price history lookup failed")
		return Failed[[]models.PricePoint](err)
	}
	if len(points) == 0 {
		return NotFound[[]models.PricePoint]()
	}
	return Found(points)
}

// bars calls the provider once and converts a panic inside provider code into
// an error.
func (m *MarketData) bars(ctx context.Context, symbol string, start, end time.Time) (points []models.PricePoint, err error) {
	if m.provider == nil {
		return nil, fmt.Errorf("market data provider not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			points = nil
			err = fmt.Errorf("provider panic for %s: %v", symbol, r)
		}
	}()
	return m.provider.Bars(ctx, symbol, start, end)
}
