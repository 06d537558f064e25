package dataflows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/FinSage/config"
	"github.com/dyike/FinSage/models"
)

type fakeProvider struct {
	points map[string][]models.PricePoint
	err    error
	panics bool
	calls  []string
	starts []time.Time
}

func (f *fakeProvider) Bars(_ context.Context, symbol string, start, _ time.Time) ([]models.PricePoint, error) {
	f.calls = append(f.calls, symbol)
	f.starts = append(f.starts, start)
	if f.panics {
		panic("boom")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.points[symbol], nil
}

var fixedNow = time.Date(2024, 6, 10, 20, 0, 0, 0, time.UTC)

func newTestMarket(p PriceProvider) *MarketData {
	m := NewMarketData(p, nil)
	m.now = func() time.Time { return fixedNow }
	return m
}

func closes(values ...float64) []models.PricePoint {
	points := make([]models.PricePoint, 0, len(values))
	for i, v := range values {
		points = append(points, models.PricePoint{
			Date:  fixedNow.AddDate(0, 0, i-len(values)),
			Close: decimal.NewFromFloat(v),
		})
	}
	return points
}

func TestLatestPriceUsesLastClose(t *testing.T) {
	provider := &fakeProvider{points: map[string][]models.PricePoint{"AAPL": closes(148, 149.5, 150)}}
	market := newTestMarket(provider)

	res := market.LatestPrice(context.Background(), " aapl ")
	require.True(t, res.OK())
	assert.Equal(t, "AAPL", res.Value.Symbol)
	assert.True(t, res.Value.Price.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, []string{"AAPL"}, provider.calls, "one provider call per lookup")
	assert.Equal(t, fixedNow.AddDate(0, 0, -latestLookbackDays), provider.starts[0])
}

func TestLatestPriceAbsent(t *testing.T) {
	tests := []struct {
		name     string
		provider *fakeProvider
		symbol   string
		want     Status
	}{
		{"unknown symbol", &fakeProvider{}, "ZZZZ", StatusNotFound},
		{"empty symbol", &fakeProvider{}, "  ", StatusNotFound},
		{"provider error", &fakeProvider{err: errors.New("timeout")}, "AAPL", StatusProviderError},
		{"provider panic", &fakeProvider{panics: true}, "AAPL", StatusProviderError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newTestMarket(tt.provider).LatestPrice(context.Background(), tt.symbol)
			assert.False(t, res.OK())
			assert.Equal(t, tt.want, res.Status)
		})
	}
}

func TestLatestPriceCancelledContext(t *testing.T) {
	provider := &fakeProvider{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newTestMarket(provider).LatestPrice(ctx, "AAPL")
	assert.Equal(t, StatusProviderError, res.Status)
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Empty(t, provider.calls)
}

func TestHistoryPeriods(t *testing.T) {
	provider := &fakeProvider{points: map[string][]models.PricePoint{"MSFT": closes(1, 2, 3)}}
	market := newTestMarket(provider)

	res := market.History(context.Background(), "MSFT", models.Period1Month)
	require.True(t, res.OK())
	assert.Len(t, res.Value, 3)
	assert.Equal(t, fixedNow.AddDate(0, -1, 0), provider.starts[0])

	empty := market.History(context.Background(), "NOPE", models.Period1Month)
	assert.Equal(t, StatusNotFound, empty.Status)
	assert.Nil(t, empty.Value)
}

func TestNewPriceProvider(t *testing.T) {
	cfg := config.DefaultConfigWithRoot(t.TempDir())

	p, err := NewPriceProvider(cfg)
	require.NoError(t, err)
	assert.IsType(t, &YahooFinanceClient{}, p)

	cfg.MarketProvider = config.MarketLongport
	_, err = NewPriceProvider(cfg)
	assert.ErrorIs(t, err, ErrLongportNotConfigured)

	cfg.MarketProvider = "bloomberg"
	_, err = NewPriceProvider(cfg)
	assert.Error(t, err)
}

func TestResultStatusString(t *testing.T) {
	assert.Equal(t, "found", Found(1).Status.String())
	assert.Equal(t, "not_found", NotFound[int]().Status.String())
	assert.Equal(t, "provider_error", Failed[int](errors.New("x")).Status.String())
}
