package dataflows

import (
	"testing"
	"time"

	"github.com/longportapp/openapi-go/quote"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/FinSage/config"
)

func TestNewLongportClientRequiresCredentials(t *testing.T) {
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	cfg.LongportAppKey = "key"

	_, err := NewLongportClient(cfg)
	assert.ErrorIs(t, err, ErrLongportNotConfigured)
}

func TestCandlestickCount(t *testing.T) {
	end := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 7, candlestickCount(end.AddDate(0, 0, -7), end))
	assert.Equal(t, 1, candlestickCount(end, end))
	assert.Equal(t, maxCandlesticks, candlestickCount(end.AddDate(-5, 0, 0), end))
}

func TestSticksToPoints(t *testing.T) {
	end := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -7)
	precise := decimal.RequireFromString("187.123456789012345678")
	old := decimal.NewFromInt(90)

	sticks := []*quote.Candlestick{
		{Close: &old, Timestamp: start.AddDate(0, 0, -1).Unix()},
		nil,
		{Close: nil, Timestamp: start.AddDate(0, 0, 1).Unix()},
		{Close: &precise, Timestamp: end.Unix()},
	}

	points := sticksToPoints(sticks, start, end)
	require.Len(t, points, 1)
	assert.Equal(t, end, points[0].Date)
	assert.True(t, points[0].Close.Equal(precise), "close keeps full decimal precision")
}
