package dataflows

import (
	"context"
	"errors"
	"testing"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIter struct {
	bars []*finance.ChartBar
	pos  int
	err  error
}

func (f *fakeIter) Next() bool {
	if f.pos >= len(f.bars) {
		return false
	}
	f.pos++
	return true
}

func (f *fakeIter) Bar() *finance.ChartBar { return f.bars[f.pos-1] }

func (f *fakeIter) Err() error { return f.err }

func TestYahooBars(t *testing.T) {
	day := time.Date(2024, 6, 7, 13, 30, 0, 0, time.UTC)
	var got *chart.Params
	client := &YahooFinanceClient{fetch: func(p *chart.Params) barIterator {
		got = p
		return &fakeIter{bars: []*finance.ChartBar{
			{Close: decimal.NewFromFloat(149.5), Timestamp: int(day.Unix())},
			{Close: decimal.Zero, Timestamp: int(day.Add(24 * time.Hour).Unix())},
			{Close: decimal.NewFromFloat(150), Timestamp: int(day.Add(72 * time.Hour).Unix())},
		}}
	}}

	points, err := client.Bars(context.Background(), "AAPL", day.AddDate(0, 0, -7), day)
	require.NoError(t, err)
	require.Len(t, points, 2, "empty bars are dropped")
	assert.Equal(t, day, points[0].Date)
	assert.True(t, points[1].Close.Equal(decimal.NewFromInt(150)))

	require.NotNil(t, got)
	assert.Equal(t, "AAPL", got.Symbol)
	assert.Equal(t, datetime.OneDay, got.Interval)
}

func TestYahooBarsError(t *testing.T) {
	client := &YahooFinanceClient{fetch: func(*chart.Params) barIterator {
		return &fakeIter{err: errors.New("remote 500")}
	}}

	_, err := client.Bars(context.Background(), "AAPL", time.Now().AddDate(0, 0, -1), time.Now())
	assert.ErrorContains(t, err, "AAPL")
}
