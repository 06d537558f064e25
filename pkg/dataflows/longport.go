package dataflows

import (
	"context"
	"errors"
	"math"
	"time"

	lpconfig "github.com/longportapp/openapi-go/config"
	"github.com/longportapp/openapi-go/quote"

	"github.com/dyike/FinSage/config"
	"github.com/dyike/FinSage/models"
)

// maxCandlesticks is the largest count the Longport candlestick endpoint accepts.
const maxCandlesticks = 1000

var ErrLongportNotConfigured = errors.New("longport API credentials not configured")

type LongportClient struct {
	quoteCtx *quote.QuoteContext
}

func NewLongportClient(cfg *config.Config) (*LongportClient, error) {
	if !cfg.HasLongportCredentials() {
		return nil, ErrLongportNotConfigured
	}

	conf, err := lpconfig.New(lpconfig.WithConfigKey(cfg.LongportAppKey, cfg.LongportAppSecret, cfg.LongportAccessToken))
	if err != nil {
		return nil, err
	}

	quoteContext, err := quote.NewFromCfg(conf)
	if err != nil {
		return nil, err
	}

	return &LongportClient{quoteCtx: quoteContext}, nil
}

func (lpc *LongportClient) GetSticksWithDay(ctx context.Context, symbol string, count int) (sticks []*quote.Candlestick, err error) {
	if lpc.quoteCtx != nil {
		return lpc.quoteCtx.Candlesticks(ctx, symbol, quote.PeriodDay, int32(count), quote.AdjustTypeNo)
	}
	return nil, errors.New("quote context is nil")
}

// Bars fetches enough daily candlesticks to cover [start, end] and keeps the
// ones inside the range.
func (lpc *LongportClient) Bars(ctx context.Context, symbol string, start, end time.Time) ([]models.PricePoint, error) {
	sticks, err := lpc.GetSticksWithDay(ctx, symbol, candlestickCount(start, end))
	if err != nil {
		return nil, err
	}
	return sticksToPoints(sticks, start, end), nil
}

// sticksToPoints keeps the candlesticks inside [start, end] that carry a close.
func sticksToPoints(sticks []*quote.Candlestick, start, end time.Time) []models.PricePoint {
	points := make([]models.PricePoint, 0, len(sticks))
	for _, stick := range sticks {
		if stick == nil || stick.Close == nil {
			continue
		}
		date := time.Unix(stick.Timestamp, 0).UTC()
		if date.Before(start) || date.After(end) {
			continue
		}
		points = append(points, models.PricePoint{
			Date:  date,
			Close: *stick.Close,
		})
	}
	return points
}

// candlestickCount returns the calendar days in the range, which bounds the
// number of trading days from above.
func candlestickCount(start, end time.Time) int {
	days := int(math.Ceil(end.Sub(start).Hours() / 24))
	if days < 1 {
		return 1
	}
	if days > maxCandlesticks {
		return maxCandlesticks
	}
	return days
}
