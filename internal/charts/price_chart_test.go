package charts

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/FinSage/models"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func series(n int) []models.PricePoint {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.PricePoint, n)
	for i := range points {
		points[i] = models.PricePoint{
			Date:  start.AddDate(0, 0, i),
			Close: decimal.NewFromFloat(150 + float64(i)*1.25),
		}
	}
	return points
}

func TestRenderPriceChart(t *testing.T) {
	png, err := RenderPriceChart("aapl", series(22))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestRenderPriceChartNeedsTwoPoints(t *testing.T) {
	_, err := RenderPriceChart("AAPL", series(1))
	assert.ErrorIs(t, err, ErrNotEnoughData)

	_, err = RenderPriceChart("AAPL", nil)
	assert.ErrorIs(t, err, ErrNotEnoughData)
}

func TestSaveChart(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	path, err := SaveChart(dir, "msft", pngMagic, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "MSFT_20240610.png"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pngMagic, data)
}
