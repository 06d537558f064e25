package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the latest close for a symbol. It is never cached.
type Quote struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	AsOf   time.Time       `json:"as_of"`
}

// PricePoint is one daily close of a price series.
type PricePoint struct {
	Date  time.Time       `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// Period is a named look-back window such as "1mo".
type Period string

const (
	Period1Day    Period = "1d"
	Period5Days   Period = "5d"
	Period1Month  Period = "1mo"
	Period3Months Period = "3mo"
	Period6Months Period = "6mo"
	Period1Year   Period = "1y"
	Period2Years  Period = "2y"
	Period5Years  Period = "5y"
)

var periodSpans = map[Period]struct{ years, months, days int }{
	Period1Day:    {0, 0, 1},
	Period5Days:   {0, 0, 5},
	Period1Month:  {0, 1, 0},
	Period3Months: {0, 3, 0},
	Period6Months: {0, 6, 0},
	Period1Year:   {1, 0, 0},
	Period2Years:  {2, 0, 0},
	Period5Years:  {5, 0, 0},
}

func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := periodSpans[p]; !ok {
		return "", fmt.Errorf("unknown period %q", s)
	}
	return p, nil
}

// Start returns the beginning of the period ending at end.
func (p Period) Start(end time.Time) time.Time {
	span, ok := periodSpans[p]
	if !ok {
		span = periodSpans[Period1Month]
	}
	return end.AddDate(-span.years, -span.months, -span.days)
}
