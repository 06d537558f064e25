package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Holding is one parsed "SYMBOL:QTY" entry.
type Holding struct {
	Symbol   string          `json:"symbol"`
	Quantity decimal.Decimal `json:"quantity"`
}

// PortfolioLine is a priced holding. Value is always Price × Quantity.
type PortfolioLine struct {
	Symbol   string          `json:"symbol"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Value    decimal.Decimal `json:"value"`
}

func NewPortfolioLine(h Holding, price decimal.Decimal) PortfolioLine {
	return PortfolioLine{
		Symbol:   h.Symbol,
		Quantity: h.Quantity,
		Price:    price,
		Value:    price.Mul(h.Quantity),
	}
}

// Describe renders the breakdown entry shown to the user.
func (l PortfolioLine) Describe() string {
	return fmt.Sprintf("%s → Qty: %s, Price: $%s, Value: $%s",
		l.Symbol, l.Quantity.String(), l.Price.StringFixed(2), l.Value.StringFixed(2))
}

type PortfolioResult struct {
	TotalValue decimal.Decimal `json:"total_value"`
	Lines      []PortfolioLine `json:"lines"`
}

// Breakdown returns the described lines in order.
func (r *PortfolioResult) Breakdown() []string {
	out := make([]string, 0, len(r.Lines))
	for _, l := range r.Lines {
		out = append(out, l.Describe())
	}
	return out
}
