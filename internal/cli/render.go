package cli

import (
	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"
)

// formatUSD renders an amount with currency grouping, e.g. $1,234.50.
func formatUSD(d decimal.Decimal) string {
	return money.New(d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), money.USD).Display()
}

// markdown renders model output for the terminal. Plain mode and renderer
// failures return the text unchanged.
func (a *App) markdown(text string) string {
	if a.plain {
		return text
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return out
}
