package consts

const (
	// MaxTickerQueryLen is the longest chat input still routed to a price lookup.
	MaxTickerQueryLen = 5

	// MaxSymbolLen bounds symbols accepted by market data providers.
	MaxSymbolLen = 12

	// DefaultChartPeriod is the look-back used for per-holding charts.
	DefaultChartPeriod = "1mo"
)
