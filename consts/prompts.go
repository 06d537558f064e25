package consts

// System prompts sent as the first message of each completion flow.
const (
	ChatSystemPrompt        = "You are a helpful finance assistant."
	AdvisorSystemPrompt     = "You are a financial advisor."
	NewsAnalystSystemPrompt = "You are a financial news analyst."
)

// Fixed replies shown to the user.
const (
	StockNotFoundReply   = "Stock not found."
	NoNewsReply          = "No news found."
	InvalidPortfolioHelp = "Invalid format. Use: STOCK:QTY"
	CompletionFailReply  = "Sorry, I couldn't answer that right now."
)
