package cli

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/dyike/FinSage/internal/portfolio"
)

const (
	menuPortfolio = "💼 Analyze a portfolio"
	menuNews      = "📰 News sentiment"
	menuQuote     = "📈 Quote a ticker"
	menuChat      = "🤖 Chat with the assistant"
	menuExit      = "🚪 Exit"
)

// promptMenu asks which feature to run next.
func promptMenu() (string, error) {
	var choice string
	prompt := &survey.Select{
		Message: "What would you like to do?",
		Options: []string{menuPortfolio, menuNews, menuQuote, menuChat, menuExit},
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return "", err
	}
	return choice, nil
}

// promptPortfolio asks for holdings in SYMBOL:QTY form.
func promptPortfolio() (string, error) {
	var text string
	prompt := &survey.Input{
		Message: "Enter your portfolio (e.g., AAPL:10, TSLA:5):",
		Help:    "Comma-separated SYMBOL:QUANTITY pairs",
	}

	err := survey.AskOne(prompt, &text, survey.WithValidator(func(val interface{}) error {
		if _, err := portfolio.Parse(val.(string)); err != nil {
			return fmt.Errorf("invalid format, use STOCK:QTY")
		}
		return nil
	}))
	if err != nil {
		return "", err
	}
	return text, nil
}

// promptSymbol asks for a single ticker symbol.
func promptSymbol(message string) (string, error) {
	var symbol string
	prompt := &survey.Input{
		Message: message,
	}

	err := survey.AskOne(prompt, &symbol, survey.WithValidator(func(val interface{}) error {
		str := strings.TrimSpace(val.(string))
		if str == "" {
			return fmt.Errorf("ticker symbol cannot be empty")
		}
		if len(str) > 12 {
			return fmt.Errorf("ticker symbol too long (max 12 characters)")
		}
		return nil
	}))
	if err != nil {
		return "", err
	}
	return strings.ToUpper(strings.TrimSpace(symbol)), nil
}

// promptChatInput reads one chat line. Empty input is allowed and ignored by
// the router.
func promptChatInput() (string, error) {
	var q string
	prompt := &survey.Input{
		Message: "You:",
		Help:    "Ask a finance question or type a ticker like AAPL. Type exit to leave.",
	}
	if err := survey.AskOne(prompt, &q); err != nil {
		return "", err
	}
	return q, nil
}
