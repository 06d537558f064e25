package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dyike/FinSage/config"
	"github.com/dyike/FinSage/models"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B")).
			Bold(true)

	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8B5CF6")).
			Bold(true)
)

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) style(s lipgloss.Style, text string) string {
	if a.plain {
		return text
	}
	return s.Render(text)
}

func (a *App) printError(msg string) {
	a.printf("%s\n", a.style(errorStyle, "❌ "+msg))
}

func (a *App) printSection(title, body string) {
	a.printf("\n%s\n%s\n", a.style(headerStyle, title), strings.TrimRight(body, "\n"))
}

func (a *App) printPortfolio(result *models.PortfolioResult) {
	a.printf("%s\n", a.style(titleStyle, "💼 Portfolio"))
	a.printf("Total Portfolio Value: %s\n", a.style(valueStyle, formatUSD(result.TotalValue)))
	for _, line := range result.Breakdown() {
		a.printf("  %s\n", line)
	}
}

func (a *App) printHeadlines(headlines []models.Headline) {
	a.printf("%s\n", a.style(titleStyle, "📰 Latest News"))
	for _, h := range headlines {
		a.printf("  - %s\n", h.Title)
	}
}

func (a *App) printTranscript(transcript []models.Message) {
	for _, msg := range transcript {
		switch msg.Role {
		case models.RoleUser:
			a.printf("%s %s\n", a.style(userStyle, "🧑‍💼 You:"), msg.Content)
		case models.RoleAssistant:
			a.printf("%s %s\n", a.style(assistantStyle, "🤖 AI:"), msg.Content)
		}
	}
}

func mask(secret string) string {
	if secret == "" {
		return "not set"
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}

func (a *App) showConfig(cfg *config.Config) {
	a.printf("%s\n", a.style(titleStyle, "🔧 FinSage Configuration"))
	a.printf("Results Directory: %s\n", cfg.ResultsDir)
	a.printf("LLM Provider: %s\n", cfg.LLMProvider)
	a.printf("Chat Model: %s\n", cfg.ChatModel)
	a.printf("Completion API Key: %s\n", mask(cfg.CompletionAPIKey()))
	a.printf("News API Key: %s\n", mask(cfg.NewsAPIKey))
	a.printf("Market Provider: %s\n", cfg.MarketProvider)
	a.printf("Headline Limit: %d\n", cfg.HeadlineLimit)
	a.printf("Chat Context Window: %d\n", cfg.ChatContextWindow)
	a.printf("HTTP Address: %s\n", cfg.HTTPAddr)
	a.printf("Debug Mode: %v\n", cfg.Debug)
}

func (a *App) validateConfig(cfg *config.Config) error {
	a.printf("🔍 Validating configuration...\n")
	if err := cfg.Validate(); err != nil {
		a.printError(fmt.Sprintf("Configuration invalid: %v", err))
		return err
	}
	for _, w := range cfg.Warnings() {
		a.printf("%s\n", a.style(mutedStyle, "⚠️  "+w))
	}
	a.printf("%s\n", a.style(valueStyle, "✅ Configuration is valid"))
	return nil
}
