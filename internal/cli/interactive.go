package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dyike/FinSage/internal/chat"
)

// runChat drives a single chat session until the user types exit or quit, or
// input ends. read supplies each line.
func (a *App) runChat(ctx context.Context, read func() (string, error)) error {
	session := chat.NewSession(uuid.NewString())
	a.printf("%s\n", a.style(titleStyle, "🤖 Finance Chat"))
	a.printf("%s\n", a.style(mutedStyle, "Type a ticker (e.g. AAPL) for a price, anything else to ask. Type exit to quit."))

	for {
		q, err := read()
		if errors.Is(err, terminal.InterruptErr) {
			return nil
		}
		if err != nil {
			return err
		}

		switch strings.ToLower(strings.TrimSpace(q)) {
		case "exit", "quit":
			a.printf("👋 Goodbye!\n")
			return nil
		case "":
			continue
		}

		if _, err := a.assistant().Chat(ctx, session, q); err != nil {
			a.logger.Error().Err(err).Str("session", session.ID).Msg("chat turn failed")
		}

		a.printf("\n")
		a.printTranscript(session.Transcript())
	}
}

// runInteractive shows the feature menu until the user exits.
func (a *App) runInteractive(ctx context.Context) error {
	a.printf("%s\n\n", a.style(titleStyle, "💰 FinSage - AI Finance Assistant"))

	for {
		choice, err := promptMenu()
		if errors.Is(err, terminal.InterruptErr) {
			return nil
		}
		if err != nil {
			return err
		}

		cmd := &cobra.Command{}
		cmd.SetContext(ctx)

		switch choice {
		case menuPortfolio:
			text, err := promptPortfolio()
			if err != nil {
				return err
			}
			err = a.runPortfolio(cmd, text, true, false)
			if err != nil {
				a.printError(err.Error())
			}
		case menuNews:
			symbol, err := promptSymbol("Enter a stock symbol for news:")
			if err != nil {
				return err
			}
			if err := a.runNews(cmd, symbol); err != nil {
				a.printError(err.Error())
			}
		case menuQuote:
			symbol, err := promptSymbol("Enter a stock symbol:")
			if err != nil {
				return err
			}
			a.printQuote(ctx, symbol)
		case menuChat:
			if err := a.runChat(ctx, promptChatInput); err != nil {
				return err
			}
		case menuExit:
			a.printf("👋 Goodbye!\n")
			return nil
		}
		a.printf("\n")
	}
}
