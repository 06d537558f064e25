package cli

import (
	"context"
	"errors"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dyike/FinSage/consts"
	"github.com/dyike/FinSage/internal/charts"
	"github.com/dyike/FinSage/internal/chat"
	"github.com/dyike/FinSage/internal/news"
	"github.com/dyike/FinSage/internal/portfolio"
	"github.com/dyike/FinSage/internal/server"
	"github.com/dyike/FinSage/internal/service"
	"github.com/dyike/FinSage/models"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{})
}

func newRootCmd(a *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "finsage",
		Short: "FinSage - AI finance assistant",
		Long: `FinSage values stock portfolios at live prices, summarizes the sentiment of
recent headlines and answers finance questions or ticker lookups in a chat.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.out = cmd.OutOrStdout()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.start(cmd.Context(), false); err != nil {
				return err
			}
			return a.runInteractive(cmd.Context())
		},
	}

	rootCmd.AddCommand(newPortfolioCmd(a))
	rootCmd.AddCommand(newNewsCmd(a))
	rootCmd.AddCommand(newQuoteCmd(a))
	rootCmd.AddCommand(newChatCmd(a))
	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd(a))

	// Global flags
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug mode")
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Configuration file path (.json or .toml)")

	return rootCmd
}

func newPortfolioCmd(a *App) *cobra.Command {
	var noInsight, withCharts bool
	cmd := &cobra.Command{
		Use:   `portfolio "AAPL:10, TSLA:5"`,
		Short: "Value a portfolio at the latest prices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.start(cmd.Context(), false); err != nil {
				return err
			}
			return a.runPortfolio(cmd, args[0], !noInsight, withCharts)
		},
	}
	cmd.Flags().BoolVar(&noInsight, "no-insight", false, "Skip the AI insight")
	cmd.Flags().BoolVar(&withCharts, "charts", false, "Save a 1-month price chart per symbol")
	return cmd
}

func (a *App) runPortfolio(cmd *cobra.Command, text string, insight, withCharts bool) error {
	ctx := cmd.Context()
	assistant := a.assistant()

	result, err := assistant.AnalyzePortfolio(ctx, text)
	var perr *portfolio.ParseError
	if errors.As(err, &perr) {
		a.printError(consts.InvalidPortfolioHelp)
		return nil
	}
	if err != nil {
		return err
	}

	a.printPortfolio(result)

	if withCharts {
		a.saveCharts(cmd, assistant, portfolio.Symbols(text))
	}

	if insight {
		reply, err := assistant.PortfolioInsight(ctx, result)
		if err != nil {
			a.logger.Error().Err(err).Msg("portfolio insight failed")
			a.printError("AI insight unavailable right now.")
			return nil
		}
		a.printSection("🤖 AI Insight", a.markdown(reply))
	}
	return nil
}

func (a *App) saveCharts(cmd *cobra.Command, assistant *service.Assistant, symbols []string) {
	dir := filepath.Join(a.currentEngine().Config.ResultsDir, "charts")
	for _, symbol := range symbols {
		png, err := assistant.PriceChart(cmd.Context(), symbol, models.Period1Month)
		if err != nil {
			a.logger.Debug().Err(err).Str("symbol", symbol).Msg("chart skipped")
			continue
		}
		path, err := charts.SaveChart(dir, symbol, png, time.Now())
		if err != nil {
			a.logger.Warn().Err(err).Msg("chart not saved")
			continue
		}
		a.printf("📈 %s chart saved to %s\n", strings.ToUpper(symbol), path)
	}
}

func newNewsCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "news SYMBOL",
		Short: "Show recent headlines and their sentiment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.start(cmd.Context(), false); err != nil {
				return err
			}
			return a.runNews(cmd, args[0])
		},
	}
}

func (a *App) runNews(cmd *cobra.Command, symbol string) error {
	report, err := a.assistant().News(cmd.Context(), symbol)
	if errors.Is(err, news.ErrNoNews) {
		a.printError(consts.NoNewsReply)
		return nil
	}
	if report != nil {
		a.printHeadlines(report.Headlines)
	}
	if err != nil {
		a.logger.Error().Err(err).Msg("news sentiment failed")
		a.printError("Sentiment summary unavailable right now.")
		return nil
	}
	a.printSection("🤖 News Sentiment", a.markdown(report.Sentiment))
	return nil
}

func newQuoteCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "quote SYMBOL",
		Short: "Show the latest close price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.start(cmd.Context(), false); err != nil {
				return err
			}
			a.printQuote(cmd.Context(), args[0])
			return nil
		},
	}
}

func (a *App) printQuote(ctx context.Context, symbol string) {
	res := a.assistant().Quote(ctx, symbol)
	if !res.OK() {
		a.printError(consts.StockNotFoundReply)
		return
	}
	a.printf("📈 %s price is %s\n", res.Value.Symbol, formatUSD(res.Value.Price))
}

func newChatCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Ask finance questions or look up a ticker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.start(cmd.Context(), false); err != nil {
				return err
			}
			return a.runChat(cmd.Context(), promptChatInput)
		},
	}
}

func newServeCmd(a *App) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := a.start(ctx, true); err != nil {
				return err
			}
			cfg := a.currentEngine().Config
			if addr == "" {
				addr = cfg.HTTPAddr
			}
			srv := server.New(a.assistant, chat.NewSessionStore(cfg.SessionTTL), a.logger)
			return srv.Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to HTTP_ADDR)")
	return cmd
}

func newVersionCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			a.printf("FinSage v%s\n", Version)
			a.printf("AI finance assistant: portfolio valuation, news sentiment, chat\n")
		},
	}
}

func newConfigCmd(a *App) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "Show and validate FinSage configuration settings",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			a.showConfig(cfg)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			return a.validateConfig(cfg)
		},
	})

	return configCmd
}
