package portfolio

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/dyike/FinSage/consts"
	"github.com/dyike/FinSage/internal/logging"
	"github.com/dyike/FinSage/models"
	"github.com/dyike/FinSage/pkg/dataflows"
	"github.com/dyike/FinSage/pkg/llm"
)

// PriceSource resolves the latest price of a symbol.
type PriceSource interface {
	LatestPrice(ctx context.Context, symbol string) dataflows.Result[models.Quote]
}

type Evaluator struct {
	prices      PriceSource
	completer   llm.Completer
	concurrency int
	logger      *logging.Logger
}

type Option func(*Evaluator)

// WithConcurrency prices up to n holdings at once. n <= 1 prices them one
// after another.
func WithConcurrency(n int) Option {
	return func(e *Evaluator) {
		e.concurrency = n
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

func NewEvaluator(prices PriceSource, completer llm.Completer, opts ...Option) *Evaluator {
	e := &Evaluator{
		prices:      prices,
		completer:   completer,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.OrSilent(e.logger).Component("portfolio")
	return e
}

// Analyze parses text and values every holding whose price resolves.
// Holdings without a price are left out of both the lines and the total.
func (e *Evaluator) Analyze(ctx context.Context, text string) (*models.PortfolioResult, error) {
	holdings, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return e.Value(ctx, holdings)
}

func (e *Evaluator) Value(ctx context.Context, holdings []models.Holding) (*models.PortfolioResult, error) {
	quotes, err := e.fetchPrices(ctx, holdings)
	if err != nil {
		return nil, err
	}

	result := &models.PortfolioResult{
		TotalValue: decimal.Zero,
		Lines:      make([]models.PortfolioLine, 0, len(holdings)),
	}
	for i, h := range holdings {
		q := quotes[i]
		if !q.OK() {
			e.logger.Debug().Str("symbol", h.Symbol).Str("status", q.Status.String()).Msg("holding skipped")
			continue
		}
		line := models.NewPortfolioLine(h, q.Value.Price)
		result.Lines = append(result.Lines, line)
		result.TotalValue = result.TotalValue.Add(line.Value)
	}

	e.logger.Info().
		Int("holdings", len(holdings)).
		Int("priced", len(result.Lines)).
		Str("total", result.TotalValue.StringFixed(2)).
		Msg("portfolio valued")
	return result, nil
}

// fetchPrices returns one result per holding, in holding order.
func (e *Evaluator) fetchPrices(ctx context.Context, holdings []models.Holding) ([]dataflows.Result[models.Quote], error) {
	quotes := make([]dataflows.Result[models.Quote], len(holdings))
	if e.concurrency <= 1 {
		for i, h := range holdings {
			quotes[i] = e.prices.LatestPrice(ctx, h.Symbol)
		}
		return quotes, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, h := range holdings {
		g.Go(func() error {
			quotes[i] = e.prices.LatestPrice(gctx, h.Symbol)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return quotes, nil
}

// InsightMessages builds the advisor prompt for a valued portfolio.
func InsightMessages(result *models.PortfolioResult) []models.Message {
	prompt := fmt.Sprintf("Portfolio value is $%s. Holdings: %s. Give a brief investment insight.",
		result.TotalValue.StringFixed(2), strings.Join(result.Breakdown(), "; "))
	return []models.Message{
		models.SystemMessage(consts.AdvisorSystemPrompt),
		models.UserMessage(prompt),
	}
}

// Insight asks the completer for a short comment on result. Completion
// errors are returned unchanged.
func (e *Evaluator) Insight(ctx context.Context, result *models.PortfolioResult) (string, error) {
	if e.completer == nil {
		return "", llm.ErrMissingAPIKey
	}
	return e.completer.Complete(ctx, InsightMessages(result))
}
