// Package news summarizes the sentiment of recent headlines for a symbol.
package news

import (
	"context"
	"errors"
	"strings"

	"github.com/dyike/FinSage/consts"
	"github.com/dyike/FinSage/internal/logging"
	"github.com/dyike/FinSage/models"
	"github.com/dyike/FinSage/pkg/dataflows"
	"github.com/dyike/FinSage/pkg/llm"
)

// ErrNoNews means no headlines were available, whatever the reason.
var ErrNoNews = errors.New("no news found")

// HeadlineSource returns the most recent headlines for a symbol.
type HeadlineSource interface {
	Headlines(ctx context.Context, symbol string) dataflows.Result[[]models.Headline]
}

type Report struct {
	Symbol    string            `json:"symbol"`
	Headlines []models.Headline `json:"headlines"`
	Sentiment string            `json:"sentiment"`
}

type Analyzer struct {
	source    HeadlineSource
	completer llm.Completer
	logger    *logging.Logger
}

func NewAnalyzer(source HeadlineSource, completer llm.Completer, logger *logging.Logger) *Analyzer {
	return &Analyzer{
		source:    source,
		completer: completer,
		logger:    logging.OrSilent(logger).Component("news"),
	}
}

func (a *Analyzer) Headlines(ctx context.Context, symbol string) dataflows.Result[[]models.Headline] {
	return a.source.Headlines(ctx, symbol)
}

// SentimentMessages builds the analyst prompt for a list of headline titles.
func SentimentMessages(titles []string) []models.Message {
	return []models.Message{
		models.SystemMessage(consts.NewsAnalystSystemPrompt),
		models.UserMessage("Summarize the sentiment of these news headlines: " + strings.Join(titles, "; ")),
	}
}

// Analyze fetches headlines and asks the completer for a sentiment summary.
// It returns ErrNoNews without calling the completer when there are none.
func (a *Analyzer) Analyze(ctx context.Context, symbol string) (*Report, error) {
	symbol = dataflows.NormalizeSymbol(symbol)
	res := a.source.Headlines(ctx, symbol)
	if !res.OK() || len(res.Value) == 0 {
		a.logger.Debug().Str("symbol", symbol).Str("status", res.Status.String()).Msg("no headlines")
		return nil, ErrNoNews
	}

	report := &Report{Symbol: symbol, Headlines: res.Value}
	if a.completer == nil {
		return report, llm.ErrMissingAPIKey
	}
	sentiment, err := a.completer.Complete(ctx, SentimentMessages(models.Titles(res.Value)))
	if err != nil {
		return report, err
	}
	report.Sentiment = sentiment
	return report, nil
}
