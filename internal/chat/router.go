package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dyike/FinSage/consts"
	"github.com/dyike/FinSage/internal/logging"
	"github.com/dyike/FinSage/models"
	"github.com/dyike/FinSage/pkg/dataflows"
	"github.com/dyike/FinSage/pkg/llm"
)

var ErrEmptyQuery = errors.New("empty query")

type Kind string

const (
	KindTicker   Kind = "ticker"
	KindQuestion Kind = "question"
)

type Turn struct {
	Query string `json:"query"`
	Reply string `json:"reply"`
	Kind  Kind   `json:"kind"`
}

// PriceSource resolves the latest price of a symbol.
type PriceSource interface {
	LatestPrice(ctx context.Context, symbol string) dataflows.Result[models.Quote]
}

// IsTickerQuery reports whether q looks like a ticker: 1 to 5 uppercase
// letters and nothing else.
func IsTickerQuery(q string) bool {
	n := utf8.RuneCountInString(q)
	if n == 0 || n > consts.MaxTickerQueryLen {
		return false
	}
	for _, r := range q {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

type Router struct {
	prices    PriceSource
	completer llm.Completer
	builder   ContextBuilder
	logger    *logging.Logger
}

type RouterOption func(*Router)

func WithContextBuilder(b ContextBuilder) RouterOption {
	return func(r *Router) {
		if b != nil {
			r.builder = b
		}
	}
}

func WithLogger(logger *logging.Logger) RouterOption {
	return func(r *Router) {
		r.logger = logger
	}
}

func NewRouter(prices PriceSource, completer llm.Completer, opts ...RouterOption) *Router {
	r := &Router{
		prices:    prices,
		completer: completer,
		builder:   FullHistory{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrSilent(r.logger).Component("chat")
	return r
}

// Submit runs one turn on session: it appends the user message, answers it
// and appends the reply. A failed completion still records a fixed reply and
// returns the error together with the turn.
func (r *Router) Submit(ctx context.Context, session *Session, q string) (Turn, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return Turn{}, ErrEmptyQuery
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	session.appendLocked(models.UserMessage(q))

	turn := Turn{Query: q, Kind: KindQuestion}
	var err error
	if IsTickerQuery(q) {
		turn.Kind = KindTicker
		turn.Reply = r.quoteReply(ctx, q)
	} else {
		history := append([]models.Message(nil), session.messages...)
		turn.Reply, err = r.completer.Complete(ctx, r.builder.Build(history))
		if err != nil {
			r.logger.Error().Err(err).Str("session", session.ID).Msg("chat completion failed")
			turn.Reply = consts.CompletionFailReply
			err = fmt.Errorf("answer question: %w", err)
		}
	}

	session.appendLocked(models.AssistantMessage(turn.Reply))
	r.logger.Debug().Str("session", session.ID).Str("kind", string(turn.Kind)).Msg("turn recorded")
	return turn, err
}

func (r *Router) quoteReply(ctx context.Context, symbol string) string {
	res := r.prices.LatestPrice(ctx, symbol)
	if !res.OK() {
		return consts.StockNotFoundReply
	}
	return fmt.Sprintf("📈 %s price is $%s", symbol, res.Value.Price.StringFixed(2))
}
