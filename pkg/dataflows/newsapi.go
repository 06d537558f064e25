package dataflows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/dyike/FinSage/config"
	"github.com/dyike/FinSage/internal/logging"
	"github.com/dyike/FinSage/models"
)

const removedTitle = "[Removed]"

var ErrNewsAPIKeyMissing = errors.New("news API key not configured")

// NewsAPIClient searches newsapi.org for recent articles about a symbol.
type NewsAPIClient struct {
	client *resty.Client
	apiKey string
	limit  int
	logger *logging.Logger
}

type newsAPIResponse struct {
	Status       string           `json:"status"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

func NewNewsAPIClient(cfg *config.Config, logger *logging.Logger) *NewsAPIClient {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(cfg.NewsBaseURL, "/"))
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client.SetTimeout(timeout)

	limit := cfg.HeadlineLimit
	if limit <= 0 {
		limit = 5
	}

	return &NewsAPIClient{
		client: client,
		apiKey: cfg.NewsAPIKey,
		limit:  limit,
		logger: logging.OrSilent(logger).Component("news"),
	}
}

// Headlines returns up to the configured number of most recent headlines for
// symbol. Every failure is reported as a ProviderError result.
func (nc *NewsAPIClient) Headlines(ctx context.Context, symbol string) Result[[]models.Headline] {
	headlines, err := nc.fetch(ctx, NormalizeSymbol(symbol))
	if err != nil {
		nc.logger.Warn().Err(err).Str("symbol", symbol).Msg("news lookup failed")
		return Failed[[]models.Headline](err)
	}
	if len(headlines) == 0 {
		return NotFound[[]models.Headline]()
	}
	return Found(headlines)
}

func (nc *NewsAPIClient) fetch(ctx context.Context, symbol string) ([]models.Headline, error) {
	if nc.apiKey == "" {
		return nil, ErrNewsAPIKeyMissing
	}
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	resp, err := nc.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":        symbol,
			"language": "en",
			"sortBy":   "publishedAt",
			"apiKey":   nc.apiKey,
		}).
		Get("/v2/everything")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news for %s: %w", symbol, err)
	}

	var payload newsAPIResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		if resp.StatusCode() != http.StatusOK {
			return nil, fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
		}
		return nil, fmt.Errorf("failed to parse news response: %w", err)
	}
	if resp.StatusCode() != http.StatusOK || payload.Status == "error" {
		return nil, fmt.Errorf("API error %d: %s %s", resp.StatusCode(), payload.Code, payload.Message)
	}

	articles := payload.Articles
	if len(articles) > nc.limit {
		articles = articles[:nc.limit]
	}

	// Only the newest limit articles count; removed ones are dropped, not replaced.
	headlines := make([]models.Headline, 0, len(articles))
	for _, article := range articles {
		title := cleanTitle(article.Title)
		if title == "" || title == removedTitle {
			continue
		}
		h := models.Headline{
			Title:  title,
			Source: article.Source.Name,
			URL:    article.URL,
		}
		if t, err := time.Parse(time.RFC3339, article.PublishedAt); err == nil {
			h.PublishedAt = t
		}
		headlines = append(headlines, h)
	}
	return headlines, nil
}

// cleanTitle strips markup and entities and collapses whitespace.
func cleanTitle(raw string) string {
	text := raw
	if strings.ContainsAny(raw, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw)); err == nil {
			text = doc.Text()
		}
	}
	return strings.Join(strings.Fields(text), " ")
}
