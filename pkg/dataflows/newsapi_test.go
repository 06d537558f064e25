package dataflows

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/FinSage/config"
)

func newsServer(t *testing.T, status int, body string, seen *url.Values) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen = r.URL.Query()
		}
		assert.Equal(t, "/v2/everything", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newsConfig(t *testing.T, baseURL string) *config.Config {
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	cfg.NewsBaseURL = baseURL
	cfg.NewsAPIKey = "test-key"
	return cfg
}

func TestHeadlinesQueryAndTopFive(t *testing.T) {
	body := `{"status":"ok","totalResults":7,"articles":[
		{"title":"Apple beats  estimates","source":{"name":"Reuters"},"url":"https://r/1","publishedAt":"2024-06-10T12:00:00Z"},
		{"title":"[Removed]"},
		{"title":"Apple &amp; Google <b>deal</b>"},
		{"title":"Three"},
		{"title":"Four"},
		{"title":"Five"},
		{"title":"Six"}
	]}`
	var seen url.Values
	srv := newsServer(t, http.StatusOK, body, &seen)

	res := NewNewsAPIClient(newsConfig(t, srv.URL), nil).Headlines(context.Background(), "aapl")
	require.True(t, res.OK())

	assert.Equal(t, "AAPL", seen.Get("q"))
	assert.Equal(t, "en", seen.Get("language"))
	assert.Equal(t, "publishedAt", seen.Get("sortBy"))
	assert.Equal(t, "test-key", seen.Get("apiKey"))

	require.Len(t, res.Value, 4, "the removed article is dropped from the top five, not backfilled")
	assert.Equal(t, "Apple beats estimates", res.Value[0].Title)
	assert.Equal(t, "Reuters", res.Value[0].Source)
	assert.Equal(t, 2024, res.Value[0].PublishedAt.Year())
	assert.Equal(t, "Apple & Google deal", res.Value[1].Title)
	assert.Equal(t, "Four", res.Value[3].Title)
	for _, h := range res.Value {
		assert.NotEqual(t, "Five", h.Title)
	}
}

func TestHeadlinesAllRemoved(t *testing.T) {
	body := `{"status":"ok","articles":[
		{"title":"[Removed]"},{"title":""},{"title":"[Removed]"},{"title":"[Removed]"},{"title":"[Removed]"},
		{"title":"Sixth is past the limit"}
	]}`
	srv := newsServer(t, http.StatusOK, body, nil)

	res := NewNewsAPIClient(newsConfig(t, srv.URL), nil).Headlines(context.Background(), "AAPL")
	assert.Equal(t, StatusNotFound, res.Status)
}

func TestHeadlinesNoArticles(t *testing.T) {
	srv := newsServer(t, http.StatusOK, `{"status":"ok","totalResults":0,"articles":[]}`, nil)

	res := NewNewsAPIClient(newsConfig(t, srv.URL), nil).Headlines(context.Background(), "ZZZZ")
	assert.Equal(t, StatusNotFound, res.Status)
	assert.Empty(t, res.Value)
}

func TestHeadlinesFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"api error", http.StatusUnauthorized, `{"status":"error","code":"apiKeyInvalid","message":"bad key"}`},
		{"server error", http.StatusInternalServerError, `oops`},
		{"malformed json", http.StatusOK, `{"articles":[`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newsServer(t, tt.status, tt.body, nil)
			res := NewNewsAPIClient(newsConfig(t, srv.URL), nil).Headlines(context.Background(), "AAPL")
			assert.Equal(t, StatusProviderError, res.Status)
			assert.Error(t, res.Err)
		})
	}
}

func TestHeadlinesMissingKey(t *testing.T) {
	cfg := newsConfig(t, "http://127.0.0.1:1")
	cfg.NewsAPIKey = ""

	res := NewNewsAPIClient(cfg, nil).Headlines(context.Background(), "AAPL")
	assert.Equal(t, StatusProviderError, res.Status)
	assert.ErrorIs(t, res.Err, ErrNewsAPIKeyMissing)
}
