package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/tools"
)

func TestSearchTools_BuildQueries(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 3, req.MaxResults)
		queries = append(queries, req.Query)
		_, _ = w.Write([]byte(`{"results": [
			{"url": "https://a", "content": "one"},
			{"url": "https://b", "content": "two"},
			{"url": "https://c", "content": "three"},
			{"url": "https://d", "content": "four"}
		]}`))
	}))
	defer srv.Close()

	client := NewTavilyClient("key", srv.URL, 3, srv.Client())
	ctx := context.Background()

	out, err := NewSocialSentimentTool(client).Execute(ctx, tools.Args{"ticker": "ACME", "trade_date": "2024-01-10"})
	require.NoError(t, err)
	assert.Equal(t, "URL: https://a\nContent: one\n\nURL: https://b\nContent: two\n\nURL: https://c\nContent: three", out)

	_, _ = NewFundamentalAnalysisTool(client).Execute(ctx, tools.Args{"ticker": "ACME", "trade_date": "2024-01-10"})
	_, _ = NewMacroNewsTool(client).Execute(ctx, tools.Args{"trade_date": "2024-01-10"})

	require.Len(t, queries, 3)
	assert.Equal(t, "social media sentiment and discussions for ACME stock around 2024-01-10", queries[0])
	assert.Equal(t, "fundamental analysis and key financial metrics for ACME stock published around 2024-01-10", queries[1])
	assert.Equal(t, "macroeconomic news and market trends affecting the stock market on 2024-01-10", queries[2])
}

func TestSearchTools_MissingKey(t *testing.T) {
	out, err := NewMacroNewsTool(NewTavilyClient("", "", 0, nil)).Execute(context.Background(), tools.Args{"trade_date": "2024-01-10"})
	require.NoError(t, err)
	assert.Contains(t, out, "Error performing web search")
}
