package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/tools"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
)

const defaultTavilyURL = "https://api.tavily.com"

// Result is one web search hit.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// TavilyClient performs live web searches.
type TavilyClient struct {
	apiKey     string
	baseURL    string
	maxResults int
	httpClient *http.Client
}

func NewTavilyClient(apiKey, baseURL string, maxResults int, httpClient *http.Client) *TavilyClient {
	if baseURL == "" {
		baseURL = defaultTavilyURL
	}
	if maxResults <= 0 {
		maxResults = 3
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &TavilyClient{apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/"), maxResults: maxResults, httpClient: httpClient}
}

type searchRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type searchResponse struct {
	Results []Result `json:"results"`
}

// Search runs query and returns at most maxResults hits.
func (c *TavilyClient) Search(ctx context.Context, query string) ([]Result, error) {
	if c.apiKey == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "TAVILY_API_KEY not configured")
	}

	body, err := json.Marshal(searchRequest{APIKey: c.apiKey, Query: query, MaxResults: c.maxResults})
	if err != nil {
		return nil, errors.Wrap(err, "marshal tavily request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create tavily request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrExternal, "tavily request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(errors.ErrExternal, "tavily returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.Wrapf(errors.ErrExternal, "decode tavily response: %v", err)
	}
	if len(parsed.Results) > c.maxResults {
		parsed.Results = parsed.Results[:c.maxResults]
	}
	return parsed.Results, nil
}

// FormatResults renders hits as "URL/Content" blocks separated by blank lines.
func FormatResults(results []Result) string {
	if len(results) == 0 {
		return "No search results found."
	}
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, fmt.Sprintf("URL: %s\nContent: %s", r.URL, r.Content))
	}
	return strings.Join(blocks, "\n\n")
}

func (c *TavilyClient) searchTool(name, description string, params []tools.Param, query func(tools.Args) string) tools.Tool {
	return tools.New(name, description, params, func(ctx context.Context, args tools.Args) (string, error) {
		results, err := c.Search(ctx, query(args))
		if err != nil {
			return fmt.Sprintf("Error performing web search: %v", err), nil
		}
		return FormatResults(results), nil
	})
}

var (
	tickerParam = tools.Param{Name: "ticker", Description: "ticker symbol of the company", Required: true}
	dateParam   = tools.Param{Name: "trade_date", Description: "trade date in yyyy-mm-dd format", Required: true}
)

// NewFundamentalAnalysisTool searches for fundamental analysis around the trade date.
func NewFundamentalAnalysisTool(c *TavilyClient) tools.Tool {
	return c.searchTool(
		"get_fundamental_analysis",
		"Performs a live web search for recent fundamental analysis of a stock.",
		[]tools.Param{tickerParam, dateParam},
		func(args tools.Args) string {
			return fmt.Sprintf("fundamental analysis and key financial metrics for %s stock published around %s",
				args["ticker"], args["trade_date"])
		},
	)
}

// NewSocialSentimentTool searches for social media discussions of the stock.
func NewSocialSentimentTool(c *TavilyClient) tools.Tool {
	return c.searchTool(
		"get_social_media_sentiment",
		"Performs a live web search for social media sentiment regarding a stock.",
		[]tools.Param{tickerParam, dateParam},
		func(args tools.Args) string {
			return fmt.Sprintf("social media sentiment and discussions for %s stock around %s",
				args["ticker"], args["trade_date"])
		},
	)
}

// NewMacroNewsTool searches for macroeconomic news on the trade date.
func NewMacroNewsTool(c *TavilyClient) tools.Tool {
	return c.searchTool(
		"get_macroeconomic_news",
		"Performs a live web search for macroeconomic news relevant to the stock market.",
		[]tools.Param{dateParam},
		func(args tools.Args) string {
			return fmt.Sprintf("macroeconomic news and market trends affecting the stock market on %s", args["trade_date"])
		},
	)
}
