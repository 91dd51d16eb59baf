package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/tools"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
)

const defaultFinnhubURL = "https://finnhub.io/api/v1"

// Article is one company news item.
type Article struct {
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	Source   string `json:"source"`
	URL      string `json:"url"`
	Datetime int64  `json:"datetime"`
}

// FinnhubClient fetches company news from the Finnhub REST API.
type FinnhubClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewFinnhubClient(apiKey, baseURL string, httpClient *http.Client) *FinnhubClient {
	if baseURL == "" {
		baseURL = defaultFinnhubURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &FinnhubClient{apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// CompanyNews returns news for ticker published between from and to (YYYY-MM-DD).
func (c *FinnhubClient) CompanyNews(ctx context.Context, ticker, from, to string) ([]Article, error) {
	if c.apiKey == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "FINNHUB_API_KEY not configured")
	}

	q := url.Values{}
	q.Set("symbol", ticker)
	q.Set("from", from)
	q.Set("to", to)
	q.Set("token", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/company-news?"+q.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "create finnhub request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrExternal, "finnhub request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(errors.ErrExternal, "finnhub returned status %d", resp.StatusCode)
	}

	var articles []Article
	if err := json.NewDecoder(resp.Body).Decode(&articles); err != nil {
		return nil, errors.Wrapf(errors.ErrExternal, "decode finnhub response: %v", err)
	}
	return articles, nil
}

// NewFinnhubNewsTool exposes CompanyNews as get_finnhub_news, keeping the first limit items.
func NewFinnhubNewsTool(client *FinnhubClient, limit int) tools.Tool {
	if limit <= 0 {
		limit = 5
	}
	return tools.New(
		"get_finnhub_news",
		"Get company news from Finnhub within a date range.",
		[]tools.Param{
			{Name: "ticker", Description: "ticker symbol of the company", Required: true},
			{Name: "start_date", Description: "start date in yyyy-mm-dd format", Required: true},
			{Name: "end_date", Description: "end date in yyyy-mm-dd format", Required: true},
		},
		func(ctx context.Context, args tools.Args) (string, error) {
			articles, err := client.CompanyNews(ctx, args["ticker"], args["start_date"], args["end_date"])
			if err != nil {
				return fmt.Sprintf("Error fetching Finnhub news: %v", err), nil
			}
			return FormatArticles(articles, limit), nil
		},
	)
}

// FormatArticles renders up to limit articles as "Headline/Summary" blocks separated by blank lines.
func FormatArticles(articles []Article, limit int) string {
	if len(articles) > limit {
		articles = articles[:limit]
	}
	items := make([]string, 0, len(articles))
	for _, a := range articles {
		items = append(items, fmt.Sprintf("Headline: %s\nSummary: %s", a.Headline, a.Summary))
	}
	if len(items) == 0 {
		return "No Finnhub news found."
	}
	return strings.Join(items, "\n\n")
}
