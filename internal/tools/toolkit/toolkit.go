// Package toolkit assembles the analyst tool catalog from configuration.
package toolkit

import (
	"net/http"
	"time"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/config"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/tools"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/tools/indicators"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/tools/market"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/tools/middleware"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/tools/news"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/tools/search"
)

// Build returns the full catalog shared by every analyst, wrapped in metrics and a per-call timeout.
func Build(cfg config.ToolsConfig, toolTimeout time.Duration) (tools.Catalog, error) {
	httpClient := &http.Client{Timeout: 60 * time.Second}

	yahoo := market.NewYahooClient(cfg.MarketDataURL, httpClient)
	finnhub := news.NewFinnhubClient(cfg.FinnhubKey, cfg.FinnhubBaseURL, httpClient)
	tavily := search.NewTavilyClient(cfg.TavilyKey, cfg.TavilyBaseURL, cfg.SearchResults, httpClient)

	catalog, err := tools.NewCatalog(
		market.NewHistoryTool(yahoo),
		indicators.NewTechnicalIndicatorsTool(yahoo),
		news.NewFinnhubNewsTool(finnhub, cfg.NewsLimit),
		search.NewSocialSentimentTool(tavily),
		search.NewFundamentalAnalysisTool(tavily),
		search.NewMacroNewsTool(tavily),
	)
	if err != nil {
		return tools.Catalog{}, err
	}

	return catalog.With(middleware.Metrics(), middleware.Timeout(toolTimeout)), nil
}
