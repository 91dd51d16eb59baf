package toolkit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/config"
)

func TestBuild(t *testing.T) {
	catalog, err := Build(config.ToolsConfig{NewsLimit: 5, SearchResults: 3}, time.Second)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"get_yfinance_data",
		"get_technical_indicators",
		"get_finnhub_news",
		"get_social_media_sentiment",
		"get_fundamental_analysis",
		"get_macroeconomic_news",
	}, catalog.Names())
	assert.Len(t, catalog.Definitions(), 6)
}
