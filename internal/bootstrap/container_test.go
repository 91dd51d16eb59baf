package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/ai"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/agents"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/domain/memory"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/reflection"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/testsupport"
)

// localEnv pins every optional dependency off so the container builds without network access.
func localEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for k, v := range map[string]string{
		"APP_ENV":                "test",
		"LOG_LEVEL":              "error",
		"POSTGRES_ENABLED":       "false",
		"REDIS_ENABLED":          "false",
		"KAFKA_ENABLED":          "false",
		"ERROR_TRACKING_ENABLED": "false",
		"MEMORY_BACKEND":         "inmemory",
		"EMBEDDING_PROVIDER":     "local",
		"OUTPUT_DIR":             dir,
		"REFLECTION_OUTPUT_DIR":  dir,
		"SCHEDULER_WATCHLIST":    "acme,globex",
	} {
		t.Setenv(k, v)
	}
	return dir
}

func newTestContainer(t *testing.T) (*Container, *testsupport.ScriptedChat, string) {
	t.Helper()
	dir := localEnv(t)

	chat := testsupport.NewScriptedChat()
	c := NewContainer(WithChatProvider(chat))
	require.NoError(t, c.Init())
	t.Cleanup(c.Shutdown)
	return c, chat, dir
}

func TestContainer_InitWiresEveryComponent(t *testing.T) {
	c, _, _ := newTestContainer(t)

	require.NotNil(t, c.Config)
	assert.Equal(t, "scripted", c.Adapters.Chat.Name())
	assert.NotNil(t, c.Adapters.Embeddings)
	assert.Nil(t, c.Adapters.KafkaProducer)
	assert.NotNil(t, c.Adapters.Publisher)
	assert.Nil(t, c.PG)
	assert.Nil(t, c.Redis)

	assert.NotNil(t, c.Business.Memory)
	assert.Equal(t, 6, c.Business.Catalog.Len())
	require.NotNil(t, c.Business.Pipeline)
	assert.NoError(t, c.Business.Pipeline.Graph().Validate())
	assert.Equal(t, c.Config.Debate.RecursionLimit, c.Business.Pipeline.Graph().RecursionLimit())

	assert.NotNil(t, c.Services.Analysis)
	assert.NotNil(t, c.Services.Reflection)
	assert.NotNil(t, c.Services.Signals)
}

func TestContainer_RunThenReflect(t *testing.T) {
	c, chat, dir := newTestContainer(t)
	chat.
		Reply(agents.AgentPortfolioManager.String(), "Approve. FINAL TRANSACTION PROPOSAL: **BUY**").
		Respond(agents.AgentSignalProcessor.String(), func(ai.ChatRequest) string { return "BUY" })

	ctx := context.Background()
	out, err := c.Services.Analysis.Run(ctx, "ACME", "2024-01-10")
	require.NoError(t, err)

	assert.Equal(t, "ACME", out.State.Subject)
	assert.Equal(t, "Approve. FINAL TRANSACTION PROPOSAL: **BUY**", out.State.FinalDecision)
	assert.Equal(t, reflection.SignalBuy, out.Signal)
	assert.Equal(t, filepath.Join(dir, "final_state.json"), out.StatePath)
	assert.FileExists(t, out.StatePath)

	bundle, err := c.Services.Reflection.Process(ctx, out.State, reflection.Outcome{
		Returns:     1250,
		Description: "Stock rose after the decision",
	})
	require.NoError(t, err)
	assert.Equal(t, "CORRECT - Bought and profited", bundle.DecisionCorrectness)
	assert.Equal(t, 5, bundle.LessonsStored)

	_, err = os.Stat(filepath.Join(dir, reflection.FileName("ACME", "2024-01-10")))
	assert.NoError(t, err)

	for _, role := range memory.Roles() {
		store, err := c.Business.Memory.Store(role)
		require.NoError(t, err)
		n, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n, role.StoreName())
	}
}

func TestContainer_BackgroundServesHealthAndMetrics(t *testing.T) {
	c, _, _ := newTestContainer(t)
	c.InitBackground()

	assert.Equal(t, []string{"ACME", "GLOBEX"}, c.Background.Watchlist.Subjects())
	assert.Len(t, c.Background.Scheduler.Workers(), 1)
	assert.Nil(t, c.Background.RequestConsumer)

	for _, path := range []string{"/ready", "/health", "/metrics"} {
		rec := httptest.NewRecorder()
		c.Background.HTTPServer.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestContainer_InvalidConfigFails(t *testing.T) {
	localEnv(t)
	t.Setenv("DEBATE_INVESTMENT_MAX_ROUNDS", "0")

	c := NewContainer(WithChatProvider(testsupport.NewScriptedChat()))
	defer c.Shutdown()
	assert.Error(t, c.Init())
}
