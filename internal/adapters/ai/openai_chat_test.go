package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
)

func TestOpenAIProvider_ChatWithToolCalls(t *testing.T) {
	var captured openAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &captured))

		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"model": "gpt-4o-mini",
			"choices": [{
				"index": 0,
				"finish_reason": "tool_calls",
				"message": {
					"role": "assistant",
					"content": "",
					"tool_calls": [{"id": "call_1", "type": "function",
						"function": {"name": "get_finnhub_news", "arguments": "{\"ticker\":\"ACME\"}"}}]
				}
			}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("test-key", srv.URL, 5*time.Second, nil)
	resp, err := p.Chat(context.Background(), ChatRequest{
		Model:       "gpt-4o-mini",
		Temperature: 0.1,
		Messages:    []Message{SystemMessage("sys"), UserMessage("analyze ACME")},
		Tools: []ToolDefinition{{Type: "function", Function: FunctionDefinition{
			Name:       "get_finnhub_news",
			Parameters: map[string]interface{}{"type": "object"},
		}}},
	})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	require.Len(t, captured.Tools, 1)
	assert.Equal(t, 4096, captured.MaxTokens)

	msg := resp.Message()
	assert.Equal(t, FinishReasonToolCalls, resp.Choices[0].FinishReason)
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "get_finnhub_news", msg.ToolCalls[0].Function.Name)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
}

func TestOpenAIProvider_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "slow down", "type": "rate_limit"}}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("test-key", srv.URL, 5*time.Second, nil)
	_, err := p.Chat(context.Background(), ChatRequest{Model: "m", Messages: []Message{UserMessage("hi")}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrExternal))
	assert.Contains(t, err.Error(), "slow down")
}

func TestOpenAIProvider_MissingKey(t *testing.T) {
	_, err := NewOpenAIProvider("", "", time.Second, nil).Chat(context.Background(), ChatRequest{})
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestUsageTracker(t *testing.T) {
	tracker := NewUsageTracker()
	tracker.Record("b", Usage{PromptTokens: 1, CompletionTokens: 2})
	tracker.Record("a", Usage{PromptTokens: 3, CompletionTokens: 4})
	tracker.Record("a", Usage{PromptTokens: 3, CompletionTokens: 4})

	snap := tracker.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "a", snap[0].Model)
	assert.Equal(t, int64(2), snap[0].Calls)
	assert.Equal(t, int64(6), snap[0].InputTokens)
}

func TestSchemaFromJSON(t *testing.T) {
	schema := schemaFromJSON(map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"ticker": map[string]interface{}{"type": "string", "description": "symbol"},
		},
		"required": []string{"ticker"},
	})
	require.Contains(t, schema.Properties, "ticker")
	assert.Equal(t, "symbol", schema.Properties["ticker"].Description)
	assert.Equal(t, []string{"ticker"}, schema.Required)
}
