package agents

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/ai"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/embeddings"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/domain/memory"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/repository/inmemory"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/testsupport"
)

func newTestInvoker(chat *testsupport.ScriptedChat) *Invoker {
	return NewInvoker(chat, InvokerConfig{
		Models:      ai.Models{Quick: "quick-model", Deep: "deep-model"},
		Temperature: 0.1,
	}, nil, nil)
}

func newTestBank(t *testing.T) *memory.Bank {
	t.Helper()
	bank, err := memory.NewBank(inmemory.Factory(embeddings.NewHashingProvider(64)))
	require.NoError(t, err)
	return bank
}
