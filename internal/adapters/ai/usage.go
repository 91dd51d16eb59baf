package ai

import (
	"sort"
	"sync"
)

// ProviderUsage captures token usage of one model.
type ProviderUsage struct {
	Model        string
	Calls        int64
	InputTokens  int64
	OutputTokens int64
}

// UsageTracker aggregates token usage per model across a run.
type UsageTracker struct {
	mu    sync.Mutex
	usage map[string]*ProviderUsage
}

// NewUsageTracker creates a new tracker instance.
func NewUsageTracker() *UsageTracker {
	return &UsageTracker{usage: make(map[string]*ProviderUsage)}
}

// Record adds one call's usage.
func (t *UsageTracker) Record(model string, usage Usage) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.usage[model]
	if !ok {
		entry = &ProviderUsage{Model: model}
		t.usage[model] = entry
	}
	entry.Calls++
	entry.InputTokens += int64(usage.PromptTokens)
	entry.OutputTokens += int64(usage.CompletionTokens)
}

// Snapshot returns the usage per model sorted by model name.
func (t *UsageTracker) Snapshot() []ProviderUsage {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]ProviderUsage, 0, len(t.usage))
	for _, v := range t.usage {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Model < out[j].Model })
	return out
}
