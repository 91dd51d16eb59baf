package agents

import (
	"context"
	"strings"
	"time"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/ai"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/metrics"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/logger"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/templates"
)

// InvokerConfig holds the model settings shared by every role.
type InvokerConfig struct {
	Models      ai.Models
	Temperature float64
	MaxTokens   int
	// CallTimeout bounds one generative call. Zero disables the bound.
	CallTimeout time.Duration
}

// Invoker is the single path from an agent role to the chat provider: it picks the
// role's model tier, bounds the call, and records latency and token usage.
type Invoker struct {
	provider  ai.ChatProvider
	cfg       InvokerConfig
	usage     *ai.UsageTracker
	templates *templates.Registry
	log       *logger.Logger
}

func NewInvoker(provider ai.ChatProvider, cfg InvokerConfig, usage *ai.UsageTracker, tmpl *templates.Registry) *Invoker {
	if usage == nil {
		usage = ai.NewUsageTracker()
	}
	if tmpl == nil {
		tmpl = templates.Get()
	}
	return &Invoker{
		provider:  provider,
		cfg:       cfg,
		usage:     usage,
		templates: tmpl,
		log:       logger.Get().With("component", "invoker"),
	}
}

// Usage returns the tracker aggregating token usage of every call.
func (inv *Invoker) Usage() *ai.UsageTracker { return inv.usage }

// Templates returns the prompt registry.
func (inv *Invoker) Templates() *templates.Registry { return inv.templates }

// Render renders a prompt template.
func (inv *Invoker) Render(id string, data any) (string, error) {
	out, err := inv.templates.Render(id, data)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInternal, "render %s: %v", id, err)
	}
	return strings.TrimSpace(out), nil
}

// Chat sends messages on behalf of agent, with tools offered when defs is non-empty.
func (inv *Invoker) Chat(ctx context.Context, agent AgentType, messages []ai.Message, defs []ai.ToolDefinition) (ai.Message, error) {
	cfg := ConfigFor(agent)
	model := inv.cfg.Models.For(cfg.Tier)

	if inv.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.cfg.CallTimeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := inv.provider.Chat(ctx, ai.ChatRequest{
		Agent:       agent.String(),
		Model:       model,
		Messages:    messages,
		Tools:       defs,
		Temperature: inv.cfg.Temperature,
		MaxTokens:   inv.cfg.MaxTokens,
	})
	latency := time.Since(start)

	if err != nil {
		metrics.RecordAgentCall(agent.String(), model, latency, 0, 0, err)
		if ctx.Err() == context.DeadlineExceeded {
			err = errors.Wrapf(errors.ErrTimeout, "%s call exceeded %s: %v", agent, inv.cfg.CallTimeout, err)
		}
		inv.log.Warnw("Generative call failed", "agent", agent, "model", model, "latency", latency, "error", err)
		return ai.Message{}, err
	}

	inv.usage.Record(model, resp.Usage)
	metrics.RecordAgentCall(agent.String(), model, latency, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, nil)
	inv.log.Debugw("Generative call completed",
		"agent", agent,
		"model", model,
		"latency", latency,
		"tool_calls", len(resp.Message().ToolCalls),
	)

	return resp.Message(), nil
}

// Complete is a single non-interactive call: a system prompt, one user message, text back.
func (inv *Invoker) Complete(ctx context.Context, agent AgentType, system, user string) (string, error) {
	messages := make([]ai.Message, 0, 2)
	if system != "" {
		messages = append(messages, ai.SystemMessage(system))
	}
	messages = append(messages, ai.UserMessage(user))

	msg, err := inv.Chat(ctx, agent, messages, nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(msg.Content), nil
}
