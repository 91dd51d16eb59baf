package testsupport

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/ai"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/tools"
)

// ScriptedChat is an in-process ChatProvider that answers per calling agent.
//
// Each agent has an optional queue of replies consumed in order, an optional error, and a
// responder used once the queue is empty. Without any of these it answers "<agent> response".
type ScriptedChat struct {
	mu         sync.Mutex
	queues     map[string][]ai.Message
	errs       map[string]error
	responders map[string]func(ai.ChatRequest) string
	requests   []ai.ChatRequest
}

func NewScriptedChat() *ScriptedChat {
	return &ScriptedChat{
		queues:     make(map[string][]ai.Message),
		errs:       make(map[string]error),
		responders: make(map[string]func(ai.ChatRequest) string),
	}
}

func (s *ScriptedChat) Name() string { return "scripted" }

// Reply queues text replies for agent.
func (s *ScriptedChat) Reply(agent string, texts ...string) *ScriptedChat {
	msgs := make([]ai.Message, len(texts))
	for i, text := range texts {
		msgs[i] = ai.Message{Role: ai.RoleAssistant, Content: text}
	}
	return s.Queue(agent, msgs...)
}

// Queue appends full messages, tool calls included, to agent's queue.
func (s *ScriptedChat) Queue(agent string, msgs ...ai.Message) *ScriptedChat {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues[agent] = append(s.queues[agent], msgs...)
	return s
}

// Fail makes every call of agent return err.
func (s *ScriptedChat) Fail(agent string, err error) *ScriptedChat {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[agent] = err
	return s
}

// Respond answers agent with fn once its queue is drained.
func (s *ScriptedChat) Respond(agent string, fn func(ai.ChatRequest) string) *ScriptedChat {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responders[agent] = fn
	return s
}

func (s *ScriptedChat) Chat(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)

	if err := s.errs[req.Agent]; err != nil {
		s.mu.Unlock()
		return nil, err
	}

	var msg ai.Message
	if queue := s.queues[req.Agent]; len(queue) > 0 {
		msg = queue[0]
		s.queues[req.Agent] = queue[1:]
	} else if fn := s.responders[req.Agent]; fn != nil {
		msg = ai.Message{Role: ai.RoleAssistant, Content: fn(req)}
	} else {
		msg = ai.Message{Role: ai.RoleAssistant, Content: req.Agent + " response"}
	}
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	finish := ai.FinishReasonStop
	if len(msg.ToolCalls) > 0 {
		finish = ai.FinishReasonToolCalls
	}
	return &ai.ChatResponse{
		Model:   req.Model,
		Choices: []ai.Choice{{Message: msg, FinishReason: finish}},
		Usage:   ai.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}, nil
}

// Requests returns every request received, in arrival order.
func (s *ScriptedChat) Requests() []ai.ChatRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ai.ChatRequest(nil), s.requests...)
}

// RequestsFor returns the requests made by agent.
func (s *ScriptedChat) RequestsFor(agent string) []ai.ChatRequest {
	var out []ai.ChatRequest
	for _, req := range s.Requests() {
		if req.Agent == agent {
			out = append(out, req)
		}
	}
	return out
}

// Calls counts the requests made by agent.
func (s *ScriptedChat) Calls(agent string) int {
	return len(s.RequestsFor(agent))
}

// LastPrompt is the final message content of agent's latest request.
func LastPrompt(req ai.ChatRequest) string {
	if len(req.Messages) == 0 {
		return ""
	}
	return req.Messages[len(req.Messages)-1].Content
}

// ToolCall builds an assistant message requesting one tool.
func ToolCall(id, name, args string) ai.Message {
	return ai.Message{
		Role: ai.RoleAssistant,
		ToolCalls: []ai.ToolCall{{
			ID:       id,
			Type:     "function",
			Function: ai.FunctionCall{Name: name, Arguments: args},
		}},
	}
}

// StaticTool returns a tool answering "<name>: k=v ..." with its arguments in declared order.
func StaticTool(name string, params ...string) tools.Tool {
	declared := make([]tools.Param, len(params))
	for i, p := range params {
		declared[i] = tools.Param{Name: p, Description: p, Required: true}
	}
	return tools.New(name, "static "+name, declared, func(_ context.Context, args tools.Args) (string, error) {
		parts := make([]string, 0, len(params))
		for _, p := range params {
			parts = append(parts, fmt.Sprintf("%s=%s", p, args[p]))
		}
		return strings.TrimSpace(name + ": " + strings.Join(parts, " ")), nil
	})
}
