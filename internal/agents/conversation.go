package agents

import (
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/ai"
)

// Conversation is the message history of one ReAct loop.
type Conversation struct {
	systemPrompt  string
	history       []ai.Message
	currentTokens int
	turnCount     int
}

// NewConversation starts a history with a system prompt and the initial task.
func NewConversation(systemPrompt, task string) *Conversation {
	c := &Conversation{
		systemPrompt:  systemPrompt,
		history:       make([]ai.Message, 0, 16),
		currentTokens: estimateTokens(systemPrompt),
	}
	c.AddUserMessage(task)
	return c
}

// AddUserMessage adds a user message to the conversation
func (c *Conversation) AddUserMessage(content string) {
	c.append(ai.UserMessage(content))
}

// AddAssistantMessage records a model reply, including any tool calls it requested.
func (c *Conversation) AddAssistantMessage(msg ai.Message) {
	msg.Role = ai.RoleAssistant
	c.append(msg)
	c.turnCount++
}

// AddToolResult adds a tool execution result to the conversation
func (c *Conversation) AddToolResult(callID, toolName, result string) {
	c.append(ai.ToolResultMessage(callID, toolName, result))
}

// Messages returns the system prompt followed by the history.
func (c *Conversation) Messages() []ai.Message {
	out := make([]ai.Message, 0, len(c.history)+1)
	if c.systemPrompt != "" {
		out = append(out, ai.SystemMessage(c.systemPrompt))
	}
	return append(out, c.history...)
}

// TurnCount is the number of model replies recorded.
func (c *Conversation) TurnCount() int { return c.turnCount }

// EstimatedTokens is a rough size of the conversation.
func (c *Conversation) EstimatedTokens() int { return c.currentTokens }

func (c *Conversation) append(msg ai.Message) {
	c.history = append(c.history, msg)
	c.currentTokens += estimateTokens(msg.Content)
	for _, tc := range msg.ToolCalls {
		c.currentTokens += estimateTokens(tc.Function.Name) + estimateTokens(tc.Function.Arguments)
	}
}

// estimateTokens uses the ~4 characters per token rule of thumb.
func estimateTokens(text string) int {
	return (len(text) + 3) / 4
}
