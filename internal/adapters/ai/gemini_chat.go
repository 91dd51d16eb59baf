package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
)

// Ensure GeminiProvider implements ChatProvider
var _ ChatProvider = (*GeminiProvider)(nil)

// GeminiProvider sends chat requests through the Gemini API.
type GeminiProvider struct {
	apiKey      string
	rateLimiter RateLimiter

	once    sync.Once
	client  *genai.Client
	initErr error
}

// NewGeminiProvider creates a Gemini provider. The client is created lazily on the first call.
func NewGeminiProvider(apiKey string, limiter RateLimiter) *GeminiProvider {
	if limiter == nil {
		limiter = NewNoOpLimiter()
	}
	return &GeminiProvider{apiKey: apiKey, rateLimiter: limiter}
}

// Name returns provider name.
func (p *GeminiProvider) Name() string { return ProviderNameGoogle.String() }

func (p *GeminiProvider) getClient(ctx context.Context) (*genai.Client, error) {
	p.once.Do(func() {
		if p.apiKey == "" {
			p.initErr = errors.Wrap(errors.ErrInvalidInput, "gemini API key not configured")
			return
		}
		p.client, p.initErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  p.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	return p.client, p.initErr
}

// Chat converts the request into Gemini contents, system instruction and function declarations.
func (p *GeminiProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	client, err := p.getClient(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "create gemini client")
	}

	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, &RateLimitError{Provider: ProviderNameGoogle, Limit: p.rateLimiter.Limit(), Err: err}
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	var contents []*genai.Content
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: msg.Content}}}
		case RoleAssistant:
			parts := make([]*genai.Part, 0, 1+len(msg.ToolCalls))
			if msg.Content != "" {
				parts = append(parts, &genai.Part{Text: msg.Content})
			}
			for _, tc := range msg.ToolCalls {
				args := map[string]any{}
				_ = json.Unmarshal([]byte(tc.Function.Arguments), &args)
				parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{ID: tc.ID, Name: tc.Function.Name, Args: args}})
			}
			contents = append(contents, &genai.Content{Role: genai.RoleModel, Parts: parts})
		case RoleTool:
			contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: []*genai.Part{{
				FunctionResponse: &genai.FunctionResponse{
					ID:       msg.ToolCallID,
					Name:     msg.Name,
					Response: map[string]any{"output": msg.Content},
				},
			}}})
		default:
			contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: []*genai.Part{{Text: msg.Content}}})
		}
	}

	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, tool := range req.Tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        tool.Function.Name,
				Description: tool.Function.Description,
				Parameters:  schemaFromJSON(tool.Function.Parameters),
			})
		}
		config.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	result, err := client.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrapf(errors.ErrTimeout, "gemini generate: %v", err)
		}
		return nil, errors.Wrapf(errors.ErrExternal, "gemini generate: %v", err)
	}

	msg := Message{Role: RoleAssistant, Content: result.Text()}
	finish := FinishReasonStop
	for i, fc := range result.FunctionCalls() {
		args, _ := json.Marshal(fc.Args)
		id := fc.ID
		if id == "" {
			id = fmt.Sprintf("call_%d", i)
		}
		msg.ToolCalls = append(msg.ToolCalls, ToolCall{
			ID:       id,
			Type:     "function",
			Function: FunctionCall{Name: fc.Name, Arguments: string(args)},
		})
		finish = FinishReasonToolCalls
	}

	resp := &ChatResponse{
		Model:   req.Model,
		Choices: []Choice{{Message: msg, FinishReason: finish}},
	}
	if result.UsageMetadata != nil {
		resp.Usage = Usage{
			PromptTokens:     int(result.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(result.UsageMetadata.TotalTokenCount),
		}
	}
	return resp, nil
}

// schemaFromJSON converts the flat object schemas used by the tool catalog.
// Every property is treated as a string, which is all the catalog declares.
func schemaFromJSON(params map[string]interface{}) *genai.Schema {
	schema := &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}}

	props, _ := params["properties"].(map[string]interface{})
	for name, raw := range props {
		prop := &genai.Schema{Type: genai.TypeString}
		if def, ok := raw.(map[string]interface{}); ok {
			if desc, ok := def["description"].(string); ok {
				prop.Description = desc
			}
		}
		schema.Properties[name] = prop
	}

	switch required := params["required"].(type) {
	case []string:
		schema.Required = required
	case []interface{}:
		for _, r := range required {
			if s, ok := r.(string); ok {
				schema.Required = append(schema.Required, s)
			}
		}
	}
	return schema
}
