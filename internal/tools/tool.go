package tools

import (
	"context"
	"errors"
)

// Args are the string arguments of one tool call.
type Args map[string]string

// Param declares one string argument of a tool.
type Param struct {
	Name        string
	Description string
	Required    bool
}

// Tool represents a callable capability exposed to agents.
type Tool interface {
	// Name returns the unique tool identifier.
	Name() string
	// Description returns a short human-readable summary.
	Description() string
	// Params lists the declared arguments.
	Params() []Param
	// Execute performs the tool's action using the provided arguments.
	Execute(ctx context.Context, args Args) (string, error)
}

// HandlerFunc is the function signature for tool handlers.
type HandlerFunc func(ctx context.Context, args Args) (string, error)

// FunctionTool is a simple Tool implementation backed by a handler function.
type FunctionTool struct {
	name        string
	description string
	params      []Param
	handler     HandlerFunc
}

// New creates a new function-backed Tool.
func New(name, description string, params []Param, handler HandlerFunc) Tool {
	return &FunctionTool{
		name:        name,
		description: description,
		params:      params,
		handler:     handler,
	}
}

func (t *FunctionTool) Name() string { return t.name }

func (t *FunctionTool) Description() string { return t.description }

func (t *FunctionTool) Params() []Param { return append([]Param(nil), t.params...) }

// Execute runs the underlying handler.
func (t *FunctionTool) Execute(ctx context.Context, args Args) (string, error) {
	if t.handler == nil {
		return "", errors.New("tool handler is not defined")
	}
	return t.handler(ctx, args)
}

// Middleware decorates a tool, keeping its name, description and params.
type Middleware func(Tool) Tool

// Decorate builds a tool that shares t's metadata but runs handler.
func Decorate(t Tool, handler HandlerFunc) Tool {
	return New(t.Name(), t.Description(), t.Params(), handler)
}
