package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/ai"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
)

// Catalog is a fixed, ordered set of tools built once at startup.
// It is passed by value; the underlying slice is never mutated after construction.
type Catalog struct {
	tools []Tool
}

// NewCatalog builds a catalog, rejecting duplicate or empty names.
func NewCatalog(ts ...Tool) (Catalog, error) {
	seen := make(map[string]struct{}, len(ts))
	for _, t := range ts {
		if t == nil || t.Name() == "" {
			return Catalog{}, errors.Wrap(errors.ErrInvalidInput, "tool without a name")
		}
		if _, dup := seen[t.Name()]; dup {
			return Catalog{}, errors.Wrapf(errors.ErrInvalidInput, "duplicate tool %s", t.Name())
		}
		seen[t.Name()] = struct{}{}
	}
	return Catalog{tools: append([]Tool(nil), ts...)}, nil
}

// MustCatalog is NewCatalog for static declarations.
func MustCatalog(ts ...Tool) Catalog {
	c, err := NewCatalog(ts...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Catalog) Len() int { return len(c.tools) }

// Names returns tool names in declaration order.
func (c Catalog) Names() []string {
	names := make([]string, len(c.tools))
	for i, t := range c.tools {
		names[i] = t.Name()
	}
	return names
}

func (c Catalog) Lookup(name string) (Tool, bool) {
	for _, t := range c.tools {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}

// With returns a new catalog with every tool wrapped by mws, first middleware outermost.
func (c Catalog) With(mws ...Middleware) Catalog {
	wrapped := make([]Tool, len(c.tools))
	for i, t := range c.tools {
		for j := len(mws) - 1; j >= 0; j-- {
			t = mws[j](t)
		}
		wrapped[i] = t
	}
	return Catalog{tools: wrapped}
}

// Definitions renders the catalog as function-calling schemas.
func (c Catalog) Definitions() []ai.ToolDefinition {
	defs := make([]ai.ToolDefinition, 0, len(c.tools))
	for _, t := range c.tools {
		props := make(map[string]interface{}, len(t.Params()))
		required := make([]string, 0)
		for _, p := range t.Params() {
			props[p.Name] = map[string]interface{}{"type": "string", "description": p.Description}
			if p.Required {
				required = append(required, p.Name)
			}
		}
		defs = append(defs, ai.ToolDefinition{
			Type: "function",
			Function: ai.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters: map[string]interface{}{
					"type":       "object",
					"properties": props,
					"required":   required,
				},
			},
		})
	}
	return defs
}

// Invoke runs a tool by name. Every failure, including an unknown tool or a missing
// argument, is returned as the result text so the calling agent can read it.
func (c Catalog) Invoke(ctx context.Context, name string, args Args) string {
	t, ok := c.Lookup(name)
	if !ok {
		return fmt.Sprintf("Error: unknown tool %q. Available tools: %s", name, strings.Join(c.Names(), ", "))
	}

	for _, p := range t.Params() {
		if p.Required && strings.TrimSpace(args[p.Name]) == "" {
			return fmt.Sprintf("Error: missing required argument %q for tool %s", p.Name, name)
		}
	}

	out, err := t.Execute(ctx, args)
	if err != nil {
		return fmt.Sprintf("Error executing %s: %v", name, err)
	}
	return out
}
