package tools

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"github.com/coursegraph/coursegraph/internal/models"
)

// Registry holds the set of tools available to the model and dispatches
// execute-by-name calls. It is not safe for concurrent queries sharing one
// instance because of the per-tool citation side channel; give each query its
// own registry or serialize citation collection with the owning query.
type Registry struct {
	order []string
	tools map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool under its definition name. Registering a second tool
// with the same name silently replaces the first; the original registration
// order is kept.
func (r *Registry) Register(tool Tool) error {
	name := tool.Definition().Name
	if name == "" {
		return fmt.Errorf("tool definition must have a name")
	}
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
	return nil
}

// Definitions returns one schema per registered tool in registration order.
func (r *Registry) Definitions() []Definition {
	defs := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// LLMTools returns the tool catalog in langchaingo's shape, ready to hand to
// the model verbatim.
func (r *Registry) LLMTools() []llms.Tool {
	out := make([]llms.Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].Definition().LLMTool())
	}
	return out
}

// Execute dispatches a tool call by name. Unknown names yield a fixed
// not-found text, never an error, so the model always receives a tool result
// even for a malformed call.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	tool, ok := r.tools[name]
	if !ok {
		return fmt.Sprintf("Tool '%s' not found", name), nil
	}
	return tool.Execute(ctx, args)
}

// LastSources returns the first non-empty citation list across registered
// tools, in registration order. Callers must ResetSources once they have
// consumed the citations or stale entries leak into the next query.
func (r *Registry) LastSources() []models.Source {
	for _, name := range r.order {
		if tracker, ok := r.tools[name].(SourceTracker); ok {
			if sources := tracker.LastSources(); len(sources) > 0 {
				return sources
			}
		}
	}
	return []models.Source{}
}

// ResetSources clears the citation side channel on every tool that has one.
func (r *Registry) ResetSources() {
	for _, name := range r.order {
		if tracker, ok := r.tools[name].(SourceTracker); ok {
			tracker.ResetSources()
		}
	}
}
