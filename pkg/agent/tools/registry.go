package tools

import (
	"context"
	"encoding/json"
	"sort"

	"ai-canvas-be/pkg/llm"
)

// Registry holds the tool set for one request. It is built per request
// rather than shared, so no tool ever captures another request's canvas.
type Registry struct {
	tools map[string]DocumentTool
	order []string
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]DocumentTool),
	}
}

// Register adds a tool, keeping registration order for catalogs.
func (r *Registry) Register(tool DocumentTool) {
	name := tool.Name()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (DocumentTool, bool) {
	tool, exists := r.tools[name]
	return tool, exists
}

// Names returns all registered tool names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns the provider-facing catalog in registration order.
func (r *Registry) Definitions() []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, Definition(r.tools[name]))
	}
	return defs
}

// Dispatch runs one invocation. Unknown tools and panics are converted
// into failed Results; nothing escapes to abort the surrounding loop.
func (r *Registry) Dispatch(ctx context.Context, name string, args json.RawMessage) (result Result) {
	defer func() {
		if rec := recover(); rec != nil {
			result = failureResult("Error executing %s: %v", name, rec)
		}
	}()

	tool, exists := r.tools[name]
	if !exists {
		return failureResult("Error: Unknown tool '%s'", name)
	}
	return tool.Invoke(ctx, args)
}
