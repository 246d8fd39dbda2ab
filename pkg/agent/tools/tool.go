package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ai-canvas-be/pkg/llm"
	"ai-canvas-be/pkg/prosemirror"

	"github.com/google/uuid"
)

// ErrCanvasNotFound covers both a missing canvas and an ownership
// mismatch; the two are deliberately indistinguishable so that canvas
// existence never leaks across users.
var ErrCanvasNotFound = errors.New("canvas not found or access denied")

// CanvasStore is the persistence contract the tools operate against.
// Both operations are scoped by the acting user in a single lookup.
type CanvasStore interface {
	Load(ctx context.Context, canvasId, userId uuid.UUID) (*prosemirror.Node, error)
	Save(ctx context.Context, canvasId, userId uuid.UUID, content *prosemirror.Node) error
}

// Parameter defines one argument of a tool.
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Result is the standard outcome of every tool invocation.
type Result struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

func successResult(message string, data map[string]interface{}) Result {
	return Result{Success: true, Message: message, Data: data}
}

func failureResult(format string, args ...interface{}) Result {
	return Result{Success: false, Message: fmt.Sprintf(format, args...)}
}

// DocumentTool is one named, schema-carrying canvas operation. Errors
// local to an invocation are reported inside the Result, never raised.
type DocumentTool interface {
	Name() string
	Description() string
	Parameters() []Parameter
	Invoke(ctx context.Context, args json.RawMessage) Result
}

// funcTool adapts a plain function into a DocumentTool.
type funcTool struct {
	name        string
	description string
	parameters  []Parameter
	fn          func(ctx context.Context, args json.RawMessage) Result
}

func (t *funcTool) Name() string            { return t.name }
func (t *funcTool) Description() string     { return t.description }
func (t *funcTool) Parameters() []Parameter { return t.parameters }
func (t *funcTool) Invoke(ctx context.Context, args json.RawMessage) Result {
	return t.fn(ctx, args)
}

// Definition converts a DocumentTool into the provider-facing shape.
func Definition(tool DocumentTool) llm.ToolDefinition {
	params := tool.Parameters()
	def := llm.ToolDefinition{
		Name:        tool.Name(),
		Description: tool.Description(),
		Parameters:  make([]llm.ToolParameter, 0, len(params)),
	}
	for _, p := range params {
		def.Parameters = append(def.Parameters, llm.ToolParameter{
			Name:        p.Name,
			Type:        p.Type,
			Description: p.Description,
			Required:    p.Required,
		})
	}
	return def
}
