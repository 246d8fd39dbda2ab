package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-canvas-be/internal/pkg/logger"
	"ai-canvas-be/pkg/agent/tools"
	"ai-canvas-be/pkg/llm"
)

// MaxToolCalls caps cumulative tool dispatches per run to prevent
// infinite tool loops.
const MaxToolCalls = 10

const logModule = "canvas_agent"

const completedFallback = "Task completed."

// Agent runs a tool-calling loop over one canvas: the model reasons
// over the conversation, requests tool invocations, and the loop
// dispatches them until the model responds without tools or the
// dispatch cap is reached.
type Agent struct {
	provider llm.LLMProvider
	registry *tools.Registry
	threads  ThreadStore
	log      logger.ILogger
}

func New(provider llm.LLMProvider, registry *tools.Registry, threads ThreadStore, log logger.ILogger) *Agent {
	return &Agent{
		provider: provider,
		registry: registry,
		threads:  threads,
		log:      log,
	}
}

// Run executes the loop to completion and returns the final response
// text. The conversation is resumed from and persisted to threadKey.
func (a *Agent) Run(ctx context.Context, threadKey, userMessage string) (string, error) {
	return a.run(ctx, threadKey, userMessage, nil)
}

// RunStream is Run with progress events delivered through emit as the
// loop advances. The terminal framing (started/completed/error) is the
// caller's responsibility.
func (a *Agent) RunStream(ctx context.Context, threadKey, userMessage string, emit func(Event)) (string, error) {
	return a.run(ctx, threadKey, userMessage, emit)
}

func (a *Agent) run(ctx context.Context, threadKey, userMessage string, emit func(Event)) (string, error) {
	history := a.loadHistory(ctx, threadKey)
	if !hasSystemTurn(history) {
		history = append([]llm.Message{{Role: llm.RoleSystem, Content: systemPrompt}}, history...)
	}
	history = append(history, llm.Message{Role: llm.RoleUser, Content: userMessage})

	toolCallsMade := 0
	for {
		completion, err := a.provider.ChatWithTools(ctx, history, a.registry.Definitions())
		if err != nil {
			// Oracle failures never crash the loop
			a.log.Error(logModule, "model call failed", map[string]interface{}{
				"error": err.Error(),
			})
			apology := fmt.Sprintf("I encountered an error: %v", err)
			history = append(history, llm.Message{Role: llm.RoleAssistant, Content: apology})
			if emit != nil {
				emit(Event{Type: EventResponse, Message: apology})
			}
			break
		}

		history = append(history, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   completion.Content,
			ToolCalls: completion.ToolCalls,
		})

		if len(completion.ToolCalls) == 0 {
			if emit != nil && completion.Content != "" {
				emit(Event{Type: EventResponse, Message: completion.Content})
			}
			break
		}
		if toolCallsMade >= MaxToolCalls {
			a.log.Warn(logModule, "tool call limit reached", map[string]interface{}{
				"limit": MaxToolCalls,
			})
			break
		}

		for _, call := range completion.ToolCalls {
			if emit != nil {
				emit(Event{Type: EventToolCall, ToolName: call.Name, ToolArgs: decodeArgs(call.Args)})
			}
			a.log.Info(logModule, "executing tool", map[string]interface{}{
				"tool": call.Name,
				"args": string(call.Args),
			})

			result := a.registry.Dispatch(ctx, call.Name, call.Args)
			content := toolResultContent(call.Name, result)
			history = append(history, llm.Message{
				Role:       llm.RoleTool,
				Content:    content,
				ToolCallID: call.ID,
				Name:       call.Name,
			})
			toolCallsMade++
			if emit != nil {
				emit(Event{Type: EventToolResult, ToolName: call.Name, Result: content})
			}
		}
	}

	a.saveHistory(ctx, threadKey, history)

	final := history[len(history)-1]
	if final.Role == llm.RoleAssistant && final.Content != "" {
		return final.Content, nil
	}
	return completedFallback, nil
}

func (a *Agent) loadHistory(ctx context.Context, threadKey string) []llm.Message {
	if a.threads == nil {
		return nil
	}
	history, err := a.threads.History(ctx, threadKey)
	if err != nil {
		a.log.Warn(logModule, "failed to load conversation, starting fresh", map[string]interface{}{
			"thread": threadKey,
			"error":  err.Error(),
		})
		return nil
	}
	return history
}

func (a *Agent) saveHistory(ctx context.Context, threadKey string, history []llm.Message) {
	if a.threads == nil {
		return
	}
	if err := a.threads.SaveHistory(ctx, threadKey, history); err != nil {
		a.log.Warn(logModule, "failed to persist conversation", map[string]interface{}{
			"thread": threadKey,
			"error":  err.Error(),
		})
	}
}

// toolResultContent shapes a tool result for the model. Reads feed the
// extracted text back directly; everything else reports its message.
func toolResultContent(name string, result tools.Result) string {
	if name == "get_canvas_text" {
		if result.Success {
			if text, ok := result.Data["text"].(string); ok && text != "" {
				return text
			}
			return "Canvas is empty"
		}
		return fmt.Sprintf("Error: %s", result.Message)
	}
	return result.Message
}

func decodeArgs(raw json.RawMessage) map[string]interface{} {
	if len(raw) == 0 {
		return nil
	}
	var args map[string]interface{}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil
	}
	return args
}
