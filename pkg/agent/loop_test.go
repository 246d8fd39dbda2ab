package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"ai-canvas-be/internal/pkg/logger"
	"ai-canvas-be/pkg/agent/tools"
	"ai-canvas-be/pkg/llm"
	"ai-canvas-be/pkg/prosemirror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider replays a fixed sequence of completions, one per
// ChatWithTools call, and records the history it was given.
type scriptedProvider struct {
	turns []llm.Completion
	calls [][]llm.Message
	err   error
}

func (p *scriptedProvider) ChatWithTools(ctx context.Context, history []llm.Message, defs []llm.ToolDefinition, options ...llm.Option) (*llm.Completion, error) {
	p.calls = append(p.calls, append([]llm.Message(nil), history...))
	if p.err != nil {
		return nil, p.err
	}
	i := len(p.calls) - 1
	if i >= len(p.turns) {
		return &llm.Completion{Content: "done"}, nil
	}
	turn := p.turns[i]
	return &turn, nil
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	c, err := p.ChatWithTools(ctx, history, nil, options...)
	if err != nil {
		return "", err
	}
	return c.Content, nil
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}})
}

type memThreads struct {
	m map[string][]llm.Message
}

func newMemThreads() *memThreads {
	return &memThreads{m: make(map[string][]llm.Message)}
}

func (s *memThreads) History(ctx context.Context, key string) ([]llm.Message, error) {
	return s.m[key], nil
}

func (s *memThreads) SaveHistory(ctx context.Context, key string, history []llm.Message) error {
	s.m[key] = history
	return nil
}

type memCanvasStore struct {
	content *prosemirror.Node
	saves   int
}

func (s *memCanvasStore) Load(ctx context.Context, canvasId, userId uuid.UUID) (*prosemirror.Node, error) {
	return s.content, nil
}

func (s *memCanvasStore) Save(ctx context.Context, canvasId, userId uuid.UUID, content *prosemirror.Node) error {
	s.content = content
	s.saves++
	return nil
}

func newTestAgent(provider llm.LLMProvider, store *memCanvasStore, threads ThreadStore) *Agent {
	registry := tools.NewCanvasRegistry(store, uuid.New(), uuid.New(), logger.NewNopLogger())
	return New(provider, registry, threads, logger.NewNopLogger())
}

func toolCall(id, name string, args map[string]interface{}) llm.ToolCall {
	raw, _ := json.Marshal(args)
	return llm.ToolCall{ID: id, Name: name, Args: raw}
}

func planDoc() *prosemirror.Node {
	return &prosemirror.Node{
		Type: prosemirror.TypeDoc,
		Content: []*prosemirror.Node{
			prosemirror.Heading("Rollout", 1),
			prosemirror.Paragraph("The API serves traffic."),
		},
	}
}

func TestRunDirectResponse(t *testing.T) {
	provider := &scriptedProvider{turns: []llm.Completion{
		{Content: "The canvas looks good as is."},
	}}
	a := newTestAgent(provider, &memCanvasStore{content: planDoc()}, nil)

	out, err := a.Run(context.Background(), "thread-1", "Is the canvas ok?")
	require.NoError(t, err)
	assert.Equal(t, "The canvas looks good as is.", out)

	require.Len(t, provider.calls, 1)
	history := provider.calls[0]
	assert.Equal(t, llm.RoleSystem, history[0].Role)
	assert.Equal(t, llm.RoleUser, history[1].Role)
	assert.Equal(t, "Is the canvas ok?", history[1].Content)
}

func TestRunReplaceFlow(t *testing.T) {
	provider := &scriptedProvider{turns: []llm.Completion{
		{ToolCalls: []llm.ToolCall{toolCall("c1", "replace_text", map[string]interface{}{
			"old_text": "API",
			"new_text": "Service",
		})}},
		{Content: "Replaced API with Service everywhere."},
	}}
	store := &memCanvasStore{content: planDoc()}
	a := newTestAgent(provider, store, nil)

	out, err := a.Run(context.Background(), "thread-1", "Replace all API with Service")
	require.NoError(t, err)
	assert.Equal(t, "Replaced API with Service everywhere.", out)
	assert.Equal(t, 1, store.saves)
	assert.Equal(t, "The Service serves traffic.", store.content.Content[1].Content[0].Text)

	// The second model call sees the assistant tool request and its result
	require.Len(t, provider.calls, 2)
	second := provider.calls[1]
	last := second[len(second)-1]
	assert.Equal(t, llm.RoleTool, last.Role)
	assert.Equal(t, "c1", last.ToolCallID)
	assert.Equal(t, "Replaced 1 occurrence(s) of 'API' with 'Service'", last.Content)
}

func TestRunBuildsTaskListOnEmptyCanvas(t *testing.T) {
	provider := &scriptedProvider{turns: []llm.Completion{
		{ToolCalls: []llm.ToolCall{toolCall("c1", "add_task_list", map[string]interface{}{
			"tasks": []string{"Review", "Edit", "Publish"},
		})}},
		{Content: "Added a task list with three items."},
	}}
	store := &memCanvasStore{content: &prosemirror.Node{Type: prosemirror.TypeDoc}}
	a := newTestAgent(provider, store, nil)

	out, err := a.Run(context.Background(), "thread-1", "add a task list with: Review, Edit, Publish")
	require.NoError(t, err)
	assert.Equal(t, "Added a task list with three items.", out)
	assert.Equal(t, 1, store.saves)

	require.Len(t, store.content.Content, 1)
	list := store.content.Content[0]
	assert.Equal(t, prosemirror.TypeTaskList, list.Type)
	require.Len(t, list.Content, 3)
	for i, want := range []string{"Review", "Edit", "Publish"} {
		item := list.Content[i]
		assert.Equal(t, prosemirror.TypeTaskItem, item.Type)
		assert.Equal(t, false, item.Attrs["checked"])
		require.Len(t, item.Content, 1)
		assert.Equal(t, want, item.Content[0].Content[0].Text)
	}
}

func TestRunFeedsCanvasTextToModel(t *testing.T) {
	provider := &scriptedProvider{turns: []llm.Completion{
		{ToolCalls: []llm.ToolCall{toolCall("c1", "get_canvas_text", nil)}},
		{Content: "Summarized."},
	}}
	a := newTestAgent(provider, &memCanvasStore{content: planDoc()}, nil)

	_, err := a.Run(context.Background(), "thread-1", "Summarize the canvas")
	require.NoError(t, err)

	second := provider.calls[1]
	last := second[len(second)-1]
	assert.Equal(t, "Rollout The API serves traffic.", last.Content)
}

func TestRunUnknownToolIsReported(t *testing.T) {
	provider := &scriptedProvider{turns: []llm.Completion{
		{ToolCalls: []llm.ToolCall{toolCall("c1", "rotate_canvas", nil)}},
		{Content: "I cannot do that."},
	}}
	a := newTestAgent(provider, &memCanvasStore{content: planDoc()}, nil)

	out, err := a.Run(context.Background(), "thread-1", "Rotate the canvas")
	require.NoError(t, err)
	assert.Equal(t, "I cannot do that.", out)

	second := provider.calls[1]
	last := second[len(second)-1]
	assert.Equal(t, llm.RoleTool, last.Role)
	assert.Equal(t, "Error: Unknown tool 'rotate_canvas'", last.Content)
}

func TestRunToolCallLimit(t *testing.T) {
	// The model keeps asking for the same read forever
	turns := make([]llm.Completion, 0, MaxToolCalls+1)
	for i := 0; i <= MaxToolCalls; i++ {
		turns = append(turns, llm.Completion{
			ToolCalls: []llm.ToolCall{toolCall("c", "get_canvas_text", nil)},
		})
	}
	provider := &scriptedProvider{turns: turns}
	a := newTestAgent(provider, &memCanvasStore{content: planDoc()}, nil)

	out, err := a.Run(context.Background(), "thread-1", "Read forever")
	require.NoError(t, err)
	assert.Equal(t, "Task completed.", out)
	// 10 dispatch rounds plus the final call whose requests were cut off
	assert.Len(t, provider.calls, MaxToolCalls+1)
}

func TestRunOracleFailureIsAbsorbed(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("model unavailable")}
	a := newTestAgent(provider, &memCanvasStore{content: planDoc()}, nil)

	out, err := a.Run(context.Background(), "thread-1", "Do something")
	require.NoError(t, err)
	assert.Contains(t, out, "I encountered an error")
	assert.Contains(t, out, "model unavailable")
}

func TestRunResumesThread(t *testing.T) {
	threads := newMemThreads()
	store := &memCanvasStore{content: planDoc()}

	first := &scriptedProvider{turns: []llm.Completion{{Content: "Hello."}}}
	a := newTestAgent(first, store, threads)
	_, err := a.Run(context.Background(), "canvas_abc", "Hi")
	require.NoError(t, err)

	second := &scriptedProvider{turns: []llm.Completion{{Content: "Still here."}}}
	a = newTestAgent(second, store, threads)
	_, err = a.Run(context.Background(), "canvas_abc", "Are you there?")
	require.NoError(t, err)

	history := second.calls[0]
	// system, user, assistant from run one, then the new user turn
	require.Len(t, history, 4)
	assert.Equal(t, llm.RoleSystem, history[0].Role)
	assert.Equal(t, "Hi", history[1].Content)
	assert.Equal(t, "Hello.", history[2].Content)
	assert.Equal(t, "Are you there?", history[3].Content)

	// The system prompt is never duplicated across runs
	systemTurns := 0
	for _, m := range history {
		if m.Role == llm.RoleSystem {
			systemTurns++
		}
	}
	assert.Equal(t, 1, systemTurns)
}

func TestRunStreamEvents(t *testing.T) {
	provider := &scriptedProvider{turns: []llm.Completion{
		{ToolCalls: []llm.ToolCall{toolCall("c1", "replace_text", map[string]interface{}{
			"old_text": "API",
			"new_text": "Service",
		})}},
		{Content: "All done."},
	}}
	a := newTestAgent(provider, &memCanvasStore{content: planDoc()}, nil)

	var events []Event
	out, err := a.RunStream(context.Background(), "thread-1", "Replace API with Service", func(e Event) {
		events = append(events, e)
	})
	require.NoError(t, err)
	assert.Equal(t, "All done.", out)

	require.Len(t, events, 3)
	assert.Equal(t, EventToolCall, events[0].Type)
	assert.Equal(t, "replace_text", events[0].ToolName)
	assert.Equal(t, "Service", events[0].ToolArgs["new_text"])
	assert.Equal(t, EventToolResult, events[1].Type)
	assert.Equal(t, "replace_text", events[1].ToolName)
	assert.Contains(t, events[1].Result, "Replaced 1 occurrence(s)")
	assert.Equal(t, EventResponse, events[2].Type)
	assert.Equal(t, "All done.", events[2].Message)
}

func TestRunStreamOracleFailureEmitsResponse(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("quota exceeded")}
	a := newTestAgent(provider, &memCanvasStore{content: planDoc()}, nil)

	var events []Event
	out, err := a.RunStream(context.Background(), "thread-1", "Do something", func(e Event) {
		events = append(events, e)
	})
	require.NoError(t, err)
	assert.Contains(t, out, "quota exceeded")

	require.Len(t, events, 1)
	assert.Equal(t, EventResponse, events[0].Type)
	assert.Contains(t, events[0].Message, "I encountered an error")
}

func TestDefaultThreadKey(t *testing.T) {
	id := uuid.MustParse("3e2cb9d0-40a5-4b6c-8c5d-1f2a3b4c5d6e")
	assert.Equal(t, "canvas_3e2cb9d0-40a5-4b6c-8c5d-1f2a3b4c5d6e", DefaultThreadKey(id))
}
