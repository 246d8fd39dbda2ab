package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ai-canvas-be/internal/dto"
	"ai-canvas-be/internal/entity"
	"ai-canvas-be/internal/pkg/logger"
	"ai-canvas-be/internal/repository/memory"
	"ai-canvas-be/pkg/agent"
	"ai-canvas-be/pkg/llm"
	"ai-canvas-be/pkg/prosemirror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider replays a fixed sequence of completions.
type scriptedProvider struct {
	turns []llm.Completion
	calls int
	err   error
}

func (p *scriptedProvider) ChatWithTools(ctx context.Context, history []llm.Message, defs []llm.ToolDefinition, options ...llm.Option) (*llm.Completion, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	if p.calls > len(p.turns) {
		return &llm.Completion{Content: "done"}, nil
	}
	turn := p.turns[p.calls-1]
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

func seedCanvas(f *fakeFactory, userId uuid.UUID) uuid.UUID {
	id := uuid.New()
	f.uow.canvases.canvases[id] = &entity.Canvas{
		Id:   id,
		Name: "Plan",
		Content: &prosemirror.Node{Type: prosemirror.TypeDoc, Content: []*prosemirror.Node{
			prosemirror.Heading("Rollout", 1),
			prosemirror.Paragraph("The API serves traffic."),
		}},
		UserId:    userId,
		CreatedAt: time.Now(),
	}
	return id
}

func newTestAgentService(factory *fakeFactory, provider llm.LLMProvider) IAgentService {
	log := logger.NewNopLogger()
	store := NewCanvasStore(factory, nil, log)
	creditSvc := NewCreditService(factory, log)
	return NewAgentService(factory, provider, store, memory.NewThreadRepository(), creditSvc, log)
}

func TestAgentExecuteUnknownCanvasIsFree(t *testing.T) {
	factory := newFakeFactory()
	userId := seedUser(factory, 5)

	svc := newTestAgentService(factory, &scriptedProvider{})
	_, err := svc.Execute(context.Background(), userId, &dto.AgentExecuteRequest{
		CanvasId: uuid.New(),
		Message:  "hello",
	})

	var fiberErr *fiber.Error
	require.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, fiber.StatusNotFound, fiberErr.Code)

	// No debit happened.
	assert.Equal(t, 5, factory.uow.users.users[userId].AiCredits)
	assert.Empty(t, factory.uow.credits.txs)
}

func TestAgentExecuteChargesOneCredit(t *testing.T) {
	factory := newFakeFactory()
	userId := seedUser(factory, 5)
	canvasId := seedCanvas(factory, userId)

	provider := &scriptedProvider{turns: []llm.Completion{
		{Content: "All set."},
	}}
	svc := newTestAgentService(factory, provider)

	res, err := svc.Execute(context.Background(), userId, &dto.AgentExecuteRequest{
		CanvasId: canvasId,
		Message:  "summarize",
	})
	require.NoError(t, err)
	assert.Equal(t, "All set.", res.Message)
	assert.Equal(t, 4, res.CreditsRemaining)
	assert.Equal(t, canvasId, res.CanvasId)

	require.Len(t, factory.uow.credits.txs, 1)
	assert.Equal(t, entity.CreditTransactionConsume, factory.uow.credits.txs[0].TransactionType)
}

func TestAgentExecuteInsufficientCredits(t *testing.T) {
	factory := newFakeFactory()
	userId := seedUser(factory, 0)
	canvasId := seedCanvas(factory, userId)

	svc := newTestAgentService(factory, &scriptedProvider{})
	_, err := svc.Execute(context.Background(), userId, &dto.AgentExecuteRequest{
		CanvasId: canvasId,
		Message:  "summarize",
	})

	var fiberErr *fiber.Error
	require.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, fiber.StatusPaymentRequired, fiberErr.Code)
}

func TestAgentExecuteToolCallMutatesCanvas(t *testing.T) {
	factory := newFakeFactory()
	userId := seedUser(factory, 5)
	canvasId := seedCanvas(factory, userId)

	args, _ := json.Marshal(map[string]interface{}{
		"old_text": "API",
		"new_text": "gateway",
	})
	provider := &scriptedProvider{turns: []llm.Completion{
		{ToolCalls: []llm.ToolCall{{ID: "1", Name: "replace_text", Args: args}}},
		{Content: "Replaced it."},
	}}
	svc := newTestAgentService(factory, provider)

	res, err := svc.Execute(context.Background(), userId, &dto.AgentExecuteRequest{
		CanvasId: canvasId,
		Message:  "replace API with gateway",
	})
	require.NoError(t, err)
	assert.Equal(t, "Replaced it.", res.Message)

	saved := factory.uow.canvases.canvases[canvasId]
	ix, err := prosemirror.NewIndex(saved.Content)
	require.NoError(t, err)
	assert.Contains(t, ix.ExtractText(), "gateway")
}

func TestAgentExecuteProviderFailureStillCharges(t *testing.T) {
	factory := newFakeFactory()
	userId := seedUser(factory, 5)
	canvasId := seedCanvas(factory, userId)

	provider := &scriptedProvider{err: assert.AnError}
	svc := newTestAgentService(factory, provider)

	// The run absorbs oracle failures into an apology turn, so the
	// caller sees a successful (charged) response.
	res, err := svc.Execute(context.Background(), userId, &dto.AgentExecuteRequest{
		CanvasId: canvasId,
		Message:  "summarize",
	})
	require.NoError(t, err)
	assert.Contains(t, res.Message, "I encountered an error")
	assert.Equal(t, 4, res.CreditsRemaining)

	// Only the consume row, no refund.
	require.Len(t, factory.uow.credits.txs, 1)
}

func TestAgentExecuteStreamEmitsEvents(t *testing.T) {
	factory := newFakeFactory()
	userId := seedUser(factory, 5)
	canvasId := seedCanvas(factory, userId)

	args, _ := json.Marshal(map[string]interface{}{"query": "API"})
	provider := &scriptedProvider{turns: []llm.Completion{
		{ToolCalls: []llm.ToolCall{{ID: "1", Name: "search_canvas", Args: args}}},
		{Content: "Found it."},
	}}
	svc := newTestAgentService(factory, provider)

	var events []agent.Event
	res, err := svc.ExecuteStream(context.Background(), userId, &dto.AgentExecuteRequest{
		CanvasId: canvasId,
		Message:  "find API",
	}, func(ev agent.Event) {
		events = append(events, ev)
	})
	require.NoError(t, err)
	assert.Equal(t, "Found it.", res.Message)

	require.Len(t, events, 3)
	assert.Equal(t, agent.EventToolCall, events[0].Type)
	assert.Equal(t, "search_canvas", events[0].ToolName)
	assert.Equal(t, agent.EventToolResult, events[1].Type)
	assert.Equal(t, agent.EventResponse, events[2].Type)
}

func TestAgentInfoListsTools(t *testing.T) {
	factory := newFakeFactory()
	svc := newTestAgentService(factory, &scriptedProvider{})

	info := svc.Info()
	assert.Equal(t, agent.MaxToolCalls, info.MaxToolCalls)

	names := make([]string, 0, len(info.Tools))
	for _, tool := range info.Tools {
		names = append(names, tool.Name)
	}
	assert.Contains(t, names, "get_canvas_text")
	assert.Contains(t, names, "replace_text")
	assert.Contains(t, names, "add_section")
	assert.Len(t, info.Tools, 7)
}
