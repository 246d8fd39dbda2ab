package service

import (
	"context"
	"testing"

	"ai-canvas-be/internal/dto"
	"ai-canvas-be/internal/entity"
	"ai-canvas-be/internal/pkg/logger"
	"ai-canvas-be/pkg/llm"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingProvider captures the prompt passed to Generate.
type recordingProvider struct {
	prompt string
	reply  string
	err    error
}

func (p *recordingProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	p.prompt = prompt
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

func (p *recordingProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return p.reply, p.err
}

func (p *recordingProvider) ChatWithTools(ctx context.Context, history []llm.Message, defs []llm.ToolDefinition, options ...llm.Option) (*llm.Completion, error) {
	return &llm.Completion{Content: p.reply}, p.err
}

func newTestAiService(factory *fakeFactory, provider llm.LLMProvider) IAiService {
	log := logger.NewNopLogger()
	return NewAiService(factory, provider, NewCreditService(factory, log), log)
}

func TestExecuteInstructionIncludesCanvasContext(t *testing.T) {
	factory := newFakeFactory()
	userId := seedUser(factory, 5)
	canvasId := seedCanvas(factory, userId)
	desc := "Launch planning"
	factory.uow.canvases.canvases[canvasId].Description = &desc

	provider := &recordingProvider{reply: "  Here is the outline.  "}
	svc := newTestAiService(factory, provider)

	res, err := svc.ExecuteInstruction(context.Background(), userId, &dto.ExecuteInstructionRequest{
		CanvasId:    canvasId,
		Instruction: "Write an outline",
	})
	require.NoError(t, err)
	assert.Equal(t, "Here is the outline.", res.Result)
	assert.Equal(t, 4, res.CreditsRemaining)

	assert.Contains(t, provider.prompt, "Document Title: Plan")
	assert.Contains(t, provider.prompt, "Description: Launch planning")
	assert.Contains(t, provider.prompt, "User's instruction: Write an outline")
}

func TestExecuteInstructionUnknownCanvasIsFree(t *testing.T) {
	factory := newFakeFactory()
	userId := seedUser(factory, 5)

	svc := newTestAiService(factory, &recordingProvider{reply: "x"})
	_, err := svc.ExecuteInstruction(context.Background(), userId, &dto.ExecuteInstructionRequest{
		CanvasId:    uuid.New(),
		Instruction: "Write",
	})

	var fiberErr *fiber.Error
	require.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, fiber.StatusNotFound, fiberErr.Code)
	assert.Equal(t, 5, factory.uow.users.users[userId].AiCredits)
}

func TestImproveTextModePrompt(t *testing.T) {
	factory := newFakeFactory()
	userId := seedUser(factory, 5)

	provider := &recordingProvider{reply: "Shorter."}
	svc := newTestAiService(factory, provider)

	res, err := svc.ImproveText(context.Background(), userId, &dto.ImproveTextRequest{
		Text: "A very long sentence.",
		Mode: "summarize",
	})
	require.NoError(t, err)
	assert.Equal(t, "Shorter.", res.ImprovedText)
	assert.Contains(t, provider.prompt, "Summarize the following text")
	assert.Contains(t, provider.prompt, `"A very long sentence."`)
}

func TestImproveTextUnknownModeFallsBack(t *testing.T) {
	factory := newFakeFactory()
	userId := seedUser(factory, 5)

	provider := &recordingProvider{reply: "Better."}
	svc := newTestAiService(factory, provider)

	_, err := svc.ImproveText(context.Background(), userId, &dto.ImproveTextRequest{Text: "hi"})
	require.NoError(t, err)
	assert.Contains(t, provider.prompt, "Improve the following text")
}

func TestImproveTextRefundsOnProviderFailure(t *testing.T) {
	factory := newFakeFactory()
	userId := seedUser(factory, 5)

	provider := &recordingProvider{err: assert.AnError}
	svc := newTestAiService(factory, provider)

	_, err := svc.ImproveText(context.Background(), userId, &dto.ImproveTextRequest{Text: "hi"})
	require.Error(t, err)

	// Debit then refund: balance is back where it started and both
	// movements are on the ledger.
	assert.Equal(t, 5, factory.uow.users.users[userId].AiCredits)
	require.Len(t, factory.uow.credits.txs, 2)
	assert.Equal(t, entity.CreditTransactionConsume, factory.uow.credits.txs[0].TransactionType)
	assert.Equal(t, entity.CreditTransactionRefund, factory.uow.credits.txs[1].TransactionType)
}
