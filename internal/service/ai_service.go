// FILE: internal/service/ai_service.go
package service

import (
	"context"
	"fmt"
	"strings"

	"ai-canvas-be/internal/dto"
	"ai-canvas-be/internal/pkg/logger"
	"ai-canvas-be/internal/repository/specification"
	"ai-canvas-be/internal/repository/unitofwork"
	"ai-canvas-be/pkg/credits"
	"ai-canvas-be/pkg/llm"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// improvePrompts maps each rewrite mode to its instruction. Unknown
// modes fall back to "improve".
var improvePrompts = map[string]string{
	"improve":   "Improve the following text to make it clearer, more engaging, and better written. Fix any grammar or spelling issues.",
	"rephrase":  "Rephrase the following text in a different way while keeping the same meaning.",
	"summarize": "Summarize the following text concisely while keeping the key points.",
	"expand":    "Expand the following text with more detail and depth while maintaining the original message.",
	"simplify":  "Simplify the following text to make it easier to understand. Use simpler words and shorter sentences.",
	"formal":    "Rewrite the following text in a more formal, professional tone.",
	"casual":    "Rewrite the following text in a more casual, conversational tone.",
}

type IAiService interface {
	ExecuteInstruction(ctx context.Context, userId uuid.UUID, req *dto.ExecuteInstructionRequest) (*dto.ExecuteInstructionResponse, error)
	ImproveText(ctx context.Context, userId uuid.UUID, req *dto.ImproveTextRequest) (*dto.ImproveTextResponse, error)
}

type aiService struct {
	uowFactory unitofwork.RepositoryFactory
	provider   llm.LLMProvider
	ledger     credits.Ledger
	log        logger.ILogger
}

func NewAiService(
	uowFactory unitofwork.RepositoryFactory,
	provider llm.LLMProvider,
	creditService ICreditService,
	log logger.ILogger,
) IAiService {
	return &aiService{
		uowFactory: uowFactory,
		provider:   provider,
		ledger:     creditService.ForService("ai_actions"),
		log:        log,
	}
}

func (s *aiService) ExecuteInstruction(ctx context.Context, userId uuid.UUID, req *dto.ExecuteInstructionRequest) (*dto.ExecuteInstructionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	canvas, err := uow.CanvasRepository().FindOne(ctx,
		specification.ByID{ID: req.CanvasId},
		specification.CanvasOwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if canvas == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Canvas not found")
	}

	var contextParts []string
	if canvas.Name != "" {
		contextParts = append(contextParts, fmt.Sprintf("Document Title: %s", canvas.Name))
	}
	if canvas.Description != nil && *canvas.Description != "" {
		contextParts = append(contextParts, fmt.Sprintf("Description: %s", *canvas.Description))
	}
	contextText := ""
	if len(contextParts) > 0 {
		contextText = strings.Join(contextParts, "\n") + "\n"
	}

	prompt := fmt.Sprintf(`You are an AI writing assistant helping with a document.

%sUser's instruction: %s

Respond directly with the content requested. Do not include any preamble, explanations, or meta-commentary. Just provide the actual content the user asked for.`,
		contextText, req.Instruction)

	var result string
	tx := credits.NewTransaction(s.ledger, s.log)
	remaining, err := tx.Run(ctx, userId, func(ctx context.Context) error {
		out, genErr := s.provider.Generate(ctx, prompt)
		if genErr != nil {
			return genErr
		}
		result = strings.TrimSpace(out)
		return nil
	})
	if err != nil {
		return nil, MapCreditError(err)
	}

	return &dto.ExecuteInstructionResponse{
		Result:           result,
		CreditsRemaining: remaining,
	}, nil
}

func (s *aiService) ImproveText(ctx context.Context, userId uuid.UUID, req *dto.ImproveTextRequest) (*dto.ImproveTextResponse, error) {
	actionPrompt, ok := improvePrompts[req.Mode]
	if !ok {
		actionPrompt = improvePrompts["improve"]
	}

	titleContext := ""
	if req.CanvasId != nil {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		canvas, err := uow.CanvasRepository().FindOne(ctx,
			specification.ByID{ID: *req.CanvasId},
			specification.CanvasOwnedByUser{UserID: userId},
		)
		if err != nil {
			return nil, err
		}
		if canvas != nil {
			titleContext = fmt.Sprintf("(This is from a document titled: %s)\n\n", canvas.Name)
		}
	}

	prompt := fmt.Sprintf(`%s%s

Text to process:
"%s"

Respond with ONLY the improved text. Do not include any explanations, quotes, or additional commentary.`,
		titleContext, actionPrompt, req.Text)

	var improved string
	tx := credits.NewTransaction(s.ledger, s.log)
	remaining, err := tx.Run(ctx, userId, func(ctx context.Context) error {
		out, genErr := s.provider.Generate(ctx, prompt)
		if genErr != nil {
			return genErr
		}
		improved = strings.TrimSpace(out)
		return nil
	})
	if err != nil {
		return nil, MapCreditError(err)
	}

	return &dto.ImproveTextResponse{
		ImprovedText:     improved,
		CreditsRemaining: remaining,
	}, nil
}
