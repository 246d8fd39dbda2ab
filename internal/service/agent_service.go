// FILE: internal/service/agent_service.go
package service

import (
	"context"

	"ai-canvas-be/internal/dto"
	"ai-canvas-be/internal/pkg/logger"
	"ai-canvas-be/internal/repository/specification"
	"ai-canvas-be/internal/repository/unitofwork"
	"ai-canvas-be/pkg/agent"
	"ai-canvas-be/pkg/agent/tools"
	"ai-canvas-be/pkg/credits"
	"ai-canvas-be/pkg/llm"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAgentService interface {
	Execute(ctx context.Context, userId uuid.UUID, req *dto.AgentExecuteRequest) (*dto.AgentExecuteResponse, error)
	ExecuteStream(ctx context.Context, userId uuid.UUID, req *dto.AgentExecuteRequest, emit func(agent.Event)) (*dto.AgentExecuteResponse, error)
	Info() *dto.AgentInfoResponse
}

type agentService struct {
	uowFactory unitofwork.RepositoryFactory
	provider   llm.LLMProvider
	store      tools.CanvasStore
	threads    agent.ThreadStore
	ledger     credits.Ledger
	log        logger.ILogger
}

func NewAgentService(
	uowFactory unitofwork.RepositoryFactory,
	provider llm.LLMProvider,
	store tools.CanvasStore,
	threads agent.ThreadStore,
	creditService ICreditService,
	log logger.ILogger,
) IAgentService {
	return &agentService{
		uowFactory: uowFactory,
		provider:   provider,
		store:      store,
		threads:    threads,
		ledger:     creditService.ForService("canvas_agent"),
		log:        log,
	}
}

func (s *agentService) Execute(ctx context.Context, userId uuid.UUID, req *dto.AgentExecuteRequest) (*dto.AgentExecuteResponse, error) {
	return s.execute(ctx, userId, req, nil)
}

func (s *agentService) ExecuteStream(ctx context.Context, userId uuid.UUID, req *dto.AgentExecuteRequest, emit func(agent.Event)) (*dto.AgentExecuteResponse, error) {
	return s.execute(ctx, userId, req, emit)
}

func (s *agentService) execute(ctx context.Context, userId uuid.UUID, req *dto.AgentExecuteRequest, emit func(agent.Event)) (*dto.AgentExecuteResponse, error) {
	// Ownership is checked before any credit is taken, so a bad
	// canvas id never costs the caller anything.
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

	registry := tools.NewCanvasRegistry(s.store, req.CanvasId, userId, s.log)
	runner := agent.New(s.provider, registry, s.threads, s.log)

	threadKey := req.ThreadId
	if threadKey == "" {
		threadKey = agent.DefaultThreadKey(req.CanvasId)
	}

	var message string
	tx := credits.NewTransaction(s.ledger, s.log)
	remaining, err := tx.Run(ctx, userId, func(ctx context.Context) error {
		var runErr error
		if emit != nil {
			message, runErr = runner.RunStream(ctx, threadKey, req.Message, emit)
		} else {
			message, runErr = runner.Run(ctx, threadKey, req.Message)
		}
		return runErr
	})
	if err != nil {
		return nil, MapCreditError(err)
	}

	return &dto.AgentExecuteResponse{
		Message:          message,
		CanvasId:         req.CanvasId,
		CreditsRemaining: remaining,
	}, nil
}

func (s *agentService) Info() *dto.AgentInfoResponse {
	registry := tools.NewCanvasRegistry(s.store, uuid.Nil, uuid.Nil, s.log)

	defs := registry.Definitions()
	infos := make([]dto.AgentToolInfo, 0, len(defs))
	for _, def := range defs {
		infos = append(infos, dto.AgentToolInfo{
			Name:        def.Name,
			Description: def.Description,
		})
	}
	return &dto.AgentInfoResponse{
		Tools:        infos,
		MaxToolCalls: agent.MaxToolCalls,
	}
}
