package controller

import (
	"context"
	"errors"

	"ai-canvas-be/internal/dto"
	"ai-canvas-be/internal/pkg/serverutils"
	"ai-canvas-be/internal/service"
	"ai-canvas-be/pkg/agent"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAgentController interface {
	RegisterRoutes(r fiber.Router)
	Execute(ctx *fiber.Ctx) error
	ExecuteStream(ctx *fiber.Ctx) error
	Info(ctx *fiber.Ctx) error
}

type agentController struct {
	agentService service.IAgentService
}

func NewAgentController(agentService service.IAgentService) IAgentController {
	return &agentController{
		agentService: agentService,
	}
}

func (c *agentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/agent/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("execute", c.Execute)
	h.Post("execute-stream", c.ExecuteStream)
	h.Get("info", c.Info)
}

func (c *agentController) Execute(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.AgentExecuteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.agentService.Execute(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success execute agent", res))
}

func (c *agentController) ExecuteStream(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.AgentExecuteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	// The run outlives the handler, so it cannot borrow the request
	// context.
	runCtx := context.Background()

	return serverutils.StreamSSE(ctx, func(events chan<- serverutils.SSEEvent) {
		events <- serverutils.SSEEvent{Event: "started", Data: map[string]interface{}{
			"canvas_id": req.CanvasId.String(),
		}}

		res, err := c.agentService.ExecuteStream(runCtx, userId, &req, func(ev agent.Event) {
			data := map[string]interface{}{}
			switch ev.Type {
			case agent.EventToolCall:
				data["tool_name"] = ev.ToolName
				data["tool_args"] = ev.ToolArgs
			case agent.EventToolResult:
				data["tool_name"] = ev.ToolName
				data["result"] = ev.Result
			case agent.EventResponse:
				data["message"] = ev.Message
			}
			events <- serverutils.SSEEvent{Event: string(ev.Type), Data: data}
		})
		if err != nil {
			code := fiber.StatusInternalServerError
			message := err.Error()
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
				message = fiberErr.Message
			}
			events <- serverutils.SSEEvent{Event: "error", Data: map[string]interface{}{
				"code":    code,
				"message": message,
			}}
			return
		}

		events <- serverutils.SSEEvent{Event: "completed", Data: map[string]interface{}{
			"message":           res.Message,
			"canvas_id":         res.CanvasId.String(),
			"credits_remaining": res.CreditsRemaining,
		}}
	})
}

func (c *agentController) Info(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success show agent info", c.agentService.Info()))
}
