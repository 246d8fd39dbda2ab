package dto

import "github.com/google/uuid"

type AgentExecuteRequest struct {
	CanvasId  uuid.UUID `json:"canvas_id" validate:"required"`
	Message   string    `json:"message" validate:"required,min=1"`
	ThreadId  string    `json:"thread_id"`
}

type AgentExecuteResponse struct {
	Message          string    `json:"message"`
	CanvasId         uuid.UUID `json:"canvas_id"`
	CreditsRemaining int       `json:"credits_remaining"`
}

type AgentToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type AgentInfoResponse struct {
	Tools        []AgentToolInfo `json:"tools"`
	MaxToolCalls int             `json:"max_tool_calls"`
}
