package dto

import "github.com/google/uuid"

type ExecuteInstructionRequest struct {
	CanvasId    uuid.UUID `json:"canvas_id" validate:"required"`
	Instruction string    `json:"instruction" validate:"required,min=1"`
}

type ExecuteInstructionResponse struct {
	Result           string `json:"result"`
	CreditsRemaining int    `json:"credits_remaining"`
}

type ImproveTextRequest struct {
	CanvasId *uuid.UUID `json:"canvas_id"`
	Text     string     `json:"text" validate:"required,min=1"`
	Mode     string     `json:"mode" validate:"omitempty,oneof=improve rephrase summarize expand simplify formal casual"`
}

type ImproveTextResponse struct {
	ImprovedText     string `json:"improved_text"`
	CreditsRemaining int    `json:"credits_remaining"`
}
