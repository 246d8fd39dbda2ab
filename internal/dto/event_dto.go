package dto

import "github.com/google/uuid"

// CanvasSavedMessage travels over the in-process bus whenever a canvas
// body is persisted, whether by the editor or by an agent tool.
type CanvasSavedMessage struct {
	CanvasId uuid.UUID `json:"canvas_id"`
	UserId   uuid.UUID `json:"user_id"`
	Source   string    `json:"source"`
}

const (
	CanvasSavedSourceEditor = "editor"
	CanvasSavedSourceAgent  = "agent"
)
