package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type CreateCanvasRequest struct {
	Name        string          `json:"name" validate:"required,min=1,max=255"`
	Description *string         `json:"description"`
	Content     json.RawMessage `json:"content"`
	Tags        []string        `json:"tags"`
}

type UpdateCanvasRequest struct {
	Id          uuid.UUID `json:"-"`
	Name        string    `json:"name" validate:"required,min=1,max=255"`
	Description *string   `json:"description"`
	IsFavorite  bool      `json:"is_favorite"`
	Tags        []string  `json:"tags"`
}

type UpdateCanvasContentRequest struct {
	Id      uuid.UUID       `json:"-"`
	Content json.RawMessage `json:"content" validate:"required"`
}

type CanvasResponse struct {
	Id          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Content     json.RawMessage `json:"content"`
	IsFavorite  bool            `json:"is_favorite"`
	Tags        []string        `json:"tags"`
	UserId      uuid.UUID       `json:"user_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   *time.Time      `json:"updated_at"`
}

type CanvasSummaryResponse struct {
	Id         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	IsFavorite bool       `json:"is_favorite"`
	Tags       []string   `json:"tags"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

type CanvasStructureResponse struct {
	Headings interface{} `json:"headings"`
}
