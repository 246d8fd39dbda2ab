package entity

import (
	"time"

	"ai-canvas-be/pkg/prosemirror"

	"github.com/google/uuid"
)

type Canvas struct {
	Id          uuid.UUID
	Name        string
	Description *string
	Content     *prosemirror.Node
	IsFavorite  bool
	Tags        []string
	UserId      uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}
