package mapper

import (
	"encoding/json"
	"time"

	"ai-canvas-be/internal/entity"
	"ai-canvas-be/internal/model"
	"ai-canvas-be/pkg/prosemirror"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CanvasMapper struct{}

func NewCanvasMapper() *CanvasMapper {
	return &CanvasMapper{}
}

func (m *CanvasMapper) ToEntity(c *model.Canvas) *entity.Canvas {
	if c == nil {
		return nil
	}

	var deletedAt *time.Time
	if c.DeletedAt.Valid {
		t := c.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	var content *prosemirror.Node
	if len(c.Content) > 0 {
		var doc prosemirror.Node
		if err := json.Unmarshal(c.Content, &doc); err == nil {
			content = &doc
		}
	}
	if content == nil {
		content = prosemirror.EmptyDocument()
	}

	var tags []string
	if len(c.Tags) > 0 {
		_ = json.Unmarshal(c.Tags, &tags)
	}

	return &entity.Canvas{
		Id:          c.Id,
		Name:        c.Name,
		Description: c.Description,
		Content:     content,
		IsFavorite:  c.IsFavorite,
		Tags:        tags,
		UserId:      c.UserId,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
		IsDeleted:   c.DeletedAt.Valid,
	}
}

func (m *CanvasMapper) ToModel(c *entity.Canvas) *model.Canvas {
	if c == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if c.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *c.DeletedAt, Valid: true}
	} else if c.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	content := c.Content
	if content == nil {
		content = prosemirror.EmptyDocument()
	}
	contentJSON, _ := json.Marshal(content)

	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, _ := json.Marshal(tags)

	return &model.Canvas{
		Id:          c.Id,
		Name:        c.Name,
		Description: c.Description,
		Content:     datatypes.JSON(contentJSON),
		IsFavorite:  c.IsFavorite,
		Tags:        datatypes.JSON(tagsJSON),
		UserId:      c.UserId,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
	}
}

func (m *CanvasMapper) ToEntities(canvases []*model.Canvas) []*entity.Canvas {
	entities := make([]*entity.Canvas, len(canvases))
	for i, c := range canvases {
		entities[i] = m.ToEntity(c)
	}
	return entities
}
