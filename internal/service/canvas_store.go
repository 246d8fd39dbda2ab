// FILE: internal/service/canvas_store.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-canvas-be/internal/dto"
	"ai-canvas-be/internal/pkg/logger"
	"ai-canvas-be/internal/repository/specification"
	"ai-canvas-be/internal/repository/unitofwork"
	"ai-canvas-be/pkg/agent/tools"
	"ai-canvas-be/pkg/prosemirror"

	"github.com/google/uuid"
)

// canvasStore adapts the canvas repository to the document store the
// agent tools operate on. Every lookup is scoped to the owning user,
// so a canvas id belonging to someone else reads as not found.
type canvasStore struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  IPublisherService
	log        logger.ILogger
}

func NewCanvasStore(uowFactory unitofwork.RepositoryFactory, publisher IPublisherService, log logger.ILogger) tools.CanvasStore {
	return &canvasStore{
		uowFactory: uowFactory,
		publisher:  publisher,
		log:        log,
	}
}

func (s *canvasStore) Load(ctx context.Context, canvasId, userId uuid.UUID) (*prosemirror.Node, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	canvas, err := uow.CanvasRepository().FindOne(ctx,
		specification.ByID{ID: canvasId},
		specification.CanvasOwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if canvas == nil {
		return nil, tools.ErrCanvasNotFound
	}
	return canvas.Content, nil
}

func (s *canvasStore) Save(ctx context.Context, canvasId, userId uuid.UUID, content *prosemirror.Node) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	canvas, err := uow.CanvasRepository().FindOne(ctx,
		specification.ByID{ID: canvasId},
		specification.CanvasOwnedByUser{UserID: userId},
	)
	if err != nil {
		return err
	}
	if canvas == nil {
		return tools.ErrCanvasNotFound
	}

	now := time.Now()
	canvas.Content = content
	canvas.UpdatedAt = &now
	if err := uow.CanvasRepository().Update(ctx, canvas); err != nil {
		return err
	}

	s.notifySaved(ctx, canvasId, userId, dto.CanvasSavedSourceAgent)
	return nil
}

func (s *canvasStore) notifySaved(ctx context.Context, canvasId, userId uuid.UUID, source string) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(dto.CanvasSavedMessage{
		CanvasId: canvasId,
		UserId:   userId,
		Source:   source,
	})
	if err != nil {
		return
	}
	if err := s.publisher.Publish(ctx, payload); err != nil {
		s.log.Warn("canvas_store", "failed to publish canvas saved message", map[string]interface{}{
			"canvas_id": canvasId.String(),
			"error":     fmt.Sprintf("%v", err),
		})
	}
}
