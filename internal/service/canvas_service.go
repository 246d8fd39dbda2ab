// FILE: internal/service/canvas_service.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-canvas-be/internal/dto"
	"ai-canvas-be/internal/entity"
	"ai-canvas-be/internal/pkg/logger"
	"ai-canvas-be/internal/repository/specification"
	"ai-canvas-be/internal/repository/unitofwork"
	"ai-canvas-be/pkg/events"
	pktNats "ai-canvas-be/pkg/nats"
	"ai-canvas-be/pkg/prosemirror"

	"github.com/google/uuid"
)

type ICanvasService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateCanvasRequest) (*dto.CanvasResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.CanvasResponse, error)
	List(ctx context.Context, userId uuid.UUID, search string, favoritesOnly bool) ([]*dto.CanvasSummaryResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateCanvasRequest) (*dto.CanvasResponse, error)
	UpdateContent(ctx context.Context, userId uuid.UUID, req *dto.UpdateCanvasContentRequest) (*dto.CanvasResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	Structure(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.CanvasStructureResponse, error)
}

type canvasService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	log              logger.ILogger
}

func NewCanvasService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) ICanvasService {
	return &canvasService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		log:              log,
	}
}

func (s *canvasService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateCanvasRequest) (*dto.CanvasResponse, error) {
	content := prosemirror.EmptyDocument()
	if len(req.Content) > 0 {
		parsed, err := parseDocument(req.Content)
		if err != nil {
			return nil, err
		}
		content = parsed
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	canvas := &entity.Canvas{
		Id:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Content:     content,
		Tags:        req.Tags,
		UserId:      userId,
		CreatedAt:   time.Now(),
	}

	if err := uow.CanvasRepository().Create(ctx, canvas); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "CANVAS_CREATED",
			Data: map[string]interface{}{
				"canvas_id": canvas.Id,
				"user_id":   userId,
				"name":      canvas.Name,
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish CANVAS_CREATED event: %v\n", err)
		}
	}

	return toCanvasResponse(canvas)
}

func (s *canvasService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.CanvasResponse, error) {
	canvas, err := s.findOwned(ctx, userId, id)
	if err != nil {
		return nil, err
	}
	return toCanvasResponse(canvas)
}

func (s *canvasService) List(ctx context.Context, userId uuid.UUID, search string, favoritesOnly bool) ([]*dto.CanvasSummaryResponse, error) {
	specs := []specification.Specification{
		specification.CanvasOwnedByUser{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	}
	if search != "" {
		specs = append(specs, specification.ByName{Name: search})
	}
	if favoritesOnly {
		specs = append(specs, specification.FavoritesOnly{})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	canvases, err := uow.CanvasRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.CanvasSummaryResponse, 0, len(canvases))
	for _, c := range canvases {
		res = append(res, &dto.CanvasSummaryResponse{
			Id:         c.Id,
			Name:       c.Name,
			IsFavorite: c.IsFavorite,
			Tags:       c.Tags,
			CreatedAt:  c.CreatedAt,
			UpdatedAt:  c.UpdatedAt,
		})
	}
	return res, nil
}

func (s *canvasService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateCanvasRequest) (*dto.CanvasResponse, error) {
	canvas, err := s.findOwned(ctx, userId, req.Id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	canvas.Name = req.Name
	canvas.Description = req.Description
	canvas.IsFavorite = req.IsFavorite
	canvas.Tags = req.Tags
	canvas.UpdatedAt = &now

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.CanvasRepository().Update(ctx, canvas); err != nil {
		return nil, err
	}
	return toCanvasResponse(canvas)
}

func (s *canvasService) UpdateContent(ctx context.Context, userId uuid.UUID, req *dto.UpdateCanvasContentRequest) (*dto.CanvasResponse, error) {
	content, err := parseDocument(req.Content)
	if err != nil {
		return nil, err
	}

	canvas, err := s.findOwned(ctx, userId, req.Id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	canvas.Content = content
	canvas.UpdatedAt = &now

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.CanvasRepository().Update(ctx, canvas); err != nil {
		return nil, err
	}

	s.notifySaved(ctx, canvas.Id, userId)
	return toCanvasResponse(canvas)
}

func (s *canvasService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	canvas, err := s.findOwned(ctx, userId, id)
	if err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.CanvasRepository().Delete(ctx, canvas.Id)
}

func (s *canvasService) Structure(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.CanvasStructureResponse, error) {
	canvas, err := s.findOwned(ctx, userId, id)
	if err != nil {
		return nil, err
	}

	content := canvas.Content
	if content == nil {
		content = prosemirror.EmptyDocument()
	}
	ix, err := prosemirror.NewIndex(content)
	if err != nil {
		return nil, err
	}
	return &dto.CanvasStructureResponse{Headings: ix.Structure()}, nil
}

func (s *canvasService) findOwned(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*entity.Canvas, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	canvas, err := uow.CanvasRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.CanvasOwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if canvas == nil {
		return nil, errors.New("canvas not found")
	}
	return canvas, nil
}

func (s *canvasService) notifySaved(ctx context.Context, canvasId, userId uuid.UUID) {
	if s.publisherService == nil {
		return
	}
	payload, err := json.Marshal(dto.CanvasSavedMessage{
		CanvasId: canvasId,
		UserId:   userId,
		Source:   dto.CanvasSavedSourceEditor,
	})
	if err != nil {
		return
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.log.Warn("canvas_service", "failed to publish canvas saved message", map[string]interface{}{
			"canvas_id": canvasId.String(),
			"error":     fmt.Sprintf("%v", err),
		})
	}
}

func parseDocument(raw json.RawMessage) (*prosemirror.Node, error) {
	var node prosemirror.Node
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, prosemirror.ErrInvalidDocument
	}
	if node.Type != prosemirror.TypeDoc {
		return nil, prosemirror.ErrInvalidDocument
	}
	return &node, nil
}

func toCanvasResponse(canvas *entity.Canvas) (*dto.CanvasResponse, error) {
	content := canvas.Content
	if content == nil {
		content = prosemirror.EmptyDocument()
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	return &dto.CanvasResponse{
		Id:          canvas.Id,
		Name:        canvas.Name,
		Description: canvas.Description,
		Content:     raw,
		IsFavorite:  canvas.IsFavorite,
		Tags:        canvas.Tags,
		UserId:      canvas.UserId,
		CreatedAt:   canvas.CreatedAt,
		UpdatedAt:   canvas.UpdatedAt,
	}, nil
}
