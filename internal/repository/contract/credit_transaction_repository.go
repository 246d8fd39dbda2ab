package contract

import (
	"context"

	"ai-canvas-be/internal/entity"
	"ai-canvas-be/internal/repository/specification"
)

type CreditTransactionRepository interface {
	Create(ctx context.Context, tx *entity.AiCreditTransaction) error
	Update(ctx context.Context, tx *entity.AiCreditTransaction) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AiCreditTransaction, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AiCreditTransaction, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
