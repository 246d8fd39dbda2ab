package contract

import (
	"context"

	"ai-canvas-be/internal/entity"
	"ai-canvas-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error)

	// DecrementCredits atomically deducts amount if the balance covers
	// it, returning the new balance. Insufficient balance or a missing
	// user returns (0, false, nil).
	DecrementCredits(ctx context.Context, userId uuid.UUID, amount int) (int, bool, error)

	// IncrementCredits adds amount and returns the new balance.
	IncrementCredits(ctx context.Context, userId uuid.UUID, amount int) (int, error)
}
