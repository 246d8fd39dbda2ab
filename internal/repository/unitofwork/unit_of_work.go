package unitofwork

import (
	"context"

	"ai-canvas-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	CanvasRepository() contract.CanvasRepository
	CreditTransactionRepository() contract.CreditTransactionRepository
}
