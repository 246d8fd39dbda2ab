// FILE: internal/service/credit_service.go
package service

import (
	"context"
	"errors"
	"time"

	"ai-canvas-be/internal/dto"
	"ai-canvas-be/internal/entity"
	"ai-canvas-be/internal/pkg/logger"
	"ai-canvas-be/internal/repository/specification"
	"ai-canvas-be/internal/repository/unitofwork"
	"ai-canvas-be/pkg/credits"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICreditService interface {
	// ForService returns a ledger view that stamps every debit and
	// refund row with the given service name.
	ForService(serviceName string) credits.Ledger

	GetBalance(ctx context.Context, userId uuid.UUID) (*dto.CreditBalanceResponse, error)
	GetHistory(ctx context.Context, userId uuid.UUID) ([]*dto.CreditHistoryItem, error)
}

type creditService struct {
	uowFactory unitofwork.RepositoryFactory
	log        logger.ILogger
}

func NewCreditService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) ICreditService {
	return &creditService{
		uowFactory: uowFactory,
		log:        log,
	}
}

func (s *creditService) ForService(serviceName string) credits.Ledger {
	return &serviceLedger{svc: s, serviceName: serviceName}
}

func (s *creditService) GetBalance(ctx context.Context, userId uuid.UUID) (*dto.CreditBalanceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}
	return &dto.CreditBalanceResponse{Credits: user.AiCredits}, nil
}

func (s *creditService) GetHistory(ctx context.Context, userId uuid.UUID) ([]*dto.CreditHistoryItem, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	txs, err := uow.CreditTransactionRepository().FindAll(ctx,
		specification.Filter("user_id", userId),
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.CreditHistoryItem, 0, len(txs))
	for _, tx := range txs {
		items = append(items, &dto.CreditHistoryItem{
			Id:              tx.Id,
			TransactionType: string(tx.TransactionType),
			Amount:          tx.Amount,
			ServiceUsed:     tx.ServiceUsed,
			Notes:           tx.Notes,
			CreatedAt:       tx.CreatedAt,
		})
	}
	return items, nil
}

// serviceLedger backs credits.Ledger with the users table balance and
// an audit row per movement, both committed in one transaction.
type serviceLedger struct {
	svc         *creditService
	serviceName string
}

func (l *serviceLedger) Debit(ctx context.Context, userId uuid.UUID, amount int) credits.Result {
	uow := l.svc.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return credits.Failed(err)
	}
	defer uow.Rollback()

	remaining, ok, err := uow.UserRepository().DecrementCredits(ctx, userId, amount)
	if err != nil {
		return credits.Failed(err)
	}
	if !ok {
		// The guarded update cannot tell a missing user from an
		// insufficient balance, so look the user up to decide.
		user, findErr := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
		if findErr != nil {
			return credits.Failed(findErr)
		}
		if user == nil {
			return credits.Failed(credits.ErrAccountNotFound)
		}
		res := credits.Failed(credits.ErrInsufficientCredits)
		res.Remaining = user.AiCredits
		return res
	}

	if err := uow.CreditTransactionRepository().Create(ctx, l.row(userId, entity.CreditTransactionConsume, -amount)); err != nil {
		return credits.Failed(err)
	}
	if err := uow.Commit(); err != nil {
		return credits.Failed(err)
	}
	return credits.Ok(remaining)
}

func (l *serviceLedger) Refund(ctx context.Context, userId uuid.UUID, amount int) credits.Result {
	uow := l.svc.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return credits.Failed(err)
	}
	defer uow.Rollback()

	remaining, err := uow.UserRepository().IncrementCredits(ctx, userId, amount)
	if err != nil {
		return credits.Failed(err)
	}

	if err := uow.CreditTransactionRepository().Create(ctx, l.row(userId, entity.CreditTransactionRefund, amount)); err != nil {
		return credits.Failed(err)
	}
	if err := uow.Commit(); err != nil {
		return credits.Failed(err)
	}
	return credits.Ok(remaining)
}

func (l *serviceLedger) Balance(ctx context.Context, userId uuid.UUID) (int, error) {
	uow := l.svc.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, credits.ErrAccountNotFound
	}
	return user.AiCredits, nil
}

func (l *serviceLedger) row(userId uuid.UUID, txType entity.CreditTransactionType, amount int) *entity.AiCreditTransaction {
	serviceUsed := l.serviceName
	return &entity.AiCreditTransaction{
		Id:              uuid.New(),
		UserId:          userId,
		TransactionType: txType,
		Amount:          amount,
		ServiceUsed:     &serviceUsed,
		CreatedAt:       time.Now(),
	}
}

// MapCreditError translates ledger failures into the HTTP errors the
// AI endpoints return. Anything that is not a credit failure passes
// through untouched.
func MapCreditError(err error) error {
	switch {
	case errors.Is(err, credits.ErrInsufficientCredits):
		return fiber.NewError(fiber.StatusPaymentRequired, "Insufficient credits. Please add more credits to continue using AI features.")
	case errors.Is(err, credits.ErrAccountNotFound):
		return fiber.NewError(fiber.StatusNotFound, "User profile not found. Please contact support.")
	case errors.Is(err, credits.ErrLedger):
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to process credits. Please try again.")
	default:
		return err
	}
}
