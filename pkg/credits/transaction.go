package credits

import (
	"context"

	"ai-canvas-be/internal/pkg/logger"

	"github.com/google/uuid"
)

const logModule = "credits"

// Transaction meters one operation: a single debit up front, then
// exactly one refund attempt if the operation fails. A refund failure
// is logged and swallowed since the caller already sees the original
// error.
type Transaction struct {
	ledger Ledger
	log    logger.ILogger
}

func NewTransaction(ledger Ledger, log logger.ILogger) *Transaction {
	return &Transaction{ledger: ledger, log: log}
}

// Run debits one credit, invokes fn, and refunds the credit when fn
// returns an error. The returned balance is the best known after all
// ledger activity; the returned error is the debit failure or fn's
// error, never a refund failure.
func (t *Transaction) Run(ctx context.Context, userId uuid.UUID, fn func(ctx context.Context) error) (int, error) {
	debit := t.ledger.Debit(ctx, userId, 1)
	if !debit.Success {
		err := debit.Err
		if err == nil {
			err = ErrLedger
		}
		t.log.Warn(logModule, "credit debit refused", map[string]interface{}{
			"user_id": userId,
			"error":   err.Error(),
		})
		return debit.Remaining, err
	}

	remaining := debit.Remaining
	if err := fn(ctx); err != nil {
		refund := t.ledger.Refund(ctx, userId, 1)
		if refund.Success {
			remaining = refund.Remaining
		} else {
			refundErr := "unknown"
			if refund.Err != nil {
				refundErr = refund.Err.Error()
			}
			t.log.Error(logModule, "credit refund failed", map[string]interface{}{
				"user_id": userId,
				"error":   refundErr,
			})
		}
		return remaining, err
	}

	return remaining, nil
}
