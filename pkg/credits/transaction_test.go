package credits

import (
	"context"
	"errors"
	"testing"

	"ai-canvas-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLedger struct {
	debitResult  Result
	refundResult Result
	debits       int
	refunds      int
}

func (l *fakeLedger) Debit(ctx context.Context, userId uuid.UUID, amount int) Result {
	l.debits++
	return l.debitResult
}

func (l *fakeLedger) Refund(ctx context.Context, userId uuid.UUID, amount int) Result {
	l.refunds++
	return l.refundResult
}

func (l *fakeLedger) Balance(ctx context.Context, userId uuid.UUID) (int, error) {
	return l.debitResult.Remaining, nil
}

func TestRunSuccess(t *testing.T) {
	ledger := &fakeLedger{debitResult: Ok(4)}
	tx := NewTransaction(ledger, logger.NewNopLogger())

	remaining, err := tx.Run(context.Background(), uuid.New(), func(ctx context.Context) error {
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 4, remaining)
	assert.Equal(t, 1, ledger.debits)
	assert.Equal(t, 0, ledger.refunds)
}

func TestRunInsufficientCredits(t *testing.T) {
	ledger := &fakeLedger{debitResult: Failed(ErrInsufficientCredits)}
	tx := NewTransaction(ledger, logger.NewNopLogger())

	invoked := false
	_, err := tx.Run(context.Background(), uuid.New(), func(ctx context.Context) error {
		invoked = true
		return nil
	})
	assert.ErrorIs(t, err, ErrInsufficientCredits)
	assert.False(t, invoked)
	assert.Equal(t, 0, ledger.refunds)
}

func TestRunAccountNotFound(t *testing.T) {
	ledger := &fakeLedger{debitResult: Failed(ErrAccountNotFound)}
	tx := NewTransaction(ledger, logger.NewNopLogger())

	_, err := tx.Run(context.Background(), uuid.New(), func(ctx context.Context) error {
		return nil
	})
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestRunDebitFailureWithoutKind(t *testing.T) {
	ledger := &fakeLedger{debitResult: Result{Success: false}}
	tx := NewTransaction(ledger, logger.NewNopLogger())

	_, err := tx.Run(context.Background(), uuid.New(), func(ctx context.Context) error {
		return nil
	})
	assert.ErrorIs(t, err, ErrLedger)
}

func TestRunRefundsOnFailure(t *testing.T) {
	ledger := &fakeLedger{debitResult: Ok(4), refundResult: Ok(5)}
	tx := NewTransaction(ledger, logger.NewNopLogger())

	opErr := errors.New("model unavailable")
	remaining, err := tx.Run(context.Background(), uuid.New(), func(ctx context.Context) error {
		return opErr
	})
	assert.ErrorIs(t, err, opErr)
	assert.Equal(t, 5, remaining)
	assert.Equal(t, 1, ledger.debits)
	assert.Equal(t, 1, ledger.refunds)
}

func TestRunRefundFailureIsSwallowed(t *testing.T) {
	ledger := &fakeLedger{debitResult: Ok(4), refundResult: Failed(ErrLedger)}
	tx := NewTransaction(ledger, logger.NewNopLogger())

	opErr := errors.New("model unavailable")
	remaining, err := tx.Run(context.Background(), uuid.New(), func(ctx context.Context) error {
		return opErr
	})
	// The caller sees the operation's error, not the refund's
	assert.ErrorIs(t, err, opErr)
	assert.Equal(t, 4, remaining)
	assert.Equal(t, 1, ledger.refunds)
}
