package credits

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrAccountNotFound     = errors.New("credit account not found")
	ErrLedger              = errors.New("credit ledger error")
)

// Result is the outcome of one ledger round trip. Remaining is the
// best-known balance after the operation; Err classifies the failure
// when Success is false.
type Result struct {
	Success   bool
	Remaining int
	Err       error
}

func Ok(remaining int) Result {
	return Result{Success: true, Remaining: remaining}
}

func Failed(err error) Result {
	return Result{Success: false, Err: err}
}

// Ledger is the external balance authority. Each call is a single
// round trip; balances are never cached across calls.
type Ledger interface {
	Debit(ctx context.Context, userId uuid.UUID, amount int) Result
	Refund(ctx context.Context, userId uuid.UUID, amount int) Result
	Balance(ctx context.Context, userId uuid.UUID) (int, error)
}
