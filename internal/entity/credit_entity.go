package entity

import (
	"time"

	"github.com/google/uuid"
)

type CreditTransactionType string

const (
	CreditTransactionConsume CreditTransactionType = "consume"
	CreditTransactionRefund  CreditTransactionType = "refund"
	CreditTransactionTopup   CreditTransactionType = "topup"
)

type AiCreditTransaction struct {
	Id              uuid.UUID
	UserId          uuid.UUID
	TransactionType CreditTransactionType
	Amount          int
	ServiceUsed     *string
	RelatedId       *uuid.UUID
	Notes           *string
	CreatedAt       time.Time
}
