package dto

import (
	"time"

	"github.com/google/uuid"
)

type ProfileResponse struct {
	Id        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	AiCredits int       `json:"ai_credits"`
	CreatedAt time.Time `json:"created_at"`
}

type CreditBalanceResponse struct {
	Credits int `json:"credits"`
}

type CreditHistoryItem struct {
	Id              uuid.UUID `json:"id"`
	TransactionType string    `json:"transaction_type"`
	Amount          int       `json:"amount"`
	ServiceUsed     *string   `json:"service_used"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
}
