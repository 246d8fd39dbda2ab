package dto

import "github.com/google/uuid"

type TopupRequest struct {
	PackageSlug string `json:"package_slug" validate:"required,oneof=starter standard plus"`
}

type TopupResponse struct {
	OrderId     uuid.UUID `json:"order_id"`
	SnapToken   string    `json:"snap_token"`
	RedirectURL string    `json:"redirect_url"`
	Credits     int       `json:"credits"`
	GrossAmount int64     `json:"gross_amount"`
}

type CreditPackageResponse struct {
	Slug    string `json:"slug"`
	Name    string `json:"name"`
	Credits int    `json:"credits"`
	Price   int64  `json:"price"`
}

type MidtransWebhookRequest struct {
	OrderId           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
}
