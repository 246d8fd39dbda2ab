// FILE: internal/service/payment_service.go
package service

import (
	"context"
	"crypto/sha512"
	"errors"
	"fmt"
	"os"
	"time"

	"ai-canvas-be/internal/dto"
	"ai-canvas-be/internal/entity"
	"ai-canvas-be/internal/repository/specification"
	"ai-canvas-be/internal/repository/unitofwork"

	"ai-canvas-be/pkg/events"
	pktNats "ai-canvas-be/pkg/nats"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

type creditPackage struct {
	Slug    string
	Name    string
	Credits int
	Price   int64
}

// creditPackages is the fixed top-up catalog. Prices are in IDR.
var creditPackages = []creditPackage{
	{Slug: "starter", Name: "Starter Pack", Credits: 50, Price: 25000},
	{Slug: "standard", Name: "Standard Pack", Credits: 150, Price: 60000},
	{Slug: "plus", Name: "Plus Pack", Credits: 400, Price: 140000},
}

type IPaymentService interface {
	GetPackages(ctx context.Context) ([]*dto.CreditPackageResponse, error)
	CreateTopup(ctx context.Context, userId uuid.UUID, req *dto.TopupRequest) (*dto.TopupResponse, error)
	HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error
}

type paymentService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
}

func NewPaymentService(uowFactory unitofwork.RepositoryFactory, eventPublisher *pktNats.Publisher) IPaymentService {
	return &paymentService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
	}
}

func findPackage(slug string) *creditPackage {
	for i := range creditPackages {
		if creditPackages[i].Slug == slug {
			return &creditPackages[i]
		}
	}
	return nil
}

func (s *paymentService) GetPackages(ctx context.Context) ([]*dto.CreditPackageResponse, error) {
	res := make([]*dto.CreditPackageResponse, 0, len(creditPackages))
	for _, p := range creditPackages {
		res = append(res, &dto.CreditPackageResponse{
			Slug:    p.Slug,
			Name:    p.Name,
			Credits: p.Credits,
			Price:   p.Price,
		})
	}
	return res, nil
}

func (s *paymentService) CreateTopup(ctx context.Context, userId uuid.UUID, req *dto.TopupRequest) (*dto.TopupResponse, error) {
	pkg := findPackage(req.PackageSlug)
	if pkg == nil {
		return nil, errors.New("credit package not found")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}

	// The pending row's id doubles as the midtrans order id, so the
	// webhook can find it again without extra bookkeeping.
	orderId := uuid.New()
	notes := "pending"
	serviceUsed := "topup"
	pending := &entity.AiCreditTransaction{
		Id:              orderId,
		UserId:          userId,
		TransactionType: entity.CreditTransactionTopup,
		Amount:          pkg.Credits,
		ServiceUsed:     &serviceUsed,
		Notes:           &notes,
		CreatedAt:       time.Now(),
	}
	if err := uow.CreditTransactionRepository().Create(ctx, pending); err != nil {
		return nil, err
	}

	var sClient snap.Client
	serverKey := os.Getenv("MIDTRANS_SERVER_KEY")
	env := midtrans.Sandbox
	if os.Getenv("MIDTRANS_IS_PRODUCTION") == "true" {
		env = midtrans.Production
	}
	sClient.New(serverKey, env)

	frontendURL := os.Getenv("FRONTEND_URL")
	finishRedirectURL := fmt.Sprintf("%s/app?topup=success", frontendURL)

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderId.String(),
			GrossAmt: pkg.Price,
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		Callbacks: &snap.Callbacks{
			Finish: finishRedirectURL,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: user.FullName,
			Email: user.Email,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    pkg.Slug,
				Price: pkg.Price,
				Qty:   1,
				Name:  pkg.Name,
			},
		},
		EnabledPayments: snap.AllSnapPaymentType,
	}

	snapResp, midErr := sClient.CreateTransaction(snapReq)
	if midErr != nil {
		return nil, fmt.Errorf("midtrans error: %v", midErr.GetMessage())
	}

	return &dto.TopupResponse{
		OrderId:     orderId,
		SnapToken:   snapResp.Token,
		RedirectURL: snapResp.RedirectURL,
		Credits:     pkg.Credits,
		GrossAmount: pkg.Price,
	}, nil
}

func (s *paymentService) HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error {
	fmt.Printf("\n[WEBHOOK] ========== Processing Notification ==========\n")
	fmt.Printf("[WEBHOOK] OrderId: %s | Status: %s\n", req.OrderId, req.TransactionStatus)

	serverKey := os.Getenv("MIDTRANS_SERVER_KEY")
	if serverKey == "" {
		fmt.Println("[WEBHOOK ERROR] MIDTRANS_SERVER_KEY not configured")
		return fmt.Errorf("server configuration error")
	}

	// Midtrans signature = SHA512(order_id + status_code + gross_amount + server_key)
	signatureInput := req.OrderId + req.StatusCode + req.GrossAmount + serverKey
	expectedSignature := fmt.Sprintf("%x", sha512.Sum512([]byte(signatureInput)))

	if req.SignatureKey != expectedSignature {
		fmt.Printf("[WEBHOOK ERROR] Signature mismatch for OrderId=%s\n", req.OrderId)
		return fmt.Errorf("invalid signature")
	}

	orderId, err := uuid.Parse(req.OrderId)
	if err != nil {
		fmt.Printf("[WEBHOOK ERROR] Invalid order_id format: %s\n", req.OrderId)
		return fmt.Errorf("invalid order id format")
	}

	switch req.TransactionStatus {
	case "capture", "settlement":
		// Fall through to settlement below.
	case "deny", "cancel", "expire":
		return s.markTopup(ctx, orderId, "failed")
	case "pending":
		fmt.Printf("[WEBHOOK] Payment PENDING - no action needed\n")
		return nil
	default:
		fmt.Printf("[WEBHOOK] Unknown status '%s' - no action taken\n", req.TransactionStatus)
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	topup, err := uow.CreditTransactionRepository().FindOne(ctx, specification.ByID{ID: orderId})
	if err != nil {
		return err
	}
	if topup == nil {
		fmt.Printf("[WEBHOOK ERROR] Topup order not found: %s\n", req.OrderId)
		return fmt.Errorf("topup order not found")
	}

	if topup.Notes != nil && *topup.Notes == "settled" {
		fmt.Printf("[WEBHOOK] Order already settled, skipping\n")
		return nil
	}

	balance, err := uow.UserRepository().IncrementCredits(ctx, topup.UserId, topup.Amount)
	if err != nil {
		return err
	}

	notes := "settled"
	topup.Notes = &notes
	if err := uow.CreditTransactionRepository().Update(ctx, topup); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	// The notifier sends the receipt email off this event, so the
	// payload carries the recipient address.
	var userEmail string
	if user, findErr := uow.UserRepository().FindOne(ctx, specification.ByID{ID: topup.UserId}); findErr == nil && user != nil {
		userEmail = user.Email
	}

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "CREDITS_TOPPED_UP",
			Data: map[string]interface{}{
				"user_id":  topup.UserId,
				"order_id": orderId,
				"credits":  topup.Amount,
				"balance":  balance,
				"email":    userEmail,
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish CREDITS_TOPPED_UP event: %v\n", err)
		}
	}

	fmt.Printf("[WEBHOOK] Credited %d to user %s (balance %d)\n", topup.Amount, topup.UserId, balance)
	return nil
}

func (s *paymentService) markTopup(ctx context.Context, orderId uuid.UUID, status string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	topup, err := uow.CreditTransactionRepository().FindOne(ctx, specification.ByID{ID: orderId})
	if err != nil {
		return err
	}
	if topup == nil {
		return fmt.Errorf("topup order not found")
	}
	topup.Notes = &status
	return uow.CreditTransactionRepository().Update(ctx, topup)
}
