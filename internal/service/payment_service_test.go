package service

import (
	"context"
	"crypto/sha512"
	"fmt"
	"testing"
	"time"

	"ai-canvas-be/internal/dto"
	"ai-canvas-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPendingTopup(f *fakeFactory, userId uuid.UUID, amount int) uuid.UUID {
	orderId := uuid.New()
	notes := "pending"
	serviceUsed := "topup"
	f.uow.credits.txs = append(f.uow.credits.txs, &entity.AiCreditTransaction{
		Id:              orderId,
		UserId:          userId,
		TransactionType: entity.CreditTransactionTopup,
		Amount:          amount,
		ServiceUsed:     &serviceUsed,
		Notes:           &notes,
		CreatedAt:       time.Now(),
	})
	return orderId
}

func midtransSignature(orderId, statusCode, grossAmount, serverKey string) string {
	return fmt.Sprintf("%x", sha512.Sum512([]byte(orderId+statusCode+grossAmount+serverKey)))
}

func TestGetPackages(t *testing.T) {
	factory := newFakeFactory()
	svc := NewPaymentService(factory, nil)

	packages, err := svc.GetPackages(context.Background())
	require.NoError(t, err)
	require.Len(t, packages, 3)
	assert.Equal(t, "starter", packages[0].Slug)
	assert.Equal(t, 50, packages[0].Credits)
}

func TestHandleNotificationSettlement(t *testing.T) {
	t.Setenv("MIDTRANS_SERVER_KEY", "sk-test")

	factory := newFakeFactory()
	userId := seedUser(factory, 10)
	orderId := seedPendingTopup(factory, userId, 150)

	svc := NewPaymentService(factory, nil)
	err := svc.HandleNotification(context.Background(), &dto.MidtransWebhookRequest{
		OrderId:           orderId.String(),
		TransactionStatus: "settlement",
		StatusCode:        "200",
		GrossAmount:       "60000.00",
		SignatureKey:      midtransSignature(orderId.String(), "200", "60000.00", "sk-test"),
	})
	require.NoError(t, err)

	assert.Equal(t, 160, factory.uow.users.users[userId].AiCredits)

	row, err := factory.uow.credits.FindOne(context.Background())
	require.NoError(t, err)
	require.NotNil(t, row.Notes)
	assert.Equal(t, "settled", *row.Notes)
}

func TestHandleNotificationSettlementIsIdempotent(t *testing.T) {
	t.Setenv("MIDTRANS_SERVER_KEY", "sk-test")

	factory := newFakeFactory()
	userId := seedUser(factory, 10)
	orderId := seedPendingTopup(factory, userId, 150)

	svc := NewPaymentService(factory, nil)
	req := &dto.MidtransWebhookRequest{
		OrderId:           orderId.String(),
		TransactionStatus: "settlement",
		StatusCode:        "200",
		GrossAmount:       "60000.00",
		SignatureKey:      midtransSignature(orderId.String(), "200", "60000.00", "sk-test"),
	}

	require.NoError(t, svc.HandleNotification(context.Background(), req))
	require.NoError(t, svc.HandleNotification(context.Background(), req))

	// Credited once.
	assert.Equal(t, 160, factory.uow.users.users[userId].AiCredits)
}

func TestHandleNotificationRejectsBadSignature(t *testing.T) {
	t.Setenv("MIDTRANS_SERVER_KEY", "sk-test")

	factory := newFakeFactory()
	userId := seedUser(factory, 10)
	orderId := seedPendingTopup(factory, userId, 150)

	svc := NewPaymentService(factory, nil)
	err := svc.HandleNotification(context.Background(), &dto.MidtransWebhookRequest{
		OrderId:           orderId.String(),
		TransactionStatus: "settlement",
		StatusCode:        "200",
		GrossAmount:       "60000.00",
		SignatureKey:      "forged",
	})
	assert.EqualError(t, err, "invalid signature")
	assert.Equal(t, 10, factory.uow.users.users[userId].AiCredits)
}

func TestHandleNotificationFailureMarksRow(t *testing.T) {
	t.Setenv("MIDTRANS_SERVER_KEY", "sk-test")

	factory := newFakeFactory()
	userId := seedUser(factory, 10)
	orderId := seedPendingTopup(factory, userId, 150)

	svc := NewPaymentService(factory, nil)
	err := svc.HandleNotification(context.Background(), &dto.MidtransWebhookRequest{
		OrderId:           orderId.String(),
		TransactionStatus: "expire",
		StatusCode:        "407",
		GrossAmount:       "60000.00",
		SignatureKey:      midtransSignature(orderId.String(), "407", "60000.00", "sk-test"),
	})
	require.NoError(t, err)

	assert.Equal(t, 10, factory.uow.users.users[userId].AiCredits)
	row, _ := factory.uow.credits.FindOne(context.Background())
	require.NotNil(t, row.Notes)
	assert.Equal(t, "failed", *row.Notes)
}

func TestHandleNotificationPendingIsNoop(t *testing.T) {
	t.Setenv("MIDTRANS_SERVER_KEY", "sk-test")

	factory := newFakeFactory()
	userId := seedUser(factory, 10)
	orderId := seedPendingTopup(factory, userId, 150)

	svc := NewPaymentService(factory, nil)
	err := svc.HandleNotification(context.Background(), &dto.MidtransWebhookRequest{
		OrderId:           orderId.String(),
		TransactionStatus: "pending",
		StatusCode:        "201",
		GrossAmount:       "60000.00",
		SignatureKey:      midtransSignature(orderId.String(), "201", "60000.00", "sk-test"),
	})
	require.NoError(t, err)
	assert.Equal(t, 10, factory.uow.users.users[userId].AiCredits)
}
