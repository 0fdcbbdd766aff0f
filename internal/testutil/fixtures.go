package testutil

import (
	"time"

	"github.com/cassiomorais/payment-orchestrator/internal/domain/audit"
	"github.com/cassiomorais/payment-orchestrator/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewTestPayment returns a persisted payment with the given status.
func NewTestPayment(gatewayName string, amount string, currency string, status payment.PaymentStatus) *payment.Payment {
	now := time.Now()
	return &payment.Payment{
		ID:             uuid.New(),
		Identifier:     uuid.NewString(),
		Gateway:        gatewayName,
		Status:         status,
		Money:          payment.Money{Amount: decimal.RequireFromString(amount), Currency: currency},
		RefundedAmount: decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// NewCapturedPayment returns a refundable payment.
func NewCapturedPayment(gatewayName string, amount string, currency string) *payment.Payment {
	return NewTestPayment(gatewayName, amount, currency, payment.StatusCaptured)
}

// NewReferenceMessage returns an audit message carrying reference, created at the given time.
func NewReferenceMessage(paymentID uuid.UUID, messageType, reference string, createdAt time.Time) *audit.Message {
	msg := audit.NewMessage(paymentID, messageType, reference, nil)
	msg.CreatedAt = createdAt
	return msg
}

func Decimal(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
