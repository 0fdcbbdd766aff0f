package service

import (
	"context"
	"fmt"

	"github.com/cassiomorais/payment-orchestrator/internal/domain/audit"
	"github.com/cassiomorais/payment-orchestrator/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentService registers payments and exposes their audit trail.
type PaymentService struct {
	payments  payment.Repository
	audit     audit.Log
	gateways  GatewayResolver
	txManager TransactionManager
}

func NewPaymentService(
	payments payment.Repository,
	auditLog audit.Log,
	gateways GatewayResolver,
	txManager TransactionManager,
) *PaymentService {
	return &PaymentService{
		payments:  payments,
		audit:     auditLog,
		gateways:  gateways,
		txManager: txManager,
	}
}

// CreatePaymentRequest holds the input for registering a payment.
type CreatePaymentRequest struct {
	Gateway  string
	Amount   decimal.Decimal
	Currency string
	// CapturedReference imports a payment already captured upstream. The
	// payment is stored as Captured and the reference is recorded as the
	// purchase response, so later refunds pick it up.
	CapturedReference string
}

// CreatePayment stores a new payment through a known gateway.
func (s *PaymentService) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*payment.Payment, error) {
	if _, _, err := s.gateways.Lookup(req.Gateway); err != nil {
		return nil, err
	}

	money, err := payment.NewMoneyFromDecimal(req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}
	p, err := payment.NewPayment(req.Gateway, money)
	if err != nil {
		return nil, err
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if req.CapturedReference != "" {
			if err := p.TransitionTo(payment.StatusCaptured); err != nil {
				return err
			}
		}
		p.MarkPersisted()
		if err := s.payments.Create(txCtx, p); err != nil {
			return err
		}
		if req.CapturedReference == "" {
			return nil
		}
		return s.audit.Append(txCtx, audit.NewMessage(p.ID, audit.TypePurchasedResponse, req.CapturedReference, map[string]any{
			"amount":                money.Amount.String(),
			"currency":              money.Currency,
			"transaction_reference": req.CapturedReference,
		}))
	})
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	return p, nil
}

func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	return s.payments.GetByID(ctx, id)
}

// GetPaymentByIdentifier resolves the idempotency identifier carried by gateway callbacks.
func (s *PaymentService) GetPaymentByIdentifier(ctx context.Context, identifier string) (*payment.Payment, error) {
	return s.payments.GetByIdentifier(ctx, identifier)
}

// ListMessages returns the audit trail of a payment, oldest first.
func (s *PaymentService) ListMessages(ctx context.Context, id uuid.UUID) ([]*audit.Message, error) {
	if _, err := s.payments.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.audit.List(ctx, id)
}
