package service

import (
	"context"
	"fmt"

	"github.com/cassiomorais/payment-orchestrator/internal/domain/audit"
	domainErrors "github.com/cassiomorais/payment-orchestrator/internal/domain/errors"
	"github.com/cassiomorais/payment-orchestrator/internal/domain/payment"
	"github.com/cassiomorais/payment-orchestrator/internal/gateway"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RefundRequest holds the caller input for a refund.
type RefundRequest struct {
	// Amount is optional. Nil or non-positive refunds the whole remainder;
	// anything above the remainder is clamped to it.
	Amount *decimal.Decimal
	// Receipt is required; without it the refund is not eligible. It is
	// forwarded to the gateway.
	Receipt bool
	// TransactionReference overrides the reference found in the audit log.
	TransactionReference string
	Params               map[string]any
}

// RefundService refunds captured payments, fully or partially.
type RefundService struct {
	payments  payment.Repository
	audit     audit.Log
	gateways  GatewayResolver
	txManager TransactionManager
	options
}

func NewRefundService(
	payments payment.Repository,
	auditLog audit.Log,
	gateways GatewayResolver,
	txManager TransactionManager,
	opts ...Option,
) *RefundService {
	return &RefundService{
		payments:  payments,
		audit:     auditLog,
		gateways:  gateways,
		txManager: txManager,
		options:   buildOptions(opts),
	}
}

// Refund returns ErrNotEligible, without side effects, when the payment is
// not refundable or the caller did not confirm with Receipt. Gateway declines and gateway errors are reported through
// the returned GatewayResponse; only persistence failures come back as errors.
func (s *RefundService) Refund(ctx context.Context, p *payment.Payment, req RefundRequest) (*GatewayResponse, error) {
	return withLock(ctx, s.locker, s.logger, p.Identifier, func() (*GatewayResponse, error) {
		return s.refund(ctx, p, req)
	})
}

func (s *RefundService) refund(ctx context.Context, p *payment.Payment, req RefundRequest) (*GatewayResponse, error) {
	if !p.CanRefund() || !req.Receipt {
		return nil, domainErrors.ErrNotEligible
	}
	if req.Amount != nil && req.Amount.IsPositive() {
		if err := payment.ValidateScale(*req.Amount); err != nil {
			return nil, err
		}
	}

	gw, _, err := s.gateways.Lookup(p.Gateway)
	if err != nil {
		return nil, err
	}

	if err := ensurePersisted(ctx, s.payments, p); err != nil {
		return nil, err
	}

	reference := req.TransactionReference
	if reference == "" {
		first, err := s.audit.FirstWithReference(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("lookup transaction reference: %w", err)
		}
		if first != nil {
			reference = *first.Reference
		}
	}

	gwReq := gateway.RefundRequest{
		Amount:               resolveRefundAmount(p, req.Amount),
		Currency:             p.Money.Currency,
		TransactionReference: reference,
		Receipt:              req.Receipt,
		Params:               req.Params,
	}
	s.hooks.fireBeforeRefund(ctx, p, &gwReq)
	gwReq.Amount = resolveRefundAmount(p, &gwReq.Amount)
	if err := payment.ValidateScale(gwReq.Amount); err != nil {
		return nil, err
	}

	if err := s.audit.Append(ctx, audit.NewMessage(p.ID, audit.TypeRefundRequest, "", refundPayload(gwReq))); err != nil {
		return nil, fmt.Errorf("append refund request: %w", err)
	}

	logger := s.logger.With().
		Str("payment_id", p.ID.String()).
		Str("gateway", gw.Name()).
		Str("amount", gwReq.Amount.String()).
		Logger()

	raw, err := gw.Refund(ctx, gwReq)
	if err != nil {
		logger.Warn().Err(err).Msg("refund gateway call failed")
		if err := s.audit.Append(ctx, audit.NewMessage(p.ID, audit.TypeGatewayErrorMessage, "", errorPayload(err))); err != nil {
			return nil, fmt.Errorf("append gateway error: %w", err)
		}
		if err := s.payments.Update(ctx, p); err != nil {
			return nil, err
		}
		return failedResponse(err), nil
	}

	resp := newGatewayResponse(raw)
	if !raw.IsSuccessful() {
		resp.Redirect = false
		resp.Message = errorMessage(raw)
		logger.Info().Str("code", raw.Code()).Msg("refund declined")
		if err := s.audit.Append(ctx, audit.NewMessage(p.ID, audit.TypeRefundError, "", raw.Data())); err != nil {
			return nil, fmt.Errorf("append refund error: %w", err)
		}
		if err := s.payments.Update(ctx, p); err != nil {
			return nil, err
		}
		return resp, nil
	}

	if err := s.audit.Append(ctx, audit.NewMessage(p.ID, audit.TypeRefundedResponse, raw.TransactionReference(), raw.Data())); err != nil {
		return nil, fmt.Errorf("append refund response: %w", err)
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := p.ApplyRefund(gwReq.Amount); err != nil {
			return err
		}
		return s.payments.Update(txCtx, p)
	})
	if err != nil {
		return nil, fmt.Errorf("apply refund: %w", err)
	}

	resp.Message = "Payment refunded"
	logger.Info().Str("status", string(p.Status)).Msg("payment refunded")
	s.hooks.fireRefunded(ctx, p, payment.Money{Amount: gwReq.Amount, Currency: p.Money.Currency}, resp)
	return resp, nil
}

// resolveRefundAmount falls back to the remainder for missing or
// non-positive amounts and clamps anything larger.
func resolveRefundAmount(p *payment.Payment, amount *decimal.Decimal) decimal.Decimal {
	remaining := p.MaxRefundAmount()
	if amount == nil || !amount.IsPositive() || amount.GreaterThan(remaining) {
		return remaining
	}
	return *amount
}

func refundPayload(req gateway.RefundRequest) map[string]any {
	payload := map[string]any{
		"amount":                req.Amount.String(),
		"currency":              req.Currency,
		"transaction_reference": req.TransactionReference,
		"receipt":               req.Receipt,
	}
	if len(req.Params) > 0 {
		payload["params"] = req.Params
	}
	return payload
}

func errorPayload(err error) map[string]any {
	return map[string]any{"error": err.Error()}
}

// ensurePersisted writes a payment that has never been stored so that audit
// messages and callback URLs can refer to it.
func ensurePersisted(ctx context.Context, payments payment.Repository, p *payment.Payment) error {
	if p.IsPersisted() {
		return nil
	}
	p.MarkPersisted()
	if err := payments.Create(ctx, p); err != nil {
		p.ID = uuid.Nil
		return fmt.Errorf("persist payment: %w", err)
	}
	return nil
}
