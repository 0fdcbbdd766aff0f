package service

import (
	"context"

	"github.com/cassiomorais/payment-orchestrator/internal/domain/credential"
	"github.com/cassiomorais/payment-orchestrator/internal/domain/payment"
	"github.com/cassiomorais/payment-orchestrator/internal/gateway"
)

type (
	// BeforeRefundHook may mutate the request before it is dispatched.
	BeforeRefundHook func(ctx context.Context, p *payment.Payment, req *gateway.RefundRequest)

	// RefundedHook observes a successful refund after the payment was updated.
	RefundedHook func(ctx context.Context, p *payment.Payment, amount payment.Money, resp *GatewayResponse)

	// BeforeCompleteCreateHook may mutate a completion request before it is dispatched.
	BeforeCompleteCreateHook func(ctx context.Context, kind credential.Kind, p *payment.Payment, req *gateway.CompleteRequest)

	// CredentialStoredHook observes a credential that received its gateway reference.
	CredentialStoredHook func(ctx context.Context, p *payment.Payment, c *credential.Credential)
)

// Hooks is a typed observer registry. Callbacks run synchronously in
// registration order. A nil *Hooks fires nothing.
type Hooks struct {
	beforeRefund         []BeforeRefundHook
	refunded             []RefundedHook
	beforeCompleteCreate []BeforeCompleteCreateHook
	credentialStored     []CredentialStoredHook
}

func NewHooks() *Hooks {
	return &Hooks{}
}

func (h *Hooks) OnBeforeRefund(fn BeforeRefundHook) {
	h.beforeRefund = append(h.beforeRefund, fn)
}

func (h *Hooks) OnRefunded(fn RefundedHook) {
	h.refunded = append(h.refunded, fn)
}

func (h *Hooks) OnBeforeCompleteCreate(fn BeforeCompleteCreateHook) {
	h.beforeCompleteCreate = append(h.beforeCompleteCreate, fn)
}

func (h *Hooks) OnCredentialStored(fn CredentialStoredHook) {
	h.credentialStored = append(h.credentialStored, fn)
}

func (h *Hooks) fireBeforeRefund(ctx context.Context, p *payment.Payment, req *gateway.RefundRequest) {
	if h == nil {
		return
	}
	for _, fn := range h.beforeRefund {
		fn(ctx, p, req)
	}
}

func (h *Hooks) fireRefunded(ctx context.Context, p *payment.Payment, amount payment.Money, resp *GatewayResponse) {
	if h == nil {
		return
	}
	for _, fn := range h.refunded {
		fn(ctx, p, amount, resp)
	}
}

func (h *Hooks) fireBeforeCompleteCreate(ctx context.Context, kind credential.Kind, p *payment.Payment, req *gateway.CompleteRequest) {
	if h == nil {
		return
	}
	for _, fn := range h.beforeCompleteCreate {
		fn(ctx, kind, p, req)
	}
}

func (h *Hooks) fireCredentialStored(ctx context.Context, p *payment.Payment, c *credential.Credential) {
	if h == nil {
		return
	}
	for _, fn := range h.credentialStored {
		fn(ctx, p, c)
	}
}
