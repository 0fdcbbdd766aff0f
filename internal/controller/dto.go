package controller

import (
	"time"

	"github.com/cassiomorais/payment-orchestrator/internal/domain/audit"
	"github.com/cassiomorais/payment-orchestrator/internal/domain/payment"
	"github.com/cassiomorais/payment-orchestrator/internal/gateway"
	"github.com/cassiomorais/payment-orchestrator/internal/service"
	"github.com/shopspring/decimal"
)

// --- Request DTOs ---
// Amounts travel as JSON strings or numbers and are decoded straight into
// decimals, so no float rounding happens at the edge.

// CreatePaymentRequest registers a payment. Gateway falls back to the
// configured default.
type CreatePaymentRequest struct {
	Gateway           string          `json:"gateway" validate:"omitempty,max=64"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency" validate:"required,len=3,uppercase"`
	CapturedReference string          `json:"captured_reference,omitempty" validate:"max=255"`
}

// RefundPaymentRequest refunds all or part of a payment. A missing amount
// refunds whatever remains. Receipt must be true.
type RefundPaymentRequest struct {
	Amount               *decimal.Decimal `json:"amount,omitempty"`
	Receipt              bool             `json:"receipt"`
	TransactionReference string           `json:"transaction_reference,omitempty" validate:"max=255"`
	Params               map[string]any   `json:"params,omitempty"`
}

// CardRequest is the raw card sent for tokenization.
type CardRequest struct {
	Number      string `json:"number" validate:"required,credit_card"`
	CVV         string `json:"cvv" validate:"omitempty,numeric,min=3,max=4"`
	ExpiryMonth int    `json:"expiry_month" validate:"omitempty,min=1,max=12"`
	ExpiryYear  int    `json:"expiry_year" validate:"omitempty,min=2000"`
	FirstName   string `json:"first_name" validate:"max=100"`
	LastName    string `json:"last_name" validate:"max=100"`
	Email       string `json:"email" validate:"omitempty,email"`
}

// StoreCredentialRequest tokenizes a card or customer profile for a payment.
type StoreCredentialRequest struct {
	Card          CardRequest    `json:"card"`
	CardName      string         `json:"card_name,omitempty" validate:"max=255"`
	TransactionID string         `json:"transaction_id,omitempty" validate:"max=255"`
	OwnerID       string         `json:"owner_id,omitempty" validate:"max=255"`
	Params        map[string]any `json:"params,omitempty"`
}

// --- Response DTOs ---

// PaymentResponse represents a payment in API responses.
type PaymentResponse struct {
	ID             string          `json:"id"`
	Identifier     string          `json:"identifier"`
	Gateway        string          `json:"gateway"`
	Status         string          `json:"status"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	RefundedAmount decimal.Decimal `json:"refunded_amount"`
	CredentialID   *string         `json:"credential_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// MessageResponse is one audit log entry.
type MessageResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Reference  *string        `json:"reference,omitempty"`
	Payload    map[string]any `json:"payload"`
	SuccessURL string         `json:"success_url,omitempty"`
	FailureURL string         `json:"failure_url,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// GatewayResultResponse is the outcome of an orchestrated gateway call.
type GatewayResultResponse struct {
	Successful  bool             `json:"successful"`
	Redirect    bool             `json:"redirect"`
	Message     string           `json:"message"`
	RedirectURL string           `json:"redirect_url,omitempty"`
	Payment     *PaymentResponse `json:"payment,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// --- Conversion helpers ---

func FromPayment(p *payment.Payment) *PaymentResponse {
	resp := &PaymentResponse{
		ID:             p.ID.String(),
		Identifier:     p.Identifier,
		Gateway:        p.Gateway,
		Status:         string(p.Status),
		Amount:         p.Money.Amount,
		Currency:       p.Money.Currency,
		RefundedAmount: p.RefundedAmount,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.CredentialID != nil {
		cid := p.CredentialID.String()
		resp.CredentialID = &cid
	}
	return resp
}

func FromMessage(m *audit.Message) *MessageResponse {
	return &MessageResponse{
		ID:         m.ID.String(),
		Type:       m.Type,
		Reference:  m.Reference,
		Payload:    m.Payload,
		SuccessURL: m.SuccessURL,
		FailureURL: m.FailureURL,
		CreatedAt:  m.CreatedAt,
	}
}

func FromGatewayResponse(resp *service.GatewayResponse, p *payment.Payment) *GatewayResultResponse {
	return &GatewayResultResponse{
		Successful:  resp.IsSuccessful(),
		Redirect:    resp.IsRedirect(),
		Message:     resp.Message,
		RedirectURL: resp.RedirectURL,
		Payment:     FromPayment(p),
	}
}

func (c CardRequest) toCreditCard() gateway.CreditCard {
	return gateway.CreditCard{
		Number:      c.Number,
		CVV:         c.CVV,
		ExpiryMonth: c.ExpiryMonth,
		ExpiryYear:  c.ExpiryYear,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
	}
}
