package gateway

import (
	"context"

	"github.com/shopspring/decimal"
)

// Gateway is a remote payment processor.
// A returned error is a transport or protocol failure; a declined operation
// comes back as a Response whose IsSuccessful is false.
type Gateway interface {
	// Name returns the gateway name.
	Name() string
	// Refund returns money to the previously charged payment method.
	Refund(ctx context.Context, req RefundRequest) (Response, error)
	// CreateCard tokenizes a card.
	CreateCard(ctx context.Context, req CreateRequest) (Response, error)
	// CreateCustomer tokenizes a customer profile.
	CreateCustomer(ctx context.Context, req CreateRequest) (Response, error)
}

// Completer is implemented by gateways with a dedicated step that finalizes
// an offsite tokenization after the user returns from the redirect.
type Completer interface {
	CompleteCreateCard(ctx context.Context, req CompleteRequest) (Response, error)
	CompleteCreateCustomer(ctx context.Context, req CompleteRequest) (Response, error)
}

// Response is the normalized view of a gateway reply.
type Response interface {
	IsSuccessful() bool
	IsRedirect() bool
	Code() string
	Message() string
	CardReference() string
	CustomerToken() string
	TransactionReference() string
	RedirectURL() string
	// Data returns a snapshot suitable for the audit log.
	Data() map[string]any
}

// CreditCard holds the card data sent for tokenization.
type CreditCard struct {
	Number      string `json:"-"`
	CVV         string `json:"-"`
	ExpiryMonth int    `json:"expiry_month,omitempty"`
	ExpiryYear  int    `json:"expiry_year,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Email       string `json:"email,omitempty"`
}

type RefundRequest struct {
	Amount               decimal.Decimal
	Currency             string
	TransactionReference string
	Receipt              bool
	Params               map[string]any
}

type CreateRequest struct {
	Card          CreditCard
	CardName      string
	TransactionID string
	ClientIP      string
	ReturnURL     string
	CancelURL     string
	NotifyURL     string
	Amount        decimal.Decimal
	Currency      string
	Params        map[string]any
}

type CompleteRequest struct {
	TransactionID string
	ClientIP      string
	Amount        decimal.Decimal
	Currency      string
	Params        map[string]any
}

// Result is a plain Response value.
type Result struct {
	Successful  bool
	Redirect    bool
	ErrorCode   string
	Text        string
	CardRef     string
	CustomerRef string
	TxReference string
	RedirectTo  string
	Raw         map[string]any
}

func (r *Result) IsSuccessful() bool           { return r.Successful }
func (r *Result) IsRedirect() bool             { return r.Redirect }
func (r *Result) Code() string                 { return r.ErrorCode }
func (r *Result) Message() string              { return r.Text }
func (r *Result) CardReference() string        { return r.CardRef }
func (r *Result) CustomerToken() string        { return r.CustomerRef }
func (r *Result) TransactionReference() string { return r.TxReference }
func (r *Result) RedirectURL() string          { return r.RedirectTo }

func (r *Result) Data() map[string]any {
	data := map[string]any{
		"successful": r.Successful,
		"redirect":   r.Redirect,
	}
	for k, v := range map[string]string{
		"code":                  r.ErrorCode,
		"message":               r.Text,
		"card_reference":        r.CardRef,
		"customer_token":        r.CustomerRef,
		"transaction_reference": r.TxReference,
		"redirect_url":          r.RedirectTo,
	} {
		if v != "" {
			data[k] = v
		}
	}
	if len(r.Raw) > 0 {
		data["raw"] = r.Raw
	}
	return data
}
