package audit

import (
	"time"

	"github.com/google/uuid"
)

// Message types written around gateway calls.
const (
	TypePurchasedResponse   = "PurchasedResponse"
	TypeRefundRequest       = "RefundRequest"
	TypeRefundedResponse    = "RefundedResponse"
	TypeRefundError         = "RefundError"
	TypeGatewayErrorMessage = "GatewayErrorMessage"
)

// CreateRequest returns the type of a create-credential request message, e.g. CreateCardRequest.
func CreateRequest(kind string) string { return "Create" + kind + "Request" }

func CreateResponse(kind string) string { return "Create" + kind + "Response" }

func CreateRedirectResponse(kind string) string { return "Create" + kind + "RedirectResponse" }

func CreateError(kind string) string { return "Create" + kind + "Error" }

func CompleteCreateRequest(kind string) string { return "CompleteCreate" + kind + "Request" }

func CompleteCreateResponse(kind string) string { return "CompleteCreate" + kind + "Response" }

func CompleteCreateError(kind string) string { return "CompleteCreate" + kind + "Error" }

// Message is an immutable snapshot of a request or response exchanged with a gateway.
type Message struct {
	ID         uuid.UUID
	PaymentID  uuid.UUID
	Type       string
	Reference  *string
	Payload    map[string]any
	SuccessURL string
	FailureURL string
	CreatedAt  time.Time
}

// NewMessage creates a message for the given payment. An empty reference is stored as nil.
func NewMessage(paymentID uuid.UUID, messageType string, reference string, payload map[string]any) *Message {
	if payload == nil {
		payload = make(map[string]any)
	}
	m := &Message{
		ID:        uuid.New(),
		PaymentID: paymentID,
		Type:      messageType,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
	if reference != "" {
		m.Reference = &reference
	}
	return m
}
