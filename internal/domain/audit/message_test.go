package audit

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	paymentID := uuid.New()
	msg := NewMessage(paymentID, TypeRefundedResponse, "TX123", map[string]any{"code": "00"})

	assert.NotEqual(t, uuid.Nil, msg.ID)
	assert.Equal(t, paymentID, msg.PaymentID)
	assert.Equal(t, TypeRefundedResponse, msg.Type)
	require.NotNil(t, msg.Reference)
	assert.Equal(t, "TX123", *msg.Reference)
	assert.Equal(t, "00", msg.Payload["code"])
	assert.False(t, msg.CreatedAt.IsZero())
}

func TestNewMessage_EmptyReference(t *testing.T) {
	msg := NewMessage(uuid.New(), TypeRefundRequest, "", nil)

	assert.Nil(t, msg.Reference)
	assert.NotNil(t, msg.Payload)
}

func TestMessageTypeNames(t *testing.T) {
	assert.Equal(t, "CreateCardRequest", CreateRequest("Card"))
	assert.Equal(t, "CreateCustomerResponse", CreateResponse("Customer"))
	assert.Equal(t, "CreateCardRedirectResponse", CreateRedirectResponse("Card"))
	assert.Equal(t, "CreateCustomerError", CreateError("Customer"))
	assert.Equal(t, "CompleteCreateCardRequest", CompleteCreateRequest("Card"))
	assert.Equal(t, "CompleteCreateCardResponse", CompleteCreateResponse("Card"))
	assert.Equal(t, "CompleteCreateCustomerError", CompleteCreateError("Customer"))
}
