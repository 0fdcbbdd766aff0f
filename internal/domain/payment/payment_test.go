package payment_test

import (
	"testing"

	"github.com/cassiomorais/payment-orchestrator/internal/domain/errors"
	"github.com/cassiomorais/payment-orchestrator/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usd(amount string) payment.Money {
	return payment.Money{Amount: decimal.RequireFromString(amount), Currency: "USD"}
}

func capturedPayment(t *testing.T, amount string) *payment.Payment {
	t.Helper()
	p, err := payment.NewPayment("mock", usd(amount))
	require.NoError(t, err)
	p.Status = payment.StatusCaptured
	return p
}

func TestNewPayment_Valid(t *testing.T) {
	p, err := payment.NewPayment("mock", usd("100.00"))
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCreated, p.Status)
	assert.NotEmpty(t, p.Identifier)
	assert.False(t, p.IsPersisted())
	assert.True(t, p.RefundedAmount.IsZero())
}

func TestNewPayment_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		gateway string
		money   payment.Money
	}{
		{"negative amount", "mock", usd("-1")},
		{"empty currency", "mock", payment.Money{Amount: decimal.NewFromInt(1)}},
		{"short currency", "mock", payment.Money{Amount: decimal.NewFromInt(1), Currency: "US"}},
		{"empty gateway", "", usd("1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := payment.NewPayment(tt.gateway, tt.money)
			assert.ErrorIs(t, err, errors.ErrValidationFailed)
		})
	}
}

func TestNewPayment_IdentifiersAreUnique(t *testing.T) {
	a, err := payment.NewPayment("mock", usd("1"))
	require.NoError(t, err)
	b, err := payment.NewPayment("mock", usd("1"))
	require.NoError(t, err)
	assert.NotEqual(t, a.Identifier, b.Identifier)
}

func TestPayment_MarkPersisted(t *testing.T) {
	p, err := payment.NewPayment("mock", usd("1"))
	require.NoError(t, err)

	p.MarkPersisted()
	id := p.ID
	assert.True(t, p.IsPersisted())
	assert.False(t, p.CreatedAt.IsZero())

	p.MarkPersisted()
	assert.Equal(t, id, p.ID)
}

func TestPayment_Transitions(t *testing.T) {
	tests := []struct {
		from    payment.PaymentStatus
		to      payment.PaymentStatus
		allowed bool
	}{
		{payment.StatusCreated, payment.StatusAuthorized, true},
		{payment.StatusCreated, payment.StatusCaptured, true},
		{payment.StatusAuthorized, payment.StatusCaptured, true},
		{payment.StatusCaptured, payment.StatusRefunded, true},
		{payment.StatusCaptured, payment.StatusPartiallyRefunded, true},
		{payment.StatusPartiallyRefunded, payment.StatusRefunded, true},
		{payment.StatusPartiallyRefunded, payment.StatusPartiallyRefunded, true},
		{payment.StatusCaptured, payment.StatusCreated, false},
		{payment.StatusRefunded, payment.StatusCaptured, false},
		{payment.StatusAuthorized, payment.StatusRefunded, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			p := &payment.Payment{Status: tt.from}
			err := p.TransitionTo(tt.to)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.to, p.Status)
			} else {
				assert.ErrorIs(t, err, errors.ErrInvalidStateTransition)
				assert.Equal(t, tt.from, p.Status)
			}
		})
	}
}

func TestPayment_CanRefund(t *testing.T) {
	for _, status := range []payment.PaymentStatus{
		payment.StatusCreated, payment.StatusAuthorized, payment.StatusRefunded,
		payment.StatusVoid, payment.StatusError,
	} {
		p := &payment.Payment{Status: status, Money: usd("10")}
		assert.False(t, p.CanRefund(), status)
		assert.True(t, p.MaxRefundAmount().IsZero(), status)
	}

	p := &payment.Payment{Status: payment.StatusPartiallyRefunded, Money: usd("10")}
	assert.True(t, p.CanRefund())
	assert.True(t, p.MaxRefundAmount().Equal(decimal.NewFromInt(10)))
}

func TestPayment_ApplyRefund_Partial(t *testing.T) {
	p := capturedPayment(t, "100")

	require.NoError(t, p.ApplyRefund(decimal.NewFromInt(40)))
	assert.Equal(t, payment.StatusPartiallyRefunded, p.Status)
	assert.True(t, p.Money.Amount.Equal(decimal.NewFromInt(60)))
	assert.True(t, p.RefundedAmount.Equal(decimal.NewFromInt(40)))

	require.NoError(t, p.ApplyRefund(decimal.NewFromInt(60)))
	assert.Equal(t, payment.StatusRefunded, p.Status)
	assert.True(t, p.RefundedAmount.Equal(decimal.NewFromInt(100)))
	assert.False(t, p.CanRefund())
}

func TestPayment_ApplyRefund_Full(t *testing.T) {
	p := capturedPayment(t, "100")

	require.NoError(t, p.ApplyRefund(decimal.NewFromInt(100)))
	assert.Equal(t, payment.StatusRefunded, p.Status)
	assert.True(t, p.Money.Amount.Equal(decimal.NewFromInt(100)))
}

func TestPayment_ApplyRefund_InvalidAmount(t *testing.T) {
	p := capturedPayment(t, "100")

	assert.ErrorIs(t, p.ApplyRefund(decimal.Zero), errors.ErrInvalidAmount)
	assert.ErrorIs(t, p.ApplyRefund(decimal.NewFromInt(101)), errors.ErrInvalidAmount)
	assert.Equal(t, payment.StatusCaptured, p.Status)
}

func TestPayment_LinkCredential(t *testing.T) {
	p := capturedPayment(t, "1")
	id := uuid.New()

	p.LinkCredential(id)
	require.NotNil(t, p.CredentialID)
	assert.Equal(t, id, *p.CredentialID)

	p.UnlinkCredential()
	assert.Nil(t, p.CredentialID)
}
