package payment

import (
	"time"

	"github.com/cassiomorais/payment-orchestrator/internal/domain/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the payment status in the state machine
type PaymentStatus string

const (
	StatusCreated           PaymentStatus = "Created"
	StatusAuthorized        PaymentStatus = "Authorized"
	StatusCaptured          PaymentStatus = "Captured"
	StatusRefunded          PaymentStatus = "Refunded"
	StatusPartiallyRefunded PaymentStatus = "PartiallyRefunded"
	StatusVoid              PaymentStatus = "Void"
	StatusError             PaymentStatus = "Error"
)

// Payment is the aggregate root for every gateway interaction.
// Money.Amount holds the remaining principal after partial refunds.
type Payment struct {
	ID             uuid.UUID
	Identifier     string
	Gateway        string
	Status         PaymentStatus
	Money          Money
	RefundedAmount decimal.Decimal
	CredentialID   *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewPayment creates an unpersisted payment in Created status.
// The identifier is generated here once and reused for every gateway call.
func NewPayment(gateway string, money Money) (*Payment, error) {
	if err := money.Validate(); err != nil {
		return nil, err
	}
	if gateway == "" {
		return nil, errors.NewValidationError("gateway", "cannot be empty")
	}

	return &Payment{
		Identifier:     uuid.NewString(),
		Gateway:        gateway,
		Status:         StatusCreated,
		Money:          money,
		RefundedAmount: decimal.Zero,
	}, nil
}

var transitions = map[PaymentStatus][]PaymentStatus{
	StatusCreated: {
		StatusAuthorized,
		StatusCaptured,
		StatusError,
		StatusVoid,
	},
	StatusAuthorized: {
		StatusCaptured,
		StatusError,
		StatusVoid,
	},
	StatusCaptured: {
		StatusRefunded,
		StatusPartiallyRefunded,
	},
	StatusPartiallyRefunded: {
		StatusPartiallyRefunded,
		StatusRefunded,
	},
	StatusRefunded: {},
	StatusVoid:     {},
	StatusError:    {},
}

// CanTransitionTo checks if the payment can transition to the given status
func (p *Payment) CanTransitionTo(newStatus PaymentStatus) bool {
	for _, allowed := range transitions[p.Status] {
		if allowed == newStatus {
			return true
		}
	}
	return false
}

// TransitionTo transitions the payment to a new status
func (p *Payment) TransitionTo(newStatus PaymentStatus) error {
	if !p.CanTransitionTo(newStatus) {
		return errors.NewDomainError(
			"invalid_transition",
			"cannot transition from "+string(p.Status)+" to "+string(newStatus),
			errors.ErrInvalidStateTransition,
		)
	}

	p.Status = newStatus
	p.UpdatedAt = time.Now()
	return nil
}

// IsPersisted reports whether the payment has been written to the store.
func (p *Payment) IsPersisted() bool {
	return p.ID != uuid.Nil
}

// MarkPersisted assigns the storage identity. It is a no-op for persisted payments.
func (p *Payment) MarkPersisted() {
	if p.IsPersisted() {
		return
	}
	now := time.Now()
	p.ID = uuid.New()
	p.CreatedAt = now
	p.UpdatedAt = now
}

// CanRefund reports whether the payment was captured and still has principal left.
func (p *Payment) CanRefund() bool {
	if p.Status != StatusCaptured && p.Status != StatusPartiallyRefunded {
		return false
	}
	return p.Money.IsPositive()
}

// MaxRefundAmount returns the remaining refundable principal, or zero.
func (p *Payment) MaxRefundAmount() decimal.Decimal {
	if !p.CanRefund() {
		return decimal.Zero
	}
	return p.Money.Amount
}

// ApplyRefund records a successful refund of amount.
// A refund of the whole remainder moves the payment to Refunded and keeps
// Money untouched; anything less is a partial refund that reduces Money.
func (p *Payment) ApplyRefund(amount decimal.Decimal) error {
	if !amount.IsPositive() || amount.GreaterThan(p.Money.Amount) {
		return errors.ErrInvalidAmount
	}

	if amount.Equal(p.Money.Amount) {
		if err := p.TransitionTo(StatusRefunded); err != nil {
			return err
		}
	} else {
		if err := p.TransitionTo(StatusPartiallyRefunded); err != nil {
			return err
		}
		p.Money.Amount = p.Money.Amount.Sub(amount)
	}

	p.RefundedAmount = p.RefundedAmount.Add(amount)
	return nil
}

// LinkCredential sets the weak reference to a stored credential.
func (p *Payment) LinkCredential(id uuid.UUID) {
	p.CredentialID = &id
	p.UpdatedAt = time.Now()
}

// UnlinkCredential clears the stored credential reference.
func (p *Payment) UnlinkCredential() {
	p.CredentialID = nil
	p.UpdatedAt = time.Now()
}
