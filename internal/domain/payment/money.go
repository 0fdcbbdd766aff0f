package payment

import (
	"fmt"

	"github.com/cassiomorais/payment-orchestrator/internal/domain/errors"
	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits amounts are stored with.
const AmountScale = 4

// Money is an amount in a single ISO 4217 currency.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// NewMoney builds a Money value from a decimal string such as "10.50".
func NewMoney(amount string, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, errors.NewValidationError("amount", "must be a decimal number")
	}
	m := Money{Amount: d, Currency: currency}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// NewMoneyFromDecimal validates and wraps an already parsed amount.
func NewMoneyFromDecimal(amount decimal.Decimal, currency string) (Money, error) {
	m := Money{Amount: amount, Currency: currency}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// String returns a human-readable representation of the amount.
func (m Money) String() string {
	return m.Amount.StringFixed(2) + " " + m.Currency
}

// Validate checks that the amount is non-negative and the currency is a 3-letter code.
func (m Money) Validate() error {
	if m.Amount.IsNegative() {
		return errors.NewValidationError("amount", "must not be negative")
	}
	if err := ValidateScale(m.Amount); err != nil {
		return err
	}
	if m.Currency == "" {
		return errors.NewValidationError("currency", "cannot be empty")
	}
	if len(m.Currency) != 3 {
		return errors.NewValidationError("currency", "must be a 3-letter ISO code")
	}
	return nil
}

// ValidateScale rejects amounts that cannot be stored without rounding.
// Trailing zeros beyond the scale are accepted.
func ValidateScale(amount decimal.Decimal) error {
	if !amount.Equal(amount.Truncate(AmountScale)) {
		return errors.NewValidationError("amount", fmt.Sprintf("must have at most %d decimal places", AmountScale))
	}
	return nil
}

// Add returns m + other. Both values must share a currency.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, errors.ErrCurrencyMismatch
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Sub returns m - other. Both values must share a currency.
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, errors.ErrCurrencyMismatch
	}
	return Money{Amount: m.Amount.Sub(other.Amount), Currency: m.Currency}, nil
}

// Cmp compares the amounts of m and other, ignoring currency.
func (m Money) Cmp(other Money) int {
	return m.Amount.Cmp(other.Amount)
}

func (m Money) GreaterThan(other Money) bool {
	return m.Amount.GreaterThan(other.Amount)
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

func (m Money) IsPositive() bool {
	return m.Amount.IsPositive()
}
