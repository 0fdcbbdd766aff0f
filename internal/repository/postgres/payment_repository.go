package postgres

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/cassiomorais/payment-orchestrator/internal/domain/errors"
	"github.com/cassiomorais/payment-orchestrator/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const paymentColumns = `id, identifier, gateway, status, amount::text, currency,
	refunded_amount::text, credential_id, created_at, updated_at`

// PaymentRepository implements payment.Repository using PostgreSQL.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

func (r *PaymentRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Create inserts a new payment.
func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO payments
		 (id, identifier, gateway, status, amount, currency, refunded_amount, credential_id, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.Identifier, p.Gateway, string(p.Status),
		formatNumeric(p.Money.Amount), p.Money.Currency, formatNumeric(p.RefundedAmount),
		p.CredentialID, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domainErrors.ErrDuplicateIdentifier
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByID retrieves a payment by its ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	return scanPayment(r.db(ctx).QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
}

// GetByIdentifier retrieves a payment by its gateway-facing identifier.
func (r *PaymentRepository) GetByIdentifier(ctx context.Context, identifier string) (*payment.Payment, error) {
	return scanPayment(r.db(ctx).QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE identifier = $1`, identifier))
}

// Update writes the mutable fields. Currency and identifier never change.
func (r *PaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE payments SET
		  status=$1, amount=$2, refunded_amount=$3, credential_id=$4, updated_at=$5
		 WHERE id=$6`,
		string(p.Status), formatNumeric(p.Money.Amount), formatNumeric(p.RefundedAmount),
		p.CredentialID, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrPaymentNotFound
	}
	return nil
}

func scanPayment(s scanner) (*payment.Payment, error) {
	p := &payment.Payment{}
	var (
		status      string
		amountStr   string
		refundedStr string
	)
	err := s.Scan(
		&p.ID, &p.Identifier, &p.Gateway, &status, &amountStr, &p.Money.Currency,
		&refundedStr, &p.CredentialID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}

	p.Status = payment.PaymentStatus(status)
	if p.Money.Amount, err = parseNumeric(amountStr); err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}
	if p.RefundedAmount, err = parseNumeric(refundedStr); err != nil {
		return nil, fmt.Errorf("parse refunded amount: %w", err)
	}
	return p, nil
}
