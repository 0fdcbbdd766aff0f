package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cassiomorais/payment-orchestrator/internal/domain/audit"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const messageColumns = `id, payment_id, type, reference, payload, success_url, failure_url, created_at`

// AuditRepository implements audit.Log using PostgreSQL. Rows are never
// updated or deleted.
type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

func (r *AuditRepository) Append(ctx context.Context, msg *audit.Message) error {
	payload, err := json.Marshal(msg.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	_, err = r.db(ctx).Exec(ctx,
		`INSERT INTO payment_messages (`+messageColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		msg.ID, msg.PaymentID, msg.Type, msg.Reference, payload,
		msg.SuccessURL, msg.FailureURL, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment message: %w", err)
	}
	return nil
}

// FirstWithReference returns nil when no message of the payment carries a reference.
func (r *AuditRepository) FirstWithReference(ctx context.Context, paymentID uuid.UUID) (*audit.Message, error) {
	msg, err := scanMessage(r.db(ctx).QueryRow(ctx,
		`SELECT `+messageColumns+` FROM payment_messages
		 WHERE payment_id = $1 AND reference IS NOT NULL
		 ORDER BY created_at ASC, id ASC
		 LIMIT 1`, paymentID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return msg, err
}

func (r *AuditRepository) List(ctx context.Context, paymentID uuid.UUID) ([]*audit.Message, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+messageColumns+` FROM payment_messages
		 WHERE payment_id = $1 ORDER BY created_at ASC, id ASC`, paymentID)
	if err != nil {
		return nil, fmt.Errorf("list payment messages: %w", err)
	}
	defer rows.Close()

	var messages []*audit.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func scanMessage(s scanner) (*audit.Message, error) {
	msg := &audit.Message{}
	var payload []byte
	if err := s.Scan(
		&msg.ID, &msg.PaymentID, &msg.Type, &msg.Reference, &payload,
		&msg.SuccessURL, &msg.FailureURL, &msg.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &msg.Payload); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return msg, nil
}
