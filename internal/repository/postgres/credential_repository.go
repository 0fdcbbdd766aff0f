package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/cassiomorais/payment-orchestrator/internal/domain/credential"
	domainErrors "github.com/cassiomorais/payment-orchestrator/internal/domain/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CredentialRepository implements credential.Repository using PostgreSQL.
type CredentialRepository struct {
	pool *pgxpool.Pool
}

func NewCredentialRepository(pool *pgxpool.Pool) *CredentialRepository {
	return &CredentialRepository{pool: pool}
}

func (r *CredentialRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

func (r *CredentialRepository) Create(ctx context.Context, c *credential.Credential) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO stored_credentials
		 (id, kind, reference, last_four_digits, display_name, owner_id, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		c.ID, string(c.Kind), c.Reference, c.LastFourDigits, c.DisplayName, c.OwnerID, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stored credential: %w", err)
	}
	return nil
}

func (r *CredentialRepository) GetByID(ctx context.Context, id uuid.UUID) (*credential.Credential, error) {
	c := &credential.Credential{}
	var kind string
	err := r.db(ctx).QueryRow(ctx,
		`SELECT id, kind, reference, last_four_digits, display_name, owner_id, created_at, updated_at
		 FROM stored_credentials WHERE id = $1`, id,
	).Scan(&c.ID, &kind, &c.Reference, &c.LastFourDigits, &c.DisplayName, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("get stored credential: %w", err)
	}
	c.Kind = credential.Kind(kind)
	return c, nil
}

func (r *CredentialRepository) Update(ctx context.Context, c *credential.Credential) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE stored_credentials SET
		  reference=$1, last_four_digits=$2, display_name=$3, updated_at=$4
		 WHERE id=$5`,
		c.Reference, c.LastFourDigits, c.DisplayName, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update stored credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrCredentialNotFound
	}
	return nil
}

// Delete removes a credential. Payments linked to it are unlinked by the
// foreign key's ON DELETE SET NULL.
func (r *CredentialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db(ctx).Exec(ctx, `DELETE FROM stored_credentials WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete stored credential: %w", err)
	}
	return nil
}
