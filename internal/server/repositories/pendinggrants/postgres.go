// Package pendinggrants provides repositories for credits purchased under
// an email with no account yet. The claimed flag is a one-way transition
// enforced by the claim statement's WHERE clause.
package pendinggrants

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/photoglow/internal/common"
	"github.com/dmitrijs2005/photoglow/internal/dbx"
	"github.com/dmitrijs2005/photoglow/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, grant *models.PendingGrant) error {
	query := `
		INSERT INTO pending_grants (email, credits, plan, source_transaction_id, image_key, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		grant.Email, grant.Credits, grant.Plan, grant.SourceTransactionID,
		grant.ImageKey, grant.ExpiresAt).
		Scan(&grant.ID, &grant.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return common.ErrorConflict
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ClaimForEmail selects the oldest claimable grant with FOR UPDATE SKIP
// LOCKED and flips it in the same statement, so two concurrent claimers
// cannot both win the same row.
func (r *PostgresRepository) ClaimForEmail(ctx context.Context, email string, accountID string) (*models.PendingGrant, error) {
	query := `
		UPDATE pending_grants
		SET claimed = true, claimed_at = now(), claimed_by_account_id = $2
		WHERE id = (
			SELECT id FROM pending_grants
			WHERE email = $1 AND NOT claimed AND expires_at > now()
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, credits, plan, source_transaction_id, image_key, created_at, expires_at
	`
	grant := &models.PendingGrant{Email: email, Claimed: true, ClaimedByAccountID: accountID}
	err := r.db.QueryRowContext(ctx, query, email, accountID).
		Scan(&grant.ID, &grant.Credits, &grant.Plan, &grant.SourceTransactionID,
			&grant.ImageKey, &grant.CreatedAt, &grant.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return grant, nil
}

func (r *PostgresRepository) DeleteUnclaimed(ctx context.Context, email string) error {
	query := `DELETE FROM pending_grants WHERE email = $1 AND NOT claimed`
	if _, err := r.db.ExecContext(ctx, query, email); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
