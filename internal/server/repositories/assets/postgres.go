// Package assets provides repositories for purchased image records. Rows
// are immutable once created; a NULL account_id marks a guest purchase
// addressed by email only.
package assets

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/photoglow/internal/dbx"
	"github.com/dmitrijs2005/photoglow/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, asset *models.Asset) error {
	query := `
		INSERT INTO assets (account_id, email, blob_key, plan)
		VALUES (NULLIF($1, '')::uuid, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		asset.AccountID, asset.Email, asset.BlobKey, asset.Plan).
		Scan(&asset.ID, &asset.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.Asset, error) {
	query := `
		SELECT id, account_id, email, blob_key, plan, created_at
		FROM assets
		WHERE account_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Asset
	for rows.Next() {
		a := &models.Asset{}
		if err := rows.Scan(&a.ID, &a.AccountID, &a.Email, &a.BlobKey, &a.Plan, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
