// Package paymentevents provides the idempotency journal for webhook
// reconciliation. The primary key on the source transaction id is what
// makes redelivered events no-ops.
package paymentevents

import (
	"context"
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

func (r *PostgresRepository) Record(ctx context.Context, event *models.PaymentEvent) error {
	query := `
		INSERT INTO payment_events (source_transaction_id, outcome, account_id, email)
		VALUES ($1, $2, NULLIF($3, '')::uuid, $4)
	`
	_, err := r.db.ExecContext(ctx, query,
		event.SourceTransactionID, event.Outcome, event.AccountID, event.Email)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return common.ErrorConflict
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
