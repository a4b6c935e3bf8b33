// Package accounts provides repositories for account rows, which own the
// credit balance. Every balance mutation is a single conditional UPDATE so
// concurrent spends and grants cannot interleave a read with a write.
package accounts

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

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query := `
		INSERT INTO accounts (username, email, password_hash, federated_subject, credits)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		account.Username, account.Email, account.PasswordHash,
		account.FederatedSubject, account.Credits).
		Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return account, nil
}

const accountColumns = `id, username, email, COALESCE(password_hash, ''), federated_subject, credits, created_at, updated_at`

func (r *PostgresRepository) scanAccount(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	err := row.Scan(&account.ID, &account.Username, &account.Email,
		&account.PasswordHash, &account.FederatedSubject, &account.Credits,
		&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return account, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByLogin(ctx context.Context, emailOrUsername string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1 OR username = $1`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, emailOrUsername))
}

func (r *PostgresRepository) AddCredits(ctx context.Context, id string, amount int64) (int64, error) {
	query := `
		UPDATE accounts SET credits = credits + $2, updated_at = now()
		WHERE id = $1
		RETURNING credits
	`
	var balance int64
	if err := r.db.QueryRowContext(ctx, query, id, amount).Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return balance, nil
}

// TryDecrement relies on the WHERE clause for the balance check so that two
// racing spenders can never both succeed on the last credit.
func (r *PostgresRepository) TryDecrement(ctx context.Context, id string, amount int64) (int64, error) {
	query := `
		UPDATE accounts SET credits = credits - $2, updated_at = now()
		WHERE id = $1 AND credits >= $2
		RETURNING credits
	`
	var balance int64
	if err := r.db.QueryRowContext(ctx, query, id, amount).Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorInsufficientCredits
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return balance, nil
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id string, username string, email string) error {
	query := `
		UPDATE accounts SET username = $2, email = $3, updated_at = now()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, username, email)
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrorConflict
		}
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}
