// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/photoglow/internal/dbx"
	"github.com/dmitrijs2005/photoglow/internal/server/migrations"
	"github.com/dmitrijs2005/photoglow/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/photoglow/internal/server/repositories/assets"
	"github.com/dmitrijs2005/photoglow/internal/server/repositories/paymentevents"
	"github.com/dmitrijs2005/photoglow/internal/server/repositories/pendinggrants"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

// Accounts returns an accounts.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewPostgresRepository(db)
}

// PendingGrants returns a pendinggrants.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) PendingGrants(db dbx.DBTX) pendinggrants.Repository {
	return pendinggrants.NewPostgresRepository(db)
}

// Assets returns an assets.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Assets(db dbx.DBTX) assets.Repository {
	return assets.NewPostgresRepository(db)
}

// PaymentEvents returns a paymentevents.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) PaymentEvents(db dbx.DBTX) paymentevents.Repository {
	return paymentevents.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetDialect("pgx")
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}
