package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/photoglow/internal/dbx"
	"github.com/dmitrijs2005/photoglow/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/photoglow/internal/server/repositories/assets"
	"github.com/dmitrijs2005/photoglow/internal/server/repositories/paymentevents"
	"github.com/dmitrijs2005/photoglow/internal/server/repositories/pendinggrants"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	PendingGrants(db dbx.DBTX) pendinggrants.Repository
	Assets(db dbx.DBTX) assets.Repository
	PaymentEvents(db dbx.DBTX) paymentevents.Repository
}
