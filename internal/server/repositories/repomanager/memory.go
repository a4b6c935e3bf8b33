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

// MemoryRepositoryManager vends shared in-memory repositories. Used by
// service-level tests; the DBTX argument is ignored so transactional and
// non-transactional callers see the same state.
type MemoryRepositoryManager struct {
	AccountRepo      *accounts.MemoryRepository
	PendingGrantRepo *pendinggrants.MemoryRepository
	AssetRepo        *assets.MemoryRepository
	PaymentEventRepo *paymentevents.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		AccountRepo:      accounts.NewMemoryRepository(),
		PendingGrantRepo: pendinggrants.NewMemoryRepository(),
		AssetRepo:        assets.NewMemoryRepository(),
		PaymentEventRepo: paymentevents.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return m.AccountRepo
}

func (m *MemoryRepositoryManager) PendingGrants(db dbx.DBTX) pendinggrants.Repository {
	return m.PendingGrantRepo
}

func (m *MemoryRepositoryManager) Assets(db dbx.DBTX) assets.Repository {
	return m.AssetRepo
}

func (m *MemoryRepositoryManager) PaymentEvents(db dbx.DBTX) paymentevents.Repository {
	return m.PaymentEventRepo
}
