// Package ledger is the durable store of accounts and credits. It exposes
// only named, atomic operations; no caller ever reads a balance or a claim
// flag and writes it back separately.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/photoglow/internal/common"
	"github.com/dmitrijs2005/photoglow/internal/dbx"
	"github.com/dmitrijs2005/photoglow/internal/server/models"
	"github.com/dmitrijs2005/photoglow/internal/server/repositories/repomanager"
)

// PendingGrantTTL is the retention window for unclaimed grants. Expiry is
// enforced as a filter at claim time; expired rows stay inert.
const PendingGrantTTL = 30 * 24 * time.Hour

type Service struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewService(db *sql.DB, m repomanager.RepositoryManager) *Service {
	return &Service{db: db, repomanager: m}
}

// CreateAccount inserts the account and runs the claim rule in one
// transaction: the oldest unclaimed, unexpired pending grant for the email
// becomes the initial balance, and a grant-carried image becomes an asset
// owned by the new account. Returns common.ErrorConflict when the username
// or email is already taken.
func (s *Service) CreateAccount(ctx context.Context, username, email, passwordHash string) (*models.Account, error) {
	return s.createAccount(ctx, &models.Account{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	})
}

// CreateFederatedAccount creates a password-less account for a provider
// identity, recording the provider's stable subject id. Runs the same
// claim rule as CreateAccount.
func (s *Service) CreateFederatedAccount(ctx context.Context, email, subject string) (*models.Account, error) {
	return s.createAccount(ctx, &models.Account{
		Username:         email,
		Email:            email,
		FederatedSubject: subject,
	})
}

func (s *Service) createAccount(ctx context.Context, fresh *models.Account) (*models.Account, error) {
	var account *models.Account
	email := fresh.Email

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		accountRepo := s.repomanager.Accounts(tx)
		grantRepo := s.repomanager.PendingGrants(tx)
		assetRepo := s.repomanager.Assets(tx)

		var err error
		account, err = accountRepo.Create(ctx, fresh)
		if err != nil {
			return err
		}

		grant, err := grantRepo.ClaimForEmail(ctx, email, account.ID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil
			}
			return err
		}

		balance, err := accountRepo.AddCredits(ctx, account.ID, grant.Credits)
		if err != nil {
			return err
		}
		account.Credits = balance

		if grant.ImageKey != "" {
			asset := &models.Asset{
				AccountID: account.ID,
				Email:     email,
				BlobKey:   grant.ImageKey,
				Plan:      grant.Plan,
			}
			if err := assetRepo.Create(ctx, asset); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("error creating account: %w", err)
	}
	return account, nil
}

// GrantCredits increments the balance. De-duplication of webhook
// redeliveries is the reconciler's job, not the ledger's.
func (s *Service) GrantCredits(ctx context.Context, accountID string, amount int64) (int64, error) {
	return s.repomanager.Accounts(s.db).AddCredits(ctx, accountID, amount)
}

// CreatePendingGrant stores credits purchased under an email that has no
// account yet.
func (s *Service) CreatePendingGrant(ctx context.Context, email string, credits int64, plan, sourceTransactionID, imageKey string) (*models.PendingGrant, error) {
	grant := &models.PendingGrant{
		Email:               email,
		Credits:             credits,
		Plan:                plan,
		SourceTransactionID: sourceTransactionID,
		ImageKey:            imageKey,
		ExpiresAt:           time.Now().Add(PendingGrantTTL),
	}
	if err := s.repomanager.PendingGrants(s.db).Create(ctx, grant); err != nil {
		return nil, err
	}
	return grant, nil
}

// TryDecrement atomically checks and decrements the balance, returning the
// remaining credits or common.ErrorInsufficientCredits.
func (s *Service) TryDecrement(ctx context.Context, accountID string, amount int64) (int64, error) {
	return s.repomanager.Accounts(s.db).TryDecrement(ctx, accountID, amount)
}

// SpendCreditForAsset is the download spend path: one credit is decremented
// and the asset recorded in a single transaction, so a failure to persist
// the asset never costs the user a credit.
func (s *Service) SpendCreditForAsset(ctx context.Context, account *models.Account, blobKey, plan string) (int64, error) {
	var balance int64

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		balance, err = s.repomanager.Accounts(tx).TryDecrement(ctx, account.ID, 1)
		if err != nil {
			return err
		}
		return s.repomanager.Assets(tx).Create(ctx, &models.Asset{
			AccountID: account.ID,
			Email:     account.Email,
			BlobKey:   blobKey,
			Plan:      plan,
		})
	})

	if err != nil {
		if errors.Is(err, common.ErrorInsufficientCredits) {
			return 0, common.ErrorInsufficientCredits
		}
		return 0, fmt.Errorf("error spending credit: %w", err)
	}
	return balance, nil
}

// PurgePendingGrants drops unclaimed grants for the email. Best-effort
// storage hygiene; callers ignore the result for correctness purposes.
func (s *Service) PurgePendingGrants(ctx context.Context, email string) error {
	return s.repomanager.PendingGrants(s.db).DeleteUnclaimed(ctx, email)
}

func (s *Service) GetAccountByID(ctx context.Context, id string) (*models.Account, error) {
	return s.repomanager.Accounts(s.db).GetByID(ctx, id)
}

func (s *Service) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.repomanager.Accounts(s.db).GetByEmail(ctx, email)
}

func (s *Service) GetAccountByLogin(ctx context.Context, emailOrUsername string) (*models.Account, error) {
	return s.repomanager.Accounts(s.db).GetByLogin(ctx, emailOrUsername)
}

// UpdateProfile changes the username/email pair, with the usual uniqueness
// guarantees.
func (s *Service) UpdateProfile(ctx context.Context, accountID, username, email string) error {
	return s.repomanager.Accounts(s.db).UpdateProfile(ctx, accountID, username, email)
}

// ListAssets returns the account's purchased images, newest first.
func (s *Service) ListAssets(ctx context.Context, accountID string) ([]*models.Asset, error) {
	return s.repomanager.Assets(s.db).ListByAccount(ctx, accountID)
}
