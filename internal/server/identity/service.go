// Package identity resolves who is acting: local signup/login with bcrypt
// credentials and federated sign-in keyed by verified email.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/photoglow/internal/common"
	"github.com/dmitrijs2005/photoglow/internal/server/auth"
	"github.com/dmitrijs2005/photoglow/internal/server/ledger"
	"github.com/dmitrijs2005/photoglow/internal/server/models"
)

type Service struct {
	ledger        *ledger.Service
	secretKey     []byte
	tokenValidity time.Duration
}

func NewService(l *ledger.Service, secretKey []byte, tokenValidity time.Duration) *Service {
	return &Service{ledger: l, secretKey: secretKey, tokenValidity: tokenValidity}
}

// Register creates a local account and returns it together with a fresh
// access token. Claiming of pending credits happens inside account creation.
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.Account, string, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("error hashing password: %w", err)
	}

	account, err := s.ledger.CreateAccount(ctx, username, email, hash)
	if err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(account)
	if err != nil {
		return nil, "", err
	}
	return account, token, nil
}

// Authenticate verifies a username-or-email plus password pair. The failure
// mode is common.ErrorInvalidCredentials regardless of whether the account
// exists, and the missing-account path still burns a bcrypt comparison.
func (s *Service) Authenticate(ctx context.Context, login, password string) (*models.Account, string, error) {
	account, err := s.ledger.GetAccountByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.BurnPassword(password)
			return nil, "", common.ErrorInvalidCredentials
		}
		return nil, "", err
	}

	if !auth.CheckPassword(account.PasswordHash, password) {
		return nil, "", common.ErrorInvalidCredentials
	}

	token, err := s.issueToken(account)
	if err != nil {
		return nil, "", err
	}
	return account, token, nil
}

// ResolveFederated maps a verified provider identity to an account,
// creating one on first sign-in. The provider's stable subject id is
// recorded on the created account. The account has no password; only the
// federated path can sign in to it.
func (s *Service) ResolveFederated(ctx context.Context, email, subject string) (*models.Account, string, error) {
	account, err := s.ledger.GetAccountByEmail(ctx, email)
	if errors.Is(err, common.ErrorNotFound) {
		account, err = s.ledger.CreateFederatedAccount(ctx, email, subject)
		if errors.Is(err, common.ErrorConflict) {
			// lost a create race; the account exists now
			account, err = s.ledger.GetAccountByEmail(ctx, email)
		}
	}
	if err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(account)
	if err != nil {
		return nil, "", err
	}
	return account, token, nil
}

// VerifyToken parses and validates an access token.
func (s *Service) VerifyToken(tokenString string) (*auth.Claims, error) {
	return auth.GetClaimsFromToken(tokenString, s.secretKey)
}

func (s *Service) issueToken(account *models.Account) (string, error) {
	token, err := auth.GenerateToken(account.ID, account.Email, s.secretKey, s.tokenValidity)
	if err != nil {
		return "", fmt.Errorf("error generating token: %w", err)
	}
	return token, nil
}
