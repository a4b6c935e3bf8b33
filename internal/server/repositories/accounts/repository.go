package accounts

import (
	"context"

	"github.com/dmitrijs2005/photoglow/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByLogin(ctx context.Context, emailOrUsername string) (*models.Account, error)

	// AddCredits atomically increments the balance and returns the new value.
	AddCredits(ctx context.Context, id string, amount int64) (int64, error)

	// TryDecrement atomically checks credits >= amount and decrements in one
	// step, returning the new balance. It returns
	// common.ErrorInsufficientCredits without mutating anything when the
	// balance is short.
	TryDecrement(ctx context.Context, id string, amount int64) (int64, error)

	UpdateProfile(ctx context.Context, id string, username string, email string) error
}
