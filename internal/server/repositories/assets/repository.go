package assets

import (
	"context"

	"github.com/dmitrijs2005/photoglow/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, asset *models.Asset) error
	ListByAccount(ctx context.Context, accountID string) ([]*models.Asset, error)
}
