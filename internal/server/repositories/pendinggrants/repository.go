package pendinggrants

import (
	"context"

	"github.com/dmitrijs2005/photoglow/internal/server/models"
)

type Repository interface {
	// Create inserts a new unclaimed grant. A duplicate source transaction
	// id returns common.ErrorConflict, which callers treat as a webhook
	// redelivery.
	Create(ctx context.Context, grant *models.PendingGrant) error

	// ClaimForEmail marks the oldest unclaimed, unexpired grant for email
	// as claimed by accountID, in a single conditional update. It returns
	// common.ErrorNotFound when no claimable grant exists.
	ClaimForEmail(ctx context.Context, email string, accountID string) (*models.PendingGrant, error)

	// DeleteUnclaimed drops all unclaimed grants for email. Best-effort
	// storage hygiene only.
	DeleteUnclaimed(ctx context.Context, email string) error
}
