package paymentevents

import (
	"context"

	"github.com/dmitrijs2005/photoglow/internal/server/models"
)

type Repository interface {
	// Record inserts the journal row for an applied webhook delivery.
	// A duplicate source transaction id returns common.ErrorConflict; the
	// reconciler treats that as an already-applied event.
	Record(ctx context.Context, event *models.PaymentEvent) error
}
