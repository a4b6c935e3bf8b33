package models

import "time"

// PaymentEvent is the journal row recorded for every applied webhook
// delivery, keyed by the provider's transaction id. A duplicate insert
// means the event was already applied and must be a no-op.
type PaymentEvent struct {
	SourceTransactionID string
	Outcome             string
	AccountID           string
	Email               string
	CreatedAt           time.Time
}

// Outcomes recorded in the payment event journal.
const (
	OutcomeGrantWithAsset = "grant_with_asset"
	OutcomeGrant          = "grant"
	OutcomePendingGrant   = "pending_grant"
	OutcomeGuestAsset     = "guest_asset"
	OutcomeNone           = "none"
)
