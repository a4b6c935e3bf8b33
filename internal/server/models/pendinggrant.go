// Package models defines server-side data models persisted in the database.
package models

import "time"

// PendingGrant holds credits purchased under an email that has no account
// yet. It is created by the payment reconciler and claimed exactly once:
// either by sign-up or by a later reconciliation that finds the account.
// Expired grants are inert; they are filtered at claim time, not swept.
type PendingGrant struct {
	ID string
	// Email is the address the purchase was made under. Claims match on
	// exact equality only.
	Email   string
	Credits int64
	Plan    string
	// SourceTransactionID is the payment provider's session id, unique per
	// purchase; it doubles as the idempotency key for webhook redelivery.
	SourceTransactionID string
	// ImageKey is set when a single-image purchase happened before the
	// account existed; claiming the grant materializes the asset.
	ImageKey  string
	CreatedAt time.Time
	ExpiresAt time.Time

	Claimed            bool
	ClaimedAt          *time.Time
	ClaimedByAccountID string
}
