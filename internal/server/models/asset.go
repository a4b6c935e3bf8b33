package models

import "time"

// Asset records an enhanced image a user has paid for. AccountID is empty
// for guest single-image purchases made under an email only. Immutable
// once created.
type Asset struct {
	ID        string
	AccountID string
	Email     string
	BlobKey   string
	Plan      string
	CreatedAt time.Time
}
