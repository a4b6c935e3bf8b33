package models

import "time"

type Account struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // empty for federated-only accounts
	// FederatedSubject is the provider's stable subject id, set on the
	// first federated sign-in. Empty for local accounts.
	FederatedSubject string
	Credits          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
