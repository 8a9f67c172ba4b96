package domain

import "time"

// Account is a federation backend user. The ID is what the Identity Toolkit
// API calls localId.
type Account struct {
	ID            string
	Email         string
	EmailVerified bool
	DisplayName   string
	PhoneNumber   string
	PasswordHash  string // argon2 encoded, empty for federated and phone accounts
	Disabled      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProviderLink ties an account to an identity at an external provider.
type ProviderLink struct {
	AccountID   string
	ProviderID  string // e.g. "apple.com"
	FederatedID string // the provider's subject
	Email       string
	DisplayName string
	CreatedAt   time.Time
}

// HasPassword reports whether the account can sign in with a password.
func (a *Account) HasPassword() bool {
	return a.PasswordHash != ""
}
