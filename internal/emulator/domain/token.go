package domain

import "time"

// Refresh token audiences. Federation refresh tokens renew ID tokens through
// the secure token endpoint, backend ones belong to a BackendToken.
const (
	AudienceFederation = "federation"
	AudienceBackend    = "backend"
)

// RefreshToken models the stored refresh token record in the DB.
type RefreshToken struct {
	ID        string
	AccountID string
	TokenHash string // deterministic fingerprint (base64url SHA-256)
	SessionID string // persists across refreshes
	Provider  string // sign-in provider the session started with
	Audience  string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IDTokenResult is what a federation sign-in hands back to the caller.
type IDTokenResult struct {
	Account      Account
	Provider     string
	FederatedID  string
	IDToken      string
	RefreshToken string
	ExpiresIn    time.Duration
	IsNewUser    bool
}

// BackendTokenPair is the first-party pair minted by the exchange endpoint.
type BackendTokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}
