package domain

import "time"

// SigningKey is a persisted EdDSA signing key. Keys are sealed at rest and
// can be retired while they keep verifying tokens for a grace period.
type SigningKey struct {
	ID               string     // ULID
	Kid              string     // Key identifier in JWKS (e.g., "fedauth-abc123")
	Algorithm        string     // always EdDSA
	PrivateKeySealed []byte     // AES-256-GCM sealed private key PEM
	CreatedAt        time.Time  // When the key was created
	RetiredAt        *time.Time // When key was retired from active signing (nil = active)
	ExpiresAt        time.Time  // Hard deletion after this (for cleanup)
}

// IsActive returns true if the key is not retired and not expired.
func (k *SigningKey) IsActive(now time.Time) bool {
	return k.RetiredAt == nil && now.Before(k.ExpiresAt)
}
