package fedauth

import (
	"time"

	"github.com/aussiebroadwan/fedauth/pkg/jwtx"
)

// BackendToken is the default model of a backend exchange: the first-party
// access/refresh pair issued for a federated identity.
type BackendToken struct {
	// AccessToken is the bearer token for the application's API.
	AccessToken string `json:"accessToken"`

	// RefreshToken renews AccessToken; handling it is up to the caller.
	RefreshToken string `json:"refreshToken"`
}

// AccessClaims decodes the access token's claims without verifying its
// signature. Only useful for display and expiry hints.
func (t BackendToken) AccessClaims() (*jwtx.Claims, error) {
	return jwtx.ParseUnverified(t.AccessToken)
}

// ExpiresAt reports the access token's exp claim, if it has one.
func (t BackendToken) ExpiresAt() (time.Time, bool) {
	c, err := t.AccessClaims()
	if err != nil || c.ExpiresAt == nil {
		return time.Time{}, false
	}
	return c.ExpiresAt.Time, true
}

// Expired reports whether the access token expires within leeway. Tokens
// without a readable exp claim are never considered expired.
func (t BackendToken) Expired(leeway time.Duration) bool {
	exp, ok := t.ExpiresAt()
	if !ok {
		return false
	}
	return time.Now().Add(leeway).After(exp)
}

// PhoneKey is the default model returned when a verification code is sent.
type PhoneKey struct {
	Key string `json:"key"`
}
