package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Lifetimes the emulator hands out unless configured otherwise.
const (
	DefaultIDTokenTTL      = time.Hour
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour
)

// Token use values carried in the "token_use" claim.
const (
	TokenUseID     = "id"
	TokenUseAccess = "access"
)

// Claims are shared by federation ID tokens, backend access tokens and the
// provider identity tokens the SDK inspects. Fields a token does not carry
// are simply empty.
type Claims struct {
	jwt.RegisteredClaims

	// TokenUse tells ID tokens and access tokens apart.
	TokenUse string `json:"token_use,omitempty"`

	// Provider is the sign-in provider id, e.g. "apple.com" or "password".
	Provider string `json:"sign_in_provider,omitempty"`

	// SID groups the access tokens of one refresh chain.
	SID string `json:"sid,omitempty"`

	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	Name          string `json:"name,omitempty"`
	PhoneNumber   string `json:"phone_number,omitempty"`

	// Nonce echoes the hashed nonce of the authorization request. Apple puts
	// it in identity tokens.
	Nonce string `json:"nonce,omitempty"`
}

// Profile is the user data copied into an ID token.
type Profile struct {
	Email         string
	EmailVerified bool
	Name          string
	PhoneNumber   string
	Provider      string
}

// NewIDClaims builds federation ID token claims for uid.
func NewIDClaims(
	uid string,
	profile Profile,
	ttl time.Duration,
	issuer string,
	audience []string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: registered(uid, ttl, issuer, audience, now),
		TokenUse:         TokenUseID,
		Provider:         profile.Provider,
		Email:            profile.Email,
		EmailVerified:    profile.EmailVerified,
		Name:             profile.Name,
		PhoneNumber:      profile.PhoneNumber,
	}
}

// NewAccessClaims builds backend access token claims.
func NewAccessClaims(
	subject, sid, provider string,
	ttl time.Duration,
	issuer string,
	audience []string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: registered(subject, ttl, issuer, audience, now),
		TokenUse:         TokenUseAccess,
		Provider:         provider,
		SID:              sid,
	}
}

func registered(subject string, ttl time.Duration, issuer string, audience []string, now time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		Audience:  jwt.ClaimStrings(audience),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        NewJTI(),
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ParseUnverified decodes a JWT's claims without checking its signature or
// validity window. Use it only to read hints (expiry, nonce) from tokens
// someone else is responsible for verifying.
func ParseUnverified(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return claims, nil
}

// ValidateIssuer is a no-op for an empty expected issuer.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected != "" && c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience passes when any expected audience is present, or when
// nothing is expected.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 || slices.ContainsFunc(expected, func(aud string) bool {
		return slices.Contains(c.Audience, aud)
	}) {
		return nil
	}
	return ErrAudience
}

// ValidateTokenUse rejects tokens minted for a different purpose, such as
// an access token presented where an ID token is expected.
func (c *Claims) ValidateTokenUse(expected string) error {
	if expected == "" || c.TokenUse == expected {
		return nil
	}
	return ErrInvalidClaim
}

// ValidateTime checks exp and nbf at now, each widened by leeway. Missing
// claims pass.
func (c *Claims) ValidateTime(now time.Time, leeway time.Duration) error {
	switch {
	case c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)):
		return ErrExpired
	case c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)):
		return ErrNotYetValid
	}
	return nil
}
