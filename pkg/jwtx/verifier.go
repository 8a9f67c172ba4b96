package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier checks a token's signature and registered claims.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrUnknownKID = errors.New("jwtx: unknown kid")

	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrAudience     = errors.New("jwtx: audience mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// EdDSAVerifier verifies Ed25519 signatures against a KeySet, then checks
// exp, nbf, iss and aud. An empty issuer or audience is not enforced.
type EdDSAVerifier struct {
	keys     *KeySet
	issuer   string
	audience []string

	// Leeway absorbs clock skew on exp and nbf.
	Leeway time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

func NewVerifierEdDSA(keys *KeySet, issuer string, audience []string) *EdDSAVerifier {
	return &EdDSAVerifier{keys: keys, issuer: issuer, audience: audience}
}

func (v *EdDSAVerifier) Verify(token string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, v.keyFor,
		jwt.WithValidMethods([]string{AlgorithmEdDSA}),
		jwt.WithoutClaimsValidation(),
	)
	switch {
	case errors.Is(err, ErrUnknownKID):
		return Claims{}, fmt.Errorf("jwtx: %w", err)
	case err != nil:
		return Claims{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	for _, check := range []func() error{
		func() error { return claims.ValidateTime(now(), v.Leeway) },
		func() error { return claims.ValidateIssuer(v.issuer) },
		func() error { return claims.ValidateAudience(v.audience) },
	} {
		if err := check(); err != nil {
			return Claims{}, err
		}
	}
	return claims, nil
}

func (v *EdDSAVerifier) keyFor(t *jwt.Token) (any, error) {
	kid, _ := t.Header["kid"].(string)
	if kid == "" {
		return nil, fmt.Errorf("%w: token has no kid", ErrUnknownKID)
	}
	pub, err := v.keys.Get(kid)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrUnknownKID, kid, err)
	}
	return pub, nil
}
